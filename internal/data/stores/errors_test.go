package stores

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tally/internal/data/db"
)

func TestRecoverFromCorruption_Success(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, db.FileName)

	// Create a corrupted database file with WAL and SHM companions
	require.NoError(t, os.WriteFile(dbPath, []byte("corrupted data"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-wal", []byte("wal data"), 0o644))
	require.NoError(t, os.WriteFile(dbPath+"-shm", []byte("shm data"), 0o644))

	require.NoError(t, RecoverFromCorruption(tempDir))

	backups, err := filepath.Glob(filepath.Join(tempDir, db.FileName+".corrupt.*"))
	require.NoError(t, err)

	var main, wal, shm int
	for _, f := range backups {
		switch {
		case strings.HasSuffix(f, "-wal"):
			wal++
		case strings.HasSuffix(f, "-shm"):
			shm++
		default:
			main++
		}
	}
	assert.Equal(t, 1, main)
	assert.Equal(t, 1, wal)
	assert.Equal(t, 1, shm)

	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), "%s should be moved", p)
	}

	// A fresh database opens cleanly afterwards.
	database, err := db.Open(tempDir, db.DefaultOpenOptions())
	require.NoError(t, err)
	_ = database.Close()
}

func TestRecoverFromCorruption_MissingFile(t *testing.T) {
	tempDir := t.TempDir()

	assert.NoError(t, RecoverFromCorruption(tempDir), "RecoverFromCorruption should not error on missing file")

	files, _ := filepath.Glob(filepath.Join(tempDir, "*.corrupt.*"))
	assert.Empty(t, files)
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, IsCorruptionError(errors.New("file is not a database")))
	assert.False(t, IsCorruptionError(errors.New("disk full")))
	assert.True(t, isUniqueConstraintError(fmt.Errorf("wrap: %w", errors.New("UNIQUE constraint failed: lists.name_key"))))
	assert.True(t, isForeignKeyError(errors.New("FOREIGN KEY constraint failed")))
	assert.False(t, isUniqueConstraintError(nil))
	assert.False(t, IsBusyError(errors.New("busy")))
}
