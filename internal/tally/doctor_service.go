package tally

import (
	"context"
	"os"

	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/doctor"
)

// DoctorService runs health checks on the tally setup.
type DoctorService struct {
	config *config.Config
	db     doctor.Pinger
}

// NewDoctorService creates a new DoctorService. db may be nil when the
// database could not be opened.
func NewDoctorService(cfg *config.Config, db doctor.Pinger) *DoctorService {
	return &DoctorService{
		config: cfg,
		db:     db,
	}
}

// RunChecks executes all doctor checks and returns results. With autofix a
// missing data directory is created first.
func (d *DoctorService) RunChecks(ctx context.Context, configPath string, autofix bool) []doctor.Result {
	if autofix {
		_ = os.MkdirAll(d.config.DataDir, 0o755)
	}

	checks := []doctor.Check{
		doctor.NewConfigCheck(d.config, configPath),
		doctor.NewDataDirCheck(d.config.DataDir),
		doctor.NewOracleCheck(d.config.Oracle.APIKey, d.config.Oracle.Model, d.config.Oracle.VoiceTimeout),
	}
	if d.db != nil {
		checks = append(checks, doctor.NewDatabaseCheck(d.db))
	}
	return doctor.RunAll(ctx, checks)
}
