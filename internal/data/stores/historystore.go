package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/tally/internal/core/history"
	"github.com/colonyops/tally/internal/core/voice"
	"github.com/colonyops/tally/internal/data/db"
)

// HistoryStore implements history.Store using SQLite.
type HistoryStore struct {
	db *db.DB
}

var _ history.Store = (*HistoryStore)(nil)

// NewHistoryStore creates a new SQLite-backed voice history store.
func NewHistoryStore(db *db.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Record saves an audit entry, replacing any entry with the same ID.
func (s *HistoryStore) Record(ctx context.Context, e history.Entry) error {
	_, err := s.db.Conn().ExecContext(ctx, `
		INSERT OR REPLACE INTO voice_history
			(id, user_id, transcription, message, action, target, outcome, error_kind, count, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Transcription, e.Message, string(e.Action), e.Target,
		string(e.Outcome), string(e.ErrorKind), e.Count,
		e.StartedAt.UnixNano(), e.FinishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record voice history: %w", err)
	}
	return nil
}

// List returns the newest entries first.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]history.Entry, error) {
	query := `
		SELECT id, user_id, transcription, message, action, target, outcome, error_kind, count, started_at, finished_at
		FROM voice_history
		ORDER BY finished_at DESC, id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list voice history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []history.Entry
	for rows.Next() {
		var (
			e                        history.Entry
			action, outcome, errKind string
			startedAt, finishedAt    int64
		)
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Transcription, &e.Message, &action, &e.Target,
			&outcome, &errKind, &e.Count, &startedAt, &finishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan voice history: %w", err)
		}
		e.Action = voice.ActionType(action)
		e.Outcome = voice.State(outcome)
		e.ErrorKind = voice.Kind(errKind)
		e.StartedAt = time.Unix(0, startedAt)
		e.FinishedAt = time.Unix(0, finishedAt)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
