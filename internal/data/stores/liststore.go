package stores

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/colonyops/tally/internal/core/list"
	"github.com/colonyops/tally/internal/data/db"
	"github.com/colonyops/tally/pkg/randid"
)

const listColumns = `id, name, purpose, type, background_colour, icon, template, description, created_at, updated_at`

// ListStore implements list.Store using SQLite.
type ListStore struct {
	db *db.DB
}

var _ list.Store = (*ListStore)(nil)

// NewListStore creates a new SQLite-backed list store.
func NewListStore(db *db.DB) *ListStore {
	return &ListStore{db: db}
}

// Create persists a new list. Generates an ID and timestamps if not set.
// Returns list.ErrDuplicate if a list with the same name (ignoring case)
// already exists.
func (s *ListStore) Create(ctx context.Context, l *list.List) error {
	fillList(l)
	return insertList(ctx, s.db.Conn(), l)
}

// CreateWithTodos persists l and todos in one transaction. Each todo is
// assigned to l. On any error nothing is written.
func (s *ListStore) CreateWithTodos(ctx context.Context, l *list.List, todos []list.Todo) error {
	fillList(l)
	for i := range todos {
		todos[i].ListID = l.ID
	}
	fillTodos(todos)

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := insertList(ctx, tx, l); err != nil {
			return err
		}
		if len(todos) == 0 {
			return nil
		}
		return insertTodos(ctx, tx, todos)
	})
	if err != nil {
		return fmt.Errorf("create list with todos: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func fillList(l *list.List) {
	if l.ID == "" {
		l.ID = randid.WithPrefix("lst", 8)
	}

	now := time.Now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = now
	}
}

func insertList(ctx context.Context, conn execer, l *list.List) error {
	_, err := conn.ExecContext(ctx, `
		INSERT INTO lists (`+listColumns+`, name_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Name, l.Purpose, l.Type, l.BackgroundColour, l.Icon, l.Template, l.Description,
		l.CreatedAt.UnixNano(), l.UpdatedAt.UnixNano(), nameKey(l.Name),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return list.ErrDuplicate
		}
		return fmt.Errorf("create list: %w", err)
	}

	return nil
}

// Get returns a single list by ID.
func (s *ListStore) Get(ctx context.Context, id string) (list.List, error) {
	row := s.db.Conn().QueryRowContext(ctx, `SELECT `+listColumns+` FROM lists WHERE id = ?`, id)

	l, err := scanList(row)
	if err != nil {
		if IsNotFoundError(err) {
			return list.List{}, list.ErrNotFound
		}
		return list.List{}, fmt.Errorf("get list: %w", err)
	}

	return l, nil
}

// List returns all lists ordered by name.
func (s *ListStore) List(ctx context.Context) ([]list.List, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `SELECT `+listColumns+` FROM lists ORDER BY name_key, id`)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lists []list.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, l)
	}

	return lists, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanList(row scanner) (list.List, error) {
	var (
		l                    list.List
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&l.ID, &l.Name, &l.Purpose, &l.Type, &l.BackgroundColour, &l.Icon, &l.Template, &l.Description,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return list.List{}, err
	}
	l.CreatedAt = time.Unix(0, createdAt)
	l.UpdatedAt = time.Unix(0, updatedAt)
	return l, nil
}

// nameKey is the case-folded name used for the uniqueness index.
func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func toNullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func toNullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func fromNullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
