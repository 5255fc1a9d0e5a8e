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

const todoColumns = `id, list_id, text, notes, done, category, date, time, url, email, address, number, amount, rating, created_at, updated_at`

// TodoStore implements list.TodoStore using SQLite.
type TodoStore struct {
	db *db.DB
}

var _ list.TodoStore = (*TodoStore)(nil)

// NewTodoStore creates a new SQLite-backed todo store.
func NewTodoStore(db *db.DB) *TodoStore {
	return &TodoStore{db: db}
}

// CreateBatch inserts every todo in a single transaction. IDs and timestamps
// are filled in place. A todo whose list does not exist fails the whole
// batch with list.ErrListMissing.
func (s *TodoStore) CreateBatch(ctx context.Context, todos []list.Todo) error {
	if len(todos) == 0 {
		return nil
	}

	fillTodos(todos)
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return insertTodos(ctx, tx, todos)
	})
	if err != nil {
		return fmt.Errorf("create todo batch: %w", err)
	}

	return nil
}

// fillTodos assigns missing IDs and timestamps in place.
func fillTodos(todos []list.Todo) {
	now := time.Now()
	for i := range todos {
		if todos[i].ID == "" {
			todos[i].ID = randid.WithPrefix("tdo", 10)
		}
		if todos[i].CreatedAt.IsZero() {
			// Distinct timestamps keep the batch order deterministic.
			todos[i].CreatedAt = now.Add(time.Duration(i))
		}
		if todos[i].UpdatedAt.IsZero() {
			todos[i].UpdatedAt = todos[i].CreatedAt
		}
	}
}

func insertTodos(ctx context.Context, tx *sql.Tx, todos []list.Todo) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO todos (`+todoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, t := range todos {
		_, err := stmt.ExecContext(ctx,
			t.ID, t.ListID, t.Text, t.Notes, t.Done, t.Category, t.Date, t.Time,
			t.URL, t.Email, t.Address, toNullFloat(t.Number), toNullFloat(t.Amount), toNullInt(t.Rating),
			t.CreatedAt.UnixNano(), t.UpdatedAt.UnixNano(),
		)
		if err != nil {
			if isForeignKeyError(err) {
				return fmt.Errorf("todo %s: %w", t.ID, list.ErrListMissing)
			}
			return fmt.Errorf("insert todo %s: %w", t.ID, err)
		}
	}
	return nil
}

// Get returns a single todo by ID.
func (s *TodoStore) Get(ctx context.Context, id string) (list.Todo, error) {
	row := s.db.Conn().QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id)

	t, err := scanTodo(row)
	if err != nil {
		if IsNotFoundError(err) {
			return list.Todo{}, list.ErrNotFound
		}
		return list.Todo{}, fmt.Errorf("get todo: %w", err)
	}

	return t, nil
}

// List returns todos matching the filter, ordered by created_at DESC.
func (s *TodoStore) List(ctx context.Context, filter list.TodoFilter) ([]list.Todo, error) {
	var (
		where []string
		args  []any
	)
	if filter.ListID != "" {
		where = append(where, "list_id = ?")
		args = append(args, filter.ListID)
	}
	if filter.Done != nil {
		where = append(where, "done = ?")
		args = append(args, *filter.Done)
	}

	query := `SELECT ` + todoColumns + ` FROM todos`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var todos []list.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}

	return todos, rows.Err()
}

// SetDone marks a todo done or not done.
func (s *TodoStore) SetDone(ctx context.Context, id string, done bool) error {
	res, err := s.db.Conn().ExecContext(ctx,
		`UPDATE todos SET done = ?, updated_at = ? WHERE id = ?`,
		done, time.Now().UnixNano(), id,
	)
	if err != nil {
		return fmt.Errorf("update todo done: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update todo done: %w", err)
	}
	if n == 0 {
		return list.ErrNotFound
	}

	return nil
}

func scanTodo(row scanner) (list.Todo, error) {
	var (
		t                    list.Todo
		number, amount       sql.NullFloat64
		rating               sql.NullInt64
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&t.ID, &t.ListID, &t.Text, &t.Notes, &t.Done, &t.Category, &t.Date, &t.Time,
		&t.URL, &t.Email, &t.Address, &number, &amount, &rating,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return list.Todo{}, err
	}
	t.Number = fromNullFloat(number)
	t.Amount = fromNullFloat(amount)
	t.Rating = fromNullInt(rating)
	t.CreatedAt = time.Unix(0, createdAt)
	t.UpdatedAt = time.Unix(0, updatedAt)
	return t, nil
}
