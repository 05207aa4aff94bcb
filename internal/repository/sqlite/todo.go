package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

var _ repository.TodoRepository = (*DB)(nil)

const todoColumns = `id, title, description, completed, created_at, updated_at, user_id`

// CreateTodo inserts todo, filling in ID and both timestamps.
// todo.UserID must already be set; the foreign key rejects unknown owners.
func (db *DB) CreateTodo(ctx context.Context, todo *model.Todo) error {
	todo.ID = xid.New().String()
	now := time.Now()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	_, err := db.q.ExecContext(ctx,
		`INSERT INTO todos (`+todoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		todo.ID,
		todo.Title,
		nullString(todo.Description),
		todo.Completed,
		todo.CreatedAt,
		todo.UpdatedAt,
		todo.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating todo: %w", err)
	}
	return nil
}

// GetTodo fetches a todo by ID, scoped to its owner.
//
// The WHERE clause matches on BOTH id and user_id, so another user's todo
// produces sql.ErrNoRows exactly like a missing one.
func (db *DB) GetTodo(ctx context.Context, id, userID string) (*model.Todo, error) {
	row := db.q.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	var t model.Todo
	if err := scanTodo(row, &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("todo", id)
		}
		return nil, fmt.Errorf("sqlite: getting todo %s: %w", id, err)
	}
	return &t, nil
}

// ListTodos returns the user's todos, newest first, optionally filtered by
// completion state.
func (db *DB) ListTodos(ctx context.Context, userID string, filter repository.TodoFilter) ([]model.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = ?`
	args := []any{userID}
	if filter.Completed != nil {
		query += ` AND completed = ?`
		args = append(args, *filter.Completed)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing todos: %w", err)
	}
	defer rows.Close()

	todos := make([]model.Todo, 0)
	for rows.Next() {
		var t model.Todo
		if err := scanTodo(rows, &t); err != nil {
			return nil, fmt.Errorf("sqlite: scanning todo row: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating todos: %w", err)
	}

	return todos, nil
}

// UpdateTodo writes title, description and completed, and bumps updated_at.
// id, user_id and created_at are immutable and never written here.
func (db *DB) UpdateTodo(ctx context.Context, todo *model.Todo) error {
	todo.UpdatedAt = time.Now()

	result, err := db.q.ExecContext(ctx,
		`UPDATE todos
		 SET title = ?, description = ?, completed = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		todo.Title,
		nullString(todo.Description),
		todo.Completed,
		todo.UpdatedAt,
		todo.ID,
		todo.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating todo %s: %w", todo.ID, err)
	}
	return requireAffected(result, todo.ID)
}

func (db *DB) DeleteTodo(ctx context.Context, id, userID string) error {
	result, err := db.q.ExecContext(ctx,
		`DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting todo %s: %w", id, err)
	}
	return requireAffected(result, id)
}

func (db *DB) CountTodos(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := db.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM todos WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting todos: %w", err)
	}
	return n, nil
}

// CountAllTodos counts across every user. Only the demo seeder uses it.
func (db *DB) CountAllTodos(ctx context.Context) (int64, error) {
	var n int64
	if err := db.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM todos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting all todos: %w", err)
	}
	return n, nil
}

// DeleteTodosForUser removes every todo the user owns and reports how many.
func (db *DB) DeleteTodosForUser(ctx context.Context, userID string) (int64, error) {
	result, err := db.q.ExecContext(ctx, `DELETE FROM todos WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting todos for user %s: %w", userID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(s rowScanner, t *model.Todo) error {
	return s.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Completed,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.UserID,
	)
}

// nullString maps a nil description to SQL NULL.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func requireAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("todo", id)
	}
	return nil
}
