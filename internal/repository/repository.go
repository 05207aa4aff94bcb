// Package repository declares the storage interfaces the service layer
// depends on. Implementations live in sub-packages (see repository/sqlite).
package repository

import (
	"context"

	"github.com/sakif/todo-api/internal/model"
)

// TodoFilter narrows ListTodos. A nil Completed means "all todos".
type TodoFilter struct {
	Completed *bool
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TodoRepository methods are all scoped by owner: a todo that exists but
// belongs to someone else is reported as apperror.ErrNotFound.
type TodoRepository interface {
	CreateTodo(ctx context.Context, todo *model.Todo) error
	GetTodo(ctx context.Context, id, userID string) (*model.Todo, error)
	ListTodos(ctx context.Context, userID string, filter TodoFilter) ([]model.Todo, error)
	UpdateTodo(ctx context.Context, todo *model.Todo) error
	DeleteTodo(ctx context.Context, id, userID string) error
	CountTodos(ctx context.Context, userID string) (int64, error)
	CountAllTodos(ctx context.Context) (int64, error)
	DeleteTodosForUser(ctx context.Context, userID string) (int64, error)
}

// Store is everything the services need, plus a transaction boundary.
//
// WithTx runs fn against a Store bound to a single transaction. The
// transaction commits if fn returns nil and rolls back otherwise. Inside fn,
// use only the Store passed in, never the outer one.
type Store interface {
	UserRepository
	TodoRepository
	WithTx(ctx context.Context, fn func(tx Store) error) error
}
