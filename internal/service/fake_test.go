package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/auth"
	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

// =========================================================================
// FAKE STORE
// =========================================================================
//
// fakeStore is an in-memory repository.Store. It follows the same contract
// as the sqlite implementation: todo lookups are scoped by owner, and a
// todo owned by someone else is apperror.ErrNotFound.
//
// WithTx simply runs fn against the fake itself; txCalls lets tests assert
// that a write went through a transaction boundary.

type fakeStore struct {
	users   map[string]*model.User
	todos   map[string]*model.Todo
	nextID  int
	txCalls int

	// set to a non-nil error to simulate a database failure
	createUserErr error
	listErr       error
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]*model.User),
		todos: make(map[string]*model.Todo),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) WithTx(_ context.Context, fn func(tx repository.Store) error) error {
	f.txCalls++
	return fn(f)
}

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	if f.createUserErr != nil {
		return f.createUserErr
	}
	user.ID = f.id("user")
	user.CreatedAt = time.Now()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "user not found", Field: "email"}
}

func (f *fakeStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateTodo(_ context.Context, todo *model.Todo) error {
	todo.ID = f.id("todo")
	now := time.Now()
	todo.CreatedAt = now
	todo.UpdatedAt = now
	stored := *todo
	f.todos[todo.ID] = &stored
	return nil
}

func (f *fakeStore) GetTodo(_ context.Context, id, userID string) (*model.Todo, error) {
	t, ok := f.todos[id]
	if !ok || t.UserID != userID {
		return nil, apperror.NotFound("todo", id)
	}
	copied := *t
	return &copied, nil
}

func (f *fakeStore) ListTodos(_ context.Context, userID string, filter repository.TodoFilter) ([]model.Todo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	result := make([]model.Todo, 0)
	for _, t := range f.todos {
		if t.UserID != userID {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeStore) UpdateTodo(_ context.Context, todo *model.Todo) error {
	t, ok := f.todos[todo.ID]
	if !ok || t.UserID != todo.UserID {
		return apperror.NotFound("todo", todo.ID)
	}
	todo.UpdatedAt = time.Now()
	stored := *todo
	f.todos[todo.ID] = &stored
	return nil
}

func (f *fakeStore) DeleteTodo(_ context.Context, id, userID string) error {
	t, ok := f.todos[id]
	if !ok || t.UserID != userID {
		return apperror.NotFound("todo", id)
	}
	delete(f.todos, id)
	return nil
}

func (f *fakeStore) CountTodos(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, t := range f.todos {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountAllTodos(_ context.Context) (int64, error) {
	return int64(len(f.todos)), nil
}

func (f *fakeStore) DeleteTodosForUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for id, t := range f.todos {
		if t.UserID == userID {
			delete(f.todos, id)
			n++
		}
	}
	return n, nil
}

// =========================================================================
// HELPERS
// =========================================================================

const testSecret = "test-secret-at-least-16-chars!!"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestTokenService(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// newTestAuthService wires an AuthService over store. Cost 4 is the bcrypt
// minimum, which keeps the tests fast.
func newTestAuthService(t *testing.T, store *fakeStore) *AuthService {
	t.Helper()
	ps, err := auth.NewPasswordService(4)
	if err != nil {
		t.Fatalf("NewPasswordService: %v", err)
	}
	return NewAuthService(store, newTestTokenService(t), ps, testLogger())
}

func newTestTodoService(store *fakeStore) *TodoService {
	return NewTodoService(store, testLogger())
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
