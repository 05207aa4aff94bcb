// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces ownership, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services take a repository.Store (an interface), never a *sqlite.DB, so
// tests pass an in-memory fake and the purge command reuses the same rules
// the HTTP API uses.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

// TodoService handles business logic for to-do items.
//
// Every method takes the authenticated userID. A todo owned by someone else
// is reported as not found, exactly like one that does not exist.
type TodoService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewTodoService(store repository.Store, logger *slog.Logger) *TodoService {
	return &TodoService{
		store:  store,
		logger: logger,
	}
}

// TodoInput is the body of a create request. Completed defaults to false.
type TodoInput struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// TodoPatch carries the fields of an update. A nil field is left unchanged.
type TodoPatch struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=100"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (s *TodoService) Create(ctx context.Context, userID string, in TodoInput) (*model.Todo, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated("Authentication required")
	}

	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	todo := &model.Todo{
		Title:       in.Title,
		Description: in.Description,
		UserID:      userID,
	}
	if in.Completed != nil {
		todo.Completed = *in.Completed
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		return tx.CreateTodo(ctx, todo)
	})
	if err != nil {
		return nil, wrap("service/todo: creating todo", err)
	}

	s.logger.Info("todo created",
		slog.String("todo_id", todo.ID),
		slog.String("user_id", userID),
	)
	return todo, nil
}

func (s *TodoService) Get(ctx context.Context, id, userID string) (*model.Todo, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated("Authentication required")
	}

	todo, err := s.store.GetTodo(ctx, id, userID)
	if err != nil {
		return nil, wrap("service/todo: getting todo "+id, err)
	}
	return todo, nil
}

// List returns the user's todos, newest first. A nil filter.Completed
// returns everything.
func (s *TodoService) List(ctx context.Context, userID string, filter repository.TodoFilter) ([]model.Todo, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated("Authentication required")
	}

	todos, err := s.store.ListTodos(ctx, userID, filter)
	if err != nil {
		return nil, wrap("service/todo: listing todos", err)
	}
	return todos, nil
}

// Update applies the non-nil fields of patch (PATCH semantics).
func (s *TodoService) Update(ctx context.Context, id, userID string, patch TodoPatch) (*model.Todo, error) {
	return s.update(ctx, id, userID, patch)
}

// Replace is the PUT variant of Update: title is mandatory, the other
// fields still keep their stored value when omitted.
func (s *TodoService) Replace(ctx context.Context, id, userID string, patch TodoPatch) (*model.Todo, error) {
	if patch.Title == nil {
		return nil, apperror.ValidationFailed("title", fieldMessages["title.required"])
	}
	return s.update(ctx, id, userID, patch)
}

func (s *TodoService) update(ctx context.Context, id, userID string, patch TodoPatch) (*model.Todo, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated("Authentication required")
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	if err := validateStruct(patch); err != nil {
		return nil, err
	}

	var todo *model.Todo
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		todo, err = tx.GetTodo(ctx, id, userID)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			todo.Title = *patch.Title
		}
		if patch.Description != nil {
			todo.Description = patch.Description
		}
		if patch.Completed != nil {
			todo.Completed = *patch.Completed
		}

		return tx.UpdateTodo(ctx, todo)
	})
	if err != nil {
		return nil, wrap("service/todo: updating todo "+id, err)
	}

	s.logger.Info("todo updated",
		slog.String("todo_id", id),
		slog.String("user_id", userID),
	)
	return todo, nil
}

// Toggle flips the completed flag.
func (s *TodoService) Toggle(ctx context.Context, id, userID string) (*model.Todo, error) {
	if userID == "" {
		return nil, apperror.Unauthenticated("Authentication required")
	}

	var todo *model.Todo
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		todo, err = tx.GetTodo(ctx, id, userID)
		if err != nil {
			return err
		}
		todo.Completed = !todo.Completed
		return tx.UpdateTodo(ctx, todo)
	})
	if err != nil {
		return nil, wrap("service/todo: toggling todo "+id, err)
	}

	s.logger.Info("todo toggled",
		slog.String("todo_id", id),
		slog.Bool("completed", todo.Completed),
	)
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, id, userID string) error {
	if userID == "" {
		return apperror.Unauthenticated("Authentication required")
	}

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.GetTodo(ctx, id, userID); err != nil {
			return err
		}
		return tx.DeleteTodo(ctx, id, userID)
	})
	if err != nil {
		return wrap("service/todo: deleting todo "+id, err)
	}

	s.logger.Info("todo deleted",
		slog.String("todo_id", id),
		slog.String("user_id", userID),
	)
	return nil
}

func (s *TodoService) Count(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, apperror.Unauthenticated("Authentication required")
	}

	n, err := s.store.CountTodos(ctx, userID)
	if err != nil {
		return 0, wrap("service/todo: counting todos", err)
	}
	return n, nil
}

// DeleteAllForUser removes every todo the user owns and reports how many
// were removed. Only the purge-todos command calls it.
func (s *TodoService) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, apperror.Unauthenticated("Authentication required")
	}

	var n int64
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		n, err = tx.DeleteTodosForUser(ctx, userID)
		return err
	})
	if err != nil {
		return 0, wrap("service/todo: deleting todos for user "+userID, err)
	}

	s.logger.Warn("all todos deleted for user",
		slog.String("user_id", userID),
		slog.Int64("count", n),
	)
	return n, nil
}
