// Package seed loads demo accounts and todos for local development.
//
// Running it repeatedly is safe: users are looked up by email before being
// created, and todos are only inserted into an empty todos table.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/auth"
	"github.com/sakif/todo-api/internal/model"
	"github.com/sakif/todo-api/internal/repository"
)

// DemoPassword is shared by every demo account.
const DemoPassword = "password123"

type demoUser struct {
	username string
	email    string
}

type demoTodo struct {
	owner       int // index into demoUsers
	title       string
	description string
	completed   bool
}

var demoUsers = []demoUser{
	{username: "john_doe", email: "john@example.com"},
	{username: "jane_smith", email: "jane@example.com"},
}

var demoTodos = []demoTodo{
	{owner: 0, title: "Buy groceries", description: "Milk, eggs, bread, and coffee"},
	{owner: 0, title: "Finish project report", description: "Complete the Q4 analysis report"},
	{owner: 0, title: "Call dentist", description: "Schedule annual checkup", completed: true},
	{owner: 1, title: "Read book", description: "Finish reading 'Clean Code'"},
}

// Load ensures the demo users exist and, if no todos exist yet, creates
// the demo todos. Everything happens in one transaction.
func Load(ctx context.Context, store repository.Store, passwords *auth.PasswordService, logger *slog.Logger) error {
	err := store.WithTx(ctx, func(tx repository.Store) error {
		users := make([]*model.User, len(demoUsers))
		for i, du := range demoUsers {
			u, err := ensureUser(ctx, tx, passwords, du, logger)
			if err != nil {
				return err
			}
			users[i] = u
		}

		n, err := tx.CountAllTodos(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("todos already exist, skipping demo todos", slog.Int64("count", n))
			return nil
		}

		for _, dt := range demoTodos {
			description := dt.description
			todo := &model.Todo{
				Title:       dt.title,
				Description: &description,
				Completed:   dt.completed,
				UserID:      users[dt.owner].ID,
			}
			if err := tx.CreateTodo(ctx, todo); err != nil {
				return err
			}
			logger.Info("demo todo created",
				slog.String("title", todo.Title),
				slog.String("owner", users[dt.owner].Username),
			)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed: loading demo data: %w", err)
	}
	return nil
}

func ensureUser(ctx context.Context, tx repository.Store, passwords *auth.PasswordService, du demoUser, logger *slog.Logger) (*model.User, error) {
	existing, err := tx.GetUserByEmail(ctx, du.email)
	if err == nil {
		logger.Info("using existing demo user", slog.String("username", existing.Username))
		return existing, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	hash, err := passwords.Hash(DemoPassword)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Username:     du.username,
		Email:        du.email,
		PasswordHash: hash,
	}
	if err := tx.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	logger.Info("demo user created",
		slog.String("username", u.Username),
		slog.String("user_id", u.ID),
	)
	return u, nil
}
