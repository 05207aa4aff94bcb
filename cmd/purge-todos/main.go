// Command purge-todos deletes every todo owned by one user.
//
//	purge-todos -email john@example.com
//
// It reads DB_PATH (and the rest of the usual configuration) the same way
// the server does, so point it at the same database file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/config"
	sqliteRepo "github.com/sakif/todo-api/internal/repository/sqlite"
	"github.com/sakif/todo-api/internal/service"
)

func main() {
	email := flag.String("email", "", "email of the user whose todos are deleted")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(context.Background(), *email, logger); err != nil {
		logger.Error("purge failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, email string, logger *slog.Logger) error {
	if email == "" {
		flag.Usage()
		return errors.New("-email is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	user, err := db.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return fmt.Errorf("no user with email %s", email)
		}
		return err
	}

	n, err := service.NewTodoService(db, logger).DeleteAllForUser(ctx, user.ID)
	if err != nil {
		return err
	}

	fmt.Printf("deleted %d todo(s) for %s\n", n, user.Username)
	return nil
}
