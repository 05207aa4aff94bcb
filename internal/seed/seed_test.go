package seed

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/todo-api/internal/auth"
	"github.com/sakif/todo-api/internal/repository"
	"github.com/sakif/todo-api/internal/repository/sqlite"
)

func setup(t *testing.T) (*sqlite.DB, *auth.PasswordService, *slog.Logger) {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	passwords, err := auth.NewPasswordService(4)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return db, passwords, logger
}

func TestLoad_CreatesDemoData(t *testing.T) {
	db, passwords, logger := setup(t)
	ctx := context.Background()

	require.NoError(t, Load(ctx, db, passwords, logger))

	john, err := db.GetUserByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, "john_doe", john.Username)
	assert.NoError(t, passwords.Verify(john.PasswordHash, DemoPassword))

	jane, err := db.GetUserByEmail(ctx, "jane@example.com")
	require.NoError(t, err)

	johns, err := db.ListTodos(ctx, john.ID, repository.TodoFilter{})
	require.NoError(t, err)
	assert.Len(t, johns, 3)

	done := true
	completed, err := db.ListTodos(ctx, john.ID, repository.TodoFilter{Completed: &done})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, "Call dentist", completed[0].Title)

	janes, err := db.ListTodos(ctx, jane.ID, repository.TodoFilter{})
	require.NoError(t, err)
	require.Len(t, janes, 1)
	assert.Equal(t, "Read book", janes[0].Title)
	require.NotNil(t, janes[0].Description)
	assert.Equal(t, "Finish reading 'Clean Code'", *janes[0].Description)
}

func TestLoad_Idempotent(t *testing.T) {
	db, passwords, logger := setup(t)
	ctx := context.Background()

	require.NoError(t, Load(ctx, db, passwords, logger))
	require.NoError(t, Load(ctx, db, passwords, logger))

	total, err := db.CountAllTodos(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestLoad_SkipsTodosWhenAnyExist(t *testing.T) {
	db, passwords, logger := setup(t)
	ctx := context.Background()

	require.NoError(t, Load(ctx, db, passwords, logger))
	john, err := db.GetUserByEmail(ctx, "john@example.com")
	require.NoError(t, err)

	// Wipe john's todos; jane still has one, so nothing is re-created.
	_, err = db.DeleteTodosForUser(ctx, john.ID)
	require.NoError(t, err)
	require.NoError(t, Load(ctx, db, passwords, logger))

	n, err := db.CountTodos(ctx, john.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
