package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/todo-api/internal/apperror"
	"github.com/sakif/todo-api/internal/model"
)

// newTestDB returns a fresh in-memory database that is closed when the
// test finishes. t.Helper() makes failures point at the caller's line.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$04$not-a-real-hash",
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE
// =========================================================================

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Username: "alice", Email: "alice@x.com", PasswordHash: "hash"}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if user.ID == "" {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set user.CreatedAt")
	}
}

func TestCreateUser_Duplicates(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	tests := []struct {
		name      string
		user      *model.User
		wantField string
	}{
		{
			name:      "same username",
			user:      &model.User{Username: "alice", Email: "other@example.com", PasswordHash: "h"},
			wantField: "username",
		},
		{
			name:      "same email",
			user:      &model.User{Username: "other", Email: "alice@example.com", PasswordHash: "h"},
			wantField: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.CreateUser(context.Background(), tt.user)
			if !errors.Is(err, apperror.ErrConflict) {
				t.Fatalf("CreateUser() error = %v, want ErrConflict", err)
			}
			var appErr *apperror.AppError
			if errors.As(err, &appErr) && appErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.wantField)
			}
		})
	}
}

// =========================================================================
// LOOKUPS
// =========================================================================

func TestGetUserByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "bob")

	found, err := db.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if found.Username != "bob" || found.Email != "bob@example.com" {
		t.Errorf("got %+v", found)
	}
	if found.PasswordHash != created.PasswordHash {
		t.Errorf("PasswordHash = %q, want %q", found.PasswordHash, created.PasswordHash)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "carol")

	found, err := db.GetUserByEmail(context.Background(), "carol@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}

	_, err = db.GetUserByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByEmail() unknown email error = %v, want ErrNotFound", err)
	}
}

func TestExistsBy(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestUser(t, db, "dave")

	if ok, err := db.ExistsByUsername(ctx, "dave"); err != nil || !ok {
		t.Errorf("ExistsByUsername(dave) = %v, %v; want true, nil", ok, err)
	}
	if ok, err := db.ExistsByUsername(ctx, "erin"); err != nil || ok {
		t.Errorf("ExistsByUsername(erin) = %v, %v; want false, nil", ok, err)
	}
	if ok, err := db.ExistsByEmail(ctx, "dave@example.com"); err != nil || !ok {
		t.Errorf("ExistsByEmail(dave@) = %v, %v; want true, nil", ok, err)
	}
	if ok, err := db.ExistsByEmail(ctx, "erin@example.com"); err != nil || ok {
		t.Errorf("ExistsByEmail(erin@) = %v, %v; want false, nil", ok, err)
	}
}

// =========================================================================
// HELPERS
// =========================================================================

func TestIsUniqueViolation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice")

	insert := func(id, username, email string) error {
		_, err := db.conn.ExecContext(ctx,
			`INSERT INTO users (id, username, email, password_hash) VALUES (?, ?, ?, 'x')`,
			id, username, email)
		return err
	}

	tests := []struct {
		name       string
		err        error
		wantColumn string
		wantOK     bool
	}{
		{"username", insert("u2", "alice", "other@example.com"), "username", true},
		{"email", insert("u3", "bob", alice.Email), "email", true},
		{"message only", errors.New("UNIQUE constraint failed: users.email"), "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, ok := isUniqueViolation(tt.err)
			if ok != tt.wantOK || col != tt.wantColumn {
				t.Errorf("isUniqueViolation(%v) = %q, %v; want %q, %v", tt.err, col, ok, tt.wantColumn, tt.wantOK)
			}
		})
	}
}

func TestUniqueColumn(t *testing.T) {
	tests := map[string]string{
		"constraint failed: UNIQUE constraint failed: users.email (2067)": "email",
		"UNIQUE constraint failed: users.username":                        "username",
		"FOREIGN KEY constraint failed":                                   "",
	}
	for msg, want := range tests {
		if got := uniqueColumn(msg); got != want {
			t.Errorf("uniqueColumn(%q) = %q, want %q", msg, got, want)
		}
	}
}

func TestDSN(t *testing.T) {
	if got := dsn("data/todo.db"); got != "data/todo.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate" {
		t.Errorf("dsn() = %q", got)
	}
	if got := dsn("file:x.db?mode=rwc"); got != "file:x.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate" {
		t.Errorf("dsn() with query = %q", got)
	}
}
