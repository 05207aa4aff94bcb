// Package sqlite implements the repository interfaces on top of SQLite.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, so you need a C compiler and cross-compilation
// becomes painful. modernc.org/sqlite is a pure Go translation of SQLite.
//
// DATABASE/SQL OVERVIEW:
//   - sql.DB   a connection pool (NOT a single connection!)
//   - sql.Tx   a transaction pinned to one connection
//   - sql.Row  a single result row; sql.Rows multiple rows (must be closed)
//
// Every query in this package goes through the querier interface, which both
// *sql.DB and *sql.Tx satisfy. That lets the same repository methods run
// either directly on the pool or inside WithTx.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// Also registers the "sqlite" driver with database/sql.
	driver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/todo-api/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// querier is the subset of *sql.DB / *sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps the connection pool. A DB returned by New queries the pool; the
// DB handed to a WithTx callback queries its transaction.
type DB struct {
	conn *sql.DB
	q    querier
	inTx bool
}

// New opens (or creates) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/todo.db"  file-based database (persistent)
//   - ":memory:"      in-memory database (tests)
//
// Connection pragmas go into the DSN so that EVERY pooled connection gets
// them, not just the first one. Transactions begin IMMEDIATE: every WithTx
// caller reads then writes, and a deferred transaction that tries to upgrade
// its read lock while another writer holds the lock fails with SQLITE_BUSY
// without waiting on busy_timeout.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each connection to ":memory:" is a separate, empty database, so an
	// in-memory pool must be limited to a single connection.
	if isMemory(dbPath) {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent readers while a write is in progress. The setting
	// is persistent for file databases; in-memory ones simply report "memory".
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn, q: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
}

func isMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// WithTx runs fn inside a single transaction.
//
// Nested calls reuse the outer transaction: SQLite has no real nested
// transactions, and the services only need "all or nothing" per operation.
func (db *DB) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if db.inTx {
		return fn(db)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	if err := fn(&DB{conn: db.conn, q: tx, inTx: true}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("sqlite: rolling back: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// migrate creates the schema. CREATE ... IF NOT EXISTS makes it idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS todos (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT,
			completed   BOOLEAN NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_todos_user_id ON todos(user_id);
		CREATE INDEX IF NOT EXISTS idx_todos_user_completed ON todos(user_id, completed);
	`)
	if err != nil {
		return fmt.Errorf("creating todos table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err came from a UNIQUE constraint and,
// if so, which column. The driver's message names it:
// "constraint failed: UNIQUE constraint failed: users.email (2067)".
func isUniqueViolation(err error) (column string, ok bool) {
	var sqlErr *driver.Error
	if !errors.As(err, &sqlErr) || sqlErr.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return "", false
	}
	return uniqueColumn(sqlErr.Error()), true
}

func uniqueColumn(msg string) string {
	const marker = "UNIQUE constraint failed: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	if end := strings.IndexAny(rest, " ,)"); end >= 0 {
		rest = rest[:end]
	}
	if dot := strings.LastIndex(rest, "."); dot >= 0 {
		rest = rest[dot+1:]
	}
	return rest
}
