// Package main is the entry point for the to-do API server.
//
// The main package stays minimal. Its job is to:
//  1. Read configuration (environment, optionally a .env file)
//  2. Create the logger and make sure the database directory exists
//  3. Build and start the server
//
// All actual logic lives in internal/ packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/todo-api/internal/config"
	"github.com/sakif/todo-api/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	// A bootstrap logger reports config errors before LOG_LEVEL is known.
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("invalid configuration",
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// Log levels (least to most severe): Debug → Info → Warn → Error.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// === 3. DATABASE DIRECTORY ===
	// os.MkdirAll is a no-op when the directory already exists.
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(*cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
