// Package config reads application settings from environment variables.
//
// A .env file in the working directory (or its parent) is loaded first if
// present. Variables already set in the real environment always win, so
// deployments never need to touch the file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinSecretLength matches the minimum the token service accepts.
const MinSecretLength = 16

type Config struct {
	// Server
	Port   int
	DBPath string

	// Auth
	JWTSecret     string
	JWTExpiration time.Duration
	BcryptCost    int

	// CORS
	FrontendURL string

	// Ops
	LogLevel     slog.Level
	SeedDemoData bool
}

// Load reads the configuration and validates it.
func Load() (*Config, error) {
	loadEnvFile()

	var errs []error

	cfg := &Config{
		DBPath:      getEnv("DB_PATH", "data/todo.db"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:4200"),
	}

	var err error
	if cfg.Port, err = getEnvAsInt("PORT", 8080); err != nil {
		errs = append(errs, err)
	}
	if cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12); err != nil {
		errs = append(errs, err)
	}
	if cfg.JWTExpiration, err = getEnvAsDuration("JWT_EXPIRATION", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.SeedDemoData, err = getEnvAsBool("SEED_DEMO_DATA", false); err != nil {
		errs = append(errs, err)
	}
	if cfg.LogLevel, err = parseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that parsed but make no sense.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("config: JWT_SECRET is required"))
	} else if len(c.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("config: JWT_SECRET must be at least %d characters", MinSecretLength))
	}
	if c.JWTExpiration <= 0 {
		errs = append(errs, errors.New("config: JWT_EXPIRATION must be positive"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: PORT %d out of range", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("config: DB_PATH must not be empty"))
	}

	return errors.Join(errs...)
}

func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}
	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}
	_ = godotenv.Load(filepath.Join(parent, ".env"))
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer", key, v)
	}
	return n, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s=%q is not a boolean", key, v)
	}
	return b, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a duration (e.g. 24h, 90m)", key, v)
	}
	return d, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: LOG_LEVEL=%q is not one of debug, info, warn, error", s)
	}
	return level, nil
}
