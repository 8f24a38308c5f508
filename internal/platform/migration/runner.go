// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration provides a thin wrapper around golang-migrate for
// running database schema migrations.
//
// # Architecture
//
// The API server applies pending migrations at startup through [RunUp].
// The hearthctl tool drives the same [Runner] to inspect or roll back.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Runner owns one golang-migrate instance. Close it when done.
type Runner struct {
	migrator *migrate.Migrate
	logger   *slog.Logger
}

// Status is the schema version recorded in the database.
type Status struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
	// Empty is true when no migration has ever been applied.
	Empty bool `json:"empty"`
}

// NewRunner opens the migration source and the target database.
//
// # Parameters
//   - dsn: A libpq-compatible DSN or postgres:// URL.
//   - migrationsPath: Filesystem path to the migrations directory.
//   - logger: Structured logger for migration events.
func NewRunner(dsn, migrationsPath string, logger *slog.Logger) (*Runner, error) {
	migrator, err := migrate.New("file://"+migrationsPath, convertToPgx5DSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("migration: failed to initialize: %w", err)
	}

	migrator.Log = &migrateLogger{logger: logger}

	return &Runner{migrator: migrator, logger: logger}, nil
}

// Close releases the source and database handles.
func (runner *Runner) Close() {
	sourceError, dbError := runner.migrator.Close()
	if sourceError != nil {
		runner.logger.Error("migration_source_close_failed", slog.Any("error", sourceError))
	}
	if dbError != nil {
		runner.logger.Error("migration_db_close_failed", slog.Any("error", dbError))
	}
}

// Version reports the current schema version.
func (runner *Runner) Version() (Status, error) {
	version, dirty, err := runner.migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{Empty: true}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("migration: failed to get current version: %w", err)
	}
	return Status{Version: version, Dirty: dirty}, nil
}

// Up applies every pending migration. A database already at the latest
// version is not an error.
func (runner *Runner) Up() error {
	current, err := runner.cleanVersion()
	if err != nil {
		return err
	}

	runner.logger.Info("migration_started", slog.Int("current_version", int(current.Version)))

	if err := runner.migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			runner.logger.Info("migration_already_up_to_date")
			return nil
		}
		return fmt.Errorf("migration: up failed: %w", err)
	}

	next, _ := runner.Version()
	runner.logger.Info("migration_successful",
		slog.Int("from_version", int(current.Version)),
		slog.Int("to_version", int(next.Version)),
	)

	return nil
}

// Down rolls back the given number of migrations.
func (runner *Runner) Down(steps int) error {
	if steps < 1 {
		return fmt.Errorf("migration: steps must be positive, got %d", steps)
	}

	current, err := runner.cleanVersion()
	if err != nil {
		return err
	}

	if err := runner.migrator.Steps(-steps); err != nil {
		return fmt.Errorf("migration: down failed: %w", err)
	}

	next, _ := runner.Version()
	runner.logger.Info("migration_rolled_back",
		slog.Int("from_version", int(current.Version)),
		slog.Int("to_version", int(next.Version)),
	)

	return nil
}

// cleanVersion refuses to proceed from a dirty schema.
func (runner *Runner) cleanVersion() (Status, error) {
	status, err := runner.Version()
	if err != nil {
		return Status{}, err
	}
	if status.Dirty {
		return Status{}, fmt.Errorf("migration: database is in a dirty state at version %d (manual intervention required)", status.Version)
	}
	return status, nil
}

// RunUp applies all pending UP migrations and closes the runner.
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	runner, err := NewRunner(dsn, migrationsPath, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	return runner.Up()
}

// convertToPgx5DSN ensures the DSN uses the pgx5:// scheme required by golang-migrate/v4.
func convertToPgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger adapts golang-migrate's logger interface to slog.
type migrateLogger struct {
	logger  *slog.Logger
	verbose bool
}

// Printf implements migrate.Logger.
func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Verbose implements migrate.Logger.
func (l *migrateLogger) Verbose() bool {
	return l.verbose
}
