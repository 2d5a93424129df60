package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"github.com/vncsmyrnk/accounts/internal/adapters/repository/postgres/migrations"
)

var setupGoose = gooseSetup("postgres")

// gooseSetup configures goose once; every later call reports the first result.
func gooseSetup(dialect string) func() error {
	return sync.OnceValue(func() error {
		goose.SetBaseFS(migrations.FS)
		return goose.SetDialect(dialect)
	})
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *sql.DB) error {
	return RunMigrations(ctx, db, "up")
}

// RunMigrations runs a goose command (up, down, status, version, reset, ...)
// against the embedded migrations.
func RunMigrations(ctx context.Context, db *sql.DB, command string, args ...string) error {
	if err := setupGoose(); err != nil {
		return fmt.Errorf("failed to configure migrations: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}
