package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationDirection selects the goose command run by Migrate.
type MigrationDirection string

const (
	MigrateUp     MigrationDirection = "up"
	MigrateDown   MigrationDirection = "down"
	MigrateStatus MigrationDirection = "status"
)

// Migrate applies the embedded schema migrations through a database/sql
// handle on the pool's connection config.
func (db *DB) Migrate(ctx context.Context, direction MigrationDirection) error {
	sqlDB := stdlib.OpenDB(*db.Pool.Config().ConnConfig)
	defer sqlDB.Close()

	return RunMigrations(ctx, sqlDB, direction, db.logger)
}

func RunMigrations(ctx context.Context, sqlDB *sql.DB, direction MigrationDirection, logger *slog.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	var err error
	switch direction {
	case MigrateUp:
		err = goose.UpContext(ctx, sqlDB, "migrations")
	case MigrateDown:
		err = goose.DownContext(ctx, sqlDB, "migrations")
	case MigrateStatus:
		err = goose.StatusContext(ctx, sqlDB, "migrations")
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	logger.Info("database migrations complete",
		slog.String("direction", string(direction)),
		slog.Int64("version", version),
	)
	return nil
}

// gooseLogger routes goose output through slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrations"))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrations"))
}
