// Package migrate owns the schema of the dashboard_storage table.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"orderdesk/internal/logx"
)

// MigrationsTable keeps the dashboard's versions apart from the backend's.
const MigrationsTable = "dashboard_schema_migrations"

//go:embed sql/*.sql
var migrationsFS embed.FS

// Apply brings the storage schema up to the latest version.
func Apply(ctx context.Context, dsn string) error {
	return withMigrator(ctx, dsn, "up", (*migrate.Migrate).Up)
}

// Rollback reverts every applied migration.
func Rollback(ctx context.Context, dsn string) error {
	return withMigrator(ctx, dsn, "down", (*migrate.Migrate).Down)
}

func withMigrator(ctx context.Context, dsn, direction string, step func(*migrate.Migrate) error) error {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open %s: %w", MigrationsTable, err)
	}
	defer conn.Close()
	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("reach storage database: %w", err)
	}

	source, err := iofs.New(migrationsFS, "sql")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	target, err := postgres.WithInstance(conn, &postgres.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return fmt.Errorf("prepare %s: %w", MigrationsTable, err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "pgx", target)
	if err != nil {
		return fmt.Errorf("prepare migrator: %w", err)
	}
	defer m.Close()
	m.Log = migrateLog{}

	switch err := step(m); {
	case errors.Is(err, migrate.ErrNoChange):
		logx.Debug().Str("direction", direction).Msg("storage schema already current")
	case err != nil:
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	logx.Info().Str("direction", direction).Uint("version", version).Bool("dirty", dirty).Msg("storage schema migrated")
	return nil
}

// migrateLog sends golang-migrate's progress lines to the debug log.
type migrateLog struct{}

func (migrateLog) Printf(format string, v ...any) {
	logx.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (migrateLog) Verbose() bool { return false }
