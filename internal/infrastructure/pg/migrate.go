package pg

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgdriver "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var clientStateMigrations embed.FS

const (
	migrationSource = "client_state"
	migrationsTable = "salon_client_schema_migrations"
)

// RunMigrations brings the client state schema up to date and returns the
// applied version.
func RunMigrations(ctx context.Context, db *DB, log *zap.Logger) (uint, error) {
	if log == nil {
		log = zap.NewNop()
	}
	src, err := iofs.New(clientStateMigrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("client state migrations: %w", err)
	}
	sqldb, err := sql.Open("pgx", db.Pool.Config().ConnString())
	if err != nil {
		return 0, fmt.Errorf("open sql db: %w", err)
	}
	defer sqldb.Close()
	if err := waitReady(ctx, sqldb, 30, 500*time.Millisecond); err != nil {
		return 0, err
	}
	driver, err := pgdriver.WithInstance(sqldb, &pgdriver.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return 0, fmt.Errorf("migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance(migrationSource, src, "postgres", driver)
	if err != nil {
		return 0, fmt.Errorf("migrate init: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate %s up: %w", migrationSource, err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("migrate version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("client state schema dirty at version %d", version)
	}
	log.Info("pg.migrated", zap.String("source", migrationSource), zap.Uint("version", version))
	return version, nil
}

// waitReady pings until the server accepts connections.
func waitReady(ctx context.Context, sqldb *sql.DB, attempts int, every time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = sqldb.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping db: %w", ctx.Err())
		case <-time.After(every):
		}
	}
	return fmt.Errorf("ping db: %w", err)
}
