package sqlite

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// migrate applies the pending embedded migrations on the read-write connection.
func (db *Database) migrate(ctx context.Context) error {
	start := time.Now()

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db.ReadWrite, &migratesqlite.Config{}) //nolint:exhaustruct // defaults.
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	// m.Close would also close db.ReadWrite, only the source is released here.
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelWarn, "close migration source", slog.Any("error", closeErr))
		}
	}()

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
		slog.Duration("duration", time.Since(start)))
	return nil
}
