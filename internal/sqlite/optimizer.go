package sqlite

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/wendler/internal/errors"
)

const optimizeInterval = time.Hour

// startDatabaseOptimizer runs optimize on start and then every optimizeInterval until ctx is done.
// See https://www.sqlite.org/pragma.html#pragma_optimize.
func (db *Database) startDatabaseOptimizer(ctx context.Context) {
	// 0x10002 analyzes tables that have never been analyzed, which a long-lived connection should do once.
	pragma := "PRAGMA optimize = 0x10002;"
	for {
		start := time.Now()
		if _, err := db.ReadWrite.ExecContext(ctx, pragma); err != nil {
			if ctx.Err() != nil {
				return
			}
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to optimize database",
				errors.SlogError(errors.Wrap(err, "optimize database", slog.String("pragma", pragma))))
		} else {
			db.logger.LogAttrs(ctx, slog.LevelDebug, "optimized database",
				slog.Duration("duration", time.Since(start)))
		}
		pragma = "PRAGMA optimize;"
		select {
		case <-ctx.Done():
			return
		case <-time.After(optimizeInterval):
		}
	}
}
