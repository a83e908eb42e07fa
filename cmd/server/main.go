package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/myrjola/wendler/internal/envstruct"
	"github.com/myrjola/wendler/internal/errors"
	"github.com/myrjola/wendler/internal/logging"
	"github.com/myrjola/wendler/internal/metrics"
	"github.com/myrjola/wendler/internal/program"
	"github.com/myrjola/wendler/internal/sqlite"
	"github.com/myrjola/wendler/internal/workout"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type application struct {
	logger         *slog.Logger
	metrics        *metrics.Manager
	registry       *prometheus.Registry
	workoutService *workout.Service
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"WENDLER_ADDR" envDefault:"localhost:8081"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"WENDLER_SQLITE_URL" envDefault:"./wendler.sqlite3"`
	// ProgramPath is the optional YAML program file. The built-in program is used when empty.
	ProgramPath string `env:"WENDLER_PROGRAM_PATH" envDefault:""`
	// RoundingIncrement overrides the program's rounding increment when not negative.
	RoundingIncrement float64 `env:"WENDLER_ROUNDING_INCREMENT" envDefault:"-1"`
}

type logConfig struct {
	Level slog.Level `env:"WENDLER_LOG_LEVEL" envDefault:"info"`
}

// newLogger builds the application logger from the log configuration. A malformed configuration is logged and the
// logger falls back to the info level.
func newLogger(w io.Writer, lookupEnv func(string) (string, bool)) *slog.Logger {
	var lc logConfig
	err := envstruct.Populate(&lc, lookupEnv)
	if err != nil {
		lc.Level = slog.LevelInfo
	}
	logger := logging.NewTextLogger(w, lc.Level)
	if err != nil {
		logger.LogAttrs(context.Background(), slog.LevelWarn, "invalid log configuration, using info",
			errors.SlogError(err))
	}
	return logger
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	prog, err := loadProgram(cfg)
	if err != nil {
		return errors.Wrap(err, "load program", slog.String("path", cfg.ProgramPath))
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close db", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct // defaults.
	)
	m := metrics.NewManager("wendler", "server", registry)

	app := application{
		logger:         logger,
		metrics:        m,
		registry:       registry,
		workoutService: workout.NewService(db, logger, prog, m),
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func loadProgram(cfg config) (program.Program, error) {
	prog := program.Default()
	if cfg.ProgramPath != "" {
		var err error
		if prog, err = program.Load(cfg.ProgramPath); err != nil {
			return program.Program{}, err //nolint:wrapcheck // wrapped by caller.
		}
	}
	if cfg.RoundingIncrement >= 0 {
		prog.RoundingIncrement = cfg.RoundingIncrement
	}
	return prog, nil
}

func main() {
	ctx := context.Background()

	logger := newLogger(os.Stdout, os.LookupEnv)

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
