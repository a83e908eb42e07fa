package testhelpers

import (
	"io"
	"log/slog"

	"github.com/myrjola/wendler/internal/logging"
)

// NewLogger creates a new logger with the given log sink such as testhelpers.Writer.
func NewLogger(logSink io.Writer) *slog.Logger {
	return logging.NewTextLogger(logSink, slog.LevelDebug)
}
