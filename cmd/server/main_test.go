package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func Test_newLogger(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		wantDebug   bool
		wantWarning bool
	}{
		{name: "default", level: "", wantDebug: false, wantWarning: false},
		{name: "debug", level: "debug", wantDebug: true, wantWarning: false},
		{name: "malformed level", level: "loud", wantDebug: false, wantWarning: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, func(key string) (string, bool) {
				if key == "WENDLER_LOG_LEVEL" && tt.level != "" {
					return tt.level, true
				}
				return "", false
			})
			if got := logger.Enabled(context.Background(), slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if !logger.Enabled(context.Background(), slog.LevelInfo) {
				t.Errorf("info disabled")
			}
			out := buf.String()
			if got := strings.Contains(out, "invalid log configuration"); got != tt.wantWarning {
				t.Errorf("warning logged = %v, want %v: %s", got, tt.wantWarning, out)
			}
			if tt.wantWarning && !strings.Contains(out, "WENDLER_LOG_LEVEL") {
				t.Errorf("warning %q does not name the variable", out)
			}
		})
	}
}
