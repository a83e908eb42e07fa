package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/myrjola/wendler/internal/e2etest"
	"github.com/myrjola/wendler/internal/errors"
	"github.com/myrjola/wendler/internal/logging"
	"github.com/myrjola/wendler/internal/workout"
)

// checkAPI reads the overview and the history without changing anything on the server.
func checkAPI(ctx context.Context, client *e2etest.Client) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	var prescriptions []workout.Prescription
	if err := client.DoJSON(ctx, http.MethodGet, "/api/overview", nil, http.StatusOK, &prescriptions); err != nil {
		return 0, fmt.Errorf("get overview: %w", err)
	}
	if err := client.DoJSON(ctx, http.MethodGet, "/api/workouts?limit=1", nil, http.StatusOK, nil); err != nil {
		return 0, fmt.Errorf("get history: %w", err)
	}
	return len(prescriptions), nil
}

func main() {
	logger := logging.NewTextLogger(os.Stdout, slog.LevelInfo)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	client := e2etest.NewClient(url)
	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", errors.SlogError(err))
		os.Exit(1)
	}
	lifts, err := checkAPI(ctx, client)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error checking api", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Int("lifts", lifts),
		slog.Duration("duration", time.Since(start)))
}
