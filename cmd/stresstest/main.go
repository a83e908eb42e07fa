package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/myrjola/wendler/internal/e2etest"
	"github.com/myrjola/wendler/internal/errors"
	"github.com/myrjola/wendler/internal/logging"
	"github.com/myrjola/wendler/internal/workout"
	"golang.org/x/sync/errgroup"
)

const (
	scenarioTimeout         = 30 * time.Second
	maxConcurrentOperations = 20
	requestsPerLift         = 50
	successRateThreshold    = 95.0
	expectedArgsCount       = 2
	percentageMultiplier    = 100
)

type stats struct {
	total  atomic.Int64
	failed atomic.Int64
}

func (s *stats) successRate() float64 {
	total := s.total.Load()
	if total == 0 {
		return 0
	}
	return float64(total-s.failed.Load()) / float64(total) * percentageMultiplier
}

// readScenario hammers the read endpoints of every lift concurrently. It never records workouts so that it is safe
// to run against a live trainee's data.
func readScenario(ctx context.Context, client *e2etest.Client, logger *slog.Logger, s *stats) error {
	ctx, cancel := context.WithTimeout(ctx, scenarioTimeout)
	defer cancel()

	var lifts []workout.Lift
	if err := client.DoJSON(ctx, http.MethodGet, "/api/lifts", nil, http.StatusOK, &lifts); err != nil {
		return fmt.Errorf("list lifts: %w", err)
	}
	if len(lifts) == 0 {
		return errors.New("no lifts set up")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)
	for _, l := range lifts {
		for i := range requestsPerLift {
			path := "/api/lifts/" + l.Name + "/prescription"
			if i%2 == 1 {
				path = "/api/overview"
			}
			g.Go(func() error {
				s.total.Add(1)
				if err := client.DoJSON(gctx, http.MethodGet, path, nil, http.StatusOK, nil); err != nil {
					s.failed.Add(1)
					logger.LogAttrs(gctx, slog.LevelWarn, "request failed", slog.String("path", path),
						errors.SlogError(err))
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("wait for requests: %w", err)
	}
	return nil
}

func main() {
	logger := logging.NewTextLogger(os.Stdout, slog.LevelInfo)
	ctx := context.Background()

	if len(os.Args) != expectedArgsCount {
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname>")
		os.Exit(1)
	}

	hostname := os.Args[1]
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

	var s stats
	start := time.Now()
	if err := readScenario(ctx, client, logger, &s); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "scenario failed", errors.SlogError(err))
		os.Exit(1)
	}

	rate := s.successRate()
	logger.LogAttrs(ctx, slog.LevelInfo, "stress test done",
		slog.Int64("requests", s.total.Load()),
		slog.Int64("failed", s.failed.Load()),
		slog.Float64("success_rate", rate),
		slog.Duration("duration", time.Since(start)))
	if rate < successRateThreshold {
		os.Exit(1)
	}
}
