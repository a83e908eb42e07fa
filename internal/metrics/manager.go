// Package metrics defines the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds every collector. Create one per registry.
type Manager struct {
	// counters
	CounterRequests  *prometheus.CounterVec
	CounterWorkouts  *prometheus.CounterVec
	CounterDeloads   *prometheus.CounterVec
	CounterPanics    prometheus.Counter
	CounterPRsBeaten *prometheus.CounterVec

	// gauges
	GaugeTrainingMax *prometheus.GaugeVec

	// histograms
	HistogramRequestDuration *prometheus.HistogramVec
}

// NewTestManagerAndRegistry returns a manager on a fresh registry so that tests do not collide.
func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("wendler", "test", reg), reg
}

// NewManager registers the collectors on reg.
func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "The total number of handled HTTP requests",
	}, []string{"method", "status"})
	counterWorkouts := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "workouts_total",
		Help:      "The total number of recorded workouts by outcome",
	}, []string{"lift", "outcome"})
	counterDeloads := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "deloads_total",
		Help:      "The total number of failed workouts by deload kind",
	}, []string{"lift", "kind"})
	counterPanics := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handler_panics_total",
		Help:      "The total number of recovered handler panics",
	})
	counterPRsBeaten := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "estimated_records_total",
		Help:      "The total number of workouts that beat the highest estimated one-rep max",
	}, []string{"lift"})

	gaugeTrainingMax := factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "training_max",
		Help:      "Current training max per lift",
	}, []string{"lift"})

	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})

	return &Manager{
		CounterRequests:          counterRequests,
		CounterWorkouts:          counterWorkouts,
		CounterDeloads:           counterDeloads,
		CounterPanics:            counterPanics,
		CounterPRsBeaten:         counterPRsBeaten,
		GaugeTrainingMax:         gaugeTrainingMax,
		HistogramRequestDuration: histogramRequestDuration,
	}
}
