package logger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sweep metrics. Registered on the default registry via promauto; the host
// process decides whether to expose them.

var (
	// RollingStatsComputed counts distinct windows actually computed by a cache build
	RollingStatsComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_rolling_stats_computed_total",
			Help: "Number of distinct rolling statistic windows computed",
		},
		[]string{"kind"},
	)

	// RollingStatsReused counts sweep blocks served from an already computed window
	RollingStatsReused = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_rolling_stats_reused_total",
			Help: "Number of sweep blocks served by a duplicate window",
		},
		[]string{"kind"},
	)

	SweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sweep_duration_seconds",
			Help:    "Duration of an indicator sweep or exit scan in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"family"},
	)

	ExitSignalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_exit_signals_total",
			Help: "Number of exit signals emitted by the exit scanner",
		},
		[]string{"rule"},
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors",
		},
		[]string{"service", "error_type"},
	)
)
