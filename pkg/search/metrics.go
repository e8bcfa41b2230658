package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "richest_search_runs_total",
		Help: "Total searches by outcome (done, failed, superseded)",
	}, []string{"outcome"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "richest_search_duration_seconds",
		Help:    "Search duration in seconds",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	memberFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "richest_search_member_failures_total",
		Help: "Total members skipped because their inventory could not be read",
	})

	inFlightRuns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "richest_search_in_flight",
		Help: "Searches currently running",
	})
)
