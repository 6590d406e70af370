// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package space

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status labels of action metrics.
const (
	StatusValid       = "valid"
	StatusInvalid     = "invalid"
	StatusRateLimited = "rate_limited"
	StatusError       = "error"
)

// ActionExecutions counts actions by kind and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var ActionExecutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wardrobe_action_executions_total",
		Help: "Total number of wardrobe actions processed",
	},
	[]string{"action", "status"},
)

// ActionDuration observes how long processing an action took.
var ActionDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "wardrobe_action_duration_seconds",
		Help:    "Wardrobe action processing duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"action"},
)

// ActionProblems counts the problems of invalid actions by kind.
var ActionProblems = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wardrobe_action_problems_total",
		Help: "Total number of problems reported by invalid actions",
	},
	[]string{"problem"},
)

// LoadedSpaces is the number of spaces held in memory.
var LoadedSpaces = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "wardrobe_spaces_loaded",
		Help: "Current number of spaces held in memory",
	},
)

// RegisterMetrics registers the space metrics with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ActionExecutions)
	reg.MustRegister(ActionDuration)
	reg.MustRegister(ActionProblems)
	reg.MustRegister(LoadedSpaces)
}

// RecordAction counts one processed action.
func RecordAction(kind, status string) {
	ActionExecutions.WithLabelValues(kind, status).Inc()
}

// RecordActionDuration records the processing time of an action.
func RecordActionDuration(kind string, d time.Duration) {
	ActionDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordProblem counts a problem of an invalid action.
func RecordProblem(kind string) {
	ActionProblems.WithLabelValues(kind).Inc()
}
