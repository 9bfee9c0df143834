// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BalanceComputations counts balance computations by settlement mode and outcome.
var BalanceComputations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "circleledger",
	Name:      "balance_computations_total",
	Help:      "Balance computations by settlement mode and result.",
}, []string{"mode", "result"})

// BalanceDuration observes how long a balance computation takes, storage reads included.
var BalanceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "circleledger",
	Name:      "balance_computation_seconds",
	Help:      "Balance computation latency by settlement mode.",
	Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
}, []string{"mode"})

// BalanceEdges observes how many debts a computation emits.
var BalanceEdges = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "circleledger",
	Name:      "balance_edges",
	Help:      "Number of outstanding debts emitted per computation.",
	Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
}, []string{"mode"})

// ExpensesRecorded counts persisted expenses by split type.
var ExpensesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "circleledger",
	Name:      "expenses_recorded_total",
	Help:      "Expenses recorded by split type.",
}, []string{"split_type"})

// SplitRejections counts split validation failures by reason.
var SplitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "circleledger",
	Name:      "split_rejections_total",
	Help:      "Split calculations rejected by validation, by reason.",
}, []string{"reason"})

// SettlementsRecorded counts persisted settlements.
var SettlementsRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "circleledger",
	Name:      "settlements_recorded_total",
	Help:      "Settlements recorded.",
})
