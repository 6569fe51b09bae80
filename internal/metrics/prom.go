package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "botcore"

// Registry holds every collector this package exports.
var Registry = prometheus.NewRegistry()

var (
	axisSettled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "axis",
			Name:      "settled_total",
			Help:      "Count of busy to idle transitions per axis.",
		},
		[]string{"axis"},
	)
	storageTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "tasks_total",
			Help:      "Count of finished storage tasks by kind and result.",
		},
		[]string{"task", "result"},
	)
	storageState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "slots",
			Help:      "Number of storage slots holding each content.",
		},
		[]string{"content"},
	)
	solveLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "firecontrol",
			Name:      "solve_duration_seconds",
			Help:      "Time taken to search for a firing solution.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
	)
	solveResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "firecontrol",
			Name:      "solutions_total",
			Help:      "Count of solver runs by validity.",
		},
		[]string{"valid"},
	)
)

var registerMetrics sync.Once

// Register all metrics.
func Register() {
	registerMetrics.Do(func() {
		Registry.MustRegister(axisSettled)
		Registry.MustRegister(storageTasks)
		Registry.MustRegister(storageState)
		Registry.MustRegister(solveLatency)
		Registry.MustRegister(solveResults)
	})
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordAxisSettled records a busy to idle transition on the named axis.
func RecordAxisSettled(axis string) {
	axisSettled.WithLabelValues(axis).Inc()
}

// RecordStorageTask records a storage task finishing with the given result.
func RecordStorageTask(task, result string) {
	storageTasks.WithLabelValues(task, result).Inc()
}

// RecordStorageSlots records how many slots hold each content.
func RecordStorageSlots(counts map[string]int) {
	for content, n := range counts {
		storageState.WithLabelValues(content).Set(float64(n))
	}
}

// RecordSolve records one solver run.
func RecordSolve(d time.Duration, valid bool) {
	solveLatency.Observe(d.Seconds())
	if valid {
		solveResults.WithLabelValues("true").Inc()
	} else {
		solveResults.WithLabelValues("false").Inc()
	}
}
