package workflow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the Prometheus-backed observability surface attached to a
// workflow tree via WithMetrics (spec.md §10). All series are namespaced
// "groundswell_"; a nil *Metrics is always safe to call through since every
// instrumentation site guards with a nil check before using it.
type Metrics struct {
	stepLatency  *prometheus.HistogramVec
	taskTotal    *prometheus.CounterVec
	taskFailures *prometheus.CounterVec
	reflection   *prometheus.CounterVec
	treeSize     prometheus.Gauge

	enabled bool
}

// NewMetrics creates and registers a Metrics collector against registry. A
// nil registry falls back to prometheus.DefaultRegisterer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		enabled: true,
		stepLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "groundswell",
			Name:      "step_latency_ms",
			Help:      "Step execution duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"step"}),
		taskTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "groundswell",
			Name:      "tasks_total",
			Help:      "Cumulative count of tasks run, labeled by outcome",
		}, []string{"task", "outcome"}),
		taskFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "groundswell",
			Name:      "concurrent_task_child_failures_total",
			Help:      "Cumulative count of failed children in concurrent tasks",
		}, []string{"task"}),
		reflection: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "groundswell",
			Name:      "reflection_attempts_total",
			Help:      "Cumulative count of reflection attempts, labeled by level and outcome",
		}, []string{"level", "outcome"}),
		treeSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "groundswell",
			Name:      "tree_size",
			Help:      "Number of nodes in the most recently snapshotted workflow tree",
		}),
	}
}

// ObserveStep records a step's execution duration.
func (m *Metrics) ObserveStep(name string, d time.Duration) {
	if m == nil || !m.enabled {
		return
	}
	m.stepLatency.WithLabelValues(name).Observe(float64(d.Milliseconds()))
}

// IncTask increments the task counter for the given outcome ("completed" or
// "failed").
func (m *Metrics) IncTask(name, outcome string) {
	if m == nil || !m.enabled {
		return
	}
	m.taskTotal.WithLabelValues(name, outcome).Inc()
}

// IncConcurrentTaskFailures adds n to the failed-children counter for a
// concurrent task.
func (m *Metrics) IncConcurrentTaskFailures(name string, n int) {
	if m == nil || !m.enabled {
		return
	}
	m.taskFailures.WithLabelValues(name).Add(float64(n))
}

// IncReflectionAttempt increments the reflection-attempt counter for the
// given level and outcome ("success" or "failure").
func (m *Metrics) IncReflectionAttempt(level ReflectionLevel, outcome string) {
	if m == nil || !m.enabled {
		return
	}
	m.reflection.WithLabelValues(string(level), outcome).Inc()
}

// SetTreeSize records the size of a workflow tree, typically called after a
// treeUpdated event.
func (m *Metrics) SetTreeSize(n int) {
	if m == nil || !m.enabled {
		return
	}
	m.treeSize.Set(float64(n))
}

// CountTree returns the number of nodes in the subtree rooted at root,
// including root itself.
func CountTree(root *Node) int {
	if root == nil {
		return 0
	}
	n := 1
	for _, c := range root.Children {
		n += CountTree(c)
	}
	return n
}
