// Package metrics provides Prometheus metrics for the progression engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the Prometheus collectors for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Engine activity
	statComputations prometheus.Counter
	questEvaluations prometheus.Counter
	tierSnapshots    prometheus.Counter
	computeLatency   prometheus.Histogram

	// Ledger outcomes
	unlocksGranted   prometheus.Counter
	unlocksDuplicate prometheus.Counter
	ledgerErrors     prometheus.Counter
	ledgerLatency    prometheus.Histogram

	// Claims by outcome (claimed, already_claimed, not_completed, not_found)
	questClaims *prometheus.CounterVec

	// Scale
	eventsStored prometheus.Gauge
	xpAwarded    prometheus.Counter
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the subsystem for all metrics.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets custom buckets for the latency histograms.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithPrometheusRegistry sets the registry metrics are registered on.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// Global metrics manager instance on a custom registry, so the default
// Go runtime collectors do not leak into the engine's exposition.
var globalManager *Manager                    //nolint:gochecknoglobals // singleton metrics manager
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "grindstone",
		subsystem:        "progression",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.statComputations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "stat_computations_total",
		Help: "Total number of stat sheet computations",
	})
	m.questEvaluations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "quest_evaluations_total",
		Help: "Total number of quest list evaluations",
	})
	m.tierSnapshots = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "tier_snapshots_total",
		Help: "Total number of tier classifications",
	})
	m.computeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "compute_latency_milliseconds",
		Help:    "Latency of derived-state computations in milliseconds",
		Buckets: m.histogramBuckets,
	})

	m.unlocksGranted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "unlocks_granted_total",
		Help: "Total number of fresh unlock records created",
	})
	m.unlocksDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "unlocks_duplicate_total",
		Help: "Total number of grants that found an existing record",
	})
	m.ledgerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "ledger_errors_total",
		Help: "Total number of ledger storage failures",
	})
	m.ledgerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "ledger_latency_milliseconds",
		Help:    "Latency of ledger grant operations in milliseconds",
		Buckets: m.histogramBuckets,
	})

	m.questClaims = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "quest_claims_total",
		Help: "Total number of quest claim attempts by outcome",
	}, []string{"outcome"})

	m.eventsStored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_stored",
		Help: "Current number of workout events held by the event store",
	})
	m.xpAwarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "xp_awarded_total",
		Help: "Total experience points paid out",
	})
}

// Package-level helpers on the global manager.

// RecordStatComputation counts one stat sheet computation.
func RecordStatComputation() {
	globalManager.statComputations.Inc()
}

// RecordQuestEvaluation counts one quest list evaluation.
func RecordQuestEvaluation() {
	globalManager.questEvaluations.Inc()
}

// RecordTierSnapshot counts one tier classification.
func RecordTierSnapshot() {
	globalManager.tierSnapshots.Inc()
}

// RecordComputeLatency observes a derived-state computation latency.
func RecordComputeLatency(latencyMs float64) {
	globalManager.computeLatency.Observe(latencyMs)
}

// RecordGrant counts a ledger grant outcome.
func RecordGrant(granted bool) {
	if granted {
		globalManager.unlocksGranted.Inc()
	} else {
		globalManager.unlocksDuplicate.Inc()
	}
}

// RecordLedgerError counts a ledger storage failure.
func RecordLedgerError() {
	globalManager.ledgerErrors.Inc()
}

// RecordLedgerLatency observes a grant latency.
func RecordLedgerLatency(latencyMs float64) {
	globalManager.ledgerLatency.Observe(latencyMs)
}

// RecordQuestClaim counts a claim attempt by outcome.
func RecordQuestClaim(outcome string) {
	globalManager.questClaims.WithLabelValues(outcome).Inc()
}

// UpdateEventsStored sets the stored-event gauge.
func UpdateEventsStored(count int) {
	globalManager.eventsStored.Set(float64(count))
}

// RecordXPAwarded adds paid-out experience points.
func RecordXPAwarded(xp int) {
	globalManager.xpAwarded.Add(float64(xp))
}

// GetRegistry returns the custom registry for exposition.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
