package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the declaration module.
type Metrics struct {
	// Issued declarations by scenario id
	Issued *prometheus.CounterVec

	// Validation rejections by violation kind
	Rejections *prometheus.CounterVec

	// Narrative assembly latency
	AssembleLatency prometheus.Histogram

	// Document cache lookups by result
	CacheLookups *prometheus.CounterVec
}

// New registers the declaration metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the declaration metrics with reg. Tests pass a
// fresh registry to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Issued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ahliwaris_declarations_issued_total",
			Help: "Total declarations issued by scenario",
		}, []string{"scenario"}),

		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ahliwaris_declaration_rejections_total",
			Help: "Total validation violations by kind",
		}, []string{"kind"}),

		AssembleLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ahliwaris_declaration_assemble_duration_seconds",
			Help:    "Duration of narrative assembly",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ahliwaris_declaration_document_cache_total",
			Help: "Document cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "error"
	}
}

// IncrementIssued records an issued declaration.
func (m *Metrics) IncrementIssued(scenario string) {
	if m != nil {
		m.Issued.WithLabelValues(scenario).Inc()
	}
}

// IncrementRejection records one violation of the given kind.
func (m *Metrics) IncrementRejection(kind string) {
	if m != nil {
		m.Rejections.WithLabelValues(kind).Inc()
	}
}

// ObserveAssembleLatency records how long assembly took.
func (m *Metrics) ObserveAssembleLatency(d time.Duration) {
	if m != nil {
		m.AssembleLatency.Observe(d.Seconds())
	}
}

// IncrementCacheLookup records a document cache lookup.
func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}
