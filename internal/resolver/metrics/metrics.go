package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the tenant resolver.
// Tracks resolution outcomes and lookup degradation per strategy.
type Metrics struct {
	Resolutions        *prometheus.CounterVec
	LookupErrors       *prometheus.CounterVec
	ResolutionDuration prometheus.Histogram
}

// New creates a new Metrics instance with all resolver metrics registered.
func New() *Metrics {
	return &Metrics{
		Resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "careport_tenant_resolutions_total",
			Help: "Total tenant resolutions by outcome (hospital, doctor, unresolved)",
		}, []string{"outcome"}),
		LookupErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "careport_tenant_lookup_errors_total",
			Help: "Total degraded tenant lookups by strategy",
		}, []string{"strategy"}),
		ResolutionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "careport_tenant_resolution_duration_seconds",
			Help:    "Duration of full resolver chain runs (edge critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveResolution records one completed chain run and its outcome.
// Call with time.Now() captured at the start of the run.
func (m *Metrics) ObserveResolution(outcome string, start time.Time) {
	m.Resolutions.WithLabelValues(outcome).Inc()
	m.ResolutionDuration.Observe(time.Since(start).Seconds())
}

// IncLookupError records a degraded lookup for one strategy.
func (m *Metrics) IncLookupError(strategy string) {
	m.LookupErrors.WithLabelValues(strategy).Inc()
}
