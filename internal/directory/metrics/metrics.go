package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the tenant directory.
type Metrics struct {
	Lookups     *prometheus.CounterVec
	Provisioned *prometheus.CounterVec
}

// New creates a new Metrics instance with all directory metrics registered.
func New() *Metrics {
	return &Metrics{
		Lookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "careport_directory_lookups_total",
			Help: "Total directory lookups by tenant kind and outcome",
		}, []string{"kind", "outcome"}),
		Provisioned: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "careport_tenants_provisioned_total",
			Help: "Total tenants provisioned by kind",
		}, []string{"kind"}),
	}
}

// ObserveLookup records one directory lookup and whether it hit.
func (m *Metrics) ObserveLookup(kind string, found bool) {
	outcome := "hit"
	if !found {
		outcome = "miss"
	}
	m.Lookups.WithLabelValues(kind, outcome).Inc()
}

// IncProvisioned records a newly provisioned tenant.
func (m *Metrics) IncProvisioned(kind string) {
	m.Provisioned.WithLabelValues(kind).Inc()
}
