// Package resolver decides which tenant, if any, owns a candidate subdomain
// label. Lookup strategies are tried in a fixed order with short-circuit on
// first success; every failure falls through. Resolution never caches and
// never surfaces an error to the request path: an unresolved label just
// means the normal, non-tenant page is served.
package resolver

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	resolvermetrics "careport/internal/resolver/metrics"
	id "careport/pkg/domain"
)

// Kind discriminates tenant bindings.
type Kind string

const (
	KindHospital Kind = "hospital"
	KindDoctor   Kind = "doctor"
)

// Binding associates a subdomain label with the tenant that owns it.
type Binding struct {
	Kind       Kind
	HospitalID id.HospitalID
	DoctorSlug id.DoctorSlug
}

// RoutePrefix is the canonical internal route prefix for the tenant kind.
func (b Binding) RoutePrefix() string {
	if b.Kind == KindHospital {
		return "hospital-site"
	}
	return "doctor-site"
}

// TenantID is the tenant identifier as it appears in rewrite targets.
func (b Binding) TenantID() string {
	if b.Kind == KindHospital {
		return b.HospitalID.String()
	}
	return b.DoctorSlug.String()
}

// Strategy is a single tenant lookup: label in, binding out. A (zero, false,
// nil) return is a clean miss; an error is a degraded lookup. Both cause
// fall-through to the next strategy.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, label string) (Binding, bool, error)
}

// Chain tries strategies in construction order and stops at the first hit.
//
// Ordering matters: hospital subdomains are explicitly provisioned, doctor
// slugs are auto-derived and more collision-prone, so hospitals go first to
// keep a provisioned subdomain from being shadowed.
type Chain struct {
	strategies []Strategy
	logger     *slog.Logger
	metrics    *resolvermetrics.Metrics
	tracer     trace.Tracer
}

// Option configures a Chain.
type Option func(*Chain)

// WithLogger sets the logger for degraded-lookup warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) { c.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *resolvermetrics.Metrics) Option {
	return func(c *Chain) { c.metrics = m }
}

// NewChain builds a resolver chain over the given strategies.
func NewChain(strategies []Strategy, opts ...Option) *Chain {
	c := &Chain{
		strategies: strategies,
		tracer:     otel.Tracer("careport/resolver"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve runs the chain for one label. The boolean reports whether any
// strategy matched; resolution itself cannot fail.
func (c *Chain) Resolve(ctx context.Context, label string) (Binding, bool) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "resolver.Resolve",
		trace.WithAttributes(attribute.String("tenant.label", label)))
	defer span.End()

	for _, s := range c.strategies {
		binding, ok, err := s.Resolve(ctx, label)
		if err != nil {
			// Degraded lookup is non-fatal: an erroneous rewrite is worse
			// than falling through to the normal page.
			if c.metrics != nil {
				c.metrics.IncLookupError(s.Name())
			}
			if c.logger != nil {
				c.logger.WarnContext(ctx, "tenant lookup degraded",
					"strategy", s.Name(),
					"label", label,
					"error", err,
				)
			}
			continue
		}
		if ok {
			span.SetAttributes(
				attribute.String("tenant.kind", string(binding.Kind)),
				attribute.String("tenant.id", binding.TenantID()),
			)
			if c.metrics != nil {
				c.metrics.ObserveResolution(string(binding.Kind), start)
			}
			return binding, true
		}
	}

	span.SetAttributes(attribute.String("tenant.kind", "unresolved"))
	if c.metrics != nil {
		c.metrics.ObserveResolution("unresolved", start)
	}
	return Binding{}, false
}
