// Package directory is the tenant registry: hospitals keyed by subdomain,
// doctors keyed by slug. The resolver queries it on every candidate-tenant
// request, and admins provision new tenants through it.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"careport/internal/audit"
	"careport/internal/directory/metrics"
	"careport/internal/directory/models"
	id "careport/pkg/domain"
	dErrors "careport/pkg/domain-errors"
	"careport/pkg/platform/sentinel"
	"careport/pkg/requestcontext"
)

// HospitalStore persists hospital tenants.
type HospitalStore interface {
	Create(ctx context.Context, h *models.Hospital) error
	FindByID(ctx context.Context, hospitalID id.HospitalID) (*models.Hospital, error)
	FindBySubdomain(ctx context.Context, subdomain string) (*models.Hospital, error)
}

// DoctorStore persists doctor tenants.
type DoctorStore interface {
	Create(ctx context.Context, d *models.Doctor) error
	FindBySlug(ctx context.Context, slug id.DoctorSlug) (*models.Doctor, error)
}

// Service owns tenant lookups and provisioning.
type Service struct {
	hospitals HospitalStore
	doctors   DoctorStore
	reserved  map[string]struct{}
	audit     *audit.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a logger for operational warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithAudit sets the audit publisher for provisioning events.
func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

// WithMetrics sets the directory metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService builds the directory. Reserved labels can never be claimed as
// a hospital subdomain or doctor slug; they belong to the platform itself.
func NewService(hospitals HospitalStore, doctors DoctorStore, reservedLabels []string, opts ...Option) *Service {
	reserved := make(map[string]struct{}, len(reservedLabels))
	for _, label := range reservedLabels {
		reserved[strings.ToLower(label)] = struct{}{}
	}
	s := &Service{
		hospitals: hospitals,
		doctors:   doctors,
		reserved:  reserved,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LookupHospitalBySubdomain answers the resolver's first strategy. Only
// active hospitals route; a suspended tenant is a clean miss.
func (s *Service) LookupHospitalBySubdomain(ctx context.Context, subdomain string) (*models.Hospital, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	h, err := s.hospitals.FindBySubdomain(ctx, subdomain)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.observeLookup("hospital", false)
			return nil, dErrors.New(dErrors.CodeNotFound, "no hospital on that subdomain")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hospital lookup failed")
	}
	if h.Status != models.TenantStatusActive {
		s.observeLookup("hospital", false)
		return nil, dErrors.New(dErrors.CodeNotFound, "no hospital on that subdomain")
	}
	s.observeLookup("hospital", true)
	return h, nil
}

// LookupDoctorBySlug answers the resolver's second strategy.
func (s *Service) LookupDoctorBySlug(ctx context.Context, slug string) (*models.Doctor, error) {
	parsed, err := id.ParseDoctorSlug(slug)
	if err != nil {
		s.observeLookup("doctor", false)
		return nil, dErrors.New(dErrors.CodeNotFound, "no doctor with that slug")
	}
	d, err := s.doctors.FindBySlug(ctx, parsed)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.observeLookup("doctor", false)
			return nil, dErrors.New(dErrors.CodeNotFound, "no doctor with that slug")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "doctor lookup failed")
	}
	if d.Status != models.TenantStatusActive {
		s.observeLookup("doctor", false)
		return nil, dErrors.New(dErrors.CodeNotFound, "no doctor with that slug")
	}
	s.observeLookup("doctor", true)
	return d, nil
}

// FindHospital fetches a hospital by ID for microsite rendering.
func (s *Service) FindHospital(ctx context.Context, hospitalID id.HospitalID) (*models.Hospital, error) {
	h, err := s.hospitals.FindByID(ctx, hospitalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "hospital not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hospital lookup failed")
	}
	return h, nil
}

// FindDoctor fetches a doctor by slug for microsite rendering.
func (s *Service) FindDoctor(ctx context.Context, slug id.DoctorSlug) (*models.Doctor, error) {
	d, err := s.doctors.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "doctor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "doctor lookup failed")
	}
	return d, nil
}

// ProvisionHospital registers a new hospital tenant on the given subdomain.
func (s *Service) ProvisionHospital(ctx context.Context, name, subdomain string) (*models.Hospital, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "hospital name is required")
	}
	label, err := id.ParseSubdomainLabel(subdomain)
	if err != nil {
		return nil, err
	}
	if s.isReserved(label) {
		return nil, dErrors.New(dErrors.CodeConflict, "subdomain is reserved by the platform")
	}

	h := &models.Hospital{
		Name:      name,
		Subdomain: label,
		Status:    models.TenantStatusActive,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.hospitals.Create(ctx, h); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "subdomain is already taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create hospital")
	}

	if s.metrics != nil {
		s.metrics.IncProvisioned("hospital")
	}
	s.audit.Emit(ctx, audit.Event{
		Action:  audit.ActionHospitalProvisioned,
		Subject: label,
		Detail:  fmt.Sprintf("hospital %d (%s)", h.ID, h.Name),
	})
	return h, nil
}

// ProvisionDoctor registers a new doctor tenant. When no slug is supplied
// one is derived from the full name; collisions get a numeric suffix.
func (s *Service) ProvisionDoctor(ctx context.Context, fullName, specialty, slug string) (*models.Doctor, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "doctor name is required")
	}

	var parsed id.DoctorSlug
	if slug == "" {
		derived, err := s.deriveSlug(ctx, fullName)
		if err != nil {
			return nil, err
		}
		parsed = derived
	} else {
		var err error
		parsed, err = id.ParseDoctorSlug(slug)
		if err != nil {
			return nil, err
		}
	}
	if s.isReserved(parsed.String()) {
		return nil, dErrors.New(dErrors.CodeConflict, "slug is reserved by the platform")
	}

	d := &models.Doctor{
		Slug:      parsed,
		FullName:  fullName,
		Specialty: strings.TrimSpace(specialty),
		Status:    models.TenantStatusActive,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "slug is already taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create doctor")
	}

	if s.metrics != nil {
		s.metrics.IncProvisioned("doctor")
	}
	s.audit.Emit(ctx, audit.Event{
		Action:  audit.ActionDoctorProvisioned,
		Subject: parsed.String(),
		Detail:  fmt.Sprintf("doctor %d (%s)", d.ID, d.FullName),
	})
	return d, nil
}

// deriveSlug slugifies a full name and probes the store for a free variant:
// "Dana Rivera" becomes dana-rivera, then dana-rivera-2, dana-rivera-3.
func (s *Service) deriveSlug(ctx context.Context, fullName string) (id.DoctorSlug, error) {
	base := Slugify(fullName)
	if base == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "doctor name yields no usable slug")
	}

	candidate := base
	for i := 2; ; i++ {
		parsed, err := id.ParseDoctorSlug(candidate)
		if err != nil {
			return "", err
		}
		if s.isReserved(candidate) {
			candidate = fmt.Sprintf("%s-%d", base, i)
			continue
		}
		_, err = s.doctors.FindBySlug(ctx, parsed)
		if errors.Is(err, sentinel.ErrNotFound) {
			return parsed, nil
		}
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "slug probe failed")
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// Slugify lowers a display name into a hostname label: runs of anything
// outside [a-z0-9] collapse to single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > 63 {
		out = strings.Trim(out[:63], "-")
	}
	return out
}

func (s *Service) isReserved(label string) bool {
	_, ok := s.reserved[label]
	return ok
}

func (s *Service) observeLookup(kind string, found bool) {
	if s.metrics != nil {
		s.metrics.ObserveLookup(kind, found)
	}
}
