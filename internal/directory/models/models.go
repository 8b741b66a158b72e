// Package models defines the tenant directory entities.
package models

import (
	"time"

	id "careport/pkg/domain"
)

// TenantStatus gates whether a tenant participates in routing.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Hospital is a hospital tenant. Its subdomain is the hostname label that
// routes to its microsite; its numeric ID appears in rewrite targets.
type Hospital struct {
	ID        id.HospitalID
	Name      string
	Subdomain string
	Status    TenantStatus
	CreatedAt time.Time
}

// Doctor is an individual practitioner tenant. The slug doubles as the
// subdomain label and as the tenant identifier in rewrite targets.
type Doctor struct {
	ID        int64
	Slug      id.DoctorSlug
	FullName  string
	Specialty string
	Status    TenantStatus
	CreatedAt time.Time
}
