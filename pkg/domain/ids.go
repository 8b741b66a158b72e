// Package domain holds the typed identifiers shared across modules.
// Distinct types keep a hospital ID from ever being passed where a user ID
// belongs; the compiler enforces what conventions cannot.
package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "careport/pkg/domain-errors"
)

// UserID identifies a platform account.
type UserID uuid.UUID

// SessionID identifies an authenticated session.
type SessionID uuid.UUID

// HospitalID identifies a hospital tenant. Hospital IDs are small integers
// assigned by the directory; they appear verbatim in rewrite targets.
type HospitalID int64

// DoctorSlug identifies a doctor tenant. The slug doubles as the subdomain
// label for the doctor's microsite.
type DoctorSlug string

func (u UserID) String() string    { return uuid.UUID(u).String() }
func (u UserID) IsNil() bool       { return uuid.UUID(u) == uuid.Nil }
func (s SessionID) String() string { return uuid.UUID(s).String() }
func (s SessionID) IsNil() bool    { return uuid.UUID(s) == uuid.Nil }

func (h HospitalID) String() string { return strconv.FormatInt(int64(h), 10) }

func (d DoctorSlug) String() string { return string(d) }

// ParseUserID validates and converts a string into a UserID.
// Rejects empty, malformed, and nil UUIDs.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseSessionID validates and converts a string into a SessionID.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session id")
	return SessionID(u), err
}

// ParseHospitalID validates and converts a string into a HospitalID.
// Hospital IDs are positive integers.
func ParseHospitalID(s string) (HospitalID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "hospital id must be a positive integer")
	}
	return HospitalID(n), nil
}

// ParseDoctorSlug validates a slug: lower-case letters, digits, and hyphens,
// never empty, never leading/trailing hyphen. Slugs are used as hostname
// labels, so the rules mirror DNS label constraints.
func ParseDoctorSlug(s string) (DoctorSlug, error) {
	label, err := ParseSubdomainLabel(s)
	if err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "doctor slug must be a valid hostname label")
	}
	return DoctorSlug(label), nil
}

// ParseSubdomainLabel validates a single DNS label: 1-63 characters of
// lower-case letters, digits, and hyphens, with no leading or trailing
// hyphen. Both hospital subdomains and doctor slugs must satisfy it.
func ParseSubdomainLabel(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > 63 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "label must be 1-63 characters")
	}
	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "label must not start or end with a hyphen")
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "label may contain only lower-case letters, digits, and hyphens")
		}
	}
	return s, nil
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" must not be nil")
	}
	return u, nil
}
