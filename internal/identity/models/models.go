// Package models holds the identity module's domain types.
package models

import (
	"time"

	"github.com/mssola/useragent"

	id "careport/pkg/domain"
)

// UserStatus is the lifecycle state of a platform account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User is a platform account. The edge does not distinguish patient,
// doctor, and staff roles, only identity.
type User struct {
	ID           id.UserID
	Email        string
	FullName     string
	PasswordHash []byte
	Status       UserStatus
	CreatedAt    time.Time
}

// Session is one authenticated browser session. Sessions outlive single
// requests and are revoked at logout.
type Session struct {
	ID        id.SessionID
	UserID    id.UserID
	Device    DeviceInfo
	ClientIP  string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Active reports whether the session is usable at the given instant.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// DeviceInfo is parsed client metadata recorded at login for session
// listings and audit context.
type DeviceInfo struct {
	Browser        string
	BrowserVersion string
	OS             string
	Mobile         bool
	RawUserAgent   string
}

// ParseDevice extracts device metadata from a User-Agent string.
func ParseDevice(rawUA string) DeviceInfo {
	if rawUA == "" {
		return DeviceInfo{}
	}
	ua := useragent.New(rawUA)
	browser, version := ua.Browser()
	return DeviceInfo{
		Browser:        browser,
		BrowserVersion: version,
		OS:             ua.OS(),
		Mobile:         ua.Mobile(),
		RawUserAgent:   rawUA,
	}
}
