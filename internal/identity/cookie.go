package identity

import (
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"careport/internal/hostname"
)

// CookieName is the auth token cookie shared across the platform and its
// tenant subdomains.
const CookieName = "authToken"

// CookieDomain computes the Domain attribute for the auth cookie relative to
// the host the visitor is on at write time.
//
// A multi-label host under a shared registrable root gets the parent-domain
// form (".example.com"), which makes the cookie visible on the bare domain
// and every sibling subdomain. Single-label hosts and IP literals get a
// host-only cookie: the empty string means "omit the Domain attribute".
//
// The registrable root comes from the public suffix list, so multi-level
// suffixes work: clinic.example.co.uk scopes to ".example.co.uk", never to
// ".co.uk". Hosts under .localhost scope to ".localhost" for development.
func CookieDomain(rawHost string) string {
	host := hostname.Normalize(rawHost)
	if host == "" || !strings.Contains(host, ".") || net.ParseIP(host) != nil {
		return ""
	}

	// Development hosts like tenant1.localhost share the .localhost root.
	if strings.HasSuffix(host, ".localhost") {
		return ".localhost"
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// Host is itself a public suffix or otherwise unscopeable; a
		// parent-domain cookie would be rejected by browsers anyway.
		return ""
	}
	return "." + etld1
}

// AuthCookie builds the auth token cookie for the given visitor-facing host.
// The cookie is intentionally readable by the client app (the microsites
// read it to establish identity); Secure/SameSite are left to the deployment
// in front of this service.
func AuthCookie(token, rawHost string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Domain:   CookieDomain(rawHost),
		MaxAge:   int(ttl / time.Second),
		HttpOnly: false,
	}
}

// ClearAuthCookie builds the expired cookie that removes the auth token.
// The Domain must match the one used at write time or browsers keep the
// original cookie alive.
func ClearAuthCookie(rawHost string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Domain:   CookieDomain(rawHost),
		MaxAge:   -1,
		HttpOnly: false,
	}
}

// ReadToken extracts the bearer credential from a request using the two-tier
// chain: the shared cookie first (the only store that crosses subdomain
// boundaries), then the Authorization header carrying the caller's
// origin-scoped fallback copy. Empty means unauthenticated.
func ReadToken(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && after != "" {
		return after
	}
	return ""
}
