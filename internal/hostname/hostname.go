// Package hostname classifies inbound request hosts for the edge router.
//
// Every request passes through here first. The classifier only inspects the
// host; it never performs lookups and never fails. A missing or malformed
// host degrades to the bare-domain class, which means "serve the normal,
// non-tenant page".
package hostname

import (
	"net"
	"net/http"
	"strings"
)

// Class is the routing classification of a request host.
type Class int

const (
	// ClassBareDomain covers single-label hosts, IP literals, and any host
	// that cannot be a tenant microsite. No rewrite.
	ClassBareDomain Class = iota

	// ClassReservedSubdomain covers hosts whose first label is reserved for
	// the platform itself (www, brand, app). No rewrite.
	ClassReservedSubdomain

	// ClassCandidateTenant marks hosts whose first label may belong to a
	// hospital or doctor microsite; resolution decides.
	ClassCandidateTenant

	// ClassPlatformInternal covers hosting-provider infrastructure hosts
	// (deploy previews). Always short-circuits to normal routing.
	ClassPlatformInternal
)

func (c Class) String() string {
	switch c {
	case ClassReservedSubdomain:
		return "reserved-subdomain"
	case ClassCandidateTenant:
		return "candidate-tenant-subdomain"
	case ClassPlatformInternal:
		return "platform-internal-host"
	default:
		return "bare-domain"
	}
}

// Result carries the normalized host, its first label, and the class.
// Label is only set for reserved and candidate classes.
type Result struct {
	Host  string
	Label string
	Class Class
}

// Classifier decides how a request host participates in tenant routing.
// All inputs are injected at construction; the classifier holds no hidden
// global state.
type Classifier struct {
	reserved         map[string]struct{}
	internalSuffixes []string
	subdomainRouting bool
}

// New builds a Classifier. Reserved labels are matched against the first
// hostname label; internal suffixes against the whole host. The routing
// flag gates the candidate class entirely.
func New(reservedLabels, internalSuffixes []string, subdomainRouting bool) *Classifier {
	reserved := make(map[string]struct{}, len(reservedLabels))
	for _, l := range reservedLabels {
		reserved[strings.ToLower(l)] = struct{}{}
	}
	suffixes := make([]string, 0, len(internalSuffixes))
	for _, s := range internalSuffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		suffixes = append(suffixes, s)
	}
	return &Classifier{
		reserved:         reserved,
		internalSuffixes: suffixes,
		subdomainRouting: subdomainRouting,
	}
}

// ClassifyRequest classifies an inbound request. The Host header is
// authoritative; the parsed request URL is the fallback when the header is
// absent or unusable.
func (c *Classifier) ClassifyRequest(r *http.Request) Result {
	host := r.Host
	if host == "" {
		host = r.URL.Hostname()
	}
	return c.Classify(host)
}

// Classify classifies a raw host value. The host is normalized (port
// stripped, lower-cased) before any comparison.
func (c *Classifier) Classify(rawHost string) Result {
	host := Normalize(rawHost)
	if host == "" {
		return Result{Class: ClassBareDomain}
	}

	for _, suffix := range c.internalSuffixes {
		if strings.HasSuffix(host, suffix) {
			return Result{Host: host, Class: ClassPlatformInternal}
		}
	}

	labels := strings.Split(host, ".")
	if len(labels) < 2 || net.ParseIP(host) != nil {
		return Result{Host: host, Class: ClassBareDomain}
	}

	label := labels[0]
	if _, ok := c.reserved[label]; ok {
		return Result{Host: host, Label: label, Class: ClassReservedSubdomain}
	}

	if !c.subdomainRouting {
		return Result{Host: host, Class: ClassBareDomain}
	}

	return Result{Host: host, Label: label, Class: ClassCandidateTenant}
}

// Normalize lower-cases a host value and strips any port, tolerating
// bracketed IPv6 literals and junk input.
func Normalize(rawHost string) string {
	host := strings.TrimSpace(strings.ToLower(rawHost))
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.Trim(host, "[]")
}
