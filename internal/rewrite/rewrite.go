// Package rewrite transparently remaps tenant-subdomain requests onto the
// canonical internal microsite routes. The remap is an in-process dispatch:
// the browser never sees a redirect, and an unresolved host passes through
// to normal routing untouched.
package rewrite

import (
	"context"
	"log/slog"
	"net/http"

	"careport/internal/hostname"
	"careport/internal/resolver"
	"careport/pkg/requestcontext"
)

// OriginalHostHeader carries the visitor-facing hostname across the rewrite
// so downstream handlers can still report the external domain for links and
// cookie-domain decisions.
const OriginalHostHeader = "X-Original-Host"

// Resolver is the narrow view of the strategy chain the rewriter needs.
type Resolver interface {
	Resolve(ctx context.Context, label string) (resolver.Binding, bool)
}

// Target builds the internal path for a resolved tenant, preserving the
// original path and query byte-for-byte.
func Target(binding resolver.Binding, origPath, rawQuery string) string {
	if origPath == "" || origPath[0] != '/' {
		origPath = "/" + origPath
	}
	target := "/" + binding.RoutePrefix() + "/" + binding.TenantID() + origPath
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

// Middleware classifies the request host and, for resolved tenant
// subdomains, rewrites the request path onto the microsite route. All other
// classes fall through unchanged; this layer never produces an error
// response.
func Middleware(classifier *hostname.Classifier, res Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := classifier.ClassifyRequest(r)
			if result.Class != hostname.ClassCandidateTenant {
				next.ServeHTTP(w, r)
				return
			}

			binding, ok := res.Resolve(r.Context(), result.Label)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			origPath := r.URL.Path
			r.URL.Path = "/" + binding.RoutePrefix() + "/" + binding.TenantID() + ensureSlash(origPath)
			r.URL.RawPath = ""
			r.Header.Set(OriginalHostHeader, result.Host)

			ctx := requestcontext.WithOriginalHost(r.Context(), result.Host)
			if logger != nil {
				logger.DebugContext(ctx, "rewrote tenant request",
					"host", result.Host,
					"label", result.Label,
					"kind", string(binding.Kind),
					"path", r.URL.Path,
				)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ensureSlash(p string) string {
	if p == "" || p[0] != '/' {
		return "/" + p
	}
	return p
}
