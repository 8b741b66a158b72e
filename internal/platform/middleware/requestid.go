package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"careport/pkg/requestcontext"
)

// RequestID assigns a correlation ID to every request and echoes it in the
// X-Request-ID response header. Incoming IDs from trusted proxies are kept.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
