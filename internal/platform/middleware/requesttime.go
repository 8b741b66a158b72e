package middleware

import (
	"net/http"
	"time"

	"careport/pkg/requestcontext"
)

// RequestTime pins a single wall-clock reading per request so every
// downstream timestamp within one request agrees.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
