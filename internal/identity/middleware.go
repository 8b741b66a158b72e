package identity

import (
	"log/slog"
	"net/http"

	dErrors "careport/pkg/domain-errors"
	"careport/pkg/platform/httputil"
	"careport/pkg/requestcontext"
)

// RequireAuth guards routes with the two-tier read chain: shared cookie
// first, bearer header second. The verified identity lands in the request
// context for handlers and services.
func RequireAuth(svc *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := ReadToken(r)
			if token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing credentials",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing credentials"))
				return
			}

			ident, err := svc.Authenticate(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithUserID(ctx, ident.UserID)
			ctx = requestcontext.WithSessionID(ctx, ident.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
