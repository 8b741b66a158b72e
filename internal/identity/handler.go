package identity

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"careport/internal/hostname"
	id "careport/pkg/domain"
	dErrors "careport/pkg/domain-errors"
	"careport/pkg/platform/httputil"
	"careport/pkg/requestcontext"
)

// Handler wires the identity bridge's HTTP surface: login, logout, and the
// session probe every tenant page calls.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the auth routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.login)
	r.Post("/auth/logout", h.logout)
	r.Get("/auth/session", h.session)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// The cookie domain is computed against the host the visitor is on
	// right now, so a login from app.careport.health is visible on every
	// sibling subdomain.
	http.SetCookie(w, AuthCookie(result.Token, visitorHost(r), h.svc.TokenTTL()))

	// The body copy feeds the caller's origin-scoped fallback store.
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		UserID:    result.User.ID.String(),
		Email:     result.User.Email,
		FullName:  result.User.FullName,
		ExpiresAt: result.Session.ExpiresAt,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	// Clear the cookie even when the token is gone or garbage; logout
	// must always leave the browser signed out.
	defer http.SetCookie(w, ClearAuthCookie(visitorHost(r)))

	token := ReadToken(r)
	if token == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if claims, err := h.svc.tokens.Validate(token); err == nil {
		if sessionID, err := id.ParseSessionID(claims.SessionID); err == nil {
			if err := h.svc.Logout(r.Context(), sessionID); err != nil {
				h.logger.ErrorContext(r.Context(), "logout failed",
					"session_id", sessionID.String(),
					"error", err,
				)
			}
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionResponse struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	token := ReadToken(r)
	if token == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "no credentials presented"))
		return
	}

	ident, err := h.svc.Authenticate(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, sessionResponse{
		UserID:    ident.UserID.String(),
		SessionID: ident.SessionID.String(),
		Email:     ident.Email,
		FullName:  ident.FullName,
	})
}

// visitorHost is the hostname the browser actually addressed, surviving any
// internal rewrite.
func visitorHost(r *http.Request) string {
	if host := requestcontext.OriginalHost(r.Context()); host != "" {
		return host
	}
	return hostname.Normalize(r.Host)
}
