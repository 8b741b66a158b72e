// Package identity is the cross-origin identity bridge: it mints the auth
// token at login, stores it redundantly (shared cookie plus the caller's
// origin-scoped copy), and answers "who is calling" for every tenant page.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"careport/internal/audit"
	"careport/internal/identity/models"
	id "careport/pkg/domain"
	dErrors "careport/pkg/domain-errors"
	"careport/pkg/platform/sentinel"
	"careport/pkg/requestcontext"
)

// UserStore is the account lookup the service depends on.
type UserStore interface {
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// SessionStore persists authenticated sessions.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	Revoke(ctx context.Context, sessionID id.SessionID, at time.Time) error
}

// Service orchestrates login, logout, and token verification.
type Service struct {
	users    UserStore
	sessions SessionStore
	tokens   *TokenService
	audit    *audit.Publisher
	logger   *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a logger for operational warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithAudit sets the audit publisher for login/logout events.
func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func NewService(users UserStore, sessions SessionStore, tokens *TokenService, opts ...Option) *Service {
	s := &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TokenTTL exposes the token lifetime so the handler can scope the cookie
// to the same window.
func (s *Service) TokenTTL() time.Duration { return s.tokens.TTL() }

// LoginResult is what a successful login produces.
type LoginResult struct {
	Token   string
	Session *models.Session
	User    *models.User
}

// Login authenticates credentials and opens a session. Credential failures
// are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.emitLoginFailed(ctx, email)
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		s.emitLoginFailed(ctx, email)
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	if user.Status != models.UserStatusActive {
		return nil, dErrors.New(dErrors.CodeForbidden, "account is disabled")
	}

	now := requestcontext.Now(ctx)
	session := &models.Session{
		ID:        id.SessionID(uuid.New()),
		UserID:    user.ID,
		Device:    models.ParseDevice(requestcontext.UserAgent(ctx)),
		ClientIP:  requestcontext.ClientIP(ctx),
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokens.TTL()),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	token, err := s.tokens.Generate(user.ID, session.ID, now)
	if err != nil {
		return nil, err
	}

	s.audit.Emit(ctx, audit.Event{
		Action:    audit.ActionLoginSucceeded,
		UserID:    user.ID.String(),
		SessionID: session.ID.String(),
		Subject:   user.Email,
	})

	return &LoginResult{Token: token, Session: session, User: user}, nil
}

// Logout revokes the session. Revoking an unknown session is a no-op:
// logout must be idempotent.
func (s *Service) Logout(ctx context.Context, sessionID id.SessionID) error {
	err := s.sessions.Revoke(ctx, sessionID, requestcontext.Now(ctx))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}
	s.audit.Emit(ctx, audit.Event{
		Action:    audit.ActionLogout,
		SessionID: sessionID.String(),
	})
	return nil
}

// Identity is the verified caller of a request.
type Identity struct {
	UserID    id.UserID
	SessionID id.SessionID
	Email     string
	FullName  string
}

// Authenticate verifies a bearer token against its session. Every failure
// maps to the same unauthorized error; the edge never explains which check
// failed.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	sessionID, err := id.ParseSessionID(claims.SessionID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session not found")
	}
	if !session.Active(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session expired or revoked")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil || user.Status != models.UserStatusActive {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "account unavailable")
	}

	return &Identity{
		UserID:    userID,
		SessionID: sessionID,
		Email:     user.Email,
		FullName:  user.FullName,
	}, nil
}

func (s *Service) emitLoginFailed(ctx context.Context, email string) {
	s.audit.Emit(ctx, audit.Event{
		Action:  audit.ActionLoginFailed,
		Subject: email,
	})
}
