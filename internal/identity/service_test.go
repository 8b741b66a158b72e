package identity

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careport/internal/audit"
	"careport/internal/identity/models"
	sessionstore "careport/internal/identity/store/session"
	userstore "careport/internal/identity/store/user"
	dErrors "careport/pkg/domain-errors"
	"careport/pkg/requestcontext"
)

func newTestService(t *testing.T) (*Service, *audit.MemorySink) {
	t.Helper()
	users := userstore.NewInMemory()
	u, err := NewUser("pat@example.com", "Pat Doe", "correct-horse", time.Now())
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), u))

	disabled, err := NewUser("gone@example.com", "Gone User", "whatever", time.Now())
	require.NoError(t, err)
	disabled.Status = models.UserStatusDisabled
	require.NoError(t, users.Create(context.Background(), disabled))

	sink := audit.NewMemorySink()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := NewService(
		users,
		sessionstore.NewInMemory(),
		NewTokenService("test-signing-key", "careport", time.Hour),
		WithLogger(logger),
		WithAudit(audit.NewPublisher(sink, logger)),
	)
	return svc, sink
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := requestcontext.WithClientMetadata(context.Background(),
		"203.0.113.9",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	)

	result, err := svc.Login(ctx, "pat@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "pat@example.com", result.User.Email)
	assert.Equal(t, "203.0.113.9", result.Session.ClientIP)
	assert.Equal(t, "Chrome", result.Session.Device.Browser)

	ident, err := svc.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, ident.UserID)
	assert.Equal(t, result.Session.ID, ident.SessionID)
	assert.Equal(t, "Pat Doe", ident.FullName)

	events := sink.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, audit.ActionLoginSucceeded, events[0].Action)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, sink := newTestService(t)
	ctx := context.Background()

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "pat@example.com", "wrong")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "correct-horse")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("disabled account", func(t *testing.T) {
		_, err := svc.Login(ctx, "gone@example.com", "whatever")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Login(ctx, "", "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	var failures int
	for _, e := range sink.Events() {
		if e.Action == audit.ActionLoginFailed {
			failures++
		}
	}
	assert.Equal(t, 2, failures)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.Login(ctx, "pat@example.com", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.Session.ID))

	_, err = svc.Authenticate(ctx, result.Token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	// Idempotent: repeat logout and unknown sessions are fine.
	assert.NoError(t, svc.Logout(ctx, result.Session.ID))
}

func TestAuthenticateRejectsExpiredSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.Login(ctx, "pat@example.com", "correct-horse")
	require.NoError(t, err)

	// Move the clock past the session expiry via request-scoped time.
	future := requestcontext.WithTime(ctx, time.Now().Add(2*time.Hour))
	_, err = svc.Authenticate(future, result.Token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Authenticate(context.Background(), "not-a-jwt")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
