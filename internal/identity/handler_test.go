package identity

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionstore "careport/internal/identity/store/session"
	userstore "careport/internal/identity/store/user"
	"careport/pkg/testutil"
)

func newAuthRouter(t *testing.T) http.Handler {
	t.Helper()
	users := userstore.NewInMemory()
	u, err := NewUser("pat@example.com", "Pat Doe", "correct-horse", time.Now())
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), u))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := NewService(users, sessionstore.NewInMemory(),
		NewTokenService("test-signing-key", "careport", time.Hour),
		WithLogger(logger),
	)

	r := chi.NewRouter()
	NewHandler(svc, logger).Register(r)
	return r
}

func doLogin(t *testing.T, router http.Handler, host string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "pat@example.com",
		"password": "correct-horse",
	})
	req.Host = host
	return testutil.DoRequest(router, req)
}

func TestLoginSetsParentDomainCookie(t *testing.T) {
	router := newAuthRouter(t)

	rec := doLogin(t, router, "app.example.com")
	testutil.AssertStatusOK(t, rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.NotEmpty(t, c.Value)
	assert.Equal(t, "example.com", c.Domain) // Set-Cookie serialization drops the leading dot
	assert.Equal(t, "/", c.Path)

	body := testutil.UnmarshalResponse[loginResponse](t, rec)
	assert.Equal(t, c.Value, body.Token)
	assert.Equal(t, "pat@example.com", body.Email)
}

func TestLoginOnBareHostSetsHostOnlyCookie(t *testing.T) {
	router := newAuthRouter(t)

	rec := doLogin(t, router, "localhost:3000")
	testutil.AssertStatusOK(t, rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Domain)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	router := newAuthRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "pat@example.com",
		"password": "wrong",
	})
	rec := testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rec, http.StatusUnauthorized, "unauthorized")
}

func TestSessionReadChain(t *testing.T) {
	router := newAuthRouter(t)

	rec := doLogin(t, router, "app.example.com")
	token := testutil.UnmarshalResponse[loginResponse](t, rec).Token

	t.Run("via cookie", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/auth/session")
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		res := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, res)
		testutil.AssertJSONContains(t, res, "email", "pat@example.com")
	})

	t.Run("via bearer fallback", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/auth/session")
		req.Header.Set("Authorization", "Bearer "+token)
		res := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, res)
	})

	t.Run("unauthenticated without credentials", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/auth/session")
		res := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, res, http.StatusUnauthorized)
	})
}

func TestLogoutClearsCookieAndRevokes(t *testing.T) {
	router := newAuthRouter(t)

	rec := doLogin(t, router, "app.example.com")
	token := testutil.UnmarshalResponse[loginResponse](t, rec).Token

	req := testutil.NewRequest(t, http.MethodPost, "/auth/logout")
	req.Host = "app.example.com"
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	res := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, res, http.StatusNoContent)

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)

	// The session is gone: the old token no longer authenticates.
	probe := testutil.NewRequest(t, http.MethodGet, "/auth/session")
	probe.Header.Set("Authorization", "Bearer "+token)
	testutil.AssertStatus(t, testutil.DoRequest(router, probe), http.StatusUnauthorized)
}

func TestRequireAuthMiddleware(t *testing.T) {
	users := userstore.NewInMemory()
	u, err := NewUser("pat@example.com", "Pat Doe", "correct-horse", time.Now())
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), u))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := NewService(users, sessionstore.NewInMemory(),
		NewTokenService("test-signing-key", "careport", time.Hour),
		WithLogger(logger),
	)

	result, err := svc.Login(context.Background(), "pat@example.com", "correct-horse")
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Group(func(g chi.Router) {
		g.Use(RequireAuth(svc, logger))
		g.Get("/protected", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	req := testutil.NewRequest(t, http.MethodGet, "/protected")
	req.AddCookie(&http.Cookie{Name: CookieName, Value: result.Token})
	testutil.AssertStatusOK(t, testutil.DoRequest(r, req))

	bare := testutil.NewRequest(t, http.MethodGet, "/protected")
	testutil.AssertStatus(t, testutil.DoRequest(r, bare), http.StatusUnauthorized)
}
