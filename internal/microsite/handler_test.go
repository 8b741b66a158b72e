package microsite

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

	"careport/internal/directory"
	doctorstore "careport/internal/directory/store/doctor"
	hospitalstore "careport/internal/directory/store/hospital"
	"careport/internal/hostname"
	"careport/internal/resolver"
	"careport/internal/rewrite"
	"careport/pkg/testutil"
)

func newDirectory(t *testing.T) *directory.Service {
	t.Helper()
	svc := directory.NewService(
		hospitalstore.NewInMemory(),
		doctorstore.NewInMemory(),
		[]string{"www", "careport", "app"},
	)
	_, err := svc.ProvisionHospital(context.Background(), "General Hospital", "general")
	require.NoError(t, err)
	_, err = svc.ProvisionDoctor(context.Background(), "Dana Rivera", "Cardiology", "")
	require.NoError(t, err)
	return svc
}

func TestHospitalPage(t *testing.T) {
	dir := newDirectory(t)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	r := chi.NewRouter()
	NewHandler(dir, logger).Register(r)

	t.Run("root page", func(t *testing.T) {
		res := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/hospital-site/1/"))
		testutil.AssertStatusOK(t, res)
		body := testutil.UnmarshalResponse[hospitalPageResponse](t, res)
		assert.Equal(t, "hospital", body.Site)
		assert.Equal(t, "General Hospital", body.Name)
		assert.Equal(t, "/", body.Page)
	})

	t.Run("nested page keeps the tenant-relative path", func(t *testing.T) {
		res := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/hospital-site/1/departments/cardiology"))
		testutil.AssertStatusOK(t, res)
		testutil.AssertJSONContains(t, res, "page", "/departments/cardiology")
	})

	t.Run("unknown hospital is a 404", func(t *testing.T) {
		res := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/hospital-site/999/"))
		testutil.AssertStatus(t, res, http.StatusNotFound)
	})

	t.Run("non-numeric hospital id is rejected", func(t *testing.T) {
		res := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/hospital-site/abc/"))
		testutil.AssertStatus(t, res, http.StatusBadRequest)
	})
}

func TestDoctorPage(t *testing.T) {
	dir := newDirectory(t)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	r := chi.NewRouter()
	NewHandler(dir, logger).Register(r)

	res := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/doctor-site/dana-rivera/appointments"))
	testutil.AssertStatusOK(t, res)
	body := testutil.UnmarshalResponse[doctorPageResponse](t, res)
	assert.Equal(t, "doctor", body.Site)
	assert.Equal(t, "Dana Rivera", body.FullName)
	assert.Equal(t, "/appointments", body.Page)

	missing := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/doctor-site/nobody/"))
	testutil.AssertStatus(t, missing, http.StatusNotFound)
}

// TestRewriteToMicrositeEndToEnd runs the whole edge path: a request for a
// tenant subdomain is classified, resolved against the live directory
// endpoints, rewritten, and served by the microsite handler.
func TestRewriteToMicrositeEndToEnd(t *testing.T) {
	dir := newDirectory(t)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	// The directory's lookup API, served for the resolver strategies the
	// same way production serves it.
	lookupRouter := chi.NewRouter()
	directory.NewHandler(dir, logger).Register(lookupRouter)
	lookupSrv := httptest.NewServer(lookupRouter)
	defer lookupSrv.Close()

	chain := resolver.NewChain([]resolver.Strategy{
		resolver.NewHospitalBySubdomain(lookupSrv.URL, time.Second),
		resolver.NewDoctorBySlug(lookupSrv.URL, time.Second),
	}, resolver.WithLogger(logger))

	classifier := hostname.New([]string{"www", "careport", "app"}, []string{".vercel.app"}, true)

	root := chi.NewRouter()
	root.Use(rewrite.Middleware(classifier, chain, logger))
	NewHandler(dir, logger).Register(root)
	root.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("marketplace home"))
	})

	t.Run("hospital subdomain lands on its microsite", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/visiting-hours")
		req.Host = "general.careport.health"
		res := testutil.DoRequest(root, req)
		testutil.AssertStatusOK(t, res)

		body := testutil.UnmarshalResponse[hospitalPageResponse](t, res)
		assert.Equal(t, "General Hospital", body.Name)
		assert.Equal(t, "/visiting-hours", body.Page)
		assert.Equal(t, "general.careport.health", body.OriginalHost)
	})

	t.Run("doctor slug subdomain lands on the doctor site", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/")
		req.Host = "dana-rivera.careport.health"
		res := testutil.DoRequest(root, req)
		testutil.AssertStatusOK(t, res)

		body := testutil.UnmarshalResponse[doctorPageResponse](t, res)
		assert.Equal(t, "dana-rivera", body.Slug)
		assert.Equal(t, "dana-rivera.careport.health", body.OriginalHost)
	})

	t.Run("unresolved subdomain falls through to the normal page", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/")
		req.Host = "ghost.careport.health"
		res := testutil.DoRequest(root, req)
		testutil.AssertStatusOK(t, res)
		assert.Equal(t, "marketplace home", res.Body.String())
	})

	t.Run("reserved subdomain is never rewritten", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/")
		req.Host = "www.careport.health"
		res := testutil.DoRequest(root, req)
		testutil.AssertStatusOK(t, res)
		assert.Equal(t, "marketplace home", res.Body.String())
	})
}
