package directory

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careport/internal/platform/middleware"
	"careport/pkg/testutil"
)

func newDirectoryRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _ := newTestService(t)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := NewHandler(svc, logger)

	r := chi.NewRouter()
	h.Register(r)
	r.Group(func(g chi.Router) {
		g.Use(middleware.RequireAdminToken("secret-admin", logger))
		h.RegisterAdmin(g)
	})
	return r
}

func provision(t *testing.T, path string, body any) *http.Request {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, path, body)
	req.Header.Set("X-Admin-Token", "secret-admin")
	return req
}

func TestHospitalLookupEndpoint(t *testing.T) {
	router := newDirectoryRouter(t)

	rec := testutil.DoRequest(router, provision(t, "/api/admin/hospitals", map[string]string{
		"name":      "General Hospital",
		"subdomain": "general",
	}))
	testutil.AssertStatus(t, rec, http.StatusCreated)
	created := testutil.UnmarshalResponse[hospitalResponse](t, rec)
	require.Positive(t, created.ID)

	t.Run("known subdomain returns the hospital id", func(t *testing.T) {
		res := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/hospitals/subdomain/general"))
		testutil.AssertStatusOK(t, res)
		body := testutil.UnmarshalResponse[hospitalResponse](t, res)
		assert.Equal(t, created.ID, body.ID)
		assert.Equal(t, "general", body.Subdomain)
	})

	t.Run("unknown subdomain is a 404", func(t *testing.T) {
		res := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/hospitals/subdomain/nowhere"))
		testutil.AssertStatusAndError(t, res, http.StatusNotFound, "not_found")
	})
}

func TestDoctorLookupEndpoint(t *testing.T) {
	router := newDirectoryRouter(t)

	rec := testutil.DoRequest(router, provision(t, "/api/admin/doctors", map[string]string{
		"full_name": "Dana Rivera",
		"specialty": "Cardiology",
	}))
	testutil.AssertStatus(t, rec, http.StatusCreated)
	created := testutil.UnmarshalResponse[doctorResponse](t, rec)
	assert.Equal(t, "dana-rivera", created.Slug)

	t.Run("known slug returns the doctor", func(t *testing.T) {
		res := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/doctors/slug/dana-rivera"))
		testutil.AssertStatusOK(t, res)
		testutil.AssertJSONContains(t, res, "full_name", "Dana Rivera")
	})

	t.Run("unknown slug is a 404", func(t *testing.T) {
		res := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/doctors/slug/nobody"))
		testutil.AssertStatus(t, res, http.StatusNotFound)
	})
}

func TestProvisioningRequiresAdminToken(t *testing.T) {
	router := newDirectoryRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/admin/hospitals", map[string]string{
		"name":      "Rogue Clinic",
		"subdomain": "rogue",
	})
	res := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, res, http.StatusForbidden)

	// The lookup stays empty: nothing was provisioned.
	probe := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/hospitals/subdomain/rogue"))
	testutil.AssertStatus(t, probe, http.StatusNotFound)
}

func TestProvisioningConflictsSurfaceAs409(t *testing.T) {
	router := newDirectoryRouter(t)

	first := testutil.DoRequest(router, provision(t, "/api/admin/hospitals", map[string]string{
		"name": "First", "subdomain": "shared",
	}))
	testutil.AssertStatus(t, first, http.StatusCreated)

	second := testutil.DoRequest(router, provision(t, "/api/admin/hospitals", map[string]string{
		"name": "Second", "subdomain": "shared",
	}))
	testutil.AssertStatusAndError(t, second, http.StatusConflict, "conflict")

	reserved := testutil.DoRequest(router, provision(t, "/api/admin/hospitals", map[string]string{
		"name": "Platform Squatter", "subdomain": "www",
	}))
	testutil.AssertStatus(t, reserved, http.StatusConflict)
}
