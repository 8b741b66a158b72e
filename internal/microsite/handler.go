// Package microsite serves the canonical internal tenant routes that the
// rewrite layer dispatches to. Responses carry the tenant identity and the
// visitor-facing host so pages can build absolute links correctly.
package microsite

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"careport/internal/directory"
	id "careport/pkg/domain"
	dErrors "careport/pkg/domain-errors"
	"careport/pkg/platform/httputil"
	"careport/pkg/requestcontext"
)

// Handler renders hospital and doctor microsite pages.
type Handler struct {
	dir    *directory.Service
	logger *slog.Logger
}

func NewHandler(dir *directory.Service, logger *slog.Logger) *Handler {
	return &Handler{dir: dir, logger: logger}
}

// Register mounts the microsite routes. These paths are internal: visitors
// reach them through the rewrite layer, never by typing them.
func (h *Handler) Register(r chi.Router) {
	r.Route("/hospital-site/{hospitalID}", func(r chi.Router) {
		r.Get("/", h.hospitalPage)
		r.Get("/*", h.hospitalPage)
	})
	r.Route("/doctor-site/{slug}", func(r chi.Router) {
		r.Get("/", h.doctorPage)
		r.Get("/*", h.doctorPage)
	})
}

type hospitalPageResponse struct {
	Site         string `json:"site"`
	HospitalID   int64  `json:"hospital_id"`
	Name         string `json:"name"`
	Subdomain    string `json:"subdomain"`
	Page         string `json:"page"`
	OriginalHost string `json:"original_host,omitempty"`
}

func (h *Handler) hospitalPage(w http.ResponseWriter, r *http.Request) {
	hospitalID, err := id.ParseHospitalID(chi.URLParam(r, "hospitalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	hospital, err := h.dir.FindHospital(r.Context(), hospitalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, hospitalPageResponse{
		Site:         "hospital",
		HospitalID:   int64(hospital.ID),
		Name:         hospital.Name,
		Subdomain:    hospital.Subdomain,
		Page:         pagePath(r),
		OriginalHost: requestcontext.OriginalHost(r.Context()),
	})
}

type doctorPageResponse struct {
	Site         string `json:"site"`
	Slug         string `json:"slug"`
	FullName     string `json:"full_name"`
	Specialty    string `json:"specialty,omitempty"`
	Page         string `json:"page"`
	OriginalHost string `json:"original_host,omitempty"`
}

func (h *Handler) doctorPage(w http.ResponseWriter, r *http.Request) {
	slug, err := id.ParseDoctorSlug(chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "doctor not found"))
		return
	}

	doctor, err := h.dir.FindDoctor(r.Context(), slug)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, doctorPageResponse{
		Site:         "doctor",
		Slug:         doctor.Slug.String(),
		FullName:     doctor.FullName,
		Specialty:    doctor.Specialty,
		Page:         pagePath(r),
		OriginalHost: requestcontext.OriginalHost(r.Context()),
	})
}

// pagePath is the tenant-relative path: the part of the URL after the
// microsite prefix, as the visitor typed it.
func pagePath(r *http.Request) string {
	if rest := chi.URLParam(r, "*"); rest != "" {
		return "/" + rest
	}
	return "/"
}
