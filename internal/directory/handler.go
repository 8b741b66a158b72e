package directory

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "careport/pkg/domain-errors"
	"careport/pkg/platform/httputil"
)

// Handler exposes the directory over HTTP: the lookup endpoints the
// resolver's strategies call, and the admin provisioning surface.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the public lookup routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/hospitals/subdomain/{label}", h.hospitalBySubdomain)
	r.Get("/api/doctors/slug/{label}", h.doctorBySlug)
}

// RegisterAdmin mounts the provisioning routes. The caller is expected to
// guard them with the admin token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/api/admin/hospitals", h.provisionHospital)
	r.Post("/api/admin/doctors", h.provisionDoctor)
}

type hospitalResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	CreatedAt time.Time `json:"created_at"`
}

type doctorResponse struct {
	Slug      string    `json:"slug"`
	FullName  string    `json:"full_name"`
	Specialty string    `json:"specialty,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) hospitalBySubdomain(w http.ResponseWriter, r *http.Request) {
	hospital, err := h.svc.LookupHospitalBySubdomain(r.Context(), chi.URLParam(r, "label"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, hospitalResponse{
		ID:        int64(hospital.ID),
		Name:      hospital.Name,
		Subdomain: hospital.Subdomain,
		CreatedAt: hospital.CreatedAt,
	})
}

func (h *Handler) doctorBySlug(w http.ResponseWriter, r *http.Request) {
	doctor, err := h.svc.LookupDoctorBySlug(r.Context(), chi.URLParam(r, "label"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doctorResponse{
		Slug:      doctor.Slug.String(),
		FullName:  doctor.FullName,
		Specialty: doctor.Specialty,
		CreatedAt: doctor.CreatedAt,
	})
}

type provisionHospitalRequest struct {
	Name      string `json:"name"`
	Subdomain string `json:"subdomain"`
}

func (h *Handler) provisionHospital(w http.ResponseWriter, r *http.Request) {
	var req provisionHospitalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}

	hospital, err := h.svc.ProvisionHospital(r.Context(), req.Name, req.Subdomain)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, hospitalResponse{
		ID:        int64(hospital.ID),
		Name:      hospital.Name,
		Subdomain: hospital.Subdomain,
		CreatedAt: hospital.CreatedAt,
	})
}

type provisionDoctorRequest struct {
	FullName  string `json:"full_name"`
	Specialty string `json:"specialty"`
	Slug      string `json:"slug"`
}

func (h *Handler) provisionDoctor(w http.ResponseWriter, r *http.Request) {
	var req provisionDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}

	doctor, err := h.svc.ProvisionDoctor(r.Context(), req.FullName, req.Specialty, req.Slug)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doctorResponse{
		Slug:      doctor.Slug.String(),
		FullName:  doctor.FullName,
		Specialty: doctor.Specialty,
		CreatedAt: doctor.CreatedAt,
	})
}
