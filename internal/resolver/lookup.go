package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	id "careport/pkg/domain"
)

// HospitalBySubdomain resolves a label against the hospital directory:
// GET {base}/api/hospitals/subdomain/{label}. A 2xx response carries the
// hospital ID; 404 is a clean miss.
type HospitalBySubdomain struct {
	baseURL string
	client  *http.Client
}

// NewHospitalBySubdomain builds the hospital lookup strategy. The timeout
// bounds each call; no retries, a single fast failure falls through.
func NewHospitalBySubdomain(baseURL string, timeout time.Duration) *HospitalBySubdomain {
	return &HospitalBySubdomain{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (h *HospitalBySubdomain) Name() string { return "hospital-by-subdomain" }

func (h *HospitalBySubdomain) Resolve(ctx context.Context, label string) (Binding, bool, error) {
	body, ok, err := get(ctx, h.client, h.baseURL+"/api/hospitals/subdomain/"+url.PathEscape(label))
	if err != nil || !ok {
		return Binding{}, false, err
	}

	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Binding{}, false, fmt.Errorf("decode hospital lookup response: %w", err)
	}
	if payload.ID <= 0 {
		return Binding{}, false, fmt.Errorf("hospital lookup returned invalid id %d", payload.ID)
	}

	return Binding{Kind: KindHospital, HospitalID: id.HospitalID(payload.ID)}, true, nil
}

// DoctorBySlug resolves a label against the doctor directory:
// GET {base}/api/doctors/slug/{label}. A 2xx response confirms the slug
// exists; the label itself is the tenant identifier.
type DoctorBySlug struct {
	baseURL string
	client  *http.Client
}

// NewDoctorBySlug builds the doctor lookup strategy.
func NewDoctorBySlug(baseURL string, timeout time.Duration) *DoctorBySlug {
	return &DoctorBySlug{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (d *DoctorBySlug) Name() string { return "doctor-by-slug" }

func (d *DoctorBySlug) Resolve(ctx context.Context, label string) (Binding, bool, error) {
	_, ok, err := get(ctx, d.client, d.baseURL+"/api/doctors/slug/"+url.PathEscape(label))
	if err != nil || !ok {
		return Binding{}, false, err
	}
	return Binding{Kind: KindDoctor, DoctorSlug: id.DoctorSlug(label)}, true, nil
}

// get performs one lookup call. 2xx returns the body, 404 is a clean miss,
// anything else is a degraded lookup.
func get(ctx context.Context, client *http.Client, rawURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build lookup request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("lookup call: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if err != nil {
			return nil, false, fmt.Errorf("read lookup response: %w", err)
		}
		return body, true, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}
}
