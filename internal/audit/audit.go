// Package audit captures structured operational events from the edge:
// logins, logouts, and tenant provisioning. Emission is best-effort: an
// audit failure never fails the request that produced it.
package audit

import (
	"context"
	"log/slog"
	"time"

	"careport/pkg/requestcontext"
)

// Action names an audited operation.
type Action string

const (
	ActionLoginSucceeded      Action = "login_succeeded"
	ActionLoginFailed         Action = "login_failed"
	ActionLogout              Action = "logout"
	ActionHospitalProvisioned Action = "hospital_provisioned"
	ActionDoctorProvisioned   Action = "doctor_provisioned"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	UserID    string    `json:"user_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Sink persists or forwards events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher enriches and emits events. It is append-only and swaps sinks
// easily for tests.
type Publisher struct {
	sink   Sink
	logger *slog.Logger
}

func NewPublisher(sink Sink, logger *slog.Logger) *Publisher {
	return &Publisher{sink: sink, logger: logger}
}

// Emit records one event, filling timestamp and request correlation from
// context. Failures are logged, never returned: audit is ops-category here,
// not a compliance gate.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil || p.sink == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}

	if err := p.sink.Append(ctx, event); err != nil && p.logger != nil {
		p.logger.ErrorContext(ctx, "audit emit failed",
			"action", string(event.Action),
			"error", err,
		)
	}
}
