package audit

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careport/pkg/requestcontext"
)

func TestPublisherEnrichesFromContext(t *testing.T) {
	sink := NewMemorySink()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	p := NewPublisher(sink, logger)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)
	ctx = requestcontext.WithRequestID(ctx, "req-42")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", "test-agent")

	p.Emit(ctx, Event{Action: ActionLoginSucceeded, Subject: "pat@example.com"})

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, at, events[0].Timestamp)
	assert.Equal(t, "req-42", events[0].RequestID)
	assert.Equal(t, "203.0.113.9", events[0].ClientIP)
}

func TestPublisherIsNilSafe(t *testing.T) {
	var p *Publisher
	assert.NotPanics(t, func() {
		p.Emit(context.Background(), Event{Action: ActionLogout})
	})
}
