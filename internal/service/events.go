package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// EventPublisher broadcasts domain events to interested consumers.
// Publishing is best-effort; failures are logged, never propagated.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{})
}

type natsEventPublisher struct {
	conn   *nats.Conn
	prefix string
	logger zerolog.Logger
}

type eventEnvelope struct {
	Subject string      `json:"subject"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sent_at"`
}

// NewNATSEventPublisher constructs a NATS-backed publisher. A nil connection
// yields a publisher that drops every event.
func NewNATSEventPublisher(conn *nats.Conn, prefix string, logger zerolog.Logger) EventPublisher {
	return &natsEventPublisher{
		conn:   conn,
		prefix: prefix,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsEventPublisher) Publish(_ context.Context, subject string, payload interface{}) {
	if p.conn == nil {
		return
	}

	full := subject
	if p.prefix != "" {
		full = p.prefix + "." + subject
	}

	data, err := json.Marshal(eventEnvelope{
		Subject: full,
		Payload: payload,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		p.logger.Warn().Err(err).Str("subject", full).Msg("failed to encode event")
		return
	}

	if err := p.conn.Publish(full, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", full).Msg("failed to publish event")
	}
}
