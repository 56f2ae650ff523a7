package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Subjects published after a successful commit. Publishing never gates
// a response; failures are logged and dropped.
const (
	SubjectTenantRegistered = "teamspace.tenant.registered"
	SubjectUserRegistered   = "teamspace.user.registered"
	SubjectUserActivated    = "teamspace.user.activated"
)

// Publisher emits domain events
type Publisher interface {
	Publish(subject string, payload interface{})
}

// NATSPublisher publishes events to NATS
type NATSPublisher struct {
	nc *nats.Conn
}

// NewNATSPublisher creates a publisher on an existing connection
func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

// Publish marshals and publishes the payload with a timestamp envelope
func (p *NATSPublisher) Publish(subject string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"time":    time.Now().UTC(),
		"payload": payload,
	})
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Failed to marshal event")
		return
	}

	if err := p.nc.Publish(subject, data); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("Failed to publish event")
	}
}

// NoopPublisher discards events; used when NATS is not configured
type NoopPublisher struct{}

// Publish does nothing
func (NoopPublisher) Publish(subject string, payload interface{}) {}
