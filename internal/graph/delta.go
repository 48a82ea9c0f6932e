package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultDeltaSubject is the NATS subject deltas are published on.
const DefaultDeltaSubject = "agendacycle.delta"

// Delta describes the facts one applied mutation changed. Downstream caches
// observe deltas to invalidate what they serve.
type Delta struct {
	Graph   string    `json:"graph"`
	Inserts []Triple  `json:"inserts"`
	Deletes []Triple  `json:"deletes"`
	At      time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, d Delta) error
}

// NoopPublisher drops every delta.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Delta) error { return nil }

// NATSPublisher sends deltas as JSON to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher returns a publisher on conn. A nil connection yields a
// publisher that silently skips, so the service runs without NATS.
func NewNATSPublisher(conn *nats.Conn, subject string) *NATSPublisher {
	if subject == "" {
		subject = DefaultDeltaSubject
	}
	return &NATSPublisher{conn: conn, subject: subject}
}

func (p *NATSPublisher) Publish(ctx context.Context, d Delta) error {
	if p == nil || p.conn == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling delta: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publishing delta to %s: %w", p.subject, err)
	}
	return nil
}

// ConnectNATS dials url with reconnect settings suited to a long-running
// service. An empty url returns a nil connection.
func ConnectNATS(url, name string) (*nats.Conn, error) {
	if url == "" {
		return nil, nil
	}
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return conn, nil
}
