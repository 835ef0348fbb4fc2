package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ecavus/wedding-rsvp/pkg/logger"
)

const (
	RSVPSubmitted = "rsvp.submitted"
)

// RSVPSubmittedEvent is published after a submission commits.
type RSVPSubmittedEvent struct {
	GuestID        int64     `json:"guest_id"`
	FullName       string    `json:"full_name"`
	PhoneNumber    string    `json:"phone_number"`
	Relationship   string    `json:"relationship"`
	HouseholdCount int       `json:"household_count"`
	WasUpdated     bool      `json:"was_updated"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSPublisher) Close() error {
	n.conn.Close()
	return nil
}

// NoopPublisher stands in when no NATS_URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NoopPublisher) Close() error                                       { return nil }
