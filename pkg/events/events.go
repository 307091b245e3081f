package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diagnosis/luxsuv-accounts/pkg/logger"
	"github.com/nats-io/nats.go"
	"github.com/segmentio/ksuid"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

// Envelope wraps every published payload.
type Envelope struct {
	ID        string          `json:"id"`
	Subject   string          `json:"subject"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func NewEnvelope(subject string, data interface{}) (*Envelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return &Envelope{
		ID:        ksuid.New().String(),
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Data:      payload,
	}, nil
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url, name string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name(name), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	env, err := NewEnvelope(subject, data)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "event_id", env.ID)

	return n.conn.Publish(subject, payload)
}

func (n *NATSPublisher) Close() error {
	return n.conn.Drain()
}

// NoopPublisher drops events; used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NoopPublisher) Close() error                                       { return nil }

const (
	AccountRegistered        = "account.registered"
	AccountVerified          = "account.verified"
	AccountPendingReconciled = "account.pending.reconciled"
	AccountPendingSwept      = "account.pending.swept"
)

type AccountRegisteredEvent struct {
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Method    string    `json:"method"`
	CreatedAt time.Time `json:"created_at"`
}

type AccountVerifiedEvent struct {
	AccountID  string    `json:"account_id"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	VerifiedAt time.Time `json:"verified_at"`
}

type AccountPendingReconciledEvent struct {
	CanonicalID string `json:"canonical_id"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Removed     int    `json:"removed"`
}

type AccountPendingSweptEvent struct {
	Removed   int64     `json:"removed"`
	OlderThan time.Time `json:"older_than"`
}
