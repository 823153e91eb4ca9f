package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a notification outbox row. It is written in the same transaction as the state
// change it reports and published later by the Relay.
type Event struct {
	ID          int64
	AggregateID uuid.UUID
	EventType   string
	Payload     json.RawMessage
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// payload is the message body consumed by the mail sender.
type payload struct {
	Kind        Kind      `json:"kind"`
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Email
}

// NewEvent renders intent and packages it as an unsaved outbox event keyed by the order.
func NewEvent(intent Intent, now time.Time) (Event, error) {
	email, err := Render(intent)
	if err != nil {
		return Event{}, err
	}

	body, err := json.Marshal(payload{
		Kind:        intent.Kind,
		OrderID:     intent.OrderID,
		OrderNumber: intent.OrderNumber,
		Email:       email,
	})
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", intent.Kind, err)
	}

	return Event{
		AggregateID: intent.OrderID,
		EventType:   intent.Kind.String(),
		Payload:     body,
		CreatedAt:   now,
	}, nil
}
