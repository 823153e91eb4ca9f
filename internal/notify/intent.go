// Package notify turns lifecycle events into customer emails and relays them through the
// transactional outbox to Kafka, where the mail sender consumes them.
package notify

import (
	"time"

	"printsociety/internal/model"

	"github.com/google/uuid"
)

// Kind is the type of a notification intent.
type Kind uint8

const (
	OrderConfirmed Kind = iota
	ProofReady
	ProofApproved
	RevisionRequested
	OrderShipped
	OrderDelivered
	OrderCancelled
)

var kinds = model.Enum[Kind]{
	Kind: "notification kind",
	Names: []string{
		"order-confirmed", "proof-ready", "proof-approved", "revision-requested",
		"order-shipped", "order-delivered", "order-cancelled",
	},
}

func (k Kind) String() string                { return kinds.Name(k) }
func (k Kind) MarshalText() ([]byte, error)  { return kinds.Marshal(k) }
func (k *Kind) UnmarshalText(b []byte) error { return kinds.Unmarshal(k, b) }

// Intent asks for a customer to be told about a state change. Fields not relevant to Kind are
// left empty.
type Intent struct {
	Kind         Kind
	OrderID      uuid.UUID
	OrderNumber  string
	To           string
	CustomerName string

	Total string

	ProofURL           string
	VersionNumber      int
	Deadline           *time.Time
	RevisionsRemaining int
	Comment            string

	TrackingNumber string
	TrackingURL    string
	Reason         string
}

// Email is a rendered message ready for delivery.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}
