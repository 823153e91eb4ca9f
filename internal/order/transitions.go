package order

import (
	"strings"
	"time"

	"printsociety/internal/model"
)

// successor is the only status an admin may advance s to.
func successor(s Status) (Status, bool) {
	switch s {
	case ProofApproved:
		return InProduction, true
	case InProduction:
		return Shipped, true
	case Shipped:
		return Delivered, true
	case PendingProof, Delivered, Cancelled:
		return 0, false
	}
	return 0, false
}

// OnProofApproved records that the linked proof was approved.
func (o *Order) OnProofApproved(now time.Time) error {
	if o.Status != PendingProof {
		return invalidTransition(o.Status, ProofApproved)
	}
	o.Status = ProofApproved
	o.UpdatedAt = now
	return nil
}

// Advance applies a fulfillment event. Only the immediate successor of the current status is
// accepted; delivery additionally needs a tracking number.
func (o *Order) Advance(to Status, now time.Time) error {
	next, ok := successor(o.Status)
	if !ok || next != to {
		return invalidTransition(o.Status, to)
	}
	if to == Delivered && o.TrackingNumber == "" {
		return model.ErrMissingTracking
	}
	o.Status = to
	o.UpdatedAt = now
	return nil
}

// SetTracking records shipment tracking details. It is accepted once the proof is approved and
// until the order is delivered.
func (o *Order) SetTracking(number, url string, eta *time.Time, now time.Time) error {
	switch o.Status {
	case ProofApproved, InProduction, Shipped:
	case PendingProof, Delivered, Cancelled:
		return model.ErrInvalidTransition.WithMessage("Tracking cannot be set on an order that is %s", o.Status)
	}

	number = strings.TrimSpace(number)
	if number == "" {
		return model.ErrMissingTracking
	}

	o.TrackingNumber = number
	o.TrackingURL = strings.TrimSpace(url)
	if eta != nil {
		e := *eta
		o.EstimatedDelivery = &e
	}
	o.UpdatedAt = now
	return nil
}

// Cancel stops a non-terminal order.
func (o *Order) Cancel(reason string, now time.Time) error {
	if o.Status.Terminal() {
		return invalidTransition(o.Status, Cancelled)
	}
	o.Status = Cancelled
	o.CancelReason = strings.TrimSpace(reason)
	o.UpdatedAt = now
	return nil
}

func invalidTransition(from, to Status) error {
	return model.ErrInvalidTransition.WithMessage("This order cannot move from %s to %s", from, to)
}
