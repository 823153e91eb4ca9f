// Package order implements the order lifecycle from checkout to delivery.
package order

import (
	"fmt"
	"strings"
	"time"

	"printsociety/internal/cart"
	"printsociety/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is an order lifecycle state.
type Status uint8

const (
	PendingProof Status = iota
	ProofApproved
	InProduction
	Shipped
	Delivered
	Cancelled
)

var statuses = model.Enum[Status]{
	Kind:  "order status",
	Names: []string{"pending-proof", "proof-approved", "in-production", "shipped", "delivered", "cancelled"},
}

// ParseStatus parses a status name such as "in-production".
func ParseStatus(s string) (Status, error) { return statuses.Parse(s) }

func (s Status) String() string                { return statuses.Name(s) }
func (s Status) MarshalText() ([]byte, error)  { return statuses.Marshal(s) }
func (s *Status) UnmarshalText(b []byte) error { return statuses.Unmarshal(s, b) }

// Terminal reports whether the order can no longer change status.
func (s Status) Terminal() bool {
	return s == Delivered || s == Cancelled
}

// Item is a line item frozen at checkout.
type Item struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	Quantity     int             `json:"quantity"`
	Size         string          `json:"size"`
	Material     string          `json:"material"`
	Finish       string          `json:"finish"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ArtworkURL   string          `json:"artworkUrl,omitempty"`
	ThumbnailURL string          `json:"thumbnailUrl,omitempty"`
}

// Order is a placed order.
type Order struct {
	ID                uuid.UUID       `json:"id"`
	OrderNumber       string          `json:"orderNumber"`
	Status            Status          `json:"status"`
	Items             []Item          `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	ShippingCost      decimal.Decimal `json:"shippingCost"`
	DiscountAmount    decimal.Decimal `json:"discountAmount"`
	SetupFee          decimal.Decimal `json:"setupFee"`
	Total             decimal.Decimal `json:"total"`
	PromoCode         string          `json:"promoCode,omitempty"`
	ShippingMethod    string          `json:"shippingMethod"`
	ShippingAddress   model.Address   `json:"shippingAddress"`
	BillingAddress    model.Address   `json:"billingAddress"`
	CustomerEmail     string          `json:"customerEmail"`
	TrackingNumber    string          `json:"trackingNumber,omitempty"`
	TrackingURL       string          `json:"trackingUrl,omitempty"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty"`
	ProofID           uuid.UUID       `json:"proofId"`
	CancelReason      string          `json:"cancelReason,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// NewOrderNumber formats the customer-facing order number, e.g. PS-20260410-3F9A0C.
func NewOrderNumber(id uuid.UUID, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:6])
	return fmt.Sprintf("PS-%s-%s", now.UTC().Format("20060102"), suffix)
}

// FromCart freezes a cart into a new order awaiting proof approval. The setup fee is added
// on top of the cart total.
func FromCart(c cart.Cart, id, proofID uuid.UUID, setupFee decimal.Decimal, now time.Time) (*Order, error) {
	switch {
	case len(c.Items) == 0:
		return nil, model.ErrEmptyCart
	case !c.TermsAccepted:
		return nil, model.ErrTermsNotAccepted
	case !c.ShippingAddress.Complete():
		return nil, model.ErrMissingAddress
	case c.ShippingOption == nil:
		return nil, model.ErrMissingShipping
	}

	items := make([]Item, len(c.Items))
	for i, li := range c.Items {
		items[i] = Item{
			ID:           li.ID,
			ProductID:    li.ProductID,
			ProductName:  li.ProductName,
			Quantity:     li.Quantity,
			Size:         li.Size,
			Material:     li.Material,
			Finish:       li.Finish,
			UnitPrice:    li.UnitPrice,
			Subtotal:     li.Subtotal,
			ArtworkURL:   li.ArtworkURL,
			ThumbnailURL: li.ThumbnailURL,
		}
	}

	billing := *c.ShippingAddress
	if c.BillingAddress != nil {
		billing = *c.BillingAddress
	}

	summary := cart.Summarize(c, setupFee)

	return &Order{
		ID:              id,
		OrderNumber:     NewOrderNumber(id, now),
		Status:          PendingProof,
		Items:           items,
		Subtotal:        summary.Subtotal,
		ShippingCost:    summary.ShippingCost,
		DiscountAmount:  summary.DiscountAmount,
		SetupFee:        summary.SetupFee,
		Total:           summary.Total,
		PromoCode:       c.PromoCode,
		ShippingMethod:  c.ShippingOption.ID,
		ShippingAddress: *c.ShippingAddress,
		BillingAddress:  billing,
		CustomerEmail:   c.ShippingAddress.Email,
		ProofID:         proofID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
