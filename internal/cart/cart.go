// Package cart implements the shopping cart as a pure reducer: Reduce(cart, action, now) returns
// the next cart and never mutates its input.
package cart

import (
	"time"

	"printsociety/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one product configuration and quantity in a cart.
type LineItem struct {
	ID            uuid.UUID           `json:"id"`
	ProductID     string              `json:"productId"`
	ProductName   string              `json:"productName"`
	Quantity      int                 `json:"quantity"`
	Size          string              `json:"size"`
	Material      string              `json:"material"`
	Finish        string              `json:"finish"`
	UnitPrice     decimal.Decimal     `json:"unitPrice"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	ArtworkStatus model.ArtworkStatus `json:"artworkStatus"`
	ArtworkURL    string              `json:"artworkUrl,omitempty"`
	ThumbnailURL  string              `json:"thumbnailUrl,omitempty"`
}

// sameConfiguration reports whether two items describe the same product configuration.
func (li LineItem) sameConfiguration(other LineItem) bool {
	return li.ProductID == other.ProductID &&
		li.Size == other.Size &&
		li.Material == other.Material &&
		li.Finish == other.Finish
}

// Cart is a customer's cart session. Subtotal, ShippingCost, DiscountAmount and Total are derived.
type Cart struct {
	ID              uuid.UUID             `json:"id"`
	Items           []LineItem            `json:"items"`
	ShippingOption  *model.ShippingOption `json:"shippingOption,omitempty"`
	ShippingAddress *model.Address        `json:"shippingAddress,omitempty"`
	BillingAddress  *model.Address        `json:"billingAddress,omitempty"`
	PromoCode       string                `json:"promoCode,omitempty"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	ShippingCost    decimal.Decimal       `json:"shippingCost"`
	DiscountAmount  decimal.Decimal       `json:"discountAmount"`
	Total           decimal.Decimal       `json:"total"`
	TermsAccepted   bool                  `json:"termsAccepted"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// New returns an empty cart.
func New(id uuid.UUID, now time.Time) Cart {
	return Cart{
		ID:             id,
		Items:          []LineItem{},
		Subtotal:       decimal.Zero,
		ShippingCost:   decimal.Zero,
		DiscountAmount: decimal.Zero,
		Total:          decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Item returns the line item with the given ID.
func (c Cart) Item(id uuid.UUID) (LineItem, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.Items[i], true
	}
	return LineItem{}, false
}

// ArtworkComplete reports whether every line item has artwork attached.
func (c Cart) ArtworkComplete() bool {
	for _, item := range c.Items {
		if item.ArtworkStatus == model.ArtworkPending {
			return false
		}
	}
	return len(c.Items) > 0
}

func (c Cart) indexOf(id uuid.UUID) int {
	for i, item := range c.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// clone copies everything a reducer may change, so the caller's cart stays untouched.
func (c Cart) clone() Cart {
	next := c
	next.Items = append(make([]LineItem, 0, len(c.Items)+1), c.Items...)
	if c.ShippingOption != nil {
		opt := *c.ShippingOption
		next.ShippingOption = &opt
	}
	if c.ShippingAddress != nil {
		addr := *c.ShippingAddress
		next.ShippingAddress = &addr
	}
	if c.BillingAddress != nil {
		addr := *c.BillingAddress
		next.BillingAddress = &addr
	}
	return next
}

// recalculate derives the totals from scratch.
func (c *Cart) recalculate() {
	subtotal := decimal.Zero
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.Subtotal)
	}
	c.Subtotal = subtotal

	c.ShippingCost = decimal.Zero
	if c.ShippingOption != nil {
		c.ShippingCost = c.ShippingOption.Cost
	}

	c.Total = model.NonNegative(c.Subtotal.Add(c.ShippingCost).Sub(c.DiscountAmount))
}

// Summary is the checkout view of a cart, including the one-time setup fee.
type Summary struct {
	ItemCount      int             `json:"itemCount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingCost   decimal.Decimal `json:"shippingCost"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	SetupFee       decimal.Decimal `json:"setupFee"`
	Total          decimal.Decimal `json:"total"`
}

// Summarize adds the setup fee on top of the cart total. Empty carts carry no fee.
func Summarize(c Cart, setupFee decimal.Decimal) Summary {
	fee := decimal.Zero
	if len(c.Items) > 0 {
		fee = setupFee
	}
	return Summary{
		ItemCount:      len(c.Items),
		Subtotal:       c.Subtotal,
		ShippingCost:   c.ShippingCost,
		DiscountAmount: c.DiscountAmount,
		SetupFee:       fee,
		Total:          c.Total.Add(fee),
	}
}
