package cart

import (
	"strings"
	"time"

	"printsociety/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Action is a cart mutation. The set of actions is closed to this package.
type Action interface {
	// apply mutates c in place and reports whether anything changed.
	apply(c *Cart, now time.Time) (bool, error)
}

// Reduce applies a to c. On error, or when the action is a no-op, c is returned unchanged.
// Otherwise UpdatedAt is set to now and every derived total is recomputed.
func Reduce(c Cart, a Action, now time.Time) (Cart, error) {
	next := c.clone()

	changed, err := a.apply(&next, now)
	if err != nil {
		return c, err
	}
	if !changed {
		return c, nil
	}

	next.UpdatedAt = now
	next.recalculate()

	return next, nil
}

// Replay folds actions over c in order, stopping at the first rejection.
func Replay(c Cart, now time.Time, actions ...Action) (Cart, error) {
	for _, a := range actions {
		var err error
		if c, err = Reduce(c, a, now); err != nil {
			return c, err
		}
	}
	return c, nil
}

// AddLineItem adds Item, merging into an existing line with the same configuration.
// A merged line keeps the unit price it was added with.
type AddLineItem struct {
	Item LineItem
}

func (a AddLineItem) apply(c *Cart, _ time.Time) (bool, error) {
	item := a.Item
	if item.Quantity < 1 {
		return false, model.ErrInvalidQuantity
	}

	for i := range c.Items {
		existing := &c.Items[i]
		if existing.sameConfiguration(item) {
			existing.Quantity += item.Quantity
			existing.Subtotal = lineSubtotal(existing.UnitPrice, existing.Quantity)
			return true, nil
		}
	}

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.Subtotal = lineSubtotal(item.UnitPrice, item.Quantity)
	c.Items = append(c.Items, item)

	return true, nil
}

// RemoveLineItem removes a line. Unknown IDs are ignored.
type RemoveLineItem struct {
	ItemID uuid.UUID
}

func (a RemoveLineItem) apply(c *Cart, _ time.Time) (bool, error) {
	i := c.indexOf(a.ItemID)
	if i < 0 {
		return false, nil
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true, nil
}

// UpdateQuantity sets a line's quantity. Quantities below 1 and unknown IDs are ignored.
type UpdateQuantity struct {
	ItemID   uuid.UUID
	Quantity int
}

func (a UpdateQuantity) apply(c *Cart, _ time.Time) (bool, error) {
	if a.Quantity < 1 {
		return false, nil
	}
	i := c.indexOf(a.ItemID)
	if i < 0 {
		return false, nil
	}
	item := &c.Items[i]
	item.Quantity = a.Quantity
	item.Subtotal = lineSubtotal(item.UnitPrice, item.Quantity)
	return true, nil
}

// Clear empties the cart and gives it a new identity. A nil NewID generates one.
type Clear struct {
	NewID uuid.UUID
}

func (a Clear) apply(c *Cart, now time.Time) (bool, error) {
	id := a.NewID
	if id == uuid.Nil {
		id = uuid.New()
	}
	*c = New(id, now)
	return true, nil
}

// ApplyPromo records a resolved discount. Only one promo may be active at a time.
type ApplyPromo struct {
	Code     string
	Discount decimal.Decimal
}

func (a ApplyPromo) apply(c *Cart, _ time.Time) (bool, error) {
	if c.PromoCode != "" {
		return false, model.ErrPromoAlreadyApplied
	}
	code := strings.ToUpper(strings.TrimSpace(a.Code))
	if code == "" {
		return false, model.ErrInvalidCode
	}
	c.PromoCode = code
	c.DiscountAmount = model.NonNegative(a.Discount)
	return true, nil
}

// RemovePromo clears the active promo, if any.
type RemovePromo struct{}

func (RemovePromo) apply(c *Cart, _ time.Time) (bool, error) {
	if c.PromoCode == "" && c.DiscountAmount.IsZero() {
		return false, nil
	}
	c.PromoCode = ""
	c.DiscountAmount = decimal.Zero
	return true, nil
}

// SetShipping selects a shipping option.
type SetShipping struct {
	Option model.ShippingOption
}

func (a SetShipping) apply(c *Cart, _ time.Time) (bool, error) {
	opt := a.Option
	c.ShippingOption = &opt
	return true, nil
}

// SetAddress replaces the shipping and billing addresses. A nil billing address means
// "same as shipping".
type SetAddress struct {
	Shipping model.Address
	Billing  *model.Address
}

func (a SetAddress) apply(c *Cart, _ time.Time) (bool, error) {
	shipping := a.Shipping
	c.ShippingAddress = &shipping
	if a.Billing != nil {
		billing := *a.Billing
		c.BillingAddress = &billing
	} else {
		c.BillingAddress = nil
	}
	return true, nil
}

// AcceptTerms records the customer's acceptance of the terms of sale.
type AcceptTerms struct {
	Accepted bool
}

func (a AcceptTerms) apply(c *Cart, _ time.Time) (bool, error) {
	if c.TermsAccepted == a.Accepted {
		return false, nil
	}
	c.TermsAccepted = a.Accepted
	return true, nil
}

// AttachArtwork stores the uploaded artwork URLs against a line.
type AttachArtwork struct {
	ItemID       uuid.UUID
	URL          string
	ThumbnailURL string
}

func (a AttachArtwork) apply(c *Cart, _ time.Time) (bool, error) {
	i := c.indexOf(a.ItemID)
	if i < 0 {
		return false, model.ErrItemNotFound
	}
	item := &c.Items[i]
	item.ArtworkURL = a.URL
	item.ThumbnailURL = a.ThumbnailURL
	item.ArtworkStatus = model.ArtworkUploaded
	return true, nil
}

func lineSubtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
