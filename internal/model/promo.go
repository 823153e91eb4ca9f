package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a promo code's value is applied.
type DiscountType uint8

const (
	DiscountPercentage DiscountType = iota
	DiscountFixed
)

var discountTypes = Enum[DiscountType]{Kind: "discount type", Names: []string{"percentage", "fixed"}}

func (t DiscountType) String() string                { return discountTypes.Name(t) }
func (t DiscountType) MarshalText() ([]byte, error)  { return discountTypes.Marshal(t) }
func (t *DiscountType) UnmarshalText(b []byte) error { return discountTypes.Unmarshal(t, b) }

// PromoCode is immutable reference data loaded from the promo catalogue.
type PromoCode struct {
	Code           string              `json:"code"`
	DiscountType   DiscountType        `json:"discountType"`
	DiscountValue  decimal.Decimal     `json:"discountValue"`
	MinOrderAmount decimal.NullDecimal `json:"minOrderAmount"`
	MaxDiscount    decimal.NullDecimal `json:"maxDiscount"`
	ExpiresAt      time.Time           `json:"expiresAt"`
	IsActive       bool                `json:"isActive"`
}

// Usable reports whether the code may be redeemed at now. A zero ExpiresAt never expires.
func (p PromoCode) Usable(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	return p.ExpiresAt.IsZero() || !now.After(p.ExpiresAt)
}
