package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Option is a material or finish choice. PriceMultiplier scales the tier price.
type Option struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	PriceMultiplier decimal.Decimal `json:"priceMultiplier"`
}

// PricingTier prices every quantity in [QuantityMin, QuantityMax].
type PricingTier struct {
	QuantityMin  int             `json:"quantityMin"`
	QuantityMax  int             `json:"quantityMax"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
}

// Contains reports whether quantity falls inside the tier.
func (t PricingTier) Contains(quantity int) bool {
	return t.QuantityMin <= quantity && quantity <= t.QuantityMax
}

// Product represents a printable item in the catalogue.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	MinQuantity int             `json:"minQuantity"`
	MaxQuantity int             `json:"maxQuantity"`
	Sizes       []string        `json:"sizes"`
	Materials   []Option        `json:"materials"`
	Finishes    []Option        `json:"finishes"`
	Tiers       []PricingTier   `json:"tiers"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Material looks up a material option by ID.
func (p *Product) Material(id string) (Option, bool) {
	return findOption(p.Materials, id)
}

// Finish looks up a finish option by ID.
func (p *Product) Finish(id string) (Option, bool) {
	return findOption(p.Finishes, id)
}

// HasSize reports whether size is offered. Products without sizes accept any value.
func (p *Product) HasSize(size string) bool {
	if len(p.Sizes) == 0 {
		return true
	}
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

func findOption(options []Option, id string) (Option, bool) {
	for _, o := range options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}
