// Package promo resolves promo codes to discounts against a catalog loaded at startup.
package promo

import (
	"context"

	"github.com/shopspring/decimal"
)

// Resolver turns a promo code into a discount for a cart subtotal.
type Resolver interface {
	// Resolve returns the discount for code at subtotal, or model.ErrInvalidCode /
	// model.ErrMinimumNotMet. Codes match case-insensitively.
	Resolve(code string, subtotal decimal.Decimal) (decimal.Decimal, error)
}

// Loader reads one catalog source.
type Loader interface {
	// Load reads a gzipped JSON-lines promo file and returns its codes.
	Load(ctx context.Context, path string) (*Catalog, error)
}
