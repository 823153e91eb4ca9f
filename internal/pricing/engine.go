// Package pricing turns a product configuration and quantity into a unit price and subtotal.
package pricing

import (
	"fmt"
	"sort"

	"printsociety/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultSetupFee is the one-time charge added to a checkout summary.
var DefaultSetupFee = decimal.NewFromInt(25)

// Quote is the price of one product configuration at one quantity.
type Quote struct {
	ProductID  string          `json:"productId"`
	Quantity   int             `json:"quantity"`
	MaterialID string          `json:"materialId"`
	FinishID   string          `json:"finishId"`
	TierPrice  decimal.Decimal `json:"tierPrice"`
	Multiplier decimal.Decimal `json:"multiplier"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Subtotal   decimal.Decimal `json:"subtotal"`

	// Warnings holds non-blocking conditions such as model.ErrUnknownOption.
	Warnings []error `json:"-"`
}

// Engine prices product configurations.
type Engine struct {
	logger zerolog.Logger
}

// NewEngine creates a pricing engine.
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{
		logger: logger.With().Str("component", "pricing-engine").Logger(),
	}
}

// Price computes the unit price and subtotal for quantity units of product.
// Unknown material or finish selectors price at multiplier 1 and are reported in Quote.Warnings.
func (e *Engine) Price(product *model.Product, quantity int, materialID, finishID string) (Quote, error) {
	if product == nil {
		panic("pricing: nil product")
	}

	if quantity < product.MinQuantity || quantity > product.MaxQuantity {
		return Quote{}, model.ErrInvalidQuantity
	}

	quote := Quote{
		ProductID:  product.ID,
		Quantity:   quantity,
		MaterialID: materialID,
		FinishID:   finishID,
	}

	tier, ok := SelectTier(product.Tiers, quantity)
	if ok {
		quote.TierPrice = tier.PricePerUnit
	} else {
		e.logger.Warn().
			Str("product_id", product.ID).
			Int("quantity", quantity).
			Msg("no pricing tier matched, using base price")
		quote.TierPrice = product.BasePrice
	}

	quote.Multiplier = decimal.NewFromInt(1)
	if material, ok := product.Material(materialID); ok {
		quote.Multiplier = quote.Multiplier.Mul(material.PriceMultiplier)
	} else {
		quote.Warnings = append(quote.Warnings, fmt.Errorf("material %q: %w", materialID, model.ErrUnknownOption))
	}
	if finish, ok := product.Finish(finishID); ok {
		quote.Multiplier = quote.Multiplier.Mul(finish.PriceMultiplier)
	} else {
		quote.Warnings = append(quote.Warnings, fmt.Errorf("finish %q: %w", finishID, model.ErrUnknownOption))
	}

	if len(quote.Warnings) > 0 {
		e.logger.Debug().
			Str("product_id", product.ID).
			Str("material_id", materialID).
			Str("finish_id", finishID).
			Msg("unknown option selector, multiplier defaulted to 1")
	}

	quote.UnitPrice = quote.TierPrice.Mul(quote.Multiplier)
	quote.Subtotal = quote.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))

	return quote, nil
}

// SelectTier returns the tier containing quantity.
func SelectTier(tiers []model.PricingTier, quantity int) (model.PricingTier, bool) {
	for _, t := range tiers {
		if t.Contains(quantity) {
			return t, true
		}
	}
	return model.PricingTier{}, false
}

// ValidateTiers checks that the product's tiers are well formed, do not overlap and leave no
// quantity in [MinQuantity, MaxQuantity] unpriced. Tiers are sorted in place by QuantityMin.
func ValidateTiers(product *model.Product) error {
	if product.MinQuantity < 1 || product.MaxQuantity < product.MinQuantity {
		return fmt.Errorf("product %s: invalid quantity range [%d, %d]", product.ID, product.MinQuantity, product.MaxQuantity)
	}
	if len(product.Tiers) == 0 {
		return fmt.Errorf("product %s: no pricing tiers", product.ID)
	}

	tiers := product.Tiers
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].QuantityMin < tiers[j].QuantityMin })

	next := product.MinQuantity
	for i, t := range tiers {
		if t.QuantityMin > t.QuantityMax {
			return fmt.Errorf("product %s: tier [%d, %d] is inverted", product.ID, t.QuantityMin, t.QuantityMax)
		}
		if t.PricePerUnit.IsNegative() {
			return fmt.Errorf("product %s: tier [%d, %d] has a negative price", product.ID, t.QuantityMin, t.QuantityMax)
		}
		switch {
		case t.QuantityMin > next:
			return fmt.Errorf("product %s: quantities %d-%d are not priced", product.ID, next, t.QuantityMin-1)
		case i > 0 && t.QuantityMin < next:
			return fmt.Errorf("product %s: tier [%d, %d] overlaps a previous tier", product.ID, t.QuantityMin, t.QuantityMax)
		}
		next = t.QuantityMax + 1
	}

	if next <= product.MaxQuantity {
		return fmt.Errorf("product %s: quantities %d-%d are not priced", product.ID, next, product.MaxQuantity)
	}

	return nil
}
