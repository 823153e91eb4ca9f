package promo

import (
	"context"
	"fmt"

	"printsociety/internal/clock"
	"printsociety/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var hundred = decimal.NewFromInt(100)

// resolver implements Resolver over a fixed catalog.
type resolver struct {
	catalog *Catalog
	clock   clock.Clock
	logger  zerolog.Logger
}

// NewResolver creates a resolver. The catalog must not be modified afterwards.
func NewResolver(catalog *Catalog, clk clock.Clock, logger zerolog.Logger) Resolver {
	return &resolver{
		catalog: catalog,
		clock:   clk,
		logger:  logger.With().Str("component", "promo-resolver").Logger(),
	}
}

func (r *resolver) Resolve(code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	promo, ok := r.catalog.Lookup(code)
	if !ok || !promo.Usable(r.clock.Now()) {
		r.logger.Debug().Str("promo_code", code).Bool("known", ok).Msg("promo code rejected")
		return decimal.Zero, model.ErrInvalidCode
	}

	if promo.MinOrderAmount.Valid && subtotal.LessThan(promo.MinOrderAmount.Decimal) {
		return decimal.Zero, model.ErrMinimumNotMet.WithMessage(
			"This promo code needs an order of at least %s", model.Display(promo.MinOrderAmount.Decimal))
	}

	return Discount(promo, subtotal), nil
}

// Discount computes the discount promo grants at subtotal, ignoring eligibility.
// The result is never negative and never exceeds subtotal.
func Discount(promo model.PromoCode, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal

	switch promo.DiscountType {
	case model.DiscountPercentage:
		discount = subtotal.Mul(promo.DiscountValue).Div(hundred)
		if promo.MaxDiscount.Valid && discount.GreaterThan(promo.MaxDiscount.Decimal) {
			discount = promo.MaxDiscount.Decimal
		}
	case model.DiscountFixed:
		discount = decimal.Min(promo.DiscountValue, subtotal)
	default:
		panic(fmt.Sprintf("promo: unhandled discount type %v", promo.DiscountType))
	}

	return model.NonNegative(decimal.Min(discount, subtotal))
}

// LoadCatalog loads every path concurrently and merges the results in path order, so a later
// source overrides codes from an earlier one. Any failed source fails the whole load.
func LoadCatalog(ctx context.Context, loader Loader, paths []string, logger zerolog.Logger) (*Catalog, error) {
	logger = logger.With().Str("component", "promo-catalog").Logger()

	logger.Info().Int("source_count", len(paths)).Msg("loading promo catalog")

	parts := make([]*Catalog, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			part, err := loader.Load(gctx, path)
			if err != nil {
				return fmt.Errorf("failed to load promo source %s: %w", path, err)
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("promo catalog load failed")
		return nil, err
	}

	catalog := NewCatalog()
	for _, part := range parts {
		catalog.Merge(part)
	}

	logger.Info().Int("total_codes", catalog.Size()).Msg("promo catalog loaded")

	return catalog, nil
}
