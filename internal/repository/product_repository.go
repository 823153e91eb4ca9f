package repository

import (
	"context"
	"fmt"

	"printsociety/internal/model"
	"printsociety/internal/pricing"

	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db DB, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		db:     db,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// GetAll retrieves every product with its options and pricing tiers.
func (r *productRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT id, name, category, description, base_price, min_quantity, max_quantity, sizes, created_at
		FROM products
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Description, &p.BasePrice,
			&p.MinQuantity, &p.MaxQuantity, &p.Sizes, &p.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if err := r.loadDetails(ctx, products); err != nil {
		return nil, err
	}

	result := make([]model.Product, 0, len(products))
	for _, p := range products {
		if err := pricing.ValidateTiers(p); err != nil {
			r.logger.Error().Err(err).Str("product_id", p.ID).Msg("skipping product with invalid pricing tiers")
			continue
		}
		result = append(result, *p)
	}

	return result, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `
		SELECT id, name, category, description, base_price, min_quantity, max_quantity, sizes, created_at
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Category, &p.Description, &p.BasePrice,
		&p.MinQuantity, &p.MaxQuantity, &p.Sizes, &p.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	if err := r.loadDetails(ctx, []*model.Product{&p}); err != nil {
		return nil, err
	}

	if err := pricing.ValidateTiers(&p); err != nil {
		r.logger.Error().Err(err).Str("product_id", id).Msg("product has invalid pricing tiers")
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	return &p, nil
}

// loadDetails fills in the options and tiers of products with one query each.
func (r *productRepository) loadDetails(ctx context.Context, products []*model.Product) error {
	if len(products) == 0 {
		return nil
	}

	byID := make(map[string]*model.Product, len(products))
	ids := make([]string, len(products))
	for i, p := range products {
		byID[p.ID] = p
		ids[i] = p.ID
		p.Materials = []model.Option{}
		p.Finishes = []model.Option{}
		p.Tiers = []model.PricingTier{}
	}

	optionsQuery := `
		SELECT product_id, kind, id, name, price_multiplier
		FROM product_options
		WHERE product_id = ANY($1)
		ORDER BY product_id, kind, position
	`

	rows, err := r.db.Query(ctx, optionsQuery, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query product options")
		return fmt.Errorf("failed to query product options: %w", err)
	}
	for rows.Next() {
		var productID, kind string
		var o model.Option
		if err := rows.Scan(&productID, &kind, &o.ID, &o.Name, &o.PriceMultiplier); err != nil {
			rows.Close()
			r.logger.Error().Err(err).Msg("failed to scan product option row")
			return fmt.Errorf("failed to scan product option: %w", err)
		}
		p := byID[productID]
		switch kind {
		case "material":
			p.Materials = append(p.Materials, o)
		case "finish":
			p.Finishes = append(p.Finishes, o)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product option rows")
		return fmt.Errorf("error iterating product options: %w", err)
	}

	tiersQuery := `
		SELECT product_id, quantity_min, quantity_max, price_per_unit
		FROM pricing_tiers
		WHERE product_id = ANY($1)
		ORDER BY product_id, quantity_min
	`

	rows, err = r.db.Query(ctx, tiersQuery, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query pricing tiers")
		return fmt.Errorf("failed to query pricing tiers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var productID string
		var t model.PricingTier
		if err := rows.Scan(&productID, &t.QuantityMin, &t.QuantityMax, &t.PricePerUnit); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan pricing tier row")
			return fmt.Errorf("failed to scan pricing tier: %w", err)
		}
		p := byID[productID]
		p.Tiers = append(p.Tiers, t)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating pricing tier rows")
		return fmt.Errorf("error iterating pricing tiers: %w", err)
	}

	return nil
}
