package service

import (
	"context"
	"fmt"

	"printsociety/internal/model"
	"printsociety/internal/pricing"
	"printsociety/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	engine      *pricing.Engine
	group       singleflight.Group
	logger      zerolog.Logger
}

// NewProductService creates a new product service. Concurrent lookups of the same product
// share one database round trip.
func NewProductService(productRepo repository.ProductRepository, engine *pricing.Engine, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		engine:      engine,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves every priceable product.
func (s *productService) GetAll(ctx context.Context) ([]model.Product, error) {
	v, err, _ := s.group.Do("all", func() (any, error) {
		return s.productRepo.GetAll(ctx)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get all products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	products := v.([]model.Product)
	s.logger.Debug().Int("count", len(products)).Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}

	v, err, shared := s.group.Do("product:"+id, func() (any, error) {
		return s.productRepo.GetByID(ctx, id)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	product := v.(*model.Product)
	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}
	if shared {
		s.logger.Debug().Str("product_id", id).Msg("product lookup shared")
	}

	return product, nil
}

// Quote prices a configuration without touching a cart.
func (s *productService) Quote(ctx context.Context, id string, req model.QuoteRequest) (pricing.Quote, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return pricing.Quote{}, err
	}

	quote, err := s.engine.Price(product, req.Quantity, req.Material, req.Finish)
	if err != nil {
		s.logger.Debug().Err(err).Str("product_id", id).Int("quantity", req.Quantity).Msg("quote rejected")
		return pricing.Quote{}, err
	}

	return quote, nil
}
