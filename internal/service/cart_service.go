package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"printsociety/internal/artwork"
	"printsociety/internal/cache"
	"printsociety/internal/cart"
	"printsociety/internal/clock"
	"printsociety/internal/model"
	"printsociety/internal/pricing"
	"printsociety/internal/promo"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService. Every mutation is a load, reduce, store round trip.
type cartService struct {
	store    cache.CartStore
	products ProductService
	engine   *pricing.Engine
	promos   promo.Resolver
	artwork  ArtworkStore
	settings Settings
	clock    clock.Clock
	logger   zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	store cache.CartStore,
	products ProductService,
	engine *pricing.Engine,
	promos promo.Resolver,
	artworkStore ArtworkStore,
	settings Settings,
	clk clock.Clock,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		store:    store,
		products: products,
		engine:   engine,
		promos:   promos,
		artwork:  artworkStore,
		settings: settings,
		clock:    clk,
		logger:   logger.With().Str("service", "cart").Logger(),
	}
}

func (s *cartService) Create(ctx context.Context) (cart.Cart, error) {
	c := cart.New(uuid.New(), s.clock.Now())
	if err := s.save(ctx, c); err != nil {
		return cart.Cart{}, err
	}

	s.logger.Debug().Str("cart_id", c.ID.String()).Msg("cart created")
	return c, nil
}

func (s *cartService) Get(ctx context.Context, id uuid.UUID) (cart.Cart, error) {
	c, err := s.store.Get(ctx, id)
	if errors.Is(err, cache.ErrCacheMiss) {
		return cart.Cart{}, model.ErrCartNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("cart_id", id.String()).Msg("failed to load cart")
		return cart.Cart{}, fmt.Errorf("failed to load cart: %w", err)
	}
	return c, nil
}

// AddItem prices the configuration and adds it to the cart.
func (s *cartService) AddItem(ctx context.Context, id uuid.UUID, req model.AddItemRequest) (cart.Cart, error) {
	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return cart.Cart{}, err
	}

	if !product.HasSize(req.Size) {
		s.logger.Warn().
			Str("product_id", product.ID).
			Str("size", req.Size).
			Msg("size not offered for product")
	}

	quote, err := s.engine.Price(product, req.Quantity, req.Material, req.Finish)
	if err != nil {
		return cart.Cart{}, err
	}
	for _, w := range quote.Warnings {
		s.logger.Warn().Err(w).Str("product_id", product.ID).Msg("priced with default multiplier")
	}

	return s.mutateItems(ctx, id, cart.AddLineItem{Item: cart.LineItem{
		ID:          uuid.New(),
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    req.Quantity,
		Size:        req.Size,
		Material:    req.Material,
		Finish:      req.Finish,
		UnitPrice:   quote.UnitPrice,
	}})
}

func (s *cartService) UpdateQuantity(ctx context.Context, id, itemID uuid.UUID, quantity int) (cart.Cart, error) {
	return s.mutateItems(ctx, id, cart.UpdateQuantity{ItemID: itemID, Quantity: quantity})
}

func (s *cartService) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (cart.Cart, error) {
	return s.mutateItems(ctx, id, cart.RemoveLineItem{ItemID: itemID})
}

// Clear empties the cart. The returned cart has a new ID and the old session is dropped.
func (s *cartService) Clear(ctx context.Context, id uuid.UUID) (cart.Cart, error) {
	c, err := s.mutate(ctx, id, cart.Clear{NewID: uuid.New()})
	if err != nil {
		return cart.Cart{}, err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("cart_id", id.String()).Msg("failed to drop cleared cart")
	}
	return c, nil
}

// ApplyPromo resolves code against the cart's current subtotal.
func (s *cartService) ApplyPromo(ctx context.Context, id uuid.UUID, code string) (cart.Cart, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return cart.Cart{}, err
	}

	discount, err := s.promos.Resolve(code, c.Subtotal)
	if err != nil {
		s.logger.Debug().Err(err).Str("cart_id", id.String()).Msg("promo code rejected")
		return cart.Cart{}, err
	}

	return s.apply(ctx, c, cart.ApplyPromo{Code: code, Discount: discount})
}

func (s *cartService) RemovePromo(ctx context.Context, id uuid.UUID) (cart.Cart, error) {
	return s.mutate(ctx, id, cart.RemovePromo{})
}

func (s *cartService) SetShipping(ctx context.Context, id uuid.UUID, optionID string) (cart.Cart, error) {
	for _, opt := range s.settings.ShippingOptions {
		if opt.ID == optionID {
			return s.mutate(ctx, id, cart.SetShipping{Option: opt})
		}
	}
	return cart.Cart{}, model.ErrUnknownShipping
}

func (s *cartService) SetAddress(ctx context.Context, id uuid.UUID, req model.AddressRequest) (cart.Cart, error) {
	return s.mutate(ctx, id, cart.SetAddress{Shipping: req.Shipping, Billing: req.Billing})
}

func (s *cartService) AcceptTerms(ctx context.Context, id uuid.UUID, accepted bool) (cart.Cart, error) {
	return s.mutate(ctx, id, cart.AcceptTerms{Accepted: accepted})
}

// UploadArtwork stores the file and attaches it to the line item.
func (s *cartService) UploadArtwork(ctx context.Context, id, itemID uuid.UUID, contentType string, size int64, body io.Reader) (cart.Cart, error) {
	if err := artwork.Validate(contentType, size, s.settings.MaxArtworkBytes); err != nil {
		return cart.Cart{}, err
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return cart.Cart{}, err
	}
	if _, ok := c.Item(itemID); !ok {
		return cart.Cart{}, model.ErrItemNotFound
	}

	upload, err := s.artwork.Put(ctx, id, itemID, contentType, size, body)
	if err != nil {
		s.logger.Error().Err(err).Str("cart_id", id.String()).Str("item_id", itemID.String()).Msg("artwork upload failed")
		return cart.Cart{}, fmt.Errorf("failed to upload artwork: %w", err)
	}

	return s.apply(ctx, c, cart.AttachArtwork{ItemID: itemID, URL: upload.URL, ThumbnailURL: upload.ThumbnailURL})
}

func (s *cartService) Summary(ctx context.Context, id uuid.UUID) (cart.Summary, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return cart.Summary{}, err
	}
	return cart.Summarize(c, s.settings.SetupFee), nil
}

func (s *cartService) ShippingOptions() []model.ShippingOption {
	return s.settings.ShippingOptions
}

func (s *cartService) mutate(ctx context.Context, id uuid.UUID, action cart.Action) (cart.Cart, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return cart.Cart{}, err
	}
	return s.apply(ctx, c, action)
}

// mutateItems applies a line item change, then re-resolves the active promo against the new
// subtotal. A promo that no longer qualifies is dropped.
func (s *cartService) mutateItems(ctx context.Context, id uuid.UUID, action cart.Action) (cart.Cart, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return cart.Cart{}, err
	}

	now := s.clock.Now()
	next, err := cart.Reduce(c, action, now)
	if err != nil {
		s.logger.Debug().Err(err).Str("cart_id", c.ID.String()).Msgf("%T rejected", action)
		return cart.Cart{}, err
	}

	if next.PromoCode != "" && !next.Subtotal.Equal(c.Subtotal) {
		if next, err = s.refreshPromo(next, now); err != nil {
			return cart.Cart{}, err
		}
	}

	if err := s.save(ctx, next); err != nil {
		return cart.Cart{}, err
	}
	return next, nil
}

func (s *cartService) refreshPromo(c cart.Cart, now time.Time) (cart.Cart, error) {
	code := c.PromoCode
	discount, resolveErr := s.promos.Resolve(code, c.Subtotal)
	if resolveErr != nil {
		s.logger.Info().
			Err(resolveErr).
			Str("cart_id", c.ID.String()).
			Str("promo_code", code).
			Msg("promo removed after cart change")
		return cart.Reduce(c, cart.RemovePromo{}, now)
	}
	return cart.Replay(c, now, cart.RemovePromo{}, cart.ApplyPromo{Code: code, Discount: discount})
}

// apply reduces c and stores the result. The write also refreshes the session TTL.
func (s *cartService) apply(ctx context.Context, c cart.Cart, action cart.Action) (cart.Cart, error) {
	next, err := cart.Reduce(c, action, s.clock.Now())
	if err != nil {
		s.logger.Debug().Err(err).Str("cart_id", c.ID.String()).Msgf("%T rejected", action)
		return cart.Cart{}, err
	}

	if err := s.save(ctx, next); err != nil {
		return cart.Cart{}, err
	}
	return next, nil
}

func (s *cartService) save(ctx context.Context, c cart.Cart) error {
	if err := s.store.Set(ctx, c); err != nil {
		s.logger.Error().Err(err).Str("cart_id", c.ID.String()).Msg("failed to save cart")
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
