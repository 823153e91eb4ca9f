package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"printsociety/internal/artwork"
	"printsociety/internal/cache"
	"printsociety/internal/cart"
	"printsociety/internal/clock"
	"printsociety/internal/model"
	"printsociety/internal/pricing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type cartFixture struct {
	service  CartService
	products *MockProductRepository
	promos   *MockResolver
	artwork  *MockArtworkStore
}

// newCartFixture wires a cart service against miniredis.
func newCartFixture(t *testing.T) cartFixture {
	logger := zerolog.Nop()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	f := cartFixture{
		products: new(MockProductRepository),
		promos:   new(MockResolver),
		artwork:  new(MockArtworkStore),
	}
	engine := pricing.NewEngine(logger)
	f.service = NewCartService(
		cache.NewRedisCache(client, 0),
		NewProductService(f.products, engine, logger),
		engine,
		f.promos,
		f.artwork,
		testSettings(),
		clock.Fixed(testNow),
		logger,
	)
	f.products.On("GetByID", mock.Anything, "die-cut-stickers").Return(stickerProduct(), nil).Maybe()
	return f
}

func addStickers(t *testing.T, f cartFixture, id uuid.UUID, quantity int) cart.Cart {
	c, err := f.service.AddItem(context.Background(), id, model.AddItemRequest{
		ProductID: "die-cut-stickers", Quantity: quantity, Size: "3x3", Material: "vinyl", Finish: "gloss",
	})
	require.NoError(t, err)
	return c
}

func TestCartService_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	created, err := f.service.Create(ctx)
	require.NoError(t, err)
	assert.Empty(t, created.Items)

	loaded, err := f.service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.ID)

	_, err = f.service.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, model.ErrCartNotFound)
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	c, err := f.service.Create(ctx)
	require.NoError(t, err)

	c = addStickers(t, f, c.ID, 100)
	require.Len(t, c.Items, 1)
	assert.True(t, dec("0.95").Equal(c.Items[0].UnitPrice))
	assert.True(t, dec("95").Equal(c.Subtotal))
	assert.Equal(t, "Die Cut Stickers", c.Items[0].ProductName)

	// Same configuration merges into the existing line.
	c = addStickers(t, f, c.ID, 100)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 200, c.Items[0].Quantity)
	assert.True(t, dec("190").Equal(c.Subtotal))

	stored, err := f.service.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, c.Total.Equal(stored.Total))
	assert.Equal(t, c.Items[0].ID, stored.Items[0].ID)
}

func TestCartService_AddItem_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		cartExists  bool
		req         model.AddItemRequest
		expectedErr error
	}{
		{
			name:        "Unknown product",
			cartExists:  true,
			req:         model.AddItemRequest{ProductID: "mugs", Quantity: 100},
			expectedErr: model.ErrProductNotFound,
		},
		{
			name:        "Quantity outside range",
			cartExists:  true,
			req:         model.AddItemRequest{ProductID: "die-cut-stickers", Quantity: 10, Material: "vinyl", Finish: "gloss"},
			expectedErr: model.ErrInvalidQuantity,
		},
		{
			name:        "Unknown cart",
			req:         model.AddItemRequest{ProductID: "die-cut-stickers", Quantity: 100, Material: "vinyl", Finish: "gloss"},
			expectedErr: model.ErrCartNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCartFixture(t)
			f.products.On("GetByID", mock.Anything, "mugs").Return(nil, nil).Maybe()

			id := uuid.New()
			if tt.cartExists {
				c, err := f.service.Create(ctx)
				require.NoError(t, err)
				id = c.ID
			}

			_, err := f.service.AddItem(ctx, id, tt.req)

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestCartService_AddItem_UnknownOptionDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	c, err := f.service.Create(ctx)
	require.NoError(t, err)

	c, err = f.service.AddItem(ctx, c.ID, model.AddItemRequest{
		ProductID: "die-cut-stickers", Quantity: 100, Size: "9x9", Material: "gold-leaf", Finish: "gloss",
	})

	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.True(t, dec("0.95").Equal(c.Items[0].UnitPrice))
}

func TestCartService_UpdateAndRemoveItem(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	c, err := f.service.Create(ctx)
	require.NoError(t, err)
	c = addStickers(t, f, c.ID, 100)
	itemID := c.Items[0].ID

	c, err = f.service.UpdateQuantity(ctx, c.ID, itemID, 300)
	require.NoError(t, err)
	assert.True(t, dec("285").Equal(c.Subtotal))

	// Quantities below one are ignored.
	c, err = f.service.UpdateQuantity(ctx, c.ID, itemID, 0)
	require.NoError(t, err)
	assert.Equal(t, 300, c.Items[0].Quantity)

	c, err = f.service.RemoveItem(ctx, c.ID, itemID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.True(t, c.Total.IsZero())
}

func TestCartService_Clear(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	c, err := f.service.Create(ctx)
	require.NoError(t, err)
	c = addStickers(t, f, c.ID, 100)

	cleared, err := f.service.Clear(ctx, c.ID)

	require.NoError(t, err)
	assert.NotEqual(t, c.ID, cleared.ID)
	assert.Empty(t, cleared.Items)

	_, err = f.service.Get(ctx, c.ID)
	assert.ErrorIs(t, err, model.ErrCartNotFound)

	fresh, err := f.service.Get(ctx, cleared.ID)
	require.NoError(t, err)
	assert.Empty(t, fresh.Items)
}

func TestCartService_ApplyPromo(t *testing.T) {
	ctx := context.Background()

	t.Run("Resolved against the live subtotal", func(t *testing.T) {
		f := newCartFixture(t)
		c, err := f.service.Create(ctx)
		require.NoError(t, err)
		c = addStickers(t, f, c.ID, 100)

		f.promos.On("Resolve", "sticky10", mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(dec("95"))
		})).Return(dec("9.50"), nil)

		c, err = f.service.ApplyPromo(ctx, c.ID, "sticky10")

		require.NoError(t, err)
		assert.Equal(t, "STICKY10", c.PromoCode)
		assert.True(t, dec("9.50").Equal(c.DiscountAmount))
		assert.True(t, dec("85.50").Equal(c.Total))
		f.promos.AssertExpectations(t)
	})

	t.Run("Second promo is rejected", func(t *testing.T) {
		f := newCartFixture(t)
		c, err := f.service.Create(ctx)
		require.NoError(t, err)
		c = addStickers(t, f, c.ID, 100)

		f.promos.On("Resolve", mock.Anything, mock.Anything).Return(dec("5"), nil)

		_, err = f.service.ApplyPromo(ctx, c.ID, "STICKY10")
		require.NoError(t, err)

		_, err = f.service.ApplyPromo(ctx, c.ID, "SUMMER20")
		assert.ErrorIs(t, err, model.ErrPromoAlreadyApplied)

		c, err = f.service.RemovePromo(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, c.PromoCode)
		assert.True(t, c.DiscountAmount.IsZero())
	})

	t.Run("Resolver rejection leaves the cart untouched", func(t *testing.T) {
		f := newCartFixture(t)
		c, err := f.service.Create(ctx)
		require.NoError(t, err)
		c = addStickers(t, f, c.ID, 50)

		f.promos.On("Resolve", "STICKY10", mock.Anything).Return(decimal.Zero, model.ErrMinimumNotMet)

		_, err = f.service.ApplyPromo(ctx, c.ID, "STICKY10")
		assert.ErrorIs(t, err, model.ErrMinimumNotMet)

		stored, err := f.service.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.PromoCode)
	})
}

func TestCartService_ItemChangesRefreshPromo(t *testing.T) {
	ctx := context.Background()

	subtotalOf := func(amount string) interface{} {
		return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(dec(amount)) })
	}

	// promoCart returns a cart of 100 stickers (subtotal 95) with STICKY10 applied.
	promoCart := func(t *testing.T, f cartFixture) cart.Cart {
		c, err := f.service.Create(ctx)
		require.NoError(t, err)
		c = addStickers(t, f, c.ID, 100)

		f.promos.On("Resolve", "STICKY10", subtotalOf("95")).Return(dec("9.50"), nil).Once()
		c, err = f.service.ApplyPromo(ctx, c.ID, "STICKY10")
		require.NoError(t, err)
		return c
	}

	t.Run("Discount follows the new subtotal", func(t *testing.T) {
		f := newCartFixture(t)
		c := promoCart(t, f)

		f.promos.On("Resolve", "STICKY10", subtotalOf("285")).Return(dec("28.50"), nil).Once()

		c, err := f.service.UpdateQuantity(ctx, c.ID, c.Items[0].ID, 300)

		require.NoError(t, err)
		assert.Equal(t, "STICKY10", c.PromoCode)
		assert.True(t, dec("28.50").Equal(c.DiscountAmount))
		assert.True(t, dec("256.50").Equal(c.Total))
		f.promos.AssertExpectations(t)
	})

	t.Run("Promo below its minimum is dropped", func(t *testing.T) {
		f := newCartFixture(t)
		c := promoCart(t, f)

		f.promos.On("Resolve", "STICKY10", subtotalOf("57")).Return(decimal.Zero, model.ErrMinimumNotMet).Once()

		c, err := f.service.UpdateQuantity(ctx, c.ID, c.Items[0].ID, 60)

		require.NoError(t, err)
		assert.Empty(t, c.PromoCode)
		assert.True(t, c.DiscountAmount.IsZero())
		assert.True(t, dec("57").Equal(c.Total))

		stored, err := f.service.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.PromoCode)
		f.promos.AssertExpectations(t)
	})

	t.Run("Removing the last item drops the promo", func(t *testing.T) {
		f := newCartFixture(t)
		c := promoCart(t, f)

		f.promos.On("Resolve", "STICKY10", subtotalOf("0")).Return(decimal.Zero, model.ErrMinimumNotMet).Once()

		c, err := f.service.RemoveItem(ctx, c.ID, c.Items[0].ID)

		require.NoError(t, err)
		assert.Empty(t, c.Items)
		assert.Empty(t, c.PromoCode)
		assert.True(t, c.Total.IsZero())
	})

	t.Run("Carts without a promo skip the resolver", func(t *testing.T) {
		f := newCartFixture(t)
		c, err := f.service.Create(ctx)
		require.NoError(t, err)
		c = addStickers(t, f, c.ID, 100)

		_, err = f.service.UpdateQuantity(ctx, c.ID, c.Items[0].ID, 200)

		require.NoError(t, err)
		f.promos.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	})
}

func TestCartService_SetShipping(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		optionID    string
		expectedErr error
		wantCost    string
	}{
		{name: "Standard", optionID: "standard", wantCost: "5.99"},
		{name: "Express", optionID: "express", wantCost: "14.99"},
		{name: "Unknown option", optionID: "drone", expectedErr: model.ErrUnknownShipping},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCartFixture(t)
			c, err := f.service.Create(ctx)
			require.NoError(t, err)

			c, err = f.service.SetShipping(ctx, c.ID, tt.optionID)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, dec(tt.wantCost).Equal(c.ShippingCost))
			assert.Equal(t, tt.optionID, c.ShippingOption.ID)
		})
	}
}

func TestCartService_AddressAndTerms(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	c, err := f.service.Create(ctx)
	require.NoError(t, err)

	c, err = f.service.SetAddress(ctx, c.ID, model.AddressRequest{Shipping: testAddress()})
	require.NoError(t, err)
	assert.Equal(t, testAddress(), *c.ShippingAddress)
	assert.Nil(t, c.BillingAddress)

	c, err = f.service.AcceptTerms(ctx, c.ID, true)
	require.NoError(t, err)
	assert.True(t, c.TermsAccepted)
}

func TestCartService_UploadArtwork(t *testing.T) {
	ctx := context.Background()

	t.Run("Attached to the line", func(t *testing.T) {
		f := newCartFixture(t)
		c, err := f.service.Create(ctx)
		require.NoError(t, err)
		c = addStickers(t, f, c.ID, 100)
		itemID := c.Items[0].ID
		body := strings.NewReader("png bytes")

		f.artwork.On("Put", ctx, c.ID, itemID, "image/png", int64(9), body).
			Return(artwork.Upload{URL: "https://cdn.example.com/a.png", ThumbnailURL: "https://cdn.example.com/a.png?width=320"}, nil)

		c, err = f.service.UploadArtwork(ctx, c.ID, itemID, "image/png", 9, body)

		require.NoError(t, err)
		assert.Equal(t, model.ArtworkUploaded, c.Items[0].ArtworkStatus)
		assert.Equal(t, "https://cdn.example.com/a.png", c.Items[0].ArtworkURL)
		assert.True(t, c.ArtworkComplete())
		f.artwork.AssertExpectations(t)
	})

	t.Run("Unsupported type is rejected before upload", func(t *testing.T) {
		f := newCartFixture(t)
		c, err := f.service.Create(ctx)
		require.NoError(t, err)
		c = addStickers(t, f, c.ID, 100)

		_, err = f.service.UploadArtwork(ctx, c.ID, c.Items[0].ID, "image/gif", 9, strings.NewReader("gif"))

		assert.ErrorIs(t, err, model.ErrUnsupportedArtwork)
		f.artwork.AssertNotCalled(t, "Put")
	})

	t.Run("Oversized file is rejected", func(t *testing.T) {
		f := newCartFixture(t)
		c, err := f.service.Create(ctx)
		require.NoError(t, err)
		c = addStickers(t, f, c.ID, 100)

		_, err = f.service.UploadArtwork(ctx, c.ID, c.Items[0].ID, "application/pdf", 2<<20, strings.NewReader("pdf"))

		assert.ErrorIs(t, err, model.ErrUnsupportedArtwork)
		f.artwork.AssertNotCalled(t, "Put")
	})

	t.Run("Unknown item", func(t *testing.T) {
		f := newCartFixture(t)
		c, err := f.service.Create(ctx)
		require.NoError(t, err)

		_, err = f.service.UploadArtwork(ctx, c.ID, uuid.New(), "image/png", 9, strings.NewReader("png bytes"))

		assert.ErrorIs(t, err, model.ErrItemNotFound)
		f.artwork.AssertNotCalled(t, "Put")
	})

	t.Run("Storage failure", func(t *testing.T) {
		f := newCartFixture(t)
		c, err := f.service.Create(ctx)
		require.NoError(t, err)
		c = addStickers(t, f, c.ID, 100)

		f.artwork.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(artwork.Upload{}, errors.New("access denied"))

		_, err = f.service.UploadArtwork(ctx, c.ID, c.Items[0].ID, "image/png", 9, strings.NewReader("png bytes"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upload artwork")
	})
}

func TestCartService_Summary(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t)

	c, err := f.service.Create(ctx)
	require.NoError(t, err)

	summary, err := f.service.Summary(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, summary.SetupFee.IsZero(), "empty carts carry no setup fee")

	c = addStickers(t, f, c.ID, 100)
	_, err = f.service.SetShipping(ctx, c.ID, "standard")
	require.NoError(t, err)

	summary, err = f.service.Summary(ctx, c.ID)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.ItemCount)
	assert.True(t, dec("25").Equal(summary.SetupFee))
	assert.True(t, dec("125.99").Equal(summary.Total), "total %s", summary.Total)
}

func TestCartService_StoreFailures(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name        string
		getErr      error
		expectedErr error
		errMsg      string
	}{
		{name: "Expired session", getErr: cache.ErrCacheMiss, expectedErr: model.ErrCartNotFound},
		{name: "Redis down", getErr: errors.New("connection refused"), errMsg: "failed to load cart"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockCartStore)
			engine := pricing.NewEngine(logger)
			service := NewCartService(store, NewProductService(new(MockProductRepository), engine, logger), engine,
				new(MockResolver), new(MockArtworkStore), testSettings(), clock.Fixed(testNow), logger)

			store.On("Get", ctx, id).Return(cart.Cart{}, tt.getErr)

			_, err := service.AcceptTerms(ctx, id, true)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			}
			store.AssertNotCalled(t, "Set")
		})
	}
}

func TestCartService_SaveFailure(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	store := new(MockCartStore)
	engine := pricing.NewEngine(logger)
	service := NewCartService(store, NewProductService(new(MockProductRepository), engine, logger), engine,
		new(MockResolver), new(MockArtworkStore), testSettings(), clock.Fixed(testNow), logger)

	store.On("Set", ctx, mock.AnythingOfType("cart.Cart")).Return(errors.New("OOM command not allowed"))

	_, err := service.Create(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save cart")
}
