package service

import (
	"testing"
	"time"

	"printsociety/internal/cart"
	"printsociety/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func stickerProduct() *model.Product {
	return &model.Product{
		ID:          "die-cut-stickers",
		Name:        "Die Cut Stickers",
		Category:    "stickers",
		BasePrice:   dec("1.20"),
		MinQuantity: 50,
		MaxQuantity: 1000,
		Sizes:       []string{"2x2", "3x3"},
		Materials: []model.Option{
			{ID: "vinyl", Name: "Vinyl", PriceMultiplier: dec("1")},
			{ID: "holographic", Name: "Holographic", PriceMultiplier: dec("1.25")},
		},
		Finishes: []model.Option{
			{ID: "gloss", Name: "Gloss", PriceMultiplier: dec("1")},
			{ID: "matte", Name: "Matte", PriceMultiplier: dec("1.05")},
		},
		Tiers: []model.PricingTier{
			{QuantityMin: 50, QuantityMax: 99, PricePerUnit: dec("1.20")},
			{QuantityMin: 100, QuantityMax: 1000, PricePerUnit: dec("0.95")},
		},
		CreatedAt: testNow,
	}
}

func testSettings() Settings {
	return Settings{
		SetupFee:        dec("25"),
		MaxRevisions:    3,
		ReviewWindow:    72 * time.Hour,
		ProofBaseURL:    "https://shop.example.com/proofs/",
		MaxArtworkBytes: 1 << 20,
		ShippingOptions: []model.ShippingOption{
			{ID: "standard", Name: "Standard", Cost: dec("5.99"), EstimatedDays: 5},
			{ID: "express", Name: "Express", Cost: dec("14.99"), EstimatedDays: 2},
		},
	}
}

func testAddress() model.Address {
	return model.Address{Name: "Ada", Email: "ada@example.com", Line1: "1 Loop Rd", City: "Leeds", PostalCode: "LS1", Country: "GB"}
}

// readyCart is a cart that passes every checkout check. withArtwork attaches artwork to its
// only line.
func readyCart(t *testing.T, withArtwork bool) cart.Cart {
	itemID := uuid.New()
	actions := []cart.Action{
		cart.AddLineItem{Item: cart.LineItem{ID: itemID, ProductID: "die-cut-stickers", ProductName: "Die Cut Stickers",
			Quantity: 100, Size: "3x3", Material: "vinyl", Finish: "gloss", UnitPrice: dec("0.95")}},
		cart.SetShipping{Option: testSettings().ShippingOptions[0]},
		cart.SetAddress{Shipping: testAddress()},
		cart.AcceptTerms{Accepted: true},
	}
	if withArtwork {
		actions = append(actions, cart.AttachArtwork{ItemID: itemID, URL: "https://cdn.example.com/a.png"})
	}

	c, err := cart.Replay(cart.New(uuid.New(), testNow), testNow, actions...)
	require.NoError(t, err)
	return c
}
