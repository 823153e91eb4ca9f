package cart

import (
	"math/rand"
	"testing"
	"time"

	"printsociety/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(productID, material string, quantity int, unitPrice string) LineItem {
	return LineItem{
		ProductID: productID,
		Size:      "3x3",
		Material:  material,
		Finish:    "gloss",
		Quantity:  quantity,
		UnitPrice: d(unitPrice),
	}
}

// assertInvariant checks the two totals invariants every mutation must preserve.
func assertInvariant(t *testing.T, c Cart) {
	t.Helper()

	sum := decimal.Zero
	for _, li := range c.Items {
		require.True(t, li.Subtotal.Equal(li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))),
			"line %s subtotal %s != %d x %s", li.ID, li.Subtotal, li.Quantity, li.UnitPrice)
		sum = sum.Add(li.Subtotal)
	}
	require.True(t, c.Subtotal.Equal(sum), "subtotal %s != sum of lines %s", c.Subtotal, sum)

	expected := c.Subtotal.Add(c.ShippingCost).Sub(c.DiscountAmount)
	if expected.IsNegative() {
		expected = decimal.Zero
	}
	require.True(t, c.Total.Equal(expected), "total %s != max(0, %s + %s - %s)", c.Total, c.Subtotal, c.ShippingCost, c.DiscountAmount)
}

func TestReduce_AddLineItem_MergesSameConfiguration(t *testing.T) {
	c := New(uuid.New(), now)

	c, err := Reduce(c, AddLineItem{Item: item("die-cut", "vinyl", 100, "0.95")}, now)
	require.NoError(t, err)
	c, err = Reduce(c, AddLineItem{Item: item("die-cut", "vinyl", 150, "0.70")}, now)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 250, c.Items[0].Quantity)
	assert.True(t, d("0.95").Equal(c.Items[0].UnitPrice), "unit price is locked at add time")
	assert.True(t, d("237.50").Equal(c.Items[0].Subtotal))
	assertInvariant(t, c)
}

func TestReduce_AddLineItem_DifferentConfigurationAppends(t *testing.T) {
	c := New(uuid.New(), now)

	c, err := Replay(c, now,
		AddLineItem{Item: item("die-cut", "vinyl", 100, "0.95")},
		AddLineItem{Item: item("die-cut", "holographic", 100, "1.40")},
		AddLineItem{Item: item("labels", "vinyl", 100, "0.40")},
	)

	require.NoError(t, err)
	require.Len(t, c.Items, 3)
	assert.Equal(t, "holographic", c.Items[1].Material, "insertion order is kept")
	assert.True(t, d("275").Equal(c.Subtotal))
	assertInvariant(t, c)
}

func TestReduce_AddLineItem_RejectsZeroQuantity(t *testing.T) {
	c := New(uuid.New(), now)

	next, err := Reduce(c, AddLineItem{Item: item("die-cut", "vinyl", 0, "0.95")}, now)

	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	assert.Equal(t, c, next)
}

func TestReduce_RemoveLineItem(t *testing.T) {
	c, err := Replay(New(uuid.New(), now), now,
		AddLineItem{Item: item("die-cut", "vinyl", 100, "0.95")},
		AddLineItem{Item: item("labels", "vinyl", 200, "0.40")},
	)
	require.NoError(t, err)

	later := now.Add(time.Minute)

	t.Run("Absent item is a silent no-op", func(t *testing.T) {
		next, err := Reduce(c, RemoveLineItem{ItemID: uuid.New()}, later)

		require.NoError(t, err)
		assert.Equal(t, c, next)
		assert.Equal(t, now, next.UpdatedAt)
	})

	t.Run("Present item is removed", func(t *testing.T) {
		next, err := Reduce(c, RemoveLineItem{ItemID: c.Items[0].ID}, later)

		require.NoError(t, err)
		require.Len(t, next.Items, 1)
		assert.Equal(t, "labels", next.Items[0].ProductID)
		assert.True(t, d("80").Equal(next.Subtotal))
		assert.Equal(t, later, next.UpdatedAt)
		assertInvariant(t, next)

		assert.Len(t, c.Items, 2, "input cart must not be mutated")
	})
}

func TestReduce_UpdateQuantity(t *testing.T) {
	c, err := Reduce(New(uuid.New(), now), AddLineItem{Item: item("die-cut", "vinyl", 100, "0.95")}, now)
	require.NoError(t, err)
	id := c.Items[0].ID

	tests := []struct {
		name     string
		action   UpdateQuantity
		quantity int
		subtotal string
	}{
		{name: "Valid quantity", action: UpdateQuantity{ItemID: id, Quantity: 300}, quantity: 300, subtotal: "285"},
		{name: "Zero quantity ignored", action: UpdateQuantity{ItemID: id, Quantity: 0}, quantity: 100, subtotal: "95"},
		{name: "Negative quantity ignored", action: UpdateQuantity{ItemID: id, Quantity: -5}, quantity: 100, subtotal: "95"},
		{name: "Unknown item ignored", action: UpdateQuantity{ItemID: uuid.New(), Quantity: 10}, quantity: 100, subtotal: "95"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Reduce(c, tt.action, now)

			require.NoError(t, err)
			assert.Equal(t, tt.quantity, next.Items[0].Quantity)
			assert.True(t, d(tt.subtotal).Equal(next.Subtotal), "subtotal %s", next.Subtotal)
			assertInvariant(t, next)
		})
	}
}

func TestReduce_Clear(t *testing.T) {
	c, err := Replay(New(uuid.New(), now), now,
		AddLineItem{Item: item("die-cut", "vinyl", 100, "0.95")},
		SetShipping{Option: model.ShippingOption{ID: "standard", Cost: d("5.99")}},
		ApplyPromo{Code: "sticky10", Discount: d("9.50")},
		AcceptTerms{Accepted: true},
	)
	require.NoError(t, err)

	newID := uuid.New()
	later := now.Add(time.Hour)
	cleared, err := Reduce(c, Clear{NewID: newID}, later)

	require.NoError(t, err)
	assert.Equal(t, newID, cleared.ID)
	assert.Empty(t, cleared.Items)
	assert.Empty(t, cleared.PromoCode)
	assert.Nil(t, cleared.ShippingOption)
	assert.False(t, cleared.TermsAccepted)
	assert.True(t, cleared.Total.IsZero())
	assert.Equal(t, later, cleared.CreatedAt)
	assertInvariant(t, cleared)

	generated, err := Reduce(c, Clear{}, later)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, generated.ID)
	assert.NotEqual(t, c.ID, generated.ID)
}

func TestReduce_Promo(t *testing.T) {
	c, err := Replay(New(uuid.New(), now), now,
		AddLineItem{Item: item("die-cut", "vinyl", 100, "0.905")},
		ApplyPromo{Code: " sticky10 ", Discount: d("9.05")},
	)
	require.NoError(t, err)

	assert.Equal(t, "STICKY10", c.PromoCode)
	assert.True(t, d("81.45").Equal(c.Total))
	assertInvariant(t, c)

	t.Run("Second promo is rejected while one is active", func(t *testing.T) {
		next, err := Reduce(c, ApplyPromo{Code: "SUMMER20", Discount: d("18.10")}, now)

		assert.ErrorIs(t, err, model.ErrPromoAlreadyApplied)
		assert.Equal(t, c, next)
	})

	t.Run("Promo can be replaced after removal", func(t *testing.T) {
		next, err := Replay(c, now,
			RemovePromo{},
			ApplyPromo{Code: "SUMMER20", Discount: d("18.10")},
		)

		require.NoError(t, err)
		assert.Equal(t, "SUMMER20", next.PromoCode)
		assert.True(t, d("72.40").Equal(next.Total))
	})

	t.Run("Total is clamped at zero", func(t *testing.T) {
		next, err := Replay(c, now,
			RemovePromo{},
			ApplyPromo{Code: "BIGFIXED", Discount: d("500")},
		)

		require.NoError(t, err)
		assert.True(t, next.Total.IsZero())
		assertInvariant(t, next)
	})

	t.Run("Removing without a promo is a no-op", func(t *testing.T) {
		plain := New(uuid.New(), now)
		next, err := Reduce(plain, RemovePromo{}, now.Add(time.Minute))

		require.NoError(t, err)
		assert.Equal(t, plain, next)
	})
}

func TestReduce_AttachArtwork(t *testing.T) {
	c, err := Reduce(New(uuid.New(), now), AddLineItem{Item: item("die-cut", "vinyl", 100, "0.95")}, now)
	require.NoError(t, err)
	assert.False(t, c.ArtworkComplete())

	next, err := Reduce(c, AttachArtwork{ItemID: c.Items[0].ID, URL: "https://cdn/a.png", ThumbnailURL: "https://cdn/a.png?width=320"}, now)

	require.NoError(t, err)
	assert.Equal(t, model.ArtworkUploaded, next.Items[0].ArtworkStatus)
	assert.Equal(t, "https://cdn/a.png", next.Items[0].ArtworkURL)
	assert.True(t, next.ArtworkComplete())

	_, err = Reduce(c, AttachArtwork{ItemID: uuid.New(), URL: "x"}, now)
	assert.ErrorIs(t, err, model.ErrItemNotFound)
}

func TestReduce_AddressAndTerms(t *testing.T) {
	c := New(uuid.New(), now)
	addr := model.Address{Name: "Ada", Email: "ada@example.com", Line1: "1 Loop Rd", City: "Leeds", PostalCode: "LS1", Country: "GB"}

	c, err := Replay(c, now, SetAddress{Shipping: addr}, AcceptTerms{Accepted: true})

	require.NoError(t, err)
	require.NotNil(t, c.ShippingAddress)
	assert.Equal(t, "Ada", c.ShippingAddress.Name)
	assert.Nil(t, c.BillingAddress)
	assert.True(t, c.TermsAccepted)

	same, err := Reduce(c, AcceptTerms{Accepted: true}, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, c, same)
}

func TestReduce_RandomSequencesPreserveInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	products := []string{"die-cut", "kiss-cut", "labels"}
	materials := []string{"vinyl", "holographic"}
	prices := []string{"0.95", "1.20", "0.333", "2.05"}
	shipping := []model.ShippingOption{
		{ID: "standard", Cost: d("5.99")},
		{ID: "express", Cost: d("14.99")},
	}

	for run := 0; run < 50; run++ {
		c := New(uuid.New(), now)

		for step := 0; step < 200; step++ {
			var action Action
			switch rng.Intn(7) {
			case 0, 1:
				action = AddLineItem{Item: item(
					products[rng.Intn(len(products))],
					materials[rng.Intn(len(materials))],
					rng.Intn(500)+1,
					prices[rng.Intn(len(prices))],
				)}
			case 2:
				id := uuid.New()
				if len(c.Items) > 0 && rng.Intn(4) > 0 {
					id = c.Items[rng.Intn(len(c.Items))].ID
				}
				action = RemoveLineItem{ItemID: id}
			case 3:
				id := uuid.New()
				if len(c.Items) > 0 {
					id = c.Items[rng.Intn(len(c.Items))].ID
				}
				action = UpdateQuantity{ItemID: id, Quantity: rng.Intn(600) - 50}
			case 4:
				action = ApplyPromo{Code: "PROMO", Discount: decimal.NewFromInt(int64(rng.Intn(300)))}
			case 5:
				action = RemovePromo{}
			case 6:
				action = SetShipping{Option: shipping[rng.Intn(len(shipping))]}
			}

			next, err := Reduce(c, action, now)
			if err != nil {
				require.ErrorIs(t, err, model.ErrPromoAlreadyApplied)
				require.Equal(t, c, next)
			}
			c = next
			assertInvariant(t, c)
		}
	}
}

func TestSummarize(t *testing.T) {
	fee := d("25")

	empty := Summarize(New(uuid.New(), now), fee)
	assert.True(t, empty.SetupFee.IsZero())
	assert.True(t, empty.Total.IsZero())

	c, err := Replay(New(uuid.New(), now), now,
		AddLineItem{Item: item("die-cut", "vinyl", 100, "0.95")},
		SetShipping{Option: model.ShippingOption{ID: "standard", Cost: d("5.99")}},
		ApplyPromo{Code: "TENOFF", Discount: d("10")},
	)
	require.NoError(t, err)

	summary := Summarize(c, fee)

	assert.Equal(t, 1, summary.ItemCount)
	assert.True(t, d("95").Equal(summary.Subtotal))
	assert.True(t, d("25").Equal(summary.SetupFee))
	assert.True(t, d("115.99").Equal(summary.Total))
	assert.True(t, d("90.99").Equal(c.Total), "setup fee is not part of the cart total")
}
