package cart

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/labeeb-storefront/internal/catalog"
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/i18n"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(id int64, price string, qty, stock int) LineItem {
	return LineItem{
		ProductID:       id,
		Title:           "product",
		Price:           dec(price),
		DiscountedPrice: dec(price),
		Quantity:        qty,
		Stock:           stock,
	}
}

func TestAddItem_NewLine(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddItem(line(1, "10", 2, 5)))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddItem_NewLineOverStockIsRejected(t *testing.T) {
	s := NewStore()
	err := s.AddItem(line(1, "10", 6, 5))

	assert.ErrorIs(t, err, ErrExceedsStock)
	assert.Zero(t, s.Len())
}

func TestAddItem_MergesIntoExistingLine(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddItem(line(1, "10", 2, 5)))
	require.NoError(t, s.AddItem(line(1, "10", 3, 5)))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)

	// One more would exceed the ceiling: no partial add.
	assert.ErrorIs(t, s.AddItem(line(1, "10", 1, 5)), ErrExceedsStock)
	assert.Equal(t, 5, s.Items()[0].Quantity)
}

func TestAddItem_UsesCeilingFromFirstInsertion(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddItem(line(1, "10", 1, 2)))

	// A later add carrying a larger stock snapshot does not raise the ceiling.
	assert.ErrorIs(t, s.AddItem(line(1, "10", 2, 100)), ErrExceedsStock)
	assert.Equal(t, 1, s.Items()[0].Quantity)
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	s := NewStore()
	assert.ErrorIs(t, s.AddItem(line(1, "10", 0, 5)), ErrInvalidQuantity)
	assert.ErrorIs(t, s.AddItem(line(1, "10", -1, 5)), ErrInvalidQuantity)
	assert.Zero(t, s.Len())
}

func TestUpdateQuantity(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddItem(line(1, "10", 1, 3)))

	require.NoError(t, s.UpdateQuantity(1, 3))
	assert.Equal(t, 3, s.Items()[0].Quantity)

	assert.ErrorIs(t, s.UpdateQuantity(1, 4), ErrExceedsStock)
	assert.Equal(t, 3, s.Items()[0].Quantity)

	assert.ErrorIs(t, s.UpdateQuantity(1, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, s.UpdateQuantity(99, 1), ErrItemNotFound)
}

func TestRemoveItemAndClear(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddItem(line(1, "10", 1, 3)))
	require.NoError(t, s.AddItem(line(2, "20", 1, 3)))
	require.NoError(t, s.AddItem(line(3, "30", 1, 3)))

	s.RemoveItem(2)
	s.RemoveItem(42)

	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, int64(3), items[1].ProductID)

	s.Clear()
	assert.Zero(t, s.Len())
	assert.True(t, s.TotalPrice().IsZero())
}

func TestTotalPrice_TracksMutations(t *testing.T) {
	s := NewStore()
	assert.True(t, s.TotalPrice().IsZero())

	a := line(1, "10.50", 2, 10)
	a.DiscountedPrice = dec("9.25")
	require.NoError(t, s.AddItem(a))
	assert.Equal(t, "18.5", s.TotalPrice().String())

	require.NoError(t, s.AddItem(line(2, "100", 1, 10)))
	assert.Equal(t, "118.5", s.TotalPrice().String())

	require.NoError(t, s.UpdateQuantity(2, 3))
	assert.Equal(t, "318.5", s.TotalPrice().String())

	s.RemoveItem(1)
	assert.Equal(t, "300", s.TotalPrice().String())
}

// Any sequence of adds and updates keeps every line at or under its ceiling,
// and the total always equals the sum of the current lines.
func TestStore_RandomSequencesHoldInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ceilings := map[int64]int{1: 3, 2: 1, 3: 7}

	for round := 0; round < 50; round++ {
		s := NewStore()
		for op := 0; op < 40; op++ {
			id := int64(rng.Intn(3) + 1)
			qty := rng.Intn(5) + 1
			if rng.Intn(2) == 0 {
				l := line(id, "2.5", qty, ceilings[id])
				// later snapshots may claim more stock; the first one wins
				l.Stock += rng.Intn(4)
				_ = s.AddItem(l)
			} else {
				_ = s.UpdateQuantity(id, qty)
			}
		}

		want := decimal.Zero
		for _, it := range s.Items() {
			assert.LessOrEqual(t, it.Quantity, it.Stock)
			assert.GreaterOrEqual(t, it.Quantity, 1)
			want = want.Add(it.DiscountedPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		assert.True(t, want.Equal(s.TotalPrice()), "round %d: total %s want %s", round, s.TotalPrice(), want)
	}
}

func TestItems_ReturnsCopy(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddItem(line(1, "10", 1, 3)))

	items := s.Items()
	items[0].Quantity = 99
	assert.Equal(t, 1, s.Items()[0].Quantity)
}

func TestLineItemFromProduct(t *testing.T) {
	p := catalog.Product{
		ID:            7,
		NameAR:        "زيت زيتون",
		NameEN:        "Olive Oil",
		Price:         dec("120"),
		OfferPrice:    dec("99"),
		StockQuantity: 4,
		ImageURLs:     []string{"a.jpg", "b.jpg"},
	}

	l, err := LineItemFromProduct(p, i18n.Arabic, 2)
	require.NoError(t, err)
	assert.Equal(t, "زيت زيتون", l.Title)
	assert.True(t, l.DiscountedPrice.Equal(dec("99")))
	assert.True(t, l.Price.Equal(dec("120")))
	assert.Equal(t, 4, l.Stock)
	assert.Equal(t, 2, l.Quantity)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, l.Images.Thumbnails)

	p.OfferPrice = decimal.Zero
	l, err = LineItemFromProduct(p, i18n.English, 1)
	require.NoError(t, err)
	assert.Equal(t, "Olive Oil", l.Title)
	assert.True(t, l.DiscountedPrice.Equal(dec("120")))

	p.StockQuantity = 0
	_, err = LineItemFromProduct(p, i18n.English, 1)
	assert.ErrorIs(t, err, catalog.ErrOutOfStock)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	id, s := r.GetOrCreate("")
	require.NotEmpty(t, id)
	require.NoError(t, s.AddItem(line(1, "10", 1, 3)))

	again, s2 := r.GetOrCreate(id)
	assert.Equal(t, id, again)
	assert.Same(t, s, s2)

	got, ok := r.Get(id)
	assert.True(t, ok)
	assert.Same(t, s, got)

	r.Drop(id)
	_, ok = r.Get(id)
	assert.False(t, ok)
}

func TestRegistry_Sweep(t *testing.T) {
	r := NewRegistry()
	_, stale := r.GetOrCreate("stale")
	stale.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale.Clear()
	r.GetOrCreate("fresh")

	assert.Equal(t, 1, r.Sweep(time.Hour))
	_, ok := r.Get("fresh")
	assert.True(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_SweepSkipsHeldStores(t *testing.T) {
	r := NewRegistry()
	_, s := r.GetOrCreate("busy")
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	s.Clear()
	release := s.Hold()

	assert.Zero(t, r.Sweep(time.Hour))
	_, ok := r.Get("busy")
	assert.True(t, ok)

	release()
	release()
	assert.Equal(t, 1, r.Sweep(time.Hour), "released store is stale again")
}

func TestDeduct(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddItem(line(1, "10", 2, 5)))
	ordered := s.Items()

	require.NoError(t, s.UpdateQuantity(1, 3))
	require.NoError(t, s.AddItem(line(2, "20", 1, 4)))

	s.Deduct(ordered)
	items := s.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, 1, items[0].Quantity, "the extra unit added later stays")
	assert.Equal(t, int64(2), items[1].ProductID)
	assert.Equal(t, "30", s.TotalPrice().String())

	s.Deduct(s.Items())
	assert.Zero(t, s.Len())
}
