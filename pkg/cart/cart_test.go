package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(Pricing{ShippingCost: 5.99, TaxRate: 0.08})
}

func TestAddItemMergesSameProduct(t *testing.T) {
	s := newTestStore()
	p := Product{ID: "p1", Title: "Wireless Headphones", Price: 99.99}

	it, err := s.AddItem(p, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, it.Quantity)

	it, err = s.AddItem(p, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, it.Quantity)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddItemSnapshotsDisplayFields(t *testing.T) {
	s := newTestStore()
	_, err := s.AddItem(Product{ID: "p1", Title: "Smart Watch", Price: 199.99, Image: "watch.png"}, 1)
	require.NoError(t, err)

	// A later add with changed display fields must not rewrite the snapshot.
	_, err = s.AddItem(Product{ID: "p1", Title: "Renamed", Price: 149.99, Image: "other.png"}, 1)
	require.NoError(t, err)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Smart Watch", items[0].Title)
	assert.Equal(t, 199.99, items[0].Price)
	assert.Equal(t, "watch.png", items[0].Image)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	s := newTestStore()

	_, err := s.AddItem(Product{ID: "p1", Price: 10}, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = s.AddItem(Product{ID: "p1", Price: 10}, -3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = s.AddItem(Product{ID: "p1", Price: -0.01}, 1)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	assert.Empty(t, s.Items())
	assert.Equal(t, 0, s.ItemCount())
}

func TestAddItemClampsToStock(t *testing.T) {
	s := newTestStore()
	p := Product{ID: "p1", Title: "Desk Lamp", Price: 29.99, Stock: 3}

	_, err := s.AddItem(p, 1)
	require.NoError(t, err)

	it, err := s.AddItem(p, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, it.Quantity, "merged quantity must clamp to stock, not exceed it")

	require.Len(t, s.Items(), 1)
	assert.Equal(t, 3, s.Items()[0].Quantity)
}

func TestAddItemNoStockBoundIsUnbounded(t *testing.T) {
	s := newTestStore()
	p := Product{ID: "p1", Price: 1}
	for i := 0; i < 4; i++ {
		_, err := s.AddItem(p, 250)
		require.NoError(t, err)
	}
	assert.Equal(t, 1000, s.ItemCount())
}

func TestUpdateQuantitySetsAbsoluteValue(t *testing.T) {
	s := newTestStore()
	_, err := s.AddItem(Product{ID: "p1", Price: 10}, 2)
	require.NoError(t, err)

	require.NoError(t, s.UpdateQuantity("p1", 7))
	assert.Equal(t, 7, s.Items()[0].Quantity)
}

func TestUpdateQuantityUnknownProduct(t *testing.T) {
	s := newTestStore()
	err := s.UpdateQuantity("missing", 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateQuantityBelowOneRemoves(t *testing.T) {
	for _, qty := range []int{0, -5} {
		s := newTestStore()
		_, err := s.AddItem(Product{ID: "p1", Price: 10}, 2)
		require.NoError(t, err)
		_, err = s.AddItem(Product{ID: "p2", Price: 5}, 1)
		require.NoError(t, err)

		require.NoError(t, s.UpdateQuantity("p1", qty))

		// Same resulting cart as an explicit remove.
		want := newTestStore()
		_, err = want.AddItem(Product{ID: "p1", Price: 10}, 2)
		require.NoError(t, err)
		_, err = want.AddItem(Product{ID: "p2", Price: 5}, 1)
		require.NoError(t, err)
		want.RemoveItem("p1")

		assert.Equal(t, want.Items(), s.Items())
	}
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	s := newTestStore()
	_, err := s.AddItem(Product{ID: "p1", Price: 10}, 1)
	require.NoError(t, err)

	s.RemoveItem("p1")
	first := s.Items()
	s.RemoveItem("p1")
	assert.Equal(t, first, s.Items())
	s.RemoveItem("never-added")
	assert.Empty(t, s.Items())
}

func TestQuantityAlwaysPositive(t *testing.T) {
	s := newTestStore()
	_, _ = s.AddItem(Product{ID: "a", Price: 1}, 3)
	_, _ = s.AddItem(Product{ID: "b", Price: 2, Stock: 2}, 9)
	_ = s.UpdateQuantity("a", 0)
	_, _ = s.AddItem(Product{ID: "a", Price: 1}, 1)
	_ = s.UpdateQuantity("b", -1)
	_, _ = s.AddItem(Product{ID: "c", Price: 3}, 2)
	s.RemoveItem("c")
	s.RemoveItem("c")

	for _, it := range s.Items() {
		assert.GreaterOrEqual(t, it.Quantity, 1)
	}
}

func TestItemCountSumsQuantities(t *testing.T) {
	s := newTestStore()
	_, _ = s.AddItem(Product{ID: "a", Price: 1}, 2)
	_, _ = s.AddItem(Product{ID: "b", Price: 2}, 3)
	assert.Equal(t, 5, s.ItemCount(), "count is total quantity, not distinct lines")
}

func TestSubtotalAndSummary(t *testing.T) {
	s := newTestStore()
	_, err := s.AddItem(Product{ID: "a", Title: "A", Price: 10}, 2)
	require.NoError(t, err)
	_, err = s.AddItem(Product{ID: "b", Title: "B", Price: 5}, 3)
	require.NoError(t, err)

	assert.InDelta(t, 35.0, s.Subtotal(), 1e-9)

	sum := s.Summary()
	assert.InDelta(t, 35.0, sum.Subtotal, 1e-9)
	assert.InDelta(t, 5.99, sum.ShippingCost, 1e-9)
	assert.InDelta(t, 2.80, sum.TaxAmount, 1e-9)
	assert.InDelta(t, 43.79, sum.Total, 1e-9)
}

func TestSummaryTracksMutations(t *testing.T) {
	s := newTestStore()
	_, _ = s.AddItem(Product{ID: "a", Price: 10}, 2)
	require.NoError(t, s.UpdateQuantity("a", 1))
	assert.InDelta(t, 10.0, s.Summary().Subtotal, 1e-9)

	s.Clear()
	assert.InDelta(t, 0.0, s.Summary().Subtotal, 1e-9)
	assert.Equal(t, 0, s.ItemCount())
}

func TestSubscribeNotifiesConsistentSnapshot(t *testing.T) {
	s := newTestStore()

	var got []Snapshot
	cancel := s.Subscribe(func(snap Snapshot) {
		got = append(got, snap)
	})

	_, err := s.AddItem(Product{ID: "a", Price: 10}, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Items, 1)
	assert.Equal(t, 2, got[0].Items[0].Quantity)
	assert.InDelta(t, 20.0, got[0].Summary.Subtotal, 1e-9)

	require.NoError(t, s.UpdateQuantity("a", 0))
	require.Len(t, got, 2)
	assert.Empty(t, got[1].Items)
	assert.InDelta(t, 0.0, got[1].Summary.Subtotal, 1e-9)

	cancel()
	s.Clear()
	assert.Len(t, got, 2, "cancelled subscriber must not be notified")
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestStore()
	_, _ = s.AddItem(Product{ID: "a", Price: 10}, 2)

	snap := s.Snapshot()
	snap.Items[0].Quantity = 99

	assert.Equal(t, 2, s.Items()[0].Quantity, "mutating a snapshot must not touch the store")
}

func TestInsertionOrderPreserved(t *testing.T) {
	s := newTestStore()
	for _, id := range []string{"c", "a", "b"} {
		_, err := s.AddItem(Product{ID: id, Price: 1}, 1)
		require.NoError(t, err)
	}
	s.RemoveItem("a")
	_, _ = s.AddItem(Product{ID: "d", Price: 1}, 1)

	var ids []string
	for _, it := range s.Items() {
		ids = append(ids, it.ProductID)
	}
	assert.Equal(t, []string{"c", "b", "d"}, ids)
}
