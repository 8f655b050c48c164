package refstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crazycars/storefront/internal/models"
	"github.com/crazycars/storefront/internal/storage"
)

func summary(id string) models.ProductSummary {
	return models.ProductSummary{
		ID:            models.ProductID(id),
		Name:          "Widget " + id,
		Price:         9.99,
		OriginalPrice: 12.99,
		SKU:           "SKU-" + id,
	}
}

func TestAddMergesDuplicates(t *testing.T) {
	s := New(KindCart, storage.NewMemory())

	s.Add(summary("42"), 1)
	ref := s.Add(summary("42"), 2)

	// Duplicate ids are forbidden: the second add merged, not appended.
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 3, ref.Quantity)
}

func TestAddDefaultsQuantityToOne(t *testing.T) {
	s := New(KindCart, storage.NewMemory())
	ref := s.Add(summary("1"), 0)
	assert.Equal(t, 1, ref.Quantity)
}

func TestWishlistAddIsNoOpOnDuplicate(t *testing.T) {
	s := New(KindWishlist, storage.NewMemory())

	s.Add(summary("1"), 1)
	s.Add(summary("1"), 5)

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.Items()[0].Quantity) // wishlist entries carry no quantity
}

func TestUpdateQuantity(t *testing.T) {
	s := New(KindCart, storage.NewMemory())
	s.Add(summary("1"), 1)

	require.NoError(t, s.UpdateQuantity("1", 5))
	assert.Equal(t, 5, s.Items()[0].Quantity)

	// Quantity 0 is a removal.
	require.NoError(t, s.UpdateQuantity("1", 0))
	assert.Equal(t, 0, s.Len())

	// Updating a missing id is reported, not fatal.
	assert.ErrorIs(t, s.UpdateQuantity("missing", 3), ErrNoSuchReference)
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := New(KindCart, storage.NewMemory())
	s.Add(summary("1"), 1)

	s.Remove("1")
	s.Remove("1") // second remove must be a harmless no-op
	assert.Equal(t, 0, s.Len())
}

func TestClear(t *testing.T) {
	s := New(KindCart, storage.NewMemory())
	s.Add(summary("1"), 1)
	s.Add(summary("2"), 1)

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestToggleIsIdempotentPair(t *testing.T) {
	s := New(KindWishlist, storage.NewMemory())

	// Toggle twice with no other mutation: add then remove nets to no-op.
	assert.Equal(t, ToggleAdded, s.Toggle(summary("9")))
	assert.Equal(t, ToggleRemoved, s.Toggle(summary("9")))
	assert.Equal(t, 0, s.Len())
}

func TestInsertionOrderPreserved(t *testing.T) {
	s := New(KindCart, storage.NewMemory())
	s.Add(summary("c"), 1)
	s.Add(summary("a"), 1)
	s.Add(summary("b"), 1)

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, models.ProductID("c"), items[0].ID)
	assert.Equal(t, models.ProductID("a"), items[1].ID)
	assert.Equal(t, models.ProductID("b"), items[2].ID)
}

func TestPersistenceRoundTrip(t *testing.T) {
	backend := storage.NewMemory()

	s := New(KindCart, backend)
	s.Add(summary("42"), 1)

	// Simulate a reload: a fresh store over the same backend sees the line.
	reloaded := New(KindCart, backend)
	items := reloaded.Items()
	require.Len(t, items, 1)
	assert.Equal(t, models.ProductID("42"), items[0].ID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, "Widget 42", items[0].Snapshot.Name)
}

func TestCartAndWishlistUseSeparateKeys(t *testing.T) {
	backend := storage.NewMemory()

	cart := New(KindCart, backend)
	wishlist := New(KindWishlist, backend)
	cart.Add(summary("1"), 1)
	wishlist.Add(summary("2"), 1)

	assert.Equal(t, 1, New(KindCart, backend).Len())
	assert.Equal(t, 1, New(KindWishlist, backend).Len())
	assert.Equal(t, models.ProductID("2"), New(KindWishlist, backend).Items()[0].ID)
}

func TestWriteFailureIsNonFatal(t *testing.T) {
	backend := storage.NewMemory()
	backend.FailWrites = true

	s := New(KindCart, backend)
	s.Add(summary("1"), 1)

	// The in-memory state survives the failed write.
	assert.Equal(t, 1, s.Len())

	// Once the backend recovers, the next mutation persists the latest state.
	backend.FailWrites = false
	s.Add(summary("2"), 1)

	reloaded := New(KindCart, backend)
	assert.Equal(t, 2, reloaded.Len())
}

func TestCorruptBlobStartsEmpty(t *testing.T) {
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(cartKey, []byte("{not json")))

	s := New(KindCart, backend)
	assert.Equal(t, 0, s.Len())
}
