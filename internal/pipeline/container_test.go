package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crazycars/storefront/internal/catalog"
	"github.com/crazycars/storefront/internal/models"
	"github.com/crazycars/storefront/internal/reconcile"
	"github.com/crazycars/storefront/internal/storage"
)

// catalogServer serves a fixed catalog body.
func catalogServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newContainer(t *testing.T, backend storage.Backend, srv *httptest.Server) *Container {
	t.Helper()
	client := catalog.NewClient(srv.URL, catalog.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond, BackoffMultiplier: 1}, 0)
	c, err := New(Config{Backend: backend, Catalog: client})
	require.NoError(t, err)
	t.Cleanup(c.Teardown)
	return c
}

func TestAddThenReloadUsesLivePrice(t *testing.T) {
	srv := catalogServer(t, `{"data":[{"id":"42","title":"Widget","currentPrice":12.00,"stock":5}]}`)
	backend := storage.NewMemory()

	// Add to cart with the price the user saw at the time.
	c := newContainer(t, backend, srv)
	c.Cart.Add(models.ProductSummary{ID: "42", Name: "Widget", Price: 9.99}, 1)
	c.Teardown()

	// Simulate a reload: fresh container over the same backend.
	c2 := newContainer(t, backend, srv)
	v := c2.CartView(context.Background(), reconcile.Query{})

	require.Len(t, v.Items, 1)
	assert.Equal(t, models.ProductID("42"), v.Items[0].ID)
	// The live catalog price wins over the stale snapshot price.
	assert.Equal(t, 12.00, v.Items[0].Price)
	assert.Equal(t, 12.00, v.Subtotal)
	assert.Equal(t, 1, v.TotalItems)
	assert.Equal(t, reconcile.StatusOK, v.Status)
}

func TestUnavailableItemDisplaysSnapshot(t *testing.T) {
	srv := catalogServer(t, `{"data":[{"id":"1","title":"One","currentPrice":1},{"id":"2","title":"Two","currentPrice":2},{"id":"3","title":"Three","currentPrice":3}]}`)
	c := newContainer(t, storage.NewMemory(), srv)

	c.Wishlist.Add(models.ProductSummary{ID: "99", Name: "Vanished Van", Price: 30}, 1)

	v := c.WishlistView(context.Background(), reconcile.Query{})
	require.Len(t, v.Items, 1) // never dropped
	assert.True(t, v.Items[0].Unavailable)
	assert.True(t, v.Items[0].MayBeOutdated)
	assert.Equal(t, "Vanished Van", v.Items[0].Name)
}

func TestCatalogUnavailableView(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c := newContainer(t, storage.NewMemory(), srv)
	c.Cart.Add(models.ProductSummary{ID: "1", Name: "One", Price: 1}, 1)

	v := c.CartView(context.Background(), reconcile.Query{})
	assert.Equal(t, reconcile.StatusCatalogUnavailable, v.Status)
	assert.Empty(t, v.Items)
	assert.Equal(t, 1, v.TotalReferenceCount)
}

func TestMutationInvalidatesCachedView(t *testing.T) {
	srv := catalogServer(t, `{"data":[{"id":"1","title":"One","currentPrice":10,"stock":1},{"id":"2","title":"Two","currentPrice":20,"stock":1}]}`)
	c := newContainer(t, storage.NewMemory(), srv)

	c.Cart.Add(models.ProductSummary{ID: "1", Name: "One", Price: 10}, 1)
	v := c.CartView(context.Background(), reconcile.Query{})
	require.Len(t, v.Items, 1)

	// A store mutation must invalidate the cached view via the bus.
	c.Cart.Add(models.ProductSummary{ID: "2", Name: "Two", Price: 20}, 1)
	v = c.CartView(context.Background(), reconcile.Query{})
	require.Len(t, v.Items, 2)
	assert.Equal(t, 30.0, v.Subtotal)
}

func TestShopViewFiltersAndSorts(t *testing.T) {
	srv := catalogServer(t, `{"data":[
		{"id":"1","title":"Cheap Sedan","currentPrice":30,"stock":1,"category":"Sedans"},
		{"id":"2","title":"Fast Roadster","currentPrice":10,"stock":1,"category":"Sports Cars"},
		{"id":"3","title":"Family Van","currentPrice":20,"stock":1,"category":"Vans"}]}`)
	c := newContainer(t, storage.NewMemory(), srv)

	v := c.ShopView(context.Background(), reconcile.Query{Sort: reconcile.SortPriceLow})
	require.Len(t, v.Items, 3)
	assert.Equal(t, models.ProductID("2"), v.Items[0].ID)
	assert.Equal(t, models.ProductID("3"), v.Items[1].ID)
	assert.Equal(t, models.ProductID("1"), v.Items[2].ID)

	v = c.ShopView(context.Background(), reconcile.Query{Category: "sports-cars"})
	require.Len(t, v.Items, 1)
	assert.Equal(t, models.ProductID("2"), v.Items[0].ID)

	v = c.ShopView(context.Background(), reconcile.Query{Search: "zeppelin"})
	assert.Equal(t, reconcile.StatusNoMatches, v.Status)
	assert.Empty(t, v.Items)
}

func TestDistinctQueriesGetDistinctCachedViews(t *testing.T) {
	srv := catalogServer(t, `{"data":[{"id":"1","title":"alpha","currentPrice":10,"stock":1,"category":"b"}]}`)
	c := newContainer(t, storage.NewMemory(), srv)

	v := c.ShopView(context.Background(), reconcile.Query{Search: "a", Category: "b"})
	require.Len(t, v.Items, 1)

	// A search string containing the key delimiter must not be served the
	// cached view of a different query whose fields join to the same text.
	v = c.ShopView(context.Background(), reconcile.Query{Search: "a|b"})
	assert.Empty(t, v.Items)
	assert.Equal(t, reconcile.StatusNoMatches, v.Status)
}

func TestViewCarriesCatalogFetchState(t *testing.T) {
	srv := catalogServer(t, `{"data":[{"id":"1","title":"One","currentPrice":1,"stock":1}]}`)
	c := newContainer(t, storage.NewMemory(), srv)

	// The fetch completed before the view was built, so the frontend's
	// spinner flag must read false alongside the staleness flag.
	v := c.ShopView(context.Background(), reconcile.Query{})
	assert.False(t, v.Loading)
	assert.False(t, v.Stale)
}

func TestWishlistToggleFeedback(t *testing.T) {
	srv := catalogServer(t, `{"data":[]}`)
	c := newContainer(t, storage.NewMemory(), srv)

	summary := models.ProductSummary{ID: "7", Name: "Seven", Price: 7}
	assert.Equal(t, "added", string(c.Wishlist.Toggle(summary)))
	assert.Equal(t, "removed", string(c.Wishlist.Toggle(summary)))
	assert.Equal(t, 0, c.Wishlist.Len())
}
