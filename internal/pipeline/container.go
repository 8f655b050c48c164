// Package pipeline owns the storefront's derived-state pipeline: the two
// reference stores, the catalog client, and the reconcile-then-materialize
// pass that produces what the frontend renders.
//
// The old frontend had two slightly different fetch+reconcile paths (a
// generic hook and a hand-rolled per-page fetch). This container is the
// single consolidated replacement for both.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/asaskevich/EventBus"

	"github.com/crazycars/storefront/internal/catalog"
	"github.com/crazycars/storefront/internal/models"
	"github.com/crazycars/storefront/internal/reconcile"
	"github.com/crazycars/storefront/internal/refstore"
	"github.com/crazycars/storefront/internal/storage"
	"github.com/crazycars/storefront/internal/view"
)

// Config carries the collaborators the container is built from. Everything is
// injected - there are no package-level singletons to reach for.
type Config struct {
	Backend storage.Backend
	Catalog *catalog.Client
}

// View is one materialized pipeline result: display items plus the aggregates
// the presentation layer needs (counts for both collections, cart money totals).
type View struct {
	Items               []view.Display   `json:"items"`
	MatchedCount        int              `json:"matchedCount"`
	TotalReferenceCount int              `json:"totalReferenceCount"`
	Status              reconcile.Status `json:"status"`
	// Stale is true when the items were reconciled against a snapshot kept
	// from before a failed refresh.
	Stale bool `json:"stale"`
	// Loading is true while a fetch is in flight; the frontend renders its
	// spinner off this, same as the old loading/error/data triple.
	Loading    bool    `json:"loading"`
	Subtotal   float64 `json:"subtotal"`
	TotalItems int     `json:"totalItems"`
}

// Container is the explicit state container for the whole pipeline. Build it
// with New, pass it where it is needed, and Teardown when done - all change
// notification flows over its private bus.
type Container struct {
	Cart     *refstore.Store
	Wishlist *refstore.Store
	Catalog  *catalog.Client

	bus EventBus.Bus

	mu        sync.Mutex
	viewCache map[string]View

	// Kept so Teardown can unsubscribe the exact handlers we registered.
	onRefsChanged   func(refstore.Kind)
	onCatalogUpdate func()
}

// New loads both persisted collections, wires the change bus, and returns a
// ready container.
func New(cfg Config) (*Container, error) {
	c := &Container{
		Cart:      refstore.New(refstore.KindCart, cfg.Backend),
		Wishlist:  refstore.New(refstore.KindWishlist, cfg.Backend),
		Catalog:   cfg.Catalog,
		bus:       EventBus.New(),
		viewCache: make(map[string]View),
	}

	c.onRefsChanged = func(kind refstore.Kind) {
		c.invalidate()
	}
	c.onCatalogUpdate = func() {
		c.invalidate()
	}
	if err := c.bus.Subscribe(refstore.TopicChanged, c.onRefsChanged); err != nil {
		return nil, err
	}
	if err := c.bus.Subscribe(catalog.TopicUpdated, c.onCatalogUpdate); err != nil {
		return nil, err
	}

	c.Cart.AttachBus(c.bus)
	c.Wishlist.AttachBus(c.bus)
	c.Catalog.AttachBus(c.bus)

	log.Printf("Pipeline container ready: %d cart reference(s), %d wishlist reference(s)",
		c.Cart.Len(), c.Wishlist.Len())
	return c, nil
}

// Teardown unsubscribes the bus handlers and drops the view cache. The
// container must not be used afterwards.
func (c *Container) Teardown() {
	c.bus.Unsubscribe(refstore.TopicChanged, c.onRefsChanged)
	c.bus.Unsubscribe(catalog.TopicUpdated, c.onCatalogUpdate)
	c.mu.Lock()
	c.viewCache = make(map[string]View)
	c.mu.Unlock()
}

// invalidate drops every cached view. Called on any store or catalog change.
func (c *Container) invalidate() {
	c.mu.Lock()
	c.viewCache = make(map[string]View)
	c.mu.Unlock()
}

// cacheKey quotes every field so user-supplied text containing the delimiter
// cannot collide with a different query (`Search:"a", Category:"b"` must
// never share a key with `Search:"a|b"`).
func cacheKey(scope string, q reconcile.Query) string {
	min, max := "", ""
	if q.MinPrice != nil {
		min = fmt.Sprintf("%g", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		max = fmt.Sprintf("%g", *q.MaxPrice)
	}
	return fmt.Sprintf("%s|%q|%q|%q|%q|%q|%q", scope, q.Search, q.Category, q.Company, min, max, q.Sort)
}

// ensureCatalog fetches the catalog once if we have neither data nor a recent
// failure to report. View calls after that reuse whatever state the client
// holds; a manual refresh goes through Refresh.
func (c *Container) ensureCatalog(ctx context.Context) catalog.State {
	snap := c.Catalog.Snapshot()
	if !snap.HasData && snap.Err == nil && !snap.Loading {
		if _, err := c.Catalog.Fetch(ctx); err != nil {
			log.Printf("Initial catalog fetch failed: %v", err)
		}
		snap = c.Catalog.Snapshot()
	}
	return snap
}

// Refresh forces a new catalog fetch (manual refetch). Last-call-wins is
// handled inside the client. Views are invalidated even on failure, because
// the catalog state they embed (error, staleness) changed either way.
func (c *Container) Refresh(ctx context.Context) error {
	_, err := c.Catalog.Refetch(ctx)
	c.invalidate()
	return err
}

// CartView runs the full pipeline for the cart: reconcile against the current
// catalog state, filter, sort, materialize, and total up the purchasable lines.
func (c *Container) CartView(ctx context.Context, q reconcile.Query) View {
	return c.referenceView(ctx, "cart", c.Cart, q)
}

// WishlistView is the same pass over the wishlist collection.
func (c *Container) WishlistView(ctx context.Context, q reconcile.Query) View {
	return c.referenceView(ctx, "wishlist", c.Wishlist, q)
}

func (c *Container) referenceView(ctx context.Context, scope string, store *refstore.Store, q reconcile.Query) View {
	key := cacheKey(scope, q)
	c.mu.Lock()
	if v, ok := c.viewCache[key]; ok {
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	snap := c.ensureCatalog(ctx)
	res := reconcile.Run(reconcile.Input{
		References: store.Items(),
		Catalog:    snap.Data,
		CatalogOK:  snap.HasData,
	}, q)

	v := View{
		Items:               view.MaterializeAll(res.Items),
		MatchedCount:        res.MatchedCount,
		TotalReferenceCount: res.TotalReferenceCount,
		Status:              res.Status,
		Stale:               snap.Stale,
		Loading:             snap.Loading,
	}
	v.Subtotal, v.TotalItems = totals(res.Items)

	c.mu.Lock()
	c.viewCache[key] = v
	c.mu.Unlock()
	return v
}

// ShopView is the catalog browse pass (shop / category pages): same filters
// and sorts, no references involved.
func (c *Container) ShopView(ctx context.Context, q reconcile.Query) View {
	key := cacheKey("shop", q)
	c.mu.Lock()
	if v, ok := c.viewCache[key]; ok {
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	snap := c.ensureCatalog(ctx)
	res := reconcile.Browse(snap.Data, snap.HasData, q)

	v := View{
		Items:        view.MaterializeAll(res.Items),
		MatchedCount: res.MatchedCount,
		Status:       res.Status,
		Stale:        snap.Stale,
		Loading:      snap.Loading,
	}

	c.mu.Lock()
	c.viewCache[key] = v
	c.mu.Unlock()
	return v
}

// totals sums the purchasable lines: unavailable references still show up in
// the view but cannot be bought, so they contribute nothing to the subtotal.
func totals(items []models.ReconciledItem) (subtotal float64, totalItems int) {
	for i := range items {
		it := &items[i]
		if it.IsUnavailable {
			continue
		}
		qty := it.Reference.Quantity
		if qty == 0 {
			qty = 1 // wishlist entries count once
		}
		subtotal += it.EffectivePrice() * float64(qty)
		totalItems += qty
	}
	return subtotal, totalItems
}
