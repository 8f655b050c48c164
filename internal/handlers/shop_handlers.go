package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/crazycars/storefront/internal/reconcile"
)

//
// --- Shop / Catalog Handlers ---
//

// parseQuery reads the shared filter/sort query params. The same surface is
// used by the shop, cart and wishlist views:
// ?q=...&category=...&company=...&min_price=...&max_price=...&sort=...
func parseQuery(c *gin.Context) (reconcile.Query, error) {
	q := reconcile.Query{
		Search:   c.Query("q"),
		Category: c.Query("category"),
		Company:  c.Query("company"),
		Sort:     c.Query("sort"),
	}

	if raw := c.Query("min_price"); raw != "" {
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return q, err
		}
		q.MinPrice = &v
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return q, err
		}
		q.MaxPrice = &v
	}
	return q, nil
}

// GetProducts is the handler for GET /v1/products
// It serves the filtered, sorted shop view of the catalog.
func (h *Handlers) GetProducts(c *gin.Context) {
	// 1. --- Parse Filters ---
	query, err := parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price filter: " + err.Error()})
		return
	}

	// 2. --- Run the Pipeline ---
	v := h.Pipeline.ShopView(c.Request.Context(), query)

	// 3. --- Send Response ---
	c.JSON(http.StatusOK, gin.H{
		"products":     v.Items,
		"matchedCount": v.MatchedCount,
		"status":       v.Status,
		"stale":        v.Stale,
		"loading":      v.Loading,
	})
}

// RefreshCatalog is the handler for POST /v1/catalog/refresh
// Manual refetch; if several refreshes race, only the newest one's result is kept.
func (h *Handlers) RefreshCatalog(c *gin.Context) {
	if err := h.Pipeline.Refresh(c.Request.Context()); err != nil {
		// The previous snapshot (if any) keeps serving; report the failure.
		c.JSON(http.StatusBadGateway, gin.H{"error": "Catalog refresh failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Catalog refreshed"})
}
