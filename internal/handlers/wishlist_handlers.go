package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crazycars/storefront/internal/models"
)

//
// --- Wishlist Handlers ---
//

// GetWishlist is the handler for GET /v1/wishlist
func (h *Handlers) GetWishlist(c *gin.Context) {
	query, err := parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price filter: " + err.Error()})
		return
	}

	v := h.Pipeline.WishlistView(c.Request.Context(), query)

	c.JSON(http.StatusOK, gin.H{
		"items":        v.Items,
		"matchedCount": v.MatchedCount,
		"totalCount":   v.TotalReferenceCount,
		"status":       v.Status,
		"stale":        v.Stale,
		"loading":      v.Loading,
	})
}

// ToggleWishlist is the handler for POST /v1/wishlist/toggle
// Add if absent, remove if present. The "action" field in the response drives
// the heart-icon feedback in the UI, so it always reports what actually happened.
func (h *Handlers) ToggleWishlist(c *gin.Context) {
	var input models.ProductSummary
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	action := h.Pipeline.Wishlist.Toggle(input)

	c.JSON(http.StatusOK, gin.H{
		"message": "Wishlist updated",
		"action":  action,
	})
}

// DeleteWishlistItem is the handler for DELETE /v1/wishlist/:product_id
func (h *Handlers) DeleteWishlistItem(c *gin.Context) {
	id, err := models.ParseID(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.Pipeline.Wishlist.Remove(id)
	c.JSON(http.StatusOK, gin.H{"message": "Wishlist item removed"})
}

// ClearWishlist is the handler for DELETE /v1/wishlist
func (h *Handlers) ClearWishlist(c *gin.Context) {
	h.Pipeline.Wishlist.Clear()
	c.JSON(http.StatusOK, gin.H{"message": "Wishlist cleared"})
}
