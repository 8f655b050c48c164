package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crazycars/storefront/internal/models"
	"github.com/crazycars/storefront/internal/refstore"
)

//
// --- Cart Handlers ---
//

// AddToCartInput defines the JSON for adding an item to the cart.
// The product summary becomes the persisted snapshot; quantity defaults to 1.
type AddToCartInput struct {
	Product  models.ProductSummary `json:"product" binding:"required"`
	Quantity int                   `json:"quantity" binding:"gte=0"`
}

// AddToCart is the handler for POST /v1/cart/items
// Adding an id that is already in the cart merges into the existing line
// (quantity increments) - duplicate lines are never created.
func (h *Handlers) AddToCart(c *gin.Context) {
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if input.Quantity == 0 {
		input.Quantity = 1
	}

	ref := h.Pipeline.Cart.Add(input.Product, input.Quantity)

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Item added to cart",
		"reference": ref,
	})
}

// GetCart is the handler for GET /v1/cart
// It runs the full reconciliation pipeline: every persisted line appears in
// the response, either resolved against the live catalog or flagged
// unavailable - lines are never silently dropped.
func (h *Handlers) GetCart(c *gin.Context) {
	// 1. --- Parse Filters (same surface as the shop view) ---
	query, err := parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price filter: " + err.Error()})
		return
	}

	// 2. --- Run the Pipeline ---
	v := h.Pipeline.CartView(c.Request.Context(), query)

	// 3. --- Send Response ---
	c.JSON(http.StatusOK, gin.H{
		"items":        v.Items,
		"subtotal":     v.Subtotal,
		"totalItems":   v.TotalItems,
		"matchedCount": v.MatchedCount,
		"totalCount":   v.TotalReferenceCount,
		"status":       v.Status,
		"stale":        v.Stale,
		"loading":      v.Loading,
	})
}

// UpdateCartItemInput defines the JSON for updating an item's quantity.
type UpdateCartItemInput struct {
	Quantity int `json:"quantity" binding:"gte=0"` // gte=0 allows setting quantity to 0, which we treat as a delete
}

// UpdateCartItem is the handler for PUT /v1/cart/items/:product_id
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	// 1. --- Normalize the ID ---
	id, err := models.ParseID(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Bind & Validate JSON ---
	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 3. --- Execute Update (quantity 0 removes the line) ---
	if err := h.Pipeline.Cart.UpdateQuantity(id, input.Quantity); err != nil {
		if errors.Is(err, refstore.ErrNoSuchReference) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item quantity updated"})
}

// DeleteCartItem is the handler for DELETE /v1/cart/items/:product_id
// Removal is idempotent: deleting an id that is not in the cart still succeeds.
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	id, err := models.ParseID(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.Pipeline.Cart.Remove(id)
	c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
}

// ClearCart is the handler for DELETE /v1/cart
func (h *Handlers) ClearCart(c *gin.Context) {
	h.Pipeline.Cart.Clear()
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
