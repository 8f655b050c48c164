package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crazycars/storefront/internal/handlers"
)

// CORSMiddleware tells the browser that it is safe for the local storefront
// frontend to send data to us.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Strictly allow ONLY the local React frontend
		c.Writer.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")

		// 2. Allow standard security credentials
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		// 3. Allow the headers the frontend actually uses
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, accept, origin, Cache-Control, X-Requested-With")

		// 4. Allow the HTTP methods we use in our API
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// 5. Handle the "Preflight" OPTIONS request
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	// --- APPLY THE CORS GUARD ---
	// This must be the very first thing the router uses
	router.Use(CORSMiddleware())

	v1 := router.Group("/v1")
	{
		// --- Ping Route ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Catalog Routes ---
		v1.GET("/products", h.GetProducts)
		v1.POST("/catalog/refresh", h.RefreshCatalog)

		// --- Cart Routes ---
		v1.GET("/cart", h.GetCart)
		v1.POST("/cart/items", h.AddToCart)
		v1.PUT("/cart/items/:product_id", h.UpdateCartItem)
		v1.DELETE("/cart/items/:product_id", h.DeleteCartItem)
		v1.DELETE("/cart", h.ClearCart)

		// --- Wishlist Routes ---
		v1.GET("/wishlist", h.GetWishlist)
		v1.POST("/wishlist/toggle", h.ToggleWishlist)
		v1.DELETE("/wishlist/:product_id", h.DeleteWishlistItem)
		v1.DELETE("/wishlist", h.ClearWishlist)
	}

	return router
}
