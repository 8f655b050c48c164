package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"

	"github.com/crazycars/storefront/internal/catalog"
	"github.com/crazycars/storefront/internal/handlers"
	"github.com/crazycars/storefront/internal/pipeline"
	"github.com/crazycars/storefront/internal/routes"
	"github.com/crazycars/storefront/internal/storage"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	// 1. --- Persistence Store (cart + wishlist references) ---
	backend, err := storage.OpenBolt()
	if err != nil {
		log.Fatalf("Failed to open persistence store: %v", err)
	}
	defer backend.Close()

	// 2. --- Catalog Client ---
	catalogURL := os.Getenv("CATALOG_BASE_URL")
	if catalogURL == "" {
		// FALLBACK: local catalog API for dev.
		catalogURL = "http://localhost:4000/api"
	}

	cacheTTL := 60 * time.Second
	if raw := os.Getenv("CATALOG_CACHE_TTL_SECONDS"); raw != "" {
		cacheTTL = time.Duration(cast.ToInt(raw)) * time.Second
	}

	client := catalog.NewClient(catalogURL, catalog.DefaultRetryPolicy(), cacheTTL)

	// 3. --- Pipeline Container ---
	// All state (stores, catalog, change bus) lives in this one injectable
	// container. No ambient singletons.
	container, err := pipeline.New(pipeline.Config{
		Backend: backend,
		Catalog: client,
	})
	if err != nil {
		log.Fatalf("Failed to build pipeline container: %v", err)
	}
	defer container.Teardown()

	// --- Application Setup ---
	app := &handlers.Handlers{
		Pipeline: container,
	}

	// --- 4. Background Worker (Catalog Refresh) ---
	// Keeps the catalog snapshot warm so cart/wishlist views reconcile
	// against reasonably fresh data even if nobody hits /catalog/refresh.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		log.Println("Background Worker Started: Refreshing catalog periodically...")

		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := container.Refresh(ctx); err != nil {
				log.Printf("WARNING: Periodic catalog refresh failed: %v", err)
			}
			cancel()
		}
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting CrazyCars storefront API server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
