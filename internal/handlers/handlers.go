package handlers

import (
	"github.com/crazycars/storefront/internal/pipeline"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Pipeline *pipeline.Container // The storefront pipeline (stores + catalog + engine)
}
