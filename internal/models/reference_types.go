package models

import (
	"time"
)

// Snapshot is the denormalized copy of a product's display fields captured at
// the moment the user added it. It is the fallback when the live catalog record
// can no longer be resolved (product removed or renamed upstream).
type Snapshot struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice"`
	Image         string  `json:"image"`
	SKU           string  `json:"sku"`
}

// Reference is one persisted cart line or wishlist entry. It deliberately does
// NOT store the full product record - just the id and a snapshot - so the live
// catalog stays authoritative for anything that can still be resolved.
//
// Invariants:
//   - ID is immutable after creation.
//   - Quantity is only meaningful for cart references and is mutated only
//     through an explicit update.
//   - Duplicate IDs within one collection are forbidden; adds merge instead.
type Reference struct {
	ID       ProductID `json:"id"`
	Snapshot Snapshot  `json:"snapshot"`
	Quantity int       `json:"quantity,omitempty"` // cart only, >= 1
	AddedAt  time.Time `json:"addedAt"`
}

// NewReference builds a reference from the summary the UI handed us.
func NewReference(summary ProductSummary, quantity int) Reference {
	return Reference{
		ID: summary.ID,
		Snapshot: Snapshot{
			Name:          summary.Name,
			Price:         summary.Price,
			OriginalPrice: summary.OriginalPrice,
			Image:         summary.Image,
			SKU:           summary.SKU,
		},
		Quantity: quantity,
		AddedAt:  time.Now(),
	}
}
