package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// ProductID is the canonical product identifier.
// The upstream catalog API is inconsistent about id types (some records carry
// numeric ids, some string ids), so we normalize EVERYTHING to a string at the
// unmarshal boundary. All lookups in the engine are plain string equality.
type ProductID string

// UnmarshalJSON accepts both `"42"` and `42` and stores the canonical string form.
func (id *ProductID) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return fmt.Errorf("product id must be a string or number, got %T", raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("product id must not be empty")
	}
	*id = ProductID(s)
	return nil
}

func (id ProductID) String() string {
	return string(id)
}

// ParseID normalizes an id arriving from a non-JSON boundary (URL params, etc.)
// into the canonical form. Rejects empty ids.
func ParseID(v interface{}) (ProductID, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("invalid product id: %v", v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("product id must not be empty")
	}
	return ProductID(s), nil
}

// Product is one record of the remote catalog. The catalog API is the single
// source of truth for these; we only ever read full snapshots of the collection.
type Product struct {
	ID          ProductID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`

	// --- Pricing & Stock ---
	CurrentPrice float64 `json:"currentPrice"`
	SalePrice    float64 `json:"salePrice"` // 0 means "no sale"
	Stock        int     `json:"stock"`

	// --- Classification ---
	Category string   `json:"category"`
	Company  string   `json:"company"`
	Tags     []string `json:"tags,omitempty"`

	// --- Media & Misc ---
	Images []string `json:"images"`
	SKU    *string  `json:"sku,omitempty"`
	Rating float64  `json:"rating"`
}

// EffectivePrice is the price a buyer would actually pay right now:
// the sale price when a real sale is active, else the current price.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice > 0 && p.SalePrice < p.CurrentPrice {
		return p.SalePrice
	}
	return p.CurrentPrice
}

// ProductSummary is the slice of a product that the UI hands to the stores
// when the user hits "add to cart" / the wishlist heart. It becomes the
// reference's snapshot.
type ProductSummary struct {
	ID            ProductID `json:"id" binding:"required"`
	Name          string    `json:"name" binding:"required"`
	Price         float64   `json:"price" binding:"gte=0"`
	OriginalPrice float64   `json:"originalPrice" binding:"gte=0"`
	Image         string    `json:"image"`
	SKU           string    `json:"sku"`
}
