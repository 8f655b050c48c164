// Package view turns one reconciled item into display primitives. Everything
// here is a pure function of its input: no network, no storage, no state.
package view

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/crazycars/storefront/internal/models"
)

// printer does locale-grouped number formatting ("1,234.56").
var printer = message.NewPrinter(language.English)

// Display is the render-ready projection of one reconciled item.
type Display struct {
	ID                     models.ProductID `json:"id"`
	Name                   string           `json:"name"`
	Image                  string           `json:"image"`
	SKU                    string           `json:"sku,omitempty"`
	Price                  float64          `json:"price"`
	FormattedPrice         string           `json:"formattedPrice"`
	OriginalPrice          float64          `json:"originalPrice"`
	FormattedOriginalPrice string           `json:"formattedOriginalPrice"`
	DiscountPercent        int              `json:"discountPercent"`
	StockLabel             string           `json:"stockLabel"`
	Unavailable            bool             `json:"unavailable"`
	// MayBeOutdated flags that these fields came from the stored snapshot,
	// not the live catalog, and may no longer be accurate.
	MayBeOutdated bool `json:"mayBeOutdated"`
}

// FormatPrice renders a locale-grouped price with the fixed currency prefix.
// Garbage in (negative, NaN) formats as the zero-value string - it must never
// panic, because it runs on every render pass.
func FormatPrice(v float64) string {
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	return printer.Sprintf("$%.2f", v)
}

// DiscountPercent is the rounded percentage off when a real discount exists
// (current price strictly below a positive original), else 0.
func DiscountPercent(original, current float64) int {
	if original <= 0 || current <= 0 || current >= original {
		return 0
	}
	return int(math.Round((original - current) / original * 100))
}

// StockLabel is the storefront's availability badge text.
func StockLabel(stock int) string {
	if stock > 0 {
		return fmt.Sprintf("In Stock (%d)", stock)
	}
	return "Out of Stock"
}

// Materialize derives the display fields for one item: from the live record
// when it resolved, from the stored snapshot (with the outdated marker) when
// it did not.
func Materialize(it models.ReconciledItem) Display {
	if it.Resolved != nil {
		p := it.Resolved
		d := Display{
			ID:                     p.ID,
			Name:                   p.Title,
			Price:                  p.EffectivePrice(),
			FormattedPrice:         FormatPrice(p.EffectivePrice()),
			OriginalPrice:          p.CurrentPrice,
			FormattedOriginalPrice: FormatPrice(p.CurrentPrice),
			DiscountPercent:        DiscountPercent(p.CurrentPrice, p.EffectivePrice()),
			StockLabel:             StockLabel(p.Stock),
		}
		if len(p.Images) > 0 {
			d.Image = p.Images[0]
		}
		if p.SKU != nil {
			d.SKU = *p.SKU
		}
		return d
	}

	snap := it.Reference.Snapshot
	return Display{
		ID:                     it.Reference.ID,
		Name:                   snap.Name,
		Image:                  snap.Image,
		SKU:                    snap.SKU,
		Price:                  snap.Price,
		FormattedPrice:         FormatPrice(snap.Price),
		OriginalPrice:          snap.OriginalPrice,
		FormattedOriginalPrice: FormatPrice(snap.OriginalPrice),
		DiscountPercent:        DiscountPercent(snap.OriginalPrice, snap.Price),
		StockLabel:             StockLabel(0),
		Unavailable:            true,
		MayBeOutdated:          true,
	}
}

// MaterializeAll maps Materialize over a reconciled sequence, preserving order.
func MaterializeAll(items []models.ReconciledItem) []Display {
	out := make([]Display, 0, len(items))
	for _, it := range items {
		out = append(out, Materialize(it))
	}
	return out
}
