package view

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crazycars/storefront/internal/models"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$9.99", FormatPrice(9.99))
	assert.Equal(t, "$1,234.56", FormatPrice(1234.56)) // locale grouping

	// Garbage in must format as the zero-value string, never panic.
	assert.Equal(t, "$0.00", FormatPrice(-5))
	assert.Equal(t, "$0.00", FormatPrice(math.NaN()))
}

func TestDiscountPercent(t *testing.T) {
	assert.Equal(t, 20, DiscountPercent(100, 80))
	assert.Equal(t, 33, DiscountPercent(30, 20)) // rounded

	// No real discount in any of these.
	assert.Equal(t, 0, DiscountPercent(100, 100))
	assert.Equal(t, 0, DiscountPercent(100, 120))
	assert.Equal(t, 0, DiscountPercent(0, 50))
	assert.Equal(t, 0, DiscountPercent(100, 0))
}

func TestStockLabel(t *testing.T) {
	assert.Equal(t, "In Stock (4)", StockLabel(4))
	assert.Equal(t, "Out of Stock", StockLabel(0))
	assert.Equal(t, "Out of Stock", StockLabel(-1))
}

func TestMaterializeResolved(t *testing.T) {
	sku := "CC-100"
	item := models.ReconciledItem{
		Reference: models.Reference{ID: "1"},
		Resolved: &models.Product{
			ID:           "1",
			Title:        "Red Roadster",
			CurrentPrice: 100,
			SalePrice:    80,
			Stock:        2,
			Images:       []string{"https://img.example/roadster.jpg"},
			SKU:          &sku,
		},
	}

	d := Materialize(item)

	assert.Equal(t, "Red Roadster", d.Name)
	assert.Equal(t, 80.0, d.Price)
	assert.Equal(t, "$80.00", d.FormattedPrice)
	assert.Equal(t, "$100.00", d.FormattedOriginalPrice)
	assert.Equal(t, 20, d.DiscountPercent)
	assert.Equal(t, "In Stock (2)", d.StockLabel)
	assert.Equal(t, "https://img.example/roadster.jpg", d.Image)
	assert.Equal(t, "CC-100", d.SKU)
	assert.False(t, d.Unavailable)
	assert.False(t, d.MayBeOutdated)
}

func TestMaterializeUnavailableFallsBackToSnapshot(t *testing.T) {
	item := models.ReconciledItem{
		Reference: models.Reference{
			ID: "99",
			Snapshot: models.Snapshot{
				Name:          "Discontinued Coupe",
				Price:         45,
				OriginalPrice: 60,
				Image:         "https://img.example/coupe.jpg",
				SKU:           "CC-99",
			},
		},
		IsUnavailable: true,
	}

	d := Materialize(item)

	assert.Equal(t, "Discontinued Coupe", d.Name)
	assert.Equal(t, "$45.00", d.FormattedPrice)
	assert.Equal(t, 25, d.DiscountPercent)
	assert.Equal(t, "Out of Stock", d.StockLabel)
	assert.True(t, d.Unavailable)
	assert.True(t, d.MayBeOutdated) // snapshot fields may no longer be accurate
}
