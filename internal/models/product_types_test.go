package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductIDUnmarshal(t *testing.T) {
	// The catalog API mixes string and numeric ids; both must normalize to
	// the same canonical string so joins never miss on type alone.
	var fromString, fromNumber ProductID

	require.NoError(t, json.Unmarshal([]byte(`"42"`), &fromString))
	require.NoError(t, json.Unmarshal([]byte(`42`), &fromNumber))

	assert.Equal(t, ProductID("42"), fromString)
	assert.Equal(t, fromString, fromNumber)
}

func TestProductIDUnmarshalRejectsEmpty(t *testing.T) {
	var id ProductID
	assert.Error(t, json.Unmarshal([]byte(`""`), &id))
	assert.Error(t, json.Unmarshal([]byte(`"   "`), &id))
	assert.Error(t, json.Unmarshal([]byte(`null`), &id))
}

func TestParseID(t *testing.T) {
	id, err := ParseID(" 7 ")
	require.NoError(t, err)
	assert.Equal(t, ProductID("7"), id)

	id, err = ParseID(7)
	require.NoError(t, err)
	assert.Equal(t, ProductID("7"), id)

	_, err = ParseID("")
	assert.Error(t, err)
}

func TestEffectivePrice(t *testing.T) {
	onSale := Product{CurrentPrice: 100, SalePrice: 80}
	assert.Equal(t, 80.0, onSale.EffectivePrice())

	noSale := Product{CurrentPrice: 100, SalePrice: 0}
	assert.Equal(t, 100.0, noSale.EffectivePrice())

	// A "sale" above the current price is not a sale.
	bogusSale := Product{CurrentPrice: 100, SalePrice: 120}
	assert.Equal(t, 100.0, bogusSale.EffectivePrice())
}
