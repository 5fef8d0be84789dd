package bom

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/bomx/catalog"
)

func sellersAt(price string, quantity int) []catalog.Seller {
	return []catalog.Seller{{
		Offers: []catalog.Offer{{
			InventoryLevel: 1000,
			Prices: []catalog.PriceBreak{
				{Quantity: quantity, Price: decimal.RequireFromString(price), Currency: "USD"},
			},
		}},
	}}
}

func TestAnalyzeCost(t *testing.T) {
	t.Run("savings at quantity 1000", func(t *testing.T) {
		analysis := AnalyzeCost(sellersAt("0.0500", 1), sellersAt("0.0350", 1), 1000)

		require.NotNil(t, analysis.SavingsPerUnit)
		assert.True(t, analysis.SavingsPerUnit.Equal(decimal.RequireFromString("0.0150")),
			"savings per unit = %s", analysis.SavingsPerUnit)
		require.NotNil(t, analysis.TotalSavings)
		assert.True(t, analysis.TotalSavings.Equal(decimal.RequireFromString("15.00")),
			"total savings = %s", analysis.TotalSavings)
		assert.Equal(t, "USD", analysis.Currency)
	})

	t.Run("no original pricing leaves savings null", func(t *testing.T) {
		analysis := AnalyzeCost(nil, sellersAt("0.0350", 1), 1000)

		assert.Nil(t, analysis.OriginalUnitCost)
		require.NotNil(t, analysis.AlternativeUnitCost)
		assert.Nil(t, analysis.SavingsPerUnit)
		assert.Nil(t, analysis.TotalSavings)
	})

	t.Run("no alternative pricing leaves savings null", func(t *testing.T) {
		analysis := AnalyzeCost(sellersAt("0.0500", 1), nil, 1000)

		require.NotNil(t, analysis.OriginalUnitCost)
		assert.Nil(t, analysis.SavingsPerUnit)
	})

	t.Run("negative savings are reported, not clamped", func(t *testing.T) {
		analysis := AnalyzeCost(sellersAt("0.0350", 1), sellersAt("0.0500", 1), 100)

		require.NotNil(t, analysis.TotalSavings)
		assert.True(t, analysis.TotalSavings.IsNegative())
	})

	t.Run("price break tier follows the quantity", func(t *testing.T) {
		original := []catalog.Seller{{
			Offers: []catalog.Offer{{
				Prices: []catalog.PriceBreak{
					{Quantity: 1, Price: decimal.RequireFromString("0.10"), Currency: "USD"},
					{Quantity: 1000, Price: decimal.RequireFromString("0.05"), Currency: "USD"},
				},
			}},
		}}

		analysis := AnalyzeCost(original, sellersAt("0.04", 1), 1000)
		require.NotNil(t, analysis.OriginalUnitCost)
		assert.True(t, analysis.OriginalUnitCost.Equal(decimal.RequireFromString("0.05")))
	})
}
