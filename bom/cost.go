package bom

import (
	"github.com/shopspring/decimal"

	"github.com/teranos/bomx/catalog"
)

// AnalyzeCost compares original and alternative pricing at the given
// quantity. Pure and deterministic: the unit price on each side is the
// lowest published price break applicable at the quantity, savings are
// computed only when both sides have pricing, and all arithmetic stays in
// decimal.
func AnalyzeCost(original []catalog.Seller, alternative []catalog.Seller, quantity int) CostAnalysis {
	analysis := CostAnalysis{}

	originalBreak := catalog.LowestUnitPrice(original, quantity)
	if originalBreak != nil {
		price := originalBreak.Price
		analysis.OriginalUnitCost = &price
		analysis.Currency = originalBreak.Currency
	}

	alternativeBreak := catalog.LowestUnitPrice(alternative, quantity)
	if alternativeBreak != nil {
		price := alternativeBreak.Price
		analysis.AlternativeUnitCost = &price
		if analysis.Currency == "" {
			analysis.Currency = alternativeBreak.Currency
		}
	}

	if originalBreak == nil || alternativeBreak == nil {
		return analysis
	}

	perUnit := originalBreak.Price.Sub(alternativeBreak.Price)
	total := perUnit.Mul(decimal.NewFromInt(int64(quantity)))
	analysis.SavingsPerUnit = &perUnit
	analysis.TotalSavings = &total

	return analysis
}

// alternativeTotalCost is the projected spend on a candidate at the row
// quantity, nil when the candidate publishes no pricing.
func alternativeTotalCost(candidate catalog.SimilarPart, quantity int) *decimal.Decimal {
	pb := catalog.LowestUnitPrice(candidate.Sellers, quantity)
	if pb == nil {
		return nil
	}
	total := pb.Price.Mul(decimal.NewFromInt(int64(quantity)))
	return &total
}
