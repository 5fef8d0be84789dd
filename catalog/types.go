// Package catalog provides the part catalog client: canonical specs, pricing
// tiers, sellers, and candidate similar parts for a manufacturer part number.
package catalog

import (
	"github.com/shopspring/decimal"
)

// SpecAttribute is one name/value/unit triple from a part's spec sheet
type SpecAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Units string `json:"units,omitempty"`
}

// PriceBreak is one pricing tier: the unit price applicable at or above
// Quantity. Prices are fixed-precision decimals, never binary floats.
type PriceBreak struct {
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// Offer is a seller's stocked offer with its price breaks
type Offer struct {
	InventoryLevel int          `json:"inventory_level"`
	Prices         []PriceBreak `json:"prices,omitempty"`
}

// Seller is a distributor carrying the part
type Seller struct {
	CompanyName string  `json:"company_name"`
	Country     string  `json:"country,omitempty"`
	Offers      []Offer `json:"offers,omitempty"`
}

// SimilarPart is a candidate substitute returned by the catalog. The catalog
// may return partial identity, so MPN and Manufacturer are nullable.
type SimilarPart struct {
	MPN          *string         `json:"mpn"`
	Manufacturer *string         `json:"manufacturer"`
	Description  string          `json:"description,omitempty"`
	Specs        []SpecAttribute `json:"specs,omitempty"`
	Sellers      []Seller        `json:"sellers,omitempty"`
}

// PartRecord is the canonical catalog record for an MPN
type PartRecord struct {
	MPN          string          `json:"mpn"`
	Manufacturer string          `json:"manufacturer"`
	Description  string          `json:"description,omitempty"`
	Specs        []SpecAttribute `json:"specs,omitempty"`
	Sellers      []Seller        `json:"sellers,omitempty"`
	SimilarParts []SimilarPart   `json:"similar_parts,omitempty"`
}

// maxInventory returns the highest inventory level across all seller offers.
// Used as the tie-break signal when two alternatives cost the same.
func maxInventory(sellers []Seller) int {
	max := 0
	for _, s := range sellers {
		for _, o := range s.Offers {
			if o.InventoryLevel > max {
				max = o.InventoryLevel
			}
		}
	}
	return max
}

// MaxInventory returns the highest inventory level across the part's sellers
func (p *PartRecord) MaxInventory() int {
	return maxInventory(p.Sellers)
}

// MaxInventory returns the highest inventory level across the candidate's sellers
func (p *SimilarPart) MaxInventory() int {
	return maxInventory(p.Sellers)
}

// LowestUnitPrice scans every seller offer for the price-break tier applicable
// at quantity and returns the cheapest. The applicable tier is the one with
// the largest break quantity that does not exceed the requested quantity; if
// the requested quantity is below every tier, the lowest tier applies.
// Returns nil when no seller publishes pricing.
func LowestUnitPrice(sellers []Seller, quantity int) *PriceBreak {
	var best *PriceBreak
	for _, s := range sellers {
		for _, o := range s.Offers {
			pb := applicableBreak(o.Prices, quantity)
			if pb == nil {
				continue
			}
			if best == nil || pb.Price.LessThan(best.Price) {
				best = pb
			}
		}
	}
	return best
}

// applicableBreak picks the tier for quantity from one offer's price list
func applicableBreak(prices []PriceBreak, quantity int) *PriceBreak {
	if len(prices) == 0 {
		return nil
	}

	var applicable *PriceBreak
	var lowest *PriceBreak
	for i := range prices {
		pb := &prices[i]
		if lowest == nil || pb.Quantity < lowest.Quantity {
			lowest = pb
		}
		if pb.Quantity <= quantity {
			if applicable == nil || pb.Quantity > applicable.Quantity {
				applicable = pb
			}
		}
	}
	if applicable == nil {
		// Requested quantity is below all tiers; fall back to the lowest tier
		return lowest
	}
	return applicable
}
