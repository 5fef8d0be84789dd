package catalog

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// searchMPNQuery searches the supplier catalog for an MPN and returns the
// canonical record plus similar-part candidates with their seller pricing.
const searchMPNQuery = `
query findPartWithAlternatives($mpn: String!, $limit: Int!) {
  supSearchMpn(q: $mpn, limit: 1) {
    hits
    results {
      part {
        mpn
        manufacturer { name }
        shortDescription
        specs {
          attribute { name }
          value
          units
        }
        sellers {
          country
          company { name }
          offers {
            inventoryLevel
            prices {
              quantity
              convertedPrice
              convertedCurrency
            }
          }
        }
        similarParts(limit: $limit) {
          mpn
          manufacturer { name }
          shortDescription
          specs {
            attribute { name }
            value
            units
          }
          sellers {
            country
            company { name }
            offers {
              inventoryLevel
              prices {
                quantity
                convertedPrice
                convertedCurrency
              }
            }
          }
        }
      }
    }
  }
}`

// graphqlRequest is the POST body for the catalog endpoint
type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

// Wire types mirroring the catalog's GraphQL response shape. These stay
// private; Lookup converts them to the domain types in types.go.

type graphqlResponse struct {
	Data   *responseData  `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type responseData struct {
	SupSearchMpn struct {
		Hits    int `json:"hits"`
		Results []struct {
			Part wirePart `json:"part"`
		} `json:"results"`
	} `json:"supSearchMpn"`
}

type wirePart struct {
	MPN              string       `json:"mpn"`
	Manufacturer     *wireCompany `json:"manufacturer"`
	ShortDescription string       `json:"shortDescription"`
	Specs            []wireSpec   `json:"specs"`
	Sellers          []wireSeller `json:"sellers"`
	SimilarParts     []wirePart   `json:"similarParts"`
}

type wireCompany struct {
	Name string `json:"name"`
}

type wireSpec struct {
	Attribute struct {
		Name string `json:"name"`
	} `json:"attribute"`
	Value string `json:"value"`
	Units string `json:"units"`
}

type wireSeller struct {
	Country string       `json:"country"`
	Company *wireCompany `json:"company"`
	Offers  []wireOffer  `json:"offers"`
}

type wireOffer struct {
	InventoryLevel int         `json:"inventoryLevel"`
	Prices         []wirePrice `json:"prices"`
}

type wirePrice struct {
	Quantity          int             `json:"quantity"`
	ConvertedPrice    json.RawMessage `json:"convertedPrice"`
	ConvertedCurrency string          `json:"convertedCurrency"`
}

// toRecord converts a wire part into the domain PartRecord
func (w wirePart) toRecord() *PartRecord {
	rec := &PartRecord{
		MPN:         w.MPN,
		Description: w.ShortDescription,
		Specs:       convertSpecs(w.Specs),
		Sellers:     convertSellers(w.Sellers),
	}
	if w.Manufacturer != nil {
		rec.Manufacturer = w.Manufacturer.Name
	}
	for _, sp := range w.SimilarParts {
		rec.SimilarParts = append(rec.SimilarParts, sp.toSimilarPart())
	}
	return rec
}

func (w wirePart) toSimilarPart() SimilarPart {
	part := SimilarPart{
		Description: w.ShortDescription,
		Specs:       convertSpecs(w.Specs),
		Sellers:     convertSellers(w.Sellers),
	}
	if w.MPN != "" {
		mpn := w.MPN
		part.MPN = &mpn
	}
	if w.Manufacturer != nil && w.Manufacturer.Name != "" {
		name := w.Manufacturer.Name
		part.Manufacturer = &name
	}
	return part
}

func convertSpecs(specs []wireSpec) []SpecAttribute {
	out := make([]SpecAttribute, 0, len(specs))
	for _, s := range specs {
		out = append(out, SpecAttribute{
			Name:  s.Attribute.Name,
			Value: s.Value,
			Units: s.Units,
		})
	}
	return out
}

func convertSellers(sellers []wireSeller) []Seller {
	out := make([]Seller, 0, len(sellers))
	for _, s := range sellers {
		seller := Seller{Country: s.Country}
		if s.Company != nil {
			seller.CompanyName = s.Company.Name
		}
		for _, o := range s.Offers {
			offer := Offer{InventoryLevel: o.InventoryLevel}
			for _, p := range o.Prices {
				// The catalog serializes prices as JSON numbers, but tolerate
				// quoted strings too
				raw := strings.Trim(string(p.ConvertedPrice), `"`)
				price, err := decimal.NewFromString(raw)
				if err != nil {
					// Unparseable price tier; skip rather than guess
					continue
				}
				offer.Prices = append(offer.Prices, PriceBreak{
					Quantity: p.Quantity,
					Price:    price,
					Currency: p.ConvertedCurrency,
				})
			}
			seller.Offers = append(seller.Offers, offer)
		}
		out = append(out, seller)
	}
	return out
}
