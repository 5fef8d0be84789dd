package bom

import (
	"context"

	"github.com/teranos/bomx/cache"
	"github.com/teranos/bomx/catalog"
	"github.com/teranos/bomx/errors"
	"github.com/teranos/bomx/reasoner"
)

// fakeReasoner lets each test script the three reasoning operations.
// Unscripted operations fail, exercising the degradation paths.
type fakeReasoner struct {
	mapColumns func(headers []string, sampleRows [][]string) (*reasoner.ColumnMappingResult, error)
	extractRow func(rawText string, mapping *reasoner.ColumnMappingResult) (*reasoner.RowExtraction, error)
	evaluate   func(original *catalog.PartRecord, candidate catalog.SimilarPart, assumptions map[string]string) (*reasoner.Evaluation, error)
}

func (f *fakeReasoner) MapColumns(_ context.Context, headers []string, sampleRows [][]string) (*reasoner.ColumnMappingResult, error) {
	if f.mapColumns == nil {
		return nil, errors.New("mapColumns not scripted")
	}
	return f.mapColumns(headers, sampleRows)
}

func (f *fakeReasoner) ExtractRow(_ context.Context, rawText string, mapping *reasoner.ColumnMappingResult) (*reasoner.RowExtraction, error) {
	if f.extractRow == nil {
		return nil, errors.New("extractRow not scripted")
	}
	return f.extractRow(rawText, mapping)
}

func (f *fakeReasoner) EvaluateAlternative(_ context.Context, original *catalog.PartRecord, candidate catalog.SimilarPart, assumptions map[string]string) (*reasoner.Evaluation, error) {
	if f.evaluate == nil {
		return nil, errors.New("evaluateAlternative not scripted")
	}
	return f.evaluate(original, candidate, assumptions)
}

var _ reasoner.Client = (*fakeReasoner)(nil)

// fakeCatalog serves canned records by normalized MPN
type fakeCatalog struct {
	records map[string]*catalog.PartRecord
	err     error
}

func (f *fakeCatalog) Lookup(_ context.Context, mpn string) (*catalog.PartRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	record, ok := f.records[cache.NormalizeMPN(mpn)]
	if !ok {
		return nil, errors.NewNotFoundError("MPN %s not found", mpn)
	}
	return record, nil
}

// passthroughMapping scripts MapColumns to echo exact header names
func passthroughMapping(mpn, designators, quantity, description string) func([]string, [][]string) (*reasoner.ColumnMappingResult, error) {
	return func([]string, [][]string) (*reasoner.ColumnMappingResult, error) {
		result := &reasoner.ColumnMappingResult{}
		if mpn != "" {
			result.ManufacturerPartNumber = &mpn
		}
		if designators != "" {
			result.Designators = &designators
		}
		if quantity != "" {
			result.Quantity = &quantity
		}
		if description != "" {
			result.Description = &description
		}
		return result, nil
	}
}

// nullExtraction scripts ExtractRow to return an empty extraction
func nullExtraction(string, *reasoner.ColumnMappingResult) (*reasoner.RowExtraction, error) {
	return &reasoner.RowExtraction{}, nil
}
