package bom

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/teranos/bomx/errors"
)

// columnIndex resolves mapped column names to field positions once per job
type columnIndex struct {
	mpn         int
	designators int
	quantity    int
	description int
}

const noColumn = -1

func newColumnIndex(headers []string, mapping *ColumnMapping) columnIndex {
	position := func(name *string) int {
		if name == nil {
			return noColumn
		}
		for i, header := range headers {
			if strings.EqualFold(strings.TrimSpace(header), strings.TrimSpace(*name)) {
				return i
			}
		}
		return noColumn
	}

	return columnIndex{
		mpn:         position(mapping.ManufacturerPartNumber),
		designators: position(mapping.Designators),
		quantity:    position(mapping.Quantity),
		description: position(mapping.Description),
	}
}

func fieldAt(fields []string, idx int) string {
	if idx == noColumn || idx >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[idx])
}

// parseRow turns one raw row into a ParsedBomItem or the error variant.
// Quantity and designators come deterministically from the mapped columns;
// the reasoning service contributes only the extracted parameters and
// parsing notes, degrading to all-null on failure.
func (p *Pipeline) parseRow(ctx context.Context, fields []string, idx columnIndex, mapping *ColumnMapping, delimiter rune) ParsedBomItem {
	item := ParsedBomItem{
		OriginalRowText: strings.Join(fields, string(delimiter)+" "),
	}

	qtyText := fieldAt(fields, idx.quantity)
	quantity, err := parseQuantity(qtyText)
	if err != nil {
		message := err.Error()
		item.ParseError = &message
		return item
	}
	item.Quantity = quantity

	item.Designators = SplitDesignators(fieldAt(fields, idx.designators))

	if mpn := fieldAt(fields, idx.mpn); mpn != "" {
		item.ManufacturerPartNumber = &mpn
	}

	extraction, err := p.reasoner.ExtractRow(ctx, item.OriginalRowText, mapping.toReasoner())
	if err != nil {
		note := fmt.Sprintf("parameter extraction unavailable: %v", err)
		item.ParsingNotes = &note
		return item
	}

	item.Parameters = ExtractedParameters{
		ElectricalValue:  extraction.Parameters.ElectricalValue,
		Tolerance:        extraction.Parameters.Tolerance,
		Voltage:          extraction.Parameters.Voltage,
		PackageFootprint: extraction.Parameters.PackageFootprint,
	}
	item.ParsingNotes = extraction.Notes

	return item
}

// parseQuantity accepts only positive integers. Malformed quantities make
// the row an error variant, never a guessed value.
func parseQuantity(text string) (int, error) {
	if text == "" {
		return 0, errors.New("quantity is empty")
	}
	quantity, err := strconv.Atoi(text)
	if err != nil {
		return 0, errors.Newf("quantity %q is not an integer", text)
	}
	if quantity <= 0 {
		return 0, errors.Newf("quantity %d is not positive", quantity)
	}
	return quantity, nil
}

// SplitDesignators splits reference-designator text on commas, slashes, and
// whitespace, dropping duplicates while preserving first-seen order.
func SplitDesignators(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ',', '/', ';', ' ', '\t':
			return true
		}
		return false
	})

	seen := make(map[string]bool, len(parts))
	var out []string
	for _, part := range parts {
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}
