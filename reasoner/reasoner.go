// Package reasoner wraps the external inference service behind a capability
// interface with typed operations. Responses are schema-validated at this
// boundary; degradation decisions (heuristic fallback, all-null parameters,
// valid=false) belong to the callers.
package reasoner

import (
	"context"

	"github.com/teranos/bomx/catalog"
)

// Client is the structured reasoning capability consumed by the pipeline.
// All three operations are request/response with a bounded timeout; each
// returns an error when the service fails or its response fails schema
// validation. Callers own the declared fallback per operation.
type Client interface {
	// MapColumns maps an arbitrary header row to the canonical BOM schema.
	// Called once per job, with a small sample of data rows for context.
	MapColumns(ctx context.Context, headers []string, sampleRows [][]string) (*ColumnMappingResult, error)

	// ExtractRow parses one free-text BOM row into structured fields.
	ExtractRow(ctx context.Context, rawText string, mapping *ColumnMappingResult) (*RowExtraction, error)

	// EvaluateAlternative judges whether candidate is a valid substitute for
	// original under the project assumptions.
	EvaluateAlternative(ctx context.Context, original *catalog.PartRecord, candidate catalog.SimilarPart, assumptions map[string]string) (*Evaluation, error)
}

// ColumnMappingResult maps canonical BOM fields to source column headers.
// Every key is always present; a nil value means the field has no source
// column.
type ColumnMappingResult struct {
	ManufacturerPartNumber *string `json:"manufacturer_part_number"`
	Designators            *string `json:"designators"`
	Quantity               *string `json:"quantity"`
	Description            *string `json:"description"`
}

// ExtractedParameters are the key technical parameters pulled from a row's
// description. Each is nullable; absence is normal.
type ExtractedParameters struct {
	ElectricalValue  *string `json:"electrical_value"`
	Tolerance        *string `json:"tolerance"`
	Voltage          *string `json:"voltage"`
	PackageFootprint *string `json:"package_footprint"`
}

// RowExtraction is the structured form of one BOM row as the reasoning
// service sees it. The row parser trusts its own deterministic derivation of
// quantity and designators and consumes Parameters and Notes from here.
type RowExtraction struct {
	ManufacturerPartNumber *string             `json:"manufacturer_part_number"`
	Designators            []string            `json:"designators"`
	Quantity               *int                `json:"quantity"`
	Parameters             ExtractedParameters `json:"parameters"`
	Notes                  *string             `json:"parsing_notes"`
}

// Evaluation is the substitute-validity verdict for one candidate
type Evaluation struct {
	Valid     bool   `json:"valid"`
	Reasoning string `json:"reasoning"`
}
