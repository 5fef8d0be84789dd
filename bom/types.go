// Package bom implements the enrichment and alternative-evaluation pipeline:
// column mapping, per-row structured extraction, catalog enrichment,
// substitute validation, and cost-savings computation over one BOM file.
package bom

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/teranos/bomx/catalog"
)

// JobState tracks a job through the pipeline stages
type JobState string

const (
	StateCreated       JobState = "created"
	StateColumnsMapped JobState = "columns_mapped"
	StateRowsParsed    JobState = "rows_parsed"
	StateEnriched      JobState = "enriched"
	StateEvaluated     JobState = "evaluated"
	StateFinalized     JobState = "finalized"
	StateFailed        JobState = "failed"
)

// ColumnMapping maps each canonical BOM field to a source column header.
// Every key is always present; a nil value means the source file has no
// column for that field.
type ColumnMapping struct {
	ManufacturerPartNumber *string `json:"manufacturer_part_number"`
	Designators            *string `json:"designators"`
	Quantity               *string `json:"quantity"`
	Description            *string `json:"description"`
}

// ExtractedParameters are the technical parameters pulled from a row's
// free-text description. Absence of any parameter is normal.
type ExtractedParameters struct {
	ElectricalValue  *string `json:"electrical_value"`
	Tolerance        *string `json:"tolerance"`
	Voltage          *string `json:"voltage"`
	PackageFootprint *string `json:"package_footprint"`
}

// ProjectAssumptions map clarifying-question text to the user's answer.
// Consumed as opaque context by the evaluator, never validated here.
type ProjectAssumptions map[string]string

// EvaluationResult is the substitute-validity verdict for one candidate.
// It is always produced, never an error-only outcome: a failed evaluation
// call degrades to Valid=false with an explanatory reasoning string.
type EvaluationResult struct {
	Valid     bool   `json:"valid"`
	Reasoning string `json:"reasoning"`
}

// AlternativeEvaluation pairs a candidate with its verdict and, when the
// candidate carries pricing, its projected total cost at the row quantity.
type AlternativeEvaluation struct {
	Candidate catalog.SimilarPart `json:"candidate"`
	Result    EvaluationResult    `json:"result"`
	TotalCost *decimal.Decimal    `json:"total_cost,omitempty"`
}

// CostAnalysis compares original and alternative pricing at the row
// quantity. Monetary fields are decimal, never binary floating point.
// Nil fields mean the corresponding pricing was not published.
type CostAnalysis struct {
	OriginalUnitCost    *decimal.Decimal `json:"original_unit_cost"`
	AlternativeUnitCost *decimal.Decimal `json:"alternative_unit_cost"`
	SavingsPerUnit      *decimal.Decimal `json:"savings_per_unit"`
	TotalSavings        *decimal.Decimal `json:"total_savings"`
	Currency            string           `json:"currency,omitempty"`
}

// ParsedBomItem is one line of the BOM after parsing. A row that fails
// structured extraction carries ParseError and the original text only;
// it is counted but excluded from enrichment, never silently dropped.
type ParsedBomItem struct {
	OriginalRowText string  `json:"original_row_text"`
	ParseError      *string `json:"parse_error,omitempty"`

	ManufacturerPartNumber *string             `json:"manufacturer_part_number,omitempty"`
	Designators            []string            `json:"designators,omitempty"`
	Quantity               int                 `json:"quantity,omitempty"`
	Parameters             ExtractedParameters `json:"parameters"`
	ParsingNotes           *string             `json:"parsing_notes,omitempty"`

	// Notes records degradations that left the row partially enriched,
	// like a catalog outage or a part missing from the catalog.
	Notes []string `json:"notes,omitempty"`

	PartData               *catalog.PartRecord     `json:"part_data,omitempty"`
	Evaluations            []AlternativeEvaluation `json:"evaluations,omitempty"`
	RecommendedAlternative *catalog.SimilarPart    `json:"recommended_alternative,omitempty"`
	CostAnalysis           *CostAnalysis           `json:"cost_analysis,omitempty"`
}

// Failed reports whether the item is the row-parse error variant
func (i *ParsedBomItem) Failed() bool {
	return i.ParseError != nil
}

// BomJob is one pipeline run over one input file. The orchestrator owns
// the job exclusively for the duration of the run; it is immutable once
// returned to the caller.
type BomJob struct {
	ID      uuid.UUID  `json:"id"`
	State   JobState   `json:"state"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"-"`

	Mapping     *ColumnMapping `json:"mapping,omitempty"`
	MappingNote *string        `json:"mapping_note,omitempty"`

	Assumptions ProjectAssumptions `json:"assumptions,omitempty"`
	Items       []ParsedBomItem    `json:"items"`

	// ProcessingError is set only for job-fatal conditions. Per-row
	// failures live on the items themselves; Summary reports the parse
	// counts either way.
	ProcessingError *string `json:"processing_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewJob creates a job in the Created state
func NewJob(headers []string, rows [][]string, assumptions ProjectAssumptions) *BomJob {
	return &BomJob{
		ID:          uuid.New(),
		State:       StateCreated,
		Headers:     headers,
		Rows:        rows,
		Assumptions: assumptions,
		CreatedAt:   time.Now().UTC(),
	}
}

// ParsedCount returns how many items parsed successfully
func (j *BomJob) ParsedCount() int {
	n := 0
	for i := range j.Items {
		if !j.Items[i].Failed() {
			n++
		}
	}
	return n
}

// FailedCount returns how many items are error variants
func (j *BomJob) FailedCount() int {
	return len(j.Items) - j.ParsedCount()
}

// Summary reports the parse outcome for the caller, independent of any
// job-level error.
func (j *BomJob) Summary() string {
	return fmt.Sprintf("%d of %d items parsed successfully", j.ParsedCount(), len(j.Items))
}

func (j *BomJob) fail(message string) {
	j.State = StateFailed
	j.ProcessingError = &message
	j.Items = nil
}
