package bom

import (
	"context"
	"strings"

	"github.com/teranos/bomx/errors"
	"github.com/teranos/bomx/reasoner"
)

// Header synonyms per canonical field, checked exact-then-substring when
// the reasoning service cannot produce a mapping.
var columnSynonyms = map[string][]string{
	"mpn": {
		"mpn", "manufacturer part number", "mfr part number", "mfg part number",
		"part number", "part no", "part #", "p/n", "pn",
	},
	"designators": {
		"designator", "designators", "reference designator", "ref des",
		"refdes", "reference", "references", "ref",
	},
	"quantity": {
		"quantity", "qty", "qty.", "count",
	},
	"description": {
		"description", "desc", "part description", "comment", "notes",
	},
}

// resolveColumns maps the header row to the canonical schema. The reasoning
// service is asked once per job; on failure the deterministic heuristic
// takes over and a note is attached. The run is fatal only when neither
// path resolves the mandatory mpn and quantity fields.
func (p *Pipeline) resolveColumns(ctx context.Context, job *BomJob) error {
	mapping, note := p.mapColumns(ctx, job)

	if mapping.ManufacturerPartNumber == nil || mapping.Quantity == nil {
		return errors.NewJobFatalError(
			"column mapping could not resolve mandatory fields (mpn, quantity) from headers: %s",
			strings.Join(job.Headers, ", "))
	}

	job.Mapping = mapping
	job.MappingNote = note
	return nil
}

func (p *Pipeline) mapColumns(ctx context.Context, job *BomJob) (*ColumnMapping, *string) {
	sample := job.Rows
	if len(sample) > p.config.SampleRows {
		sample = sample[:p.config.SampleRows]
	}

	result, err := p.reasoner.MapColumns(ctx, job.Headers, sample)
	if err != nil {
		p.logger.Warnw("column mapping degraded to heuristic",
			"job_id", job.ID, "error", err)
		note := "column mapping fell back to header-name matching"
		return HeuristicMapping(job.Headers), &note
	}

	mapping := &ColumnMapping{
		ManufacturerPartNumber: validHeader(job.Headers, result.ManufacturerPartNumber),
		Designators:            validHeader(job.Headers, result.Designators),
		Quantity:               validHeader(job.Headers, result.Quantity),
		Description:            validHeader(job.Headers, result.Description),
	}

	// The service can miss individual fields the synonym table knows
	if mapping.ManufacturerPartNumber == nil || mapping.Quantity == nil {
		heuristic := HeuristicMapping(job.Headers)
		if mapping.ManufacturerPartNumber == nil {
			mapping.ManufacturerPartNumber = heuristic.ManufacturerPartNumber
		}
		if mapping.Quantity == nil {
			mapping.Quantity = heuristic.Quantity
		}
	}

	return mapping, nil
}

// HeuristicMapping resolves columns by case-insensitive exact match against
// the synonym table, then by substring match. Each header is assigned to at
// most one canonical field.
func HeuristicMapping(headers []string) *ColumnMapping {
	assigned := make(map[int]bool, len(headers))

	match := func(field string, exact bool) *string {
		for _, synonym := range columnSynonyms[field] {
			for i, header := range headers {
				if assigned[i] {
					continue
				}
				h := strings.ToLower(strings.TrimSpace(header))
				if (exact && h == synonym) || (!exact && strings.Contains(h, synonym)) {
					assigned[i] = true
					return &headers[i]
				}
			}
		}
		return nil
	}

	resolve := func(field string) *string {
		if header := match(field, true); header != nil {
			return header
		}
		return match(field, false)
	}

	return &ColumnMapping{
		ManufacturerPartNumber: resolve("mpn"),
		Designators:            resolve("designators"),
		Quantity:               resolve("quantity"),
		Description:            resolve("description"),
	}
}

// validHeader keeps a mapped column name only if it names a real header,
// compared case-insensitively. Protects against hallucinated column names.
func validHeader(headers []string, name *string) *string {
	if name == nil {
		return nil
	}
	want := strings.ToLower(strings.TrimSpace(*name))
	for i, header := range headers {
		if strings.ToLower(strings.TrimSpace(header)) == want {
			return &headers[i]
		}
	}
	return nil
}

func (m *ColumnMapping) toReasoner() *reasoner.ColumnMappingResult {
	return &reasoner.ColumnMappingResult{
		ManufacturerPartNumber: m.ManufacturerPartNumber,
		Designators:            m.Designators,
		Quantity:               m.Quantity,
		Description:            m.Description,
	}
}
