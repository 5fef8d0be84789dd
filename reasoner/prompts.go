package reasoner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teranos/bomx/catalog"
	"github.com/teranos/bomx/errors"
)

const columnMappingSystem = `You are an expert manufacturing analyst. You identify the columns of a Bill of Materials (BOM) spreadsheet and return JSON conforming exactly to the requested schema. Return null for any canonical field that has no matching column.`

const rowExtractionSystem = `You are an expert AI that parses a single BOM row into a JSON object conforming to the provided schema. Return null for any field you cannot determine; never invent values.`

const evaluationSystem = `You are an electronics expert that validates whether one component is an acceptable substitute for another in a specific project. You respond with JSON only.`

// columnMappingPrompt renders the header row and sample data for mapping
func columnMappingPrompt(headers []string, sampleRows [][]string) string {
	var b strings.Builder

	b.WriteString("Identify which source column corresponds to each canonical BOM field.\n")
	b.WriteString("Respond with a JSON object with exactly these keys, each mapping to a source column header string or null:\n")
	b.WriteString(`{"manufacturer_part_number": string|null, "designators": string|null, "quantity": string|null, "description": string|null}`)
	b.WriteString("\n\nColumn headers:\n")
	for _, h := range headers {
		fmt.Fprintf(&b, "- %q\n", h)
	}

	if len(sampleRows) > 0 {
		b.WriteString("\nSample rows:\n")
		for _, row := range sampleRows {
			fmt.Fprintf(&b, "| %s |\n", strings.Join(row, " | "))
		}
	}

	return b.String()
}

// rowExtractionPrompt renders one raw row plus the resolved column mapping
func rowExtractionPrompt(rawText string, mapping *ColumnMappingResult) string {
	var b strings.Builder

	b.WriteString("Parse this single BOM row into JSON with exactly these keys:\n")
	b.WriteString(`{"manufacturer_part_number": string|null, "designators": [string], "quantity": integer|null, "parameters": {"electrical_value": string|null, "tolerance": string|null, "voltage": string|null, "package_footprint": string|null}, "parsing_notes": string|null}`)
	b.WriteString("\n\nThe column mapping is: ")
	fmt.Fprintf(&b, "MPN=%s, Designators=%s, Qty=%s, Desc=%s.\n",
		orNull(mapping.ManufacturerPartNumber),
		orNull(mapping.Designators),
		orNull(mapping.Quantity),
		orNull(mapping.Description))
	b.WriteString("\nRow data:\n")
	b.WriteString(rawText)

	return b.String()
}

// evaluationPrompt renders the original part, one candidate, and the project
// assumptions for a validity judgment
func evaluationPrompt(original *catalog.PartRecord, candidate catalog.SimilarPart, assumptions map[string]string) (string, error) {
	originalJSON, err := json.MarshalIndent(summarizePart(original.MPN, original.Manufacturer, original.Description, original.Specs), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal original part")
	}

	candidateJSON, err := json.MarshalIndent(summarizeCandidate(candidate), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal candidate part")
	}

	assumptionsJSON, err := json.MarshalIndent(assumptions, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal assumptions")
	}

	var b strings.Builder
	b.WriteString("Decide whether the candidate component is a valid substitute for the original in this project.\n")
	b.WriteString("All electrical characteristics must satisfy the project requirements. ")
	b.WriteString("A certification absent from the description is not evidence the component lacks it.\n\n")
	fmt.Fprintf(&b, "Original part:\n%s\n\n", originalJSON)
	fmt.Fprintf(&b, "Candidate substitute:\n%s\n\n", candidateJSON)
	fmt.Fprintf(&b, "Project assumptions:\n%s\n\n", assumptionsJSON)
	b.WriteString(`Respond with a JSON object with exactly two keys: {"valid": boolean, "reasoning": string}`)

	return b.String(), nil
}

// partSummary is the compact part rendering sent to the evaluation prompt
type partSummary struct {
	MPN          string            `json:"mpn"`
	Manufacturer string            `json:"manufacturer,omitempty"`
	Description  string            `json:"description,omitempty"`
	Specs        map[string]string `json:"specs,omitempty"`
}

func summarizePart(mpn, manufacturer, description string, specs []catalog.SpecAttribute) partSummary {
	s := partSummary{
		MPN:          mpn,
		Manufacturer: manufacturer,
		Description:  description,
		Specs:        make(map[string]string, len(specs)),
	}
	for _, spec := range specs {
		s.Specs[spec.Name] = strings.TrimSpace(spec.Value + " " + spec.Units)
	}
	return s
}

func summarizeCandidate(candidate catalog.SimilarPart) partSummary {
	mpn := ""
	if candidate.MPN != nil {
		mpn = *candidate.MPN
	}
	manufacturer := ""
	if candidate.Manufacturer != nil {
		manufacturer = *candidate.Manufacturer
	}
	return summarizePart(mpn, manufacturer, candidate.Description, candidate.Specs)
}

func orNull(s *string) string {
	if s == nil {
		return "null"
	}
	return fmt.Sprintf("%q", *s)
}
