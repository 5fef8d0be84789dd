package reasoner

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/teranos/bomx/errors"
)

// extractJSON strips markdown code fences some models wrap around JSON
// replies and returns the bare object text.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Some models prepend prose; recover the outermost object
	if !strings.HasPrefix(s, "{") {
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start >= 0 && end > start {
			s = s[start : end+1]
		}
	}

	return s
}

// strictUnmarshal decodes a reasoning reply into out, rejecting unknown
// fields. This is the schema-validation boundary for MapColumns and
// ExtractRow.
func strictUnmarshal(raw string, out interface{}) error {
	cleaned := extractJSON(raw)

	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return errors.Wrapf(err, "response failed schema validation: %.200s", cleaned)
	}
	return nil
}

// parseEvaluation validates the evaluation reply against the exact schema
// {valid: boolean, reasoning: string}. Both keys must be present with the
// right types; anything else is a validation failure.
func parseEvaluation(raw string) (*Evaluation, error) {
	cleaned := extractJSON(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, errors.Wrapf(err, "response is not a JSON object: %.200s", cleaned)
	}

	validRaw, ok := fields["valid"]
	if !ok {
		return nil, errors.New(`response missing required key "valid"`)
	}
	reasoningRaw, ok := fields["reasoning"]
	if !ok {
		return nil, errors.New(`response missing required key "reasoning"`)
	}

	var result Evaluation
	if err := json.Unmarshal(validRaw, &result.Valid); err != nil {
		return nil, errors.Wrap(err, `key "valid" is not a boolean`)
	}
	if err := json.Unmarshal(reasoningRaw, &result.Reasoning); err != nil {
		return nil, errors.Wrap(err, `key "reasoning" is not a string`)
	}

	return &result, nil
}
