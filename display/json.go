package display

import (
	"encoding/json"
	"flag"

	"github.com/teranos/bomx/internal/llm"
)

// MarshalJSON marshals JSON with compact formatting for LLM environments,
// pretty formatting for human-readable output
func MarshalJSON(v interface{}) ([]byte, error) {
	// Golden-file tests expect stable pretty output
	if flag.Lookup("test.v") != nil {
		return json.MarshalIndent(v, "", "  ")
	}

	if llm.IsLLMEnvironment() {
		result, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		// Prefix breaks downstream auto-detection and reformatting
		return append([]byte("json:"), result...), nil
	}

	return json.MarshalIndent(v, "", "  ")
}
