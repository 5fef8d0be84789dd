package display

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/bomx/internal/llm"
)

// ShouldOutputJSON determines if a command should output JSON based on
// flags and LLM environment detection
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return llm.IsLLMEnvironment()
	}

	if cmd.Flags().Changed("json") {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}

	if globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json"); globalFlag {
		return true
	}

	return llm.IsLLMEnvironment()
}

// OutputJSON marshals and prints JSON using display.MarshalJSON
func OutputJSON(v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
