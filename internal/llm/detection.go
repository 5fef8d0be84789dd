// Package llm detects whether the CLI is being driven by an LLM coding
// tool, so output can switch to compact JSON and colors can be disabled.
package llm

import "os"

// IsLLMEnvironment returns true if running in a detected LLM environment
func IsLLMEnvironment() bool {
	if os.Getenv("BOMX_CALLER") == "llm" {
		return true
	}
	return detectKnownLLMTools()
}

// detectKnownLLMTools checks for environment variables set by known LLM tools
func detectKnownLLMTools() bool {
	for _, key := range []string{
		"CLAUDECODE",
		"CLAUDE_CODE_ENTRYPOINT",
		"CURSOR",
		"GITHUB_COPILOT",
	} {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}

// ShouldDisableColor returns true if color should be disabled for the caller
func ShouldDisableColor() bool {
	return IsLLMEnvironment()
}
