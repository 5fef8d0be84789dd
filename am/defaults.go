package am

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// OpenRouter defaults
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "openai/gpt-4o-mini") // Cost-effective default
	v.SetDefault("openrouter.temperature", 0.2)            // Deterministic
	v.SetDefault("openrouter.max_tokens", 1000)
	v.SetDefault("openrouter.timeout_seconds", 45)

	// Part catalog defaults
	v.SetDefault("catalog.base_url", "https://api.nexar.com/graphql")
	v.SetDefault("catalog.requests_per_second", 5.0) // Nexar free tier is rate limited
	v.SetDefault("catalog.max_attempts", 3)
	v.SetDefault("catalog.similar_parts_limit", 10)

	// Pipeline defaults
	v.SetDefault("pipeline.workers", 10) // Matches catalog/reasoner rate limits
	v.SetDefault("pipeline.evaluators", 4)
	v.SetDefault("pipeline.sample_rows", 10)

	// Cache defaults
	v.SetDefault("cache.path", "bomx-cache.db")
	v.SetDefault("cache.max_entries", 4096)
	v.SetDefault("cache.ttl_hours", 24)
}
