// Package am holds the bomx core configuration ("I am").
package am

// Config represents the core bomx configuration
type Config struct {
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Cache      CacheConfig      `mapstructure:"cache"`
}

// OpenRouterConfig configures the structured reasoning client
type OpenRouterConfig struct {
	APIKey         string  `mapstructure:"api_key"`
	BaseURL        string  `mapstructure:"base_url"`
	Model          string  `mapstructure:"model"`
	Temperature    float64 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"` // Per-call bound; on expiry callers fall back
}

// CatalogConfig configures the part catalog client
type CatalogConfig struct {
	Token             string  `mapstructure:"token"`
	BaseURL           string  `mapstructure:"base_url"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	MaxAttempts       int     `mapstructure:"max_attempts"` // Retry ceiling for network/rate-limit failures
	SimilarPartsLimit int     `mapstructure:"similar_parts_limit"`
}

// PipelineConfig configures the BOM enrichment pipeline
type PipelineConfig struct {
	Workers    int `mapstructure:"workers"`     // Bounded fan-out for row processing
	Evaluators int `mapstructure:"evaluators"`  // Bounded fan-out for per-candidate evaluation
	SampleRows int `mapstructure:"sample_rows"` // Data rows sent alongside headers for column mapping
}

// CacheConfig configures the content-addressed lookup cache
type CacheConfig struct {
	Path       string `mapstructure:"path"`     // SQLite file for the persistent tier; empty = memory only
	MaxEntries int    `mapstructure:"max_entries"`
	TTLHours   int    `mapstructure:"ttl_hours"`
}
