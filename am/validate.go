package am

import (
	"github.com/teranos/bomx/errors"
)

// Validate checks configuration invariants that Viper cannot express
func Validate(cfg *Config) error {
	if cfg.Pipeline.Workers < 1 {
		return errors.Newf("pipeline.workers must be >= 1, got %d", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.Evaluators < 1 {
		return errors.Newf("pipeline.evaluators must be >= 1, got %d", cfg.Pipeline.Evaluators)
	}
	if cfg.Catalog.MaxAttempts < 1 {
		return errors.Newf("catalog.max_attempts must be >= 1, got %d", cfg.Catalog.MaxAttempts)
	}
	if cfg.Catalog.RequestsPerSecond <= 0 {
		return errors.Newf("catalog.requests_per_second must be > 0, got %f", cfg.Catalog.RequestsPerSecond)
	}
	if cfg.Cache.TTLHours < 0 {
		return errors.Newf("cache.ttl_hours must be >= 0, got %d", cfg.Cache.TTLHours)
	}
	return nil
}
