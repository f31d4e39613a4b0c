package config

import (
	"fmt"
	"strings"
)

// ValidationError collects multiple validation errors.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: %s", strings.Join(e.Errors, "; "))
}

func (e *ValidationError) Add(msg string) {
	e.Errors = append(e.Errors, msg)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate checks the config for inconsistent or out-of-range values.
// Returns nil when the config is usable.
func Validate(cfg *Config) error {
	ve := &ValidationError{}

	if cfg.APIServer.Port <= 0 || cfg.APIServer.Port > 65535 {
		ve.Add(fmt.Sprintf("apiServer.port %d out of range", cfg.APIServer.Port))
	}

	if cfg.Cache.TTL <= 0 {
		ve.Add("cache.ttl must be positive")
	}
	if cfg.Cache.FetchTimeout <= 0 {
		ve.Add("cache.fetchTimeout must be positive")
	}

	if cfg.Latency.AppBudgetMs <= 0 {
		ve.Add("latency.appBudgetMs must be positive")
	}
	if cfg.Latency.ModelBudgetMs <= 0 {
		ve.Add("latency.modelBudgetMs must be positive")
	}

	loc := cfg.Geo.DefaultLocation
	if loc.Latitude < -90 || loc.Latitude > 90 {
		ve.Add(fmt.Sprintf("geo.defaultLocation.latitude %v out of range", loc.Latitude))
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		ve.Add(fmt.Sprintf("geo.defaultLocation.longitude %v out of range", loc.Longitude))
	}

	if !cfg.Providers.AWS.Enabled && !cfg.Providers.GCP.Enabled && !cfg.Providers.Azure.Enabled {
		ve.Add("at least one provider must be enabled")
	}

	for provider, tiers := range cfg.Storage.PricePerGBMonth {
		for tier, price := range tiers {
			if price < 0 {
				ve.Add(fmt.Sprintf("storage price for %s/%s is negative", provider, tier))
			}
		}
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}
