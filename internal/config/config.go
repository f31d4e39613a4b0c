package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the allocation engine.
type Config struct {
	APIServer APIServerConfig `yaml:"apiServer"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Geo       GeoConfig       `yaml:"geo"`
	Latency   LatencyConfig   `yaml:"latency"`
	Providers ProvidersConfig `yaml:"providers"`
	Storage   StorageConfig   `yaml:"storage"`

	// RefreshSchedule is a cron expression for proactive catalog refresh.
	// Empty disables background refresh.
	RefreshSchedule string `yaml:"refreshSchedule"`
}

type APIServerConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type CacheConfig struct {
	TTL          time.Duration `yaml:"ttl"`
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
}

// GeoConfig controls IP-to-location resolution. DefaultLocation is used for
// private or unresolvable addresses.
type GeoConfig struct {
	LookupURL       string         `yaml:"lookupURL"`
	LookupTimeout   time.Duration  `yaml:"lookupTimeout"`
	DefaultLocation LocationConfig `yaml:"defaultLocation"`
}

type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Country   string  `yaml:"country"`
	City      string  `yaml:"city"`
}

// LatencyConfig sets the per-workload latency budgets in milliseconds.
type LatencyConfig struct {
	AppBudgetMs   float64 `yaml:"appBudgetMs"`
	ModelBudgetMs float64 `yaml:"modelBudgetMs"`
}

type ProvidersConfig struct {
	AWS   AWSConfig   `yaml:"aws"`
	GCP   GCPConfig   `yaml:"gcp"`
	Azure AzureConfig `yaml:"azure"`
}

type AWSConfig struct {
	Enabled bool `yaml:"enabled"`
	// SpotProbeRegions limits live spot-price probing to these regions;
	// other regions get table-derived spot prices.
	SpotProbeRegions []string `yaml:"spotProbeRegions"`
}

type GCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

type AzureConfig struct {
	Enabled bool `yaml:"enabled"`
}

// StorageConfig maps provider -> storage tier -> price per GB-month, used
// for the storage add-on cost on allocation results.
type StorageConfig struct {
	PricePerGBMonth map[string]map[string]float64 `yaml:"pricePerGBMonth"`
}

// Default returns a config with sane defaults for every field.
func Default() *Config {
	return &Config{
		APIServer: APIServerConfig{Address: "0.0.0.0", Port: 8080},
		Database:  DatabaseConfig{Path: "/var/lib/cloudalloc/cloudalloc.db"},
		Cache:     CacheConfig{TTL: time.Hour, FetchTimeout: 30 * time.Second},
		Geo: GeoConfig{
			LookupTimeout: 5 * time.Second,
			DefaultLocation: LocationConfig{
				Latitude: 50.11, Longitude: 8.68, Country: "Germany", City: "Frankfurt",
			},
		},
		Latency: LatencyConfig{AppBudgetMs: 150, ModelBudgetMs: 100},
		Providers: ProvidersConfig{
			AWS:   AWSConfig{Enabled: true, SpotProbeRegions: []string{"us-east-1", "eu-central-1"}},
			GCP:   GCPConfig{Enabled: true},
			Azure: AzureConfig{Enabled: true},
		},
		Storage: StorageConfig{
			PricePerGBMonth: map[string]map[string]float64{
				"aws":   {"ssd": 0.08, "balanced": 0.08, "hdd": 0.045},
				"gcp":   {"ssd": 0.17, "balanced": 0.10, "hdd": 0.04},
				"azure": {"ssd": 0.15, "balanced": 0.075, "hdd": 0.05},
			},
		},
		RefreshSchedule: "@every 45m",
	}
}

// Load reads the YAML config file at path and merges it over the defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}
