package cloud

import (
	"context"
	"log/slog"

	"github.com/cloudalloc/cloudalloc/internal/cloud/aws"
	"github.com/cloudalloc/cloudalloc/internal/cloud/azure"
	"github.com/cloudalloc/cloudalloc/internal/cloud/gcp"
	"github.com/cloudalloc/cloudalloc/internal/config"
	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

// NewSources constructs a PricingSource per enabled provider. A provider
// whose credentials cannot be loaded is excluded with a warning rather than
// failing startup: its data is simply missing from results.
func NewSources(ctx context.Context, cfg *config.Config) map[catalog.Provider]PricingSource {
	sources := make(map[catalog.Provider]PricingSource)

	if cfg.Providers.AWS.Enabled {
		src, err := aws.New(ctx, cfg.Providers.AWS)
		if err != nil {
			slog.Warn("cloud: aws credentials unavailable, provider excluded", "error", err)
		} else {
			sources[catalog.ProviderAWS] = src
		}
	}

	if cfg.Providers.GCP.Enabled {
		src, err := gcp.New(ctx)
		if err != nil {
			slog.Warn("cloud: gcp credentials unavailable, provider excluded", "error", err)
		} else {
			sources[catalog.ProviderGCP] = src
		}
	}

	if cfg.Providers.Azure.Enabled {
		// The Retail Prices API is public; no credentials needed.
		sources[catalog.ProviderAzure] = azure.New()
	}

	return sources
}
