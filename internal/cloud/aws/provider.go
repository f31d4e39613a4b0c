package aws

import (
	"context"
	"fmt"
	"sync"
	"time"

	awscfg "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/pricing"

	"github.com/cloudalloc/cloudalloc/internal/config"
	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

// Source fetches the AWS EC2 catalog through the Pricing API and derives
// spot records from on-demand prices, optionally refined with live spot
// price history in the configured probe regions.
type Source struct {
	cfg           awscfg.Config
	pricingClient *pricing.Client
	probeRegions  []string

	mu             sync.RWMutex
	lastOnDemand   []catalog.PricingRecord
	lastOnDemandAt time.Time
}

// New loads the default AWS credential chain and verifies it yields usable
// credentials. The Pricing API is only served from us-east-1.
func New(ctx context.Context, cfg config.AWSConfig) (*Source, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion("us-east-1"))
	if err != nil {
		return nil, fmt.Errorf("loading aws credentials: %w", err)
	}
	if _, err := awsCfg.Credentials.Retrieve(ctx); err != nil {
		return nil, fmt.Errorf("retrieving aws credentials: %w", err)
	}

	return &Source{
		cfg:           awsCfg,
		pricingClient: pricing.NewFromConfig(awsCfg),
		probeRegions:  cfg.SpotProbeRegions,
	}, nil
}

func (s *Source) Name() catalog.Provider { return catalog.ProviderAWS }

// FetchCatalog returns the full EC2 catalog for the pricing model.
func (s *Source) FetchCatalog(ctx context.Context, model catalog.PricingModel) ([]catalog.PricingRecord, error) {
	switch model {
	case catalog.Spot:
		return s.fetchSpot(ctx)
	default:
		return s.fetchOnDemand(ctx)
	}
}

// onDemandRecords returns the last on-demand fetch if recent enough,
// re-fetching otherwise. The spot path reuses it so one spot refresh does
// not trigger a second full Pricing API walk.
func (s *Source) onDemandRecords(ctx context.Context) ([]catalog.PricingRecord, error) {
	s.mu.RLock()
	if len(s.lastOnDemand) > 0 && time.Since(s.lastOnDemandAt) < time.Hour {
		defer s.mu.RUnlock()
		return s.lastOnDemand, nil
	}
	s.mu.RUnlock()

	return s.fetchOnDemand(ctx)
}
