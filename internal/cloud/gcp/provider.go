package gcp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

// Source fetches the GCP compute catalog from the Cloud Billing Catalog
// API. GCP prices CPU, RAM and GPU as separate SKUs, so the raw stream goes
// through the assembly engine before records are returned.
type Source struct {
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
}

// New finds default GCP credentials and builds an authenticated client.
func New(ctx context.Context) (*Source, error) {
	creds, err := google.FindDefaultCredentials(ctx,
		"https://www.googleapis.com/auth/cloud-platform",
	)
	if err != nil {
		return nil, fmt.Errorf("finding gcp credentials: %w", err)
	}

	httpClient := oauth2.NewClient(ctx, creds.TokenSource)
	httpClient.Timeout = 30 * time.Second

	return &Source{
		httpClient:  httpClient,
		tokenSource: creds.TokenSource,
	}, nil
}

func (s *Source) Name() catalog.Provider { return catalog.ProviderGCP }

// FetchCatalog fetches the component SKU stream for the pricing model and
// assembles it into full instance records. When the preemptible SKU stream
// is empty, spot records are derived from on-demand via the discount table.
func (s *Source) FetchCatalog(ctx context.Context, model catalog.PricingModel) ([]catalog.PricingRecord, error) {
	usageType := "OnDemand"
	if model == catalog.Spot {
		usageType = "Preemptible"
	}

	skus, err := s.fetchComponentSkus(ctx, usageType, model)
	if err != nil {
		return nil, err
	}

	if len(skus) == 0 && model == catalog.Spot {
		return s.deriveSpotFromOnDemand(ctx)
	}

	return Assemble(skus), nil
}
