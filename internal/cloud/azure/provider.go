package azure

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

// Source fetches the Azure VM catalog from the Retail Prices API. The API is
// public and unauthenticated, so construction cannot fail.
type Source struct {
	httpClient *http.Client
	baseURL    string
}

func New() *Source {
	return &Source{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://prices.azure.com/api/retail/prices",
	}
}

func (s *Source) Name() catalog.Provider { return catalog.ProviderAzure }

func (s *Source) FetchCatalog(ctx context.Context, model catalog.PricingModel) ([]catalog.PricingRecord, error) {
	items, err := s.fetchRetailItems(ctx)
	if err != nil {
		return nil, err
	}
	return parseRetailItems(items, model), nil
}
