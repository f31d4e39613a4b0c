package gcp

import (
	"context"
	"log/slog"

	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

// Observed average preemptible discounts per region. Regions with tight
// capacity (Tokyo, São Paulo) discount less than the big US ones.
var preemptibleDiscountByRegion = map[string]float64{
	"us-central1":          0.69,
	"us-east1":             0.68,
	"us-west1":             0.67,
	"europe-west1":         0.65,
	"europe-west3":         0.64,
	"europe-west4":         0.66,
	"asia-northeast1":      0.58,
	"asia-southeast1":      0.60,
	"southamerica-east1":   0.55,
	"australia-southeast1": 0.59,
}

const defaultPreemptibleDiscount = 0.65

func estimatePreemptibleDiscount(region string) float64 {
	if d, ok := preemptibleDiscountByRegion[region]; ok {
		return d
	}
	return defaultPreemptibleDiscount
}

// deriveSpotFromOnDemand is the fallback when the billing catalog exposes no
// preemptible SKUs: refetch on-demand and apply the per-region discount.
func (s *Source) deriveSpotFromOnDemand(ctx context.Context) ([]catalog.PricingRecord, error) {
	skus, err := s.fetchComponentSkus(ctx, "OnDemand", catalog.OnDemand)
	if err != nil {
		return nil, err
	}

	onDemand := Assemble(skus)
	slog.Info("deriving gcp spot prices from on-demand catalog", "records", len(onDemand))

	spot := make([]catalog.PricingRecord, 0, len(onDemand))
	for _, rec := range onDemand {
		discount := estimatePreemptibleDiscount(rec.Region)
		rec.PricingModel = catalog.Spot
		rec.PricePerHour = round6(rec.PricePerHour * (1 - discount))
		spot = append(spot, rec)
	}
	return spot, nil
}
