package aws

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	awscfg "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/shopspring/decimal"

	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

// spotDiscountByFamily estimates the spot discount fraction per instance
// family, used where no live spot price is available.
var spotDiscountByFamily = map[string]float64{
	"m5": 0.70, "m5a": 0.70, "m5n": 0.65, "m5zn": 0.60,
	"m6i": 0.70, "m6a": 0.70, "m6g": 0.72,
	"m7i": 0.68, "m7a": 0.68, "m7g": 0.70,
	"c5": 0.70, "c5a": 0.70, "c5n": 0.65,
	"c6i": 0.70, "c6a": 0.70, "c6g": 0.72,
	"c7i": 0.68, "c7a": 0.68, "c7g": 0.70,
	"r5": 0.70, "r5a": 0.70, "r5n": 0.65,
	"r6i": 0.70, "r6a": 0.70, "r6g": 0.72,
	"r7i": 0.68, "r7a": 0.68, "r7g": 0.70,
	"t3": 0.70, "t3a": 0.70, "t4g": 0.70,
	"p3": 0.60, "p4d": 0.60, "p5": 0.55,
	"g4dn": 0.60, "g5": 0.60, "g6": 0.58,
	"i3": 0.65, "i3en": 0.65, "i4i": 0.63,
	"d2": 0.65, "d3": 0.63,
}

const defaultSpotDiscount = 0.70

// regionSpotDiscount overrides the family estimate in regions where spot
// capacity is structurally tighter or looser than the fleet average.
var regionSpotDiscount = map[string]float64{
	"us-east-1":      0.72,
	"us-west-2":      0.71,
	"eu-central-1":   0.66,
	"eu-west-1":      0.68,
	"ap-northeast-1": 0.62,
	"ap-southeast-1": 0.63,
	"sa-east-1":      0.58,
}

// estimateSpotDiscount returns the estimated spot discount fraction for an
// instance family in a region. The region table wins when present.
func estimateSpotDiscount(family, region string) float64 {
	if d, ok := regionSpotDiscount[region]; ok {
		return d
	}
	if d, ok := spotDiscountByFamily[family]; ok {
		return d
	}
	return defaultSpotDiscount
}

// fetchSpot derives a spot catalog from the on-demand records. Regions in
// probeRegions get live prices from the EC2 spot price history; everywhere
// else the per-region/per-family discount table applies.
func (s *Source) fetchSpot(ctx context.Context) ([]catalog.PricingRecord, error) {
	onDemand, err := s.onDemandRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading on-demand records for spot derivation: %w", err)
	}

	live := make(map[string]map[string]float64, len(s.probeRegions)) // region -> type -> price
	for _, region := range s.probeRegions {
		prices, err := s.fetchLiveSpotPrices(ctx, region)
		if err != nil {
			slog.Warn("aws: live spot price probe failed, using derived prices",
				"region", region, "error", err)
			continue
		}
		live[region] = prices
	}

	records := make([]catalog.PricingRecord, 0, len(onDemand))
	for _, od := range onDemand {
		rec := od
		rec.PricingModel = catalog.Spot

		if prices, ok := live[od.Region]; ok {
			if p, found := prices[od.InstanceID]; found && p > 0 {
				rec.PricePerHour = p
				records = append(records, rec)
				continue
			}
		}

		discount := estimateSpotDiscount(catalog.ExtractFamily(od.InstanceID), od.Region)
		rec.PricePerHour = round4(od.PricePerHour * (1 - discount))
		records = append(records, rec)
	}

	return records, nil
}

// fetchLiveSpotPrices returns the lowest current spot price per instance
// type in a region from the EC2 spot price history.
func (s *Source) fetchLiveSpotPrices(ctx context.Context, region string) (map[string]float64, error) {
	regionCfg := s.cfg.Copy()
	regionCfg.Region = region
	client := ec2.NewFromConfig(regionCfg)

	type key struct{ instanceType, az string }
	latest := make(map[key]struct {
		price float64
		ts    time.Time
	})

	const maxPages = 50
	paginator := ec2.NewDescribeSpotPriceHistoryPaginator(client, &ec2.DescribeSpotPriceHistoryInput{
		ProductDescriptions: []string{"Linux/UNIX"},
		StartTime:           awscfg.Time(time.Now().Add(-1 * time.Hour)),
	})
	for page := 0; paginator.HasMorePages() && page < maxPages; page++ {
		result, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describing spot price history: %w", err)
		}

		for i := range result.SpotPriceHistory {
			sp := &result.SpotPriceHistory[i]
			if sp.SpotPrice == nil || sp.AvailabilityZone == nil || sp.Timestamp == nil {
				continue
			}
			d, err := decimal.NewFromString(*sp.SpotPrice)
			if err != nil {
				continue
			}
			price, _ := d.Float64()
			k := key{string(sp.InstanceType), *sp.AvailabilityZone}
			if existing, ok := latest[k]; !ok || sp.Timestamp.After(existing.ts) {
				latest[k] = struct {
					price float64
					ts    time.Time
				}{price, *sp.Timestamp}
			}
		}
	}

	// Collapse AZs: the cheapest current AZ price represents the region.
	prices := make(map[string]float64)
	for k, v := range latest {
		if existing, ok := prices[k.instanceType]; !ok || v.price < existing {
			prices[k.instanceType] = v.price
		}
	}
	return prices, nil
}
