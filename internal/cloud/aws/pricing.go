package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	awscfg "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	pricingtypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"
	"github.com/shopspring/decimal"

	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

// gpuFamilySpec maps AWS GPU instance families to their accelerator model
// and per-GPU memory. The Pricing API reports GPU count but not model, so
// the family is the authoritative hint.
type gpuFamilySpec struct {
	model  string
	vramGB float64
}

var gpuFamilySpecs = map[string]gpuFamilySpec{
	"p2":   {"k80", 12},
	"p3":   {"v100", 16},
	"p3dn": {"v100", 32},
	"p4d":  {"a100", 40},
	"p4de": {"a100-80gb", 80},
	"p5":   {"h100", 80},
	"g3":   {"m60", 8},
	"g4dn": {"t4", 16},
	"g5":   {"a10", 24},
	"g5g":  {"t4", 16},
	"g6":   {"l4", 24},
	"g6e":  {"l40s", 48},
}

// fetchOnDemand walks the Pricing API GetProducts across all regions and
// parses each price-list item into a full PricingRecord. Malformed items
// are skipped, not fatal.
func (s *Source) fetchOnDemand(ctx context.Context) ([]catalog.PricingRecord, error) {
	filters := []pricingtypes.Filter{
		{Type: pricingtypes.FilterTypeTermMatch, Field: awscfg.String("ServiceCode"), Value: awscfg.String("AmazonEC2")},
		{Type: pricingtypes.FilterTypeTermMatch, Field: awscfg.String("operatingSystem"), Value: awscfg.String("Linux")},
		{Type: pricingtypes.FilterTypeTermMatch, Field: awscfg.String("tenancy"), Value: awscfg.String("Shared")},
		{Type: pricingtypes.FilterTypeTermMatch, Field: awscfg.String("preInstalledSw"), Value: awscfg.String("NA")},
		{Type: pricingtypes.FilterTypeTermMatch, Field: awscfg.String("capacitystatus"), Value: awscfg.String("Used")},
	}

	input := &pricing.GetProductsInput{
		ServiceCode: awscfg.String("AmazonEC2"),
		Filters:     filters,
		MaxResults:  awscfg.Int32(100),
	}

	// Lowest price per (instance type, region); multiple offers can exist.
	type recordKey struct{ instanceType, region string }
	best := make(map[recordKey]catalog.PricingRecord)
	skipped := 0

	const maxPages = 400
	paginator := pricing.NewGetProductsPaginator(s.pricingClient, input)
	for page := 0; paginator.HasMorePages() && page < maxPages; page++ {
		if page == maxPages-1 {
			slog.Warn("aws: pricing API pagination hit safety limit, catalog may be incomplete",
				"maxPages", maxPages)
		}
		pageResult, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting pricing products: %w", err)
		}

		for _, priceListJSON := range pageResult.PriceList {
			rec, ok := parsePriceListItem(priceListJSON)
			if !ok {
				skipped++
				continue
			}
			k := recordKey{rec.InstanceID, rec.Region}
			if existing, found := best[k]; !found || rec.PricePerHour < existing.PricePerHour {
				best[k] = rec
			}
		}
	}

	if skipped > 0 {
		slog.Warn("aws: skipped malformed price-list items", "skipped", skipped)
	}

	records := make([]catalog.PricingRecord, 0, len(best))
	for _, rec := range best {
		records = append(records, rec)
	}

	s.mu.Lock()
	s.lastOnDemand = records
	s.lastOnDemandAt = time.Now()
	s.mu.Unlock()

	return records, nil
}

// priceListItem mirrors the subset of the Pricing API price-list JSON the
// adapter needs.
type priceListItem struct {
	Product struct {
		Attributes struct {
			InstanceType       string `json:"instanceType"`
			VCPU               string `json:"vcpu"`
			Memory             string `json:"memory"`
			GPU                string `json:"gpu"`
			NetworkPerformance string `json:"networkPerformance"`
			RegionCode         string `json:"regionCode"`
		} `json:"attributes"`
	} `json:"product"`
	Terms struct {
		OnDemand map[string]priceOffer `json:"OnDemand"`
	} `json:"terms"`
}

type priceOffer struct {
	PriceDimensions map[string]priceDimension `json:"priceDimensions"`
}

type priceDimension struct {
	Unit         string            `json:"unit"`
	PricePerUnit map[string]string `json:"pricePerUnit"`
}

// parsePriceListItem parses a single PriceList JSON string from the Pricing
// API into a PricingRecord. Returns false for items without an hourly USD
// on-demand price or a parseable hardware shape.
func parsePriceListItem(priceJSON string) (catalog.PricingRecord, bool) {
	var item priceListItem
	if err := json.Unmarshal([]byte(priceJSON), &item); err != nil {
		return catalog.PricingRecord{}, false
	}

	attrs := item.Product.Attributes
	if attrs.InstanceType == "" || attrs.RegionCode == "" {
		return catalog.PricingRecord{}, false
	}

	vcpu, err := strconv.Atoi(attrs.VCPU)
	if err != nil || vcpu <= 0 {
		return catalog.PricingRecord{}, false
	}
	ramGB, ok := parseMemoryGiB(attrs.Memory)
	if !ok {
		return catalog.PricingRecord{}, false
	}

	price, ok := extractHourlyUSD(item.Terms.OnDemand)
	if !ok {
		return catalog.PricingRecord{}, false
	}

	rec := catalog.PricingRecord{
		Provider:           catalog.ProviderAWS,
		Region:             attrs.RegionCode,
		PricingModel:       catalog.OnDemand,
		InstanceID:         attrs.InstanceType,
		VCPU:               vcpu,
		RAMGB:              ramGB,
		PricePerHour:       price,
		Currency:           "USD",
		NetworkPerformance: attrs.NetworkPerformance,
		Description:        fmt.Sprintf("%s Linux/Shared in %s", attrs.InstanceType, attrs.RegionCode),
	}

	if attrs.GPU != "" && attrs.GPU != "0" {
		count, err := strconv.Atoi(attrs.GPU)
		if err == nil && count > 0 {
			family := catalog.ExtractFamily(attrs.InstanceType)
			spec, known := gpuFamilySpecs[family]
			if !known {
				// A GPU record with no model name is unusable for matching.
				return catalog.PricingRecord{}, false
			}
			rec.GPUCount = count
			rec.GPUType = spec.model
			rec.VRAMGB = spec.vramGB * float64(count)
		}
	}

	return rec, true
}

// extractHourlyUSD pulls the hourly USD rate out of the OnDemand terms,
// parsing through decimal so catalog strings like "0.0416000000" survive
// intact.
func extractHourlyUSD(terms map[string]priceOffer) (float64, bool) {
	for _, offer := range terms {
		for _, dim := range offer.PriceDimensions {
			if dim.Unit != "Hrs" {
				continue
			}
			usd, exists := dim.PricePerUnit["USD"]
			if !exists {
				continue
			}
			d, err := decimal.NewFromString(usd)
			if err != nil {
				continue
			}
			price, _ := d.Round(6).Float64()
			if price <= 0 {
				continue
			}
			return price, true
		}
	}
	return 0, false
}

// parseMemoryGiB parses Pricing API memory strings like "16 GiB" or
// "0.5 GiB".
func parseMemoryGiB(s string) (float64, bool) {
	fields := strings.Fields(s)
	if len(fields) != 2 || fields[1] != "GiB" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
