package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

const maxRetailPages = 300

type retailResponse struct {
	Items        []retailItem `json:"Items"`
	NextPageLink string       `json:"NextPageLink"`
}

type retailItem struct {
	CurrencyCode  string  `json:"currencyCode"`
	RetailPrice   float64 `json:"retailPrice"`
	ArmRegionName string  `json:"armRegionName"`
	MeterName     string  `json:"meterName"`
	ProductName   string  `json:"productName"`
	SkuName       string  `json:"skuName"`
	ArmSkuName    string  `json:"armSkuName"`
	Type          string  `json:"type"`
	UnitOfMeasure string  `json:"unitOfMeasure"`
}

// fetchRetailItems pages through the Retail Prices API following
// NextPageLink until exhausted or the page guard trips.
func (s *Source) fetchRetailItems(ctx context.Context) ([]retailItem, error) {
	q := url.Values{}
	q.Set("$filter", "serviceName eq 'Virtual Machines' and priceType eq 'Consumption'")
	q.Set("currencyCode", "USD")
	next := s.baseURL + "?" + q.Encode()

	var items []retailItem
	for page := 0; next != "" && page < maxRetailPages; page++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, err
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching azure retail prices (page %d): %w", page, err)
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return nil, fmt.Errorf("retail prices api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		var body retailResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("decoding retail prices page: %w", err)
		}
		resp.Body.Close()

		items = append(items, body.Items...)
		next = body.NextPageLink
	}

	if next != "" {
		slog.Warn("azure retail price listing truncated at page limit", "maxPages", maxRetailPages)
	}
	return items, nil
}

// parseRetailItems turns retail items into pricing records for the requested
// model. Windows meters and the legacy Low Priority tier are dropped; the
// cheapest meter wins per (size, region).
func parseRetailItems(items []retailItem, model catalog.PricingModel) []catalog.PricingRecord {
	type key struct{ size, region string }
	best := make(map[key]catalog.PricingRecord)
	skipped := 0

	for _, item := range items {
		rec, ok := parseRetailItem(item, model)
		if !ok {
			skipped++
			continue
		}
		k := key{size: rec.InstanceID, region: rec.Region}
		if cur, exists := best[k]; !exists || rec.PricePerHour < cur.PricePerHour {
			best[k] = rec
		}
	}

	if skipped > 0 {
		slog.Debug("skipped azure retail items", "count", skipped, "model", model)
	}

	records := make([]catalog.PricingRecord, 0, len(best))
	for _, rec := range best {
		records = append(records, rec)
	}
	return records
}

func parseRetailItem(item retailItem, model catalog.PricingModel) (catalog.PricingRecord, bool) {
	if item.ArmSkuName == "" || item.ArmRegionName == "" || item.RetailPrice <= 0 {
		return catalog.PricingRecord{}, false
	}
	if strings.Contains(item.ProductName, "Windows") {
		return catalog.PricingRecord{}, false
	}
	if strings.Contains(item.SkuName, "Low Priority") || strings.Contains(item.MeterName, "Low Priority") {
		return catalog.PricingRecord{}, false
	}

	isSpot := strings.Contains(item.SkuName, "Spot") || strings.Contains(item.MeterName, "Spot")
	if (model == catalog.Spot) != isSpot {
		return catalog.PricingRecord{}, false
	}

	shape, ok := parseArmSkuName(item.ArmSkuName)
	if !ok {
		return catalog.PricingRecord{}, false
	}

	currency := item.CurrencyCode
	if currency == "" {
		currency = "USD"
	}

	price, _ := decimal.NewFromFloat(item.RetailPrice).Round(6).Float64()
	return catalog.PricingRecord{
		Provider:     catalog.ProviderAzure,
		Region:       item.ArmRegionName,
		PricingModel: model,
		InstanceID:   item.ArmSkuName,
		VCPU:         shape.vcpu,
		RAMGB:        shape.ramGB,
		GPUType:      shape.gpuType,
		GPUCount:     shape.gpuCount,
		VRAMGB:       shape.vramGB,
		PricePerHour: price,
		Currency:     currency,
		Description:  item.ProductName,
	}, true
}

type vmShape struct {
	vcpu     int
	ramGB    float64
	gpuType  string
	gpuCount int
	vramGB   float64
}

// armSkuPattern picks the family letters and vCPU count out of names like
// Standard_D4s_v3 or Standard_NC24rs_v3.
var armSkuPattern = regexp.MustCompile(`^Standard_([A-Za-z]+?)(\d+)`)

// ramPerVCPU approximates the GiB-per-vCPU ratio per size family. The Retail
// Prices API carries no hardware attributes, so shapes are inferred.
var ramPerVCPU = map[string]float64{
	"A":  2,
	"B":  4,
	"D":  4,
	"DC": 4,
	"E":  8,
	"EC": 8,
	"F":  2,
	"L":  8,
	"M":  28,
	"NC": 6,
	"ND": 14,
	"NV": 14,
	"HB": 4,
	"HC": 4,
}

const defaultRAMPerVCPU = 4.0

// gpuFamilyRules is scanned in order against the lowercased size name after
// the Standard_ prefix; the most specific patterns come first so NCasT4_v3
// never matches the plain NC rule.
var gpuFamilyRules = []struct {
	substr     string
	gpuType    string
	vramGB     float64
	vcpuPerGPU int
}{
	{"a100", "a100-80gb", 80, 24},
	{"h100", "h100", 80, 24},
	{"t4", "t4", 16, 16},
	{"a10", "a10", 24, 6},
	{"nd40", "v100", 32, 5},
	{"nc", "v100", 16, 6},
	{"nd", "p40", 24, 6},
	{"nv", "m60", 8, 6},
}

func parseArmSkuName(armSkuName string) (vmShape, bool) {
	m := armSkuPattern.FindStringSubmatch(armSkuName)
	if m == nil {
		return vmShape{}, false
	}

	family := strings.ToUpper(m[1])
	vcpu, err := strconv.Atoi(m[2])
	if err != nil || vcpu <= 0 {
		return vmShape{}, false
	}

	shape := vmShape{vcpu: vcpu}

	ratioKey := family
	if len(ratioKey) > 2 {
		ratioKey = ratioKey[:2]
	}
	ratio, ok := ramPerVCPU[ratioKey]
	if !ok {
		ratio, ok = ramPerVCPU[ratioKey[:1]]
		if !ok {
			ratio = defaultRAMPerVCPU
		}
	}
	shape.ramGB = float64(vcpu) * ratio

	if family[0] == 'N' {
		// The Standard_ prefix itself contains "nd", so only the size
		// name takes part in the rule scan.
		lower := strings.ToLower(strings.TrimPrefix(armSkuName, "Standard_"))
		for _, rule := range gpuFamilyRules {
			if strings.Contains(lower, rule.substr) {
				count := vcpu / rule.vcpuPerGPU
				if count < 1 {
					count = 1
				}
				shape.gpuType = rule.gpuType
				shape.gpuCount = count
				shape.vramGB = rule.vramGB * float64(count)
				break
			}
		}
	}

	return shape, true
}
