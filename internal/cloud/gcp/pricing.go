package gcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

const (
	// Compute Engine service id in the Cloud Billing catalog.
	computeServiceID = "6F81-5844-456A"
	billingAPIBase   = "https://cloudbilling.googleapis.com/v1"

	skuPageSize = 500
	maxSkuPages = 200
)

type skuListResponse struct {
	Skus          []billingSku `json:"skus"`
	NextPageToken string       `json:"nextPageToken"`
}

type billingSku struct {
	SkuID          string   `json:"skuId"`
	Description    string   `json:"description"`
	ServiceRegions []string `json:"serviceRegions"`
	Category       struct {
		ResourceFamily string `json:"resourceFamily"`
		ResourceGroup  string `json:"resourceGroup"`
		UsageType      string `json:"usageType"`
	} `json:"category"`
	PricingInfo []struct {
		PricingExpression struct {
			UsageUnit   string `json:"usageUnit"`
			TieredRates []struct {
				UnitPrice struct {
					CurrencyCode string `json:"currencyCode"`
					Units        string `json:"units"`
					Nanos        int64  `json:"nanos"`
				} `json:"unitPrice"`
			} `json:"tieredRates"`
		} `json:"pricingExpression"`
	} `json:"pricingInfo"`
}

// fetchComponentSkus pages through the Compute Engine SKU list and flattens
// it into one RawComponentSku per (sku, region). Quantities stay zero here;
// categorization and unit quantities are the assembly engine's job.
func (s *Source) fetchComponentSkus(ctx context.Context, usageType string, model catalog.PricingModel) ([]catalog.RawComponentSku, error) {
	var (
		out      []catalog.RawComponentSku
		token    string
		skipped  int
		lastPage int
	)

	for page := 0; page < maxSkuPages; page++ {
		lastPage = page
		resp, err := s.listSkuPage(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("listing gcp skus (page %d): %w", page, err)
		}

		for _, sku := range resp.Skus {
			if sku.Category.ResourceFamily != "Compute" {
				continue
			}
			if sku.Category.UsageType != usageType {
				continue
			}

			price, currency, ok := extractSKUPrice(sku)
			if !ok {
				skipped++
				continue
			}

			for _, region := range sku.ServiceRegions {
				if region == "" || region == "global" {
					continue
				}
				out = append(out, catalog.RawComponentSku{
					SkuID:         sku.SkuID,
					Region:        region,
					PricingModel:  model,
					Description:   sku.Description,
					ResourceGroup: sku.Category.ResourceGroup,
					PricePerHour:  price,
					Currency:      currency,
				})
			}
		}

		token = resp.NextPageToken
		if token == "" {
			break
		}
	}

	if token != "" {
		slog.Warn("gcp sku listing truncated at page limit",
			"pages", lastPage+1, "maxPages", maxSkuPages)
	}
	if skipped > 0 {
		slog.Debug("skipped gcp skus without usable price", "count", skipped)
	}

	return out, nil
}

func (s *Source) listSkuPage(ctx context.Context, pageToken string) (*skuListResponse, error) {
	q := url.Values{}
	q.Set("pageSize", fmt.Sprintf("%d", skuPageSize))
	q.Set("currencyCode", "USD")
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	endpoint := fmt.Sprintf("%s/services/%s/skus?%s", billingAPIBase, computeServiceID, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("billing api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page skuListResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding sku page: %w", err)
	}
	return &page, nil
}

// extractSKUPrice pulls the first-tier hourly unit price out of a SKU.
// Prices come as integer units plus nanos; decimal arithmetic avoids the
// float drift that sub-cent per-hour rates would otherwise accumulate.
func extractSKUPrice(sku billingSku) (price float64, currency string, ok bool) {
	for _, info := range sku.PricingInfo {
		expr := info.PricingExpression
		if !strings.EqualFold(expr.UsageUnit, "h") {
			continue
		}
		for _, tier := range expr.TieredRates {
			up := tier.UnitPrice
			units, err := decimal.NewFromString(up.Units)
			if err != nil {
				continue
			}
			total := units.Add(decimal.New(up.Nanos, -9))
			if total.IsZero() || total.IsNegative() {
				continue
			}
			f, _ := total.Round(9).Float64()
			cur := up.CurrencyCode
			if cur == "" {
				cur = "USD"
			}
			return f, cur, true
		}
	}
	return 0, "", false
}
