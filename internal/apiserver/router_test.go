package apiserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloudalloc/cloudalloc/internal/allocator"
	"github.com/cloudalloc/cloudalloc/internal/cloud"
	"github.com/cloudalloc/cloudalloc/internal/config"
	"github.com/cloudalloc/cloudalloc/internal/geoip"
	"github.com/cloudalloc/cloudalloc/internal/store"
	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

type stubSource struct {
	records map[catalog.PricingModel][]catalog.PricingRecord
}

func (s *stubSource) Name() catalog.Provider { return catalog.ProviderAWS }

func (s *stubSource) FetchCatalog(_ context.Context, model catalog.PricingModel) ([]catalog.PricingRecord, error) {
	return s.records[model], nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	src := &stubSource{records: map[catalog.PricingModel][]catalog.PricingRecord{
		catalog.OnDemand: {{
			Provider:     catalog.ProviderAWS,
			Region:       "eu-central-1",
			PricingModel: catalog.OnDemand,
			InstanceID:   "m5.large",
			VCPU:         2,
			RAMGB:        8,
			PricePerHour: 0.115,
			Currency:     "USD",
		}},
		catalog.Spot: {{
			Provider:     catalog.ProviderAWS,
			Region:       "eu-central-1",
			PricingModel: catalog.Spot,
			InstanceID:   "m5.large",
			VCPU:         2,
			RAMGB:        8,
			PricePerHour: 0.035,
			Currency:     "USD",
		}},
	}}
	sources := map[catalog.Provider]cloud.PricingSource{catalog.ProviderAWS: src}

	regions := []catalog.RegionPoint{
		{RegionCode: "eu-central-1", Provider: catalog.ProviderAWS, Latitude: 50.11, Longitude: 8.68},
	}
	cache := store.NewCatalogCache(nil, time.Hour, time.Second)
	resolver := geoip.StaticResolver{Location: catalog.UserLocation{Latitude: 50.11, Longitude: 8.68}}
	engine := allocator.NewEngine(cache, sources, resolver, regions, config.Default())

	return NewRouter(engine, cache, sources)
}

func TestAllocationEndpoint(t *testing.T) {
	router := newTestRouter(t)

	body := `{"hardware": {"vcpuMin": 2, "ramGbMin": 4}, "latitude": 50.11, "longitude": 8.68}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/allocations", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var result allocator.AllocationResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.Instance == nil || result.Instance.InstanceID != "m5.large" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestAllocationEndpointInvalidInput(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/allocations", strings.NewReader(`{"hardware": {"vcpuMin": -1}}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/allocations", strings.NewReader(`{not json`))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status for malformed body = %d, want 400", rr.Code)
	}
}

func TestPairsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	body := `{"hardware": {"vcpuMin": 2}, "latitude": 50.11, "longitude": 8.68}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pairs", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var result allocator.PairResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(result.Pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(result.Pairs))
	}
	if result.Pairs[0].Spot == nil || result.Pairs[0].Spot.InstanceID != "m5.large" {
		t.Errorf("unexpected pair: %+v", result.Pairs[0])
	}
}

func TestRefreshEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/refresh", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var report struct {
		ReportID string `json:"reportId"`
		Results  []struct {
			Provider string `json:"provider"`
			Records  int    `json:"records"`
			OK       bool   `json:"ok"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.ReportID == "" {
		t.Error("empty reportId")
	}
	if len(report.Results) != 2 {
		t.Fatalf("got %d results, want 2 (on_demand + spot)", len(report.Results))
	}
	for _, res := range report.Results {
		if !res.OK || res.Records != 1 {
			t.Errorf("unexpected refresh result: %+v", res)
		}
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}
