package azure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

func TestParseArmSkuName(t *testing.T) {
	tests := []struct {
		armSkuName string
		wantVCPU   int
		wantRAM    float64
		wantGPU    string
		wantCount  int
		wantOK     bool
	}{
		{"Standard_D4s_v3", 4, 16, "", 0, true},
		{"Standard_E8ds_v5", 8, 64, "", 0, true},
		{"Standard_F16s_v2", 16, 32, "", 0, true},
		{"Standard_B2ms", 2, 8, "", 0, true},
		{"Standard_NC24rs_v3", 24, 144, "v100", 4, true},
		{"Standard_NC4as_T4_v3", 4, 24, "t4", 1, true},
		{"Standard_NC24ads_A100_v4", 24, 144, "a100-80gb", 1, true},
		{"Standard_NV12s_v3", 12, 168, "m60", 2, true},
		{"Standard_ND40rs_v2", 40, 560, "v100", 8, true},
		{"Standard_ND24rs", 24, 336, "p40", 4, true},
		{"Basic_A1", 0, 0, "", 0, false},
		{"Standard_", 0, 0, "", 0, false},
	}

	for _, tt := range tests {
		shape, ok := parseArmSkuName(tt.armSkuName)
		if ok != tt.wantOK {
			t.Errorf("parseArmSkuName(%q) ok = %v, want %v", tt.armSkuName, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if shape.vcpu != tt.wantVCPU {
			t.Errorf("%s: vcpu = %d, want %d", tt.armSkuName, shape.vcpu, tt.wantVCPU)
		}
		if shape.ramGB != tt.wantRAM {
			t.Errorf("%s: ramGb = %g, want %g", tt.armSkuName, shape.ramGB, tt.wantRAM)
		}
		if shape.gpuType != tt.wantGPU {
			t.Errorf("%s: gpuType = %q, want %q", tt.armSkuName, shape.gpuType, tt.wantGPU)
		}
		if shape.gpuCount != tt.wantCount {
			t.Errorf("%s: gpuCount = %d, want %d", tt.armSkuName, shape.gpuCount, tt.wantCount)
		}
	}
}

func TestParseRetailItem(t *testing.T) {
	base := retailItem{
		CurrencyCode:  "USD",
		RetailPrice:   0.192,
		ArmRegionName: "westeurope",
		MeterName:     "D4s v3",
		ProductName:   "Virtual Machines Dsv3 Series",
		SkuName:       "D4s v3",
		ArmSkuName:    "Standard_D4s_v3",
	}

	rec, ok := parseRetailItem(base, catalog.OnDemand)
	if !ok {
		t.Fatal("parseRetailItem rejected a valid on-demand item")
	}
	if rec.InstanceID != "Standard_D4s_v3" || rec.VCPU != 4 || rec.PricePerHour != 0.192 {
		t.Errorf("unexpected record: %+v", rec)
	}

	if _, ok := parseRetailItem(base, catalog.Spot); ok {
		t.Error("on-demand item accepted for spot model")
	}

	spot := base
	spot.SkuName = "D4s v3 Spot"
	spot.MeterName = "D4s v3 Spot"
	spot.RetailPrice = 0.045
	if _, ok := parseRetailItem(spot, catalog.OnDemand); ok {
		t.Error("spot item accepted for on-demand model")
	}
	if rec, ok := parseRetailItem(spot, catalog.Spot); !ok || rec.PricingModel != catalog.Spot {
		t.Errorf("spot item not parsed as spot record: ok=%v rec=%+v", ok, rec)
	}

	windows := base
	windows.ProductName = "Virtual Machines Dsv3 Series Windows"
	if _, ok := parseRetailItem(windows, catalog.OnDemand); ok {
		t.Error("windows item not dropped")
	}

	lowPri := base
	lowPri.SkuName = "D4s v3 Low Priority"
	if _, ok := parseRetailItem(lowPri, catalog.Spot); ok {
		t.Error("low priority item not dropped")
	}

	free := base
	free.RetailPrice = 0
	if _, ok := parseRetailItem(free, catalog.OnDemand); ok {
		t.Error("zero-price item not dropped")
	}
}

func TestParseRetailItemsKeepsCheapestMeter(t *testing.T) {
	items := []retailItem{
		{CurrencyCode: "USD", RetailPrice: 0.25, ArmRegionName: "eastus", ProductName: "Virtual Machines Dsv3 Series", SkuName: "D4s v3", ArmSkuName: "Standard_D4s_v3"},
		{CurrencyCode: "USD", RetailPrice: 0.192, ArmRegionName: "eastus", ProductName: "Virtual Machines Dsv3 Series", SkuName: "D4s v3", ArmSkuName: "Standard_D4s_v3"},
	}

	records := parseRetailItems(items, catalog.OnDemand)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].PricePerHour != 0.192 {
		t.Errorf("pricePerHour = %g, want the cheaper meter 0.192", records[0].PricePerHour)
	}
}

func TestFetchCatalogPagination(t *testing.T) {
	var srv *httptest.Server
	pages := 0
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		resp := retailResponse{
			Items: []retailItem{{
				CurrencyCode:  "USD",
				RetailPrice:   0.1 * float64(pages),
				ArmRegionName: "westeurope",
				ProductName:   "Virtual Machines Dsv3 Series",
				SkuName:       "D2s v3",
				ArmSkuName:    "Standard_D2s_v3",
			}},
		}
		if pages < 3 {
			resp.NextPageLink = srv.URL + "/?page=next"
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	src := New()
	src.baseURL = srv.URL

	records, err := src.FetchCatalog(context.Background(), catalog.OnDemand)
	if err != nil {
		t.Fatalf("FetchCatalog: %v", err)
	}
	if pages != 3 {
		t.Errorf("fetched %d pages, want 3", pages)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (same sku deduped to cheapest)", len(records))
	}
	if records[0].PricePerHour != 0.1 {
		t.Errorf("pricePerHour = %g, want cheapest page price 0.1", records[0].PricePerHour)
	}
}
