package aws

import (
	"testing"

	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

// ---------------------------------------------------------------------------
// parsePriceListItem
// ---------------------------------------------------------------------------

const m5xlargeItem = `{
  "product": {
    "attributes": {
      "instanceType": "m5.xlarge",
      "vcpu": "4",
      "memory": "16 GiB",
      "networkPerformance": "Up to 10 Gigabit",
      "regionCode": "us-east-1"
    }
  },
  "terms": {
    "OnDemand": {
      "X": {
        "priceDimensions": {
          "Y": {
            "unit": "Hrs",
            "pricePerUnit": {"USD": "0.1920000000"}
          }
        }
      }
    }
  }
}`

const g4dnItem = `{
  "product": {
    "attributes": {
      "instanceType": "g4dn.xlarge",
      "vcpu": "4",
      "memory": "16 GiB",
      "gpu": "1",
      "networkPerformance": "Up to 25 Gigabit",
      "regionCode": "eu-central-1"
    }
  },
  "terms": {
    "OnDemand": {
      "X": {
        "priceDimensions": {
          "Y": {
            "unit": "Hrs",
            "pricePerUnit": {"USD": "0.6580000000"}
          }
        }
      }
    }
  }
}`

func TestParsePriceListItem(t *testing.T) {
	rec, ok := parsePriceListItem(m5xlargeItem)
	if !ok {
		t.Fatal("parsePriceListItem returned false for valid item")
	}

	if rec.InstanceID != "m5.xlarge" || rec.Region != "us-east-1" {
		t.Errorf("identity fields wrong: %+v", rec)
	}
	if rec.VCPU != 4 || rec.RAMGB != 16 {
		t.Errorf("hardware shape wrong: vcpu=%d ram=%v", rec.VCPU, rec.RAMGB)
	}
	if rec.PricePerHour != 0.192 {
		t.Errorf("price = %v, want 0.192", rec.PricePerHour)
	}
	if rec.PricingModel != catalog.OnDemand || rec.Provider != catalog.ProviderAWS {
		t.Errorf("model/provider wrong: %+v", rec)
	}
	if rec.Currency != "USD" {
		t.Errorf("currency = %q", rec.Currency)
	}
	if rec.NetworkPerformance != "Up to 10 Gigabit" {
		t.Errorf("networkPerformance = %q", rec.NetworkPerformance)
	}
}

func TestParsePriceListItemGPU(t *testing.T) {
	rec, ok := parsePriceListItem(g4dnItem)
	if !ok {
		t.Fatal("parsePriceListItem returned false for valid GPU item")
	}

	if rec.GPUCount != 1 || rec.GPUType != "t4" {
		t.Errorf("gpu fields wrong: count=%d type=%q", rec.GPUCount, rec.GPUType)
	}
	if rec.VRAMGB != 16 {
		t.Errorf("vram = %v, want 16", rec.VRAMGB)
	}
}

func TestParsePriceListItemRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", "{{{"},
		{"missing instance type", `{"product":{"attributes":{"regionCode":"us-east-1","vcpu":"4","memory":"16 GiB"}},"terms":{"OnDemand":{}}}`},
		{"missing region", `{"product":{"attributes":{"instanceType":"m5.xlarge","vcpu":"4","memory":"16 GiB"}},"terms":{"OnDemand":{}}}`},
		{"zero vcpu", `{"product":{"attributes":{"instanceType":"m5.xlarge","regionCode":"us-east-1","vcpu":"0","memory":"16 GiB"}},"terms":{"OnDemand":{}}}`},
		{"bad memory unit", `{"product":{"attributes":{"instanceType":"m5.xlarge","regionCode":"us-east-1","vcpu":"4","memory":"16 MB"}},"terms":{"OnDemand":{}}}`},
		{"no price", `{"product":{"attributes":{"instanceType":"m5.xlarge","regionCode":"us-east-1","vcpu":"4","memory":"16 GiB"}},"terms":{"OnDemand":{}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := parsePriceListItem(tt.json); ok {
				t.Error("parsePriceListItem accepted malformed item")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// parseMemoryGiB
// ---------------------------------------------------------------------------

func TestParseMemoryGiB(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"whole number", "16 GiB", 16, true},
		{"fractional", "0.5 GiB", 0.5, true},
		{"large with comma", "1,152 GiB", 1152, true},
		{"wrong unit", "16 MB", 0, false},
		{"empty", "", 0, false},
		{"garbage", "NA", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseMemoryGiB(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseMemoryGiB(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// estimateSpotDiscount
// ---------------------------------------------------------------------------

func TestEstimateSpotDiscount(t *testing.T) {
	tests := []struct {
		name   string
		family string
		region string
		want   float64
	}{
		{"region table wins", "m5", "us-east-1", 0.72},
		{"family table when region absent", "p5", "eu-west-3", 0.55},
		{"default for unknown", "x2idn", "eu-west-3", 0.70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := estimateSpotDiscount(tt.family, tt.region); got != tt.want {
				t.Errorf("estimateSpotDiscount(%q, %q) = %v, want %v", tt.family, tt.region, got, tt.want)
			}
		})
	}
}
