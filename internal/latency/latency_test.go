package latency

import (
	"math"
	"reflect"
	"testing"

	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64 // km
		tolerance              float64
	}{
		{"same point", 50.11, 8.68, 50.11, 8.68, 0, 0.001},
		{"frankfurt to london", 50.11, 8.68, 51.51, -0.13, 638, 10},
		{"new york to los angeles", 40.71, -74.01, 34.05, -118.24, 3936, 30},
		{"antipodal-ish", 0, 0, 0, 180, 20015, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Haversine = %.1f km, want %.1f ± %.1f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestHaversineSymmetric(t *testing.T) {
	a := Haversine(38.95, -77.45, 35.68, 139.69)
	b := Haversine(35.68, 139.69, 38.95, -77.45)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("Haversine not symmetric: %v vs %v", a, b)
	}
}

func TestEstimateLatencyMonotonic(t *testing.T) {
	if got := EstimateLatency(0); got != 5.0 {
		t.Errorf("EstimateLatency(0) = %v, want 5.0", got)
	}

	prev := -1.0
	for d := 0.0; d <= 20000; d += 50 {
		ms := EstimateLatency(d)
		if ms < prev {
			t.Fatalf("EstimateLatency not monotonic at d=%v: %v < %v", d, ms, prev)
		}
		prev = ms
	}
}

func TestRegionsWithin(t *testing.T) {
	frankfurt := catalog.UserLocation{Latitude: 50.11, Longitude: 8.68}

	got := RegionsWithin(DefaultRegions, frankfurt, 150, "")
	if len(got) == 0 {
		t.Fatal("expected at least one region within 150ms of Frankfurt")
	}

	for i, rl := range got {
		if rl.LatencyMs > 150 {
			t.Errorf("region %s latency %.1fms exceeds budget", rl.Region.RegionCode, rl.LatencyMs)
		}
		if i > 0 && got[i-1].LatencyMs > rl.LatencyMs {
			t.Errorf("regions not sorted ascending at index %d", i)
		}
	}

	// The co-located Frankfurt regions should rank first.
	if got[0].Region.RegionCode != "eu-central-1" && got[0].Region.RegionCode != "europe-west3" && got[0].Region.RegionCode != "germanywestcentral" {
		t.Errorf("nearest region = %s, want a Frankfurt region", got[0].Region.RegionCode)
	}

	// Tokyo must not be within a 150ms budget from Frankfurt.
	for _, rl := range got {
		if rl.Region.RegionCode == "ap-northeast-1" {
			t.Error("Tokyo should be outside the 150ms budget from Frankfurt")
		}
	}
}

func TestRegionsWithinProviderFilter(t *testing.T) {
	loc := catalog.UserLocation{Latitude: 40.71, Longitude: -74.01}
	got := RegionsWithin(DefaultRegions, loc, 200, catalog.ProviderGCP)
	if len(got) == 0 {
		t.Fatal("expected GCP regions near New York")
	}
	for _, rl := range got {
		if rl.Region.Provider != catalog.ProviderGCP {
			t.Errorf("provider filter leaked %s region %s", rl.Region.Provider, rl.Region.RegionCode)
		}
	}
}

func TestRegionsWithinIdempotent(t *testing.T) {
	loc := catalog.UserLocation{Latitude: 51.51, Longitude: -0.13}
	a := RegionsWithin(DefaultRegions, loc, 120, "")
	b := RegionsWithin(DefaultRegions, loc, 120, "")
	if !reflect.DeepEqual(a, b) {
		t.Error("RegionsWithin is not deterministic for identical inputs")
	}
}
