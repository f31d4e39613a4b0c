package catalog

import (
	"time"

	"github.com/cloudalloc/cloudalloc/pkg/gputaxonomy"
)

// Provider identifies a supported cloud.
type Provider string

const (
	ProviderAWS   Provider = "aws"
	ProviderGCP   Provider = "gcp"
	ProviderAzure Provider = "azure"
)

// Providers lists all supported clouds in a stable order.
var Providers = []Provider{ProviderAWS, ProviderGCP, ProviderAzure}

// PricingModel distinguishes on-demand from spot/preemptible offerings.
type PricingModel string

const (
	OnDemand PricingModel = "on_demand"
	Spot     PricingModel = "spot"
)

// Models lists both pricing models in a stable order.
var Models = []PricingModel{OnDemand, Spot}

// PricingRecord is the canonical, fully-resolved description of one billable
// instance offering. Records are created by a provider adapter at fetch time
// and are immutable afterwards; a cache refresh replaces them wholesale.
type PricingRecord struct {
	Provider           Provider     `json:"provider"`
	Region             string       `json:"region"`
	PricingModel       PricingModel `json:"pricingModel"`
	InstanceID         string       `json:"instanceId"`
	VCPU               int          `json:"vcpu"`
	RAMGB              float64      `json:"ramGb"`
	GPUType            string       `json:"gpuType,omitempty"`
	GPUCount           int          `json:"gpuCount,omitempty"`
	VRAMGB             float64      `json:"vramGb,omitempty"`
	PricePerHour       float64      `json:"pricePerHour"`
	Currency           string       `json:"currency"`
	NetworkPerformance string       `json:"networkPerformance,omitempty"`
	Description        string       `json:"description,omitempty"`
}

// RawComponentSku is a provider catalog line item that may represent only a
// slice of a real instance (CPU-hour only, RAM-GB-hour only, or GPU-hour
// only). It exists transiently between fetch and assembly; it is never
// cached or returned to callers.
type RawComponentSku struct {
	SkuID         string
	Region        string
	PricingModel  PricingModel
	Description   string
	ResourceGroup string
	VCPU          int
	RAMGB         float64
	GPUCount      int
	PricePerHour  float64
	Currency      string
}

// CacheEntry holds one provider+model catalog snapshot.
type CacheEntry struct {
	Records   []PricingRecord `json:"records"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// RegionPoint is static reference data: where a provider region physically
// sits, for latency estimation.
type RegionPoint struct {
	RegionCode  string
	Provider    Provider
	Latitude    float64
	Longitude   float64
	DisplayName string
}

// UserLocation is derived once per request from an IP address or supplied
// directly by the caller. Approximate is set when the resolver fell back to
// the configured default location, so callers can surface the uncertainty.
type UserLocation struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Country     string  `json:"country,omitempty"`
	City        string  `json:"city,omitempty"`
	Approximate bool    `json:"approximate,omitempty"`
}

// HardwareRequirement is the caller's minimum hardware shape. GPUType is
// free-text as supplied and is compared through the GPU taxonomy.
type HardwareRequirement struct {
	VCPUMin     int     `json:"vcpuMin"`
	RAMGBMin    float64 `json:"ramGbMin"`
	GPUType     string  `json:"gpuType,omitempty"`
	GPUCountMin int     `json:"gpuCountMin,omitempty"`
	VRAMGBMin   float64 `json:"vramGbMin,omitempty"`
}

// Matches reports whether the record satisfies every dimension of the
// requirement. GPU type comparison goes through the taxonomy normalizer so
// "Tesla T4", "nvidia-tesla-t4" and "t4" all line up.
func (r *PricingRecord) Matches(req HardwareRequirement) bool {
	if r.VCPU < req.VCPUMin {
		return false
	}
	if r.RAMGB < req.RAMGBMin {
		return false
	}
	if req.GPUCountMin > 0 && r.GPUCount < req.GPUCountMin {
		return false
	}
	if req.GPUType != "" {
		if r.GPUType == "" || !gputaxonomy.Match(r.GPUType, req.GPUType) {
			return false
		}
		if req.GPUCountMin == 0 && r.GPUCount == 0 {
			return false
		}
	}
	if req.VRAMGBMin > 0 && r.VRAMGB < req.VRAMGBMin {
		return false
	}
	return true
}

const (
	// Sanity bounds for hourly prices. Entries outside these bounds are
	// rejected at ingestion to keep bad catalog data out of ranking.
	minValidPrice = 0.0001
	maxValidPrice = 500.0
)

// ValidPrice reports whether an hourly price falls within sane bounds.
func ValidPrice(price float64) bool {
	return price >= minValidPrice && price <= maxValidPrice
}

// SanitizeRecords drops records with invalid prices or a GPU count without a
// GPU type. Returns the surviving records and the number removed.
func SanitizeRecords(records []PricingRecord) ([]PricingRecord, int) {
	out := records[:0]
	removed := 0
	for _, r := range records {
		if !ValidPrice(r.PricePerHour) || (r.GPUCount > 0 && r.GPUType == "") {
			removed++
			continue
		}
		out = append(out, r)
	}
	return out, removed
}
