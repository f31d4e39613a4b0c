package allocator

import (
	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

// AppType selects which latency budget applies to a request.
type AppType string

const (
	AppTypeApp   AppType = "app"
	AppTypeModel AppType = "model"
)

// ModelAny requests the cheapest option across both pricing models.
const ModelAny catalog.PricingModel = "any"

// AllocationRequest asks for the cheapest instance satisfying a hardware
// requirement within the caller's latency budget. Location may be given
// directly; otherwise it is resolved from UserIP.
type AllocationRequest struct {
	Hardware     catalog.HardwareRequirement `json:"hardware"`
	PricingModel catalog.PricingModel        `json:"pricingModel,omitempty"`
	AppType      AppType                     `json:"appType,omitempty"`
	UserIP       string                      `json:"userIp,omitempty"`
	Latitude     *float64                    `json:"latitude,omitempty"`
	Longitude    *float64                    `json:"longitude,omitempty"`
	StorageGB    float64                     `json:"storageGb,omitempty"`
	StorageType  string                      `json:"storageType,omitempty"`
}

// FailureReason classifies why no instance could be allocated.
type FailureReason string

const (
	ReasonInvalidInput       FailureReason = "invalid_input"
	ReasonNoRegionsInBudget  FailureReason = "no_regions_in_latency_budget"
	ReasonNoPricingData      FailureReason = "no_pricing_data"
	ReasonNoMatchingInstance FailureReason = "no_matching_instance"
)

// AllocationResult carries the winning instance or the failure reason.
type AllocationResult struct {
	Instance            *catalog.PricingRecord `json:"instance,omitempty"`
	LatencyMs           float64                `json:"latencyMs,omitempty"`
	StoragePricePerHour float64                `json:"storagePricePerHour,omitempty"`
	TotalPricePerHour   float64                `json:"totalPricePerHour,omitempty"`
	CandidatesCount     int                    `json:"candidatesCount"`
	ApproximateLocation bool                   `json:"approximateLocation,omitempty"`
	Reason              FailureReason          `json:"reason,omitempty"`
	Message             string                 `json:"message,omitempty"`
}

// Allocated reports whether the request produced an instance.
func (r *AllocationResult) Allocated() bool { return r.Instance != nil }

// PairRequest asks for one on-demand/spot pair per provider so callers can
// run stable and interruptible capacity side by side.
type PairRequest struct {
	Hardware    catalog.HardwareRequirement `json:"hardware"`
	AppType     AppType                     `json:"appType,omitempty"`
	UserIP      string                      `json:"userIp,omitempty"`
	Latitude    *float64                    `json:"latitude,omitempty"`
	Longitude   *float64                    `json:"longitude,omitempty"`
	StorageGB   float64                     `json:"storageGb,omitempty"`
	StorageType string                      `json:"storageType,omitempty"`
}

// ProviderPair is one provider's best on-demand/spot combination. Either
// side may be nil when that model has no matching capacity.
type ProviderPair struct {
	Provider          catalog.Provider       `json:"provider"`
	OnDemand          *catalog.PricingRecord `json:"onDemand,omitempty"`
	Spot              *catalog.PricingRecord `json:"spot,omitempty"`
	OnDemandTotal     float64                `json:"onDemandTotalPerHour,omitempty"`
	SpotTotal         float64                `json:"spotTotalPerHour,omitempty"`
	SavingsPercent    float64                `json:"savingsPercent,omitempty"`
	OnDemandLatencyMs float64                `json:"onDemandLatencyMs,omitempty"`
	SpotLatencyMs     float64                `json:"spotLatencyMs,omitempty"`
}

// PairResult groups the per-provider pairs for one request.
type PairResult struct {
	Pairs               []ProviderPair `json:"pairs"`
	CandidatesCount     int            `json:"candidatesCount"`
	ApproximateLocation bool           `json:"approximateLocation,omitempty"`
	Reason              FailureReason  `json:"reason,omitempty"`
	Message             string         `json:"message,omitempty"`
}
