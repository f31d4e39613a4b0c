package allocator

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/cloudalloc/cloudalloc/internal/metrics"
	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

// Pair matches each provider's on-demand candidates against its spot
// candidates: same instance id wins, then the closest (vcpu, ram) shape
// among the unused spots, so every pair stays interchangeable under
// interruption. Candidates left over on either side come back single.
func (e *Engine) Pair(ctx context.Context, req PairRequest) *PairResult {
	if msg := validatePair(&req); msg != "" {
		metrics.PairRequests.WithLabelValues("invalid_input").Inc()
		return &PairResult{Reason: ReasonInvalidInput, Message: msg}
	}

	loc := e.resolveLocation(ctx, req.UserIP, req.Latitude, req.Longitude)
	regionLat := e.reachableRegions(loc, req.AppType)
	if len(regionLat) == 0 {
		metrics.PairRequests.WithLabelValues("no_regions").Inc()
		return &PairResult{
			ApproximateLocation: loc.Approximate,
			Reason:              ReasonNoRegionsInBudget,
			Message:             fmt.Sprintf("no provider region within %.0fms of (%.2f, %.2f)", e.budgetFor(req.AppType), loc.Latitude, loc.Longitude),
		}
	}

	records := e.loadRecords(ctx, []catalog.PricingModel{catalog.OnDemand, catalog.Spot})
	if len(records) == 0 {
		metrics.PairRequests.WithLabelValues("no_data").Inc()
		return &PairResult{
			ApproximateLocation: loc.Approximate,
			Reason:              ReasonNoPricingData,
			Message:             "no pricing data available from any provider",
		}
	}

	candidates := filterCandidates(records, regionLat, req.Hardware)
	if len(candidates) == 0 {
		metrics.PairRequests.WithLabelValues("no_match").Inc()
		return &PairResult{
			ApproximateLocation: loc.Approximate,
			Reason:              ReasonNoMatchingInstance,
			Message:             "no instance in reachable regions satisfies the hardware requirement",
		}
	}

	buckets := make(map[catalog.Provider]map[catalog.PricingModel][]candidate)
	for _, c := range candidates {
		p := c.record.Provider
		if buckets[p] == nil {
			buckets[p] = make(map[catalog.PricingModel][]candidate)
		}
		buckets[p][c.record.PricingModel] = append(buckets[p][c.record.PricingModel], c)
	}

	var pairs []ProviderPair
	for _, provider := range catalog.Providers {
		bucket, ok := buckets[provider]
		if !ok {
			continue
		}
		pairs = append(pairs, e.buildPairs(provider, bucket, req)...)
	}

	metrics.PairRequests.WithLabelValues("paired").Inc()
	return &PairResult{
		Pairs:               pairs,
		CandidatesCount:     len(candidates),
		ApproximateLocation: loc.Approximate,
	}
}

func validatePair(req *PairRequest) string {
	if msg := validateHardware(req.Hardware); msg != "" {
		return msg
	}
	if msg := validateCommon(req.AppType, req.UserIP, req.Latitude, req.Longitude, req.StorageGB); msg != "" {
		return msg
	}
	if req.AppType == "" {
		req.AppType = AppTypeApp
	}
	return ""
}

// buildPairs pairs the provider's full on-demand list against its full spot
// list: an identical-instance-id pass over both lists first, then a
// nearest-shape pass for the unmatched, then whatever is left on either side
// as single-sided pairs. Pair order follows the on-demand fit ranking.
func (e *Engine) buildPairs(provider catalog.Provider, bucket map[catalog.PricingModel][]candidate, req PairRequest) []ProviderPair {
	onDemand := bucket[catalog.OnDemand]
	spot := bucket[catalog.Spot]
	sortByFit(onDemand, req.Hardware)
	sortByFit(spot, req.Hardware)

	spotUsed := make([]bool, len(spot))
	spotFor := make([]*candidate, len(onDemand))

	for i := range onDemand {
		for j := range spot {
			if !spotUsed[j] && spot[j].record.InstanceID == onDemand[i].record.InstanceID {
				spotFor[i] = &spot[j]
				spotUsed[j] = true
				break
			}
		}
	}

	for i := range onDemand {
		if spotFor[i] != nil {
			continue
		}
		best := -1
		bestDist := math.MaxFloat64
		for j := range spot {
			if spotUsed[j] {
				continue
			}
			if d := shapeDistance(spot[j].record, onDemand[i].record); d < bestDist {
				best, bestDist = j, d
			}
		}
		if best >= 0 {
			spotFor[i] = &spot[best]
			spotUsed[best] = true
		}
	}

	pairs := make([]ProviderPair, 0, len(onDemand))
	for i := range onDemand {
		pairs = append(pairs, e.newPair(provider, &onDemand[i], spotFor[i], req))
	}
	for j := range spot {
		if !spotUsed[j] {
			pairs = append(pairs, e.newPair(provider, nil, &spot[j], req))
		}
	}
	return pairs
}

func (e *Engine) newPair(provider catalog.Provider, od, sp *candidate, req PairRequest) ProviderPair {
	pair := ProviderPair{Provider: provider}
	storage := e.storageCost(provider, req.StorageType, req.StorageGB)

	if od != nil {
		rec := od.record
		pair.OnDemand = &rec
		pair.OnDemandLatencyMs = od.latencyMs
		pair.OnDemandTotal = rec.PricePerHour + storage
	}
	if sp != nil {
		rec := sp.record
		pair.Spot = &rec
		pair.SpotLatencyMs = sp.latencyMs
		pair.SpotTotal = rec.PricePerHour + storage
	}
	if pair.OnDemand != nil && pair.Spot != nil && pair.OnDemandTotal > 0 {
		pair.SavingsPercent = (pair.OnDemandTotal - pair.SpotTotal) / pair.OnDemandTotal * 100
	}
	return pair
}

// sortByFit orders candidates by overprovisioning above the requirement,
// cheapest first among equals. The best fit is the instance that wastes the
// least hardware.
func sortByFit(cands []candidate, hw catalog.HardwareRequirement) {
	sort.SliceStable(cands, func(i, j int) bool {
		si, sj := fitScore(cands[i].record, hw), fitScore(cands[j].record, hw)
		if si != sj {
			return si < sj
		}
		return cands[i].record.PricePerHour < cands[j].record.PricePerHour
	})
}

func fitScore(rec catalog.PricingRecord, hw catalog.HardwareRequirement) float64 {
	return float64(rec.VCPU-hw.VCPUMin) + (rec.RAMGB - hw.RAMGBMin)
}

func shapeDistance(a, b catalog.PricingRecord) float64 {
	return math.Abs(float64(a.VCPU-b.VCPU)) + math.Abs(a.RAMGB-b.RAMGB)
}
