package allocator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/cloudalloc/cloudalloc/internal/cloud"
	"github.com/cloudalloc/cloudalloc/internal/config"
	"github.com/cloudalloc/cloudalloc/internal/geoip"
	"github.com/cloudalloc/cloudalloc/internal/latency"
	"github.com/cloudalloc/cloudalloc/internal/metrics"
	"github.com/cloudalloc/cloudalloc/internal/store"
	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

// Engine answers allocation and pairing requests against the cached
// multi-cloud catalog. It never fails a request because one provider is
// down: the cache serves stale data and providers without credentials are
// simply absent from sources.
type Engine struct {
	cache    *store.CatalogCache
	sources  map[catalog.Provider]cloud.PricingSource
	resolver geoip.Resolver
	regions  []catalog.RegionPoint
	cfg      *config.Config
}

func NewEngine(cache *store.CatalogCache, sources map[catalog.Provider]cloud.PricingSource, resolver geoip.Resolver, regions []catalog.RegionPoint, cfg *config.Config) *Engine {
	return &Engine{
		cache:    cache,
		sources:  sources,
		resolver: resolver,
		regions:  regions,
		cfg:      cfg,
	}
}

// Allocate finds the cheapest instance matching the hardware requirement
// among regions inside the caller's latency budget.
func (e *Engine) Allocate(ctx context.Context, req AllocationRequest) *AllocationResult {
	if msg := validateAllocation(&req); msg != "" {
		metrics.AllocationRequests.WithLabelValues("invalid_input").Inc()
		return &AllocationResult{Reason: ReasonInvalidInput, Message: msg}
	}

	loc := e.resolveLocation(ctx, req.UserIP, req.Latitude, req.Longitude)
	regionLat := e.reachableRegions(loc, req.AppType)
	if len(regionLat) == 0 {
		metrics.AllocationRequests.WithLabelValues("no_regions").Inc()
		return &AllocationResult{
			ApproximateLocation: loc.Approximate,
			Reason:              ReasonNoRegionsInBudget,
			Message:             fmt.Sprintf("no provider region within %.0fms of (%.2f, %.2f)", e.budgetFor(req.AppType), loc.Latitude, loc.Longitude),
		}
	}

	records := e.loadRecords(ctx, modelsFor(req.PricingModel))
	if len(records) == 0 {
		metrics.AllocationRequests.WithLabelValues("no_data").Inc()
		return &AllocationResult{
			ApproximateLocation: loc.Approximate,
			Reason:              ReasonNoPricingData,
			Message:             "no pricing data available from any provider",
		}
	}

	candidates := filterCandidates(records, regionLat, req.Hardware)
	if len(candidates) == 0 {
		metrics.AllocationRequests.WithLabelValues("no_match").Inc()
		return &AllocationResult{
			ApproximateLocation: loc.Approximate,
			Reason:              ReasonNoMatchingInstance,
			Message:             "no instance in reachable regions satisfies the hardware requirement",
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].record.PricePerHour < candidates[j].record.PricePerHour
	})

	winner := candidates[0]
	storageCost := e.storageCost(winner.record.Provider, req.StorageType, req.StorageGB)

	metrics.AllocationRequests.WithLabelValues("allocated").Inc()
	slog.Debug("allocated instance",
		"provider", winner.record.Provider,
		"instanceId", winner.record.InstanceID,
		"region", winner.record.Region,
		"pricePerHour", winner.record.PricePerHour,
		"candidates", len(candidates))

	rec := winner.record
	return &AllocationResult{
		Instance:            &rec,
		LatencyMs:           winner.latencyMs,
		StoragePricePerHour: storageCost,
		TotalPricePerHour:   rec.PricePerHour + storageCost,
		CandidatesCount:     len(candidates),
		ApproximateLocation: loc.Approximate,
	}
}

func validateAllocation(req *AllocationRequest) string {
	if msg := validateHardware(req.Hardware); msg != "" {
		return msg
	}
	switch req.PricingModel {
	case "", catalog.OnDemand, catalog.Spot, ModelAny:
	default:
		return fmt.Sprintf("unknown pricing model %q", req.PricingModel)
	}
	if req.PricingModel == "" {
		req.PricingModel = catalog.OnDemand
	}
	if msg := validateCommon(req.AppType, req.UserIP, req.Latitude, req.Longitude, req.StorageGB); msg != "" {
		return msg
	}
	if req.AppType == "" {
		req.AppType = AppTypeApp
	}
	return ""
}

func validateHardware(hw catalog.HardwareRequirement) string {
	if hw.VCPUMin < 0 || hw.RAMGBMin < 0 || hw.GPUCountMin < 0 || hw.VRAMGBMin < 0 {
		return "hardware minimums must not be negative"
	}
	return ""
}

func validateCommon(appType AppType, userIP string, lat, lng *float64, storageGB float64) string {
	switch appType {
	case "", AppTypeApp, AppTypeModel:
	default:
		return fmt.Sprintf("unknown app type %q", appType)
	}
	if (lat == nil) != (lng == nil) {
		return "latitude and longitude must be provided together"
	}
	if lat == nil && userIP == "" {
		return "either coordinates or a caller ip is required"
	}
	if lat != nil && (*lat < -90 || *lat > 90 || *lng < -180 || *lng > 180) {
		return "coordinates out of range"
	}
	if storageGB < 0 {
		return "storageGb must not be negative"
	}
	return ""
}

// resolveLocation prefers explicit coordinates; otherwise the IP is looked
// up, falling back to the configured default location for private or
// unresolvable addresses.
func (e *Engine) resolveLocation(ctx context.Context, ip string, lat, lng *float64) catalog.UserLocation {
	if lat != nil && lng != nil {
		return catalog.UserLocation{Latitude: *lat, Longitude: *lng}
	}
	return e.resolver.Resolve(ctx, ip)
}

func (e *Engine) budgetFor(appType AppType) float64 {
	if appType == AppTypeModel {
		return e.cfg.Latency.ModelBudgetMs
	}
	return e.cfg.Latency.AppBudgetMs
}

// reachableRegions maps region name to estimated latency for every region
// inside the budget, across all providers.
func (e *Engine) reachableRegions(loc catalog.UserLocation, appType AppType) map[string]float64 {
	within := latency.RegionsWithin(e.regions, loc, e.budgetFor(appType), "")
	out := make(map[string]float64, len(within))
	for _, rl := range within {
		out[rl.Region.RegionCode] = rl.LatencyMs
	}
	return out
}

func modelsFor(model catalog.PricingModel) []catalog.PricingModel {
	if model == ModelAny {
		return []catalog.PricingModel{catalog.OnDemand, catalog.Spot}
	}
	return []catalog.PricingModel{model}
}

// loadRecords pulls every (provider, model) catalog concurrently. The cache
// absorbs provider failures, so this only ever shrinks to fewer records.
func (e *Engine) loadRecords(ctx context.Context, models []catalog.PricingModel) []catalog.PricingRecord {
	type task struct {
		src   cloud.PricingSource
		model catalog.PricingModel
	}

	tasks := make([]task, 0, len(e.sources)*len(models))
	for _, src := range e.sources {
		for _, model := range models {
			tasks = append(tasks, task{src: src, model: model})
		}
	}

	results := make([][]catalog.PricingRecord, len(tasks))
	var wg sync.WaitGroup
	for i, tk := range tasks {
		wg.Add(1)
		go func(i int, tk task) {
			defer wg.Done()
			results[i] = e.cache.GetOrFetch(ctx, tk.src.Name(), tk.model, func(fctx context.Context) ([]catalog.PricingRecord, error) {
				return tk.src.FetchCatalog(fctx, tk.model)
			})
		}(i, tk)
	}
	wg.Wait()

	var all []catalog.PricingRecord
	for _, records := range results {
		all = append(all, records...)
	}
	return all
}

type candidate struct {
	record    catalog.PricingRecord
	latencyMs float64
}

func filterCandidates(records []catalog.PricingRecord, regionLat map[string]float64, hw catalog.HardwareRequirement) []candidate {
	var out []candidate
	for _, rec := range records {
		lat, reachable := regionLat[rec.Region]
		if !reachable {
			continue
		}
		if !rec.Matches(hw) {
			continue
		}
		out = append(out, candidate{record: rec, latencyMs: lat})
	}
	return out
}

// storageCost converts a monthly per-GB price into an hourly add-on.
func (e *Engine) storageCost(provider catalog.Provider, tier string, gb float64) float64 {
	if gb <= 0 {
		return 0
	}
	if tier == "" {
		tier = "balanced"
	}
	tiers, ok := e.cfg.Storage.PricePerGBMonth[string(provider)]
	if !ok {
		return 0
	}
	perGBMonth, ok := tiers[tier]
	if !ok {
		return 0
	}
	// 730 hours per month.
	return gb * perGBMonth / 730
}
