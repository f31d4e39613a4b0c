package gcp

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cloudalloc/cloudalloc/internal/metrics"
	"github.com/cloudalloc/cloudalloc/pkg/catalog"
	"github.com/cloudalloc/cloudalloc/pkg/gputaxonomy"
)

// GCP bills machine resources as separate SKUs: one SKU for the vCPU-hour of
// a series, one for the GiB-hour of its RAM, one per attached GPU model. The
// assembly engine reconstructs instance-shaped records from that stream by
// categorizing each SKU, grouping components by (region, model, series) and
// pairing CPU with RAM inside each group.

type skuCategory int

const (
	catGPU skuCategory = iota
	catPredefined
	catCPU
	catRAM
	catUnclassified
)

func (c skuCategory) String() string {
	switch c {
	case catGPU:
		return "gpu"
	case catPredefined:
		return "predefined"
	case catCPU:
		return "cpu"
	case catRAM:
		return "ram"
	default:
		return "unclassified"
	}
}

// categoryRules is scanned in order against the lowercased description;
// the first match wins. GPU must come first: GPU SKU descriptions also
// mention the instance series they attach to.
var categoryRules = []struct {
	substr   string
	category skuCategory
}{
	{"gpu", catGPU},
	{"micro instance", catPredefined},
	{"small instance", catPredefined},
	{"instance core", catCPU},
	{"core running", catCPU},
	{"instance ram", catRAM},
	{"ram running", catRAM},
}

func categorize(description string) skuCategory {
	desc := strings.ToLower(description)
	for _, rule := range categoryRules {
		if strings.Contains(desc, rule.substr) {
			return rule.category
		}
	}
	return catUnclassified
}

// Shared-core machine types billed as a single SKU rather than components.
var predefinedShapes = []struct {
	substr string
	name   string
	vcpu   int
	ramGB  float64
}{
	{"micro instance", "f1-micro", 1, 0.6},
	{"small instance", "g1-small", 1, 1.7},
}

// seriesPattern matches a machine series token at the start of a SKU
// description, e.g. "N2D AMD Instance Core running in Americas".
var seriesPattern = regexp.MustCompile(`^([A-Za-z][0-9][A-Za-z]*)\b`)

// resourceGroupSeries maps billing catalog resource groups to series where
// the description carries no usable token.
var resourceGroupSeries = map[string]string{
	"CPU":        "n1",
	"RAM":        "n1",
	"N1Standard": "n1",
	"F1Micro":    "f1",
	"G1Small":    "g1",
}

func extractSeries(sku catalog.RawComponentSku) string {
	if m := seriesPattern.FindStringSubmatch(sku.Description); m != nil {
		return strings.ToLower(m[1])
	}
	if s, ok := resourceGroupSeries[sku.ResourceGroup]; ok {
		return s
	}
	return ""
}

// vramByModel carries VRAM in GB for GPU models GCP offers; the billing
// catalog never states it.
var vramByModel = map[string]float64{
	"k80":       12,
	"p4":        8,
	"p100":      16,
	"v100":      16,
	"t4":        16,
	"l4":        24,
	"a100":      40,
	"a100-80gb": 80,
	"h100":      80,
}

type groupKey struct {
	region string
	model  catalog.PricingModel
	series string
}

// ambiguitySampler caps per-assembly audit logging so a malformed catalog
// page cannot flood the log. State is scoped to one Assemble call.
type ambiguitySampler struct {
	limit int
	seen  int
}

func (a *ambiguitySampler) note(reason string, sku catalog.RawComponentSku) {
	a.seen++
	if a.seen <= a.limit {
		slog.Warn("dropping unassemblable sku",
			"reason", reason,
			"skuId", sku.SkuID,
			"region", sku.Region,
			"description", sku.Description)
	}
}

func (a *ambiguitySampler) flush() {
	if a.seen > a.limit {
		slog.Warn("further unassemblable skus suppressed", "total", a.seen, "logged", a.limit)
	}
}

// Assemble reconstructs full instance records from a component SKU stream.
// Deterministic for a given input: groups are processed in sorted key order
// and components pair first-come within each group.
func Assemble(skus []catalog.RawComponentSku) []catalog.PricingRecord {
	sampler := &ambiguitySampler{limit: 10}
	defer sampler.flush()

	var records []catalog.PricingRecord
	groups := make(map[groupKey]*componentGroup)

	for _, sku := range skus {
		cat := categorize(sku.Description)
		metrics.AssemblySkus.WithLabelValues(cat.String()).Inc()

		switch cat {
		case catGPU:
			if rec, ok := assembleGPU(sku); ok {
				records = append(records, rec)
			} else {
				sampler.note("unrecognized gpu model", sku)
			}
		case catPredefined:
			if rec, ok := assemblePredefined(sku); ok {
				records = append(records, rec)
			} else {
				sampler.note("unknown predefined shape", sku)
			}
		case catCPU, catRAM:
			series := extractSeries(sku)
			if series == "" {
				sampler.note("no series in component sku", sku)
				continue
			}
			if strings.Contains(strings.ToLower(sku.Description), "custom") || series == "custom" {
				// Custom machine types have no fixed shape to reconstruct.
				continue
			}
			key := groupKey{region: sku.Region, model: sku.PricingModel, series: series}
			g := groups[key]
			if g == nil {
				g = &componentGroup{}
				groups[key] = g
			}
			if cat == catCPU {
				g.cpus = append(g.cpus, sku)
			} else {
				g.rams = append(g.rams, sku)
			}
		default:
			if sku.VCPU > 0 && sku.RAMGB > 0 {
				// Carries a full shape despite the odd description;
				// best effort, keep it.
				records = append(records, fullInstanceRecord(sku))
			} else {
				sampler.note("unclassified sku", sku)
			}
		}
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.region != b.region {
			return a.region < b.region
		}
		if a.model != b.model {
			return a.model < b.model
		}
		return a.series < b.series
	})

	for _, key := range keys {
		recs, orphans := groups[key].pair(key)
		records = append(records, recs...)
		for _, o := range orphans {
			sampler.note("component without counterpart", o)
		}
	}

	return dedupRecords(records)
}

type componentGroup struct {
	cpus []catalog.RawComponentSku
	rams []catalog.RawComponentSku
}

// pair joins the i-th CPU component with the i-th RAM component. Groups
// almost always hold exactly one of each; leftovers are returned for audit.
func (g *componentGroup) pair(key groupKey) ([]catalog.PricingRecord, []catalog.RawComponentSku) {
	n := len(g.cpus)
	if len(g.rams) < n {
		n = len(g.rams)
	}

	records := make([]catalog.PricingRecord, 0, n)
	for i := 0; i < n; i++ {
		cpu, ram := g.cpus[i], g.rams[i]

		vcpu := cpu.VCPU
		if vcpu <= 0 {
			vcpu = 1
		}
		ramGB := ram.RAMGB
		if ramGB <= 0 {
			ramGB = 1
		}

		records = append(records, catalog.PricingRecord{
			Provider:     catalog.ProviderGCP,
			Region:       key.region,
			PricingModel: key.model,
			InstanceID:   assembledInstanceID(key.series, vcpu, ramGB),
			VCPU:         vcpu,
			RAMGB:        ramGB,
			PricePerHour: round6(cpu.PricePerHour + ram.PricePerHour),
			Currency:     firstNonEmpty(cpu.Currency, ram.Currency, "USD"),
			Description:  fmt.Sprintf("%s assembled from component pricing", strings.ToUpper(key.series)),
		})
	}

	var orphans []catalog.RawComponentSku
	orphans = append(orphans, g.cpus[n:]...)
	orphans = append(orphans, g.rams[n:]...)
	return records, orphans
}

func assembledInstanceID(series string, vcpu int, ramGB float64) string {
	return fmt.Sprintf("%s-%dvcpu-%sgb", series, vcpu, strconv.FormatFloat(ramGB, 'f', -1, 64))
}

func assembleGPU(sku catalog.RawComponentSku) (catalog.PricingRecord, bool) {
	model := gputaxonomy.Canonical(sku.Description)
	vram, known := vramByModel[model]
	if !known {
		return catalog.PricingRecord{}, false
	}

	count := sku.GPUCount
	if count <= 0 {
		count = 1
	}

	return catalog.PricingRecord{
		Provider:     catalog.ProviderGCP,
		Region:       sku.Region,
		PricingModel: sku.PricingModel,
		InstanceID:   "accelerator-" + model,
		GPUType:      model,
		GPUCount:     count,
		VRAMGB:       vram * float64(count),
		PricePerHour: round6(sku.PricePerHour),
		Currency:     firstNonEmpty(sku.Currency, "USD"),
		Description:  sku.Description,
	}, true
}

func assemblePredefined(sku catalog.RawComponentSku) (catalog.PricingRecord, bool) {
	desc := strings.ToLower(sku.Description)
	for _, shape := range predefinedShapes {
		if strings.Contains(desc, shape.substr) {
			return catalog.PricingRecord{
				Provider:     catalog.ProviderGCP,
				Region:       sku.Region,
				PricingModel: sku.PricingModel,
				InstanceID:   shape.name,
				VCPU:         shape.vcpu,
				RAMGB:        shape.ramGB,
				PricePerHour: round6(sku.PricePerHour),
				Currency:     firstNonEmpty(sku.Currency, "USD"),
				Description:  sku.Description,
			}, true
		}
	}
	return catalog.PricingRecord{}, false
}

func fullInstanceRecord(sku catalog.RawComponentSku) catalog.PricingRecord {
	series := extractSeries(sku)
	id := assembledInstanceID(series, sku.VCPU, sku.RAMGB)
	if series == "" {
		id = "gcp-" + strings.ToLower(sku.SkuID)
	}
	return catalog.PricingRecord{
		Provider:     catalog.ProviderGCP,
		Region:       sku.Region,
		PricingModel: sku.PricingModel,
		InstanceID:   id,
		VCPU:         sku.VCPU,
		RAMGB:        sku.RAMGB,
		GPUCount:     sku.GPUCount,
		PricePerHour: round6(sku.PricePerHour),
		Currency:     firstNonEmpty(sku.Currency, "USD"),
		Description:  sku.Description,
	}
}

// dedupRecords keeps the first record per identity key. Duplicate SKUs for
// the same shape show up when a region appears in several service region
// lists.
func dedupRecords(records []catalog.PricingRecord) []catalog.PricingRecord {
	seen := make(map[string]struct{}, len(records))
	out := records[:0]
	for _, r := range records {
		key := fmt.Sprintf("%s|%s|%s|%d|%g|%s|%d",
			r.InstanceID, r.Region, r.PricingModel, r.VCPU, r.RAMGB, r.GPUType, r.GPUCount)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func round6(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(6).Float64()
	return f
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
