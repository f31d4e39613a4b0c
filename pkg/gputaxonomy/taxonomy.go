// Package gputaxonomy normalizes provider-specific GPU family and SKU tokens
// to canonical model ids so offerings can be compared across clouds. Rules
// are an explicit, ordered table with a documented fallback: exact
// provider-token map first, then substring match against canonical model
// tokens, then best-effort normalization of the residual string.
package gputaxonomy

import "strings"

// providerTokens maps exact provider accelerator codes and marketing names
// (folded with fold below) to canonical model ids. GCP uses accelerator
// resource names, Azure uses SKU family tokens, AWS uses bare marketing
// names from EC2 GpuInfo.
var providerTokens = map[string]string{
	// GCP accelerator resource names
	"nvidiateslat4":      "t4",
	"nvidiateslav100":    "v100",
	"nvidiateslap100":    "p100",
	"nvidiateslap4":      "p4",
	"nvidiateslak80":     "k80",
	"nvidiateslaa100":    "a100",
	"nvidiaa10080gb":     "a100-80gb",
	"nvidial4":           "l4",
	"nvidiah10080gb":     "h100",
	"nvidiah100mega80gb": "h100",
	// Azure SKU family tokens
	"a100v4": "a100",
	"h100v5": "h100",
	"v100v3": "v100",
	"t4v3":   "t4",
	"a10v5":  "a10",
	// AWS EC2 GpuInfo names
	"a10g": "a10",
}

// canonicalEntry pairs a folded search token with the canonical id it maps
// to. Entries are scanned in order; longer, more specific tokens come before
// their prefixes so "a100-80gb" wins over "a100".
type canonicalEntry struct {
	token string // folded form searched as a substring
	id    string
}

var canonicalTokens = []canonicalEntry{
	{"a10080gb", "a100-80gb"},
	{"h100", "h100"},
	{"h200", "h200"},
	{"a100", "a100"},
	{"l40s", "l40s"},
	{"v100", "v100"},
	{"p100", "p100"},
	{"a10", "a10"},
	{"l4", "l4"},
	{"t4", "t4"},
	{"p4", "p4"},
	{"k80", "k80"},
	{"m60", "m60"},
}

// vendorWords are brand tokens stripped by the final fallback.
var vendorWords = []string{"nvidia", "tesla", "amd", "radeon"}

// Canonical maps a raw GPU token to its canonical model id. It is total:
// any input, including empty, yields a deterministic id without error.
func Canonical(raw string) string {
	folded := fold(raw)
	if folded == "" {
		return ""
	}

	if id, ok := providerTokens[folded]; ok {
		return id
	}

	for _, e := range canonicalTokens {
		if strings.Contains(folded, e.token) {
			return e.id
		}
	}

	// Best effort: strip vendor brand words and return the residue.
	for _, w := range vendorWords {
		folded = strings.ReplaceAll(folded, w, "")
	}
	return folded
}

// Match reports whether two raw GPU tokens refer to the same canonical
// model. Symmetric and total; runs on every candidate in the hot filtering
// path.
func Match(a, b string) bool {
	return Canonical(a) == Canonical(b)
}

// fold lowercases and strips whitespace, hyphens and underscores, keeping
// vendor words so exact provider tokens can be matched first.
func fold(s string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(s) {
		switch c {
		case ' ', '\t', '-', '_':
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
