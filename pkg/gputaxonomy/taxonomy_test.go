package gputaxonomy

import "testing"

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"gcp t4 accelerator", "nvidia-tesla-t4", "t4"},
		{"gcp a100 accelerator", "nvidia-tesla-a100", "a100"},
		{"gcp a100 80gb accelerator", "nvidia-a100-80gb", "a100-80gb"},
		{"gcp l4 accelerator", "nvidia-l4", "l4"},
		{"aws marketing name", "T4", "t4"},
		{"aws a10g maps to a10", "A10G", "a10"},
		{"aws h100", "H100", "h100"},
		{"aws l40s", "L40S", "l40s"},
		{"azure family token", "A100 v4", "a100"},
		{"azure v100", "V100 v3", "v100"},
		{"spaced marketing name", "Tesla V100", "v100"},
		{"bare canonical id", "a100-80gb", "a100-80gb"},
		{"unknown residual", "Radeon Pro V520", "prov520"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonical(tt.raw); got != tt.want {
				t.Errorf("Canonical(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestMatchSymmetricAndReflexive(t *testing.T) {
	tokens := []string{
		"nvidia-tesla-t4", "T4", "t4v3",
		"nvidia-tesla-a100", "A100 v4",
		"A10G", "a10v5",
		"nvidia-l4", "L4",
		"totally-unknown-gpu",
	}

	for _, tok := range tokens {
		if !Match(tok, tok) {
			t.Errorf("Match(%q, %q) = false, want true", tok, tok)
		}
	}

	for _, a := range tokens {
		for _, b := range tokens {
			if Match(a, b) != Match(b, a) {
				t.Errorf("Match(%q, %q) != Match(%q, %q)", a, b, b, a)
			}
		}
	}
}

func TestMatchAcrossProviders(t *testing.T) {
	pairs := []struct{ a, b string }{
		{"nvidia-tesla-t4", "T4"},
		{"nvidia-tesla-t4", "t4v3"},
		{"nvidia-tesla-a100", "A100 v4"},
		{"A10G", "a10v5"},
		{"nvidia-l4", "L4"},
	}
	for _, p := range pairs {
		if !Match(p.a, p.b) {
			t.Errorf("Match(%q, %q) = false, want true", p.a, p.b)
		}
	}

	if Match("nvidia-tesla-t4", "nvidia-tesla-a100") {
		t.Error("t4 should not match a100")
	}
	if Match("nvidia-tesla-a100", "nvidia-a100-80gb") {
		t.Error("a100 40GB and 80GB classes should stay distinct")
	}
}
