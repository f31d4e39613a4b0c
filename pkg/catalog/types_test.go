package catalog

import "testing"

func TestMatches(t *testing.T) {
	record := PricingRecord{
		Provider:     ProviderAWS,
		Region:       "us-east-1",
		PricingModel: OnDemand,
		InstanceID:   "g4dn.xlarge",
		VCPU:         4,
		RAMGB:        16,
		GPUType:      "T4",
		GPUCount:     1,
		VRAMGB:       16,
		PricePerHour: 0.526,
		Currency:     "USD",
	}

	tests := []struct {
		name string
		req  HardwareRequirement
		want bool
	}{
		{"cpu and ram within capacity", HardwareRequirement{VCPUMin: 4, RAMGBMin: 16}, true},
		{"cpu too small", HardwareRequirement{VCPUMin: 8, RAMGBMin: 16}, false},
		{"ram too small", HardwareRequirement{VCPUMin: 4, RAMGBMin: 32}, false},
		{"gpu type via taxonomy", HardwareRequirement{VCPUMin: 1, GPUType: "nvidia-tesla-t4"}, true},
		{"gpu type mismatch", HardwareRequirement{VCPUMin: 1, GPUType: "a100"}, false},
		{"gpu count satisfied", HardwareRequirement{GPUType: "t4", GPUCountMin: 1}, true},
		{"gpu count too small", HardwareRequirement{GPUType: "t4", GPUCountMin: 2}, false},
		{"vram satisfied", HardwareRequirement{GPUType: "t4", VRAMGBMin: 16}, true},
		{"vram too small", HardwareRequirement{GPUType: "t4", VRAMGBMin: 24}, false},
		{"zero requirement matches", HardwareRequirement{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := record.Matches(tt.req); got != tt.want {
				t.Errorf("Matches(%+v) = %v, want %v", tt.req, got, tt.want)
			}
		})
	}
}

func TestMatchesGPURequirementAgainstCPURecord(t *testing.T) {
	cpuOnly := PricingRecord{VCPU: 16, RAMGB: 64}
	if cpuOnly.Matches(HardwareRequirement{GPUType: "t4"}) {
		t.Error("record without GPU must not satisfy a GPU type requirement")
	}
}

func TestSanitizeRecords(t *testing.T) {
	records := []PricingRecord{
		{InstanceID: "ok", VCPU: 2, RAMGB: 8, PricePerHour: 0.1},
		{InstanceID: "free", VCPU: 2, RAMGB: 8, PricePerHour: 0},
		{InstanceID: "negative", VCPU: 2, RAMGB: 8, PricePerHour: -1},
		{InstanceID: "absurd", VCPU: 2, RAMGB: 8, PricePerHour: 9999},
		{InstanceID: "gpu-no-type", VCPU: 2, RAMGB: 8, GPUCount: 1, PricePerHour: 0.5},
	}

	out, removed := SanitizeRecords(records)
	if removed != 4 {
		t.Fatalf("removed = %d, want 4", removed)
	}
	if len(out) != 1 || out[0].InstanceID != "ok" {
		t.Fatalf("unexpected survivors: %+v", out)
	}
}

func TestExtractFamily(t *testing.T) {
	tests := []struct {
		name         string
		instanceType string
		want         string
	}{
		{"aws general purpose", "m5.xlarge", "m5"},
		{"aws gpu", "p4d.24xlarge", "p4d"},
		{"gcp standard", "n2-standard-4", "n2"},
		{"gcp medium", "e2-medium", "e2"},
		{"azure v3", "Standard_D4s_v3", "Standard_D_v3"},
		{"azure memory optimized", "Standard_E8as_v4", "Standard_E_v4"},
		{"unrecognized passthrough", "weird", "weird"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractFamily(tt.instanceType); got != tt.want {
				t.Errorf("ExtractFamily(%q) = %q, want %q", tt.instanceType, got, tt.want)
			}
		})
	}
}
