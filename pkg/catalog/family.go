package catalog

import "strings"

// ExtractFamily extracts the machine family from a provider instance type
// string. It understands all three providers' naming schemes:
//
//   - "m5.xlarge" (AWS)        → "m5"
//   - "p4d.24xlarge" (AWS)     → "p4d"
//   - "n2-standard-4" (GCP)    → "n2"
//   - "e2-medium" (GCP)        → "e2"
//   - "Standard_D4s_v3" (Azure) → "Standard_D_v3"
//
// Unrecognized formats return the input unchanged so lookups degrade to a
// per-instance key instead of failing.
func ExtractFamily(instanceType string) string {
	if instanceType == "" {
		return ""
	}

	// AWS: family.size
	if parts := strings.SplitN(instanceType, ".", 2); len(parts) == 2 {
		return parts[0]
	}

	// Azure: Standard_<size>_<version>
	if strings.HasPrefix(instanceType, "Standard_") {
		return extractAzureFamily(instanceType)
	}

	// GCP: family-class-size
	if parts := strings.Split(instanceType, "-"); len(parts) >= 2 {
		return parts[0]
	}

	return instanceType
}

// extractAzureFamily reduces an Azure VM size to its family class:
// Standard_D4s_v3 → Standard_D_v3, Standard_E8as_v4 → Standard_E_v4.
func extractAzureFamily(vmSize string) string {
	parts := strings.Split(vmSize, "_")
	if len(parts) < 2 {
		return vmSize
	}

	sizePart := parts[1]
	family := ""
	for _, c := range sizePart {
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' {
			if family == "" || (c >= 'A' && c <= 'Z') {
				family += string(c)
			} else {
				break
			}
		} else {
			break
		}
	}

	result := parts[0] + "_" + family
	for i := 2; i < len(parts); i++ {
		if strings.HasPrefix(parts[i], "v") {
			result += "_" + parts[i]
		}
	}
	return result
}
