// Package latency estimates network round-trip time from great-circle
// distance and ranks provider regions against a user location. Everything
// here is pure computation: no I/O, fully deterministic.
package latency

import (
	"math"
	"sort"

	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

const (
	earthRadiusKM = 6371.0
	baseLatencyMs = 5.0
)

// Haversine returns the great-circle distance in kilometers between two
// (latitude, longitude) points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

// EstimateLatency converts a distance in kilometers to an estimated
// round-trip latency in milliseconds. Monotonically non-decreasing in
// distance.
func EstimateLatency(distanceKM float64) float64 {
	return baseLatencyMs + distanceKM*0.5 + math.Sqrt(distanceKM)*0.2
}

// RegionLatency is one region ranked against a user location.
type RegionLatency struct {
	Region     catalog.RegionPoint
	DistanceKM float64
	LatencyMs  float64
}

// RegionsWithin computes the estimated latency from loc to every region in
// points, filters to those at or under maxLatencyMs, and returns them sorted
// by ascending latency. An empty provider matches all providers.
func RegionsWithin(points []catalog.RegionPoint, loc catalog.UserLocation, maxLatencyMs float64, provider catalog.Provider) []RegionLatency {
	var out []RegionLatency
	for _, p := range points {
		if provider != "" && p.Provider != provider {
			continue
		}
		d := Haversine(loc.Latitude, loc.Longitude, p.Latitude, p.Longitude)
		ms := EstimateLatency(d)
		if ms > maxLatencyMs {
			continue
		}
		out = append(out, RegionLatency{Region: p, DistanceKM: d, LatencyMs: ms})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].LatencyMs < out[j].LatencyMs })
	return out
}
