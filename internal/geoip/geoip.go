// Package geoip resolves caller IP addresses to an approximate geographic
// location. Resolution is best effort: private, malformed or unresolvable
// addresses yield the configured default location with Approximate set, so
// the latency filter always has coordinates to work with and callers can see
// when those coordinates are a guess.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

// Resolver turns an IP address into a UserLocation. Implementations never
// return an error for unresolvable input; they fall back to a default.
type Resolver interface {
	Resolve(ctx context.Context, ip string) catalog.UserLocation
}

const defaultLookupURL = "http://ip-api.com/json"

// HTTPResolver resolves public IPs through an ip-api style JSON endpoint.
type HTTPResolver struct {
	baseURL  string
	client   *http.Client
	fallback catalog.UserLocation
}

// NewHTTPResolver creates a resolver with the given fallback location.
// An empty baseURL uses the public ip-api endpoint.
func NewHTTPResolver(baseURL string, timeout time.Duration, fallback catalog.UserLocation) *HTTPResolver {
	if baseURL == "" {
		baseURL = defaultLookupURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	fallback.Approximate = true
	return &HTTPResolver{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: timeout},
		fallback: fallback,
	}
}

type lookupResponse struct {
	Status  string  `json:"status"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	City    string  `json:"city"`
}

// Resolve looks the IP up, returning the fallback location for private,
// malformed or failed lookups.
func (r *HTTPResolver) Resolve(ctx context.Context, ip string) catalog.UserLocation {
	if !Routable(ip) {
		return r.fallback
	}

	url := fmt.Sprintf("%s/%s", r.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return r.fallback
	}

	resp, err := r.client.Do(req)
	if err != nil {
		slog.Warn("geoip: lookup failed, using default location", "ip", ip, "error", err)
		return r.fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("geoip: lookup returned non-200, using default location",
			"ip", ip, "status", resp.StatusCode)
		return r.fallback
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Status != "success" {
		slog.Warn("geoip: unusable lookup response, using default location", "ip", ip)
		return r.fallback
	}

	return catalog.UserLocation{
		Latitude:  body.Lat,
		Longitude: body.Lon,
		Country:   body.Country,
		City:      body.City,
	}
}

// StaticResolver always returns its configured location with Approximate
// set. Used when no lookup endpoint is configured, and in tests.
type StaticResolver struct {
	Location catalog.UserLocation
}

func (s StaticResolver) Resolve(ctx context.Context, ip string) catalog.UserLocation {
	loc := s.Location
	loc.Approximate = true
	return loc
}

// Routable reports whether the string is a public, lookupable IP address.
func Routable(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() ||
		parsed.IsLinkLocalUnicast() || parsed.IsLinkLocalMulticast() {
		return false
	}
	return true
}
