package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog fetch metrics
	CatalogFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cloudalloc",
		Name:      "catalog_fetch_total",
		Help:      "Catalog fetch attempts by provider, pricing model and outcome",
	}, []string{"provider", "model", "outcome"})

	CatalogFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cloudalloc",
		Name:      "catalog_fetch_duration_seconds",
		Help:      "Duration of upstream catalog fetches",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"provider", "model"})

	CatalogRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cloudalloc",
		Name:      "catalog_records",
		Help:      "Number of pricing records in the current cache entry",
	}, []string{"provider", "model"})

	CatalogRecordsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cloudalloc",
		Name:      "catalog_records_dropped_total",
		Help:      "Records dropped at ingestion for invalid price or shape",
	}, []string{"provider", "model"})

	// Cache metrics
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cloudalloc",
		Name:      "cache_hits_total",
		Help:      "Fresh cache hits by provider and pricing model",
	}, []string{"provider", "model"})

	CacheStaleServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cloudalloc",
		Name:      "cache_stale_served_total",
		Help:      "Stale cache entries served because a refresh failed",
	}, []string{"provider", "model"})

	// Assembly metrics
	AssemblySkus = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cloudalloc",
		Name:      "assembly_skus_total",
		Help:      "Component SKUs processed by the assembly engine, by category",
	}, []string{"category"})

	// Allocation metrics
	AllocationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cloudalloc",
		Name:      "allocation_requests_total",
		Help:      "Allocation requests by outcome (selected or failure reason)",
	}, []string{"outcome"})

	PairRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cloudalloc",
		Name:      "pair_requests_total",
		Help:      "Pairing requests by outcome",
	}, []string{"outcome"})
)
