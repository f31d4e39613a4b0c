package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cloudalloc/cloudalloc/internal/cloud"
	"github.com/cloudalloc/cloudalloc/internal/store"
	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

type RefreshHandler struct {
	cache   *store.CatalogCache
	sources map[catalog.Provider]cloud.PricingSource
}

func NewRefreshHandler(cache *store.CatalogCache, sources map[catalog.Provider]cloud.PricingSource) *RefreshHandler {
	return &RefreshHandler{cache: cache, sources: sources}
}

type refreshEntry struct {
	Provider catalog.Provider     `json:"provider"`
	Model    catalog.PricingModel `json:"pricingModel"`
	Records  int                  `json:"records"`
	OK       bool                 `json:"ok"`
	Error    string               `json:"error,omitempty"`
}

type refreshReport struct {
	ReportID   string         `json:"reportId"`
	StartedAt  time.Time      `json:"startedAt"`
	DurationMs int64          `json:"durationMs"`
	Results    []refreshEntry `json:"results"`
}

// Refresh handles POST /api/v1/catalog/refresh: a forced re-fetch of every
// enabled provider and model, reporting per-catalog outcomes. One failing
// provider does not abort the rest.
func (h *RefreshHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	report := h.run(r.Context())
	writeJSON(w, http.StatusOK, report)
}

func (h *RefreshHandler) run(ctx context.Context) refreshReport {
	report := refreshReport{
		ReportID:  uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	for _, provider := range catalog.Providers {
		src, ok := h.sources[provider]
		if !ok {
			continue
		}
		for _, model := range catalog.Models {
			count, err := h.cache.Refresh(ctx, provider, model, func(fctx context.Context) ([]catalog.PricingRecord, error) {
				return src.FetchCatalog(fctx, model)
			})
			entry := refreshEntry{Provider: provider, Model: model, Records: count, OK: err == nil}
			if err != nil {
				entry.Error = err.Error()
			}
			report.Results = append(report.Results, entry)
		}
	}

	report.DurationMs = time.Since(report.StartedAt).Milliseconds()
	return report
}
