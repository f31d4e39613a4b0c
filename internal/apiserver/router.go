package apiserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cloudalloc/cloudalloc/internal/allocator"
	"github.com/cloudalloc/cloudalloc/internal/apiserver/handler"
	"github.com/cloudalloc/cloudalloc/internal/cloud"
	"github.com/cloudalloc/cloudalloc/internal/store"
	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

// NewRouter creates the API router with all endpoints.
func NewRouter(engine *allocator.Engine, cache *store.CatalogCache, sources map[catalog.Provider]cloud.PricingSource) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	allocationHandler := handler.NewAllocationHandler(engine)
	refreshHandler := handler.NewRefreshHandler(cache, sources)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/allocations", allocationHandler.Allocate)
		r.Post("/pairs", allocationHandler.Pair)
		r.Post("/catalog/refresh", refreshHandler.Refresh)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
