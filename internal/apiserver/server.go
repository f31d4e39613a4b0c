package apiserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cloudalloc/cloudalloc/internal/allocator"
	"github.com/cloudalloc/cloudalloc/internal/cloud"
	"github.com/cloudalloc/cloudalloc/internal/config"
	"github.com/cloudalloc/cloudalloc/internal/store"
	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

// NewServer creates a new HTTP server for the REST API.
func NewServer(cfg *config.Config, engine *allocator.Engine, cache *store.CatalogCache, sources map[catalog.Provider]cloud.PricingSource) *http.Server {
	router := NewRouter(engine, cache, sources)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.APIServer.Address, cfg.APIServer.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
