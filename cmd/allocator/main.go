package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cloudalloc/cloudalloc/internal/allocator"
	"github.com/cloudalloc/cloudalloc/internal/apiserver"
	"github.com/cloudalloc/cloudalloc/internal/cloud"
	"github.com/cloudalloc/cloudalloc/internal/config"
	"github.com/cloudalloc/cloudalloc/internal/geoip"
	"github.com/cloudalloc/cloudalloc/internal/latency"
	"github.com/cloudalloc/cloudalloc/internal/store"
	"github.com/cloudalloc/cloudalloc/pkg/catalog"
)

func main() {
	var configFile string
	var debug bool
	flag.StringVar(&configFile, "config", "", "Path to config file (empty: built-in defaults)")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(configFile)
	if err != nil {
		slog.Error("failed to load config", "path", configFile, "error", err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("starting cloudalloc",
		"address", cfg.APIServer.Address,
		"port", cfg.APIServer.Port,
		"refreshSchedule", cfg.RefreshSchedule)

	// Open SQLite for the persisted catalog cache. Failure is not fatal:
	// the cache degrades to in-memory only.
	var sqlDB *sql.DB
	var appDB *store.DB
	if cfg.Database.Path != "" {
		appDB, err = store.Open(store.Config{Path: cfg.Database.Path})
		if err != nil {
			slog.Warn("database open failed, continuing in-memory", "path", cfg.Database.Path, "error", err)
		} else {
			sqlDB = appDB.RawDB()
			slog.Info("database opened", "path", cfg.Database.Path)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache := store.NewCatalogCache(sqlDB, cfg.Cache.TTL, cfg.Cache.FetchTimeout)
	sources := cloud.NewSources(ctx, cfg)
	if len(sources) == 0 {
		slog.Error("no pricing source available, check provider configuration")
		os.Exit(1)
	}

	resolver := geoip.NewHTTPResolver(cfg.Geo.LookupURL, cfg.Geo.LookupTimeout, catalog.UserLocation{
		Latitude:  cfg.Geo.DefaultLocation.Latitude,
		Longitude: cfg.Geo.DefaultLocation.Longitude,
		Country:   cfg.Geo.DefaultLocation.Country,
		City:      cfg.Geo.DefaultLocation.City,
	})

	engine := allocator.NewEngine(cache, sources, resolver, latency.DefaultRegions, cfg)

	// Proactive catalog refresh keeps entries warm so requests rarely pay
	// the upstream fetch latency.
	var scheduler *cron.Cron
	if cfg.RefreshSchedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.RefreshSchedule, func() {
			refreshAll(ctx, cache, sources)
		})
		if err != nil {
			slog.Error("invalid refresh schedule", "schedule", cfg.RefreshSchedule, "error", err)
			os.Exit(1)
		}
		scheduler.Start()
	}

	srv := apiserver.NewServer(cfg, engine, cache, sources)
	go func() {
		slog.Info("api server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("api server error", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("api server shutdown", "error", err)
	}

	cancel()
	if appDB != nil {
		appDB.Close()
	}
}

// refreshAll forces a re-fetch of every enabled provider and model.
func refreshAll(ctx context.Context, cache *store.CatalogCache, sources map[catalog.Provider]cloud.PricingSource) {
	for provider, src := range sources {
		for _, model := range catalog.Models {
			count, err := cache.Refresh(ctx, provider, model, func(fctx context.Context) ([]catalog.PricingRecord, error) {
				return src.FetchCatalog(fctx, model)
			})
			if err != nil {
				slog.Warn("scheduled catalog refresh failed",
					"provider", provider, "model", model, "error", err)
				continue
			}
			slog.Info("catalog refreshed", "provider", provider, "model", model, "records", count)
		}
	}
}
