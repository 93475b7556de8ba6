package main

import (
	"context"
	"flag"
	"os"
	"time"

	"bakereserve-storefront/internal/cache"
	"bakereserve-storefront/internal/config"
	"bakereserve-storefront/internal/importer"
	"bakereserve-storefront/internal/logging"
	"bakereserve-storefront/internal/metrics"
	catalogsvc "bakereserve-storefront/internal/service/catalog"
	"bakereserve-storefront/internal/storeapi"
)

func main() {
	var (
		filePath string
		token    string
	)
	flag.StringVar(&filePath, "file", "", "Path to product CSV")
	flag.StringVar(&token, "token", os.Getenv("BAKERESERVE_ADMIN_TOKEN"), "Admin API token (defaults to $BAKERESERVE_ADMIN_TOKEN)")
	flag.Parse()

	if filePath == "" || token == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fallback := logging.New(logging.Options{Component: "importer"})
		fallback.Fatal().Err(err).Msg("config.invalid")
	}
	logger := logging.New(logging.Options{Component: "importer", Level: cfg.LogLevel, Format: cfg.LogFormat})

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal().Err(err).Str("file", filePath).Msg("import.open_failed")
	}
	defer f.Close()

	ctx := context.Background()

	var invalidator importer.CacheInvalidator
	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("cache.unavailable")
	} else {
		defer rdb.Close()
		invalidator = cache.NewCatalog(rdb, cfg.CatalogCacheTTL)
	}

	// The catalog skips per-row invalidation; the importer drops the cache once.
	var (
		noCache   *cache.Catalog
		noMetrics *metrics.Metrics
	)
	api := storeapi.New(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, nil, logger)
	catalog := catalogsvc.New(api, noCache, noMetrics, logger)
	imp := importer.NewCSVImporter(f, catalog, invalidator, token, logger)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Int("imported", count).Msg("import.failed")
	}

	logger.Info().
		Int("imported", count).
		Dur("took", time.Since(start).Truncate(time.Millisecond)).
		Msg("import.complete")
}
