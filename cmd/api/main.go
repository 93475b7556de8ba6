package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bakereserve-storefront/internal/cache"
	"bakereserve-storefront/internal/config"
	"bakereserve-storefront/internal/db"
	"bakereserve-storefront/internal/httpserver"
	"bakereserve-storefront/internal/logging"
	"bakereserve-storefront/internal/metrics"
	"bakereserve-storefront/internal/migrate"
	paymentrepo "bakereserve-storefront/internal/repository/payment"
	selectionrepo "bakereserve-storefront/internal/repository/selection"
	sessionrepo "bakereserve-storefront/internal/repository/session"
	cartsvc "bakereserve-storefront/internal/service/cart"
	catalogsvc "bakereserve-storefront/internal/service/catalog"
	checkoutsvc "bakereserve-storefront/internal/service/checkout"
	ordersvc "bakereserve-storefront/internal/service/order"
	"bakereserve-storefront/internal/service/report"
	sessionsvc "bakereserve-storefront/internal/service/session"
	"bakereserve-storefront/internal/storeapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fallback := logging.New(logging.Options{Component: "api"})
		fallback.Fatal().Err(err).Msg("config.invalid")
	}
	logger := logging.New(logging.Options{Component: "api", Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("db.connect_failed")
	}
	defer dbpool.Close()

	version, err := migrate.Apply(ctx, dbpool)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate.failed")
	}
	logger.Info().Uint("version", version).Msg("migrate.applied")

	var (
		productCache *cache.Catalog
		cachePinger  httpserver.Pinger
	)
	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("cache.unavailable")
	} else {
		defer rdb.Close()
		productCache = cache.NewCatalog(rdb, cfg.CatalogCacheTTL)
		cachePinger = productCache
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	api := storeapi.New(cfg.UpstreamBaseURL, cfg.UpstreamTimeout, m, logger)

	sessions := sessionsvc.New(sessionrepo.NewPostgres(dbpool), api, cfg.SessionTTL, logger)
	catalog := catalogsvc.New(api, productCache, m, logger)
	carts := cartsvc.New(api, catalog, selectionrepo.NewPostgres(dbpool), logger)
	checkout := checkoutsvc.New(api, carts, paymentrepo.NewPostgres(dbpool), m, cfg.PaymentReturnURL, logger)
	orders := ordersvc.New(api, m, logger)
	reports := report.New(orders, catalog)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Sessions:     sessions,
		Catalog:      catalog,
		Cart:         carts,
		Checkout:     checkout,
		Orders:       orders,
		Reports:      reports,
		DB:           dbpool,
		Cache:        cachePinger,
		Gatherer:     registry,
		CORSOrigins:  cfg.CORSOrigins,
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("server.init_failed")
	}

	go purgeSessions(ctx, sessions, cfg.SessionPurge, logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info().Str("signal", sig.String()).Msg("server.shutting_down")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server.failed")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server.shutdown_failed")
	} else {
		logger.Info().Msg("server.stopped")
	}
}

// purgeSessions drops expired sessions until ctx ends.
func purgeSessions(ctx context.Context, sessions *sessionsvc.Service, every time.Duration, logger zerolog.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("session.purge_failed")
				continue
			}
			if n > 0 {
				logger.Info().Int64("removed", n).Msg("session.purged")
			}
		}
	}
}
