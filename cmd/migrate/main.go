package main

import (
	"context"

	"bakereserve-storefront/internal/config"
	"bakereserve-storefront/internal/db"
	"bakereserve-storefront/internal/logging"
	"bakereserve-storefront/internal/migrate"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fallback := logging.New(logging.Options{Component: "migrate"})
		fallback.Fatal().Err(err).Msg("config.invalid")
	}
	logger := logging.New(logging.Options{Component: "migrate", Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("db.connect_failed")
	}
	defer pool.Close()

	version, err := migrate.Apply(ctx, pool)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate.failed")
	}

	logger.Info().Uint("version", version).Msg("migrations applied")
}
