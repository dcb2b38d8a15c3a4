package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spending-backend/internal/config"
	"spending-backend/internal/interfaces/router"
	"spending-backend/internal/pkg/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	logger.Setup(cfg.LogLevel, cfg.Env != "production")

	app, stores, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	// Fail fast when a configured store is unreachable.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if stores.DB != nil {
		sqlDB, err := stores.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Postgres connection failed")
		}
		log.Info().Msg("Postgres connected")
	}
	if stores.Redis != nil {
		if err := stores.Redis.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		log.Info().Msg("Redis connected")
	}
	if stores.Search != nil {
		if err := stores.Search.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Elasticsearch unreachable, index routed requests will fail")
		} else {
			log.Info().Msg("Elasticsearch connected")
		}
	}
	cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Msgf("Server running at http://localhost:%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}
