package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"restoledger/internal/config"
	httpx "restoledger/internal/http"
	"restoledger/internal/http/handlers"
	"restoledger/internal/services/payouts"
	"restoledger/internal/store/postgres"
	redisstore "restoledger/internal/store/redis"
)

func main() {
	cfg := config.Load()
	if cfg.App.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := postgres.MustOpen(ctx, cfg.DB.DSN)
	defer pool.Close()

	if err := postgres.RunMigrations(cfg.DB.DSN, cfg.DB.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	store := postgres.NewStore(pool)

	// Redis is an optional idempotency fast path; the unique index on
	// event_id is the real guard.
	var cache handlers.EventCache
	if cfg.Redis.Addr != "" {
		ec := redisstore.NewEventCache(cfg.Redis.Addr, "restoledger")
		if err := ec.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, event cache disabled")
		} else {
			cache = ec
			defer ec.Close()
			log.Info().Str("addr", cfg.Redis.Addr).Msg("event cache enabled")
		}
	}

	runner := payouts.NewRunner(store, cfg.Payout.QueueSize)
	go runner.Run(ctx)

	r := httpx.NewRouter(httpx.RouterDependencies{
		Config:     cfg,
		Store:      store,
		EventCache: cache,
		Runner:     runner,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Msgf("settlement ledger API listening on :%s", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info().Msg("server stopped")
}
