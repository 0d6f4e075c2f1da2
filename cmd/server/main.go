package main

import (
	"context"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"lumenex/internal/api"
	"lumenex/internal/config"
	"lumenex/internal/intake"
	"lumenex/internal/logging"
	"lumenex/internal/metrics"
	"lumenex/internal/notify"
	"lumenex/internal/registry"
	"lumenex/internal/seed"
	"lumenex/internal/stream"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	n := notify.New()
	reg := registry.New(cfg.Symbols, cfg.TradeHistoryCapacity, n)
	reg.Start(ctx)
	defer reg.Close()

	m := metrics.New()
	svc := intake.New(reg, m, cfg.SnapshotDepthDefault, cfg.RecentTradesDefault)

	seed.Run(svc, 10_000, 10, rand.New(rand.NewSource(1)))

	restServer := api.NewServer(svc, m)
	hub := stream.New(n)
	defer hub.Close()

	root := mux.NewRouter()
	root.PathPrefix("/v1/stream").Handler(hub)
	root.PathPrefix("/").Handler(restServer)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      root,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Strs("symbols", cfg.Symbols).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
