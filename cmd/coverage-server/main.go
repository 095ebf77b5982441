package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/coverage-simulator/internal/api"
	"github.com/signalsfoundry/coverage-simulator/internal/config"
	"github.com/signalsfoundry/coverage-simulator/internal/logging"
	"github.com/signalsfoundry/coverage-simulator/internal/observability"
	"github.com/signalsfoundry/coverage-simulator/internal/store"
)

func main() {
	log := logging.NewFromEnv()
	ctx := context.Background()
	cfg := config.Load()

	collector, err := observability.NewCoverageCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Error(ctx, "failed to open run store", logging.String("path", cfg.DBPath), logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	router := api.SetupRouter(store.NewRunRepository(db), collector, log)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		log.Info(ctx, "starting coverage server", logging.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn(ctx, "graceful shutdown failed", logging.String("error", err.Error()))
	}
}
