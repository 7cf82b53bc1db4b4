package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dvloznov/finance-dashboard/internal/api"
	"github.com/dvloznov/finance-dashboard/internal/config"
	"github.com/dvloznov/finance-dashboard/internal/dashboard"
	"github.com/dvloznov/finance-dashboard/internal/jobs/inmemory"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/metrics"
	"github.com/dvloznov/finance-dashboard/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log, err := logger.NewWithConfig(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	if err != nil {
		log = logger.New()
		log.Warn().Err(err).Msg("Invalid logging configuration, using defaults")
	}

	genCfg, err := cfg.Generation()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid generator configuration")
	}

	ctx := logger.WithContext(context.Background(), log)

	st, err := store.Open(ctx, cfg.Data.Location, cfg.ClientOptions()...)
	if err != nil {
		log.Fatal().Err(err).Str("location", cfg.Data.Location).Msg("Failed to open data store")
	}
	defer st.Close()

	m := metrics.New()
	svc := dashboard.NewService(st, log, m)

	// A missing dataset is not fatal: it can be generated through the jobs API.
	if _, err := svc.Load(ctx); err != nil {
		if !errors.Is(err, store.ErrDataNotFound) {
			log.Fatal().Err(err).Str("location", st.Location()).Msg("Failed to load dataset")
		}
		log.Warn().Str("location", st.Location()).Msg(store.UserMessage(err))
	}

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(inmemory.Options{BufferSize: cfg.Server.JobQueueSize}, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	log.Info().Msg("Starting job worker")
	if err := jobQueue.Start(workerCtx, svc.JobHandler(genCfg)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job worker")
	}

	handler := api.NewRouter(api.Deps{
		Service:   svc,
		JobStore:  jobStore,
		Publisher: jobQueue,
		Defaults:  genCfg,
		Metrics:   m,
		RateLimit: cfg.Server.RateLimit,
		Log:       log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("data", st.Location()).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Let in-flight generations finish before the worker context goes away.
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
