package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillbridge/internal/app"
	"skillbridge/internal/config"
	"skillbridge/internal/infrastructure/telemetry"
	"skillbridge/internal/worker"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	c, err := app.NewContainer(cfg)
	if err != nil {
		log.Fatalf("failed to init container: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	shutdownTracing, err := telemetry.SetupTracing(context.Background(), cfg.App.AppName+"-worker", cfg.Tracing, logger)
	if err != nil {
		log.Fatalf("failed to setup tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	logger.Printf("[Worker] starting concurrency=%d queue=%s redis=%s", cfg.Queue.Concurrency, cfg.Queue.Name, cfg.Queue.RedisAddr)

	srv := worker.NewServer(logger, cfg.Queue, c.Maintenance(), c.Metrics)
	if err := srv.Schedule(cfg.Queue.Name); err != nil {
		log.Fatalf("failed to register schedules: %v", err)
	}
	if err := srv.Start(); err != nil {
		log.Fatalf("worker failed: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", srv.MetricsHandler())
	metricsSrv := &http.Server{
		Addr:              ":" + cfg.Queue.MetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("[Worker] metrics server error err=%v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Printf("[Worker] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(ctx)
	srv.Shutdown()
}
