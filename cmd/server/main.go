package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillbridge/internal/app"
	"skillbridge/internal/config"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[Server] .env not loaded err=%v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Server] config: %v", err)
	}
	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		log.Fatalf("[Server] listen address: %v", err)
	}

	api, cleanup, err := app.Bootstrap(cfg)
	if err != nil {
		log.Fatalf("[Server] bootstrap: %v", err)
	}
	logger := api.Container.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("[Server] listening addr=%s env=%s", addr, cfg.App.Environment)
		errCh <- api.Fiber.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Printf("[Server] listener stopped err=%v", err)
		}
	case <-ctx.Done():
		logger.Printf("[Server] shutting down open_sockets=%d", api.Hub.ClientCount())
		if err := api.Fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Printf("[Server] shutdown err=%v", err)
		}
	}

	if err := cleanup(); err != nil {
		logger.Printf("[Server] cleanup err=%v", err)
	}
}
