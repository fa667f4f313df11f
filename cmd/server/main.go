package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"guessingGame/internal/config"
	"guessingGame/internal/db"
	grpcserver "guessingGame/internal/grpc"
	"guessingGame/internal/httpserver"
	"guessingGame/internal/logging"
	"guessingGame/repository"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("load .env: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Dir, os.Stderr, time.Now())
	if err != nil {
		log.Fatalf("init logging: %v", err)
	}
	defer func() { _ = logger.Close() }()
	logger.Info("configuration loaded", "config", cfg.String(), "log_file", logger.Path())

	// Open DB
	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("open db", "path", cfg.Database.Path, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.Error("close db", "error", err)
		}
	}()

	users := repository.NewUserRepository(d, repository.WithLogger(logger.Logger))
	guesses := repository.NewGuessRepository(d, repository.WithLogger(logger.Logger))

	// Start HTTP
	handler := httpserver.NewHandler(cfg.Static, users, guesses, logger.Logger)
	stopHTTP, err := httpserver.Start(cfg.HTTP.Address, handler, logger.Logger)
	if err != nil {
		logger.Error("start http", "address", cfg.HTTP.Address, "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server listening", "address", cfg.HTTP.Address, "static", cfg.Static.Dir)

	// Start gRPC health
	stopHealth := func(context.Context) error { return nil }
	if cfg.Health.Address != "" {
		monitor := grpcserver.NewHealthMonitor(d, cfg.Health.Interval, logger.Logger)
		stopHealth, err = grpcserver.StartHealth(cfg.Health.Address, monitor)
		if err != nil {
			logger.Error("start health", "address", cfg.Health.Address, "error", err)
			_ = stopHTTP(context.Background())
			os.Exit(1)
		}
		logger.Info("gRPC health listening", "address", cfg.Health.Address)
	}

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	logger.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := stopHTTP(ctx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := stopHealth(ctx); err != nil {
		logger.Error("health shutdown", "error", err)
	}
}
