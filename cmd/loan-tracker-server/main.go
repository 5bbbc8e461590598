package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/loan-tracker/internal/logging"
	"github.com/iwvelando/loan-tracker/internal/scheduler"
	"github.com/iwvelando/loan-tracker/internal/server"
	"github.com/iwvelando/loan-tracker/internal/storage"
	"github.com/iwvelando/loan-tracker/pkg/constants"
	"github.com/iwvelando/loan-tracker/pkg/datetime"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before the configuration")
	flag.Parse()

	// A missing .env file is not an error.
	_ = godotenv.Load(*envFile)

	if env := os.Getenv("LOAN_TRACKER_SERVER_CONFIG"); env != "" && !isFlagSet("config") {
		*configLocation = env
	}

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Address = *address
	}
	if dsn := os.Getenv("LOAN_TRACKER_POSTGRES_DSN"); dsn != "" && cfg.Storage.DSN == "" {
		cfg.Storage.DSN = dsn
	}
	if password := os.Getenv("LOAN_TRACKER_REDIS_PASSWORD"); password != "" && cfg.Storage.Password == "" {
		cfg.Storage.Password = password
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to open store",
			zap.String("op", "main"),
			zap.String("backend", cfg.Storage.Backend),
			zap.Error(err),
		)
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close store", zap.String("op", "main"), zap.Error(err))
		}
	}
	defer closeStore()

	codec, err := storage.CodecFor(cfg.Storage.Codec)
	if err != nil {
		closeStore()
		logger.Fatal(err.Error(), zap.String("op", "main"))
	}
	repo := storage.NewPortfolioRepository(store, codec, logger)
	clock := datetime.SystemClock{}

	jobs := scheduler.New(logger)
	reminders := scheduler.NewReminderJob(repo, clock, cfg.Reminders.LookaheadDays, logger)
	if err := jobs.AddJob(cfg.Reminders.Schedule, reminders); err != nil {
		closeStore()
		logger.Fatal("failed to schedule reminders",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	jobs.Start()
	defer jobs.Stop()

	handler := server.NewHandler(logger, repo, server.Options{
		MaxUploadSize:     cfg.UploadSizeBytes(),
		Version:           version,
		AdditionalPayment: cfg.Simulation.AdditionalPayment,
		LookaheadDays:     cfg.Reminders.LookaheadDays,
		Clock:             clock,
	})
	srv := server.New(cfg, handler, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped unexpectedly",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
