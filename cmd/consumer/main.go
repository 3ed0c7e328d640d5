package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"reputation-leaderboard/internal/application/usecases"
	"reputation-leaderboard/internal/domain/models"
	"reputation-leaderboard/internal/infrastructure/adapters/db"
	"reputation-leaderboard/internal/infrastructure/adapters/memory"
	"reputation-leaderboard/internal/infrastructure/adapters/queue"
	"reputation-leaderboard/internal/infrastructure/adapters/seed"
	"reputation-leaderboard/internal/infrastructure/config"
	"reputation-leaderboard/internal/infrastructure/logger"
	"reputation-leaderboard/internal/infrastructure/metrics"

	"github.com/joho/godotenv"
)

// seedFileSink registers queued members against the users already in the
// SQLite seed file and appends the accepted ones to it, so the next server
// started with SEED_SOURCE=sqlite picks them up. A member that cannot be
// appended is removed from memory again so a redelivery can succeed.
type seedFileSink struct {
	leaderboardUseCase *usecases.LeaderboardUseCase
	seedFile           *db.SQLiteAdapter
}

func (s *seedFileSink) HandleRegistration(ctx context.Context, registration models.UserRegistration) models.RegistrationResult {
	result := s.leaderboardUseCase.HandleRegistration(ctx, registration)
	if result.User == nil {
		return result
	}

	if err := s.seedFile.Insert(ctx, *result.User); err != nil {
		logger.ErrorWithTrace(ctx, "Failed to append %s to seed file: %v", result.User.Username, err)
		if rollbackErr := s.leaderboardUseCase.UnregisterUser(ctx, result.User.ID); rollbackErr != nil {
			logger.ErrorWithTrace(ctx, "Failed to roll back %s: %v", result.User.Username, rollbackErr)
		}
		return models.RegistrationResult{Status: 500, Message: "Failed to persist registration"}
	}
	return result
}

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warning("Could not load .env file: %v", err)
	}

	if err := run(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Color); err != nil {
		return err
	}
	if !cfg.QueueEnabled() {
		return fmt.Errorf("QUEUE_PROVIDER must be set to run the consumer")
	}

	metrics.Register()

	seedFile, err := db.NewSQLiteAdapter(cfg.Database.SQLite.Path)
	if err != nil {
		return err
	}
	defer seedFile.Close()

	store := memory.NewUserStore()
	if _, err := seed.Populate(context.Background(), seedFile, store); err != nil {
		return err
	}

	queueAdapter, err := queue.NewQueueFactory(cfg).CreateQueueAdapter(cfg.Queue.Provider)
	if err != nil {
		return fmt.Errorf("failed to initialize queue adapter: %w", err)
	}
	defer queueAdapter.Close()

	sink := &seedFileSink{
		leaderboardUseCase: usecases.NewLeaderboardUseCase(store),
		seedFile:           seedFile,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting %s consumer, writing to %s", cfg.Queue.Provider, cfg.Database.SQLite.Path)
	if err := queueAdapter.StartConsumer(sink); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	<-sigChan
	logger.Info("Shutdown signal received, stopping consumer...")
	if err := queueAdapter.StopConsumer(); err != nil {
		return err
	}
	logger.Success("Consumer stopped gracefully")
	return nil
}
