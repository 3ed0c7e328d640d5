package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/application/usecases"
	"reputation-leaderboard/internal/infrastructure/adapters/memory"
	"reputation-leaderboard/internal/infrastructure/adapters/queue"
	"reputation-leaderboard/internal/infrastructure/adapters/seed"
	"reputation-leaderboard/internal/infrastructure/config"
	"reputation-leaderboard/internal/infrastructure/logger"
	"reputation-leaderboard/internal/infrastructure/metrics"
	"reputation-leaderboard/internal/infrastructure/tracing"
	"reputation-leaderboard/internal/infrastructure/web"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	port          string
	seedSource    string
	queueProvider string
	logLevel      string
)

var rootCmd = &cobra.Command{
	Use:          "leaderboard-server",
	Short:        "Serve the reputation leaderboard over HTTP",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return run(cfg)
	},
}

func init() {
	rootCmd.Flags().StringVar(&port, "port", "", "HTTP port (SERVER_PORT)")
	rootCmd.Flags().StringVar(&seedSource, "seed-source", "", "generator, static, mongodb, postgres or sqlite (SEED_SOURCE)")
	rootCmd.Flags().StringVar(&queueProvider, "queue-provider", "", "none, rabbitmq, kafka or redis (QUEUE_PROVIDER)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (LOG_LEVEL)")
}

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warning("Could not load .env file: %v", err)
	}

	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment, then applies any flags that were set
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cmd.Flags().Changed("queue-provider") {
		os.Setenv("QUEUE_PROVIDER", queueProvider)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("seed-source") {
		cfg.Seed.Source = seedSource
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Color); err != nil {
		return err
	}
	if cfg.IsDevelopment() {
		cfg.PrintConfig()
	}

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer shutdown(context.Background())
	}

	metrics.Register()

	// Load the seed collection once; the source is not used afterwards
	source, err := seed.NewSource(cfg)
	if err != nil {
		return fmt.Errorf("failed to open seed source: %w", err)
	}
	store := memory.NewUserStore()
	_, err = seed.Populate(ctx, source, store)
	if closeErr := source.Close(); closeErr != nil {
		logger.Warning("Failed to close seed source: %v", closeErr)
	}
	if err != nil {
		return err
	}

	leaderboardUseCase := usecases.NewLeaderboardUseCase(store)

	var registrationQueue ports.RegistrationQueue
	if cfg.QueueEnabled() {
		registrationQueue, err = queue.NewQueueFactory(cfg).CreateQueueAdapter(cfg.Queue.Provider)
		if err != nil {
			return fmt.Errorf("failed to initialize queue adapter: %w", err)
		}
		defer registrationQueue.Close()

		if err := registrationQueue.StartConsumer(leaderboardUseCase); err != nil {
			return fmt.Errorf("failed to start %s consumer: %w", cfg.Queue.Provider, err)
		}
	}

	webServer := web.NewServer(cfg.Server, leaderboardUseCase, registrationQueue)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- webServer.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-sigChan:
		logger.Info("Received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := webServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	logger.Success("Server stopped gracefully")
	return nil
}
