package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"reputation-leaderboard/internal/application/usecases"
	"reputation-leaderboard/internal/domain/models"
	"reputation-leaderboard/internal/domain/services"
	"reputation-leaderboard/internal/infrastructure/adapters/memory"
	"reputation-leaderboard/internal/infrastructure/adapters/queue"
	"reputation-leaderboard/internal/infrastructure/adapters/seed"
	"reputation-leaderboard/internal/infrastructure/config"
	"reputation-leaderboard/internal/infrastructure/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	seedSource string
	randomSeed uint64

	filter string
	search string
	page   int
	limit  int

	username   string
	wallet     string
	reputation int
)

var rootCmd = &cobra.Command{
	Use:           "leaderboard",
	Short:         "Query the reputation leaderboard in-process",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print one page of the ranked leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := services.NewLeaderboardService().ParsePeriod(filter)
		if err != nil {
			return err
		}

		uc, err := openLeaderboard(cmd.Context())
		if err != nil {
			return err
		}

		result, err := uc.Query(cmd.Context(), models.LeaderboardCriteria{
			Period:   period,
			Search:   search,
			Page:     page,
			PageSize: limit,
		})
		if err != nil {
			return err
		}

		renderPage(cmd.OutOrStdout(), result)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print network statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		uc, err := openLeaderboard(cmd.Context())
		if err != nil {
			return err
		}

		stats, err := uc.Stats(cmd.Context())
		if err != nil {
			return err
		}

		renderStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Print the top ranked users matching a username or wallet fragment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "" {
			return fmt.Errorf("search query is required")
		}

		uc, err := openLeaderboard(cmd.Context())
		if err != nil {
			return err
		}

		users, err := uc.SearchUsers(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		renderPage(cmd.OutOrStdout(), models.PagedResult{
			Users:      users,
			Total:      len(users),
			Page:       services.DefaultPage,
			PageSize:   services.DefaultPageSize,
			TotalPages: 1,
		})
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Publish a member registration to the configured queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if !cfg.QueueEnabled() {
			return fmt.Errorf("QUEUE_PROVIDER must be set to publish registrations")
		}

		registration := models.UserRegistration{
			Username:         username,
			WalletAddress:    wallet,
			ReputationPoints: reputation,
		}
		if err := services.NewLeaderboardService().ValidateRegistration(registration); err != nil {
			return err
		}

		adapter, err := queue.NewQueueFactory(cfg).CreateQueueAdapter(cfg.Queue.Provider)
		if err != nil {
			return fmt.Errorf("failed to initialize queue adapter: %w", err)
		}
		defer adapter.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		if err := adapter.PublishRegistration(ctx, registration); err != nil {
			return err
		}

		logger.Success("Queued %s on %s", registration.Username, adapter.Provider())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&seedSource, "seed-source", getEnv("SEED_SOURCE", config.SeedStatic), "generator, static, mongodb, postgres or sqlite")
	rootCmd.PersistentFlags().Uint64Var(&randomSeed, "seed", getEnvAsUint("SEED_RANDOM_SEED", uint64(time.Now().UnixNano())), "random seed for generated data")

	queryCmd.Flags().StringVar(&filter, "filter", "", "all, week, month or today")
	queryCmd.Flags().StringVar(&search, "search", "", "username or wallet fragment")
	queryCmd.Flags().IntVar(&page, "page", services.DefaultPage, "1-based page number")
	queryCmd.Flags().IntVar(&limit, "limit", services.DefaultPageSize, "page size (1-100)")

	registerCmd.Flags().StringVar(&username, "username", "", "member username")
	registerCmd.Flags().StringVar(&wallet, "wallet", "", "member wallet address")
	registerCmd.Flags().IntVar(&reputation, "rp", 0, "starting reputation points")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("wallet")

	rootCmd.AddCommand(queryCmd, statsCmd, searchCmd, registerCmd)
}

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("Could not load .env file: %v", err)
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// openLeaderboard seeds an in-memory store and wraps it in the use case
func openLeaderboard(ctx context.Context) (*usecases.LeaderboardUseCase, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.Seed.Source = strings.ToLower(seedSource)
	cfg.Seed.RandomSeed = randomSeed
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Color); err != nil {
		return nil, err
	}
	// keep the table readable
	if cfg.Logging.Level == "info" {
		logger.SetLevel(logger.LevelWarn)
	}

	source, err := seed.NewSource(cfg)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	store := memory.NewUserStore()
	if _, err := seed.Populate(ctx, source, store); err != nil {
		return nil, err
	}

	return usecases.NewLeaderboardUseCase(store), nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsUint(key string, fallback uint64) uint64 {
	val, err := strconv.ParseUint(os.Getenv(key), 10, 64)
	if err != nil {
		return fallback
	}
	return val
}
