package seed

import (
	"context"
	"fmt"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/infrastructure/adapters/memory"
	"reputation-leaderboard/internal/infrastructure/logger"
	"reputation-leaderboard/internal/infrastructure/metrics"
)

// Populate loads source once into store and returns the number of users
// added
func Populate(ctx context.Context, source ports.SeedSource, store *memory.UserStore) (int, error) {
	users, err := source.LoadUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load seed users from %s: %w", source.Name(), err)
	}

	store.Load(users)
	metrics.SeededUsers.Set(float64(len(users)))
	logger.Success("Seeded %d users from %s", len(users), source.Name())

	return len(users), nil
}
