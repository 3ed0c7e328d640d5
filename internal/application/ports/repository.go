package ports

import (
	"context"

	"reputation-leaderboard/internal/domain/models"
)

// UserRepository defines the interface for the leaderboard user collection
type UserRepository interface {
	GetUser(ctx context.Context, id string) (*models.LeaderboardUser, error)
	GetUserByUsername(ctx context.Context, username string) (*models.LeaderboardUser, error)

	// ListUsers returns every user in insertion order
	ListUsers(ctx context.Context) ([]models.LeaderboardUser, error)

	// SearchUsers returns the users whose username or wallet address
	// contains query, in insertion order
	SearchUsers(ctx context.Context, query string) ([]models.LeaderboardUser, error)

	CreateUser(ctx context.Context, user *models.LeaderboardUser) error
	DeleteUser(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// SeedSource loads the initial user collection once at startup
type SeedSource interface {
	Name() string
	LoadUsers(ctx context.Context) ([]models.LeaderboardUser, error)
	Close() error
}
