package db

import (
	"context"
	"fmt"
	"time"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/domain/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectLeaderboardUsers = `
	SELECT
		id,
		username,
		wallet_address,
		reputation_points,
		level,
		daily_change,
		avatar,
		COALESCE(created_at, NOW()),
		COALESCE(updated_at, NOW())
	FROM leaderboard_users
	ORDER BY created_at ASC NULLS LAST, id ASC
`

// PostgresAdapter loads the seed collection from the leaderboard_users table
type PostgresAdapter struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

var _ ports.SeedSource = (*PostgresAdapter)(nil)

// NewPostgresAdapter opens a pool against dsn and checks it with a ping
func NewPostgresAdapter(dsn string) (*PostgresAdapter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &PostgresAdapter{pool: pool, queryTimeout: 30 * time.Second}, nil
}

// Name identifies the seed source
func (p *PostgresAdapter) Name() string {
	return "postgres"
}

// LoadUsers reads every row in creation order
func (p *PostgresAdapter) LoadUsers(ctx context.Context) ([]models.LeaderboardUser, error) {
	ctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	rows, err := p.pool.Query(ctx, selectLeaderboardUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard users: %w", err)
	}

	users, err := pgx.CollectRows(rows, scanLeaderboardUser)
	if err != nil {
		return nil, fmt.Errorf("failed to scan leaderboard users: %w", err)
	}
	return users, nil
}

func scanLeaderboardUser(row pgx.CollectableRow) (models.LeaderboardUser, error) {
	var u models.LeaderboardUser
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.WalletAddress,
		&u.ReputationPoints,
		&u.Level,
		&u.DailyChange,
		&u.Avatar,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// Close releases the pool
func (p *PostgresAdapter) Close() error {
	p.pool.Close()
	return nil
}
