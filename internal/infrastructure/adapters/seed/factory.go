package seed

import (
	"fmt"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/infrastructure/adapters/db"
	"reputation-leaderboard/internal/infrastructure/config"
)

// NewSource builds the seed source named by cfg.Seed.Source
func NewSource(cfg *config.Config) (ports.SeedSource, error) {
	switch cfg.Seed.Source {
	case config.SeedGenerator:
		return NewGenerator(ProfileServer, cfg.Seed.Count, cfg.Seed.RandomSeed)
	case config.SeedStatic:
		return NewGenerator(ProfileStatic, cfg.Seed.Count, cfg.Seed.RandomSeed)
	case config.SeedMongoDB:
		return db.NewMongoAdapter(cfg.Database.MongoDB.URI, cfg.Database.MongoDB.Database, cfg.Database.MongoDB.Collection)
	case config.SeedPostgres:
		return db.NewPostgresAdapter(cfg.Database.Postgres.DSN)
	case config.SeedSQLite:
		return db.NewSQLiteAdapter(cfg.Database.SQLite.Path)
	default:
		return nil, fmt.Errorf("unsupported seed source: %s", cfg.Seed.Source)
	}
}
