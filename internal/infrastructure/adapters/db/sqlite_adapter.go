package db

import (
	"context"
	"fmt"
	"time"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/domain/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// leaderboardUserRow is the gorm mapping of the leaderboard_users table
type leaderboardUserRow struct {
	ID               string `gorm:"primaryKey"`
	Username         string `gorm:"not null;index"`
	WalletAddress    string `gorm:"not null;uniqueIndex"`
	ReputationPoints int    `gorm:"not null;default:0"`
	Level            int    `gorm:"not null;default:1"`
	DailyChange      int    `gorm:"not null;default:0"`
	Avatar           string `gorm:"not null;default:''"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (leaderboardUserRow) TableName() string {
	return "leaderboard_users"
}

func (r leaderboardUserRow) toModel() models.LeaderboardUser {
	return models.LeaderboardUser{
		ID:               r.ID,
		Username:         r.Username,
		WalletAddress:    r.WalletAddress,
		ReputationPoints: r.ReputationPoints,
		Level:            r.Level,
		DailyChange:      r.DailyChange,
		Avatar:           r.Avatar,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// SQLiteAdapter loads the seed collection from a local SQLite file
type SQLiteAdapter struct {
	db *gorm.DB
}

var _ ports.SeedSource = (*SQLiteAdapter)(nil)

// NewSQLiteAdapter opens path and migrates the leaderboard_users table
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.AutoMigrate(&leaderboardUserRow{}); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to migrate leaderboard_users: %w", err)
	}

	return &SQLiteAdapter{db: db}, nil
}

// Name identifies the seed source
func (s *SQLiteAdapter) Name() string {
	return "sqlite"
}

// Insert writes users into the table, used to prepare seed files
func (s *SQLiteAdapter) Insert(ctx context.Context, users ...models.LeaderboardUser) error {
	if len(users) == 0 {
		return nil
	}

	rows := make([]leaderboardUserRow, len(users))
	for i, u := range users {
		rows[i] = leaderboardUserRow{
			ID:               u.ID,
			Username:         u.Username,
			WalletAddress:    u.WalletAddress,
			ReputationPoints: u.ReputationPoints,
			Level:            u.Level,
			DailyChange:      u.DailyChange,
			Avatar:           u.Avatar,
			CreatedAt:        u.CreatedAt,
			UpdatedAt:        u.UpdatedAt,
		}
	}

	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert leaderboard users: %w", err)
	}
	return nil
}

// LoadUsers reads every row in creation order
func (s *SQLiteAdapter) LoadUsers(ctx context.Context) ([]models.LeaderboardUser, error) {
	var rows []leaderboardUserRow
	if err := s.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load leaderboard users: %w", err)
	}

	users := make([]models.LeaderboardUser, len(rows))
	for i, row := range rows {
		users[i] = row.toModel()
	}
	return users, nil
}

// Close closes the underlying connection
func (s *SQLiteAdapter) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
