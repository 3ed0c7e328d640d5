package models

import (
	"time"
)

// LeaderboardUser represents a ranked network member
type LeaderboardUser struct {
	ID               string    `bson:"_id" json:"id"`
	Username         string    `bson:"username" json:"username"`
	WalletAddress    string    `bson:"wallet_address" json:"walletAddress"`
	ReputationPoints int       `bson:"reputation_points" json:"reputationPoints"`
	Level            int       `bson:"level" json:"level"`
	DailyChange      int       `bson:"daily_change" json:"dailyChange"`
	Avatar           string    `bson:"avatar" json:"avatar"`
	CreatedAt        time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updatedAt"`
}

// UserRegistration is the payload accepted when a new member joins,
// either over HTTP or from the registration queue
type UserRegistration struct {
	Username         string `json:"username" binding:"required"`
	WalletAddress    string `json:"walletAddress" binding:"required"`
	ReputationPoints int    `json:"reputationPoints"`
	Level            int    `json:"level"`
	DailyChange      int    `json:"dailyChange"`
	Avatar           string `json:"avatar"`
}

// RegistrationResult reports the outcome of a registration
type RegistrationResult struct {
	Status  int32            `json:"status"`
	Message string           `json:"message"`
	User    *LeaderboardUser `json:"user,omitempty"`
}

// NetworkStats summarizes the ranked collection
type NetworkStats struct {
	TotalUsers  int    `json:"totalUsers"`
	ActiveToday int    `json:"activeToday"`
	TotalRP     string `json:"totalRP"`
	AvgRP       string `json:"avgRP"`
}
