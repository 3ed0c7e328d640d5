package main

import (
	"bytes"
	"testing"

	"reputation-leaderboard/internal/domain/models"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestRenderPage(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	renderPage(&buf, models.PagedResult{
		Users: []models.LeaderboardUser{
			{Username: "AstroExplorer", WalletAddress: "0xa1b2c3d4e5f6a7b8", Level: 10, ReputationPoints: 9950, DailyChange: 42, Avatar: "A"},
			{Username: "VoidWalker", WalletAddress: "0x1234", Level: 9, ReputationPoints: 9800, DailyChange: -3, Avatar: "V"},
		},
		Total:      45,
		Page:       2,
		PageSize:   2,
		TotalPages: 23,
	})

	out := buf.String()
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "#3")
	assert.Contains(t, out, "#4")
	assert.Contains(t, out, "0xa1b2…a7b8")
	assert.Contains(t, out, "+42")
	assert.Contains(t, out, "-3")
	assert.Contains(t, out, "Page 2 of 23 (45 users)")
}

func TestRenderEmptyPage(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	renderPage(&buf, models.PagedResult{Page: 4, TotalPages: 1})
	assert.Contains(t, buf.String(), "No users found")
}

func TestRenderStats(t *testing.T) {
	var buf bytes.Buffer
	renderStats(&buf, models.NetworkStats{TotalUsers: 100, ActiveToday: 48, TotalRP: "0.50M", AvgRP: "5,000"})

	assert.Contains(t, buf.String(), "Total RP")
	assert.Contains(t, buf.String(), "0.50M")
	assert.Contains(t, buf.String(), "5,000")
}
