package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"reputation-leaderboard/internal/domain/models"
	"reputation-leaderboard/pkg/utils"

	"github.com/fatih/color"
)

var (
	gold   = color.New(color.FgYellow, color.Bold)
	up     = color.New(color.FgGreen)
	down   = color.New(color.FgRed)
	dimmed = color.New(color.FgHiBlack)
)

func renderPage(w io.Writer, result models.PagedResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tUSER\tWALLET\tLEVEL\tRP\t24H")

	for i, user := range result.Users {
		rank := fmt.Sprintf("#%d", result.Rank(i))
		if result.Rank(i) <= 3 {
			rank = gold.Sprint(rank)
		}
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%d\t%d\t%s\n",
			rank,
			user.Avatar,
			user.Username,
			utils.ShortenWallet(user.WalletAddress),
			user.Level,
			user.ReputationPoints,
			formatChange(user.DailyChange),
		)
	}
	tw.Flush()

	if len(result.Users) == 0 {
		dimmed.Fprintln(w, "No users found")
	}
	dimmed.Fprintf(w, "Page %d of %d (%d users)\n", result.Page, result.TotalPages, result.Total)
}

func renderStats(w io.Writer, stats models.NetworkStats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total users\t%d\n", stats.TotalUsers)
	fmt.Fprintf(tw, "Active today\t%d\n", stats.ActiveToday)
	fmt.Fprintf(tw, "Total RP\t%s\n", stats.TotalRP)
	fmt.Fprintf(tw, "Average RP\t%s\n", stats.AvgRP)
	tw.Flush()
}

func formatChange(change int) string {
	switch {
	case change > 0:
		return up.Sprintf("+%d", change)
	case change < 0:
		return down.Sprintf("%d", change)
	default:
		return "0"
	}
}
