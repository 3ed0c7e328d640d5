package models

// PeriodFilter is the nominal time window of a leaderboard query
type PeriodFilter string

const (
	PeriodAll   PeriodFilter = "all"
	PeriodWeek  PeriodFilter = "week"
	PeriodMonth PeriodFilter = "month"
	PeriodToday PeriodFilter = "today"
)

// PeriodFilters lists every recognized period, in display order
var PeriodFilters = []PeriodFilter{PeriodAll, PeriodWeek, PeriodMonth, PeriodToday}

// IsValid reports whether p is one of the recognized periods
func (p PeriodFilter) IsValid() bool {
	for _, known := range PeriodFilters {
		if p == known {
			return true
		}
	}
	return false
}

// LeaderboardCriteria holds the parameters of a leaderboard query.
// Page is 1-based.
type LeaderboardCriteria struct {
	Period   PeriodFilter `json:"filter" form:"filter"`
	Search   string       `json:"search" form:"search"`
	Page     int          `json:"page" form:"page"`
	PageSize int          `json:"limit" form:"limit"`
}

// PagedResult is one page of ranked users plus pagination metadata
type PagedResult struct {
	Users       []LeaderboardUser `json:"users"`
	Total       int               `json:"total"`
	Page        int               `json:"page"`
	PageSize    int               `json:"-"`
	TotalPages  int               `json:"totalPages"`
	HasNextPage bool              `json:"hasNextPage"`
	HasPrevPage bool              `json:"hasPrevPage"`
}

// Rank returns the leaderboard position of the user at index i of this page,
// or 0 when the page lies outside the ranking
func (r PagedResult) Rank(i int) int {
	if r.Page < 1 || r.Page > r.TotalPages {
		return 0
	}
	return (r.Page-1)*r.PageSize + i + 1
}
