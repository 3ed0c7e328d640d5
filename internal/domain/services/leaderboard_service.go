package services

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"reputation-leaderboard/internal/domain/models"
)

const (
	// MaxRankedUsers is the ranking ceiling applied after sorting
	MaxRankedUsers = 100
	// MaxPageSize bounds the page size of a query
	MaxPageSize     = 100
	DefaultPage     = 1
	DefaultPageSize = 20
)

var (
	ErrInvalidFilter   = errors.New("invalid filter parameter")
	ErrInvalidPage     = errors.New("invalid page parameter")
	ErrInvalidPageSize = errors.New("invalid limit parameter")
	ErrInvalidUser     = errors.New("invalid user")
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateWallet = errors.New("wallet address already registered")
)

// LeaderboardService holds the leaderboard query pipeline.
// Every method is pure: inputs are never modified.
type LeaderboardService struct{}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService() *LeaderboardService {
	return &LeaderboardService{}
}

// ParsePeriod converts a raw filter value into a PeriodFilter.
// An empty value selects PeriodAll.
func (ls *LeaderboardService) ParsePeriod(raw string) (models.PeriodFilter, error) {
	if raw == "" {
		return models.PeriodAll, nil
	}
	period := models.PeriodFilter(raw)
	if !period.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, raw)
	}
	return period, nil
}

// ValidateCriteria checks the query parameters before the pipeline runs
func (ls *LeaderboardService) ValidateCriteria(criteria models.LeaderboardCriteria) error {
	if criteria.Period != "" && !criteria.Period.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFilter, criteria.Period)
	}
	if criteria.Page < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, criteria.Page)
	}
	if criteria.PageSize < 1 || criteria.PageSize > MaxPageSize {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, criteria.PageSize)
	}
	return nil
}

// FilterByPeriod applies the period filter.
// No timestamp semantics are defined for week, month or today, so every
// period returns the collection unchanged.
func (ls *LeaderboardService) FilterByPeriod(users []models.LeaderboardUser, period models.PeriodFilter) []models.LeaderboardUser {
	return users
}

// Search keeps the users whose username or wallet address contains the
// query, case-insensitively. Blank queries match everything.
func (ls *LeaderboardService) Search(users []models.LeaderboardUser, query string) []models.LeaderboardUser {
	term := NormalizeSearch(query)
	if term == "" {
		return users
	}

	matched := make([]models.LeaderboardUser, 0, len(users))
	for _, user := range users {
		if MatchesSearch(user, term) {
			matched = append(matched, user)
		}
	}
	return matched
}

// SortByReputation returns a copy of users ordered by reputation points,
// highest first. Users with equal points keep their relative order.
func (ls *LeaderboardService) SortByReputation(users []models.LeaderboardUser) []models.LeaderboardUser {
	sorted := slices.Clone(users)
	slices.SortStableFunc(sorted, func(a, b models.LeaderboardUser) int {
		return b.ReputationPoints - a.ReputationPoints
	})
	return sorted
}

// CapRanking truncates a sorted collection to the ranking ceiling
func (ls *LeaderboardService) CapRanking(users []models.LeaderboardUser) []models.LeaderboardUser {
	if len(users) > MaxRankedUsers {
		return users[:MaxRankedUsers]
	}
	return users
}

// Paginate slices one 1-based page out of users. Pages past the end are
// empty rather than an error.
func (ls *LeaderboardService) Paginate(users []models.LeaderboardUser, page, pageSize int) models.PagedResult {
	total := len(users)
	totalPages := 0
	if total > 0 && pageSize > 0 {
		totalPages = (total-1)/pageSize + 1
	}

	pageUsers := []models.LeaderboardUser{}
	// the offset is only computed for pages that exist, so it stays below total
	if page >= 1 && page <= totalPages {
		start := (page - 1) * pageSize
		end := total
		if total-start > pageSize {
			end = start + pageSize
		}
		pageUsers = slices.Clone(users[start:end])
	}

	return models.PagedResult{
		Users:       pageUsers,
		Total:       total,
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// Rank runs the stages that precede pagination: period filter, search,
// sort and cap
func (ls *LeaderboardService) Rank(users []models.LeaderboardUser, period models.PeriodFilter, search string) []models.LeaderboardUser {
	ranked := ls.FilterByPeriod(users, period)
	ranked = ls.Search(ranked, search)
	ranked = ls.SortByReputation(ranked)
	return ls.CapRanking(ranked)
}

// Run validates the criteria and executes the full pipeline
func (ls *LeaderboardService) Run(users []models.LeaderboardUser, criteria models.LeaderboardCriteria) (models.PagedResult, error) {
	if err := ls.ValidateCriteria(criteria); err != nil {
		return models.PagedResult{}, err
	}

	ranked := ls.Rank(users, criteria.Period, criteria.Search)
	return ls.Paginate(ranked, criteria.Page, criteria.PageSize), nil
}

// Stats summarizes a ranked collection
func (ls *LeaderboardService) Stats(ranked []models.LeaderboardUser) models.NetworkStats {
	var totalRP int64
	active := 0
	for _, user := range ranked {
		totalRP += int64(user.ReputationPoints)
		if user.DailyChange != 0 {
			active++
		}
	}

	return models.NetworkStats{
		TotalUsers:  len(ranked),
		ActiveToday: active,
		TotalRP:     FormatMillions(totalRP),
		AvgRP:       FormatAverage(totalRP, len(ranked)),
	}
}

// ValidateRegistration checks a new member before it is stored
func (ls *LeaderboardService) ValidateRegistration(req models.UserRegistration) error {
	if strings.TrimSpace(req.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidUser)
	}
	if strings.TrimSpace(req.WalletAddress) == "" {
		return fmt.Errorf("%w: wallet address is required", ErrInvalidUser)
	}
	if req.ReputationPoints < 0 {
		return fmt.Errorf("%w: reputation points cannot be negative", ErrInvalidUser)
	}
	if req.Level < 0 {
		return fmt.Errorf("%w: level cannot be negative", ErrInvalidUser)
	}
	return nil
}

// LevelFor derives the level assigned to a member at creation time
func LevelFor(reputationPoints int) int {
	return max(1, reputationPoints/500)
}

// NormalizeSearch lowercases and trims a search query
func NormalizeSearch(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// MatchesSearch reports whether user matches an already normalized term
func MatchesSearch(user models.LeaderboardUser, term string) bool {
	return strings.Contains(strings.ToLower(user.Username), term) ||
		strings.Contains(strings.ToLower(user.WalletAddress), term)
}

// FormatMillions renders a point total in millions, truncated to two
// decimals, e.g. 1234567 -> "1.23M"
func FormatMillions(total int64) string {
	hundredths := total / 10_000
	return fmt.Sprintf("%d.%02dM", hundredths/100, hundredths%100)
}

// FormatAverage renders total/count with thousands separators and at most
// three decimals, e.g. (1244566, 3) -> "414,855.333". An empty collection
// averages to "0".
func FormatAverage(total int64, count int) string {
	if count <= 0 {
		return "0"
	}

	thousandths := int64(math.Round(float64(total) / float64(count) * 1000))
	whole := strconv.FormatInt(thousandths/1000, 10)

	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	if frac := strings.TrimRight(fmt.Sprintf("%03d", thousandths%1000), "0"); frac != "" {
		b.WriteString("." + frac)
	}
	return b.String()
}
