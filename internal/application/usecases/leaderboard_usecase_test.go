package usecases

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"reputation-leaderboard/internal/domain/models"
	"reputation-leaderboard/internal/domain/services"
	"reputation-leaderboard/internal/infrastructure/adapters/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepository struct {
	memory.UserStore
}

var errStoreDown = errors.New("store down")

func (f *failingRepository) ListUsers(ctx context.Context) ([]models.LeaderboardUser, error) {
	return nil, errStoreDown
}

func (f *failingRepository) SearchUsers(ctx context.Context, query string) ([]models.LeaderboardUser, error) {
	return nil, errStoreDown
}

func seededUseCase(points ...int) *LeaderboardUseCase {
	users := make([]models.LeaderboardUser, len(points))
	for i, rp := range points {
		users[i] = models.LeaderboardUser{
			ID:               fmt.Sprintf("user-%d", i),
			Username:         fmt.Sprintf("Ranger%d", i),
			WalletAddress:    fmt.Sprintf("0x%04x", i),
			ReputationPoints: rp,
			DailyChange:      i % 2,
		}
	}
	return NewLeaderboardUseCase(memory.NewUserStore(users...))
}

func TestQueryRunsPipeline(t *testing.T) {
	uc := seededUseCase(50, 200, 200, 10, 75)

	result, err := uc.Query(context.Background(), models.LeaderboardCriteria{Page: 1, PageSize: 2})
	require.NoError(t, err)

	require.Len(t, result.Users, 2)
	assert.Equal(t, "user-1", result.Users[0].ID)
	assert.Equal(t, "user-2", result.Users[1].ID)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 3, result.TotalPages)

	result, err = uc.Query(context.Background(), models.LeaderboardCriteria{Period: models.PeriodWeek, Page: 3, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, result.Users, 1)
	assert.Equal(t, "user-3", result.Users[0].ID)
	assert.Equal(t, 5, result.Rank(0))
}

func TestQueryValidation(t *testing.T) {
	uc := seededUseCase(1, 2, 3)
	ctx := context.Background()

	_, err := uc.Query(ctx, models.LeaderboardCriteria{Period: "yearly", Page: 1, PageSize: 20})
	assert.ErrorIs(t, err, services.ErrInvalidFilter)

	_, err = uc.Query(ctx, models.LeaderboardCriteria{Page: 0, PageSize: 20})
	assert.ErrorIs(t, err, services.ErrInvalidPage)

	_, err = uc.Query(ctx, models.LeaderboardCriteria{Page: 1, PageSize: 101})
	assert.ErrorIs(t, err, services.ErrInvalidPageSize)
}

func TestQueryRepositoryFailure(t *testing.T) {
	uc := NewLeaderboardUseCase(&failingRepository{})

	_, err := uc.Query(context.Background(), models.LeaderboardCriteria{Page: 1, PageSize: 20})
	assert.ErrorIs(t, err, errStoreDown)

	_, err = uc.SearchUsers(context.Background(), "x")
	assert.ErrorIs(t, err, errStoreDown)

	_, err = uc.Stats(context.Background())
	assert.ErrorIs(t, err, errStoreDown)
}

func TestSearchUsersReturnsFirstRankedPage(t *testing.T) {
	points := make([]int, 30)
	for i := range points {
		points[i] = i * 10
	}
	uc := seededUseCase(points...)

	users, err := uc.SearchUsers(context.Background(), "ranger")
	require.NoError(t, err)
	require.Len(t, users, services.DefaultPageSize)
	assert.Equal(t, "user-29", users[0].ID)

	users, err = uc.SearchUsers(context.Background(), "RANGER7")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "user-7", users[0].ID)
}

func TestStatsUsesRankedCollection(t *testing.T) {
	points := make([]int, 120)
	for i := range points {
		points[i] = 100_000
	}
	uc := seededUseCase(points...)

	stats, err := uc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, stats.TotalUsers)
	assert.Equal(t, 50, stats.ActiveToday)
	assert.Equal(t, "10.00M", stats.TotalRP)
}

func TestRegisterUser(t *testing.T) {
	uc := seededUseCase(10, 20)
	fixed := time.Date(2025, 7, 27, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return fixed }
	ctx := context.Background()

	user, err := uc.RegisterUser(ctx, models.UserRegistration{
		Username:         " NovaHunter ",
		WalletAddress:    "0xfeed",
		ReputationPoints: 2600,
	}, SourceAPI)
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "NovaHunter", user.Username)
	assert.Equal(t, 5, user.Level)
	assert.Equal(t, fixed, user.CreatedAt)

	stored, err := uc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, *user, *stored)

	byName, err := uc.GetUserByUsername(ctx, "NovaHunter")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	result, err := uc.Query(ctx, models.LeaderboardCriteria{Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.Users[0].ID)

	_, err = uc.RegisterUser(ctx, models.UserRegistration{Username: "Other", WalletAddress: "0xFEED"}, SourceAPI)
	assert.ErrorIs(t, err, services.ErrDuplicateWallet)

	_, err = uc.RegisterUser(ctx, models.UserRegistration{Username: "", WalletAddress: "0x1"}, SourceAPI)
	assert.ErrorIs(t, err, services.ErrInvalidUser)
}

func TestRegisterUserKeepsExplicitLevel(t *testing.T) {
	uc := seededUseCase()

	user, err := uc.RegisterUser(context.Background(), models.UserRegistration{
		Username:         "Veteran",
		WalletAddress:    "0xold",
		ReputationPoints: 100,
		Level:            9,
	}, SourceAPI)
	require.NoError(t, err)
	assert.Equal(t, 9, user.Level)
}

func TestHandleRegistration(t *testing.T) {
	uc := seededUseCase(1)
	ctx := context.Background()

	result := uc.HandleRegistration(ctx, models.UserRegistration{Username: "Queued", WalletAddress: "0xq1"})
	assert.EqualValues(t, 201, result.Status)
	require.NotNil(t, result.User)
	assert.Equal(t, "Queued", result.User.Username)

	result = uc.HandleRegistration(ctx, models.UserRegistration{Username: "Again", WalletAddress: "0xq1"})
	assert.EqualValues(t, 409, result.Status)
	assert.Nil(t, result.User)

	result = uc.HandleRegistration(ctx, models.UserRegistration{WalletAddress: "0xq2"})
	assert.EqualValues(t, 400, result.Status)
}

func TestUnregisterUserReleasesWallet(t *testing.T) {
	uc := seededUseCase(10)
	ctx := context.Background()

	user, err := uc.RegisterUser(ctx, models.UserRegistration{Username: "Transient", WalletAddress: "0xt1"}, SourceQueue)
	require.NoError(t, err)

	require.NoError(t, uc.UnregisterUser(ctx, user.ID))
	_, err = uc.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, services.ErrUserNotFound)

	_, err = uc.RegisterUser(ctx, models.UserRegistration{Username: "Transient", WalletAddress: "0xT1"}, SourceQueue)
	assert.NoError(t, err)

	assert.ErrorIs(t, uc.UnregisterUser(ctx, "missing"), services.ErrUserNotFound)
}
