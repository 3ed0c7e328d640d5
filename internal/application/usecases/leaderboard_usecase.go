package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/domain/models"
	"reputation-leaderboard/internal/domain/services"
	"reputation-leaderboard/internal/infrastructure/logger"
	"reputation-leaderboard/internal/infrastructure/metrics"
	"reputation-leaderboard/internal/infrastructure/tracing"
	"reputation-leaderboard/pkg/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Ports interface aliases for easier use in use cases
type (
	UserRepository      = ports.UserRepository
	RegistrationHandler = ports.RegistrationHandler
)

// Registration sources, used as metric labels
const (
	SourceAPI   = "api"
	SourceQueue = "queue"
)

// LeaderboardUseCase handles leaderboard read operations and member
// registration
type LeaderboardUseCase struct {
	userRepo           UserRepository
	leaderboardService *services.LeaderboardService
	now                func() time.Time
}

var _ RegistrationHandler = (*LeaderboardUseCase)(nil)

// NewLeaderboardUseCase creates a new leaderboard use case
func NewLeaderboardUseCase(userRepo UserRepository) *LeaderboardUseCase {
	return &LeaderboardUseCase{
		userRepo:           userRepo,
		leaderboardService: services.NewLeaderboardService(),
		now:                func() time.Time { return time.Now().UTC() },
	}
}

// Query runs the leaderboard pipeline over the current collection
func (uc *LeaderboardUseCase) Query(ctx context.Context, criteria models.LeaderboardCriteria) (models.PagedResult, error) {
	ctx, span := tracing.Tracer().Start(ctx, "LeaderboardUseCase.Query")
	defer span.End()

	if criteria.Period == "" {
		criteria.Period = models.PeriodAll
	}
	span.SetAttributes(
		attribute.String("leaderboard.filter", string(criteria.Period)),
		attribute.Bool("leaderboard.search", strings.TrimSpace(criteria.Search) != ""),
		attribute.Int("leaderboard.page", criteria.Page),
		attribute.Int("leaderboard.limit", criteria.PageSize),
	)

	if err := uc.leaderboardService.ValidateCriteria(criteria); err != nil {
		metrics.ValidationErrors.WithLabelValues(validationParameter(err)).Inc()
		span.SetStatus(codes.Error, err.Error())
		return models.PagedResult{}, err
	}

	users, err := uc.userRepo.ListUsers(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list users")
		return models.PagedResult{}, fmt.Errorf("failed to list users: %w", err)
	}

	result, err := uc.leaderboardService.Run(users, criteria)
	if err != nil {
		return models.PagedResult{}, err
	}

	metrics.LeaderboardQueries.WithLabelValues(string(criteria.Period)).Inc()
	span.SetAttributes(attribute.Int("leaderboard.total", result.Total))
	logger.Debug("leaderboard query filter=%s page=%d limit=%d total=%d", criteria.Period, criteria.Page, criteria.PageSize, result.Total)

	return result, nil
}

// SearchUsers returns the first page of ranked users matching query
func (uc *LeaderboardUseCase) SearchUsers(ctx context.Context, query string) ([]models.LeaderboardUser, error) {
	ctx, span := tracing.Tracer().Start(ctx, "LeaderboardUseCase.SearchUsers")
	defer span.End()

	matched, err := uc.userRepo.SearchUsers(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search users")
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	ranked := uc.leaderboardService.CapRanking(uc.leaderboardService.SortByReputation(matched))
	page := uc.leaderboardService.Paginate(ranked, services.DefaultPage, services.DefaultPageSize)

	span.SetAttributes(attribute.Int("leaderboard.matches", page.Total))
	return page.Users, nil
}

// Stats summarizes the ranked collection
func (uc *LeaderboardUseCase) Stats(ctx context.Context) (models.NetworkStats, error) {
	ctx, span := tracing.Tracer().Start(ctx, "LeaderboardUseCase.Stats")
	defer span.End()

	users, err := uc.userRepo.ListUsers(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list users")
		return models.NetworkStats{}, fmt.Errorf("failed to list users: %w", err)
	}

	ranked := uc.leaderboardService.Rank(users, models.PeriodAll, "")
	return uc.leaderboardService.Stats(ranked), nil
}

// GetUser retrieves one user by id
func (uc *LeaderboardUseCase) GetUser(ctx context.Context, id string) (*models.LeaderboardUser, error) {
	return uc.userRepo.GetUser(ctx, id)
}

// GetUserByUsername retrieves the first user with the given username
func (uc *LeaderboardUseCase) GetUserByUsername(ctx context.Context, username string) (*models.LeaderboardUser, error) {
	return uc.userRepo.GetUserByUsername(ctx, username)
}

// RegisterUser validates a registration and inserts the new member
func (uc *LeaderboardUseCase) RegisterUser(ctx context.Context, registration models.UserRegistration, source string) (*models.LeaderboardUser, error) {
	ctx, span := tracing.Tracer().Start(ctx, "LeaderboardUseCase.RegisterUser")
	defer span.End()
	span.SetAttributes(attribute.String("registration.source", source))

	if err := uc.leaderboardService.ValidateRegistration(registration); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	level := registration.Level
	if level == 0 {
		level = services.LevelFor(registration.ReputationPoints)
	}

	now := uc.now()
	user := &models.LeaderboardUser{
		ID:               uuid.NewString(),
		Username:         strings.TrimSpace(registration.Username),
		WalletAddress:    strings.TrimSpace(registration.WalletAddress),
		ReputationPoints: registration.ReputationPoints,
		Level:            level,
		DailyChange:      registration.DailyChange,
		Avatar:           registration.Avatar,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := uc.userRepo.CreateUser(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create user")
		return nil, err
	}

	metrics.UsersRegistered.WithLabelValues(source).Inc()
	logger.WithTrace(ctx, "Registered %s (%s) from %s", user.Username, utils.MaskSensitiveData(user.WalletAddress), source)

	return user, nil
}

// UnregisterUser removes a member, undoing a registration that could not
// be persisted downstream
func (uc *LeaderboardUseCase) UnregisterUser(ctx context.Context, id string) error {
	if err := uc.userRepo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("failed to remove user %s: %w", id, err)
	}
	logger.WithTrace(ctx, "Removed user %s", id)
	return nil
}

// HandleRegistration processes a registration taken off the queue
func (uc *LeaderboardUseCase) HandleRegistration(ctx context.Context, registration models.UserRegistration) models.RegistrationResult {
	user, err := uc.RegisterUser(ctx, registration, SourceQueue)
	switch {
	case err == nil:
		return models.RegistrationResult{
			Status:  201,
			Message: "User registered",
			User:    user,
		}
	case errors.Is(err, services.ErrInvalidUser):
		return models.RegistrationResult{
			Status:  400,
			Message: err.Error(),
		}
	case errors.Is(err, services.ErrDuplicateWallet):
		return models.RegistrationResult{
			Status:  409,
			Message: "Wallet address already registered",
		}
	default:
		logger.ErrorWithTrace(ctx, "Failed to register user from queue: %v", err)
		return models.RegistrationResult{
			Status:  500,
			Message: "Failed to register user",
		}
	}
}

func validationParameter(err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidFilter):
		return "filter"
	case errors.Is(err, services.ErrInvalidPage):
		return "page"
	case errors.Is(err, services.ErrInvalidPageSize):
		return "limit"
	default:
		return "other"
	}
}
