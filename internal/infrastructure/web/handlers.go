package web

import (
	"errors"
	"net/http"
	"strconv"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/application/usecases"
	"reputation-leaderboard/internal/domain/models"
	"reputation-leaderboard/internal/domain/services"
	"reputation-leaderboard/internal/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

// LeaderboardHandler handles leaderboard HTTP requests
type LeaderboardHandler struct {
	leaderboardUseCase *usecases.LeaderboardUseCase
	queue              ports.RegistrationQueue
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboardUseCase *usecases.LeaderboardUseCase, queue ports.RegistrationQueue) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardUseCase: leaderboardUseCase,
		queue:              queue,
	}
}

// GetLeaderboardHandler serves one page of the ranked leaderboard
// GET /api/leaderboard?filter=&search=&page=&limit=
func (h *LeaderboardHandler) GetLeaderboardHandler(c *gin.Context) {
	period := models.PeriodFilter(c.Query("filter"))
	if period != "" && !period.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter parameter"})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter (1-100)"})
		return
	}

	criteria := models.LeaderboardCriteria{
		Period:   period,
		Search:   c.Query("search"),
		Page:     page,
		PageSize: limit,
	}

	result, err := h.leaderboardUseCase.Query(c.Request.Context(), criteria)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, services.ErrInvalidFilter):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter parameter"})
	case errors.Is(err, services.ErrInvalidPage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
	case errors.Is(err, services.ErrInvalidPageSize):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter (1-100)"})
	default:
		h.internalError(c, "Error fetching leaderboard", err)
	}
}

// SearchUsersHandler returns the first page of ranked users matching q
// GET /api/users/search?q=
func (h *LeaderboardHandler) SearchUsersHandler(c *gin.Context) {
	q := c.QueryArray("q")
	if len(q) != 1 || q[0] == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
		return
	}

	users, err := h.leaderboardUseCase.SearchUsers(c.Request.Context(), q[0])
	if err != nil {
		h.internalError(c, "Error searching users", err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetStatsHandler summarizes the ranked collection
// GET /api/stats
func (h *LeaderboardHandler) GetStatsHandler(c *gin.Context) {
	stats, err := h.leaderboardUseCase.Stats(c.Request.Context())
	if err != nil {
		h.internalError(c, "Error fetching stats", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetUserHandler returns one user by id
// GET /api/users/:id
func (h *LeaderboardHandler) GetUserHandler(c *gin.Context) {
	user, err := h.leaderboardUseCase.GetUser(c.Request.Context(), c.Param("id"))
	h.writeUser(c, user, err)
}

// GetUserByUsernameHandler returns the user with the given username
// GET /api/users?username=
func (h *LeaderboardHandler) GetUserByUsernameHandler(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username query is required"})
		return
	}

	user, err := h.leaderboardUseCase.GetUserByUsername(c.Request.Context(), username)
	h.writeUser(c, user, err)
}

func (h *LeaderboardHandler) writeUser(c *gin.Context, user *models.LeaderboardUser, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, user)
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		h.internalError(c, "Error fetching user", err)
	}
}

// CreateUserHandler registers a new member directly
// POST /api/users
func (h *LeaderboardHandler) CreateUserHandler(c *gin.Context) {
	var registration models.UserRegistration
	if err := c.ShouldBindJSON(&registration); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid user data",
			"details": err.Error(),
		})
		return
	}

	user, err := h.leaderboardUseCase.RegisterUser(c.Request.Context(), registration, usecases.SourceAPI)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, user)
	case errors.Is(err, services.ErrInvalidUser):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid user data",
			"details": err.Error(),
		})
	case errors.Is(err, services.ErrDuplicateWallet):
		c.JSON(http.StatusConflict, gin.H{"error": "Wallet address already registered"})
	default:
		h.internalError(c, "Error creating user", err)
	}
}

// QueueUserHandler publishes a registration to the configured queue
// POST /api/users/queue
func (h *LeaderboardHandler) QueueUserHandler(c *gin.Context) {
	if h.queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Registration queue is not configured"})
		return
	}

	var registration models.UserRegistration
	if err := c.ShouldBindJSON(&registration); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid user data",
			"details": err.Error(),
		})
		return
	}

	if err := h.queue.PublishRegistration(c.Request.Context(), registration); err != nil {
		logger.ErrorWithTrace(c.Request.Context(), "Failed to publish registration: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to queue registration"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":   "queued",
		"provider": h.queue.Provider(),
	})
}

// HealthHandler reports liveness
// GET /health
func (h *LeaderboardHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "reputation-leaderboard",
		"version": "1.0.0",
	})
}

// QueuesHealthHandler reports the registration queue connection
// GET /health/queues
func (h *LeaderboardHandler) QueuesHealthHandler(c *gin.Context) {
	if h.queue == nil {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"queues": gin.H{},
		})
		return
	}

	status, code := "available", http.StatusOK
	if !h.queue.IsConnected() {
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	overall := "healthy"
	if code != http.StatusOK {
		overall = "degraded"
	}

	detail := gin.H{"status": status}
	if backlog, ok := h.queue.(ports.QueueBacklog); ok && code == http.StatusOK {
		if n, err := backlog.Backlog(c.Request.Context()); err == nil {
			detail["backlog"] = n
		} else {
			logger.Warning("Failed to read %s backlog: %v", h.queue.Provider(), err)
		}
	}

	c.JSON(code, gin.H{
		"status": overall,
		"queues": gin.H{
			h.queue.Provider(): detail,
		},
	})
}

func (h *LeaderboardHandler) internalError(c *gin.Context, msg string, err error) {
	logger.ErrorWithTrace(c.Request.Context(), "%s: %v", msg, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
