package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/application/usecases"
	"reputation-leaderboard/internal/domain/models"
	"reputation-leaderboard/internal/infrastructure/adapters/memory"
	"reputation-leaderboard/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	published []models.UserRegistration
	err       error
	connected bool
}

func (q *fakeQueue) PublishRegistration(ctx context.Context, registration models.UserRegistration) error {
	if q.err != nil {
		return q.err
	}
	q.published = append(q.published, registration)
	return nil
}

func (q *fakeQueue) StartConsumer(handler usecases.RegistrationHandler) error { return nil }
func (q *fakeQueue) StopConsumer() error                                       { return nil }
func (q *fakeQueue) Provider() string                                          { return "redis" }
func (q *fakeQueue) Close() error                                              { return nil }
func (q *fakeQueue) IsConnected() bool                                         { return q.connected }

type backlogQueue struct {
	fakeQueue
	backlog int64
	err     error
}

func (q *backlogQueue) Backlog(ctx context.Context) (int64, error) { return q.backlog, q.err }

type brokenStore struct {
	memory.UserStore
}

func (b *brokenStore) ListUsers(ctx context.Context) ([]models.LeaderboardUser, error) {
	return nil, errors.New("disk on fire")
}

func fixtureUsers(n int) []models.LeaderboardUser {
	users := make([]models.LeaderboardUser, n)
	for i := range users {
		users[i] = models.LeaderboardUser{
			ID:               fmt.Sprintf("user-%d", i+1),
			Username:         fmt.Sprintf("Pilot%d", i+1),
			WalletAddress:    fmt.Sprintf("0xabc%04d", i+1),
			ReputationPoints: 1000 + i*10,
			Level:            1,
			DailyChange:      i % 3,
		}
	}
	return users
}

func newTestServer(t *testing.T, repo usecases.UserRepository, queue *fakeQueue) *gin.Engine {
	t.Helper()
	if queue == nil {
		return newServerWithQueue(t, repo, nil)
	}
	return newServerWithQueue(t, repo, queue)
}

func newServerWithQueue(t *testing.T, repo usecases.UserRepository, queue ports.RegistrationQueue) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	uc := usecases.NewLeaderboardUseCase(repo)
	return NewServer(config.ServerConfig{}, uc, queue).Router()
}

func perform(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestGetLeaderboardDefaults(t *testing.T) {
	router := newTestServer(t, memory.NewUserStore(fixtureUsers(45)...), nil)

	w := perform(router, http.MethodGet, "/api/leaderboard", "")
	require.Equal(t, http.StatusOK, w.Code)

	result := decode[models.PagedResult](t, w)
	assert.Len(t, result.Users, 20)
	assert.Equal(t, 45, result.Total)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 3, result.TotalPages)
	assert.True(t, result.HasNextPage)
	assert.Equal(t, "user-45", result.Users[0].ID)
}

func TestGetLeaderboardSearchAndPaging(t *testing.T) {
	router := newTestServer(t, memory.NewUserStore(fixtureUsers(45)...), nil)

	w := perform(router, http.MethodGet, "/api/leaderboard?filter=week&search=PILOT1&page=2&limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)

	// Pilot1 and Pilot10..Pilot19 match, ranked 19 down to 10, then 1
	result := decode[models.PagedResult](t, w)
	assert.Equal(t, 11, result.Total)
	assert.Equal(t, 3, result.TotalPages)
	require.Len(t, result.Users, 5)
	assert.Equal(t, "Pilot14", result.Users[0].Username)

	w = perform(router, http.MethodGet, "/api/leaderboard?page=9&limit=100", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"users":[]`)
}

func TestGetLeaderboardHugePage(t *testing.T) {
	router := newTestServer(t, memory.NewUserStore(fixtureUsers(45)...), nil)

	for _, page := range []string{"9223372036854775807", "4611686018427387905", "4611686018427387904"} {
		for _, limit := range []string{"1", "2", "100"} {
			target := "/api/leaderboard?page=" + page + "&limit=" + limit
			w := perform(router, http.MethodGet, target, "")
			require.Equal(t, http.StatusOK, w.Code, target)

			result := decode[models.PagedResult](t, w)
			assert.Empty(t, result.Users, target)
			assert.Equal(t, 45, result.Total)
			assert.False(t, result.HasNextPage, target)
			assert.True(t, result.HasPrevPage)
		}
	}
}

func TestGetLeaderboardValidation(t *testing.T) {
	router := newTestServer(t, memory.NewUserStore(fixtureUsers(3)...), nil)

	tests := []struct {
		query string
		want  string
	}{
		{"filter=bogus", "Invalid filter parameter"},
		{"filter=ALL", "Invalid filter parameter"},
		{"page=0", "Invalid page parameter"},
		{"page=-1", "Invalid page parameter"},
		{"page=abc", "Invalid page parameter"},
		{"page=", "Invalid page parameter"},
		{"limit=0", "Invalid limit parameter (1-100)"},
		{"limit=101", "Invalid limit parameter (1-100)"},
		{"limit=ten", "Invalid limit parameter (1-100)"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := perform(router, http.MethodGet, "/api/leaderboard?"+tt.query, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.want), w.Body.String())
		})
	}
}

func TestGetLeaderboardInternalError(t *testing.T) {
	router := newTestServer(t, &brokenStore{}, nil)

	w := perform(router, http.MethodGet, "/api/leaderboard", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())

	w = perform(router, http.MethodGet, "/api/stats", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSearchUsers(t *testing.T) {
	router := newTestServer(t, memory.NewUserStore(fixtureUsers(45)...), nil)

	w := perform(router, http.MethodGet, "/api/users/search?q=abc0003", "")
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[[]models.LeaderboardUser](t, w)
	// 0xabc0003 and 0xabc0030..0xabc0039
	assert.Len(t, users, 11)
	assert.Equal(t, "user-39", users[0].ID)

	w = perform(router, http.MethodGet, "/api/users/search?q=nobody", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	for _, target := range []string{"/api/users/search", "/api/users/search?q=", "/api/users/search?q=a&q=b"} {
		w = perform(router, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.JSONEq(t, `{"error":"Search query is required"}`, w.Body.String())
	}
}

func TestGetStats(t *testing.T) {
	users := fixtureUsers(3)
	users[0].ReputationPoints = 1_000_000
	users[1].ReputationPoints = 234_567
	users[2].ReputationPoints = 9_999
	router := newTestServer(t, memory.NewUserStore(users...), nil)

	w := perform(router, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	// DailyChange is 0, 1, 2
	assert.JSONEq(t, `{"totalUsers":3,"activeToday":2,"totalRP":"1.24M","avgRP":"414,855.333"}`, w.Body.String())
}

func TestGetUser(t *testing.T) {
	router := newTestServer(t, memory.NewUserStore(fixtureUsers(2)...), nil)

	w := perform(router, http.MethodGet, "/api/users/user-2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pilot2", decode[models.LeaderboardUser](t, w).Username)

	w = perform(router, http.MethodGet, "/api/users/user-9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())

	w = perform(router, http.MethodGet, "/api/users?username=Pilot1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", decode[models.LeaderboardUser](t, w).ID)

	w = perform(router, http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateUser(t *testing.T) {
	router := newTestServer(t, memory.NewUserStore(fixtureUsers(1)...), nil)

	w := perform(router, http.MethodPost, "/api/users", `{"username":"NovaHunter","walletAddress":"0xnew","reputationPoints":5000}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[models.LeaderboardUser](t, w)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, 10, user.Level)

	w = perform(router, http.MethodGet, "/api/leaderboard?limit=1", "")
	assert.Equal(t, user.ID, decode[models.PagedResult](t, w).Users[0].ID)

	w = perform(router, http.MethodPost, "/api/users", `{"username":"Copycat","walletAddress":"0xNEW"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"Wallet address already registered"}`, w.Body.String())

	w = perform(router, http.MethodPost, "/api/users", `{"walletAddress":"0xother"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodPost, "/api/users", `{"username":"Neg","walletAddress":"0xneg","reputationPoints":-5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(router, http.MethodPost, "/api/users", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueueUser(t *testing.T) {
	queue := &fakeQueue{connected: true}
	router := newTestServer(t, memory.NewUserStore(), queue)

	w := perform(router, http.MethodPost, "/api/users/queue", `{"username":"Queued","walletAddress":"0xq"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"status":"queued","provider":"redis"}`, w.Body.String())
	require.Len(t, queue.published, 1)
	assert.Equal(t, "Queued", queue.published[0].Username)

	queue.err = errors.New("broker down")
	w = perform(router, http.MethodPost, "/api/users/queue", `{"username":"Queued","walletAddress":"0xq"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	router = newTestServer(t, memory.NewUserStore(), nil)
	w = perform(router, http.MethodPost, "/api/users/queue", `{"username":"Queued","walletAddress":"0xq"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealth(t *testing.T) {
	queue := &fakeQueue{connected: true}
	router := newTestServer(t, memory.NewUserStore(), queue)

	w := perform(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(router, http.MethodGet, "/health/queues", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","queues":{"redis":{"status":"available"}}}`, w.Body.String())

	queue.connected = false
	w = perform(router, http.MethodGet, "/health/queues", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = perform(router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "leaderboard_http_requests_total")
}

func TestQueuesHealthReportsBacklog(t *testing.T) {
	queue := &backlogQueue{fakeQueue: fakeQueue{connected: true}, backlog: 7}
	router := newServerWithQueue(t, memory.NewUserStore(), queue)

	w := perform(router, http.MethodGet, "/health/queues", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","queues":{"redis":{"status":"available","backlog":7}}}`, w.Body.String())

	queue.err = errors.New("no such key")
	w = perform(router, http.MethodGet, "/health/queues", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","queues":{"redis":{"status":"available"}}}`, w.Body.String())

	queue.connected = false
	w = perform(router, http.MethodGet, "/health/queues", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "backlog")
}

func TestCORSPreflight(t *testing.T) {
	router := newTestServer(t, memory.NewUserStore(), nil)

	w := perform(router, http.MethodOptions, "/api/leaderboard", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetLeaderboardChecksFilterFirst(t *testing.T) {
	router := newTestServer(t, memory.NewUserStore(), nil)

	w := perform(router, http.MethodGet, "/api/leaderboard?filter=year&page=x&limit=y", "")
	assert.JSONEq(t, `{"error":"Invalid filter parameter"}`, w.Body.String())

	w = perform(router, http.MethodGet, "/api/leaderboard?page=x&limit=y", "")
	assert.JSONEq(t, `{"error":"Invalid page parameter"}`, w.Body.String())
}
