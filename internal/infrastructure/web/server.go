package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/application/usecases"
	"reputation-leaderboard/internal/infrastructure/config"
	"reputation-leaderboard/internal/infrastructure/logger"
	"reputation-leaderboard/internal/infrastructure/metrics"
	"reputation-leaderboard/internal/infrastructure/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Server represents the HTTP server
type Server struct {
	config             config.ServerConfig
	leaderboardHandler *LeaderboardHandler
	router             *gin.Engine
	httpServer         *http.Server
}

// NewServer creates a new HTTP server. queue may be nil when no
// registration queue is configured.
func NewServer(cfg config.ServerConfig, leaderboardUseCase *usecases.LeaderboardUseCase, queue ports.RegistrationQueue) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	s := &Server{
		config:             cfg,
		leaderboardHandler: NewLeaderboardHandler(leaderboardUseCase, queue),
	}
	s.router = s.setupRoutes()
	return s
}

// Router exposes the configured engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(s.recoveryMiddleware())
	router.Use(s.tracingMiddleware())
	router.Use(s.requestLogMiddleware())
	router.Use(s.corsMiddleware())

	// Health check routes
	router.GET("/health", s.leaderboardHandler.HealthHandler)
	router.GET("/health/queues", s.leaderboardHandler.QueuesHealthHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/leaderboard", s.leaderboardHandler.GetLeaderboardHandler)
		api.GET("/stats", s.leaderboardHandler.GetStatsHandler)

		users := api.Group("/users")
		{
			users.GET("", s.leaderboardHandler.GetUserByUsernameHandler)
			users.GET("/search", s.leaderboardHandler.SearchUsersHandler)
			users.GET("/:id", s.leaderboardHandler.GetUserHandler)
			users.POST("", s.leaderboardHandler.CreateUserHandler)
			users.POST("/queue", s.leaderboardHandler.QueueUserHandler)
		}
	}

	return router
}

// recoveryMiddleware turns a panic into the opaque 500 body
func (s *Server) recoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.ErrorWithTrace(c.Request.Context(), "Panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}

// tracingMiddleware opens a server span per request
func (s *Server) tracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := routeOf(c)
		ctx, span := tracing.Tracer().Start(c.Request.Context(), c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// requestLogMiddleware logs and measures every served request
func (s *Server) requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		route := routeOf(c)

		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(duration.Seconds())
		logger.Request(c.Request.Method, c.Request.URL.RequestURI(), status, duration)
	}
}

// corsMiddleware sets up CORS headers
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.config.Host + ":" + s.config.Port,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Success("HTTP server listening on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	logger.Info("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
