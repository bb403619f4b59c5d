package server

import (
	"time"

	"mailtriage/internal/config"
	"mailtriage/internal/handlers"
	"mailtriage/internal/store"
	"mailtriage/internal/sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Server represents the application server
type Server struct {
	echo         *echo.Echo
	store        *store.Store
	config       *config.Config
	logger       zerolog.Logger
	orchestrator *sync.Orchestrator
	sender       handlers.ReplySender
}

// New creates a new server instance
func New(cfg *config.Config, st *store.Store, orchestrator *sync.Orchestrator, sender handlers.ReplySender, logger zerolog.Logger) *Server {
	return &Server{
		config:       cfg,
		store:        st,
		logger:       logger,
		orchestrator: orchestrator,
		sender:       sender,
	}
}

// zerologMiddleware creates a zerolog-based logging middleware for Echo
func (s *Server) zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			s.logger.Info().
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Str("user_agent", req.UserAgent()).
				Msg("HTTP request")

			return err
		}
	}
}

// Initialize sets up the Echo framework with middleware and routes
func (s *Server) Initialize() {
	s.echo = echo.New()

	// Middleware
	s.echo.Use(s.zerologMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())

	// Hide Echo banner
	s.echo.HideBanner = true

	// Setup routes
	s.setupRoutes()
}

// setupRoutes configures all the application routes
func (s *Server) setupRoutes() {
	// API group with /api prefix
	api := s.echo.Group("/api")

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// Health endpoints (keep at root level for monitoring)
	s.echo.GET("/healthz", handlers.HealthHandler(s.config.Version))
	s.echo.GET("/healthz/db", handlers.DBHealthHandler(s.store.DB()))

	// API endpoints under /api prefix
	api.GET("/", handlers.RootHandler(s.config.Version))
	api.POST("/sync", handlers.SyncHandler(s.orchestrator))
	api.GET("/messages", handlers.ListMessagesHandler(s.store))
	api.GET("/messages/:id", handlers.GetMessageHandler(s.store))
	api.POST("/messages/:id/reply", handlers.SendReplyHandler(s.store, s.sender))
	api.GET("/analytics", handlers.AnalyticsHandler(s.store))

	// Serve the dashboard (this should be last to avoid conflicts)
	s.echo.Static("/", "static")
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().Str("port", s.config.Port).Msg("Server starting")
	return s.echo.Start(":" + s.config.Port)
}
