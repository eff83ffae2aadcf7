// Package http provides the API server, its router, and shared middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	deviceHTTP "github.com/maisonhub/sentinel/internal/device/http"
	eventHTTP "github.com/maisonhub/sentinel/internal/event/http"
	firewallHTTP "github.com/maisonhub/sentinel/internal/firewall/http"
	"github.com/maisonhub/sentinel/internal/metrics"
	tokenHTTP "github.com/maisonhub/sentinel/internal/token/http"
)

// RouterConfig carries the handlers and cross-cutting middleware the router
// is assembled from. Nil middleware entries are skipped.
type RouterConfig struct {
	TokenHandler  *tokenHTTP.TokenHandler
	DeviceHandler *deviceHTTP.DeviceHandler
	EventHandler  *eventHTTP.EventHandler
	AccessHandler *firewallHTTP.AccessHandler
	AdminHandler  *firewallHTTP.AdminHandler

	// Firewall guards the whole /v1 group.
	Firewall gin.HandlerFunc
	// AdminKey guards the admin group (events, block, unblock).
	AdminKey gin.HandlerFunc
	// TokenIssueLimit applies per-IP throttling to token minting.
	TokenIssueLimit gin.HandlerFunc

	CORSEnabled      bool
	CORSAllowOrigins string

	// MeterProvider enables per-request HTTP metrics when non-nil.
	MeterProvider    metric.MeterProvider
	MetricsNamespace string
}

// Server represents the API HTTP server.
type Server struct {
	db     *sql.DB
	router *gin.Engine
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a new HTTP server. The database handle is optional and
// only used by the readiness probe; pass nil when running memory-only.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter assembles the Gin router from the given configuration.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	// The explicit decision endpoint runs the pipeline itself; putting it
	// behind the firewall middleware would charge every check twice.
	if cfg.AccessHandler != nil {
		router.POST("/v1/access/check", cfg.AccessHandler.CheckHandler)
	}

	v1 := router.Group("/v1")
	if cfg.Firewall != nil {
		v1.Use(cfg.Firewall)
	}

	if cfg.TokenHandler != nil {
		issue := []gin.HandlerFunc{cfg.TokenHandler.IssueHandler}
		if cfg.TokenIssueLimit != nil {
			issue = append([]gin.HandlerFunc{cfg.TokenIssueLimit}, issue...)
		}
		v1.POST("/tokens", issue...)
		v1.POST("/tokens/verify", cfg.TokenHandler.VerifyHandler)
		v1.POST("/tokens/revoke", cfg.TokenHandler.RevokeHandler)
	}

	// The admin surface is guarded by the pre-shared key, not by the
	// firewall: an operator must be able to unblock an identity even when
	// their own address tripped the limiter.
	admin := router.Group("/v1")
	if cfg.AdminKey != nil {
		admin.Use(cfg.AdminKey)
	}

	if cfg.DeviceHandler != nil {
		admin.POST("/devices", cfg.DeviceHandler.RegisterHandler)
		admin.POST("/devices/deactivate", cfg.DeviceHandler.DeactivateHandler)
		admin.GET("/devices", cfg.DeviceHandler.ListHandler)
	}

	if cfg.EventHandler != nil {
		admin.GET("/events", cfg.EventHandler.ListHandler)
	}

	if cfg.AdminHandler != nil {
		admin.POST("/admin/block", cfg.AdminHandler.BlockHandler)
		admin.POST("/admin/unblock", cfg.AdminHandler.UnblockHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server. SetupRouter must have been called first.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic. With a
// configured database the probe pings it; memory-only deployments are ready
// as soon as the process is up.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}

	if s.db == nil {
		components["database"] = "disabled"
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"components": components,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	components["database"] = "ok"
	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}
