package app

import (
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"

	deviceHTTP "github.com/maisonhub/sentinel/internal/device/http"
	eventHTTP "github.com/maisonhub/sentinel/internal/event/http"
	firewallHTTP "github.com/maisonhub/sentinel/internal/firewall/http"
	"github.com/maisonhub/sentinel/internal/http"
	tokenHTTP "github.com/maisonhub/sentinel/internal/token/http"
)

// initHTTPServer creates the API server with all its handlers and middleware.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	tokenService, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for http server: %w", err)
	}

	registry, err := c.DeviceRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get device registry for http server: %w", err)
	}

	recorder, err := c.EventRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get event recorder for http server: %w", err)
	}

	pipeline, err := c.Pipeline()
	if err != nil {
		return nil, fmt.Errorf("failed to get pipeline for http server: %w", err)
	}

	blocklistAdmin, err := c.BlocklistAdmin()
	if err != nil {
		return nil, fmt.Errorf("failed to get blocklist admin for http server: %w", err)
	}

	var db *sql.DB
	if c.config.DBEnabled {
		db, err = c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for http server: %w", err)
		}
	}

	var tokenIssueLimit gin.HandlerFunc
	if c.config.RateLimitTokenEnabled {
		tokenIssueLimit = tokenHTTP.IssueRateLimitMiddleware(
			c.config.RateLimitTokenRequestsPerSec,
			c.config.RateLimitTokenBurst,
			logger,
		)
	}

	var meterProvider metric.MeterProvider
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}
	if provider != nil {
		meterProvider = provider.MeterProvider()
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(http.RouterConfig{
		TokenHandler:  tokenHTTP.NewTokenHandler(tokenService, logger),
		DeviceHandler: deviceHTTP.NewDeviceHandler(registry, logger),
		EventHandler:  eventHTTP.NewEventHandler(recorder, logger),
		AccessHandler: firewallHTTP.NewAccessHandler(pipeline, logger),
		AdminHandler:  firewallHTTP.NewAdminHandler(blocklistAdmin, logger),

		Firewall:        firewallHTTP.FirewallMiddleware(pipeline, logger),
		AdminKey:        firewallHTTP.AdminKeyMiddleware(c.config.AdminAPIKeyHash, logger),
		TokenIssueLimit: tokenIssueLimit,

		CORSEnabled:      c.config.CORSEnabled,
		CORSAllowOrigins: c.config.CORSAllowOrigins,

		MeterProvider:    meterProvider,
		MetricsNamespace: c.config.MetricsNamespace,
	})

	return server, nil
}
