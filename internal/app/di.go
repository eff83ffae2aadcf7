// Package app provides the dependency injection container assembling the
// application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/maisonhub/sentinel/internal/clock"
	"github.com/maisonhub/sentinel/internal/config"
	"github.com/maisonhub/sentinel/internal/database"
	deviceUseCase "github.com/maisonhub/sentinel/internal/device/usecase"
	eventDomain "github.com/maisonhub/sentinel/internal/event/domain"
	eventRepository "github.com/maisonhub/sentinel/internal/event/repository"
	eventUseCase "github.com/maisonhub/sentinel/internal/event/usecase"
	firewallUseCase "github.com/maisonhub/sentinel/internal/firewall/usecase"
	"github.com/maisonhub/sentinel/internal/http"
	"github.com/maisonhub/sentinel/internal/metrics"
	"github.com/maisonhub/sentinel/internal/sweeper"
	tokenUseCase "github.com/maisonhub/sentinel/internal/token/usecase"
)

// memoryEventCapacity bounds the in-memory event ring buffer. Old entries are
// evicted first; the durable store keeps the full history.
const memoryEventCapacity = 10000

// Container holds all application dependencies and provides methods to access
// them. It follows the lazy initialization pattern - components are created on
// first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB
	clock  clock.Clock

	// Event log
	eventPrimaryRepo eventUseCase.EventRepository
	eventDurableRepo eventUseCase.EventRepository
	eventRecorder    eventUseCase.Recorder

	// Contexts (initialized in di_*.go)
	deviceRegistry deviceUseCase.Registry
	tokenService   tokenUseCase.TokenService
	pipeline       firewallUseCase.Pipeline
	blocklistAdmin firewallUseCase.BlocklistAdmin
	firewall       *firewallComponents

	// Servers and workers
	httpServer      *http.Server
	metricsServer   *http.MetricsServer
	metricsProvider *metrics.Provider
	sweeper         *sweeper.Sweeper

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	clockInit           sync.Once
	eventPrimaryInit    sync.Once
	eventDurableInit    sync.Once
	eventRecorderInit   sync.Once
	deviceRegistryInit  sync.Once
	tokenServiceInit    sync.Once
	firewallInit        sync.Once
	pipelineInit        sync.Once
	blocklistAdminInit  sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	metricsProviderInit sync.Once
	sweeperInit         sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided
// configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// Clock returns the wall clock shared by all components.
func (c *Container) Clock() clock.Clock {
	c.clockInit.Do(func() {
		c.clock = clock.New()
	})
	return c.clock
}

// DB returns the database connection. It fails when no durable store is
// configured; callers should check Config().DBEnabled first.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// EventPrimaryRepository returns the in-memory security event store backing
// hot-path reads.
func (c *Container) EventPrimaryRepository() eventUseCase.EventRepository {
	c.eventPrimaryInit.Do(func() {
		c.eventPrimaryRepo = eventRepository.NewMemoryEventRepository(memoryEventCapacity)
	})
	return c.eventPrimaryRepo
}

// EventDurableRepository returns the SQL-backed security event store, or nil
// when no durable store is configured.
func (c *Container) EventDurableRepository() (eventUseCase.EventRepository, error) {
	var err error
	c.eventDurableInit.Do(func() {
		c.eventDurableRepo, err = c.initEventDurableRepository()
		if err != nil {
			c.initErrors["eventDurableRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventDurableRepo"]; exists {
		return nil, storedErr
	}
	return c.eventDurableRepo, nil
}

// EventRecorder returns the security event log.
func (c *Container) EventRecorder() (eventUseCase.Recorder, error) {
	var err error
	c.eventRecorderInit.Do(func() {
		c.eventRecorder, err = c.initEventRecorder()
		if err != nil {
			c.initErrors["eventRecorder"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["eventRecorder"]; exists {
		return nil, storedErr
	}
	return c.eventRecorder, nil
}

// MetricsProvider returns the OpenTelemetry/Prometheus metrics provider, or
// nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// Sweeper returns the background worker evicting stale rate counters and
// expired tokens.
func (c *Container) Sweeper() (*sweeper.Sweeper, error) {
	var err error
	c.sweeperInit.Do(func() {
		c.sweeper, err = c.initSweeper()
		if err != nil {
			c.initErrors["sweeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sweeper"]; exists {
		return nil, storedErr
	}
	return c.sweeper, nil
}

// HTTPServer returns the API HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics HTTP server, or nil when metrics are
// disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		provider, providerErr := c.MetricsProvider()
		if providerErr != nil {
			err = providerErr
			c.initErrors["metricsServer"] = err
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	if !c.config.DBEnabled {
		return nil, fmt.Errorf("durable store is not configured (DB_ENABLED=false)")
	}

	db, err := database.Connect(c.config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initEventDurableRepository selects the SQL event repository for the
// configured driver. Returns nil when no durable store is configured.
func (c *Container) initEventDurableRepository() (eventUseCase.EventRepository, error) {
	if !c.config.DBEnabled {
		return nil, nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for event repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return eventRepository.NewMySQLEventRepository(db), nil
	case "postgres":
		return eventRepository.NewPostgreSQLEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initEventRecorder creates the security event log with an alert hook that
// surfaces critical events in the application log.
func (c *Container) initEventRecorder() (eventUseCase.Recorder, error) {
	logger := c.Logger()

	durable, err := c.EventDurableRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get durable repository for event recorder: %w", err)
	}

	alert := func(event *eventDomain.SecurityEvent) {
		attrs := []any{slog.String("event_type", event.EventType)}
		if event.SubjectID != nil {
			attrs = append(attrs, slog.String("subject_id", *event.SubjectID))
		}
		if event.ClientIP != nil {
			attrs = append(attrs, slog.String("client_ip", *event.ClientIP))
		}
		logger.Error("critical security event", attrs...)
	}

	return eventUseCase.NewEventLogUseCase(
		c.EventPrimaryRepository(),
		durable,
		alert,
		c.config.EventBufferSize,
		logger,
	), nil
}

// initSweeper wires the periodic eviction of stale rate counters and expired
// tokens.
func (c *Container) initSweeper() (*sweeper.Sweeper, error) {
	firewall, err := c.Firewall()
	if err != nil {
		return nil, fmt.Errorf("failed to get firewall components for sweeper: %w", err)
	}

	tokenService, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for sweeper: %w", err)
	}

	targets := []sweeper.Target{
		{Name: "rate_counters", Sweep: firewall.limiter.Sweep},
		{Name: "expired_tokens", Sweep: tokenService.Sweep},
	}

	return sweeper.New(c.config.SweepInterval, c.Clock(), targets, c.Logger()), nil
}
