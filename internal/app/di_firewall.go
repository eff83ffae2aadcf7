package app

import (
	"fmt"

	"github.com/maisonhub/sentinel/internal/anomaly"
	"github.com/maisonhub/sentinel/internal/filter"
	firewallService "github.com/maisonhub/sentinel/internal/firewall/service"
	firewallUseCase "github.com/maisonhub/sentinel/internal/firewall/usecase"
	"github.com/maisonhub/sentinel/internal/metrics"
)

// firewallComponents groups the stateful services shared by the pipeline,
// the admin surface and the sweeper.
type firewallComponents struct {
	limiter   *firewallService.RateLimiter
	blocklist *firewallService.Blocklist
	inspector *firewallService.Inspector
}

// Firewall returns the shared firewall services.
func (c *Container) Firewall() (*firewallComponents, error) {
	c.firewallInit.Do(func() {
		c.firewall = &firewallComponents{
			limiter: firewallService.NewRateLimiter(
				c.config.RateLimitWindow,
				c.config.RateLimitMaxRequests,
				c.Clock(),
			),
			blocklist: firewallService.NewBlocklist(),
			inspector: firewallService.NewInspector(),
		}
	})
	return c.firewall, nil
}

// Pipeline returns the access pipeline instance.
func (c *Container) Pipeline() (firewallUseCase.Pipeline, error) {
	var err error
	c.pipelineInit.Do(func() {
		c.pipeline, err = c.initPipeline()
		if err != nil {
			c.initErrors["pipeline"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pipeline"]; exists {
		return nil, storedErr
	}
	return c.pipeline, nil
}

// BlocklistAdmin returns the admin surface over the blocklist.
func (c *Container) BlocklistAdmin() (firewallUseCase.BlocklistAdmin, error) {
	var err error
	c.blocklistAdminInit.Do(func() {
		c.blocklistAdmin, err = c.initBlocklistAdmin()
		if err != nil {
			c.initErrors["blocklistAdmin"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["blocklistAdmin"]; exists {
		return nil, storedErr
	}
	return c.blocklistAdmin, nil
}

// initContentFilter builds the classifier from the configured rules file, or
// the compiled-in defaults when no file is set.
func (c *Container) initContentFilter() (*filter.Filter, error) {
	if c.config.ContentFilterRulesPath == "" {
		return filter.MustNew(), nil
	}

	rules, err := filter.LoadRules(c.config.ContentFilterRulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load content filter rules: %w", err)
	}

	contentFilter, err := filter.New(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to build content filter: %w", err)
	}

	return contentFilter, nil
}

// initPipeline creates the access pipeline with all its checks, wrapped in
// the metrics decorator when metrics are enabled.
func (c *Container) initPipeline() (firewallUseCase.Pipeline, error) {
	firewall, err := c.Firewall()
	if err != nil {
		return nil, fmt.Errorf("failed to get firewall components for pipeline: %w", err)
	}

	recorder, err := c.EventRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get event recorder for pipeline: %w", err)
	}

	registry, err := c.DeviceRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get device registry for pipeline: %w", err)
	}

	contentFilter, err := c.initContentFilter()
	if err != nil {
		return nil, err
	}

	detector := anomaly.NewDetector(
		recorder,
		registry,
		c.Clock(),
		c.config.AnomalyEventThreshold,
		c.config.AnomalyWindow,
		c.config.TOTPProtectedActions,
		c.Logger(),
	)

	pipeline := firewallUseCase.NewAccessPipeline(
		firewall.limiter,
		firewall.blocklist,
		firewall.inspector,
		contentFilter,
		detector,
		recorder,
		c.Clock(),
		firewallUseCase.PipelineConfig{
			AllowedIdentities:           c.config.AllowedIdentities,
			ContentFilterEnabled:        c.config.ContentFilterEnabled,
			BlocklistEnforcementEnabled: c.config.BlocklistEnforcementEnabled,
			TOTPProtectedActions:        c.config.TOTPProtectedActions,
		},
		c.Logger(),
	)

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for pipeline: %w", err)
	}
	if provider != nil {
		decisionMetrics, err := metrics.NewDecisionMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create decision metrics: %w", err)
		}
		pipeline = firewallUseCase.NewMetricsPipeline(pipeline, decisionMetrics)
	}

	return pipeline, nil
}

// initBlocklistAdmin creates the admin surface over the shared blocklist.
func (c *Container) initBlocklistAdmin() (firewallUseCase.BlocklistAdmin, error) {
	firewall, err := c.Firewall()
	if err != nil {
		return nil, fmt.Errorf("failed to get firewall components for blocklist admin: %w", err)
	}

	recorder, err := c.EventRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get event recorder for blocklist admin: %w", err)
	}

	return firewallUseCase.NewBlocklistAdmin(
		firewall.blocklist,
		recorder,
		c.Clock(),
		c.Logger(),
	), nil
}
