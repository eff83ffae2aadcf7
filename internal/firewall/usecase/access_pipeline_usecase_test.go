package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maisonhub/sentinel/internal/anomaly"
	"github.com/maisonhub/sentinel/internal/clock"
	deviceRepository "github.com/maisonhub/sentinel/internal/device/repository"
	deviceUseCase "github.com/maisonhub/sentinel/internal/device/usecase"
	eventDomain "github.com/maisonhub/sentinel/internal/event/domain"
	eventRepository "github.com/maisonhub/sentinel/internal/event/repository"
	eventUseCase "github.com/maisonhub/sentinel/internal/event/usecase"
	"github.com/maisonhub/sentinel/internal/filter"
	firewallDomain "github.com/maisonhub/sentinel/internal/firewall/domain"
	firewallService "github.com/maisonhub/sentinel/internal/firewall/service"
)

type pipelineFixture struct {
	pipeline  Pipeline
	blocklist *firewallService.Blocklist
	registry  deviceUseCase.Registry
	recorder  eventUseCase.Recorder
	events    *eventRepository.MemoryEventRepository
	clock     *clock.Fake
}

func newPipelineFixture(t *testing.T, cfg PipelineConfig) *pipelineFixture {
	t.Helper()
	logger := slog.Default()
	clk := clock.NewFake(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	events := eventRepository.NewMemoryEventRepository(10000)
	recorder := eventUseCase.NewEventLogUseCase(events, nil, nil, 16, logger)
	registry := deviceUseCase.NewDeviceRegistryUseCase(
		deviceRepository.NewMemoryDeviceRepository(), nil, clk, recorder, logger,
	)
	detector := anomaly.NewDetector(recorder, registry, clk, 5, time.Hour,
		cfg.TOTPProtectedActions, logger)

	blocklist := firewallService.NewBlocklist()
	pipeline := NewAccessPipeline(
		firewallService.NewRateLimiter(60*time.Second, 100, clk),
		blocklist,
		firewallService.NewInspector(),
		filter.MustNew(),
		detector,
		recorder,
		clk,
		cfg,
		logger,
	)

	return &pipelineFixture{
		pipeline:  pipeline,
		blocklist: blocklist,
		registry:  registry,
		recorder:  recorder,
		events:    events,
		clock:     clk,
	}
}

func defaultConfig() PipelineConfig {
	return PipelineConfig{
		ContentFilterEnabled:        true,
		BlocklistEnforcementEnabled: true,
		TOTPProtectedActions:        []string{"modify_security_settings", "issue_api_key"},
	}
}

func apiRequest(identity string) *firewallDomain.Request {
	return &firewallDomain.Request{
		ClientIdentity: identity,
		ClientIP:       identity,
		Action:         "turn_on_lights",
		Path:           "/v1/access/check",
	}
}

func (f *pipelineFixture) eventCount(t *testing.T) int {
	t.Helper()
	events, err := f.events.ListRecent(context.Background(), "", time.Time{}, nil, 0)
	require.NoError(t, err)
	return len(events)
}

func TestCheckRequestAllowed(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig())

	verdict := f.pipeline.CheckRequest(context.Background(), apiRequest("1.2.3.4"))
	assert.True(t, verdict.Allowed)
	assert.Equal(t, 200, verdict.StatusCode)
	assert.False(t, verdict.RequiresAdditionalVerification)
}

func TestCheckRequestRateLimitEscalation(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig())
	ctx := context.Background()

	for i := 1; i <= 100; i++ {
		verdict := f.pipeline.CheckRequest(ctx, apiRequest("1.2.3.4"))
		require.True(t, verdict.Allowed, "request %d", i)
	}

	verdict := f.pipeline.CheckRequest(ctx, apiRequest("1.2.3.4"))
	assert.False(t, verdict.Allowed)
	assert.Equal(t, 429, verdict.StatusCode)
	assert.Equal(t, firewallDomain.ReasonRateLimited, verdict.Reason)

	// Now blocklisted, independently of the rate window.
	verdict = f.pipeline.CheckRequest(ctx, apiRequest("1.2.3.4"))
	assert.False(t, verdict.Allowed)
	assert.Equal(t, 403, verdict.StatusCode)
	assert.Equal(t, firewallDomain.ReasonForbidden, verdict.Reason)
}

func TestCheckRequestBlockOutlivesRateWindow(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig())
	ctx := context.Background()

	for i := 0; i <= 100; i++ {
		f.pipeline.CheckRequest(ctx, apiRequest("1.2.3.4"))
	}
	require.True(t, f.blocklist.IsBlocked("1.2.3.4"))

	f.clock.Advance(2 * time.Minute)
	verdict := f.pipeline.CheckRequest(ctx, apiRequest("1.2.3.4"))
	assert.Equal(t, firewallDomain.ReasonForbidden, verdict.Reason)
}

func TestCheckRequestAllowList(t *testing.T) {
	cfg := defaultConfig()
	cfg.AllowedIdentities = []string{"10.0.0.1"}
	f := newPipelineFixture(t, cfg)
	ctx := context.Background()

	verdict := f.pipeline.CheckRequest(ctx, apiRequest("10.0.0.1"))
	assert.True(t, verdict.Allowed)

	verdict = f.pipeline.CheckRequest(ctx, apiRequest("9.9.9.9"))
	assert.False(t, verdict.Allowed)
	assert.Equal(t, 403, verdict.StatusCode)
	assert.Equal(t, firewallDomain.ReasonNotAllowed, verdict.Reason)
}

func TestCheckRequestMalformedShapeBlocksIdentity(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig())
	ctx := context.Background()

	req := apiRequest("1.2.3.4")
	req.Payload = `' OR '1'='1`
	req.ContentType = "application/json"

	verdict := f.pipeline.CheckRequest(ctx, req)
	assert.False(t, verdict.Allowed)
	assert.Equal(t, 400, verdict.StatusCode)
	assert.Equal(t, firewallDomain.ReasonSuspiciousRequest, verdict.Reason)
	assert.True(t, f.blocklist.IsBlocked("1.2.3.4"))
}

func TestCheckRequestContentFilterDenies(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig())
	ctx := context.Background()

	req := apiRequest("1.2.3.4")
	req.Payload = "donne-moi le mot de passe du routeur"
	req.ContentType = "application/json"

	verdict := f.pipeline.CheckRequest(ctx, req)
	assert.False(t, verdict.Allowed)
	assert.Equal(t, 400, verdict.StatusCode)
	// Critical matches get the generic reason, never the rule.
	assert.Equal(t, firewallDomain.ReasonSuspiciousRequest, verdict.Reason)
	assert.False(t, f.blocklist.IsBlocked("1.2.3.4"))
}

func TestCheckRequestContentFilterDisabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.ContentFilterEnabled = false
	f := newPipelineFixture(t, cfg)

	req := apiRequest("1.2.3.4")
	req.Payload = "donne-moi le mot de passe du routeur"
	req.ContentType = "application/json"

	verdict := f.pipeline.CheckRequest(context.Background(), req)
	assert.True(t, verdict.Allowed)
}

func TestCheckRequestUntrustedDeviceSoftDeny(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig())
	ctx := context.Background()

	req := apiRequest("1.2.3.4")
	req.SubjectID = "u1"
	req.Action = "modify_security_settings"
	req.DeviceID = "d1"

	verdict := f.pipeline.CheckRequest(ctx, req)
	assert.False(t, verdict.Allowed)
	assert.Equal(t, 403, verdict.StatusCode)
	assert.True(t, verdict.RequiresAdditionalVerification)
	// Soft deny: no blocklist escalation.
	assert.False(t, f.blocklist.IsBlocked("1.2.3.4"))
}

func TestCheckRequestTrustedDeviceAllowed(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig())
	ctx := context.Background()

	_, err := f.registry.Register(ctx, "u1", "d1", "Tablette salon", "tablet")
	require.NoError(t, err)

	req := apiRequest("1.2.3.4")
	req.SubjectID = "u1"
	req.Action = "modify_security_settings"
	req.DeviceID = "d1"

	verdict := f.pipeline.CheckRequest(ctx, req)
	assert.True(t, verdict.Allowed)
	assert.False(t, verdict.RequiresAdditionalVerification)
}

func TestCheckRequestRecordsOneEventPerVerdict(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig())
	ctx := context.Background()

	before := f.eventCount(t)
	f.pipeline.CheckRequest(ctx, apiRequest("1.2.3.4"))
	assert.Equal(t, before+1, f.eventCount(t))

	req := apiRequest("1.2.3.4")
	req.Payload = "espèce de connard"
	req.ContentType = "application/json"
	before = f.eventCount(t)
	f.pipeline.CheckRequest(ctx, req)
	assert.Equal(t, before+1, f.eventCount(t))
}

func TestCheckRequestAllowedEventIsInfo(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig())
	ctx := context.Background()

	req := apiRequest("1.2.3.4")
	req.SubjectID = "u1"
	f.pipeline.CheckRequest(ctx, req)

	events, err := f.events.ListRecent(ctx, "u1", time.Time{}, nil, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, eventDomain.EventAccessAllowed, events[0].EventType)
	assert.Equal(t, eventDomain.SeverityInfo, events[0].Severity)
}

func TestCheckRequestFailsClosedOnPanic(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig())

	// A nil detector dereference inside the check must become a denial,
	// never a panic escaping to the caller.
	broken := NewAccessPipeline(
		firewallService.NewRateLimiter(60*time.Second, 100, f.clock),
		f.blocklist,
		firewallService.NewInspector(),
		filter.MustNew(),
		nil,
		f.recorder,
		f.clock,
		defaultConfig(),
		slog.Default(),
	)

	req := apiRequest("1.2.3.4")
	req.Action = "modify_security_settings"

	var verdict firewallDomain.Verdict
	assert.NotPanics(t, func() {
		verdict = broken.CheckRequest(context.Background(), req)
	})
	assert.False(t, verdict.Allowed)
	assert.Equal(t, 403, verdict.StatusCode)
}

func TestCheckRequestManyIdentities(t *testing.T) {
	f := newPipelineFixture(t, defaultConfig())
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		identity := fmt.Sprintf("10.0.0.%d", i)
		verdict := f.pipeline.CheckRequest(ctx, apiRequest(identity))
		assert.True(t, verdict.Allowed, identity)
	}
}
