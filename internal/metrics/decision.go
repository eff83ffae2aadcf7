package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DecisionMetrics records access pipeline decisions and their latencies.
// The check label identifies the pipeline stage that terminated the decision
// (e.g., "rate_check", "content_check") and outcome is "allowed" or "denied".
type DecisionMetrics interface {
	// RecordDecision records a single pipeline verdict.
	RecordDecision(ctx context.Context, action, check, outcome string)

	// RecordDuration records the time spent reaching a verdict.
	RecordDuration(ctx context.Context, action string, duration time.Duration, outcome string)
}

// decisionMetrics implements DecisionMetrics using OpenTelemetry metrics.
type decisionMetrics struct {
	decisionCounter metric.Int64Counter
	durationHisto   metric.Float64Histogram
}

// NewDecisionMetrics creates a DecisionMetrics implementation using the provided meter provider.
// The namespace parameter is used as a prefix for all metric names.
func NewDecisionMetrics(meterProvider metric.MeterProvider, namespace string) (DecisionMetrics, error) {
	meter := meterProvider.Meter(namespace)

	decisionCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_decisions_total", namespace),
		metric.WithDescription("Total number of access pipeline decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create decision counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_decision_duration_seconds", namespace),
		metric.WithDescription("Duration of access pipeline decisions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &decisionMetrics{
		decisionCounter: decisionCounter,
		durationHisto:   durationHisto,
	}, nil
}

// RecordDecision increments the decision counter with action, check, and outcome labels.
func (d *decisionMetrics) RecordDecision(ctx context.Context, action, check, outcome string) {
	d.decisionCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("action", action),
			attribute.String("check", check),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordDuration records the decision latency in seconds with action and outcome labels.
func (d *decisionMetrics) RecordDuration(
	ctx context.Context,
	action string,
	duration time.Duration,
	outcome string,
) {
	d.durationHisto.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("action", action),
			attribute.String("outcome", outcome),
		),
	)
}

// NoOpDecisionMetrics is a no-op implementation for when metrics are disabled.
type NoOpDecisionMetrics struct{}

// NewNoOpDecisionMetrics creates a no-op DecisionMetrics implementation.
func NewNoOpDecisionMetrics() DecisionMetrics {
	return &NoOpDecisionMetrics{}
}

// RecordDecision does nothing when metrics are disabled.
func (NoOpDecisionMetrics) RecordDecision(context.Context, string, string, string) {}

// RecordDuration does nothing when metrics are disabled.
func (NoOpDecisionMetrics) RecordDuration(context.Context, string, time.Duration, string) {}
