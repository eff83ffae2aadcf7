package usecase

import (
	"context"
	"time"

	firewallDomain "github.com/maisonhub/sentinel/internal/firewall/domain"
	"github.com/maisonhub/sentinel/internal/metrics"
)

// metricsPipeline decorates a Pipeline with decision counters and latency
// histograms.
type metricsPipeline struct {
	next    Pipeline
	metrics metrics.DecisionMetrics
}

// NewMetricsPipeline wraps the pipeline with instrumentation.
func NewMetricsPipeline(next Pipeline, m metrics.DecisionMetrics) Pipeline {
	return &metricsPipeline{
		next:    next,
		metrics: m,
	}
}

// CheckRequest delegates and records the outcome.
func (p *metricsPipeline) CheckRequest(ctx context.Context, req *firewallDomain.Request) firewallDomain.Verdict {
	start := time.Now()
	verdict := p.next.CheckRequest(ctx, req)

	outcome := outcomeLabel(verdict)
	p.metrics.RecordDecision(ctx, req.Action, "pipeline", outcome)
	p.metrics.RecordDuration(ctx, req.Action, time.Since(start), outcome)
	return verdict
}

func outcomeLabel(verdict firewallDomain.Verdict) string {
	switch {
	case verdict.Allowed:
		return "allowed"
	case verdict.RequiresAdditionalVerification:
		return "verification_required"
	default:
		return "denied"
	}
}
