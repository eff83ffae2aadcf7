package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventDomain "github.com/maisonhub/sentinel/internal/event/domain"
)

func newEvent(subject string, severity eventDomain.Severity, createdAt time.Time) *eventDomain.SecurityEvent {
	return eventDomain.NewSecurityEvent(eventDomain.EventAccessDenied, severity, createdAt).
		WithSubject(subject)
}

func TestMemoryEventRepository_ListRecent(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := NewMemoryEventRepository(0)

	// Mixed subjects, severities, and ages.
	require.NoError(t, repo.Create(ctx, newEvent("u1", eventDomain.SeverityInfo, base)))
	require.NoError(t, repo.Create(ctx, newEvent("u1", eventDomain.SeverityWarning, base.Add(1*time.Minute))))
	require.NoError(t, repo.Create(ctx, newEvent("u2", eventDomain.SeverityWarning, base.Add(2*time.Minute))))
	require.NoError(t, repo.Create(ctx, newEvent("u1", eventDomain.SeverityCritical, base.Add(3*time.Minute))))
	require.NoError(t, repo.Create(ctx, newEvent("u1", eventDomain.SeverityError, base.Add(-2*time.Hour))))

	t.Run("FiltersBySubjectSinceAndSeverity", func(t *testing.T) {
		events, err := repo.ListRecent(
			ctx,
			"u1",
			base.Add(-time.Hour),
			eventDomain.EvidenceSeverities(),
			0,
		)
		require.NoError(t, err)
		require.Len(t, events, 2)
		// Newest first.
		assert.Equal(t, eventDomain.SeverityCritical, events[0].Severity)
		assert.Equal(t, eventDomain.SeverityWarning, events[1].Severity)
	})

	t.Run("EmptySeveritiesMatchAll", func(t *testing.T) {
		events, err := repo.ListRecent(ctx, "u1", base.Add(-time.Hour), nil, 0)
		require.NoError(t, err)
		assert.Len(t, events, 3)
	})

	t.Run("LimitTruncatesNewestFirst", func(t *testing.T) {
		events, err := repo.ListRecent(ctx, "u1", base.Add(-time.Hour), nil, 1)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, eventDomain.SeverityCritical, events[0].Severity)
	})

	t.Run("UnknownSubjectReturnsEmpty", func(t *testing.T) {
		events, err := repo.ListRecent(ctx, "nobody", base.Add(-time.Hour), nil, 0)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestMemoryEventRepository_CapacityEvictsOldest(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := NewMemoryEventRepository(3)

	for i := 0; i < 5; i++ {
		event := newEvent("u1", eventDomain.SeverityInfo, base.Add(time.Duration(i)*time.Second))
		event.Details = map[string]any{"seq": fmt.Sprintf("%d", i)}
		require.NoError(t, repo.Create(ctx, event))
	}

	events, err := repo.ListRecent(ctx, "u1", base, nil, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "4", events[0].Details["seq"])
	assert.Equal(t, "2", events[2].Details["seq"])
}

func TestMemoryEventRepository_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := NewMemoryEventRepository(0)

	require.NoError(t, repo.Create(ctx, newEvent("u1", eventDomain.SeverityInfo, base.Add(-48*time.Hour))))
	require.NoError(t, repo.Create(ctx, newEvent("u1", eventDomain.SeverityInfo, base)))

	removed, err := repo.DeleteOlderThan(ctx, base.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	events, err := repo.ListRecent(ctx, "u1", time.Time{}, nil, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
