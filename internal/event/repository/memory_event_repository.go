// Package repository provides security event persistence implementations.
// The in-memory repository is the authoritative evidence source for the
// pipeline; the SQL repositories are durable mirrors written off the
// decision path.
package repository

import (
	"context"
	"sync"
	"time"

	eventDomain "github.com/maisonhub/sentinel/internal/event/domain"
)

// MemoryEventRepository stores security events in a capacity-bounded,
// mutex-guarded slice. Single-process only; events do not survive restarts.
type MemoryEventRepository struct {
	mu       sync.RWMutex
	events   []*eventDomain.SecurityEvent
	capacity int
}

// NewMemoryEventRepository creates an in-memory event repository holding at
// most capacity events (oldest evicted first). A non-positive capacity
// defaults to 10000.
func NewMemoryEventRepository(capacity int) *MemoryEventRepository {
	if capacity <= 0 {
		capacity = 10000
	}
	return &MemoryEventRepository{
		events:   make([]*eventDomain.SecurityEvent, 0, 128),
		capacity: capacity,
	}
}

// Create appends an event. Never returns an error; eviction of the oldest
// entry keeps memory bounded.
func (m *MemoryEventRepository) Create(_ context.Context, event *eventDomain.SecurityEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
	if len(m.events) > m.capacity {
		m.events = m.events[len(m.events)-m.capacity:]
	}
	return nil
}

// ListRecent returns events for the subject created at or after since, with
// one of the given severities, newest first. An empty severities slice
// matches all severities. A limit <= 0 means no limit.
func (m *MemoryEventRepository) ListRecent(
	_ context.Context,
	subjectID string,
	since time.Time,
	severities []eventDomain.Severity,
	limit int,
) ([]*eventDomain.SecurityEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]*eventDomain.SecurityEvent, 0)
	// Walk backwards so results come out newest-first.
	for i := len(m.events) - 1; i >= 0; i-- {
		event := m.events[i]
		if event.CreatedAt.Before(since) {
			continue
		}
		if subjectID != "" && (event.SubjectID == nil || *event.SubjectID != subjectID) {
			continue
		}
		if !severityMatches(event.Severity, severities) {
			continue
		}
		matches = append(matches, event)
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	return matches, nil
}

// DeleteOlderThan removes events created before the cutoff and returns the
// number removed.
func (m *MemoryEventRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.events[:0]
	var removed int64
	for _, event := range m.events {
		if event.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, event)
	}
	m.events = kept
	return removed, nil
}

// severityMatches reports whether severity is in the wanted set (empty set
// matches everything).
func severityMatches(severity eventDomain.Severity, wanted []eventDomain.Severity) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if severity == w {
			return true
		}
	}
	return false
}
