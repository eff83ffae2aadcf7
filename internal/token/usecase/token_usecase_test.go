package usecase

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maisonhub/sentinel/internal/clock"
	eventDomain "github.com/maisonhub/sentinel/internal/event/domain"
	tokenDomain "github.com/maisonhub/sentinel/internal/token/domain"
	tokenService "github.com/maisonhub/sentinel/internal/token/service"
)

type capturingRecorder struct {
	mu     sync.Mutex
	events []*eventDomain.SecurityEvent
}

func (r *capturingRecorder) Record(event *eventDomain.SecurityEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *capturingRecorder) Recent(_ context.Context, _ string, _ time.Time, _ []eventDomain.Severity) ([]*eventDomain.SecurityEvent, error) {
	return nil, nil
}

func (r *capturingRecorder) Start(_ context.Context) error {
	return nil
}

func (r *capturingRecorder) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, event := range r.events {
		types = append(types, event.EventType)
	}
	return types
}

func newTestTokenService(t *testing.T) (TokenService, *capturingRecorder, *clock.Fake) {
	t.Helper()
	signer, err := tokenService.NewHMACSigner([]byte("test-master-secret"))
	require.NoError(t, err)

	recorder := &capturingRecorder{}
	clk := clock.NewFake(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := NewTokenUseCase(signer, clk, time.Hour, recorder, slog.Default())
	return svc, recorder, clk
}

func TestIssueAndVerify(t *testing.T) {
	svc, recorder, _ := newTestTokenService(t)
	ctx := context.Background()

	token, err := svc.Issue(ctx, "user:alice", "unlock_door", "door:front", time.Minute)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	grant, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user:alice", grant.SubjectID)
	assert.Equal(t, "unlock_door", grant.Action)
	assert.Equal(t, "door:front", grant.TargetID)

	assert.Contains(t, recorder.eventTypes(), eventDomain.EventTokenIssued)
}

func TestVerifyUnknownToken(t *testing.T) {
	svc, recorder, _ := newTestTokenService(t)

	_, err := svc.Verify(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, tokenDomain.ErrGrantInvalid)
	assert.Contains(t, recorder.eventTypes(), eventDomain.EventTokenVerifyFailed)
}

func TestVerifyExpiryBoundary(t *testing.T) {
	svc, _, clk := newTestTokenService(t)
	ctx := context.Background()

	token, err := svc.Issue(ctx, "user:alice", "unlock_door", "door:front", 60*time.Second)
	require.NoError(t, err)

	clk.Advance(30 * time.Second)
	_, err = svc.Verify(ctx, token)
	assert.NoError(t, err)

	clk.Advance(31 * time.Second)
	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, tokenDomain.ErrGrantExpired)

	// The expired entry was evicted, so a retry sees an unknown token.
	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, tokenDomain.ErrGrantInvalid)
}

func TestVerifyExpiresExactlyAtDeadline(t *testing.T) {
	svc, _, clk := newTestTokenService(t)
	ctx := context.Background()

	token, err := svc.Issue(ctx, "user:alice", "unlock_door", "", 60*time.Second)
	require.NoError(t, err)

	clk.Advance(60 * time.Second)
	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, tokenDomain.ErrGrantExpired)
}

func TestIssueDefaultTTL(t *testing.T) {
	svc, _, clk := newTestTokenService(t)
	ctx := context.Background()

	token, err := svc.Issue(ctx, "user:alice", "unlock_door", "", 0)
	require.NoError(t, err)

	grant, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(time.Hour), grant.ExpiresAt)
}

func TestIssueInvalidInput(t *testing.T) {
	svc, _, _ := newTestTokenService(t)
	ctx := context.Background()

	_, err := svc.Issue(ctx, "", "unlock_door", "", 0)
	assert.Error(t, err)

	_, err = svc.Issue(ctx, "user:alice", "Not An Action", "", 0)
	assert.Error(t, err)
}

func TestRevoke(t *testing.T) {
	svc, _, _ := newTestTokenService(t)
	ctx := context.Background()

	token, err := svc.Issue(ctx, "user:alice", "unlock_door", "", time.Hour)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, token))

	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, tokenDomain.ErrGrantInvalid)

	assert.ErrorIs(t, svc.Revoke(ctx, token), tokenDomain.ErrGrantInvalid)
}

func TestSweepEvictsExpiredOnly(t *testing.T) {
	svc, _, clk := newTestTokenService(t)
	ctx := context.Background()

	short, err := svc.Issue(ctx, "user:alice", "unlock_door", "door:front", time.Minute)
	require.NoError(t, err)
	long, err := svc.Issue(ctx, "user:alice", "lock_door", "door:front", time.Hour)
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	removed := svc.Sweep(clk.Now())
	assert.Equal(t, 1, removed)

	_, err = svc.Verify(ctx, short)
	assert.ErrorIs(t, err, tokenDomain.ErrGrantInvalid)
	_, err = svc.Verify(ctx, long)
	assert.NoError(t, err)
}

func TestConcurrentVerify(t *testing.T) {
	svc, _, _ := newTestTokenService(t)
	ctx := context.Background()

	token, err := svc.Issue(ctx, "user:alice", "unlock_door", "", time.Hour)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, verr := svc.Verify(ctx, token)
			assert.NoError(t, verr)
		}()
	}
	wg.Wait()
}
