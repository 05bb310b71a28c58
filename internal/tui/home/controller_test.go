package home

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/ticks/internal/api"
	"github.com/thenoetrevino/ticks/internal/models"
	"github.com/thenoetrevino/ticks/internal/services/workitem"
	"github.com/thenoetrevino/ticks/internal/tui/state"
)

// fakeWorkItems is a workitem.Service whose claims can be held open
type fakeWorkItems struct {
	mu     sync.Mutex
	claims []string
	issues []models.Issue
	err    error
	gate   chan struct{}
}

func (f *fakeWorkItems) ListUnassigned(context.Context, string) ([]models.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Issue(nil), f.issues...), nil
}

func (f *fakeWorkItems) Claim(_ context.Context, _ string, issue models.Issue, userID string) error {
	if userID == "" {
		return workitem.ErrMissingUser
	}
	f.mu.Lock()
	f.claims = append(f.claims, issue.ID)
	gate, err := f.gate, f.err
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeWorkItems) claimCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.claims)
}

var issue = models.Issue{ID: "i1", ProjectID: "p1", Name: "Fix login", SequenceID: 7}

func TestClaim_SuccessNotifies(t *testing.T) {
	svc := &fakeWorkItems{}
	notes := state.NewNotificationState()
	ctrl := NewUnassignedController("acme", "u1", svc, notes, nil)

	require.NoError(t, ctrl.Claim(context.Background(), issue))

	latest, ok := notes.Latest()
	require.True(t, ok)
	assert.Equal(t, state.LevelInfo, latest.Level)
	assert.Equal(t, ClaimSucceededMessage, latest.Message)
	assert.Empty(t, ctrl.ClaimInFlight())
}

func TestClaim_ServerMessageOrFallback(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &api.APIError{Kind: api.KindServerRejection, StatusCode: 400, Message: "Work item is archived"}, "Work item is archived"},
		{"plain error", errors.New("boom"), ClaimFailedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeWorkItems{err: tt.err}
			notes := state.NewNotificationState()
			ctrl := NewUnassignedController("acme", "u1", svc, notes, nil)

			err := ctrl.Claim(context.Background(), issue)
			require.ErrorIs(t, err, tt.err)

			latest, _ := notes.Latest()
			assert.Equal(t, state.LevelError, latest.Level)
			assert.Equal(t, tt.want, latest.Message)
		})
	}
}

func TestClaim_OneAtATime(t *testing.T) {
	svc := &fakeWorkItems{gate: make(chan struct{})}
	ctrl := NewUnassignedController("acme", "u1", svc, nil, nil)

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Claim(context.Background(), issue)
	}()
	require.Eventually(t, func() bool { return ctrl.ClaimInFlight() == "i1" }, 2*time.Second, 2*time.Millisecond)

	other := models.Issue{ID: "i2", ProjectID: "p1"}
	assert.ErrorIs(t, ctrl.Claim(context.Background(), other), ErrClaimInFlight)

	close(svc.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, svc.claimCount())
	assert.Empty(t, ctrl.ClaimInFlight())
}

func TestClaim_MissingUserExplainsConfig(t *testing.T) {
	notes := state.NewNotificationState()
	ctrl := NewUnassignedController("acme", "", &fakeWorkItems{}, notes, nil)

	err := ctrl.Claim(context.Background(), issue)
	assert.ErrorIs(t, err, workitem.ErrMissingUser)

	latest, _ := notes.Latest()
	assert.Contains(t, latest.Message, "user.id")
}

func TestClaim_ClosedDiscardsOutcome(t *testing.T) {
	svc := &fakeWorkItems{gate: make(chan struct{})}
	notes := state.NewNotificationState()
	ctrl := NewUnassignedController("acme", "u1", svc, notes, nil)

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Claim(context.Background(), issue)
	}()
	require.Eventually(t, func() bool { return ctrl.ClaimInFlight() != "" }, 2*time.Second, 2*time.Millisecond)

	ctrl.Close()
	close(svc.gate)
	<-done

	assert.False(t, notes.HasAny())
}
