package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestNext_DefinedEdges(t *testing.T) {
	cases := []struct {
		from SessionStatus
		cmd  Command
		to   SessionStatus
	}{
		{StatusNotStarted, CommandStart, StatusInProgress},
		{StatusInProgress, CommandPause, StatusPaused},
		{StatusPaused, CommandResume, StatusInProgress},
		{StatusInProgress, CommandEnd, StatusCompleted},
		{StatusPaused, CommandEnd, StatusCompleted},
		{StatusCompleted, CommandStart, StatusInProgress},
	}
	for _, tc := range cases {
		to, err := Next(tc.from, tc.cmd)
		require.NoError(t, err, "%s --%s-->", tc.from, tc.cmd)
		assert.Equal(t, tc.to, to)
		assert.True(t, Allowed(tc.from, tc.cmd))
	}
}

func TestNext_RejectsUndefinedEdges(t *testing.T) {
	cases := []struct {
		from SessionStatus
		cmd  Command
	}{
		{StatusNotStarted, CommandPause},
		{StatusNotStarted, CommandResume},
		{StatusNotStarted, CommandEnd},
		{StatusInProgress, CommandStart},
		{StatusInProgress, CommandResume},
		{StatusPaused, CommandStart},
		{StatusPaused, CommandPause},
		{StatusCompleted, CommandPause},
		{StatusCompleted, CommandResume},
		{StatusCompleted, CommandEnd},
	}
	for _, tc := range cases {
		to, err := Next(tc.from, tc.cmd)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, tc.from, to, "state must not change on rejection")
		assert.False(t, Allowed(tc.from, tc.cmd))
	}
}

func TestSessionStatus_Active(t *testing.T) {
	assert.False(t, StatusNotStarted.Active())
	assert.True(t, StatusInProgress.Active())
	assert.True(t, StatusPaused.Active())
	assert.False(t, StatusCompleted.Active())
	assert.False(t, SessionStatus("bogus").Valid())
}

func TestLocalSnapshot_Expired(t *testing.T) {
	s := LocalSnapshot{SavedAtEpochMs: testNow.UnixMilli()}
	assert.False(t, s.Expired(testNow.Add(24*time.Hour), 24*time.Hour))
	assert.True(t, s.Expired(testNow.Add(24*time.Hour+time.Millisecond), 24*time.Hour))
}

func TestLocalSnapshot_ProjectedElapsed(t *testing.T) {
	running := LocalSnapshot{BaseElapsedSeconds: 40, IsRunning: true, SavedAtEpochMs: testNow.UnixMilli()}
	assert.Equal(t, int64(52), running.ProjectedElapsed(testNow.Add(12500*time.Millisecond)))

	paused := running
	paused.IsRunning = false
	assert.Equal(t, int64(40), paused.ProjectedElapsed(testNow.Add(time.Hour)))

	assert.Equal(t, int64(40), running.ProjectedElapsed(testNow.Add(-time.Minute)), "clock going backwards must not subtract")
}
