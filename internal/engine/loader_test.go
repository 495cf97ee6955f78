package engine

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/alexanderramin/worktimer/internal/remote"
	"github.com/alexanderramin/worktimer/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NoActiveDay(t *testing.T) {
	f := newFixture(t)
	e := f.loaded(t)

	v := e.State()
	assert.Equal(t, domain.StatusNotStarted, v.Status)
	assert.Equal(t, int64(0), v.ElapsedSeconds)
	assert.False(t, v.Provisional)
	assert.True(t, v.CanStart)
	assert.False(t, v.CanPause)
	assert.False(t, v.CanResume)
	assert.False(t, v.CanEnd)
	assert.Equal(t, ReminderView{Status: domain.StatusNotStarted}, e.Reminder())
	assert.Equal(t, 1, f.tracker.Count(testutil.OpGetStatus))
}

func TestLoad_RemoteRunningStartsCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.StartDay(ctx)
	require.NoError(t, err)
	f.clock.Advance(100 * time.Second)

	e := f.loaded(t)
	v := e.State()
	assert.Equal(t, domain.StatusInProgress, v.Status)
	assert.Equal(t, int64(100), v.ElapsedSeconds)
	assert.True(t, v.CanPause)
	assert.True(t, v.CanEnd)
	assert.Equal(t, ReminderView{Status: domain.StatusInProgress, HasActiveDay: true}, e.Reminder())

	f.clock.Advance(5 * time.Second)
	assert.Equal(t, int64(105), e.State().ElapsedSeconds)

	snap, err := f.snaps.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.True(t, snap.IsRunning)
	assert.Equal(t, v.SessionID, snap.SessionID)
}

func TestLoad_RemotePausedFreezesCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.StartDay(ctx)
	require.NoError(t, err)
	f.clock.Advance(100 * time.Second)
	_, err = f.svc.Pause(ctx)
	require.NoError(t, err)
	f.clock.Advance(time.Hour)

	e := f.loaded(t)
	v := e.State()
	assert.Equal(t, domain.StatusPaused, v.Status)
	assert.Equal(t, int64(100), v.ElapsedSeconds)
	assert.True(t, v.CanResume)

	f.clock.Advance(time.Minute)
	assert.Equal(t, int64(100), e.State().ElapsedSeconds)

	snap, err := f.snaps.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.False(t, snap.IsRunning)
	assert.Equal(t, int64(100), snap.BaseElapsedSeconds)
}

func TestLoad_RemoteCompletedToday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.StartDay(ctx)
	require.NoError(t, err)
	f.clock.Advance(300 * time.Second)
	_, err = f.svc.EndDay(ctx)
	require.NoError(t, err)

	e := f.loaded(t)
	v := e.State()
	assert.Equal(t, domain.StatusCompleted, v.Status)
	assert.Equal(t, int64(300), v.ElapsedSeconds)
	assert.False(t, v.HasActiveDay)
	assert.True(t, v.CanStart)

	snap, err := f.snaps.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestLoad_RemoteWinsOverLocalSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clock.Advance(40 * time.Second)
	require.NoError(t, f.snaps.Write(ctx, domain.LocalSnapshot{
		BaseElapsedSeconds: 40,
		IsRunning:          true,
		SavedAtEpochMs:     f.clock.Now().UnixMilli(),
		SessionID:          "local-only",
	}))

	e := f.engine()
	var provisional View
	f.tracker.Before = func(op string) {
		if op == testutil.OpGetStatus {
			provisional = e.State()
		}
	}
	require.NoError(t, e.load(ctx))

	assert.True(t, provisional.Provisional)
	assert.Equal(t, int64(40), provisional.ElapsedSeconds)
	assert.False(t, provisional.CanStart, "controls stay disabled until the remote answers")

	v := e.State()
	assert.Equal(t, domain.StatusNotStarted, v.Status)
	assert.Equal(t, int64(0), v.ElapsedSeconds)
	assert.Empty(t, v.SessionID)
	assert.False(t, v.Provisional)

	snap, err := f.snaps.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap, "remote reported no active day, so the snapshot is discarded")
}

func TestLoad_FailureThenRecovery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.tracker.Fail(testutil.OpGetStatus, errUnavailable)

	e := f.engine()
	err := e.load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, remote.ErrRemoteUnavailable)

	v := e.State()
	assert.True(t, v.Provisional)
	assert.ErrorIs(t, v.LoadErr, remote.ErrRemoteUnavailable)
	assert.False(t, v.CanStart)

	err = e.StartDay(ctx)
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.ErrorIs(t, err, remote.ErrRemoteUnavailable)
	assert.Equal(t, 0, f.tracker.Count(testutil.OpStartDay), "commands fail before reaching the remote")

	// The primary tick keeps retrying the load.
	e.primaryTick(ctx)
	assert.Equal(t, 2, f.tracker.Count(testutil.OpGetStatus))

	f.tracker.Heal(testutil.OpGetStatus)
	e.primaryTick(ctx)
	v = e.State()
	assert.False(t, v.Provisional)
	assert.NoError(t, v.LoadErr)
	require.NoError(t, e.StartDay(ctx))
}

func TestReload_OnDemand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.tracker.Fail(testutil.OpGetStatus, errUnavailable)

	e := f.engine()
	require.Error(t, e.load(ctx))

	f.tracker.Heal(testutil.OpGetStatus)
	_, err := f.svc.StartDay(ctx)
	require.NoError(t, err)
	f.clock.Advance(12 * time.Second)

	require.NoError(t, e.Reload(ctx))
	v := e.State()
	assert.Equal(t, domain.StatusInProgress, v.Status)
	assert.Equal(t, int64(12), v.ElapsedSeconds)
}

func TestLoad_ProvisionalFromPausedSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.snaps.Write(ctx, domain.LocalSnapshot{
		BaseElapsedSeconds: 75,
		SavedAtEpochMs:     f.clock.Now().Add(-time.Hour).UnixMilli(),
	}))
	f.tracker.Fail(testutil.OpGetStatus, errUnavailable)

	e := f.engine()
	require.Error(t, e.load(ctx))

	v := e.State()
	assert.True(t, v.Provisional)
	assert.Equal(t, int64(75), v.ElapsedSeconds, "a paused snapshot does not accrue")
}
