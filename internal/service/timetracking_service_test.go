package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/alexanderramin/worktimer/internal/repository"
	"github.com/alexanderramin/worktimer/internal/testutil"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dayStart = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

type serviceFixture struct {
	svc   TimeTrackingService
	db    *sql.DB
	repo  *repository.SQLiteWorkSessionRepo
	clock *clockwork.FakeClock
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteWorkSessionRepo(database)
	clock := clockwork.NewFakeClockAt(dayStart)
	return serviceFixture{
		svc:   NewTimeTrackingService(repo, testutil.NewTestUoW(database), clock, time.UTC),
		db:    database,
		repo:  repo,
		clock: clock,
	}
}

func TestStartDay_CreatesSession(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	res, err := f.svc.StartDay(ctx)
	require.NoError(t, err)
	assert.False(t, res.AlreadyStarted)
	assert.Equal(t, domain.StatusInProgress, res.Session.Status)
	assert.Equal(t, int64(0), res.Session.NetSeconds)
	assert.Equal(t, dayStart, res.Session.StartedAt)

	rec, err := f.repo.GetByID(ctx, res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15", rec.Day)
}

func TestStartDay_ReturnsExistingOpenSession(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	first, err := f.svc.StartDay(ctx)
	require.NoError(t, err)

	f.clock.Advance(90 * time.Second)
	second, err := f.svc.StartDay(ctx)
	require.NoError(t, err)
	assert.True(t, second.AlreadyStarted)
	assert.Equal(t, first.Session.ID, second.Session.ID)
	assert.Equal(t, int64(90), second.Session.NetSeconds)

	assert.Equal(t, 1, testutil.CountSessions(t, f.db, "2025-06-15"))
}

func TestPauseResume_AccruesOnlyWorkingTime(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.StartDay(ctx)
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)
	paused, err := f.svc.Pause(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaused, paused.Status)
	assert.Equal(t, int64(600), paused.NetSeconds)

	f.clock.Advance(5 * time.Minute)
	resumed, err := f.svc.Resume(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, resumed.Status)
	assert.Equal(t, int64(600), resumed.NetSeconds)
	assert.Equal(t, int64(300), resumed.PauseSeconds)

	f.clock.Advance(2 * time.Minute)
	ended, err := f.svc.EndDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, ended.Status)
	assert.Equal(t, int64(720), ended.NetSeconds)
	require.NotNil(t, ended.EndedAt)
	assert.Equal(t, f.clock.Now(), *ended.EndedAt)
}

func TestEndDay_FromPausedClosesPause(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.StartDay(ctx)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.svc.Pause(ctx)
	require.NoError(t, err)
	f.clock.Advance(3 * time.Minute)

	ended, err := f.svc.EndDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(60), ended.NetSeconds)
	assert.Equal(t, int64(180), ended.PauseSeconds)
}

func TestTransitions_RejectInvalid(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Pause(ctx)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "pause with no open session")

	_, err = f.svc.StartDay(ctx)
	require.NoError(t, err)

	_, err = f.svc.Resume(ctx)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "resume while running")

	_, err = f.svc.Pause(ctx)
	require.NoError(t, err)
	_, err = f.svc.Pause(ctx)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "pause while paused")

	_, err = f.svc.EndDay(ctx)
	require.NoError(t, err)
	_, err = f.svc.EndDay(ctx)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "end after completion")
}

func TestSyncTime_RaisesButNeverLowersNet(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	res, err := f.svc.StartDay(ctx)
	require.NoError(t, err)
	id := res.Session.ID

	f.clock.Advance(100 * time.Second)
	synced, err := f.svc.SyncTime(ctx, domain.SyncPayload{SessionID: id, ElapsedSeconds: 40, Running: true, Timestamp: f.clock.Now()})
	require.NoError(t, err)
	assert.Equal(t, int64(100), synced.NetSeconds, "server-side accrual wins over a lower report")

	_, err = f.svc.Pause(ctx)
	require.NoError(t, err)
	f.clock.Advance(20 * time.Second)

	synced, err = f.svc.SyncTime(ctx, domain.SyncPayload{SessionID: id, ElapsedSeconds: 110, Timestamp: f.clock.Now()})
	require.NoError(t, err)
	assert.Equal(t, int64(110), synced.NetSeconds)
	assert.Equal(t, domain.StatusPaused, synced.Status)
}

func TestSyncTime_CappedAtWallTime(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	res, err := f.svc.StartDay(ctx)
	require.NoError(t, err)

	f.clock.Advance(30 * time.Second)
	synced, err := f.svc.SyncTime(ctx, domain.SyncPayload{SessionID: res.Session.ID, ElapsedSeconds: 5000, Running: true})
	require.NoError(t, err)
	assert.Equal(t, int64(30), synced.NetSeconds)
}

func TestSyncTime_UnknownSession(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.SyncTime(ctx, domain.SyncPayload{SessionID: "missing", ElapsedSeconds: 1})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.svc.StartDay(ctx)
	require.NoError(t, err)
	_, err = f.svc.SyncTime(ctx, domain.SyncPayload{SessionID: "other", ElapsedSeconds: 1})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSyncTime_EndedSessionIsNotFound(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	res, err := f.svc.StartDay(ctx)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.svc.EndDay(ctx)
	require.NoError(t, err)

	_, err = f.svc.SyncTime(ctx, domain.SyncPayload{SessionID: res.Session.ID, ElapsedSeconds: 120})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	rec, err := f.repo.GetByID(ctx, res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), rec.NetSeconds, "an ended session is never raised")
}

func TestGetStatus(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	st, err := f.svc.GetStatus(ctx)
	require.NoError(t, err)
	assert.False(t, st.HasActiveDay)
	assert.Equal(t, domain.StatusNotStarted, st.CurrentStatus)
	assert.Nil(t, st.Session)

	_, err = f.svc.StartDay(ctx)
	require.NoError(t, err)
	f.clock.Advance(1500 * time.Millisecond)

	st, err = f.svc.GetStatus(ctx)
	require.NoError(t, err)
	assert.True(t, st.HasActiveDay)
	assert.Equal(t, domain.StatusInProgress, st.CurrentStatus)
	assert.Equal(t, int64(1), st.Session.NetSeconds)

	f.clock.Advance(500 * time.Millisecond)
	st, err = f.svc.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Session.NetSeconds, "sub-second remainders add up across reads")

	_, err = f.svc.EndDay(ctx)
	require.NoError(t, err)

	st, err = f.svc.GetStatus(ctx)
	require.NoError(t, err)
	assert.False(t, st.HasActiveDay)
	assert.Equal(t, domain.StatusCompleted, st.CurrentStatus)
	require.NotNil(t, st.Session)
}

func TestGetStatus_CompletedYesterdayIsNotStarted(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.StartDay(ctx)
	require.NoError(t, err)
	_, err = f.svc.EndDay(ctx)
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)
	st, err := f.svc.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, st.CurrentStatus)
	assert.Nil(t, st.Session)
}

type recordingUseCaseObserver struct {
	events []UseCaseEvent
}

func (r *recordingUseCaseObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.events = append(r.events, e)
}

func TestTimeTrackingService_ObservesUseCases(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLiteWorkSessionRepo(database)
	obs := &recordingUseCaseObserver{}
	svc := NewTimeTrackingService(repo, testutil.NewTestUoW(database), clockwork.NewFakeClockAt(dayStart), nil, obs)
	ctx := context.Background()

	_, err := svc.StartDay(ctx)
	require.NoError(t, err)
	_, err = svc.Resume(ctx)
	require.Error(t, err)

	require.Len(t, obs.events, 2)
	assert.Equal(t, "start_day", obs.events[0].Name)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, false, obs.events[0].Fields["already_started"])
	assert.Equal(t, "resume", obs.events[1].Name)
	assert.False(t, obs.events[1].Success)
	assert.True(t, errors.Is(obs.events[1].Err, domain.ErrInvalidTransition))
}
