package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/worktimer/internal/remote"
	"github.com/alexanderramin/worktimer/internal/repository"
	"github.com/alexanderramin/worktimer/internal/service"
	"github.com/alexanderramin/worktimer/internal/snapshot"
	"github.com/alexanderramin/worktimer/internal/testutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

var errUnavailable = fmt.Errorf("%w: connection refused", remote.ErrRemoteUnavailable)

type recordingObserver struct {
	mu       sync.Mutex
	commands []CommandEvent
	syncs    []SyncEvent
}

func (r *recordingObserver) OnCommand(e CommandEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, e)
}

func (r *recordingObserver) OnSync(e SyncEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.syncs = append(r.syncs, e)
}

func (r *recordingObserver) Syncs(source SyncSource) []SyncEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []SyncEvent
	for _, e := range r.syncs {
		if e.Source == source {
			out = append(out, e)
		}
	}
	return out
}

// fixture runs an engine against the reference service on in-memory SQLite.
// Engine and service share one fake clock.
type fixture struct {
	clock   *clockwork.FakeClock
	svc     service.TimeTrackingService
	tracker *testutil.RecordingTracker
	snaps   snapshot.Store
	obs     *recordingObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	clock := clockwork.NewFakeClockAt(t0)
	repo := repository.NewSQLiteWorkSessionRepo(database)
	svc := service.NewTimeTrackingService(repo, testutil.NewTestUoW(database), clock, time.UTC)
	return &fixture{
		clock:   clock,
		svc:     svc,
		tracker: testutil.NewRecordingTracker(svc),
		snaps:   snapshot.NewMemoryStore(snapshot.Options{Clock: clock}),
		obs:     &recordingObserver{},
	}
}

func (f *fixture) engine(opts ...func(*Options)) *Engine {
	o := Options{
		Tracker:   f.tracker,
		Snapshots: f.snaps,
		Clock:     f.clock,
		Logger:    zerolog.Nop(),
		Observer:  f.obs,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return New(o)
}

// loaded returns an engine that has completed its initial load but runs no
// tickers, so tests drive the tick handlers themselves.
func (f *fixture) loaded(t *testing.T, opts ...func(*Options)) *Engine {
	t.Helper()
	e := f.engine(opts...)
	require.NoError(t, e.load(context.Background()))
	return e
}

// run advances the clock one second at a time for d, firing the display tick
// each second and the sync ticks on their intervals. Autosave runs before the
// primary tick when both are due.
func (f *fixture) run(e *Engine, d time.Duration) {
	ctx := context.Background()
	for i := time.Duration(0); i < d; i += time.Second {
		f.clock.Advance(time.Second)
		e.displayTick(ctx)
		since := f.clock.Since(t0)
		if since%e.autosaveEvery == 0 {
			e.autosaveTick(ctx)
		}
		if since%e.syncEvery == 0 {
			e.primaryTick(ctx)
		}
	}
}
