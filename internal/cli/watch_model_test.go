package cli

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alexanderramin/worktimer/internal/domain"
	"github.com/alexanderramin/worktimer/internal/engine"
	"github.com/alexanderramin/worktimer/internal/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEngine applies commands instantly and records them.
type stubEngine struct {
	mu    sync.Mutex
	view  engine.View
	calls []domain.Command
	err   error
}

func newStubEngine(status domain.SessionStatus) *stubEngine {
	s := &stubEngine{}
	s.set(status)
	return s
}

func (s *stubEngine) set(status domain.SessionStatus) {
	s.view = engine.View{
		Status:       status,
		HasActiveDay: status.Active(),
		CanStart:     domain.Allowed(status, domain.CommandStart),
		CanPause:     domain.Allowed(status, domain.CommandPause),
		CanResume:    domain.Allowed(status, domain.CommandResume),
		CanEnd:       domain.Allowed(status, domain.CommandEnd),
	}
}

func (s *stubEngine) State() engine.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *stubEngine) apply(cmd domain.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, cmd)
	if s.err != nil {
		return s.err
	}
	next, err := domain.Next(s.view.Status, cmd)
	if err != nil {
		return err
	}
	s.set(next)
	return nil
}

func (s *stubEngine) StartDay(context.Context) error { return s.apply(domain.CommandStart) }
func (s *stubEngine) Pause(context.Context) error    { return s.apply(domain.CommandPause) }
func (s *stubEngine) Resume(context.Context) error   { return s.apply(domain.CommandResume) }
func (s *stubEngine) EndDay(context.Context) error   { return s.apply(domain.CommandEnd) }

func (s *stubEngine) Calls() []domain.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Command(nil), s.calls...)
}

func newWatchDriver(t *testing.T, eng *stubEngine) *teatest.Driver {
	t.Helper()
	d := teatest.New(t, newWatchModel(context.Background(), eng))
	d.Init()
	return d
}

func TestWatchModel_StartPauseResume(t *testing.T) {
	eng := newStubEngine(domain.StatusNotStarted)
	d := newWatchDriver(t, eng)
	assert.Contains(t, d.View(), "NOT STARTED")

	d.Press('s')
	assert.Contains(t, d.View(), "IN PROGRESS")

	d.Press('p')
	assert.Contains(t, d.View(), "PAUSED")

	d.Press('r')
	assert.Contains(t, d.View(), "IN PROGRESS")

	assert.Equal(t, []domain.Command{domain.CommandStart, domain.CommandPause, domain.CommandResume}, eng.Calls())
}

func TestWatchModel_DisabledKeysDoNothing(t *testing.T) {
	eng := newStubEngine(domain.StatusNotStarted)
	d := newWatchDriver(t, eng)

	d.Press('p')
	d.Press('r')
	d.Press('e')
	assert.Empty(t, eng.Calls())
	assert.NotContains(t, d.View(), "End the work day?")
}

func TestWatchModel_EndNeedsConfirmation(t *testing.T) {
	eng := newStubEngine(domain.StatusInProgress)
	d := newWatchDriver(t, eng)

	d.Press('e')
	assert.Contains(t, d.View(), "End the work day?")
	d.Press('n')
	assert.NotContains(t, d.View(), "End the work day?")
	assert.Empty(t, eng.Calls())

	d.Press('e')
	d.Press('y')
	assert.Equal(t, []domain.Command{domain.CommandEnd}, eng.Calls())
	assert.Contains(t, d.View(), "COMPLETED")
}

func TestWatchModel_ShowsCommandError(t *testing.T) {
	eng := newStubEngine(domain.StatusInProgress)
	eng.err = errors.New("service unavailable")
	d := newWatchDriver(t, eng)

	d.Press('p')
	assert.Contains(t, d.View(), "service unavailable")
	assert.Contains(t, d.View(), "IN PROGRESS")
}

func TestWatchModel_Quit(t *testing.T) {
	d := newWatchDriver(t, newStubEngine(domain.StatusPaused))
	d.Press('q')
	require.True(t, d.Quitting)
}
