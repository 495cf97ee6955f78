package engine

import (
	"github.com/alexanderramin/worktimer/internal/counter"
	"github.com/alexanderramin/worktimer/internal/domain"
)

// txn holds the state a command started from. Status and session are never
// changed before the remote confirms, so rollback only has to undo the
// optimistic counter change, but it restores all three together.
type txn struct {
	e       *Engine
	status  domain.SessionStatus
	session *domain.WorkSession
	counter counter.State
}

// beginLocked must be called with e.mu held.
func (e *Engine) beginLocked() *txn {
	return &txn{
		e:       e,
		status:  e.status,
		session: e.session,
		counter: e.counter.Capture(),
	}
}

func (t *txn) commit(s *domain.WorkSession) {
	t.e.mu.Lock()
	defer t.e.mu.Unlock()
	t.e.adoptLocked(s)
	t.e.lastSyncAt = t.e.clock.Now()
}

func (t *txn) rollback() {
	t.e.mu.Lock()
	defer t.e.mu.Unlock()
	t.e.status = t.status
	t.e.session = t.session
	t.e.counter.Restore(t.counter)
}
