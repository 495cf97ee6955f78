package snapshot

import (
	"context"
	"sync"

	"github.com/alexanderramin/worktimer/internal/domain"
)

// MemoryStore keeps the snapshot in process memory.
type MemoryStore struct {
	opts Options

	mu   sync.Mutex
	snap *domain.LocalSnapshot
}

func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{opts: opts.withDefaults()}
}

func (m *MemoryStore) Write(_ context.Context, s domain.LocalSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = &s
	return nil
}

func (m *MemoryStore) Read(_ context.Context) (*domain.LocalSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return nil, nil
	}
	if err := checkFresh(*m.snap, m.opts.Clock.Now(), m.opts.TTL); err != nil {
		m.snap = nil
		return nil, nil
	}
	out := *m.snap
	return &out, nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	return nil
}
