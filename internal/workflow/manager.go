package workflow

import (
	"sync"

	"github.com/google/uuid"

	"github.com/universalnewsoutlet-dev/universalnews/internal/model"
)

// Manager is the thread-safe registry of in-flight and finished runs.
// The coordinator owns each run's mutations; every mutation goes through
// Update so readers only ever observe the record under the lock.
type Manager struct {
	mu   sync.Mutex
	runs map[uuid.UUID]*model.Run
}

// NewManager returns an empty run registry.
func NewManager() *Manager {
	return &Manager{runs: make(map[uuid.UUID]*model.Run)}
}

// Create registers a fresh run. Registering the same id twice replaces the
// previous record.
func (m *Manager) Create(run *model.Run) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
}

// Get returns a snapshot of the run, or false when unknown.
func (m *Manager) Get(id uuid.UUID) (model.Run, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return model.Run{}, false
	}
	return run.Snapshot(), true
}

// Update applies fn to the run under the lock. Unknown ids are a no-op.
func (m *Manager) Update(id uuid.UUID, fn func(*model.Run)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if run, ok := m.runs[id]; ok {
		fn(run)
	}
}

// Drop releases the run record. Dropping an unknown id is a no-op.
func (m *Manager) Drop(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, id)
}

// Len returns the number of registered runs.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}
