package application

import (
	"context"
	"slices"
	"sync"

	"salon-client/internal/domain"
)

// MemoryClientState keeps client state in process. It is the default backend
// and the one tests use.
type MemoryClientState struct {
	mu        sync.RWMutex
	favorites map[string][]string
	sessions  map[string]domain.Session
}

var _ ClientState = (*MemoryClientState)(nil)

func NewMemoryClientState() *MemoryClientState {
	return &MemoryClientState{
		favorites: map[string][]string{},
		sessions:  map[string]domain.Session{},
	}
}

func (m *MemoryClientState) LoadFavorites(_ context.Context, owner string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.favorites[owner]), nil
}

func (m *MemoryClientState) SaveFavorites(_ context.Context, owner string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favorites[owner] = slices.Clone(ids)
	return nil
}

func (m *MemoryClientState) LoadSession(_ context.Context, owner string) (domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[owner]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return s, nil
}

func (m *MemoryClientState) SaveSession(_ context.Context, owner string, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[owner] = s
	return nil
}

func (m *MemoryClientState) ClearSession(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, owner)
	return nil
}
