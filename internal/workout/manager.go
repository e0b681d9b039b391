package workout

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session identifier is unknown to the
// manager, typically because the session was already finished.
var ErrSessionNotFound = errors.New("session not found")

// Manager tracks the live sessions of the process and hands them out by
// identifier. Each individual session is still driven by a single caller;
// the manager only makes the registry itself safe for concurrent handlers.
type Manager struct {
	repo Repository

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a Manager backed by the given repository.
func NewManager(repo Repository) *Manager {
	return &Manager{
		repo:     repo,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Start loads a new session for a day and registers it.
func (m *Manager) Start(ctx context.Context, day string) (*Session, error) {
	s, err := Load(ctx, m.repo, day)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns a live session by identifier.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Finish finishes a session and drops it from the registry. The session stays
// registered when Finish fails so the caller can retry or inspect it.
func (m *Manager) Finish(ctx context.Context, id uuid.UUID) (*Summary, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	summary, err := s.Finish(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return summary, nil
}
