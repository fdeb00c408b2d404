package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const sweepInterval = time.Minute

// Manager owns the live sessions, keyed by session id. Sessions are
// transient by design: they exist from creation until ReturnHome or until
// they sit idle past the TTL and the sweeper reclaims them.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	idleTTL  time.Duration
	log      zerolog.Logger
}

// NewManager creates an empty session manager.
func NewManager(idleTTL time.Duration, log zerolog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		log:      log.With().Str("component", "session_manager").Logger(),
	}
}

// Create registers a fresh session built from the given dependencies.
func (m *Manager) Create(deps Deps) *Session {
	s := New(deps)
	m.mu.Lock()
	m.sessions[s.ID().String()] = s
	m.mu.Unlock()
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove drops a session from the registry.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Start runs the idle sweeper until the context is cancelled.
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.LastTouched().Before(cutoff) {
			delete(m.sessions, id)
			m.log.Debug().Str("session_id", id).Msg("Reclaimed idle session")
		}
	}
}
