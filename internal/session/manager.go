package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/example/agro-storefront/internal/domain/cart"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrSessionNotFound = errors.New("session not found")

// Manager tracks the resident sessions of this process.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	snapshots SnapshotStore
	ttl       time.Duration
	log       zerolog.Logger
}

func NewManager(snapshots SnapshotStore, ttl time.Duration, log zerolog.Logger) *Manager {
	if snapshots == nil {
		snapshots = NewMemorySnapshotStore()
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		snapshots: snapshots,
		ttl:       ttl,
		log:       log,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create starts a session with an empty cart.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	s := newSession(uuid.New().String(), cart.NewStore())

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	if err := m.Save(ctx, s); err != nil {
		return nil, err
	}
	m.log.Debug().Str("session_id", s.ID).Msg("session created")
	return s, nil
}

// Get returns a resident session, or rebuilds it from its cart snapshot when
// another replica created it.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch()
		return s, nil
	}

	snap, err := m.snapshots.Load(ctx, id)
	if errors.Is(err, ErrSnapshotNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[id]; ok {
		existing.touch()
		return existing, nil
	}
	// Payment attempts are not part of the snapshot, so the restored session
	// starts with the payment dialog closed.
	store := cart.Restore(snap)
	store.ClosePayment()
	s = newSession(id, store)
	m.sessions[id] = s
	m.log.Debug().Str("session_id", id).Int("lines", len(snap.Items)).Msg("session restored from snapshot")
	return s, nil
}

// Save writes the cart snapshot of s, refreshing its TTL.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	return m.snapshots.Save(ctx, s.ID, s.snapshot(), m.ttl)
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return m.snapshots.Delete(ctx, id)
}

// Sweep drops resident sessions idle for longer than the TTL and reports how
// many were removed. Their snapshots expire on their own.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen()) > m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.log.Info().Int("removed", removed).Int("resident", len(m.sessions)).Msg("expired idle sessions")
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
