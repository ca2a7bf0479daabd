package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/agro-storefront/internal/domain/cart"
	"github.com/example/agro-storefront/internal/domain/payment"
	"github.com/example/agro-storefront/internal/notification"
)

// State is what a session owns. It is only reachable inside Session.Do.
type State struct {
	Cart    *cart.Store
	Payment *payment.Attempt
}

// Session is one anonymous buyer. All reads and writes of its state are
// serialized by mu.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	state    State
	lastSeen atomic.Int64
	notices  notification.Inbox
}

func newSession(id string, store *cart.Store) *Session {
	now := time.Now()
	s := &Session{
		ID:        id,
		CreatedAt: now,
		state:     State{Cart: store},
	}
	s.lastSeen.Store(now.UnixNano())
	return s
}

// Do runs fn with exclusive access to the session state.
func (s *Session) Do(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return fn(&s.state)
}

func (s *Session) Notices() *notification.Inbox {
	return &s.notices
}

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

func (s *Session) snapshot() cart.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Cart.Snapshot()
}
