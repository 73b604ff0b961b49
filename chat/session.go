package chat

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dzeckelev/quickpay/gen"
)

// Session is one conversation. Its mutex is held for the whole handling of a
// message, payment included.
type Session struct {
	ID      string
	Address string

	mu    sync.Mutex
	state State
	// Unix nanoseconds, read without holding mu.
	lastActive atomic.Int64
}

// State returns the pending context of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

func (s *Session) idle(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastActive.Load()))
}

// Sessions is the registry of open sessions.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	newID    gen.IDFunc
	now      func() time.Time
}

// NewSessions creates an empty registry.
func NewSessions(newID gen.IDFunc) *Sessions {
	return &Sessions{
		sessions: make(map[string]*Session),
		newID:    newID,
		now:      time.Now,
	}
}

// Open starts a session for a wallet address, which may be empty when no
// wallet is connected.
func (r *Sessions) Open(address string) *Session {
	s := &Session{
		ID:      r.newID(),
		Address: strings.ToLower(strings.TrimSpace(address)),
		state:   Idle{},
	}
	s.touch(r.now())

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s
}

// Get returns an open session.
func (r *Sessions) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Len returns the number of open sessions.
func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Prune closes sessions idle for longer than maxIdle and returns how many
// were closed.
func (r *Sessions) Prune(maxIdle time.Duration) int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	for id, s := range r.sessions {
		if s.idle(now) > maxIdle {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}
