package editor

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for ids the Manager does not know.
var ErrSessionNotFound = errors.New("session not found")

// Session is a snapshot of one editing session.
type Session struct {
	ID        string
	State     State
	UpdatedAt time.Time
}

// Manager keeps editing sessions in memory, keyed by a random id. It is safe
// for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for new sessions and update stamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager returns an empty Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a session from the default rule.
func (m *Manager) Create() Session {
	return m.CreateFrom(New(m.now()))
}

// CreateFrom starts a session from an existing state.
func (m *Manager) CreateFrom(s State) Session {
	sess := Session{
		ID:        uuid.NewString(),
		State:     s,
		UpdatedAt: m.now(),
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	return sess
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// Apply replaces a session's state with edit(state) and returns the result.
// edit runs under the Manager's lock and must not call back into it.
func (m *Manager) Apply(id string, edit func(State) State) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	sess.State = edit(sess.State)
	sess.UpdatedAt = m.now()
	m.sessions[id] = sess
	return sess, nil
}

// Delete removes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Each calls fn for a snapshot of every session. fn may call back into the
// Manager.
func (m *Manager) Each(fn func(Session)) {
	m.mu.RLock()
	snapshot := make([]Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		snapshot = append(snapshot, sess)
	}
	m.mu.RUnlock()

	for _, sess := range snapshot {
		fn(sess)
	}
}

// Prune drops sessions last updated before cutoff and returns how many were
// removed.
func (m *Manager) Prune(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, sess := range m.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
