// Package session holds the single in-flight pairing session shared
// between the mobile submission path and the desktop polling path.
//
// Exactly one session exists system-wide. Its state advances
// monotonically open -> received -> closed; every transition happens
// under the store mutex so racing submissions cannot both win.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/quickfetch/quickfetch/internal/errors"
)

type State string

const (
	StateOpen     State = "open"
	StateReceived State = "received"
	StateClosed   State = "closed"
)

// Session is a snapshot of the current pairing attempt. TargetFieldID is
// fixed at creation and never changes for the session's life.
type Session struct {
	ID            string    `json:"id"`
	TargetFieldID string    `json:"targetFieldId"`
	State         State     `json:"state"`
	Content       string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Status is what the poll endpoint reports to the desktop.
type Status struct {
	Received bool   `json:"received"`
	Content  string `json:"content,omitempty"`
}

type Store struct {
	mu  sync.Mutex
	cur *Session
}

func NewStore() *Store {
	return &Store{}
}

// Create opens a new session scoped to targetFieldID, implicitly closing
// any prior one. It always succeeds.
func (s *Store) Create(targetFieldID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur != nil {
		s.cur.State = StateClosed
	}

	s.cur = &Session{
		ID:            uuid.NewString(),
		TargetFieldID: targetFieldID,
		State:         StateOpen,
		CreatedAt:     time.Now(),
	}
	return *s.cur
}

// Submit stores content and transitions the session to received. Only the
// first submission against an open session succeeds; later ones are
// rejected without touching the stored content.
func (s *Store) Submit(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil {
		return apperrors.NoSession()
	}
	if s.cur.State != StateOpen {
		return apperrors.StaleSession()
	}

	s.cur.Content = content
	s.cur.State = StateReceived
	return nil
}

// Poll reports the current state without side effects. It is safe to call
// arbitrarily often, concurrently with Submit.
func (s *Store) Poll() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil || s.cur.State != StateReceived {
		return Status{Received: false}
	}
	return Status{Received: true, Content: s.cur.Content}
}

// Close forces the session to closed regardless of its current state.
// Closing an already-closed or absent session is a no-op.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur != nil {
		s.cur.State = StateClosed
	}
}

// TakeReceived atomically claims a received session for delivery, closing
// it in the same step so content can be delivered at most once.
func (s *Store) TakeReceived() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil || s.cur.State != StateReceived {
		return Session{}, false
	}

	s.cur.State = StateClosed
	snap := *s.cur
	snap.State = StateReceived
	return snap, true
}

// CloseExpired closes an open session older than ttl. Expiry is just
// another path to closed; a ttl of zero disables it.
func (s *Store) CloseExpired(ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil || s.cur.State != StateOpen {
		return false
	}
	if time.Since(s.cur.CreatedAt) < ttl {
		return false
	}

	s.cur.State = StateClosed
	return true
}

// Current returns a snapshot of the active session, if any.
func (s *Store) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur == nil {
		return Session{}, false
	}
	return *s.cur, true
}
