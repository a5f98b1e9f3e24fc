package state

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the sidebar's view of a chat session.
type Session struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore keeps the current user's session list, newest first.
type SessionStore struct {
	mu       sync.RWMutex
	sessions []Session
	activeId uuid.UUID
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// SetSessions replaces the list wholesale, sorted descending by creation
// time (unix seconds). Sessions with a zero timestamp sort last.
func (s *SessionStore) SetSessions(sessions []Session) {
	list := append([]Session(nil), sessions...)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.Unix() > list[j].CreatedAt.Unix()
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = list
}

// AddSession prepends, dropping any prior entry with the same id first.
func (s *SessionStore) AddSession(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]Session, 0, len(s.sessions)+1)
	kept = append(kept, session)
	for _, existing := range s.sessions {
		if existing.Id != session.Id {
			kept = append(kept, existing)
		}
	}
	s.sessions = kept
}

func (s *SessionStore) Sessions() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Session(nil), s.sessions...)
}

func (s *SessionStore) SetActiveId(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeId = id
}

func (s *SessionStore) ActiveId() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeId
}
