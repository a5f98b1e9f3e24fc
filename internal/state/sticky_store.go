package state

import (
	"sync"

	"hello-ai-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// Sticky is one whiteboard note as the board state sees it.
type Sticky struct {
	Id          uuid.UUID `json:"id"`
	Content     string    `json:"content"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	Color       string    `json:"color"`
	OwnerUserId uuid.UUID `json:"owner_user_id"`
}

// BoardSnapshotStore persists whole-board snapshots locally so a restart
// rehydrates the board without touching the remote document store.
type BoardSnapshotStore interface {
	Save(ownerId uuid.UUID, stickies []Sticky) error
	// Load returns (snapshot, found, error). found=false means no prior
	// snapshot exists, which is not an error.
	Load(ownerId uuid.UUID) ([]Sticky, bool, error)
}

// FlushFunc receives a sticky once its debounce window closes. sessionId
// is the board's session at fire time.
type FlushFunc func(sessionId uuid.UUID, sticky Sticky)

// StickyStore is the in-memory board for one owner. Local state is the
// source of truth for rendering; the durable copy trails it. Every
// mutation snapshots the whole set locally, and adds additionally
// schedule a debounced durable write, keyed per sticky id so a burst of
// adds never cancels another sticky's write.
type StickyStore struct {
	mu        sync.RWMutex
	stickies  []Sticky
	sessionId uuid.UUID
	hydrated  bool

	ownerId   uuid.UUID
	snapshots BoardSnapshotStore
	debouncer *Debouncer
	flush     FlushFunc
	logger    logger.ILogger
}

// NewStickyStore builds the board and rehydrates it from the local
// snapshot store. The hydrated flag flips to true exactly once, even when
// the snapshot is missing or unreadable; a bad snapshot is logged and the
// board starts empty rather than failing construction.
func NewStickyStore(
	ownerId uuid.UUID,
	snapshots BoardSnapshotStore,
	debouncer *Debouncer,
	flush FlushFunc,
	log logger.ILogger,
) *StickyStore {
	s := &StickyStore{
		ownerId:   ownerId,
		snapshots: snapshots,
		debouncer: debouncer,
		flush:     flush,
		logger:    log,
	}

	if snapshots != nil {
		stickies, found, err := snapshots.Load(ownerId)
		if err != nil {
			if log != nil {
				log.Warn("StickyStore", "Board rehydration failed", map[string]interface{}{
					"owner_id": ownerId.String(),
					"error":    err.Error(),
				})
			}
		} else if found {
			s.stickies = stickies
		}
	}
	s.hydrated = true

	return s
}

// Hydrated reports whether the initial local load has completed. UI
// actions gated on it (send-to-board) stay disabled until it is true.
func (s *StickyStore) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

func (s *StickyStore) SetSessionId(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionId = id
}

func (s *StickyStore) SessionId() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionId
}

// AddSticky creates a sticky with a fresh id, appends it synchronously,
// snapshots the board, and schedules its debounced durable write.
func (s *StickyStore) AddSticky(content string, x, y float64, color string, ownerUserId uuid.UUID) Sticky {
	sticky := Sticky{
		Id:          uuid.New(),
		Content:     content,
		X:           x,
		Y:           y,
		Color:       color,
		OwnerUserId: ownerUserId,
	}

	s.mu.Lock()
	s.stickies = append(s.stickies, sticky)
	sessionId := s.sessionId
	s.mu.Unlock()

	s.persistLocal()

	if sessionId != uuid.Nil && s.debouncer != nil && s.flush != nil {
		flushed := sticky
		s.debouncer.Schedule(sticky.Id.String(), func() {
			s.flush(s.SessionId(), flushed)
		})
	}

	return sticky
}

// UpdatePosition moves one sticky. Local-only: position changes are
// snapshotted but not mirrored to the remote document store.
func (s *StickyStore) UpdatePosition(id uuid.UUID, x, y float64) bool {
	s.mu.Lock()
	moved := false
	for i := range s.stickies {
		if s.stickies[i].Id == id {
			s.stickies[i].X = x
			s.stickies[i].Y = y
			moved = true
			break
		}
	}
	s.mu.Unlock()

	if moved {
		s.persistLocal()
	}
	return moved
}

// Remove deletes a sticky from local state. Any still-pending durable
// write for it is cancelled; an already-flushed remote row is left alone.
func (s *StickyStore) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	removed := false
	for i := range s.stickies {
		if s.stickies[i].Id == id {
			s.stickies = append(s.stickies[:i], s.stickies[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if removed {
		if s.debouncer != nil {
			s.debouncer.Cancel(id.String())
		}
		s.persistLocal()
	}
	return removed
}

// Stickies returns a copy of the board.
func (s *StickyStore) Stickies() []Sticky {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Sticky(nil), s.stickies...)
}

// ReplaceAll swaps the board wholesale, e.g. after a remote board fetch.
func (s *StickyStore) ReplaceAll(stickies []Sticky) {
	s.mu.Lock()
	s.stickies = append([]Sticky(nil), stickies...)
	s.mu.Unlock()
	s.persistLocal()
}

func (s *StickyStore) persistLocal() {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(s.ownerId, s.Stickies()); err != nil && s.logger != nil {
		s.logger.Error("StickyStore", "Board snapshot write failed", map[string]interface{}{
			"owner_id": s.ownerId.String(),
			"error":    err.Error(),
		})
	}
}
