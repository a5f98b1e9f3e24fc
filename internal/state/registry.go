package state

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Registry hands out per-session chat stores and per-owner board stores.
// Stores are cached with a sliding expiry so idle sessions get evicted
// instead of accumulating forever.
type Registry struct {
	mu     sync.Mutex
	chats  *cache.Cache
	boards *cache.Cache

	newChat  func(sessionId uuid.UUID) *ChatStore
	newBoard func(ownerId uuid.UUID) *StickyStore
}

func NewRegistry(
	newChat func(sessionId uuid.UUID) *ChatStore,
	newBoard func(ownerId uuid.UUID) *StickyStore,
) *Registry {
	return &Registry{
		chats:    cache.New(1*time.Hour, 10*time.Minute),
		boards:   cache.New(1*time.Hour, 10*time.Minute),
		newChat:  newChat,
		newBoard: newBoard,
	}
}

// Chat returns the store for a session, creating it on first use.
func (r *Registry) Chat(sessionId uuid.UUID) *ChatStore {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionId.String()
	if cached, found := r.chats.Get(key); found {
		r.chats.SetDefault(key, cached)
		return cached.(*ChatStore)
	}

	store := r.newChat(sessionId)
	r.chats.SetDefault(key, store)
	return store
}

// Board returns the sticky store for an owner, creating (and therefore
// rehydrating) it on first use.
func (r *Registry) Board(ownerId uuid.UUID) *StickyStore {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := ownerId.String()
	if cached, found := r.boards.Get(key); found {
		r.boards.SetDefault(key, cached)
		return cached.(*StickyStore)
	}

	store := r.newBoard(ownerId)
	r.boards.SetDefault(key, store)
	return store
}

// DropChat evicts a session's store, e.g. after the session is deleted.
func (r *Registry) DropChat(sessionId uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats.Delete(sessionId.String())
}
