package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type memorySnapshotStore struct {
	mu      sync.Mutex
	boards  map[uuid.UUID][]Sticky
	saveErr error
	loadErr error
	saves   int
}

func newMemorySnapshotStore() *memorySnapshotStore {
	return &memorySnapshotStore{boards: make(map[uuid.UUID][]Sticky)}
}

func (m *memorySnapshotStore) Save(ownerId uuid.UUID, stickies []Sticky) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.boards[ownerId] = append([]Sticky(nil), stickies...)
	m.saves++
	return nil
}

func (m *memorySnapshotStore) Load(ownerId uuid.UUID) ([]Sticky, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	board, found := m.boards[ownerId]
	return append([]Sticky(nil), board...), found, nil
}

func (m *memorySnapshotStore) saved(ownerId uuid.UUID) []Sticky {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Sticky(nil), m.boards[ownerId]...)
}

type flushRecorder struct {
	mu    sync.Mutex
	calls []Sticky
}

func (f *flushRecorder) record(_ uuid.UUID, sticky Sticky) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sticky)
}

func (f *flushRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestStickyStoreHydratesFromSnapshot(t *testing.T) {
	ownerId := uuid.New()
	snapshots := newMemorySnapshotStore()
	snapshots.boards[ownerId] = []Sticky{
		{Id: uuid.New(), Content: "persisted", X: 10, Y: 20, OwnerUserId: ownerId},
	}

	store := NewStickyStore(ownerId, snapshots, nil, nil, nil)

	assert.True(t, store.Hydrated())
	got := store.Stickies()
	assert.Len(t, got, 1)
	assert.Equal(t, "persisted", got[0].Content)
}

func TestStickyStoreHydratedDespiteLoadError(t *testing.T) {
	snapshots := newMemorySnapshotStore()
	snapshots.loadErr = errors.New("corrupt snapshot")

	store := NewStickyStore(uuid.New(), snapshots, nil, nil, nil)

	assert.True(t, store.Hydrated(), "a bad snapshot must not block the board")
	assert.Empty(t, store.Stickies())
}

func TestStickyStoreHydratedWithNoPriorSnapshot(t *testing.T) {
	store := NewStickyStore(uuid.New(), newMemorySnapshotStore(), nil, nil, nil)

	assert.True(t, store.Hydrated())
	assert.Empty(t, store.Stickies())
}

func TestStickyStoreAddAssignsIdAndSnapshots(t *testing.T) {
	ownerId := uuid.New()
	snapshots := newMemorySnapshotStore()
	store := NewStickyStore(ownerId, snapshots, nil, nil, nil)

	sticky := store.AddSticky("buy milk", 100, 200, "yellow", ownerId)

	assert.NotEqual(t, uuid.Nil, sticky.Id)
	assert.Len(t, store.Stickies(), 1)

	saved := snapshots.saved(ownerId)
	assert.Len(t, saved, 1)
	assert.Equal(t, sticky.Id, saved[0].Id)
}

func TestStickyStoreAddSchedulesFlushOnlyWithSession(t *testing.T) {
	ownerId := uuid.New()
	debouncer := NewDebouncer(10 * time.Millisecond)
	defer debouncer.Stop()
	recorder := &flushRecorder{}

	store := NewStickyStore(ownerId, newMemorySnapshotStore(), debouncer, recorder.record, nil)

	// No session bound yet: stays local.
	store.AddSticky("local only", 0, 0, "green", ownerId)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, recorder.count())

	store.SetSessionId(uuid.New())
	store.AddSticky("durable", 1, 1, "pink", ownerId)
	assert.Eventually(t, func() bool { return recorder.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestStickyStoreBurstOfAddsFlushesEachSticky(t *testing.T) {
	ownerId := uuid.New()
	debouncer := NewDebouncer(20 * time.Millisecond)
	defer debouncer.Stop()
	recorder := &flushRecorder{}

	store := NewStickyStore(ownerId, newMemorySnapshotStore(), debouncer, recorder.record, nil)
	store.SetSessionId(uuid.New())

	// Distinct stickies in a burst must each get their own write.
	store.AddSticky("one", 0, 0, "yellow", ownerId)
	store.AddSticky("two", 0, 0, "yellow", ownerId)
	store.AddSticky("three", 0, 0, "yellow", ownerId)

	assert.Eventually(t, func() bool { return recorder.count() == 3 }, time.Second, 5*time.Millisecond)
}

func TestStickyStoreUpdatePositionLocalOnly(t *testing.T) {
	ownerId := uuid.New()
	snapshots := newMemorySnapshotStore()
	debouncer := NewDebouncer(10 * time.Millisecond)
	defer debouncer.Stop()
	recorder := &flushRecorder{}

	store := NewStickyStore(ownerId, snapshots, debouncer, recorder.record, nil)
	sticky := store.AddSticky("movable", 0, 0, "blue", ownerId)

	moved := store.UpdatePosition(sticky.Id, 300, 400)
	assert.True(t, moved)

	got := store.Stickies()
	assert.Equal(t, 300.0, got[0].X)
	assert.Equal(t, 400.0, got[0].Y)

	saved := snapshots.saved(ownerId)
	assert.Equal(t, 300.0, saved[0].X, "moves must reach the local snapshot")

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, recorder.count(), "moves must not trigger durable writes")
}

func TestStickyStoreUpdatePositionUnknownId(t *testing.T) {
	store := NewStickyStore(uuid.New(), newMemorySnapshotStore(), nil, nil, nil)
	assert.False(t, store.UpdatePosition(uuid.New(), 1, 2))
}

func TestStickyStoreRemoveCancelsPendingFlush(t *testing.T) {
	ownerId := uuid.New()
	debouncer := NewDebouncer(50 * time.Millisecond)
	defer debouncer.Stop()
	recorder := &flushRecorder{}

	store := NewStickyStore(ownerId, newMemorySnapshotStore(), debouncer, recorder.record, nil)
	store.SetSessionId(uuid.New())

	sticky := store.AddSticky("doomed", 0, 0, "red", ownerId)
	assert.True(t, store.Remove(sticky.Id))

	time.Sleep(120 * time.Millisecond)
	assert.Zero(t, recorder.count(), "removed sticky must not be flushed afterwards")
	assert.Empty(t, store.Stickies())
}

func TestStickyStoreSurvivesSaveError(t *testing.T) {
	ownerId := uuid.New()
	snapshots := newMemorySnapshotStore()
	snapshots.saveErr = errors.New("disk full")

	store := NewStickyStore(ownerId, snapshots, nil, nil, nil)
	store.AddSticky("still here", 0, 0, "yellow", ownerId)

	assert.Len(t, store.Stickies(), 1, "local state must survive snapshot failures")
}
