package service

import (
	"context"
	"testing"
	"time"

	"hello-ai-be/internal/dto"
	"hello-ai-be/internal/state"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type recordedBroadcast struct {
	ownerUserId uuid.UUID
	event       dto.BoardEvent
}

type fakeBroadcaster struct {
	broadcasts []recordedBroadcast
}

func (f *fakeBroadcaster) BroadcastBoardEvent(ownerUserId uuid.UUID, event dto.BoardEvent) {
	f.broadcasts = append(f.broadcasts, recordedBroadcast{ownerUserId: ownerUserId, event: event})
}

type boardHarness struct {
	service     IBoardService
	broadcaster *fakeBroadcaster
	snapshots   *memorySnapshotStore
	flushes     *flushRecorder
}

type memorySnapshotStore struct {
	boards  map[uuid.UUID][]state.Sticky
	saveErr error
}

func newMemorySnapshotStore() *memorySnapshotStore {
	return &memorySnapshotStore{boards: map[uuid.UUID][]state.Sticky{}}
}

func (m *memorySnapshotStore) Save(ownerId uuid.UUID, stickies []state.Sticky) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.boards[ownerId] = append([]state.Sticky(nil), stickies...)
	return nil
}

func (m *memorySnapshotStore) Load(ownerId uuid.UUID) ([]state.Sticky, bool, error) {
	stickies, found := m.boards[ownerId]
	return stickies, found, nil
}

type flushRecorder struct {
	flushed []state.Sticky
}

func (f *flushRecorder) flush(sessionId uuid.UUID, sticky state.Sticky) {
	f.flushed = append(f.flushed, sticky)
}

func newBoardHarness(t *testing.T) *boardHarness {
	t.Helper()

	snapshots := newMemorySnapshotStore()
	flushes := &flushRecorder{}
	debouncer := state.NewDebouncer(5 * time.Millisecond)
	t.Cleanup(debouncer.Stop)

	registry := state.NewRegistry(
		func(sessionId uuid.UUID) *state.ChatStore {
			return state.NewChatStore(sessionId)
		},
		func(ownerId uuid.UUID) *state.StickyStore {
			return state.NewStickyStore(ownerId, snapshots, debouncer, flushes.flush, nil)
		},
	)

	broadcaster := &fakeBroadcaster{}
	return &boardHarness{
		service:     NewBoardService(registry, broadcaster),
		broadcaster: broadcaster,
		snapshots:   snapshots,
		flushes:     flushes,
	}
}

func TestGetBoardEmpty(t *testing.T) {
	h := newBoardHarness(t)
	userId := uuid.New()

	board, err := h.service.GetBoard(context.Background(), userId)

	assert.NoError(t, err)
	assert.True(t, board.Hydrated)
	assert.Empty(t, board.Stickies)
}

func TestGetBoardRehydratesFromSnapshot(t *testing.T) {
	h := newBoardHarness(t)
	userId := uuid.New()
	h.snapshots.boards[userId] = []state.Sticky{
		{Id: uuid.New(), Content: "carried over", X: 10, Y: 20, Color: "yellow", OwnerUserId: userId},
	}

	board, err := h.service.GetBoard(context.Background(), userId)

	assert.NoError(t, err)
	assert.True(t, board.Hydrated)
	assert.Len(t, board.Stickies, 1)
	assert.Equal(t, "carried over", board.Stickies[0].Content)
}

func TestAddStickyBroadcastsAndSnapshots(t *testing.T) {
	h := newBoardHarness(t)
	userId := uuid.New()

	res, err := h.service.AddSticky(context.Background(), userId, &dto.AddStickyRequest{
		Content: "buy milk",
		X:       42,
		Y:       7,
		Color:   "pink",
	})

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.Id)
	assert.Equal(t, "buy milk", res.Content)
	assert.Equal(t, userId, res.OwnerUserId)

	assert.Len(t, h.broadcaster.broadcasts, 1)
	assert.Equal(t, userId, h.broadcaster.broadcasts[0].ownerUserId)
	assert.Equal(t, "sticky_added", h.broadcaster.broadcasts[0].event.Type)
	assert.Equal(t, res.Id, h.broadcaster.broadcasts[0].event.Sticky.Id)

	assert.Len(t, h.snapshots.boards[userId], 1)
}

func TestAddStickyWithSessionSchedulesFlush(t *testing.T) {
	h := newBoardHarness(t)
	userId := uuid.New()
	sessionId := uuid.New()

	res, err := h.service.AddSticky(context.Background(), userId, &dto.AddStickyRequest{
		Content:   "flush me",
		SessionId: sessionId,
	})
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(h.flushes.flushed) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, res.Id, h.flushes.flushed[0].Id)
}

func TestAddStickyWithoutSessionNeverFlushes(t *testing.T) {
	h := newBoardHarness(t)
	userId := uuid.New()

	_, err := h.service.AddSticky(context.Background(), userId, &dto.AddStickyRequest{Content: "local only"})
	assert.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, h.flushes.flushed)
}

func TestAddStickyRefusedBeforeHydration(t *testing.T) {
	broadcaster := &fakeBroadcaster{}
	registry := state.NewRegistry(
		func(sessionId uuid.UUID) *state.ChatStore { return state.NewChatStore(sessionId) },
		func(ownerId uuid.UUID) *state.StickyStore {
			// A zero-value store has not completed its initial load yet.
			return &state.StickyStore{}
		},
	)
	service := NewBoardService(registry, broadcaster)

	_, err := service.AddSticky(context.Background(), uuid.New(), &dto.AddStickyRequest{Content: "too early"})

	var fiberErr *fiber.Error
	assert.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusConflict, fiberErr.Code)
	assert.Empty(t, broadcaster.broadcasts)
}

func TestMoveStickyBroadcastsNewPosition(t *testing.T) {
	h := newBoardHarness(t)
	userId := uuid.New()

	res, err := h.service.AddSticky(context.Background(), userId, &dto.AddStickyRequest{Content: "movable"})
	assert.NoError(t, err)

	err = h.service.MoveSticky(context.Background(), userId, &dto.MoveStickyRequest{Id: res.Id, X: 100, Y: 200})
	assert.NoError(t, err)

	board, err := h.service.GetBoard(context.Background(), userId)
	assert.NoError(t, err)
	assert.Equal(t, float64(100), board.Stickies[0].X)
	assert.Equal(t, float64(200), board.Stickies[0].Y)

	assert.Len(t, h.broadcaster.broadcasts, 2)
	moved := h.broadcaster.broadcasts[1].event
	assert.Equal(t, "sticky_moved", moved.Type)
	assert.Equal(t, res.Id, moved.StickyId)
	assert.Equal(t, float64(100), moved.Sticky.X)
}

func TestMoveStickyUnknownId(t *testing.T) {
	h := newBoardHarness(t)

	err := h.service.MoveSticky(context.Background(), uuid.New(), &dto.MoveStickyRequest{Id: uuid.New(), X: 1, Y: 2})

	var fiberErr *fiber.Error
	assert.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusNotFound, fiberErr.Code)
}

func TestRemoveStickyBroadcasts(t *testing.T) {
	h := newBoardHarness(t)
	userId := uuid.New()

	res, err := h.service.AddSticky(context.Background(), userId, &dto.AddStickyRequest{Content: "short lived"})
	assert.NoError(t, err)

	err = h.service.RemoveSticky(context.Background(), userId, res.Id)
	assert.NoError(t, err)

	board, err := h.service.GetBoard(context.Background(), userId)
	assert.NoError(t, err)
	assert.Empty(t, board.Stickies)

	removed := h.broadcaster.broadcasts[len(h.broadcaster.broadcasts)-1].event
	assert.Equal(t, "sticky_removed", removed.Type)
	assert.Equal(t, res.Id, removed.StickyId)
}

func TestRemoveStickyUnknownId(t *testing.T) {
	h := newBoardHarness(t)

	err := h.service.RemoveSticky(context.Background(), uuid.New(), uuid.New())

	var fiberErr *fiber.Error
	assert.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusNotFound, fiberErr.Code)
}

func TestBoardsAreIsolatedPerOwner(t *testing.T) {
	h := newBoardHarness(t)
	alice := uuid.New()
	bob := uuid.New()

	_, err := h.service.AddSticky(context.Background(), alice, &dto.AddStickyRequest{Content: "alice's note"})
	assert.NoError(t, err)

	board, err := h.service.GetBoard(context.Background(), bob)
	assert.NoError(t, err)
	assert.Empty(t, board.Stickies)
}
