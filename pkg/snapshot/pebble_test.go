package snapshot

import (
	"path/filepath"
	"testing"

	"hello-ai-be/internal/state"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) *PebbleSnapshotStore {
	t.Helper()
	store, err := NewPebbleSnapshotStore(filepath.Join(t.TempDir(), "snapshots"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPebbleSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ownerId := uuid.New()

	board := []state.Sticky{
		{Id: uuid.New(), Content: "buy milk", X: 12.5, Y: 40, Color: "yellow", OwnerUserId: ownerId},
		{Id: uuid.New(), Content: "call mom", X: 200, Y: 80, Color: "pink", OwnerUserId: ownerId},
	}

	assert.NoError(t, store.Save(ownerId, board))

	got, found, err := store.Load(ownerId)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, board, got)
}

func TestPebbleSnapshotMissingOwner(t *testing.T) {
	store := newTestStore(t)

	got, found, err := store.Load(uuid.New())
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestPebbleSnapshotOverwrite(t *testing.T) {
	store := newTestStore(t)
	ownerId := uuid.New()

	first := []state.Sticky{{Id: uuid.New(), Content: "v1", OwnerUserId: ownerId}}
	second := []state.Sticky{{Id: uuid.New(), Content: "v2", OwnerUserId: ownerId}}

	assert.NoError(t, store.Save(ownerId, first))
	assert.NoError(t, store.Save(ownerId, second))

	got, found, err := store.Load(ownerId)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, got, 1)
	assert.Equal(t, "v2", got[0].Content)
}

func TestPebbleSnapshotEmptyBoard(t *testing.T) {
	store := newTestStore(t)
	ownerId := uuid.New()

	assert.NoError(t, store.Save(ownerId, []state.Sticky{}))

	got, found, err := store.Load(ownerId)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, got)
}

func TestPebbleSnapshotDelete(t *testing.T) {
	store := newTestStore(t)
	ownerId := uuid.New()

	assert.NoError(t, store.Save(ownerId, []state.Sticky{{Id: uuid.New(), Content: "gone"}}))
	assert.NoError(t, store.Delete(ownerId))

	_, found, err := store.Load(ownerId)
	assert.NoError(t, err)
	assert.False(t, found)
}
