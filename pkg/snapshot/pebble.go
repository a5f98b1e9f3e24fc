package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"hello-ai-be/internal/state"

	pebble "github.com/cockroachdb/pebble"
	"github.com/google/uuid"
)

const boardKeyPrefix = "board:"

// PebbleSnapshotStore keeps whole-board sticky snapshots in an embedded
// pebble database, one JSON value per owner. Writes are synced so a
// crash right after a mutation still rehydrates the latest board.
type PebbleSnapshotStore struct {
	db *pebble.DB
}

func NewPebbleSnapshotStore(path string) (*PebbleSnapshotStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	return &PebbleSnapshotStore{db: db}, nil
}

func (s *PebbleSnapshotStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PebbleSnapshotStore) Save(ownerId uuid.UUID, stickies []state.Sticky) error {
	payload, err := json.Marshal(stickies)
	if err != nil {
		return fmt.Errorf("encode board snapshot: %w", err)
	}
	return s.db.Set(boardKey(ownerId), payload, pebble.Sync)
}

func (s *PebbleSnapshotStore) Load(ownerId uuid.UUID) ([]state.Sticky, bool, error) {
	v, closer, err := s.db.Get(boardKey(ownerId))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer closer.Close()

	var stickies []state.Sticky
	if err := json.Unmarshal(v, &stickies); err != nil {
		return nil, false, fmt.Errorf("decode board snapshot: %w", err)
	}
	return stickies, true, nil
}

// Delete drops an owner's snapshot, e.g. on account deletion.
func (s *PebbleSnapshotStore) Delete(ownerId uuid.UUID) error {
	return s.db.Delete(boardKey(ownerId), pebble.Sync)
}

func boardKey(ownerId uuid.UUID) []byte {
	return []byte(boardKeyPrefix + ownerId.String())
}
