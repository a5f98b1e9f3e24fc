package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerCoalescesSameKey(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	var fired []int

	for i := 1; i <= 5; i++ {
		v := i
		d.Schedule("note-1", func() {
			mu.Lock()
			fired = append(fired, v)
			mu.Unlock()
		})
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{5}, fired, "only the last scheduled fn for a key may fire")
}

func TestDebouncerDistinctKeysFireIndependently(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	fired := map[string]bool{}

	for _, key := range []string{"note-a", "note-b"} {
		k := key
		d.Schedule(k, func() {
			mu.Lock()
			fired[k] = true
			mu.Unlock()
		})
	}

	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, fired["note-a"])
	assert.True(t, fired["note-b"])
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var mu sync.Mutex
	firedCount := 0

	d.Schedule("note-1", func() {
		mu.Lock()
		firedCount++
		mu.Unlock()
	})
	d.Cancel("note-1")

	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, firedCount)
	assert.Zero(t, d.Pending())
}

func TestDebouncerPendingDrainsAfterFire(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	done := make(chan struct{})
	d.Schedule("note-1", func() { close(done) })
	assert.Equal(t, 1, d.Pending())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("debounced fn never fired")
	}

	// Entry removal happens just before the fn runs.
	assert.Eventually(t, func() bool { return d.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestDebouncerStopCancelsEverything(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var mu sync.Mutex
	firedCount := 0
	for _, key := range []string{"a", "b", "c"} {
		d.Schedule(key, func() {
			mu.Lock()
			firedCount++
			mu.Unlock()
		})
	}

	d.Stop()
	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, firedCount)
}
