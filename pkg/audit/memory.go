package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity applies when a trail is constructed with a non-positive
// capacity.
const DefaultCapacity = 1000

// MemoryTrail is a bounded in-memory ring buffer. Once full, the oldest
// entry is overwritten. Suitable for a single API instance.
type MemoryTrail struct {
	mu      sync.Mutex
	entries []Entry
	start   int
	count   int
}

// NewMemoryTrail creates a ring buffer holding at most capacity entries.
func NewMemoryTrail(capacity int) *MemoryTrail {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &MemoryTrail{
		entries: make([]Entry, capacity),
	}
}

func (t *MemoryTrail) Record(_ context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	capacity := len(t.entries)
	t.entries[(t.start+t.count)%capacity] = entry

	if t.count < capacity {
		t.count++
	} else {
		t.start = (t.start + 1) % capacity
	}

	return nil
}

// Recent returns up to n entries, newest first.
func (t *MemoryTrail) Recent(_ context.Context, n int) ([]Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n <= 0 || n > t.count {
		n = t.count
	}

	capacity := len(t.entries)
	recent := make([]Entry, 0, n)

	for i := 0; i < n; i++ {
		idx := (t.start + t.count - 1 - i + capacity) % capacity
		recent = append(recent, t.entries[idx])
	}

	return recent, nil
}
