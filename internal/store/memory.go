package store

import (
	"context"
	"sort"
	"sync"

	"telemetry-service/internal/models"
)

// MemoryStore keeps the reading history in an in-process buffer. A single
// mutex serializes writers; readers take a snapshot copy so a query never
// observes a partial append or eviction.
type MemoryStore struct {
	mu           sync.RWMutex
	buffer       []models.Reading
	capacity     int
	defaultLimit int
	maxLimit     int
}

// NewMemoryStore creates a store holding at most capacity readings.
func NewMemoryStore(capacity, defaultLimit, maxLimit int) *MemoryStore {
	if capacity <= 0 {
		capacity = 500
	}
	return &MemoryStore{
		buffer:       make([]models.Reading, 0, capacity),
		capacity:     capacity,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Append adds a reading at the tail, evicting from the head past capacity.
func (s *MemoryStore) Append(ctx context.Context, r models.Reading) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buffer = append(s.buffer, r)
	if len(s.buffer) > s.capacity {
		// Remove the oldest entries
		s.buffer = s.buffer[len(s.buffer)-s.capacity:]
	}
	return nil
}

// Query returns the most recent matching readings, ascending by timestamp.
func (s *MemoryStore) Query(ctx context.Context, f Filter) ([]models.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := f.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	s.mu.RLock()
	matched := make([]models.Reading, 0, limit)
	for _, r := range s.buffer {
		if f.Location != "" && r.Location != f.Location {
			continue
		}
		if f.Since > 0 && r.Timestamp <= f.Since {
			continue
		}
		matched = append(matched, r)
	}
	s.mu.RUnlock()

	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	// Arrival order approximates measurement order only for a single sender;
	// present a timestamp-sorted view.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp < matched[j].Timestamp
	})
	return matched, nil
}

// Len reports the current number of retained readings.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buffer)
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStore) Close() {}
