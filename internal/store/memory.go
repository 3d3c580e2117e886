package store

import (
	"errors"
	"sync"

	"github.com/i474232898/geofence-notifier/internal/geofence"
)

var (
	// ErrNotFound is returned before the first cycle has completed.
	ErrNotFound = errors.New("no evaluation result yet")
)

// MemoryStore is a concurrency-safe holder of the most recent evaluation.
// It keeps no history of past positions.
type MemoryStore struct {
	mu sync.RWMutex

	latest *geofence.EvaluationResult
	count  uint64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SaveResult replaces the stored result. Overlapping cycles may finish out
// of order, so an older result never overwrites a newer one.
func (s *MemoryStore) SaveResult(r geofence.EvaluationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	if s.latest != nil && r.EvaluatedAt.Before(s.latest.EvaluatedAt) {
		return
	}
	s.latest = &r
}

// Latest returns the most recent result.
func (s *MemoryStore) Latest() (geofence.EvaluationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return geofence.EvaluationResult{}, ErrNotFound
	}
	return *s.latest, nil
}

// Count returns how many results have been saved since start.
func (s *MemoryStore) Count() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}
