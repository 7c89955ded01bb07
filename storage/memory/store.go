// memory based implementation for testing purposes
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/max64180/lifetrack/schedule"
	"github.com/max64180/lifetrack/storage"
)

// Store implements storage.Storage using an in-memory map
type Store struct {
	mu          sync.RWMutex
	occurrences map[string]schedule.Occurrence
}

// New creates a new in-memory storage
func New() *Store {
	return &Store{
		occurrences: make(map[string]schedule.Occurrence),
	}
}

// LoadAll returns deep copies sorted by date (id as tie-break) so callers
// can never alias internal state.
func (s *Store) LoadAll(_ context.Context) ([]schedule.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]schedule.Occurrence, 0, len(s.occurrences))
	for _, o := range s.occurrences {
		out = append(out, o.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) SaveBatch(_ context.Context, occurrences []schedule.Occurrence) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range occurrences {
		if o.ID == "" {
			return fmt.Errorf("%w: occurrence without id", storage.ErrInvalidInput)
		}
	}
	for _, o := range occurrences {
		s.occurrences[o.ID] = o.Clone()
	}
	return nil
}

func (s *Store) DeleteBatch(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.occurrences, id)
	}
	return nil
}

// Len reports the number of stored occurrences.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.occurrences)
}

// Get returns one occurrence by id, mostly useful in tests.
func (s *Store) Get(id string) (schedule.Occurrence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.occurrences[id]
	if !ok {
		return schedule.Occurrence{}, storage.ErrNotFound
	}
	return o.Clone(), nil
}
