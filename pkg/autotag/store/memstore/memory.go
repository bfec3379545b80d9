package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/autotag/pkg/autotag/filter"
	"github.com/cognicore/autotag/pkg/autotag/internalerr"
	"github.com/cognicore/autotag/pkg/autotag/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu       sync.RWMutex
	cuisines map[string]store.Cuisine
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{cuisines: make(map[string]store.Cuisine)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Create inserts a record, assigning an ID when empty.
func (s *Store) Create(ctx context.Context, c store.Cuisine) (store.Cuisine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = store.NewID()
	}
	if _, exists := s.cuisines[c.ID]; exists {
		return store.Cuisine{}, internalerr.ErrInvalidInput
	}
	s.cuisines[c.ID] = c
	return c, nil
}

// Get returns a record by ID.
func (s *Store) Get(ctx context.Context, id string) (store.Cuisine, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cuisines[id]
	return c, ok, nil
}

// Update replaces an existing record.
func (s *Store) Update(ctx context.Context, c store.Cuisine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cuisines[c.ID]; !ok {
		return internalerr.ErrNotFound
	}
	s.cuisines[c.ID] = c
	return nil
}

// Delete removes a record. Deleting a missing record is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cuisines, id)
	return nil
}

// ListByUser returns the records owned by userID, oldest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]store.Cuisine, error) {
	return s.collect(func(c store.Cuisine) bool { return c.UserID == userID }), nil
}

// Find returns the records matching every filter term, oldest first.
func (s *Store) Find(ctx context.Context, f filter.Filter) ([]store.Cuisine, error) {
	return s.collect(func(c store.Cuisine) bool { return f.Matches(c.Attributes()) }), nil
}

func (s *Store) collect(keep func(store.Cuisine) bool) []store.Cuisine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Cuisine
	for _, c := range s.cuisines {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
