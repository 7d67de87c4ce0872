package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		now:     time.Now,
	}
}

// Create stores a copy of r
func (s *MemoryStore) Create(_ context.Context, r *Record) (string, error) {
	if err := prepare(r, s.now()); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[r.ID]; exists {
		return "", fmt.Errorf("%w: duplicate id %s", ErrInvalidRecord, r.ID)
	}
	s.records[r.ID] = r.clone()
	return r.ID, nil
}

// Get retrieves a record by id
func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.clone(), nil
}

// ListByUser returns a user's records newest first
func (s *MemoryStore) ListByUser(_ context.Context, userID string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, 0)
	for _, r := range s.records {
		if r.UserID == userID {
			out = append(out, r.clone())
		}
	}
	newestFirst(out)
	return out, nil
}

// Update applies a partial update
func (s *MemoryStore) Update(_ context.Context, id string, p Patch) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	p.apply(r)
	return r.clone(), nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
