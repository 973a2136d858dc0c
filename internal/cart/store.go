package cart

import (
	"context"
	"sync"
)

// Store keeps one snapshot per customer. A missing snapshot reads as empty.
type Store interface {
	Get(ctx context.Context, customerID int64) (Snapshot, error)
	Save(ctx context.Context, customerID int64, s Snapshot) error
	// Clear drops the lines and the promo flag. Clearing an empty cart is not an error.
	Clear(ctx context.Context, customerID int64) error
}

// InMemoryStore is used for tests and local runs without Redis.
type InMemoryStore struct {
	mu    sync.RWMutex
	carts map[int64]Snapshot
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{carts: make(map[int64]Snapshot)}
}

func (s *InMemoryStore) Get(_ context.Context, customerID int64) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.carts[customerID]
	if !ok {
		return Snapshot{}, nil
	}
	snap.Lines = append([]Line(nil), snap.Lines...)
	return snap, nil
}

func (s *InMemoryStore) Save(_ context.Context, customerID int64, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap.Lines = append([]Line(nil), snap.Lines...)
	s.carts[customerID] = snap
	return nil
}

func (s *InMemoryStore) Clear(_ context.Context, customerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, customerID)
	return nil
}
