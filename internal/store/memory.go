package store

import (
	"context"
	"slices"
	"sync"

	perrors "github.com/shopkit/products-api/internal/errors"
)

// memoryStore implements ProductStore using an in-memory slice.
// The slice preserves insertion order, which is observable as the default
// list order and as the tie-break for stable sorting.
type memoryStore struct {
	mu       sync.RWMutex
	products []Product
}

// NewMemoryStore creates a new instance of ProductStore backed by process memory.
func NewMemoryStore() ProductStore {
	return &memoryStore{
		products: make([]Product, 0),
	}
}

// FindByID retrieves a product by its ID.
func (s *memoryStore) FindByID(_ context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, perrors.ErrProductNotFound
}

// Snapshot returns a copy of all products in insertion order.
func (s *memoryStore) Snapshot(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.products), nil
}

// Insert appends a new product. The caller guarantees ID uniqueness.
func (s *memoryStore) Insert(_ context.Context, product Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = append(s.products, product)
	return nil
}

// Replace overwrites an existing product in place, preserving its position.
func (s *memoryStore) Replace(_ context.Context, id string, product Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.products {
		if p.ID == id {
			s.products[i] = product
			return nil
		}
	}
	return perrors.ErrProductNotFound
}

// Remove deletes a product by its ID and returns the removed record.
func (s *memoryStore) Remove(_ context.Context, id string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.products {
		if p.ID == id {
			removed := p
			s.products = slices.Delete(s.products, i, i+1)
			return &removed, nil
		}
	}
	return nil, perrors.ErrProductNotFound
}
