package records

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Record
}

// NewMemoryRepository constructs an in-memory repository for tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Record)}
}

func (r *memoryRepository) Save(_ context.Context, rec Record) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[rec.Identifier]; exists {
		return false, nil
	}
	r.storage[rec.Identifier] = rec
	return true, nil
}

func (r *memoryRepository) Load(_ context.Context, identifier string) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.storage[identifier]
	if !ok {
		return nil, nil
	}
	return []Record{rec}, nil
}
