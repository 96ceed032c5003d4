package identity

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// NewMemoryRepository builds an in-memory credential store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{creds: make(map[string]Credential)}
}

func (r *memoryRepository) Create(_ context.Context, cred Credential) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.creds[cred.Identifier]; exists {
		return false, nil
	}
	r.creds[cred.Identifier] = cred
	return true, nil
}

func (r *memoryRepository) FindByIdentifier(_ context.Context, identifier string) (Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cred, ok := r.creds[identifier]
	if !ok {
		return Credential{}, ErrNotFound
	}
	return cred, nil
}
