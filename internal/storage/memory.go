package storage

import (
	"context"
	"sync"

	"github.com/johanforsgren/mantella/internal/domain"
)

// MemoryRepository keeps the credential for the life of the process only.
type MemoryRepository struct {
	mu   sync.RWMutex
	cred *domain.Credential
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Save(ctx context.Context, cred domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cred = &cred
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context) (*domain.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cred == nil {
		return nil, nil
	}
	cred := *r.cred
	return &cred, nil
}

func (r *MemoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cred = nil
	return nil
}
