package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/nikolayk812/cartstore/internal/domain"
	"github.com/nikolayk812/cartstore/internal/port"
)

// StorageFactory opens the storage backing one owner's cart.
type StorageFactory func(ownerID string) (port.CartStorage, error)

// Registry hands out one Store per owner, creating it on first use.
type Registry struct {
	mu      sync.Mutex
	stores  map[string]*Store
	factory StorageFactory
	opts    []Option
}

func NewRegistry(factory StorageFactory, opts ...Option) *Registry {
	return &Registry{
		stores:  make(map[string]*Store),
		factory: factory,
		opts:    opts,
	}
}

func (r *Registry) Get(ctx context.Context, ownerID string) (*Store, error) {
	if err := domain.ValidateOwnerID(ownerID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[ownerID]; ok {
		return s, nil
	}

	storage, err := r.factory(ownerID)
	if err != nil {
		return nil, fmt.Errorf("factory: %w", err)
	}

	opts := append(append([]Option{}, r.opts...), WithOwner(ownerID))

	s, err := New(ctx, storage, opts...)
	if err != nil {
		return nil, fmt.Errorf("store.New: %w", err)
	}

	r.stores[ownerID] = s

	return s, nil
}
