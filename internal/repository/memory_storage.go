package repository

import (
	"context"
	"sync"

	"github.com/nikolayk812/cartstore/internal/domain"
	"github.com/nikolayk812/cartstore/internal/port"
)

// MemoryStorage keeps the encoded record in memory. It goes through the same
// codec as the durable adapters, so it also accepts raw records for tests.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// NewMemoryStorageWithRecord seeds the storage with a raw record.
func NewMemoryStorageWithRecord(data []byte) *MemoryStorage {
	return &MemoryStorage{data: data}
}

var _ port.CartStorage = (*MemoryStorage)(nil)

func (m *MemoryStorage) Load(_ context.Context) ([]domain.CartLineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return DecodeItems(m.data)
}

func (m *MemoryStorage) Save(_ context.Context, items []domain.CartLineItem) error {
	data, err := EncodeItems(items)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data

	return nil
}

func (m *MemoryStorage) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil

	return nil
}

// Record returns the raw stored bytes, nil when deleted or never written.
func (m *MemoryStorage) Record() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.data
}
