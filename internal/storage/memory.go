package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage implementation, useful for tests and
// single-process deployments that import a dataset at startup.
type MemoryStorage struct {
	mu      sync.RWMutex
	tariffs []Tariff
}

// NewMemory returns an empty MemoryStorage.
func NewMemory() *MemoryStorage {
	return &MemoryStorage{}
}

// NewMemoryWithTariffs returns a MemoryStorage preloaded with list.
func NewMemoryWithTariffs(list []Tariff) *MemoryStorage {
	m := NewMemory()
	_ = m.ReplaceTariffs(context.Background(), list)
	return m
}

func (m *MemoryStorage) Close() error { return nil }

func (m *MemoryStorage) Ping(ctx context.Context) error { return nil }

func (m *MemoryStorage) ListTariffs(ctx context.Context) ([]Tariff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Tariff, len(m.tariffs))
	copy(out, m.tariffs)
	return out, nil
}

func (m *MemoryStorage) ReplaceTariffs(ctx context.Context, list []Tariff) error {
	cp := make([]Tariff, len(list))
	copy(cp, list)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Position < cp[j].Position })
	now := time.Now()
	for i := range cp {
		cp[i].ID = uint(i + 1)
		if cp[i].UpdatedAt.IsZero() {
			cp[i].UpdatedAt = now
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tariffs = cp
	return nil
}
