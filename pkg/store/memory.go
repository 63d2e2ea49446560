package store

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// MemoryStore keeps items in process memory. A single mutex serializes all writes,
// which satisfies the per-key atomicity contract.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[Namespace]map[string]Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[Namespace]map[string]Item)}
}

func (m *MemoryStore) Get(_ context.Context, ns Namespace, key string) (Item, error) {
	if err := validateKey(ns, key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[ns][key]
	if !ok {
		return nil, ErrNotFound
	}
	return item.Clone(), nil
}

func (m *MemoryStore) Create(_ context.Context, ns Namespace, key string, item Item) error {
	if err := validateKey(ns, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.items[ns]
	if !ok {
		table = make(map[string]Item)
		m.items[ns] = table
	}
	if _, exists := table[key]; exists {
		return ErrDuplicate
	}
	table[key] = item.Clone()
	return nil
}

func (m *MemoryStore) Update(_ context.Context, ns Namespace, key string, fields Item) error {
	if err := validateKey(ns, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[ns][key]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		item[k] = v
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, ns Namespace, key string) error {
	if err := validateKey(ns, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items[ns], key)
	return nil
}

func (m *MemoryStore) AdjustDecimal(_ context.Context, ns Namespace, key string, field string, delta decimal.Decimal) (Item, error) {
	if err := validateKey(ns, key); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[ns][key]
	if !ok {
		return nil, ErrNotFound
	}
	updated := item.Clone()
	if err := addDecimal(updated, field, delta); err != nil {
		return nil, err
	}
	m.items[ns][key] = updated
	return updated.Clone(), nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }
