package app

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  ItemID
	items   map[ItemID]Item
	options map[string]string
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:  1,
		items:   make(map[ItemID]Item),
		options: make(map[string]string),
		now:     time.Now,
	}
}

// Migrate is a no-op; the maps are ready on construction.
func (m *MemoryStore) Migrate(context.Context) error { return nil }

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

// Item returns the item with id, or ErrNotFound.
func (m *MemoryStore) Item(_ context.Context, id ItemID) (Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	return it, nil
}

// ItemBySlug finds the item of typ with slug under parent.
func (m *MemoryStore) ItemBySlug(_ context.Context, typ string, parent Ref, slug string) (Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, it := range m.items {
		if it.Type == typ && it.Parent == parent && it.Slug == slug {
			return it, nil
		}
	}
	return Item{}, ErrNotFound
}

// ListItems returns the items of typ matching filter, in ID order.
func (m *MemoryStore) ListItems(_ context.Context, typ string, filter ListFilter) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Item
	for _, it := range m.items {
		if it.Type != typ {
			continue
		}
		if filter.Status != nil && it.Status != *filter.Status {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateItem assigns an ID and timestamps and stores it.
func (m *MemoryStore) CreateItem(_ context.Context, it Item) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTaken(it) {
		return Item{}, ErrDuplicateSlug
	}
	it.ID = m.nextID
	m.nextID++
	now := m.now()
	it.CreatedAt, it.UpdatedAt = now, now
	m.items[it.ID] = it
	return it, nil
}

// UpdateItem replaces a stored item. The type and creation time are kept.
func (m *MemoryStore) UpdateItem(_ context.Context, it Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.items[it.ID]
	if !ok {
		return ErrNotFound
	}
	it.Type = old.Type
	if m.slugTaken(it) {
		return ErrDuplicateSlug
	}
	it.CreatedAt = old.CreatedAt
	it.UpdatedAt = m.now()
	m.items[it.ID] = it
	return nil
}

// DeleteItem removes the item with id.
func (m *MemoryStore) DeleteItem(_ context.Context, id ItemID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// Option returns a stored option and whether it was set.
func (m *MemoryStore) Option(_ context.Context, name string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.options[name]
	return v, ok, nil
}

// SetOption stores or replaces an option.
func (m *MemoryStore) SetOption(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.options[name] = value
	return nil
}

// slugTaken must be called with mu held.
func (m *MemoryStore) slugTaken(it Item) bool {
	for id, other := range m.items {
		if id != it.ID && other.Type == it.Type && other.Parent == it.Parent && other.Slug == it.Slug {
			return true
		}
	}
	return false
}
