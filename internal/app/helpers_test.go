package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(
		PostType{Name: "about", Label: "About", Hierarchical: true},
		PostType{Name: "services", Label: "Services", Placeholder: "Services are coming soon."},
	)
	require.NoError(t, err)
	return reg
}

func mustCreate(t *testing.T, store ContentStore, it Item) Item {
	t.Helper()
	created, err := store.CreateItem(context.Background(), it)
	require.NoError(t, err)
	return created
}

// failingStore wraps a MemoryStore and fails lookups and listings with err.
type failingStore struct {
	*MemoryStore
	err error
}

func (f failingStore) Item(context.Context, ItemID) (Item, error) {
	return Item{}, f.err
}

func (f failingStore) ListItems(context.Context, string, ListFilter) ([]Item, error) {
	return nil, f.err
}

func (f failingStore) Option(context.Context, string) (string, bool, error) {
	return "", false, f.err
}

var errBoom = errors.New("boom")
