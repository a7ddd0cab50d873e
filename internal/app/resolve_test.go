package app

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()
	reg := testRegistry(t)
	about, _ := reg.Lookup("about")
	store := NewMemoryStore()

	published := mustCreate(t, store, Item{Type: "about", Slug: "welcome", Title: "Welcome", Status: StatusPublished})
	draft := mustCreate(t, store, Item{Type: "about", Slug: "draft", Title: "Draft", Status: StatusDraft})
	other := mustCreate(t, store, Item{Type: "services", Slug: "consulting", Title: "Consulting", Status: StatusPublished})

	tests := []struct {
		name  string
		ref   Ref
		found bool
	}{
		{"unset", None(), false},
		{"published", Some(published.ID), true},
		{"draft", Some(draft.ID), false},
		{"other type", Some(other.ID), false},
		{"missing", Some(9999), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(ctx, store, about, tt.ref, nil)
			assert.Equal(t, tt.found, res.Found())
			it, ok := res.Item()
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, published.ID, it.ID)
			}
		})
	}
}

func TestResolveTreatsLookupFailureAsNotFound(t *testing.T) {
	reg := testRegistry(t)
	about, _ := reg.Lookup("about")
	store := failingStore{MemoryStore: NewMemoryStore(), err: errBoom}

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	res := Resolve(context.Background(), store, about, Some(1), logger)
	assert.False(t, res.Found())
	assert.Contains(t, logs.String(), `"msg":"resolve homepage"`)
	assert.Contains(t, logs.String(), `"error":"boom"`)

	assert.False(t, Resolve(context.Background(), store, about, Some(1), nil).Found())
}

func TestResolveAfterUnpublishAndDelete(t *testing.T) {
	ctx := context.Background()
	reg := testRegistry(t)
	about, _ := reg.Lookup("about")
	store := NewMemoryStore()
	it := mustCreate(t, store, Item{Type: "about", Slug: "home", Title: "Home", Status: StatusPublished})

	assert.True(t, Resolve(ctx, store, about, Some(it.ID), nil).Found())

	it.Status = StatusPrivate
	assert.NoError(t, store.UpdateItem(ctx, it))
	assert.False(t, Resolve(ctx, store, about, Some(it.ID), nil).Found())

	it.Status = StatusPublished
	assert.NoError(t, store.UpdateItem(ctx, it))
	assert.NoError(t, store.DeleteItem(ctx, it.ID))
	assert.False(t, Resolve(ctx, store, about, Some(it.ID), nil).Found())
}
