package app

import (
	"context"
	"errors"
)

var (
	// ErrNotFound signals that the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateSlug signals that a sibling already uses the slug.
	ErrDuplicateSlug = errors.New("duplicate slug")
)

// ItemLookup resolves a single item by ID. Missing items yield ErrNotFound.
type ItemLookup interface {
	Item(ctx context.Context, id ItemID) (Item, error)
}

// ListFilter narrows ListItems. A nil Status matches every status.
type ListFilter struct {
	Status *Status
}

// Published is the filter used by visitor-facing listings.
func Published() ListFilter {
	st := StatusPublished
	return ListFilter{Status: &st}
}

// ContentStore persists content items.
type ContentStore interface {
	ItemLookup
	ItemBySlug(ctx context.Context, typ string, parent Ref, slug string) (Item, error)
	ListItems(ctx context.Context, typ string, filter ListFilter) ([]Item, error)
	CreateItem(ctx context.Context, it Item) (Item, error)
	UpdateItem(ctx context.Context, it Item) error
	DeleteItem(ctx context.Context, id ItemID) error
}

// OptionStore is the site-wide key/value settings store.
type OptionStore interface {
	Option(ctx context.Context, name string) (string, bool, error)
	SetOption(ctx context.Context, name, value string) error
}

// Store bundles everything the server persists.
type Store interface {
	ContentStore
	OptionStore
	Migrate(ctx context.Context) error
	Close() error
}
