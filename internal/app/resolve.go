package app

import (
	"context"
	"errors"
	"log/slog"
)

// Resolution is the outcome of resolving a homepage reference.
type Resolution struct {
	item  Item
	found bool
}

// Item returns the resolved item and whether there was one.
func (r Resolution) Item() (Item, bool) {
	return r.item, r.found
}

// Found reports whether the reference resolved to a usable item.
func (r Resolution) Found() bool {
	return r.found
}

// Resolve turns ref into a published item of type pt. An unset reference,
// a missing item, an item of another type and an unpublished item all
// collapse into the same not-found result. Lookup failures are logged to
// logger, when non-nil, and treated the same way.
func Resolve(ctx context.Context, lookup ItemLookup, pt PostType, ref Ref, logger *slog.Logger) Resolution {
	id, ok := ref.Get()
	if !ok {
		return Resolution{}
	}
	it, err := lookup.Item(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) && logger != nil {
			logger.WarnContext(ctx, "resolve homepage", "type", pt.Name, "id", id, "error", err)
		}
		return Resolution{}
	}
	if it.Type != pt.Name || !it.Published() {
		return Resolution{}
	}
	return Resolution{item: it, found: true}
}
