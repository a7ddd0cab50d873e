package app

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Option is one entry of the homepage dropdown.
type Option struct {
	ID    ItemID
	Title string
}

// Selector reads and writes the per-type homepage setting.
type Selector struct {
	registry *Registry
	options  OptionStore
	content  ContentStore
	logger   *slog.Logger
}

// NewSelector wires a Selector to its stores.
func NewSelector(registry *Registry, options OptionStore, content ContentStore, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{registry: registry, options: options, content: content, logger: logger}
}

// Homepage returns the stored reference for a type. It never fails:
// missing, unreadable and malformed values all read as None.
func (s *Selector) Homepage(ctx context.Context, pt PostType) Ref {
	raw, ok, err := s.options.Option(ctx, pt.HomepageOption())
	if err != nil {
		s.logger.WarnContext(ctx, "read homepage setting", "type", pt.Name, "error", err)
		return None()
	}
	if !ok {
		return None()
	}
	ref, err := ParseRef(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "stored homepage setting is malformed", "type", pt.Name, "value", raw)
		return None()
	}
	return ref
}

// SetHomepage stores raw as the homepage of the named type. Only the
// syntax of raw is checked; the target is re-validated at render time.
func (s *Selector) SetHomepage(ctx context.Context, typ, raw string) (Ref, error) {
	pt, err := s.registry.Lookup(typ)
	if err != nil {
		return None(), err
	}
	ref, err := ParseRef(raw)
	if err != nil {
		return None(), err
	}
	if err := s.options.SetOption(ctx, pt.HomepageOption(), ref.String()); err != nil {
		return None(), err
	}
	s.logger.InfoContext(ctx, "homepage updated", "type", pt.Name, "ref", ref.String())
	return ref, nil
}

// Options lists the published items of a type, alphabetically by title.
func (s *Selector) Options(ctx context.Context, pt PostType) ([]Option, error) {
	items, err := s.content.ListItems(ctx, pt.Name, Published())
	if err != nil {
		return nil, err
	}
	opts := make([]Option, 0, len(items))
	for _, it := range items {
		if !it.Published() {
			continue
		}
		opts = append(opts, Option{ID: it.ID, Title: it.DisplayTitle()})
	}
	SortByTitle(opts, func(o Option) (string, ItemID) { return o.Title, o.ID })
	return opts, nil
}

// SortByTitle orders s by collated title, then by ID.
func SortByTitle[T any](s []T, key func(T) (string, ItemID)) {
	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(s, func(i, j int) bool {
		ti, idi := key(s[i])
		tj, idj := key(s[j])
		if cmp := c.CompareString(ti, tj); cmp != 0 {
			return cmp < 0
		}
		return idi < idj
	})
}
