package app

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownType reports a content type that is not registered.
var ErrUnknownType = errors.New("unknown content type")

// DefaultPlaceholder is shown on an archive view without a usable homepage.
const DefaultPlaceholder = "No homepage has been selected for this section yet."

// reservedPrefixes are owned by the server itself.
var reservedPrefixes = map[string]struct{}{
	"admin":   {},
	"static":  {},
	"metrics": {},
	"healthz": {},
}

// PostType declares a content kind with a public archive view under Prefix.
type PostType struct {
	Name         string `mapstructure:"name"`
	Label        string `mapstructure:"label"`
	Prefix       string `mapstructure:"prefix"`
	Hierarchical bool   `mapstructure:"hierarchical"`
	Placeholder  string `mapstructure:"placeholder"`
}

// ArchivePath is the URL of the type's archive view.
func (pt PostType) ArchivePath() string {
	return "/" + pt.Prefix + "/"
}

// HomepageOption is the settings key holding the type's homepage reference.
func (pt PostType) HomepageOption() string {
	return pt.Name + "_homepage"
}

// PlaceholderText returns the notice shown when no homepage resolves.
func (pt PostType) PlaceholderText() string {
	if strings.TrimSpace(pt.Placeholder) != "" {
		return pt.Placeholder
	}
	return DefaultPlaceholder
}

// Registry holds the registered content types.
type Registry struct {
	types    []PostType
	byName   map[string]int
	byPrefix map[string]int
}

// NewRegistry validates and registers types in declaration order.
func NewRegistry(types ...PostType) (*Registry, error) {
	r := &Registry{
		byName:   make(map[string]int, len(types)),
		byPrefix: make(map[string]int, len(types)),
	}
	for _, pt := range types {
		name, err := NormalizeSlug(pt.Name)
		if err != nil || name != pt.Name {
			return nil, fmt.Errorf("content type name %q is not a normalized slug", pt.Name)
		}
		if pt.Prefix == "" {
			pt.Prefix = pt.Name
		}
		prefix, err := NormalizeSlug(pt.Prefix)
		if err != nil || prefix != pt.Prefix {
			return nil, fmt.Errorf("content type %s: prefix %q is not a normalized slug", pt.Name, pt.Prefix)
		}
		if _, reserved := reservedPrefixes[prefix]; reserved {
			return nil, fmt.Errorf("content type %s: prefix %q is reserved", pt.Name, prefix)
		}
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("content type %s registered twice", name)
		}
		if other, dup := r.byPrefix[prefix]; dup {
			return nil, fmt.Errorf("content type %s: prefix %q already used by %s", name, prefix, r.types[other].Name)
		}
		if pt.Label == "" {
			pt.Label = SlugTitle(name)
		}
		r.byName[name] = len(r.types)
		r.byPrefix[prefix] = len(r.types)
		r.types = append(r.types, pt)
	}
	return r, nil
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (PostType, error) {
	i, ok := r.byName[name]
	if !ok {
		return PostType{}, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return r.types[i], nil
}

// ByPrefix returns the type whose archive lives under prefix.
func (r *Registry) ByPrefix(prefix string) (PostType, bool) {
	i, ok := r.byPrefix[prefix]
	if !ok {
		return PostType{}, false
	}
	return r.types[i], true
}

// Types returns the registered types in declaration order.
func (r *Registry) Types() []PostType {
	out := make([]PostType, len(r.types))
	copy(out, r.types)
	return out
}

// RouteTable is the canonical prefix=type listing persisted on activation.
func (r *Registry) RouteTable() string {
	lines := make([]string, 0, len(r.types))
	for _, pt := range r.types {
		lines = append(lines, pt.Prefix+"="+pt.Name)
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}
