package app

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ItemID identifies a content item. Valid IDs are positive.
type ItemID int64

func (id ItemID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Status is the publication state of a content item.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusPrivate   Status = "private"
	StatusPublished Status = "published"
	StatusTrash     Status = "trash"
)

// Statuses lists every status in the order the editor offers them.
var Statuses = []Status{StatusDraft, StatusPending, StatusPrivate, StatusPublished, StatusTrash}

// ParseStatus accepts one of the known statuses.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Item is one addressable unit of authored content.
type Item struct {
	ID        ItemID
	Type      string
	Slug      string
	Title     string
	Body      string
	Status    Status
	Parent    Ref
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Published reports whether the item is visible to visitors.
func (it Item) Published() bool {
	return it.Status == StatusPublished
}

// DisplayTitle falls back to a title derived from the slug.
func (it Item) DisplayTitle() string {
	if strings.TrimSpace(it.Title) != "" {
		return it.Title
	}
	return SlugTitle(it.Slug)
}

// ErrInvalidRef reports an identifier that is not a valid item reference.
var ErrInvalidRef = errors.New("invalid item reference")

// Ref is an optional reference to a content item.
type Ref struct {
	id ItemID
	ok bool
}

// None returns the empty reference.
func None() Ref { return Ref{} }

// Some returns a reference to id. Non-positive IDs give None.
func Some(id ItemID) Ref {
	if id <= 0 {
		return Ref{}
	}
	return Ref{id: id, ok: true}
}

// ParseRef reads the stored form of a reference. "" and "0" mean none.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return None(), nil
	}
	if strings.ContainsFunc(s, func(r rune) bool { return r < '0' || r > '9' }) {
		return None(), fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return None(), fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}
	return Some(ItemID(n)), nil
}

// Get returns the referenced ID and whether the reference is set.
func (r Ref) Get() (ItemID, bool) {
	return r.id, r.ok
}

// IsSet reports whether the reference points anywhere.
func (r Ref) IsSet() bool {
	return r.ok
}

// String returns the stored form of the reference.
func (r Ref) String() string {
	if !r.ok {
		return "0"
	}
	return r.id.String()
}

var slugAllowed = regexp.MustCompile(`^[a-z0-9_\-]+$`)
var dashRun = regexp.MustCompile(`-+`)

// NormalizeSlug normalizes raw slug input into the canonical stored slug.
func NormalizeSlug(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if strings.ContainsAny(trimmed, "/\\?&:#'\"") || strings.Contains(trimmed, "..") {
		return "", errors.New("slug contains invalid path characters")
	}

	trimmed = stripDiacritics(trimmed)
	trimmed = strings.ReplaceAll(trimmed, "%20", " ")
	trimmed = normalizeUnicode(trimmed)
	trimmed = strings.ToLower(trimmed)
	trimmed = dashRun.ReplaceAllString(trimmed, "-")
	trimmed = strings.Trim(trimmed, "-")

	if trimmed == "" {
		return "", errors.New("empty slug")
	}

	if !slugAllowed.MatchString(trimmed) {
		return "", errors.New("slug contains invalid characters")
	}

	return trimmed, nil
}

func normalizeUnicode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == '_' || unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			// skip everything else
		}
	}
	return b.String()
}

// SlugTitle converts a slug into a human-friendly title.
func SlugTitle(slug string) string {
	parts := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, part := range parts {
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripDiacritics(s string) string {
	stripped, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return stripped
}
