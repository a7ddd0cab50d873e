package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryDefaultsPrefixAndLabel(t *testing.T) {
	reg, err := NewRegistry(PostType{Name: "about"}, PostType{Name: "services", Prefix: "what-we-do", Label: "Services"})
	require.NoError(t, err)

	about, err := reg.Lookup("about")
	require.NoError(t, err)
	assert.Equal(t, "about", about.Prefix)
	assert.Equal(t, "About", about.Label)
	assert.Equal(t, "/about/", about.ArchivePath())
	assert.Equal(t, "about_homepage", about.HomepageOption())

	svc, ok := reg.ByPrefix("what-we-do")
	require.True(t, ok)
	assert.Equal(t, "services", svc.Name)

	names := []string{}
	for _, pt := range reg.Types() {
		names = append(names, pt.Name)
	}
	assert.Equal(t, []string{"about", "services"}, names)
}

func TestNewRegistryRejectsBadTypes(t *testing.T) {
	cases := map[string][]PostType{
		"empty name":       {{Name: ""}},
		"unnormalized":     {{Name: "About Us"}},
		"bad prefix":       {{Name: "about", Prefix: "About/Us"}},
		"reserved prefix":  {{Name: "admin"}},
		"duplicate name":   {{Name: "about"}, {Name: "about", Prefix: "other"}},
		"duplicate prefix": {{Name: "about"}, {Name: "team", Prefix: "about"}},
	}
	for name, types := range cases {
		_, err := NewRegistry(types...)
		assert.Error(t, err, name)
	}
}

func TestRegistryLookupUnknown(t *testing.T) {
	reg, err := NewRegistry(PostType{Name: "about"})
	require.NoError(t, err)

	_, err = reg.Lookup("missing")
	assert.True(t, errors.Is(err, ErrUnknownType))

	_, ok := reg.ByPrefix("missing")
	assert.False(t, ok)
}

func TestRouteTableIsSorted(t *testing.T) {
	reg, err := NewRegistry(PostType{Name: "services"}, PostType{Name: "about"})
	require.NoError(t, err)
	assert.Equal(t, "about=about\nservices=services", reg.RouteTable())
}

func TestPlaceholderText(t *testing.T) {
	assert.Equal(t, DefaultPlaceholder, PostType{Name: "about"}.PlaceholderText())
	assert.Equal(t, "Coming soon", PostType{Name: "about", Placeholder: "Coming soon"}.PlaceholderText())
}
