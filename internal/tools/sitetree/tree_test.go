package sitetree

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sectionsite/internal/app"
)

var about = app.PostType{Name: "about", Label: "About", Prefix: "about", Hierarchical: true}

func TestBuildNestsChildrenAndSortsByTitle(t *testing.T) {
	items := []app.Item{
		{ID: 1, Slug: "team", Title: "Team", Status: app.StatusPublished},
		{ID: 2, Slug: "history", Title: "History", Status: app.StatusPublished},
		{ID: 3, Slug: "leaders", Title: "Leaders", Status: app.StatusDraft, Parent: app.Some(1)},
		{ID: 4, Slug: "engineers", Title: "Engineers", Status: app.StatusPublished, Parent: app.Some(1)},
	}

	tree := Build(about, items, app.Some(2))

	require.Len(t, tree.Roots, 2)
	assert.Equal(t, "History", tree.Roots[0].Title)
	assert.True(t, tree.Roots[0].Homepage)
	team := tree.Roots[1]
	require.Len(t, team.Children, 2)
	assert.Equal(t, "Engineers", team.Children[0].Title)
	assert.Equal(t, "/about/team/leaders", team.Children[1].Path)
	assert.Equal(t, 4, tree.Items)
	assert.Equal(t, "2", tree.Homepage)
}

func TestBuildPromotesOrphansAndLoops(t *testing.T) {
	items := []app.Item{
		{ID: 1, Slug: "a", Title: "A", Parent: app.Some(2)},
		{ID: 2, Slug: "b", Title: "B", Parent: app.Some(1)},
		{ID: 3, Slug: "c", Title: "C", Parent: app.Some(99)},
	}

	tree := Build(about, items, app.None())

	require.Len(t, tree.Roots, 3)
	for _, root := range tree.Roots {
		assert.True(t, root.Orphan, root.Title)
	}
}

func TestBuildIgnoresParentsForFlatTypes(t *testing.T) {
	flat := app.PostType{Name: "services", Label: "Services", Prefix: "services"}
	items := []app.Item{
		{ID: 1, Slug: "a", Title: "A"},
		{ID: 2, Slug: "b", Title: "B", Parent: app.Some(1)},
	}

	tree := Build(flat, items, app.None())
	assert.Len(t, tree.Roots, 2)
}

func TestExportAndWriters(t *testing.T) {
	ctx := context.Background()
	store := app.NewMemoryStore()
	root, err := store.CreateItem(ctx, app.Item{Type: "about", Slug: "team", Title: "Team", Status: app.StatusPublished})
	require.NoError(t, err)
	_, err = store.CreateItem(ctx, app.Item{Type: "about", Slug: "leaders", Title: "Leaders", Status: app.StatusPublished, Parent: app.Some(root.ID)})
	require.NoError(t, err)

	tree, err := Export(ctx, store, about, app.Some(root.ID))
	require.NoError(t, err)
	assert.False(t, tree.GeneratedAt.IsZero())

	var outline bytes.Buffer
	require.NoError(t, tree.WriteOutline(&outline))
	assert.Contains(t, outline.String(), "about (/about/) homepage=1\n")
	assert.Contains(t, outline.String(), "  #1 Team [published] /about/team (homepage)\n")
	assert.Contains(t, outline.String(), "    #2 Leaders [published] /about/team/leaders\n")

	var buf bytes.Buffer
	require.NoError(t, tree.WriteJSON(&buf))
	var decoded Tree
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Roots, 1)
	assert.Equal(t, "leaders", decoded.Roots[0].Children[0].Slug)
}
