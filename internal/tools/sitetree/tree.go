package sitetree

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"sectionsite/internal/app"
)

// Node is one item in a content type's parent/child tree.
type Node struct {
	ID        app.ItemID `json:"id"`
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	Status    app.Status `json:"status"`
	Path      string     `json:"path"`
	Homepage  bool       `json:"homepage,omitempty"`
	Orphan    bool       `json:"orphan,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
	Children  []*Node    `json:"children,omitempty"`
}

// Tree is the exported snapshot of one content type.
type Tree struct {
	GeneratedAt time.Time `json:"generated_at"`
	Type        string    `json:"type"`
	Archive     string    `json:"archive"`
	Homepage    string    `json:"homepage"`
	Items       int       `json:"items"`
	Roots       []*Node   `json:"roots"`
}

// Export loads every item of pt and arranges it as a tree.
func Export(ctx context.Context, store app.ContentStore, pt app.PostType, homepage app.Ref) (Tree, error) {
	items, err := store.ListItems(ctx, pt.Name, app.ListFilter{})
	if err != nil {
		return Tree{}, fmt.Errorf("list %s items: %w", pt.Name, err)
	}
	tree := Build(pt, items, homepage)
	tree.GeneratedAt = time.Now().UTC()
	return tree, nil
}

// Build arranges items by parent. Items whose parent is missing, or that
// sit on a parent loop, are promoted to roots and flagged as orphans.
func Build(pt app.PostType, items []app.Item, homepage app.Ref) Tree {
	homeID, _ := homepage.Get()
	nodes := make(map[app.ItemID]*Node, len(items))
	for _, it := range items {
		nodes[it.ID] = &Node{
			ID:        it.ID,
			Slug:      it.Slug,
			Title:     it.DisplayTitle(),
			Status:    it.Status,
			Homepage:  it.ID == homeID,
			UpdatedAt: it.UpdatedAt,
		}
	}

	parents := make(map[app.ItemID]app.ItemID, len(items))
	for _, it := range items {
		if pid, ok := it.Parent.Get(); ok && pt.Hierarchical {
			parents[it.ID] = pid
		}
	}

	var roots []*Node
	for _, it := range items {
		node := nodes[it.ID]
		pid, hasParent := parents[it.ID]
		parent, known := nodes[pid]
		switch {
		case !hasParent:
			roots = append(roots, node)
		case !known || onLoop(it.ID, parents):
			node.Orphan = true
			roots = append(roots, node)
		default:
			parent.Children = append(parent.Children, node)
		}
	}

	sortNodes(roots)
	for _, root := range roots {
		assignPaths(root, pt.ArchivePath())
	}

	return Tree{
		Type:     pt.Name,
		Archive:  pt.ArchivePath(),
		Homepage: homepage.String(),
		Items:    len(items),
		Roots:    roots,
	}
}

// onLoop reports whether walking up from id returns to id.
func onLoop(id app.ItemID, parents map[app.ItemID]app.ItemID) bool {
	seen := map[app.ItemID]struct{}{}
	cur := id
	for {
		next, ok := parents[cur]
		if !ok {
			return false
		}
		if next == id {
			return true
		}
		if _, dup := seen[next]; dup {
			return false
		}
		seen[next] = struct{}{}
		cur = next
	}
}

func sortNodes(nodes []*Node) {
	app.SortByTitle(nodes, func(n *Node) (string, app.ItemID) { return n.Title, n.ID })
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

func assignPaths(n *Node, base string) {
	n.Path = base + n.Slug
	for _, child := range n.Children {
		assignPaths(child, n.Path+"/")
	}
}

// WriteJSON encodes the tree with indentation.
func (t Tree) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// WriteOutline prints one indented line per item.
func (t Tree) WriteOutline(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s (%s) homepage=%s\n", t.Type, t.Archive, t.Homepage); err != nil {
		return err
	}
	var walk func(nodes []*Node, depth int) error
	walk = func(nodes []*Node, depth int) error {
		for _, n := range nodes {
			var flags []string
			if n.Homepage {
				flags = append(flags, "homepage")
			}
			if n.Orphan {
				flags = append(flags, "orphan")
			}
			line := fmt.Sprintf("%s#%d %s [%s] %s", strings.Repeat("  ", depth+1), n.ID, n.Title, n.Status, n.Path)
			if len(flags) > 0 {
				line += " (" + strings.Join(flags, ", ") + ")"
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
			if err := walk(n.Children, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(t.Roots, 0)
}
