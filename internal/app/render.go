package app

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// PageView is what the page template needs to draw one public page.
type PageView struct {
	Type        PostType
	Title       string
	Body        template.HTML
	Item        *Item
	Placeholder bool
}

// Renderer turns stored Markdown into sanitized HTML.
type Renderer struct {
	policy *bluemonday.Policy
}

// NewRenderer uses the bluemonday UGC policy for every body.
func NewRenderer() *Renderer {
	return &Renderer{policy: bluemonday.UGCPolicy()}
}

// Body renders an item body. The output depends only on the input.
func (r *Renderer) Body(markdown string) template.HTML {
	html := blackfriday.Run([]byte(markdown), blackfriday.WithExtensions(blackfriday.CommonExtensions))
	return template.HTML(r.policy.SanitizeBytes(html))
}

// Archive renders the archive view of pt for a resolved homepage.
func (r *Renderer) Archive(pt PostType, res Resolution) PageView {
	it, ok := res.Item()
	if !ok {
		return PageView{
			Type:        pt,
			Title:       pt.Label,
			Body:        template.HTML("<p>" + template.HTMLEscapeString(pt.PlaceholderText()) + "</p>"),
			Placeholder: true,
		}
	}
	return r.Page(pt, it)
}

// Page renders a single item as if it were viewed directly.
func (r *Renderer) Page(pt PostType, it Item) PageView {
	return PageView{
		Type:  pt,
		Title: it.DisplayTitle(),
		Body:  r.Body(it.Body),
		Item:  &it,
	}
}
