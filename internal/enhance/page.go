package enhance

import (
	"io"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docenhance/internal/foundation/errors"
)

// Stats summarizes what an enhancement pass did to a page.
type Stats struct {
	CopyButtons   int  `json:"copy_buttons"`
	ButtonsAdded  int  `json:"buttons_added"`
	TablesWrapped int  `json:"tables_wrapped"`
	AnchorsBound  int  `json:"anchors_bound"`
	MathInjected  bool `json:"math_injected"`
	AssetsLinked  bool `json:"assets_linked"`
}

// Page is an enhanced document together with its live behavior
// controllers. The controllers stay bound to nodes in the page tree, so
// state changes (copy feedback) are visible in the rendered markup.
type Page struct {
	root    *html.Node
	buttons []*CopyButton
	nav     *Navigator
	stats   Stats
}

// Root returns the document root the page was built from.
func (p *Page) Root() *html.Node {
	return p.root
}

// Buttons returns the copy button controllers in document order.
func (p *Page) Buttons() []*CopyButton {
	return p.buttons
}

// Navigator returns the in-page navigation controller.
func (p *Page) Navigator() *Navigator {
	return p.nav
}

// Links returns the bound in-page anchors in document order.
func (p *Page) Links() []*ScrollLink {
	return p.nav.Links()
}

// Stats returns what the enhancement pass did.
func (p *Page) Stats() Stats {
	return p.stats
}

// Render serializes the page tree to w.
func (p *Page) Render(w io.Writer) error {
	if err := html.Render(w, p.root); err != nil {
		return errors.WrapError(err, errors.CategoryEnhance, "render page").Build()
	}
	return nil
}
