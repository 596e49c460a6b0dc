package enhance

import (
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docenhance/internal/dom"
)

// Viewport receives scroll requests resolved by a Navigator. ScrollTo
// brings the target into view with its top edge aligned to the top of the
// viewport, using smooth animated motion where the medium supports it.
type Viewport interface {
	ScrollTo(target *html.Node)
}

// NopViewport discards scroll requests. It is the default for build-time
// processing where no viewport exists.
type NopViewport struct{}

func (NopViewport) ScrollTo(*html.Node) {}

// MemoryViewport records scroll targets for inspection in tests.
type MemoryViewport struct {
	mu      sync.Mutex
	targets []*html.Node
}

// NewMemoryViewport creates an empty recording viewport.
func NewMemoryViewport() *MemoryViewport {
	return &MemoryViewport{}
}

func (v *MemoryViewport) ScrollTo(target *html.Node) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.targets = append(v.targets, target)
}

// Targets returns every scroll request in order.
func (v *MemoryViewport) Targets() []*html.Node {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*html.Node, len(v.targets))
	copy(out, v.targets)
	return out
}

// ScrollLink is one bound in-page anchor.
type ScrollLink struct {
	node     *html.Node
	fragment string
}

// Fragment returns the link's fragment identifier without the leading hash.
func (l *ScrollLink) Fragment() string {
	return l.fragment
}

// Node returns the anchor element in the page tree.
func (l *ScrollLink) Node() *html.Node {
	return l.node
}

// Navigator owns in-page navigation for one document. Clicks on bound
// links never fall through to full page navigation; the viewport scrolls
// only when the fragment resolves.
type Navigator struct {
	root     *html.Node
	viewport Viewport
	links    []*ScrollLink
}

// bindAnchors collects every same-page anchor under root into a Navigator.
// Anchors are left untouched in the tree; binding is a controller concern,
// so repeated passes cannot stack handlers.
func (e *Enhancer) bindAnchors(root *html.Node) *Navigator {
	nav := &Navigator{root: root, viewport: e.opts.Viewport}
	for _, a := range dom.FindAllByTag(root, atom.A) {
		href := dom.Attr(a, "href")
		if !strings.HasPrefix(href, "#") {
			continue
		}
		nav.links = append(nav.links, &ScrollLink{
			node:     a,
			fragment: strings.TrimPrefix(href, "#"),
		})
	}
	return nav
}

// Links returns the bound in-page anchors in document order.
func (n *Navigator) Links() []*ScrollLink {
	return n.links
}

// Click handles an activation of a bound link. The default navigation is
// suppressed unconditionally, then the viewport scrolls if the fragment
// resolves. The return reports whether a scroll happened.
func (n *Navigator) Click(link *ScrollLink) bool {
	return n.Navigate(link.fragment)
}

// Navigate resolves a fragment identifier against the live document and
// scrolls its element into view. Fragments that resolve to nothing,
// including the bare empty fragment, are dropped silently.
func (n *Navigator) Navigate(fragment string) bool {
	target := dom.FindByID(n.root, fragment)
	if target == nil {
		return false
	}
	n.viewport.ScrollTo(target)
	return true
}
