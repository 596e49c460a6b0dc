package enhance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docenhance/internal/dom"
)

const scrollMarkup = `<html><head></head><body>
<nav>
  <a href="#section-1">One</a>
  <a href="#section-9">Missing</a>
  <a href="#">Top</a>
  <a href="/other/page">External</a>
</nav>
<h2 id="section-1">Section One</h2>
</body></html>`

func TestAnchorBinding(t *testing.T) {
	page := applyWith(t, scrollMarkup, Options{Viewport: NewMemoryViewport()})

	links := page.Links()
	require.Len(t, links, 3, "only same-page anchors bind, external ones stay untouched")
	assert.Equal(t, "section-1", links[0].Fragment())
	assert.Equal(t, "section-9", links[1].Fragment())
	assert.Equal(t, "", links[2].Fragment())
	assert.Equal(t, 3, page.Stats().AnchorsBound)
}

func TestClickScrollsToResolvedTarget(t *testing.T) {
	viewport := NewMemoryViewport()
	page := applyWith(t, scrollMarkup, Options{Viewport: viewport})

	scrolled := page.Navigator().Click(page.Links()[0])
	assert.True(t, scrolled)

	targets := viewport.Targets()
	require.Len(t, targets, 1)
	assert.Equal(t, "section-1", dom.Attr(targets[0], "id"))
}

func TestClickUnresolvedFragmentScrollsNothing(t *testing.T) {
	viewport := NewMemoryViewport()
	page := applyWith(t, scrollMarkup, Options{Viewport: viewport})

	assert.False(t, page.Navigator().Click(page.Links()[1]), "missing target must not scroll")
	assert.False(t, page.Navigator().Click(page.Links()[2]), "bare hash must not scroll")
	assert.Empty(t, viewport.Targets())
}

func TestNavigateResolvesAgainstLiveTree(t *testing.T) {
	viewport := NewMemoryViewport()
	page := applyWith(t, scrollMarkup, Options{Viewport: viewport})

	require.False(t, page.Navigator().Navigate("appendix"))

	// Resolution happens at click time, so content added after binding is
	// reachable.
	body := dom.FirstByTag(page.Root(), atom.Body)
	body.AppendChild(dom.NewElement(atom.H2, html.Attribute{Key: "id", Val: "appendix"}))

	assert.True(t, page.Navigator().Navigate("appendix"))
	require.Len(t, viewport.Targets(), 1)
	assert.Equal(t, "appendix", dom.Attr(viewport.Targets()[0], "id"))
}

func TestScrollDisabled(t *testing.T) {
	page := applyWith(t, scrollMarkup, Options{Scroll: ScrollOptions{Disabled: true}})

	assert.Empty(t, page.Links())
	assert.Equal(t, 0, page.Stats().AnchorsBound)
	require.NotNil(t, page.Navigator(), "navigator stays usable for direct calls")
}
