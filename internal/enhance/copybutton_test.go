package enhance

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docenhance/internal/dom"
)

func parseDoc(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err, "should parse test markup")
	return doc
}

func applyWith(t *testing.T, markup string, opts Options) *Page {
	t.Helper()
	page, err := New(opts).Apply(parseDoc(t, markup))
	require.NoError(t, err, "apply should succeed")
	return page
}

func TestCopyButtonInjection(t *testing.T) {
	page := applyWith(t, `<html><body><pre><code>print('hi')</code></pre></body></html>`, Options{})

	require.Len(t, page.Buttons(), 1, "one code block should get one button")
	assert.Equal(t, 1, page.Stats().ButtonsAdded)

	btn := page.Buttons()[0]
	node := btn.Node()
	assert.Equal(t, "button", dom.Attr(node, "type"))
	assert.True(t, dom.HasClass(node, "copy-button"))
	assert.Equal(t, "Copy code", dom.Attr(node, "aria-label"))
	assert.Equal(t, DefaultIdleGlyph, btn.Glyph())
	assert.Equal(t, StateIdle, btn.State())

	pre := node.Parent
	require.True(t, dom.IsElement(pre, atom.Pre), "button should be appended to the pre block")
	assert.Contains(t, dom.Attr(pre, "style"), "position: relative")
}

func TestCopyButtonSkipsBarePre(t *testing.T) {
	page := applyWith(t, `<html><body><pre>not a code block</pre></body></html>`, Options{})
	assert.Empty(t, page.Buttons(), "pre without code child should get no button")
}

func TestCopyButtonPreservesInlineStyle(t *testing.T) {
	page := applyWith(t, `<html><body><pre style="color: red; position: static"><code>x</code></pre></body></html>`, Options{})

	require.Len(t, page.Buttons(), 1)
	style := dom.Attr(page.Buttons()[0].Node().Parent, "style")
	assert.Contains(t, style, "color: red", "unrelated declarations must survive")
	assert.Contains(t, style, "position: relative", "position must be overridden")
	assert.NotContains(t, style, "static")
}

func TestActivateCopiesExactText(t *testing.T) {
	const source = "def f(x):\n\treturn x  # trailing  spaces  \n"
	clip := NewMemoryClipboard()
	page := applyWith(t,
		"<html><body><pre><code>"+source+"</code></pre></body></html>",
		Options{Clipboard: clip, Clock: clockwork.NewFakeClock()})

	require.Len(t, page.Buttons(), 1)
	btn := page.Buttons()[0]

	require.NoError(t, <-btn.Activate(context.Background()))
	assert.Equal(t, source, clip.Text(), "clipboard must receive the block text byte for byte")
	assert.Equal(t, StateSuccess, btn.State())
	assert.Equal(t, DefaultSuccessGlyph, btn.Glyph())
}

func TestEmptyBlocksGetNoButton(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{"empty", `<html><body><pre><code></code></pre></body></html>`},
		{"whitespace only", "<html><body><pre><code>  \n\t </code></pre></body></html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := applyWith(t, tt.markup, Options{})
			assert.Empty(t, page.Buttons(), "blocks with no copyable text get no control")
			assert.Equal(t, 0, page.Stats().ButtonsAdded)
		})
	}
}

func TestGuardTrimsButPayloadDoesNot(t *testing.T) {
	// Leading and trailing whitespace qualifies the block as long as any
	// visible text exists, and the payload keeps it.
	const source = "\n  x = 1  \n"
	clip := NewMemoryClipboard()
	page := applyWith(t, "<html><body><pre><code>"+source+"</code></pre></body></html>",
		Options{Clipboard: clip, Clock: clockwork.NewFakeClock()})

	require.Len(t, page.Buttons(), 1)
	require.NoError(t, <-page.Buttons()[0].Activate(context.Background()))
	assert.Equal(t, source, clip.Text())
}

func TestActivateRejectionLeavesButtonIdle(t *testing.T) {
	clip := NewMemoryClipboard()
	clip.FailWith(errors.New("permission denied"))
	page := applyWith(t, `<html><body><pre><code>secret</code></pre></body></html>`,
		Options{Clipboard: clip, Clock: clockwork.NewFakeClock()})

	btn := page.Buttons()[0]
	err := <-btn.Activate(context.Background())
	require.Error(t, err, "rejection should be observable on the outcome channel")
	assert.Equal(t, StateIdle, btn.State(), "rejection must not flip feedback")
	assert.Equal(t, DefaultIdleGlyph, btn.Glyph())
	assert.Empty(t, clip.Writes())
}

func TestActivateWithoutClipboardIsSilent(t *testing.T) {
	page := applyWith(t, `<html><body><pre><code>x</code></pre></body></html>`, Options{})

	btn := page.Buttons()[0]
	err := <-btn.Activate(context.Background())
	assert.ErrorIs(t, err, ErrClipboardUnavailable)
	assert.Equal(t, StateIdle, btn.State())
}

func TestFeedbackRevertsAfterWindow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	clip := NewMemoryClipboard()
	page := applyWith(t, `<html><body><pre><code>x</code></pre></body></html>`,
		Options{Clipboard: clip, Clock: clock})

	btn := page.Buttons()[0]
	require.NoError(t, <-btn.Activate(context.Background()))
	require.Equal(t, StateSuccess, btn.State())

	clock.Advance(DefaultRevertAfter - time.Millisecond)
	assert.Equal(t, StateSuccess, btn.State(), "feedback must hold until the window elapses")

	clock.Advance(time.Millisecond)
	assert.Eventually(t, func() bool {
		return btn.State() == StateIdle
	}, time.Second, time.Millisecond, "feedback should revert once the window elapses")
	assert.Equal(t, DefaultIdleGlyph, btn.Glyph())
}

func TestRapidActivationsRestartRevertWindow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	clip := NewMemoryClipboard()
	page := applyWith(t, `<html><body><pre><code>x</code></pre></body></html>`,
		Options{Clipboard: clip, Clock: clock})

	btn := page.Buttons()[0]
	require.NoError(t, <-btn.Activate(context.Background()))

	clock.Advance(DefaultRevertAfter / 2)
	require.NoError(t, <-btn.Activate(context.Background()), "second activation inside the window")

	// The first activation's deadline passes; the restarted window keeps
	// feedback in success.
	clock.Advance(DefaultRevertAfter / 2)
	assert.Equal(t, StateSuccess, btn.State(), "revert window must restart on re-activation")

	clock.Advance(DefaultRevertAfter / 2)
	assert.Eventually(t, func() bool {
		return btn.State() == StateIdle
	}, time.Second, time.Millisecond, "feedback should revert after the restarted window")
}

func TestButtonsActIndependently(t *testing.T) {
	clock := clockwork.NewFakeClock()
	clip := NewMemoryClipboard()
	page := applyWith(t,
		`<html><body><pre><code>first</code></pre><pre><code>second</code></pre></body></html>`,
		Options{Clipboard: clip, Clock: clock})

	require.Len(t, page.Buttons(), 2)
	first, second := page.Buttons()[0], page.Buttons()[1]

	require.NoError(t, <-second.Activate(context.Background()))
	assert.Equal(t, StateIdle, first.State(), "sibling button state must not leak")
	assert.Equal(t, StateSuccess, second.State())
	assert.Equal(t, "second", clip.Text())
}

func TestCustomGlyphsAndWindow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	clip := NewMemoryClipboard()
	page := applyWith(t, `<html><body><pre><code>x</code></pre></body></html>`, Options{
		CopyButton: CopyButtonOptions{IdleGlyph: "copy", SuccessGlyph: "done", RevertAfter: 500 * time.Millisecond},
		Clipboard:  clip,
		Clock:      clock,
	})

	btn := page.Buttons()[0]
	assert.Equal(t, "copy", btn.Glyph())
	assert.Equal(t, "500", dom.Attr(btn.Node(), "data-revert-ms"))

	require.NoError(t, <-btn.Activate(context.Background()))
	assert.Equal(t, "done", btn.Glyph())

	clock.Advance(500 * time.Millisecond)
	assert.Eventually(t, func() bool {
		return btn.Glyph() == "copy"
	}, time.Second, time.Millisecond)
}
