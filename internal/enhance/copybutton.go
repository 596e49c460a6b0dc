package enhance

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docenhance/internal/dom"
	"git.home.luguber.info/inful/docenhance/internal/logfields"
)

// copyButtonClass marks injected copy buttons. The attachment pass uses it
// to bind to existing buttons instead of injecting twice.
const copyButtonClass = "copy-button"

// ButtonState is the visible feedback state of a copy button.
type ButtonState string

const (
	StateIdle    ButtonState = "idle"
	StateSuccess ButtonState = "success"
)

// CopyButton is the behavior controller for one injected button. It owns
// the button's feedback state and the timer that reverts success feedback
// back to idle.
type CopyButton struct {
	node  *html.Node
	text  string
	clip  Clipboard
	clock clockwork.Clock

	idleGlyph    string
	successGlyph string
	revertAfter  time.Duration

	mu     sync.Mutex
	state  ButtonState
	revert clockwork.Timer
	seq    int
}

// attachCopyButtons injects a copy button into each qualifying code block
// under root and returns a controller per button. Blocks whose text trims
// to empty get no control. Blocks that already carry a button keep it and
// only get a fresh controller bound, so repeated passes never duplicate
// affordances. The second return counts newly injected buttons.
func (e *Enhancer) attachCopyButtons(root *html.Node) ([]*CopyButton, int) {
	opts := e.opts.CopyButton
	var buttons []*CopyButton
	added := 0

	for _, pre := range dom.FindAllByTag(root, atom.Pre) {
		code := firstChildOf(pre, atom.Code)
		if code == nil {
			continue
		}

		// The copied payload keeps the exact text; only the guard trims.
		text := dom.TextContent(code)
		if strings.TrimSpace(text) == "" {
			continue
		}

		node := firstButtonChild(pre)
		if node == nil {
			ensureRelativePosition(pre)
			node = dom.NewElement(atom.Button,
				html.Attribute{Key: "type", Val: "button"},
				html.Attribute{Key: "class", Val: copyButtonClass},
				html.Attribute{Key: "aria-label", Val: "Copy code"},
				html.Attribute{Key: "data-success-glyph", Val: opts.SuccessGlyph},
				html.Attribute{Key: "data-revert-ms", Val: strconv.FormatInt(opts.RevertAfter.Milliseconds(), 10)},
			)
			dom.SetText(node, opts.IdleGlyph)
			pre.AppendChild(node)
			added++
		}

		buttons = append(buttons, &CopyButton{
			node:         node,
			text:         text,
			clip:         e.opts.Clipboard,
			clock:        e.opts.Clock,
			idleGlyph:    opts.IdleGlyph,
			successGlyph: opts.SuccessGlyph,
			revertAfter:  opts.RevertAfter,
			state:        StateIdle,
		})
	}
	return buttons, added
}

// firstChildOf returns pre's first direct child with the given tag, or nil.
func firstChildOf(n *html.Node, tag atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElement(c, tag) {
			return c
		}
	}
	return nil
}

func firstButtonChild(pre *html.Node) *html.Node {
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElement(c, atom.Button) && dom.HasClass(c, copyButtonClass) {
			return c
		}
	}
	return nil
}

// ensureRelativePosition forces position: relative on the block so the
// button can anchor to its corner. An existing position declaration is
// overridden, any other inline style is preserved.
func ensureRelativePosition(n *html.Node) {
	var decls []string
	replaced := false
	for _, d := range strings.Split(dom.Attr(n, "style"), ";") {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if prop, _, ok := strings.Cut(d, ":"); ok && strings.TrimSpace(strings.ToLower(prop)) == "position" {
			decls = append(decls, "position: relative")
			replaced = true
			continue
		}
		decls = append(decls, d)
	}
	if !replaced {
		decls = append(decls, "position: relative")
	}
	dom.SetAttr(n, "style", strings.Join(decls, "; "))
}

// Activate starts an asynchronous copy of the block's text. The returned
// channel receives the outcome exactly once: nil after the clipboard
// accepted the write and feedback switched to success, or the rejection
// error. A rejection leaves the button idle; nothing is surfaced on the
// page either way.
func (b *CopyButton) Activate(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		if err := b.clip.WriteText(ctx, b.text); err != nil {
			slog.Debug("clipboard write rejected", logfields.Error(err))
			done <- err
			return
		}
		b.showSuccess()
		done <- nil
	}()
	return done
}

// showSuccess flips feedback to the success glyph and restarts the revert
// timer. Restarting on every activation keeps rapid repeated clicks showing
// success for the full window after the last one.
func (b *CopyButton) showSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateSuccess
	dom.SetText(b.node, b.successGlyph)

	if b.revert != nil {
		b.revert.Stop()
	}
	b.seq++
	seq := b.seq
	b.revert = b.clock.AfterFunc(b.revertAfter, func() {
		b.revertToIdle(seq)
	})
}

// revertToIdle restores idle feedback. The sequence guard drops reverts
// that were already in flight when a newer activation restarted the timer.
func (b *CopyButton) revertToIdle(seq int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if seq != b.seq {
		return
	}
	b.state = StateIdle
	dom.SetText(b.node, b.idleGlyph)
}

// State returns the current feedback state.
func (b *CopyButton) State() ButtonState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Glyph returns the glyph currently shown on the button.
func (b *CopyButton) Glyph() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return dom.TextContent(b.node)
}

// Text returns the exact text an activation writes to the clipboard.
func (b *CopyButton) Text() string {
	return b.text
}

// Node returns the button element in the page tree.
func (b *CopyButton) Node() *html.Node {
	return b.node
}
