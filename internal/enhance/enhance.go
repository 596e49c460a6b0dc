package enhance

import (
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docenhance/internal/foundation/errors"
)

// Defaults for the copy affordance and asset layout.
const (
	DefaultIdleGlyph    = "📋"
	DefaultSuccessGlyph = "✅"
	DefaultRevertAfter  = 2 * time.Second
	DefaultAssetBase    = "/assets/docenhance"
)

// MathOptions controls MathJax configuration injection.
type MathOptions struct {
	Disabled bool
	Config   MathConfig
}

// CopyButtonOptions controls copy button injection and feedback.
type CopyButtonOptions struct {
	Disabled     bool
	IdleGlyph    string
	SuccessGlyph string
	RevertAfter  time.Duration
}

// ScrollOptions controls in-page anchor binding.
type ScrollOptions struct {
	Disabled bool
}

// TableOptions controls responsive table wrapping.
type TableOptions struct {
	Disabled     bool
	WrapperClass string
}

// AssetOptions controls injection of stylesheet and runtime script
// references. BasePath is the site-absolute directory the assets are
// served from.
type AssetOptions struct {
	Disabled bool
	BasePath string
}

// Options configures an Enhancer. The zero value enables every pass with
// its defaults; individual passes opt out through their Disabled flag.
// Clipboard, Viewport and Clock are injection points for the platform
// effects the controllers produce.
type Options struct {
	Math       MathOptions
	CopyButton CopyButtonOptions
	Scroll     ScrollOptions
	Tables     TableOptions
	Assets     AssetOptions

	Clipboard Clipboard
	Viewport  Viewport
	Clock     clockwork.Clock
}

func (o Options) withDefaults() Options {
	if o.Math.Config.isZero() {
		o.Math.Config = DefaultMathConfig()
	}
	if o.CopyButton.IdleGlyph == "" {
		o.CopyButton.IdleGlyph = DefaultIdleGlyph
	}
	if o.CopyButton.SuccessGlyph == "" {
		o.CopyButton.SuccessGlyph = DefaultSuccessGlyph
	}
	if o.CopyButton.RevertAfter <= 0 {
		o.CopyButton.RevertAfter = DefaultRevertAfter
	}
	if o.Tables.WrapperClass == "" {
		o.Tables.WrapperClass = DefaultTableWrapperClass
	}
	if o.Assets.BasePath == "" {
		o.Assets.BasePath = DefaultAssetBase
	}
	if o.Clipboard == nil {
		o.Clipboard = NopClipboard{}
	}
	if o.Viewport == nil {
		o.Viewport = NopViewport{}
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}

// Enhancer applies the enhancement passes to parsed documents. One
// Enhancer serves a whole site; it carries no per-page state.
type Enhancer struct {
	opts Options
}

// New creates an Enhancer with defaults applied over opts.
func New(opts Options) *Enhancer {
	return &Enhancer{opts: opts.withDefaults()}
}

// Apply runs every enabled pass over the document rooted at root and
// returns the page handle with its behavior controllers. Apply is
// idempotent: reapplying to an already enhanced tree binds controllers to
// the existing nodes instead of injecting duplicates.
func (e *Enhancer) Apply(root *html.Node) (*Page, error) {
	if root == nil {
		return nil, errors.EnhanceError("apply requires a parsed document").Build()
	}

	page := &Page{root: root}

	if !e.opts.Math.Disabled {
		injected, err := e.injectMathConfig(root)
		if err != nil {
			return nil, err
		}
		page.stats.MathInjected = injected
	}

	if !e.opts.Assets.Disabled {
		page.stats.AssetsLinked = e.injectAssetTags(root)
	}

	if !e.opts.CopyButton.Disabled {
		page.buttons, page.stats.ButtonsAdded = e.attachCopyButtons(root)
		page.stats.CopyButtons = len(page.buttons)
	}

	if !e.opts.Tables.Disabled {
		page.stats.TablesWrapped = e.wrapTables(root)
	}

	page.nav = &Navigator{root: root, viewport: e.opts.Viewport}
	if !e.opts.Scroll.Disabled {
		page.nav = e.bindAnchors(root)
		page.stats.AnchorsBound = len(page.nav.Links())
	}

	return page, nil
}

// ApplyHTML parses a complete document from r, enhances it and renders the
// result to w.
func (e *Enhancer) ApplyHTML(r io.Reader, w io.Writer) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryParse, "parse document").Build()
	}
	page, err := e.Apply(doc)
	if err != nil {
		return nil, err
	}
	if err := page.Render(w); err != nil {
		return nil, err
	}
	return page, nil
}
