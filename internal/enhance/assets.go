package enhance

import (
	_ "embed"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docenhance/internal/dom"
)

//go:embed assets/enhance.css
var enhanceCSS []byte

//go:embed assets/enhance.js
var enhanceJS []byte

// StylesheetCSS returns the stylesheet shipped next to enhanced pages.
func StylesheetCSS() []byte {
	return enhanceCSS
}

// RuntimeJS returns the browser runtime shipped next to enhanced pages.
func RuntimeJS() []byte {
	return enhanceJS
}

// injectAssetTags ensures the document head references the shipped
// stylesheet and runtime script. References already present are kept, so
// the pass is idempotent. Returns whether the tags are in place.
func (e *Enhancer) injectAssetTags(root *html.Node) bool {
	head := dom.FirstByTag(root, atom.Head)
	if head == nil {
		return false
	}

	base := strings.TrimSuffix(e.opts.Assets.BasePath, "/")
	cssHref := base + "/enhance.css"
	jsSrc := base + "/enhance.js"

	if !hasChildWithAttr(head, atom.Link, "href", cssHref) {
		head.AppendChild(dom.NewElement(atom.Link,
			html.Attribute{Key: "rel", Val: "stylesheet"},
			html.Attribute{Key: "href", Val: cssHref},
		))
	}
	if !hasChildWithAttr(head, atom.Script, "src", jsSrc) {
		head.AppendChild(dom.NewElement(atom.Script,
			html.Attribute{Key: "src", Val: jsSrc},
			html.Attribute{Key: "defer", Val: ""},
		))
	}
	return true
}

func hasChildWithAttr(parent *html.Node, tag atom.Atom, key, val string) bool {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElement(c, tag) && dom.Attr(c, key) == val {
			return true
		}
	}
	return false
}
