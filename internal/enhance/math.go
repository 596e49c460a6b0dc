package enhance

import (
	"encoding/json"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docenhance/internal/dom"
	"git.home.luguber.info/inful/docenhance/internal/foundation/errors"
)

// mathConfigClass marks the injected MathJax configuration script so
// repeated passes replace it instead of stacking duplicates.
const mathConfigClass = "mathjax-config"

// DelimiterPair is an open/close delimiter pair for math expressions. It
// serializes as a two-element JSON array, the shape MathJax expects.
type DelimiterPair [2]string

// MathConfig is the typeset configuration injected into each page. Field
// names and order follow the object MathJax reads from window.MathJax, so
// the serialized form is consumable without translation.
type MathConfig struct {
	InlineMath          []DelimiterPair `json:"inlineMath"`
	DisplayMath         []DelimiterPair `json:"displayMath"`
	ProcessEscapes      bool            `json:"processEscapes"`
	ProcessEnvironments bool            `json:"processEnvironments"`
	IgnoreHTMLClass     string          `json:"ignoreHtmlClass"`
	ProcessHTMLClass    string          `json:"processHtmlClass"`
}

// DefaultMathConfig returns the configuration for sites generated with
// arithmatex-style math markup: backslash delimiters, escape handling on
// and typesetting restricted to arithmatex containers.
func DefaultMathConfig() MathConfig {
	return MathConfig{
		InlineMath:          []DelimiterPair{{`\(`, `\)`}},
		DisplayMath:         []DelimiterPair{{`\[`, `\]`}},
		ProcessEscapes:      true,
		ProcessEnvironments: true,
		IgnoreHTMLClass:     ".*",
		ProcessHTMLClass:    "arithmatex",
	}
}

func (c MathConfig) isZero() bool {
	return len(c.InlineMath) == 0 &&
		len(c.DisplayMath) == 0 &&
		!c.ProcessEscapes &&
		!c.ProcessEnvironments &&
		c.IgnoreHTMLClass == "" &&
		c.ProcessHTMLClass == ""
}

// Script renders the configuration as the executable assignment MathJax
// picks up when it loads.
func (c MathConfig) Script() (string, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryEnhance, "marshal math config").Build()
	}
	return "window.MathJax = " + string(payload) + ";", nil
}

// MathConfigJS returns the configured MathJax assignment as a standalone
// script file, byte-for-byte the assignment injected into page heads.
func (e *Enhancer) MathConfigJS() ([]byte, error) {
	script, err := e.opts.Math.Config.Script()
	if err != nil {
		return nil, err
	}
	return []byte(script + "\n"), nil
}

// injectMathConfig places the MathJax configuration script in the document
// head, before any other script so the loader sees it. An existing
// configuration script is replaced in place. Documents without a head are
// left untouched.
func (e *Enhancer) injectMathConfig(root *html.Node) (bool, error) {
	head := dom.FirstByTag(root, atom.Head)
	if head == nil {
		return false, nil
	}

	script, err := e.opts.Math.Config.Script()
	if err != nil {
		return false, err
	}

	if existing := findMathConfigScript(head); existing != nil {
		dom.SetText(existing, script)
		return true, nil
	}

	node := dom.NewElement(atom.Script,
		html.Attribute{Key: "class", Val: mathConfigClass},
	)
	dom.SetText(node, script)
	head.InsertBefore(node, firstChildScript(head))
	return true, nil
}

func findMathConfigScript(head *html.Node) *html.Node {
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElement(c, atom.Script) && dom.HasClass(c, mathConfigClass) {
			return c
		}
	}
	return nil
}

// firstChildScript returns the first direct script child of head, or nil
// when head carries none. InsertBefore treats a nil reference as append.
func firstChildScript(head *html.Node) *html.Node {
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElement(c, atom.Script) {
			return c
		}
	}
	return nil
}
