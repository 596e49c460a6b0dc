package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func parseDoc(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err, "should parse test markup")
	return doc
}

func TestAttrHelpers(t *testing.T) {
	doc := parseDoc(t, `<html><body><a id="link" href="#intro" class="nav">go</a></body></html>`)
	a := FirstByTag(doc, atom.A)
	require.NotNil(t, a, "should find anchor")

	assert.Equal(t, "#intro", Attr(a, "href"))
	assert.Equal(t, "", Attr(a, "missing"))
	assert.True(t, HasAttr(a, "id"))
	assert.False(t, HasAttr(a, "missing"))

	SetAttr(a, "href", "#contents")
	assert.Equal(t, "#contents", Attr(a, "href"), "SetAttr should replace existing value")

	SetAttr(a, "rel", "internal")
	assert.Equal(t, "internal", Attr(a, "rel"), "SetAttr should append new attribute")
}

func TestClassHelpers(t *testing.T) {
	doc := parseDoc(t, `<html><body><div class="table-wrapper wide"></div><p class="wrap"></p></body></html>`)
	div := FirstByTag(doc, atom.Div)
	p := FirstByTag(doc, atom.P)

	assert.True(t, HasClass(div, "table-wrapper"))
	assert.True(t, HasClass(div, "wide"))
	assert.False(t, HasClass(div, "wrapper"), "token matching must not match substrings")
	assert.False(t, HasClass(p, "table-wrapper"))

	AddClass(p, "wrap")
	assert.Equal(t, "wrap", Attr(p, "class"), "AddClass must not duplicate an existing token")

	AddClass(p, "done")
	assert.Equal(t, "wrap done", Attr(p, "class"))

	body := FirstByTag(doc, atom.Body)
	AddClass(body, "loaded")
	assert.Equal(t, "loaded", Attr(body, "class"), "AddClass should create missing class attribute")
}

func TestTextContent(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "plain text",
			markup: `<html><body><code>print('hi')</code></body></html>`,
			want:   `print('hi')`,
		},
		{
			name:   "highlight spans are flattened",
			markup: `<html><body><code><span>def</span> <span>f</span>():</code></body></html>`,
			want:   `def f():`,
		},
		{
			name:   "whitespace and newlines survive",
			markup: "<html><body><code>line1\n  line2\n</code></body></html>",
			want:   "line1\n  line2\n",
		},
		{
			name:   "empty element",
			markup: `<html><body><code></code></body></html>`,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, tt.markup)
			code := FirstByTag(doc, atom.Code)
			require.NotNil(t, code)
			assert.Equal(t, tt.want, TextContent(code))
		})
	}
}

func TestFindByID(t *testing.T) {
	doc := parseDoc(t, `<html><body><h2 id="section-2">Two</h2></body></html>`)

	assert.NotNil(t, FindByID(doc, "section-2"))
	assert.Nil(t, FindByID(doc, "section-3"))
	assert.Nil(t, FindByID(doc, ""), "empty id must never resolve")

	// Lookups run against the live tree, so later insertions are visible.
	body := FirstByTag(doc, atom.Body)
	late := NewElement(atom.Div, html.Attribute{Key: "id", Val: "appendix"})
	body.AppendChild(late)
	assert.Equal(t, late, FindByID(doc, "appendix"))
}

func TestWrap(t *testing.T) {
	doc := parseDoc(t, `<html><body><table><tbody><tr><td>x</td></tr></tbody></table></body></html>`)
	table := FirstByTag(doc, atom.Table)
	require.NotNil(t, table)

	wrapper := NewElement(atom.Div, html.Attribute{Key: "class", Val: "table-wrapper"})
	Wrap(table, wrapper)

	assert.Equal(t, wrapper, table.Parent, "table should re-parent into the wrapper")
	body := FirstByTag(doc, atom.Body)
	assert.Equal(t, body, wrapper.Parent, "wrapper should occupy the table's old slot")
	assert.Equal(t, 1, len(FindAllByTag(doc, atom.Table)), "wrapping must not clone the table")
}

func TestCollectIsSnapshot(t *testing.T) {
	doc := parseDoc(t, `<html><body><table></table><table></table></body></html>`)

	tables := Collect(doc, func(n *html.Node) bool { return n.DataAtom == atom.Table })
	require.Len(t, tables, 2)

	// Mutating while iterating the snapshot must terminate.
	for _, tbl := range tables {
		Wrap(tbl, NewElement(atom.Div))
	}
	assert.Len(t, FindAllByTag(doc, atom.Table), 2)
	assert.Len(t, FindAllByTag(doc, atom.Div), 2)
}

func TestSetText(t *testing.T) {
	doc := parseDoc(t, `<html><body><button><span>old</span>text</button></body></html>`)
	button := FirstByTag(doc, atom.Button)

	SetText(button, "📋")
	assert.Equal(t, "📋", TextContent(button))
	require.NotNil(t, button.FirstChild)
	assert.Equal(t, button.FirstChild, button.LastChild, "SetText should leave exactly one child")
}
