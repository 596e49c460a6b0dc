package enhance

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docenhance/internal/dom"
)

// DefaultTableWrapperClass is the class of the scroll container wrapped
// around tables. The shipped stylesheet gives it horizontal overflow.
const DefaultTableWrapperClass = "table-wrapper"

// wrapTables moves every table under root into a scroll container div.
// Tables whose parent already is such a container are skipped, which makes
// the pass idempotent. Returns the number of tables newly wrapped.
func (e *Enhancer) wrapTables(root *html.Node) int {
	class := e.opts.Tables.WrapperClass

	tables := dom.Collect(root, func(n *html.Node) bool {
		return n.DataAtom == atom.Table
	})

	wrapped := 0
	for _, table := range tables {
		if table.Parent == nil || dom.HasClass(table.Parent, class) {
			continue
		}
		wrapper := dom.NewElement(atom.Div, html.Attribute{Key: "class", Val: class})
		dom.Wrap(table, wrapper)
		wrapped++
	}
	return wrapped
}
