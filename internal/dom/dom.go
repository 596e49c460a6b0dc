// Package dom provides helpers for walking, querying and mutating HTML
// trees parsed with golang.org/x/net/html. The enhancement passes operate
// on these trees instead of rendered markup so they can make structural
// guarantees (no duplicate injection, exact text extraction) that string
// rewriting cannot.
package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// WalkElements visits every element node under root in document order,
// including root itself when it is an element.
func WalkElements(root *html.Node, visit func(*html.Node)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			visit(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
}

// Collect returns all element nodes under root matching the predicate.
// The result is a snapshot, safe to mutate against while reparenting.
func Collect(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	WalkElements(root, func(n *html.Node) {
		if match(n) {
			found = append(found, n)
		}
	})
	return found
}

// Find returns the first element under root matching the predicate, or nil.
func Find(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && match(n) {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	if root != nil {
		walk(root)
	}
	return found
}

// FindByID returns the element with the given id attribute, or nil. The
// lookup walks the live tree so elements inserted after parsing are found.
func FindByID(root *html.Node, id string) *html.Node {
	if id == "" {
		return nil
	}
	return Find(root, func(n *html.Node) bool {
		return Attr(n, "id") == id
	})
}

// IsElement reports whether n is an element with the given tag.
func IsElement(n *html.Node, tag atom.Atom) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == tag
}

// FindAllByTag returns all elements with the given tag under root.
func FindAllByTag(root *html.Node, tag atom.Atom) []*html.Node {
	return Collect(root, func(n *html.Node) bool {
		return n.DataAtom == tag
	})
}

// FirstByTag returns the first element with the given tag under root, or nil.
func FirstByTag(root *html.Node, tag atom.Atom) *html.Node {
	return Find(root, func(n *html.Node) bool {
		return n.DataAtom == tag
	})
}

// Attr retrieves an attribute value from a node.
func Attr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// HasAttr reports whether the node carries the attribute at all, even with
// an empty value.
func HasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets an attribute, replacing an existing value for the same key.
func SetAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// HasClass reports whether the node's class attribute contains the given
// class name as a whole token.
func HasClass(n *html.Node, name string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends a class token unless it is already present.
func AddClass(n *html.Node, name string) {
	if HasClass(n, name) {
		return
	}
	existing := Attr(n, "class")
	if existing == "" {
		SetAttr(n, "class", name)
		return
	}
	SetAttr(n, "class", existing+" "+name)
}

// TextContent returns the concatenated text of all text nodes under n in
// document order. Unlike display-oriented extraction it performs no
// trimming or whitespace folding, mirroring the DOM textContent property.
// Clipboard payloads depend on this being byte-exact.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if n != nil {
		walk(n)
	}
	return sb.String()
}
