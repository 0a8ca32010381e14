// internal/browser/dom/nodes.go
package dom

import (
	"iter"
	"slices"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Attr returns the value of the named attribute and whether it is present. Names are
// compared case-insensitively, matching HTML semantics.
func Attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, name, value string) {
	name = strings.ToLower(name)
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes the named attribute.
func RemoveAttr(n *html.Node, name string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool {
		return strings.EqualFold(a.Key, name)
	})
}

// Elements yields every element below root in document order. root itself is
// included when it is an element.
func Elements(root *html.Node) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		var walk func(n *html.Node) bool
		walk = func(n *html.Node) bool {
			if n.Type == html.ElementNode && !yield(n) {
				return false
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if !walk(c) {
					return false
				}
			}
			return true
		}
		if root != nil {
			walk(root)
		}
	}
}

// Descendants is Elements without root itself.
func Descendants(root *html.Node) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		for c := root.FirstChild; c != nil; c = c.NextSibling {
			for n := range Elements(c) {
				if !yield(n) {
					return
				}
			}
		}
	}
}

// ElementByID returns the first element whose id equals id.
func ElementByID(root *html.Node, id string) *html.Node {
	for n := range Elements(root) {
		if v, ok := Attr(n, "id"); ok && v == id {
			return n
		}
	}
	return nil
}

// ElementsByTagName returns the elements below root with the given tag name; "*"
// selects all of them.
func ElementsByTagName(root *html.Node, tag string) []*html.Node {
	tag = strings.ToLower(tag)
	var out []*html.Node
	for n := range Descendants(root) {
		if tag == "*" || n.Data == tag {
			out = append(out, n)
		}
	}
	return out
}

// ElementsByClassName returns the elements carrying every class in the
// whitespace-separated names.
func ElementsByClassName(root *html.Node, names string) []*html.Node {
	wanted := strings.Fields(names)
	if len(wanted) == 0 {
		return nil
	}
	var out []*html.Node
	for n := range Descendants(root) {
		classes := strings.Fields(attrOrEmpty(n, "class"))
		if containsAll(classes, wanted) {
			out = append(out, n)
		}
	}
	return out
}

// DocumentElement returns the <html> element of a parsed document.
func DocumentElement(doc *html.Node) *html.Node {
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// FindElement returns the first element with the given tag name, e.g. "head" or "body".
func FindElement(root *html.Node, tag string) *html.Node {
	for n := range Elements(root) {
		if n.Data == tag {
			return n
		}
	}
	return nil
}

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
	return htmlquery.InnerText(n)
}

func attrOrEmpty(n *html.Node, name string) string {
	v, _ := Attr(n, name)
	return v
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}
