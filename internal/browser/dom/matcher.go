// internal/browser/dom/matcher.go
package dom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/unitbrowser/internal/browser/css"
)

// Matches reports whether n satisfies sel, evaluated directly against the tree. Unlike
// XPath translation this covers every selector kind, including sibling combinators,
// negation and the positional pseudo-classes.
func Matches(n *html.Node, sel css.Selector) bool {
	if n == nil || sel == nil {
		return false
	}
	switch s := sel.(type) {
	case css.NodeTypeSelector:
		return matchesNodeType(n, s.Kind)
	}
	if n.Type != html.ElementNode {
		return false
	}

	switch s := sel.(type) {
	case css.AnySelector:
		return true

	case css.ElementSelector:
		return s.LocalName == "*" || strings.EqualFold(n.Data, s.LocalName)

	case css.RootSelector:
		return isRoot(n)

	case css.ConditionalSelector:
		return Matches(n, s.Base) && matchesCondition(n, s.Condition)

	case css.DescendantSelector:
		if !Matches(n, s.Descendant) {
			return false
		}
		for p := n.Parent; p != nil; p = p.Parent {
			if Matches(p, s.Ancestor) {
				return true
			}
		}
		return false

	case css.ChildSelector:
		return Matches(n, s.Child) && Matches(n.Parent, s.Parent)

	case css.DirectAdjacentSelector:
		return Matches(n, s.Next) && Matches(previousElementSibling(n), s.Previous)

	case css.GeneralSiblingSelector:
		if !Matches(n, s.Next) {
			return false
		}
		for sib := previousElementSibling(n); sib != nil; sib = previousElementSibling(sib) {
			if Matches(sib, s.Previous) {
				return true
			}
		}
		return false

	case css.NegativeSelector:
		return !Matches(n, s.Simple)

	case css.PseudoElementSelector:
		// Generated content is never a tree element.
		return false
	}
	return false
}

// MatchesAny reports whether n satisfies at least one selector of the list.
func MatchesAny(n *html.Node, list css.SelectorList) bool {
	for _, sel := range list {
		if Matches(n, sel) {
			return true
		}
	}
	return false
}

// QueryAll returns the elements below root matching any selector of list, in document
// order.
func QueryAll(root *html.Node, list css.SelectorList) []*html.Node {
	return Compile(list).QueryAll(root)
}

// Query returns the first element below root matching list, or nil.
func Query(root *html.Node, list css.SelectorList) *html.Node {
	return Compile(list).Query(root)
}

func matchesCondition(n *html.Node, c css.Condition) bool {
	switch c := c.(type) {
	case css.AndCondition:
		return matchesCondition(n, c.Left) && matchesCondition(n, c.Right)

	case css.OrCondition:
		return matchesCondition(n, c.Left) || matchesCondition(n, c.Right)

	case css.AttributeExistsCondition:
		_, ok := Attr(n, c.Name)
		return ok

	case css.AttributeEqualsCondition:
		v, ok := Attr(n, c.Name)
		return ok && v == c.Value

	case css.ClassCondition:
		return containsToken(attrOrEmpty(n, "class"), c.Value)

	case css.IDCondition:
		v, ok := Attr(n, "id")
		return ok && v == c.Value

	case css.BeginHyphenCondition:
		v, ok := Attr(n, c.Name)
		return ok && (v == c.Value || strings.HasPrefix(v, c.Value+"-"))

	case css.OneOfCondition:
		v, ok := Attr(n, c.Name)
		return ok && containsToken(v, c.Value)

	case css.PrefixCondition:
		v, ok := Attr(n, c.Name)
		return ok && c.Value != "" && strings.HasPrefix(v, c.Value)

	case css.SuffixCondition:
		v, ok := Attr(n, c.Name)
		return ok && c.Value != "" && strings.HasSuffix(v, c.Value)

	case css.SubstringCondition:
		v, ok := Attr(n, c.Name)
		return ok && c.Value != "" && strings.Contains(v, c.Value)

	case css.LangCondition:
		return matchesLang(n, c.Lang)

	case css.NegativeCondition:
		return !Matches(n, c.Selector)

	case css.ContentCondition:
		return strings.Contains(TextContent(n), c.Data)

	case css.OnlyChildCondition:
		return previousElementSibling(n) == nil && nextElementSibling(n) == nil

	case css.OnlyTypeCondition:
		return typeIndex(n, false) == 1 && typeIndex(n, true) == 1

	case css.PositionalCondition:
		var index int
		if c.OfType {
			index = typeIndex(n, c.FromEnd)
		} else {
			index = childIndex(n, c.FromEnd)
		}
		return c.Matches(index)

	case css.PseudoClassCondition:
		return matchesPseudoClass(n, c.Name)
	}
	return false
}

func matchesPseudoClass(n *html.Node, name string) bool {
	switch name {
	case "root":
		return isRoot(n)
	case "empty":
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode || (c.Type == html.TextNode && c.Data != "") {
				return false
			}
		}
		return true
	case "link", "any-link":
		_, ok := Attr(n, "href")
		return ok && (n.Data == "a" || n.Data == "area" || n.Data == "link")
	case "checked":
		_, checked := Attr(n, "checked")
		_, selected := Attr(n, "selected")
		return (n.Data == "input" && checked) || (n.Data == "option" && selected)
	case "disabled":
		_, ok := Attr(n, "disabled")
		return ok && isFormControl(n)
	case "enabled":
		_, ok := Attr(n, "disabled")
		return !ok && isFormControl(n)
	case "defined":
		return true
	}
	// Interaction states (hover, focus, visited, ...) never hold in a static tree.
	return false
}

func matchesNodeType(n *html.Node, kind css.NodeKind) bool {
	switch kind {
	case css.NodeText:
		return n.Type == html.TextNode
	case css.NodeComment:
		return n.Type == html.CommentNode
	}
	// The HTML parser produces neither CDATA sections nor processing instructions.
	return false
}

func matchesLang(n *html.Node, lang string) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if v, ok := Attr(p, "lang"); ok {
			v = strings.ToLower(v)
			lang = strings.ToLower(lang)
			return v == lang || strings.HasPrefix(v, lang+"-")
		}
	}
	return false
}

func isRoot(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Parent != nil && n.Parent.Type == html.DocumentNode
}

func isFormControl(n *html.Node) bool {
	switch n.Data {
	case "input", "button", "select", "textarea", "option", "optgroup", "fieldset":
		return true
	}
	return false
}

func containsToken(list, token string) bool {
	if token == "" {
		return false
	}
	for _, f := range strings.Fields(list) {
		if f == token {
			return true
		}
	}
	return false
}

func previousElementSibling(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func nextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// childIndex returns the 1-based position of n among its element siblings.
func childIndex(n *html.Node, fromEnd bool) int {
	index := 1
	next := previousElementSibling
	if fromEnd {
		next = nextElementSibling
	}
	for s := next(n); s != nil; s = next(s) {
		index++
	}
	return index
}

// typeIndex returns the 1-based position of n among siblings with the same tag name.
func typeIndex(n *html.Node, fromEnd bool) int {
	index := 1
	next := previousElementSibling
	if fromEnd {
		next = nextElementSibling
	}
	for s := next(n); s != nil; s = next(s) {
		if s.Data == n.Data {
			index++
		}
	}
	return index
}
