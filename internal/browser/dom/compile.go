// internal/browser/dom/compile.go
package dom

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/unitbrowser/internal/browser/css"
)

// compiledPseudoClasses are the pseudo-classes cascadia evaluates the same way Matches
// does. :empty, :lang and the form states differ in detail and stay on the AST walk.
var compiledPseudoClasses = map[string]bool{
	"root": true, "link": true,
	"visited": true, "hover": true, "active": true, "focus": true, "target": true,
}

// Matcher is a selector list prepared for repeated matching. Lists cascadia can express
// are compiled into a cascadia.SelectorGroup; the rest are matched by walking the AST.
// Matcher satisfies cascadia.Matcher.
type Matcher struct {
	list     css.SelectorList
	compiled cascadia.SelectorGroup
}

// Compile prepares list for matching.
func Compile(list css.SelectorList) *Matcher {
	m := &Matcher{list: list}
	if len(list) == 0 {
		return m
	}
	parts := make([]string, len(list))
	for i, sel := range list {
		src, ok := cascadiaSource(sel)
		if !ok {
			return m
		}
		parts[i] = src
	}
	group, err := cascadia.ParseGroup(strings.Join(parts, ", "))
	if err != nil {
		return m
	}
	m.compiled = group
	return m
}

// Compiled reports whether matching runs on cascadia.
func (m *Matcher) Compiled() bool {
	return m.compiled != nil
}

// Match reports whether n satisfies at least one selector of the list.
func (m *Matcher) Match(n *html.Node) bool {
	if n == nil {
		return false
	}
	// Detached elements have no sibling context for cascadia's positional checks.
	if m.compiled == nil || n.Parent == nil {
		return MatchesAny(n, m.list)
	}
	return n.Type == html.ElementNode && m.compiled.Match(n)
}

// QueryAll returns the elements below root that match, in document order.
func (m *Matcher) QueryAll(root *html.Node) []*html.Node {
	var out []*html.Node
	for n := range Descendants(root) {
		if m.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// Query returns the first element below root that matches, or nil.
func (m *Matcher) Query(root *html.Node) *html.Node {
	for n := range Descendants(root) {
		if m.Match(n) {
			return n
		}
	}
	return nil
}

// cascadiaSource renders sel in the syntax cascadia parses. It reports false for
// anything cascadia lacks or reads differently: namespaces, :is groups, :contains,
// pseudo-elements and node-type tests.
func cascadiaSource(sel css.Selector) (string, bool) {
	switch s := sel.(type) {
	case css.AnySelector:
		return "*", true

	case css.ElementSelector:
		if s.Namespace != "" {
			return "", false
		}
		if s.LocalName == "*" {
			return "*", true
		}
		return s.LocalName, isIdent(s.LocalName)

	case css.RootSelector:
		return ":root", true

	case css.DescendantSelector:
		return combined(s.Ancestor, " ", s.Descendant)

	case css.ChildSelector:
		return combined(s.Parent, " > ", s.Child)

	case css.DirectAdjacentSelector:
		return combined(s.Previous, " + ", s.Next)

	case css.GeneralSiblingSelector:
		return combined(s.Previous, " ~ ", s.Next)

	case css.ConditionalSelector:
		base, ok := cascadiaSource(s.Base)
		if !ok {
			return "", false
		}
		cond, ok := conditionSource(s.Condition)
		if !ok {
			return "", false
		}
		return base + cond, true

	case css.NegativeSelector:
		inner, ok := cascadiaSource(s.Simple)
		if !ok {
			return "", false
		}
		return ":not(" + inner + ")", true
	}
	return "", false
}

func combined(left css.Selector, sep string, right css.Selector) (string, bool) {
	l, ok := cascadiaSource(left)
	if !ok {
		return "", false
	}
	r, ok := cascadiaSource(right)
	if !ok {
		return "", false
	}
	return l + sep + r, true
}

func conditionSource(c css.Condition) (string, bool) {
	switch c := c.(type) {
	case css.AndCondition:
		l, ok := conditionSource(c.Left)
		if !ok {
			return "", false
		}
		r, ok := conditionSource(c.Right)
		if !ok {
			return "", false
		}
		return l + r, true

	case css.AttributeExistsCondition:
		return "[" + c.Name + "]", isIdent(c.Name)

	case css.AttributeEqualsCondition:
		return attrSource(c.Name, "=", c.Value, true)

	case css.BeginHyphenCondition:
		return attrSource(c.Name, "|=", c.Value, true)

	case css.OneOfCondition:
		return attrSource(c.Name, "~=", c.Value, false)

	case css.PrefixCondition:
		return attrSource(c.Name, "^=", c.Value, false)

	case css.SuffixCondition:
		return attrSource(c.Name, "$=", c.Value, false)

	case css.SubstringCondition:
		return attrSource(c.Name, "*=", c.Value, false)

	case css.ClassCondition:
		return "." + c.Value, isIdent(c.Value)

	case css.IDCondition:
		return "#" + c.Value, isName(c.Value)

	case css.NegativeCondition:
		inner, ok := cascadiaSource(c.Selector)
		if !ok {
			return "", false
		}
		return ":not(" + inner + ")", true

	case css.OnlyChildCondition, css.OnlyTypeCondition, css.PositionalCondition:
		return c.String(), true

	case css.PseudoClassCondition:
		return ":" + c.Name, compiledPseudoClasses[c.Name]
	}
	return "", false
}

// attrSource quotes value for cascadia. Operators other than '=' and '|=' need a
// non-empty value without whitespace; cascadia and Matches disagree otherwise.
func attrSource(name, op, value string, anyValue bool) (string, bool) {
	if !isIdent(name) {
		return "", false
	}
	if !anyValue && (value == "" || strings.ContainsAny(value, " \t\n\r\f")) {
		return "", false
	}
	if strings.ContainsAny(value, "\n\r\f\x00") {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString("[" + name + op + `"`)
	for _, r := range value {
		if r == '"' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteString(`"]`)
	return sb.String(), true
}

// isIdent reports whether s is a CSS identifier that needs no escaping.
func isIdent(s string) bool {
	s = strings.TrimLeft(s, "-")
	if s == "" || !identStart(s[0]) {
		return false
	}
	return isName(s)
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !identStart(s[i]) && s[i] != '-' && (s[i] < '0' || s[i] > '9') {
			return false
		}
	}
	return true
}

func identStart(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_' || c >= 0x80
}
