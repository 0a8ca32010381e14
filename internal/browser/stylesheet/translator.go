// internal/browser/stylesheet/translator.go
package stylesheet

import (
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/unitbrowser/internal/browser/css"
)

// Translator lowers selector trees to XPath 1.0 expressions. The expressions are
// meant to be evaluated with the document node as context.
type Translator struct {
	logger     *zap.Logger
	logSkipped bool
}

// NewTranslator creates a Translator. When logSkipped is set, every selector that has
// no XPath equivalent is logged at debug level.
func NewTranslator(logger *zap.Logger, logSkipped bool) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{logger: logger.Named("translator"), logSkipped: logSkipped}
}

// Translate returns the XPath for sel. The boolean is false when sel uses a construct
// with no structural equivalent; callers skip the selector in that case.
func (t *Translator) Translate(sel css.Selector) (string, bool) {
	xp, ok := Translate(sel)
	if !ok && t.logSkipped {
		t.logger.Debug("Selector has no XPath equivalent, skipping.", zap.Stringer("selector", sel))
	}
	return xp, ok
}

// Translate is the stateless form of Translator.Translate.
func Translate(sel css.Selector) (string, bool) {
	if sel == nil {
		return "", false
	}
	path, ok := step(sel)
	if !ok {
		return "", false
	}
	anchor := "//"
	if _, isRoot := leftmost(sel).(css.RootSelector); isRoot {
		anchor = ""
	}
	return anchor + path, true
}

// leftmost returns the first compound's base, which decides how the path is anchored.
func leftmost(sel css.Selector) css.Selector {
	switch s := sel.(type) {
	case css.DescendantSelector:
		return leftmost(s.Ancestor)
	case css.ChildSelector:
		return leftmost(s.Parent)
	case css.GeneralSiblingSelector:
		return leftmost(s.Previous)
	case css.ConditionalSelector:
		return leftmost(s.Base)
	}
	return sel
}

func step(sel css.Selector) (string, bool) {
	switch s := sel.(type) {
	case css.AnySelector:
		return "*", true

	case css.ElementSelector:
		// Matching is by local name only; a namespace prefix is not resolved.
		return nameTest(s.LocalName), true

	case css.RootSelector:
		return "html", true

	case css.ChildSelector:
		return join(s.Parent, "/", s.Child)

	case css.DescendantSelector:
		return join(s.Ancestor, "//", s.Descendant)

	case css.GeneralSiblingSelector:
		return join(s.Previous, "/following-sibling::", s.Next)

	case css.ConditionalSelector:
		base, ok := step(s.Base)
		if !ok {
			return "", false
		}
		pred, level := translateCondition(s.Condition)
		switch level {
		case unsupported:
			return "", false
		case ignorable:
			return base, true
		}
		return base + "[" + pred + "]", true

	case css.DirectAdjacentSelector, css.NegativeSelector, css.PseudoElementSelector, css.NodeTypeSelector:
		return "", false
	}
	return "", false
}

func join(left css.Selector, sep string, right css.Selector) (string, bool) {
	l, ok := step(left)
	if !ok {
		return "", false
	}
	r, ok := step(right)
	if !ok {
		return "", false
	}
	return l + sep + r, true
}

// support classifies a translated condition.
type support int

const (
	// supported conditions yield a predicate.
	supported support = iota
	// ignorable conditions hold for every element of a static document; the predicate
	// is dropped and the base stands alone.
	ignorable
	// unsupported conditions make the whole selector inapplicable.
	unsupported
)

// alwaysTrue lists pseudo-classes every element of a parsed, script-free page satisfies.
var alwaysTrue = map[string]bool{
	"defined": true,
}

// TranslateCondition maps a condition to an XPath predicate. The boolean is false when
// the condition has no predicate form.
func TranslateCondition(c css.Condition) (string, bool) {
	pred, s := translateCondition(c)
	return pred, s == supported
}

func translateCondition(c css.Condition) (string, support) {
	switch c := c.(type) {
	case css.AttributeEqualsCondition:
		return attr(c.Name) + " = " + literal(c.Value), supported

	case css.AttributeExistsCondition:
		return attr(c.Name), supported

	case css.ClassCondition:
		return tokenTest("@class", c.Value), supported

	case css.IDCondition:
		return "@id=" + literal(c.Value), supported

	case css.BeginHyphenCondition:
		a := attr(c.Name)
		return "(" + a + " = " + literal(c.Value) + " or starts-with(" + a + ", " + literal(c.Value+"-") + "))", supported

	case css.OneOfCondition:
		if c.Value == "" || strings.ContainsAny(c.Value, " \t\n\r\f") {
			return "false()", supported
		}
		return tokenTest(attr(c.Name), c.Value), supported

	case css.PrefixCondition:
		if c.Value == "" {
			return "false()", supported
		}
		return "starts-with(" + attr(c.Name) + ", " + literal(c.Value) + ")", supported

	case css.SuffixCondition:
		if c.Value == "" {
			return "false()", supported
		}
		return "ends-with(" + attr(c.Name) + ", " + literal(c.Value) + ")", supported

	case css.SubstringCondition:
		if c.Value == "" {
			return "false()", supported
		}
		return "contains(" + attr(c.Name) + ", " + literal(c.Value) + ")", supported

	case css.AndCondition:
		l, ls := translateCondition(c.Left)
		r, rs := translateCondition(c.Right)
		switch {
		case ls == unsupported || rs == unsupported:
			return "", unsupported
		case ls == ignorable && rs == ignorable:
			return "", ignorable
		case ls == ignorable:
			return r, supported
		case rs == ignorable:
			return l, supported
		}
		return "(" + l + " and " + r + ")", supported

	case css.OrCondition:
		l, ls := translateCondition(c.Left)
		r, rs := translateCondition(c.Right)
		switch {
		case ls == unsupported || rs == unsupported:
			return "", unsupported
		case ls == ignorable || rs == ignorable:
			return "", ignorable
		}
		return "(" + l + " or " + r + ")", supported

	case css.PseudoClassCondition:
		if alwaysTrue[c.Name] {
			return "", ignorable
		}
		return "", unsupported

	case css.LangCondition, css.NegativeCondition, css.ContentCondition,
		css.OnlyChildCondition, css.OnlyTypeCondition, css.PositionalCondition:
		return "", unsupported
	}
	return "", unsupported
}

// tokenTest matches value as a whole whitespace-separated token of the attribute.
func tokenTest(attribute, value string) string {
	return "contains(concat(' ', normalize-space(" + attribute + "), ' '), " + literal(" "+value+" ") + ")"
}

// attr returns an attribute reference, falling back to a name() test for names that
// are not valid XPath name tests.
func attr(name string) string {
	if isNCName(name) {
		return "@" + name
	}
	return "@*[name()=" + literal(name) + "]"
}

func nameTest(name string) string {
	if name == "" || name == "*" {
		return "*"
	}
	if isNCName(name) {
		return name
	}
	return "*[name()=" + literal(name) + "]"
}

// literal quotes s as an XPath string literal. XPath 1.0 has no escape syntax, so a
// value holding both quote characters is assembled with concat().
func literal(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	var sb strings.Builder
	sb.WriteString("concat(")
	for i, p := range parts {
		if i > 0 {
			sb.WriteString(`, "'", `)
		}
		sb.WriteString("'" + p + "'")
	}
	sb.WriteString(")")
	return sb.String()
}

func isNCName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch == '_':
		case i > 0 && (ch >= '0' && ch <= '9' || ch == '-' || ch == '.'):
		default:
			return false
		}
	}
	return true
}
