// internal/browser/css/selector.go
package css

import "strings"

// Selector is a node of a parsed selector tree. The set of implementations is closed;
// consumers are expected to switch over the concrete types below.
type Selector interface {
	selectorNode()
	String() string
}

// SelectorList is an ordered, comma-separated group of selectors. A rule applies to an
// element when any one of them matches.
type SelectorList []Selector

func (l SelectorList) String() string {
	parts := make([]string, len(l))
	for i, s := range l {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

// AnySelector is the universal selector '*'.
type AnySelector struct{}

// ElementSelector matches elements by local name. Namespace holds the prefix written
// before '|', empty when none was given.
type ElementSelector struct {
	LocalName string
	Namespace string
}

// DescendantSelector matches Descendant at any depth below an Ancestor match.
type DescendantSelector struct {
	Ancestor   Selector
	Descendant Selector
}

// ChildSelector matches Child when its parent matches Parent.
type ChildSelector struct {
	Parent Selector
	Child  Selector
}

// DirectAdjacentSelector is 'a + b'.
type DirectAdjacentSelector struct {
	Previous Selector
	Next     Selector
}

// GeneralSiblingSelector is 'a ~ b'.
type GeneralSiblingSelector struct {
	Previous Selector
	Next     Selector
}

// ConditionalSelector narrows Base with a Condition (class, id, attribute, pseudo-class).
type ConditionalSelector struct {
	Base      Selector
	Condition Condition
}

// NegativeSelector matches everything Simple does not.
type NegativeSelector struct {
	Simple Selector
}

// RootSelector is the document root element.
type RootSelector struct{}

// PseudoElementSelector addresses generated content such as '::before'.
type PseudoElementSelector struct {
	Base Selector
	Name string
}

// NodeKind enumerates the non-element node types a NodeTypeSelector can address.
type NodeKind int

const (
	NodeText NodeKind = iota
	NodeComment
	NodeCDATA
	NodeProcessingInstruction
)

func (k NodeKind) String() string {
	switch k {
	case NodeText:
		return "text()"
	case NodeComment:
		return "comment()"
	case NodeCDATA:
		return "cdata()"
	case NodeProcessingInstruction:
		return "processing-instruction()"
	}
	return "node()"
}

// NodeTypeSelector addresses text, comment, CDATA and processing-instruction nodes. The
// selector grammar never produces it, but programmatic trees may.
type NodeTypeSelector struct {
	Kind NodeKind
}

func (AnySelector) selectorNode()            {}
func (ElementSelector) selectorNode()        {}
func (DescendantSelector) selectorNode()     {}
func (ChildSelector) selectorNode()          {}
func (DirectAdjacentSelector) selectorNode() {}
func (GeneralSiblingSelector) selectorNode() {}
func (ConditionalSelector) selectorNode()    {}
func (NegativeSelector) selectorNode()       {}
func (RootSelector) selectorNode()           {}
func (PseudoElementSelector) selectorNode()  {}
func (NodeTypeSelector) selectorNode()       {}

func (AnySelector) String() string { return "*" }

func (s ElementSelector) String() string {
	if s.Namespace != "" {
		return s.Namespace + "|" + s.LocalName
	}
	return s.LocalName
}

func (s DescendantSelector) String() string {
	return s.Ancestor.String() + " " + s.Descendant.String()
}

func (s ChildSelector) String() string {
	return s.Parent.String() + " > " + s.Child.String()
}

func (s DirectAdjacentSelector) String() string {
	return s.Previous.String() + " + " + s.Next.String()
}

func (s GeneralSiblingSelector) String() string {
	return s.Previous.String() + " ~ " + s.Next.String()
}

func (s ConditionalSelector) String() string {
	base := s.Base.String()
	if _, ok := s.Base.(AnySelector); ok {
		base = ""
	}
	return base + s.Condition.String()
}

func (s NegativeSelector) String() string { return ":not(" + s.Simple.String() + ")" }

func (RootSelector) String() string { return ":root" }

func (s PseudoElementSelector) String() string {
	base := s.Base.String()
	if _, ok := s.Base.(AnySelector); ok {
		base = ""
	}
	return base + "::" + s.Name
}

func (s NodeTypeSelector) String() string { return s.Kind.String() }

// Subject returns the rightmost compound of a selector, the part that names the
// element a match is reported for.
func Subject(sel Selector) Selector {
	switch s := sel.(type) {
	case DescendantSelector:
		return Subject(s.Descendant)
	case ChildSelector:
		return Subject(s.Child)
	case DirectAdjacentSelector:
		return Subject(s.Next)
	case GeneralSiblingSelector:
		return Subject(s.Next)
	}
	return sel
}
