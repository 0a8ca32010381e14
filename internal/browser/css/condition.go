// internal/browser/css/condition.go
package css

import (
	"fmt"
	"strconv"
)

// Condition is the predicate half of a ConditionalSelector. Like Selector, the set of
// implementations is closed.
type Condition interface {
	conditionNode()
	String() string
}

// AndCondition requires both sides, e.g. the '.a' and '#b' of 'div.a#b'.
type AndCondition struct {
	Left, Right Condition
}

// OrCondition accepts either side. Produced by ':is()' and ':matches()'.
type OrCondition struct {
	Left, Right Condition
}

// AttributeExistsCondition is '[name]'.
type AttributeExistsCondition struct {
	Name string
}

// AttributeEqualsCondition is '[name=value]'.
type AttributeEqualsCondition struct {
	Name, Value string
}

// ClassCondition is '.value'.
type ClassCondition struct {
	Value string
}

// IDCondition is '#value'.
type IDCondition struct {
	Value string
}

// BeginHyphenCondition is '[name|=value]'.
type BeginHyphenCondition struct {
	Name, Value string
}

// OneOfCondition is '[name~=value]'.
type OneOfCondition struct {
	Name, Value string
}

// PrefixCondition is '[name^=value]'.
type PrefixCondition struct {
	Name, Value string
}

// SuffixCondition is '[name$=value]'.
type SuffixCondition struct {
	Name, Value string
}

// SubstringCondition is '[name*=value]'.
type SubstringCondition struct {
	Name, Value string
}

// LangCondition is ':lang(value)'.
type LangCondition struct {
	Lang string
}

// NegativeCondition is ':not(selector)'.
type NegativeCondition struct {
	Selector Selector
}

// ContentCondition is ':contains("data")'.
type ContentCondition struct {
	Data string
}

// OnlyChildCondition is ':only-child'.
type OnlyChildCondition struct{}

// OnlyTypeCondition is ':only-of-type'.
type OnlyTypeCondition struct{}

// PositionalCondition covers the nth family. The element matches when its 1-based
// index equals A*n+B for some n >= 0. OfType restricts counting to same-named siblings
// and FromEnd counts from the last sibling.
type PositionalCondition struct {
	A, B    int
	OfType  bool
	FromEnd bool
}

// PseudoClassCondition is any other pseudo-class, e.g. ':hover' or ':empty'.
type PseudoClassCondition struct {
	Name string
}

func (AndCondition) conditionNode()             {}
func (OrCondition) conditionNode()              {}
func (AttributeExistsCondition) conditionNode() {}
func (AttributeEqualsCondition) conditionNode() {}
func (ClassCondition) conditionNode()           {}
func (IDCondition) conditionNode()              {}
func (BeginHyphenCondition) conditionNode()     {}
func (OneOfCondition) conditionNode()           {}
func (PrefixCondition) conditionNode()          {}
func (SuffixCondition) conditionNode()          {}
func (SubstringCondition) conditionNode()       {}
func (LangCondition) conditionNode()            {}
func (NegativeCondition) conditionNode()        {}
func (ContentCondition) conditionNode()         {}
func (OnlyChildCondition) conditionNode()       {}
func (OnlyTypeCondition) conditionNode()        {}
func (PositionalCondition) conditionNode()      {}
func (PseudoClassCondition) conditionNode()     {}

func (c AndCondition) String() string { return c.Left.String() + c.Right.String() }

func (c OrCondition) String() string {
	return ":is(" + c.Left.String() + ", " + c.Right.String() + ")"
}

func (c AttributeExistsCondition) String() string { return "[" + c.Name + "]" }

func (c AttributeEqualsCondition) String() string { return attrString(c.Name, "=", c.Value) }

func (c ClassCondition) String() string { return "." + c.Value }

func (c IDCondition) String() string { return "#" + c.Value }

func (c BeginHyphenCondition) String() string { return attrString(c.Name, "|=", c.Value) }

func (c OneOfCondition) String() string { return attrString(c.Name, "~=", c.Value) }

func (c PrefixCondition) String() string { return attrString(c.Name, "^=", c.Value) }

func (c SuffixCondition) String() string { return attrString(c.Name, "$=", c.Value) }

func (c SubstringCondition) String() string { return attrString(c.Name, "*=", c.Value) }

func (c LangCondition) String() string { return ":lang(" + c.Lang + ")" }

func (c NegativeCondition) String() string { return ":not(" + c.Selector.String() + ")" }

func (c ContentCondition) String() string { return ":contains(" + strconv.Quote(c.Data) + ")" }

func (OnlyChildCondition) String() string { return ":only-child" }

func (OnlyTypeCondition) String() string { return ":only-of-type" }

func (c PositionalCondition) String() string {
	name := "nth"
	if c.FromEnd {
		name += "-last"
	}
	if c.OfType {
		name += "-of-type"
	} else {
		name += "-child"
	}
	return fmt.Sprintf(":%s(%dn%+d)", name, c.A, c.B)
}

func (c PseudoClassCondition) String() string { return ":" + c.Name }

func attrString(name, op, value string) string {
	return "[" + name + op + strconv.Quote(value) + "]"
}

// Matches reports whether a 1-based sibling index satisfies the A*n+B formula.
func (c PositionalCondition) Matches(index int) bool {
	if c.A == 0 {
		return index == c.B
	}
	diff := index - c.B
	if diff%c.A != 0 {
		return false
	}
	return diff/c.A >= 0
}
