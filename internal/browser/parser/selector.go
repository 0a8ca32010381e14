// internal/browser/parser/selector.go
package parser

import (
	"strconv"
	"strings"

	"github.com/xkilldash9x/unitbrowser/internal/browser/css"
)

// legacyPseudoElements may be written with a single colon.
var legacyPseudoElements = map[string]bool{
	"before":       true,
	"after":        true,
	"first-line":   true,
	"first-letter": true,
}

// ParseSelectors parses a comma-separated selector group. Any syntax error invalidates
// the whole group: the result is then an empty list together with a *SyntaxError.
func ParseSelectors(text string) (css.SelectorList, error) {
	p := NewParser(text)
	list, err := p.ParseSelectorList()
	if err != nil {
		return css.SelectorList{}, err
	}
	return list, nil
}

// ParseSelectorList parses the remaining input as a selector group.
func (p *Parser) ParseSelectorList() (css.SelectorList, error) {
	var list css.SelectorList
	for {
		p.consumeWhitespace()
		sel, err := p.parseComplexSelector()
		if err != nil {
			return nil, err
		}
		list = append(list, sel)

		p.consumeWhitespace()
		if p.eof() {
			return list, nil
		}
		if p.currentChar() != ',' {
			return nil, p.errorf("unexpected character %q", p.currentChar())
		}
		p.consumeChar()
	}
}

// parseComplexSelector parses compounds joined by combinators. Chains associate to the
// left, so 'a b > c' becomes Child(Descendant(a, b), c).
func (p *Parser) parseComplexSelector() (css.Selector, error) {
	left, pseudo, err := p.parseCompoundSelector()
	if err != nil {
		return nil, err
	}

	for {
		sawSpace := p.consumeWhitespace()
		if p.eof() || p.currentChar() == ',' {
			return left, nil
		}

		combinator := byte(' ')
		switch ch := p.currentChar(); ch {
		case '>', '+', '~':
			combinator = ch
			p.consumeChar()
			p.consumeWhitespace()
		default:
			if !sawSpace {
				return nil, p.errorf("unexpected character %q", ch)
			}
		}

		if pseudo {
			return nil, p.errorf("pseudo-element must be the last simple selector")
		}
		if p.eof() {
			return nil, p.errorf("selector expected after combinator")
		}

		right, rightPseudo, err := p.parseCompoundSelector()
		if err != nil {
			return nil, err
		}
		pseudo = rightPseudo

		switch combinator {
		case '>':
			left = css.ChildSelector{Parent: left, Child: right}
		case '+':
			left = css.DirectAdjacentSelector{Previous: left, Next: right}
		case '~':
			left = css.GeneralSiblingSelector{Previous: left, Next: right}
		default:
			left = css.DescendantSelector{Ancestor: left, Descendant: right}
		}
	}
}

// parseCompoundSelector parses a type selector followed by any number of id, class,
// attribute and pseudo-class conditions, optionally terminated by a pseudo-element.
// The boolean result reports whether a pseudo-element was present.
func (p *Parser) parseCompoundSelector() (css.Selector, bool, error) {
	start := p.pos
	var base css.Selector
	var conditions []css.Condition
	isRoot := false
	pseudoElement := ""

	switch {
	case p.currentChar() == '*':
		p.consumeChar()
		base = css.AnySelector{}
		if p.currentChar() == '|' && p.peekChar(1) != '=' {
			p.consumeChar()
			el, err := p.parseTypeAfterNamespace("*")
			if err != nil {
				return nil, false, err
			}
			base = el
		}
	case p.currentChar() == '|':
		p.consumeChar()
		el, err := p.parseTypeAfterNamespace("")
		if err != nil {
			return nil, false, err
		}
		base = el
	case p.atIdentifier():
		name := p.parseIdentifier()
		if p.currentChar() == '|' && p.peekChar(1) != '=' {
			p.consumeChar()
			el, err := p.parseTypeAfterNamespace(name)
			if err != nil {
				return nil, false, err
			}
			base = el
		} else {
			base = css.ElementSelector{LocalName: strings.ToLower(name)}
		}
	}

loop:
	for !p.eof() {
		if pseudoElement != "" {
			switch p.currentChar() {
			case '#', '.', '[', ':':
				return nil, false, p.errorf("pseudo-element must be the last simple selector")
			}
			break loop
		}

		switch p.currentChar() {
		case '#':
			p.consumeChar()
			if !p.atIdentifier() && !isDigit(p.currentChar()) {
				return nil, false, p.errorf("identifier expected after '#'")
			}
			conditions = append(conditions, css.IDCondition{Value: p.parseName()})
		case '.':
			p.consumeChar()
			if !p.atIdentifier() {
				return nil, false, p.errorf("identifier expected after '.'")
			}
			conditions = append(conditions, css.ClassCondition{Value: p.parseIdentifier()})
		case '[':
			cond, err := p.parseAttributeSelector()
			if err != nil {
				return nil, false, err
			}
			conditions = append(conditions, cond)
		case ':':
			p.consumeChar()
			if p.currentChar() == ':' {
				p.consumeChar()
				if !p.atIdentifier() {
					return nil, false, p.errorf("pseudo-element name expected")
				}
				pseudoElement = strings.ToLower(p.parseIdentifier())
				continue
			}
			if !p.atIdentifier() {
				return nil, false, p.errorf("pseudo-class name expected")
			}
			name := strings.ToLower(p.parseIdentifier())
			if legacyPseudoElements[name] {
				pseudoElement = name
				continue
			}
			if name == "root" && p.currentChar() != '(' {
				isRoot = true
				continue
			}
			cond, err := p.parsePseudoClass(name)
			if err != nil {
				return nil, false, err
			}
			conditions = append(conditions, cond)
		default:
			break loop
		}
	}

	if p.pos == start {
		if p.eof() {
			return nil, false, p.errorf("selector expected")
		}
		return nil, false, p.errorf("unexpected character %q", p.currentChar())
	}

	var sel css.Selector
	switch {
	case isRoot && (base == nil || base == css.Selector(css.AnySelector{})):
		sel = css.RootSelector{}
	case isRoot:
		// 'html:root' and friends: keep the type and carry root as a condition.
		sel = base
		conditions = append([]css.Condition{css.PseudoClassCondition{Name: "root"}}, conditions...)
	case base == nil:
		sel = css.AnySelector{}
	default:
		sel = base
	}

	if len(conditions) > 0 {
		sel = css.ConditionalSelector{Base: sel, Condition: foldAnd(conditions)}
	}
	if pseudoElement != "" {
		sel = css.PseudoElementSelector{Base: sel, Name: pseudoElement}
	}
	return sel, pseudoElement != "", nil
}

// parseTypeAfterNamespace parses the local name following 'ns|'.
func (p *Parser) parseTypeAfterNamespace(namespace string) (css.Selector, error) {
	if p.currentChar() == '*' {
		p.consumeChar()
		return css.AnySelector{}, nil
	}
	if !p.atIdentifier() {
		return nil, p.errorf("element name expected after namespace prefix")
	}
	name := strings.ToLower(p.parseIdentifier())
	if namespace == "*" || namespace == "" {
		return css.ElementSelector{LocalName: name}, nil
	}
	return css.ElementSelector{LocalName: name, Namespace: namespace}, nil
}

// parseName reads an identifier that may begin with a digit, as allowed after '#'.
func (p *Parser) parseName() string {
	var sb strings.Builder
	for !p.eof() {
		ch := p.currentChar()
		if ch == '\\' {
			p.pos++
			sb.WriteRune(p.parseEscape())
			continue
		}
		if !isValidIdentifierChar(ch) {
			break
		}
		sb.WriteByte(ch)
		p.pos++
	}
	return sb.String()
}

// parseAttributeSelector parses '[name]' and '[name op value]' with an optional
// trailing 'i' or 's' flag, which is accepted and ignored.
func (p *Parser) parseAttributeSelector() (css.Condition, error) {
	p.consumeChar() // Consume '['
	p.consumeWhitespace()

	if p.currentChar() == '*' || p.currentChar() == '|' {
		p.skipTo('|')
		p.consumeChar()
	}
	if !p.atIdentifier() {
		return nil, p.errorf("attribute name expected")
	}
	name := strings.ToLower(p.parseIdentifier())
	if p.currentChar() == '|' && p.peekChar(1) != '=' {
		p.consumeChar()
		if !p.atIdentifier() {
			return nil, p.errorf("attribute name expected after namespace prefix")
		}
		name = strings.ToLower(p.parseIdentifier())
	}
	p.consumeWhitespace()

	if p.currentChar() == ']' {
		p.consumeChar()
		return css.AttributeExistsCondition{Name: name}, nil
	}

	var op string
	switch ch := p.currentChar(); ch {
	case '=':
		op = "="
		p.consumeChar()
	case '~', '|', '^', '$', '*':
		if p.peekChar(1) != '=' {
			return nil, p.errorf("invalid attribute operator")
		}
		op = string(ch) + "="
		p.pos += 2
	default:
		return nil, p.errorf("invalid attribute operator")
	}
	p.consumeWhitespace()

	var value string
	switch ch := p.currentChar(); {
	case ch == '"' || ch == '\'':
		v, err := p.parseString()
		if err != nil {
			return nil, err
		}
		value = v
	case p.atIdentifier() || isDigit(ch) || ch == '-':
		value = p.parseName()
	default:
		return nil, p.errorf("attribute value expected")
	}
	p.consumeWhitespace()

	if ch := p.currentChar(); ch == 'i' || ch == 'I' || ch == 's' || ch == 'S' {
		p.consumeChar()
		p.consumeWhitespace()
	}
	if p.currentChar() != ']' {
		return nil, p.errorf("expected ']'")
	}
	p.consumeChar()

	switch op {
	case "~=":
		return css.OneOfCondition{Name: name, Value: value}, nil
	case "|=":
		return css.BeginHyphenCondition{Name: name, Value: value}, nil
	case "^=":
		return css.PrefixCondition{Name: name, Value: value}, nil
	case "$=":
		return css.SuffixCondition{Name: name, Value: value}, nil
	case "*=":
		return css.SubstringCondition{Name: name, Value: value}, nil
	default:
		return css.AttributeEqualsCondition{Name: name, Value: value}, nil
	}
}

func (p *Parser) parsePseudoClass(name string) (css.Condition, error) {
	switch name {
	case "first-child":
		return css.PositionalCondition{A: 0, B: 1}, nil
	case "last-child":
		return css.PositionalCondition{A: 0, B: 1, FromEnd: true}, nil
	case "first-of-type":
		return css.PositionalCondition{A: 0, B: 1, OfType: true}, nil
	case "last-of-type":
		return css.PositionalCondition{A: 0, B: 1, OfType: true, FromEnd: true}, nil
	case "only-child":
		return css.OnlyChildCondition{}, nil
	case "only-of-type":
		return css.OnlyTypeCondition{}, nil
	}

	if p.currentChar() != '(' {
		return css.PseudoClassCondition{Name: name}, nil
	}

	argStart := p.pos + 1
	arg, err := p.parseParenthesized()
	if err != nil {
		return nil, err
	}

	switch name {
	case "nth-child", "nth-last-child", "nth-of-type", "nth-last-of-type":
		a, b, ok := parseNth(arg)
		if !ok {
			return nil, &SyntaxError{Input: p.input, Offset: argStart, Msg: "invalid nth expression " + strconv.Quote(arg)}
		}
		return css.PositionalCondition{
			A:       a,
			B:       b,
			OfType:  strings.HasSuffix(name, "of-type"),
			FromEnd: strings.HasPrefix(name, "nth-last"),
		}, nil

	case "lang":
		if arg == "" {
			return nil, &SyntaxError{Input: p.input, Offset: argStart, Msg: "empty :lang() argument"}
		}
		return css.LangCondition{Lang: strings.Trim(arg, `"'`)}, nil

	case "contains":
		sub := NewParser(arg)
		if sub.currentChar() == '"' || sub.currentChar() == '\'' {
			data, err := sub.parseString()
			if err != nil {
				return nil, p.nested(argStart, err)
			}
			return css.ContentCondition{Data: data}, nil
		}
		return css.ContentCondition{Data: arg}, nil

	case "not":
		sub := NewParser(arg)
		sel, _, err := sub.parseCompoundSelector()
		if err != nil {
			return nil, p.nested(argStart, err)
		}
		sub.consumeWhitespace()
		if !sub.eof() {
			return nil, p.nested(argStart, sub.errorf(":not() takes a single compound selector"))
		}
		return css.NegativeCondition{Selector: sel}, nil

	case "is", "matches", "where", "any":
		list, err := NewParser(arg).ParseSelectorList()
		if err != nil {
			return nil, p.nested(argStart, err)
		}
		var alternatives []css.Condition
		for _, item := range list {
			cs, ok := item.(css.ConditionalSelector)
			if !ok || cs.Base != css.Selector(css.AnySelector{}) {
				// Alternatives carrying a type or combinator cannot be folded into a
				// single condition.
				return css.PseudoClassCondition{Name: name + "(" + arg + ")"}, nil
			}
			alternatives = append(alternatives, cs.Condition)
		}
		cond := alternatives[0]
		for _, alt := range alternatives[1:] {
			cond = css.OrCondition{Left: cond, Right: alt}
		}
		return cond, nil
	}

	return css.PseudoClassCondition{Name: name + "(" + arg + ")"}, nil
}

// nested rebases an error raised by a sub-parser onto this parser's input.
func (p *Parser) nested(offset int, err error) error {
	if se, ok := err.(*SyntaxError); ok {
		return &SyntaxError{Input: p.input, Offset: offset + se.Offset, Msg: se.Msg}
	}
	return err
}

// parseNth parses the argument of the nth-* pseudo-classes: 'odd', 'even', 'b', 'an',
// 'an+b' with optional signs and whitespace around the operator.
func parseNth(arg string) (a, b int, ok bool) {
	s := strings.ToLower(strings.Join(strings.Fields(arg), ""))
	switch s {
	case "":
		return 0, 0, false
	case "odd":
		return 2, 1, true
	case "even":
		return 2, 0, true
	}

	n := strings.IndexByte(s, 'n')
	if n < 0 {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, false
		}
		return 0, v, true
	}

	switch coef := s[:n]; coef {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		v, err := strconv.Atoi(coef)
		if err != nil {
			return 0, 0, false
		}
		a = v
	}

	rest := s[n+1:]
	if rest == "" {
		return a, 0, true
	}
	if rest[0] != '+' && rest[0] != '-' {
		return 0, 0, false
	}
	v, err := strconv.Atoi(rest)
	if err != nil {
		return 0, 0, false
	}
	return a, v, true
}

func foldAnd(conditions []css.Condition) css.Condition {
	cond := conditions[0]
	for _, c := range conditions[1:] {
		cond = css.AndCondition{Left: cond, Right: c}
	}
	return cond
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
