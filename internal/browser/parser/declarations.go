// internal/browser/parser/declarations.go
package parser

import "strings"

// Declaration is a single 'property: value' pair. Property names are lowercased; values
// keep their authored text minus any '!important' suffix.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// ParseDeclarations parses a declaration block without surrounding braces, as found in
// a 'style' attribute. Malformed declarations are skipped; the rest are kept in order.
func ParseDeclarations(text string) []Declaration {
	return NewParser(text).parseDeclarations()
}

func (p *Parser) parseDeclarations() []Declaration {
	var declarations []Declaration
	for {
		p.consumeWhitespace()
		if p.eof() {
			break
		}
		if p.currentChar() == ';' {
			p.consumeChar()
			continue
		}

		property, value, important := p.parseDeclaration()
		if property != "" && value != "" {
			declarations = append(declarations, Declaration{
				Property:  strings.ToLower(property),
				Value:     value,
				Important: important,
			})
		}
	}
	return declarations
}

// parseDeclaration parses a single 'property: value;' pair.
func (p *Parser) parseDeclaration() (prop, val string, important bool) {
	// 1. Parse Property. Custom properties ('--x') are identifiers too.
	if !p.atIdentifier() {
		p.skipDeclaration()
		return
	}
	prop = p.parseIdentifier()
	p.consumeWhitespace()

	// 2. Parse Colon.
	if p.eof() || p.currentChar() != ':' {
		p.skipDeclaration()
		return "", "", false
	}
	p.consumeChar()
	p.consumeWhitespace()

	// 3. Parse Value.
	val = p.parseValue()

	// 4. Handle !important.
	lower := strings.ToLower(val)
	if idx := strings.LastIndex(lower, "!"); idx >= 0 && strings.TrimSpace(lower[idx+1:]) == "important" {
		important = true
		val = strings.TrimSpace(val[:idx])
	}

	// 5. Consume optional semicolon.
	p.consumeWhitespace()
	if !p.eof() && p.currentChar() == ';' {
		p.consumeChar()
	}
	return
}

func (p *Parser) skipDeclaration() {
	for !p.eof() && p.currentChar() != ';' {
		ch := p.currentChar()
		switch ch {
		case '"', '\'':
			p.skipQuotedString(ch)
		case '(':
			p.consumeChar()
			p.skipBlock('(', ')')
		default:
			p.pos++
		}
	}
	if !p.eof() {
		p.consumeChar()
	}
}

// parseValue reads a CSS value until a delimiter.
func (p *Parser) parseValue() string {
	start := p.pos
	for !p.eof() {
		ch := p.currentChar()
		if ch == ';' {
			break
		}
		if ch == '"' || ch == '\'' {
			p.skipQuotedString(ch)
			continue
		}
		if ch == '(' {
			p.consumeChar()
			p.skipBlock('(', ')')
			continue
		}
		if p.startsWith("/*") {
			p.skipComment()
			continue
		}
		p.pos++
	}
	return strings.TrimSpace(p.input[start:p.pos])
}
