// internal/browser/parser/lexer.go
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SyntaxError describes malformed selector or declaration text.
type SyntaxError struct {
	Input  string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("css syntax error at offset %d in %q: %s", e.Offset, e.Input, e.Msg)
}

// Parser holds the state of the CSS parser.
type Parser struct {
	input string
	pos   int
}

// NewParser returns a parser positioned at the start of input.
func NewParser(input string) *Parser {
	return &Parser{input: input}
}

func (p *Parser) errorf(format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Input: p.input, Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

// --- Lexer-like Helpers ---

func (p *Parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *Parser) currentChar() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) peekChar(offset int) byte {
	if p.pos+offset >= len(p.input) {
		return 0
	}
	return p.input[p.pos+offset]
}

func (p *Parser) consumeChar() byte {
	ch := p.currentChar()
	if !p.eof() {
		p.pos++
	}
	return ch
}

// consumeWhitespace skips whitespace and comments and reports whether anything was skipped.
func (p *Parser) consumeWhitespace() bool {
	start := p.pos
	for !p.eof() {
		switch {
		case isWhitespace(p.currentChar()):
			p.pos++
		case p.startsWith("/*"):
			p.skipComment()
		default:
			return p.pos > start
		}
	}
	return p.pos > start
}

func (p *Parser) startsWith(s string) bool {
	return strings.HasPrefix(p.input[p.pos:], s)
}

func (p *Parser) skipComment() {
	p.pos += 2
	endIndex := strings.Index(p.input[p.pos:], "*/")
	if endIndex == -1 {
		p.pos = len(p.input)
	} else {
		p.pos += endIndex + 2
	}
}

func (p *Parser) skipTo(targets ...byte) {
	for !p.eof() {
		ch := p.currentChar()
		for _, target := range targets {
			if ch == target {
				return
			}
		}
		p.pos++
	}
}

func (p *Parser) skipBlock(open, close byte) {
	depth := 1
	for !p.eof() {
		c := p.consumeChar()
		if c == open {
			depth++
		} else if c == close {
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (p *Parser) skipQuotedString(quote byte) {
	p.consumeChar()
	for !p.eof() {
		ch := p.consumeChar()
		if ch == '\\' {
			p.consumeChar()
		} else if ch == quote {
			return
		}
	}
}

// atIdentifier reports whether an identifier starts at the current position.
func (p *Parser) atIdentifier() bool {
	ch := p.currentChar()
	if ch == '-' {
		next := p.peekChar(1)
		return isValidIdentifierStart(next) || next == '-' || next == '\\'
	}
	return isValidIdentifierStart(ch) || ch == '\\'
}

// parseIdentifier reads an identifier, resolving backslash escapes.
func (p *Parser) parseIdentifier() string {
	var sb strings.Builder
	for !p.eof() {
		ch := p.currentChar()
		switch {
		case ch == '\\':
			p.pos++
			sb.WriteRune(p.parseEscape())
		case isValidIdentifierChar(ch):
			sb.WriteByte(ch)
			p.pos++
		default:
			return sb.String()
		}
	}
	return sb.String()
}

// parseEscape decodes the escape following a backslash: up to six hex digits with an
// optional trailing space, or a single literal character.
func (p *Parser) parseEscape() rune {
	if p.eof() {
		return utf8.RuneError
	}
	start := p.pos
	for p.pos < len(p.input) && p.pos-start < 6 && isHexDigit(p.input[p.pos]) {
		p.pos++
	}
	if p.pos > start {
		code, err := strconv.ParseUint(p.input[start:p.pos], 16, 32)
		if !p.eof() && isWhitespace(p.currentChar()) {
			p.pos++
		}
		if err != nil || code == 0 || code > utf8.MaxRune {
			return utf8.RuneError
		}
		return rune(code)
	}
	r, size := utf8.DecodeRuneInString(p.input[p.pos:])
	p.pos += size
	return r
}

// parseString reads a quoted string starting at the opening quote.
func (p *Parser) parseString() (string, error) {
	quote := p.consumeChar()
	var sb strings.Builder
	for !p.eof() {
		ch := p.consumeChar()
		switch ch {
		case quote:
			return sb.String(), nil
		case '\\':
			if p.eof() {
				return sb.String(), nil
			}
			if p.currentChar() == '\n' {
				p.pos++
				continue
			}
			sb.WriteRune(p.parseEscape())
		default:
			sb.WriteByte(ch)
		}
	}
	return "", p.errorf("unterminated string")
}

// parseParenthesized returns the raw text between the current '(' and its matching ')'.
func (p *Parser) parseParenthesized() (string, error) {
	if p.currentChar() != '(' {
		return "", p.errorf("expected '('")
	}
	p.consumeChar()
	start := p.pos
	depth := 1
	for !p.eof() {
		ch := p.currentChar()
		switch ch {
		case '"', '\'':
			p.skipQuotedString(ch)
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				arg := p.input[start:p.pos]
				p.pos++
				return strings.TrimSpace(arg), nil
			}
		}
		p.pos++
	}
	return "", p.errorf("unbalanced parenthesis")
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isValidIdentifierStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch >= 0x80
}

func isValidIdentifierChar(ch byte) bool {
	return isValidIdentifierStart(ch) || ch == '-' || (ch >= '0' && ch <= '9')
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
