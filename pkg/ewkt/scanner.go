package ewkt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// scanner turns EWKT text into tokens. It keeps no state besides its read
// position, so each parse owns its own scanner.
type scanner struct {
	src  string
	pos  int
	line int
	col  int
	err  *Error
}

func newScanner(src string, offset int) *scanner {
	s := &scanner{src: src, line: 1, col: 1}
	for s.pos < offset {
		s.advance()
	}
	return s
}

func (s *scanner) peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) advance() byte {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' }

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.advance()
	}
}

// next returns the following token. After a tokError it keeps returning
// tokError; s.err holds the diagnostic.
func (s *scanner) next() token {
	if s.err != nil {
		return token{kind: tokError, line: s.err.Line, col: s.err.Column, offset: s.err.Offset}
	}
	s.skipSpace()

	tok := token{line: s.line, col: s.col, offset: s.pos}
	if s.pos >= len(s.src) {
		tok.kind = tokEnd
		return tok
	}

	switch c := s.peek(); {
	case c == '\n':
		s.advance()
		tok.kind = tokEnd
	case c == '(':
		s.advance()
		tok.kind = tokOpen
	case c == ')':
		s.advance()
		tok.kind = tokClose
	case c == ',':
		s.advance()
		tok.kind = tokComma
	case isLetter(c):
		return s.keyword(tok)
	case isDigit(c) || c == '.' || c == '+' || c == '-':
		return s.number(tok)
	default:
		s.advance()
		tok.text = string(c)
		return s.fail(tok, fmt.Sprintf("unexpected character %q", c))
	}
	return tok
}

func (s *scanner) keyword(tok token) token {
	start := s.pos
	for s.pos < len(s.src) && isLetter(s.src[s.pos]) {
		s.advance()
	}
	tok.text = s.src[start:s.pos]
	kind, ok := keywords[strings.ToUpper(tok.text)]
	if !ok {
		return s.fail(tok, fmt.Sprintf("unknown keyword %q", tok.text))
	}
	tok.kind = kind
	return tok
}

// number accepts [+-]?(digits[.digits*]|.digits)([eE][+-]?digits)?.
func (s *scanner) number(tok token) token {
	start := s.pos
	if c := s.peek(); c == '+' || c == '-' {
		s.advance()
	}
	digits := 0
	for isDigit(s.peek()) {
		s.advance()
		digits++
	}
	if s.peek() == '.' {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
			digits++
		}
	}
	if digits == 0 {
		tok.text = s.src[start:s.pos]
		return s.fail(tok, fmt.Sprintf("malformed number %q", tok.text))
	}
	if c := s.peek(); c == 'e' || c == 'E' {
		save, saveLine, saveCol := s.pos, s.line, s.col
		s.advance()
		if c := s.peek(); c == '+' || c == '-' {
			s.advance()
		}
		if !isDigit(s.peek()) {
			// not an exponent; leave the letter for the next token
			s.pos, s.line, s.col = save, saveLine, saveCol
		}
		for isDigit(s.peek()) {
			s.advance()
		}
	}

	tok.text = s.src[start:s.pos]
	// overflow yields ±Inf with ErrRange and underflow yields ±0; both are
	// kept, as strtod does.
	v, err := strconv.ParseFloat(tok.text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return s.fail(tok, fmt.Sprintf("malformed number %q", tok.text))
	}
	tok.kind = tokNumber
	tok.num = v
	return tok
}

func (s *scanner) fail(tok token, msg string) token {
	s.err = &Error{Kind: KindLexical, Line: tok.line, Column: tok.col, Offset: tok.offset, Msg: msg}
	tok.kind = tokError
	return tok
}

// atEnd reports whether only whitespace and newlines remain.
func (s *scanner) atEnd() bool {
	for s.pos < len(s.src) {
		if c := s.src[s.pos]; !isSpace(c) && c != '\n' {
			return false
		}
		s.advance()
	}
	return true
}
