// Package ewkt parses Extended Well-Known Text into geometry collections.
//
// A literal is an optional "SRID=<n>;" prefix followed by one geometry:
//
//	SRID=4326;POLYGON((0 0,4 0,4 4,0 4,0 0))
//	POINTM(1 2 3)
//	GEOMETRYCOLLECTION(POINT(1 1),LINESTRING(0 0,1 1))
//
// The coordinate model comes from the number of values in the first tuple
// (two for XY, three for XYZ, four for XYZM) unless the keyword carries the
// M suffix, in which case three values mean XYM.
//
// Every parse keeps its state in its own context, so the package functions
// and a shared Parser may be used from any number of goroutines.
package ewkt

import (
	"strconv"
	"strings"

	"github.com/kasuganosora/sqlgeo/pkg/geometry"
)

// Options bound and tighten parsing. The zero value imposes no limits.
type Options struct {
	// MaxInputBytes rejects longer input with a KindLimit error. 0 disables.
	MaxInputBytes int
	// MaxCoordinates caps the number of coordinate tuples. 0 disables.
	MaxCoordinates int
	// RequireClosedRings makes validation reject rings whose first and last
	// vertices differ.
	RequireClosedRings bool
}

// DefaultOptions returns the limits used by the package-level functions.
func DefaultOptions() Options {
	return Options{
		MaxInputBytes:  16 << 20,
		MaxCoordinates: 1 << 20,
	}
}

// Parser parses with a fixed set of options.
type Parser struct {
	opts Options
}

// NewParser creates a parser.
func NewParser(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Options returns the parser's options.
func (p *Parser) Options() Options {
	return p.opts
}

// Parse parses an EWKT literal. The returned collection is owned by the
// caller; on failure the error is an *Error and no geometry is returned.
func (p *Parser) Parse(text string) (*geometry.Collection, error) {
	if err := p.checkSize(text); err != nil {
		return nil, err
	}
	srid, offset, err := splitSRID(text)
	if err != nil {
		return nil, err
	}
	return p.run(text, offset, srid)
}

// ParseWKT parses plain WKT and stamps it with srid. An SRID prefix in text
// is rejected by the scanner.
func (p *Parser) ParseWKT(text string, srid int) (*geometry.Collection, error) {
	if err := p.checkSize(text); err != nil {
		return nil, err
	}
	return p.run(text, 0, srid)
}

func (p *Parser) checkSize(text string) error {
	if p.opts.MaxInputBytes > 0 && len(text) > p.opts.MaxInputBytes {
		return limitError("input is %d bytes, limit is %d", len(text), p.opts.MaxInputBytes)
	}
	return nil
}

func (p *Parser) run(text string, offset, srid int) (*geometry.Collection, error) {
	c, err := newParseContext(text, offset, p.opts).parse()
	if err != nil {
		return nil, err
	}
	if err := Validate(c, p.opts); err != nil {
		c.Release()
		return nil, err
	}
	c.ComputeMBR()
	c.SRID = srid
	return c, nil
}

var defaultParser = NewParser(DefaultOptions())

// Parse parses text with DefaultOptions.
func Parse(text string) (*geometry.Collection, error) {
	return defaultParser.Parse(text)
}

// ParseWithOptions parses text with opts.
func ParseWithOptions(text string, opts Options) (*geometry.Collection, error) {
	return NewParser(opts).Parse(text)
}

// ParseWKT parses plain WKT with DefaultOptions and assigns srid.
func ParseWKT(text string, srid int) (*geometry.Collection, error) {
	return defaultParser.ParseWKT(text, srid)
}

// splitSRID recognises a leading "SRID=<signed int>;" and returns the value
// and the offset of the geometry text. Spaces and tabs may surround each
// part of the prefix. Without a prefix it returns UnknownSRID and 0.
func splitSRID(text string) (int, int, error) {
	s := newScanner(text, 0)
	s.skipSpace()
	start := s.pos
	if len(text)-start < 4 || !strings.EqualFold(text[start:start+4], "SRID") {
		return geometry.UnknownSRID, 0, nil
	}
	if start+4 < len(text) && isLetter(text[start+4]) {
		// a word that merely starts with SRID; let the scanner report it
		return geometry.UnknownSRID, 0, nil
	}
	for i := 0; i < 4; i++ {
		s.advance()
	}

	s.skipSpace()
	if s.peek() != '=' {
		return 0, 0, sridError(s, "expected '=' after SRID")
	}
	s.advance()

	s.skipSpace()
	numLine, numCol, numStart := s.line, s.col, s.pos
	if c := s.peek(); c == '+' || c == '-' {
		s.advance()
	}
	for isDigit(s.peek()) {
		s.advance()
	}
	digits := text[numStart:s.pos]
	srid, err := strconv.Atoi(digits)
	if err != nil {
		return 0, 0, &Error{Kind: KindSyntax, Line: numLine, Column: numCol, Offset: numStart,
			Msg: "invalid SRID " + strconv.Quote(digits)}
	}

	s.skipSpace()
	if s.peek() != ';' {
		return 0, 0, sridError(s, "expected ';' after SRID value")
	}
	s.advance()
	return srid, s.pos, nil
}

func sridError(s *scanner, msg string) *Error {
	return &Error{Kind: KindSyntax, Line: s.line, Column: s.col, Offset: s.pos, Msg: msg}
}
