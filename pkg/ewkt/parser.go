package ewkt

import (
	"fmt"

	"github.com/kasuganosora/sqlgeo/pkg/geometry"
)

// dimension tracks the coordinate model of the geometry being parsed. The
// first tuple fixes it by its number count; every later tuple must agree.
type dimension struct {
	mSuffix bool
	fixed   bool
	model   geometry.Model
}

func (d *dimension) resolve(n int) (geometry.Model, string) {
	var model geometry.Model
	if d.mSuffix {
		if n != 3 {
			return 0, fmt.Sprintf("M geometry needs 3 coordinates per point, got %d", n)
		}
		model = geometry.XYM
	} else {
		switch n {
		case 2:
			model = geometry.XY
		case 3:
			model = geometry.XYZ
		case 4:
			model = geometry.XYZM
		default:
			return 0, fmt.Sprintf("expected 2 to 4 coordinates per point, got %d", n)
		}
	}
	if d.fixed && model != d.model {
		return 0, fmt.Sprintf("mixed dimensionality: geometry is %s but point has %d coordinates", d.model, n)
	}
	d.fixed = true
	d.model = model
	return model, ""
}

// parseContext is the complete state of one parse: scanner position,
// lookahead and counters. Nothing is shared between parses.
type parseContext struct {
	sc     *scanner
	tok    token
	opts   Options
	tuples int
}

func newParseContext(src string, offset int, opts Options) *parseContext {
	return &parseContext{sc: newScanner(src, offset), opts: opts}
}

func (p *parseContext) advance() error {
	p.tok = p.sc.next()
	if p.tok.kind == tokError {
		return p.sc.err
	}
	return nil
}

func (p *parseContext) syntaxError(tok token, format string, args ...interface{}) error {
	if p.sc.err != nil {
		return p.sc.err
	}
	return &Error{
		Kind:   KindSyntax,
		Line:   tok.line,
		Column: tok.col,
		Offset: tok.offset,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func (p *parseContext) expect(kind tokenKind) error {
	if p.tok.kind != kind {
		return p.syntaxError(p.tok, "expected %s, got %s", kind, p.tok.describe())
	}
	return p.advance()
}

// parse reads exactly one statement: a geometry followed by a newline or the
// end of input. Blank trailing lines are accepted.
func (p *parseContext) parse() (*geometry.Collection, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokEnd {
		return nil, p.syntaxError(p.tok, "empty input")
	}
	c, err := p.parseGeometry()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEnd {
		c.Release()
		return nil, p.syntaxError(p.tok, "unexpected %s after geometry", p.tok.describe())
	}
	if !p.sc.atEnd() {
		c.Release()
		return nil, p.syntaxError(token{line: p.sc.line, col: p.sc.col, offset: p.sc.pos},
			"only one geometry per input is allowed")
	}
	return c, nil
}

func (p *parseContext) parseGeometry() (*geometry.Collection, error) {
	kw := p.tok
	kind, mSuffix := kw.kind.geometryKind()
	if kind == geometry.KindUnknown {
		return nil, p.syntaxError(kw, "expected geometry keyword, got %s", kw.describe())
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	d := &dimension{mSuffix: mSuffix}

	switch kind {
	case geometry.KindPoint:
		pt, err := p.parsePointText(d)
		if err != nil {
			return nil, err
		}
		return assemblePoint(pt), nil
	case geometry.KindLinestring:
		l, err := p.parseLinestringText(d)
		if err != nil {
			return nil, err
		}
		return assembleLinestring(l), nil
	case geometry.KindPolygon:
		poly, err := p.parsePolygonText(d)
		if err != nil {
			return nil, err
		}
		return assemblePolygon(poly), nil
	case geometry.KindMultiPoint:
		pts, err := p.parseMultiPointText(d)
		if err != nil {
			return nil, err
		}
		return assembleMultiPoint(d.model, pts), nil
	case geometry.KindMultiLinestring:
		ls, err := p.parseMultiLinestringText(d)
		if err != nil {
			return nil, err
		}
		return assembleMultiLinestring(d.model, ls), nil
	case geometry.KindMultiPolygon:
		polys, err := p.parseMultiPolygonText(d)
		if err != nil {
			return nil, err
		}
		return assembleMultiPolygon(d.model, polys), nil
	default:
		return p.parseCollectionText(d)
	}
}

// readTuple consumes the numbers of one coordinate tuple into list.
func (p *parseContext) readTuple(d *dimension, list *coordList) error {
	start := p.tok
	var buf [4]float64
	n := 0
	for p.tok.kind == tokNumber {
		if n == len(buf) {
			return p.syntaxError(p.tok, "too many coordinates in point")
		}
		buf[n] = p.tok.num
		n++
		if err := p.advance(); err != nil {
			return err
		}
	}
	if n == 0 {
		return p.syntaxError(start, "expected coordinate, got %s", start.describe())
	}
	model, problem := d.resolve(n)
	if problem != "" {
		return p.syntaxError(start, "%s", problem)
	}
	p.tuples++
	if p.opts.MaxCoordinates > 0 && p.tuples > p.opts.MaxCoordinates {
		return limitError("more than %d coordinate tuples", p.opts.MaxCoordinates)
	}
	list.model = model
	list.append(buf[:n])
	return nil
}

// parseCoordSeq reads "( tuple {, tuple}* )" and requires at least min tuples.
func (p *parseContext) parseCoordSeq(d *dimension, min int, what string) (*coordList, error) {
	if err := p.expect(tokOpen); err != nil {
		return nil, err
	}
	list := &coordList{}
	for {
		if err := p.readTuple(d, list); err != nil {
			return nil, err
		}
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	closing := p.tok
	if err := p.expect(tokClose); err != nil {
		return nil, err
	}
	if n := list.len(); n < min {
		return nil, p.syntaxError(closing, "%s needs at least %d points, got %d", what, min, n)
	}
	return list, nil
}

func (p *parseContext) parsePointText(d *dimension) (geometry.Point, error) {
	if err := p.expect(tokOpen); err != nil {
		return geometry.Point{}, err
	}
	list := &coordList{}
	if err := p.readTuple(d, list); err != nil {
		return geometry.Point{}, err
	}
	if err := p.expect(tokClose); err != nil {
		return geometry.Point{}, err
	}
	return buildPoint(list.model, list.take()), nil
}

func (p *parseContext) parseLinestringText(d *dimension) (*geometry.Linestring, error) {
	list, err := p.parseCoordSeq(d, minLinestringPoints, "linestring")
	if err != nil {
		return nil, err
	}
	return buildLinestring(list)
}

func (p *parseContext) parsePolygonText(d *dimension) (*geometry.Polygon, error) {
	if err := p.expect(tokOpen); err != nil {
		return nil, err
	}
	var rings []*geometry.Ring
	for {
		list, err := p.parseCoordSeq(d, minRingPoints, "ring")
		if err != nil {
			return nil, err
		}
		ring, err := buildRing(list)
		if err != nil {
			return nil, err
		}
		rings = append(rings, ring)
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokClose); err != nil {
		return nil, err
	}
	return buildPolygon(d.model, rings), nil
}

// parseMultiPointText accepts both "x y, x y" and "(x y), (x y)" members.
func (p *parseContext) parseMultiPointText(d *dimension) ([]geometry.Point, error) {
	if err := p.expect(tokOpen); err != nil {
		return nil, err
	}
	var pts []geometry.Point
	list := &coordList{}
	for {
		wrapped := p.tok.kind == tokOpen
		if wrapped {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if err := p.readTuple(d, list); err != nil {
			return nil, err
		}
		if wrapped {
			if err := p.expect(tokClose); err != nil {
				return nil, err
			}
		}
		pts = append(pts, buildPoint(list.model, list.take()))
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokClose); err != nil {
		return nil, err
	}
	return pts, nil
}

func (p *parseContext) parseMultiLinestringText(d *dimension) ([]*geometry.Linestring, error) {
	if err := p.expect(tokOpen); err != nil {
		return nil, err
	}
	var ls []*geometry.Linestring
	for {
		l, err := p.parseLinestringText(d)
		if err != nil {
			return nil, err
		}
		ls = append(ls, l)
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokClose); err != nil {
		return nil, err
	}
	return ls, nil
}

func (p *parseContext) parseMultiPolygonText(d *dimension) ([]*geometry.Polygon, error) {
	if err := p.expect(tokOpen); err != nil {
		return nil, err
	}
	var polys []*geometry.Polygon
	for {
		poly, err := p.parsePolygonText(d)
		if err != nil {
			return nil, err
		}
		polys = append(polys, poly)
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokClose); err != nil {
		return nil, err
	}
	return polys, nil
}

// parseCollectionText reads the members of a GEOMETRYCOLLECTION. Members are
// points, linestrings and polygons spelled with the same M suffix as the
// collection keyword, all sharing one model.
func (p *parseContext) parseCollectionText(d *dimension) (*geometry.Collection, error) {
	if err := p.expect(tokOpen); err != nil {
		return nil, err
	}
	acc := geometry.NewCollection(geometry.XY)
	for {
		member, err := p.parseCollectionMember(d)
		if err != nil {
			acc.Release()
			return nil, err
		}
		splice(acc, member)
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			acc.Release()
			return nil, err
		}
	}
	if err := p.expect(tokClose); err != nil {
		acc.Release()
		return nil, err
	}
	acc.Model = d.model
	return finishCollection(acc), nil
}

func (p *parseContext) parseCollectionMember(d *dimension) (*geometry.Collection, error) {
	kw := p.tok
	kind, mSuffix := kw.kind.geometryKind()
	switch {
	case kind != geometry.KindPoint && kind != geometry.KindLinestring && kind != geometry.KindPolygon:
		return nil, p.syntaxError(kw, "expected POINT, LINESTRING or POLYGON in collection, got %s", kw.describe())
	case mSuffix != d.mSuffix && d.mSuffix:
		return nil, p.syntaxError(kw, "GEOMETRYCOLLECTIONM members must use the M keyword, got %s", kw.describe())
	case mSuffix != d.mSuffix:
		return nil, p.syntaxError(kw, "M member %s not allowed in GEOMETRYCOLLECTION", kw.describe())
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	switch kind {
	case geometry.KindPoint:
		pt, err := p.parsePointText(d)
		if err != nil {
			return nil, err
		}
		return assemblePoint(pt), nil
	case geometry.KindLinestring:
		l, err := p.parseLinestringText(d)
		if err != nil {
			return nil, err
		}
		return assembleLinestring(l), nil
	default:
		poly, err := p.parsePolygonText(d)
		if err != nil {
			return nil, err
		}
		return assemblePolygon(poly), nil
	}
}
