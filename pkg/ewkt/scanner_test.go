package ewkt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/sqlgeo/pkg/geometry"
)

func scanAll(t *testing.T, src string) []token {
	t.Helper()
	s := newScanner(src, 0)
	var toks []token
	for {
		tok := s.next()
		toks = append(toks, tok)
		if tok.kind == tokEnd || tok.kind == tokError {
			return toks
		}
	}
}

func kinds(toks []token) []tokenKind {
	out := make([]tokenKind, len(toks))
	for i, tok := range toks {
		out[i] = tok.kind
	}
	return out
}

func TestScanner_Tokens(t *testing.T) {
	toks := scanAll(t, "POINTM(1 -2.5e1,.5)")
	assert.Equal(t, []tokenKind{
		tokPointM, tokOpen, tokNumber, tokNumber, tokComma, tokNumber, tokClose, tokEnd,
	}, kinds(toks))
	assert.Equal(t, 1.0, toks[2].num)
	assert.Equal(t, -25.0, toks[3].num)
	assert.Equal(t, 0.5, toks[5].num)
}

func TestScanner_LongestKeyword(t *testing.T) {
	tests := []struct {
		input string
		kind  tokenKind
	}{
		{"POINT", tokPoint},
		{"POINTM", tokPointM},
		{"pointm", tokPointM},
		{"LineString", tokLinestring},
		{"MULTIPOLYGONM", tokMultiPolygonM},
		{"GeometryCollectionM", tokGeometryCollectionM},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := scanAll(t, tt.input)
			require.Len(t, toks, 2)
			assert.Equal(t, tt.kind, toks[0].kind)
		})
	}
}

func TestScanner_KeywordKinds(t *testing.T) {
	kind, m := tokMultiLinestringM.geometryKind()
	assert.Equal(t, geometry.KindMultiLinestring, kind)
	assert.True(t, m)

	kind, m = tokGeometryCollection.geometryKind()
	assert.Equal(t, geometry.KindGeometryCollection, kind)
	assert.False(t, m)

	kind, _ = tokNumber.geometryKind()
	assert.Equal(t, geometry.KindUnknown, kind)

	assert.Equal(t, "POLYGONM", tokPolygonM.String())
}

func TestScanner_Positions(t *testing.T) {
	toks := scanAll(t, "  POINT ( 1\t2 )")
	require.Len(t, toks, 6)
	assert.Equal(t, 3, toks[0].col)
	assert.Equal(t, 9, toks[1].col)
	assert.Equal(t, 11, toks[2].col)
	assert.Equal(t, 13, toks[3].col)
	assert.Equal(t, 15, toks[4].col)
}

func TestScanner_NewlineEndsStatement(t *testing.T) {
	s := newScanner("POINT\n(", 0)
	assert.Equal(t, tokPoint, s.next().kind)
	end := s.next()
	assert.Equal(t, tokEnd, end.kind)
	assert.Equal(t, 1, end.line)
	assert.False(t, s.atEnd())
}

func TestScanner_Exponent(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1e3", 1000},
		{"1E+2", 100},
		{"-2.5e-1", -0.25},
		{"+7", 7},
		{"3.", 3},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := scanAll(t, tt.input)
			require.Equal(t, tokNumber, toks[0].kind)
			assert.Equal(t, tt.want, toks[0].num)
		})
	}
}

func TestScanner_ExponentWithoutDigits(t *testing.T) {
	s := newScanner("2e", 0)
	tok := s.next()
	require.Equal(t, tokNumber, tok.kind)
	assert.Equal(t, 2.0, tok.num)
	// the lone "e" is scanned as a word and rejected
	assert.Equal(t, tokError, s.next().kind)
}

func TestScanner_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		col   int
	}{
		{"bad character", "POINT(1 2 $)", 11},
		{"unknown word", "POINTZ(1 2 3)", 1},
		{"bare sign", "POINT(- 1)", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScanner(tt.input, 0)
			var tok token
			for tok = s.next(); tok.kind != tokError && tok.kind != tokEnd; tok = s.next() {
			}
			require.Equal(t, tokError, tok.kind)
			require.NotNil(t, s.err)
			assert.Equal(t, KindLexical, s.err.Kind)
			assert.Equal(t, 1, s.err.Line)
			assert.Equal(t, tt.col, s.err.Column)
			// the error is sticky
			assert.Equal(t, tokError, s.next().kind)
		})
	}
}

func TestScanner_NumberRange(t *testing.T) {
	toks := scanAll(t, "1e400 -1e400 1e-400")
	require.Equal(t, []tokenKind{tokNumber, tokNumber, tokNumber, tokEnd}, kinds(toks))
	assert.True(t, math.IsInf(toks[0].num, 1))
	assert.True(t, math.IsInf(toks[1].num, -1))
	assert.Equal(t, 0.0, toks[2].num)

	c, err := Parse("POINT(1e400 2)")
	require.NoError(t, err)
	assert.True(t, math.IsInf(c.Points[0].X, 1))
	assert.Equal(t, 2.0, c.Points[0].Y)
}

func TestScanner_StartOffset(t *testing.T) {
	s := newScanner("SRID=1;POINT(0 0)", 7)
	tok := s.next()
	assert.Equal(t, tokPoint, tok.kind)
	assert.Equal(t, 8, tok.col)
	assert.Equal(t, 7, tok.offset)
}
