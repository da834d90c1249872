package ewkt

import (
	"strconv"

	"github.com/kasuganosora/sqlgeo/pkg/geometry"
)

type tokenKind int

const (
	tokError tokenKind = iota
	tokEnd             // newline or end of input
	tokNumber
	tokComma
	tokOpen
	tokClose

	tokPoint
	tokPointM
	tokLinestring
	tokLinestringM
	tokPolygon
	tokPolygonM
	tokMultiPoint
	tokMultiPointM
	tokMultiLinestring
	tokMultiLinestringM
	tokMultiPolygon
	tokMultiPolygonM
	tokGeometryCollection
	tokGeometryCollectionM
)

// keywords maps the upper-cased spelling to its token. Scanning takes the
// longest run of letters, so "POINTM" can only ever be tokPointM.
var keywords = map[string]tokenKind{
	"POINT":               tokPoint,
	"POINTM":              tokPointM,
	"LINESTRING":          tokLinestring,
	"LINESTRINGM":         tokLinestringM,
	"POLYGON":             tokPolygon,
	"POLYGONM":            tokPolygonM,
	"MULTIPOINT":          tokMultiPoint,
	"MULTIPOINTM":         tokMultiPointM,
	"MULTILINESTRING":     tokMultiLinestring,
	"MULTILINESTRINGM":    tokMultiLinestringM,
	"MULTIPOLYGON":        tokMultiPolygon,
	"MULTIPOLYGONM":       tokMultiPolygonM,
	"GEOMETRYCOLLECTION":  tokGeometryCollection,
	"GEOMETRYCOLLECTIONM": tokGeometryCollectionM,
}

func (k tokenKind) isKeyword() bool {
	return k >= tokPoint && k <= tokGeometryCollectionM
}

// geometryKind maps a keyword token to the geometry kind it introduces and
// whether it is the M-suffixed spelling.
func (k tokenKind) geometryKind() (geometry.Kind, bool) {
	if !k.isKeyword() {
		return geometry.KindUnknown, false
	}
	rel := int(k - tokPoint)
	return geometry.Kind(rel/2 + 1), rel%2 == 1
}

func (k tokenKind) String() string {
	switch k {
	case tokError:
		return "invalid input"
	case tokEnd:
		return "end of input"
	case tokNumber:
		return "number"
	case tokComma:
		return "','"
	case tokOpen:
		return "'('"
	case tokClose:
		return "')'"
	}
	if kind, m := k.geometryKind(); kind != geometry.KindUnknown {
		if m {
			return kind.String() + "M"
		}
		return kind.String()
	}
	return "token(" + strconv.Itoa(int(k)) + ")"
}

type token struct {
	kind   tokenKind
	num    float64
	text   string
	line   int
	col    int
	offset int
}

func (t token) describe() string {
	switch t.kind {
	case tokNumber:
		return "number " + t.text
	case tokError:
		return strconv.Quote(t.text)
	}
	return t.kind.String()
}
