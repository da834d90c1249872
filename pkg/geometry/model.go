package geometry

import "fmt"

// Model is the coordinate model of a geometry: which of Z and M every
// coordinate tuple carries in addition to X and Y.
type Model int

const (
	XY Model = iota
	XYZ
	XYM
	XYZM
)

// Stride returns the number of float64 values per coordinate tuple.
func (m Model) Stride() int {
	switch m {
	case XYZ, XYM:
		return 3
	case XYZM:
		return 4
	default:
		return 2
	}
}

// HasZ reports whether tuples carry a Z value.
func (m Model) HasZ() bool { return m == XYZ || m == XYZM }

// HasM reports whether tuples carry an M value.
func (m Model) HasM() bool { return m == XYM || m == XYZM }

func (m Model) String() string {
	switch m {
	case XY:
		return "XY"
	case XYZ:
		return "XYZ"
	case XYM:
		return "XYM"
	case XYZM:
		return "XYZM"
	default:
		return fmt.Sprintf("Model(%d)", int(m))
	}
}

// Kind is the geometry kind without dimension qualifier.
type Kind int

const (
	KindUnknown Kind = iota
	KindPoint
	KindLinestring
	KindPolygon
	KindMultiPoint
	KindMultiLinestring
	KindMultiPolygon
	KindGeometryCollection
)

var kindNames = [...]string{
	KindUnknown:            "GEOMETRY",
	KindPoint:              "POINT",
	KindLinestring:         "LINESTRING",
	KindPolygon:            "POLYGON",
	KindMultiPoint:         "MULTIPOINT",
	KindMultiLinestring:    "MULTILINESTRING",
	KindMultiPolygon:       "MULTIPOLYGON",
	KindGeometryCollection: "GEOMETRYCOLLECTION",
}

// String returns the WKT keyword of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

// DeclaredType is the class code attached to a geometry record. Codes follow the
// ISO numbering: the kind, plus 1000 for Z, 2000 for M and 3000 for ZM.
type DeclaredType int

const (
	TypeUnknown DeclaredType = 0

	TypePoint              DeclaredType = 1
	TypeLinestring         DeclaredType = 2
	TypePolygon            DeclaredType = 3
	TypeMultiPoint         DeclaredType = 4
	TypeMultiLinestring    DeclaredType = 5
	TypeMultiPolygon       DeclaredType = 6
	TypeGeometryCollection DeclaredType = 7

	TypePointZ              DeclaredType = 1001
	TypeLinestringZ         DeclaredType = 1002
	TypePolygonZ            DeclaredType = 1003
	TypeMultiPointZ         DeclaredType = 1004
	TypeMultiLinestringZ    DeclaredType = 1005
	TypeMultiPolygonZ       DeclaredType = 1006
	TypeGeometryCollectionZ DeclaredType = 1007

	TypePointM              DeclaredType = 2001
	TypeLinestringM         DeclaredType = 2002
	TypePolygonM            DeclaredType = 2003
	TypeMultiPointM         DeclaredType = 2004
	TypeMultiLinestringM    DeclaredType = 2005
	TypeMultiPolygonM       DeclaredType = 2006
	TypeGeometryCollectionM DeclaredType = 2007

	TypePointZM              DeclaredType = 3001
	TypeLinestringZM         DeclaredType = 3002
	TypePolygonZM            DeclaredType = 3003
	TypeMultiPointZM         DeclaredType = 3004
	TypeMultiLinestringZM    DeclaredType = 3005
	TypeMultiPolygonZM       DeclaredType = 3006
	TypeGeometryCollectionZM DeclaredType = 3007
)

// DeclaredTypeOf combines a kind and a model into a class code.
func DeclaredTypeOf(kind Kind, model Model) DeclaredType {
	if kind == KindUnknown {
		return TypeUnknown
	}
	offset := 0
	switch model {
	case XYZ:
		offset = 1000
	case XYM:
		offset = 2000
	case XYZM:
		offset = 3000
	}
	return DeclaredType(int(kind) + offset)
}

// Kind strips the dimension qualifier.
func (t DeclaredType) Kind() Kind {
	k := Kind(int(t) % 1000)
	if k < KindPoint || k > KindGeometryCollection {
		return KindUnknown
	}
	return k
}

// Model returns the coordinate model encoded in the class code.
func (t DeclaredType) Model() Model {
	switch int(t) / 1000 {
	case 1:
		return XYZ
	case 2:
		return XYM
	case 3:
		return XYZM
	default:
		return XY
	}
}

// IsMulti reports whether the type is one of the MULTI* or collection kinds.
func (t DeclaredType) IsMulti() bool {
	return t.Kind() >= KindMultiPoint
}

// String returns the name reported by GeometryType(), e.g. "POLYGON Z".
func (t DeclaredType) String() string {
	k := t.Kind()
	if k == KindUnknown {
		return "GEOMETRY"
	}
	switch t.Model() {
	case XYZ:
		return k.String() + " Z"
	case XYM:
		return k.String() + " M"
	case XYZM:
		return k.String() + " ZM"
	}
	return k.String()
}
