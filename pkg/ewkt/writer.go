package ewkt

import (
	"strconv"
	"strings"

	"github.com/kasuganosora/sqlgeo/pkg/geometry"
)

// Format renders c as EWKT: the SRID prefix when c has one, then the WKT
// body. The output parses back to an equivalent collection.
func Format(c *geometry.Collection) string {
	var b strings.Builder
	if c.SRID != geometry.UnknownSRID {
		b.WriteString("SRID=")
		b.WriteString(strconv.Itoa(c.SRID))
		b.WriteByte(';')
	}
	writeGeometry(&b, c)
	return b.String()
}

// FormatWKT renders c without the SRID prefix.
func FormatWKT(c *geometry.Collection) string {
	var b strings.Builder
	writeGeometry(&b, c)
	return b.String()
}

func keyword(kind geometry.Kind, model geometry.Model) string {
	if model == geometry.XYM {
		return kind.String() + "M"
	}
	return kind.String()
}

func writeGeometry(b *strings.Builder, c *geometry.Collection) {
	kind := c.DeclaredType.Kind()
	if kind == geometry.KindUnknown {
		kind = inferKind(c)
	}
	b.WriteString(keyword(kind, c.Model))

	switch kind {
	case geometry.KindPoint:
		if len(c.Points) > 0 {
			writePoint(b, c.Points[0])
		}
	case geometry.KindLinestring:
		if len(c.Linestrings) > 0 {
			writeSeq(b, &c.Linestrings[0].CoordSeq)
		}
	case geometry.KindPolygon:
		if len(c.Polygons) > 0 {
			writePolygon(b, c.Polygons[0])
		}
	case geometry.KindMultiPoint:
		b.WriteByte('(')
		for i, p := range c.Points {
			if i > 0 {
				b.WriteByte(',')
			}
			writeTuple(b, p)
		}
		b.WriteByte(')')
	case geometry.KindMultiLinestring:
		b.WriteByte('(')
		for i, l := range c.Linestrings {
			if i > 0 {
				b.WriteByte(',')
			}
			writeSeq(b, &l.CoordSeq)
		}
		b.WriteByte(')')
	case geometry.KindMultiPolygon:
		b.WriteByte('(')
		for i, p := range c.Polygons {
			if i > 0 {
				b.WriteByte(',')
			}
			writePolygon(b, p)
		}
		b.WriteByte(')')
	default:
		writeCollection(b, c)
	}
}

// writeCollection emits members grouped by kind: points, then linestrings,
// then polygons.
func writeCollection(b *strings.Builder, c *geometry.Collection) {
	b.WriteByte('(')
	n := 0
	sep := func() {
		if n > 0 {
			b.WriteByte(',')
		}
		n++
	}
	for _, p := range c.Points {
		sep()
		b.WriteString(keyword(geometry.KindPoint, c.Model))
		writePoint(b, p)
	}
	for _, l := range c.Linestrings {
		sep()
		b.WriteString(keyword(geometry.KindLinestring, c.Model))
		writeSeq(b, &l.CoordSeq)
	}
	for _, p := range c.Polygons {
		sep()
		b.WriteString(keyword(geometry.KindPolygon, c.Model))
		writePolygon(b, p)
	}
	b.WriteByte(')')
}

// inferKind picks the narrowest kind that can hold c's parts.
func inferKind(c *geometry.Collection) geometry.Kind {
	np, nl, ny := len(c.Points), len(c.Linestrings), len(c.Polygons)
	switch {
	case np == 1 && nl == 0 && ny == 0:
		return geometry.KindPoint
	case np == 0 && nl == 1 && ny == 0:
		return geometry.KindLinestring
	case np == 0 && nl == 0 && ny == 1:
		return geometry.KindPolygon
	case nl == 0 && ny == 0:
		return geometry.KindMultiPoint
	case np == 0 && ny == 0:
		return geometry.KindMultiLinestring
	case np == 0 && nl == 0:
		return geometry.KindMultiPolygon
	default:
		return geometry.KindGeometryCollection
	}
}

func writePoint(b *strings.Builder, p geometry.Point) {
	b.WriteByte('(')
	writeTuple(b, p)
	b.WriteByte(')')
}

func writeTuple(b *strings.Builder, p geometry.Point) {
	var buf [4]float64
	for i, v := range p.AppendTuple(buf[:0]) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(formatNumber(v))
	}
}

func writeSeq(b *strings.Builder, s *geometry.CoordSeq) {
	b.WriteByte('(')
	for i := 0; i < s.NumPoints(); i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		writeTuple(b, s.Point(i))
	}
	b.WriteByte(')')
}

func writePolygon(b *strings.Builder, p *geometry.Polygon) {
	b.WriteByte('(')
	for i, r := range p.Rings() {
		if i > 0 {
			b.WriteByte(',')
		}
		writeSeq(b, &r.CoordSeq)
	}
	b.WriteByte(')')
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
