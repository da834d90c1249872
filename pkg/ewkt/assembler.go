package ewkt

import "github.com/kasuganosora/sqlgeo/pkg/geometry"

func newRecord(kind geometry.Kind, model geometry.Model) *geometry.Collection {
	c := geometry.NewCollection(model)
	c.DeclaredType = geometry.DeclaredTypeOf(kind, model)
	return c
}

func assemblePoint(p geometry.Point) *geometry.Collection {
	c := newRecord(geometry.KindPoint, p.Model)
	c.Points = []geometry.Point{p}
	return c
}

func assembleLinestring(l *geometry.Linestring) *geometry.Collection {
	c := newRecord(geometry.KindLinestring, l.Model)
	c.Linestrings = []*geometry.Linestring{l}
	return c
}

func assemblePolygon(p *geometry.Polygon) *geometry.Collection {
	c := newRecord(geometry.KindPolygon, p.Model)
	c.Polygons = []*geometry.Polygon{p}
	return c
}

func assembleMultiPoint(model geometry.Model, pts []geometry.Point) *geometry.Collection {
	c := newRecord(geometry.KindMultiPoint, model)
	c.Points = pts
	return c
}

func assembleMultiLinestring(model geometry.Model, ls []*geometry.Linestring) *geometry.Collection {
	c := newRecord(geometry.KindMultiLinestring, model)
	c.Linestrings = ls
	return c
}

func assembleMultiPolygon(model geometry.Model, polys []*geometry.Polygon) *geometry.Collection {
	c := newRecord(geometry.KindMultiPolygon, model)
	c.Polygons = polys
	return c
}

// splice moves every part of src to the end of dst's lists and leaves src an
// empty shell. Nothing is copied.
func splice(dst, src *geometry.Collection) {
	if dst.IsEmpty() {
		dst.Model = src.Model
	}
	dst.Points = append(dst.Points, src.Points...)
	dst.Linestrings = append(dst.Linestrings, src.Linestrings...)
	dst.Polygons = append(dst.Polygons, src.Polygons...)
	src.Release()
}

// finishCollection stamps the collection type once the member model is known.
func finishCollection(c *geometry.Collection) *geometry.Collection {
	c.DeclaredType = geometry.DeclaredTypeOf(geometry.KindGeometryCollection, c.Model)
	return c
}
