// Package geomconv converts between geometry collections and go-geom values,
// and through go-geom to GeoJSON.
package geomconv

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/kasuganosora/sqlgeo/pkg/ewkt"
	"github.com/kasuganosora/sqlgeo/pkg/geometry"
)

// ErrUnsupported is returned for go-geom values with no collection equivalent.
var ErrUnsupported = errors.New("geomconv: unsupported geometry")

// Layout maps a coordinate model to the go-geom layout.
func Layout(m geometry.Model) geom.Layout {
	switch m {
	case geometry.XYZ:
		return geom.XYZ
	case geometry.XYM:
		return geom.XYM
	case geometry.XYZM:
		return geom.XYZM
	default:
		return geom.XY
	}
}

// ModelOf maps a go-geom layout back to a coordinate model.
func ModelOf(l geom.Layout) (geometry.Model, error) {
	switch l {
	case geom.XY:
		return geometry.XY, nil
	case geom.XYZ:
		return geometry.XYZ, nil
	case geom.XYM:
		return geometry.XYM, nil
	case geom.XYZM:
		return geometry.XYZM, nil
	}
	return 0, fmt.Errorf("%w: layout %s", ErrUnsupported, l)
}

// srid translation: go-geom uses 0 for "no SRID".
func toGeomSRID(srid int) int {
	if srid == geometry.UnknownSRID {
		return 0
	}
	return srid
}

func fromGeomSRID(srid int) int {
	if srid == 0 {
		return geometry.UnknownSRID
	}
	return srid
}

// ToGeom converts c to the go-geom type matching its declared kind. The
// result does not share coordinate storage with c.
func ToGeom(c *geometry.Collection) (geom.T, error) {
	if c == nil || c.IsEmpty() {
		return nil, fmt.Errorf("%w: empty collection", ErrUnsupported)
	}
	layout := Layout(c.Model)
	srid := toGeomSRID(c.SRID)

	switch c.DeclaredType.Kind() {
	case geometry.KindPoint:
		if len(c.Points) != 1 {
			return nil, fmt.Errorf("geomconv: POINT holds %d points", len(c.Points))
		}
		return geom.NewPointFlat(layout, c.Points[0].AppendTuple(nil)).SetSRID(srid), nil
	case geometry.KindLinestring:
		if len(c.Linestrings) != 1 {
			return nil, fmt.Errorf("geomconv: LINESTRING holds %d linestrings", len(c.Linestrings))
		}
		return lineString(layout, c.Linestrings[0]).SetSRID(srid), nil
	case geometry.KindPolygon:
		if len(c.Polygons) != 1 {
			return nil, fmt.Errorf("geomconv: POLYGON holds %d polygons", len(c.Polygons))
		}
		return polygon(layout, c.Polygons[0]).SetSRID(srid), nil
	case geometry.KindMultiPoint:
		var flat []float64
		for _, p := range c.Points {
			flat = p.AppendTuple(flat)
		}
		return geom.NewMultiPointFlat(layout, flat).SetSRID(srid), nil
	case geometry.KindMultiLinestring:
		var flat []float64
		ends := make([]int, 0, len(c.Linestrings))
		for _, l := range c.Linestrings {
			flat = append(flat, l.Coords...)
			ends = append(ends, len(flat))
		}
		return geom.NewMultiLineStringFlat(layout, flat, ends).SetSRID(srid), nil
	case geometry.KindMultiPolygon:
		var flat []float64
		endss := make([][]int, 0, len(c.Polygons))
		for _, p := range c.Polygons {
			var ends []int
			for _, r := range p.Rings() {
				flat = append(flat, r.Coords...)
				ends = append(ends, len(flat))
			}
			endss = append(endss, ends)
		}
		return geom.NewMultiPolygonFlat(layout, flat, endss).SetSRID(srid), nil
	default:
		gc := geom.NewGeometryCollection()
		members := make([]geom.T, 0, c.NumGeometries())
		for _, p := range c.Points {
			members = append(members, geom.NewPointFlat(layout, p.AppendTuple(nil)))
		}
		for _, l := range c.Linestrings {
			members = append(members, lineString(layout, l))
		}
		for _, p := range c.Polygons {
			members = append(members, polygon(layout, p))
		}
		if err := gc.Push(members...); err != nil {
			return nil, fmt.Errorf("geomconv: build collection: %w", err)
		}
		return gc.SetSRID(srid), nil
	}
}

func lineString(layout geom.Layout, l *geometry.Linestring) *geom.LineString {
	flat := make([]float64, len(l.Coords))
	copy(flat, l.Coords)
	return geom.NewLineStringFlat(layout, flat)
}

func polygon(layout geom.Layout, p *geometry.Polygon) *geom.Polygon {
	var flat []float64
	var ends []int
	for _, r := range p.Rings() {
		flat = append(flat, r.Coords...)
		ends = append(ends, len(flat))
	}
	return geom.NewPolygonFlat(layout, flat, ends)
}

// FromGeom converts a go-geom value into a new, validated collection.
// Members of a go-geom GeometryCollection may themselves be MULTI* values;
// their parts are flattened into the collection lists. Nested collections
// are rejected.
func FromGeom(g geom.T) (*geometry.Collection, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil geometry", ErrUnsupported)
	}
	model, err := ModelOf(g.Layout())
	if err != nil {
		return nil, err
	}
	c := geometry.NewCollection(model)

	var kind geometry.Kind
	switch t := g.(type) {
	case *geom.GeometryCollection:
		kind = geometry.KindGeometryCollection
		for i, member := range t.Geoms() {
			if _, nested := member.(*geom.GeometryCollection); nested {
				return nil, fmt.Errorf("%w: nested collection at member %d", ErrUnsupported, i+1)
			}
			if member.Layout() != g.Layout() {
				return nil, fmt.Errorf("geomconv: member %d has layout %s, collection is %s", i+1, member.Layout(), g.Layout())
			}
			if _, err := appendParts(c, member); err != nil {
				return nil, err
			}
		}
	default:
		if kind, err = appendParts(c, g); err != nil {
			return nil, err
		}
	}

	c.DeclaredType = geometry.DeclaredTypeOf(kind, model)
	if err := ewkt.Validate(c, ewkt.Options{}); err != nil {
		return nil, err
	}
	c.ComputeMBR()
	c.SRID = fromGeomSRID(g.SRID())
	return c, nil
}

// appendParts copies the elementary parts of g into c and reports g's kind.
func appendParts(c *geometry.Collection, g geom.T) (geometry.Kind, error) {
	switch t := g.(type) {
	case *geom.Point:
		if t.Empty() {
			return 0, fmt.Errorf("%w: empty point", ErrUnsupported)
		}
		c.Points = append(c.Points, geometry.PointFromTuple(c.Model, t.FlatCoords()))
		return geometry.KindPoint, nil
	case *geom.LineString:
		c.Linestrings = append(c.Linestrings, geometry.NewLinestringFlat(c.Model, cloneFlat(t.FlatCoords())))
		return geometry.KindLinestring, nil
	case *geom.Polygon:
		c.Polygons = append(c.Polygons, fromPolygon(c.Model, t))
		return geometry.KindPolygon, nil
	case *geom.MultiPoint:
		for i := 0; i < t.NumPoints(); i++ {
			p := t.Point(i)
			if p.Empty() {
				return 0, fmt.Errorf("%w: empty point in multipoint", ErrUnsupported)
			}
			c.Points = append(c.Points, geometry.PointFromTuple(c.Model, p.FlatCoords()))
		}
		return geometry.KindMultiPoint, nil
	case *geom.MultiLineString:
		for i := 0; i < t.NumLineStrings(); i++ {
			l := t.LineString(i)
			c.Linestrings = append(c.Linestrings, geometry.NewLinestringFlat(c.Model, cloneFlat(l.FlatCoords())))
		}
		return geometry.KindMultiLinestring, nil
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			c.Polygons = append(c.Polygons, fromPolygon(c.Model, t.Polygon(i)))
		}
		return geometry.KindMultiPolygon, nil
	}
	return 0, fmt.Errorf("%w: %T", ErrUnsupported, g)
}

func fromPolygon(model geometry.Model, p *geom.Polygon) *geometry.Polygon {
	rings := make([]*geometry.Ring, p.NumLinearRings())
	for i := range rings {
		rings[i] = geometry.NewRingFlat(model, cloneFlat(p.LinearRing(i).FlatCoords()))
	}
	return geometry.NewPolygonFromRings(model, rings)
}

func cloneFlat(src []float64) []float64 {
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

// withoutM projects XYM onto XY and XYZM onto XYZ. GeoJSON positions have no
// measure slot; a third element is always elevation.
func withoutM(c *geometry.Collection) *geometry.Collection {
	if c == nil || !c.Model.HasM() {
		return c
	}
	model := geometry.XY
	if c.Model.HasZ() {
		model = geometry.XYZ
	}

	out := geometry.NewCollection(model)
	out.DeclaredType = geometry.DeclaredTypeOf(c.DeclaredType.Kind(), model)
	out.SRID = c.SRID
	out.MBR = c.MBR
	for _, p := range c.Points {
		out.Points = append(out.Points, p.Convert(model))
	}
	for _, l := range c.Linestrings {
		out.Linestrings = append(out.Linestrings, geometry.NewLinestringFlat(model, project(&l.CoordSeq, model)))
	}
	for _, p := range c.Polygons {
		var rings []*geometry.Ring
		for _, r := range p.Rings() {
			rings = append(rings, geometry.NewRingFlat(model, project(&r.CoordSeq, model)))
		}
		out.Polygons = append(out.Polygons, geometry.NewPolygonFromRings(model, rings))
	}
	return out
}

func project(s *geometry.CoordSeq, model geometry.Model) []float64 {
	n := s.NumPoints()
	flat := make([]float64, 0, n*model.Stride())
	for i := 0; i < n; i++ {
		flat = s.Point(i).Convert(model).AppendTuple(flat)
	}
	return flat
}

// MarshalGeoJSON encodes c as a GeoJSON geometry object. M values are
// dropped.
func MarshalGeoJSON(c *geometry.Collection) ([]byte, error) {
	g, err := ToGeom(withoutM(c))
	if err != nil {
		return nil, err
	}
	return geojson.Marshal(g)
}

// UnmarshalGeoJSON decodes a GeoJSON geometry object.
func UnmarshalGeoJSON(data []byte) (*geometry.Collection, error) {
	var g geom.T
	if err := geojson.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("geomconv: decode geojson: %w", err)
	}
	return FromGeom(g)
}

// MarshalFeature wraps c in a GeoJSON Feature with a bounding box and the
// given properties. M values are dropped as in MarshalGeoJSON.
func MarshalFeature(c *geometry.Collection, id string, properties map[string]interface{}) ([]byte, error) {
	g, err := ToGeom(withoutM(c))
	if err != nil {
		return nil, err
	}
	f := &geojson.Feature{
		ID:         id,
		Geometry:   g,
		Properties: properties,
	}
	if !c.IsEmpty() {
		f.BBox = geom.NewBounds(geom.XY).Set(c.MBR.MinX, c.MBR.MinY, c.MBR.MaxX, c.MBR.MaxY)
	}
	return json.Marshal(f)
}
