package ewkt

import "github.com/kasuganosora/sqlgeo/pkg/geometry"

const (
	minLinestringPoints = 2
	minRingPoints       = 4
)

// coordList accumulates coordinate tuples as the parser reads them. The
// builders take the backing array over, so a list can feed exactly one
// linestring or ring.
type coordList struct {
	model geometry.Model
	flat  []float64
}

func (l *coordList) append(tuple []float64) {
	l.flat = append(l.flat, tuple...)
}

func (l *coordList) len() int {
	if len(l.flat) == 0 {
		return 0
	}
	return len(l.flat) / l.model.Stride()
}

func (l *coordList) take() []float64 {
	flat := l.flat
	l.flat = nil
	return flat
}

func buildPoint(model geometry.Model, tuple []float64) geometry.Point {
	return geometry.PointFromTuple(model, tuple)
}

func buildLinestring(l *coordList) (*geometry.Linestring, error) {
	if n := l.len(); n < minLinestringPoints {
		return nil, validationError("linestring has %d point(s), at least %d required", n, minLinestringPoints)
	}
	model := l.model
	return geometry.NewLinestringFlat(model, l.take()), nil
}

func buildRing(l *coordList) (*geometry.Ring, error) {
	if n := l.len(); n < minRingPoints {
		return nil, validationError("ring has %d point(s), at least %d required", n, minRingPoints)
	}
	model := l.model
	return geometry.NewRingFlat(model, l.take()), nil
}

// buildPolygon takes ownership of rings; rings[0] is the exterior.
func buildPolygon(model geometry.Model, rings []*geometry.Ring) *geometry.Polygon {
	return geometry.NewPolygonFromRings(model, rings)
}
