package geometry

import "math"

// Point is a single coordinate tuple. Z and M are meaningful only when Model
// carries them; otherwise they are zero.
type Point struct {
	X, Y  float64
	Z, M  float64
	Model Model
}

func NewPointXY(x, y float64) Point { return Point{X: x, Y: y, Model: XY} }

func NewPointXYZ(x, y, z float64) Point { return Point{X: x, Y: y, Z: z, Model: XYZ} }

func NewPointXYM(x, y, m float64) Point { return Point{X: x, Y: y, M: m, Model: XYM} }

func NewPointXYZM(x, y, z, m float64) Point {
	return Point{X: x, Y: y, Z: z, M: m, Model: XYZM}
}

// PointFromTuple builds a point of the given model from a flat tuple whose
// length is model.Stride().
func PointFromTuple(model Model, tuple []float64) Point {
	p := Point{X: tuple[0], Y: tuple[1], Model: model}
	switch model {
	case XYZ:
		p.Z = tuple[2]
	case XYM:
		p.M = tuple[2]
	case XYZM:
		p.Z = tuple[2]
		p.M = tuple[3]
	}
	return p
}

// AppendTuple appends the point's fields, in model order, to dst.
func (p Point) AppendTuple(dst []float64) []float64 {
	dst = append(dst, p.X, p.Y)
	switch p.Model {
	case XYZ:
		dst = append(dst, p.Z)
	case XYM:
		dst = append(dst, p.M)
	case XYZM:
		dst = append(dst, p.Z, p.M)
	}
	return dst
}

// Convert returns the point expressed in another model. Missing Z/M values are
// zero-filled, surplus ones dropped.
func (p Point) Convert(model Model) Point {
	out := Point{X: p.X, Y: p.Y, Model: model}
	if model.HasZ() && p.Model.HasZ() {
		out.Z = p.Z
	}
	if model.HasM() && p.Model.HasM() {
		out.M = p.M
	}
	return out
}

// Equals compares all fields carried by the model.
func (p Point) Equals(o Point) bool {
	if p.Model != o.Model || p.X != o.X || p.Y != o.Y {
		return false
	}
	if p.Model.HasZ() && p.Z != o.Z {
		return false
	}
	if p.Model.HasM() && p.M != o.M {
		return false
	}
	return true
}

// DistanceTo calculates the planar Euclidean distance to another point.
func (p Point) DistanceTo(o Point) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}
