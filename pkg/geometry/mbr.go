package geometry

import "math"

// BoundingBox represents a minimum bounding rectangle over X/Y.
type BoundingBox struct {
	MinX, MinY, MaxX, MaxY float64
}

func emptyBox() BoundingBox {
	return BoundingBox{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

func (b BoundingBox) include(x, y float64) BoundingBox {
	b.MinX = math.Min(b.MinX, x)
	b.MinY = math.Min(b.MinY, y)
	b.MaxX = math.Max(b.MaxX, x)
	b.MaxY = math.Max(b.MaxY, y)
	return b
}

// IsEmpty reports whether the box was never extended by a coordinate.
func (b BoundingBox) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Intersects returns true if this box overlaps with another box.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return b.MinX <= other.MaxX && b.MaxX >= other.MinX &&
		b.MinY <= other.MaxY && b.MaxY >= other.MinY
}

// Contains returns true if this box fully contains another box.
func (b BoundingBox) Contains(other BoundingBox) bool {
	return b.MinX <= other.MinX && b.MaxX >= other.MaxX &&
		b.MinY <= other.MinY && b.MaxY >= other.MaxY
}

// ContainsPoint returns true if this box contains a point.
func (b BoundingBox) ContainsPoint(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Expand returns a new BoundingBox that contains both this and the other box.
func (b BoundingBox) Expand(other BoundingBox) BoundingBox {
	return BoundingBox{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// Area returns the area of this bounding box.
func (b BoundingBox) Area() float64 {
	if b.IsEmpty() {
		return 0
	}
	return (b.MaxX - b.MinX) * (b.MaxY - b.MinY)
}

// ToPolygon converts the bounding box to a closed XY polygon collection.
func (b BoundingBox) ToPolygon(srid int) *Collection {
	c := NewCollection(XY)
	poly := c.AddPolygon(5, 0)
	poly.Exterior.SetPoint(0, NewPointXY(b.MinX, b.MinY))
	poly.Exterior.SetPoint(1, NewPointXY(b.MaxX, b.MinY))
	poly.Exterior.SetPoint(2, NewPointXY(b.MaxX, b.MaxY))
	poly.Exterior.SetPoint(3, NewPointXY(b.MinX, b.MaxY))
	poly.Exterior.SetPoint(4, NewPointXY(b.MinX, b.MinY))
	c.DeclaredType = TypePolygon
	c.SRID = srid
	c.ComputeMBR()
	return c
}
