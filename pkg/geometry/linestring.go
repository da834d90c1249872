package geometry

// CoordSeq is a flattened sequence of coordinate tuples. Coords holds
// NumPoints()*Model.Stride() values, tuple after tuple.
type CoordSeq struct {
	Model  Model
	Coords []float64
}

// NumPoints returns the number of tuples in the sequence.
func (s *CoordSeq) NumPoints() int {
	return len(s.Coords) / s.Model.Stride()
}

// Point returns the i-th tuple.
func (s *CoordSeq) Point(i int) Point {
	stride := s.Model.Stride()
	return PointFromTuple(s.Model, s.Coords[i*stride:(i+1)*stride])
}

// SetPoint overwrites the i-th tuple. Fields absent from the sequence model
// are ignored; fields absent from p are stored as zero.
func (s *CoordSeq) SetPoint(i int, p Point) {
	p = p.Convert(s.Model)
	off := i * s.Model.Stride()
	s.Coords[off] = p.X
	s.Coords[off+1] = p.Y
	switch s.Model {
	case XYZ:
		s.Coords[off+2] = p.Z
	case XYM:
		s.Coords[off+2] = p.M
	case XYZM:
		s.Coords[off+2] = p.Z
		s.Coords[off+3] = p.M
	}
}

// Points expands the sequence into individual points.
func (s *CoordSeq) Points() []Point {
	n := s.NumPoints()
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		pts[i] = s.Point(i)
	}
	return pts
}

// IsClosed reports whether the first and last tuples are identical.
func (s *CoordSeq) IsClosed() bool {
	n := s.NumPoints()
	if n < 2 {
		return false
	}
	return s.Point(0).Equals(s.Point(n - 1))
}

// MBR returns the X/Y envelope of the sequence.
func (s *CoordSeq) MBR() BoundingBox {
	bb := emptyBox()
	stride := s.Model.Stride()
	for i := 0; i+1 < len(s.Coords); i += stride {
		bb = bb.include(s.Coords[i], s.Coords[i+1])
	}
	return bb
}

// Length returns the planar length of the sequence.
func (s *CoordSeq) Length() float64 {
	length := 0.0
	for i := 1; i < s.NumPoints(); i++ {
		length += s.Point(i - 1).DistanceTo(s.Point(i))
	}
	return length
}

func (s CoordSeq) clone() CoordSeq {
	coords := make([]float64, len(s.Coords))
	copy(coords, s.Coords)
	return CoordSeq{Model: s.Model, Coords: coords}
}

// Linestring is an ordered sequence of at least two tuples.
type Linestring struct {
	CoordSeq
}

// NewLinestring allocates a linestring with room for vertices tuples.
func NewLinestring(model Model, vertices int) *Linestring {
	return &Linestring{CoordSeq{Model: model, Coords: make([]float64, vertices*model.Stride())}}
}

// NewLinestringFlat wraps an already flattened coordinate array.
func NewLinestringFlat(model Model, coords []float64) *Linestring {
	return &Linestring{CoordSeq{Model: model, Coords: coords}}
}

// Clone returns a deep copy.
func (l *Linestring) Clone() *Linestring {
	return &Linestring{l.CoordSeq.clone()}
}

// Ring is a polygon boundary: at least four tuples, the last one expected to
// repeat the first.
type Ring struct {
	CoordSeq
}

// NewRing allocates a ring with room for vertices tuples.
func NewRing(model Model, vertices int) *Ring {
	return &Ring{CoordSeq{Model: model, Coords: make([]float64, vertices*model.Stride())}}
}

// NewRingFlat wraps an already flattened coordinate array.
func NewRingFlat(model Model, coords []float64) *Ring {
	return &Ring{CoordSeq{Model: model, Coords: coords}}
}

// Clone returns a deep copy.
func (r *Ring) Clone() *Ring {
	return &Ring{r.CoordSeq.clone()}
}

// Area computes the unsigned planar area using the Shoelace formula.
func (r *Ring) Area() float64 {
	n := r.NumPoints()
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		a := r.Point(i)
		b := r.Point((i + 1) % n)
		area += a.X*b.Y - b.X*a.Y
	}
	if area < 0 {
		area = -area
	}
	return area / 2.0
}
