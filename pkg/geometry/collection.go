package geometry

// UnknownSRID is the SRID of a geometry whose text carried no SRID prefix.
const UnknownSRID = -1

// Collection is the unified geometry record. Whatever its DeclaredType, the
// elementary parts live in three ordered lists; DeclaredType only says how
// they are meant to be read.
type Collection struct {
	Points      []Point
	Linestrings []*Linestring
	Polygons    []*Polygon

	DeclaredType DeclaredType
	Model        Model
	MBR          BoundingBox
	SRID         int
}

// NewCollection allocates an empty record of the given model.
func NewCollection(model Model) *Collection {
	return &Collection{Model: model, SRID: UnknownSRID}
}

// AddPoint appends a point, converted to the collection model.
func (c *Collection) AddPoint(p Point) {
	c.Points = append(c.Points, p.Convert(c.Model))
}

// AddLinestring appends a linestring with room for vertices tuples and returns
// it for SetPoint calls.
func (c *Collection) AddLinestring(vertices int) *Linestring {
	l := NewLinestring(c.Model, vertices)
	c.Linestrings = append(c.Linestrings, l)
	return l
}

// AddPolygon appends a polygon whose exterior has room for vertices tuples and
// which reserves holes interior ring slots.
func (c *Collection) AddPolygon(vertices, holes int) *Polygon {
	p := NewPolygon(c.Model, vertices, holes)
	c.Polygons = append(c.Polygons, p)
	return p
}

// IsEmpty reports whether no elementary geometry is present.
func (c *Collection) IsEmpty() bool {
	return len(c.Points) == 0 && len(c.Linestrings) == 0 && len(c.Polygons) == 0
}

// NumGeometries counts the elementary parts.
func (c *Collection) NumGeometries() int {
	return len(c.Points) + len(c.Linestrings) + len(c.Polygons)
}

// NumPoints counts every coordinate tuple.
func (c *Collection) NumPoints() int {
	n := len(c.Points)
	for _, l := range c.Linestrings {
		n += l.NumPoints()
	}
	for _, p := range c.Polygons {
		n += p.NumPoints()
	}
	return n
}

// ComputeMBR walks every part once and stores the resulting box in c.MBR.
// An empty collection gets the zero box.
func (c *Collection) ComputeMBR() BoundingBox {
	bb := emptyBox()
	for _, p := range c.Points {
		bb = bb.include(p.X, p.Y)
	}
	for _, l := range c.Linestrings {
		bb = bb.Expand(l.MBR())
	}
	for _, p := range c.Polygons {
		bb = bb.Expand(p.MBR())
	}
	if bb.IsEmpty() {
		bb = BoundingBox{}
	}
	c.MBR = bb
	return bb
}

// Dimension returns the topological dimension: 0 for points, 1 for lines,
// 2 for polygons, the maximum over all parts for mixed content.
func (c *Collection) Dimension() int {
	switch {
	case len(c.Polygons) > 0:
		return 2
	case len(c.Linestrings) > 0:
		return 1
	default:
		return 0
	}
}

// Clone returns a deep copy that shares no memory with c.
func (c *Collection) Clone() *Collection {
	out := &Collection{
		DeclaredType: c.DeclaredType,
		Model:        c.Model,
		MBR:          c.MBR,
		SRID:         c.SRID,
	}
	if c.Points != nil {
		out.Points = make([]Point, len(c.Points))
		copy(out.Points, c.Points)
	}
	if c.Linestrings != nil {
		out.Linestrings = make([]*Linestring, len(c.Linestrings))
		for i, l := range c.Linestrings {
			out.Linestrings[i] = l.Clone()
		}
	}
	if c.Polygons != nil {
		out.Polygons = make([]*Polygon, len(c.Polygons))
		for i, p := range c.Polygons {
			out.Polygons[i] = p.Clone()
		}
	}
	return out
}

// Release drops every part so the record cannot be read again.
func (c *Collection) Release() {
	c.Points = nil
	c.Linestrings = nil
	c.Polygons = nil
	c.DeclaredType = TypeUnknown
	c.MBR = BoundingBox{}
}
