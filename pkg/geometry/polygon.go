package geometry

// Polygon is one exterior ring plus zero or more interior rings (holes), all in
// the same model.
type Polygon struct {
	Model     Model
	Exterior  *Ring
	Interiors []*Ring
}

// NewPolygon allocates a polygon whose exterior ring has room for vertices
// tuples and which reserves holes interior ring slots.
func NewPolygon(model Model, vertices, holes int) *Polygon {
	return &Polygon{
		Model:     model,
		Exterior:  NewRing(model, vertices),
		Interiors: make([]*Ring, holes),
	}
}

// NewPolygonFromRings takes ownership of rings: the first becomes the exterior,
// the rest are stored as interior rings at their index.
func NewPolygonFromRings(model Model, rings []*Ring) *Polygon {
	p := &Polygon{Model: model}
	if len(rings) == 0 {
		return p
	}
	p.Exterior = rings[0]
	if len(rings) > 1 {
		p.Interiors = make([]*Ring, len(rings)-1)
		copy(p.Interiors, rings[1:])
	}
	return p
}

// AddInteriorRing allocates the interior ring at pos with room for vertices
// tuples. The slot list grows when pos is past its end.
func (p *Polygon) AddInteriorRing(pos, vertices int) *Ring {
	for len(p.Interiors) <= pos {
		p.Interiors = append(p.Interiors, nil)
	}
	r := NewRing(p.Model, vertices)
	p.Interiors[pos] = r
	return r
}

// NumRings counts the exterior ring and every allocated interior ring.
func (p *Polygon) NumRings() int {
	n := 0
	if p.Exterior != nil {
		n++
	}
	for _, r := range p.Interiors {
		if r != nil {
			n++
		}
	}
	return n
}

// Rings returns exterior followed by interiors, skipping unallocated slots.
func (p *Polygon) Rings() []*Ring {
	rings := make([]*Ring, 0, 1+len(p.Interiors))
	if p.Exterior != nil {
		rings = append(rings, p.Exterior)
	}
	for _, r := range p.Interiors {
		if r != nil {
			rings = append(rings, r)
		}
	}
	return rings
}

// NumPoints counts the tuples of all rings.
func (p *Polygon) NumPoints() int {
	n := 0
	for _, r := range p.Rings() {
		n += r.NumPoints()
	}
	return n
}

// MBR is the envelope of the exterior ring.
func (p *Polygon) MBR() BoundingBox {
	if p.Exterior == nil {
		return emptyBox()
	}
	return p.Exterior.MBR()
}

// Area computes the exterior area minus the holes.
func (p *Polygon) Area() float64 {
	if p.Exterior == nil {
		return 0
	}
	area := p.Exterior.Area()
	for _, hole := range p.Interiors {
		if hole != nil {
			area -= hole.Area()
		}
	}
	if area < 0 {
		return -area
	}
	return area
}

// Perimeter returns the total length of all rings.
func (p *Polygon) Perimeter() float64 {
	total := 0.0
	for _, r := range p.Rings() {
		total += r.Length()
	}
	return total
}

// Clone returns a deep copy.
func (p *Polygon) Clone() *Polygon {
	out := &Polygon{Model: p.Model}
	if p.Exterior != nil {
		out.Exterior = p.Exterior.Clone()
	}
	if p.Interiors != nil {
		out.Interiors = make([]*Ring, len(p.Interiors))
		for i, r := range p.Interiors {
			if r != nil {
				out.Interiors[i] = r.Clone()
			}
		}
	}
	return out
}
