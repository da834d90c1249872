package ewkt

import (
	"strconv"

	"github.com/kasuganosora/sqlgeo/pkg/geometry"
)

// Validate checks the structural invariants of a parsed geometry: at least
// one part, linestrings of two or more points, rings of four or more points
// and one coordinate model throughout. With RequireClosedRings every ring
// must also end where it starts.
func Validate(c *geometry.Collection, opts Options) error {
	if c == nil || c.IsEmpty() {
		return validationError("geometry has no points, linestrings or polygons")
	}

	for i, p := range c.Points {
		if p.Model != c.Model {
			return validationError("point %d is %s, geometry is %s", i+1, p.Model, c.Model)
		}
	}

	for i, l := range c.Linestrings {
		if l == nil {
			return validationError("linestring %d is missing", i+1)
		}
		if l.Model != c.Model {
			return validationError("linestring %d is %s, geometry is %s", i+1, l.Model, c.Model)
		}
		if n := l.NumPoints(); n < minLinestringPoints {
			return validationError("linestring %d has %d point(s), at least %d required", i+1, n, minLinestringPoints)
		}
	}

	for i, poly := range c.Polygons {
		if poly == nil || poly.Exterior == nil {
			return validationError("polygon %d has no exterior ring", i+1)
		}
		if poly.Model != c.Model {
			return validationError("polygon %d is %s, geometry is %s", i+1, poly.Model, c.Model)
		}
		for j, r := range poly.Rings() {
			if err := validateRing(r, c.Model, opts); err != nil {
				err.Msg = "polygon " + strconv.Itoa(i+1) + " ring " + strconv.Itoa(j+1) + ": " + err.Msg
				return err
			}
		}
	}
	return nil
}

func validateRing(r *geometry.Ring, model geometry.Model, opts Options) *Error {
	if r.Model != model {
		return validationError("ring is %s, geometry is %s", r.Model, model)
	}
	if n := r.NumPoints(); n < minRingPoints {
		return validationError("%d point(s), at least %d required", n, minRingPoints)
	}
	if opts.RequireClosedRings && !r.IsClosed() {
		return validationError("ring is not closed")
	}
	return nil
}
