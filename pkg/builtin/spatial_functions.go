package builtin

import (
	"fmt"

	"github.com/kasuganosora/sqlgeo/pkg/ewkt"
	"github.com/kasuganosora/sqlgeo/pkg/geomconv"
	"github.com/kasuganosora/sqlgeo/pkg/geometry"
)

// Geometry values cross the SQL boundary as EWKT text: constructors return
// it and every geometry parameter accepts it.

func init() {
	registerSpatialFunctions()
}

func sig(name, ret string, params ...string) FunctionSignature {
	return FunctionSignature{Name: name, ReturnType: ret, ParamTypes: params}
}

func register(info *FunctionInfo) {
	info.Type = FunctionTypeScalar
	info.Deterministic = true
	info.Handler = nullSafe(info.Handler)
	if err := RegisterGlobal(info); err != nil {
		panic(fmt.Sprintf("register %s: %v", info.Name, err))
	}
}

func registerSpatialFunctions() {
	// ==================== Constructors ====================

	register(&FunctionInfo{
		Name:        "GeomFromEWKT",
		Aliases:     []string{"ST_GeomFromEWKT"},
		Category:    CategorySpatial,
		Description: "Parse an EWKT literal and return it in canonical EWKT form",
		Signatures:  []FunctionSignature{sig("GeomFromEWKT", "geometry", "string")},
		Handler:     geomFromEWKTHandler,
		Example:     "SELECT GeomFromEWKT('SRID=4326;POINT(1 2)')",
	})

	register(&FunctionInfo{
		Name:        "GeomFromText",
		Aliases:     []string{"ST_GeomFromText"},
		Category:    CategorySpatial,
		Description: "Parse a WKT literal, optionally assigning an SRID",
		Signatures: []FunctionSignature{
			sig("GeomFromText", "geometry", "string"),
			sig("GeomFromText", "geometry", "string", "int"),
		},
		Handler: geomFromTextHandler,
		Example: "SELECT GeomFromText('POINT(1 2)', 4326)",
	})

	register(&FunctionInfo{
		Name:        "BuildMbr",
		Category:    CategoryMBR,
		Description: "Build a rectangular POLYGON from two corner points",
		Signatures: []FunctionSignature{
			sig("BuildMbr", "geometry", "float", "float", "float", "float"),
			sig("BuildMbr", "geometry", "float", "float", "float", "float", "int"),
		},
		Handler: buildMbrHandler,
		Example: "SELECT BuildMbr(0, 0, 10, 10, 4326)",
	})

	register(&FunctionInfo{
		Name:        "SetSRID",
		Aliases:     []string{"ST_SetSRID"},
		Category:    CategorySpatial,
		Description: "Return the geometry with a different SRID",
		Signatures:  []FunctionSignature{sig("SetSRID", "geometry", "geometry", "int")},
		Handler:     setSRIDHandler,
		Example:     "SELECT SetSRID('POINT(1 2)', 3857)",
	})

	register(&FunctionInfo{
		Name:        "ST_Envelope",
		Aliases:     []string{"Envelope"},
		Category:    CategoryMBR,
		Description: "Return the minimum bounding rectangle as a POLYGON",
		Signatures:  []FunctionSignature{sig("ST_Envelope", "geometry", "geometry")},
		Handler:     unary("ST_Envelope", envelope),
		Example:     "SELECT ST_Envelope('LINESTRING(0 0,4 3)')",
	})

	// ==================== Output ====================

	register(&FunctionInfo{
		Name:        "AsEWKT",
		Aliases:     []string{"ST_AsEWKT"},
		Category:    CategorySpatial,
		Description: "Render a geometry as EWKT",
		Signatures:  []FunctionSignature{sig("AsEWKT", "string", "geometry")},
		Handler: unary("AsEWKT", func(c *geometry.Collection) (interface{}, error) {
			return ewkt.Format(c), nil
		}),
		Example: "SELECT AsEWKT(geom) FROM places",
	})

	register(&FunctionInfo{
		Name:        "AsText",
		Aliases:     []string{"ST_AsText", "ST_AsWKT"},
		Category:    CategorySpatial,
		Description: "Render a geometry as WKT without SRID",
		Signatures:  []FunctionSignature{sig("AsText", "string", "geometry")},
		Handler: unary("AsText", func(c *geometry.Collection) (interface{}, error) {
			return ewkt.FormatWKT(c), nil
		}),
		Example: "SELECT AsText(geom) FROM places",
	})

	register(&FunctionInfo{
		Name:        "AsGeoJSON",
		Aliases:     []string{"ST_AsGeoJSON"},
		Category:    CategorySpatial,
		Description: "Render a geometry as a GeoJSON geometry object",
		Signatures:  []FunctionSignature{sig("AsGeoJSON", "string", "geometry")},
		Handler: unary("AsGeoJSON", func(c *geometry.Collection) (interface{}, error) {
			data, err := geomconv.MarshalGeoJSON(c)
			if err != nil {
				return nil, err
			}
			return string(data), nil
		}),
		Example: "SELECT AsGeoJSON(geom) FROM places",
	})

	// ==================== Properties ====================

	register(&FunctionInfo{
		Name:        "ST_SRID",
		Aliases:     []string{"SRID"},
		Category:    CategorySpatial,
		Description: "Return the SRID of a geometry, -1 when unknown",
		Signatures:  []FunctionSignature{sig("ST_SRID", "int", "geometry")},
		Handler: unary("ST_SRID", func(c *geometry.Collection) (interface{}, error) {
			return int64(c.SRID), nil
		}),
		Example: "SELECT ST_SRID('SRID=4326;POINT(1 2)')",
	})

	register(&FunctionInfo{
		Name:        "GeometryType",
		Aliases:     []string{"ST_GeometryType"},
		Category:    CategorySpatial,
		Description: "Return the declared type name, e.g. 'POLYGON Z'",
		Signatures:  []FunctionSignature{sig("GeometryType", "string", "geometry")},
		Handler: unary("GeometryType", func(c *geometry.Collection) (interface{}, error) {
			return c.DeclaredType.String(), nil
		}),
		Example: "SELECT GeometryType('POINTM(1 2 3)')",
	})

	register(&FunctionInfo{
		Name:        "CoordDimension",
		Aliases:     []string{"ST_CoordDim"},
		Category:    CategorySpatial,
		Description: "Return the coordinate model: XY, XYZ, XYM or XYZM",
		Signatures:  []FunctionSignature{sig("CoordDimension", "string", "geometry")},
		Handler: unary("CoordDimension", func(c *geometry.Collection) (interface{}, error) {
			return c.Model.String(), nil
		}),
		Example: "SELECT CoordDimension('POINT(1 2 3)')",
	})

	register(&FunctionInfo{
		Name:        "ST_Dimension",
		Aliases:     []string{"Dimension"},
		Category:    CategorySpatial,
		Description: "Return the topological dimension: 0 points, 1 lines, 2 polygons",
		Signatures:  []FunctionSignature{sig("ST_Dimension", "int", "geometry")},
		Handler: unary("ST_Dimension", func(c *geometry.Collection) (interface{}, error) {
			return int64(c.Dimension()), nil
		}),
		Example: "SELECT ST_Dimension('LINESTRING(0 0,1 1)')",
	})

	register(&FunctionInfo{
		Name:        "NumPoints",
		Aliases:     []string{"ST_NumPoints", "ST_NPoints"},
		Category:    CategorySpatial,
		Description: "Return the number of coordinate tuples",
		Signatures:  []FunctionSignature{sig("NumPoints", "int", "geometry")},
		Handler: unary("NumPoints", func(c *geometry.Collection) (interface{}, error) {
			return int64(c.NumPoints()), nil
		}),
		Example: "SELECT NumPoints('LINESTRING(0 0,1 1,2 2)')",
	})

	register(&FunctionInfo{
		Name:        "NumGeometries",
		Aliases:     []string{"ST_NumGeometries"},
		Category:    CategorySpatial,
		Description: "Return the number of elementary geometries",
		Signatures:  []FunctionSignature{sig("NumGeometries", "int", "geometry")},
		Handler: unary("NumGeometries", func(c *geometry.Collection) (interface{}, error) {
			return int64(c.NumGeometries()), nil
		}),
		Example: "SELECT NumGeometries('MULTIPOINT(1 1,2 2)')",
	})

	register(&FunctionInfo{
		Name:        "ST_X",
		Aliases:     []string{"X"},
		Category:    CategorySpatial,
		Description: "Return the X coordinate of a POINT, NULL otherwise",
		Signatures:  []FunctionSignature{sig("ST_X", "float", "geometry")},
		Handler:     pointOrdinate("ST_X", func(p geometry.Point) (float64, bool) { return p.X, true }),
		Example:     "SELECT ST_X('POINT(1 2)')",
	})

	register(&FunctionInfo{
		Name:        "ST_Y",
		Aliases:     []string{"Y"},
		Category:    CategorySpatial,
		Description: "Return the Y coordinate of a POINT, NULL otherwise",
		Signatures:  []FunctionSignature{sig("ST_Y", "float", "geometry")},
		Handler:     pointOrdinate("ST_Y", func(p geometry.Point) (float64, bool) { return p.Y, true }),
		Example:     "SELECT ST_Y('POINT(1 2)')",
	})

	register(&FunctionInfo{
		Name:        "ST_Z",
		Aliases:     []string{"Z"},
		Category:    CategorySpatial,
		Description: "Return the Z coordinate of a POINT with Z, NULL otherwise",
		Signatures:  []FunctionSignature{sig("ST_Z", "float", "geometry")},
		Handler:     pointOrdinate("ST_Z", func(p geometry.Point) (float64, bool) { return p.Z, p.Model.HasZ() }),
		Example:     "SELECT ST_Z('POINT(1 2 3)')",
	})

	register(&FunctionInfo{
		Name:        "ST_M",
		Aliases:     []string{"M"},
		Category:    CategorySpatial,
		Description: "Return the M value of a POINT with M, NULL otherwise",
		Signatures:  []FunctionSignature{sig("ST_M", "float", "geometry")},
		Handler:     pointOrdinate("ST_M", func(p geometry.Point) (float64, bool) { return p.M, p.Model.HasM() }),
		Example:     "SELECT ST_M('POINTM(1 2 3)')",
	})

	register(&FunctionInfo{
		Name:        "ST_IsValid",
		Aliases:     []string{"IsValid"},
		Category:    CategorySpatial,
		Description: "Return 1 if the text is a well-formed geometry with closed rings, else 0",
		Signatures:  []FunctionSignature{sig("ST_IsValid", "int", "geometry")},
		Handler:     isValidHandler,
		Example:     "SELECT ST_IsValid('POLYGON((0 0,1 0,1 1,0 0))')",
	})

	register(&FunctionInfo{
		Name:        "IsClosed",
		Aliases:     []string{"ST_IsClosed"},
		Category:    CategorySpatial,
		Description: "Return 1 if every linestring ends where it starts; NULL without linestrings",
		Signatures:  []FunctionSignature{sig("IsClosed", "int", "geometry")},
		Handler: unary("IsClosed", func(c *geometry.Collection) (interface{}, error) {
			if len(c.Linestrings) == 0 {
				return nil, nil
			}
			for _, l := range c.Linestrings {
				if !l.IsClosed() {
					return int64(0), nil
				}
			}
			return int64(1), nil
		}),
		Example: "SELECT IsClosed('LINESTRING(0 0,1 1,0 0)')",
	})

	// ==================== Measures ====================

	register(&FunctionInfo{
		Name:        "ST_Area",
		Aliases:     []string{"Area"},
		Category:    CategorySpatial,
		Description: "Return the planar area of all polygons",
		Signatures:  []FunctionSignature{sig("ST_Area", "float", "geometry")},
		Handler: unary("ST_Area", func(c *geometry.Collection) (interface{}, error) {
			area := 0.0
			for _, p := range c.Polygons {
				area += p.Area()
			}
			return area, nil
		}),
		Example: "SELECT ST_Area('POLYGON((0 0,4 0,4 4,0 4,0 0))')",
	})

	register(&FunctionInfo{
		Name:        "ST_Length",
		Aliases:     []string{"GLength"},
		Category:    CategorySpatial,
		Description: "Return the planar length of all linestrings",
		Signatures:  []FunctionSignature{sig("ST_Length", "float", "geometry")},
		Handler: unary("ST_Length", func(c *geometry.Collection) (interface{}, error) {
			length := 0.0
			for _, l := range c.Linestrings {
				length += l.Length()
			}
			return length, nil
		}),
		Example: "SELECT ST_Length('LINESTRING(0 0,3 4)')",
	})

	register(&FunctionInfo{
		Name:        "ST_Perimeter",
		Aliases:     []string{"Perimeter"},
		Category:    CategorySpatial,
		Description: "Return the total ring length of all polygons",
		Signatures:  []FunctionSignature{sig("ST_Perimeter", "float", "geometry")},
		Handler: unary("ST_Perimeter", func(c *geometry.Collection) (interface{}, error) {
			total := 0.0
			for _, p := range c.Polygons {
				total += p.Perimeter()
			}
			return total, nil
		}),
		Example: "SELECT ST_Perimeter('POLYGON((0 0,4 0,4 4,0 4,0 0))')",
	})

	// ==================== MBR ====================

	registerMbrOrdinate("MbrMinX", func(b geometry.BoundingBox) float64 { return b.MinX })
	registerMbrOrdinate("MbrMinY", func(b geometry.BoundingBox) float64 { return b.MinY })
	registerMbrOrdinate("MbrMaxX", func(b geometry.BoundingBox) float64 { return b.MaxX })
	registerMbrOrdinate("MbrMaxY", func(b geometry.BoundingBox) float64 { return b.MaxY })

	register(&FunctionInfo{
		Name:        "MbrIntersects",
		Category:    CategoryMBR,
		Description: "Return 1 if the bounding rectangles of two geometries overlap",
		Signatures:  []FunctionSignature{sig("MbrIntersects", "int", "geometry", "geometry")},
		Handler: binary("MbrIntersects", func(a, b *geometry.Collection) bool {
			return a.MBR.Intersects(b.MBR)
		}),
		Example: "SELECT MbrIntersects(a.geom, b.geom) FROM a, b",
	})

	register(&FunctionInfo{
		Name:        "MbrContains",
		Category:    CategoryMBR,
		Description: "Return 1 if the first bounding rectangle contains the second",
		Signatures:  []FunctionSignature{sig("MbrContains", "int", "geometry", "geometry")},
		Handler: binary("MbrContains", func(a, b *geometry.Collection) bool {
			return a.MBR.Contains(b.MBR)
		}),
		Example: "SELECT MbrContains(zone, 'POINT(1 1)') FROM zones",
	})

	register(&FunctionInfo{
		Name:        "MbrWithin",
		Category:    CategoryMBR,
		Description: "Return 1 if the first bounding rectangle lies inside the second",
		Signatures:  []FunctionSignature{sig("MbrWithin", "int", "geometry", "geometry")},
		Handler: binary("MbrWithin", func(a, b *geometry.Collection) bool {
			return b.MBR.Contains(a.MBR)
		}),
		Example: "SELECT MbrWithin('POINT(1 1)', zone) FROM zones",
	})
}

func registerMbrOrdinate(name string, pick func(geometry.BoundingBox) float64) {
	register(&FunctionInfo{
		Name:        name,
		Aliases:     []string{"ST_" + name[3:]},
		Category:    CategoryMBR,
		Description: "Return " + name[3:] + " of the minimum bounding rectangle",
		Signatures:  []FunctionSignature{sig(name, "float", "geometry")},
		Handler: unary(name, func(c *geometry.Collection) (interface{}, error) {
			return pick(c.MBR), nil
		}),
		Example: "SELECT " + name + "('LINESTRING(0 0,4 3)')",
	})
}

// readGeometry parses a geometry argument.
func readGeometry(name string, arg interface{}) (*geometry.Collection, error) {
	text, err := toStringArg(arg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	c, err := CurrentGeometryReader().ReadEWKT(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

func unary(name string, fn func(*geometry.Collection) (interface{}, error)) FunctionHandle {
	return func(args []interface{}) (interface{}, error) {
		if err := checkArgs(name, args, 1, 1); err != nil {
			return nil, err
		}
		c, err := readGeometry(name, args[0])
		if err != nil {
			return nil, err
		}
		return fn(c)
	}
}

func binary(name string, pred func(a, b *geometry.Collection) bool) FunctionHandle {
	return func(args []interface{}) (interface{}, error) {
		if err := checkArgs(name, args, 2, 2); err != nil {
			return nil, err
		}
		a, err := readGeometry(name, args[0])
		if err != nil {
			return nil, err
		}
		b, err := readGeometry(name, args[1])
		if err != nil {
			return nil, err
		}
		return boolResult(pred(a, b)), nil
	}
}

func pointOrdinate(name string, pick func(geometry.Point) (float64, bool)) FunctionHandle {
	return unary(name, func(c *geometry.Collection) (interface{}, error) {
		if c.DeclaredType.Kind() != geometry.KindPoint || len(c.Points) != 1 {
			return nil, nil
		}
		v, ok := pick(c.Points[0])
		if !ok {
			return nil, nil
		}
		return v, nil
	})
}

func geomFromEWKTHandler(args []interface{}) (interface{}, error) {
	if err := checkArgs("GeomFromEWKT", args, 1, 1); err != nil {
		return nil, err
	}
	c, err := readGeometry("GeomFromEWKT", args[0])
	if err != nil {
		return nil, err
	}
	return ewkt.Format(c), nil
}

func geomFromTextHandler(args []interface{}) (interface{}, error) {
	if err := checkArgs("GeomFromText", args, 1, 2); err != nil {
		return nil, err
	}
	text, err := toStringArg(args[0])
	if err != nil {
		return nil, fmt.Errorf("GeomFromText: %w", err)
	}
	srid := geometry.UnknownSRID
	if len(args) == 2 {
		n, err := toInt64Arg(args[1])
		if err != nil {
			return nil, fmt.Errorf("GeomFromText: srid: %w", err)
		}
		srid = int(n)
	}
	c, err := CurrentGeometryReader().ReadWKT(text, srid)
	if err != nil {
		return nil, fmt.Errorf("GeomFromText: %w", err)
	}
	return ewkt.Format(c), nil
}

func setSRIDHandler(args []interface{}) (interface{}, error) {
	if err := checkArgs("SetSRID", args, 2, 2); err != nil {
		return nil, err
	}
	c, err := readGeometry("SetSRID", args[0])
	if err != nil {
		return nil, err
	}
	srid, err := toInt64Arg(args[1])
	if err != nil {
		return nil, fmt.Errorf("SetSRID: srid: %w", err)
	}
	c.SRID = int(srid)
	return ewkt.Format(c), nil
}

func buildMbrHandler(args []interface{}) (interface{}, error) {
	if err := checkArgs("BuildMbr", args, 4, 5); err != nil {
		return nil, err
	}
	var v [4]float64
	for i := range v {
		f, err := toFloat64Arg(args[i])
		if err != nil {
			return nil, fmt.Errorf("BuildMbr: argument %d: %w", i+1, err)
		}
		v[i] = f
	}
	srid := geometry.UnknownSRID
	if len(args) == 5 {
		n, err := toInt64Arg(args[4])
		if err != nil {
			return nil, fmt.Errorf("BuildMbr: srid: %w", err)
		}
		srid = int(n)
	}
	box := geometry.BoundingBox{
		MinX: min(v[0], v[2]), MinY: min(v[1], v[3]),
		MaxX: max(v[0], v[2]), MaxY: max(v[1], v[3]),
	}
	return ewkt.Format(box.ToPolygon(srid)), nil
}

func envelope(c *geometry.Collection) (interface{}, error) {
	return ewkt.Format(c.MBR.ToPolygon(c.SRID)), nil
}

// isValidHandler never fails on bad geometry text; it reports it.
func isValidHandler(args []interface{}) (interface{}, error) {
	if err := checkArgs("ST_IsValid", args, 1, 1); err != nil {
		return nil, err
	}
	text, err := toStringArg(args[0])
	if err != nil {
		return int64(0), nil
	}
	opts := CurrentGeometryReader().Options()
	opts.RequireClosedRings = true
	_, err = ewkt.ParseWithOptions(text, opts)
	return boolResult(err == nil), nil
}
