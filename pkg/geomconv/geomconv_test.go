package geomconv

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/kasuganosora/sqlgeo/pkg/ewkt"
	"github.com/kasuganosora/sqlgeo/pkg/geometry"
)

func mustParse(t *testing.T, text string) *geometry.Collection {
	t.Helper()
	c, err := ewkt.Parse(text)
	require.NoError(t, err)
	return c
}

func TestToGeom_Types(t *testing.T) {
	tests := []struct {
		input  string
		want   interface{}
		layout geom.Layout
		flat   []float64
	}{
		{"POINT(1 2)", &geom.Point{}, geom.XY, []float64{1, 2}},
		{"POINT(1 2 3)", &geom.Point{}, geom.XYZ, []float64{1, 2, 3}},
		{"POINTM(1 2 3)", &geom.Point{}, geom.XYM, []float64{1, 2, 3}},
		{"LINESTRING(0 0,1 1)", &geom.LineString{}, geom.XY, []float64{0, 0, 1, 1}},
		{"POLYGON((0 0,4 0,4 4,0 0))", &geom.Polygon{}, geom.XY, []float64{0, 0, 4, 0, 4, 4, 0, 0}},
		{"MULTIPOINT(1 1,2 2)", &geom.MultiPoint{}, geom.XY, []float64{1, 1, 2, 2}},
		{"MULTILINESTRING((0 0,1 1),(2 2,3 3))", &geom.MultiLineString{}, geom.XY, []float64{0, 0, 1, 1, 2, 2, 3, 3}},
		{"MULTIPOLYGON(((0 0,1 0,1 1,0 0)))", &geom.MultiPolygon{}, geom.XY, []float64{0, 0, 1, 0, 1, 1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			g, err := ToGeom(mustParse(t, tt.input))
			require.NoError(t, err)
			assert.IsType(t, tt.want, g)
			assert.Equal(t, tt.layout, g.Layout())
			assert.Equal(t, tt.flat, g.FlatCoords())
		})
	}
}

func TestToGeom_Collection(t *testing.T) {
	g, err := ToGeom(mustParse(t, "GEOMETRYCOLLECTION(POINT(1 1),LINESTRING(0 0,1 1))"))
	require.NoError(t, err)
	gc, ok := g.(*geom.GeometryCollection)
	require.True(t, ok)
	require.Equal(t, 2, gc.NumGeoms())
	assert.IsType(t, &geom.Point{}, gc.Geom(0))
	assert.IsType(t, &geom.LineString{}, gc.Geom(1))
}

func TestToGeom_WKTCrossCheck(t *testing.T) {
	c := mustParse(t, "POLYGON((0 0,4 0,4 4,0 4,0 0),(1 1,2 1,2 2,1 1))")
	g, err := ToGeom(c)
	require.NoError(t, err)
	text, err := wkt.Marshal(g)
	require.NoError(t, err)

	again, err := wkt.Unmarshal(text)
	require.NoError(t, err)
	back, err := FromGeom(again)
	require.NoError(t, err)
	assert.Equal(t, ewkt.Format(c), ewkt.Format(back))
}

func TestToGeom_SRID(t *testing.T) {
	g, err := ToGeom(mustParse(t, "SRID=4326;POINT(1 2)"))
	require.NoError(t, err)
	assert.Equal(t, 4326, g.SRID())

	g, err = ToGeom(mustParse(t, "POINT(1 2)"))
	require.NoError(t, err)
	assert.Equal(t, 0, g.SRID())
}

func TestToGeom_DoesNotAlias(t *testing.T) {
	c := mustParse(t, "LINESTRING(0 0,1 1)")
	g, err := ToGeom(c)
	require.NoError(t, err)
	g.(*geom.LineString).FlatCoords()[0] = 99
	assert.Equal(t, 0.0, c.Linestrings[0].Coords[0])
}

func TestToGeom_Empty(t *testing.T) {
	_, err := ToGeom(geometry.NewCollection(geometry.XY))
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestFromGeom_RoundTrip(t *testing.T) {
	for _, input := range []string{
		"SRID=4326;POINT(1 2)",
		"POINT(1 2 3 4)",
		"LINESTRINGM(0 0 1,1 1 2)",
		"POLYGON((0 0,4 0,4 4,0 4,0 0),(1 1,2 1,2 2,1 1))",
		"MULTIPOINT(1 1,2 2)",
		"MULTILINESTRING((0 0,1 1),(2 2,3 3))",
		"MULTIPOLYGON(((0 0,1 0,1 1,0 0)))",
		"GEOMETRYCOLLECTION(POINT(1 1),LINESTRING(0 0,1 1),POLYGON((0 0,1 0,1 1,0 0)))",
	} {
		t.Run(input, func(t *testing.T) {
			c := mustParse(t, input)
			g, err := ToGeom(c)
			require.NoError(t, err)
			back, err := FromGeom(g)
			require.NoError(t, err)
			assert.Equal(t, ewkt.Format(c), ewkt.Format(back))
			assert.Equal(t, c.DeclaredType, back.DeclaredType)
			assert.Equal(t, c.MBR, back.MBR)
		})
	}
}

func TestFromGeom_FlattensMultiMembers(t *testing.T) {
	g, err := wkt.Unmarshal("GEOMETRYCOLLECTION (MULTIPOINT ((1 1), (2 2)), LINESTRING (0 0, 3 3))")
	require.NoError(t, err)
	c, err := FromGeom(g)
	require.NoError(t, err)
	assert.Len(t, c.Points, 2)
	assert.Len(t, c.Linestrings, 1)
	assert.Equal(t, geometry.TypeGeometryCollection, c.DeclaredType)
	assert.Equal(t, geometry.BoundingBox{MinX: 0, MinY: 0, MaxX: 3, MaxY: 3}, c.MBR)
}

func TestFromGeom_Rejects(t *testing.T) {
	nested := geom.NewGeometryCollection()
	require.NoError(t, nested.Push(geom.NewGeometryCollection()))
	_, err := FromGeom(nested)
	assert.Error(t, err)

	_, err = FromGeom(geom.NewPointEmpty(geom.XY))
	assert.True(t, errors.Is(err, ErrUnsupported))

	_, err = FromGeom(nil)
	assert.True(t, errors.Is(err, ErrUnsupported))

	short := geom.NewLineStringFlat(geom.XY, []float64{1, 1})
	_, err = FromGeom(short)
	assert.True(t, errors.Is(err, ewkt.ErrValidation))
}

func TestGeoJSON(t *testing.T) {
	c := mustParse(t, "LINESTRING(0 0,1 2)")
	data, err := MarshalGeoJSON(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"LineString","coordinates":[[0,0],[1,2]]}`, string(data))

	back, err := UnmarshalGeoJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "LINESTRING(0 0,1 2)", ewkt.Format(back))

	_, err = UnmarshalGeoJSON([]byte(`{"type":"Nope"}`))
	assert.Error(t, err)
}

func TestGeoJSON_DropsMeasure(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		model geometry.Model
	}{
		{"point m", "POINTM(1 2 3)", `{"type":"Point","coordinates":[1,2]}`, geometry.XY},
		{"linestring m", "LINESTRINGM(0 0 7,1 2 8)", `{"type":"LineString","coordinates":[[0,0],[1,2]]}`, geometry.XY},
		{"polygon zm", "POLYGON((0 0 1 9,4 0 2 9,4 4 3 9,0 0 1 9))",
			`{"type":"Polygon","coordinates":[[[0,0,1],[4,0,2],[4,4,3],[0,0,1]]]}`, geometry.XYZ},
		{"collection m", "GEOMETRYCOLLECTIONM(POINTM(1 1 5),LINESTRINGM(0 0 1,1 1 2))",
			`{"type":"GeometryCollection","geometries":[{"type":"Point","coordinates":[1,1]},{"type":"LineString","coordinates":[[0,0],[1,1]]}]}`, geometry.XY},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustParse(t, tt.input)
			data, err := MarshalGeoJSON(c)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			back, err := UnmarshalGeoJSON(data)
			require.NoError(t, err)
			assert.Equal(t, tt.model, back.Model)
			assert.False(t, back.Model.HasM())

			// the source collection keeps its measures
			assert.True(t, c.Model.HasM())
		})
	}

	back, err := UnmarshalGeoJSON(mustMarshal(t, "POINTM(1 2 3)"))
	require.NoError(t, err)
	assert.Equal(t, geometry.TypePoint, back.DeclaredType)
	assert.Equal(t, 0.0, back.Points[0].Z)

	data, err := MarshalFeature(mustParse(t, "POINTM(1 2 3)"), "m", nil)
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []interface{}{1.0, 2.0}, doc["geometry"].(map[string]interface{})["coordinates"])
}

func mustMarshal(t *testing.T, text string) []byte {
	t.Helper()
	data, err := MarshalGeoJSON(mustParse(t, text))
	require.NoError(t, err)
	return data
}

func TestMarshalFeature(t *testing.T) {
	c := mustParse(t, "POLYGON((0 0,4 0,4 4,0 4,0 0))")
	data, err := MarshalFeature(c, "f1", map[string]interface{}{"srid": c.SRID})
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Feature", doc["type"])
	assert.Equal(t, "f1", doc["id"])
	assert.Equal(t, []interface{}{0.0, 0.0, 4.0, 4.0}, doc["bbox"])
	assert.Equal(t, -1.0, doc["properties"].(map[string]interface{})["srid"])
}

func TestLayout(t *testing.T) {
	for _, m := range []geometry.Model{geometry.XY, geometry.XYZ, geometry.XYM, geometry.XYZM} {
		back, err := ModelOf(Layout(m))
		require.NoError(t, err)
		assert.Equal(t, m, back)
	}
	_, err := ModelOf(geom.NoLayout)
	assert.Error(t, err)
}
