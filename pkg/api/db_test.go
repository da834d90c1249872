package api

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/sqlgeo/pkg/builtin"
	"github.com/kasuganosora/sqlgeo/pkg/config"
	"github.com/kasuganosora/sqlgeo/pkg/geometry"
)

func openTestDB(t *testing.T, cfg *config.Config) *DB {
	t.Helper()
	db, err := Open(context.Background(), cfg, NewNoOpLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_Defaults(t *testing.T) {
	var buf bytes.Buffer
	db, err := Open(context.Background(), nil, NewDefaultLoggerWithOutput(LogInfo, &buf))
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, ":memory:", db.Config().Database.DSN)
	assert.Contains(t, buf.String(), "[INFO] opened :memory:")
	assert.NotNil(t, db.SQL())
	assert.NotNil(t, db.Logger())
}

func TestOpen_BadLogLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.Level = "chatty"
	_, err := Open(context.Background(), cfg, nil)
	assert.True(t, IsErrorCode(err, ErrCodeConfig))
}

func TestOpen_BadCacheSize(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cache.MaxItems = 0
	_, err := Open(context.Background(), cfg, NewNoOpLogger())
	assert.True(t, IsErrorCode(err, ErrCodeConfig))
}

func TestDB_ParseEWKT(t *testing.T) {
	db := openTestDB(t, nil)

	c, err := db.ParseEWKT("SRID=4326;MULTIPOINT(1 2,3 4)")
	require.NoError(t, err)
	assert.Equal(t, 4326, c.SRID)
	assert.Equal(t, geometry.TypeMultiPoint, c.DeclaredType)
	assert.Len(t, c.Points, 2)

	db.cache.Wait()
	again, err := db.ParseEWKT("SRID=4326;MULTIPOINT(1 2,3 4)")
	require.NoError(t, err)
	assert.Equal(t, c, again)
	hits, _ := db.CacheStats()
	assert.Equal(t, uint64(1), hits)

	_, err = db.ParseEWKT("POINT(1 2")
	assert.True(t, IsErrorCode(err, ErrCodeSyntax))
}

func TestDB_ParseWKT(t *testing.T) {
	db := openTestDB(t, nil)

	c, err := db.ParseWKT("POINT(1 2)", 3857)
	require.NoError(t, err)
	assert.Equal(t, 3857, c.SRID)
}

func TestDB_ParserLimits(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Parser.MaxCoordinates = 2
	cfg.Parser.RequireClosedRings = true
	cfg.Cache.Enabled = false
	db := openTestDB(t, cfg)

	assert.True(t, db.ParserOptions().RequireClosedRings)

	_, err := db.ParseEWKT("LINESTRING(0 0,1 1,2 2)")
	assert.True(t, IsErrorCode(err, ErrCodeLimit))

	// SQL 函数使用同样的限制
	_, err = db.Query(context.Background(), "SELECT AsText('LINESTRING(0 0,1 1,2 2)')")
	require.Error(t, err)
	assert.True(t, IsErrorCode(err, ErrCodeQuery))
	assert.Contains(t, err.Error(), "limit exceeded")

	hits, misses := db.CacheStats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestDB_ParseBatch(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Parser.Workers = 3
	db := openTestDB(t, cfg)

	inputs := []string{
		"POINT(1 2)",
		"LINESTRING(1 1)",
		"SRID=4326;POLYGON((0 0,1 0,1 1,0 0))",
		"POINT(1 2)",
	}
	results, err := db.ParseBatch(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, geometry.TypePoint, results[0].Geometry.DeclaredType)
	assert.True(t, IsErrorCode(results[1].Err, ErrCodeSyntax))
	assert.Nil(t, results[1].Geometry)
	assert.Equal(t, 4326, results[2].Geometry.SRID)
	assert.NotSame(t, results[0].Geometry, results[3].Geometry)

	empty, err := db.ParseBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDB_QueryAndExec(t *testing.T) {
	db := openTestDB(t, nil)
	ctx := context.Background()

	_, err := db.Exec(ctx, "CREATE TABLE zones (id INTEGER PRIMARY KEY, geom TEXT)")
	require.NoError(t, err)

	res, err := db.Exec(ctx, "INSERT INTO zones (geom) VALUES (GeomFromEWKT(?))", "SRID=4326;POLYGON((0 0,4 0,4 4,0 4,0 0))")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)
	assert.Equal(t, int64(1), res.LastInsertID)
	assert.Equal(t, "Result: RowsAffected=1, LastInsertID=1", res.String())

	result, err := db.Query(ctx, "SELECT id, ST_SRID(geom) AS srid, ST_Area(geom) AS area, ST_Z(geom) AS z FROM zones")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "srid", "area", "z"}, result.Columns)
	require.Equal(t, 1, result.Total())
	assert.Equal(t, []interface{}{int64(1), int64(4326), 16.0, nil}, result.Rows[0])

	areas, ok := result.Column("area")
	require.True(t, ok)
	assert.Equal(t, []interface{}{16.0}, areas)
	_, ok = result.Column("missing")
	assert.False(t, ok)

	result, err = db.Query(ctx, "SELECT geom FROM zones")
	require.NoError(t, err)
	assert.Equal(t, "SRID=4326;POLYGON((0 0,4 0,4 4,0 4,0 0))", result.Rows[0][0])
}

func TestDB_QueryErrors(t *testing.T) {
	db := openTestDB(t, nil)
	ctx := context.Background()

	_, err := db.Query(ctx, "")
	assert.True(t, IsErrorCode(err, ErrCodeInvalidParam))

	_, err = db.Query(ctx, "SELECT FROM WHERE")
	assert.True(t, IsErrorCode(err, ErrCodeQuery))

	_, err = db.Exec(ctx, "")
	assert.True(t, IsErrorCode(err, ErrCodeInvalidParam))
}

func TestDB_Close(t *testing.T) {
	db, err := Open(context.Background(), nil, NewNoOpLogger())
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.NoError(t, db.Close())

	_, err = db.ParseEWKT("POINT(1 2)")
	assert.True(t, IsErrorCode(err, ErrCodeClosed))
	_, err = db.Query(context.Background(), "SELECT 1")
	assert.True(t, IsErrorCode(err, ErrCodeClosed))
	_, err = db.Exec(context.Background(), "SELECT 1")
	assert.True(t, IsErrorCode(err, ErrCodeClosed))
	_, err = db.ParseBatch(context.Background(), []string{"POINT(1 2)"})
	assert.True(t, IsErrorCode(err, ErrCodeClosed))
}

func TestDB_CloseRestoresReader(t *testing.T) {
	base := builtin.CurrentGeometryReader()

	strict := config.DefaultConfig()
	strict.Parser.MaxCoordinates = 2
	a, err := Open(context.Background(), strict, NewNoOpLogger())
	require.NoError(t, err)
	defer a.Close()

	b, err := Open(context.Background(), nil, NewNoOpLogger())
	require.NoError(t, err)
	assert.Equal(t, b.ParserOptions().MaxCoordinates, builtin.CurrentGeometryReader().Options().MaxCoordinates)

	// 关闭后一个 DB，前一个 DB 的解析设置和缓存重新生效
	require.NoError(t, b.Close())
	assert.Equal(t, 2, builtin.CurrentGeometryReader().Options().MaxCoordinates)
	_, err = a.Query(context.Background(), "SELECT AsText('LINESTRING(0 0,1 1,2 2)')")
	assert.True(t, IsErrorCode(err, ErrCodeQuery))

	res, err := a.Query(context.Background(), "SELECT AsText('POINT(1 2)')")
	require.NoError(t, err)
	assert.Equal(t, "POINT(1 2)", res.Rows[0][0])
	a.cache.Wait()
	res, err = a.Query(context.Background(), "SELECT AsText('POINT(1 2)')")
	require.NoError(t, err)
	assert.Equal(t, "POINT(1 2)", res.Rows[0][0])
	hits, _ := a.CacheStats()
	assert.GreaterOrEqual(t, hits, uint64(1))

	require.NoError(t, a.Close())
	assert.Same(t, base, builtin.CurrentGeometryReader())
}
