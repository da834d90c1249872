package builtin

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/kasuganosora/sqlgeo/pkg/ewkt"
	"github.com/kasuganosora/sqlgeo/pkg/geometry"
)

// ParseCache memoizes parsed geometry literals. SQL statements tend to repeat
// the same literal for every row, so the cache is keyed by the literal text.
// Stored collections are never handed out: every hit returns a clone.
type ParseCache struct {
	cache *ristretto.Cache[string, *geometry.Collection]
}

// NewParseCache creates a cache holding at most maxItems geometries.
func NewParseCache(maxItems int64) (*ParseCache, error) {
	if maxItems <= 0 {
		return nil, fmt.Errorf("parse cache size must be positive, got %d", maxItems)
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, *geometry.Collection]{
		NumCounters:        maxItems * 10,
		MaxCost:            maxItems,
		BufferItems:        64,
		Metrics:            true,
		IgnoreInternalCost: true, // cost is counted in entries, not bytes
	})
	if err != nil {
		return nil, fmt.Errorf("create parse cache: %w", err)
	}
	return &ParseCache{cache: c}, nil
}

// Load returns a copy of the collection stored under key, calling parse and
// storing its result on a miss. Failed parses are not cached.
func (pc *ParseCache) Load(key string, parse func() (*geometry.Collection, error)) (*geometry.Collection, error) {
	if c, ok := pc.cache.Get(key); ok {
		return c.Clone(), nil
	}
	c, err := parse()
	if err != nil {
		return nil, err
	}
	pc.cache.Set(key, c.Clone(), 1)
	return c, nil
}

// Wait blocks until pending writes are visible to Get.
func (pc *ParseCache) Wait() {
	pc.cache.Wait()
}

// Hits returns the number of lookups served from the cache.
func (pc *ParseCache) Hits() uint64 {
	return pc.cache.Metrics.Hits()
}

// Misses returns the number of lookups that had to parse.
func (pc *ParseCache) Misses() uint64 {
	return pc.cache.Metrics.Misses()
}

// Clear drops every entry.
func (pc *ParseCache) Clear() {
	pc.cache.Clear()
}

// Close releases the cache's goroutines.
func (pc *ParseCache) Close() {
	pc.cache.Close()
}

// GeometryReader turns SQL text arguments into geometries using one parser
// configuration and an optional cache.
type GeometryReader struct {
	parser *ewkt.Parser
	cache  *ParseCache
}

// NewGeometryReader creates a reader. cache may be nil.
func NewGeometryReader(opts ewkt.Options, cache *ParseCache) *GeometryReader {
	return &GeometryReader{parser: ewkt.NewParser(opts), cache: cache}
}

// ReadEWKT parses an EWKT literal.
func (r *GeometryReader) ReadEWKT(text string) (*geometry.Collection, error) {
	if r.cache == nil {
		return r.parser.Parse(text)
	}
	return r.cache.Load("e:"+text, func() (*geometry.Collection, error) {
		return r.parser.Parse(text)
	})
}

// ReadWKT parses plain WKT and assigns srid.
func (r *GeometryReader) ReadWKT(text string, srid int) (*geometry.Collection, error) {
	if r.cache == nil {
		return r.parser.ParseWKT(text, srid)
	}
	c, err := r.cache.Load("w:"+text, func() (*geometry.Collection, error) {
		return r.parser.ParseWKT(text, geometry.UnknownSRID)
	})
	if err != nil {
		return nil, err
	}
	c.SRID = srid
	return c, nil
}

// Options returns the parser options in use.
func (r *GeometryReader) Options() ewkt.Options {
	return r.parser.Options()
}

var (
	reader        atomic.Pointer[GeometryReader]
	defaultReader = NewGeometryReader(ewkt.DefaultOptions(), nil)

	installMu sync.Mutex
	installed []*GeometryReader
)

func init() {
	reader.Store(defaultReader)
}

// SetGeometryReader makes r the reader used by the spatial functions until
// it is removed with RemoveGeometryReader. The most recently installed
// reader that is still installed wins.
func SetGeometryReader(r *GeometryReader) {
	if r == nil {
		return
	}
	installMu.Lock()
	defer installMu.Unlock()
	installed = append(installed, r)
	reader.Store(r)
}

// RemoveGeometryReader uninstalls r. The spatial functions fall back to the
// newest reader still installed, or to the default one.
func RemoveGeometryReader(r *GeometryReader) {
	installMu.Lock()
	defer installMu.Unlock()
	for i := len(installed) - 1; i >= 0; i-- {
		if installed[i] == r {
			installed = append(installed[:i], installed[i+1:]...)
			break
		}
	}
	if n := len(installed); n > 0 {
		reader.Store(installed[n-1])
	} else {
		reader.Store(defaultReader)
	}
}

// CurrentGeometryReader returns the reader used by the spatial functions.
func CurrentGeometryReader() *GeometryReader {
	return reader.Load()
}
