// Package sqlhost binds the spatial function registry to the pure-Go SQLite
// engine, so geometry literals can be parsed and inspected from SQL.
package sqlhost

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"modernc.org/sqlite"

	"github.com/kasuganosora/sqlgeo/pkg/builtin"
)

// DriverName is the database/sql driver name registered by modernc.org/sqlite.
const DriverName = "sqlite"

var (
	registerOnce sync.Once
	registerErr  error
	registered   []string
)

// Register installs every function of the global builtin registry into the
// SQLite driver. Registration is process-wide and happens once; later calls
// return the first result. Connections opened before Register do not see the
// functions.
func Register() error {
	registerOnce.Do(func() {
		registered, registerErr = registerAll(builtin.GetGlobalRegistry())
	})
	return registerErr
}

// Registered lists the SQL names installed by Register.
func Registered() []string {
	return append([]string(nil), registered...)
}

func registerAll(r *builtin.FunctionRegistry) ([]string, error) {
	names := r.Names()
	for _, name := range names {
		info, _ := r.Get(name)
		if info.Type != builtin.FunctionTypeScalar {
			continue
		}
		fn := scalar(r, name)
		var err error
		if info.Deterministic {
			err = sqlite.RegisterDeterministicScalarFunction(name, -1, fn)
		} else {
			err = sqlite.RegisterScalarFunction(name, -1, fn)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "register sql function %s", name)
		}
	}
	return names, nil
}

// scalar adapts a registry function to the driver callback. Argument counts
// are checked by the registry so one variadic registration covers every
// signature.
func scalar(r *builtin.FunctionRegistry, name string) func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error) {
	return func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		in := make([]interface{}, len(args))
		for i, a := range args {
			if b, ok := a.([]byte); ok {
				in[i] = string(b)
				continue
			}
			in[i] = a
		}
		out, err := r.Call(name, in...)
		if err != nil {
			return nil, err
		}
		return toDriverValue(out)
	}
}

func toDriverValue(v interface{}) (driver.Value, error) {
	switch x := v.(type) {
	case nil, int64, float64, string, []byte:
		return x, nil
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float32:
		return float64(x), nil
	}
	return nil, errors.Errorf("unsupported sql result type %T", v)
}

// Options controls how Open configures the connection pool.
type Options struct {
	// DSN is a modernc.org/sqlite data source name; ":memory:" for an
	// in-memory database.
	DSN string
	// MaxOpenConns defaults to 1. An in-memory database is private to one
	// connection, so it is always limited to 1.
	MaxOpenConns int
}

// Open registers the spatial functions and opens a SQLite database.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	if err := Register(); err != nil {
		return nil, err
	}
	if opts.DSN == "" {
		return nil, errors.New("sqlite dsn is empty")
	}

	conn, err := sql.Open(DriverName, opts.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen < 1 || isMemory(opts.DSN) {
		maxOpen = 1
	}
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(maxOpen)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "ping sqlite database")
	}
	return conn, nil
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
