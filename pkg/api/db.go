package api

import (
	"context"
	"database/sql"
	"sync"

	"github.com/kasuganosora/sqlgeo/pkg/builtin"
	"github.com/kasuganosora/sqlgeo/pkg/config"
	"github.com/kasuganosora/sqlgeo/pkg/ewkt"
	"github.com/kasuganosora/sqlgeo/pkg/geometry"
	"github.com/kasuganosora/sqlgeo/pkg/sqlhost"
	"github.com/kasuganosora/sqlgeo/pkg/workerpool"
)

// DB 把 EWKT 解析器、解析缓存和注册了空间函数的 SQLite 组合在一起
type DB struct {
	mu     sync.RWMutex
	conn   *sql.DB
	reader *builtin.GeometryReader
	cache  *builtin.ParseCache
	pool   *workerpool.Pool
	logger Logger
	config *config.Config
	closed bool
}

// Open 按配置打开数据库。cfg 为 nil 时使用默认配置，logger 为 nil 时按
// cfg.Log.Level 创建默认日志。
// SQL 函数使用进程级的解析器设置：仍未关闭的 DB 中最后打开的那个生效，
// Close 时回退到前一个。
func Open(ctx context.Context, cfg *config.Config, logger Logger) (*DB, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		level, err := ParseLogLevel(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		logger = NewDefaultLogger(level)
	}

	var cache *builtin.ParseCache
	if cfg.Cache.Enabled {
		c, err := builtin.NewParseCache(cfg.Cache.MaxItems)
		if err != nil {
			return nil, WrapError(err, ErrCodeConfig, "create parse cache")
		}
		cache = c
	}

	workers := cfg.ParserWorkers()
	pool, err := workerpool.New(workers, workers*2)
	if err != nil {
		if cache != nil {
			cache.Close()
		}
		return nil, WrapError(err, ErrCodeConfig, "create parse workers")
	}

	reader := builtin.NewGeometryReader(cfg.ParserOptions(), cache)
	builtin.SetGeometryReader(reader)

	conn, err := sqlhost.Open(ctx, sqlhost.Options{DSN: cfg.Database.DSN})
	if err != nil {
		builtin.RemoveGeometryReader(reader)
		pool.Close()
		if cache != nil {
			cache.Close()
		}
		return nil, WrapError(err, ErrCodeInternal, "open sqlite host")
	}

	logger.Info("opened %s with %d spatial functions", cfg.Database.DSN, len(sqlhost.Registered()))
	return &DB{
		conn:   conn,
		reader: reader,
		cache:  cache,
		pool:   pool,
		logger: logger,
		config: cfg,
	}, nil
}

// ParseEWKT 解析一个 EWKT 字面量，经过缓存（如果启用）
func (db *DB) ParseEWKT(text string) (*geometry.Collection, error) {
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	c, err := db.reader.ReadEWKT(text)
	if err != nil {
		db.logger.Debug("parse failed: %v", err)
		return nil, FromParseError(err, "parse EWKT")
	}
	return c, nil
}

// ParseWKT 解析不带 SRID 前缀的 WKT，并设置 srid
func (db *DB) ParseWKT(text string, srid int) (*geometry.Collection, error) {
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	c, err := db.reader.ReadWKT(text, srid)
	if err != nil {
		return nil, FromParseError(err, "parse WKT")
	}
	return c, nil
}

// BatchResult 批量解析中单个输入的结果
type BatchResult struct {
	Geometry *geometry.Collection
	Err      error
}

// ParseBatch 并行解析多个 EWKT 字面量，结果与输入顺序一致
// 单个输入失败不影响其它输入；ctx 取消后未开始的输入返回 ctx 错误
func (db *DB) ParseBatch(ctx context.Context, texts []string) ([]BatchResult, error) {
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	results := make([]BatchResult, len(texts))
	errs := db.pool.Map(ctx, len(texts), func(ctx context.Context, i int) error {
		c, err := db.reader.ReadEWKT(texts[i])
		if err != nil {
			return FromParseError(err, "parse EWKT")
		}
		results[i].Geometry = c
		return nil
	})
	failed := 0
	for i, err := range errs {
		if err != nil {
			results[i].Err = err
			failed++
		}
	}
	db.logger.Debug("parsed batch of %d, %d failed", len(texts), failed)
	return results, nil
}

// Query 执行查询并读取全部结果
func (db *DB) Query(ctx context.Context, query string, args ...interface{}) (*QueryResult, error) {
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	if query == "" {
		return nil, NewError(ErrCodeInvalidParam, "query cannot be empty", nil)
	}
	db.logger.Debug("query: %s", query)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, WrapError(err, ErrCodeQuery, "query failed")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, WrapError(err, ErrCodeQuery, "read columns")
	}

	result := &QueryResult{Columns: columns, Rows: [][]interface{}{}}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, WrapError(err, ErrCodeQuery, "scan row")
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(err, ErrCodeQuery, "query failed")
	}
	return result, nil
}

// Exec 执行不返回行的语句
func (db *DB) Exec(ctx context.Context, query string, args ...interface{}) (*Result, error) {
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	if query == "" {
		return nil, NewError(ErrCodeInvalidParam, "query cannot be empty", nil)
	}
	db.logger.Debug("exec: %s", query)

	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, WrapError(err, ErrCodeQuery, "exec failed")
	}
	affected, _ := res.RowsAffected()
	lastID, _ := res.LastInsertId()
	return &Result{RowsAffected: affected, LastInsertID: lastID}, nil
}

// CacheStats 返回解析缓存的命中和未命中次数，缓存禁用时都为 0
func (db *DB) CacheStats() (hits, misses uint64) {
	if db.cache == nil {
		return 0, 0
	}
	return db.cache.Hits(), db.cache.Misses()
}

// ParserOptions 返回当前解析器设置
func (db *DB) ParserOptions() ewkt.Options {
	return db.reader.Options()
}

// SQL 返回底层连接，调用方不要关闭它
func (db *DB) SQL() *sql.DB {
	return db.conn
}

// Logger 返回日志
func (db *DB) Logger() Logger {
	return db.logger
}

// Config 返回配置
func (db *DB) Config() *config.Config {
	return db.config
}

// Close 关闭数据库，重复调用无副作用
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true
	builtin.RemoveGeometryReader(db.reader)
	db.pool.Close()
	if db.cache != nil {
		db.cache.Close()
	}
	if err := db.conn.Close(); err != nil {
		return WrapError(err, ErrCodeInternal, "close sqlite host")
	}
	db.logger.Debug("closed %s", db.config.Database.DSN)
	return nil
}

func (db *DB) checkOpen() error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return NewError(ErrCodeClosed, "database is closed", nil)
	}
	return nil
}
