package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"

	"github.com/kasuganosora/sqlgeo/pkg/ewkt"
)

// Config 应用程序配置
type Config struct {
	Parser   ParserConfig   `json:"parser"`
	Cache    CacheConfig    `json:"cache"`
	Log      LogConfig      `json:"log"`
	Database DatabaseConfig `json:"database"`
	MCP      MCPConfig      `json:"mcp"`
}

// ParserConfig EWKT 解析器限制
type ParserConfig struct {
	MaxInputBytes      int  `json:"max_input_bytes"`
	MaxCoordinates     int  `json:"max_coordinates"`
	RequireClosedRings bool `json:"require_closed_rings"`
	// Workers 批量解析的并发数，0 表示使用 CPU 数
	Workers int `json:"workers"`
}

// CacheConfig 几何字面量解析缓存
type CacheConfig struct {
	Enabled  bool  `json:"enabled"`
	MaxItems int64 `json:"max_items"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `json:"level"`
}

// DatabaseConfig 宿主 SQLite 数据库
type DatabaseConfig struct {
	DSN string `json:"dsn"`
}

// MCPConfig MCP 服务配置
type MCPConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	opts := ewkt.DefaultOptions()
	return &Config{
		Parser: ParserConfig{
			MaxInputBytes:  opts.MaxInputBytes,
			MaxCoordinates: opts.MaxCoordinates,
		},
		Cache: CacheConfig{
			Enabled:  true,
			MaxItems: 10000,
		},
		Log: LogConfig{
			Level: "info",
		},
		Database: DatabaseConfig{
			DSN: ":memory:",
		},
		MCP: MCPConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    8765,
		},
	}
}

// LoadConfig 从文件加载配置，未出现的字段保留默认值
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", configPath)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", configPath)
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.WithMessage(err, configPath)
	}

	return config, nil
}

// LoadConfigOrDefault 依次尝试环境变量 SQLGEO_CONFIG 和常见位置
func LoadConfigOrDefault() *Config {
	if envPath := os.Getenv("SQLGEO_CONFIG"); envPath != "" {
		if config, err := LoadConfig(envPath); err == nil {
			return config
		}
	}

	possiblePaths := []string{
		"sqlgeo.json",
		"./config/sqlgeo.json",
		"/etc/sqlgeo/config.json",
	}
	for _, path := range possiblePaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		if _, err := os.Stat(absPath); err != nil {
			continue
		}
		if config, err := LoadConfig(absPath); err == nil {
			return config
		}
	}

	return DefaultConfig()
}

// validateConfig 验证配置
func validateConfig(config *Config) error {
	if config.Parser.MaxInputBytes < 0 {
		return errors.Errorf("parser.max_input_bytes must not be negative: %d", config.Parser.MaxInputBytes)
	}
	if config.Parser.MaxCoordinates < 0 {
		return errors.Errorf("parser.max_coordinates must not be negative: %d", config.Parser.MaxCoordinates)
	}
	if config.Parser.Workers < 0 {
		return errors.Errorf("parser.workers must not be negative: %d", config.Parser.Workers)
	}
	if config.Cache.Enabled && config.Cache.MaxItems < 1 {
		return errors.Errorf("cache.max_items must be positive when the cache is enabled: %d", config.Cache.MaxItems)
	}
	switch config.Log.Level {
	case "", "error", "warn", "warning", "info", "debug":
	default:
		return errors.Errorf("unknown log.level %q", config.Log.Level)
	}
	if config.Database.DSN == "" {
		return errors.New("database.dsn must not be empty")
	}
	if config.MCP.Enabled && (config.MCP.Port < 1 || config.MCP.Port > 65535) {
		return errors.Errorf("invalid mcp.port: %d", config.MCP.Port)
	}
	return nil
}

// ParserOptions 转换为解析器选项；0 表示不限制
func (c *Config) ParserOptions() ewkt.Options {
	return ewkt.Options{
		MaxInputBytes:      c.Parser.MaxInputBytes,
		MaxCoordinates:     c.Parser.MaxCoordinates,
		RequireClosedRings: c.Parser.RequireClosedRings,
	}
}

// ParserWorkers 返回批量解析的并发数
func (c *Config) ParserWorkers() int {
	if c.Parser.Workers > 0 {
		return c.Parser.Workers
	}
	return runtime.NumCPU()
}

// Address 返回 MCP 监听地址
func (c *MCPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetMCPAddress 返回 MCP 监听地址
func (c *Config) GetMCPAddress() string {
	return c.MCP.Address()
}
