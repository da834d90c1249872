package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sqlgeo.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 16<<20, config.Parser.MaxInputBytes)
	assert.Equal(t, 1<<20, config.Parser.MaxCoordinates)
	assert.False(t, config.Parser.RequireClosedRings)
	assert.True(t, config.Cache.Enabled)
	assert.Equal(t, int64(10000), config.Cache.MaxItems)
	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, ":memory:", config.Database.DSN)
	assert.False(t, config.MCP.Enabled)
	assert.Equal(t, "127.0.0.1:8765", config.GetMCPAddress())
	assert.NoError(t, validateConfig(config))
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"negative input limit", `{"parser":{"max_input_bytes":-1}}`, "max_input_bytes"},
		{"negative coordinate limit", `{"parser":{"max_coordinates":-5}}`, "max_coordinates"},
		{"negative workers", `{"parser":{"workers":-2}}`, "parser.workers"},
		{"zero cache", `{"cache":{"enabled":true,"max_items":0}}`, "max_items"},
		{"bad level", `{"log":{"level":"loud"}}`, "log.level"},
		{"empty dsn", `{"database":{"dsn":""}}`, "dsn"},
		{"bad mcp port", `{"mcp":{"enabled":true,"port":70000}}`, "mcp.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoadConfig_DisabledCacheAllowsZero(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, `{"cache":{"enabled":false,"max_items":0}}`))
	require.NoError(t, err)
	assert.False(t, config.Cache.Enabled)
}

func TestLoadConfig_ValidConfig(t *testing.T) {
	config, err := LoadConfig(writeConfig(t, `{
		"parser": {"max_coordinates": 100, "require_closed_rings": true},
		"log": {"level": "debug"},
		"mcp": {"enabled": true, "port": 9000}
	}`))
	require.NoError(t, err)

	assert.Equal(t, 100, config.Parser.MaxCoordinates)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "127.0.0.1:9000", config.GetMCPAddress())

	// 未出现的字段保留默认值
	assert.Equal(t, 16<<20, config.Parser.MaxInputBytes)
	assert.Equal(t, ":memory:", config.Database.DSN)

	assert.Positive(t, config.ParserWorkers())
	config.Parser.Workers = 3
	assert.Equal(t, 3, config.ParserWorkers())

	opts := config.ParserOptions()
	assert.Equal(t, 100, opts.MaxCoordinates)
	assert.True(t, opts.RequireClosedRings)
}

func TestLoadConfigOrDefault_WithEnvVar(t *testing.T) {
	t.Setenv("SQLGEO_CONFIG", writeConfig(t, `{"database":{"dsn":"file:geo.db"}}`))

	config := LoadConfigOrDefault()
	assert.Equal(t, "file:geo.db", config.Database.DSN)
}

func TestLoadConfigOrDefault_BadEnvFallsBack(t *testing.T) {
	t.Setenv("SQLGEO_CONFIG", writeConfig(t, `{"log":{"level":"loud"}}`))
	t.Chdir(t.TempDir())

	assert.Equal(t, DefaultConfig(), LoadConfigOrDefault())
}

func TestLoadConfigOrDefault_WithLocalFile(t *testing.T) {
	t.Setenv("SQLGEO_CONFIG", "")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqlgeo.json"), []byte(`{"cache":{"max_items":5}}`), 0644))
	t.Chdir(dir)

	assert.Equal(t, int64(5), LoadConfigOrDefault().Cache.MaxItems)
}
