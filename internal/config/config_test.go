package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtemp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "merged_feature_data.csv", cfg.Data.FeatureCSV)
	assert.Equal(t, "https://overpass-api.de/api/interpreter", cfg.Overpass.Endpoint)
	assert.Equal(t, 90, cfg.Overpass.TimeoutSecs)
	assert.InDelta(t, 0.5, cfg.Overpass.RequestsPerSec, 0.001)
	assert.Equal(t, 3, cfg.Overpass.MaxRetries)
	assert.InDelta(t, 0.02, cfg.Routing.BBoxPadding, 0.001)
	assert.InDelta(t, 0.5, cfg.Routing.ShrinkFactor, 0.001)
	assert.Equal(t, "road_graph.gob", cfg.Cache.Path)
	assert.InDelta(t, 0.01, cfg.Cache.Tolerance, 0.0001)
	assert.Equal(t, "safepath.db", cfg.Store.Path)
	assert.Equal(t, 512, cfg.Anthropic.MaxTokens)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	chtemp(t)

	yaml := `
data:
  feature_csv: delhi_features.csv
routing:
  bbox_padding: 0.05
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "delhi_features.csv", cfg.Data.FeatureCSV)
	assert.InDelta(t, 0.05, cfg.Routing.BBoxPadding, 0.001)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.InDelta(t, 0.5, cfg.Routing.ShrinkFactor, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chtemp(t)

	yaml := `
log:
  level: debug
cache:
  path: from_file.gob
`
	require.NoError(t, os.WriteFile(filepath.Join(".", "config.yaml"), []byte(yaml), 0644))

	t.Setenv("SAFEPATH_LOG_LEVEL", "warn")
	t.Setenv("SAFEPATH_CACHE_PATH", "from_env.gob")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "from_env.gob", cfg.Cache.Path)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chtemp(t)

	t.Setenv("SAFEPATH_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults(t *testing.T) *Config {
	t.Helper()
	chtemp(t)
	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestValidateServe_Defaults(t *testing.T) {
	cfg := validDefaults(t)
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults(t)
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateRoute_BadShrinkFactor(t *testing.T) {
	cfg := validDefaults(t)

	cfg.Routing.ShrinkFactor = 0
	err := cfg.Validate("route")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "shrink_factor")

	cfg.Routing.ShrinkFactor = 1.5
	err = cfg.Validate("route")
	assert.Error(t, err)

	cfg.Routing.ShrinkFactor = 1.0
	assert.NoError(t, cfg.Validate("route"))
}

func TestValidateScore_MissingCSV(t *testing.T) {
	cfg := validDefaults(t)
	cfg.Data.FeatureCSV = ""

	err := cfg.Validate("score")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "data.feature_csv is required")
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := validDefaults(t)
	cfg.Data.FeatureCSV = ""
	cfg.Overpass.Endpoint = ""
	cfg.Cache.Tolerance = -1

	err := cfg.Validate("precache")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data.feature_csv is required")
	assert.Contains(t, err.Error(), "overpass.endpoint is required")
	assert.Contains(t, err.Error(), "cache.tolerance must be >= 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults(t)
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
