// Package config loads application configuration from config.yaml and the
// SAFEPATH_* environment, and installs the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Overpass  OverpassConfig  `yaml:"overpass" mapstructure:"overpass"`
	Routing   RoutingConfig   `yaml:"routing" mapstructure:"routing"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the feature table and optional weights profile.
type DataConfig struct {
	FeatureCSV  string `yaml:"feature_csv" mapstructure:"feature_csv"`
	WeightsFile string `yaml:"weights_file" mapstructure:"weights_file"`
}

// OverpassConfig configures the Overpass network provider.
type OverpassConfig struct {
	Endpoint       string  `yaml:"endpoint" mapstructure:"endpoint"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	MaxRetries     int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// Timeout returns the per-request timeout as a duration.
func (c OverpassConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// RoutingConfig tunes graph building around a route request.
type RoutingConfig struct {
	BBoxPadding  float64 `yaml:"bbox_padding" mapstructure:"bbox_padding"`
	ShrinkFactor float64 `yaml:"shrink_factor" mapstructure:"shrink_factor"`
	Workers      int     `yaml:"workers" mapstructure:"workers"`
}

// CacheConfig configures the graph cache.
type CacheConfig struct {
	Path      string  `yaml:"path" mapstructure:"path"`
	Tolerance float64 `yaml:"tolerance" mapstructure:"tolerance"`
}

// StoreConfig configures the route-history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// AnthropicConfig configures the optional route-insight client. Insight is
// disabled when Key is empty.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SAFEPATH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.feature_csv", "merged_feature_data.csv")
	v.SetDefault("overpass.endpoint", "https://overpass-api.de/api/interpreter")
	v.SetDefault("overpass.timeout_secs", 90)
	v.SetDefault("overpass.requests_per_sec", 0.5)
	v.SetDefault("overpass.max_retries", 3)
	v.SetDefault("routing.bbox_padding", 0.02)
	v.SetDefault("routing.shrink_factor", 0.5)
	v.SetDefault("cache.path", "road_graph.gob")
	v.SetDefault("cache.tolerance", 0.01)
	v.SetDefault("store.path", "safepath.db")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 512)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a command mode depends on and reports every
// problem at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	common := func() {
		if c.Data.FeatureCSV == "" {
			problems = append(problems, "data.feature_csv is required")
		}
		if c.Routing.BBoxPadding <= 0 {
			problems = append(problems, "routing.bbox_padding must be > 0")
		}
		if c.Routing.ShrinkFactor <= 0 || c.Routing.ShrinkFactor > 1 {
			problems = append(problems, "routing.shrink_factor must be in (0, 1]")
		}
		if c.Cache.Tolerance < 0 {
			problems = append(problems, "cache.tolerance must be >= 0")
		}
		if c.Overpass.Endpoint == "" {
			problems = append(problems, "overpass.endpoint is required")
		}
	}

	switch mode {
	case "score":
		if c.Data.FeatureCSV == "" {
			problems = append(problems, "data.feature_csv is required")
		}
	case "route", "precache":
		common()
	case "serve":
		common()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
