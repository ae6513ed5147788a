// Package config loads the settings shared by the slotecs binaries.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/plus3/slotecs/ecs"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = eris.New("unsupported config format")
	ErrInvalidConfig     = eris.New("invalid config")
)

type Config struct {
	Engine  EngineConfig  `toml:"engine" yaml:"engine"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Stress  StressConfig  `toml:"stress" yaml:"stress"`
	Viewer  ViewerConfig  `toml:"viewer" yaml:"viewer"`
}

type EngineConfig struct {
	MaxTypes        int `toml:"max_types" yaml:"max_types"`
	EntityBatchSize int `toml:"entity_batch_size" yaml:"entity_batch_size"`
	Workers         int `toml:"workers" yaml:"workers"` // 0 = GOMAXPROCS
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

type StressConfig struct {
	Duration       time.Duration `toml:"duration" yaml:"duration"`
	Entities       int           `toml:"entities" yaml:"entities"`
	ChurnPerFrame  int           `toml:"churn_per_frame" yaml:"churn_per_frame"`
	Report         string        `toml:"report" yaml:"report"` // "text" or "json"
	GCPauseMetrics bool          `toml:"gc_pause_metrics" yaml:"gc_pause_metrics"`
	Profile        string        `toml:"profile" yaml:"profile"` // "", "cpu", "mem", "block", "mutex", "trace"
	Seed           int64         `toml:"seed" yaml:"seed"`
}

type ViewerConfig struct {
	Title    string `toml:"title" yaml:"title"`
	Width    int    `toml:"width" yaml:"width"`
	Height   int    `toml:"height" yaml:"height"`
	Entities int    `toml:"entities" yaml:"entities"`
}

// Load reads path over the defaults. The format follows the extension:
// .toml, or .yaml / .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read config %s", path)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "config %s", path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that an empty path yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxTypes:        ecs.DefaultMaxTypes,
			EntityBatchSize: ecs.DefaultEntityBatchSize,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Stress: StressConfig{
			Duration:      10 * time.Second,
			Entities:      10000,
			ChurnPerFrame: 100,
			Report:        "text",
			Seed:          1,
		},
		Viewer: ViewerConfig{
			Title:    "slotecs viewer",
			Width:    1280,
			Height:   720,
			Entities: 200,
		},
	}
}

func (c *Config) Validate() error {
	switch {
	case c.Engine.MaxTypes < 1:
		return eris.Wrapf(ErrInvalidConfig, "engine.max_types must be positive, got %d", c.Engine.MaxTypes)
	case c.Engine.EntityBatchSize < 1:
		return eris.Wrapf(ErrInvalidConfig, "engine.entity_batch_size must be positive, got %d", c.Engine.EntityBatchSize)
	case c.Engine.Workers < 0:
		return eris.Wrapf(ErrInvalidConfig, "engine.workers must not be negative, got %d", c.Engine.Workers)
	case c.Stress.Entities < 0 || c.Stress.ChurnPerFrame < 0:
		return eris.Wrap(ErrInvalidConfig, "stress counts must not be negative")
	case c.Stress.Report != "text" && c.Stress.Report != "json":
		return eris.Wrapf(ErrInvalidConfig, "stress.report must be text or json, got %q", c.Stress.Report)
	case c.Viewer.Width < 1 || c.Viewer.Height < 1:
		return eris.Wrapf(ErrInvalidConfig, "viewer size %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	return nil
}

// Options turns the engine section into registry and storage options.
func (e EngineConfig) Options(logger *zap.Logger) []ecs.Option {
	return []ecs.Option{
		ecs.WithMaxTypes(e.MaxTypes),
		ecs.WithEntityBatchSize(e.EntityBatchSize),
		ecs.WithLogger(logger),
	}
}
