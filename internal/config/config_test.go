package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "ecs.toml", `
[engine]
max_types = 32
workers = 4

[logging]
level = "debug"
format = "json"

[stress]
duration = "2s"
entities = 500
report = "json"
profile = "cpu"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.Engine.MaxTypes)
	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, 100, cfg.Engine.EntityBatchSize, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 2*time.Second, cfg.Stress.Duration)
	assert.Equal(t, 500, cfg.Stress.Entities)
	assert.Equal(t, "json", cfg.Stress.Report)
	assert.Equal(t, "cpu", cfg.Stress.Profile)
	assert.Equal(t, 1280, cfg.Viewer.Width)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "ecs.yml", `
engine:
  entity_batch_size: 16
stress:
  duration: 1m
  churn_per_frame: 7
viewer:
  title: demo
  entities: 12
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Engine.EntityBatchSize)
	assert.Equal(t, 64, cfg.Engine.MaxTypes)
	assert.Equal(t, time.Minute, cfg.Stress.Duration)
	assert.Equal(t, 7, cfg.Stress.ChurnPerFrame)
	assert.Equal(t, "demo", cfg.Viewer.Title)
	assert.Equal(t, 12, cfg.Viewer.Entities)
}

func TestLoadErrors(t *testing.T) {
	t.Run("unknown extension", func(t *testing.T) {
		_, err := Load(writeFile(t, "ecs.ini", "x=1"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed toml", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.toml", "[engine\nmax_types = 1"))
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.toml", "[engine]\nmax_types = 0\n"))
		assert.ErrorIs(t, err, ErrInvalidConfig)

		_, err = Load(writeFile(t, "bad.yaml", "stress:\n  report: xml\n"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, Default(), cfg)
	assert.Len(t, cfg.Engine.Options(nil), 3)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = NewLogger(LoggingConfig{Level: "loud", Format: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
