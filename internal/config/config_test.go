package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/shapes2video/internal/shape"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataPath)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "regular", cfg.Mode)
	assert.Equal(t, 1800, cfg.Bitrate)
	assert.Equal(t, "translate", cfg.Speech.Provider)
	assert.Equal(t, 30*time.Second, cfg.Speech.Timeout)
	assert.InDelta(t, 0.2, cfg.TestRatio, 1e-9)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_path: /tmp/dataset
relation: overlap
limit: 25
speech:
  provider: cloud
  retries: 4
mirror:
  bucket: shapes
`), 0o644))

	// environment wins over the file
	t.Setenv("S2V_LIMIT", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/dataset", cfg.DataPath)
	assert.Equal(t, "overlap", cfg.Relation)
	assert.Equal(t, 7, cfg.Limit)
	assert.Equal(t, "cloud", cfg.Speech.Provider)
	assert.Equal(t, 4, cfg.Speech.Retries)
	assert.Equal(t, "shapes", cfg.Mirror.Bucket)
	assert.Equal(t, 1800, cfg.Bitrate)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, shape.ErrConfig)
}

func TestValidate(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"data path": func(c *Config) { c.DataPath = "" },
		"mode":      func(c *Config) { c.Mode = "fancy" },
		"relation":  func(c *Config) { c.Relation = "partial" },
		"bitrate":   func(c *Config) { c.Bitrate, c.Quality = 0, 0 },
		"limit":     func(c *Config) { c.Limit = -1 },
		"ratio":     func(c *Config) { c.TestRatio = 1 },
		"retries":   func(c *Config) { c.Speech.Retries = -2 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := *base
			mutate(&c)
			assert.ErrorIs(t, c.Validate(), shape.ErrConfig)
		})
	}

	c := *base
	c.Bitrate, c.Quality = 0, 23
	assert.NoError(t, c.Validate())
}
