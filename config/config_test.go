package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TIANLI0/MatteKit/matting"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, ":8080", cfg.Server.Port)
	require.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	require.Equal(t, 1600, cfg.Upload.MaxSide)
	require.Equal(t, matting.InputSizeDefault, cfg.Model.InputSize)
	require.Equal(t, -1, cfg.Matting.Threshold)
	require.NoError(t, cfg.Validate())

	opts, err := cfg.Matting.Options()
	require.NoError(t, err)
	require.Equal(t, matting.DefaultOptions(), opts)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: ":9000"
  read_timeout: 5s
model:
  input_size: 224
matting:
  threshold: 100
  feather_radius: 2
  use_trimap: true
  backing: color
  backing_color: "#102030"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("MATTE_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("MATTE_MATTING_GUIDED_RADIUS", "5")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Server.Port)
	require.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	require.Equal(t, 224, cfg.Model.InputSize)
	require.NoError(t, cfg.Validate())

	opts, err := cfg.Matting.Options()
	require.NoError(t, err)
	require.Equal(t, 100, *opts.Threshold)
	require.Equal(t, 2, *opts.FeatherRadius)
	require.Equal(t, 5, opts.GuidedRadius)
	require.True(t, opts.UseTrimap)
	require.NotNil(t, opts.Backing)
	require.Equal(t, uint8(0x10), opts.Backing.R)
	require.Equal(t, uint8(0x30), opts.Backing.B)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"input size":     func(c *Config) { c.Model.InputSize = 256 },
		"max concurrent": func(c *Config) { c.Model.MaxConcurrent = 0 },
		"max side":       func(c *Config) { c.Upload.MaxSide = 0 },
		"backing mode":   func(c *Config) { c.Matting.Backing = "checkerboard" },
		"backing color":  func(c *Config) { c.Matting.Backing = "color"; c.Matting.BackingColor = "blue" },
		"despill":        func(c *Config) { c.Matting.DespillStrength = 2 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
