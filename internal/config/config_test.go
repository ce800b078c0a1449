package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadToml(t *testing.T) {
	path := writeFile(t, "krajc.toml", `
scripts = ["a.lua"]

[engine]
parallelism = false
workers = 3

[logging]
level = "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.False(t, cfg.Engine.Parallelism)
	require.Equal(t, 3, cfg.Engine.Workers)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, []string{"a.lua"}, cfg.Scripts)

	// values not in the file keep their defaults
	require.Equal(t, 60.0, cfg.Engine.TargetFps)
	require.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadYaml(t *testing.T) {
	path := writeFile(t, "krajc.yaml", `
engine:
  target_fps: 30
window:
  enabled: true
  title: demo
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 30.0, cfg.Engine.TargetFps)
	require.True(t, cfg.Window.Enabled)
	require.Equal(t, "demo", cfg.Window.Title)
	require.Equal(t, 800, cfg.Window.Width)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "krajc.json", `{}`))
	require.ErrorContains(t, err, "unsupported format")

	_, err = Load(writeFile(t, "broken.toml", `[engine`))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()

	t.Setenv(EnvParallelism, "false")
	require.NoError(t, cfg.ApplyEnv())
	require.False(t, cfg.Engine.Parallelism)

	t.Setenv(EnvParallelism, "maybe")
	require.Error(t, cfg.ApplyEnv())
}
