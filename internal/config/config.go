package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvParallelism overrides Engine.Parallelism when set to a boolean value.
const EnvParallelism = "KRAJC_PARALLELISM"

type Config struct {
	Engine  EngineConfig  `toml:"engine" yaml:"engine"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Window  WindowConfig  `toml:"window" yaml:"window"`
	Physics PhysicsConfig `toml:"physics" yaml:"physics"`

	// Scripts lists lua files to load as systems.
	Scripts []string `toml:"scripts" yaml:"scripts"`

	// Profile is one of "", "cpu" or "mem".
	Profile string `toml:"profile" yaml:"profile"`
}

type EngineConfig struct {
	Parallelism bool    `toml:"parallelism" yaml:"parallelism"`
	Workers     int     `toml:"workers" yaml:"workers"` // 0 = number of cpus minus one
	TargetFps   float64 `toml:"target_fps" yaml:"target_fps"`
	Frames      int     `toml:"frames" yaml:"frames"` // 0 = run until interrupted
	Entities    int     `toml:"entities" yaml:"entities"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

type WindowConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Title   string `toml:"title" yaml:"title"`
	Width   int    `toml:"width" yaml:"width"`
	Height  int    `toml:"height" yaml:"height"`
}

type PhysicsConfig struct {
	GravityX float64 `toml:"gravity_x" yaml:"gravity_x"`
	GravityY float64 `toml:"gravity_y" yaml:"gravity_y"`
}

// Load reads the config file at path on top of the defaults. The format is
// chosen by the file extension, either toml or yaml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}

	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}

	default:
		return nil, fmt.Errorf("config %s: unsupported format %q", path, ext)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv applies overrides from environment variables.
func (cfg *Config) ApplyEnv() error {
	if value, ok := os.LookupEnv(EnvParallelism); ok {
		parallelism, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvParallelism, err)
		}

		cfg.Engine.Parallelism = parallelism
	}

	return nil
}

func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Parallelism: true,
			TargetFps:   60,
			Entities:    1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Window: WindowConfig{
			Title:  "krajc",
			Width:  800,
			Height: 600,
		},
		Physics: PhysicsConfig{
			GravityY: -9.81,
		},
	}
}
