package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = ".figma-analyzer.yaml"

// Config holds the settings shared by all commands.
type Config struct {
	Token     string      `yaml:"token"`
	Port      int         `yaml:"port"`
	MaxNodes  int         `yaml:"max_nodes"`
	CacheSize int         `yaml:"cache_size"`
	Log       LogConfig   `yaml:"log"`
	Assets    AssetConfig `yaml:"assets"`
}

// LogConfig selects the structured logger used by the long-running commands.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AssetConfig configures image asset downloads.
type AssetConfig struct {
	Dir          string  `yaml:"dir"`
	PublicPrefix string  `yaml:"public_prefix"`
	Format       string  `yaml:"format"`
	Scale        float64 `yaml:"scale"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:      8080,
		MaxNodes:  250_000,
		CacheSize: 64,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Assets: AssetConfig{
			Dir:          "assets/images",
			PublicPrefix: "/assets/images",
			Format:       "png",
			Scale:        2,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (or
// DefaultFile when path is empty), then the environment.
//
// A missing DefaultFile is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	file := path
	if file == "" {
		file = DefaultFile
	}

	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", file, err)
		}
	case errors.Is(err, os.ErrNotExist) && path == "":
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays FIGMA_ACCESS_TOKEN (or the older FIGMA_TOKEN) and PORT.
func (c *Config) applyEnv() error {
	if v := getEnv("FIGMA_ACCESS_TOKEN", os.Getenv("FIGMA_TOKEN")); v != "" {
		c.Token = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	return nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
