package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/neurobin-systems/neurobin/internal/imaging"
)

// Config holds the operator-tunable settings for the classification flow.
// Everything here has a sensible default; a YAML file and environment
// variables can retune it without touching the flow logic.
type Config struct {
	Port              string `yaml:"port"`
	Provider          string `yaml:"provider"`
	Model             string `yaml:"model"`
	MaxImageDimension int    `yaml:"max_image_dimension"`
	JPEGQuality       int    `yaml:"jpeg_quality"`
	MaxUploadBytes    int64  `yaml:"max_upload_bytes"`
	StaticDir         string `yaml:"static_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:              "8888",
		Provider:          "gemini",
		Model:             "",
		MaxImageDimension: imaging.DefaultMaxDimension,
		JPEGQuality:       imaging.DefaultJPEGQuality,
		MaxUploadBytes:    10 * 1024 * 1024,
		StaticDir:         "web",
	}
}

// Load builds a configuration from defaults, overlaid by the YAML file at
// path (when non-empty), overlaid by environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.MaxImageDimension <= 0 {
		return nil, fmt.Errorf("max_image_dimension must be positive, got %d", cfg.MaxImageDimension)
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		return nil, fmt.Errorf("jpeg_quality must be in (0, 100], got %d", cfg.JPEGQuality)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("NEUROBIN_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("NEUROBIN_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("NEUROBIN_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("NEUROBIN_STATIC_DIR"); v != "" {
		c.StaticDir = v
	}
}

// Normalizer builds the image normalizer for this configuration.
func (c *Config) Normalizer() *imaging.Normalizer {
	return &imaging.Normalizer{
		MaxDimension: c.MaxImageDimension,
		Quality:      c.JPEGQuality,
	}
}
