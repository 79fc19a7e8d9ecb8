package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", cfg.Provider)
	}
	if cfg.MaxImageDimension != 512 {
		t.Errorf("max_image_dimension = %d, want 512", cfg.MaxImageDimension)
	}
	if cfg.JPEGQuality != 90 {
		t.Errorf("jpeg_quality = %d, want 90", cfg.JPEGQuality)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neurobin.yaml")
	content := "provider: ollama\nmodel: llava\nmax_image_dimension: 256\nport: \"9000\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider != "ollama" {
		t.Errorf("provider = %q, want ollama", cfg.Provider)
	}
	if cfg.Model != "llava" {
		t.Errorf("model = %q, want llava", cfg.Model)
	}
	if cfg.MaxImageDimension != 256 {
		t.Errorf("max_image_dimension = %d, want 256", cfg.MaxImageDimension)
	}
	// Unset keys keep their defaults.
	if cfg.JPEGQuality != 90 {
		t.Errorf("jpeg_quality = %d, want default 90", cfg.JPEGQuality)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("NEUROBIN_PROVIDER", "openai")
	t.Setenv("NEUROBIN_PORT", "7777")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("provider = %q, want openai", cfg.Provider)
	}
	if cfg.Port != "7777" {
		t.Errorf("port = %q, want 7777", cfg.Port)
	}
}

func TestLoadRejectsInvalidTunables(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "zero dimension", content: "max_image_dimension: 0\n"},
		{name: "quality above 100", content: "jpeg_quality: 150\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "neurobin.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestNormalizerUsesConfiguredBounds(t *testing.T) {
	cfg := Default()
	cfg.MaxImageDimension = 128
	cfg.JPEGQuality = 75

	n := cfg.Normalizer()
	if n.MaxDimension != 128 || n.Quality != 75 {
		t.Errorf("normalizer = %+v, want MaxDimension 128 Quality 75", n)
	}
}
