package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, 120, cfg.Mask.Threshold)
	assert.Equal(t, 100, cfg.Mask.ScanThreshold)
	assert.Equal(t, 950, cfg.Detection.MinPressure)
	assert.Equal(t, 1050, cfg.Detection.MaxPressure)
	assert.InDelta(t, 100, cfg.Detection.MaxLinkDistance, 1e-9)
	assert.Equal(t, 2*time.Second, cfg.Recognition.RetryDelay)
	assert.Equal(t, "json", cfg.Output.Format)

	require.NoError(t, cfg.Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad output format", func(c *Config) { c.Output.Format = "xml" }},
		{"zero mask threshold", func(c *Config) { c.Mask.Threshold = 0 }},
		{"oversized scan threshold", func(c *Config) { c.Mask.ScanThreshold = 300 }},
		{"confidence above one", func(c *Config) { c.Recognition.MinConfidence = 1.5 }},
		{"negative retry delay", func(c *Config) { c.Recognition.RetryDelay = -time.Second }},
		{"inverted pressure band", func(c *Config) { c.Detection.MinPressure = 1100 }},
		{"zero link distance", func(c *Config) { c.Detection.MaxLinkDistance = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestToPipelineConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mask.Threshold = 140
	cfg.Detection.MaxLinkDistance = 80
	cfg.Recognition.Language = "deu"

	p := cfg.ToPipelineConfig()
	assert.Equal(t, uint8(140), p.Mask.Threshold)
	assert.InDelta(t, 80, p.Associate.MaxDistance, 1e-9)
	assert.Equal(t, "deu", p.Tesseract.Language)
	// Untouched sections keep their defaults.
	assert.Equal(t, 20, p.System.GlyphOffset)
}

func TestLoader_DefaultsWithoutFile(t *testing.T) {
	l := NewLoaderWith(viper.New())
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Mask.Threshold)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestLoader_LoadWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synospot.yaml")
	content := []byte("log_level: debug\nmask:\n  threshold: 150\ndetection:\n  max_link_distance: 60\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	l := NewLoaderWith(viper.New())
	cfg, err := l.LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 150, cfg.Mask.Threshold)
	assert.InDelta(t, 60, cfg.Detection.MaxLinkDistance, 1e-9)
	// Unset keys fall back to defaults.
	assert.Equal(t, 100, cfg.Mask.ScanThreshold)
}

func TestLoader_LoadWithFileMissing(t *testing.T) {
	l := NewLoaderWith(viper.New())
	_, err := l.LoadWithFile("/no/such/synospot.yaml")
	assert.Error(t, err)
}

func TestLoader_InvalidFileFailsValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synospot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o600))

	l := NewLoaderWith(viper.New())
	_, err := l.LoadWithFile(path)
	assert.Error(t, err)
}
