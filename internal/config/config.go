// Package config holds the application configuration for synospot,
// loadable from files, environment variables, and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/synospot/synospot/internal/pipeline"
)

const infoLevel = "info"

// Config represents the complete configuration for the synospot
// application, covering the chart and batch commands.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Recognition RecognitionConfig `mapstructure:"recognition" yaml:"recognition" json:"recognition"`
	Mask        MaskConfig        `mapstructure:"mask" yaml:"mask" json:"mask"`
	Detection   DetectionConfig   `mapstructure:"detection" yaml:"detection" json:"detection"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output" json:"output"`
	Batch       BatchConfig       `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// RecognitionConfig contains text recognition settings.
type RecognitionConfig struct {
	Language      string        `mapstructure:"language" yaml:"language" json:"language"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" yaml:"retry_delay" json:"retry_delay"`
	MinConfidence float64       `mapstructure:"min_confidence" yaml:"min_confidence" json:"min_confidence"`
}

// MaskConfig contains binarization settings.
type MaskConfig struct {
	Threshold     int `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
	ScanThreshold int `mapstructure:"scan_threshold" yaml:"scan_threshold" json:"scan_threshold"`
}

// DetectionConfig contains detection geometry settings.
type DetectionConfig struct {
	MinPressure     int     `mapstructure:"min_pressure" yaml:"min_pressure" json:"min_pressure"`
	MaxPressure     int     `mapstructure:"max_pressure" yaml:"max_pressure" json:"max_pressure"`
	MaxLinkDistance float64 `mapstructure:"max_link_distance" yaml:"max_link_distance" json:"max_link_distance"`
}

// OutputConfig contains output settings.
type OutputConfig struct {
	Format     string `mapstructure:"format" yaml:"format" json:"format"`
	File       string `mapstructure:"file" yaml:"file" json:"file"`
	OverlayDir string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	InputDir        string `mapstructure:"input_dir" yaml:"input_dir" json:"input_dir"`
	Recursive       bool   `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	Pattern         string `mapstructure:"pattern" yaml:"pattern" json:"pattern"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() Config {
	p := pipeline.DefaultConfig()
	return Config{
		LogLevel: infoLevel,
		Verbose:  false,
		Recognition: RecognitionConfig{
			Language:      p.Tesseract.Language,
			RetryDelay:    p.RetryDelay,
			MinConfidence: p.Pressure.MinConfidence,
		},
		Mask: MaskConfig{
			Threshold:     int(p.Mask.Threshold),
			ScanThreshold: int(p.Mask.ScanThreshold),
		},
		Detection: DetectionConfig{
			MinPressure:     p.Pressure.MinValue,
			MaxPressure:     p.Pressure.MaxValue,
			MaxLinkDistance: p.Associate.MaxDistance,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Batch: BatchConfig{
			InputDir:        "masks",
			ContinueOnError: true,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"json", "csv"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)",
			c.Output.Format, strings.Join(validFormats, ", "))
	}

	if c.Mask.Threshold < 1 || c.Mask.Threshold > 255 {
		return fmt.Errorf("invalid mask threshold: %d (must be between 1 and 255)", c.Mask.Threshold)
	}
	if c.Mask.ScanThreshold < 1 || c.Mask.ScanThreshold > 255 {
		return fmt.Errorf("invalid scan threshold: %d (must be between 1 and 255)", c.Mask.ScanThreshold)
	}

	if c.Recognition.MinConfidence < 0 || c.Recognition.MinConfidence > 1 {
		return fmt.Errorf("invalid recognition min confidence: %g (must be between 0.0 and 1.0)",
			c.Recognition.MinConfidence)
	}
	if c.Recognition.RetryDelay < 0 {
		return fmt.Errorf("invalid retry delay: %s (must not be negative)", c.Recognition.RetryDelay)
	}

	if c.Detection.MinPressure >= c.Detection.MaxPressure {
		return fmt.Errorf("invalid pressure band: [%d, %d]",
			c.Detection.MinPressure, c.Detection.MaxPressure)
	}
	if c.Detection.MaxLinkDistance <= 0 {
		return fmt.Errorf("invalid max link distance: %g (must be positive)", c.Detection.MaxLinkDistance)
	}

	return nil
}

// ToPipelineConfig converts the config to the internal pipeline
// configuration format.
func (c *Config) ToPipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Tesseract.Language = c.Recognition.Language
	cfg.RetryDelay = c.Recognition.RetryDelay
	cfg.Mask.Threshold = uint8(c.Mask.Threshold)
	cfg.Mask.ScanThreshold = uint8(c.Mask.ScanThreshold)
	cfg.Pressure.MinValue = c.Detection.MinPressure
	cfg.Pressure.MaxValue = c.Detection.MaxPressure
	cfg.Pressure.MinConfidence = c.Recognition.MinConfidence
	cfg.Associate.MaxDistance = c.Detection.MaxLinkDistance
	return cfg
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
