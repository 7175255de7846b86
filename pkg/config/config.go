// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/user/h264grab/pkg/orchestrator"
	"github.com/user/h264grab/pkg/ports"
)

// Config represents the full configuration for h264grab.
type Config struct {
	// Input/Output
	InputPath  string `yaml:"input"`
	OutputPath string `yaml:"output"`

	// Decoding
	Engine           string `yaml:"engine"`
	OpenH264Library  string `yaml:"openh264_lib"`
	FFmpegPath       string `yaml:"ffmpeg_path"`
	TraceLevel       string `yaml:"trace_level"`
	ErrorConcealment bool   `yaml:"error_concealment"`

	// Output raster
	Format   string `yaml:"format"`
	Quality  int    `yaml:"quality"`
	MaxWidth int    `yaml:"max_width"`
	Annotate bool   `yaml:"annotate"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`

	// Report
	ReportPath string `yaml:"report"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		OutputPath: "frame.ppm",

		Engine:           "auto",
		TraceLevel:       "quiet",
		ErrorConcealment: false,

		Quality: 90,

		LogLevel: "info",

		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file. Keys missing from the
// file keep their default values.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// RasterFormat returns the output format: the explicit format when set,
// otherwise the one implied by the output extension, otherwise PPM.
func (c Config) RasterFormat() (ports.RasterFormat, error) {
	if c.Format != "" {
		return ports.ParseRasterFormat(c.Format)
	}
	if f, err := ports.RasterFormatFromPath(c.OutputPath); err == nil {
		return f, nil
	}
	return ports.FormatPPM, nil
}

// Validate checks the values that cannot be represented in the target types.
func (c Config) Validate() error {
	if _, err := c.RasterFormat(); err != nil {
		return err
	}
	if _, err := ports.ParseTraceLevel(c.TraceLevel); err != nil {
		return err
	}
	if c.Quality < 0 || c.Quality > 100 {
		return fmt.Errorf("quality %d out of range 0-100", c.Quality)
	}
	if c.MaxWidth < 0 {
		return fmt.Errorf("max width %d is negative", c.MaxWidth)
	}
	return nil
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
// Invalid values (see Validate) fall back to their defaults.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	format, err := c.RasterFormat()
	if err != nil {
		format = ports.FormatPPM
	}
	trace, err := ports.ParseTraceLevel(c.TraceLevel)
	if err != nil {
		trace = ports.TraceQuiet
	}

	return orchestrator.Config{
		InputPath:  c.InputPath,
		OutputPath: c.OutputPath,

		Engine:           c.Engine,
		TraceLevel:       trace,
		ErrorConcealment: c.ErrorConcealment,

		Format:   format,
		Quality:  c.Quality,
		MaxWidth: c.MaxWidth,
		Annotate: c.Annotate,

		ReportPath: c.ReportPath,
	}
}
