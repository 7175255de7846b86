package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/user/h264grab/pkg/ports"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.OutputPath != "frame.ppm" {
		t.Errorf("expected default output frame.ppm, got %s", cfg.OutputPath)
	}
	if cfg.Engine != "auto" {
		t.Errorf("expected engine auto, got %s", cfg.Engine)
	}
	if cfg.ErrorConcealment {
		t.Error("expected error concealment off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h264grab.yaml")
	content := `
input: clip.264
output: out/frame.png
engine: ffmpeg
ffmpeg_path: /opt/ffmpeg/bin/ffmpeg
trace_level: warning
error_concealment: true
max_width: 640
annotate: true
report: out/report.md
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.InputPath != "clip.264" || cfg.OutputPath != "out/frame.png" {
		t.Errorf("unexpected paths %q %q", cfg.InputPath, cfg.OutputPath)
	}
	if cfg.Engine != "ffmpeg" || cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("unexpected engine settings %q %q", cfg.Engine, cfg.FFmpegPath)
	}
	if !cfg.ErrorConcealment {
		t.Error("expected error concealment on")
	}
	// Keys missing from the file keep their defaults.
	if cfg.Quality != 90 || cfg.LogLevel != "info" || cfg.DebugDir != "./debug" {
		t.Errorf("expected defaults to survive, got %+v", cfg)
	}

	orch := cfg.ToOrchestratorConfig()
	if orch.Format != ports.FormatPNG {
		t.Errorf("expected png from the output extension, got %s", orch.Format)
	}
	if orch.TraceLevel != ports.TraceWarning {
		t.Errorf("expected warning trace level, got %s", orch.TraceLevel)
	}
	if orch.MaxWidth != 640 || !orch.Annotate || orch.ReportPath != "out/report.md" {
		t.Errorf("unexpected orchestrator config %+v", orch)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("engine: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestRasterFormat(t *testing.T) {
	tests := []struct {
		name   string
		format string
		output string
		want   ports.RasterFormat
		ok     bool
	}{
		{"explicit wins", "jpeg", "frame.png", ports.FormatJPEG, true},
		{"from extension", "", "frame.tif", ports.FormatTIFF, true},
		{"unknown extension", "", "frame.raw", ports.FormatPPM, true},
		{"stdout", "", "-", ports.FormatPPM, true},
		{"unknown explicit", "webp", "frame.png", ports.FormatPPM, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Format = tt.format
			cfg.OutputPath = tt.output

			got, err := cfg.RasterFormat()
			if (err == nil) != tt.ok {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad format", func(c *Config) { c.Format = "gif" }},
		{"bad trace level", func(c *Config) { c.TraceLevel = "loud" }},
		{"quality too high", func(c *Config) { c.Quality = 101 }},
		{"negative max width", func(c *Config) { c.MaxWidth = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
