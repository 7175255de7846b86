// Package main provides the CLI entry point for h264grab.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/h264grab/pkg/adapters/enginefactory"
	"github.com/user/h264grab/pkg/adapters/filesink"
	"github.com/user/h264grab/pkg/adapters/logger"
	"github.com/user/h264grab/pkg/adapters/nullsink"
	"github.com/user/h264grab/pkg/adapters/osfilesystem"
	"github.com/user/h264grab/pkg/adapters/rasterwriter"
	"github.com/user/h264grab/pkg/config"
	"github.com/user/h264grab/pkg/orchestrator"
	"github.com/user/h264grab/pkg/ports"
	"github.com/user/h264grab/pkg/stages/convert"
	"github.com/user/h264grab/pkg/stages/output"
)

var version = "dev"

// errMissingInput is returned when no input path was given.
var errMissingInput = errors.New("missing input path")

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp builds the command-line application.
func newApp() *cli.App {
	return &cli.App{
		Name:      "h264grab",
		Usage:     l10n.T("Decode the first frame of an H.264 stream into an image"),
		ArgsUsage: "<input-path> [<output-path>]",
		Version:   version,
		Flags:     grabFlags(),
		Action:    runGrab,
		Commands: []*cli.Command{
			unitsCommand(),
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("h264grab version %s", version))
					return nil
				},
			},
		},
		HideVersion: true,
	}
}

func grabFlags() []cli.Flag {
	defaults := config.Defaults()

	return []cli.Flag{
		// Decoding
		&cli.StringFlag{
			Name:     "engine",
			Aliases:  []string{"e"},
			Value:    defaults.Engine,
			Usage:    l10n.F("Decoding engine (%s)", strings.Join(enginefactory.Names(), ", ")),
			Category: l10n.T("Decoding"),
		},
		&cli.StringFlag{
			Name:     "openh264-lib",
			Usage:    l10n.T("Path to the OpenH264 shared library"),
			EnvVars:  []string{"OPENH264_LIB"},
			Category: l10n.T("Decoding"),
		},
		&cli.StringFlag{
			Name:     "ffmpeg-path",
			Usage:    l10n.T("Path to the ffmpeg executable"),
			Category: l10n.T("Decoding"),
		},
		&cli.StringFlag{
			Name:     "trace-level",
			Value:    defaults.TraceLevel,
			Usage:    l10n.T("Engine trace level (quiet, error, warning, info, debug, detail)"),
			Category: l10n.T("Decoding"),
		},
		&cli.BoolFlag{
			Name:     "concealment",
			Usage:    l10n.T("Enable engine error concealment"),
			Category: l10n.T("Decoding"),
		},

		// Output
		&cli.StringFlag{
			Name:     "format",
			Aliases:  []string{"f"},
			Usage:    l10n.T("Output format (ppm, png, jpeg, bmp, tiff; default: from extension)"),
			Category: l10n.T("Output"),
		},
		&cli.IntFlag{
			Name:     "quality",
			Value:    defaults.Quality,
			Usage:    l10n.T("JPEG quality (1-100)"),
			Category: l10n.T("Output"),
		},
		&cli.IntFlag{
			Name:     "max-width",
			Usage:    l10n.T("Downscale to at most this width (0 = keep size)"),
			Category: l10n.T("Output"),
		},
		&cli.BoolFlag{
			Name:     "annotate",
			Usage:    l10n.T("Draw size, engine and unit number along the bottom edge"),
			Category: l10n.T("Output"),
		},
		&cli.StringFlag{
			Name:     "report",
			Usage:    l10n.T("Write a run report to file (.json for JSON, Markdown otherwise)"),
			Category: l10n.T("Output"),
		},
		&cli.StringFlag{
			Name:     "config",
			Aliases:  []string{"c"},
			Usage:    l10n.T("YAML configuration file"),
			Category: l10n.T("Output"),
		},

		// Debug
		&cli.BoolFlag{
			Name:     "debug",
			Aliases:  []string{"d"},
			Usage:    l10n.T("Enable debug output"),
			Category: l10n.T("Debug"),
		},
		&cli.StringFlag{
			Name:     "debug-dir",
			Value:    defaults.DebugDir,
			Usage:    l10n.T("Directory for debug output"),
			Category: l10n.T("Debug"),
		},

		// Logging
		&cli.StringFlag{
			Name:     "log-level",
			Aliases:  []string{"l"},
			Value:    defaults.LogLevel,
			Usage:    l10n.T("Log level (debug, info, warn, error)"),
			Category: l10n.T("Logging"),
		},
		&cli.BoolFlag{
			Name:     "quiet",
			Aliases:  []string{"Q"},
			Usage:    l10n.T("Suppress all log output"),
			Category: l10n.T("Logging"),
		},
	}
}

// buildConfig layers the configuration file (if any), positional arguments
// and explicitly set flags over the defaults.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if c.NArg() > 0 {
		cfg.InputPath = c.Args().Get(0)
	}
	if c.NArg() > 1 {
		cfg.OutputPath = c.Args().Get(1)
	}

	if c.IsSet("engine") {
		cfg.Engine = c.String("engine")
	}
	if c.IsSet("openh264-lib") {
		cfg.OpenH264Library = c.String("openh264-lib")
	}
	if c.IsSet("ffmpeg-path") {
		cfg.FFmpegPath = c.String("ffmpeg-path")
	}
	if c.IsSet("trace-level") {
		cfg.TraceLevel = c.String("trace-level")
	}
	if c.IsSet("concealment") {
		cfg.ErrorConcealment = c.Bool("concealment")
	}
	if c.IsSet("format") {
		cfg.Format = c.String("format")
	}
	if c.IsSet("quality") {
		cfg.Quality = c.Int("quality")
	}
	if c.IsSet("max-width") {
		cfg.MaxWidth = c.Int("max-width")
	}
	if c.IsSet("annotate") {
		cfg.Annotate = c.Bool("annotate")
	}
	if c.IsSet("report") {
		cfg.ReportPath = c.String("report")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	if cfg.InputPath == "" {
		return cfg, errMissingInput
	}
	return cfg, cfg.Validate()
}

func newLogger(c *cli.Context, cfg config.Config) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
}

// runGrab executes the default action.
func runGrab(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if errors.Is(err, errMissingInput) {
		_ = cli.ShowAppHelp(c)
		return err
	}
	if err != nil {
		return err
	}

	log := newLogger(c, cfg)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, shutting down..."))
			cancel()
		case <-ctx.Done():
		}
	}()

	// Create adapters
	fs := osfilesystem.New()
	raster := rasterwriter.New()

	// Create debug sink
	var sink ports.DebugSink
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, raster)
	} else {
		sink = nullsink.New()
	}

	engineOpts := enginefactory.Options{
		OpenH264Library: cfg.OpenH264Library,
		FFmpegPath:      cfg.FFmpegPath,
	}
	engines := func(name string) (ports.DecoderEngine, error) {
		return enginefactory.New(name, engineOpts, log)
	}

	// Create orchestrator
	orch := orchestrator.New(
		engines,
		convert.NewStage(raster, log),
		output.NewStage(raster, log),
		fs,
		sink,
		log,
	)

	orchConfig := cfg.ToOrchestratorConfig()
	orchConfig.Version = version

	result, err := orch.Run(ctx, orchConfig)
	if err != nil {
		return err
	}

	if !result.Decoded {
		w := c.App.Writer
		if cfg.OutputPath == osfilesystem.StdioPath {
			w = c.App.ErrWriter
		}
		fmt.Fprintln(w, l10n.F("No frame decoded from %s", cfg.InputPath))
	}
	return nil
}
