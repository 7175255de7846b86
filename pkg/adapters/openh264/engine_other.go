//go:build !darwin && !linux

package openh264

import (
	"fmt"

	"github.com/user/h264grab/pkg/ports"
)

// Engine is a placeholder on platforms where the library cannot be loaded.
type Engine struct {
	opts Options
}

// New creates an engine that always fails to create.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Name returns "openh264".
func (e *Engine) Name() string { return "openh264" }

// LibraryPath returns an empty string.
func (e *Engine) LibraryPath() string { return "" }

// Create reports ErrPlatformNotSupported.
func (e *Engine) Create() error {
	return fmt.Errorf("%w: %w", ports.ErrMissingCapability, ErrPlatformNotSupported)
}

func (e *Engine) Initialize(cfg ports.EngineConfig) error { return ErrPlatformNotSupported }

func (e *Engine) SetTraceLevel(level ports.TraceLevel) error { return ErrPlatformNotSupported }

func (e *Engine) Decode(nal []byte) (ports.DecodeResult, error) {
	return ports.DecodeResult{}, ErrPlatformNotSupported
}

func (e *Engine) Uninitialize() error { return ErrPlatformNotSupported }

func (e *Engine) Destroy() {}

// Available returns false.
func Available(opts Options) bool { return false }

var _ ports.DecoderEngine = (*Engine)(nil)
