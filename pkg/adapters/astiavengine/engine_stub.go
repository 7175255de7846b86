//go:build !astiav

package astiavengine

import (
	"fmt"

	"github.com/user/h264grab/pkg/ports"
)

// Built reports whether the engine is compiled in.
const Built = false

// Engine is the placeholder used without the astiav build tag.
type Engine struct{}

// New creates an engine that always fails to create.
func New() *Engine {
	return &Engine{}
}

// Name returns "astiav".
func (e *Engine) Name() string { return "astiav" }

// Create reports ErrNotBuilt.
func (e *Engine) Create() error {
	return fmt.Errorf("%w: %w", ports.ErrMissingCapability, ErrNotBuilt)
}

func (e *Engine) Initialize(cfg ports.EngineConfig) error { return ErrNotBuilt }

func (e *Engine) SetTraceLevel(level ports.TraceLevel) error { return ErrNotBuilt }

func (e *Engine) Decode(nal []byte) (ports.DecodeResult, error) {
	return ports.DecodeResult{}, ErrNotBuilt
}

func (e *Engine) Uninitialize() error { return nil }

func (e *Engine) Destroy() {}

var _ ports.DecoderEngine = (*Engine)(nil)
