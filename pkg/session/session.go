// Package session owns the lifecycle of a decoding engine handle and turns
// its per-unit output into pictures.
package session

import (
	"errors"
	"fmt"

	"github.com/user/h264grab/pkg/picture"
	"github.com/user/h264grab/pkg/ports"
)

var (
	// ErrEngineCreateFailed is returned when the engine cannot provide a handle.
	ErrEngineCreateFailed = errors.New("session: engine create failed")

	// ErrEngineInitFailed is returned when the engine rejects its configuration.
	ErrEngineInitFailed = errors.New("session: engine initialize failed")

	// ErrMissingCapability is returned when an engine entry point is absent.
	ErrMissingCapability = ports.ErrMissingCapability

	// ErrClosed is returned by Decode after Close.
	ErrClosed = errors.New("session: decode after close")

	// ErrFailed is returned by Decode after the engine reported a hard failure.
	ErrFailed = errors.New("session: engine failed")
)

// State is the lifecycle state of a Session.
type State int

const (
	StateCreated State = iota
	StateInitialized
	StateFailed
	StateClosed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config configures a Session.
type Config struct {
	Engine     ports.EngineConfig
	TraceLevel ports.TraceLevel
}

// DefaultConfig returns a Config that keeps the engine quiet.
func DefaultConfig() Config {
	return Config{
		TraceLevel: ports.TraceQuiet,
	}
}

// Session wraps one decoding engine handle.
//
// A Session is not safe for concurrent use: exactly one call may be in
// flight at a time. Pictures returned by Decode borrow engine memory and
// become invalid on the next Decode or Close.
type Session struct {
	engine ports.DecoderEngine
	logger ports.Logger
	state  State
	lease  *picture.Lease
	units  int
}

// New creates an engine handle, initializes it and applies the trace level.
// On failure the returned error wraps ErrEngineCreateFailed,
// ErrEngineInitFailed or ErrMissingCapability, and no handle is left open.
func New(engine ports.DecoderEngine, cfg Config, logger ports.Logger) (*Session, error) {
	log := logger.WithComponent("session")

	if err := engine.Create(); err != nil {
		return nil, wrapEngineError(ErrEngineCreateFailed, err)
	}

	if err := engine.Initialize(cfg.Engine); err != nil {
		engine.Destroy()
		return nil, wrapEngineError(ErrEngineInitFailed, err)
	}

	// Silencing the engine is best effort.
	if err := engine.SetTraceLevel(cfg.TraceLevel); err != nil {
		log.Warn("Could not set engine trace level: %v", err)
	}

	log.Debug("Engine %s initialized", engine.Name())

	return &Session{
		engine: engine,
		logger: log,
		state:  StateInitialized,
	}, nil
}

func wrapEngineError(kind, err error) error {
	if errors.Is(err, ErrMissingCapability) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// EngineName returns the name of the wrapped engine.
func (s *Session) EngineName() string {
	return s.engine.Name()
}

// Decode submits one NAL unit. It returns a picture when the engine has a
// complete one, and nil otherwise; nil is not an error.
func (s *Session) Decode(nal []byte) (*picture.Picture, error) {
	switch s.state {
	case StateClosed:
		return nil, ErrClosed
	case StateFailed:
		return nil, ErrFailed
	}

	s.lease.Expire()
	s.lease = nil
	s.units++

	res, err := s.engine.Decode(nal)
	return s.accept(res, err)
}

// Flush returns a picture the engine held back until the end of the stream.
// Engines that do not implement ports.Flusher never hold pictures, so Flush
// returns nil for them.
func (s *Session) Flush() (*picture.Picture, error) {
	switch s.state {
	case StateClosed:
		return nil, ErrClosed
	case StateFailed:
		return nil, ErrFailed
	}

	f, ok := s.engine.(ports.Flusher)
	if !ok {
		return nil, nil
	}

	s.lease.Expire()
	s.lease = nil

	res, err := f.Flush()
	return s.accept(res, err)
}

// accept turns an engine result into a picture leased until the next call.
func (s *Session) accept(res ports.DecodeResult, err error) (*picture.Picture, error) {
	if err != nil {
		s.state = StateFailed
		return nil, fmt.Errorf("%w: %w", ErrFailed, err)
	}

	if res.Status != 0 {
		s.logger.Debug("Unit %d: engine status 0x%x", s.units, res.Status)
	}

	if !res.BufferReady {
		return nil, nil
	}
	if res.Planes[0] == nil || res.Planes[1] == nil || res.Planes[2] == nil {
		s.logger.Debug("Unit %d: buffer ready without planes", s.units)
		return nil, nil
	}

	s.lease = picture.NewLease()
	pic := &picture.Picture{
		Width:   res.Info.Width,
		Height:  res.Info.Height,
		Format:  res.Info.Format,
		Strides: res.Info.Strides,
		Y:       res.Planes[0],
		U:       res.Planes[1],
		V:       res.Planes[2],
		Lease:   s.lease,
	}
	s.logger.Debug("Unit %d: picture %dx%d (strides %d/%d)", s.units, pic.Width, pic.Height, pic.Strides[0], pic.Strides[1])
	return pic, nil
}

// Close uninitializes and destroys the engine handle. It runs both steps even
// if a previous Decode failed. Closing twice is a no-op.
func (s *Session) Close() error {
	if s.state == StateClosed {
		return nil
	}

	s.lease.Expire()
	s.lease = nil
	s.state = StateClosed

	err := s.engine.Uninitialize()
	s.engine.Destroy()

	if err != nil {
		return fmt.Errorf("session: uninitialize: %w", err)
	}
	return nil
}
