package ports

import (
	"errors"
	"fmt"
	"strings"

	"github.com/user/h264grab/pkg/picture"
)

// ErrMissingCapability is returned by engines when an entry point they depend
// on is absent (an unresolved symbol, a null vtable slot, a missing binary).
var ErrMissingCapability = errors.New("engine: missing capability")

// TraceLevel is the verbosity of the decoding engine's own diagnostics.
// Values follow the OpenH264 WELS_LOG_* constants; other engines map them to
// their closest level.
type TraceLevel int

const (
	TraceQuiet   TraceLevel = 0
	TraceError   TraceLevel = 1
	TraceWarning TraceLevel = 2
	TraceInfo    TraceLevel = 4
	TraceDebug   TraceLevel = 8
	TraceDetail  TraceLevel = 16
)

// String returns the string representation of the trace level.
func (l TraceLevel) String() string {
	switch l {
	case TraceQuiet:
		return "quiet"
	case TraceError:
		return "error"
	case TraceWarning:
		return "warning"
	case TraceInfo:
		return "info"
	case TraceDebug:
		return "debug"
	case TraceDetail:
		return "detail"
	default:
		return fmt.Sprintf("trace(%d)", int(l))
	}
}

// ParseTraceLevel parses a trace level name.
func ParseTraceLevel(s string) (TraceLevel, error) {
	switch strings.ToLower(s) {
	case "", "quiet":
		return TraceQuiet, nil
	case "error":
		return TraceError, nil
	case "warning", "warn":
		return TraceWarning, nil
	case "info":
		return TraceInfo, nil
	case "debug":
		return TraceDebug, nil
	case "detail":
		return TraceDetail, nil
	default:
		return TraceQuiet, fmt.Errorf("unknown trace level %q", s)
	}
}

// EngineConfig is handed to DecoderEngine.Initialize.
type EngineConfig struct {
	// ErrorConcealment enables the engine's concealment of corrupt slices.
	ErrorConcealment bool
	// CPULoad is a hint for engines that scale their work (0 = engine default).
	CPULoad int
}

// BufferInfo describes the picture held in a DecodeResult. It carries only
// the fields the pipeline reads.
type BufferInfo struct {
	Width   int
	Height  int
	Format  picture.Format
	Strides [2]int // luma, chroma
}

// DecodeResult is the outcome of a single DecoderEngine.Decode call.
type DecodeResult struct {
	// Status holds the engine's raw decoding state flags (0 = no error).
	// Non-zero values are informational; hard failures are returned as errors.
	Status int
	// BufferReady reports that a complete picture is available.
	BufferReady bool
	// Info describes the picture when BufferReady is set.
	Info BufferInfo
	// Planes are the Y, U and V planes. They point into engine-owned memory
	// that is reused on the next call.
	Planes [3][]byte
}

// DecoderEngine is the boundary to an external H.264 decoding engine.
//
// Calls are made in the order Create, Initialize, SetTraceLevel, Decode...,
// Uninitialize, Destroy. Engines are not safe for concurrent use.
type DecoderEngine interface {
	// Name identifies the engine in logs and reports.
	Name() string

	// Create acquires a decoder handle.
	Create() error

	// Initialize configures the handle for decoding.
	Initialize(cfg EngineConfig) error

	// SetTraceLevel adjusts the engine's diagnostic output.
	SetTraceLevel(level TraceLevel) error

	// Decode submits one NAL unit (start code included).
	Decode(nal []byte) (DecodeResult, error)

	// Uninitialize undoes Initialize.
	Uninitialize() error

	// Destroy releases the handle acquired by Create.
	Destroy()
}

// Flusher is implemented by engines that hold a picture back until they know
// it is complete. Flush is called once after the last unit and returns the
// held picture, if any, in the same form as Decode.
type Flusher interface {
	Flush() (DecodeResult, error)
}
