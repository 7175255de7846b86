//go:build astiav

package astiavengine

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/user/h264grab/pkg/picture"
	"github.com/user/h264grab/pkg/ports"
)

// Built reports whether the engine is compiled in.
const Built = true

// Engine implements ports.DecoderEngine with libavcodec's H.264 decoder.
type Engine struct {
	codec        *astiav.Codec
	codecContext *astiav.CodecContext
	packet       *astiav.Packet
	frame        *astiav.Frame
	buf          []byte
}

// New creates an engine.
func New() *Engine {
	return &Engine{}
}

// Name returns "astiav".
func (e *Engine) Name() string {
	return "astiav"
}

// Create finds the decoder and allocates its context.
func (e *Engine) Create() error {
	e.codec = astiav.FindDecoder(astiav.CodecIDH264)
	if e.codec == nil {
		return fmt.Errorf("%w: libavcodec has no H.264 decoder", ports.ErrMissingCapability)
	}
	e.codecContext = astiav.AllocCodecContext(e.codec)
	if e.codecContext == nil {
		return errors.New("astiavengine: alloc codec context failed")
	}
	return nil
}

// Initialize opens the codec.
func (e *Engine) Initialize(cfg ports.EngineConfig) error {
	options := astiav.NewDictionary()
	defer options.Free()
	if !cfg.ErrorConcealment {
		if err := options.Set("ec", "0", 0); err != nil {
			return fmt.Errorf("astiavengine: set ec: %w", err)
		}
	}
	if cfg.CPULoad > 0 {
		if err := options.Set("threads", fmt.Sprint(cfg.CPULoad), 0); err != nil {
			return fmt.Errorf("astiavengine: set threads: %w", err)
		}
	}

	if err := e.codecContext.Open(e.codec, options); err != nil {
		return fmt.Errorf("astiavengine: open codec: %w", err)
	}
	e.packet = astiav.AllocPacket()
	e.frame = astiav.AllocFrame()
	return nil
}

// SetTraceLevel maps the level onto the global libav log level.
func (e *Engine) SetTraceLevel(level ports.TraceLevel) error {
	astiav.SetLogLevel(logLevel(level))
	return nil
}

func logLevel(level ports.TraceLevel) astiav.LogLevel {
	switch {
	case level <= ports.TraceQuiet:
		return astiav.LogLevelQuiet
	case level <= ports.TraceError:
		return astiav.LogLevelError
	case level <= ports.TraceWarning:
		return astiav.LogLevelWarning
	case level <= ports.TraceInfo:
		return astiav.LogLevelInfo
	case level <= ports.TraceDebug:
		return astiav.LogLevelDebug
	default:
		return astiav.LogLevelTrace
	}
}

// Decode sends one unit and tries to receive a frame. Decoder errors on a
// single packet are reported as status, as libavcodec recovers on the next
// keyframe.
func (e *Engine) Decode(nal []byte) (ports.DecodeResult, error) {
	if e.packet == nil {
		return ports.DecodeResult{}, errors.New("astiavengine: not initialized")
	}

	e.packet.Unref()
	if err := e.packet.FromData(nal); err != nil {
		return ports.DecodeResult{}, fmt.Errorf("astiavengine: packet from data: %w", err)
	}
	if err := e.codecContext.SendPacket(e.packet); err != nil && !errors.Is(err, astiav.ErrEagain) {
		return ports.DecodeResult{Status: 1}, nil
	}

	e.frame.Unref()
	if err := e.codecContext.ReceiveFrame(e.frame); err != nil {
		if errors.Is(err, astiav.ErrEagain) || errors.Is(err, astiav.ErrEof) {
			return ports.DecodeResult{}, nil
		}
		return ports.DecodeResult{Status: 1}, nil
	}

	switch e.frame.PixelFormat() {
	case astiav.PixelFormatYuv420P, astiav.PixelFormatYuvj420P:
	default:
		return ports.DecodeResult{}, fmt.Errorf("astiavengine: unsupported pixel format %s", e.frame.PixelFormat())
	}

	data, err := e.frame.Data().Bytes(1)
	if err != nil {
		return ports.DecodeResult{}, fmt.Errorf("astiavengine: frame data: %w", err)
	}
	e.buf = append(e.buf[:0], data...)

	width, height := e.frame.Width(), e.frame.Height()
	cw, ch := (width+1)/2, (height+1)/2
	ySize, cSize := width*height, cw*ch
	if len(e.buf) < ySize+2*cSize {
		return ports.DecodeResult{}, fmt.Errorf("astiavengine: short frame buffer %d", len(e.buf))
	}

	return ports.DecodeResult{
		BufferReady: true,
		Info: ports.BufferInfo{
			Width:   width,
			Height:  height,
			Format:  picture.FormatI420,
			Strides: [2]int{width, cw},
		},
		Planes: [3][]byte{
			e.buf[:ySize],
			e.buf[ySize : ySize+cSize],
			e.buf[ySize+cSize : ySize+2*cSize],
		},
	}, nil
}

// Uninitialize frees the packet and frame.
func (e *Engine) Uninitialize() error {
	if e.frame != nil {
		e.frame.Free()
		e.frame = nil
	}
	if e.packet != nil {
		e.packet.Free()
		e.packet = nil
	}
	return nil
}

// Destroy frees the codec context.
func (e *Engine) Destroy() {
	if e.codecContext != nil {
		e.codecContext.Free()
		e.codecContext = nil
	}
	e.buf = nil
}

var _ ports.DecoderEngine = (*Engine)(nil)
