// Package ffmpegengine decodes H.264 by piping the stream through an external
// ffmpeg process. It needs no native libraries in-process, which makes it the
// fallback when OpenH264 is not installed.
//
// Slices are held until the picture they belong to is known to be complete:
// the first slice of the next picture or an access unit boundary (AUD, SEI,
// parameter sets, end of sequence) has arrived, or the stream was flushed.
// ffmpeg then sees the whole stream submitted so far and returns the first
// picture as raw yuv420p. The engine delivers that one picture per stream.
package ffmpegengine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/Eyevinn/mp4ff/avc"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"

	"github.com/user/h264grab/pkg/annexb"
	"github.com/user/h264grab/pkg/picture"
	"github.com/user/h264grab/pkg/ports"
)

var (
	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffmpegengine: ffmpeg not found")

	// ErrNotInitialized is returned when Decode is called outside Initialize/Uninitialize.
	ErrNotInitialized = errors.New("ffmpegengine: not initialized")
)

// Status flags reported in ports.DecodeResult.Status.
const (
	// StatusNoDimensions means a slice arrived before any SPS.
	StatusNoDimensions = 1 << 0
	// StatusNoPicture means ffmpeg ran but produced no complete picture.
	StatusNoPicture = 1 << 1
)

// DefaultTimeout bounds a single ffmpeg invocation.
const DefaultTimeout = 30 * time.Second

// Options configures the engine.
type Options struct {
	// FFmpegPath overrides the lookup in PATH and well-known locations.
	FFmpegPath string
	// Timeout bounds each ffmpeg run (0 = DefaultTimeout).
	Timeout time.Duration
}

// Engine implements ports.DecoderEngine with an ffmpeg subprocess.
type Engine struct {
	opts        Options
	ffmpegPath  string
	loglevel    string
	concealment bool
	initialized bool

	pending   []byte
	slices    int // slices in pending
	delivered bool
	width     int
	height    int
	frame     []byte
	stderr    bytes.Buffer
}

// New creates an engine. Nothing is resolved until Create.
func New(opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Engine{opts: opts, loglevel: "quiet"}
}

// Name returns "ffmpeg".
func (e *Engine) Name() string {
	return "ffmpeg"
}

// Create locates the ffmpeg binary.
func (e *Engine) Create() error {
	path, err := FindFFmpeg(e.opts.FFmpegPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ports.ErrMissingCapability, err)
	}
	e.ffmpegPath = path
	return nil
}

// Initialize prepares an empty decoding state.
func (e *Engine) Initialize(cfg ports.EngineConfig) error {
	if e.ffmpegPath == "" {
		return fmt.Errorf("ffmpegengine: initialize before create")
	}
	e.concealment = cfg.ErrorConcealment
	e.initialized = true
	e.pending = e.pending[:0]
	e.slices = 0
	e.delivered = false
	e.width, e.height = 0, 0
	return nil
}

// SetTraceLevel maps the level onto ffmpeg's -loglevel.
func (e *Engine) SetTraceLevel(level ports.TraceLevel) error {
	e.loglevel = ffmpegLogLevel(level)
	return nil
}

func ffmpegLogLevel(level ports.TraceLevel) string {
	switch {
	case level <= ports.TraceQuiet:
		return "quiet"
	case level <= ports.TraceError:
		return "error"
	case level <= ports.TraceWarning:
		return "warning"
	case level <= ports.TraceInfo:
		return "info"
	case level <= ports.TraceDebug:
		return "debug"
	default:
		return "trace"
	}
}

// Decode appends the unit to the pending stream. A unit that starts a new
// access unit after pending slices triggers an ffmpeg run on the stream
// before it; the unit itself is held for later.
func (e *Engine) Decode(nal []byte) (ports.DecodeResult, error) {
	if !e.initialized {
		return ports.DecodeResult{}, ErrNotInitialized
	}

	unit := annexb.Unit{Data: nal}

	var res ports.DecodeResult
	if e.slices > 0 && !e.delivered && startsAccessUnit(unit) {
		var err error
		if res, err = e.decodePending(); err != nil {
			return ports.DecodeResult{}, err
		}
	}

	e.pending = append(e.pending, nal...)
	switch {
	case unit.Type() == h264.NALUTypeSPS:
		// A broken SPS is left for ffmpeg to reject.
		if sps, err := avc.ParseSPSNALUnit(bytes.TrimRight(unit.Payload(), "\x00"), false); err == nil {
			e.width, e.height = int(sps.Width), int(sps.Height)
		}
	case unit.IsVCL():
		e.slices++
	}
	return res, nil
}

// Flush decodes the slices still pending at the end of the stream.
func (e *Engine) Flush() (ports.DecodeResult, error) {
	if !e.initialized {
		return ports.DecodeResult{}, ErrNotInitialized
	}
	if e.slices == 0 || e.delivered {
		return ports.DecodeResult{}, nil
	}
	return e.decodePending()
}

// startsAccessUnit reports whether u cannot belong to the picture of the
// slices before it.
func startsAccessUnit(u annexb.Unit) bool {
	switch t := u.Type(); t {
	case h264.NALUTypeNonIDR, h264.NALUTypeDataPartitionA, h264.NALUTypeIDR:
		// first_mb_in_slice is the leading ue(v) of the slice header; it is
		// zero exactly when its first bit is set.
		p := u.Payload()
		return len(p) > 1 && p[1]&0x80 != 0
	case h264.NALUTypeSEI, h264.NALUTypeSPS, h264.NALUTypePPS,
		h264.NALUTypeAccessUnitDelimiter, h264.NALUTypeEndOfSequence, h264.NALUTypeEndOfStream:
		return true
	default:
		return t >= h264.NALUTypePrefix && t <= h264.NALUTypeReserved18
	}
}

func (e *Engine) decodePending() (ports.DecodeResult, error) {
	if e.width == 0 || e.height == 0 {
		return ports.DecodeResult{Status: StatusNoDimensions}, nil
	}

	ok, err := e.run()
	if err != nil {
		return ports.DecodeResult{}, err
	}
	if !ok {
		return ports.DecodeResult{Status: StatusNoPicture}, nil
	}
	e.delivered = true

	cw := (e.width + 1) / 2
	ch := (e.height + 1) / 2
	ySize := e.width * e.height
	cSize := cw * ch
	return ports.DecodeResult{
		BufferReady: true,
		Info: ports.BufferInfo{
			Width:   e.width,
			Height:  e.height,
			Format:  picture.FormatI420,
			Strides: [2]int{e.width, cw},
		},
		Planes: [3][]byte{
			e.frame[:ySize:ySize],
			e.frame[ySize : ySize+cSize : ySize+cSize],
			e.frame[ySize+cSize : ySize+2*cSize : ySize+2*cSize],
		},
	}, nil
}

// run feeds the pending stream to ffmpeg. It returns false when ffmpeg could
// not produce a full picture, which is not an error at this point of the
// stream. Failing to start the process is.
func (e *Engine) run() (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.opts.Timeout)
	defer cancel()

	args := []string{"-hide_banner", "-loglevel", e.loglevel}
	if !e.concealment {
		args = append(args, "-ec", "0")
	}
	args = append(args,
		"-f", "h264",
		"-i", "pipe:0",
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", "yuv420p",
		"pipe:1",
	)

	var stdout bytes.Buffer
	e.stderr.Reset()
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	cmd.Stdin = bytes.NewReader(e.pending)
	cmd.Stdout = &stdout
	cmd.Stderr = &e.stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			return false, nil
		}
		return false, fmt.Errorf("ffmpegengine: run ffmpeg: %w", err)
	}

	cw := (e.width + 1) / 2
	ch := (e.height + 1) / 2
	need := e.width*e.height + 2*cw*ch
	if stdout.Len() < need {
		return false, nil
	}
	e.frame = append(e.frame[:0], stdout.Bytes()[:need]...)
	return true, nil
}

// Stderr returns the diagnostics of the last ffmpeg run.
func (e *Engine) Stderr() string {
	return strings.TrimSpace(e.stderr.String())
}

// Uninitialize drops the pending stream.
func (e *Engine) Uninitialize() error {
	e.initialized = false
	e.pending = nil
	e.slices = 0
	return nil
}

// Destroy forgets the binary and releases buffers.
func (e *Engine) Destroy() {
	e.ffmpegPath = ""
	e.frame = nil
}

// FindFFmpeg searches for ffmpeg. A non-empty custom path must exist; an
// empty one means PATH, then common install locations.
func FindFFmpeg(customPath string) (string, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return customPath, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrFFmpegNotFound, customPath)
	}

	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonPaths []string
	if runtime.GOOS == "windows" {
		commonPaths = []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	} else {
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/opt/homebrew/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}
	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrFFmpegNotFound
}

// Available reports whether an ffmpeg binary can be found.
func Available(customPath string) bool {
	_, err := FindFFmpeg(customPath)
	return err == nil
}

var (
	_ ports.DecoderEngine = (*Engine)(nil)
	_ ports.Flusher       = (*Engine)(nil)
)
