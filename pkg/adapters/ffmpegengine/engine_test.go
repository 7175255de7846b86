package ffmpegengine

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/user/h264grab/pkg/annexb"
	"github.com/user/h264grab/pkg/ports"
)

// 352x288 high profile SPS.
var testSPS = []byte{
	0, 0, 0, 1,
	0x67, 0x64, 0x00, 0x0c, 0xac, 0x3b, 0x50, 0xb0,
	0x4b, 0x42, 0x00, 0x00, 0x03, 0x00, 0x02, 0x00,
	0x00, 0x03, 0x00, 0x3d, 0x08,
}

func TestFindFFmpegCustomPathMissing(t *testing.T) {
	_, err := FindFFmpeg(filepath.Join(t.TempDir(), "ffmpeg"))
	require.ErrorIs(t, err, ErrFFmpegNotFound)
}

func TestCreateMissingBinary(t *testing.T) {
	e := New(Options{FFmpegPath: filepath.Join(t.TempDir(), "ffmpeg")})

	err := e.Create()
	require.ErrorIs(t, err, ports.ErrMissingCapability)
	require.ErrorIs(t, err, ErrFFmpegNotFound)
}

func TestDecodeBeforeInitialize(t *testing.T) {
	e := New(Options{})
	_, err := e.Decode(testSPS)
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestDecodeParameterSetsDoNotRunFFmpeg(t *testing.T) {
	// A path that cannot be executed proves no process is started.
	e := New(Options{})
	e.ffmpegPath = filepath.Join(t.TempDir(), "missing")
	require.NoError(t, e.Initialize(ports.EngineConfig{}))

	res, err := e.Decode(testSPS)
	require.NoError(t, err)
	require.False(t, res.BufferReady)
	require.Equal(t, 352, e.width)
	require.Equal(t, 288, e.height)

	res, err = e.Decode([]byte{0, 0, 1, 0x68, 0xee, 0x3c, 0x80})
	require.NoError(t, err)
	require.False(t, res.BufferReady)
}

func TestDecodeSliceWithoutSPS(t *testing.T) {
	e := New(Options{})
	e.ffmpegPath = filepath.Join(t.TempDir(), "missing")
	require.NoError(t, e.Initialize(ports.EngineConfig{}))

	res, err := e.Decode([]byte{0, 0, 1, 0x65, 0x88})
	require.NoError(t, err)
	require.False(t, res.BufferReady)
	require.Zero(t, res.Status)

	res, err = e.Flush()
	require.NoError(t, err)
	require.False(t, res.BufferReady)
	require.Equal(t, StatusNoDimensions, res.Status)
}

func TestMultiSlicePictureIsHeld(t *testing.T) {
	// Running the missing binary fails, so an error marks the first run.
	e := New(Options{})
	e.ffmpegPath = filepath.Join(t.TempDir(), "missing")
	require.NoError(t, e.Initialize(ports.EngineConfig{}))

	_, err := e.Decode(testSPS)
	require.NoError(t, err)

	// Two slices of one IDR picture: first_mb_in_slice 0, then non-zero.
	_, err = e.Decode([]byte{0, 0, 1, 0x65, 0x88, 0x84})
	require.NoError(t, err)
	_, err = e.Decode([]byte{0, 0, 1, 0x65, 0x40, 0x84})
	require.NoError(t, err)
	require.Equal(t, 2, e.slices)

	// An access unit delimiter closes the picture.
	_, err = e.Decode([]byte{0, 0, 0, 1, 0x09, 0xf0})
	require.Error(t, err)
}

func TestNextPictureClosesPending(t *testing.T) {
	e := New(Options{})
	e.ffmpegPath = filepath.Join(t.TempDir(), "missing")
	require.NoError(t, e.Initialize(ports.EngineConfig{}))

	_, err := e.Decode(testSPS)
	require.NoError(t, err)
	_, err = e.Decode([]byte{0, 0, 1, 0x65, 0x88, 0x84})
	require.NoError(t, err)

	_, err = e.Decode([]byte{0, 0, 1, 0x41, 0x9a, 0x02})
	require.Error(t, err)
}

func TestFlushWithoutSlices(t *testing.T) {
	e := New(Options{})
	e.ffmpegPath = filepath.Join(t.TempDir(), "missing")
	require.NoError(t, e.Initialize(ports.EngineConfig{}))

	_, err := e.Decode(testSPS)
	require.NoError(t, err)

	res, err := e.Flush()
	require.NoError(t, err)
	require.False(t, res.BufferReady)
	require.Zero(t, res.Status)
}

func TestFlushBeforeInitialize(t *testing.T) {
	_, err := New(Options{}).Flush()
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestStartsAccessUnit(t *testing.T) {
	tests := []struct {
		name string
		nal  []byte
		want bool
	}{
		{"idr first slice", []byte{0, 0, 1, 0x65, 0x88}, true},
		{"idr later slice", []byte{0, 0, 1, 0x65, 0x40}, false},
		{"p first slice", []byte{0, 0, 1, 0x41, 0x9a}, true},
		{"p later slice", []byte{0, 0, 1, 0x41, 0x22}, false},
		{"partition b", []byte{0, 0, 1, 0x03, 0x80}, false},
		{"sei", []byte{0, 0, 1, 0x06, 0x05}, true},
		{"sps", testSPS, true},
		{"pps", []byte{0, 0, 1, 0x68, 0xee}, true},
		{"aud", []byte{0, 0, 1, 0x09, 0xf0}, true},
		{"end of sequence", []byte{0, 0, 1, 0x0a}, true},
		{"filler", []byte{0, 0, 1, 0x0c, 0xff}, false},
		{"prefix", []byte{0, 0, 1, 0x0e, 0x00}, true},
		{"header only slice", []byte{0, 0, 1, 0x65}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, startsAccessUnit(annexb.Unit{Data: tt.nal}))
		})
	}
}

func TestFFmpegLogLevel(t *testing.T) {
	require.Equal(t, "quiet", ffmpegLogLevel(ports.TraceQuiet))
	require.Equal(t, "error", ffmpegLogLevel(ports.TraceError))
	require.Equal(t, "warning", ffmpegLogLevel(ports.TraceWarning))
	require.Equal(t, "info", ffmpegLogLevel(ports.TraceInfo))
	require.Equal(t, "debug", ffmpegLogLevel(ports.TraceDebug))
	require.Equal(t, "trace", ffmpegLogLevel(ports.TraceDetail))
}

// encodeTestStream asks ffmpeg for a short libx264 stream. Builds without
// libx264 skip.
func encodeTestStream(t *testing.T, ffmpeg string, size string) []byte {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, ffmpeg,
		"-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size="+size+":rate=5",
		"-frames:v", "3",
		"-c:v", "libx264", "-profile:v", "baseline", "-pix_fmt", "yuv420p",
		"-f", "h264", "pipe:1",
	)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		t.Skipf("cannot encode test stream: %v", err)
	}
	return out.Bytes()
}

func TestDecodeRealStream(t *testing.T) {
	ffmpeg, err := FindFFmpeg("")
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	stream := encodeTestStream(t, ffmpeg, "64x48")

	e := New(Options{})
	require.NoError(t, e.Create())
	require.NoError(t, e.Initialize(ports.EngineConfig{ErrorConcealment: true}))
	require.NoError(t, e.SetTraceLevel(ports.TraceQuiet))
	defer e.Destroy()
	defer e.Uninitialize()

	var got *ports.DecodeResult
	for u := range annexb.Units(stream) {
		res, err := e.Decode(u.Data)
		require.NoError(t, err)
		if res.BufferReady {
			got = &res
			break
		}
	}
	if got == nil {
		res, err := e.Flush()
		require.NoError(t, err)
		if res.BufferReady {
			got = &res
		}
	}
	require.NotNil(t, got, "no picture decoded; ffmpeg said: %s", e.Stderr())
	require.Equal(t, 64, got.Info.Width)
	require.Equal(t, 48, got.Info.Height)
	require.Len(t, got.Planes[0], 64*48)
	require.Len(t, got.Planes[1], 32*24)
	require.Len(t, got.Planes[2], 32*24)
}

func TestRunBadBinary(t *testing.T) {
	e := New(Options{})
	e.ffmpegPath = filepath.Join(t.TempDir(), "missing")
	e.width, e.height = 2, 2
	e.initialized = true

	_, err := e.Decode([]byte{0, 0, 1, 0x65, 0x88})
	require.NoError(t, err)

	_, err = e.Flush()
	require.Error(t, err)
	var exitErr *exec.ExitError
	require.False(t, errors.As(err, &exitErr))
}

// A single-picture stream has no boundary after its slice; Flush decodes it.
func TestFlushDecodesLastPicture(t *testing.T) {
	ffmpeg, err := FindFFmpeg("")
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	stream := encodeTestStream(t, ffmpeg, "32x32")

	e := New(Options{FFmpegPath: ffmpeg})
	require.NoError(t, e.Create())
	require.NoError(t, e.Initialize(ports.EngineConfig{}))
	defer e.Destroy()
	defer e.Uninitialize()

	// Submit everything up to the end of the first picture only.
	for u := range annexb.Units(stream) {
		if e.slices > 0 && startsAccessUnit(u) {
			break
		}
		res, err := e.Decode(u.Data)
		require.NoError(t, err)
		require.False(t, res.BufferReady)
	}

	res, err := e.Flush()
	require.NoError(t, err)
	require.True(t, res.BufferReady, "ffmpeg said: %s", e.Stderr())
	require.Equal(t, 32, res.Info.Width)

	res, err = e.Flush()
	require.NoError(t, err)
	require.False(t, res.BufferReady, "one picture per stream")
}
