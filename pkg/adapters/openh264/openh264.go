// Package openh264 binds the Cisco OpenH264 decoder at run time.
//
// The shared library is opened with purego, so the binary builds without cgo
// and runs on systems where OpenH264 is missing (Create then reports
// ports.ErrMissingCapability). The decoder object is a C++ interface: a
// pointer to a table of function pointers, called here slot by slot.
package openh264

import (
	"errors"
	"os"
	"runtime"

	"github.com/user/h264grab/pkg/picture"
)

var (
	// ErrLibraryNotFound is returned when no OpenH264 library can be opened.
	ErrLibraryNotFound = errors.New("openh264: library not found")

	// ErrPlatformNotSupported is returned on platforms without dynamic loading support.
	ErrPlatformNotSupported = errors.New("openh264: platform not supported")
)

// EnvLibrary names the environment variable that points at the library.
const EnvLibrary = "OPENH264_LIB"

// Options configures the engine.
type Options struct {
	// LibraryPath is tried before EnvLibrary and the well-known names.
	LibraryPath string
}

// vtable slots of ISVCDecoder, in declaration order.
const (
	slotInitialize = iota
	slotUninitialize
	slotDecodeFrame
	slotDecodeFrameNoDelay
	slotDecodeFrame2
	slotFlushFrame
	slotDecodeParser
	slotDecodeFrameEx
	slotSetOption
	slotGetOption
)

const (
	decoderOptionTraceLevel = 9

	errorConDisable   = 0
	errorConSliceCopy = 2

	videoBitstreamAVC = 0

	videoFormatI420 = 23
)

// decodingParam mirrors SDecodingParam.
type decodingParam struct {
	fileNameRestructed uintptr
	cpuLoad            uint32
	targetDqLayer      uint8
	_                  [3]byte
	ecActiveIdc        int32
	parseOnly          bool
	_                  [3]byte
	videoProperty      videoProperty
}

type videoProperty struct {
	size   uint32
	bsType int32
}

// bufferInfo mirrors SBufferInfo with the system-buffer member of its union.
type bufferInfo struct {
	bufferStatus    int32
	_               [4]byte
	inBsTimeStamp   uint64
	outYuvTimeStamp uint64
	width           int32
	height          int32
	format          int32
	stride          [2]int32
	_               [4]byte
	dst             [3]uintptr
}

func pictureFormat(f int32) picture.Format {
	if f == videoFormatI420 {
		return picture.FormatI420
	}
	return picture.FormatUnknown
}

// LibraryCandidates returns the paths tried by Create, in order.
func LibraryCandidates(opts Options) []string {
	var paths []string
	if opts.LibraryPath != "" {
		paths = append(paths, opts.LibraryPath)
	}
	if env := os.Getenv(EnvLibrary); env != "" {
		paths = append(paths, env)
	}

	switch runtime.GOOS {
	case "darwin":
		paths = append(paths,
			"libopenh264.dylib",
			"libopenh264.7.dylib",
			"/opt/homebrew/lib/libopenh264.dylib",
			"/usr/local/lib/libopenh264.dylib",
		)
	default:
		paths = append(paths,
			"libopenh264.so",
			"libopenh264.so.7",
			"libopenh264.so.6",
			"libopenh264.so.5",
			"/usr/lib/x86_64-linux-gnu/libopenh264.so.7",
			"/usr/lib/aarch64-linux-gnu/libopenh264.so.7",
			"/usr/local/lib/libopenh264.so",
		)
	}
	return paths
}
