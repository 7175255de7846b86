//go:build darwin || linux

package openh264

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/user/h264grab/pkg/ports"
)

// library holds the two exported entry points of a loaded OpenH264.
type library struct {
	path           string
	createDecoder  func(ppDecoder uintptr) int64
	destroyDecoder func(pDecoder uintptr)
}

var (
	librariesMu sync.Mutex
	libraries   = map[string]*library{}
)

// loadLibrary opens the first candidate that resolves both entry points.
// Libraries stay loaded for the life of the process.
func loadLibrary(candidates []string) (*library, error) {
	librariesMu.Lock()
	defer librariesMu.Unlock()

	var lastErr error
	for _, path := range candidates {
		if lib, ok := libraries[path]; ok {
			return lib, nil
		}

		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lastErr = err
			continue
		}

		create, err := purego.Dlsym(handle, "WelsCreateDecoder")
		if err != nil {
			purego.Dlclose(handle)
			return nil, fmt.Errorf("%w: WelsCreateDecoder in %s", ports.ErrMissingCapability, path)
		}
		destroy, err := purego.Dlsym(handle, "WelsDestroyDecoder")
		if err != nil {
			purego.Dlclose(handle)
			return nil, fmt.Errorf("%w: WelsDestroyDecoder in %s", ports.ErrMissingCapability, path)
		}

		lib := &library{path: path}
		purego.RegisterFunc(&lib.createDecoder, create)
		purego.RegisterFunc(&lib.destroyDecoder, destroy)
		libraries[path] = lib
		return lib, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w: %v", ports.ErrMissingCapability, ErrLibraryNotFound, lastErr)
	}
	return nil, fmt.Errorf("%w: %w", ports.ErrMissingCapability, ErrLibraryNotFound)
}

// Engine implements ports.DecoderEngine on top of OpenH264.
type Engine struct {
	opts    Options
	lib     *library
	decoder uintptr // ISVCDecoder*
	pinner  runtime.Pinner

	dst  [3]uintptr
	info bufferInfo
}

// New creates an engine. The library is opened by Create.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Name returns "openh264".
func (e *Engine) Name() string {
	return "openh264"
}

// LibraryPath returns the path of the loaded library, if any.
func (e *Engine) LibraryPath() string {
	if e.lib == nil {
		return ""
	}
	return e.lib.path
}

// Create opens the library and calls WelsCreateDecoder.
func (e *Engine) Create() error {
	lib, err := loadLibrary(LibraryCandidates(e.opts))
	if err != nil {
		return err
	}
	e.lib = lib

	decoder := new(uintptr)
	e.pinner.Pin(decoder)
	defer e.pinner.Unpin()

	if rv := lib.createDecoder(uintptr(unsafe.Pointer(decoder))); rv != 0 || *decoder == 0 {
		return fmt.Errorf("openh264: WelsCreateDecoder returned %d", rv)
	}
	e.decoder = *decoder
	return nil
}

// slot returns the function pointer at index i of the decoder's vtable.
func (e *Engine) slot(i int) (uintptr, error) {
	if e.decoder == 0 {
		return 0, fmt.Errorf("openh264: no decoder handle")
	}
	vtbl := *(*uintptr)(unsafe.Pointer(e.decoder))
	if vtbl == 0 {
		return 0, fmt.Errorf("%w: empty vtable", ports.ErrMissingCapability)
	}
	fn := *(*uintptr)(unsafe.Pointer(vtbl + uintptr(i)*unsafe.Sizeof(uintptr(0))))
	if fn == 0 {
		return 0, fmt.Errorf("%w: vtable slot %d", ports.ErrMissingCapability, i)
	}
	return fn, nil
}

// Initialize calls ISVCDecoder::Initialize.
func (e *Engine) Initialize(cfg ports.EngineConfig) error {
	fn, err := e.slot(slotInitialize)
	if err != nil {
		return err
	}

	param := &decodingParam{
		cpuLoad:       uint32(max(cfg.CPULoad, 0)),
		ecActiveIdc:   errorConDisable,
		videoProperty: videoProperty{bsType: videoBitstreamAVC},
	}
	if cfg.ErrorConcealment {
		param.ecActiveIdc = errorConSliceCopy
	}

	e.pinner.Pin(param)
	defer e.pinner.Unpin()

	if rv, _, _ := purego.SyscallN(fn, e.decoder, uintptr(unsafe.Pointer(param))); int64(rv) != 0 {
		return fmt.Errorf("openh264: Initialize returned %d", int64(rv))
	}
	return nil
}

// SetTraceLevel sets DECODER_OPTION_TRACE_LEVEL.
func (e *Engine) SetTraceLevel(level ports.TraceLevel) error {
	fn, err := e.slot(slotSetOption)
	if err != nil {
		return err
	}

	value := new(int32)
	*value = int32(level)
	e.pinner.Pin(value)
	defer e.pinner.Unpin()

	if rv, _, _ := purego.SyscallN(fn, e.decoder, decoderOptionTraceLevel, uintptr(unsafe.Pointer(value))); int64(rv) != 0 {
		return fmt.Errorf("openh264: SetOption(trace level) returned %d", int64(rv))
	}
	return nil
}

// Decode calls ISVCDecoder::DecodeFrameNoDelay for one unit. The returned
// planes point into decoder memory that is reused on the next call.
func (e *Engine) Decode(nal []byte) (ports.DecodeResult, error) {
	fn, err := e.slot(slotDecodeFrameNoDelay)
	if err != nil {
		return ports.DecodeResult{}, err
	}
	if len(nal) == 0 {
		return ports.DecodeResult{}, nil
	}

	e.dst = [3]uintptr{}
	e.info = bufferInfo{}

	e.pinner.Pin(&nal[0])
	e.pinner.Pin(e)
	state, _, _ := purego.SyscallN(fn,
		e.decoder,
		uintptr(unsafe.Pointer(&nal[0])),
		uintptr(len(nal)),
		uintptr(unsafe.Pointer(&e.dst[0])),
		uintptr(unsafe.Pointer(&e.info)),
	)
	e.pinner.Unpin()

	res := ports.DecodeResult{
		Status:      int(int32(state)),
		BufferReady: e.info.bufferStatus != 0,
	}
	if !res.BufferReady {
		return res, nil
	}

	width, height := int(e.info.width), int(e.info.height)
	strideY, strideUV := int(e.info.stride[0]), int(e.info.stride[1])
	res.Info = ports.BufferInfo{
		Width:   width,
		Height:  height,
		Format:  pictureFormat(e.info.format),
		Strides: [2]int{strideY, strideUV},
	}

	chromaRows := (height + 1) / 2
	res.Planes[0] = plane(e.dst[0], height*strideY)
	res.Planes[1] = plane(e.dst[1], chromaRows*strideUV)
	res.Planes[2] = plane(e.dst[2], chromaRows*strideUV)
	return res, nil
}

func plane(p uintptr, n int) []byte {
	if p == 0 || n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
}

// Uninitialize calls ISVCDecoder::Uninitialize.
func (e *Engine) Uninitialize() error {
	fn, err := e.slot(slotUninitialize)
	if err != nil {
		return err
	}
	if rv, _, _ := purego.SyscallN(fn, e.decoder); int64(rv) != 0 {
		return fmt.Errorf("openh264: Uninitialize returned %d", int64(rv))
	}
	return nil
}

// Destroy calls WelsDestroyDecoder. Safe to call without a handle.
func (e *Engine) Destroy() {
	if e.decoder == 0 || e.lib == nil {
		return
	}
	e.lib.destroyDecoder(e.decoder)
	e.decoder = 0
}

// Available reports whether a usable library can be opened.
func Available(opts Options) bool {
	_, err := loadLibrary(LibraryCandidates(opts))
	return err == nil
}

var _ ports.DecoderEngine = (*Engine)(nil)
