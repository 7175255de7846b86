package mocks

import (
	"github.com/user/h264grab/pkg/picture"
	"github.com/user/h264grab/pkg/ports"
)

// DecoderEngine is a mock implementation of ports.DecoderEngine.
type DecoderEngine struct {
	CreateFunc        func() error
	InitializeFunc    func(cfg ports.EngineConfig) error
	SetTraceLevelFunc func(level ports.TraceLevel) error
	DecodeFunc        func(nal []byte) (ports.DecodeResult, error)
	UninitializeFunc  func() error

	// Recorded calls for verification, in order ("create", "initialize",
	// "trace", "decode", "uninitialize", "destroy").
	Calls       []string
	Decoded     [][]byte
	InitConfig  ports.EngineConfig
	TraceLevels []ports.TraceLevel
}

// Name returns "mock".
func (m *DecoderEngine) Name() string {
	return "mock"
}

func (m *DecoderEngine) Create() error {
	m.Calls = append(m.Calls, "create")
	if m.CreateFunc != nil {
		return m.CreateFunc()
	}
	return nil
}

func (m *DecoderEngine) Initialize(cfg ports.EngineConfig) error {
	m.Calls = append(m.Calls, "initialize")
	m.InitConfig = cfg
	if m.InitializeFunc != nil {
		return m.InitializeFunc(cfg)
	}
	return nil
}

func (m *DecoderEngine) SetTraceLevel(level ports.TraceLevel) error {
	m.Calls = append(m.Calls, "trace")
	m.TraceLevels = append(m.TraceLevels, level)
	if m.SetTraceLevelFunc != nil {
		return m.SetTraceLevelFunc(level)
	}
	return nil
}

func (m *DecoderEngine) Decode(nal []byte) (ports.DecodeResult, error) {
	m.Calls = append(m.Calls, "decode")
	m.Decoded = append(m.Decoded, nal)
	if m.DecodeFunc != nil {
		return m.DecodeFunc(nal)
	}
	return ports.DecodeResult{}, nil
}

func (m *DecoderEngine) Uninitialize() error {
	m.Calls = append(m.Calls, "uninitialize")
	if m.UninitializeFunc != nil {
		return m.UninitializeFunc()
	}
	return nil
}

func (m *DecoderEngine) Destroy() {
	m.Calls = append(m.Calls, "destroy")
}

// CountCalls returns how many times the named call was recorded.
func (m *DecoderEngine) CountCalls(name string) int {
	n := 0
	for _, c := range m.Calls {
		if c == name {
			n++
		}
	}
	return n
}

// ReadyResult builds a DecodeResult holding a tightly packed I420 picture
// where every sample has the given Y, U and V values.
func ReadyResult(width, height int, y, u, v byte) ports.DecodeResult {
	cw, ch := (width+1)/2, (height+1)/2
	planes := [3][]byte{
		make([]byte, width*height),
		make([]byte, cw*ch),
		make([]byte, cw*ch),
	}
	for i := range planes[0] {
		planes[0][i] = y
	}
	for i := range planes[1] {
		planes[1][i] = u
		planes[2][i] = v
	}
	return ports.DecodeResult{
		BufferReady: true,
		Info: ports.BufferInfo{
			Width:   width,
			Height:  height,
			Format:  picture.FormatI420,
			Strides: [2]int{width, cw},
		},
		Planes: planes,
	}
}

var _ ports.DecoderEngine = (*DecoderEngine)(nil)

// BufferingEngine is a DecoderEngine that also implements ports.Flusher.
type BufferingEngine struct {
	DecoderEngine
	FlushFunc func() (ports.DecodeResult, error)
}

func (m *BufferingEngine) Flush() (ports.DecodeResult, error) {
	m.Calls = append(m.Calls, "flush")
	if m.FlushFunc != nil {
		return m.FlushFunc()
	}
	return ports.DecodeResult{}, nil
}

var _ ports.Flusher = (*BufferingEngine)(nil)
