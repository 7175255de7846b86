package mocks

import (
	"image"
	"sync"

	"github.com/user/h264grab/pkg/picture"
	"github.com/user/h264grab/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	Units     map[int][]byte
	Pictures  []picture.Picture
	Raster    image.Image
	UnitsJSON []byte
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled: enabled,
		Units:   make(map[int][]byte),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveUnit(index int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Units[index] = append([]byte(nil), data...)
	return nil
}

func (m *DebugSink) SavePicture(pic picture.Picture) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pictures = append(m.Pictures, pic.Clone())
	return nil
}

func (m *DebugSink) SaveRaster(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Raster = img
	return nil
}

func (m *DebugSink) SaveUnitsJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UnitsJSON = data
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)
