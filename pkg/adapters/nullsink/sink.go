// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/h264grab/pkg/picture"
	"github.com/user/h264grab/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveUnit does nothing.
func (s *Sink) SaveUnit(index int, data []byte) error {
	return nil
}

// SavePicture does nothing.
func (s *Sink) SavePicture(pic picture.Picture) error {
	return nil
}

// SaveRaster does nothing.
func (s *Sink) SaveRaster(img image.Image) error {
	return nil
}

// SaveUnitsJSON does nothing.
func (s *Sink) SaveUnitsJSON(data []byte) error {
	return nil
}

var _ ports.DebugSink = (*Sink)(nil)
