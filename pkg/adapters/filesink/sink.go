// Package filesink provides a file-based debug sink implementation.
//
// Layout under the base directory:
//
//	units/unit-0000.h264   each submitted NAL unit, start code included
//	picture-WxH.yuv        decoded planes as packed I420
//	frame.png              converted raster
//	units.json             unit listing of the input
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/h264grab/pkg/picture"
	"github.com/user/h264grab/pkg/ports"
)

// Sink saves debug output to files.
type Sink struct {
	baseDir string
	fs      ports.FileSystem
	raster  ports.RasterEncoder
	pics    int
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, raster ports.RasterEncoder) *Sink {
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
		raster:  raster,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveUnit saves a NAL unit.
func (s *Sink) SaveUnit(index int, data []byte) error {
	dir := filepath.Join(s.baseDir, "units")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("unit-%04d.h264", index))
	return s.fs.WriteFile(path, data)
}

// SavePicture saves the decoded planes without row padding. A second picture
// of the same size gets a numeric suffix.
func (s *Sink) SavePicture(pic picture.Picture) error {
	if err := pic.Validate(); err != nil {
		return err
	}
	name := fmt.Sprintf("picture-%dx%d.yuv", pic.Width, pic.Height)
	if s.pics > 0 {
		name = fmt.Sprintf("picture-%dx%d-%d.yuv", pic.Width, pic.Height, s.pics)
	}
	s.pics++
	return s.fs.WriteFile(filepath.Join(s.baseDir, name), pic.Packed())
}

// SaveRaster saves the converted raster as PNG.
func (s *Sink) SaveRaster(img image.Image) error {
	data, err := s.raster.Encode(img, ports.FormatPNG, ports.RasterOptions{})
	if err != nil {
		return fmt.Errorf("encode raster: %w", err)
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "frame.png"), data)
}

// SaveUnitsJSON saves the unit listing as JSON.
func (s *Sink) SaveUnitsJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "units.json"), data)
}

var _ ports.DebugSink = (*Sink)(nil)
