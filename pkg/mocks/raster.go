package mocks

import (
	"image"

	"github.com/user/h264grab/pkg/ports"
)

// RasterEncoder is a mock implementation of ports.RasterEncoder.
type RasterEncoder struct {
	EncodeFunc func(img image.Image, format ports.RasterFormat, opts ports.RasterOptions) ([]byte, error)

	// Recorded calls for verification
	EncodeCalls []EncodeCall
	ResizeCalls int
	Captions    []string
}

// EncodeCall records a call to Encode.
type EncodeCall struct {
	Width  int
	Height int
	Format ports.RasterFormat
}

func (m *RasterEncoder) Encode(img image.Image, format ports.RasterFormat, opts ports.RasterOptions) ([]byte, error) {
	b := img.Bounds()
	m.EncodeCalls = append(m.EncodeCalls, EncodeCall{Width: b.Dx(), Height: b.Dy(), Format: format})
	if m.EncodeFunc != nil {
		return m.EncodeFunc(img, format, opts)
	}
	return []byte(format.String()), nil
}

func (m *RasterEncoder) Resize(img image.Image, width, height int) image.Image {
	m.ResizeCalls++
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func (m *RasterEncoder) Annotate(img image.Image, caption string) image.Image {
	m.Captions = append(m.Captions, caption)
	return img
}

var _ ports.RasterEncoder = (*RasterEncoder)(nil)
