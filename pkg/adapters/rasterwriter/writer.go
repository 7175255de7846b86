// Package rasterwriter encodes RGB rasters into image files.
package rasterwriter

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/user/h264grab/pkg/colorconv"
	"github.com/user/h264grab/pkg/ports"
)

// ErrUnsupportedFormat is returned for formats the writer cannot produce.
var ErrUnsupportedFormat = errors.New("rasterwriter: unsupported format")

// DefaultQuality is used for JPEG when RasterOptions.Quality is out of range.
const DefaultQuality = 90

// Writer implements ports.RasterEncoder.
type Writer struct{}

// New creates a new Writer.
func New() *Writer {
	return &Writer{}
}

// Encode encodes an image to the specified format.
func (w *Writer) Encode(img image.Image, format ports.RasterFormat, opts ports.RasterOptions) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatPPM:
		if err := EncodePPM(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PPM: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, toStdImage(img)); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	case ports.FormatJPEG:
		quality := opts.Quality
		if quality < 1 || quality > 100 {
			quality = DefaultQuality
		}
		if err := jpeg.Encode(&buf, toStdImage(img), &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatBMP:
		if err := bmp.Encode(&buf, toStdImage(img)); err != nil {
			return nil, fmt.Errorf("encode BMP: %w", err)
		}
	case ports.FormatTIFF:
		if err := tiff.Encode(&buf, toStdImage(img), &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return nil, fmt.Errorf("encode TIFF: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, format)
	}

	return buf.Bytes(), nil
}

// Resize resizes an image to the specified dimensions.
func (w *Writer) Resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// toStdImage hands the standard encoders an *image.RGBA so they take their
// fast paths instead of calling At per pixel.
func toStdImage(img image.Image) image.Image {
	if rgb, ok := img.(*colorconv.RGB); ok {
		return rgb.RGBA()
	}
	return img
}

var _ ports.RasterEncoder = (*Writer)(nil)
