package ports

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

// RasterFormat specifies the file format of the output raster.
type RasterFormat int

const (
	FormatPPM RasterFormat = iota
	FormatPNG
	FormatJPEG
	FormatBMP
	FormatTIFF
)

var rasterFormatNames = map[RasterFormat]string{
	FormatPPM:  "ppm",
	FormatPNG:  "png",
	FormatJPEG: "jpeg",
	FormatBMP:  "bmp",
	FormatTIFF: "tiff",
}

// String returns the canonical name of the format.
func (f RasterFormat) String() string {
	if s, ok := rasterFormatNames[f]; ok {
		return s
	}
	return "unknown"
}

// ParseRasterFormat parses a format name or file extension (with or without
// the leading dot).
func ParseRasterFormat(s string) (RasterFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "ppm", "pnm":
		return FormatPPM, nil
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	default:
		return FormatPPM, fmt.Errorf("unknown raster format %q", s)
	}
}

// RasterFormatFromPath picks the format from a file extension.
func RasterFormatFromPath(path string) (RasterFormat, error) {
	return ParseRasterFormat(filepath.Ext(path))
}

// RasterOptions controls raster encoding.
type RasterOptions struct {
	Quality int // JPEG quality 1-100
}

// RasterEncoder turns an RGB image into file bytes.
type RasterEncoder interface {
	// Encode encodes img in the given format.
	Encode(img image.Image, format RasterFormat, opts RasterOptions) ([]byte, error)

	// Resize scales img to the given dimensions.
	Resize(img image.Image, width, height int) image.Image

	// Annotate returns a copy of img with caption drawn along the bottom edge.
	Annotate(img image.Image, caption string) image.Image
}
