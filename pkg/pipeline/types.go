package pipeline

import (
	"image"

	"github.com/user/h264grab/pkg/colorconv"
	"github.com/user/h264grab/pkg/ports"
)

// =============================================================================
// Convert Stage Types
// =============================================================================

// ConvertInput carries the decoded raster into the convert stage.
type ConvertInput struct {
	// Raster is the converted first picture.
	Raster *colorconv.RGB

	// MaxWidth downscales the raster when it is wider (0 = keep size).
	MaxWidth int

	// Caption is drawn along the bottom edge when non-empty.
	Caption string
}

// ConvertResult is the image handed to the output stage.
type ConvertResult struct {
	Image   image.Image
	Width   int
	Height  int
	Resized bool
}

// =============================================================================
// Output Stage Types
// =============================================================================

// OutputInput contains the parameters for encoding the output raster.
type OutputInput struct {
	Image   image.Image
	Format  ports.RasterFormat
	Quality int // JPEG quality (0 = encoder default)
}

// OutputResult contains the encoded file bytes.
type OutputResult struct {
	Data   []byte
	Format ports.RasterFormat
}
