package ports

import (
	"image"

	"github.com/user/h264grab/pkg/picture"
)

// DebugSink receives intermediate results of a run for inspection.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveUnit saves a NAL unit exactly as it was submitted to the engine.
	SaveUnit(index int, data []byte) error

	// SavePicture saves the decoded planes as packed I420.
	SavePicture(pic picture.Picture) error

	// SaveRaster saves the converted RGB raster as PNG.
	SaveRaster(img image.Image) error

	// SaveUnitsJSON saves the unit listing of the input stream.
	SaveUnitsJSON(data []byte) error
}
