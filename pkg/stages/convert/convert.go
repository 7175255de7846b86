// Package convert implements the stage that prepares the decoded raster for
// output: optional downscaling and the optional caption bar.
package convert

import (
	"context"
	"fmt"
	"image"

	"github.com/user/h264grab/pkg/pipeline"
	"github.com/user/h264grab/pkg/ports"
)

// Stage turns the converted RGB raster into the output image.
type Stage struct {
	raster ports.RasterEncoder
	logger ports.Logger
}

// NewStage creates a new convert stage.
func NewStage(raster ports.RasterEncoder, logger ports.Logger) *Stage {
	return &Stage{
		raster: raster,
		logger: logger.WithComponent("convert"),
	}
}

// Execute scales and annotates the raster.
func (s *Stage) Execute(ctx context.Context, input pipeline.ConvertInput) (pipeline.ConvertResult, error) {
	if input.Raster == nil || input.Raster.Width <= 0 || input.Raster.Height <= 0 {
		return pipeline.ConvertResult{}, fmt.Errorf("empty raster")
	}

	var img image.Image = input.Raster
	result := pipeline.ConvertResult{}

	if w, h, ok := FitWidth(img.Bounds(), input.MaxWidth); ok {
		s.logger.Debug("Scaling %dx%d to %dx%d", input.Raster.Width, input.Raster.Height, w, h)
		img = s.raster.Resize(img, w, h)
		result.Resized = true
	}

	if input.Caption != "" {
		img = s.raster.Annotate(img, input.Caption)
	}

	result.Image = img
	result.Width = img.Bounds().Dx()
	result.Height = img.Bounds().Dy()
	return result, nil
}

// FitWidth returns the size of r scaled down to at most maxWidth pixels
// wide, keeping the aspect ratio. ok is false when no scaling is needed.
func FitWidth(r image.Rectangle, maxWidth int) (width, height int, ok bool) {
	if maxWidth <= 0 || r.Dx() <= maxWidth {
		return r.Dx(), r.Dy(), false
	}
	height = max(1, (r.Dy()*maxWidth+r.Dx()/2)/r.Dx())
	return maxWidth, height, true
}

var _ pipeline.Stage[pipeline.ConvertInput, pipeline.ConvertResult] = (*Stage)(nil)
