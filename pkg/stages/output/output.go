// Package output implements the raster encoding stage.
package output

import (
	"context"
	"fmt"

	"github.com/user/h264grab/pkg/pipeline"
	"github.com/user/h264grab/pkg/ports"
)

// Stage encodes the output image into file bytes.
type Stage struct {
	raster ports.RasterEncoder
	logger ports.Logger
}

// NewStage creates a new output stage.
func NewStage(raster ports.RasterEncoder, logger ports.Logger) *Stage {
	return &Stage{
		raster: raster,
		logger: logger.WithComponent("output"),
	}
}

// Execute encodes the image in the requested format.
func (s *Stage) Execute(ctx context.Context, input pipeline.OutputInput) (pipeline.OutputResult, error) {
	if input.Image == nil {
		return pipeline.OutputResult{}, fmt.Errorf("no image to encode")
	}

	if err := ctx.Err(); err != nil {
		return pipeline.OutputResult{}, err
	}

	data, err := s.raster.Encode(input.Image, input.Format, ports.RasterOptions{Quality: input.Quality})
	if err != nil {
		return pipeline.OutputResult{}, fmt.Errorf("encode %s: %w", input.Format, err)
	}

	s.logger.Debug("Encoded %s: %d bytes", input.Format, len(data))

	return pipeline.OutputResult{
		Data:   data,
		Format: input.Format,
	}, nil
}

var _ pipeline.Stage[pipeline.OutputInput, pipeline.OutputResult] = (*Stage)(nil)
