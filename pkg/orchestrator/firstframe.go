package orchestrator

import (
	"context"
	"fmt"

	"github.com/user/h264grab/pkg/annexb"
	"github.com/user/h264grab/pkg/colorconv"
	"github.com/user/h264grab/pkg/picture"
)

// Decoder accepts one NAL unit at a time. *session.Session implements it.
//
// A returned picture may borrow decoder memory; it is only read before the
// next call to Decode.
type Decoder interface {
	Decode(nal []byte) (*picture.Picture, error)
}

// Flusher is implemented by decoders that can hold a picture back until the
// end of the stream. *session.Session implements it.
type Flusher interface {
	Flush() (*picture.Picture, error)
}

// FrameResult is the outcome of FirstFrame.
type FrameResult struct {
	// Found is false when the stream ran out without producing a picture.
	Found bool

	// Raster is the picture converted to RGB. It owns its memory.
	Raster *colorconv.RGB

	// Picture is the decoded picture as returned by the decoder. It stays
	// readable until the decoder is called again or closed.
	Picture *picture.Picture

	// Unit is the unit whose submission completed the picture.
	Unit annexb.Unit

	// UnitIndex is the zero-based position of Unit in the stream.
	UnitIndex int

	// UnitsSubmitted counts the units handed to the decoder.
	UnitsSubmitted int
}

// FirstFrame feeds the units of stream to dec in order and stops at the first
// picture, which is converted before anything else is submitted. When the
// units run out and dec is a Flusher, it is flushed once. Running out of units
// is not an error; FrameResult.Found is false in that case. Decoder errors
// abort the loop. ctx is checked between units.
func FirstFrame(ctx context.Context, stream []byte, dec Decoder) (FrameResult, error) {
	var result FrameResult

	index := 0
	for unit := range annexb.Units(stream) {
		if err := ctx.Err(); err != nil {
			return FrameResult{UnitsSubmitted: result.UnitsSubmitted}, err
		}

		pic, err := dec.Decode(unit.Data)
		result.UnitsSubmitted++
		if err != nil {
			return FrameResult{UnitsSubmitted: result.UnitsSubmitted}, fmt.Errorf("decode unit %d: %w", index, err)
		}

		result.Unit = unit
		result.UnitIndex = index
		if pic != nil {
			return found(result, pic)
		}

		index++
	}

	f, ok := dec.(Flusher)
	if !ok || result.UnitsSubmitted == 0 {
		return FrameResult{UnitsSubmitted: result.UnitsSubmitted}, nil
	}
	if err := ctx.Err(); err != nil {
		return FrameResult{UnitsSubmitted: result.UnitsSubmitted}, err
	}

	pic, err := f.Flush()
	if err != nil {
		return FrameResult{UnitsSubmitted: result.UnitsSubmitted}, fmt.Errorf("flush: %w", err)
	}
	if pic == nil {
		return FrameResult{UnitsSubmitted: result.UnitsSubmitted}, nil
	}
	// The held picture is attributed to the last unit submitted.
	return found(result, pic)
}

func found(result FrameResult, pic *picture.Picture) (FrameResult, error) {
	if err := pic.Validate(); err != nil {
		return FrameResult{UnitsSubmitted: result.UnitsSubmitted}, fmt.Errorf("decode unit %d: %w", result.UnitIndex, err)
	}
	result.Found = true
	result.Raster = colorconv.Convert(*pic)
	result.Picture = pic
	return result, nil
}
