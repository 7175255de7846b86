// Package picture describes decoded planar YUV 4:2:0 pictures.
package picture

import (
	"errors"
	"fmt"
	"image"
)

// Format identifies the pixel layout of a Picture.
type Format int

const (
	// FormatUnknown is reported by engines that do not tag their output.
	FormatUnknown Format = iota
	// FormatI420 is planar YUV 4:2:0 with separate U and V planes.
	FormatI420
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatI420:
		return "i420"
	default:
		return "unknown"
	}
}

// ErrInvalid is returned by Validate when a picture breaks its layout invariants.
var ErrInvalid = errors.New("picture: invalid layout")

// Picture is one decoded frame.
//
// Plane memory usually belongs to the decoding engine and is only valid until
// the next call into the session that produced it. Use Clone to keep a picture
// beyond that point.
type Picture struct {
	Width   int
	Height  int
	Format  Format
	Strides [2]int // luma, chroma

	Y []byte
	U []byte
	V []byte

	// Lease reports whether borrowed plane memory is still usable.
	// A nil Lease means the picture owns its planes.
	Lease *Lease
}

// StrideY returns the luma row stride.
func (p Picture) StrideY() int { return p.Strides[0] }

// StrideUV returns the chroma row stride.
func (p Picture) StrideUV() int { return p.Strides[1] }

// ChromaWidth returns the number of chroma samples per row.
func (p Picture) ChromaWidth() int { return (p.Width + 1) / 2 }

// ChromaHeight returns the number of chroma rows.
func (p Picture) ChromaHeight() int { return (p.Height + 1) / 2 }

// Valid reports whether the plane memory can still be read.
func (p Picture) Valid() bool {
	return p.Lease.Valid()
}

// Validate checks the stride and plane length invariants of a 4:2:0 picture.
// Only the rows the picture actually uses must be present; engines are free
// to hand out larger planes.
func (p Picture) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalid, p.Width, p.Height)
	}
	if p.StrideY() < p.Width {
		return fmt.Errorf("%w: luma stride %d < width %d", ErrInvalid, p.StrideY(), p.Width)
	}
	if p.StrideUV() < p.ChromaWidth() {
		return fmt.Errorf("%w: chroma stride %d < chroma width %d", ErrInvalid, p.StrideUV(), p.ChromaWidth())
	}

	if need := (p.Height-1)*p.StrideY() + p.Width; len(p.Y) < need {
		return fmt.Errorf("%w: luma plane %d bytes, need %d", ErrInvalid, len(p.Y), need)
	}
	need := (p.ChromaHeight()-1)*p.StrideUV() + p.ChromaWidth()
	if len(p.U) < need {
		return fmt.Errorf("%w: U plane %d bytes, need %d", ErrInvalid, len(p.U), need)
	}
	if len(p.V) < need {
		return fmt.Errorf("%w: V plane %d bytes, need %d", ErrInvalid, len(p.V), need)
	}
	return nil
}

// Clone returns a deep copy of p that owns its planes. Strides are kept so
// the copy addresses samples exactly like the original.
func (p Picture) Clone() Picture {
	c := p
	c.Y = append([]byte(nil), p.Y...)
	c.U = append([]byte(nil), p.U...)
	c.V = append([]byte(nil), p.V...)
	c.Lease = nil
	return c
}

// Packed returns the picture as tightly packed I420 (Y, then U, then V, no row
// padding), the layout of raw .yuv files.
func (p Picture) Packed() []byte {
	cw, ch := p.ChromaWidth(), p.ChromaHeight()
	out := make([]byte, 0, p.Width*p.Height+2*cw*ch)

	for j := 0; j < p.Height; j++ {
		out = append(out, p.Y[j*p.StrideY():j*p.StrideY()+p.Width]...)
	}
	for _, plane := range [][]byte{p.U, p.V} {
		for j := 0; j < ch; j++ {
			out = append(out, plane[j*p.StrideUV():j*p.StrideUV()+cw]...)
		}
	}
	return out
}

// YCbCr returns a view of the picture as an image.YCbCr without copying.
// The view shares the picture's lease.
func (p Picture) YCbCr() *image.YCbCr {
	return &image.YCbCr{
		Y:              p.Y,
		Cb:             p.U,
		Cr:             p.V,
		YStride:        p.StrideY(),
		CStride:        p.StrideUV(),
		SubsampleRatio: image.YCbCrSubsampleRatio420,
		Rect:           image.Rect(0, 0, p.Width, p.Height),
	}
}

// Lease tracks the lifetime of engine-owned plane memory.
type Lease struct {
	expired bool
}

// NewLease returns a valid lease.
func NewLease() *Lease {
	return &Lease{}
}

// Expire marks the memory behind the lease as reclaimed by its owner.
func (l *Lease) Expire() {
	if l != nil {
		l.expired = true
	}
}

// Valid reports whether the leased memory can still be read.
func (l *Lease) Valid() bool {
	return l == nil || !l.expired
}
