// Package colorconv converts decoded YUV 4:2:0 pictures to packed RGB.
//
// The transform is limited-range BT.601 evaluated in 32-bit floating point and
// truncated (not rounded) to 8 bits, so output is bit-exact with other
// implementations of the same formula.
package colorconv

import (
	"image"
	"image/color"

	"github.com/user/h264grab/pkg/picture"
)

// BytesPerPixel is the size of one packed RGB sample.
const BytesPerPixel = 3

// RGB is a packed 8-bit RGB raster, row major, without row padding.
type RGB struct {
	Width  int
	Height int
	Pix    []byte
}

// NewRGB allocates a zeroed raster.
func NewRGB(width, height int) *RGB {
	return &RGB{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}
}

// Stride returns the number of bytes per row.
func (r *RGB) Stride() int {
	return r.Width * BytesPerPixel
}

// ColorModel implements image.Image.
func (r *RGB) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (r *RGB) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

// At implements image.Image.
func (r *RGB) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return color.RGBA{}
	}
	i := y*r.Stride() + x*BytesPerPixel
	return color.RGBA{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2], A: 0xFF}
}

// RGBA copies the raster into an *image.RGBA.
func (r *RGB) RGBA() *image.RGBA {
	img := image.NewRGBA(r.Bounds())
	for i, j := 0, 0; i < len(r.Pix); i, j = i+BytesPerPixel, j+4 {
		img.Pix[j] = r.Pix[i]
		img.Pix[j+1] = r.Pix[i+1]
		img.Pix[j+2] = r.Pix[i+2]
		img.Pix[j+3] = 0xFF
	}
	return img
}

// Convert returns a new raster holding p in RGB.
// The picture must satisfy picture.Picture.Validate.
func Convert(p picture.Picture) *RGB {
	dst := NewRGB(p.Width, p.Height)
	ConvertInto(p, dst)
	return dst
}

// ConvertInto writes p into dst, which must have the same dimensions.
func ConvertInto(p picture.Picture, dst *RGB) {
	strideY, strideUV := p.StrideY(), p.StrideUV()

	for j := 0; j < p.Height; j++ {
		row := p.Y[j*strideY:]
		cb := p.U[(j/2)*strideUV:]
		cr := p.V[(j/2)*strideUV:]
		out := dst.Pix[j*dst.Stride():]

		for i := 0; i < p.Width; i++ {
			r, g, b := pixel(row[i], cb[i/2], cr[i/2])
			out[i*BytesPerPixel] = r
			out[i*BytesPerPixel+1] = g
			out[i*BytesPerPixel+2] = b
		}
	}
}

// pixel converts one sample. Every product goes through an explicit float32
// conversion so the compiler cannot fuse it into a multiply-add, which would
// change the truncated result on some architectures.
func pixel(y, u, v uint8) (uint8, uint8, uint8) {
	c := float32(float32(y)-16) * 1.164
	d := float32(u) - 128
	e := float32(v) - 128

	r := c + float32(1.596*e)
	g := c - float32(0.392*d) - float32(0.813*e)
	b := c + float32(2.017*d)

	return clamp(r), clamp(g), clamp(b)
}

func clamp(x float32) uint8 {
	return uint8(min(max(x, 0), 255))
}
