package rasterwriter

import (
	"bufio"
	"fmt"
	"image"
	"io"

	"github.com/user/h264grab/pkg/colorconv"
)

// EncodePPM writes img as binary PPM (P6, maxval 255).
func EncodePPM(w io.Writer, img image.Image) error {
	b := img.Bounds()
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", b.Dx(), b.Dy()); err != nil {
		return err
	}

	if rgb, ok := img.(*colorconv.RGB); ok {
		if _, err := bw.Write(rgb.Pix); err != nil {
			return err
		}
		return bw.Flush()
	}

	row := make([]byte, b.Dx()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			i := (x - b.Min.X) * 3
			row[i] = uint8(r >> 8)
			row[i+1] = uint8(g >> 8)
			row[i+2] = uint8(bl >> 8)
		}
		if _, err := bw.Write(row); err != nil {
			return err
		}
	}
	return bw.Flush()
}
