package rasterwriter

import (
	"image"

	"github.com/fogleman/gg"
)

// captionHeight fits gg's built-in 7x13 face with some padding.
const captionHeight = 18

// Annotate draws caption on a translucent strip along the bottom edge.
// The source image is not modified.
func (w *Writer) Annotate(img image.Image, caption string) image.Image {
	dc := gg.NewContextForImage(toStdImage(img))
	width, height := float64(dc.Width()), float64(dc.Height())
	bar := min(float64(captionHeight), height)

	dc.SetRGBA(0, 0, 0, 0.6)
	dc.DrawRectangle(0, height-bar, width, bar)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(caption, 4, height-bar/2, 0, 0.5)

	return dc.Image()
}
