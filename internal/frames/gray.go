package frames

import (
	"image"

	"golang.org/x/image/draw"
)

// ToGray converts img to an 8-bit grayscale frame whose bounds start at the
// origin. A scale in (0, 1) shrinks the frame with bilinear filtering first;
// any other value keeps the original size.
func ToGray(img image.Image, scale float64) *image.Gray {
	bounds := img.Bounds()
	if scale > 0 && scale < 1 {
		w := max(int(float64(bounds.Dx())*scale), 1)
		h := max(int(float64(bounds.Dy())*scale), 1)
		dst := image.NewGray(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
		return dst
	}

	if gray, ok := img.(*image.Gray); ok && bounds.Min == (image.Point{}) {
		return gray
	}
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}
