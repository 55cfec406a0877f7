// Package render draws motion fields on top of frames.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/sokinpui/blockflow/internal/motion"
)

// Arrows draws one line per block from the block centre along its
// displacement. The hue encodes the direction; blocks that did not move get
// a single gray dot and NoMatch blocks are left untouched.
type Arrows struct {
	// Gain stretches vectors so small motions stay visible. Values below 1
	// are treated as 1.
	Gain float64
}

var _ motion.Drawer = Arrows{}

var stillColor = color.RGBA{R: 160, G: 160, B: 160, A: 255}

// Draw returns an RGBA copy of frame with the field painted over it.
func (a Arrows) Draw(frame *image.Gray, f *motion.Field) *image.RGBA {
	dst := image.NewRGBA(frame.Bounds())
	draw.Draw(dst, dst.Bounds(), frame, frame.Bounds().Min, draw.Src)

	gain := math.Max(a.Gain, 1)
	origin := frame.Bounds().Min
	for i := range f.Offsets {
		d, ok := f.Displacement(i)
		if !ok {
			continue
		}
		cell := f.Cell(i)
		from := image.Point{
			X: f.WindowMargins.W + cell.X*f.BlockSize.W + f.BlockSize.W/2,
			Y: f.WindowMargins.H + cell.Y*f.BlockSize.H + f.BlockSize.H/2,
		}.Add(origin)

		if d == (image.Point{}) {
			dst.Set(from.X, from.Y, stillColor)
			continue
		}
		to := from.Add(image.Point{
			X: int(math.Round(float64(d.X) * gain)),
			Y: int(math.Round(float64(d.Y) * gain)),
		})
		line(dst, from, to, directionColor(d))
	}
	return dst
}

// directionColor maps the angle of d onto the hue circle.
func directionColor(d image.Point) color.Color {
	angle := math.Atan2(float64(d.Y), float64(d.X)) * 180 / math.Pi
	if angle < 0 {
		angle += 360
	}
	return colorful.Hsv(angle, 1, 1).Clamped()
}

// line draws a Bresenham line from p to q inclusive. Points outside dst are
// clipped by Set.
func line(dst draw.Image, p, q image.Point, c color.Color) {
	dx, dy := abs(q.X-p.X), -abs(q.Y-p.Y)
	sx, sy := sign(q.X-p.X), sign(q.Y-p.Y)
	e := dx + dy
	for {
		dst.Set(p.X, p.Y, c)
		if p == q {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			p.X += sx
		}
		if e2 <= dx {
			e += dx
			p.Y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
