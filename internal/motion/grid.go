package motion

import (
	"fmt"
	"image"
)

// Size is a width/height pair. Depending on context it counts pixels,
// blocks or block multiples.
type Size struct {
	W, H int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// Grid describes how a frame is partitioned into blocks and how far around
// each block the search extends.
type Grid struct {
	Blocks Size // number of blocks per axis
	Margin Size // search margin in pixels per axis
	Block  Size // block size in pixels
}

// NewGrid derives the block grid for a frame of the given size. The margin
// is floor(block*window/2) per axis. A frame too small for a single block
// plus margins yields zero blocks on that axis.
func NewGrid(frame, block, window Size) Grid {
	g := Grid{
		Block:  block,
		Margin: Size{W: block.W * window.W / 2, H: block.H * window.H / 2},
	}
	if block.W > 0 {
		g.Blocks.W = max((frame.W-2*g.Margin.W)/block.W, 0)
	}
	if block.H > 0 {
		g.Blocks.H = max((frame.H-2*g.Margin.H)/block.H, 0)
	}
	return g
}

// Empty reports whether the grid has no cells.
func (g Grid) Empty() bool {
	return g.Blocks.W == 0 || g.Blocks.H == 0
}

// Window is the size of the search region scanned for each block.
func (g Grid) Window() Size {
	return Size{W: g.Block.W + 2*g.Margin.W, H: g.Block.H + 2*g.Margin.H}
}

// WindowRect is the search region of cell (bx, by), relative to the frame
// origin.
func (g Grid) WindowRect(bx, by int) image.Rectangle {
	w := g.Window()
	x0, y0 := bx*g.Block.W, by*g.Block.H
	return image.Rect(x0, y0, x0+w.W, y0+w.H)
}

// TemplateRect is the block of cell (bx, by) itself, relative to the frame
// origin. It sits at the centre of WindowRect(bx, by).
func (g Grid) TemplateRect(bx, by int) image.Rectangle {
	x0 := g.Margin.W + bx*g.Block.W
	y0 := g.Margin.H + by*g.Block.H
	return image.Rect(x0, y0, x0+g.Block.W, y0+g.Block.H)
}

// visited returns how many of n cells a traversal with the given step
// touches.
func visited(n, step int) int {
	if n <= 0 {
		return 0
	}
	return (n + step - 1) / step
}
