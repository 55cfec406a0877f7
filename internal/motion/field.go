package motion

import (
	"encoding/json"
	"image"
)

// Field is the motion estimated between one pair of frames.
//
// Offsets holds one entry per visited cell in row-major order. Under a
// strided traversal cells are skipped, so len(Offsets) can be smaller than
// BlockCounts.W*BlockCounts.H; use Cell to recover grid coordinates.
type Field struct {
	BlockCounts   Size
	WindowMargins Size
	BlockSize     Size
	Stride        int
	Offsets       []image.Point
}

// Columns is the number of visited cells per grid row.
func (f *Field) Columns() int {
	return visited(f.BlockCounts.W, f.stride())
}

// Rows is the number of visited grid rows.
func (f *Field) Rows() int {
	return visited(f.BlockCounts.H, f.stride())
}

// Cell returns the grid coordinates of Offsets[i].
func (f *Field) Cell(i int) image.Point {
	cols, step := f.Columns(), f.stride()
	if cols == 0 {
		return image.Point{}
	}
	return image.Point{X: (i % cols) * step, Y: (i / cols) * step}
}

// Displacement converts Offsets[i] to a motion vector in pixels, where
// (0, 0) means the block did not move. ok is false for NoMatch.
func (f *Field) Displacement(i int) (d image.Point, ok bool) {
	o := f.Offsets[i]
	if o == NoMatch {
		return image.Point{}, false
	}
	return o.Sub(image.Point{X: f.WindowMargins.W, Y: f.WindowMargins.H}), true
}

func (f *Field) stride() int {
	if f.Stride < 1 {
		return 1
	}
	return f.Stride
}

type fieldJSON struct {
	BlockCounts   [2]int   `json:"blockCounts"`
	WindowMargins [2]int   `json:"windowMargins"`
	BlockSize     [2]int   `json:"blockSize"`
	Stride        int      `json:"stride"`
	Offsets       [][2]int `json:"offsets"`
}

// MarshalJSON encodes sizes and offsets as [x, y] pairs.
func (f *Field) MarshalJSON() ([]byte, error) {
	out := fieldJSON{
		BlockCounts:   [2]int{f.BlockCounts.W, f.BlockCounts.H},
		WindowMargins: [2]int{f.WindowMargins.W, f.WindowMargins.H},
		BlockSize:     [2]int{f.BlockSize.W, f.BlockSize.H},
		Stride:        f.stride(),
		Offsets:       make([][2]int, len(f.Offsets)),
	}
	for i, o := range f.Offsets {
		out.Offsets[i] = [2]int{o.X, o.Y}
	}
	return json.Marshal(out)
}

func (f *Field) UnmarshalJSON(data []byte) error {
	var in fieldJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	f.BlockCounts = Size{W: in.BlockCounts[0], H: in.BlockCounts[1]}
	f.WindowMargins = Size{W: in.WindowMargins[0], H: in.WindowMargins[1]}
	f.BlockSize = Size{W: in.BlockSize[0], H: in.BlockSize[1]}
	f.Stride = in.Stride
	f.Offsets = make([]image.Point, len(in.Offsets))
	for i, o := range in.Offsets {
		f.Offsets[i] = image.Point{X: o[0], Y: o[1]}
	}
	return nil
}
