// Package motion estimates per-block motion between two grayscale frames by
// exhaustive block matching.
//
// A frame is cut into a grid of fixed-size blocks. For every visited block
// the engine scans a window around the block's position in the other frame
// and records the offset at which the configured Metric scores best.
package motion

import (
	"fmt"
	"image"
	"runtime"
	"sync"
)

// Estimator computes the motion field between an earlier and a later frame.
type Estimator interface {
	Estimate(first, second *image.Gray) (*Field, error)
}

// Drawer renders a motion field on top of a frame.
type Drawer interface {
	Draw(frame *image.Gray, f *Field) *image.RGBA
}

// Engine is an Estimator that searches every block exhaustively. It holds
// only its configuration and is safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and returns an engine for it.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Estimate builds the motion field between first and second. Frames too
// small for a single block and its margins give an empty field, not an
// error.
func (e *Engine) Estimate(first, second *image.Gray) (*Field, error) {
	if first == nil || second == nil {
		return nil, fmt.Errorf("%w: missing frame", ErrInvalidConfiguration)
	}
	if fs, ss := first.Rect.Size(), second.Rect.Size(); fs != ss {
		return nil, fmt.Errorf("%w: frames are %v and %v", ErrShapeMismatch, fs, ss)
	}

	size := first.Rect.Size()
	grid := NewGrid(Size{W: size.X, H: size.Y}, e.cfg.Block, e.cfg.Window)
	step := e.cfg.Traversal.Step()
	field := &Field{
		BlockCounts:   grid.Blocks,
		WindowMargins: grid.Margin,
		BlockSize:     grid.Block,
		Stride:        step,
	}

	cols, rows := visited(grid.Blocks.W, step), visited(grid.Blocks.H, step)
	field.Offsets = make([]image.Point, cols*rows)
	if len(field.Offsets) == 0 {
		return field, nil
	}

	template, window := first, second
	if e.cfg.Order == TemplateFromSecond {
		template, window = second, first
	}
	search := func(cell image.Point) (image.Point, error) {
		return e.searchCell(grid, window, template, cell)
	}

	jobs := make(chan cellJob, len(field.Offsets))
	for i := range field.Offsets {
		jobs <- cellJob{
			Index: i,
			Cell:  image.Point{X: (i % cols) * step, Y: (i / cols) * step},
		}
	}
	close(jobs)

	var errs errOnce
	var wg sync.WaitGroup
	for i := 0; i < min(e.cfg.Workers, len(field.Offsets)); i++ {
		wg.Add(1)
		go worker(&wg, jobs, field.Offsets, &errs, search)
	}
	wg.Wait()

	if err := errs.get(); err != nil {
		return nil, err
	}
	return field, nil
}

// searchCell cuts the window and template regions of one cell and runs the
// offset search on them.
func (e *Engine) searchCell(grid Grid, window, template *image.Gray, cell image.Point) (image.Point, error) {
	wr := grid.WindowRect(cell.X, cell.Y).Add(window.Rect.Min)
	tr := grid.TemplateRect(cell.X, cell.Y).Add(template.Rect.Min)

	windowRegion := window.SubImage(wr).(*image.Gray)
	templateRegion := template.SubImage(tr).(*image.Gray)
	if windowRegion.Rect != wr || templateRegion.Rect != tr {
		return NoMatch, fmt.Errorf("%w: cell %v falls outside the frame", ErrShapeMismatch, cell)
	}
	return Search(windowRegion, templateRegion, e.cfg.Metric, e.cfg.Bound)
}
