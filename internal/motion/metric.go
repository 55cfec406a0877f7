package motion

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// maxSample is the largest intensity an 8-bit gray sample can take.
const maxSample = 255

// Metric scores how well a candidate region matches a template of the same
// shape.
type Metric interface {
	// Name identifies the metric in configuration and logs.
	Name() string
	// Score compares a with b. Both must have the same size.
	Score(a, b *image.Gray) (float64, error)
	// Better reports whether candidate strictly improves on incumbent.
	Better(candidate, incumbent float64) bool
	// Worst is the initial incumbent for a search over a window of the
	// given size. Every real score is better than it.
	Worst(window Size) float64
}

// ParseMetric returns the metric registered under name.
func ParseMetric(name string) (Metric, error) {
	switch strings.ToLower(name) {
	case "correlation", "corr":
		return Correlation{}, nil
	case "sad", "diff":
		return SAD{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported metric: %s", ErrInvalidConfiguration, name)
	}
}

// Correlation is the zero-mean cross-correlation sum
// Σ(a-mean(a))·(b-mean(b)). It is not normalised, so it grows with block
// contrast. Higher is better.
type Correlation struct{}

func (Correlation) Name() string { return "correlation" }

func (Correlation) Score(a, b *image.Gray) (float64, error) {
	w, h, err := sameShape(a, b)
	if err != nil {
		return 0, err
	}
	if w == 0 || h == 0 {
		return 0, nil
	}
	meanA, meanB := mean(a, w, h), mean(b, w, h)

	var sum float64
	for y := 0; y < h; y++ {
		rowA := a.Pix[y*a.Stride : y*a.Stride+w]
		rowB := b.Pix[y*b.Stride : y*b.Stride+w]
		for x := range rowA {
			sum += (float64(rowA[x]) - meanA) * (float64(rowB[x]) - meanB)
		}
	}
	return sum, nil
}

func (Correlation) Better(candidate, incumbent float64) bool { return candidate > incumbent }

func (Correlation) Worst(Size) float64 { return math.Inf(-1) }

// SAD is the sum of absolute differences Σ|a-b|. Lower is better.
type SAD struct{}

func (SAD) Name() string { return "sad" }

func (SAD) Score(a, b *image.Gray) (float64, error) {
	w, h, err := sameShape(a, b)
	if err != nil {
		return 0, err
	}

	var sum int
	for y := 0; y < h; y++ {
		rowA := a.Pix[y*a.Stride : y*a.Stride+w]
		rowB := b.Pix[y*b.Stride : y*b.Stride+w]
		for x := range rowA {
			d := int(rowA[x]) - int(rowB[x])
			if d < 0 {
				d = -d
			}
			sum += d
		}
	}
	return float64(sum), nil
}

func (SAD) Better(candidate, incumbent float64) bool { return candidate < incumbent }

// Worst lies one above the largest SAD any pair of blocks inside the window
// can reach, so a maximal real difference still replaces it.
func (SAD) Worst(window Size) float64 {
	return float64(maxSample*window.W*window.H) + 1
}

// sameShape returns the common size of a and b, or ErrShapeMismatch.
func sameShape(a, b *image.Gray) (w, h int, err error) {
	sa, sb := a.Rect.Size(), b.Rect.Size()
	if sa != sb {
		return 0, 0, fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, sa, sb)
	}
	return sa.X, sa.Y, nil
}

func mean(g *image.Gray, w, h int) float64 {
	var sum int
	for y := 0; y < h; y++ {
		for _, v := range g.Pix[y*g.Stride : y*g.Stride+w] {
			sum += int(v)
		}
	}
	return float64(sum) / float64(w*h)
}
