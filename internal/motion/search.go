package motion

import (
	"fmt"
	"image"
	"strings"
)

// NoMatch is returned by Search when the window leaves no room for a single
// candidate position. It is distinct from the valid offset (0, 0).
var NoMatch = image.Point{X: -1, Y: -1}

// Bound selects how far the candidate offsets extend inside the window.
type Bound int

const (
	// BoundInclusive scans every offset from 0 to window-block inclusive,
	// covering the window symmetrically around its centre.
	BoundInclusive Bound = iota
	// BoundExclusive stops one short of window-block on each axis. The last
	// row and column of offsets are never tried, and a window equal to the
	// block yields NoMatch.
	BoundExclusive
)

func (b Bound) String() string {
	switch b {
	case BoundInclusive:
		return "inclusive"
	case BoundExclusive:
		return "exclusive"
	default:
		return fmt.Sprintf("Bound(%d)", int(b))
	}
}

// ParseBound parses "inclusive" or "exclusive".
func ParseBound(s string) (Bound, error) {
	switch strings.ToLower(s) {
	case "inclusive", "":
		return BoundInclusive, nil
	case "exclusive":
		return BoundExclusive, nil
	default:
		return 0, fmt.Errorf("%w: unsupported search bound: %s", ErrInvalidConfiguration, s)
	}
}

// span is the number of candidate positions along one axis.
func (b Bound) span(window, block int) int {
	n := window - block
	if b == BoundInclusive {
		n++
	}
	return max(n, 0)
}

// Search slides template over window and returns the offset, relative to
// the window's top-left corner, at which m scores best. Positions are
// visited row by row with x varying fastest; on equal scores the first one
// visited wins.
func Search(window, template *image.Gray, m Metric, bound Bound) (image.Point, error) {
	ws, ts := window.Rect.Size(), template.Rect.Size()
	nx, ny := bound.span(ws.X, ts.X), bound.span(ws.Y, ts.Y)

	best := NoMatch
	bestScore := m.Worst(Size{W: ws.X, H: ws.Y})
	for dy := 0; dy < ny; dy++ {
		for dx := 0; dx < nx; dx++ {
			r := image.Rect(dx, dy, dx+ts.X, dy+ts.Y).Add(window.Rect.Min)
			candidate := window.SubImage(r).(*image.Gray)
			score, err := m.Score(candidate, template)
			if err != nil {
				return NoMatch, err
			}
			if m.Better(score, bestScore) {
				bestScore = score
				best = image.Point{X: dx, Y: dy}
			}
		}
	}
	return best, nil
}
