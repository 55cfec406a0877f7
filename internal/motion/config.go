package motion

import (
	"fmt"
	"strings"
)

// Traversal selects which grid cells the builder visits.
type Traversal int

const (
	// Dense visits every cell.
	Dense Traversal = iota
	// Strided visits every second cell on both axes, starting at (0, 0).
	Strided
)

func (t Traversal) String() string {
	switch t {
	case Dense:
		return "dense"
	case Strided:
		return "strided"
	default:
		return fmt.Sprintf("Traversal(%d)", int(t))
	}
}

// Step is the distance between visited cells on each axis.
func (t Traversal) Step() int {
	if t == Strided {
		return 2
	}
	return 1
}

// ParseTraversal parses "dense" or "strided".
func ParseTraversal(s string) (Traversal, error) {
	switch strings.ToLower(s) {
	case "dense":
		return Dense, nil
	case "strided":
		return Strided, nil
	default:
		return 0, fmt.Errorf("%w: unsupported traversal: %s", ErrInvalidConfiguration, s)
	}
}

// Order assigns the two input frames to the template and window roles.
type Order int

const (
	// TemplateFromFirst cuts blocks from the first frame and searches for
	// them in the second.
	TemplateFromFirst Order = iota
	// TemplateFromSecond cuts blocks from the second frame and searches for
	// them in the first. Offsets then point the other way.
	TemplateFromSecond
)

func (o Order) String() string {
	switch o {
	case TemplateFromFirst:
		return "first"
	case TemplateFromSecond:
		return "second"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// ParseOrder parses "first" or "second".
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "first", "":
		return TemplateFromFirst, nil
	case "second":
		return TemplateFromSecond, nil
	default:
		return 0, fmt.Errorf("%w: unsupported frame order: %s", ErrInvalidConfiguration, s)
	}
}

// Config parametrises an Engine.
type Config struct {
	Block     Size // block size in pixels
	Window    Size // search window as a multiple of Block
	Metric    Metric
	Traversal Traversal
	Order     Order
	Bound     Bound
	Workers   int // <= 0 means one per CPU
}

// CorrelationConfig is the correlation-maximising engine over every cell.
func CorrelationConfig() Config {
	return Config{
		Block:     Size{W: 8, H: 8},
		Window:    Size{W: 1, H: 1},
		Metric:    Correlation{},
		Traversal: Dense,
	}
}

// SADConfig is the difference-minimising engine over every second cell.
func SADConfig() Config {
	return Config{
		Block:     Size{W: 8, H: 8},
		Window:    Size{W: 1, H: 1},
		Metric:    SAD{},
		Traversal: Strided,
	}
}

// Validate checks that c can describe a block grid.
func (c Config) Validate() error {
	if c.Block.W < 1 || c.Block.H < 1 {
		return fmt.Errorf("%w: block size must be positive, got %v", ErrInvalidConfiguration, c.Block)
	}
	if c.Window.W < 0 || c.Window.H < 0 {
		return fmt.Errorf("%w: search window must not be negative, got %v", ErrInvalidConfiguration, c.Window)
	}
	if c.Metric == nil {
		return fmt.Errorf("%w: no metric", ErrInvalidConfiguration)
	}
	if c.Traversal != Dense && c.Traversal != Strided {
		return fmt.Errorf("%w: unsupported traversal %v", ErrInvalidConfiguration, c.Traversal)
	}
	if c.Order != TemplateFromFirst && c.Order != TemplateFromSecond {
		return fmt.Errorf("%w: unsupported frame order %v", ErrInvalidConfiguration, c.Order)
	}
	if c.Bound != BoundInclusive && c.Bound != BoundExclusive {
		return fmt.Errorf("%w: unsupported search bound %v", ErrInvalidConfiguration, c.Bound)
	}
	return nil
}
