package motion

import (
	"encoding/json"
	"errors"
	"image"
	"math/rand"
	"reflect"
	"testing"
)

// stripes returns a frame with one bright pixel in every 8-pixel run of
// each row. The bright column drifts by triangular numbers from row to row,
// so every 8x8 block has the same mean and variance, yet no two blocks
// within a ±4 pixel neighbourhood are equal. shift translates the content.
func stripes(w, h int, shift image.Point) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		sy := y - shift.Y
		phase := ((sy*(sy+1)/2)%8 + 8) % 8
		for x := 0; x < w; x++ {
			if ((x-shift.X+phase)%8+8)%8 == 0 {
				g.Pix[y*g.Stride+x] = 255
			}
		}
	}
	return g
}

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestEstimateExampleGrid(t *testing.T) {
	frame := stripes(32, 32, image.Point{})
	field, err := newEngine(t, CorrelationConfig()).Estimate(frame, frame)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if field.BlockCounts != (Size{3, 3}) {
		t.Fatalf("expected 3x3 blocks, got %v", field.BlockCounts)
	}
	if field.WindowMargins != (Size{4, 4}) {
		t.Fatalf("expected margins 4x4, got %v", field.WindowMargins)
	}
	if len(field.Offsets) != 9 {
		t.Fatalf("expected 9 offsets, got %d", len(field.Offsets))
	}
}

func TestEstimateZeroMotion(t *testing.T) {
	frame := stripes(48, 40, image.Point{})
	for _, cfg := range []Config{CorrelationConfig(), SADConfig()} {
		for _, traversal := range []Traversal{Dense, Strided} {
			cfg.Traversal = traversal
			field, err := newEngine(t, cfg).Estimate(frame, frame)
			if err != nil {
				t.Fatalf("%s/%v: %v", cfg.Metric.Name(), traversal, err)
			}
			if len(field.Offsets) == 0 {
				t.Fatalf("%s/%v: no offsets", cfg.Metric.Name(), traversal)
			}
			for i, o := range field.Offsets {
				if o != (image.Point{X: 4, Y: 4}) {
					t.Fatalf("%s/%v: offset %d is %v, want window centre", cfg.Metric.Name(), traversal, i, o)
				}
			}
		}
	}
}

func TestEstimateRecoversTranslation(t *testing.T) {
	shift := image.Point{X: 2, Y: -1}
	first := stripes(48, 48, image.Point{})
	second := stripes(48, 48, shift)

	for _, cfg := range []Config{CorrelationConfig(), SADConfig()} {
		field, err := newEngine(t, cfg).Estimate(first, second)
		if err != nil {
			t.Fatalf("%s: %v", cfg.Metric.Name(), err)
		}
		for i := range field.Offsets {
			d, ok := field.Displacement(i)
			if !ok || d != shift {
				t.Fatalf("%s: cell %v moved %v, want %v", cfg.Metric.Name(), field.Cell(i), d, shift)
			}
		}

		cfg.Order = TemplateFromSecond
		field, err = newEngine(t, cfg).Estimate(first, second)
		if err != nil {
			t.Fatalf("%s: %v", cfg.Metric.Name(), err)
		}
		for i := range field.Offsets {
			if d, _ := field.Displacement(i); d != shift.Mul(-1) {
				t.Fatalf("%s reversed: cell %v moved %v, want %v", cfg.Metric.Name(), field.Cell(i), d, shift.Mul(-1))
			}
		}
	}
}

func TestEstimateOffsetCounts(t *testing.T) {
	// 5x3 blocks of 8 pixels with 4 pixel margins.
	frame := stripes(48, 32, image.Point{})
	tests := []struct {
		traversal Traversal
		want      int
	}{
		{Dense, 15},
		{Strided, 3 * 2},
	}
	for _, tt := range tests {
		cfg := SADConfig()
		cfg.Traversal = tt.traversal
		field, err := newEngine(t, cfg).Estimate(frame, frame)
		if err != nil {
			t.Fatalf("%v: %v", tt.traversal, err)
		}
		if field.BlockCounts != (Size{5, 3}) {
			t.Fatalf("%v: unexpected block counts %v", tt.traversal, field.BlockCounts)
		}
		if len(field.Offsets) != tt.want {
			t.Fatalf("%v: expected %d offsets, got %d", tt.traversal, tt.want, len(field.Offsets))
		}
		if len(field.Offsets) > field.BlockCounts.W*field.BlockCounts.H {
			t.Fatalf("%v: more offsets than cells", tt.traversal)
		}
	}
}

func TestFieldCellStrided(t *testing.T) {
	f := &Field{BlockCounts: Size{5, 3}, Stride: 2, Offsets: make([]image.Point, 6)}
	want := []image.Point{{0, 0}, {2, 0}, {4, 0}, {0, 2}, {2, 2}, {4, 2}}
	for i, w := range want {
		if got := f.Cell(i); got != w {
			t.Fatalf("cell %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestEstimateBlockEqualsFrame(t *testing.T) {
	frame := stripes(16, 16, image.Point{})
	cfg := CorrelationConfig()
	cfg.Block = Size{16, 16}
	cfg.Window = Size{0, 0}

	field, err := newEngine(t, cfg).Estimate(frame, frame)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if field.BlockCounts != (Size{1, 1}) || len(field.Offsets) != 1 {
		t.Fatalf("expected a single block, got %v with %d offsets", field.BlockCounts, len(field.Offsets))
	}
	if field.Offsets[0] != (image.Point{}) {
		t.Fatalf("expected (0,0), got %v", field.Offsets[0])
	}

	cfg.Bound = BoundExclusive
	field, _ = newEngine(t, cfg).Estimate(frame, frame)
	if field.Offsets[0] != NoMatch {
		t.Fatalf("exclusive bound: expected NoMatch, got %v", field.Offsets[0])
	}
}

func TestEstimateDegenerateFrame(t *testing.T) {
	frame := image.NewGray(image.Rect(0, 0, 15, 64))
	field, err := newEngine(t, CorrelationConfig()).Estimate(frame, frame)
	if err != nil {
		t.Fatalf("undersized frame must not fail: %v", err)
	}
	if field.BlockCounts.W != 0 {
		t.Fatalf("expected no columns, got %v", field.BlockCounts)
	}
	if len(field.Offsets) != 0 {
		t.Fatalf("expected no offsets, got %d", len(field.Offsets))
	}
}

func TestEstimateDeterministicAcrossWorkers(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	first, second := randomGray(rng, 64, 48), randomGray(rng, 64, 48)

	var fields []*Field
	for _, workers := range []int{1, 3, 16} {
		cfg := CorrelationConfig()
		cfg.Workers = workers
		field, err := newEngine(t, cfg).Estimate(first, second)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		fields = append(fields, field)
	}
	for i := 1; i < len(fields); i++ {
		if !reflect.DeepEqual(fields[0], fields[i]) {
			t.Fatalf("field %d differs from single-worker result", i)
		}
	}
}

func TestEstimateSubImageFrames(t *testing.T) {
	big := stripes(64, 64, image.Point{})
	first := big.SubImage(image.Rect(8, 8, 40, 40)).(*image.Gray)
	second := big.SubImage(image.Rect(8, 8, 40, 40)).(*image.Gray)
	field, err := newEngine(t, SADConfig()).Estimate(first, second)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	for i, o := range field.Offsets {
		if o != (image.Point{X: 4, Y: 4}) {
			t.Fatalf("offset %d is %v", i, o)
		}
	}
}

func TestEstimateErrors(t *testing.T) {
	e := newEngine(t, CorrelationConfig())
	a := image.NewGray(image.Rect(0, 0, 32, 32))
	b := image.NewGray(image.Rect(0, 0, 32, 24))
	if _, err := e.Estimate(a, b); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
	if _, err := e.Estimate(a, nil); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

type failingMetric struct{ SAD }

func (failingMetric) Score(a, b *image.Gray) (float64, error) {
	return 0, ErrShapeMismatch
}

func TestEstimatePropagatesMetricError(t *testing.T) {
	cfg := SADConfig()
	cfg.Metric = failingMetric{}
	frame := image.NewGray(image.Rect(0, 0, 32, 32))
	field, err := newEngine(t, cfg).Estimate(frame, frame)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected metric error, got %v", err)
	}
	if field != nil {
		t.Fatalf("expected no field on error")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero block", func(c *Config) { c.Block = Size{0, 8} }},
		{"negative window", func(c *Config) { c.Window = Size{1, -1} }},
		{"no metric", func(c *Config) { c.Metric = nil }},
		{"bad traversal", func(c *Config) { c.Traversal = Traversal(7) }},
		{"bad order", func(c *Config) { c.Order = Order(3) }},
		{"bad bound", func(c *Config) { c.Bound = Bound(9) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := CorrelationConfig()
			tt.modify(&cfg)
			if _, err := NewEngine(cfg); !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestFieldJSON(t *testing.T) {
	f := &Field{
		BlockCounts:   Size{2, 1},
		WindowMargins: Size{4, 4},
		BlockSize:     Size{8, 8},
		Stride:        1,
		Offsets:       []image.Point{{4, 4}, {-1, -1}},
	}
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"blockCounts":[2,1],"windowMargins":[4,4],"blockSize":[8,8],"stride":1,"offsets":[[4,4],[-1,-1]]}`
	if string(data) != want {
		t.Fatalf("unexpected JSON:\n%s\nwant\n%s", data, want)
	}

	empty, _ := json.Marshal(&Field{})
	var back Field
	if err := json.Unmarshal(empty, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Offsets == nil || len(back.Offsets) != 0 {
		t.Fatalf("expected an empty offsets slice, got %#v", back.Offsets)
	}
}
