// Package flowrun drives the motion engine over a sequence of frames.
package flowrun

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/sokinpui/blockflow/internal/frames"
	"github.com/sokinpui/blockflow/internal/motion"
	"github.com/sokinpui/blockflow/internal/render"
)

// Record is the result for one pair of consecutive frames.
type Record struct {
	Pair    [2]int        `json:"pair"`
	Elapsed float64       `json:"elapsedSeconds"`
	Field   *motion.Field `json:"field"`
}

// Sink consumes records in frame order.
type Sink interface {
	Write(r Record) error
}

// JSONSink writes one JSON object per line.
type JSONSink struct {
	enc *json.Encoder
}

func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

func (s *JSONSink) Write(r Record) error {
	return s.enc.Encode(r)
}

// Stats summarises a finished run.
type Stats struct {
	Frames  int
	Pairs   int
	Offsets int
	Elapsed time.Duration // time spent estimating, excluding decoding
}

// Processor pairs every frame with its predecessor and estimates the motion
// between them.
type Processor struct {
	Source    frames.Source
	Estimator motion.Estimator
	Sink      Sink

	// Drawer and RenderDir are optional; when both are set every field is
	// drawn over the later frame and saved as a PNG.
	Drawer    motion.Drawer
	RenderDir string

	// Processed, when non-nil, is incremented after each pair.
	Processed *int64
}

// Run consumes the source until io.EOF.
func (p *Processor) Run() (Stats, error) {
	var (
		stats Stats
		prev  *image.Gray
	)
	for {
		frame, err := p.Source.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("frame %d: %w", stats.Frames, err)
		}
		index := stats.Frames
		stats.Frames++

		if prev != nil {
			if err := p.processPair(index, prev, frame, &stats); err != nil {
				return stats, err
			}
		}
		prev = frame
	}
}

func (p *Processor) processPair(index int, earlier, later *image.Gray, stats *Stats) error {
	start := time.Now()
	field, err := p.Estimator.Estimate(earlier, later)
	if err != nil {
		return fmt.Errorf("frames %d-%d: %w", index-1, index, err)
	}
	elapsed := time.Since(start)
	log.Printf("Frames %d-%d: %d offsets over %v blocks in %s.", index-1, index, len(field.Offsets), field.BlockCounts, elapsed)

	stats.Pairs++
	stats.Offsets += len(field.Offsets)
	stats.Elapsed += elapsed

	if err := p.Sink.Write(Record{Pair: [2]int{index - 1, index}, Elapsed: elapsed.Seconds(), Field: field}); err != nil {
		return fmt.Errorf("failed to write field %d: %w", index, err)
	}

	if p.Drawer != nil && p.RenderDir != "" {
		img := p.Drawer.Draw(later, field)
		if _, err := render.SavePNG(p.RenderDir, fmt.Sprintf("flow_%05d.png", index), img); err != nil {
			return err
		}
	}

	if p.Processed != nil {
		atomic.AddInt64(p.Processed, 1)
	}
	return nil
}
