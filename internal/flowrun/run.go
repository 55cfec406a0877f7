package flowrun

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/blockflow/internal/config"
	"github.com/sokinpui/blockflow/internal/frames"
	"github.com/sokinpui/blockflow/internal/motion"
	"github.com/sokinpui/blockflow/internal/render"
)

// Run is the main application logic.
func Run(cfg *config.Config) error {
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return err
	}
	engine, err := motion.NewEngine(engineCfg)
	if err != nil {
		return err
	}
	log.Printf("Estimating motion with %s metric, %v blocks, %v window, %v traversal on %d workers.",
		engineCfg.Metric.Name(), engineCfg.Block, engineCfg.Window, engineCfg.Traversal, engine.Config().Workers)

	src, err := frames.Open(cfg.Source, cfg.Input, cfg.Scale)
	if err != nil {
		return fmt.Errorf("failed to open frames: %w", err)
	}
	defer src.Close()

	var out io.Writer = os.Stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	var processed int64
	proc := &Processor{
		Source:    src,
		Estimator: engine,
		Sink:      NewJSONSink(out),
		Drawer:    render.Arrows{Gain: cfg.Motion.Gain},
		RenderDir: cfg.RenderDir,
		Processed: &processed,
	}

	totalPairs := -1
	if counted, ok := src.(interface{ Len() int }); ok {
		totalPairs = max(counted.Len()-1, 0)
	}

	var spinnerWg sync.WaitGroup
	spinnerWg.Add(1)
	done := make(chan struct{})
	startTime := time.Now()
	go func() {
		defer spinnerWg.Done()
		showProgress(done, &processed, totalPairs, startTime)
	}()

	stats, err := proc.Run()
	close(done)
	spinnerWg.Wait()
	if err != nil {
		return err
	}

	duration := time.Since(startTime)
	log.Printf("Processed %d frames, %d pairs, %d offsets in %s.", stats.Frames, stats.Pairs, stats.Offsets, duration)
	printSummary(stats, duration)
	return nil
}

// showProgress redraws a spinner line on stderr until done is closed.
func showProgress(done <-chan struct{}, processed *int64, totalPairs int, startTime time.Time) {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	total := "?"
	if totalPairs >= 0 {
		total = fmt.Sprint(totalPairs)
	}
	for {
		select {
		case <-done:
			fmt.Fprintf(os.Stderr, "\r%s Estimation complete. %d/%s pairs processed.\n", "✓", atomic.LoadInt64(processed), total)
			return
		case <-ticker.C:
			s, _ = s.Update(spinner.TickMsg{})
			n := atomic.LoadInt64(processed)
			var pps float64
			if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
				pps = float64(n) / elapsed
			}
			fmt.Fprintf(os.Stderr, "\r%s Estimating pairs %d/%s... (%.2f pairs/s)", s.View(), n, total, pps)
		}
	}
}

func printSummary(stats Stats, duration time.Duration) {
	durationStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("202"))
	speedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("75"))

	var perPair time.Duration
	if stats.Pairs > 0 {
		perPair = stats.Elapsed / time.Duration(stats.Pairs)
	}
	fmt.Fprintf(os.Stderr, "Total processing time: %s\n", durationStyle.Render(fmt.Sprintf("%.4fs", duration.Seconds())))
	fmt.Fprintf(os.Stderr, "Estimation time per pair: %s\n", speedStyle.Render(perPair.String()))
}
