package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/sokinpui/blockflow/internal/config"
	"github.com/sokinpui/blockflow/internal/flowrun"
	"github.com/sokinpui/blockflow/internal/logger"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logFile, err := logger.Init(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if err = validateConfig(cfg); err != nil {
		log.Printf("Configuration error: %v", err)
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if err = flowrun.Run(cfg); err != nil {
		log.Printf("Application error: %v", err)
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags builds the configuration from defaults, the optional --config
// file and then any flag given explicitly on the command line.
func parseFlags(args []string) (*config.Config, error) {
	def := config.Default()
	fs := pflag.NewFlagSet("blockflow", pflag.ContinueOnError)

	configPath := fs.StringP("config", "f", "", "Path to a YAML configuration file.")
	input := fs.StringP("input", "i", def.Input, "Directory of frames or video file.")
	source := fs.String("source", def.Source, "Frame source (dir, video).")
	output := fs.StringP("output", "o", def.Output, "File to write motion fields to as JSON lines (default stdout).")
	renderDir := fs.String("render-dir", def.RenderDir, "Directory to save PNG frames with motion vectors drawn on them.")
	logFile := fs.String("log", def.LogFile, "Log file path; empty logs to stderr.")
	scale := fs.Float64("scale", def.Scale, "Downscale factor applied to every frame, in (0, 1].")
	block := fs.StringP("block", "b", def.Motion.Block, "Block size in pixels, WxH.")
	window := fs.StringP("window", "w", def.Motion.Window, "Search window size in blocks, WxH.")
	metric := fs.StringP("metric", "m", def.Motion.Metric, "Similarity metric (correlation, sad).")
	traversal := fs.StringP("traversal", "t", def.Motion.Traversal, "Grid traversal (dense, strided).")
	order := fs.String("order", def.Motion.Order, "Frame the blocks are cut from (first, second).")
	bound := fs.String("bound", def.Motion.Bound, "Search bound (inclusive, exclusive).")
	workers := fs.IntP("workers", "c", def.Motion.Workers, "Number of goroutines searching blocks.")
	gain := fs.Float64("gain", def.Motion.Gain, "Vector length multiplier when rendering.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := def
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	override := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	override("input", func() { cfg.Input = *input })
	override("source", func() { cfg.Source = *source })
	override("output", func() { cfg.Output = *output })
	override("render-dir", func() { cfg.RenderDir = *renderDir })
	override("log", func() { cfg.LogFile = *logFile })
	override("scale", func() { cfg.Scale = *scale })
	override("block", func() { cfg.Motion.Block = *block })
	override("window", func() { cfg.Motion.Window = *window })
	override("metric", func() { cfg.Motion.Metric = *metric })
	override("traversal", func() { cfg.Motion.Traversal = *traversal })
	override("order", func() { cfg.Motion.Order = *order })
	override("bound", func() { cfg.Motion.Bound = *bound })
	override("workers", func() { cfg.Motion.Workers = *workers })
	override("gain", func() { cfg.Motion.Gain = *gain })
	return cfg, nil
}

// validateConfig checks if the provided configuration is valid.
func validateConfig(cfg *config.Config) error {
	if cfg.Input == "" {
		return fmt.Errorf("--input/-i flag is required")
	}
	if _, err := os.Stat(cfg.Input); os.IsNotExist(err) {
		return fmt.Errorf("input does not exist: %s", cfg.Input)
	}
	return cfg.Validate()
}
