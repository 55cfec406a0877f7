// Package config holds the blockflow run configuration, loaded from YAML
// and overridden by command-line flags.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sokinpui/blockflow/internal/motion"
)

// Config is the complete configuration of one blockflow run.
type Config struct {
	Input     string       `yaml:"input"`      // frame directory or video file
	Source    string       `yaml:"source"`     // dir, video
	Output    string       `yaml:"output"`     // JSON-lines file, empty for stdout
	RenderDir string       `yaml:"render_dir"` // PNG vector plots, empty to skip
	LogFile   string       `yaml:"log_file"`
	Scale     float64      `yaml:"scale"` // frame downscale factor in (0, 1]
	Motion    MotionConfig `yaml:"motion"`
}

// MotionConfig mirrors motion.Config in a file-friendly form.
type MotionConfig struct {
	Block     string  `yaml:"block"`  // block size, e.g. "16x16"
	Window    string  `yaml:"window"` // search window in blocks, e.g. "1x1"
	Metric    string  `yaml:"metric"` // correlation, sad
	Traversal string  `yaml:"traversal"`
	Order     string  `yaml:"order"` // first, second
	Bound     string  `yaml:"bound"` // inclusive, exclusive
	Workers   int     `yaml:"workers"`
	Gain      float64 `yaml:"gain"` // vector stretch when rendering
}

// Default returns the configuration used when neither file nor flags say
// otherwise: the difference engine on 16x16 blocks.
func Default() *Config {
	return &Config{
		Source:  "dir",
		LogFile: "blockflow.log",
		Scale:   1,
		Motion: MotionConfig{
			Block:     "16x16",
			Window:    "1x1",
			Metric:    "sad",
			Traversal: "strided",
			Order:     "first",
			Bound:     "inclusive",
			Workers:   runtime.NumCPU(),
			Gain:      1,
		},
	}
}

// Load reads a YAML file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that do not depend on the filesystem.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input is required")
	}
	switch strings.ToLower(c.Source) {
	case "dir", "video":
	default:
		return fmt.Errorf("unsupported source: %s. Supported sources are dir, video", c.Source)
	}
	if c.Scale <= 0 || c.Scale > 1 {
		return fmt.Errorf("scale must be in (0, 1], got %v", c.Scale)
	}
	if c.Motion.Workers <= 0 {
		return fmt.Errorf("workers must be a positive integer")
	}
	_, err := c.EngineConfig()
	return err
}

// EngineConfig converts the motion section into a motion.Config.
func (c *Config) EngineConfig() (motion.Config, error) {
	var (
		mc  motion.Config
		err error
	)
	if mc.Block, err = ParseSize(c.Motion.Block); err != nil {
		return mc, fmt.Errorf("block: %w", err)
	}
	if mc.Window, err = ParseSize(c.Motion.Window); err != nil {
		return mc, fmt.Errorf("window: %w", err)
	}
	if mc.Metric, err = motion.ParseMetric(c.Motion.Metric); err != nil {
		return mc, err
	}
	if mc.Traversal, err = motion.ParseTraversal(c.Motion.Traversal); err != nil {
		return mc, err
	}
	if mc.Order, err = motion.ParseOrder(c.Motion.Order); err != nil {
		return mc, err
	}
	if mc.Bound, err = motion.ParseBound(c.Motion.Bound); err != nil {
		return mc, err
	}
	mc.Workers = c.Motion.Workers
	return mc, mc.Validate()
}

// ParseSize parses "WxH", or a single number for a square.
func ParseSize(s string) (motion.Size, error) {
	w, h, found := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !found {
		h = w
	}
	wi, err := strconv.Atoi(w)
	if err != nil {
		return motion.Size{}, fmt.Errorf("%w: bad size %q", motion.ErrInvalidConfiguration, s)
	}
	hi, err := strconv.Atoi(h)
	if err != nil {
		return motion.Size{}, fmt.Errorf("%w: bad size %q", motion.ErrInvalidConfiguration, s)
	}
	return motion.Size{W: wi, H: hi}, nil
}
