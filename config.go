package main

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// BinarizeOptions controls the grayscale/threshold preprocessing.
type BinarizeOptions struct {
	Threshold uint8   `toml:"threshold"`
	Otsu      bool    `toml:"otsu"`
	Invert    bool    `toml:"invert"`
	Upscale   float64 `toml:"upscale"`
}

// TraceOptions selects and tunes the bitmap tracer.
type TraceOptions struct {
	Tracer       string  `toml:"tracer"`
	PotracePath  string  `toml:"potrace_path"`
	TurdSize     int     `toml:"turd_size"`
	AlphaMax     float64 `toml:"alpha_max"`
	OptTolerance float64 `toml:"opt_tolerance"`
}

// OutputOptions names the produced files.
type OutputOptions struct {
	Path  string `toml:"path"`
	Layer string `toml:"layer"`
}

type Config struct {
	Binarize BinarizeOptions `toml:"binarize"`
	Trace    TraceOptions    `toml:"trace"`
	Sample   SampleOptions   `toml:"sample"`
	Output   OutputOptions   `toml:"output"`
	GCode    GCodeOptions    `toml:"gcode"`
	Preview  PreviewOptions  `toml:"preview"`
	Workers  int             `toml:"workers"`
}

func DefaultConfig() Config {
	return Config{
		Binarize: BinarizeOptions{
			Threshold: 128,
			Upscale:   1,
		},
		Trace: TraceOptions{
			Tracer:       TracerPotrace,
			PotracePath:  "potrace",
			TurdSize:     2,
			AlphaMax:     1.0,
			OptTolerance: 0.2,
		},
		Sample: SampleOptions{
			SamplesPerCurve:   100,
			DistanceThreshold: 0.5,
			FlipY:             true,
			Scale:             1,
		},
		Output: OutputOptions{
			Layer: "0",
		},
		GCode: GCodeOptions{
			TravelFeed:   3000,
			CutFeed:      1500,
			SpindleSpeed: 1000,
		},
		Preview: PreviewOptions{
			Width:     1024,
			LineWidth: 1.5,
			Margin:    16,
		},
		Workers: runtime.NumCPU(),
	}
}

// LoadConfigFile decodes a TOML file over cfg. Keys that do not map to a
// field are rejected so typos do not pass silently.
func LoadConfigFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: %s: unknown keys %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}
	return nil
}

func (c Config) Validate() error {
	switch {
	case c.Sample.SamplesPerCurve < 1:
		return fmt.Errorf("%w: samples per curve must be at least 1, got %d", ErrInvalidConfig, c.Sample.SamplesPerCurve)
	case c.Sample.DistanceThreshold <= 0:
		return fmt.Errorf("%w: distance threshold must be positive, got %g", ErrInvalidConfig, c.Sample.DistanceThreshold)
	case c.Sample.Scale <= 0:
		return fmt.Errorf("%w: scale must be positive, got %g", ErrInvalidConfig, c.Sample.Scale)
	case c.Binarize.Upscale <= 0:
		return fmt.Errorf("%w: upscale must be positive, got %g", ErrInvalidConfig, c.Binarize.Upscale)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	case c.Trace.TurdSize < 0:
		return fmt.Errorf("%w: turd size must not be negative, got %d", ErrInvalidConfig, c.Trace.TurdSize)
	case c.Preview.Width < 0 || c.Preview.Margin < 0:
		return fmt.Errorf("%w: preview width and margin must not be negative", ErrInvalidConfig)
	}
	return nil
}
