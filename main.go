package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) > 1 && os.Args[1] == "inspect" {
		inspect(os.Args[2:])
		return
	}

	cfg, input, verbose, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("cadtrace: %v", err)
	}

	var logger *log.Logger
	if verbose {
		logger = log.New(os.Stderr, "", 0)
	}

	conv, err := NewConverter(cfg, logger)
	if err != nil {
		log.Fatalf("cadtrace: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := conv.Convert(ctx, input)
	if err != nil {
		stop()
		log.Fatalf("cadtrace: %v", err)
	}

	fmt.Printf("Drawing saved to %s with %d polylines", res.OutputPath, res.Polylines)
	if res.Skipped > 0 {
		fmt.Printf(" (%d degenerate paths skipped)", res.Skipped)
	}
	fmt.Println()
}

// parseFlags layers defaults, the optional TOML file and explicitly set flags.
func parseFlags(args []string) (Config, string, bool, error) {
	fs := flag.NewFlagSet("cadtrace", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: cadtrace [flags] input_image\n       cadtrace inspect file.dxf\n\n")
		fs.PrintDefaults()
	}

	def := DefaultConfig()
	flags := def

	configPath := fs.String("config", "", "TOML configuration file")
	verbose := fs.Bool("v", false, "log each pipeline stage")
	threshold := fs.Uint("threshold", uint(def.Binarize.Threshold), "grayscale threshold for ink (0-255)")
	fs.BoolVar(&flags.Binarize.Otsu, "otsu", def.Binarize.Otsu, "pick the threshold with Otsu's method")
	fs.BoolVar(&flags.Binarize.Invert, "invert", def.Binarize.Invert, "trace light shapes on a dark background")
	fs.Float64Var(&flags.Binarize.Upscale, "upscale", def.Binarize.Upscale, "resample the image by this factor before tracing")
	fs.StringVar(&flags.Trace.Tracer, "tracer", def.Trace.Tracer, "tracer backend: potrace or gotrace")
	fs.StringVar(&flags.Trace.PotracePath, "potrace", def.Trace.PotracePath, "potrace executable")
	fs.IntVar(&flags.Trace.TurdSize, "turdsize", def.Trace.TurdSize, "suppress speckles up to this many pixels")
	fs.Float64Var(&flags.Trace.AlphaMax, "alphamax", def.Trace.AlphaMax, "corner threshold")
	fs.Float64Var(&flags.Trace.OptTolerance, "opttolerance", def.Trace.OptTolerance, "curve optimization tolerance, 0 disables")
	fs.IntVar(&flags.Sample.SamplesPerCurve, "samples", def.Sample.SamplesPerCurve, "sample points per curve segment")
	fs.Float64Var(&flags.Sample.DistanceThreshold, "distance", def.Sample.DistanceThreshold, "drop points closer than this to the previous point")
	fs.BoolVar(&flags.Sample.FlipY, "flip-y", def.Sample.FlipY, "flip Y so the drawing is upright in CAD")
	fs.Float64Var(&flags.Sample.Scale, "scale", def.Sample.Scale, "drawing units per image pixel")
	fs.StringVar(&flags.Output.Path, "o", def.Output.Path, "output file, .dxf or .gcode (default <input>.dxf)")
	fs.StringVar(&flags.Output.Layer, "layer", def.Output.Layer, "DXF layer name")
	fs.StringVar(&flags.Preview.Path, "preview", def.Preview.Path, "also render the polylines to this PNG")
	fs.IntVar(&flags.Preview.Width, "preview-width", def.Preview.Width, "preview width in pixels")
	fs.IntVar(&flags.Workers, "workers", def.Workers, "paths simplified in parallel")

	if err := fs.Parse(args); err != nil {
		return def, "", false, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return def, "", false, fmt.Errorf("expected one input image, got %d arguments", fs.NArg())
	}
	if *threshold > 255 {
		return def, "", false, fmt.Errorf("%w: threshold %d out of range", ErrInvalidConfig, *threshold)
	}
	flags.Binarize.Threshold = uint8(*threshold)

	cfg := def
	if *configPath != "" {
		if err := LoadConfigFile(*configPath, &cfg); err != nil {
			return def, "", false, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threshold":
			cfg.Binarize.Threshold = flags.Binarize.Threshold
		case "otsu":
			cfg.Binarize.Otsu = flags.Binarize.Otsu
		case "invert":
			cfg.Binarize.Invert = flags.Binarize.Invert
		case "upscale":
			cfg.Binarize.Upscale = flags.Binarize.Upscale
		case "tracer":
			cfg.Trace.Tracer = flags.Trace.Tracer
		case "potrace":
			cfg.Trace.PotracePath = flags.Trace.PotracePath
		case "turdsize":
			cfg.Trace.TurdSize = flags.Trace.TurdSize
		case "alphamax":
			cfg.Trace.AlphaMax = flags.Trace.AlphaMax
		case "opttolerance":
			cfg.Trace.OptTolerance = flags.Trace.OptTolerance
		case "samples":
			cfg.Sample.SamplesPerCurve = flags.Sample.SamplesPerCurve
		case "distance":
			cfg.Sample.DistanceThreshold = flags.Sample.DistanceThreshold
		case "flip-y":
			cfg.Sample.FlipY = flags.Sample.FlipY
		case "scale":
			cfg.Sample.Scale = flags.Sample.Scale
		case "o":
			cfg.Output.Path = flags.Output.Path
		case "layer":
			cfg.Output.Layer = flags.Output.Layer
		case "preview":
			cfg.Preview.Path = flags.Preview.Path
		case "preview-width":
			cfg.Preview.Width = flags.Preview.Width
		case "workers":
			cfg.Workers = flags.Workers
		}
	})

	return cfg, fs.Arg(0), *verbose, nil
}

func inspect(args []string) {
	if len(args) != 1 {
		fmt.Println(`Usage: cadtrace inspect file.dxf`)
		os.Exit(1)
	}

	summary, err := InspectDXF(args[0])
	if err != nil {
		log.Fatal(err)
	}
	summary.Print(os.Stdout)
}
