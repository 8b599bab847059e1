package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/dennwc/gotrace"
	"golang.org/x/image/bmp"
)

const (
	TracerPotrace = "potrace"
	TracerGotrace = "gotrace"
)

var (
	ErrTracerNotFound = errors.New("tracer executable not found")
	ErrTracerFailed   = errors.New("tracer failed")
	ErrUnknownTracer  = errors.New("unknown tracer")
)

// Tracer turns a bitmap file into an SVG file of vector paths.
type Tracer interface {
	Trace(ctx context.Context, bitmapPath, svgPath string) error
}

func NewTracer(opts TraceOptions) (Tracer, error) {
	switch strings.ToLower(opts.Tracer) {
	case "", TracerPotrace:
		return &PotraceTracer{Options: opts}, nil
	case TracerGotrace:
		return &GotraceTracer{Options: opts}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTracer, opts.Tracer)
	}
}

// PotraceTracer runs the potrace executable with its SVG backend.
type PotraceTracer struct {
	Options TraceOptions
}

func (t *PotraceTracer) Trace(ctx context.Context, bitmapPath, svgPath string) error {
	bin := t.Options.PotracePath
	if bin == "" {
		bin = "potrace"
	}
	bin, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTracerNotFound, err)
	}

	cmd := exec.CommandContext(ctx, bin, t.args(bitmapPath, svgPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("%w: %s: %s", ErrTracerFailed, bin, msg)
	}
	return nil
}

func (t *PotraceTracer) args(bitmapPath, svgPath string) []string {
	return []string{
		"-s",
		"-o", svgPath,
		"-t", strconv.Itoa(t.Options.TurdSize),
		"-a", strconv.FormatFloat(t.Options.AlphaMax, 'f', -1, 64),
		"-O", strconv.FormatFloat(t.Options.OptTolerance, 'f', -1, 64),
		bitmapPath,
	}
}

// GotraceTracer traces in process with a Go port of potrace.
type GotraceTracer struct {
	Options TraceOptions
}

func (t *GotraceTracer) Trace(ctx context.Context, bitmapPath, svgPath string) error {
	img, err := readBitmap(bitmapPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	bm := gotrace.NewBitmapFromImage(img, inkThreshold)
	params := gotrace.Defaults
	params.TurdSize = t.Options.TurdSize
	params.AlphaMax = t.Options.AlphaMax
	params.OptTolerance = t.Options.OptTolerance
	params.OptiCurve = t.Options.OptTolerance > 0

	paths, err := gotrace.Trace(bm, &params)
	if err != nil {
		return fmt.Errorf("%w: gotrace: %v", ErrTracerFailed, err)
	}

	f, err := os.Create(svgPath)
	if err != nil {
		return err
	}
	if err := gotrace.WriteSvg(f, img.Bounds(), paths, ""); err != nil {
		f.Close()
		return fmt.Errorf("%w: writing %s: %v", ErrTracerFailed, svgPath, err)
	}
	return f.Close()
}

func readBitmap(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := bmp.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedImage, path, err)
	}
	return img, nil
}

// inkThreshold marks dark pixels as set bits.
func inkThreshold(_, _ int, cl color.Color) bool {
	return color.GrayModel.Convert(cl).(color.Gray).Y < 128
}
