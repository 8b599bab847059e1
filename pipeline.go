package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrNoPaths       = errors.New("tracer produced no vector paths")
	ErrNoValidOutput = errors.New("no valid polylines to write")
)

// Result reports what a conversion produced.
type Result struct {
	BitmapPath string
	SVGPath    string
	OutputPath string
	Paths      int
	Polylines  int
	Skipped    int
}

// Converter runs the image to drawing pipeline.
type Converter struct {
	Config Config
	Tracer Tracer
	Log    *log.Logger
}

func NewConverter(cfg Config, logger *log.Logger) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tracer, err := NewTracer(cfg.Trace)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Converter{Config: cfg, Tracer: tracer, Log: logger}, nil
}

// Convert traces imagePath and writes the drawing. Intermediates are written
// next to the input.
func (c *Converter) Convert(ctx context.Context, imagePath string) (*Result, error) {
	if _, err := os.Stat(imagePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, imagePath)
		}
		return nil, err
	}

	base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	res := &Result{
		BitmapPath: base + ".bmp",
		SVGPath:    base + ".svg",
		OutputPath: c.Config.Output.Path,
	}
	if res.OutputPath == "" {
		res.OutputPath = base + ".dxf"
	}
	// Never write an intermediate over the input itself.
	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".bmp":
		res.BitmapPath = base + ".traced.bmp"
	case ".svg":
		res.SVGPath = base + ".traced.svg"
	}

	c.Log.Printf("[1] Preprocessing %s", imagePath)
	img, err := LoadImage(imagePath)
	if err != nil {
		return nil, err
	}
	bw, err := Binarize(img, c.Config.Binarize)
	if err != nil {
		return nil, err
	}
	if err := WriteBitmap(bw, res.BitmapPath); err != nil {
		return nil, err
	}

	c.Log.Printf("[2] Tracing %s with %s", res.BitmapPath, c.Config.Trace.Tracer)
	if err := c.Tracer.Trace(ctx, res.BitmapPath, res.SVGPath); err != nil {
		return nil, err
	}

	c.Log.Printf("[3] Converting %s", res.SVGPath)
	paths, err := ReadVectorPathsFile(res.SVGPath)
	if err != nil {
		return nil, err
	}
	res.Paths = len(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPaths, res.SVGPath)
	}

	doc := c.BuildDocument(paths)
	res.Polylines = doc.Len()
	res.Skipped = res.Paths - res.Polylines
	if res.Skipped > 0 {
		c.Log.Printf("skipped %d degenerate paths", res.Skipped)
	}
	if res.Polylines == 0 {
		return nil, fmt.Errorf("%w: all %d paths were degenerate", ErrNoValidOutput, res.Paths)
	}

	if err := doc.Save(res.OutputPath, c.Config.GCode); err != nil {
		return nil, err
	}
	c.Log.Printf("saved %s with %d polylines", res.OutputPath, res.Polylines)

	if c.Config.Preview.Path != "" {
		if err := SavePreview(doc, c.Config.Preview); err != nil {
			return nil, err
		}
		c.Log.Printf("saved preview %s", c.Config.Preview.Path)
	}

	return res, nil
}

// BuildDocument simplifies paths on Config.Workers goroutines and adds the
// surviving polylines in input order.
func (c *Converter) BuildDocument(paths []VectorPath) *Document {
	opts := c.Config.Sample
	if up := c.Config.Binarize.Upscale; up > 0 {
		opts.Scale /= up
	}

	results := make([]Polyline, len(paths))
	valid := make([]bool, len(paths))

	workers := c.Config.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], valid[i] = SimplifyPath(paths[i], opts)
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	doc := NewDocument(c.Config.Output.Layer)
	for i, p := range results {
		if valid[i] {
			doc.AddPolyline(p.Points, p.Closed)
		}
	}
	return doc
}
