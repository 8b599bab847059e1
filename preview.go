package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"
)

// PreviewOptions sizes the PNG rendering of a Document.
type PreviewOptions struct {
	Path      string  `toml:"path"`
	Width     int     `toml:"width"`
	LineWidth float64 `toml:"line_width"`
	Margin    int     `toml:"margin"`
}

var previewInk = color.RGBA{R: 0xc0, G: 0x10, B: 0x10, A: 0xff}

// RenderPreview strokes every polyline of doc, fitted into an opts.Width
// pixel square.
// Drawing Y grows upward, so rows are mirrored.
func RenderPreview(doc *Document, opts PreviewOptions) (*image.RGBA, error) {
	min, max, ok := doc.Bounds()
	if !ok {
		return nil, ErrNoValidOutput
	}

	width := opts.Width
	if width <= 0 {
		width = 1024
	}
	margin := float64(opts.Margin)
	avail := float64(width) - 2*margin
	if avail <= 0 {
		return nil, fmt.Errorf("preview width %d too small for margin %d", width, opts.Margin)
	}
	// Fit the larger span into the width; the canvas is never taller than wide.
	scale := math.Min(avail/span(max.X-min.X), avail/span(max.Y-min.Y))
	height := int(math.Ceil((max.Y-min.Y)*scale + 2*margin))
	if height < 1 {
		height = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	scanner.SetClip(img.Bounds())
	scanner.SetColor(previewInk)
	raster := rasterx.NewDasher(width, height, scanner)

	lineWidth := opts.LineWidth
	if lineWidth <= 0 {
		lineWidth = 1
	}
	raster.SetStroke(fixed.Int26_6(lineWidth*64), fixed.Int26_6(4*64),
		rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round, nil, 0)

	at := func(x, y float64) fixed.Point26_6 {
		return rasterx.ToFixedP(margin+(x-min.X)*scale, margin+(max.Y-y)*scale)
	}

	for _, p := range doc.Polylines() {
		if len(p.Points) < 2 {
			continue
		}
		raster.Clear()
		raster.Start(at(p.Points[0].X, p.Points[0].Y))
		for _, v := range p.Points[1:] {
			raster.Line(at(v.X, v.Y))
		}
		raster.Stop(p.Closed)
		raster.Draw()
	}

	return img, nil
}

// span treats a flat extent as one unit so the fit stays finite.
func span(d float64) float64 {
	if d <= 0 {
		return 1
	}
	return d
}

func SavePreview(doc *Document, opts PreviewOptions) error {
	img, err := RenderPreview(doc, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode preview %s: %w", opts.Path, err)
	}
	return f.Close()
}
