package main

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// rasterizeSVG draws an SVG document at its viewBox size, rounded up to whole
// pixels. The background stays transparent; grayscale treats it as paper.
func rasterizeSVG(data []byte) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, err
	}

	vb := icon.ViewBox
	if vb.W <= 0 || vb.H <= 0 {
		return nil, fmt.Errorf("svg has empty viewBox %gx%g", vb.W, vb.H)
	}
	width := int(math.Ceil(vb.W))
	height := int(math.Ceil(vb.H))

	// Keep one drawing unit per pixel so traced coordinates match the
	// document's own units.
	icon.SetTarget(0, 0, vb.W, vb.H)

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, canvas, canvas.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)
	return canvas, nil
}
