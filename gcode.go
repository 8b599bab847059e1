package main

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// GCodeOptions configures the G-code rendition of a Document.
type GCodeOptions struct {
	Scale        float64 `toml:"scale"`
	OffsetX      float64 `toml:"offset_x"`
	OffsetY      float64 `toml:"offset_y"`
	TravelFeed   int     `toml:"travel_feed"`
	CutFeed      int     `toml:"cut_feed"`
	SpindleSpeed int     `toml:"spindle_speed"`
}

// WriteGCode emits each polyline as one spindle-on pass, travelling between
// polylines with the spindle off.
func (d *Document) WriteGCode(w io.Writer, opts GCodeOptions) error {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	at := func(p r2.Vec) (float64, float64) {
		return opts.OffsetX + p.X*scale, opts.OffsetY + p.Y*scale
	}

	var sb strings.Builder
	sb.WriteString("G21\nG90\nM5\n")
	if opts.TravelFeed > 0 {
		sb.WriteString(fmt.Sprintf("G0 F%d\n", opts.TravelFeed))
	}
	if opts.CutFeed > 0 {
		sb.WriteString(fmt.Sprintf("G1 F%d\n", opts.CutFeed))
	}

	for _, p := range d.Polylines() {
		if len(p.Points) < 2 {
			continue
		}

		sb.WriteString("M5\n")
		startX, startY := at(p.Points[0])
		sb.WriteString(fmt.Sprintf("G0 X%.3f Y%.3f\nM3 S%d\n", startX, startY, opts.SpindleSpeed))

		for _, point := range p.Points[1:] {
			x, y := at(point)
			sb.WriteString(fmt.Sprintf("G1 X%.3f Y%.3f\n", x, y))
		}
		if p.Closed {
			sb.WriteString(fmt.Sprintf("G1 X%.3f Y%.3f\n", startX, startY))
		}
	}

	sb.WriteString("M5\nG0 X0 Y0\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
