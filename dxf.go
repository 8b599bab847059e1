package main

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yofu/dxf"
	"gonum.org/v1/gonum/spatial/r2"
)

// Document collects the polylines of one drawing. AddPolyline is safe for
// concurrent use.
type Document struct {
	Layer string

	mu        sync.Mutex
	polylines []Polyline
}

func NewDocument(layer string) *Document {
	if layer == "" {
		layer = "0"
	}
	return &Document{Layer: layer}
}

// AddPolyline appends a copy of points as one polyline entity.
func (d *Document) AddPolyline(points []r2.Vec, closed bool) {
	p := Polyline{Points: append([]r2.Vec(nil), points...), Closed: closed}

	d.mu.Lock()
	d.polylines = append(d.polylines, p)
	d.mu.Unlock()
}

func (d *Document) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.polylines)
}

func (d *Document) Polylines() []Polyline {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Polyline(nil), d.polylines...)
}

// Bounds returns the extents of all vertices; ok is false for an empty
// document.
func (d *Document) Bounds() (min, max r2.Vec, ok bool) {
	min = r2.Vec{X: math.MaxFloat64, Y: math.MaxFloat64}
	max = r2.Vec{X: -math.MaxFloat64, Y: -math.MaxFloat64}
	for _, p := range d.Polylines() {
		for _, v := range p.Points {
			min.X = math.Min(min.X, v.X)
			min.Y = math.Min(min.Y, v.Y)
			max.X = math.Max(max.X, v.X)
			max.Y = math.Max(max.Y, v.Y)
			ok = true
		}
	}
	return min, max, ok
}

// Save writes the document, choosing G-code for .gcode/.nc/.ngc and DXF
// otherwise.
func (d *Document) Save(path string, gopts GCodeOptions) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gcode", ".nc", ".ngc":
		err = d.saveGCode(path, gopts)
	default:
		err = d.SaveDXF(path)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// SaveDXF writes one LWPOLYLINE entity per polyline on the document layer.
func (d *Document) SaveDXF(path string) error {
	dwg := dxf.NewDrawing()
	if d.Layer != "0" {
		if _, err := dwg.AddLayer(d.Layer, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
			return err
		}
	}

	for _, p := range d.Polylines() {
		vertices := make([][]float64, len(p.Points))
		for i, v := range p.Points {
			vertices[i] = []float64{v.X, v.Y}
		}
		if _, err := dwg.LwPolyline(p.Closed, vertices...); err != nil {
			return err
		}
	}

	return dwg.SaveAs(path)
}

func (d *Document) saveGCode(path string, opts GCodeOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	err = d.WriteGCode(w, opts)
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
