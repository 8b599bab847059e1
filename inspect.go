package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/rpaloschi/dxf-go/core"
	"github.com/rpaloschi/dxf-go/document"
	"github.com/rpaloschi/dxf-go/entities"
)

// DXFSummary describes the polylines found in a DXF file.
type DXFSummary struct {
	Polylines [][]core.Point
	Vertices  int
	Closed    int
	Splines   int
	Layers    map[string]int // polylines per layer
	Min, Max  core.Point
}

// InspectDXF reads a DXF drawing and collects its LWPOLYLINE and POLYLINE
// vertices.
func InspectDXF(path string) (*DXFSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	doc, err := document.DxfDocumentFromStream(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read DXF %s: %w", path, err)
	}

	s := &DXFSummary{
		Layers: make(map[string]int),
		Min: core.Point{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64},
		Max: core.Point{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64},
	}
	for _, entity := range doc.Entities.Entities {
		switch e := entity.(type) {
		case *entities.LWPolyline:
			pp := make([]core.Point, len(e.Points))
			for i, v := range e.Points {
				pp[i] = v.Point
			}
			s.add(e.LayerName, pp, e.Closed)
		case *entities.Polyline:
			pp := make([]core.Point, len(e.Vertices))
			for i, v := range e.Vertices {
				pp[i] = v.Location
			}
			s.add(e.LayerName, pp, e.Closed)
		case *entities.Spline:
			s.Splines++
		}
	}
	return s, nil
}

func (s *DXFSummary) add(layer string, pp []core.Point, closed bool) {
	s.Layers[layer]++
	for _, v := range pp {
		s.updateBounds(v)
	}
	s.Polylines = append(s.Polylines, pp)
	s.Vertices += len(pp)
	if closed {
		s.Closed++
	}
}

func (s *DXFSummary) updateBounds(v core.Point) {
	s.Min.X = math.Min(s.Min.X, v.X)
	s.Min.Y = math.Min(s.Min.Y, v.Y)
	s.Min.Z = math.Min(s.Min.Z, v.Z)
	s.Max.X = math.Max(s.Max.X, v.X)
	s.Max.Y = math.Max(s.Max.Y, v.Y)
	s.Max.Z = math.Max(s.Max.Z, v.Z)
}

func (s *DXFSummary) Print(w io.Writer) {
	fmt.Fprintf(w, "polylines: %d\n", len(s.Polylines))
	fmt.Fprintf(w, "closed:    %d\n", s.Closed)
	fmt.Fprintf(w, "vertices:  %d\n", s.Vertices)
	if s.Splines > 0 {
		fmt.Fprintf(w, "splines:   %d (not interpreted)\n", s.Splines)
	}
	if s.Vertices > 0 {
		fmt.Fprintf(w, "X min: %f; X max: %f\n", s.Min.X, s.Max.X)
		fmt.Fprintf(w, "Y min: %f; Y max: %f\n", s.Min.Y, s.Max.Y)
	}
}
