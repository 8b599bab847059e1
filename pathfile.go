package main

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/spatial/r2"
)

var ErrMalformedPath = errors.New("malformed vector path data")

// ReadVectorPathsFile reads the subpaths of every <path> in an SVG file.
func ReadVectorPathsFile(path string) ([]VectorPath, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	paths, err := ReadVectorPaths(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return paths, nil
}

// ReadVectorPaths walks an SVG document and returns one VectorPath per
// subpath, in document order, with all ancestor transforms applied.
func ReadVectorPaths(r io.Reader) ([]VectorPath, error) {
	dec := xml.NewDecoder(r)
	stack := []rasterx.Matrix2D{rasterx.Identity}
	var paths []VectorPath
	hidden := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPath, err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if hidden > 0 || nonRendered[el.Name.Local] {
				hidden++
				continue
			}
			m := stack[len(stack)-1]
			if v := attr(el, "transform"); v != "" {
				t, err := parseTransform(v)
				if err != nil {
					return nil, fmt.Errorf("%w: <%s transform=%q>: %v", ErrMalformedPath, el.Name.Local, v, err)
				}
				m = compose(m, t)
			}
			stack = append(stack, m)

			if el.Name.Local != "path" {
				continue
			}
			d := attr(el, "d")
			if strings.TrimSpace(d) == "" {
				continue
			}
			sub, err := decodePathData(d, m)
			if err != nil {
				return nil, err
			}
			paths = append(paths, sub...)
		case xml.EndElement:
			if hidden > 0 {
				hidden--
				continue
			}
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	return paths, nil
}

// nonRendered elements hold geometry that is only drawn by reference.
var nonRendered = map[string]bool{
	"defs":     true,
	"clipPath": true,
	"mask":     true,
	"symbol":   true,
	"pattern":  true,
	"marker":   true,
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func decodePathData(d string, m rasterx.Matrix2D) ([]VectorPath, error) {
	cursor := &oksvg.PathCursor{ErrorMode: oksvg.StrictErrorMode}
	if err := cursor.CompilePath(d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPath, err)
	}

	c := &segmentCollector{m: m}
	cursor.Path.AddTo(c)
	c.Stop(false)
	return c.paths, nil
}

// segmentCollector is a rasterx.Adder that records segments instead of
// filling them. Each Start begins a new subpath.
type segmentCollector struct {
	m     rasterx.Matrix2D
	paths []VectorPath
	cur   []Segment
	start r2.Vec
	pen   r2.Vec
	open  bool
}

func (c *segmentCollector) point(p fixed.Point26_6) r2.Vec {
	x, y := c.m.Transform(float64(p.X)/64, float64(p.Y)/64)
	return r2.Vec{X: x, Y: y}
}

func (c *segmentCollector) Start(a fixed.Point26_6) {
	c.flush()
	c.start = c.point(a)
	c.pen = c.start
	c.open = true
}

func (c *segmentCollector) Line(b fixed.Point26_6) {
	end := c.point(b)
	c.cur = append(c.cur, Line{Start: c.pen, End: end})
	c.pen = end
}

func (c *segmentCollector) QuadBezier(b, d fixed.Point26_6) {
	end := c.point(d)
	c.cur = append(c.cur, QuadBezier{Start: c.pen, Control: c.point(b), End: end})
	c.pen = end
}

func (c *segmentCollector) CubeBezier(b, d, e fixed.Point26_6) {
	end := c.point(e)
	c.cur = append(c.cur, CubicBezier{Start: c.pen, Control1: c.point(b), Control2: c.point(d), End: end})
	c.pen = end
}

func (c *segmentCollector) Stop(closeLoop bool) {
	if !c.open {
		return
	}
	if closeLoop && c.pen != c.start {
		c.cur = append(c.cur, Line{Start: c.pen, End: c.start})
		c.pen = c.start
	}
	c.flush()
}

func (c *segmentCollector) flush() {
	if len(c.cur) > 0 {
		c.paths = append(c.paths, VectorPath{Segments: c.cur})
	}
	c.cur = nil
	c.open = false
}

// parseTransform reads an SVG transform list. Later entries apply first.
func parseTransform(s string) (rasterx.Matrix2D, error) {
	m := rasterx.Identity
	rest := strings.TrimSpace(s)

	for rest != "" {
		open := strings.IndexByte(rest, '(')
		if open < 0 {
			return m, fmt.Errorf("missing '(' in %q", rest)
		}
		end := strings.IndexByte(rest, ')')
		if end < open {
			return m, fmt.Errorf("missing ')' in %q", rest)
		}
		name := strings.TrimSpace(rest[:open])
		args, err := parseNumbers(rest[open+1 : end])
		if err != nil {
			return m, err
		}

		t, err := transformFunc(name, args)
		if err != nil {
			return m, err
		}
		m = compose(m, t)
		rest = strings.TrimLeft(rest[end+1:], " \t\r\n,")
	}
	return m, nil
}

func transformFunc(name string, a []float64) (rasterx.Matrix2D, error) {
	want := func(counts ...int) error {
		for _, n := range counts {
			if len(a) == n {
				return nil
			}
		}
		return fmt.Errorf("%s: unexpected %d arguments", name, len(a))
	}

	switch name {
	case "matrix":
		if err := want(6); err != nil {
			return rasterx.Identity, err
		}
		return rasterx.Matrix2D{A: a[0], B: a[1], C: a[2], D: a[3], E: a[4], F: a[5]}, nil
	case "translate":
		if err := want(1, 2); err != nil {
			return rasterx.Identity, err
		}
		ty := 0.0
		if len(a) == 2 {
			ty = a[1]
		}
		return rasterx.Matrix2D{A: 1, D: 1, E: a[0], F: ty}, nil
	case "scale":
		if err := want(1, 2); err != nil {
			return rasterx.Identity, err
		}
		sy := a[0]
		if len(a) == 2 {
			sy = a[1]
		}
		return rasterx.Matrix2D{A: a[0], D: sy}, nil
	case "rotate":
		if err := want(1, 3); err != nil {
			return rasterx.Identity, err
		}
		rad := a[0] * math.Pi / 180
		sin, cos := math.Sincos(rad)
		r := rasterx.Matrix2D{A: cos, B: sin, C: -sin, D: cos}
		if len(a) == 3 {
			to := rasterx.Matrix2D{A: 1, D: 1, E: a[1], F: a[2]}
			back := rasterx.Matrix2D{A: 1, D: 1, E: -a[1], F: -a[2]}
			r = compose(compose(to, r), back)
		}
		return r, nil
	case "skewX":
		if err := want(1); err != nil {
			return rasterx.Identity, err
		}
		return rasterx.Matrix2D{A: 1, C: math.Tan(a[0] * math.Pi / 180), D: 1}, nil
	case "skewY":
		if err := want(1); err != nil {
			return rasterx.Identity, err
		}
		return rasterx.Matrix2D{A: 1, B: math.Tan(a[0] * math.Pi / 180), D: 1}, nil
	}
	return rasterx.Identity, fmt.Errorf("unsupported transform %q", name)
}

// compose returns the matrix applying b first, then a.
func compose(a, b rasterx.Matrix2D) rasterx.Matrix2D {
	return rasterx.Matrix2D{
		A: a.A*b.A + a.C*b.B,
		B: a.B*b.A + a.D*b.B,
		C: a.A*b.C + a.C*b.D,
		D: a.B*b.C + a.D*b.D,
		E: a.A*b.E + a.C*b.F + a.E,
		F: a.B*b.E + a.D*b.F + a.F,
	}
}

func parseNumbers(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		out = append(out, v)
	}
	return out, nil
}
