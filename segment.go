package main

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Segment is one parametric piece of a vector path, evaluated over t in [0,1].
type Segment interface {
	Point(t float64) r2.Vec
}

// VectorPath is one traced subpath: its segments in drawing order.
type VectorPath struct {
	Segments []Segment
}

type Line struct {
	Start, End r2.Vec
}

func (l Line) Point(t float64) r2.Vec {
	return r2.Add(l.Start, r2.Scale(t, r2.Sub(l.End, l.Start)))
}

type QuadBezier struct {
	Start, Control, End r2.Vec
}

func (q QuadBezier) Point(t float64) r2.Vec {
	mt := 1 - t
	p := r2.Scale(mt*mt, q.Start)
	p = r2.Add(p, r2.Scale(2*mt*t, q.Control))
	return r2.Add(p, r2.Scale(t*t, q.End))
}

type CubicBezier struct {
	Start, Control1, Control2, End r2.Vec
}

func (c CubicBezier) Point(t float64) r2.Vec {
	mt := 1 - t
	p := r2.Scale(mt*mt*mt, c.Start)
	p = r2.Add(p, r2.Scale(3*mt*mt*t, c.Control1))
	p = r2.Add(p, r2.Scale(3*mt*t*t, c.Control2))
	return r2.Add(p, r2.Scale(t*t*t, c.End))
}
