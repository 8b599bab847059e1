package main

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// SampleOptions controls how a vector path becomes a polyline.
type SampleOptions struct {
	// SamplesPerCurve is the number of parametric steps per segment.
	SamplesPerCurve int `toml:"samples_per_curve"`
	// DistanceThreshold drops points this close to the last kept point.
	DistanceThreshold float64 `toml:"distance_threshold"`
	// FlipY negates Y so image rows (growing down) map to CAD Y (growing up).
	FlipY bool `toml:"flip_y"`
	// Scale converts traced pixels to drawing units.
	Scale float64 `toml:"scale"`
}

// Polyline is a simplified point sequence ready for export.
type Polyline struct {
	Points []r2.Vec
	Closed bool
}

// Sample evaluates every segment of path at SamplesPerCurve+1 evenly spaced
// parameters, both ends included. Segment boundaries therefore appear twice;
// Simplify collapses them.
func Sample(path VectorPath, opts SampleOptions) []r2.Vec {
	n := opts.SamplesPerCurve
	if n < 1 {
		n = 1
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	sy := scale
	if opts.FlipY {
		sy = -scale
	}

	points := make([]r2.Vec, 0, len(path.Segments)*(n+1))
	for _, seg := range path.Segments {
		for i := 0; i <= n; i++ {
			p := seg.Point(float64(i) / float64(n))
			points = append(points, r2.Vec{X: p.X * scale, Y: p.Y * sy})
		}
	}
	return points
}

// Simplify keeps the first point and then every point strictly farther than
// threshold from the previously kept one.
func Simplify(points []r2.Vec, threshold float64) []r2.Vec {
	if len(points) == 0 {
		return nil
	}

	result := []r2.Vec{points[0]}
	prev := points[0]

	for _, current := range points[1:] {
		if distance(current, prev) > threshold {
			result = append(result, current)
			prev = current
		}
	}

	return result
}

// TrimClosing drops a trailing point that sits within threshold of the first
// one; a closed polyline returns to its start anyway.
func TrimClosing(points []r2.Vec, threshold float64) []r2.Vec {
	if len(points) <= 2 {
		return points
	}
	if distance(points[len(points)-1], points[0]) <= threshold {
		return points[:len(points)-1]
	}
	return points
}

// SimplifyPath turns one vector path into a closed polyline. It reports false
// when fewer than two points survive and the path should be skipped.
func SimplifyPath(path VectorPath, opts SampleOptions) (Polyline, bool) {
	if len(path.Segments) == 0 {
		return Polyline{}, false
	}

	points := Simplify(Sample(path, opts), opts.DistanceThreshold)
	points = TrimClosing(points, opts.DistanceThreshold)
	if len(points) < 2 {
		return Polyline{}, false
	}
	return Polyline{Points: points, Closed: true}, true
}

func distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}
