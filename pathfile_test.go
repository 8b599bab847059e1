package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

const potraceSVG = `<?xml version="1.0" standalone="no"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 20010904//EN"
 "http://www.w3.org/TR/2001/REC-SVG-20010904/DTD/svg10.dtd">
<svg version="1.0" xmlns="http://www.w3.org/2000/svg"
 width="40.000000pt" height="40.000000pt" viewBox="0 0 40.000000 40.000000"
 preserveAspectRatio="xMidYMid meet">
<metadata>
Created by potrace 1.16, written by Peter Selinger 2001-2019
</metadata>
<g transform="translate(0.000000,40.000000) scale(0.100000,-0.100000)"
fill="#000000" stroke="none">
<path d="M100 300 l0 -200 200 0 0 200 -200 0z"/>
</g>
</svg>
`

func TestReadVectorPathsPotraceTransform(t *testing.T) {
	paths, err := ReadVectorPaths(strings.NewReader(potraceSVG))
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Len(t, paths[0].Segments, 4)

	want := []r2.Vec{{X: 10, Y: 10}, {X: 10, Y: 30}, {X: 30, Y: 30}, {X: 30, Y: 10}}
	for i, seg := range paths[0].Segments {
		line, ok := seg.(Line)
		require.True(t, ok, "segment %d is %T", i, seg)
		assertVec(t, want[i], line.Start)
		assertVec(t, want[(i+1)%len(want)], line.End)
	}
}

func TestReadVectorPathsSubpaths(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg">
<path d="M0 0 L10 0 L10 10 Z M20 20 L30 20 L30 30 Z"/>
<path d="M0 0 L5 5"/>
</svg>`

	paths, err := ReadVectorPaths(strings.NewReader(svg))
	require.NoError(t, err)
	require.Len(t, paths, 3)

	// Z adds the closing edge back to the subpath start.
	assert.Len(t, paths[0].Segments, 3)
	assert.Len(t, paths[1].Segments, 3)
	assert.Len(t, paths[2].Segments, 1)

	closing := paths[1].Segments[2].(Line)
	assertVec(t, r2.Vec{X: 30, Y: 30}, closing.Start)
	assertVec(t, r2.Vec{X: 20, Y: 20}, closing.End)
}

func TestReadVectorPathsNestedGroups(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg">
<g transform="translate(5,0)">
  <g transform="scale(2)">
    <path d="M1 1 L2 1"/>
  </g>
  <path d="M1 1 L2 1"/>
</g>
<path d="M1 1 L2 1"/>
</svg>`

	paths, err := ReadVectorPaths(strings.NewReader(svg))
	require.NoError(t, err)
	require.Len(t, paths, 3)

	tests := []struct {
		name       string
		start, end r2.Vec
	}{
		{"translate then scale", r2.Vec{X: 7, Y: 2}, r2.Vec{X: 9, Y: 2}},
		{"translate only", r2.Vec{X: 6, Y: 1}, r2.Vec{X: 7, Y: 1}},
		{"no transform", r2.Vec{X: 1, Y: 1}, r2.Vec{X: 2, Y: 1}},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := paths[i].Segments[0].(Line)
			assertVec(t, tt.start, line.Start)
			assertVec(t, tt.end, line.End)
		})
	}
}

func TestReadVectorPathsSkipsReferencedGeometry(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg">
<defs>
  <path id="dot" d="M0 0 L1 0 L1 1 Z"/>
  <g><path d="M5 5 L6 5"/></g>
</defs>
<clipPath id="clip"><path d="M0 0 L40 0 L40 40 Z"/></clipPath>
<mask id="m"><path d="M0 0 L3 3"/></mask>
<symbol id="s"><path d="M0 0 L4 4"/></symbol>
<g transform="translate(10,0)"><path d="M1 1 L2 1"/></g>
</svg>`

	paths, err := ReadVectorPaths(strings.NewReader(svg))
	require.NoError(t, err)
	require.Len(t, paths, 1)

	line := paths[0].Segments[0].(Line)
	assertVec(t, r2.Vec{X: 11, Y: 1}, line.Start)
	assertVec(t, r2.Vec{X: 12, Y: 1}, line.End)
}

func TestReadVectorPathsCurves(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg">
<path d="M0 0 Q5 10 10 0 C10 5 20 5 20 0"/>
</svg>`

	paths, err := ReadVectorPaths(strings.NewReader(svg))
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Len(t, paths[0].Segments, 2)

	quad, ok := paths[0].Segments[0].(QuadBezier)
	require.True(t, ok)
	assertVec(t, r2.Vec{X: 5, Y: 10}, quad.Control)

	cubic, ok := paths[0].Segments[1].(CubicBezier)
	require.True(t, ok)
	assertVec(t, r2.Vec{X: 10, Y: 0}, cubic.Start)
	assertVec(t, r2.Vec{X: 20, Y: 0}, cubic.End)
}

func TestReadVectorPathsMalformed(t *testing.T) {
	tests := []struct {
		name string
		svg  string
	}{
		{"unclosed element", `<svg><g><path d="M0 0 L1 1"/></svg>`},
		{"bad transform", `<svg><g transform="translate(1,2"><path d="M0 0 L1 1"/></g></svg>`},
		{"unknown transform", `<svg><g transform="warp(3)"><path d="M0 0 L1 1"/></g></svg>`},
		{"bad matrix arity", `<svg><g transform="matrix(1 0 0 1)"><path d="M0 0 L1 1"/></g></svg>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadVectorPaths(strings.NewReader(tt.svg))
			assert.ErrorIs(t, err, ErrMalformedPath)
		})
	}
}

func TestReadVectorPathsEmpty(t *testing.T) {
	paths, err := ReadVectorPaths(strings.NewReader(`<svg><g fill="#000000"></g></svg>`))
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestParseTransform(t *testing.T) {
	tests := []struct {
		name      string
		transform string
		in, want  r2.Vec
	}{
		{"potrace", "translate(0,40) scale(0.1,-0.1)", r2.Vec{X: 100, Y: 300}, r2.Vec{X: 10, Y: 10}},
		{"translate x only", "translate(3)", r2.Vec{X: 1, Y: 1}, r2.Vec{X: 4, Y: 1}},
		{"uniform scale", "scale(2)", r2.Vec{X: 1, Y: 3}, r2.Vec{X: 2, Y: 6}},
		{"matrix", "matrix(1 0 0 1 3 4)", r2.Vec{}, r2.Vec{X: 3, Y: 4}},
		{"rotate", "rotate(90)", r2.Vec{X: 1, Y: 0}, r2.Vec{X: 0, Y: 1}},
		{"rotate about point", "rotate(90 1 1)", r2.Vec{X: 2, Y: 1}, r2.Vec{X: 1, Y: 2}},
		{"skewX", "skewX(45)", r2.Vec{X: 0, Y: 1}, r2.Vec{X: 1, Y: 1}},
		{"comma separated list", "scale(2),translate(1,1)", r2.Vec{}, r2.Vec{X: 2, Y: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := parseTransform(tt.transform)
			require.NoError(t, err)
			x, y := m.Transform(tt.in.X, tt.in.Y)
			assertVec(t, tt.want, r2.Vec{X: x, Y: y})
		})
	}
}
