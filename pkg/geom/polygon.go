// Package geom holds the closed-form regular polygon and frustum formulas
// shared by the contact solver and the pane calculator.
//
// All functions expect n >= 3; callers validate before calling.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// halfAngle is the angle subtended by half of one edge at the center.
func halfAngle(n int) float64 {
	return math.Pi / float64(n)
}

// EdgeLength returns the chord between two adjacent vertices of a regular
// n-gon inscribed in a circle of radius r.
func EdgeLength(r float64, n int) float64 {
	return 2 * r * math.Sin(halfAngle(n))
}

// Apothem returns the distance from the center of a regular n-gon with
// circumradius r to the midpoint of an edge.
func Apothem(r float64, n int) float64 {
	return r * math.Cos(halfAngle(n))
}

// InradiusFromEdge returns the apothem of a regular n-gon with the given
// edge length.
func InradiusFromEdge(edge float64, n int) float64 {
	return (edge / 2) / math.Tan(halfAngle(n))
}

// CircumradiusFromEdge is the inverse of EdgeLength.
func CircumradiusFromEdge(edge float64, n int) float64 {
	return edge / (2 * math.Sin(halfAngle(n)))
}

// Vertices returns the n vertices of a regular polygon of circumradius r in
// the plane z, the first one on the +X axis, counter-clockwise.
func Vertices(r, z float64, n int) []r3.Vec {
	return ring(r, z, n, 0)
}

// Midpoints returns the n edge midpoints of the regular polygon whose
// apothem is a, in the plane z. Midpoint i lies between Vertices i and i+1.
func Midpoints(a, z float64, n int) []r3.Vec {
	return ring(a, z, n, halfAngle(n))
}

func ring(r, z float64, n int, offset float64) []r3.Vec {
	pts := make([]r3.Vec, n)
	step := 2 * math.Pi / float64(n)
	for i := range pts {
		sin, cos := math.Sincos(offset + float64(i)*step)
		pts[i] = r3.Vec{X: r * cos, Y: r * sin, Z: z}
	}
	return pts
}
