// Package panes converts the shade's circular radii into the flat glass
// measurements a cutter needs for one trapezoidal pane.
package panes

import (
	"math"

	"github.com/chazu/shadecut/pkg/geom"
	"github.com/chazu/shadecut/pkg/shade"
)

// Dimensions are the cut sizes of one pane. Every pane of a regular shade
// is identical.
type Dimensions struct {
	TopWidth    float64 `json:"topWidth"`    // top edge, vertex to vertex
	BottomWidth float64 `json:"bottomWidth"` // bottom edge, vertex to vertex
	// PaneLength runs from the midpoint of the bottom edge to the midpoint
	// of the top edge. It is not the corner-to-corner diagonal.
	PaneLength float64 `json:"paneLength"`
	// SideEdge is the slanted edge shared with the neighbouring pane.
	SideEdge float64 `json:"sideEdge"`
	Panes    int     `json:"panes"`
}

// Compute derives the pane dimensions of a shade. Radii are circumscribed.
// A zero height yields a flat ring whose pane length is the apothem
// difference.
func Compute(s shade.Shade) (Dimensions, error) {
	if err := s.Validate(); err != nil {
		return Dimensions{}, err
	}
	n := s.Sides
	inset := geom.Apothem(s.BottomRadius, n) - geom.Apothem(s.TopRadius, n)
	return Dimensions{
		TopWidth:    geom.EdgeLength(s.TopRadius, n),
		BottomWidth: geom.EdgeLength(s.BottomRadius, n),
		PaneLength:  math.Hypot(s.Height, inset),
		SideEdge:    math.Hypot(s.Height, s.BottomRadius-s.TopRadius),
		Panes:       n,
	}, nil
}
