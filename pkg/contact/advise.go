package contact

import (
	"fmt"

	"github.com/chazu/shadecut/pkg/geom"
	"github.com/chazu/shadecut/pkg/shade"
	"gonum.org/v1/gonum/spatial/r3"
)

// TouchPoints returns the n points where the rim meets the shade wall, one
// per pane corner (Vertex) or pane midline (Facet). It returns nil when
// there is no contact.
func TouchPoints(r Result, g shade.Glass, s shade.Shade) []r3.Vec {
	if !r.Defined() || s.Sides < shade.MinSides {
		return nil
	}
	if r.Convention == Facet {
		return geom.Midpoints(g.RimRadius, r.ContactHeight, s.Sides)
	}
	return geom.Vertices(g.RimRadius, r.ContactHeight, s.Sides)
}

// Advise returns the advisory warnings for a solved contact.
func Advise(r Result, g shade.Glass) []shade.ValidationWarning {
	var warnings []shade.ValidationWarning
	if !r.Defined() {
		warnings = append(warnings, shade.ValidationWarning{
			Field:   "glass.rimRadius",
			Message: fmt.Sprintf("no side intersection: rim radius %.2f is outside the shade's radius range", g.RimRadius),
		})
		return warnings
	}
	if r.ExceedsBowl(g.BowlDepth) {
		warnings = append(warnings, shade.ValidationWarning{
			Field: "glass.bowlDepth",
			Message: fmt.Sprintf("shade covers %.2f of glass height, more than the %.2f bowl; it will hang over the stem",
				r.CoveredHeight, g.BowlDepth),
		})
	}
	return warnings
}
