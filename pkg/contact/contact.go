// Package contact finds where the rim of the glass meets the inner wall of
// the shade.
//
// The shade is treated as its circumscribed circular cone: the rim is a
// circle, so the contact is a continuous tangency that does not depend on the
// number of facets. SolveAtFacets offers the inscribed variant, where the rim
// touches the flat middle of each pane instead of the corners.
package contact

import (
	"fmt"

	"github.com/chazu/shadecut/pkg/geom"
	"github.com/chazu/shadecut/pkg/shade"
)

// Outcome tags what kind of answer a Result carries.
type Outcome int

const (
	// NoContact means the rim radius is outside the range of radii the
	// shade wall passes through. Heights in the Result are meaningless.
	NoContact Outcome = iota
	// Contact is a single contact line strictly on the slanted wall.
	Contact
	// Cylinder means top and bottom radii match the rim radius; the rim
	// touches the whole wall. ContactHeight is reported as 0 and the whole
	// shade height counts as covered.
	Cylinder
)

func (o Outcome) String() string {
	switch o {
	case Contact:
		return "contact"
	case Cylinder:
		return "cylinder"
	default:
		return "no-contact"
	}
}

// MarshalText renders the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Convention selects which polygon radius the rim is compared against.
type Convention int

const (
	Vertex Convention = iota // circumscribed radius, rim meets pane corners
	Facet                    // apothem, rim meets pane midlines
)

func (c Convention) String() string {
	if c == Facet {
		return "facet"
	}
	return "vertex"
}

// MarshalText renders the convention by name.
func (c Convention) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseConvention accepts "vertex" (or "circumscribed") and "facet" (or
// "inscribed").
func ParseConvention(s string) (Convention, error) {
	switch s {
	case "vertex", "circumscribed", "":
		return Vertex, nil
	case "facet", "inscribed":
		return Facet, nil
	}
	return Vertex, fmt.Errorf("unknown radius convention %q, expected vertex or facet", s)
}

// Result is the outcome of one contact solve.
type Result struct {
	Outcome    Outcome    `json:"outcome"`
	Convention Convention `json:"convention"`
	// ContactHeight is the axial distance from the shade's bottom rim to the
	// contact line, within [0, height].
	ContactHeight float64 `json:"contactHeight"`
	// CoveredHeight is the part of the shade's height on the far side of the
	// contact line from the narrower opening: the part that wraps down
	// around the glass bowl.
	CoveredHeight float64 `json:"coveredHeight"`
}

// Defined reports whether the heights carry meaning.
func (r Result) Defined() bool {
	return r.Outcome != NoContact
}

// ExceedsBowl reports whether the shade hangs below the bottom of a bowl of
// the given depth. A zero depth means unknown and never exceeds.
func (r Result) ExceedsBowl(bowlDepth float64) bool {
	return r.Defined() && bowlDepth > 0 && r.CoveredHeight > bowlDepth
}

// Solve locates the contact using circumscribed radii.
func Solve(g shade.Glass, s shade.Shade) (Result, error) {
	if err := validate(g, s); err != nil {
		return Result{}, err
	}
	return solve(g.RimRadius, s.BottomRadius, s.TopRadius, s.Height, Vertex), nil
}

// SolveAtFacets locates the contact using the apothems of the top and bottom
// polygons.
func SolveAtFacets(g shade.Glass, s shade.Shade) (Result, error) {
	if err := validate(g, s); err != nil {
		return Result{}, err
	}
	bottom := geom.Apothem(s.BottomRadius, s.Sides)
	top := geom.Apothem(s.TopRadius, s.Sides)
	return solve(g.RimRadius, bottom, top, s.Height, Facet), nil
}

// SolveWith dispatches on the convention.
func SolveWith(c Convention, g shade.Glass, s shade.Shade) (Result, error) {
	if c == Facet {
		return SolveAtFacets(g, s)
	}
	return Solve(g, s)
}

func validate(g shade.Glass, s shade.Shade) error {
	return shade.Snapshot{Glass: g, Shade: s}.Validate()
}

func solve(rim, bottom, top, height float64, c Convention) Result {
	res := Result{Outcome: NoContact, Convention: c}

	// The wall in the convention's radius space.
	wall := shade.Shade{BottomRadius: bottom, TopRadius: top, Height: height}
	flare := wall.Flare()

	if flare == shade.FlareNone {
		if !shade.SameRadius(rim, bottom) {
			return res
		}
		res.Outcome = Cylinder
		res.ContactHeight = 0
		res.CoveredHeight = height
		return res
	}

	if rim < wall.MinRadius() || rim > wall.MaxRadius() {
		return res
	}

	h := geom.HeightAt(bottom, top, height, rim)
	res.Outcome = Contact
	res.ContactHeight = h
	if flare == shade.FlareOutward {
		res.CoveredHeight = height - h
	} else {
		res.CoveredHeight = h
	}
	return res
}
