package shade

import (
	"gonum.org/v1/gonum/floats/scalar"
)

// RadiusTolerance is the absolute tolerance (cm) used when deciding whether
// two radii are the same, e.g. whether the shade is a true cylinder.
const RadiusTolerance = 1e-5

// MinSides is the smallest facet count of a real polygon.
const MinSides = 3

// Glass describes the drinking glass used as the lamp base.
type Glass struct {
	RimRadius float64 `json:"rimRadius"` // radius of the rim the shade rests on
	BowlDepth float64 `json:"bowlDepth"` // 0 when unknown
}

// Shade describes a regular N-sided frustum. Radii are circumscribed
// (center to vertex) radii of the polygon cross-section.
type Shade struct {
	BottomRadius float64 `json:"bottomRadius"`
	TopRadius    float64 `json:"topRadius"`
	Height       float64 `json:"height"`
	Sides        int     `json:"sides"`
}

// Snapshot is one complete, consistent parameter set.
type Snapshot struct {
	Glass Glass `json:"glass"`
	Shade Shade `json:"shade"`
}

// Flare is the direction the shade wall leans going from bottom to top.
type Flare int

const (
	FlareNone    Flare = iota // cylinder
	FlareOutward              // top wider than bottom
	FlareInward               // top narrower than bottom
)

func (f Flare) String() string {
	switch f {
	case FlareOutward:
		return "outward"
	case FlareInward:
		return "inward"
	default:
		return "none"
	}
}

// Flare reports the wall direction using RadiusTolerance, so rounding noise
// while dragging a slider does not flip a cylinder into a cone.
func (s Shade) Flare() Flare {
	if SameRadius(s.TopRadius, s.BottomRadius) {
		return FlareNone
	}
	if s.TopRadius > s.BottomRadius {
		return FlareOutward
	}
	return FlareInward
}

// MinRadius returns the narrower of the two opening radii.
func (s Shade) MinRadius() float64 {
	if s.TopRadius < s.BottomRadius {
		return s.TopRadius
	}
	return s.BottomRadius
}

// MaxRadius returns the wider of the two opening radii.
func (s Shade) MaxRadius() float64 {
	if s.TopRadius > s.BottomRadius {
		return s.TopRadius
	}
	return s.BottomRadius
}

// SameRadius reports whether a and b are within RadiusTolerance.
func SameRadius(a, b float64) bool {
	return scalar.EqualWithinAbs(a, b, RadiusTolerance)
}
