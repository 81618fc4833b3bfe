package config

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Slider parameter names.
const (
	ParamBottom = "bottom"
	ParamTop    = "top"
	ParamGlass  = "glass"
	ParamSides  = "sides"
	ParamHeight = "height"
)

// Params lists the slider parameters in display order.
var Params = []string{ParamBottom, ParamTop, ParamGlass, ParamSides, ParamHeight}

// snapPrecision is the number of decimals kept after snapping, enough to
// drop the float noise of step multiplication.
const snapPrecision = 9

// Range is a slider's span and step.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Validate checks the range is usable.
func (r Range) Validate() error {
	for _, v := range []float64{r.Min, r.Max, r.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("bounds must be finite")
		}
	}
	if r.Min > r.Max {
		return fmt.Errorf("min %v is greater than max %v", r.Min, r.Max)
	}
	if r.Step <= 0 {
		return fmt.Errorf("step must be positive, got %v", r.Step)
	}
	return nil
}

// Clamp limits v to [Min, Max].
func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Snap rounds v to the nearest step counted from Min and clamps the result.
// NaN snaps to Min.
func (r Range) Snap(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}
	v = r.Clamp(v)
	if r.Step > 0 {
		v = r.Min + math.Round((v-r.Min)/r.Step)*r.Step
	}
	return r.Clamp(scalar.Round(v, snapPrecision))
}

// Ranges holds one Range per slider.
type Ranges struct {
	Bottom Range `json:"bottom"`
	Top    Range `json:"top"`
	Glass  Range `json:"glass"`
	Sides  Range `json:"sides"`
	Height Range `json:"height"`
}

// DefaultRanges returns the original tool's slider spans.
func DefaultRanges() Ranges {
	return Ranges{
		Bottom: Range{Min: 1, Max: 15, Step: 0.1},
		Top:    Range{Min: 0.5, Max: 10, Step: 0.1},
		Glass:  Range{Min: 2, Max: 6, Step: 0.1},
		Sides:  Range{Min: 4, Max: 8, Step: 1},
		Height: Range{Min: 1, Max: 15, Step: 0.1},
	}
}

// For returns the range of the named parameter.
func (r Ranges) For(param string) (Range, error) {
	switch param {
	case ParamBottom:
		return r.Bottom, nil
	case ParamTop:
		return r.Top, nil
	case ParamGlass:
		return r.Glass, nil
	case ParamSides:
		return r.Sides, nil
	case ParamHeight:
		return r.Height, nil
	}
	return Range{}, fmt.Errorf("unknown parameter %q, expected one of bottom, top, glass, sides, height", param)
}
