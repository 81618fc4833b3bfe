package shade

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidGeometry is matched by every *GeometryError.
var ErrInvalidGeometry = errors.New("invalid geometry")

// ValidationError is a blocking problem with one parameter.
type ValidationError struct {
	Field   string
	Value   float64
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s is %g, %s", e.Field, e.Value, e.Message)
}

// ValidationWarning is advisory; the result is still usable.
type ValidationWarning struct {
	Field   string
	Message string
}

// GeometryError collects every ValidationError found in a snapshot.
type GeometryError struct {
	Errors []ValidationError
}

func (e *GeometryError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return "invalid geometry: " + strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrInvalidGeometry) true.
func (e *GeometryError) Is(target error) bool {
	return target == ErrInvalidGeometry
}

// Validate checks the glass parameters.
func (g Glass) Validate() error {
	return asError(g.validate())
}

// Validate checks the shade parameters. A zero height is allowed: the shade
// is then a flat ring.
func (s Shade) Validate() error {
	return asError(s.validate())
}

// Validate checks both halves of the snapshot and reports all problems at once.
func (s Snapshot) Validate() error {
	var errs []ValidationError
	errs = append(errs, s.Glass.validate()...)
	errs = append(errs, s.Shade.validate()...)
	return asError(errs)
}

func (g Glass) validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, positive("glass.rimRadius", g.RimRadius)...)
	errs = append(errs, nonNegative("glass.bowlDepth", g.BowlDepth)...)
	return errs
}

func (s Shade) validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, positive("shade.bottomRadius", s.BottomRadius)...)
	errs = append(errs, positive("shade.topRadius", s.TopRadius)...)
	errs = append(errs, nonNegative("shade.height", s.Height)...)
	if s.Sides < MinSides {
		errs = append(errs, ValidationError{
			Field:   "shade.sides",
			Value:   float64(s.Sides),
			Message: fmt.Sprintf("must be at least %d", MinSides),
		})
	}
	return errs
}

func positive(field string, v float64) []ValidationError {
	if errs := finite(field, v); errs != nil {
		return errs
	}
	if v <= 0 {
		return []ValidationError{{Field: field, Value: v, Message: "must be positive"}}
	}
	return nil
}

func nonNegative(field string, v float64) []ValidationError {
	if errs := finite(field, v); errs != nil {
		return errs
	}
	if v < 0 {
		return []ValidationError{{Field: field, Value: v, Message: "must not be negative"}}
	}
	return nil
}

func finite(field string, v float64) []ValidationError {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []ValidationError{{Field: field, Value: v, Message: "must be a finite number"}}
	}
	return nil
}

func asError(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	return &GeometryError{Errors: errs}
}
