package shade

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func validSnapshot() Snapshot {
	return Snapshot{
		Glass: Glass{RimRadius: 2, BowlDepth: 6},
		Shade: Shade{BottomRadius: 4, TopRadius: 1, Height: 5, Sides: 5},
	}
}

func TestValidSnapshot(t *testing.T) {
	if err := validSnapshot().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestInvalidGeometry(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
		field  string
	}{
		{"zero rim radius", func(s *Snapshot) { s.Glass.RimRadius = 0 }, "glass.rimRadius"},
		{"negative bowl depth", func(s *Snapshot) { s.Glass.BowlDepth = -1 }, "glass.bowlDepth"},
		{"zero bottom radius", func(s *Snapshot) { s.Shade.BottomRadius = 0 }, "shade.bottomRadius"},
		{"negative top radius", func(s *Snapshot) { s.Shade.TopRadius = -2 }, "shade.topRadius"},
		{"negative height", func(s *Snapshot) { s.Shade.Height = -0.5 }, "shade.height"},
		{"NaN height", func(s *Snapshot) { s.Shade.Height = math.NaN() }, "shade.height"},
		{"infinite radius", func(s *Snapshot) { s.Shade.TopRadius = math.Inf(1) }, "shade.topRadius"},
		{"two sides", func(s *Snapshot) { s.Shade.Sides = 2 }, "shade.sides"},
		{"zero sides", func(s *Snapshot) { s.Shade.Sides = 0 }, "shade.sides"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSnapshot()
			tt.mutate(&s)
			err := s.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("errors.Is(%v, ErrInvalidGeometry) = false", err)
			}
			var ge *GeometryError
			if !errors.As(err, &ge) {
				t.Fatalf("error %T is not *GeometryError", err)
			}
			if len(ge.Errors) != 1 || ge.Errors[0].Field != tt.field {
				t.Errorf("errors = %v, want one error on %s", ge.Errors, tt.field)
			}
		})
	}
}

func TestZeroHeightIsValid(t *testing.T) {
	s := Shade{BottomRadius: 3, TopRadius: 5, Height: 0, Sides: 6}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil for a flat ring", err)
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	s := Snapshot{
		Glass: Glass{RimRadius: -1},
		Shade: Shade{BottomRadius: 0, TopRadius: 1, Height: 1, Sides: 1},
	}
	var ge *GeometryError
	if !errors.As(s.Validate(), &ge) {
		t.Fatal("expected *GeometryError")
	}
	if len(ge.Errors) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(ge.Errors), ge.Errors)
	}
	msg := ge.Error()
	for _, field := range []string{"glass.rimRadius", "shade.bottomRadius", "shade.sides"} {
		if !strings.Contains(msg, field) {
			t.Errorf("error message %q does not mention %s", msg, field)
		}
	}
}

func TestFlare(t *testing.T) {
	tests := []struct {
		name        string
		bottom, top float64
		want        Flare
	}{
		{"outward", 5, 8, FlareOutward},
		{"inward", 4, 1, FlareInward},
		{"cylinder", 6, 6, FlareNone},
		{"cylinder within tolerance", 6, 6 + RadiusTolerance/2, FlareNone},
		{"just past tolerance", 6, 6 + 2*RadiusTolerance, FlareOutward},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Shade{BottomRadius: tt.bottom, TopRadius: tt.top, Height: 1, Sides: 4}
			if got := s.Flare(); got != tt.want {
				t.Errorf("Flare() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlipped(t *testing.T) {
	s := Shade{BottomRadius: 5, TopRadius: 9, Height: 12, Sides: 6}
	f := s.Flipped()
	if f.BottomRadius != 9 || f.TopRadius != 5 {
		t.Errorf("Flipped() radii = (%g, %g), want (9, 5)", f.BottomRadius, f.TopRadius)
	}
	if f.Flare() != FlareInward {
		t.Errorf("Flipped().Flare() = %v, want inward", f.Flare())
	}
	if s.MinRadius() != 5 || s.MaxRadius() != 9 {
		t.Errorf("MinRadius/MaxRadius = (%g, %g), want (5, 9)", s.MinRadius(), s.MaxRadius())
	}
}
