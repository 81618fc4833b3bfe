package main

import (
	"errors"
	"math"
	"os"
	"sync"
	"testing"

	"github.com/chazu/shadecut/pkg/config"
	"github.com/chazu/shadecut/pkg/contact"
	"github.com/chazu/shadecut/pkg/kernel/sdfx"
	"github.com/chazu/shadecut/pkg/shade"
	"github.com/rs/zerolog"
)

const tol = 1e-9

// newTestApp returns an App with default configuration, a silent logger
// and a coarse mesh.
func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.MeshCells = 40
	return NewAppWithKernel(cfg, zerolog.Nop(), sdfx.NewWithCells(cfg.MeshCells))
}

func near(a, b float64) bool { return math.Abs(a-b) <= tol }

func TestE2EDefaults(t *testing.T) {
	app := newTestApp(t)
	r := app.Current()

	if !r.Valid() {
		t.Fatalf("default snapshot invalid: %v", r.Errors)
	}
	if r.Contact.Outcome != contact.Contact {
		t.Fatalf("outcome = %v, want contact", r.Contact.Outcome)
	}
	if !near(r.Contact.ContactHeight, 10.0/3) {
		t.Errorf("contact height = %v, want 10/3", r.Contact.ContactHeight)
	}
	// Narrow top: the covered part is the height below the contact line.
	if !near(r.Contact.CoveredHeight, 10.0/3) {
		t.Errorf("covered height = %v, want 10/3", r.Contact.CoveredHeight)
	}
	if r.Panes.Panes != 5 {
		t.Errorf("panes = %d, want 5", r.Panes.Panes)
	}
	if len(r.TouchPoints) != 5 {
		t.Errorf("touch points = %d, want 5", len(r.TouchPoints))
	}
	for _, p := range r.TouchPoints {
		if !near(p.Z, r.Contact.ContactHeight) {
			t.Errorf("touch point z = %v, want %v", p.Z, r.Contact.ContactHeight)
		}
	}
	if len(r.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", r.Warnings)
	}
}

func TestE2EExampleScripts(t *testing.T) {
	tests := []struct {
		file    string
		outcome contact.Outcome
		sides   int
	}{
		{"examples/five_pane.shade", contact.Contact, 5},
		{"examples/wine_glass.shade", contact.Contact, 6},
		{"examples/tulip.shade", contact.Contact, 8},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			app := newTestApp(t)
			source, err := os.ReadFile(tt.file)
			if err != nil {
				t.Fatalf("failed to read %s: %v", tt.file, err)
			}

			r, evalErrs, err := app.EvaluateScript(string(source))
			if err != nil {
				t.Fatalf("fatal error: %v", err)
			}
			for _, e := range evalErrs {
				t.Errorf("eval error (line %d): %s", e.Line, e.Message)
			}
			if len(evalErrs) > 0 {
				t.FailNow()
			}
			if !r.Valid() {
				t.Fatalf("invalid geometry: %v", r.Errors)
			}
			if r.Contact.Outcome != tt.outcome {
				t.Errorf("outcome = %v, want %v", r.Contact.Outcome, tt.outcome)
			}
			if r.Panes.Panes != tt.sides {
				t.Errorf("panes = %d, want %d", r.Panes.Panes, tt.sides)
			}
			if app.Snapshot() != r.Snapshot {
				t.Error("script snapshot was not applied")
			}
		})
	}
}

func TestE2ETulipCoversAboveContact(t *testing.T) {
	app := newTestApp(t)
	source, err := os.ReadFile("examples/tulip.shade")
	if err != nil {
		t.Fatalf("failed to read tulip.shade: %v", err)
	}
	r, _, err := app.EvaluateScript(string(source))
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	// Wide top: the rim sits low and the covered part is above it.
	if !near(r.Contact.ContactHeight, 1.8) {
		t.Errorf("contact height = %v, want 1.8", r.Contact.ContactHeight)
	}
	if !near(r.Contact.CoveredHeight, 4.2) {
		t.Errorf("covered height = %v, want 4.2", r.Contact.CoveredHeight)
	}
}

func TestE2ESetSnapsAndClamps(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		param string
		value float64
		check func(shade.Snapshot) bool
	}{
		{config.ParamGlass, 2.54, func(s shade.Snapshot) bool { return s.Glass.RimRadius == 2.5 }},
		{config.ParamGlass, 99, func(s shade.Snapshot) bool { return s.Glass.RimRadius == 6 }},
		{config.ParamSides, 2, func(s shade.Snapshot) bool { return s.Shade.Sides == 4 }},
		{config.ParamSides, 6.6, func(s shade.Snapshot) bool { return s.Shade.Sides == 7 }},
		{config.ParamHeight, 0, func(s shade.Snapshot) bool { return s.Shade.Height == 1 }},
		{config.ParamTop, 3.33, func(s shade.Snapshot) bool { return s.Shade.TopRadius == 3.3 }},
		{config.ParamBottom, 16, func(s shade.Snapshot) bool { return s.Shade.BottomRadius == 15 }},
	}
	for _, tt := range tests {
		r, err := app.Set(tt.param, tt.value)
		if err != nil {
			t.Fatalf("Set(%s, %v) error = %v", tt.param, tt.value, err)
		}
		if !tt.check(r.Snapshot) {
			t.Errorf("Set(%s, %v) snapshot = %+v", tt.param, tt.value, r.Snapshot)
		}
		if app.Snapshot() != r.Snapshot {
			t.Errorf("Set(%s, %v) did not become current", tt.param, tt.value)
		}
	}
}

func TestE2ESetUnknownParam(t *testing.T) {
	app := newTestApp(t)
	before := app.Snapshot()
	if _, err := app.Set("stem", 3); err == nil {
		t.Fatal("expected an error for an unknown parameter")
	}
	if app.Snapshot() != before {
		t.Error("snapshot changed after a rejected Set")
	}
}

func TestE2ENoContactWarns(t *testing.T) {
	app := newTestApp(t)
	r, err := app.Set(config.ParamGlass, 5)
	if err != nil {
		t.Fatalf("Set error = %v", err)
	}
	if r.Contact.Defined() {
		t.Fatalf("outcome = %v, want no contact", r.Contact.Outcome)
	}
	if len(r.TouchPoints) != 0 {
		t.Errorf("touch points = %d, want 0", len(r.TouchPoints))
	}
	if len(r.Warnings) != 1 || r.Warnings[0].Field != "glass.rimRadius" {
		t.Errorf("warnings = %v, want one rim warning", r.Warnings)
	}
	// Panes are computed regardless of the contact.
	if r.Panes.Panes != 5 {
		t.Errorf("panes = %d, want 5", r.Panes.Panes)
	}
}

func TestE2EInvalidSnapshotNotApplied(t *testing.T) {
	app := newTestApp(t)
	before := app.Snapshot()

	bad := before
	bad.Shade.Sides = 2
	bad.Shade.Height = -1
	r, err := app.Apply(bad)
	if !errors.Is(err, shade.ErrInvalidGeometry) {
		t.Fatalf("Apply error = %v, want ErrInvalidGeometry", err)
	}
	if r.Valid() || len(r.Errors) != 2 {
		t.Errorf("errors = %v, want 2", r.Errors)
	}
	if app.Snapshot() != before {
		t.Error("invalid snapshot became current")
	}
}

func TestE2EScriptInvalidGeometry(t *testing.T) {
	app := newTestApp(t)
	before := app.Snapshot()

	r, evalErrs, err := app.EvaluateScript(`(shade :sides 2)`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) != 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if r.Valid() {
		t.Fatal("expected validation errors")
	}
	if app.Snapshot() != before {
		t.Error("invalid script snapshot became current")
	}
}

func TestE2EScriptErrors(t *testing.T) {
	app := newTestApp(t)
	for _, source := range []string{`(glass :radius 2`, `(glass :stem 3)`, `(undefined-func 1 2 3)`} {
		_, evalErrs, err := app.EvaluateScript(source)
		if err != nil {
			t.Fatalf("%q: expected non-fatal eval error, got fatal: %v", source, err)
		}
		if len(evalErrs) == 0 {
			t.Errorf("%q: expected eval errors", source)
		}
	}
}

func TestE2EScriptStartsFromCurrent(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.Set(config.ParamGlass, 2.5); err != nil {
		t.Fatalf("Set error = %v", err)
	}
	r, _, err := app.EvaluateScript(`(shade :sides 6)`)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if r.Snapshot.Glass.RimRadius != 2.5 {
		t.Errorf("rim radius = %v, want 2.5 kept from the current snapshot", r.Snapshot.Glass.RimRadius)
	}
}

func TestE2EFacetConvention(t *testing.T) {
	cfg := config.Default()
	cfg.RadiusConvention = "facet"
	app := NewAppWithKernel(cfg, zerolog.Nop(), sdfx.NewWithCells(40))

	r := app.Current()
	if r.Contact.Convention != contact.Facet {
		t.Fatalf("convention = %v, want facet", r.Contact.Convention)
	}
	vertex, err := contact.Solve(r.Snapshot.Glass, r.Snapshot.Shade)
	if err != nil {
		t.Fatalf("Solve error = %v", err)
	}
	// Apothems are smaller, so the rim meets the facets lower down.
	if !(r.Contact.ContactHeight < vertex.ContactHeight) {
		t.Errorf("facet contact %v should be below vertex contact %v", r.Contact.ContactHeight, vertex.ContactHeight)
	}
}

func TestE2EBowlDepthWarning(t *testing.T) {
	cfg := config.Default()
	cfg.BowlDepth = 3
	app := NewAppWithKernel(cfg, zerolog.Nop(), sdfx.NewWithCells(40))

	r := app.Current()
	if len(r.Warnings) != 1 || r.Warnings[0].Field != "glass.bowlDepth" {
		t.Errorf("warnings = %v, want one bowl warning", r.Warnings)
	}
}

func TestE2EPreview(t *testing.T) {
	app := newTestApp(t)
	meshes, err := app.Preview()
	if err != nil {
		t.Fatalf("Preview error = %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	seen := map[string]bool{}
	for _, m := range meshes {
		seen[m.PartName] = true
		if len(m.Vertices) == 0 || len(m.Indices) == 0 {
			t.Errorf("part %q: empty geometry", m.PartName)
		}
		if m.Color == "" {
			t.Errorf("part %q: no color assigned", m.PartName)
		}
	}
	if !seen["shade"] || !seen["glass"] {
		t.Errorf("parts = %v, want shade and glass", seen)
	}
}

func TestE2EPreviewNoContact(t *testing.T) {
	app := newTestApp(t)
	if _, err := app.Set(config.ParamGlass, 6); err != nil {
		t.Fatalf("Set error = %v", err)
	}
	meshes, err := app.Preview()
	if err != nil {
		t.Fatalf("Preview error = %v", err)
	}
	if len(meshes) != 1 || meshes[0].PartName != "shade" {
		t.Fatalf("expected only the shade mesh, got %d", len(meshes))
	}
}

func TestE2ERapidSetAndScript(t *testing.T) {
	// Alternates slider moves and scripts, valid and broken, on one App.
	app := newTestApp(t)
	sources := []string{
		`(glass :radius 2.2)`,
		`(glass :radius`,
		``,
		`(shade :width 4)`,
		`;; just a comment`,
		`(shade :bottom 5 :top 2 :height 6 :sides 7)`,
	}
	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			if _, err := app.Set(config.ParamGlass, 2+float64(i)*0.3); err != nil {
				t.Errorf("iteration %d: Set error = %v", i, err)
			}
			if _, _, err := app.EvaluateScript(source); err != nil {
				t.Errorf("iteration %d: fatal error = %v", i, err)
			}
		}()
	}
	if err := app.Snapshot().Validate(); err != nil {
		t.Errorf("final snapshot invalid: %v", err)
	}
}

func TestE2EConcurrentSetKeepsEveryParam(t *testing.T) {
	app := newTestApp(t)
	final := map[string]float64{
		config.ParamSides:  7,
		config.ParamHeight: 9,
		config.ParamGlass:  3,
	}
	var wg sync.WaitGroup
	for param, last := range final {
		wg.Add(1)
		go func(param string, last float64) {
			defer wg.Done()
			r, _ := app.cfg.Ranges.For(param)
			for i := 0; i < 50; i++ {
				v := r.Min + float64(i%3)*r.Step
				if _, err := app.Set(param, v); err != nil {
					t.Errorf("Set(%s, %v) error = %v", param, v, err)
				}
			}
			if _, err := app.Set(param, last); err != nil {
				t.Errorf("Set(%s, %v) error = %v", param, last, err)
			}
		}(param, last)
	}
	wg.Wait()

	snap := app.Snapshot()
	if snap.Shade.Sides != 7 {
		t.Errorf("sides = %d, want 7", snap.Shade.Sides)
	}
	if math.Abs(snap.Shade.Height-9) > tol {
		t.Errorf("height = %v, want 9", snap.Shade.Height)
	}
	if math.Abs(snap.Glass.RimRadius-3) > tol {
		t.Errorf("glass radius = %v, want 3", snap.Glass.RimRadius)
	}
}
