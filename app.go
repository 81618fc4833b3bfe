package main

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/chazu/shadecut/pkg/config"
	"github.com/chazu/shadecut/pkg/contact"
	"github.com/chazu/shadecut/pkg/engine"
	"github.com/chazu/shadecut/pkg/kernel"
	"github.com/chazu/shadecut/pkg/kernel/sdfx"
	"github.com/chazu/shadecut/pkg/panes"
	"github.com/chazu/shadecut/pkg/shade"
	"github.com/chazu/shadecut/pkg/tessellate"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"
)

// colorPalette assigns distinct colors to preview parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the control layer. It owns the current snapshot, applies
// parameter changes atomically and recomputes both the contact and the
// pane dimensions synchronously on every change.
type App struct {
	mu     sync.Mutex
	cfg    *config.Config
	log    zerolog.Logger
	engine *engine.Engine
	kernel kernel.Kernel
	conv   contact.Convention
	snap   shade.Snapshot
}

// MeshData is the JSON-serializable mesh format for preview consumers.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// Result is everything derived from one snapshot.
type Result struct {
	Snapshot    shade.Snapshot            `json:"snapshot"`
	Contact     contact.Result            `json:"contact"`
	Panes       panes.Dimensions          `json:"panes"`
	TouchPoints []r3.Vec                  `json:"touchPoints"`
	Warnings    []shade.ValidationWarning `json:"warnings"`
	Errors      []shade.ValidationError   `json:"errors"`
}

// Valid reports whether the snapshot passed validation.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// NewApp creates an App from a loaded configuration.
func NewApp(cfg *config.Config, log zerolog.Logger) *App {
	return NewAppWithKernel(cfg, log, sdfx.NewWithCells(cfg.MeshCells))
}

// NewAppWithKernel creates an App that previews through k.
func NewAppWithKernel(cfg *config.Config, log zerolog.Logger, k kernel.Kernel) *App {
	snap := cfg.InitialSnapshot()
	return &App{
		cfg:    cfg,
		log:    log,
		engine: engine.NewEngine(snap, cfg.EvalTimeout),
		kernel: k,
		conv:   cfg.Convention(),
		snap:   snap,
	}
}

// Snapshot returns the current snapshot.
func (a *App) Snapshot() shade.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snap
}

// Current recomputes the current snapshot.
func (a *App) Current() Result {
	r, _ := a.Recompute(a.Snapshot())
	return r
}

// Recompute derives contact and pane dimensions for snap without changing
// the current snapshot. An invalid snapshot yields a Result carrying the
// validation errors and an error matching shade.ErrInvalidGeometry.
func (a *App) Recompute(snap shade.Snapshot) (Result, error) {
	res := Result{
		Snapshot:    snap,
		TouchPoints: []r3.Vec{},
		Warnings:    []shade.ValidationWarning{},
		Errors:      []shade.ValidationError{},
	}

	c, err := contact.SolveWith(a.conv, snap.Glass, snap.Shade)
	if err != nil {
		var ge *shade.GeometryError
		if errors.As(err, &ge) {
			res.Errors = append(res.Errors, ge.Errors...)
		}
		a.log.Debug().Err(err).Msg("snapshot rejected")
		return res, err
	}
	d, err := panes.Compute(snap.Shade)
	if err != nil {
		return res, err
	}

	res.Contact = c
	res.Panes = d
	if pts := contact.TouchPoints(c, snap.Glass, snap.Shade); pts != nil {
		res.TouchPoints = pts
	}
	res.Warnings = append(res.Warnings, contact.Advise(c, snap.Glass)...)

	ev := a.log.Debug()
	if !c.Defined() {
		ev = a.log.Info()
	}
	ev.Str("outcome", c.Outcome.String()).
		Float64("contactHeight", c.ContactHeight).
		Float64("coveredHeight", c.CoveredHeight).
		Float64("paneLength", d.PaneLength).
		Msg("recomputed")

	return res, nil
}

// Apply recomputes snap and, when it is valid, makes it current.
func (a *App) Apply(snap shade.Snapshot) (Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.apply(snap)
}

// apply is Apply with a.mu held.
func (a *App) apply(snap shade.Snapshot) (Result, error) {
	res, err := a.Recompute(snap)
	if err != nil {
		return res, err
	}
	a.snap = snap
	return res, nil
}

// Set changes one slider parameter. The value is snapped to the slider
// step and clamped to its range before the new snapshot is applied.
func (a *App) Set(param string, value float64) (Result, error) {
	r, err := a.cfg.Ranges.For(param)
	if err != nil {
		return Result{}, err
	}
	v := r.Snap(value)

	a.mu.Lock()
	defer a.mu.Unlock()
	snap := a.snap
	switch param {
	case config.ParamBottom:
		snap.Shade.BottomRadius = v
	case config.ParamTop:
		snap.Shade.TopRadius = v
	case config.ParamGlass:
		snap.Glass.RimRadius = v
	case config.ParamSides:
		snap.Shade.Sides = int(math.Round(v))
	case config.ParamHeight:
		snap.Shade.Height = v
	}
	if v != value {
		a.log.Debug().Str("param", param).Float64("requested", value).Float64("applied", v).Msg("slider value snapped")
	}
	return a.apply(snap)
}

// EvaluateScript runs a design script and applies the snapshot it builds.
// Script errors are returned as eval errors; fatal engine failures
// (timeout, panic) as the error.
func (a *App) EvaluateScript(source string) (Result, []engine.EvalError, error) {
	a.engine.SetDefaults(a.Snapshot())

	script, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.Error().Err(err).Msg("script evaluation failed")
		return Result{}, nil, err
	}
	if len(evalErrs) > 0 {
		return Result{}, evalErrs, nil
	}
	for _, w := range script.Warnings {
		a.log.Info().Int("line", w.Line).Msg(w.Message)
	}

	res, err := a.Apply(script.Snapshot)
	if err != nil && !errors.Is(err, shade.ErrInvalidGeometry) {
		return res, nil, err
	}
	return res, nil, nil
}

// Preview tessellates the current snapshot into colored meshes.
func (a *App) Preview() ([]MeshData, error) {
	snap := a.Snapshot()
	res, err := a.Recompute(snap)
	if err != nil {
		return nil, err
	}

	meshes, err := tessellate.Scene(snap, res.Contact, a.kernel)
	if err != nil {
		a.log.Error().Err(err).Msg("tessellate failed")
		return nil, fmt.Errorf("tessellation failed: %w", err)
	}

	out := make([]MeshData, 0, len(meshes))
	for i, m := range meshes {
		out = append(out, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return out, nil
}
