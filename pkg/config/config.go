// Package config loads shadecut configuration from an optional json5 file
// and SHADECUT_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chazu/shadecut/pkg/contact"
	"github.com/chazu/shadecut/pkg/shade"
	"github.com/titanous/json5"
)

const (
	// DefaultMeshCells is the marching cubes resolution along the longest axis.
	DefaultMeshCells = 200
	// DefaultEvalTimeout bounds a single design script evaluation.
	DefaultEvalTimeout = 5 * time.Second
	// DefaultLogLevel controls verbosity.
	DefaultLogLevel = "info"
	// DefaultLogFormat selects the human console writer.
	DefaultLogFormat = "console"
)

// Environment variables read by Load.
const (
	EnvConfig           = "SHADECUT_CONFIG"
	EnvBowlDepth        = "SHADECUT_BOWL_DEPTH"
	EnvRadiusConvention = "SHADECUT_RADIUS_CONVENTION"
	EnvMeshCells        = "SHADECUT_MESH_CELLS"
	EnvLogLevel         = "SHADECUT_LOG_LEVEL"
	EnvLogFormat        = "SHADECUT_LOG_FORMAT"
	EnvEvalTimeout      = "SHADECUT_EVAL_TIMEOUT"
)

// Config captures all runtime tunables.
type Config struct {
	// BowlDepth is the depth of the glass bowl in cm. Zero means unknown
	// and disables the bowl comparison.
	BowlDepth        float64       `json:"bowl_depth"`
	RadiusConvention string        `json:"radius_convention"`
	Defaults         Defaults      `json:"defaults"`
	Ranges           Ranges        `json:"ranges"`
	MeshCells        int           `json:"mesh_cells"`
	Log              LogConfig     `json:"log"`
	EvalTimeout      time.Duration `json:"-"`
}

// Defaults is the design the control layer starts from.
type Defaults struct {
	Glass GlassDefaults `json:"glass"`
	Shade ShadeDefaults `json:"shade"`
}

// GlassDefaults is the initial glass. The bowl depth is the top-level
// bowl_depth key.
type GlassDefaults struct {
	RimRadius float64 `json:"rim_radius"`
}

// ShadeDefaults is the initial shade.
type ShadeDefaults struct {
	BottomRadius float64 `json:"bottom_radius"`
	TopRadius    float64 `json:"top_radius"`
	Height       float64 `json:"height"`
	Sides        int     `json:"sides"`
}

// Snapshot builds the design described by d on a glass of the given bowl
// depth.
func (d Defaults) Snapshot(bowlDepth float64) shade.Snapshot {
	return shade.Snapshot{
		Glass: shade.Glass{RimRadius: d.Glass.RimRadius, BowlDepth: bowlDepth},
		Shade: shade.Shade{
			BottomRadius: d.Shade.BottomRadius,
			TopRadius:    d.Shade.TopRadius,
			Height:       d.Shade.Height,
			Sides:        d.Shade.Sides,
		},
	}
}

// LogConfig captures structured logging options.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		RadiusConvention: contact.Vertex.String(),
		Defaults: Defaults{
			Glass: GlassDefaults{RimRadius: 2},
			Shade: ShadeDefaults{BottomRadius: 4, TopRadius: 1, Height: 5, Sides: 5},
		},
		Ranges:      DefaultRanges(),
		MeshCells:   DefaultMeshCells,
		Log:         LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		EvalTimeout: DefaultEvalTimeout,
	}
}

// Load builds the configuration: defaults, then the file at path (or at
// $SHADECUT_CONFIG when path is empty), then environment overrides. All
// problems are reported together.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfig))
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	var problems []string
	problems = append(problems, cfg.applyEnv()...)
	problems = append(problems, cfg.problems()...)

	if len(problems) > 0 {
		return nil, errors.New(strings.Join(problems, "; "))
	}
	return cfg, nil
}

// fileView is the on-disk shape: durations are strings.
type fileView struct {
	*Config
	EvalTimeout string `json:"eval_timeout"`
}

// LoadFile overlays a json5 file on c. Keys absent from the file keep
// their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return c.decode(data, path)
}

func (c *Config) decode(data []byte, name string) error {
	v := fileView{Config: c, EvalTimeout: c.EvalTimeout.String()}
	if err := json5.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("config: parse %s: %w", name, err)
	}
	d, err := time.ParseDuration(strings.TrimSpace(v.EvalTimeout))
	if err != nil {
		return fmt.Errorf("config: %s: eval_timeout must be a duration, got %q", name, v.EvalTimeout)
	}
	c.EvalTimeout = d
	return nil
}

// JSON renders the configuration in the file format.
func (c *Config) JSON() ([]byte, error) {
	return json.MarshalIndent(fileView{Config: c, EvalTimeout: c.EvalTimeout.String()}, "", "  ")
}

func (c *Config) applyEnv() []string {
	var problems []string

	if raw := strings.TrimSpace(os.Getenv(EnvBowlDepth)); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value < 0 || math.IsInf(value, 0) || math.IsNaN(value) {
			problems = append(problems, fmt.Sprintf("%s must be a non-negative number, got %q", EnvBowlDepth, raw))
		} else {
			c.BowlDepth = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv(EnvRadiusConvention)); raw != "" {
		c.RadiusConvention = raw
	}

	if raw := strings.TrimSpace(os.Getenv(EnvMeshCells)); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be a positive integer, got %q", EnvMeshCells, raw))
		} else {
			c.MeshCells = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv(EnvLogLevel)); raw != "" {
		c.Log.Level = raw
	}

	if raw := strings.TrimSpace(os.Getenv(EnvLogFormat)); raw != "" {
		c.Log.Format = raw
	}

	if raw := strings.TrimSpace(os.Getenv(EnvEvalTimeout)); raw != "" {
		duration, err := time.ParseDuration(raw)
		if err != nil || duration <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be a positive duration, got %q", EnvEvalTimeout, raw))
		} else {
			c.EvalTimeout = duration
		}
	}

	return problems
}

// Validate reports every problem with c in one error.
func (c *Config) Validate() error {
	if problems := c.problems(); len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) problems() []string {
	var problems []string

	if c.BowlDepth < 0 || math.IsNaN(c.BowlDepth) || math.IsInf(c.BowlDepth, 0) {
		problems = append(problems, fmt.Sprintf("bowl_depth must be a non-negative number, got %v", c.BowlDepth))
	}
	if _, err := contact.ParseConvention(c.RadiusConvention); err != nil {
		problems = append(problems, err.Error())
	}
	if c.MeshCells <= 0 {
		problems = append(problems, fmt.Sprintf("mesh_cells must be positive, got %d", c.MeshCells))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format must be console or json, got %q", c.Log.Format))
	}
	if c.EvalTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("eval_timeout must be positive, got %s", c.EvalTimeout))
	}
	for _, p := range Params {
		r, _ := c.Ranges.For(p)
		if err := r.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("ranges.%s: %v", p, err))
		}
	}
	if r := c.Ranges.Sides; !whole(r.Min) || !whole(r.Max) || !whole(r.Step) {
		problems = append(problems, fmt.Sprintf("ranges.%s: min, max and step must be whole numbers, got %v, %v, %v",
			ParamSides, r.Min, r.Max, r.Step))
	}
	if err := c.Defaults.Snapshot(c.BowlDepth).Validate(); err != nil {
		problems = append(problems, fmt.Sprintf("defaults: %v", err))
	}

	return problems
}

func whole(v float64) bool {
	return v == math.Trunc(v)
}

// Convention returns the parsed radius convention. It falls back to the
// vertex convention for a configuration that failed validation.
func (c *Config) Convention() contact.Convention {
	conv, err := contact.ParseConvention(c.RadiusConvention)
	if err != nil {
		return contact.Vertex
	}
	return conv
}

// InitialSnapshot is the snapshot the control layer starts from: the
// configured defaults with the configured bowl depth.
func (c *Config) InitialSnapshot() shade.Snapshot {
	return c.Defaults.Snapshot(c.BowlDepth)
}
