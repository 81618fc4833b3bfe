package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/chazu/shadecut/pkg/config"
	"github.com/spf13/cobra"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSolveCmd(opts *rootOptions) *cobra.Command {
	var (
		glass, bottom, top, height float64
		sides                      int
		asJSON                     bool
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve one shade and glass combination",
		Long: `Solve the contact between the glass rim and the shade wall and
compute the pane cut sizes. Parameters not given keep the configured
defaults. Values are used exactly as given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := opts.app.Snapshot()
			f := cmd.Flags()
			if f.Changed("glass") {
				snap.Glass.RimRadius = glass
			}
			if f.Changed("bottom") {
				snap.Shade.BottomRadius = bottom
			}
			if f.Changed("top") {
				snap.Shade.TopRadius = top
			}
			if f.Changed("height") {
				snap.Shade.Height = height
			}
			if f.Changed("sides") {
				snap.Shade.Sides = sides
			}

			res, err := opts.app.Apply(snap)
			out := cmd.OutOrStdout()
			if asJSON {
				if werr := writeJSON(out, res); werr != nil {
					return werr
				}
			} else if werr := writeSummary(out, res); werr != nil {
				return werr
			}
			return err
		},
	}

	f := cmd.Flags()
	f.Float64Var(&glass, "glass", 0, "glass rim radius (cm)")
	f.Float64Var(&bottom, "bottom", 0, "shade bottom radius, center to vertex (cm)")
	f.Float64Var(&top, "top", 0, "shade top radius, center to vertex (cm)")
	f.Float64Var(&height, "height", 0, "shade height (cm)")
	f.IntVar(&sides, "sides", 0, "number of panes")
	f.BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newSweepCmd(opts *rootOptions) *cobra.Command {
	var (
		param          string
		from, to, step float64
		asJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Recompute while stepping one slider through a span",
		Long: `Step one slider parameter (bottom, top, glass, sides or height) from
--from to --to and recompute at each step. Values are snapped and clamped
to the slider range, as when dragging the slider.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.cfg.Ranges.For(param)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("from") {
				from = r.Min
			}
			if !cmd.Flags().Changed("to") {
				to = r.Max
			}
			if !cmd.Flags().Changed("step") {
				step = r.Step
			}
			values, err := sweepValues(from, to, step)
			if err != nil {
				return err
			}

			results := make([]Result, 0, len(values))
			for _, v := range values {
				res, err := opts.app.Set(param, v)
				if err != nil {
					return fmt.Errorf("sweep %s=%g: %w", param, v, err)
				}
				results = append(results, res)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			return writeSweepTable(cmd.OutOrStdout(), param, results)
		},
	}

	f := cmd.Flags()
	f.StringVar(&param, "param", config.ParamGlass, "parameter to sweep: bottom, top, glass, sides, height")
	f.Float64Var(&from, "from", 0, "first value (default: slider minimum)")
	f.Float64Var(&to, "to", 0, "last value (default: slider maximum)")
	f.Float64Var(&step, "step", 0, "increment (default: slider step)")
	f.BoolVar(&asJSON, "json", false, "print the results as JSON")
	return cmd
}

// maxSweepSteps bounds the number of recomputes in one sweep.
const maxSweepSteps = 10000

func sweepValues(from, to, step float64) ([]float64, error) {
	for _, v := range []float64{from, to, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("sweep bounds must be finite, got from %g to %g step %g", from, to, step)
		}
	}
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %g", step)
	}
	if to < from {
		return nil, fmt.Errorf("--to %g is below --from %g", to, from)
	}
	// The span can overflow to +Inf, so bound the count before converting.
	count := math.Floor((to-from)/step+1e-9) + 1
	if math.IsInf(count, 0) || count > maxSweepSteps {
		return nil, fmt.Errorf("sweep of %g steps exceeds the limit of %d", count, maxSweepSteps)
	}
	values := make([]float64, int(count))
	for i := range values {
		values[i] = from + float64(i)*step
	}
	return values, nil
}

func sweepParam(param string, r Result) float64 {
	switch param {
	case config.ParamBottom:
		return r.Snapshot.Shade.BottomRadius
	case config.ParamTop:
		return r.Snapshot.Shade.TopRadius
	case config.ParamSides:
		return float64(r.Snapshot.Shade.Sides)
	case config.ParamHeight:
		return r.Snapshot.Shade.Height
	}
	return r.Snapshot.Glass.RimRadius
}

func writeSweepTable(w io.Writer, param string, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\toutcome\tcontact\tcovered\tpane length\n", param)
	for _, r := range results {
		if r.Contact.Defined() {
			fmt.Fprintf(tw, "%.2f\t%s\t%.2f\t%.2f\t%.2f\n", sweepParam(param, r), r.Contact.Outcome,
				r.Contact.ContactHeight, r.Contact.CoveredHeight, r.Panes.PaneLength)
		} else {
			fmt.Fprintf(tw, "%.2f\t%s\t-\t-\t%.2f\n", sweepParam(param, r), r.Contact.Outcome, r.Panes.PaneLength)
		}
	}
	return tw.Flush()
}

// readSource reads a script file, or stdin for "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

// errScript is returned when a script has eval errors; they are printed
// before it.
var errScript = errors.New("script failed")

func runScript(cmd *cobra.Command, opts *rootOptions, path string) (Result, error) {
	source, err := readSource(cmd, path)
	if err != nil {
		return Result{}, err
	}
	res, evalErrs, err := opts.app.EvaluateScript(source)
	if err != nil {
		return Result{}, err
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", path, e.Error())
		}
		return Result{}, fmt.Errorf("%w: %d error(s)", errScript, len(evalErrs))
	}
	return res, nil
}

func newScriptCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "script FILE",
		Short: "Evaluate a design script and solve it",
		Long: `Evaluate a design script and solve the snapshot it builds. Use - to
read from stdin.

  ; tumbler and a five-pane shade
  (glass :radius 2 :bowl-depth 6)
  (shade :bottom 4 :top 1 :height 5 :sides 5)

Keys left out keep the configured defaults.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runScript(cmd, opts, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, res); err != nil {
					return err
				}
			} else if err := writeSummary(out, res); err != nil {
				return err
			}
			if !res.Valid() {
				return fmt.Errorf("%s: invalid geometry", args[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newMeshCmd(opts *rootOptions) *cobra.Command {
	var script, outPath string

	cmd := &cobra.Command{
		Use:   "mesh",
		Short: "Write preview meshes of the shade and glass as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if script != "" {
				res, err := runScript(cmd, opts, script)
				if err != nil {
					return err
				}
				if !res.Valid() {
					if err := writeSummary(cmd.ErrOrStderr(), res); err != nil {
						return err
					}
					return fmt.Errorf("%s: invalid geometry", script)
				}
			}

			meshes, err := opts.app.Preview()
			if err != nil {
				return err
			}

			if outPath == "" || outPath == "-" {
				return writeJSON(cmd.OutOrStdout(), meshes)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := writeJSON(f, meshes); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVar(&script, "script", "", "design script to evaluate first")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.cfg.JSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
