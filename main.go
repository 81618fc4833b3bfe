// Command shadecut sizes the glass panes of a faceted lampshade and finds
// where it rests on the rim of a drinking glass.
package main

import (
	"fmt"
	"os"

	"github.com/chazu/shadecut/pkg/config"
	"github.com/chazu/shadecut/pkg/logging"
	"github.com/spf13/cobra"
)

// rootOptions carries the persistent flags and the App they build.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	convention string
	bowlDepth  float64
	meshCells  int

	cfg *config.Config
	app *App
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "shadecut",
		Short: "Faceted lampshade pane sizes and glass rim contact",
		Long: `shadecut models a lampshade made of N identical trapezoidal glass
panes that rests on the rim of a drinking glass.

It reports where the rim touches the shade wall, how much of the glass
the shade covers, and the cut sizes of one pane.

Configuration is read from a json5 file (--config or $SHADECUT_CONFIG),
then SHADECUT_* environment variables, then flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "json5 configuration file")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&opts.logFormat, "log-format", "", "log format: console or json")
	f.StringVar(&opts.convention, "convention", "", "radius convention: vertex or facet")
	f.Float64Var(&opts.bowlDepth, "bowl-depth", 0, "glass bowl depth in cm, 0 when unknown")
	f.IntVar(&opts.meshCells, "mesh-cells", 0, "marching cubes resolution for previews")

	cmd.AddCommand(
		newSolveCmd(opts),
		newSweepCmd(opts),
		newScriptCmd(opts),
		newMeshCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

// setup loads the configuration, applies flags that were set and builds
// the App.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if f.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	if f.Changed("convention") {
		cfg.RadiusConvention = o.convention
	}
	if f.Changed("bowl-depth") {
		cfg.BowlDepth = o.bowlDepth
	}
	if f.Changed("mesh-cells") {
		cfg.MeshCells = o.meshCells
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.app = NewApp(cfg, log)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
