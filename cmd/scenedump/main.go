// Command scenedump builds the demo scene, runs it headless for a number of frames and
// prints a snapshot of the result as YAML, TOML or XML.
package main

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-scene/engine"
	"github.com/Carmen-Shannon/oxy-scene/engine/config"
	"github.com/Carmen-Shannon/oxy-scene/engine/demo"
	"github.com/Carmen-Shannon/oxy-scene/engine/dump"
	"github.com/Carmen-Shannon/oxy-scene/engine/renderer/headless"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	frames     uint64
	format     string
	delta      float32
	aspect     float32
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "scenedump",
		Short:         "Run the demo scene headless and dump its state",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML or TOML configuration file")
	flags.Uint64VarP(&opts.frames, "frames", "n", 1, "number of frames to run before dumping")
	flags.StringVarP(&opts.format, "format", "f", "yaml", "output format: yaml, toml or xml")
	flags.Float32Var(&opts.delta, "dt", 1.0/60.0, "simulated frame time in seconds")
	flags.Float32Var(&opts.aspect, "aspect", 16.0/9.0, "viewport aspect ratio")
	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	format, err := dump.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.delta <= 0 {
		return fmt.Errorf("--dt must be positive, got %v", opts.delta)
	}

	cfg := config.Default()
	if opts.configPath != "" {
		if cfg, err = config.Load(opts.configPath); err != nil {
			return err
		}
	}

	d, err := demo.Build(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	if opts.frames > 0 {
		eng := engine.NewEngine(
			engine.WithPipelines(headless.Pipeline("object"), headless.Pipeline("skinned")),
			engine.WithFixedDelta(opts.delta),
			engine.WithMaxFrames(opts.frames),
			engine.WithAspect(opts.aspect),
			engine.WithProfiling(cfg.Engine.Profile),
			engine.WithScene(0, d.Scene),
		)
		if err := eng.Run(); err != nil {
			return err
		}
	}

	return dump.Encode(cmd.OutOrStdout(), dump.Capture(d.Scene), format)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "scenedump:", err)
		os.Exit(1)
	}
}
