// Command pargrid runs the parallel tiled-grid image operations from the
// command line: Gaussian blur, pixel counting and search, two-image
// difference masks and a grain benchmark.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/pargrid"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	workers int
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:           "pargrid",
		Short:         "Parallel tiled-grid image processing",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().IntVarP(&g.workers, "workers", "w", 0, "worker pool size (0 = GOMAXPROCS)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log kernel, grain and tiling details")

	root.AddCommand(
		newBlurCmd(&g),
		newCountCmd(&g),
		newFindCmd(&g),
		newDiffCmd(&g),
		newBenchCmd(&g),
	)
	return root
}

// newEngine builds an engine configured from the global flags.
func (g *globalFlags) newEngine() *pargrid.Engine {
	level := slog.LevelInfo
	if g.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return pargrid.NewEngine(
		pargrid.WithWorkers(g.workers),
		pargrid.WithLogger(logger),
		pargrid.WithVerbose(g.verbose),
	)
}

// grainOpts turns the --grain flag into call options; 0 means auto.
func grainOpts(grain int) ([]pargrid.CallOption, error) {
	switch {
	case grain < 0:
		return nil, fmt.Errorf("--grain must be non-negative, got %d", grain)
	case grain == 0:
		return nil, nil
	default:
		return []pargrid.CallOption{pargrid.Grain(grain)}, nil
	}
}
