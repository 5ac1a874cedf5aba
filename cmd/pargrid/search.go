package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/pargrid"
	"github.com/gogpu/pargrid/internal/imageio"
)

type searchFlags struct {
	in    string
	color string
	grain int
}

func (f *searchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.in, "in", "i", "", "input image")
	cmd.Flags().StringVarP(&f.color, "color", "c", "255,255,255", "target colour as r,g,b")
	cmd.Flags().IntVarP(&f.grain, "grain", "g", 0, "tile edge length (0 = auto)")
	_ = cmd.MarkFlagRequired("in")
}

// load reads the input image and resolves the target colour and grain.
func (f *searchFlags) load() (*pargrid.RGBBuffer, pargrid.RGB, []pargrid.CallOption, error) {
	target, err := parseRGB(f.color)
	if err != nil {
		return nil, pargrid.RGB{}, nil, err
	}
	opts, err := grainOpts(f.grain)
	if err != nil {
		return nil, pargrid.RGB{}, nil, err
	}
	img, err := imageio.LoadRGB(f.in)
	if err != nil {
		return nil, pargrid.RGB{}, nil, err
	}
	return img, target, opts, nil
}

func newCountCmd(g *globalFlags) *cobra.Command {
	var f searchFlags

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count pixels of a given colour",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			img, target, opts, err := f.load()
			if err != nil {
				return err
			}

			e := g.newEngine()
			defer e.Close()

			n, err := pargrid.CountMatching(e, img, func(p pargrid.RGB) bool { return p == target }, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newFindCmd(g *globalFlags) *cobra.Command {
	var f searchFlags

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Locate a pixel of a given colour",
		Long: `Find prints the coordinates of a pixel matching the colour.
When several pixels match, whichever tile finds one first wins.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			img, target, opts, err := f.load()
			if err != nil {
				return err
			}

			e := g.newEngine()
			defer e.Close()

			p, ok, err := pargrid.FindFirst(e, img, target, opts...)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "not found")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %d\n", p.X, p.Y)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
