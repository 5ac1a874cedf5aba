package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/pargrid"
	"github.com/gogpu/pargrid/internal/imageio"
)

type diffFlags struct {
	a, b, out string
	threshold int
	grain     int
}

func newDiffCmd(g *globalFlags) *cobra.Command {
	var f diffFlags

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Mask the pixels that differ between two images",
		Long: `Diff writes a black image with white pixels wherever every channel of
the two inputs differs by at least the threshold. It also prints the number of
white pixels.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := grainOpts(f.grain)
			if err != nil {
				return err
			}

			var a, b *pargrid.RGBBuffer
			var eg errgroup.Group
			eg.Go(func() (err error) {
				a, err = imageio.LoadRGB(f.a)
				return err
			})
			eg.Go(func() (err error) {
				b, err = imageio.LoadRGB(f.b)
				return err
			})
			if err := eg.Wait(); err != nil {
				return err
			}

			e := g.newEngine()
			defer e.Close()

			mask, err := e.AbsoluteDifferenceMask(a, b, f.threshold, opts...)
			if err != nil {
				return err
			}
			n, err := pargrid.CountMatching(e, mask, func(p pargrid.RGB) bool { return p == pargrid.White }, opts...)
			if err != nil {
				return err
			}
			if f.out != "" {
				if err := imageio.SaveRGB(mask, f.out); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.a, "a", "", "first image")
	cmd.Flags().StringVar(&f.b, "b", "", "second image")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "mask output image (optional)")
	cmd.Flags().IntVarP(&f.threshold, "threshold", "t", 10, "per-channel difference threshold (0-255)")
	cmd.Flags().IntVarP(&f.grain, "grain", "g", 0, "tile edge length (0 = auto)")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")
	return cmd
}
