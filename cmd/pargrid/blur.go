package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gogpu/pargrid"
	"github.com/gogpu/pargrid/internal/imageio"
)

type blurFlags struct {
	in, out string
	size    int
	sigma   float64
	grain   int
	color   bool
}

func newBlurCmd(g *globalFlags) *cobra.Command {
	var f blurFlags

	cmd := &cobra.Command{
		Use:   "blur",
		Short: "Apply a Gaussian blur",
		Long: `Blur convolves an image with a size × size Gaussian kernel.
An even size is rounded up to the next odd value. Sigma defaults to the kernel size.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBlur(g, &f)
		},
	}
	cmd.Flags().StringVarP(&f.in, "in", "i", "", "input image")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output image (format from extension)")
	cmd.Flags().IntVarP(&f.size, "size", "s", 9, "kernel size")
	cmd.Flags().Float64Var(&f.sigma, "sigma", 0, "Gaussian sigma (0 = kernel size)")
	cmd.Flags().IntVarP(&f.grain, "grain", "g", 0, "tile edge length (0 = auto)")
	cmd.Flags().BoolVar(&f.color, "color", false, "blur RGB channels instead of luminance")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runBlur(g *globalFlags, f *blurFlags) error {
	opts, err := grainOpts(f.grain)
	if err != nil {
		return err
	}
	sigma := f.sigma
	if sigma == 0 {
		sigma = float64(f.size)
	}

	e := g.newEngine()
	defer e.Close()

	k, err := pargrid.GenerateKernel(f.size, sigma)
	if err != nil {
		return err
	}
	if k.Size() != f.size {
		e.Logger().Info("kernel size rounded up to odd", slog.Int("size", k.Size()))
	}

	if f.color {
		in, err := imageio.LoadRGB(f.in)
		if err != nil {
			return err
		}
		out, err := e.ConvolveRGB(in, k, opts...)
		if err != nil {
			return err
		}
		return imageio.SaveRGB(out, f.out)
	}

	in, err := imageio.LoadGray(f.in)
	if err != nil {
		return err
	}
	out, err := e.Convolve(in, k, opts...)
	if err != nil {
		return err
	}
	if err := imageio.SaveGray(out, f.out); err != nil {
		return err
	}
	e.Logger().Debug("blur written", slog.String("path", f.out), slog.Int("width", out.Width()), slog.Int("height", out.Height()))
	return nil
}

// parseRGB parses "r,g,b" with each channel in 0–255.
func parseRGB(s string) (pargrid.RGB, error) {
	var r, g, b int
	if n, err := fmt.Sscanf(s, "%d,%d,%d", &r, &g, &b); err != nil || n != 3 {
		return pargrid.RGB{}, fmt.Errorf("color %q: want r,g,b", s)
	}
	for _, c := range []int{r, g, b} {
		if c < 0 || c > 255 {
			return pargrid.RGB{}, fmt.Errorf("color %q: channel %d outside 0-255", s, c)
		}
	}
	return pargrid.RGB{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}
