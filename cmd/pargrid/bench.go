package main

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/pargrid"
	"github.com/gogpu/pargrid/internal/imageio"
)

// benchSizes are the kernel sizes timed by the bench command.
var benchSizes = []int{1, 3, 9, 27, 81}

type benchFlags struct {
	in            string
	width, height int
	sizes         []int
	grains        []int
	outDir        string
}

// benchMode is one way of running the convolution.
type benchMode struct {
	name string
	run  func(*pargrid.FloatBuffer, *pargrid.Kernel) (*pargrid.FloatBuffer, error)
}

func newBenchCmd(g *globalFlags) *cobra.Command {
	var f benchFlags

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time sequential and parallel blurs across kernel sizes and grains",
		Long: `Bench blurs one image with each kernel size, once sequentially and once
per grain setting, and prints the elapsed time of each run. Without --in a
reproducible noise image of --width × --height is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd, g, &f)
		},
	}
	cmd.Flags().StringVarP(&f.in, "in", "i", "", "input image (optional)")
	cmd.Flags().IntVar(&f.width, "width", 1920, "synthetic image width")
	cmd.Flags().IntVar(&f.height, "height", 1080, "synthetic image height")
	cmd.Flags().IntSliceVar(&f.sizes, "sizes", benchSizes, "kernel sizes")
	cmd.Flags().IntSliceVar(&f.grains, "grains", []int{0, 256, 2048}, "grains to time (0 = auto)")
	cmd.Flags().StringVar(&f.outDir, "out-dir", "", "write each blurred image here (optional)")
	return cmd
}

func runBench(cmd *cobra.Command, g *globalFlags, f *benchFlags) error {
	img, err := benchInput(f)
	if err != nil {
		return err
	}

	kernels, err := benchKernels(f.sizes)
	if err != nil {
		return err
	}

	e := g.newEngine()
	defer e.Close()

	modes := []benchMode{{name: "sequential", run: pargrid.ConvolveSequential}}
	for _, grain := range f.grains {
		opts, err := grainOpts(grain)
		if err != nil {
			return err
		}
		name := "auto"
		if grain > 0 {
			name = fmt.Sprintf("grain %d", grain)
		}
		modes = append(modes, benchMode{
			name: name,
			run: func(in *pargrid.FloatBuffer, k *pargrid.Kernel) (*pargrid.FloatBuffer, error) {
				return e.Convolve(in, k, opts...)
			},
		})
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "mode\tkernel\tseconds\t\n")
	for _, m := range modes {
		for _, k := range kernels {
			start := time.Now()
			out, err := m.run(img, k)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)
			fmt.Fprintf(w, "%s\t%dx%d\t%.4f\t\n", m.name, k.Size(), k.Size(), elapsed.Seconds())

			if f.outDir != "" {
				name := fmt.Sprintf("bench_%s_%d.png", sanitize(m.name), k.Size())
				if err := imageio.SaveGray(out, filepath.Join(f.outDir, name)); err != nil {
					return err
				}
			}
		}
	}
	return w.Flush()
}

func benchInput(f *benchFlags) (*pargrid.FloatBuffer, error) {
	if f.in != "" {
		return imageio.LoadGray(f.in)
	}
	img, err := pargrid.NewBuffer[float32](f.width, f.height)
	if err != nil {
		return nil, err
	}
	r := rand.New(rand.NewPCG(1, 2))
	for i := range img.Pix() {
		img.Pix()[i] = r.Float32()
	}
	return img, nil
}

// benchKernels generates one kernel per size, sigma equal to the size.
func benchKernels(sizes []int) ([]*pargrid.Kernel, error) {
	kernels := make([]*pargrid.Kernel, len(sizes))

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, size := range sizes {
		eg.Go(func() error {
			k, err := pargrid.GenerateKernel(size, float64(size))
			if err != nil {
				return fmt.Errorf("kernel %d: %w", size, err)
			}
			kernels[i] = k
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return kernels, nil
}

func sanitize(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}
