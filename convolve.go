package pargrid

// Convolve applies k to in and returns a new buffer of the same size.
//
// Each output cell (x, y) is
//
//	Σ k.At(i+half, j+half) · in(x+i, y+j)   for i, j in [-half, half]
//
// Taps falling outside the buffer are skipped. The remaining weights are not
// renormalized, so cells within half of an edge receive a partial sum and
// borders come out darker than the interior. A 1×1 kernel scales every cell
// by its single weight.
//
// Tiles are dispatched with ForEach; each output cell is written by exactly
// one tile, so the result equals ConvolveSequential for any grain.
func (e *Engine) Convolve(in *FloatBuffer, k *Kernel, opts ...CallOption) (*FloatBuffer, error) {
	const op = "Convolve"
	if err := checkBuffer(op, in); err != nil {
		return nil, err
	}
	if k == nil {
		return nil, invalidParam(op, "kernel is nil")
	}

	grid, err := e.grid(op, in.height, in.width, collectCallOptions(opts))
	if err != nil {
		return nil, err
	}

	out := &FloatBuffer{width: in.width, height: in.height, pix: make([]float32, len(in.pix))}
	e.debug("convolve", "width", in.width, "height", in.height, "kernel", k.size)

	e.ForEach(grid.All(), func(t Tile) {
		convolveTile(in.pix, out.pix, in.width, in.height, k, t)
	})
	return out, nil
}

// ConvolveSequential computes the same result as Convolve on the calling
// goroutine, visiting the whole buffer as a single tile.
func ConvolveSequential(in *FloatBuffer, k *Kernel) (*FloatBuffer, error) {
	const op = "ConvolveSequential"
	if err := checkBuffer(op, in); err != nil {
		return nil, err
	}
	if k == nil {
		return nil, invalidParam(op, "kernel is nil")
	}

	out := &FloatBuffer{width: in.width, height: in.height, pix: make([]float32, len(in.pix))}
	whole := Tile{XEnd: in.width, YEnd: in.height}
	convolveTile(in.pix, out.pix, in.width, in.height, k, whole)
	return out, nil
}

// ConvolveRGB applies k to each channel of in independently. Channel sums
// are rounded to the nearest integer and clamped to [0, 255].
func (e *Engine) ConvolveRGB(in *RGBBuffer, k *Kernel, opts ...CallOption) (*RGBBuffer, error) {
	const op = "ConvolveRGB"
	if err := checkBuffer(op, in); err != nil {
		return nil, err
	}
	if k == nil {
		return nil, invalidParam(op, "kernel is nil")
	}

	grid, err := e.grid(op, in.height, in.width, collectCallOptions(opts))
	if err != nil {
		return nil, err
	}

	out := &RGBBuffer{width: in.width, height: in.height, pix: make([]RGB, len(in.pix))}
	e.debug("convolve rgb", "width", in.width, "height", in.height, "kernel", k.size)

	e.ForEach(grid.All(), func(t Tile) {
		convolveTileRGB(in.pix, out.pix, in.width, in.height, k, t)
	})
	return out, nil
}

// GaussianBlur generates a size × size Gaussian kernel with the given sigma
// and convolves in with it.
func (e *Engine) GaussianBlur(in *FloatBuffer, size int, sigma float64, opts ...CallOption) (*FloatBuffer, error) {
	k, err := GenerateKernel(size, sigma)
	if err != nil {
		return nil, err
	}
	if k.size != size {
		e.debug("kernel size corrected", "from", size, "to", k.size)
	}
	e.debug("kernel generated", "size", k.size, "sigma", sigma, "sum", k.Sum())
	return e.Convolve(in, k, opts...)
}

// convolveTile writes the convolution of the cells inside t into dst.
// src and dst are width × height row-major and must not alias.
func convolveTile(src, dst []float32, width, height int, k *Kernel, t Tile) {
	if k.size == 1 {
		w := k.weights[0]
		for y := t.YStart; y < t.YEnd; y++ {
			row := y * width
			for x := t.XStart; x < t.XEnd; x++ {
				dst[row+x] = w * src[row+x]
			}
		}
		return
	}

	half := k.size / 2
	for y := t.YStart; y < t.YEnd; y++ {
		// Clip the kernel rows to the buffer once per output row.
		j0 := max(-half, -y)
		j1 := min(half, height-1-y)

		for x := t.XStart; x < t.XEnd; x++ {
			i0 := max(-half, -x)
			i1 := min(half, width-1-x)

			var sum float32
			for j := j0; j <= j1; j++ {
				kc := (j+half)*k.size + half // kernel column 0 of this row
				sc := (y+j)*width + x
				for i := i0; i <= i1; i++ {
					sum += k.weights[kc+i] * src[sc+i]
				}
			}
			dst[y*width+x] = sum
		}
	}
}

// convolveTileRGB is convolveTile applied to the three channels at once.
func convolveTileRGB(src, dst []RGB, width, height int, k *Kernel, t Tile) {
	half := k.size / 2
	for y := t.YStart; y < t.YEnd; y++ {
		j0 := max(-half, -y)
		j1 := min(half, height-1-y)

		for x := t.XStart; x < t.XEnd; x++ {
			i0 := max(-half, -x)
			i1 := min(half, width-1-x)

			var r, g, b float32
			for j := j0; j <= j1; j++ {
				for i := i0; i <= i1; i++ {
					w := k.weights[(j+half)*k.size+(i+half)]
					p := src[(y+j)*width+(x+i)]
					r += w * float32(p.R)
					g += w * float32(p.G)
					b += w * float32(p.B)
				}
			}
			dst[y*width+x] = RGB{R: clampUint8(r), G: clampUint8(g), B: clampUint8(b)}
		}
	}
}

// clampUint8 rounds v to the nearest integer in [0, 255].
func clampUint8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
