package pargrid

import (
	"math"
	"slices"
)

// Kernel is an odd-sized, normalized square weight matrix used by Convolve.
// It is immutable once built and safe to share across tiles.
type Kernel struct {
	size    int
	weights []float32 // row-major, size*size
}

// GenerateKernel builds a normalized 2-D Gaussian kernel.
//
// An even size is incremented to the next odd value so the kernel has a
// well-defined center cell. Each cell (dx, dy) in [-half, half]² samples
//
//	G(dx, dy) = 1/(2πσ²) · exp(-(dx²+dy²)/(2σ²))
//
// and the matrix is then divided by its sum so the weights add up to 1.
//
// Returns a KindInvalidParameter error if size is non-positive or sigma is
// not a positive finite number.
func GenerateKernel(size int, sigma float64) (*Kernel, error) {
	if size <= 0 {
		return nil, invalidParam("GenerateKernel", "size %d must be positive", size)
	}
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, invalidParam("GenerateKernel", "sigma %v must be positive and finite", sigma)
	}

	size = OddKernelSize(size)
	half := size / 2

	twoSigmaSq := 2 * sigma * sigma
	if twoSigmaSq == 0 {
		return nil, invalidParam("GenerateKernel", "sigma %v underflows", sigma)
	}

	raw := make([]float64, size*size)
	sum := 0.0
	for j := range size {
		dy := float64(j - half)
		for i := range size {
			dx := float64(i - half)
			// The 1/(2πσ²) factor cancels in the normalization below.
			g := math.Exp(-(dx*dx + dy*dy) / twoSigmaSq)
			raw[j*size+i] = g
			sum += g
		}
	}

	// The center cell is exp(0) = 1, so sum >= 1.
	weights := make([]float32, size*size)
	for i, g := range raw {
		weights[i] = float32(g / sum)
	}

	return &Kernel{size: size, weights: weights}, nil
}

// OddKernelSize returns size if it is odd and size+1 otherwise.
func OddKernelSize(size int) int {
	if size%2 == 0 {
		return size + 1
	}
	return size
}

// Size returns the kernel edge length. It is always odd.
func (k *Kernel) Size() int {
	return k.size
}

// Half returns the kernel radius, Size()/2.
func (k *Kernel) Half() int {
	return k.size / 2
}

// At returns the weight in column i, row j, both in [0, Size()).
func (k *Kernel) At(i, j int) float32 {
	return k.weights[j*k.size+i]
}

// Weights returns a copy of the row-major weights.
func (k *Kernel) Weights() []float32 {
	return slices.Clone(k.weights)
}

// Sum returns the total of all weights, 1 within float32 tolerance.
func (k *Kernel) Sum() float64 {
	s := 0.0
	for _, w := range k.weights {
		s += float64(w)
	}
	return s
}
