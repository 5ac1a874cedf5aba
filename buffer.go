package pargrid

import (
	"math"
	"slices"
)

// RGB is a 3-channel byte pixel.
type RGB struct {
	R, G, B uint8
}

// Pure white and pure black, the two values written by difference masks.
var (
	White = RGB{R: 255, G: 255, B: 255}
	Black = RGB{}
)

// Pixel is the set of sample types a Buffer may hold: a single-channel
// float intensity or an RGB byte triple.
type Pixel interface {
	float32 | RGB
}

// Buffer is a rectangular width × height grid of samples stored row-major.
//
// A Buffer is owned by whichever component currently holds it. Operations
// read their inputs concurrently from many tiles and never write them;
// outputs are freshly allocated and written through tile-disjoint cells.
//
// Thread safety: concurrent reads are safe. Set and writes through Pix
// require external synchronization.
type Buffer[T Pixel] struct {
	width  int
	height int
	pix    []T
}

// FloatBuffer is a single-channel intensity buffer.
type FloatBuffer = Buffer[float32]

// RGBBuffer is a 3-channel byte buffer.
type RGBBuffer = Buffer[RGB]

// NewBuffer allocates a zeroed buffer.
// It fails with KindInvalidParameter if either dimension is non-positive.
func NewBuffer[T Pixel](width, height int) (*Buffer[T], error) {
	if err := checkDims("NewBuffer", width, height); err != nil {
		return nil, err
	}
	return &Buffer[T]{
		width:  width,
		height: height,
		pix:    make([]T, width*height),
	}, nil
}

// FromPixels wraps existing row-major samples without copying.
// len(pix) must equal width*height.
func FromPixels[T Pixel](width, height int, pix []T) (*Buffer[T], error) {
	if err := checkDims("FromPixels", width, height); err != nil {
		return nil, err
	}
	if len(pix) != width*height {
		return nil, invalidParam("FromPixels", "have %d samples, want %d", len(pix), width*height)
	}
	return &Buffer[T]{width: width, height: height, pix: pix}, nil
}

// Width returns the buffer width in samples.
func (b *Buffer[T]) Width() int { return b.width }

// Height returns the buffer height in samples.
func (b *Buffer[T]) Height() int { return b.height }

// Pix returns the underlying row-major samples.
func (b *Buffer[T]) Pix() []T { return b.pix }

// At returns the sample at (x, y). It panics if (x, y) is out of bounds.
func (b *Buffer[T]) At(x, y int) T {
	return b.pix[y*b.width+x]
}

// Set stores v at (x, y). It panics if (x, y) is out of bounds.
func (b *Buffer[T]) Set(x, y int, v T) {
	b.pix[y*b.width+x] = v
}

// Row returns the samples of row y, sharing storage with the buffer.
func (b *Buffer[T]) Row(y int) []T {
	return b.pix[y*b.width : (y+1)*b.width]
}

// InBounds reports whether (x, y) lies inside the buffer.
func (b *Buffer[T]) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// SameSize reports whether b and other have identical dimensions.
func (b *Buffer[T]) SameSize(other *Buffer[T]) bool {
	return b.width == other.width && b.height == other.height
}

// Clone returns a deep copy of the buffer.
func (b *Buffer[T]) Clone() *Buffer[T] {
	return &Buffer[T]{width: b.width, height: b.height, pix: slices.Clone(b.pix)}
}

// Fill sets every sample to v.
func (b *Buffer[T]) Fill(v T) {
	for i := range b.pix {
		b.pix[i] = v
	}
}

// valid reports whether b is a usable, non-empty buffer.
func (b *Buffer[T]) valid() bool {
	return b != nil && b.width > 0 && b.height > 0 && len(b.pix) == b.width*b.height
}

// checkDims rejects non-positive dimensions and sizes whose cell count
// overflows int.
func checkDims(op string, width, height int) error {
	if width <= 0 || height <= 0 {
		return invalidParam(op, "dimensions %dx%d must be positive", width, height)
	}
	if width > math.MaxInt/height {
		return invalidParam(op, "dimensions %dx%d overflow the cell count", width, height)
	}
	return nil
}

func checkBuffer[T Pixel](op string, b *Buffer[T]) error {
	if !b.valid() {
		return invalidParam(op, "buffer is nil or zero-size")
	}
	return nil
}
