package pargrid

import "image"

// CountMatching returns the number of cells of buf for which predicate holds.
//
// It is built on Reduce with identity 0 and integer addition as the merge,
// so the count is the same for every grain and pool size.
func CountMatching[T Pixel](e *Engine, buf *Buffer[T], predicate func(T) bool, opts ...CallOption) (int, error) {
	const op = "CountMatching"
	if err := checkBuffer(op, buf); err != nil {
		return 0, err
	}
	if predicate == nil {
		return 0, invalidParam(op, "predicate is nil")
	}

	grid, err := e.grid(op, buf.height, buf.width, collectCallOptions(opts))
	if err != nil {
		return 0, err
	}

	count := Reduce(e, grid.All(), 0,
		func(t Tile, acc int) int {
			for y := t.YStart; y < t.YEnd; y++ {
				for _, v := range buf.pix[y*buf.width+t.XStart : y*buf.width+t.XEnd] {
					if predicate(v) {
						acc++
					}
				}
			}
			return acc
		},
		func(a, b int) int { return a + b },
	)

	e.debug("count finished", "count", count)
	return count, nil
}

// FindFirst locates a cell equal to target, stopping remaining tiles as
// soon as one is found.
//
// If several cells match, any one of them may be returned; see
// Engine.Search. FindFirst reports false if no cell equals target.
func FindFirst[T Pixel](e *Engine, buf *Buffer[T], target T, opts ...CallOption) (image.Point, bool, error) {
	return FindFunc(e, buf, func(v T) bool { return v == target }, opts...)
}

// FindFunc is FindFirst with an arbitrary predicate.
func FindFunc[T Pixel](e *Engine, buf *Buffer[T], predicate func(T) bool, opts ...CallOption) (image.Point, bool, error) {
	const op = "FindFirst"
	if err := checkBuffer(op, buf); err != nil {
		return image.Point{}, false, err
	}
	if predicate == nil {
		return image.Point{}, false, invalidParam(op, "predicate is nil")
	}

	grid, err := e.grid(op, buf.height, buf.width, collectCallOptions(opts))
	if err != nil {
		return image.Point{}, false, err
	}

	p, ok := e.Search(grid.All(), func(x, y int) bool {
		return predicate(buf.pix[y*buf.width+x])
	})
	return p, ok, nil
}

// AbsoluteDifferenceMask compares a and b cell by cell. A cell of the result
// is White when every channel differs by at least threshold, and Black
// otherwise.
//
// Returns a KindInvalidParameter error if threshold is outside 0–255 and a
// KindDimensionMismatch error if a and b differ in size.
func (e *Engine) AbsoluteDifferenceMask(a, b *RGBBuffer, threshold int, opts ...CallOption) (*RGBBuffer, error) {
	const op = "AbsoluteDifferenceMask"
	if err := checkBuffer(op, a); err != nil {
		return nil, err
	}
	if err := checkBuffer(op, b); err != nil {
		return nil, err
	}
	if threshold < 0 || threshold > 255 {
		return nil, invalidParam(op, "threshold %d outside 0-255", threshold)
	}
	if !a.SameSize(b) {
		return nil, dimensionMismatch(op, a.width, a.height, b.width, b.height)
	}

	grid, err := e.grid(op, a.height, a.width, collectCallOptions(opts))
	if err != nil {
		return nil, err
	}

	out := &RGBBuffer{width: a.width, height: a.height, pix: make([]RGB, len(a.pix))}
	e.ForEach(grid.All(), func(t Tile) {
		for y := t.YStart; y < t.YEnd; y++ {
			for x := t.XStart; x < t.XEnd; x++ {
				i := y*a.width + x
				if differsAll(a.pix[i], b.pix[i], threshold) {
					out.pix[i] = White
				} else {
					out.pix[i] = Black
				}
			}
		}
	})
	return out, nil
}

// differsAll reports whether every channel of p and q differs by at least
// threshold.
func differsAll(p, q RGB, threshold int) bool {
	return absDiff(p.R, q.R) >= threshold &&
		absDiff(p.G, q.G) >= threshold &&
		absDiff(p.B, q.B) >= threshold
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
