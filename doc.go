// Package pargrid is a parallel tiled-grid processing engine for 2-D pixel
// buffers.
//
// An Engine partitions a width × height domain into rectangular tiles and
// runs per-tile workers on a fixed-size goroutine pool. Three execution
// patterns are provided:
//
//   - ForEach: fire-and-forget over all tiles with a completion barrier
//   - Reduce: per-worker accumulators combined by an associative merge
//   - Search: cancellable scan that stops scheduling tiles after a hit
//
// On top of these sit Gaussian convolution (GenerateKernel, Convolve),
// predicate counting (CountMatching), target search (FindFirst) and
// two-image difference masking (AbsoluteDifferenceMask).
//
// # Quick Start
//
//	e := pargrid.NewEngine()
//	defer e.Close()
//
//	k, err := pargrid.GenerateKernel(9, 9)
//	if err != nil {
//	    return err
//	}
//	blurred, err := e.Convolve(img, k, pargrid.Grain(256))
//
// # Tiling
//
// Tiles cover the domain exactly with no gaps or overlaps. Pass Grain(n) to
// fix the maximum tile edge; otherwise the engine picks one giving about four
// tiles per worker.
//
// # Borders
//
// Convolution skips taps that fall outside the buffer without renormalizing
// the kernel, so border cells are darker than interior cells of a uniform
// image.
//
// # Determinism
//
// Convolve and CountMatching produce identical results for every grain and
// pool size. FindFirst and Search return whichever match wins the
// cancellation race, which can differ between runs when several cells match.
//
// # Logging
//
// Engines log nothing by default. Use WithLogger and WithVerbose to receive
// debug records through log/slog.
package pargrid
