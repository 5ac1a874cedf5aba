// Package parallel provides the tiling and scheduling infrastructure behind
// pargrid's engine.
//
// A pixel domain of width × height cells is divided into rectangular tiles
// whose edge is at most the grain. Tiles are independent units of work and
// are executed on a fixed-size WorkerPool. Key properties:
//
//   - Tiles partition the domain exactly: no gaps, no overlaps
//   - Edge tiles shrink to fit the remainder; no tile is ever empty
//   - The tile sequence is produced lazily, so early-exit searches stop
//     generating work as soon as they are cancelled
//
// Thread safety: Tile and TileGrid values are immutable after construction
// and may be shared freely. WorkerPool is safe for concurrent use.
package parallel

import "math"

// DefaultTileSize is the tile edge used when no worker count is known.
// 64 pixels keeps a float32 tile at 16KB, within L1 on common CPUs.
const DefaultTileSize = 64

// TilesPerWorker is the target number of tiles per worker when the grain is
// chosen automatically. More tiles improve balance, fewer amortize dispatch.
const TilesPerWorker = 4

// Tile is a half-open rectangle [YStart,YEnd) × [XStart,XEnd) of the pixel
// domain, along with its position in the tile grid.
type Tile struct {
	// Col is the tile column index (0-based).
	Col int

	// Row is the tile row index (0-based).
	Row int

	XStart, XEnd int
	YStart, YEnd int
}

// Width returns the tile width in pixels.
func (t Tile) Width() int {
	return t.XEnd - t.XStart
}

// Height returns the tile height in pixels.
func (t Tile) Height() int {
	return t.YEnd - t.YStart
}

// Area returns the number of cells covered by the tile.
func (t Tile) Area() int {
	return t.Width() * t.Height()
}

// Empty reports whether the tile covers no cells.
func (t Tile) Empty() bool {
	return t.XEnd <= t.XStart || t.YEnd <= t.YStart
}

// AutoGrain picks a tile edge for a width × height domain so that the grid
// holds roughly TilesPerWorker tiles per worker. The result is at least 1.
// If workers is non-positive, DefaultTileSize is returned.
func AutoGrain(width, height, workers int) int {
	if workers <= 0 {
		return DefaultTileSize
	}
	if width <= 0 || height <= 0 {
		return 1
	}

	target := float64(workers * TilesPerWorker)
	edge := int(math.Ceil(math.Sqrt(float64(width) * float64(height) / target)))

	return max(edge, 1)
}
