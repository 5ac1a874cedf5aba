package pargrid

import (
	"image"
	"iter"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/gogpu/pargrid/internal/parallel"
)

// Tile is a half-open rectangle [YStart,YEnd) × [XStart,XEnd) of a pixel
// domain, the unit of parallel work.
type Tile = parallel.Tile

// Engine owns a fixed-size worker pool and runs per-tile workers on it.
//
// An Engine is created once, shared by every operation for its lifetime and
// released with Close. All entry points block until every dispatched tile
// has finished. After Close, entry points still work but run tiles on the
// calling goroutine.
//
// Thread safety: Engine is safe for concurrent use.
type Engine struct {
	pool    *parallel.WorkerPool
	log     *slog.Logger
	verbose bool
}

// NewEngine creates an engine and starts its worker pool.
func NewEngine(opts ...EngineOption) *Engine {
	o := defaultEngineOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	log := o.logger
	if log == nil {
		log = newNopLogger()
	}

	e := &Engine{
		pool:    parallel.NewWorkerPool(o.workers),
		log:     log,
		verbose: o.verbose,
	}
	e.debug("engine started", "workers", e.pool.Workers())
	return e
}

// Close stops the worker pool after queued tiles complete.
// Close is safe to call multiple times.
func (e *Engine) Close() {
	if e.pool.IsRunning() {
		e.debug("engine closing", "workers", e.pool.Workers())
	}
	e.pool.Close()
}

// Workers returns the size of the engine's worker pool.
func (e *Engine) Workers() int {
	return e.pool.Workers()
}

// Partition returns a lazy sequence of tiles exactly covering
// [0,height) × [0,width).
//
// With a Grain option the grain is the maximum tile edge in both dimensions
// and the last row and column of tiles hold the remainder. Without one the
// grain is chosen so there are about four tiles per worker.
//
// Returns a KindInvalidParameter error for a zero-size domain or a
// non-positive grain.
func (e *Engine) Partition(height, width int, opts ...CallOption) (iter.Seq[Tile], error) {
	grid, err := e.grid("Partition", height, width, collectCallOptions(opts))
	if err != nil {
		return nil, err
	}
	return grid.All(), nil
}

func (e *Engine) grid(op string, height, width int, o callOptions) (*parallel.TileGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, invalidParam(op, "domain %dx%d must be non-empty", width, height)
	}

	grain := o.grain
	if o.grainSet {
		if grain <= 0 {
			return nil, invalidParam(op, "grain %d must be positive", grain)
		}
	} else {
		grain = parallel.AutoGrain(width, height, e.pool.Workers())
	}

	grid := parallel.NewTileGrid(width, height, grain)
	e.debug("partition", "op", op, "width", width, "height", height,
		"grain", grid.Grain(), "auto", !o.grainSet, "tiles", grid.TileCount())
	return grid, nil
}

// ForEach runs worker once per tile on the pool and returns after every
// tile has completed.
//
// Workers may write into shared output buffers as long as each tile writes
// only cells inside its own rectangle.
func (e *Engine) ForEach(tiles iter.Seq[Tile], worker func(Tile)) {
	e.pool.ExecuteAll(func(yield func(parallel.Task) bool) {
		for tile := range tiles {
			if !yield(func(int) { worker(tile) }) {
				return
			}
		}
	})
}

// reduceSlot holds one goroutine's running accumulator, padded so that
// neighbouring slots do not share a cache line.
type reduceSlot[R any] struct {
	acc  R
	used bool
	_    cpu.CacheLinePad
}

// Reduce folds tiles into a single value.
//
// Every pool goroutine keeps a running accumulator that starts at identity;
// each tile it executes replaces it with worker(tile, acc). After all tiles
// finish, the accumulators that saw at least one tile are combined with
// merge. Accumulators are never shared between goroutines, and merge runs
// only after the barrier.
//
// merge must be associative and commutative, and identity must be its
// neutral element; under those conditions the result does not depend on the
// tile decomposition or scheduling. Reduce returns identity when tiles is
// empty.
func Reduce[R any](e *Engine, tiles iter.Seq[Tile], identity R, worker func(Tile, R) R, merge func(R, R) R) R {
	// One slot per pool worker plus one for the dispatching goroutine.
	slots := make([]reduceSlot[R], e.pool.Workers()+1)
	for i := range slots {
		slots[i].acc = identity
	}

	e.pool.ExecuteAll(func(yield func(parallel.Task) bool) {
		for tile := range tiles {
			task := func(w int) {
				s := &slots[w]
				s.acc = worker(tile, s.acc)
				s.used = true
			}
			if !yield(task) {
				return
			}
		}
	})

	result := identity
	for i := range slots {
		if slots[i].used {
			result = merge(result, slots[i].acc)
		}
	}
	return result
}

// CancelToken is a one-shot cancellation flag shared by the tiles of a
// single search. The first Cancel wins; later calls have no effect.
type CancelToken struct {
	cancelled atomic.Bool
}

// Cancel sets the flag. It reports true only for the call that set it.
func (c *CancelToken) Cancel() bool {
	return c.cancelled.CompareAndSwap(false, true)
}

// Cancelled reports whether Cancel has been called.
func (c *CancelToken) Cancelled() bool {
	return c.cancelled.Load()
}

// Search scans tiles for a cell satisfying predicate and stops early on the
// first hit.
//
// A tile that finds a match cancels the whole search; only the goroutine
// whose Cancel wins publishes its coordinate. After cancellation no new
// tiles are pulled from the sequence, queued tiles return without scanning,
// and running tiles stop at their next row boundary. Cells already being
// checked may still be visited.
//
// When several tiles match concurrently the returned point is the one whose
// cancellation won the race, which is not necessarily the first match in
// row-major order. Search reports false if no cell matched.
func (e *Engine) Search(tiles iter.Seq[Tile], predicate func(x, y int) bool) (image.Point, bool) {
	var (
		token CancelToken
		found image.Point
	)

	e.pool.ExecuteAll(func(yield func(parallel.Task) bool) {
		for tile := range tiles {
			if token.Cancelled() {
				return
			}
			task := func(int) {
				if p, ok := scanTile(tile, &token, predicate); ok && token.Cancel() {
					found = p
				}
			}
			if !yield(task) {
				return
			}
		}
	})

	// ExecuteAll's barrier orders the winner's write before this read.
	if !token.Cancelled() {
		e.debug("search finished", "found", false)
		return image.Point{}, false
	}
	e.debug("search finished", "found", true, "x", found.X, "y", found.Y)
	return found, true
}

// scanTile visits the cells of tile in row-major order, checking the token
// between rows.
func scanTile(tile Tile, token *CancelToken, predicate func(x, y int) bool) (image.Point, bool) {
	for y := tile.YStart; y < tile.YEnd; y++ {
		if token.Cancelled() {
			return image.Point{}, false
		}
		for x := tile.XStart; x < tile.XEnd; x++ {
			if predicate(x, y) {
				return image.Pt(x, y), true
			}
		}
	}
	return image.Point{}, false
}
