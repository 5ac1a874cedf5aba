package parallel

import "iter"

// TileGrid divides a width × height domain into tiles of at most
// grain × grain cells.
//
// Tiles are described arithmetically rather than stored, so a grid is cheap
// to build for every operation and tiles are produced on demand.
// Edge tiles have reduced dimensions when the domain is not evenly divisible
// by the grain.
type TileGrid struct {
	width  int
	height int
	grain  int

	tilesX int
	tilesY int
}

// NewTileGrid creates a tile grid for the given domain and grain.
// A non-positive width or height yields an empty grid.
// A non-positive grain is treated as DefaultTileSize.
func NewTileGrid(width, height, grain int) *TileGrid {
	if grain <= 0 {
		grain = DefaultTileSize
	}
	if width <= 0 || height <= 0 {
		return &TileGrid{grain: grain}
	}

	return &TileGrid{
		width:  width,
		height: height,
		grain:  grain,
		tilesX: (width + grain - 1) / grain,
		tilesY: (height + grain - 1) / grain,
	}
}

// TileAt returns the tile at tile coordinates (tx, ty).
// Returns false if coordinates are out of bounds.
func (g *TileGrid) TileAt(tx, ty int) (Tile, bool) {
	if tx < 0 || tx >= g.tilesX || ty < 0 || ty >= g.tilesY {
		return Tile{}, false
	}

	x0 := tx * g.grain
	y0 := ty * g.grain

	return Tile{
		Col:    tx,
		Row:    ty,
		XStart: x0,
		XEnd:   min(x0+g.grain, g.width),
		YStart: y0,
		YEnd:   min(y0+g.grain, g.height),
	}, true
}

// All returns the tiles of the grid in row-major order
// (left-to-right, top-to-bottom). The sequence is lazy and finite.
func (g *TileGrid) All() iter.Seq[Tile] {
	return func(yield func(Tile) bool) {
		for ty := range g.tilesY {
			for tx := range g.tilesX {
				tile, _ := g.TileAt(tx, ty)
				if !yield(tile) {
					return
				}
			}
		}
	}
}

// TileCount returns the total number of tiles in the grid.
func (g *TileGrid) TileCount() int {
	return g.tilesX * g.tilesY
}

// Grain returns the maximum tile edge length.
func (g *TileGrid) Grain() int {
	return g.grain
}
