package steering

import (
	"math"

	"github.com/lao-tseu-is-alive/go-flock/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock/pkg/geometry"
)

// minCellSize keeps the grid from degenerating into tiny cells (or a division by zero).
const minCellSize = 10.0

type cellKey struct {
	x, y int
}

// Grid is a spatial hash over the members of one neighborhood. Cells are at
// least as large as the biggest perception radius, so the 3x3 block around a
// point holds every member that point can perceive.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]int
}

func NewGrid() *Grid {
	return &Grid{
		cellSize: minCellSize,
		cells:    make(map[cellKey][]int),
	}
}

// CellSizeFor returns the cell size matching the perception radii of p.
func CellSizeFor(p flock.FlockProperties) float64 {
	return math.Max(math.Max(p.VisualRange(), p.ProtectedRange()), minCellSize)
}

// Rebuild indexes members by position. Cell slices are truncated, not
// dropped, so a steady population rebuilds without allocating.
func (g *Grid) Rebuild(members []flock.BoidState, cellSize float64) {
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	g.cellSize = math.Max(cellSize, minCellSize)

	for i, m := range members {
		p := m.Position.XY()
		if !p.IsFinite() {
			continue
		}
		key := g.keyOf(p)
		g.cells[key] = append(g.cells[key], i)
	}
}

// Nearby appends to dst the indices stored in the 3x3 block of cells around p.
func (g *Grid) Nearby(p geometry.Vector2D, dst []int) []int {
	c := g.keyOf(p)
	for i := c.x - 1; i <= c.x+1; i++ {
		for j := c.y - 1; j <= c.y+1; j++ {
			dst = append(dst, g.cells[cellKey{x: i, y: j}]...)
		}
	}
	return dst
}

func (g *Grid) CellSize() float64 {
	return g.cellSize
}

func (g *Grid) keyOf(p geometry.Vector2D) cellKey {
	return cellKey{
		x: int(math.Floor(p.X / g.cellSize)),
		y: int(math.Floor(p.Y / g.cellSize)),
	}
}
