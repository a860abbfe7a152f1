// Package systems implements the per-substep simulation passes: spatial
// indexing, integration, collision resolution, cohesion and emission.
package systems

import (
	"math"

	"github.com/Starland9/sand-simulation/particle"
)

// Grid is a uniform spatial hash over the simulation bounds. Cells are
// stored in a flat slice indexed x + z*nx + y*nx*nz and hold particle
// indices into the store. Each particle is inserted into exactly one cell;
// queries cover enough neighboring cells for the requested radius.
//
// Rebuild it every substep; cell slices are reused across rebuilds to
// avoid churn.
type Grid struct {
	cellSize   float32
	minBound   particle.Vec3
	nx, ny, nz int
	cells      [][]int
}

// NewGrid creates a grid covering [min, max] with the given cell size.
// Positions outside the bounds clamp to the nearest edge cell, so escaped
// particles remain visible to boundary collision.
func NewGrid(min, max particle.Vec3, cellSize float32) *Grid {
	g := &Grid{}
	g.Reset(min, max, cellSize)
	return g
}

// Reset re-dimensions the grid. Used when bounds or the largest particle
// radius change between frames.
func (g *Grid) Reset(min, max particle.Vec3, cellSize float32) {
	if cellSize <= 0 {
		cellSize = 1
	}
	g.cellSize = cellSize
	g.minBound = min
	g.nx = dimCells(max.X-min.X, cellSize)
	g.ny = dimCells(max.Y-min.Y, cellSize)
	g.nz = dimCells(max.Z-min.Z, cellSize)
	n := g.nx * g.ny * g.nz
	if cap(g.cells) < n {
		g.cells = make([][]int, n)
	}
	g.cells = g.cells[:n]
}

func dimCells(extent, cellSize float32) int {
	n := int(math.Ceil(float64(extent / cellSize)))
	if n < 1 {
		n = 1
	}
	return n
}

// CellSize returns the current cell edge length.
func (g *Grid) CellSize() float32 { return g.cellSize }

func (g *Grid) clampAxis(v float32, n int) int {
	i := int((v) / g.cellSize)
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (g *Grid) cellIndex(pos particle.Vec3) int {
	cx := g.clampAxis(pos.X-g.minBound.X, g.nx)
	cy := g.clampAxis(pos.Y-g.minBound.Y, g.ny)
	cz := g.clampAxis(pos.Z-g.minBound.Z, g.nz)
	return cx + cz*g.nx + cy*g.nx*g.nz
}

// Rebuild clears the grid and inserts every live particle.
func (g *Grid) Rebuild(st *particle.Store) {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	st.ForEachAlive(func(i int, p *particle.Particle) {
		ci := g.cellIndex(p.Pos)
		g.cells[ci] = append(g.cells[ci], i)
	})
}

// QueryInto appends to dst the indices of all particles in cells touching
// the sphere at pos with the given radius, and returns the extended slice.
// Results are candidates only; callers do the precise distance test. Within
// a cell, indices appear in insertion order, and cells are visited in a
// fixed order, so output order is deterministic.
func (g *Grid) QueryInto(dst []int, pos particle.Vec3, radius float32) []int {
	spanX0 := g.clampAxis(pos.X-radius-g.minBound.X, g.nx)
	spanX1 := g.clampAxis(pos.X+radius-g.minBound.X, g.nx)
	spanY0 := g.clampAxis(pos.Y-radius-g.minBound.Y, g.ny)
	spanY1 := g.clampAxis(pos.Y+radius-g.minBound.Y, g.ny)
	spanZ0 := g.clampAxis(pos.Z-radius-g.minBound.Z, g.nz)
	spanZ1 := g.clampAxis(pos.Z+radius-g.minBound.Z, g.nz)

	for cy := spanY0; cy <= spanY1; cy++ {
		for cz := spanZ0; cz <= spanZ1; cz++ {
			base := cz*g.nx + cy*g.nx*g.nz
			for cx := spanX0; cx <= spanX1; cx++ {
				dst = append(dst, g.cells[base+cx]...)
			}
		}
	}
	return dst
}
