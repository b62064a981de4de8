// Package grid provides the uniform-cell broad-phase index used to bound
// collision candidate lookups to local neighborhoods.
package grid

import (
	"math"

	"github.com/colehorsman/zombie-game-sub004/internal/arena"
)

const (
	// DefaultCellSize is tuned near the typical entity diameter so expected
	// occupancy per cell stays small and independent of population size.
	DefaultCellSize = 32.0
)

type cellKey struct {
	X int
	Y int
}

// Grid is a uniform-cell spatial hash over arena handles. It is rebuilt from
// the arena every tick; it never owns entity data and never patches cells
// incrementally, which keeps membership structurally consistent with entity
// positions at tick start.
type Grid struct {
	cellSize    float64
	invCellSize float64
	cells       map[cellKey][]arena.Handle
	population  int
}

// New constructs a grid with the given cell size.
func New(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cells:       make(map[cellKey][]arena.Handle),
	}
}

// CellSize reports the configured cell edge length.
func (g *Grid) CellSize() float64 {
	if g == nil {
		return 0
	}
	return g.cellSize
}

// Rebuild clears the grid and reinserts every live, non-removed entity.
// Entities whose bounds span a cell boundary register in every overlapped
// cell so boundary collisions are never missed.
func (g *Grid) Rebuild(entities *arena.Arena) {
	if g == nil {
		return
	}
	for key := range g.cells {
		delete(g.cells, key)
	}
	g.population = 0
	if entities == nil {
		return
	}
	entities.ForEach(func(h arena.Handle, e *arena.Entity) bool {
		if e.State == arena.StateRemoved {
			return true
		}
		g.insert(h, e.Bounds())
		g.population++
		return true
	})
}

func (g *Grid) insert(h arena.Handle, bounds arena.AABB) {
	minX, minY, maxX, maxY := g.cellRange(bounds)
	for row := minY; row <= maxY; row++ {
		for col := minX; col <= maxX; col++ {
			key := cellKey{X: col, Y: row}
			g.cells[key] = append(g.cells[key], h)
		}
	}
}

// Query returns the handles of all entities whose cell overlaps the region.
// Cost is proportional to local density, not total population. Entities
// registered in several overlapped cells are reported once.
func (g *Grid) Query(region arena.AABB) []arena.Handle {
	if g == nil {
		return nil
	}
	minX, minY, maxX, maxY := g.cellRange(region)
	var result []arena.Handle
	var seen map[arena.Handle]struct{}
	for row := minY; row <= maxY; row++ {
		for col := minX; col <= maxX; col++ {
			bucket := g.cells[cellKey{X: col, Y: row}]
			for _, h := range bucket {
				if seen == nil {
					seen = make(map[arena.Handle]struct{}, len(bucket))
				}
				if _, dup := seen[h]; dup {
					continue
				}
				seen[h] = struct{}{}
				result = append(result, h)
			}
		}
	}
	return result
}

// Neighborhood returns candidates from the cell containing (x, y) and its
// eight immediate neighbors.
func (g *Grid) Neighborhood(x, y float64) []arena.Handle {
	if g == nil {
		return nil
	}
	half := g.cellSize
	return g.Query(arena.AABB{X: x, Y: y, HalfW: half, HalfH: half})
}

// Population reports how many entities the last rebuild inserted.
func (g *Grid) Population() int {
	if g == nil {
		return 0
	}
	return g.population
}

func (g *Grid) cellRange(bounds arena.AABB) (minX, minY, maxX, maxY int) {
	minX = g.coordToCell(bounds.X - bounds.HalfW)
	minY = g.coordToCell(bounds.Y - bounds.HalfH)
	maxX = g.coordToCell(bounds.X + bounds.HalfW)
	maxY = g.coordToCell(bounds.Y + bounds.HalfH)
	return minX, minY, maxX, maxY
}

func (g *Grid) coordToCell(value float64) int {
	return int(math.Floor(value * g.invCellSize))
}
