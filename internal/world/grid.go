package world

import (
	"math"
	"strconv"

	"go.uber.org/zap"
)

// Grid implements the uniform-cell broad-phase index over the horizontal
// plane. Cell size is chosen so that a 3x3 neighbourhood of cells fully
// covers the collision probe range around the observer.
// Accessed only from the game loop goroutine — no locks.
type Grid struct {
	cellSize float64
	cells    map[string]map[*Resource]struct{} // cell key → set of handles
	where    map[*Resource]string              // handle → current cell key
	log      *zap.Logger
}

func NewGrid(cellSize float64, log *zap.Logger) *Grid {
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[string]map[*Resource]struct{}),
		where:    make(map[*Resource]string),
		log:      log,
	}
}

func (g *Grid) cellCoord(v float64) int64 {
	return int64(math.Floor(v / g.cellSize))
}

// CellKey joins two cell coordinates into the canonical "x,z" key.
// strconv keeps negative coordinates unambiguous ("-1,2" vs "1,-2").
func CellKey(cx, cz int64) string {
	return strconv.FormatInt(cx, 10) + "," + strconv.FormatInt(cz, 10)
}

func (g *Grid) keyAt(pos Vec3) string {
	return CellKey(g.cellCoord(pos.X), g.cellCoord(pos.Z))
}

// Insert places a handle into the cell covering pos. Inserting a handle that
// is already tracked relocates it instead.
func (g *Grid) Insert(h *Resource, pos Vec3) {
	if h == nil {
		g.log.Debug("grid: insert of nil handle ignored")
		return
	}
	if _, ok := g.where[h]; ok {
		g.Relocate(h, pos)
		return
	}
	k := g.keyAt(pos)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[*Resource]struct{})
		g.cells[k] = cell
	}
	cell[h] = struct{}{}
	g.where[h] = k
}

// Remove takes a handle out of the grid. Removing an untracked handle is a
// no-op: teardown paths call this defensively from multiple sites.
func (g *Grid) Remove(h *Resource) {
	if h == nil {
		return
	}
	k, ok := g.where[h]
	if !ok {
		g.log.Debug("grid: remove of untracked handle", zap.Int64("id", h.ID))
		return
	}
	delete(g.where, h)
	cell := g.cells[k]
	if cell != nil {
		delete(cell, h)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Relocate updates a handle's cell after a position change. When the new
// position maps to the same cell this is a no-op — the cheap path for
// slow-moving entities that cross a cell boundary only rarely.
func (g *Grid) Relocate(h *Resource, pos Vec3) {
	if h == nil {
		return
	}
	oldK, ok := g.where[h]
	if !ok {
		g.Insert(h, pos)
		return
	}
	newK := g.keyAt(pos)
	if oldK == newK {
		return
	}
	cell := g.cells[oldK]
	if cell != nil {
		delete(cell, h)
		if len(cell) == 0 {
			delete(g.cells, oldK)
		}
	}
	dst := g.cells[newK]
	if dst == nil {
		dst = make(map[*Resource]struct{})
		g.cells[newK] = dst
	}
	dst[h] = struct{}{}
	g.where[h] = newK
}

// QueryNeighborhood returns every handle in the 3x3 block of cells centered
// on pos. Results are duplicate-free but unsorted; callers do fine-grained
// distance filtering.
func (g *Grid) QueryNeighborhood(pos Vec3) []*Resource {
	cx := g.cellCoord(pos.X)
	cz := g.cellCoord(pos.Z)
	var result []*Resource
	for dx := int64(-1); dx <= 1; dx++ {
		for dz := int64(-1); dz <= 1; dz++ {
			for h := range g.cells[CellKey(cx+dx, cz+dz)] {
				result = append(result, h)
			}
		}
	}
	return result
}

// Contains reports whether a handle is currently tracked.
func (g *Grid) Contains(h *Resource) bool {
	_, ok := g.where[h]
	return ok
}

// Len returns the number of tracked handles.
func (g *Grid) Len() int {
	return len(g.where)
}
