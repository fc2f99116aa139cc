package world

import "go.uber.org/zap"

// Pool keeps per-category free lists of deactivated resource handles so
// respawning entities reuse renderable resources instead of reallocating
// them. Accessed only from the game loop goroutine — no locks.
type Pool struct {
	caps [categoryCount]int
	free [categoryCount][]*Resource
	log  *zap.Logger

	evictions int64
}

// DefaultPoolCap bounds a category's free list when the level file does not
// override it.
const DefaultPoolCap = 32

// NewPool creates a pool with the given per-category caps. A zero or
// negative cap falls back to DefaultPoolCap.
func NewPool(caps map[Category]int, log *zap.Logger) *Pool {
	p := &Pool{log: log}
	for c := Category(0); c < categoryCount; c++ {
		cap := caps[c]
		if cap <= 0 {
			cap = DefaultPoolCap
		}
		p.caps[c] = cap
	}
	return p
}

// Acquire returns a pooled handle matching typeTag, searching from the
// most-recently-released end backward, or nil when none matches — the
// caller then constructs fresh.
func (p *Pool) Acquire(cat Category, typeTag string) *Resource {
	if cat < 0 || cat >= categoryCount {
		return nil
	}
	list := p.free[cat]
	for i := len(list) - 1; i >= 0; i-- {
		h := list[i]
		if h.TypeTag != typeTag {
			continue
		}
		p.free[cat] = append(list[:i], list[i+1:]...)
		h.Active = true
		return h
	}
	return nil
}

// Release deactivates a handle and appends it to its category free list.
// The caller must already have removed the entity from the spatial grid.
// Beyond the cap, the oldest entry is evicted and its resources disposed.
// Releasing nil or an already-pooled handle is a logged no-op.
func (p *Pool) Release(cat Category, h *Resource) {
	if h == nil {
		p.log.Debug("pool: release of nil handle ignored")
		return
	}
	if cat < 0 || cat >= categoryCount {
		p.log.Debug("pool: release with unknown category", zap.Int("category", int(cat)))
		return
	}
	for _, held := range p.free[cat] {
		if held == h {
			p.log.Debug("pool: double release ignored", zap.Int64("id", h.ID))
			return
		}
	}
	h.Active = false
	p.free[cat] = append(p.free[cat], h)
	if len(p.free[cat]) > p.caps[cat] {
		oldest := p.free[cat][0]
		p.free[cat] = p.free[cat][1:]
		oldest.Dispose()
		p.evictions++
		p.log.Debug("pool: evicted oldest entry",
			zap.String("category", cat.String()),
			zap.String("type", oldest.TypeTag),
			zap.Int64("id", oldest.ID))
	}
}

// Size returns the current free-list length for a category.
func (p *Pool) Size(cat Category) int {
	if cat < 0 || cat >= categoryCount {
		return 0
	}
	return len(p.free[cat])
}

// Evictions returns the total number of cap evictions, for diagnostics.
func (p *Pool) Evictions() int64 {
	return p.evictions
}
