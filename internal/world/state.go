package world

import (
	"go.uber.org/zap"

	"github.com/driftworld/core/internal/core/event"
)

// State is the explicit ownership root for one simulated world. Everything
// mutable hangs off it; systems receive it as a parameter instead of reaching
// for globals. Accessed only from the game loop goroutine — no locks.
type State struct {
	Grid   *Grid
	Pool   *Pool
	Chunks *ChunkManager
	Bus    *event.Bus
	Log    *zap.Logger

	Observer Vec3
	Score    int64
	Tick     int64

	enemies map[*Resource]*Enemy
}

// NewState wires an empty world over pre-built components. The chunk
// manager's enemy hooks are left for the behavior layer to install.
func NewState(grid *Grid, pool *Pool, chunks *ChunkManager, bus *event.Bus, log *zap.Logger) *State {
	return &State{
		Grid:    grid,
		Pool:    pool,
		Chunks:  chunks,
		Bus:     bus,
		Log:     log,
		enemies: make(map[*Resource]*Enemy),
	}
}

// AddEnemy registers a live enemy keyed by its backing handle. Re-registering
// an already-tracked handle is a logged no-op.
func (s *State) AddEnemy(e *Enemy) {
	h := e.Record.Handle
	if h == nil {
		s.Log.Debug("add enemy without handle ignored", zap.String("type", e.Tag))
		return
	}
	if _, ok := s.enemies[h]; ok {
		s.Log.Debug("enemy already registered", zap.Int64("id", h.ID))
		return
	}
	s.enemies[h] = e
}

// RemoveEnemyByHandle drops a live enemy. Unknown handles are ignored;
// unload paths call this just before the handle is released to the pool.
func (s *State) RemoveEnemyByHandle(h *Resource) {
	delete(s.enemies, h)
}

// Enemy returns the live record behind a handle, or nil.
func (s *State) Enemy(h *Resource) *Enemy {
	return s.enemies[h]
}

// Enemies returns the live enemy set. Callers must not add or remove entries
// while iterating.
func (s *State) Enemies() map[*Resource]*Enemy {
	return s.enemies
}

// EnemyCount returns the number of live enemies.
func (s *State) EnemyCount() int {
	return len(s.enemies)
}
