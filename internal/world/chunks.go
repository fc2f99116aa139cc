package world

import (
	"go.uber.org/zap"

	"github.com/driftworld/core/internal/core/event"
)

// ChunkStatus tracks where a chunk sits in its lifecycle.
type ChunkStatus int

const (
	StatusQueuedForLoad ChunkStatus = iota
	StatusLoaded
	StatusQueuedForUnload
)

var chunkStatusNames = [...]string{"queued_for_load", "loaded", "queued_for_unload"}

func (s ChunkStatus) String() string {
	if s < 0 || int(s) >= len(chunkStatusNames) {
		return "unknown"
	}
	return chunkStatusNames[s]
}

// GenerateFunc produces the contents of one chunk. It must be deterministic:
// the same coordinate always yields the same record.
type GenerateFunc func(coord ChunkCoord) (*ChunkRecord, error)

// ChunkManager drives the streaming lifecycle around the observer: chunks
// inside the render radius get loaded, chunks outside it get unloaded, and
// all actual work is metered through per-tick queues so a fast-moving
// observer never causes a frame spike.
// Accessed only from the game loop goroutine — no locks.
type ChunkManager struct {
	chunkSize float64
	radius    int32
	budget    int

	gen  GenerateFunc
	grid *Grid
	pool *Pool
	bus  *event.Bus
	log  *zap.Logger

	status   map[string]ChunkStatus
	resident map[string]*ChunkRecord
	byHandle map[*Resource]*EntityRecord
	loadQ    []ChunkCoord
	unloadQ  []string

	// Behavior-layer hooks, invoked as enemies materialize and dematerialize.
	OnEnemySpawn   func(rec *EntityRecord)
	OnEnemyDespawn func(rec *EntityRecord)

	loads   int64
	unloads int64
}

// NewChunkManager wires a manager over the given grid and pool. budget is the
// maximum number of chunk operations (loads plus unloads) per Process call;
// zero or negative means one.
func NewChunkManager(chunkSize float64, radius int32, budget int, gen GenerateFunc, grid *Grid, pool *Pool, bus *event.Bus, log *zap.Logger) *ChunkManager {
	if budget <= 0 {
		budget = 1
	}
	return &ChunkManager{
		chunkSize: chunkSize,
		radius:    radius,
		budget:    budget,
		gen:       gen,
		grid:      grid,
		pool:      pool,
		bus:       bus,
		log:       log,
		status:    make(map[string]ChunkStatus),
		resident:  make(map[string]*ChunkRecord),
		byHandle:  make(map[*Resource]*EntityRecord),
	}
}

// Refresh reconciles the queues against the desired resident set around the
// observer. It only moves chunks between queues; Process does the real work.
//
// Cross-cancellation keeps the queues consistent when the observer doubles
// back: a chunk waiting to unload that is wanted again is simply rescued, and
// a chunk waiting to load that fell out of range is dropped before any work
// was spent on it.
func (m *ChunkManager) Refresh(observer Vec3) {
	center := ChunkCoordAt(observer, m.chunkSize)

	desired := make(map[string]ChunkCoord)
	for dx := -m.radius; dx <= m.radius; dx++ {
		for dz := -m.radius; dz <= m.radius; dz++ {
			c := ChunkCoord{X: center.X + dx, Z: center.Z + dz}
			desired[c.Key()] = c
		}
	}

	for key, coord := range desired {
		st, ok := m.status[key]
		if !ok {
			m.status[key] = StatusQueuedForLoad
			m.loadQ = append(m.loadQ, coord)
			continue
		}
		if st == StatusQueuedForUnload {
			m.unloadQ = removeKey(m.unloadQ, key)
			m.status[key] = StatusLoaded
		}
	}

	for key, st := range m.status {
		coord, err := ParseChunkKey(key)
		if err != nil {
			m.log.Warn("malformed chunk key in status map", zap.String("chunk", key), zap.Error(err))
			continue
		}
		if center.Chebyshev(coord) <= m.radius {
			continue
		}
		switch st {
		case StatusQueuedForLoad:
			m.loadQ = removeCoord(m.loadQ, key)
			delete(m.status, key)
		case StatusLoaded:
			m.status[key] = StatusQueuedForUnload
			m.unloadQ = append(m.unloadQ, key)
		}
	}
}

func removeKey(q []string, key string) []string {
	for i, k := range q {
		if k == key {
			return append(q[:i], q[i+1:]...)
		}
	}
	return q
}

func removeCoord(q []ChunkCoord, key string) []ChunkCoord {
	for i, c := range q {
		if c.Key() == key {
			return append(q[:i], q[i+1:]...)
		}
	}
	return q
}

// Process performs up to the per-tick budget of chunk operations. Unloads
// drain first: freeing handles before loading lets the pool recycle them into
// the chunks coming in on the other side of the observer.
func (m *ChunkManager) Process() {
	ops := m.budget
	for ops > 0 && len(m.unloadQ) > 0 {
		key := m.unloadQ[0]
		m.unloadQ = m.unloadQ[1:]
		if m.status[key] != StatusQueuedForUnload {
			// Rescued by a later Refresh; stale queue entry.
			continue
		}
		m.unloadChunk(key)
		ops--
	}
	for ops > 0 && len(m.loadQ) > 0 {
		coord := m.loadQ[0]
		m.loadQ = m.loadQ[1:]
		if m.status[coord.Key()] != StatusQueuedForLoad {
			continue
		}
		m.loadChunk(coord)
		ops--
	}
}

func (m *ChunkManager) loadChunk(coord ChunkCoord) {
	key := coord.Key()
	rec, err := m.gen(coord)
	if err != nil {
		// Drop the status entry; the next Refresh in range re-queues it.
		m.log.Error("chunk generation failed", zap.String("chunk", key), zap.Error(err))
		delete(m.status, key)
		return
	}

	for i, ent := range rec.Entities {
		ent.ChunkKey = key
		ent.Index = i
		if ent.Collected {
			continue
		}
		h := m.pool.Acquire(ent.Category, ent.TypeTag)
		if h == nil {
			h = NewResource(ent.Category, ent.TypeTag)
		}
		ent.Handle = h
		m.byHandle[h] = ent
		m.grid.Insert(h, ent.Pos)
		if ent.Category == CatEnemy {
			if m.OnEnemySpawn != nil {
				m.OnEnemySpawn(ent)
			}
			event.Emit(m.bus, event.EnemySpawnEvent{HandleID: h.ID, TypeTag: ent.TypeTag, ChunkKey: key})
		}
	}

	m.resident[key] = rec
	m.status[key] = StatusLoaded
	m.loads++
	event.Emit(m.bus, event.ChunkLoadedEvent{Key: key, Entities: len(rec.Entities)})
	m.log.Debug("chunk loaded", zap.String("chunk", key), zap.Int("entities", len(rec.Entities)))
}

func (m *ChunkManager) unloadChunk(key string) {
	rec, ok := m.resident[key]
	if !ok {
		m.log.Debug("unload of non-resident chunk ignored", zap.String("chunk", key))
		delete(m.status, key)
		return
	}

	for _, ent := range rec.Entities {
		h := ent.Handle
		if h == nil {
			continue
		}
		if ent.Category == CatEnemy {
			if m.OnEnemyDespawn != nil {
				m.OnEnemyDespawn(ent)
			}
			event.Emit(m.bus, event.EnemyDespawnEvent{HandleID: h.ID, TypeTag: ent.TypeTag})
		}
		// Grid removal strictly precedes the pool release so a pooled handle
		// can never be returned by a spatial query.
		m.grid.Remove(h)
		m.pool.Release(ent.Category, h)
		delete(m.byHandle, h)
		ent.Handle = nil
	}

	delete(m.resident, key)
	delete(m.status, key)
	m.unloads++
	event.Emit(m.bus, event.ChunkUnloadedEvent{Key: key})
	m.log.Debug("chunk unloaded", zap.String("chunk", key))
}

// CollectObject marks a collectible as collected, detaches it from the grid
// and returns its handle to the pool. Returns false — without side effects —
// for unknown chunks, out-of-range indices, non-collectibles, collidable
// records, and repeats, so the call is safe to retry on at-least-once
// delivery.
func (m *ChunkManager) CollectObject(chunkKey string, index int) bool {
	rec, ok := m.resident[chunkKey]
	if !ok {
		m.log.Debug("collect on non-resident chunk", zap.String("chunk", chunkKey))
		return false
	}
	if index < 0 || index >= len(rec.Entities) {
		m.log.Debug("collect index out of range", zap.String("chunk", chunkKey), zap.Int("index", index))
		return false
	}
	ent := rec.Entities[index]
	if ent.Category != CatCollectible || ent.Collidable || ent.Collected || ent.Handle == nil {
		return false
	}

	ent.Collected = true
	m.grid.Remove(ent.Handle)
	m.pool.Release(ent.Category, ent.Handle)
	delete(m.byHandle, ent.Handle)
	ent.Handle = nil
	event.Emit(m.bus, event.ScoreEvent{ChunkKey: chunkKey, Index: index, TypeTag: ent.TypeTag, Value: ent.ScoreValue})
	return true
}

// TerrainHeight samples the terrain under a world position. Returns false
// when the covering chunk is not resident.
func (m *ChunkManager) TerrainHeight(pos Vec3) (float64, bool) {
	key := ChunkCoordAt(pos, m.chunkSize).Key()
	rec, ok := m.resident[key]
	if !ok || rec.Terrain == nil {
		return 0, false
	}
	return rec.Terrain.Sample(pos.X, pos.Z), true
}

// EntityByHandle maps a grid query result back to its entity record.
// Returns nil for handles the manager does not currently own.
func (m *ChunkManager) EntityByHandle(h *Resource) *EntityRecord {
	return m.byHandle[h]
}

// Chunk returns the resident record for a key, or nil.
func (m *ChunkManager) Chunk(key string) *ChunkRecord {
	return m.resident[key]
}

// Status reports a chunk's lifecycle status.
func (m *ChunkManager) Status(key string) (ChunkStatus, bool) {
	st, ok := m.status[key]
	return st, ok
}

// ResidentCount returns the number of fully loaded chunks.
func (m *ChunkManager) ResidentCount() int {
	return len(m.resident)
}

// QueueLens returns the pending load and unload queue lengths.
func (m *ChunkManager) QueueLens() (loads, unloads int) {
	return len(m.loadQ), len(m.unloadQ)
}

// Counters returns lifetime load and unload counts, for diagnostics.
func (m *ChunkManager) Counters() (loads, unloads int64) {
	return m.loads, m.unloads
}
