package world

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/driftworld/core/internal/core/event"
)

// testGen produces one collectible, one obstacle and one enemy per chunk on
// flat terrain at height 7.
func testGen(coord ChunkCoord) (*ChunkRecord, error) {
	base := Vec3{X: float64(coord.X)*16 + 2, Y: 7, Z: float64(coord.Z)*16 + 2}
	terrain := NewHeightField(float64(coord.X)*16, float64(coord.Z)*16, 4, 5)
	for i := range terrain.Heights {
		terrain.Heights[i] = 7
	}
	return &ChunkRecord{
		Coord:   coord,
		Key:     coord.Key(),
		Terrain: terrain,
		Entities: []*EntityRecord{
			{Pos: base, Category: CatCollectible, TypeTag: "shard", ScoreValue: 10},
			{Pos: Vec3{X: base.X + 4, Y: 7, Z: base.Z}, Category: CatObstacle, TypeTag: "boulder", Collidable: true},
			{Pos: Vec3{X: base.X, Y: 7, Z: base.Z + 4}, Category: CatEnemy, TypeTag: "stalker"},
		},
	}, nil
}

func newTestManager(radius int32, budget int) (*ChunkManager, *Grid, *Pool, *event.Bus) {
	log := zap.NewNop()
	bus := event.NewBus()
	grid := NewGrid(8, log)
	pool := NewPool(nil, log)
	m := NewChunkManager(16, radius, budget, testGen, grid, pool, bus, log)
	return m, grid, pool, bus
}

func drain(m *ChunkManager) {
	for {
		loads, unloads := m.QueueLens()
		if loads == 0 && unloads == 0 {
			return
		}
		m.Process()
	}
}

func TestChunkKeyRoundTrip(t *testing.T) {
	for _, c := range []ChunkCoord{{0, 0}, {-1, 2}, {1, -2}, {123, -456}} {
		got, err := ParseChunkKey(c.Key())
		if err != nil {
			t.Fatalf("ParseChunkKey(%q): %v", c.Key(), err)
		}
		if got != c {
			t.Fatalf("round trip %v → %q → %v", c, c.Key(), got)
		}
	}
	for _, bad := range []string{"", "1", "1,2,3", "a,b", "1,"} {
		if _, err := ParseChunkKey(bad); err == nil {
			t.Fatalf("ParseChunkKey(%q) accepted garbage", bad)
		}
	}
}

func TestRefreshLoadsRenderNeighborhood(t *testing.T) {
	m, grid, _, _ := newTestManager(1, 100)
	m.Refresh(Vec3{X: 8, Z: 8}) // center chunk 0,0
	if loads, _ := m.QueueLens(); loads != 9 {
		t.Fatalf("load queue = %d, want 9", loads)
	}
	drain(m)
	if m.ResidentCount() != 9 {
		t.Fatalf("resident = %d, want 9", m.ResidentCount())
	}
	if grid.Len() != 27 {
		t.Fatalf("grid tracks %d handles, want 27", grid.Len())
	}
	if st, _ := m.Status(ChunkCoord{0, 0}.Key()); st != StatusLoaded {
		t.Fatalf("center status = %v, want loaded", st)
	}
}

func TestProcessHonorsBudget(t *testing.T) {
	m, _, _, _ := newTestManager(1, 2)
	m.Refresh(Vec3{})
	m.Process()
	if m.ResidentCount() != 2 {
		t.Fatalf("resident after one Process = %d, want budget 2", m.ResidentCount())
	}
	m.Process()
	if m.ResidentCount() != 4 {
		t.Fatalf("resident after two Process = %d, want 4", m.ResidentCount())
	}
}

func TestUnloadsDrainBeforeLoads(t *testing.T) {
	m, _, _, _ := newTestManager(1, 100)
	m.Refresh(Vec3{})
	drain(m)

	// Jump far away: 9 unloads and 9 loads pending.
	m.budget = 4
	m.Refresh(Vec3{X: 1000, Z: 1000})
	m.Process()

	loads, unloads := m.Counters()
	if loads != 9 {
		t.Fatalf("loads = %d, want 9 (none of the new chunks yet)", loads)
	}
	if unloads != 4 {
		t.Fatalf("unloads = %d, want 4", unloads)
	}
}

func TestCrossingChunkBoundaryStreamsEdgeColumns(t *testing.T) {
	m, _, _, _ := newTestManager(2, 1000)
	m.Refresh(Vec3{X: 8, Z: 8}) // center 0,0; 5x5 resident
	drain(m)
	if m.ResidentCount() != 25 {
		t.Fatalf("resident = %d, want 25", m.ResidentCount())
	}

	// One chunk east: exactly the trailing -x column unloads and the new
	// +x column loads.
	m.Refresh(Vec3{X: 24, Z: 8})
	loads, unloads := m.QueueLens()
	if loads != 5 || unloads != 5 {
		t.Fatalf("queues = %d loads, %d unloads, want 5 and 5", loads, unloads)
	}
	drain(m)
	if m.ResidentCount() != 25 {
		t.Fatalf("resident = %d after the move, want 25 again", m.ResidentCount())
	}
	if _, ok := m.Status(ChunkCoord{X: -2, Z: 0}.Key()); ok {
		t.Fatal("trailing column chunk still tracked")
	}
	if st, _ := m.Status(ChunkCoord{X: 3, Z: 0}.Key()); st != StatusLoaded {
		t.Fatal("leading column chunk not loaded")
	}
}

func TestUnloadCancelledWhenObserverReturns(t *testing.T) {
	m, _, _, _ := newTestManager(0, 100)
	m.Refresh(Vec3{})
	drain(m)

	m.Refresh(Vec3{X: 1000, Z: 1000}) // queue origin chunk for unload
	m.Refresh(Vec3{})                 // come back before any work happened

	if st, _ := m.Status(ChunkCoord{0, 0}.Key()); st != StatusLoaded {
		t.Fatalf("origin status = %v, want rescued to loaded", st)
	}
	// The far chunk's load was cancelled too.
	farKey := ChunkCoordAt(Vec3{X: 1000, Z: 1000}, 16).Key()
	if _, ok := m.Status(farKey); ok {
		t.Fatal("cancelled load still has a status entry")
	}
	drain(m)
	if loads, _ := m.Counters(); loads != 1 {
		t.Fatalf("loads = %d, want 1 (origin only, loaded once)", loads)
	}
}

func TestUnloadReturnsHandlesToPool(t *testing.T) {
	m, grid, pool, _ := newTestManager(0, 100)
	m.Refresh(Vec3{})
	drain(m)

	rec := m.Chunk(ChunkCoord{0, 0}.Key())
	collectible := rec.Entities[0].Handle

	// Step one op at a time so the unload lands before the far load.
	m.budget = 1
	m.Refresh(Vec3{X: 1000, Z: 1000})
	m.Process()

	if grid.Len() != 0 {
		t.Fatalf("grid tracks %d handles after unload, want 0", grid.Len())
	}
	if collectible.Active {
		t.Fatal("released handle still active")
	}
	if rec.Entities[0].Handle != nil {
		t.Fatal("unloaded record still points at a handle")
	}
	if pool.Size(CatCollectible) != 1 {
		t.Fatalf("collectible free list = %d, want 1", pool.Size(CatCollectible))
	}

	// The next load reuses the pooled handle.
	m.Process()
	far := m.Chunk(ChunkCoordAt(Vec3{X: 1000, Z: 1000}, 16).Key())
	if far == nil {
		t.Fatal("far chunk not loaded")
	}
	if far.Entities[0].Handle != collectible {
		t.Fatal("pooled collectible handle not reused")
	}
	if pool.Size(CatCollectible) != 0 {
		t.Fatalf("collectible free list = %d, want 0 after reuse", pool.Size(CatCollectible))
	}
}

func TestCollectObjectIdempotent(t *testing.T) {
	m, grid, pool, _ := newTestManager(0, 100)
	m.Refresh(Vec3{})
	drain(m)
	key := ChunkCoord{0, 0}.Key()

	if !m.CollectObject(key, 0) {
		t.Fatal("first collect failed")
	}
	rec := m.Chunk(key)
	if !rec.Entities[0].Collected {
		t.Fatal("record not marked collected")
	}
	if rec.Entities[0].Handle != nil {
		t.Fatal("collected record still holds a handle")
	}
	if pool.Size(CatCollectible) != 1 {
		t.Fatalf("collectible free list = %d, want 1", pool.Size(CatCollectible))
	}
	if grid.Len() != 2 {
		t.Fatalf("grid tracks %d handles, want 2", grid.Len())
	}

	// Repeats and bad requests are all rejected without side effects.
	if m.CollectObject(key, 0) {
		t.Fatal("second collect succeeded")
	}
	if m.CollectObject(key, 1) {
		t.Fatal("collected an obstacle")
	}
	if m.CollectObject(key, 99) {
		t.Fatal("collected an out-of-range index")
	}
	if m.CollectObject("7,7", 0) {
		t.Fatal("collected from a non-resident chunk")
	}
	if pool.Size(CatCollectible) != 1 {
		t.Fatal("rejected collects touched the pool")
	}
}

func TestCollectObjectRejectsCollidable(t *testing.T) {
	log := zap.NewNop()
	bus := event.NewBus()
	grid := NewGrid(8, log)
	pool := NewPool(nil, log)
	spiked := func(coord ChunkCoord) (*ChunkRecord, error) {
		return &ChunkRecord{
			Coord: coord,
			Key:   coord.Key(),
			Entities: []*EntityRecord{
				{Pos: Vec3{X: 2, Z: 2}, Category: CatCollectible, TypeTag: "cursed_orb", ScoreValue: 5, Collidable: true},
			},
		}, nil
	}
	m := NewChunkManager(16, 0, 100, spiked, grid, pool, bus, log)
	m.Refresh(Vec3{})
	drain(m)

	var scored int
	event.Subscribe(bus, func(event.ScoreEvent) { scored++ })

	key := ChunkCoord{0, 0}.Key()
	if m.CollectObject(key, 0) {
		t.Fatal("collected a collidable record")
	}
	rec := m.Chunk(key)
	if rec.Entities[0].Collected || rec.Entities[0].Handle == nil {
		t.Fatal("rejected collect had side effects on the record")
	}
	if grid.Len() != 1 || pool.Size(CatCollectible) != 0 {
		t.Fatal("rejected collect touched the grid or pool")
	}
	bus.SwapBuffers()
	bus.DispatchAll()
	if scored != 0 {
		t.Fatalf("score events = %d, want none", scored)
	}
}

func TestCollectedStaysCollectedWhileResident(t *testing.T) {
	m, _, _, _ := newTestManager(0, 100)
	m.Refresh(Vec3{})
	drain(m)
	key := ChunkCoord{0, 0}.Key()
	m.CollectObject(key, 0)

	// Streaming activity elsewhere must not resurrect it.
	m.Refresh(Vec3{})
	m.Process()
	if !m.Chunk(key).Entities[0].Collected {
		t.Fatal("collected flag lost while chunk stayed resident")
	}
}

func TestEnemyHooks(t *testing.T) {
	m, _, _, _ := newTestManager(0, 100)
	var spawned, despawned []string
	m.OnEnemySpawn = func(rec *EntityRecord) { spawned = append(spawned, rec.TypeTag) }
	m.OnEnemyDespawn = func(rec *EntityRecord) { despawned = append(despawned, rec.TypeTag) }

	m.Refresh(Vec3{})
	drain(m)
	if len(spawned) != 1 || spawned[0] != "stalker" {
		t.Fatalf("spawn hook calls = %v, want one stalker", spawned)
	}

	m.Refresh(Vec3{X: 1000, Z: 1000})
	drain(m)
	if len(despawned) != 1 || despawned[0] != "stalker" {
		t.Fatalf("despawn hook calls = %v, want one stalker", despawned)
	}
}

func TestTerrainHeight(t *testing.T) {
	m, _, _, _ := newTestManager(0, 100)
	m.Refresh(Vec3{})
	drain(m)

	if h, ok := m.TerrainHeight(Vec3{X: 8, Z: 8}); !ok || h != 7 {
		t.Fatalf("TerrainHeight = %v,%v, want 7,true", h, ok)
	}
	if _, ok := m.TerrainHeight(Vec3{X: 1000, Z: 1000}); ok {
		t.Fatal("TerrainHeight reported a non-resident chunk")
	}
}

func TestGenerationFailureDropsStatus(t *testing.T) {
	log := zap.NewNop()
	bus := event.NewBus()
	grid := NewGrid(8, log)
	pool := NewPool(nil, log)
	failing := func(coord ChunkCoord) (*ChunkRecord, error) {
		return nil, errors.New("boom")
	}
	m := NewChunkManager(16, 0, 100, failing, grid, pool, bus, log)
	m.Refresh(Vec3{})
	m.Process()

	if m.ResidentCount() != 0 {
		t.Fatal("failed generation produced a resident chunk")
	}
	if _, ok := m.Status(ChunkCoord{0, 0}.Key()); ok {
		t.Fatal("failed chunk kept its status entry; it can never retry")
	}
	// Next refresh tries again.
	m.Refresh(Vec3{})
	if loads, _ := m.QueueLens(); loads != 1 {
		t.Fatalf("load queue = %d after re-refresh, want 1", loads)
	}
}
