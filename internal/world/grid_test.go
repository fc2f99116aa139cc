package world

import (
	"testing"

	"go.uber.org/zap"
)

func TestGridInsertAndQuery(t *testing.T) {
	g := NewGrid(10, zap.NewNop())
	a := NewResource(CatCollectible, "shard")
	b := NewResource(CatCollectible, "shard")
	c := NewResource(CatObstacle, "boulder")

	g.Insert(a, Vec3{X: 5, Z: 5})    // cell 0,0
	g.Insert(b, Vec3{X: 15, Z: 5})   // cell 1,0 — neighbor
	g.Insert(c, Vec3{X: 35, Z: 35})  // cell 3,3 — out of range

	got := g.QueryNeighborhood(Vec3{X: 5, Z: 5})
	if len(got) != 2 {
		t.Fatalf("neighborhood size = %d, want 2", len(got))
	}
	for _, h := range got {
		if h == c {
			t.Fatal("query returned a handle two cells away")
		}
	}
	if g.Len() != 3 {
		t.Fatalf("Len = %d, want 3", g.Len())
	}
}

func TestGridNegativeCoordinates(t *testing.T) {
	g := NewGrid(10, zap.NewNop())
	a := NewResource(CatCollectible, "shard")
	g.Insert(a, Vec3{X: -5, Z: -5}) // cell -1,-1

	if got := g.QueryNeighborhood(Vec3{X: -1, Z: -1}); len(got) != 1 {
		t.Fatalf("neighborhood size = %d, want 1", len(got))
	}
	// "-1,2" and "1,-2" must be distinct cells.
	if CellKey(-1, 2) == CellKey(1, -2) {
		t.Fatal("cell keys collide across sign flip")
	}
}

func TestGridRemove(t *testing.T) {
	g := NewGrid(10, zap.NewNop())
	a := NewResource(CatCollectible, "shard")
	g.Insert(a, Vec3{X: 5, Z: 5})
	g.Remove(a)

	if g.Contains(a) {
		t.Fatal("handle still tracked after remove")
	}
	if got := g.QueryNeighborhood(Vec3{X: 5, Z: 5}); len(got) != 0 {
		t.Fatalf("neighborhood size = %d after remove, want 0", len(got))
	}
	// Removing again must be a no-op.
	g.Remove(a)
	g.Remove(nil)
}

func TestGridRelocate(t *testing.T) {
	g := NewGrid(10, zap.NewNop())
	a := NewResource(CatEnemy, "stalker")
	g.Insert(a, Vec3{X: 5, Z: 5})

	// Same cell: position changes, cell does not.
	g.Relocate(a, Vec3{X: 7, Z: 7})
	if got := g.QueryNeighborhood(Vec3{X: 5, Z: 5}); len(got) != 1 {
		t.Fatalf("after same-cell relocate: %d results, want 1", len(got))
	}

	// Cross-cell: old neighborhood loses it once out of range.
	g.Relocate(a, Vec3{X: 95, Z: 95})
	if got := g.QueryNeighborhood(Vec3{X: 5, Z: 5}); len(got) != 0 {
		t.Fatalf("after cross-cell relocate: still visible near origin")
	}
	if got := g.QueryNeighborhood(Vec3{X: 95, Z: 95}); len(got) != 1 {
		t.Fatalf("after cross-cell relocate: %d results at destination, want 1", len(got))
	}
	if g.Len() != 1 {
		t.Fatalf("Len = %d, want 1", g.Len())
	}
}

func TestGridInsertTwiceRelocates(t *testing.T) {
	g := NewGrid(10, zap.NewNop())
	a := NewResource(CatCollectible, "shard")
	g.Insert(a, Vec3{X: 5, Z: 5})
	g.Insert(a, Vec3{X: 95, Z: 95})

	if g.Len() != 1 {
		t.Fatalf("Len = %d after double insert, want 1", g.Len())
	}
	if got := g.QueryNeighborhood(Vec3{X: 95, Z: 95}); len(got) != 1 {
		t.Fatal("handle not found at relocated position")
	}
}

func TestGridRelocateUntrackedInserts(t *testing.T) {
	g := NewGrid(10, zap.NewNop())
	a := NewResource(CatCollectible, "shard")
	g.Relocate(a, Vec3{X: 5, Z: 5})
	if !g.Contains(a) {
		t.Fatal("relocate of untracked handle did not insert it")
	}
}
