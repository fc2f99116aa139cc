package gen

import (
	"fmt"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/driftworld/core/internal/data"
	"github.com/driftworld/core/internal/world"
)

// Generator produces chunk contents deterministically: the same level file
// and seed string always yield the same world, chunk by chunk, regardless of
// the order chunks are visited in.
type Generator struct {
	level     *data.Level
	worldSeed uint64
	log       *zap.Logger

	// conservativeEnemySep is the max min-separation across all species; the
	// species is rolled only after a position is accepted, so acceptance has
	// to assume the strictest one.
	conservativeEnemySep float64
	totalEnemyWeight     float64

	skipped int64
}

// New derives the world seed and precomputes species aggregates.
func New(level *data.Level, log *zap.Logger) *Generator {
	g := &Generator{
		level:     level,
		worldSeed: DeriveWorldSeed(level.Seed),
		log:       log,
	}
	for i := range level.Enemies {
		sp := &level.Enemies[i]
		if sp.MinSeparation > g.conservativeEnemySep {
			g.conservativeEnemySep = sp.MinSeparation
		}
		g.totalEnemyWeight += sp.Weight
	}
	return g
}

// WorldSeed returns the derived 64-bit world seed.
func (g *Generator) WorldSeed() uint64 {
	return g.worldSeed
}

// Skipped returns the lifetime count of placements abandoned after exhausting
// the rejection budget, for diagnostics.
func (g *Generator) Skipped() int64 {
	return g.skipped
}

// Generate builds the full contents of one chunk: its height field and its
// entity list, in level-file type order. Per-chunk determinism comes from a
// dedicated RNG seeded by ChunkSeed; nothing here reads global state.
func (g *Generator) Generate(coord world.ChunkCoord) (*world.ChunkRecord, error) {
	lv := g.level
	rng := rand.New(rand.NewSource(int64(ChunkSeed(g.worldSeed, coord))))

	originX := float64(coord.X) * lv.ChunkSize
	originZ := float64(coord.Z) * lv.ChunkSize

	terrain := g.buildTerrain(originX, originZ)

	rec := &world.ChunkRecord{
		Coord:   coord,
		Key:     coord.Key(),
		Terrain: terrain,
	}

	// Objects first, enemies last; the order is part of the deterministic
	// contract since entity indices key collect requests.
	var placed []placement
	for i := range lv.Types {
		t := &lv.Types[i]
		cat, ok := world.CategoryByName(t.Category)
		if !ok {
			return nil, fmt.Errorf("chunk %s: type %q: unknown category %q", rec.Key, t.Tag, t.Category)
		}
		count := g.rollCount(rng, t.Density)
		for n := 0; n < count; n++ {
			pos, ok := g.place(rng, originX, originZ, t.MinSeparation, placed)
			if !ok {
				g.skipped++
				continue
			}
			pos.Y = terrain.Sample(pos.X, pos.Z) + t.HeightOffset
			placed = append(placed, placement{pos: pos, sep: t.MinSeparation})
			scale := t.ScaleMin + rng.Float64()*(t.ScaleMax-t.ScaleMin)
			rec.Entities = append(rec.Entities, &world.EntityRecord{
				Pos:           pos,
				Category:      cat,
				TypeTag:       t.Tag,
				Scale:         scale,
				Yaw:           rng.Float64() * 2 * math.Pi,
				Collidable:    t.Collidable,
				ScoreValue:    t.ScoreValue,
				MinSeparation: t.MinSeparation,
			})
		}
	}

	if lv.EnemyDensity > 0 && len(lv.Enemies) > 0 {
		count := g.rollCount(rng, lv.EnemyDensity)
		for n := 0; n < count; n++ {
			pos, ok := g.place(rng, originX, originZ, g.conservativeEnemySep, placed)
			if !ok {
				g.skipped++
				continue
			}
			pos.Y = terrain.Sample(pos.X, pos.Z)
			placed = append(placed, placement{pos: pos, sep: g.conservativeEnemySep})
			sp := g.rollSpecies(rng)
			rec.Entities = append(rec.Entities, &world.EntityRecord{
				Pos:           pos,
				Category:      world.CatEnemy,
				TypeTag:       sp.Tag,
				Scale:         1,
				Yaw:           rng.Float64() * 2 * math.Pi,
				MinSeparation: sp.MinSeparation,
			})
		}
	}

	return rec, nil
}

type placement struct {
	pos world.Vec3
	sep float64
}

// buildTerrain samples the noise function on the chunk's lattice, one extra
// sample per side so interpolation covers the far edges.
func (g *Generator) buildTerrain(originX, originZ float64) *world.HeightField {
	lv := g.level
	n := int(math.Ceil(lv.ChunkSize/lv.TerrainStep)) + 1
	f := world.NewHeightField(originX, originZ, lv.TerrainStep, n)
	for iz := 0; iz < n; iz++ {
		for ix := 0; ix < n; ix++ {
			x := originX + float64(ix)*lv.TerrainStep
			z := originZ + float64(iz)*lv.TerrainStep
			f.Set(ix, iz, TerrainHeight(g.worldSeed, lv.Noise, x, z))
		}
	}
	return f
}

// rollCount jitters an expected count by ±DensityJitter and rounds.
func (g *Generator) rollCount(rng *rand.Rand, density float64) int {
	if density <= 0 {
		return 0
	}
	jitter := 1 + g.level.DensityJitter*(2*rng.Float64()-1)
	return int(math.Round(density * jitter))
}

// place draws candidate positions until one clears the spawn-safe zone and
// every prior placement, or the attempt budget runs out. Separation between
// two placements is the larger of their two requirements, compared squared.
func (g *Generator) place(rng *rand.Rand, originX, originZ, sep float64, placed []placement) (world.Vec3, bool) {
	lv := g.level
	safeSq := lv.SafeRadius * lv.SafeRadius
	for attempt := 0; attempt < lv.PlacementBudget; attempt++ {
		pos := world.Vec3{
			X: originX + rng.Float64()*lv.ChunkSize,
			Z: originZ + rng.Float64()*lv.ChunkSize,
		}
		if safeSq > 0 && pos.X*pos.X+pos.Z*pos.Z < safeSq {
			continue
		}
		ok := true
		for i := range placed {
			need := sep
			if placed[i].sep > need {
				need = placed[i].sep
			}
			if pos.PlanarDistSq(placed[i].pos) < need*need {
				ok = false
				break
			}
		}
		if ok {
			return pos, true
		}
	}
	return world.Vec3{}, false
}

// rollSpecies picks an enemy species by weight.
func (g *Generator) rollSpecies(rng *rand.Rand) *data.EnemySpecies {
	roll := rng.Float64() * g.totalEnemyWeight
	for i := range g.level.Enemies {
		sp := &g.level.Enemies[i]
		roll -= sp.Weight
		if roll < 0 {
			return sp
		}
	}
	return &g.level.Enemies[len(g.level.Enemies)-1]
}
