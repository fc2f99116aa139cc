package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EntityType defines one placeable object kind loaded from the level file.
type EntityType struct {
	Tag           string  `yaml:"tag"`
	Category      string  `yaml:"category"` // collectible, obstacle, hazard
	Density       float64 `yaml:"density"`  // expected instances per chunk
	MinSeparation float64 `yaml:"min_separation"`
	ScoreValue    int     `yaml:"score_value"`
	Collidable    bool    `yaml:"collidable"`
	ScaleMin      float64 `yaml:"scale_min"`
	ScaleMax      float64 `yaml:"scale_max"`
	HeightOffset  float64 `yaml:"height_offset"` // added to terrain height at placement
}

// EnemySpecies defines one enemy kind and its behavior parameters.
type EnemySpecies struct {
	Tag           string  `yaml:"tag"`
	Weight        float64 `yaml:"weight"` // relative spawn weight
	AggroRadius   float64 `yaml:"aggro_radius"`
	DeaggroRadius float64 `yaml:"deaggro_radius"`
	Speed         float64 `yaml:"speed"` // world units per second while chasing
	RoamRadius    float64 `yaml:"roam_radius"`
	MinSeparation float64 `yaml:"min_separation"`
	Scripted      bool    `yaml:"scripted"` // behavior decided by the Lua engine
}

// NoiseParams shapes the terrain height function.
type NoiseParams struct {
	Frequency  float64 `yaml:"frequency"`
	Amplitude  float64 `yaml:"amplitude"`
	Octaves    int     `yaml:"octaves"`
	Lacunarity float64 `yaml:"lacunarity"`
	Gain       float64 `yaml:"gain"`
}

// MagnetParams shapes collectible attraction toward the observer.
type MagnetParams struct {
	Radius       float64 `yaml:"radius"`
	Pull         float64 `yaml:"pull"`          // world units per second at full strength
	SafeDistance float64 `yaml:"safe_distance"` // pull stops inside this range
}

// Level is the full parameter set for one world, loaded from YAML.
type Level struct {
	Name      string `yaml:"name"`
	Seed      string `yaml:"seed"`
	ChunkSize float64 `yaml:"chunk_size"`

	RenderRadius int32 `yaml:"render_radius"` // chunks, Chebyshev

	Noise NoiseParams `yaml:"noise"`

	SafeRadius      float64 `yaml:"safe_radius"` // no spawns this close to origin
	TerrainStep     float64 `yaml:"terrain_step"`
	DensityJitter   float64 `yaml:"density_jitter"`   // ± fraction applied per chunk
	PlacementBudget int     `yaml:"placement_budget"` // rejection attempts per instance

	EnemyDensity      float64 `yaml:"enemy_density"` // expected enemies per chunk
	RoamSpeedFraction float64 `yaml:"roam_speed_fraction"`
	CollectRadius     float64 `yaml:"collect_radius"`

	Types   []EntityType   `yaml:"types"`
	Enemies []EnemySpecies `yaml:"enemies"`

	PoolCaps map[string]int `yaml:"pool_caps"` // category name → cap

	Magnet MagnetParams `yaml:"magnet"`
}

// LoadLevel loads and validates a level file.
func LoadLevel(path string) (*Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	var lv Level
	if err := yaml.Unmarshal(raw, &lv); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}
	if err := lv.Validate(); err != nil {
		return nil, fmt.Errorf("level %s: %w", path, err)
	}
	return &lv, nil
}

// Validate rejects parameter sets the generator cannot work with.
func (lv *Level) Validate() error {
	if lv.Seed == "" {
		return fmt.Errorf("seed must not be empty")
	}
	if lv.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %g", lv.ChunkSize)
	}
	if lv.RenderRadius < 0 {
		return fmt.Errorf("render_radius must be >= 0, got %d", lv.RenderRadius)
	}
	if lv.TerrainStep <= 0 {
		return fmt.Errorf("terrain_step must be positive, got %g", lv.TerrainStep)
	}
	if lv.DensityJitter < 0 || lv.DensityJitter >= 1 {
		return fmt.Errorf("density_jitter must be in [0,1), got %g", lv.DensityJitter)
	}
	if lv.PlacementBudget <= 0 {
		lv.PlacementBudget = 8
	}
	if lv.RoamSpeedFraction <= 0 || lv.RoamSpeedFraction > 1 {
		lv.RoamSpeedFraction = 0.5
	}
	if lv.Noise.Octaves <= 0 {
		lv.Noise.Octaves = 1
	}
	seen := make(map[string]struct{}, len(lv.Types))
	for i := range lv.Types {
		t := &lv.Types[i]
		if t.Tag == "" {
			return fmt.Errorf("types[%d]: tag must not be empty", i)
		}
		if _, dup := seen[t.Tag]; dup {
			return fmt.Errorf("types[%d]: duplicate tag %q", i, t.Tag)
		}
		seen[t.Tag] = struct{}{}
		switch t.Category {
		case "collectible", "obstacle", "hazard":
		default:
			return fmt.Errorf("type %q: unknown category %q", t.Tag, t.Category)
		}
		if t.Density < 0 {
			return fmt.Errorf("type %q: density must be >= 0", t.Tag)
		}
		if t.MinSeparation < 0 {
			return fmt.Errorf("type %q: min_separation must be >= 0", t.Tag)
		}
		if t.ScaleMax < t.ScaleMin {
			return fmt.Errorf("type %q: scale_max < scale_min", t.Tag)
		}
		if t.ScaleMin == 0 && t.ScaleMax == 0 {
			t.ScaleMin, t.ScaleMax = 1, 1
		}
	}
	for i := range lv.Enemies {
		sp := &lv.Enemies[i]
		if sp.Tag == "" {
			return fmt.Errorf("enemies[%d]: tag must not be empty", i)
		}
		if sp.Weight <= 0 {
			return fmt.Errorf("enemy %q: weight must be positive", sp.Tag)
		}
		if sp.DeaggroRadius < sp.AggroRadius {
			return fmt.Errorf("enemy %q: deaggro_radius must be >= aggro_radius", sp.Tag)
		}
		if sp.Speed <= 0 {
			return fmt.Errorf("enemy %q: speed must be positive", sp.Tag)
		}
	}
	if lv.EnemyDensity > 0 && len(lv.Enemies) == 0 {
		return fmt.Errorf("enemy_density set but no enemy species defined")
	}
	return nil
}

// Species returns an enemy species by tag, or nil.
func (lv *Level) Species(tag string) *EnemySpecies {
	for i := range lv.Enemies {
		if lv.Enemies[i].Tag == tag {
			return &lv.Enemies[i]
		}
	}
	return nil
}

// TypeCount returns the number of defined entity types.
func (lv *Level) TypeCount() int {
	return len(lv.Types)
}
