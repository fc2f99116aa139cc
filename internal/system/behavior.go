package system

import (
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	coresys "github.com/driftworld/core/internal/core/system"
	"github.com/driftworld/core/internal/data"
	"github.com/driftworld/core/internal/scripting"
	"github.com/driftworld/core/internal/world"
)

// Dwell between roam legs, in ticks. The wait counts down inside the
// roaming state, between one target and the next.
const (
	roamWaitMin = 20
	roamWaitMax = 60
)

// BehaviorSystem drives enemy movement: Go handles the built-in state
// machine and command execution, Lua decides for scripted species. A failed
// script falls back to the Go path. Phase 2 (Update).
type BehaviorSystem struct {
	world  *world.State
	level  *data.Level
	engine *scripting.Engine // nil when no scripts are loaded

	probeInterval int
}

// NewBehaviorSystem registers itself as the chunk manager's enemy lifecycle
// hook: spawns denormalize species parameters into live enemy records,
// despawns drop them.
func NewBehaviorSystem(ws *world.State, level *data.Level, engine *scripting.Engine, probeInterval int) *BehaviorSystem {
	if probeInterval <= 0 {
		probeInterval = 10
	}
	s := &BehaviorSystem{world: ws, level: level, engine: engine, probeInterval: probeInterval}
	ws.Chunks.OnEnemySpawn = s.spawnEnemy
	ws.Chunks.OnEnemyDespawn = s.despawnEnemy
	return s
}

func (s *BehaviorSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *BehaviorSystem) spawnEnemy(rec *world.EntityRecord) {
	sp := s.level.Species(rec.TypeTag)
	if sp == nil {
		s.world.Log.Warn("enemy spawn with unknown species", zap.String("type", rec.TypeTag))
		return
	}
	s.world.AddEnemy(&world.Enemy{
		Record:        rec,
		Tag:           sp.Tag,
		AggroRadius:   sp.AggroRadius,
		DeaggroRadius: sp.DeaggroRadius,
		Speed:         sp.Speed,
		RoamRadius:    sp.RoamRadius,
		Scripted:      sp.Scripted,
		State:         world.EnemyIdle,
		Anchor:        rec.Pos,
		WaitTicks:     roamWaitMin + rand.Intn(roamWaitMax-roamWaitMin),
	})
}

func (s *BehaviorSystem) despawnEnemy(rec *world.EntityRecord) {
	if rec.Handle != nil {
		s.world.RemoveEnemyByHandle(rec.Handle)
	}
}

func (s *BehaviorSystem) Update(dt time.Duration) {
	secs := dt.Seconds()
	for _, e := range s.world.Enemies() {
		s.tickEnemy(e, secs)
	}
}

func (s *BehaviorSystem) tickEnemy(e *world.Enemy, secs float64) {
	if e.Scripted && s.engine != nil {
		if s.tickScripted(e, secs) {
			s.finishTick(e)
			return
		}
		// Script failed; built-in machine takes over below.
	}

	obs := s.world.Observer
	dist := math.Sqrt(e.Pos().PlanarDistSq(obs))

	switch e.State {
	case world.EnemyIdle:
		// Idle is only the spawn state; the roam cycle starts immediately
		// unless the observer is already close.
		if dist <= e.AggroRadius {
			e.State = world.EnemyChasing
			break
		}
		e.State = world.EnemyRoaming

	case world.EnemyRoaming:
		if dist <= e.AggroRadius {
			e.RoamTarget = nil
			e.State = world.EnemyChasing
			break
		}
		if e.RoamTarget == nil {
			// Between legs: dwell first, then pick the next target.
			e.WaitTicks--
			if e.WaitTicks > 0 {
				break
			}
			e.RoamTarget = s.rollRoamTarget(e)
		}
		step := e.Speed * s.level.RoamSpeedFraction * secs
		if s.moveToward(e, *e.RoamTarget, step) {
			e.RoamTarget = nil
			e.WaitTicks = roamWaitMin + rand.Intn(roamWaitMax-roamWaitMin)
		}

	case world.EnemyChasing:
		if dist >= e.DeaggroRadius {
			e.State = world.EnemyReturning
			break
		}
		s.moveToward(e, obs, e.Speed*secs)

	case world.EnemyReturning:
		if dist <= e.AggroRadius {
			e.State = world.EnemyChasing
			break
		}
		if s.moveToward(e, e.Anchor, e.Speed*secs) {
			e.RoamTarget = nil
			e.WaitTicks = roamWaitMin + rand.Intn(roamWaitMax-roamWaitMin)
			e.State = world.EnemyRoaming
		}
	}

	s.finishTick(e)
}

// tickScripted routes one decision through Lua. Returns false when the
// script could not decide.
func (s *BehaviorSystem) tickScripted(e *world.Enemy, secs float64) bool {
	obs := s.world.Observer
	pos := e.Pos()
	cmd, ok := s.engine.DecideEnemy(scripting.BehaviorContext{
		Tag:           e.Tag,
		State:         e.State.String(),
		X:             pos.X,
		Y:             pos.Y,
		Z:             pos.Z,
		AnchorX:       e.Anchor.X,
		AnchorZ:       e.Anchor.Z,
		ObserverX:     obs.X,
		ObserverZ:     obs.Z,
		ObserverDist:  math.Sqrt(pos.PlanarDistSq(obs)),
		AggroRadius:   e.AggroRadius,
		DeaggroRadius: e.DeaggroRadius,
		Speed:         e.Speed,
		RoamRadius:    e.RoamRadius,
	})
	if !ok {
		return false
	}
	switch cmd.State {
	case "idle":
		e.State = world.EnemyIdle
	case "roaming":
		e.State = world.EnemyRoaming
	case "chasing":
		e.State = world.EnemyChasing
	case "returning":
		e.State = world.EnemyReturning
	case "":
		// keep current state
	default:
		s.world.Log.Warn("script returned unknown state",
			zap.String("type", e.Tag), zap.String("state", cmd.State))
		return false
	}
	if cmd.HasMove {
		arrived := s.moveToward(e, world.Vec3{X: cmd.MoveX, Z: cmd.MoveZ}, e.Speed*secs)
		if arrived && e.State == world.EnemyReturning {
			e.RoamTarget = nil
			e.WaitTicks = roamWaitMin + rand.Intn(roamWaitMax-roamWaitMin)
			e.State = world.EnemyRoaming
		}
	}
	return true
}

// moveToward advances an enemy horizontally by step, snapping onto the
// target instead of overshooting it. Reports arrival.
func (s *BehaviorSystem) moveToward(e *world.Enemy, target world.Vec3, step float64) bool {
	pos := e.Record.Pos
	dx := target.X - pos.X
	dz := target.Z - pos.Z
	distSq := dx*dx + dz*dz
	if distSq <= step*step {
		e.Record.Pos.X = target.X
		e.Record.Pos.Z = target.Z
		return true
	}
	dist := math.Sqrt(distSq)
	e.Record.Pos.X += dx / dist * step
	e.Record.Pos.Z += dz / dist * step
	return false
}

// finishTick runs the shared post-decision work: periodic terrain probe and
// the spatial index update.
func (s *BehaviorSystem) finishTick(e *world.Enemy) {
	e.GroundTick++
	if e.GroundTick >= s.probeInterval {
		e.GroundTick = 0
		if h, ok := s.world.Chunks.TerrainHeight(e.Record.Pos); ok {
			e.Record.Pos.Y = h
		}
	}
	if e.Record.Handle != nil {
		s.world.Grid.Relocate(e.Record.Handle, e.Record.Pos)
	}
}

// rollRoamTarget picks a point inside the roam disc around the anchor.
func (s *BehaviorSystem) rollRoamTarget(e *world.Enemy) *world.Vec3 {
	ang := rand.Float64() * 2 * math.Pi
	r := math.Sqrt(rand.Float64()) * e.RoamRadius
	return &world.Vec3{
		X: e.Anchor.X + math.Cos(ang)*r,
		Z: e.Anchor.Z + math.Sin(ang)*r,
	}
}
