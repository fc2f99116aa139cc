package system

import (
	"math"
	"time"

	"github.com/driftworld/core/internal/core/event"
	coresys "github.com/driftworld/core/internal/core/system"
	"github.com/driftworld/core/internal/data"
	"github.com/driftworld/core/internal/world"
)

// CollectSystem runs the observer's broad phase each tick: collectibles in
// range get picked up, collectibles in the magnet band drift inward, and
// contacts with collidable entities raise collision events. Phase 3
// (PostUpdate), registered before the stream system so pickups act on the
// grid state the update phase left behind.
type CollectSystem struct {
	world *world.State
	level *data.Level
}

func NewCollectSystem(ws *world.State, level *data.Level) *CollectSystem {
	return &CollectSystem{world: ws, level: level}
}

func (s *CollectSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *CollectSystem) Update(dt time.Duration) {
	secs := dt.Seconds()
	obs := s.world.Observer
	magnet := s.level.Magnet

	for _, h := range s.world.Grid.QueryNeighborhood(obs) {
		if e := s.world.Enemy(h); e != nil {
			s.checkContact(h, e.Record)
			continue
		}
		rec := s.world.Chunks.EntityByHandle(h)
		if rec == nil {
			continue
		}
		// Collidable collectibles are contacts, never pickups.
		if rec.Category != world.CatCollectible || rec.Collidable {
			s.checkContact(h, rec)
			continue
		}

		dist := math.Sqrt(rec.Pos.PlanarDistSq(obs))
		if dist <= s.level.CollectRadius {
			s.world.Chunks.CollectObject(rec.ChunkKey, rec.Index)
			continue
		}
		if magnet.Radius <= 0 || dist > magnet.Radius || dist <= magnet.SafeDistance {
			continue
		}
		// Magnet band: drift inward, never past the safe distance.
		step := magnet.Pull * secs
		if dist-step < magnet.SafeDistance {
			step = dist - magnet.SafeDistance
		}
		rec.Pos.X += (obs.X - rec.Pos.X) / dist * step
		rec.Pos.Z += (obs.Z - rec.Pos.Z) / dist * step
		s.world.Grid.Relocate(h, rec.Pos)
	}
}

// checkContact raises a collision event when the observer overlaps a
// collidable entity. Contact is re-reported every tick it holds; consumers
// dedupe by handle ID.
func (s *CollectSystem) checkContact(h *world.Resource, rec *world.EntityRecord) {
	if !rec.Collidable && rec.Category != world.CatEnemy && rec.Category != world.CatHazard {
		return
	}
	if rec.Pos.PlanarDistSq(s.world.Observer) > s.level.CollectRadius*s.level.CollectRadius {
		return
	}
	event.Emit(s.world.Bus, event.CollisionEvent{
		HandleID: h.ID,
		Category: rec.Category.String(),
		TypeTag:  rec.TypeTag,
	})
}
