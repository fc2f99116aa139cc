package system

import (
	"math"
	"math/rand"
	"time"

	coresys "github.com/driftworld/core/internal/core/system"
	"github.com/driftworld/core/internal/world"
)

// ObserverSystem advances the observer along a wandering path so a headless
// run still exercises streaming, collection and enemy aggro. An embedding
// game replaces this system with real player input. Phase 0 (Input).
type ObserverSystem struct {
	world   *world.State
	speed   float64
	heading float64
}

func NewObserverSystem(ws *world.State, speed float64) *ObserverSystem {
	return &ObserverSystem{world: ws, speed: speed, heading: rand.Float64() * 2 * math.Pi}
}

func (s *ObserverSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ObserverSystem) Update(dt time.Duration) {
	secs := dt.Seconds()
	s.heading += (rand.Float64() - 0.5) * 0.3
	s.world.Observer.X += math.Cos(s.heading) * s.speed * secs
	s.world.Observer.Z += math.Sin(s.heading) * s.speed * secs
	if h, ok := s.world.Chunks.TerrainHeight(s.world.Observer); ok {
		s.world.Observer.Y = h
	}
}
