package system

import (
	"time"

	coresys "github.com/driftworld/core/internal/core/system"
	"github.com/driftworld/core/internal/world"
)

// StreamSystem keeps the resident chunk set tracking the observer: it
// reconciles the load/unload queues against the render radius, then burns
// the per-tick ops budget. Phase 3 (PostUpdate) so it sees the observer
// position the update phase produced.
type StreamSystem struct {
	world *world.State
}

func NewStreamSystem(ws *world.State) *StreamSystem {
	return &StreamSystem{world: ws}
}

func (s *StreamSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *StreamSystem) Update(_ time.Duration) {
	s.world.Chunks.Refresh(s.world.Observer)
	s.world.Chunks.Process()
}
