package system

import (
	"time"

	"github.com/driftworld/core/internal/core/event"
	coresys "github.com/driftworld/core/internal/core/system"
)

// DispatchSystem rotates the event bus buffers and delivers last tick's
// events to their handlers. Phase 1 (PreUpdate), registered first so every
// other system sees a stable event view for the whole tick.
type DispatchSystem struct {
	bus *event.Bus
}

func NewDispatchSystem(bus *event.Bus) *DispatchSystem {
	return &DispatchSystem{bus: bus}
}

func (s *DispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *DispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
