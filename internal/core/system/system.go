package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain observer input
	PhasePreUpdate               // 1: process last tick's events
	PhaseUpdate                  // 2: behavior and movement
	PhasePostUpdate              // 3: streaming, collection
	PhasePersist                 // 4: batch save
	PhaseCleanup                 // 5: destroy queued entities
)

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
