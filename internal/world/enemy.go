package world

// EnemyState is the behavior controller's current mode for one enemy.
type EnemyState int

// Idle is only the spawn state; the controller hands a fresh enemy to the
// roam cycle on its first update.
const (
	EnemyIdle EnemyState = iota
	EnemyRoaming
	EnemyChasing
	EnemyReturning
)

var enemyStateNames = [...]string{"idle", "roaming", "chasing", "returning"}

func (s EnemyState) String() string {
	if s < 0 || int(s) >= len(enemyStateNames) {
		return "unknown"
	}
	return enemyStateNames[s]
}

// Enemy is the live behavior record for one spawned enemy. Species parameters
// are denormalized at spawn so behavior updates never touch the level tables.
type Enemy struct {
	Record *EntityRecord
	Tag    string

	// Species parameters, copied from the level file at spawn.
	AggroRadius   float64
	DeaggroRadius float64
	Speed         float64
	RoamRadius    float64
	Scripted      bool

	State      EnemyState
	Anchor     Vec3  // spawn point; roam targets and returns are relative to it
	RoamTarget *Vec3 // nil while dwelling between roam legs
	WaitTicks  int   // dwell ticks remaining before the next roam leg
	GroundTick int   // ticks since the last terrain probe
}

// Pos returns the enemy's current position.
func (e *Enemy) Pos() Vec3 {
	return e.Record.Pos
}
