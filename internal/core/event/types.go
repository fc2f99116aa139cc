package event

// ScoreEvent is raised once per successful collection. Idempotent collects
// never emit a second one.
type ScoreEvent struct {
	ChunkKey string
	Index    int
	TypeTag  string
	Value    int
}

// ChunkLoadedEvent is raised after a chunk's entities are materialized and
// inserted into the spatial grid.
type ChunkLoadedEvent struct {
	Key      string
	Entities int
}

// ChunkUnloadedEvent is raised after a chunk's entities are detached and its
// handles returned to the pool.
type ChunkUnloadedEvent struct {
	Key string
}

// EnemySpawnEvent asks the owning layer to stand up visuals for an enemy.
type EnemySpawnEvent struct {
	HandleID int64
	TypeTag  string
	ChunkKey string
}

// EnemyDespawnEvent asks the owning layer to tear down an enemy's visuals.
type EnemyDespawnEvent struct {
	HandleID int64
	TypeTag  string
}

// CollisionEvent reports a broad-phase contact with a collidable entity.
// The owning layer decides the gameplay outcome.
type CollisionEvent struct {
	HandleID int64
	Category string
	TypeTag  string
}
