package world

// Vec3 is a world-space position. Y is up; the chunk/cell grids only ever
// look at X and Z.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// PlanarDistSq returns the squared horizontal distance to other.
func (v Vec3) PlanarDistSq(other Vec3) float64 {
	dx := v.X - other.X
	dz := v.Z - other.Z
	return dx*dx + dz*dz
}

// Category classifies a placed entity for pooling, generation and collision
// handling.
type Category int

const (
	CatCollectible Category = iota
	CatObstacle
	CatHazard
	CatEnemy

	categoryCount
)

var categoryNames = [categoryCount]string{"collectible", "obstacle", "hazard", "enemy"}

func (c Category) String() string {
	if c < 0 || c >= categoryCount {
		return "unknown"
	}
	return categoryNames[c]
}

// CategoryByName resolves a category from its level-file name.
// Returns false for an unknown name.
func CategoryByName(name string) (Category, bool) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), true
		}
	}
	return 0, false
}

// resourceID is a monotonic counter for backing-resource handles.
// Accessed only from the game loop goroutine — no atomics needed.
var resourceID int64

// NextResourceID returns a fresh unique resource ID.
func NextResourceID() int64 {
	resourceID++
	return resourceID
}

// Resource is the backing handle for an entity's renderable-side resources.
// A handle is valid (Active) only while inserted in the spatial grid; a
// deactivated handle sits in the pool until reused or disposed.
type Resource struct {
	ID       int64
	Category Category
	TypeTag  string
	Active   bool

	disposed bool
}

// NewResource constructs a fresh active handle.
func NewResource(cat Category, tag string) *Resource {
	return &Resource{
		ID:       NextResourceID(),
		Category: cat,
		TypeTag:  tag,
		Active:   true,
	}
}

// Dispose releases the handle's underlying resources. Idempotent.
func (r *Resource) Dispose() {
	r.disposed = true
	r.Active = false
}

// Disposed reports whether the handle's resources have been released.
func (r *Resource) Disposed() bool {
	return r.disposed
}

// EntityRecord is one placed entity inside a chunk. The record owns the
// entity's existence; the backing Resource may be pool-owned.
//
// Invariants: a Collected collectible never re-enters the spatial grid, and
// Handle is non-nil iff the entity is currently inserted in the grid.
type EntityRecord struct {
	Pos           Vec3
	Category      Category
	TypeTag       string
	Scale         float64
	Yaw           float64
	Collidable    bool
	ScoreValue    int
	Collected     bool
	MinSeparation float64

	Handle   *Resource // nil when not materialized
	ChunkKey string
	Index    int // position within the owning chunk's entity list
}
