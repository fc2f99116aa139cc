package world

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ChunkCoord identifies a fixed-size square region of the world, the unit of
// load/unload granularity.
type ChunkCoord struct {
	X int32
	Z int32
}

// Key returns the canonical "x,z" map key for this coordinate. The string
// form is load-bearing: chunk residency maps and collect requests key on it.
func (c ChunkCoord) Key() string {
	return strconv.FormatInt(int64(c.X), 10) + "," + strconv.FormatInt(int64(c.Z), 10)
}

// ParseChunkKey inverts Key. Rejects anything that does not round-trip.
func ParseChunkKey(key string) (ChunkCoord, error) {
	i := strings.IndexByte(key, ',')
	if i < 0 {
		return ChunkCoord{}, fmt.Errorf("chunk key %q: missing separator", key)
	}
	x, err := strconv.ParseInt(key[:i], 10, 32)
	if err != nil {
		return ChunkCoord{}, fmt.Errorf("chunk key %q: %w", key, err)
	}
	z, err := strconv.ParseInt(key[i+1:], 10, 32)
	if err != nil {
		return ChunkCoord{}, fmt.Errorf("chunk key %q: %w", key, err)
	}
	return ChunkCoord{X: int32(x), Z: int32(z)}, nil
}

// ChunkCoordAt maps a world position to its chunk coordinate by flooring
// position/chunkSize.
func ChunkCoordAt(pos Vec3, chunkSize float64) ChunkCoord {
	return ChunkCoord{
		X: int32(math.Floor(pos.X / chunkSize)),
		Z: int32(math.Floor(pos.Z / chunkSize)),
	}
}

// Chebyshev returns the Chebyshev (chessboard) distance to other. The
// desired resident set is every chunk within render radius by this metric.
func (c ChunkCoord) Chebyshev(other ChunkCoord) int32 {
	dx := c.X - other.X
	dz := c.Z - other.Z
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	if dz > dx {
		return dz
	}
	return dx
}

// ChunkRecord owns one resident chunk: its terrain surface descriptor and
// the ordered entity list the generator produced for it. Created on load,
// destroyed on unload; backing resources may outlive it in the pool.
type ChunkRecord struct {
	Coord    ChunkCoord
	Key      string
	Terrain  *HeightField
	Entities []*EntityRecord
}
