package gen

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/unicode/norm"

	"github.com/driftworld/core/internal/world"
)

// DeriveWorldSeed hashes a human-entered seed string into a 64-bit world
// seed. The string is NFC-normalized first so visually identical seeds typed
// on different platforms produce the same world.
func DeriveWorldSeed(seed string) uint64 {
	sum := blake2b.Sum256(norm.NFC.Bytes([]byte(seed)))
	return binary.LittleEndian.Uint64(sum[:8])
}

// ChunkSeed mixes the world seed with a chunk coordinate. Neighboring chunks
// must land far apart in seed space, so the coordinate goes through a
// full-avalanche finalizer rather than a plain xor.
func ChunkSeed(worldSeed uint64, coord world.ChunkCoord) uint64 {
	x := worldSeed
	x ^= uint64(uint32(coord.X)) * 0x9e3779b97f4a7c15
	x = mix64(x)
	x ^= uint64(uint32(coord.Z)) * 0xbf58476d1ce4e5b9
	return mix64(x)
}

// mix64 is the splitmix64 finalizer.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
