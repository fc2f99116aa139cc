package gen

import (
	"math"

	"github.com/driftworld/core/internal/data"
)

// hash2 hashes a lattice point under a seed into a unit float.
func hash2(seed uint64, ix, iz int64) float64 {
	h := seed
	h ^= uint64(ix) * 0x9e3779b97f4a7c15
	h = mix64(h)
	h ^= uint64(iz) * 0xbf58476d1ce4e5b9
	h = mix64(h)
	return float64(h>>11) / float64(1<<53)
}

// smoothstep is the classic cubic fade; it keeps first derivatives continuous
// across lattice boundaries.
func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

// valueNoise returns lattice value noise in [0,1) at (x, z).
func valueNoise(seed uint64, x, z float64) float64 {
	fx := math.Floor(x)
	fz := math.Floor(z)
	ix := int64(fx)
	iz := int64(fz)
	tx := smoothstep(x - fx)
	tz := smoothstep(z - fz)

	v00 := hash2(seed, ix, iz)
	v10 := hash2(seed, ix+1, iz)
	v01 := hash2(seed, ix, iz+1)
	v11 := hash2(seed, ix+1, iz+1)

	v0 := v00 + (v10-v00)*tx
	v1 := v01 + (v11-v01)*tx
	return v0 + (v1-v0)*tz
}

// fbm sums octaves of value noise, recentering each octave around zero.
func fbm(seed uint64, x, z float64, p data.NoiseParams) float64 {
	freq := p.Frequency
	amp := 1.0
	sum := 0.0
	norm := 0.0
	for o := 0; o < p.Octaves; o++ {
		sum += amp * (valueNoise(seed+uint64(o)*0x632be59bd9b4e019, x*freq, z*freq) - 0.5)
		norm += amp
		freq *= p.Lacunarity
		amp *= p.Gain
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// TerrainHeight returns the world-space terrain height at (x, z). The same
// function feeds both height-field samples and entity placement so they can
// never disagree.
func TerrainHeight(seed uint64, p data.NoiseParams, x, z float64) float64 {
	return fbm(seed, x, z, p) * p.Amplitude
}
