package world

// HeightField is a chunk's terrain surface descriptor: a square grid of
// height samples covering the chunk, bilinearly interpolated between samples.
// The generator fills it from the same noise function used for entity
// placement heights, so probes and placements agree.
type HeightField struct {
	OriginX float64 // world X of sample (0,0)
	OriginZ float64 // world Z of sample (0,0)
	Step    float64 // world units between samples
	N       int     // samples per side (N*N total)
	Heights []float64
}

// NewHeightField allocates an N×N field anchored at (originX, originZ).
func NewHeightField(originX, originZ, step float64, n int) *HeightField {
	return &HeightField{
		OriginX: originX,
		OriginZ: originZ,
		Step:    step,
		N:       n,
		Heights: make([]float64, n*n),
	}
}

func (f *HeightField) at(ix, iz int) float64 {
	if ix < 0 {
		ix = 0
	}
	if iz < 0 {
		iz = 0
	}
	if ix >= f.N {
		ix = f.N - 1
	}
	if iz >= f.N {
		iz = f.N - 1
	}
	return f.Heights[iz*f.N+ix]
}

// Set stores a sample.
func (f *HeightField) Set(ix, iz int, h float64) {
	f.Heights[iz*f.N+ix] = h
}

// Sample returns the interpolated terrain height at a world position.
// Positions outside the field clamp to the nearest edge sample.
func (f *HeightField) Sample(worldX, worldZ float64) float64 {
	fx := (worldX - f.OriginX) / f.Step
	fz := (worldZ - f.OriginZ) / f.Step
	ix := int(fx)
	iz := int(fz)
	if fx < 0 {
		ix--
	}
	if fz < 0 {
		iz--
	}
	tx := fx - float64(ix)
	tz := fz - float64(iz)
	h00 := f.at(ix, iz)
	h10 := f.at(ix+1, iz)
	h01 := f.at(ix, iz+1)
	h11 := f.at(ix+1, iz+1)
	h0 := h00 + (h10-h00)*tx
	h1 := h01 + (h11-h01)*tx
	return h0 + (h1-h0)*tz
}
