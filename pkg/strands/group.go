package strands

import (
	"github.com/Faultbox/hairbuild/pkg/cluster"
	"github.com/Faultbox/hairbuild/pkg/math"
)

// Stats are aggregate measurements of a strand group. Lengths are in
// meters, diameters in millimeters.
type Stats struct {
	MinLength   float32
	MaxLength   float32
	AvgLength   float32
	TotalLength float32
	MaxDiameter float32
	AvgDiameter float32
	// RootScaleMax is the per-component maximum used for normalization.
	RootScaleMax math.Vec4
	// RootScaleAvg is the length-weighted average of the normalized root scales.
	RootScaleAvg math.Vec4
	Bounds       math.Bounds
}

// StrandGroup is a finalized set of strands with a uniform particle count.
type StrandGroup struct {
	Name          string
	StrandCount   int
	ParticleCount int
	Layout        MemoryLayout

	// Per-particle buffers. TexCoords and Diameters are optional.
	Positions []math.Vec3
	TexCoords []math.Vec2
	Diameters []float32

	// Per-strand buffers. RootScale holds length, diameter, taper offset and
	// taper scale, normalized by RootScaleMax.
	RootUV    []math.Vec2
	RootScale []math.Vec4

	Stats Stats
	LOD   cluster.Chain
}

// NewStrandGroup allocates the required buffers.
func NewStrandGroup(name string, strands, particles int, layout MemoryLayout) *StrandGroup {
	return &StrandGroup{
		Name:          name,
		StrandCount:   strands,
		ParticleCount: particles,
		Layout:        layout,
		Positions:     make([]math.Vec3, strands*particles),
		RootUV:        make([]math.Vec2, strands),
		RootScale:     make([]math.Vec4, strands),
		LOD:           cluster.Chain{StrandCount: strands},
	}
}

// ParticleIndex returns the buffer index of particle p of strand s.
func (g *StrandGroup) ParticleIndex(s, p int) int {
	if g.Layout == LayoutInterleaved {
		return p*g.StrandCount + s
	}
	return s*g.ParticleCount + p
}

// Stride returns the offset of particle p of strand 0 and the distance
// between the same particle of consecutive strands.
func (g *StrandGroup) Stride(p int) (offset, stride int) {
	if g.Layout == LayoutInterleaved {
		return p * g.StrandCount, 1
	}
	return p, g.ParticleCount
}

// Position returns particle p of strand s.
func (g *StrandGroup) Position(s, p int) math.Vec3 {
	return g.Positions[g.ParticleIndex(s, p)]
}

// Strand copies the particles of strand s into dst, which is grown as needed.
func (g *StrandGroup) Strand(s int, dst []math.Vec3) []math.Vec3 {
	dst = dst[:0]
	for p := 0; p < g.ParticleCount; p++ {
		dst = append(dst, g.Position(s, p))
	}
	return dst
}

// LODCount returns the number of LOD levels.
func (g *StrandGroup) LODCount() int { return g.LOD.Count() }

// ApplyRemapping reorders every strand buffer into final order and rewrites
// the LOD guide indices accordingly.
func (g *StrandGroup) ApplyRemapping(r cluster.Remapping) {
	cluster.ShuffleStrands(g.RootUV, r.Src)
	cluster.ShuffleStrands(g.RootScale, r.Src)
	for p := 0; p < g.ParticleCount; p++ {
		offset, stride := g.Stride(p)
		cluster.ShuffleStrided(g.Positions, r.Src, offset, stride)
		if g.TexCoords != nil {
			cluster.ShuffleStrided(g.TexCoords, r.Src, offset, stride)
		}
		if g.Diameters != nil {
			cluster.ShuffleStrided(g.Diameters, r.Src, offset, stride)
		}
	}
	g.LOD.ApplyShuffle(r)
	g.LOD.ApplyRemapping(r)
}
