package mesh

import (
	"math/rand"
	"sort"

	"github.com/chewxy/math32"

	"github.com/Faultbox/hairbuild/pkg/math"
)

// Sampler draws uniformly distributed points over the mesh surface.
type Sampler struct {
	mesh       *Mesh
	cumulative []float64
	total      float64
}

// NewSampler prepares area-weighted triangle selection.
func NewSampler(m *Mesh) *Sampler {
	n := m.TriangleCount()
	s := &Sampler{mesh: m, cumulative: make([]float64, n)}
	for i := 0; i < n; i++ {
		s.total += float64(m.TriangleArea(i))
		s.cumulative[i] = s.total
	}
	return s
}

// Area returns the total surface area.
func (s *Sampler) Area() float64 {
	return s.total
}

// Sample draws one surface point using rng.
func (s *Sampler) Sample(rng *rand.Rand) SurfacePoint {
	if s.total <= 0 {
		return s.mesh.Interpolate(0, math.Vec3{X: 1})
	}
	target := rng.Float64() * s.total
	tri := sort.SearchFloat64s(s.cumulative, target)
	if tri >= len(s.cumulative) {
		tri = len(s.cumulative) - 1
	}

	r1 := math32.Sqrt(rng.Float32())
	r2 := rng.Float32()
	bary := math.Vec3{X: 1 - r1, Y: r1 * (1 - r2), Z: r1 * r2}
	return s.mesh.Interpolate(tri, bary)
}
