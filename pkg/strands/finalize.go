package strands

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/hairbuild/pkg/math"
)

// rootScaleEpsilon is the floor of every root scale component.
const rootScaleEpsilon = 1e-6

// finalize measures strand lengths, normalizes root scales against the
// group maximum and computes aggregate stats and bounds.
func finalize(g *StrandGroup) {
	st := Stats{MinLength: math32.MaxFloat32, Bounds: math.EmptyBounds()}
	n := g.StrandCount

	var diameterSum float32
	for s := 0; s < n; s++ {
		var length float32
		prev := g.Position(s, 0)
		for p := 1; p < g.ParticleCount; p++ {
			cur := g.Position(s, p)
			length += cur.Distance(prev)
			prev = cur
		}
		g.RootScale[s].X = length
		st.MinLength = math32.Min(st.MinLength, length)
		st.MaxLength = math32.Max(st.MaxLength, length)
		st.TotalLength += length
		st.MaxDiameter = math32.Max(st.MaxDiameter, g.RootScale[s].Y)
		diameterSum += g.RootScale[s].Y
	}
	if n > 0 {
		st.AvgLength = st.TotalLength / float32(n)
		st.AvgDiameter = diameterSum / float32(n)
	} else {
		st.MinLength = 0
	}

	var maxScale, sum math.Vec4
	var weight float32
	for s := range g.RootScale {
		rs := g.RootScale[s].Clamp(rootScaleEpsilon)
		g.RootScale[s] = rs
		maxScale = maxScale.Max(rs)
		sum = sum.Add(rs.Scale(rs.X))
		weight += rs.X
	}
	if n > 0 {
		for s := range g.RootScale {
			g.RootScale[s] = g.RootScale[s].Div(maxScale)
		}
		st.RootScaleMax = maxScale
		st.RootScaleAvg = sum.Scale(1 / weight).Div(maxScale)
	}

	for _, p := range g.Positions {
		st.Bounds = st.Bounds.Extend(p)
	}
	if !st.Bounds.IsEmpty() {
		st.Bounds = st.Bounds.Pad(st.MaxDiameter * 1e-3)
	}
	g.Stats = st
}
