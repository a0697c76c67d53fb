package strands

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/hairbuild/pkg/math"
)

// degenerateSegment is the segment length, relative to the target spacing,
// below which a source segment is skipped.
const degenerateSegment = 1e-6

// ResampleWeight locates a resampled point on the source polyline: it lies
// at fraction T between source vertices Index0 and Index1. Points past the
// end of the source have Index0 == Index1 == last vertex and T == 0.
type ResampleWeight struct {
	Index0, Index1 int
	T              float32
}

// Resample places dstCount points at uniform arc-length spacing along src.
// Every pass walks the source with circle intersections and re-estimates the
// spacing from the length actually consumed by the previous pass.
// src must hold at least two points and dstCount must be at least two.
func Resample(src []math.Vec3, dstCount, iterations int) ([]math.Vec3, []ResampleWeight) {
	dst := make([]math.Vec3, dstCount)
	weights := make([]ResampleWeight, dstCount)
	ResampleInto(dst, weights, src, iterations)
	return dst, weights
}

// ResampleInto is Resample writing into caller-owned buffers of equal length.
func ResampleInto(dst []math.Vec3, weights []ResampleWeight, src []math.Vec3, iterations int) {
	if iterations < 1 {
		iterations = 1
	}
	total := polylineLength(src)
	if total <= 0 || len(dst) < 2 {
		for i := range dst {
			dst[i] = src[0]
			weights[i] = ResampleWeight{}
		}
		return
	}
	spacing := total / float32(len(dst)-1)
	for it := 0; it < iterations; it++ {
		consumed := resamplePass(dst, weights, src, spacing)
		if consumed > 0 {
			spacing = consumed / float32(len(dst)-1)
		}
	}
}

// resamplePass places points spacing apart and returns the length the
// placement accounts for: the chords placed plus what is left of the source
// after the last placed point.
func resamplePass(dst []math.Vec3, weights []ResampleWeight, src []math.Vec3, spacing float32) float32 {
	n := len(dst)
	last := len(src) - 1
	dst[0] = src[0]
	weights[0] = ResampleWeight{Index0: 0, Index1: 1}

	placed := 1
	cur := src[0]
	seg := 1 // end vertex of the segment holding cur
	j := 1
	minSeg := degenerateSegment * spacing
	reach := spacing * (1 - degenerateSegment)
	for placed < n && j <= last {
		a, b := src[j-1], src[j]
		if b.Distance(cur) < reach {
			j++
			continue
		}
		ab := b.Sub(a)
		abLenSq := ab.LengthSq()
		if abLenSq <= minSeg*minSeg {
			j++
			continue
		}
		t := circleIntersect(a, ab, abLenSq, cur, spacing)
		cur = a.Add(ab.Scale(t))
		dst[placed] = cur
		weights[placed] = ResampleWeight{Index0: j - 1, Index1: j, T: t}
		placed++
		seg = j
	}

	if placed == n {
		return spacing*float32(n-1) + src[seg].Distance(cur) + polylineLength(src[seg:])
	}

	// Source exhausted: the end lies less than one spacing away.
	consumed := spacing*float32(placed-1) + src[last].Distance(cur)
	dir := endDirection(src, minSeg)
	for ; placed < n; placed++ {
		cur = cur.Add(dir.Scale(spacing))
		dst[placed] = cur
		weights[placed] = ResampleWeight{Index0: last, Index1: last}
	}
	return consumed
}

// circleIntersect returns the largest t in [0,1] with |a + t*ab - c| == r.
func circleIntersect(a, ab math.Vec3, abLenSq float32, c math.Vec3, r float32) float32 {
	ac := a.Sub(c)
	qb := 2 * ab.Dot(ac)
	qc := ac.LengthSq() - r*r
	disc := qb*qb - 4*abLenSq*qc
	if disc < 0 {
		disc = 0
	}
	t := (-qb + math32.Sqrt(disc)) / (2 * abLenSq)
	return math32.Max(0, math32.Min(1, t))
}

// endDirection returns the direction of the last non-degenerate segment.
func endDirection(src []math.Vec3, minSeg float32) math.Vec3 {
	for j := len(src) - 1; j > 0; j-- {
		d := src[j].Sub(src[j-1])
		if d.LengthSq() > minSeg*minSeg {
			return d.Normalize()
		}
	}
	return math.Vec3{}
}

func polylineLength(src []math.Vec3) float32 {
	var total float32
	for i := 1; i < len(src); i++ {
		total += src[i].Distance(src[i-1])
	}
	return total
}

// ResampleVec2 interpolates a per-vertex attribute along resample weights.
func ResampleVec2(src []math.Vec2, weights []ResampleWeight) []math.Vec2 {
	out := make([]math.Vec2, len(weights))
	for i, w := range weights {
		out[i] = src[w.Index0].Lerp(src[w.Index1], w.T)
	}
	return out
}

// ResampleScalar interpolates a per-vertex attribute along resample weights.
func ResampleScalar(src []float32, weights []ResampleWeight) []float32 {
	out := make([]float32, len(weights))
	for i, w := range weights {
		out[i] = src[w.Index0] + (src[w.Index1]-src[w.Index0])*w.T
	}
	return out
}
