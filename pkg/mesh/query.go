package mesh

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/hairbuild/pkg/math"
	"github.com/Faultbox/hairbuild/pkg/spatial"
)

// TriangleQuery answers closest-triangle queries against a mesh.
// Triangles are indexed by centroid; a query gathers every triangle whose
// centroid lies within the nearest-centroid distance plus the largest
// centroid-to-vertex radius, which always contains the true closest triangle.
type TriangleQuery struct {
	mesh      *Mesh
	index     *spatial.Index
	maxRadius float32
}

// Hit describes the closest surface point found by a query.
type Hit struct {
	SurfacePoint
	Barycentric math.Vec3
	Distance    float32
}

// NewTriangleQuery builds the centroid index for m.
func NewTriangleQuery(m *Mesh) *TriangleQuery {
	n := m.TriangleCount()
	points := make(spatial.Points, n)
	var maxRadius float32
	for i := 0; i < n; i++ {
		a, b, c := m.Triangle(i)
		pa, pb, pc := m.Positions[a], m.Positions[b], m.Positions[c]
		centroid := pa.Add(pb).Add(pc).Scale(1.0 / 3.0)
		for _, p := range [3]math.Vec3{pa, pb, pc} {
			maxRadius = math32.Max(maxRadius, centroid.Distance(p))
		}
		points[i] = spatial.Point{Coords: vecCoords(centroid), ID: i}
	}
	return &TriangleQuery{
		mesh:      m,
		index:     spatial.NewIndex(points),
		maxRadius: maxRadius,
	}
}

// Mesh returns the queried mesh.
func (q *TriangleQuery) Mesh() *Mesh {
	return q.mesh
}

// Closest returns the closest point on the mesh surface to p.
func (q *TriangleQuery) Closest(p math.Vec3) (Hit, bool) {
	coords := vecCoords(p)
	nearest, d2 := q.index.Nearest(coords)
	if nearest < 0 {
		return Hit{}, false
	}

	radius := float64(math32.Sqrt(float32(d2)) + q.maxRadius)
	best := Hit{Distance: math32.Inf(1)}
	for _, tri := range q.index.Within(coords, radius*radius*(1+1e-6)) {
		a, b, c := q.mesh.Triangle(tri)
		cp, bary := closestPointOnTriangle(p, q.mesh.Positions[a], q.mesh.Positions[b], q.mesh.Positions[c])
		d := cp.Distance(p)
		if d < best.Distance || (d == best.Distance && tri < best.Triangle) {
			best = Hit{Barycentric: bary, Distance: d}
			best.Triangle = tri
		}
	}
	if math32.IsInf(best.Distance, 1) {
		return Hit{}, false
	}
	best.SurfacePoint = q.mesh.Interpolate(best.Triangle, best.Barycentric)
	return best, true
}

// ClosestUV returns the interpolated texture coordinate at the closest point.
func (q *TriangleQuery) ClosestUV(p math.Vec3) (math.Vec2, bool) {
	if !q.mesh.HasUVs() {
		return math.Vec2{}, false
	}
	hit, ok := q.Closest(p)
	if !ok {
		return math.Vec2{}, false
	}
	return hit.UV, true
}

func vecCoords(v math.Vec3) []float64 {
	return []float64{float64(v.X), float64(v.Y), float64(v.Z)}
}

// closestPointOnTriangle returns the closest point to p on triangle abc and
// its barycentric coordinates (weights of a, b, c).
func closestPointOnTriangle(p, a, b, c math.Vec3) (math.Vec3, math.Vec3) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a, math.Vec3{X: 1}
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b, math.Vec3{Y: 1}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Scale(v)), math.Vec3{X: 1 - v, Y: v}
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c, math.Vec3{Z: 1}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Scale(w)), math.Vec3{X: 1 - w, Z: w}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Scale(w)), math.Vec3{Y: 1 - w, Z: w}
	}

	denom := va + vb + vc
	if denom == 0 {
		// Degenerate triangle collapsed onto a line or point.
		return a, math.Vec3{X: 1}
	}
	v := vb / denom
	w := vc / denom
	return a.Add(ab.Scale(v)).Add(ac.Scale(w)), math.Vec3{X: 1 - v - w, Y: v, Z: w}
}
