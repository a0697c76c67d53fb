// Package mesh holds triangle meshes used as reference surfaces: root UV
// projection and procedural root placement.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/hairbuild/pkg/math"
)

// Mesh validation errors.
var (
	ErrNoTriangles      = errors.New("mesh has no triangles")
	ErrIndexOutOfRange  = errors.New("mesh index out of range")
	ErrAttributeMissize = errors.New("mesh attribute length does not match positions")
)

// Mesh is an indexed triangle list. Normals and UVs are optional and, when
// present, parallel to Positions.
type Mesh struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2
	Indices   []uint32
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) (int, int, int) {
	return int(m.Indices[3*i]), int(m.Indices[3*i+1]), int(m.Indices[3*i+2])
}

// HasUVs reports whether the mesh carries texture coordinates.
func (m *Mesh) HasUVs() bool {
	return len(m.UVs) > 0 && len(m.UVs) == len(m.Positions)
}

// Validate checks index ranges and attribute lengths.
func (m *Mesh) Validate() error {
	if m.TriangleCount() == 0 {
		return ErrNoTriangles
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			return fmt.Errorf("%w: index %d = %d, %d positions", ErrIndexOutOfRange, i, idx, len(m.Positions))
		}
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d normals", ErrAttributeMissize, len(m.Normals))
	}
	if len(m.UVs) != 0 && len(m.UVs) != len(m.Positions) {
		return fmt.Errorf("%w: %d uvs", ErrAttributeMissize, len(m.UVs))
	}
	return nil
}

// Append merges other into m, offsetting its indices.
func (m *Mesh) Append(other *Mesh) {
	base := uint32(len(m.Positions))
	hadUVs := len(m.UVs) == len(m.Positions)
	hadNormals := len(m.Normals) == len(m.Positions)

	m.Positions = append(m.Positions, other.Positions...)
	if hadUVs && len(other.UVs) == len(other.Positions) {
		m.UVs = append(m.UVs, other.UVs...)
	} else {
		m.UVs = nil
	}
	if hadNormals && len(other.Normals) == len(other.Positions) {
		m.Normals = append(m.Normals, other.Normals...)
	} else {
		m.Normals = nil
	}
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, idx+base)
	}
}

// FaceNormal returns the unit normal of triangle i.
func (m *Mesh) FaceNormal(i int) math.Vec3 {
	a, b, c := m.Triangle(i)
	pa, pb, pc := m.Positions[a], m.Positions[b], m.Positions[c]
	return pb.Sub(pa).Cross(pc.Sub(pa)).Normalize()
}

// TriangleArea returns the area of triangle i.
func (m *Mesh) TriangleArea(i int) float32 {
	a, b, c := m.Triangle(i)
	pa, pb, pc := m.Positions[a], m.Positions[b], m.Positions[c]
	return pb.Sub(pa).Cross(pc.Sub(pa)).Length() * 0.5
}

// Interpolate evaluates position, normal and UV at barycentric coordinates
// (u, v, w) of triangle i. Missing attributes yield the face normal and a
// zero UV.
func (m *Mesh) Interpolate(i int, bary math.Vec3) SurfacePoint {
	a, b, c := m.Triangle(i)
	sp := SurfacePoint{
		Triangle: i,
		Position: m.Positions[a].Scale(bary.X).Add(m.Positions[b].Scale(bary.Y)).Add(m.Positions[c].Scale(bary.Z)),
	}
	if len(m.Normals) == len(m.Positions) {
		n := m.Normals[a].Scale(bary.X).Add(m.Normals[b].Scale(bary.Y)).Add(m.Normals[c].Scale(bary.Z))
		sp.Normal = n.Normalize()
	}
	if sp.Normal == (math.Vec3{}) {
		sp.Normal = m.FaceNormal(i)
	}
	if m.HasUVs() {
		sp.UV = m.UVs[a].Scale(bary.X).Add(m.UVs[b].Scale(bary.Y)).Add(m.UVs[c].Scale(bary.Z))
	}
	return sp
}

// SurfacePoint is a point on the mesh surface.
type SurfacePoint struct {
	Triangle int
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
}
