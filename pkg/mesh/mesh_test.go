package mesh

import (
	"errors"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/hairbuild/pkg/math"
)

// unitQuad returns a 1x1 quad in the XZ plane facing +Y with UVs matching XZ.
func unitQuad() *Mesh {
	return &Mesh{
		Positions: []math.Vec3{{X: 0, Z: 0}, {X: 1, Z: 0}, {X: 1, Z: 1}, {X: 0, Z: 1}},
		UVs:       []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		Indices:   []uint32{0, 2, 1, 0, 3, 2},
	}
}

func near(a, b, eps float32) bool {
	d := a - b
	return d < eps && d > -eps
}

func TestValidate(t *testing.T) {
	if err := unitQuad().Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	m := unitQuad()
	m.Indices[2] = 9
	if err := m.Validate(); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}

	m = unitQuad()
	m.UVs = m.UVs[:2]
	if err := m.Validate(); !errors.Is(err, ErrAttributeMissize) {
		t.Errorf("expected ErrAttributeMissize, got %v", err)
	}

	if err := (&Mesh{}).Validate(); !errors.Is(err, ErrNoTriangles) {
		t.Errorf("expected ErrNoTriangles, got %v", err)
	}
}

func TestFaceNormalAndArea(t *testing.T) {
	m := unitQuad()
	n := m.FaceNormal(0)
	if !near(n.Y, 1, 1e-6) {
		t.Errorf("FaceNormal(0) = %v, want +Y", n)
	}
	if a := m.TriangleArea(0) + m.TriangleArea(1); !near(a, 1, 1e-6) {
		t.Errorf("total area = %v, want 1", a)
	}
}

func TestClosestUV(t *testing.T) {
	q := NewTriangleQuery(unitQuad())

	tests := []struct {
		p    math.Vec3
		want math.Vec2
	}{
		{math.Vec3{X: 0.25, Y: 0.5, Z: 0.75}, math.Vec2{X: 0.25, Y: 0.75}},
		{math.Vec3{X: 0.9, Y: -0.1, Z: 0.1}, math.Vec2{X: 0.9, Y: 0.1}},
		{math.Vec3{X: 2, Y: 0, Z: 0.5}, math.Vec2{X: 1, Y: 0.5}},
		{math.Vec3{X: -1, Y: 3, Z: -1}, math.Vec2{X: 0, Y: 0}},
	}

	for _, tt := range tests {
		got, ok := q.ClosestUV(tt.p)
		if !ok {
			t.Fatalf("ClosestUV(%v) failed", tt.p)
		}
		if !near(got.X, tt.want.X, 1e-5) || !near(got.Y, tt.want.Y, 1e-5) {
			t.Errorf("ClosestUV(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestClosestDistance(t *testing.T) {
	q := NewTriangleQuery(unitQuad())
	hit, ok := q.Closest(math.Vec3{X: 0.5, Y: 2, Z: 0.5})
	if !ok {
		t.Fatal("Closest failed")
	}
	if !near(hit.Distance, 2, 1e-5) {
		t.Errorf("Distance = %v, want 2", hit.Distance)
	}
	b := hit.Barycentric
	if !near(b.X+b.Y+b.Z, 1, 1e-5) {
		t.Errorf("barycentric %v does not sum to 1", b)
	}
}

func TestClosestUVWithoutUVs(t *testing.T) {
	m := unitQuad()
	m.UVs = nil
	if _, ok := NewTriangleQuery(m).ClosestUV(math.Vec3{}); ok {
		t.Error("expected ClosestUV to fail on a mesh without UVs")
	}
}

func TestSamplerStaysOnSurface(t *testing.T) {
	m := unitQuad()
	s := NewSampler(m)
	if !near(float32(s.Area()), 1, 1e-6) {
		t.Errorf("Area() = %v, want 1", s.Area())
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		sp := s.Sample(rng)
		if sp.Position.Y != 0 || sp.Position.X < 0 || sp.Position.X > 1 || sp.Position.Z < 0 || sp.Position.Z > 1 {
			t.Fatalf("sample %d off surface: %v", i, sp.Position)
		}
		if !near(sp.UV.X, sp.Position.X, 1e-5) || !near(sp.UV.Y, sp.Position.Z, 1e-5) {
			t.Fatalf("sample %d uv %v does not match position %v", i, sp.UV, sp.Position)
		}
	}
}

func TestLoadGLTF(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 1}, {1, 1}, {1, 0}})
	idx := modeler.WriteIndices(doc, []uint32{0, 2, 1})
	doc.Meshes = []*gltf.Mesh{{
		Name: "scalp",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{gltf.POSITION: pos, gltf.TEXCOORD_0: uv},
			Indices:    gltf.Index(idx),
		}},
	}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	path := filepath.Join(t.TempDir(), "scalp.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}

	m, err := LoadGLTF(path)
	if err != nil {
		t.Fatalf("LoadGLTF failed: %v", err)
	}
	if m.TriangleCount() != 1 {
		t.Fatalf("TriangleCount() = %d, want 1", m.TriangleCount())
	}
	if !m.HasUVs() {
		t.Fatal("expected UVs")
	}
	// V is flipped to a bottom-left origin.
	if m.UVs[2] != (math.Vec2{X: 1, Y: 1}) {
		t.Errorf("UV[2] = %v, want (1,1)", m.UVs[2])
	}
}

func TestLoadGLTFMissing(t *testing.T) {
	if _, err := LoadGLTF(filepath.Join(t.TempDir(), "none.glb")); err == nil {
		t.Error("expected error for missing file")
	}
}
