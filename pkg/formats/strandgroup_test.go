package formats

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Faultbox/hairbuild/pkg/math"
	"github.com/Faultbox/hairbuild/pkg/strands"
)

func createTestGroup() *strands.StrandGroup {
	g := strands.NewStrandGroup("test", 3, 2, strands.LayoutInterleaved)
	for i := range g.Positions {
		g.Positions[i] = math.Vec3{X: float32(i), Y: 1}
	}
	g.Diameters = []float32{0.1, 0.1, 0.1, 0.05, 0.05, 0.05}
	g.RootUV = []math.Vec2{{X: 0.1}, {X: 0.2}, {X: 0.3}}
	g.RootScale = []math.Vec4{{X: 1, Y: 1, Z: 1, W: 1}, {X: 0.5, Y: 1, Z: 1, W: 1}, {X: 0.25, Y: 1, Z: 1, W: 1}}
	g.Stats.MaxLength = 2
	g.Stats.Bounds = math.Bounds{Min: math.Vec3{X: 0, Y: 1}, Max: math.Vec3{X: 5, Y: 1}}
	g.LOD.GuideCount = []int{1, 3}
	g.LOD.GuideIndex = []int{0, 0, 0, 0, 1, 2}
	g.LOD.GuideCarry = []float32{1, 0, 0, 0.5, 0.25, 0.25}
	g.LOD.GuideReach = []float32{0.3, 0, 0, 0, 0, 0}
	return g
}

func TestEncodeStrandGroups(t *testing.T) {
	g := createTestGroup()

	var buf bytes.Buffer
	if err := EncodeStrandGroups(&buf, []*strands.StrandGroup{g}); err != nil {
		t.Fatalf("EncodeStrandGroups failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("HSTR\x01\x00")) {
		t.Errorf("unexpected header % x", buf.Bytes()[:6])
	}

	file, err := ParseStrandGroups(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseStrandGroups failed: %v", err)
	}
	got := file.Groups[0]
	if got.StrandCount != 3 || got.ParticleCount != 2 || got.Layout != strands.LayoutInterleaved {
		t.Errorf("header = %d/%d/%v", got.StrandCount, got.ParticleCount, got.Layout)
	}
	if got.TexCoords != nil {
		t.Errorf("absent texcoords were parsed: %v", got.TexCoords)
	}
	if got.Diameters[3] != 0.05 {
		t.Errorf("Diameters[3] = %v, want 0.05", got.Diameters[3])
	}
	if got.Stats != g.Stats {
		t.Errorf("Stats = %+v, want %+v", got.Stats, g.Stats)
	}
	if got.LOD.Count() != 2 || got.LOD.StrandCount != 3 {
		t.Fatalf("lod = %+v", got.LOD)
	}
	if guides := got.LOD.Guides(0); len(guides) != 1 || guides[0] != 0 {
		t.Errorf("level 0 guides = %v, want [0]", guides)
	}
	if got.LOD.GuideCarry[3] != 0.5 || got.LOD.GuideReach[0] != 0.3 {
		t.Errorf("carry/reach = %v/%v", got.LOD.GuideCarry, got.LOD.GuideReach)
	}
}

func TestEncodeStrandGroups_Inconsistent(t *testing.T) {
	g := createTestGroup()
	g.RootUV = g.RootUV[:2]
	g.LOD.GuideIndex = g.LOD.GuideIndex[:5]

	var buf bytes.Buffer
	err := EncodeStrandGroups(&buf, []*strands.StrandGroup{g})
	if !errors.Is(err, ErrInconsistentStrandGroup) {
		t.Errorf("expected ErrInconsistentStrandGroup, got %v", err)
	}
}

func TestParseStrandGroups_Errors(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeStrandGroups(&buf, []*strands.StrandGroup{createTestGroup()}); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	bad := append([]byte("HCRV"), data[4:]...)
	if _, err := ParseStrandGroups(bad); !errors.Is(err, ErrInvalidStrandsMagic) {
		t.Errorf("expected ErrInvalidStrandsMagic, got %v", err)
	}

	future := append([]byte(nil), data...)
	future[4] = 9
	if _, err := ParseStrandGroups(future); !errors.Is(err, ErrUnsupportedStrandsVersion) {
		t.Errorf("expected ErrUnsupportedStrandsVersion, got %v", err)
	}

	if _, err := ParseStrandGroups(data[:len(data)-3]); !errors.Is(err, ErrTruncatedStrandsData) {
		t.Errorf("expected ErrTruncatedStrandsData, got %v", err)
	}

	// Point the last guide index entry past the strand count.
	outOfRange := append([]byte(nil), data...)
	at := len(data) - 2*6*4 - 4
	outOfRange[at] = 7
	if _, err := ParseStrandGroups(outOfRange); !errors.Is(err, ErrInconsistentStrandGroup) {
		t.Errorf("expected ErrInconsistentStrandGroup, got %v", err)
	}
}

func TestStrandGroupsFileFromBuild(t *testing.T) {
	settings := strands.DefaultSettings()
	settings.Procedural.StrandCount = 32
	settings.Procedural.ParticleCount = 8
	res, err := strands.NewBuilder(settings).BuildProcedural(context.Background(), "procedural")
	if err != nil {
		t.Fatalf("BuildProcedural failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.hstr")
	if err := WriteStrandGroupsFile(path, []*strands.StrandGroup{res.Group}); err != nil {
		t.Fatalf("WriteStrandGroupsFile failed: %v", err)
	}
	file, err := ParseStrandGroupsFile(path)
	if err != nil {
		t.Fatalf("ParseStrandGroupsFile failed: %v", err)
	}

	got := file.Groups[0]
	if got.StrandCount != res.Group.StrandCount || got.LOD.Count() != res.Group.LOD.Count() {
		t.Errorf("got %d strands %d levels, want %d and %d",
			got.StrandCount, got.LOD.Count(), res.Group.StrandCount, res.Group.LOD.Count())
	}
	if !got.LOD.Complete() {
		t.Error("finest level should cover every strand")
	}
	for i, p := range res.Group.Positions {
		if got.Positions[i] != p {
			t.Fatalf("position %d = %v, want %v", i, got.Positions[i], p)
		}
	}
}
