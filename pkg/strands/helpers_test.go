package strands

import (
	"math/rand"
	"testing"

	"github.com/ojrac/opensimplex-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/hairbuild/pkg/math"
)

// hangingCurves builds one curve per vertex count, rooted on the XZ plane
// and hanging down with a little jitter. Curve UVs follow the root X and Z.
func hangingCurves(seed int64, counts ...int) *CurveSet {
	rng := rand.New(rand.NewSource(seed))
	set := &CurveSet{Name: "test", VertexCounts: counts}
	for _, n := range counts {
		root := math.Vec3{X: rng.Float32(), Z: rng.Float32()}
		set.CurveUVs = append(set.CurveUVs, math.Vec2{X: root.X, Y: root.Z})
		set.CurveDiameters = append(set.CurveDiameters, 0.05+0.05*rng.Float32())
		set.CurveTapers = append(set.CurveTapers, Taper{Offset: 0.5 + 0.5*rng.Float32(), Scale: rng.Float32()})
		p := root
		for v := 0; v < n; v++ {
			set.Positions = append(set.Positions, p)
			p = p.Add(math.Vec3{X: 0.01 * (rng.Float32() - 0.5), Y: -0.05, Z: 0.01 * (rng.Float32() - 0.5)})
		}
	}
	return set
}

func uniformCounts(curves, vertices int) []int {
	counts := make([]int, curves)
	for i := range counts {
		counts[i] = vertices
	}
	return counts
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.WarnLevel)
	return zap.New(core), logs
}

func testSettings() Settings {
	s := DefaultSettings()
	s.Attributes.RootUV = RootUVCurves
	return s
}

// checkLOD verifies monotonic levels, the full resolution level and that
// every level's guides form the leading block of strands.
func checkLOD(t *testing.T, g *StrandGroup) {
	t.Helper()
	lod := &g.LOD
	if lod.Count() == 0 {
		t.Fatal("no lod levels")
	}
	for k := 1; k < lod.Count(); k++ {
		if lod.GuideCount[k-1] >= lod.GuideCount[k] {
			t.Errorf("levels %d and %d not increasing: %v", k-1, k, lod.GuideCount)
		}
	}
	if lod.Last() != g.StrandCount {
		t.Errorf("last level has %d guides, want %d", lod.Last(), g.StrandCount)
	}
	for k := 0; k < lod.Count(); k++ {
		index, _, _ := lod.Level(k)
		guides := lod.GuideCount[k]
		for i, gi := range index {
			if i < guides && gi != i {
				t.Fatalf("level %d: strand %d in guide block maps to %d", k, i, gi)
			}
			if i >= guides && (gi == i || gi >= guides) {
				t.Fatalf("level %d: strand %d maps to %d outside the guide block of %d", k, i, gi, guides)
			}
		}
	}
}

func noiseForTest() opensimplex.Noise {
	return opensimplex.New(seedFrizz)
}
