package strands

import (
	"testing"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/hairbuild/pkg/math"
	"github.com/Faultbox/hairbuild/pkg/mesh"
)

func TestScanVertices(t *testing.T) {
	tests := []struct {
		name      string
		diameters []float32
		want      shape
	}{
		{"tapered", []float32{1, 2, 3, 2, 1}, shape{Diameter: 3, Taper: Taper{Offset: 0.5, Scale: 1.0 / 3}}},
		{"constant", []float32{2, 2, 2}, shape{Diameter: 2, Taper: Taper{Offset: 1, Scale: 1}}},
		{"narrowing", []float32{4, 3, 2, 1}, shape{Diameter: 4, Taper: Taper{Offset: 0, Scale: 0.25}}},
		{"widening tip", []float32{2, 1, 3}, shape{Diameter: 3, Taper: Taper{Offset: 0, Scale: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := &CurveSet{
				VertexCounts:    []int{len(tt.diameters)},
				Positions:       make([]math.Vec3, len(tt.diameters)),
				VertexDiameters: tt.diameters,
			}
			r := newAttributeResolver(set, DefaultSettings().Attributes, nil, zap.NewNop())
			got, _ := r.scanVertices(0)
			if got.Diameter != tt.want.Diameter ||
				math32.Abs(got.Taper.Offset-tt.want.Taper.Offset) > 1e-6 ||
				math32.Abs(got.Taper.Scale-tt.want.Taper.Scale) > 1e-6 {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRootUVChain(t *testing.T) {
	quad := &mesh.Mesh{
		Positions: []math.Vec3{{}, {X: 1}, {X: 1, Z: 1}, {Z: 1}},
		UVs:       []math.Vec2{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}},
		Indices:   []uint32{0, 2, 1, 0, 3, 2},
	}
	set := &CurveSet{
		Name:         "uv",
		VertexCounts: []int{2},
		Positions:    []math.Vec3{{X: 0.25, Z: 0.75}, {X: 0.25, Y: -1, Z: 0.75}},
		VertexUVs:    []math.Vec2{{X: 0.9, Y: 0.9}, {}},
		CurveUVs:     []math.Vec2{{X: 0.1, Y: 0.2}},
	}
	noCurveUV := *set
	noCurveUV.CurveUVs = nil

	tests := []struct {
		name   string
		set    *CurveSet
		source RootUVSource
		query  *mesh.TriangleQuery
		want   math.Vec2
		warns  int
	}{
		{"mesh", set, RootUVMesh, mesh.NewTriangleQuery(quad), math.Vec2{X: 0.25, Y: 0.75}, 0},
		{"mesh missing", set, RootUVMesh, nil, math.Vec2{X: 0.1, Y: 0.2}, 1},
		{"curves", set, RootUVCurves, nil, math.Vec2{X: 0.1, Y: 0.2}, 0},
		{"vertex", &noCurveUV, RootUVCurves, nil, math.Vec2{X: 0.9, Y: 0.9}, 1},
		{"fallback", set, RootUVFallback, nil, math.Vec2{X: 0.5, Y: 0.5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, logs := observedLogger()
			settings := DefaultSettings().Attributes
			settings.RootUV = tt.source
			r := newAttributeResolver(tt.set, settings, tt.query, log)
			got := r.resolve(0).RootUV
			if got.Distance(tt.want) > 1e-5 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if n := logs.FilterField(zap.String("attribute", "root_uv")).Len(); n != tt.warns {
				t.Errorf("got %d root uv warnings, want %d", n, tt.warns)
			}
		})
	}
}

func TestDiameterAndTaperChain(t *testing.T) {
	base := &CurveSet{
		Name:         "shape",
		VertexCounts: []int{3},
		Positions:    make([]math.Vec3, 3),
	}
	withCurve := *base
	withCurve.CurveDiameters = []float32{0.2}
	withCurve.CurveTapers = []Taper{{Offset: 0.3, Scale: 0.4}}
	withVertex := withCurve
	withVertex.VertexDiameters = []float32{0.5, 0.5, 0.25}

	settings := DefaultSettings().Attributes
	fallbackSettings := settings
	fallbackSettings.Diameter = SourceFallback
	fallbackSettings.Taper = SourceFallback
	fallback := Taper{Offset: settings.TaperOffsetFallback, Scale: settings.TaperScaleFallback}

	tests := []struct {
		name     string
		set      *CurveSet
		settings AttributeSettings
		diameter float32
		taper    Taper
		warns    int
	}{
		{"vertex", &withVertex, settings, 0.5, Taper{Offset: 0.5, Scale: 0.5}, 0},
		{"curve", &withCurve, settings, 0.2, Taper{Offset: 0.3, Scale: 0.4}, 0},
		{"missing", base, settings, settings.DiameterFallback, fallback, 2},
		{"fallback", &withVertex, fallbackSettings, settings.DiameterFallback, fallback, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, logs := observedLogger()
			r := newAttributeResolver(tt.set, tt.settings, nil, log)
			a := r.resolve(0)
			if a.Diameter != tt.diameter || a.Taper != tt.taper {
				t.Errorf("got %v %+v, want %v %+v", a.Diameter, a.Taper, tt.diameter, tt.taper)
			}
			warns := logs.FilterField(zap.String("attribute", "diameter")).Len() +
				logs.FilterField(zap.String("attribute", "taper")).Len()
			if warns != tt.warns {
				t.Errorf("got %d warnings, want %d", warns, tt.warns)
			}
		})
	}
}
