package strands

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/hairbuild/pkg/math"
	"github.com/Faultbox/hairbuild/pkg/mesh"
)

// strandAttributes are the resolved per-strand scalars. Diameter is in
// millimeters.
type strandAttributes struct {
	RootUV   math.Vec2
	Diameter float32
	Taper    Taper
}

// shape is what the diameter and taper chains resolve.
type shape struct {
	Diameter float32
	Taper    Taper
}

// source is one tier of an attribute chain. Optional tiers are used when
// present but their absence alone is not worth a warning.
type source[V any] struct {
	name      string
	available bool
	optional  bool
	resolve   func(curve int) (V, bool)
}

// attributeResolver resolves root UV, diameter and taper of every curve by
// trying each configured source in order until one applies.
type attributeResolver struct {
	set      *CurveSet
	offsets  []int
	log      *zap.Logger
	uv       []source[math.Vec2]
	diameter []source[shape]
	taper    []source[shape]

	meshMisses int
}

func newAttributeResolver(set *CurveSet, settings AttributeSettings, query *mesh.TriangleQuery, log *zap.Logger) *attributeResolver {
	r := &attributeResolver{set: set, offsets: set.Offsets(), log: log}
	available, _ := set.Features()

	fallbackUV := source[math.Vec2]{name: "fallback", available: true, resolve: func(int) (math.Vec2, bool) {
		return settings.RootUVFallback, true
	}}
	meshUV := source[math.Vec2]{name: "mesh", available: query != nil && query.Mesh().HasUVs(), resolve: func(c int) (math.Vec2, bool) {
		uv, ok := query.ClosestUV(set.Positions[r.offsets[c]])
		if !ok {
			r.meshMisses++
		}
		return uv, ok
	}}
	curveUV := source[math.Vec2]{name: "curve_uv", available: available.Has(FeatureCurveUV), resolve: func(c int) (math.Vec2, bool) {
		return set.CurveUVs[c], true
	}}
	vertexUV := source[math.Vec2]{name: "vertex_uv", available: available.Has(FeatureVertexUV), resolve: func(c int) (math.Vec2, bool) {
		return set.VertexUVs[r.offsets[c]], true
	}}
	switch settings.RootUV {
	case RootUVMesh:
		r.uv = []source[math.Vec2]{meshUV, curveUV, vertexUV, fallbackUV}
	case RootUVCurves:
		r.uv = []source[math.Vec2]{curveUV, vertexUV, fallbackUV}
	default:
		r.uv = []source[math.Vec2]{fallbackUV}
	}

	vertex := source[shape]{name: "vertex_diameter", available: available.Has(FeatureVertexDiameter), optional: true, resolve: r.scanVertices}
	curveDiameter := source[shape]{name: "curve_diameter", available: available.Has(FeatureCurveDiameter), resolve: func(c int) (shape, bool) {
		return shape{Diameter: set.CurveDiameters[c]}, true
	}}
	curveTaper := source[shape]{name: "curve_taper", available: available.Has(FeatureCurveTaper), resolve: func(c int) (shape, bool) {
		return shape{Taper: set.CurveTapers[c]}, true
	}}
	fallback := source[shape]{name: "fallback", available: true, resolve: func(int) (shape, bool) {
		return shape{
			Diameter: settings.DiameterFallback,
			Taper:    Taper{Offset: settings.TaperOffsetFallback, Scale: settings.TaperScaleFallback},
		}, true
	}}
	if settings.Diameter == SourceCurves {
		r.diameter = []source[shape]{vertex, curveDiameter, fallback}
	} else {
		r.diameter = []source[shape]{fallback}
	}
	if settings.Taper == SourceCurves {
		r.taper = []source[shape]{vertex, curveTaper, fallback}
	} else {
		r.taper = []source[shape]{fallback}
	}

	r.uv = pruneSources(r, r.uv, "root_uv")
	r.diameter = pruneSources(r, r.diameter, "diameter")
	r.taper = pruneSources(r, r.taper, "taper")
	return r
}

// pruneSources drops unavailable tiers and warns once when the first
// requested tier is missing.
func pruneSources[V any](r *attributeResolver, chain []source[V], attr string) []source[V] {
	wanted := ""
	out := make([]source[V], 0, len(chain))
	for _, s := range chain {
		if wanted == "" && !s.optional {
			wanted = s.name
		}
		if s.available {
			out = append(out, s)
		}
	}
	var used string
	for _, s := range out {
		if !s.optional {
			used = s.name
			break
		}
	}
	if used != wanted {
		r.log.Warn("attribute source unavailable, falling back",
			zap.String("group", r.set.Name),
			zap.String("attribute", attr),
			zap.String("source", wanted),
			zap.String("using", used))
	}
	return out
}

func first[V any](chain []source[V], c int) V {
	for _, s := range chain {
		if v, ok := s.resolve(c); ok {
			return v
		}
	}
	var zero V
	return zero
}

// resolve returns the attributes of curve c.
func (r *attributeResolver) resolve(c int) strandAttributes {
	return strandAttributes{
		RootUV:   first(r.uv, c),
		Diameter: first(r.diameter, c).Diameter,
		Taper:    first(r.taper, c).Taper,
	}
}

// finish reports per-strand fallthroughs that happened while resolving.
func (r *attributeResolver) finish() {
	if r.meshMisses > 0 {
		r.log.Warn("mesh root uv query failed, used next source",
			zap.String("group", r.set.Name),
			zap.Int("strands", r.meshMisses))
	}
}

// scanVertices derives diameter and taper from per-vertex diameters: the
// diameter is the maximum, the taper starts where the diameter stops
// increasing and ends at the tip diameter.
func (r *attributeResolver) scanVertices(c int) (shape, bool) {
	lo := r.offsets[c]
	d := r.set.VertexDiameters[lo : lo+r.set.VertexCounts[c]]
	n := len(d)

	var maxD float32
	for _, v := range d {
		maxD = math32.Max(maxD, v)
	}
	transition := 0
	for transition+1 < n && d[transition+1] >= d[transition] {
		transition++
	}

	s := shape{Diameter: maxD, Taper: Taper{Offset: 1, Scale: 1}}
	if n > 1 {
		s.Taper.Offset = float32(transition) / float32(n-1)
	}
	if maxD > 0 {
		s.Taper.Scale = math32.Min(d[n-1], maxD) / maxD
	}
	return s, true
}
