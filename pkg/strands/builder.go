// Package strands turns raw curves into finalized strand groups: uniform
// particle counts, resolved per-strand attributes, normalized root scales and
// a cluster LOD chain ordered for guide locality.
package strands

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/hairbuild/pkg/math"
	"github.com/Faultbox/hairbuild/pkg/mesh"
	"github.com/Faultbox/hairbuild/pkg/texture"
)

// progressInterval is the number of curves between progress reports.
const progressInterval = 256

// Build stages reported to a ProgressFunc.
const (
	StageCurves = "curves"
	StageLOD    = "lod"
)

// ProgressFunc receives build progress.
type ProgressFunc func(stage string, done, total int)

// BuildStats counts the work done for one group.
type BuildStats struct {
	ResampleCalls      int
	ResampleIterations int
	DroppedCurves      int
}

// Result is one built group.
type Result struct {
	Group *StrandGroup
	Stats BuildStats
}

// Builder builds strand groups from curve sets.
type Builder struct {
	settings    Settings
	log         *zap.Logger
	mesh        *mesh.TriangleQuery
	loadTexture func(path string) (*texture.Texture, error)
	progress    ProgressFunc
	roots       RootGenerator
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger for build warnings.
func WithLogger(log *zap.Logger) Option {
	return func(b *Builder) { b.log = log }
}

// WithMesh sets the reference surface used for root UVs and mesh placement.
func WithMesh(q *mesh.TriangleQuery) Option {
	return func(b *Builder) { b.mesh = q }
}

// WithTextureLoader replaces the loader used for cluster and placement maps.
func WithTextureLoader(load func(path string) (*texture.Texture, error)) Option {
	return func(b *Builder) { b.loadTexture = load }
}

// WithProgress sets a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(b *Builder) { b.progress = fn }
}

// WithRootGenerator sets the generator used by custom placement.
func WithRootGenerator(g RootGenerator) Option {
	return func(b *Builder) { b.roots = g }
}

// NewBuilder creates a builder.
func NewBuilder(settings Settings, opts ...Option) *Builder {
	b := &Builder{
		settings:    settings,
		log:         zap.NewNop(),
		loadTexture: texture.Load,
		progress:    func(string, int, int) {},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Settings returns the builder settings.
func (b *Builder) Settings() Settings { return b.settings }

// Build builds one group per curve set, or a single group when Combine is
// set. Groups left without valid strands are omitted. Only cancellation
// returns an error.
func (b *Builder) Build(ctx context.Context, sets []*CurveSet) ([]Result, error) {
	if b.settings.Combine && len(sets) > 1 {
		usable := make([]*CurveSet, 0, len(sets))
		for _, s := range sets {
			if err := s.Validate(); err != nil {
				b.log.Warn("dropping malformed curve set", zap.String("group", s.Name), zap.Error(err))
				continue
			}
			usable = append(usable, s)
		}
		if len(usable) == 0 {
			return nil, nil
		}
		sets = []*CurveSet{CombineCurves(usable[0].Name, usable)}
	}

	results := make([]Result, 0, len(sets))
	for _, set := range sets {
		res, err := b.buildGroup(ctx, set)
		if err != nil {
			return nil, err
		}
		if res.Group != nil {
			results = append(results, res)
		}
	}
	return results, nil
}

// BuildProvider builds the curve sets supplied by p.
func (b *Builder) BuildProvider(ctx context.Context, p CurveProvider) ([]Result, error) {
	sets, err := p.Curves(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading curves: %w", err)
	}
	return b.Build(ctx, sets)
}

// BuildProcedural generates curves from the procedural settings and builds
// them as one group.
func (b *Builder) BuildProcedural(ctx context.Context, name string) (Result, error) {
	set, err := b.Generate(ctx, name)
	if err != nil {
		return Result{}, err
	}
	return b.buildGroup(ctx, set)
}

func (b *Builder) buildGroup(ctx context.Context, raw *CurveSet) (Result, error) {
	var stats BuildStats
	log := b.log.With(zap.String("group", raw.Name))

	if err := raw.Validate(); err != nil {
		log.Warn("dropping malformed curve set", zap.Error(err))
		return Result{}, nil
	}
	available, incomplete := raw.Features()
	if incomplete != 0 {
		log.Warn("ignoring incomplete curve streams", zap.Stringer("streams", incomplete))
	}

	var keep []int
	for i, n := range raw.VertexCounts {
		if n < 2 {
			log.Warn("dropping degenerate curve", zap.Int("curve", i), zap.Int("vertices", n))
			continue
		}
		keep = append(keep, i)
	}
	stats.DroppedCurves = raw.CurveCount() - len(keep)
	if len(keep) == 0 {
		log.Warn("dropping group without valid curves")
		return Result{}, nil
	}

	set := raw.normalized(available)
	if len(keep) != raw.CurveCount() {
		set = set.subset(keep)
	}

	particles, iterations, resample := b.uniformization(set, log)
	g := NewStrandGroup(set.Name, set.CurveCount(), particles, b.settings.Layout)
	vertexUV := available.Has(FeatureVertexUV)
	vertexDiameter := available.Has(FeatureVertexDiameter)
	if vertexUV {
		g.TexCoords = make([]math.Vec2, len(g.Positions))
	}
	if vertexDiameter {
		g.Diameters = make([]float32, len(g.Positions))
	}

	resolver := newAttributeResolver(set, b.settings.Attributes, b.mesh, log)
	offsets := set.Offsets()
	for c := 0; c < set.CurveCount(); c++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		lo, hi := offsets[c], offsets[c]+set.VertexCounts[c]
		positions := set.Positions[lo:hi]
		var weights []ResampleWeight
		if resample {
			positions, weights = Resample(positions, particles, iterations)
			stats.ResampleCalls++
			stats.ResampleIterations += iterations
		}
		for p, pos := range positions {
			g.Positions[g.ParticleIndex(c, p)] = pos
		}
		if vertexUV {
			writeParticles(g, c, set.VertexUVs[lo:hi], weights, g.TexCoords, ResampleVec2)
		}
		if vertexDiameter {
			writeParticles(g, c, set.VertexDiameters[lo:hi], weights, g.Diameters, ResampleScalar)
		}

		a := resolver.resolve(c)
		g.RootUV[c] = a.RootUV
		g.RootScale[c] = math.Vec4{Y: a.Diameter, Z: a.Taper.Offset, W: a.Taper.Scale}
		if (c+1)%progressInterval == 0 {
			b.progress(StageCurves, c+1, set.CurveCount())
		}
	}
	resolver.finish()
	b.progress(StageCurves, set.CurveCount(), set.CurveCount())

	finalize(g)
	if err := b.buildLOD(ctx, g, log); err != nil {
		return Result{}, err
	}
	return Result{Group: g, Stats: stats}, nil
}

// uniformization decides the particle count and whether curves are resampled.
func (b *Builder) uniformization(set *CurveSet, log *zap.Logger) (particles, iterations int, resample bool) {
	uniform := true
	maxCount := 0
	for _, n := range set.VertexCounts {
		if n != set.VertexCounts[0] {
			uniform = false
		}
		if n > maxCount {
			maxCount = n
		}
	}
	rs := b.settings.Resample
	if !rs.Enabled {
		if uniform {
			return maxCount, 0, false
		}
		log.Warn("curves have different vertex counts, resampling to the largest",
			zap.Int("particles", maxCount))
		return maxCount, 1, true
	}
	particles = rs.Resolution
	if particles < 2 {
		particles = maxCount
	}
	iterations = rs.Iterations
	if iterations < 1 {
		iterations = 1
	}
	return particles, iterations, true
}

func writeParticles[T any](g *StrandGroup, c int, src []T, weights []ResampleWeight, dst []T, interp func([]T, []ResampleWeight) []T) {
	if weights != nil {
		src = interp(src, weights)
	}
	for p, v := range src {
		dst[g.ParticleIndex(c, p)] = v
	}
}

// ErrNoMesh is returned when mesh placement is requested without a mesh.
var ErrNoMesh = errors.New("mesh placement requires a mesh")

// ErrNoRootGenerator is returned when custom placement has no generator.
var ErrNoRootGenerator = errors.New("custom placement requires a root generator")
