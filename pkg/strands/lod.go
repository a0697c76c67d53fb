package strands

import (
	"context"
	stdmath "math"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/hairbuild/pkg/cluster"
	"github.com/Faultbox/hairbuild/pkg/math"
)

// lodBuild is the state of one LOD chain construction.
type lodBuild struct {
	b          *Builder
	g          *StrandGroup
	log        *zap.Logger
	set        *cluster.Set
	chain      *cluster.Chain
	iterations int
}

// buildLOD builds the cluster LOD chain of g and reorders g so that the
// guides of every level form a leading block.
func (b *Builder) buildLOD(ctx context.Context, g *StrandGroup, log *zap.Logger) error {
	settings := b.settings.LOD
	lb := &lodBuild{
		b:     b,
		g:     g,
		log:   log,
		chain: cluster.NewChain(g.StrandCount),
	}
	lb.set = cluster.NewSet(lb.samples(), cluster.Options{
		Mode: settings.Sampling,
		Void: settings.Void,
		Seed: settings.Seed,
	})
	if settings.Refinement {
		lb.iterations = settings.Iterations
	}

	if settings.Enabled {
		switch settings.Base.Mode {
		case BaseUVMapped:
			lb.buildBaseLODUVMapped(settings.Base.Maps)
		default:
			lb.expand(lb.fractionCount(settings.Base.Fraction))
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		b.progress(StageLOD, lb.chain.Last(), g.StrandCount)
		if err := lb.buildHigh(ctx, settings.High); err != nil {
			return err
		}
	}
	lb.fullResolution()
	b.progress(StageLOD, g.StrandCount, g.StrandCount)

	g.LOD = *lb.chain
	if lb.chain.Count() == 1 && lb.chain.Last() == g.StrandCount {
		return nil
	}
	g.ApplyRemapping(cluster.NewRemapping(lb.set))
	return nil
}

// samples exposes the group to clustering, weighting strands by
// length * diameter^2 of the normalized root scale.
func (lb *lodBuild) samples() cluster.Samples {
	g := lb.g
	weights := make([]float64, g.StrandCount)
	for i, rs := range g.RootScale {
		weights[i] = float64(rs.X * rs.Y * rs.Y)
	}
	return cluster.Samples{
		StrandCount:   g.StrandCount,
		ParticleCount: g.ParticleCount,
		Position:      func(s, p int) math.Vec3 { return g.Position(s, p) },
		Weights:       weights,
	}
}

func (lb *lodBuild) fractionCount(f float64) int {
	return int(stdmath.Ceil(f * float64(lb.g.StrandCount)))
}

// expand adds a procedural level of count guides and reports whether a
// level was recorded.
func (lb *lodBuild) expand(count int) bool {
	lod := lb.b.settings.LOD
	if !lb.set.ExpandProcedural(count, lod.Allocation, lod.Order, lb.iterations) {
		return false
	}
	return lb.commit()
}

func (lb *lodBuild) commit() bool {
	lb.set.Commit()
	return lb.chain.Increment(lb.set)
}

// buildHigh adds the levels above the base. A level that would reach the
// strand count ends the sequence; the full resolution level follows.
func (lb *lodBuild) buildHigh(ctx context.Context, high HighLODSettings) error {
	n := lb.g.StrandCount
	var counts []int
	switch high.Mode {
	case HighManual:
		fractions := append([]float64(nil), high.Fractions...)
		sort.Float64s(fractions)
		for _, f := range fractions {
			counts = append(counts, lb.fractionCount(f))
		}
	default:
		limit := lb.fractionCount(high.MaxFraction)
		growth := high.Growth
		if growth <= 1 {
			growth = 2
		}
		prev := lb.chain.Last()
		for {
			next := int(stdmath.Ceil(float64(prev) * growth))
			if next < prev+1 {
				next = prev + 1
			}
			if next > limit || next >= n {
				break
			}
			counts = append(counts, next)
			prev = next
		}
	}

	for _, count := range counts {
		if count >= n {
			break
		}
		if count <= lb.chain.Last() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !lb.expand(count) {
			lb.log.Debug("lod level added no clusters", zap.Int("guides", count))
			continue
		}
		lb.b.progress(StageLOD, lb.chain.Last(), n)
	}
	return nil
}

// buildBaseLODUVMapped adds one level per readable cluster map. Unreadable
// maps are skipped with a warning. It returns the number of levels added.
func (lb *lodBuild) buildBaseLODUVMapped(maps []ClusterMap) int {
	added := 0
	for _, m := range maps {
		tex, err := lb.b.loadTexture(m.Path)
		if err != nil {
			lb.log.Warn("skipping unreadable cluster map", zap.String("path", m.Path), zap.Error(err))
			continue
		}
		raw := make([]uint32, lb.g.StrandCount)
		for i, uv := range lb.g.RootUV {
			c := tex.Texel(uv)
			if m.Format == MapClusterColor {
				raw[i] = uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
			} else {
				raw[i] = uint32(c.R)
			}
		}
		labels, count := denseLabels(raw)
		if !lb.set.ExpandPreassigned(count, labels, lb.iterations) {
			lb.log.Warn("cluster map adds no clusters", zap.String("path", m.Path), zap.Int("labels", count))
			continue
		}
		if lb.commit() {
			added++
		}
	}
	return added
}

// denseLabels maps raw label values to 0..count-1 in ascending value order.
func denseLabels(raw []uint32) ([]int, int) {
	values := append([]uint32(nil), raw...)
	sort.Slice(values, func(a, b int) bool { return values[a] < values[b] })
	ids := make(map[uint32]int)
	for _, v := range values {
		if _, ok := ids[v]; !ok {
			ids[v] = len(ids)
		}
	}
	labels := make([]int, len(raw))
	for i, v := range raw {
		labels[i] = ids[v]
	}
	return labels, len(ids)
}

// fullResolution appends the level where every strand is its own guide
// unless the chain already ends there.
func (lb *lodBuild) fullResolution() {
	if lb.chain.Complete() {
		return
	}
	labels := make([]int, lb.g.StrandCount)
	for i := range labels {
		labels[i] = i
	}
	if lb.set.ExpandPreassigned(len(labels), labels, 0) {
		lb.commit()
	}
}
