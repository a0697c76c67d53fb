package strands

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/ojrac/opensimplex-go"
	"go.uber.org/zap"

	"github.com/Faultbox/hairbuild/pkg/math"
	"github.com/Faultbox/hairbuild/pkg/mesh"
	"github.com/Faultbox/hairbuild/pkg/texture"
)

// Seeds of the procedural random streams, one per attribute category.
const (
	seedRoots    = 7
	seedLength   = 11
	seedDiameter = 13
	seedCurl     = 17
	seedFrizz    = 19
)

// StageGenerate is the progress stage of procedural growth.
const StageGenerate = "generate"

// meshPlacementAttempts bounds density map rejection sampling per root.
const meshPlacementAttempts = 64

// Root is a strand root produced by a placement.
type Root struct {
	Position  math.Vec3
	Direction math.Vec3
	UV        math.Vec2
	// Scale multiplies length (X), diameter (Y) and curl radius (Z).
	Scale math.Vec3
}

// RootGenerator produces roots for custom placement. A zero Scale
// component is treated as 1.
type RootGenerator interface {
	Roots(count int, rng *rand.Rand) ([]Root, error)
}

// Generate grows procedural curves from the procedural settings.
func (b *Builder) Generate(ctx context.Context, name string) (*CurveSet, error) {
	ps := b.settings.Procedural
	count := ps.StrandCount
	if count < 1 {
		count = 1
	}
	particles := ps.ParticleCount
	if particles < 2 {
		particles = 2
	}

	roots, err := b.placeRoots(count, rand.New(rand.NewSource(seedRoots)))
	if err != nil {
		return nil, err
	}

	lengthRng := rand.New(rand.NewSource(seedLength))
	diameterRng := rand.New(rand.NewSource(seedDiameter))
	curlRng := rand.New(rand.NewSource(seedCurl))
	noise := opensimplex.New(seedFrizz)

	set := &CurveSet{
		Name:           name,
		VertexCounts:   make([]int, 0, len(roots)),
		Positions:      make([]math.Vec3, 0, len(roots)*particles),
		CurveUVs:       make([]math.Vec2, 0, len(roots)),
		CurveDiameters: make([]float32, 0, len(roots)),
		CurveTapers:    make([]Taper, 0, len(roots)),
		PositionUnit:   Meters,
		DiameterUnit:   Millimeters,
	}
	strand := make([]math.Vec3, particles)
	for i, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		length := ps.Length * root.Scale.X * vary(lengthRng, ps.LengthVariation)
		diameter := ps.Diameter * root.Scale.Y * vary(diameterRng, ps.DiameterVariation)
		var radius, phase float32
		if ps.Curl {
			radius = ps.CurlRadius * root.Scale.Z * vary(curlRng, ps.CurlVariation)
			phase = curlRng.Float32() * 2 * math32.Pi
		}

		grow(strand, root, length, radius, ps.CurlSlope, phase)
		if ps.Frizz > 0 {
			frizz(strand, noise, ps.Frizz, ps.FrizzFrequency)
		}

		set.VertexCounts = append(set.VertexCounts, particles)
		set.Positions = append(set.Positions, strand...)
		set.CurveUVs = append(set.CurveUVs, root.UV)
		set.CurveDiameters = append(set.CurveDiameters, diameter)
		set.CurveTapers = append(set.CurveTapers, Taper{Offset: ps.TaperOffset, Scale: ps.TaperScale})
		if (i+1)%progressInterval == 0 {
			b.progress(StageGenerate, i+1, len(roots))
		}
	}
	b.progress(StageGenerate, len(roots), len(roots))
	return set, nil
}

// vary returns a random factor in [1-v, 1+v], never negative.
func vary(rng *rand.Rand, v float32) float32 {
	return math32.Max(0, 1+v*(2*rng.Float32()-1))
}

// grow fills dst with a strand of the given length starting at root. A
// positive radius winds the strand into a helix around its direction with
// rise slope*radius per radian; particles stay length/(n-1) apart along the
// helix.
func grow(dst []math.Vec3, root Root, length, radius, slope, phase float32) {
	dir := root.Direction.Normalize()
	if dir.LengthSq() == 0 {
		dir = math.Vec3{Y: 1}
	}
	seg := length / float32(len(dst)-1)
	if radius <= 0 {
		for k := range dst {
			dst[k] = root.Position.Add(dir.Scale(seg * float32(k)))
		}
		return
	}
	u := dir.Orthogonal()
	v := dir.Cross(u)
	rise := slope * radius
	step := seg / math32.Sqrt(radius*radius+rise*rise)
	c0, s0 := math32.Cos(phase), math32.Sin(phase)
	for k := range dst {
		phi := step * float32(k)
		c, s := math32.Cos(phase+phi), math32.Sin(phase+phi)
		offset := u.Scale(radius * (c - c0)).
			Add(v.Scale(radius * (s - s0))).
			Add(dir.Scale(rise * phi))
		dst[k] = root.Position.Add(offset)
	}
}

// frizz displaces particles by simplex noise, growing from zero at the root
// to amplitude at the tip.
func frizz(dst []math.Vec3, noise opensimplex.Noise, amplitude, frequency float32) {
	last := float32(len(dst) - 1)
	f := float64(frequency)
	for k := 1; k < len(dst); k++ {
		p := dst[k]
		x, y, z := float64(p.X)*f, float64(p.Y)*f, float64(p.Z)*f
		d := math.Vec3{
			X: float32(noise.Eval3(x, y, z)),
			Y: float32(noise.Eval3(x+31.7, y, z)),
			Z: float32(noise.Eval3(x, y+71.3, z)),
		}
		dst[k] = p.Add(d.Scale(amplitude * float32(k) / last))
	}
}

func (b *Builder) placeRoots(count int, rng *rand.Rand) ([]Root, error) {
	ps := b.settings.Procedural
	switch ps.Placement {
	case PlacementMesh:
		if b.mesh == nil {
			return nil, ErrNoMesh
		}
		return b.meshRoots(count, rng), nil
	case PlacementCustom:
		if b.roots == nil {
			return nil, ErrNoRootGenerator
		}
		roots, err := b.roots.Roots(count, rng)
		if err != nil {
			return nil, fmt.Errorf("generating roots: %w", err)
		}
		for i := range roots {
			roots[i].Scale = unitDefault(roots[i].Scale)
		}
		return roots, nil
	default:
		return primitiveRoots(ps.Primitive, count, ps.Extent, rng), nil
	}
}

func unitDefault(v math.Vec3) math.Vec3 {
	if v.X == 0 {
		v.X = 1
	}
	if v.Y == 0 {
		v.Y = 1
	}
	if v.Z == 0 {
		v.Z = 1
	}
	return v
}

// primitiveRoots lays roots out on a built-in shape of size extent centered
// at the origin.
func primitiveRoots(shape Primitive, count int, extent float32, rng *rand.Rand) []Root {
	one := math.Vec3{X: 1, Y: 1, Z: 1}
	roots := make([]Root, count)
	for i := range roots {
		var r Root
		switch shape {
		case PrimitiveBrush:
			radius := math32.Sqrt(rng.Float32()) * extent / 2
			theta := rng.Float32() * 2 * math32.Pi
			x, z := radius*math32.Cos(theta), radius*math32.Sin(theta)
			r = Root{
				Position:  math.Vec3{X: x, Z: z},
				Direction: math.Vec3{Y: 1},
				UV:        math.Vec2{X: x/extent + 0.5, Y: z/extent + 0.5},
			}
		case PrimitiveCap:
			y := rng.Float32()
			ring := math32.Sqrt(1 - y*y)
			phi := rng.Float32() * 2 * math32.Pi
			n := math.Vec3{X: ring * math32.Cos(phi), Y: y, Z: ring * math32.Sin(phi)}
			r = Root{
				Position:  n.Scale(extent / 2),
				Direction: n,
				UV:        math.Vec2{X: phi / (2 * math32.Pi), Y: y},
			}
		default:
			u := (float32(i) + 0.5) / float32(count)
			if shape == PrimitiveStratifiedCurtain {
				u = (float32(i) + rng.Float32()) / float32(count)
			}
			r = Root{
				Position:  math.Vec3{X: (u - 0.5) * extent},
				Direction: math.Vec3{Y: -1},
				UV:        math.Vec2{X: u, Y: 0.5},
			}
		}
		r.Scale = one
		roots[i] = r
	}
	return roots
}

// meshRoots samples roots over the reference mesh. An optional density map
// rejects samples, a direction map overrides the surface normal and a
// parameter map scales length, diameter and curl.
func (b *Builder) meshRoots(count int, rng *rand.Rand) []Root {
	ps := b.settings.Procedural
	density := b.optionalMap(ps.DensityMap, "density")
	direction := b.optionalMap(ps.DirectionMap, "direction")
	params := b.optionalMap(ps.ParameterMap, "parameter")

	sampler := mesh.NewSampler(b.mesh.Mesh())
	roots := make([]Root, 0, count)
	for attempts := count * meshPlacementAttempts; len(roots) < count && attempts > 0; attempts-- {
		sp := sampler.Sample(rng)
		if density != nil && rng.Float32() >= density.Bilinear(sp.UV)[0] {
			continue
		}
		r := Root{Position: sp.Position, Direction: sp.Normal, UV: sp.UV, Scale: math.Vec3{X: 1, Y: 1, Z: 1}}
		if direction != nil {
			c := direction.Bilinear(sp.UV)
			d := math.Vec3{X: c[0]*2 - 1, Y: c[1]*2 - 1, Z: c[2]*2 - 1}
			if d.LengthSq() > 1e-6 {
				r.Direction = d.Normalize()
			}
		}
		if params != nil {
			c := params.Bilinear(sp.UV)
			r.Scale = math.Vec3{X: math32.Max(c[0], 1e-3), Y: math32.Max(c[1], 1e-3), Z: math32.Max(c[2], 1e-3)}
		}
		roots = append(roots, r)
	}
	if len(roots) < count {
		b.log.Warn("density map rejected too many samples",
			zap.Int("requested", count), zap.Int("placed", len(roots)))
	}
	return roots
}

func (b *Builder) optionalMap(path, kind string) *texture.Texture {
	if path == "" {
		return nil
	}
	tex, err := b.loadTexture(path)
	if err != nil {
		b.log.Warn("ignoring unreadable placement map", zap.String("map", kind), zap.String("path", path), zap.Error(err))
		return nil
	}
	return tex
}
