package strands

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/hairbuild/pkg/math"
)

// Curve set validation errors.
var (
	ErrNoCurves         = errors.New("curve set has no curves")
	ErrVertexCount      = errors.New("vertex count mismatch")
	ErrNegativeVertices = errors.New("negative vertex count")
)

// Features is a set of optional curve set streams.
type Features uint8

// Optional streams.
const (
	FeatureVertexUV Features = 1 << iota
	FeatureVertexDiameter
	FeatureCurveUV
	FeatureCurveDiameter
	FeatureCurveTaper
)

// Has reports whether every feature in f2 is set.
func (f Features) Has(f2 Features) bool { return f&f2 == f2 }

func (f Features) String() string {
	names := []string{"vertex_uv", "vertex_diameter", "curve_uv", "curve_diameter", "curve_taper"}
	out := ""
	for i, n := range names {
		if f&(1<<i) == 0 {
			continue
		}
		if out != "" {
			out += "|"
		}
		out += n
	}
	if out == "" {
		return "none"
	}
	return out
}

// Taper describes how a strand narrows towards its tip: diameter starts
// shrinking at Offset (a fraction of the strand) and reaches Scale times the
// maximum diameter at the tip.
type Taper struct {
	Offset float32
	Scale  float32
}

// CurveSet is raw curve input. Vertex streams are concatenated in curve order.
type CurveSet struct {
	Name         string
	VertexCounts []int
	Positions    []math.Vec3

	VertexUVs       []math.Vec2
	VertexDiameters []float32

	CurveUVs       []math.Vec2
	CurveDiameters []float32
	CurveTapers    []Taper

	PositionUnit Unit
	DiameterUnit Unit
}

// CurveProvider supplies curve sets from an external source.
type CurveProvider interface {
	Curves(ctx context.Context) ([]*CurveSet, error)
}

// CurveCount returns the number of curves.
func (c *CurveSet) CurveCount() int { return len(c.VertexCounts) }

// VertexCount returns the total number of vertices declared by VertexCounts.
func (c *CurveSet) VertexCount() int {
	n := 0
	for _, v := range c.VertexCounts {
		n += v
	}
	return n
}

// Validate reports every structural problem that makes the set unusable.
func (c *CurveSet) Validate() error {
	if c.CurveCount() == 0 {
		return ErrNoCurves
	}
	var err error
	for i, n := range c.VertexCounts {
		if n < 0 {
			err = multierr.Append(err, fmt.Errorf("%w: curve %d has %d", ErrNegativeVertices, i, n))
		}
	}
	if total := c.VertexCount(); total != len(c.Positions) {
		err = multierr.Append(err, fmt.Errorf("%w: %d declared, %d positions", ErrVertexCount, total, len(c.Positions)))
	}
	return err
}

// Features returns the optional streams that are present and complete, and
// those that are present but have the wrong length.
func (c *CurveSet) Features() (available, incomplete Features) {
	check := func(f Features, have, want int) {
		switch {
		case have == 0:
		case have == want:
			available |= f
		default:
			incomplete |= f
		}
	}
	vertices, curves := c.VertexCount(), c.CurveCount()
	check(FeatureVertexUV, len(c.VertexUVs), vertices)
	check(FeatureVertexDiameter, len(c.VertexDiameters), vertices)
	check(FeatureCurveUV, len(c.CurveUVs), curves)
	check(FeatureCurveDiameter, len(c.CurveDiameters), curves)
	check(FeatureCurveTaper, len(c.CurveTapers), curves)
	return available, incomplete
}

// Offsets returns the index of the first vertex of every curve.
func (c *CurveSet) Offsets() []int {
	offsets := make([]int, len(c.VertexCounts))
	n := 0
	for i, v := range c.VertexCounts {
		offsets[i] = n
		n += v
	}
	return offsets
}

// normalized returns a copy with positions in meters, diameters in
// millimeters and only the streams in keep.
func (c *CurveSet) normalized(keep Features) *CurveSet {
	ps, ds := c.PositionUnit.Meters(), c.DiameterUnit.Millimeters()
	out := &CurveSet{
		Name:         c.Name,
		VertexCounts: append([]int(nil), c.VertexCounts...),
		Positions:    make([]math.Vec3, len(c.Positions)),
		PositionUnit: Meters,
		DiameterUnit: Millimeters,
	}
	for i, p := range c.Positions {
		out.Positions[i] = p.Scale(ps)
	}
	if keep.Has(FeatureVertexUV) {
		out.VertexUVs = append([]math.Vec2(nil), c.VertexUVs...)
	}
	if keep.Has(FeatureVertexDiameter) {
		out.VertexDiameters = scaled(c.VertexDiameters, ds)
	}
	if keep.Has(FeatureCurveUV) {
		out.CurveUVs = append([]math.Vec2(nil), c.CurveUVs...)
	}
	if keep.Has(FeatureCurveDiameter) {
		out.CurveDiameters = scaled(c.CurveDiameters, ds)
	}
	if keep.Has(FeatureCurveTaper) {
		out.CurveTapers = append([]Taper(nil), c.CurveTapers...)
	}
	return out
}

func scaled(in []float32, s float32) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = v * s
	}
	return out
}

// CombineCurves merges sets into one. Units are normalized first and only
// streams available in every set survive.
func CombineCurves(name string, sets []*CurveSet) *CurveSet {
	if len(sets) == 0 {
		return &CurveSet{Name: name}
	}
	common := FeatureVertexUV | FeatureVertexDiameter | FeatureCurveUV | FeatureCurveDiameter | FeatureCurveTaper
	for _, s := range sets {
		available, _ := s.Features()
		common &= available
	}
	out := &CurveSet{Name: name, PositionUnit: Meters, DiameterUnit: Millimeters}
	for _, s := range sets {
		n := s.normalized(common)
		out.VertexCounts = append(out.VertexCounts, n.VertexCounts...)
		out.Positions = append(out.Positions, n.Positions...)
		out.VertexUVs = append(out.VertexUVs, n.VertexUVs...)
		out.VertexDiameters = append(out.VertexDiameters, n.VertexDiameters...)
		out.CurveUVs = append(out.CurveUVs, n.CurveUVs...)
		out.CurveDiameters = append(out.CurveDiameters, n.CurveDiameters...)
		out.CurveTapers = append(out.CurveTapers, n.CurveTapers...)
	}
	return out
}

// subset returns the curves listed in keep, in that order.
func (c *CurveSet) subset(keep []int) *CurveSet {
	available, _ := c.Features()
	offsets := c.Offsets()
	out := &CurveSet{Name: c.Name, PositionUnit: c.PositionUnit, DiameterUnit: c.DiameterUnit}
	for _, i := range keep {
		lo, hi := offsets[i], offsets[i]+c.VertexCounts[i]
		out.VertexCounts = append(out.VertexCounts, c.VertexCounts[i])
		out.Positions = append(out.Positions, c.Positions[lo:hi]...)
		if available.Has(FeatureVertexUV) {
			out.VertexUVs = append(out.VertexUVs, c.VertexUVs[lo:hi]...)
		}
		if available.Has(FeatureVertexDiameter) {
			out.VertexDiameters = append(out.VertexDiameters, c.VertexDiameters[lo:hi]...)
		}
		if available.Has(FeatureCurveUV) {
			out.CurveUVs = append(out.CurveUVs, c.CurveUVs[i])
		}
		if available.Has(FeatureCurveDiameter) {
			out.CurveDiameters = append(out.CurveDiameters, c.CurveDiameters[i])
		}
		if available.Has(FeatureCurveTaper) {
			out.CurveTapers = append(out.CurveTapers, c.CurveTapers[i])
		}
	}
	return out
}
