package formats

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"

	"github.com/Faultbox/hairbuild/pkg/math"
	"github.com/Faultbox/hairbuild/pkg/strands"
)

// Curve file errors.
var (
	ErrInvalidCurvesMagic       = errors.New("invalid curve file magic: expected 'HCRV'")
	ErrUnsupportedCurvesVersion = errors.New("unsupported curve file version")
	ErrTruncatedCurvesData      = errors.New("truncated curve file data")
)

// CurvesMagic starts every curve file.
const CurvesMagic = "HCRV"

// CurvesVersion is the version written by EncodeCurves.
var CurvesVersion = Version{Major: 1, Minor: 0}

// CurveFile is a parsed curve file.
type CurveFile struct {
	Version Version
	Sets    []*strands.CurveSet
}

// EncodeCurves writes sets in the curve file format. Only complete optional
// streams are stored.
func EncodeCurves(w io.Writer, sets []*strands.CurveSet) error {
	bw := bufio.NewWriter(w)
	le := binary.LittleEndian
	if _, err := bw.WriteString(CurvesMagic); err != nil {
		return err
	}
	if err := binary.Write(bw, le, CurvesVersion); err != nil {
		return err
	}
	if err := binary.Write(bw, le, uint32(len(sets))); err != nil {
		return err
	}
	for _, s := range sets {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("curve set %q: %w", s.Name, err)
		}
		available, _ := s.Features()
		if err := writeName(bw, s.Name); err != nil {
			return err
		}
		header := []any{
			uint32(s.CurveCount()),
			uint8(available),
			uint8(s.PositionUnit),
			uint8(s.DiameterUnit),
			toUint32s(s.VertexCounts),
			s.Positions,
		}
		for _, v := range header {
			if err := binary.Write(bw, le, v); err != nil {
				return err
			}
		}
		streams := []struct {
			feature strands.Features
			data    any
		}{
			{strands.FeatureVertexUV, s.VertexUVs},
			{strands.FeatureVertexDiameter, s.VertexDiameters},
			{strands.FeatureCurveUV, s.CurveUVs},
			{strands.FeatureCurveDiameter, s.CurveDiameters},
			{strands.FeatureCurveTaper, s.CurveTapers},
		}
		for _, st := range streams {
			if !available.Has(st.feature) {
				continue
			}
			if err := binary.Write(bw, le, st.data); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteCurvesFile encodes sets to path.
func WriteCurvesFile(path string, sets []*strands.CurveSet) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating curve file: %w", err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return EncodeCurves(f, sets)
}

// ParseCurvesFile reads and parses a curve file.
func ParseCurvesFile(path string) (*CurveFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading curve file: %w", err)
	}
	return ParseCurves(data)
}

// ParseCurves parses curve file data.
func ParseCurves(data []byte) (*CurveFile, error) {
	r := bytes.NewReader(data)

	ok, err := readMagic(r, CurvesMagic)
	if err != nil {
		return nil, fmt.Errorf("%w: reading magic", ErrTruncatedCurvesData)
	}
	if !ok {
		return nil, ErrInvalidCurvesMagic
	}

	file := &CurveFile{}
	if err := binary.Read(r, binary.LittleEndian, &file.Version); err != nil {
		return nil, fmt.Errorf("%w: reading version", ErrTruncatedCurvesData)
	}
	if file.Version.Major != CurvesVersion.Major {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurvesVersion, file.Version)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: reading set count", ErrTruncatedCurvesData)
	}
	for i := uint32(0); i < count; i++ {
		s, err := readCurveSet(r)
		if err != nil {
			return nil, fmt.Errorf("set %d: %w", i, err)
		}
		file.Sets = append(file.Sets, s)
	}
	return file, nil
}

func readCurveSet(r *bytes.Reader) (*strands.CurveSet, error) {
	le := binary.LittleEndian
	name, err := readName(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading name", ErrTruncatedCurvesData)
	}
	var header struct {
		Curves       uint32
		Features     uint8
		PositionUnit uint8
		DiameterUnit uint8
	}
	if err := binary.Read(r, le, &header); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedCurvesData)
	}
	s := &strands.CurveSet{
		Name:         name,
		PositionUnit: strands.Unit(header.PositionUnit),
		DiameterUnit: strands.Unit(header.DiameterUnit),
	}
	curves := int(header.Curves)
	counts, err := readSlice[uint32](r, curves, 4)
	if err != nil {
		return nil, fmt.Errorf("%w: reading vertex counts", ErrTruncatedCurvesData)
	}
	s.VertexCounts = toInts(counts)
	vertices := s.VertexCount()

	if s.Positions, err = readSlice[math.Vec3](r, vertices, 12); err != nil {
		return nil, fmt.Errorf("%w: reading positions", ErrTruncatedCurvesData)
	}
	features := strands.Features(header.Features)
	if features.Has(strands.FeatureVertexUV) {
		if s.VertexUVs, err = readSlice[math.Vec2](r, vertices, 8); err != nil {
			return nil, fmt.Errorf("%w: reading vertex uvs", ErrTruncatedCurvesData)
		}
	}
	if features.Has(strands.FeatureVertexDiameter) {
		if s.VertexDiameters, err = readSlice[float32](r, vertices, 4); err != nil {
			return nil, fmt.Errorf("%w: reading vertex diameters", ErrTruncatedCurvesData)
		}
	}
	if features.Has(strands.FeatureCurveUV) {
		if s.CurveUVs, err = readSlice[math.Vec2](r, curves, 8); err != nil {
			return nil, fmt.Errorf("%w: reading curve uvs", ErrTruncatedCurvesData)
		}
	}
	if features.Has(strands.FeatureCurveDiameter) {
		if s.CurveDiameters, err = readSlice[float32](r, curves, 4); err != nil {
			return nil, fmt.Errorf("%w: reading curve diameters", ErrTruncatedCurvesData)
		}
	}
	if features.Has(strands.FeatureCurveTaper) {
		if s.CurveTapers, err = readSlice[strands.Taper](r, curves, 8); err != nil {
			return nil, fmt.Errorf("%w: reading curve tapers", ErrTruncatedCurvesData)
		}
	}
	return s, nil
}

// CurveFileProvider supplies the curve sets stored in a set of curve files.
type CurveFileProvider struct {
	Paths []string
}

// Curves parses every file in order and concatenates their sets.
func (p CurveFileProvider) Curves(ctx context.Context) ([]*strands.CurveSet, error) {
	var sets []*strands.CurveSet
	for _, path := range p.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, err := ParseCurvesFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		sets = append(sets, file.Sets...)
	}
	return sets, nil
}

var _ strands.CurveProvider = CurveFileProvider{}
