package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"

	"github.com/Faultbox/hairbuild/pkg/math"
	"github.com/Faultbox/hairbuild/pkg/strands"
)

// Strand group file errors.
var (
	ErrInvalidStrandsMagic       = errors.New("invalid strand group file magic: expected 'HSTR'")
	ErrUnsupportedStrandsVersion = errors.New("unsupported strand group file version")
	ErrTruncatedStrandsData      = errors.New("truncated strand group file data")
	ErrInconsistentStrandGroup   = errors.New("inconsistent strand group")
)

// StrandsMagic starts every strand group file.
const StrandsMagic = "HSTR"

// StrandsVersion is the version written by EncodeStrandGroups.
var StrandsVersion = Version{Major: 1, Minor: 0}

// Optional buffer flags.
const (
	flagTexCoords uint8 = 1 << iota
	flagDiameters
)

// StrandGroupFile is a parsed strand group file.
type StrandGroupFile struct {
	Version Version
	Groups  []*strands.StrandGroup
}

type groupHeader struct {
	Strands   uint32
	Particles uint32
	Layout    uint8
	Flags     uint8
}

// EncodeStrandGroups writes groups in the strand group file format.
func EncodeStrandGroups(w io.Writer, groups []*strands.StrandGroup) error {
	bw := bufio.NewWriter(w)
	le := binary.LittleEndian
	if _, err := bw.WriteString(StrandsMagic); err != nil {
		return err
	}
	if err := binary.Write(bw, le, StrandsVersion); err != nil {
		return err
	}
	if err := binary.Write(bw, le, uint32(len(groups))); err != nil {
		return err
	}
	for _, g := range groups {
		if err := checkGroup(g); err != nil {
			return fmt.Errorf("group %q: %w", g.Name, err)
		}
		if err := writeName(bw, g.Name); err != nil {
			return err
		}
		h := groupHeader{
			Strands:   uint32(g.StrandCount),
			Particles: uint32(g.ParticleCount),
			Layout:    uint8(g.Layout),
		}
		if len(g.TexCoords) > 0 {
			h.Flags |= flagTexCoords
		}
		if len(g.Diameters) > 0 {
			h.Flags |= flagDiameters
		}
		values := []any{h, g.Stats, g.Positions}
		if h.Flags&flagTexCoords != 0 {
			values = append(values, g.TexCoords)
		}
		if h.Flags&flagDiameters != 0 {
			values = append(values, g.Diameters)
		}
		values = append(values,
			g.RootUV,
			g.RootScale,
			uint32(g.LOD.Count()),
			toUint32s(g.LOD.GuideCount),
			toUint32s(g.LOD.GuideIndex),
			g.LOD.GuideCarry,
			g.LOD.GuideReach,
		)
		for _, v := range values {
			if err := binary.Write(bw, le, v); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// checkGroup verifies every buffer has the length its counts imply.
func checkGroup(g *strands.StrandGroup) error {
	n, p := g.StrandCount, g.ParticleCount
	var err error
	check := func(name string, have, want int, optional bool) {
		if optional && have == 0 {
			return
		}
		if have != want {
			err = multierr.Append(err, fmt.Errorf("%w: %s has %d entries, want %d", ErrInconsistentStrandGroup, name, have, want))
		}
	}
	check("positions", len(g.Positions), n*p, false)
	check("texcoords", len(g.TexCoords), n*p, true)
	check("diameters", len(g.Diameters), n*p, true)
	check("root uv", len(g.RootUV), n, false)
	check("root scale", len(g.RootScale), n, false)
	levels := g.LOD.Count()
	check("guide index", len(g.LOD.GuideIndex), levels*n, false)
	check("guide carry", len(g.LOD.GuideCarry), levels*n, false)
	check("guide reach", len(g.LOD.GuideReach), levels*n, false)
	return err
}

// WriteStrandGroupsFile encodes groups to path.
func WriteStrandGroupsFile(path string, groups []*strands.StrandGroup) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating strand group file: %w", err)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	return EncodeStrandGroups(f, groups)
}

// ParseStrandGroupsFile reads and parses a strand group file.
func ParseStrandGroupsFile(path string) (*StrandGroupFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading strand group file: %w", err)
	}
	return ParseStrandGroups(data)
}

// ParseStrandGroups parses strand group file data.
func ParseStrandGroups(data []byte) (*StrandGroupFile, error) {
	r := bytes.NewReader(data)

	ok, err := readMagic(r, StrandsMagic)
	if err != nil {
		return nil, fmt.Errorf("%w: reading magic", ErrTruncatedStrandsData)
	}
	if !ok {
		return nil, ErrInvalidStrandsMagic
	}

	file := &StrandGroupFile{}
	if err := binary.Read(r, binary.LittleEndian, &file.Version); err != nil {
		return nil, fmt.Errorf("%w: reading version", ErrTruncatedStrandsData)
	}
	if file.Version.Major != StrandsVersion.Major {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStrandsVersion, file.Version)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: reading group count", ErrTruncatedStrandsData)
	}
	for i := uint32(0); i < count; i++ {
		g, err := readStrandGroup(r)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		file.Groups = append(file.Groups, g)
	}
	return file, nil
}

func readStrandGroup(r *bytes.Reader) (*strands.StrandGroup, error) {
	le := binary.LittleEndian
	name, err := readName(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading name", ErrTruncatedStrandsData)
	}
	var h groupHeader
	if err := binary.Read(r, le, &h); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedStrandsData)
	}
	n, p := int(h.Strands), int(h.Particles)
	if uint64(h.Strands)*uint64(h.Particles)*12 > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: %d strands of %d particles", ErrTruncatedStrandsData, n, p)
	}
	g := &strands.StrandGroup{
		Name:          name,
		StrandCount:   n,
		ParticleCount: p,
		Layout:        strands.MemoryLayout(h.Layout),
	}
	g.LOD.StrandCount = n
	if err := binary.Read(r, le, &g.Stats); err != nil {
		return nil, fmt.Errorf("%w: reading stats", ErrTruncatedStrandsData)
	}
	if g.Positions, err = readSlice[math.Vec3](r, n*p, 12); err != nil {
		return nil, fmt.Errorf("%w: reading positions", ErrTruncatedStrandsData)
	}
	if h.Flags&flagTexCoords != 0 {
		if g.TexCoords, err = readSlice[math.Vec2](r, n*p, 8); err != nil {
			return nil, fmt.Errorf("%w: reading texcoords", ErrTruncatedStrandsData)
		}
	}
	if h.Flags&flagDiameters != 0 {
		if g.Diameters, err = readSlice[float32](r, n*p, 4); err != nil {
			return nil, fmt.Errorf("%w: reading diameters", ErrTruncatedStrandsData)
		}
	}
	if g.RootUV, err = readSlice[math.Vec2](r, n, 8); err != nil {
		return nil, fmt.Errorf("%w: reading root uv", ErrTruncatedStrandsData)
	}
	if g.RootScale, err = readSlice[math.Vec4](r, n, 16); err != nil {
		return nil, fmt.Errorf("%w: reading root scale", ErrTruncatedStrandsData)
	}

	var levels uint32
	if err := binary.Read(r, le, &levels); err != nil {
		return nil, fmt.Errorf("%w: reading level count", ErrTruncatedStrandsData)
	}
	counts, err := readSlice[uint32](r, int(levels), 4)
	if err != nil {
		return nil, fmt.Errorf("%w: reading guide counts", ErrTruncatedStrandsData)
	}
	g.LOD.GuideCount = toInts(counts)
	index, err := readSlice[uint32](r, int(levels)*n, 4)
	if err != nil {
		return nil, fmt.Errorf("%w: reading guide index", ErrTruncatedStrandsData)
	}
	g.LOD.GuideIndex = toInts(index)
	if g.LOD.GuideCarry, err = readSlice[float32](r, int(levels)*n, 4); err != nil {
		return nil, fmt.Errorf("%w: reading guide carry", ErrTruncatedStrandsData)
	}
	if g.LOD.GuideReach, err = readSlice[float32](r, int(levels)*n, 4); err != nil {
		return nil, fmt.Errorf("%w: reading guide reach", ErrTruncatedStrandsData)
	}
	for i, guide := range g.LOD.GuideIndex {
		if guide >= n {
			return nil, fmt.Errorf("%w: guide %d of entry %d out of range", ErrInconsistentStrandGroup, guide, i)
		}
	}
	return g, nil
}
