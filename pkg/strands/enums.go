package strands

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOption is returned when an option name cannot be parsed.
var ErrUnknownOption = errors.New("unknown option")

// MemoryLayout selects how particle buffers are ordered.
type MemoryLayout uint8

// Memory layouts.
const (
	// LayoutSequential stores the particles of one strand contiguously.
	LayoutSequential MemoryLayout = iota
	// LayoutInterleaved stores particle p of every strand contiguously.
	LayoutInterleaved
)

// RootUVSource is the first source tried when resolving root UVs.
type RootUVSource uint8

// Root UV sources, in fallback order.
const (
	RootUVMesh RootUVSource = iota
	RootUVCurves
	RootUVFallback
)

// AttributeSource is the first source tried when resolving diameter or taper.
type AttributeSource uint8

// Attribute sources, in fallback order.
const (
	SourceCurves AttributeSource = iota
	SourceFallback
)

// BaseLODMode selects how the coarsest LOD levels are built.
type BaseLODMode uint8

// Base LOD modes.
const (
	BaseGenerated BaseLODMode = iota
	BaseUVMapped
)

// HighLODMode selects how the levels above the base are built.
type HighLODMode uint8

// High LOD modes.
const (
	HighAutomatic HighLODMode = iota
	HighManual
)

// ClusterMapFormat selects how a cluster map texel becomes a label.
type ClusterMapFormat uint8

// Cluster map formats.
const (
	// MapClusterID reads the label from the red channel.
	MapClusterID ClusterMapFormat = iota
	// MapClusterColor uses the packed RGB color as label.
	MapClusterColor
)

// Placement selects how procedural roots are placed.
type Placement uint8

// Root placements.
const (
	PlacementPrimitive Placement = iota
	PlacementMesh
	PlacementCustom
)

// Primitive is a built-in root layout.
type Primitive uint8

// Primitives.
const (
	PrimitiveCurtain Primitive = iota
	PrimitiveBrush
	PrimitiveCap
	PrimitiveStratifiedCurtain
)

// Unit is a length unit of curve data.
type Unit uint8

// Units.
const (
	Meters Unit = iota
	Centimeters
	Millimeters
)

var (
	layoutNames    = []string{"sequential", "interleaved"}
	rootUVNames    = []string{"mesh", "curves", "fallback"}
	sourceNames    = []string{"curves", "fallback"}
	baseLODNames   = []string{"generated", "uv_mapped"}
	highLODNames   = []string{"automatic", "manual"}
	mapFormatNames = []string{"id", "color"}
	placementNames = []string{"primitive", "mesh", "custom"}
	primitiveNames = []string{"curtain", "brush", "cap", "stratified_curtain"}
	unitNames      = []string{"m", "cm", "mm"}
)

func enumString(v uint8, names []string) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("unknown(%d)", v)
}

func parseEnum(text []byte, names []string, kind string) (uint8, error) {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range names {
		if n == s {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q (want one of %s)", ErrUnknownOption, kind, s, strings.Join(names, ", "))
}

func (l MemoryLayout) String() string { return enumString(uint8(l), layoutNames) }

// MarshalText implements encoding.TextMarshaler.
func (l MemoryLayout) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *MemoryLayout) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, layoutNames, "memory layout")
	*l = MemoryLayout(v)
	return err
}

func (s RootUVSource) String() string { return enumString(uint8(s), rootUVNames) }

// MarshalText implements encoding.TextMarshaler.
func (s RootUVSource) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *RootUVSource) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, rootUVNames, "root uv source")
	*s = RootUVSource(v)
	return err
}

func (s AttributeSource) String() string { return enumString(uint8(s), sourceNames) }

// MarshalText implements encoding.TextMarshaler.
func (s AttributeSource) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *AttributeSource) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, sourceNames, "attribute source")
	*s = AttributeSource(v)
	return err
}

func (m BaseLODMode) String() string { return enumString(uint8(m), baseLODNames) }

// MarshalText implements encoding.TextMarshaler.
func (m BaseLODMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *BaseLODMode) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, baseLODNames, "base lod mode")
	*m = BaseLODMode(v)
	return err
}

func (m HighLODMode) String() string { return enumString(uint8(m), highLODNames) }

// MarshalText implements encoding.TextMarshaler.
func (m HighLODMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *HighLODMode) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, highLODNames, "high lod mode")
	*m = HighLODMode(v)
	return err
}

func (f ClusterMapFormat) String() string { return enumString(uint8(f), mapFormatNames) }

// MarshalText implements encoding.TextMarshaler.
func (f ClusterMapFormat) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *ClusterMapFormat) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, mapFormatNames, "cluster map format")
	*f = ClusterMapFormat(v)
	return err
}

func (p Placement) String() string { return enumString(uint8(p), placementNames) }

// MarshalText implements encoding.TextMarshaler.
func (p Placement) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Placement) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, placementNames, "placement")
	*p = Placement(v)
	return err
}

func (p Primitive) String() string { return enumString(uint8(p), primitiveNames) }

// MarshalText implements encoding.TextMarshaler.
func (p Primitive) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Primitive) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, primitiveNames, "primitive")
	*p = Primitive(v)
	return err
}

func (u Unit) String() string { return enumString(uint8(u), unitNames) }

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, unitNames, "unit")
	*u = Unit(v)
	return err
}

// Meters returns the factor converting u to meters.
func (u Unit) Meters() float32 {
	switch u {
	case Centimeters:
		return 0.01
	case Millimeters:
		return 0.001
	default:
		return 1
	}
}

// Millimeters returns the factor converting u to millimeters.
func (u Unit) Millimeters() float32 {
	switch u {
	case Centimeters:
		return 10
	case Millimeters:
		return 1
	default:
		return 1000
	}
}
