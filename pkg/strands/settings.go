package strands

import (
	"github.com/Faultbox/hairbuild/pkg/cluster"
	"github.com/Faultbox/hairbuild/pkg/math"
)

// Settings is the build configuration of one hair asset.
type Settings struct {
	Layout MemoryLayout `yaml:"layout"`
	// Combine merges every curve set of an input into a single group.
	Combine    bool               `yaml:"combine"`
	Resample   ResampleSettings   `yaml:"resample"`
	Attributes AttributeSettings  `yaml:"attributes"`
	LOD        LODSettings        `yaml:"lod"`
	Procedural ProceduralSettings `yaml:"procedural"`
}

// ResampleSettings controls curve uniformization.
type ResampleSettings struct {
	Enabled bool `yaml:"enabled"`
	// Resolution is the particle count per strand. Zero uses the largest
	// vertex count of the input.
	Resolution int `yaml:"resolution"`
	Iterations int `yaml:"iterations"`
}

// AttributeSettings controls per-strand attribute resolution.
type AttributeSettings struct {
	RootUV         RootUVSource `yaml:"root_uv"`
	RootUVFallback math.Vec2    `yaml:"root_uv_fallback"`

	Diameter AttributeSource `yaml:"diameter"`
	// DiameterFallback is in millimeters.
	DiameterFallback float32 `yaml:"diameter_fallback"`

	Taper               AttributeSource `yaml:"taper"`
	TaperOffsetFallback float32         `yaml:"taper_offset_fallback"`
	TaperScaleFallback  float32         `yaml:"taper_scale_fallback"`
}

// LODSettings controls cluster LOD construction.
type LODSettings struct {
	Enabled    bool                       `yaml:"enabled"`
	Sampling   cluster.SamplingMode       `yaml:"sampling"`
	Allocation cluster.AllocationStrategy `yaml:"allocation"`
	Order      cluster.AllocationOrder    `yaml:"order"`
	Refinement bool                       `yaml:"refinement"`
	Iterations int                        `yaml:"iterations"`
	Void       cluster.VoidPolicy         `yaml:"void"`
	Seed       int64                      `yaml:"seed"`
	Base       BaseLODSettings            `yaml:"base"`
	High       HighLODSettings            `yaml:"high"`
}

// BaseLODSettings describes the coarsest levels.
type BaseLODSettings struct {
	Mode BaseLODMode `yaml:"mode"`
	// Fraction of the strand count used as guide count when generated.
	Fraction float64 `yaml:"fraction"`
	// Maps are painted cluster maps, one base level each, in order.
	Maps []ClusterMap `yaml:"maps,omitempty"`
}

// ClusterMap is a painted texture labelling strands by root UV.
type ClusterMap struct {
	Path   string           `yaml:"path"`
	Format ClusterMapFormat `yaml:"format"`
}

// HighLODSettings describes the levels above the base.
type HighLODSettings struct {
	Mode HighLODMode `yaml:"mode"`
	// Growth is the guide count ratio between automatic levels.
	Growth float64 `yaml:"growth"`
	// MaxFraction bounds the automatic levels.
	MaxFraction float64 `yaml:"max_fraction"`
	// Fractions lists manual levels as fractions of the strand count.
	Fractions []float64 `yaml:"fractions,omitempty"`
}

// ProceduralSettings describes generated hair.
type ProceduralSettings struct {
	Placement     Placement `yaml:"placement"`
	Primitive     Primitive `yaml:"primitive"`
	StrandCount   int       `yaml:"strand_count"`
	ParticleCount int       `yaml:"particle_count"`
	// Extent is the size of primitive placements in meters.
	Extent float32 `yaml:"extent"`

	Length            float32 `yaml:"length"`
	LengthVariation   float32 `yaml:"length_variation"`
	Diameter          float32 `yaml:"diameter"`
	DiameterVariation float32 `yaml:"diameter_variation"`

	Curl          bool    `yaml:"curl"`
	CurlRadius    float32 `yaml:"curl_radius"`
	CurlSlope     float32 `yaml:"curl_slope"`
	CurlVariation float32 `yaml:"curl_variation"`

	TaperOffset float32 `yaml:"taper_offset"`
	TaperScale  float32 `yaml:"taper_scale"`

	Frizz          float32 `yaml:"frizz"`
	FrizzFrequency float32 `yaml:"frizz_frequency"`

	DensityMap   string `yaml:"density_map,omitempty"`
	DirectionMap string `yaml:"direction_map,omitempty"`
	ParameterMap string `yaml:"parameter_map,omitempty"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Layout: LayoutInterleaved,
		Resample: ResampleSettings{
			Resolution: 16,
			Iterations: 3,
		},
		Attributes: AttributeSettings{
			RootUV:              RootUVMesh,
			RootUVFallback:      math.Vec2{X: 0.5, Y: 0.5},
			Diameter:            SourceCurves,
			DiameterFallback:    0.08,
			Taper:               SourceCurves,
			TaperOffsetFallback: 0.8,
			TaperScaleFallback:  0.1,
		},
		LOD: LODSettings{
			Enabled:    true,
			Sampling:   cluster.SampleThreePoint,
			Allocation: cluster.AllocateGlobal,
			Order:      cluster.OrderIndex,
			Refinement: true,
			Iterations: 8,
			Void:       cluster.VoidReseed,
			Base: BaseLODSettings{
				Mode:     BaseGenerated,
				Fraction: 0.01,
			},
			High: HighLODSettings{
				Mode:        HighAutomatic,
				Growth:      2,
				MaxFraction: 0.5,
			},
		},
		Procedural: ProceduralSettings{
			Placement:         PlacementPrimitive,
			Primitive:         PrimitiveCurtain,
			StrandCount:       256,
			ParticleCount:     16,
			Extent:            0.2,
			Length:            0.25,
			LengthVariation:   0.1,
			Diameter:          0.08,
			DiameterVariation: 0.1,
			CurlRadius:        0.01,
			CurlSlope:         0.3,
			TaperOffset:       0.8,
			TaperScale:        0.1,
			FrizzFrequency:    20,
		},
	}
}
