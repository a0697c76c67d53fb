package cluster

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOption is returned when an option name cannot be parsed.
var ErrUnknownOption = errors.New("unknown option")

// SamplingMode selects the positions of a strand used as its clustering feature.
type SamplingMode uint8

// Sampling modes.
const (
	SampleRoot       SamplingMode = iota // root particle only
	SampleStrand                         // every particle
	SampleThreePoint                     // root, middle and tip
)

// AllocationStrategy selects how new cluster centers are seeded.
type AllocationStrategy uint8

// Allocation strategies.
const (
	// AllocateGlobal draws seeds by systematic sampling over the cumulative
	// strand weight of all candidates.
	AllocateGlobal AllocationStrategy = iota
	// AllocateSplitWeight repeatedly splits the heaviest cluster at its
	// member farthest from the center.
	AllocateSplitWeight
	// AllocateSplitReach repeatedly splits the cluster with the farthest member.
	AllocateSplitReach
)

// AllocationOrder selects the order in which candidate strands are visited
// while seeding; it also breaks ties.
type AllocationOrder uint8

// Allocation orders.
const (
	OrderIndex    AllocationOrder = iota // strand index ascending
	OrderShuffled                        // seeded permutation
	OrderWeight                          // strand weight descending
)

// VoidPolicy decides what happens to clusters left without members after relaxation.
type VoidPolicy uint8

// Void policies.
const (
	VoidReseed  VoidPolicy = iota // move the farthest movable strand into the empty cluster
	VoidDiscard                   // drop the empty cluster
)

var (
	samplingNames   = []string{"root", "strand", "three_point"}
	allocationNames = []string{"global", "split_weight", "split_reach"}
	orderNames      = []string{"index", "shuffled", "weight"}
	voidNames       = []string{"reseed", "discard"}
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

func (m SamplingMode) String() string { return enumString(uint8(m), samplingNames) }

// MarshalText implements encoding.TextMarshaler.
func (m SamplingMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *SamplingMode) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, samplingNames, "sampling mode")
	*m = SamplingMode(v)
	return err
}

func (a AllocationStrategy) String() string { return enumString(uint8(a), allocationNames) }

// MarshalText implements encoding.TextMarshaler.
func (a AllocationStrategy) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AllocationStrategy) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, allocationNames, "allocation strategy")
	*a = AllocationStrategy(v)
	return err
}

func (o AllocationOrder) String() string { return enumString(uint8(o), orderNames) }

// MarshalText implements encoding.TextMarshaler.
func (o AllocationOrder) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *AllocationOrder) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, orderNames, "allocation order")
	*o = AllocationOrder(v)
	return err
}

func (p VoidPolicy) String() string { return enumString(uint8(p), voidNames) }

// MarshalText implements encoding.TextMarshaler.
func (p VoidPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *VoidPolicy) UnmarshalText(text []byte) error {
	v, err := parseEnum(text, voidNames, "void policy")
	*p = VoidPolicy(v)
	return err
}
