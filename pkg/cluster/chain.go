package cluster

// Chain records committed clusterings as LOD levels of strictly increasing
// guide count. Per-strand arrays are flattened level by level:
// entry level*StrandCount+i belongs to strand i at that level.
type Chain struct {
	StrandCount int
	GuideCount  []int
	// GuideIndex holds the guide strand of every strand.
	GuideIndex []int
	// GuideCarry and GuideReach hold the cluster values on guide strands and
	// zero elsewhere.
	GuideCarry []float32
	GuideReach []float32
}

// NewChain returns an empty chain for strandCount strands.
func NewChain(strandCount int) *Chain {
	return &Chain{StrandCount: strandCount}
}

// Count returns the number of levels.
func (c *Chain) Count() int { return len(c.GuideCount) }

// Last returns the guide count of the finest level, or 0 for an empty chain.
func (c *Chain) Last() int {
	if len(c.GuideCount) == 0 {
		return 0
	}
	return c.GuideCount[len(c.GuideCount)-1]
}

// Complete reports whether the finest level has every strand as a guide.
func (c *Chain) Complete() bool {
	return c.StrandCount > 0 && c.Last() == c.StrandCount
}

// Increment appends the committed state of s as a new level. It returns
// false and records nothing when s does not have more clusters than the
// finest level.
func (c *Chain) Increment(s *Set) bool {
	k := s.ClusterCount()
	if k <= c.Last() {
		return false
	}
	base := len(c.GuideIndex)
	c.GuideCount = append(c.GuideCount, k)
	c.GuideIndex = append(c.GuideIndex, make([]int, c.StrandCount)...)
	c.GuideCarry = append(c.GuideCarry, make([]float32, c.StrandCount)...)
	c.GuideReach = append(c.GuideReach, make([]float32, c.StrandCount)...)
	for i := 0; i < c.StrandCount; i++ {
		c.GuideIndex[base+i] = s.Guide(s.ClusterOf(i))
	}
	for cl := 0; cl < k; cl++ {
		g := s.Guide(cl)
		c.GuideCarry[base+g] = float32(s.Carry(cl))
		c.GuideReach[base+g] = float32(s.Reach(cl))
	}
	return true
}

// Level returns views of the per-strand arrays of level k.
func (c *Chain) Level(k int) (index []int, carry, reach []float32) {
	lo, hi := k*c.StrandCount, (k+1)*c.StrandCount
	return c.GuideIndex[lo:hi], c.GuideCarry[lo:hi], c.GuideReach[lo:hi]
}

// Guides returns the guide strands of level k in ascending order.
func (c *Chain) Guides(k int) []int {
	index, _, _ := c.Level(k)
	guides := make([]int, 0, c.GuideCount[k])
	for i, g := range index {
		if g == i {
			guides = append(guides, i)
		}
	}
	return guides
}

// ApplyShuffle reorders the per-strand arrays of every level into final order.
func (c *Chain) ApplyShuffle(r Remapping) {
	for k := range c.GuideCount {
		index, carry, reach := c.Level(k)
		ShuffleStrands(index, r.Src)
		ShuffleStrands(carry, r.Src)
		ShuffleStrands(reach, r.Src)
	}
}

// ApplyRemapping rewrites the guide indices of every level into final indices.
func (c *Chain) ApplyRemapping(r Remapping) {
	r.RemapIndices(c.GuideIndex)
}
