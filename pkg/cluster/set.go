// Package cluster groups strands into clusters that share a simulated guide
// strand and records successive clusterings as a level-of-detail chain.
package cluster

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	hmath "github.com/Faultbox/hairbuild/pkg/math"
	"github.com/Faultbox/hairbuild/pkg/spatial"
)

// minWeight keeps every strand selectable by weighted allocation.
const minWeight = 1e-9

// Samples is the strand data a Set clusters.
type Samples struct {
	StrandCount   int
	ParticleCount int
	// Position returns particle p of strand s.
	Position func(s, p int) hmath.Vec3
	// Weights holds one weight per strand. Nil means uniform.
	Weights []float64
}

// Options configures a Set.
type Options struct {
	Mode SamplingMode
	Void VoidPolicy
	Seed int64
}

type clusterState struct {
	guide  int
	depth  int
	carry  float64
	reach  float64
	center []float64
	fixed  bool
}

// Set holds the strand to cluster assignment during LOD construction.
//
// Clusters present before an expansion keep their guide and their center;
// only the clusters added by the expansion are relaxed. Guides therefore
// survive from one committed level to the next.
type Set struct {
	opts        Options
	sampleCount int
	dims        int
	resolve     []int
	features    []float64
	weights     []float64
	totalWeight float64
	rng         *rand.Rand

	assign   []int
	clusters []clusterState

	committedAssign   []int
	committedClusters []clusterState
	level             int
}

// NewSet extracts the clustering features of every strand.
func NewSet(samples Samples, opts Options) *Set {
	s := &Set{
		opts:        opts,
		sampleCount: samples.StrandCount,
		resolve:     resolveParticles(opts.Mode, samples.ParticleCount),
		rng:         rand.New(rand.NewSource(opts.Seed)),
	}
	s.dims = 3 * len(s.resolve)
	s.features = make([]float64, s.sampleCount*s.dims)
	norm := 1 / math.Sqrt(float64(len(s.resolve)))
	for i := 0; i < s.sampleCount; i++ {
		f := s.feature(i)
		for k, p := range s.resolve {
			v := samples.Position(i, p)
			f[3*k] = float64(v.X) * norm
			f[3*k+1] = float64(v.Y) * norm
			f[3*k+2] = float64(v.Z) * norm
		}
	}
	s.weights = make([]float64, s.sampleCount)
	for i := range s.weights {
		w := 1.0
		if samples.Weights != nil {
			w = samples.Weights[i]
		}
		s.weights[i] = math.Max(w, minWeight)
	}
	s.totalWeight = floats.Sum(s.weights)
	s.assign = make([]int, s.sampleCount)
	for i := range s.assign {
		s.assign[i] = -1
	}
	s.committedAssign = append([]int(nil), s.assign...)
	return s
}

// resolveParticles lists the particle indices contributing to a feature.
func resolveParticles(mode SamplingMode, particles int) []int {
	if particles < 1 {
		particles = 1
	}
	switch mode {
	case SampleStrand:
		r := make([]int, particles)
		for i := range r {
			r[i] = i
		}
		return r
	case SampleThreePoint:
		if particles < 3 {
			return resolveParticles(SampleStrand, particles)
		}
		return []int{0, (particles - 1) / 2, particles - 1}
	default:
		return []int{0}
	}
}

func (s *Set) feature(i int) []float64 {
	return s.features[i*s.dims : (i+1)*s.dims]
}

// SampleCount returns the number of strands.
func (s *Set) SampleCount() int { return s.sampleCount }

// Level returns the number of commits so far.
func (s *Set) Level() int { return s.level }

// Resolve returns the particle indices sampled per strand.
func (s *Set) Resolve() []int { return s.resolve }

// ClusterCount returns the number of committed clusters.
func (s *Set) ClusterCount() int { return len(s.committedClusters) }

// ClusterOf returns the committed cluster of strand i, or -1 before the first commit.
func (s *Set) ClusterOf(i int) int { return s.committedAssign[i] }

// Guide returns the guide strand of committed cluster c.
func (s *Set) Guide(c int) int { return s.committedClusters[c].guide }

// Depth returns the level at which committed cluster c was created.
func (s *Set) Depth(c int) int { return s.committedClusters[c].depth }

// Carry returns the share of the total strand weight represented by cluster c.
func (s *Set) Carry(c int) float64 { return s.committedClusters[c].carry }

// Reach returns the largest feature distance between the guide of cluster c
// and any of its members.
func (s *Set) Reach(c int) float64 { return s.committedClusters[c].reach }

// ExpandProcedural grows the set to target clusters. The target is clamped to
// [1, SampleCount]. It returns false and leaves the set untouched when no new
// cluster could be added.
func (s *Set) ExpandProcedural(target int, strategy AllocationStrategy, order AllocationOrder, iterations int) bool {
	target = clampCount(target, s.sampleCount)
	k0 := len(s.clusters)
	if target <= k0 {
		return false
	}
	s.freeze()
	seeds := s.allocate(target-k0, strategy, order)
	for _, seed := range seeds {
		s.addCluster(seed, s.feature(seed))
	}
	s.assignNearest()
	for it := 0; it < iterations; it++ {
		s.recenter()
		s.assignNearest()
	}
	return s.finishExpansion(k0)
}

// ExpandPreassigned adds one cluster per label in [0, count) whose strands do
// not already contain a guide. Strands of a label holding existing guides are
// split among those guides. Strands with a label outside [0, count) join the
// nearest cluster. Iterations greater than zero relax the new clusters like
// ExpandProcedural does.
func (s *Set) ExpandPreassigned(count int, labels []int, iterations int) bool {
	if count <= 0 || len(labels) != s.sampleCount {
		return false
	}
	k0 := len(s.clusters)
	s.freeze()

	valid := func(l int) bool { return l >= 0 && l < count }
	guidesIn := make([][]int, count)
	for c := 0; c < k0; c++ {
		if l := labels[s.clusters[c].guide]; valid(l) {
			guidesIn[l] = append(guidesIn[l], c)
		}
	}

	sums := make([][]float64, count)
	wsum := make([]float64, count)
	for i, l := range labels {
		if !valid(l) || len(guidesIn[l]) > 0 {
			continue
		}
		if sums[l] == nil {
			sums[l] = make([]float64, s.dims)
		}
		floats.AddScaled(sums[l], s.weights[i], s.feature(i))
		wsum[l] += s.weights[i]
	}
	labelCluster := make([]int, count)
	for l := range labelCluster {
		labelCluster[l] = -1
		if sums[l] == nil {
			continue
		}
		floats.Scale(1/wsum[l], sums[l])
		labelCluster[l] = s.addCluster(-1, sums[l])
	}
	if len(s.clusters) == k0 {
		return false
	}

	index := s.centerIndex()
	for i, l := range labels {
		switch {
		case valid(l) && labelCluster[l] >= 0:
			s.assign[i] = labelCluster[l]
		case valid(l):
			s.assign[i] = s.nearestOf(i, guidesIn[l])
		default:
			s.assign[i], _ = index.Nearest(s.feature(i))
		}
	}
	s.pinGuides()
	for it := 0; it < iterations; it++ {
		s.recenter()
		s.assignNearest()
	}
	return s.finishExpansion(k0)
}

// Commit freezes the working assignment, computing carry and reach per
// cluster, and advances the level.
func (s *Set) Commit() {
	wsum := make([]float64, len(s.clusters))
	reach := make([]float64, len(s.clusters))
	for i, c := range s.assign {
		if c < 0 {
			continue
		}
		wsum[c] += s.weights[i]
		d := floats.Distance(s.feature(i), s.feature(s.clusters[c].guide), 2)
		reach[c] = math.Max(reach[c], d)
	}
	for c := range s.clusters {
		s.clusters[c].carry = wsum[c] / s.totalWeight
		s.clusters[c].reach = reach[c]
		s.clusters[c].fixed = true
	}
	s.committedAssign = append(s.committedAssign[:0], s.assign...)
	s.committedClusters = append(s.committedClusters[:0], s.clusters...)
	s.level++
}

func clampCount(n, max int) int {
	if n < 1 {
		n = 1
	}
	if n > max {
		n = max
	}
	return n
}

// freeze marks every current cluster as anchored.
func (s *Set) freeze() {
	for c := range s.clusters {
		s.clusters[c].fixed = true
	}
}

func (s *Set) addCluster(guide int, center []float64) int {
	s.clusters = append(s.clusters, clusterState{
		guide:  guide,
		depth:  s.level,
		center: append([]float64(nil), center...),
	})
	return len(s.clusters) - 1
}

func (s *Set) centerIndex() *spatial.Index {
	pts := make(spatial.Points, len(s.clusters))
	for c := range s.clusters {
		pts[c] = spatial.Point{Coords: s.clusters[c].center, ID: c}
	}
	return spatial.NewIndex(pts)
}

func (s *Set) nearestOf(i int, clusters []int) int {
	best, bestD := -1, math.Inf(1)
	f := s.feature(i)
	for _, c := range clusters {
		if d := sqDist(f, s.clusters[c].center); d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

func (s *Set) assignNearest() {
	index := s.centerIndex()
	for i := range s.assign {
		s.assign[i], _ = index.Nearest(s.feature(i))
	}
	s.pinGuides()
}

// pinGuides keeps every anchored guide inside its own cluster.
func (s *Set) pinGuides() {
	for c, cl := range s.clusters {
		if cl.fixed {
			s.assign[cl.guide] = c
		}
	}
}

// recenter moves the center of every new cluster to the weighted mean of
// its members. Clusters without members keep their center.
func (s *Set) recenter() {
	sums := make([][]float64, len(s.clusters))
	wsum := make([]float64, len(s.clusters))
	for i, c := range s.assign {
		if s.clusters[c].fixed {
			continue
		}
		if sums[c] == nil {
			sums[c] = make([]float64, s.dims)
		}
		floats.AddScaled(sums[c], s.weights[i], s.feature(i))
		wsum[c] += s.weights[i]
	}
	for c := range s.clusters {
		if sums[c] == nil {
			continue
		}
		floats.Scale(1/wsum[c], sums[c])
		s.clusters[c].center = sums[c]
	}
}

// finishExpansion handles empty clusters, selects the guides of new clusters
// and rolls back when nothing was added.
func (s *Set) finishExpansion(k0 int) bool {
	s.resolveVoids(k0)
	if len(s.clusters) <= k0 {
		s.clusters = s.clusters[:k0]
		copy(s.assign, s.committedAssign)
		return false
	}
	s.selectGuides(k0)
	return true
}

func (s *Set) memberCounts() []int {
	counts := make([]int, len(s.clusters))
	for _, c := range s.assign {
		counts[c]++
	}
	return counts
}

func (s *Set) resolveVoids(k0 int) {
	counts := s.memberCounts()
	drop := make([]bool, len(s.clusters))
	dropped := 0
	for c := k0; c < len(s.clusters); c++ {
		if counts[c] > 0 {
			continue
		}
		if s.opts.Void == VoidReseed {
			if i := s.farthestMovable(counts); i >= 0 {
				counts[s.assign[i]]--
				s.assign[i] = c
				counts[c] = 1
				s.clusters[c].center = append([]float64(nil), s.feature(i)...)
				s.clusters[c].guide = i
				continue
			}
		}
		drop[c] = true
		dropped++
	}
	if dropped == 0 {
		return
	}
	remap := make([]int, len(s.clusters))
	kept := s.clusters[:0]
	for c, cl := range s.clusters {
		remap[c] = len(kept)
		if !drop[c] {
			kept = append(kept, cl)
		}
	}
	s.clusters = kept
	for i, c := range s.assign {
		s.assign[i] = remap[c]
	}
}

// farthestMovable returns the strand with the largest weighted distance to
// its center among strands that can leave their cluster, or -1.
func (s *Set) farthestMovable(counts []int) int {
	anchored := s.anchoredGuides()
	best, bestD := -1, -1.0
	for i, c := range s.assign {
		if counts[c] < 2 || anchored[i] {
			continue
		}
		d := s.weights[i] * sqDist(s.feature(i), s.clusters[c].center)
		if d > bestD {
			best, bestD = i, d
		}
	}
	return best
}

func (s *Set) anchoredGuides() []bool {
	anchored := make([]bool, s.sampleCount)
	for _, cl := range s.clusters {
		if cl.fixed {
			anchored[cl.guide] = true
		}
	}
	return anchored
}

// selectGuides picks, for every cluster added since k0, the member closest
// to the center. Ties go to the lowest strand index.
func (s *Set) selectGuides(k0 int) {
	bestD := make([]float64, len(s.clusters))
	for c := k0; c < len(s.clusters); c++ {
		s.clusters[c].guide = -1
		bestD[c] = math.Inf(1)
	}
	for i, c := range s.assign {
		if c < k0 {
			continue
		}
		if d := sqDist(s.feature(i), s.clusters[c].center); d < bestD[c] {
			s.clusters[c].guide, bestD[c] = i, d
		}
	}
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i, v := range a {
		d := v - b[i]
		sum += d * d
	}
	return sum
}
