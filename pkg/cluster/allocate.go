package cluster

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// allocate picks up to n seed strands for new clusters. Anchored guides are
// never picked and every seed is distinct.
func (s *Set) allocate(n int, strategy AllocationStrategy, order AllocationOrder) []int {
	candidates := s.candidates(order)
	if n > len(candidates) {
		n = len(candidates)
	}
	if n <= 0 {
		return nil
	}
	switch strategy {
	case AllocateSplitWeight:
		return s.allocateSplit(n, candidates, false)
	case AllocateSplitReach:
		return s.allocateSplit(n, candidates, true)
	default:
		return s.allocateGlobal(n, candidates)
	}
}

// candidates lists the strands that may seed a new cluster, in visiting order.
func (s *Set) candidates(order AllocationOrder) []int {
	anchored := s.anchoredGuides()
	var visit []int
	switch order {
	case OrderShuffled:
		visit = s.rng.Perm(s.sampleCount)
	default:
		visit = make([]int, s.sampleCount)
		for i := range visit {
			visit[i] = i
		}
		if order == OrderWeight {
			sort.SliceStable(visit, func(a, b int) bool {
				return s.weights[visit[a]] > s.weights[visit[b]]
			})
		}
	}
	out := visit[:0]
	for _, i := range visit {
		if !anchored[i] {
			out = append(out, i)
		}
	}
	return out
}

// allocateGlobal performs systematic sampling over the cumulative weight of
// the candidates: n evenly spaced probes with one random offset. Probes
// landing on an already picked candidate move to the next free one.
func (s *Set) allocateGlobal(n int, candidates []int) []int {
	cum := make([]float64, len(candidates))
	var total float64
	for k, i := range candidates {
		total += s.weights[i]
		cum[k] = total
	}
	step := total / float64(n)
	offset := s.rng.Float64() * step
	picked := make([]bool, len(candidates))
	seeds := make([]int, 0, n)
	j := 0
	for p := 0; p < n; p++ {
		probe := offset + float64(p)*step
		for j < len(cum)-1 && cum[j] < probe {
			j++
		}
		k := j
		for picked[k] {
			k = (k + 1) % len(candidates)
		}
		picked[k] = true
		seeds = append(seeds, candidates[k])
	}
	return seeds
}

// splitStats is the bookkeeping of one cluster during split allocation.
type splitStats struct {
	center   []float64
	members  []int
	weight   float64
	farthest int
	reach    float64
}

// allocateSplit repeatedly splits the cluster with the greatest weight (or
// reach) at its movable member farthest from the center. That member seeds
// a new cluster and takes every member of the split cluster that is closer
// to it.
func (s *Set) allocateSplit(n int, candidates []int, byReach bool) []int {
	rank := make([]int, s.sampleCount)
	movable := make([]bool, s.sampleCount)
	for i := range rank {
		rank[i] = math.MaxInt
	}
	for k, i := range candidates {
		rank[i] = k
		movable[i] = true
	}

	var stats []*splitStats
	seeds := make([]int, 0, n)
	if len(s.clusters) == 0 {
		first := s.nearestToMean(candidates)
		seeds = append(seeds, first)
		movable[first] = false
		all := make([]int, s.sampleCount)
		for i := range all {
			all[i] = i
		}
		stats = append(stats, &splitStats{center: s.feature(first), members: all})
	} else {
		stats = make([]*splitStats, len(s.clusters))
		for c := range s.clusters {
			stats[c] = &splitStats{center: s.clusters[c].center}
		}
		for i, c := range s.assign {
			stats[c].members = append(stats[c].members, i)
		}
	}

	update := func(st *splitStats) {
		st.weight, st.farthest, st.reach = 0, -1, -1
		for _, i := range st.members {
			st.weight += s.weights[i]
			if !movable[i] {
				continue
			}
			d := sqDist(s.feature(i), st.center)
			if d > st.reach || (d == st.reach && rank[i] < rank[st.farthest]) {
				st.farthest, st.reach = i, d
			}
		}
	}
	for _, st := range stats {
		update(st)
	}

	for len(seeds) < n {
		var pick *splitStats
		for _, st := range stats {
			if st.farthest < 0 {
				continue
			}
			if pick == nil || splitScore(st, byReach) > splitScore(pick, byReach) {
				pick = st
			}
		}
		if pick == nil {
			break
		}
		seed := pick.farthest
		seeds = append(seeds, seed)
		movable[seed] = false
		split := &splitStats{center: s.feature(seed)}
		kept := pick.members[:0]
		for _, i := range pick.members {
			if i == seed || (movable[i] && sqDist(s.feature(i), split.center) < sqDist(s.feature(i), pick.center)) {
				split.members = append(split.members, i)
			} else {
				kept = append(kept, i)
			}
		}
		pick.members = kept
		update(pick)
		update(split)
		stats = append(stats, split)
	}
	return seeds
}

func splitScore(st *splitStats, byReach bool) float64 {
	if byReach {
		return st.reach
	}
	return st.weight
}

// nearestToMean returns the candidate closest to the weighted mean feature.
func (s *Set) nearestToMean(candidates []int) int {
	mean := make([]float64, s.dims)
	for i := 0; i < s.sampleCount; i++ {
		floats.AddScaled(mean, s.weights[i]/s.totalWeight, s.feature(i))
	}
	best, bestD := candidates[0], math.Inf(1)
	for _, i := range candidates {
		if d := sqDist(s.feature(i), mean); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}
