package cluster

import "sort"

// Remapping is a strand permutation: Src[final] = original and
// Dst[original] = final.
type Remapping struct {
	Src []int
	Dst []int
}

// IdentityRemapping returns the identity permutation over n strands.
func IdentityRemapping(n int) Remapping {
	r := Remapping{Src: make([]int, n), Dst: make([]int, n)}
	for i := range r.Src {
		r.Src[i], r.Dst[i] = i, i
	}
	return r
}

// NewRemapping orders the committed clusters of s by (depth, guide) and
// places their guides first. Every other strand follows, ordered by the
// final index of its guide and then by original index.
func NewRemapping(s *Set) Remapping {
	n := s.SampleCount()
	r := Remapping{Src: make([]int, 0, n), Dst: make([]int, n)}
	for i := range r.Dst {
		r.Dst[i] = -1
	}

	order := make([]int, s.ClusterCount())
	for c := range order {
		order[c] = c
	}
	sort.Slice(order, func(a, b int) bool {
		ca, cb := order[a], order[b]
		if s.Depth(ca) != s.Depth(cb) {
			return s.Depth(ca) < s.Depth(cb)
		}
		return s.Guide(ca) < s.Guide(cb)
	})
	for _, c := range order {
		g := s.Guide(c)
		r.Dst[g] = len(r.Src)
		r.Src = append(r.Src, g)
	}

	rest := make([]int, 0, n-len(r.Src))
	for i := 0; i < n; i++ {
		if r.Dst[i] < 0 {
			rest = append(rest, i)
		}
	}
	guideOf := func(i int) int { return r.Dst[s.Guide(s.ClusterOf(i))] }
	sort.SliceStable(rest, func(a, b int) bool {
		return guideOf(rest[a]) < guideOf(rest[b])
	})
	for _, i := range rest {
		r.Dst[i] = len(r.Src)
		r.Src = append(r.Src, i)
	}
	return r
}

// IsIdentity reports whether the remapping moves no strand.
func (r Remapping) IsIdentity() bool {
	for i, v := range r.Src {
		if v != i {
			return false
		}
	}
	return true
}

// Inverse returns the remapping that restores the original order.
func (r Remapping) Inverse() Remapping {
	return Remapping{Src: r.Dst, Dst: r.Src}
}

// RemapIndices rewrites original strand indices into final ones in place.
func (r Remapping) RemapIndices(idx []int) {
	for i, v := range idx {
		idx[i] = r.Dst[v]
	}
}

// ShuffleStrands reorders a per-strand buffer so that buf[final] holds the
// value previously at buf[src[final]].
func ShuffleStrands[T any](buf []T, src []int) {
	tmp := append([]T(nil), buf...)
	for i, from := range src {
		buf[i] = tmp[from]
	}
}

// ShuffleStrided reorders the elements offset+i*stride of buf, one per
// strand, the same way ShuffleStrands does.
func ShuffleStrided[T any](buf []T, src []int, offset, stride int) {
	tmp := make([]T, len(src))
	for i := range src {
		tmp[i] = buf[offset+i*stride]
	}
	for i, from := range src {
		buf[offset+i*stride] = tmp[from]
	}
}
