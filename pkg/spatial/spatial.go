// Package spatial wraps gonum's k-d tree for nearest-neighbour queries over
// points of arbitrary dimension that carry an integer identifier.
package spatial

import (
	"gonum.org/v1/gonum/spatial/kdtree"
)

// Point is a k-d tree point tagged with the index of the object it stands for.
type Point struct {
	Coords []float64
	ID     int
}

// Compare implements kdtree.Comparable.
func (p Point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.Coords[d] - c.(Point).Coords[d]
}

// Dims implements kdtree.Comparable.
func (p Point) Dims() int { return len(p.Coords) }

// Distance returns the squared euclidean distance.
func (p Point) Distance(c kdtree.Comparable) float64 {
	q := c.(Point)
	var sum float64
	for i, v := range p.Coords {
		d := v - q.Coords[i]
		sum += d * d
	}
	return sum
}

// Points is a collection of Point usable to build a kdtree.Tree.
type Points []Point

func (p Points) Index(i int) kdtree.Comparable { return p[i] }
func (p Points) Len() int                      { return len(p) }
func (p Points) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p Points) Pivot(d kdtree.Dim) int {
	return plane{Points: p, Dim: d}.Pivot()
}

type plane struct {
	kdtree.Dim
	Points
}

func (p plane) Less(i, j int) bool {
	return p.Points[i].Coords[p.Dim] < p.Points[j].Coords[p.Dim]
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.Points = p.Points[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.Points[i], p.Points[j] = p.Points[j], p.Points[i]
}

// Index is a static k-d tree over a point set.
type Index struct {
	tree *kdtree.Tree
	size int
}

// NewIndex builds an index. The points slice is reordered in place.
func NewIndex(points Points) *Index {
	if len(points) == 0 {
		return &Index{}
	}
	return &Index{tree: kdtree.New(points, false), size: len(points)}
}

// Len returns the number of indexed points.
func (x *Index) Len() int { return x.size }

// Nearest returns the ID of the closest point and its squared distance.
// It returns -1 for an empty index.
func (x *Index) Nearest(coords []float64) (int, float64) {
	if x.tree == nil {
		return -1, 0
	}
	c, d := x.tree.Nearest(Point{Coords: coords, ID: -1})
	if c == nil {
		return -1, 0
	}
	return c.(Point).ID, d
}

// Within returns the IDs of all points whose squared distance to coords is
// at most dist2, in no particular order.
func (x *Index) Within(coords []float64, dist2 float64) []int {
	if x.tree == nil {
		return nil
	}
	keep := kdtree.NewDistKeeper(dist2)
	x.tree.NearestSet(keep, Point{Coords: coords, ID: -1})
	ids := make([]int, 0, len(keep.Heap))
	for _, cd := range keep.Heap {
		if cd.Comparable == nil {
			continue
		}
		ids = append(ids, cd.Comparable.(Point).ID)
	}
	return ids
}
