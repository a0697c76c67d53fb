package math

import "github.com/chewxy/math32"

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max Vec3
}

// EmptyBounds returns an inverted box that any Extend call will replace.
func EmptyBounds() Bounds {
	inf := math32.Inf(1)
	return Bounds{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether no point has been added.
func (b Bounds) IsEmpty() bool {
	return b.Min.X > b.Max.X
}

// Extend grows the box to contain p.
func (b Bounds) Extend(p Vec3) Bounds {
	return Bounds{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Pad grows the box by r on every side.
func (b Bounds) Pad(r float32) Bounds {
	d := Vec3{r, r, r}
	return Bounds{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// Center returns the box center.
func (b Bounds) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extent.
func (b Bounds) Size() Vec3 {
	return b.Max.Sub(b.Min)
}
