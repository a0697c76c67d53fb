package math

import "github.com/chewxy/math32"

// Vec4 is a 4-component vector.
type Vec4 struct {
	X, Y, Z, W float32
}

// Add returns v + other.
func (v Vec4) Add(other Vec4) Vec4 {
	return Vec4{v.X + other.X, v.Y + other.Y, v.Z + other.Z, v.W + other.W}
}

// Scale returns v * scalar.
func (v Vec4) Scale(s float32) Vec4 {
	return Vec4{v.X * s, v.Y * s, v.Z * s, v.W * s}
}

// Mul returns the componentwise product.
func (v Vec4) Mul(other Vec4) Vec4 {
	return Vec4{v.X * other.X, v.Y * other.Y, v.Z * other.Z, v.W * other.W}
}

// Div returns the componentwise quotient.
func (v Vec4) Div(other Vec4) Vec4 {
	return Vec4{v.X / other.X, v.Y / other.Y, v.Z / other.Z, v.W / other.W}
}

// Max returns the componentwise maximum.
func (v Vec4) Max(other Vec4) Vec4 {
	return Vec4{
		math32.Max(v.X, other.X),
		math32.Max(v.Y, other.Y),
		math32.Max(v.Z, other.Z),
		math32.Max(v.W, other.W),
	}
}

// Clamp clamps every component to at least floor.
func (v Vec4) Clamp(floor float32) Vec4 {
	return v.Max(Vec4{floor, floor, floor, floor})
}
