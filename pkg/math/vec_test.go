package math

import (
	"testing"
)

func TestVec2Lerp(t *testing.T) {
	a := Vec2{0, 0}
	b := Vec2{2, 4}
	got := a.Lerp(b, 0.5)
	want := Vec2{1, 2}
	if got != want {
		t.Errorf("Vec2.Lerp() = %v, want %v", got, want)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	v := Vec3{2, 3, 6}
	if got := v.Length(); got != 7 {
		t.Errorf("Vec3.Length() = %v, want 7", got)
	}
	if got := v.LengthSq(); got != 49 {
		t.Errorf("Vec3.LengthSq() = %v, want 49", got)
	}
}

func TestVec3Orthogonal(t *testing.T) {
	for _, v := range []Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, Vec3{1, 1, 1}.Normalize()} {
		o := v.Orthogonal()
		if abs(v.Dot(o)) > 1e-5 {
			t.Errorf("Orthogonal(%v) = %v, dot %v", v, o, v.Dot(o))
		}
		if abs(o.Length()-1) > 1e-5 {
			t.Errorf("Orthogonal(%v) not unit: %v", v, o.Length())
		}
	}
}

func TestVec4Clamp(t *testing.T) {
	got := Vec4{0, -1, 2, 1e-9}.Clamp(1e-5)
	want := Vec4{1e-5, 1e-5, 2, 1e-5}
	if got != want {
		t.Errorf("Vec4.Clamp() = %v, want %v", got, want)
	}
}

func TestBounds(t *testing.T) {
	b := EmptyBounds()
	if !b.IsEmpty() {
		t.Fatal("expected empty bounds")
	}
	b = b.Extend(Vec3{1, 2, 3}).Extend(Vec3{-1, 0, 5})
	if b.Min != (Vec3{-1, 0, 3}) || b.Max != (Vec3{1, 2, 5}) {
		t.Errorf("unexpected bounds %v", b)
	}
	p := b.Pad(1)
	if p.Min != (Vec3{-2, -1, 2}) || p.Max != (Vec3{2, 3, 6}) {
		t.Errorf("unexpected padded bounds %v", p)
	}
	if c := b.Center(); c != (Vec3{0, 1, 4}) {
		t.Errorf("unexpected center %v", c)
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, 3.14159265/2)
	got := q.Rotate(Vec3{1, 0, 0})
	if abs(got.X) > 1e-5 || abs(got.Y-1) > 1e-5 || abs(got.Z) > 1e-5 {
		t.Errorf("Rotate() = %v, want (0,1,0)", got)
	}
}

func TestQuatFromTo(t *testing.T) {
	tests := []struct {
		from, to Vec3
	}{
		{Vec3{0, 1, 0}, Vec3{1, 0, 0}},
		{Vec3{0, 1, 0}, Vec3{0, 1, 0}},
		{Vec3{0, 1, 0}, Vec3{0, -1, 0}},
		{Vec3{1, 0, 0}, Vec3{0, 0.6, 0.8}},
	}
	for _, tt := range tests {
		got := QuatFromTo(tt.from, tt.to).Rotate(tt.from)
		if got.Distance(tt.to) > 1e-4 {
			t.Errorf("QuatFromTo(%v, %v) rotates to %v", tt.from, tt.to, got)
		}
	}
}

func TestFromTRS(t *testing.T) {
	m := FromTRS(Vec3{1, 2, 3}, QuatIdentity(), Vec3{2, 2, 2})
	got := m.TransformVec3(Vec3{1, 1, 1})
	want := Vec3{3, 4, 5}
	if got != want {
		t.Errorf("TransformVec3() = %v, want %v", got, want)
	}
	d := m.TransformDirection(Vec3{1, 0, 0})
	if d != (Vec3{2, 0, 0}) {
		t.Errorf("TransformDirection() = %v", d)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
