package math

import (
	gomath "math"
	"testing"
)

func TestVec3Add(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}
	got := a.Add(b)
	want := Vec3{5, 7, 9}
	if got != want {
		t.Errorf("Vec3.Add() = %v, want %v", got, want)
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
	v := Vec3{3, 4, 0}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec3.Length() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 5}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}

	zero := Vec3{}
	if zero.Normalize() != (Vec3{}) {
		t.Error("Vec3{}.Normalize() should return zero vector")
	}
}

func TestVec3AngleBetween(t *testing.T) {
	tests := []struct {
		a, b Vec3
		want float32
	}{
		{Vec3{1, 0, 0}, Vec3{0, 1, 0}, gomath.Pi / 2},
		{Vec3{1, 0, 0}, Vec3{1, 0, 0}, 0},
		{Vec3{1, 0, 0}, Vec3{-1, 0, 0}, gomath.Pi},
		{Vec3{2, 0, 0}, Vec3{0, 0, 3}, gomath.Pi / 2},
		{Vec3{}, Vec3{1, 0, 0}, 0},
	}

	for _, tc := range tests {
		got := tc.a.AngleBetween(tc.b)
		if diff := got - tc.want; diff > 1e-5 || diff < -1e-5 {
			t.Errorf("AngleBetween(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestVec3MinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, 2, -1}

	if got := a.Min(b); got != (Vec3{1, 2, -2}) {
		t.Errorf("Vec3.Min() = %v, want {1 2 -2}", got)
	}
	if got := a.Max(b); got != (Vec3{3, 5, -1}) {
		t.Errorf("Vec3.Max() = %v, want {3 5 -1}", got)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Error("{1 2 3} should be finite")
	}
	inf := float32(gomath.Inf(1))
	if (Vec3{inf, 0, 0}).IsFinite() {
		t.Error("{+Inf 0 0} should not be finite")
	}
	nan := float32(gomath.NaN())
	if (Vec3{0, nan, 0}).IsFinite() {
		t.Error("{0 NaN 0} should not be finite")
	}
}

func TestVec2AngleBetweenSigned(t *testing.T) {
	up := Vec2{0, 1}
	right := Vec2{1, 0}

	// up to right is a clockwise quarter turn
	got := up.AngleBetweenSigned(right)
	want := float32(-gomath.Pi / 2)
	if diff := got - want; diff > 1e-5 || diff < -1e-5 {
		t.Errorf("AngleBetweenSigned(up, right) = %v, want %v", got, want)
	}

	// right to up is counter-clockwise
	got = right.AngleBetweenSigned(up)
	want = float32(gomath.Pi / 2)
	if diff := got - want; diff > 1e-5 || diff < -1e-5 {
		t.Errorf("AngleBetweenSigned(right, up) = %v, want %v", got, want)
	}
}
