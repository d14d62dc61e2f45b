package astro

import (
	"math"
	"testing"
)

func TestVec3Norm(t *testing.T) {
	tests := []struct {
		v    Vec3
		want float64
	}{
		{Vec3{X: 3, Y: 4, Z: 0}, 5},
		{Vec3{X: 1, Y: 2, Z: 2}, 3},
		{Vec3{}, 0},
	}
	for _, tt := range tests {
		if got := tt.v.Norm(); math.Abs(got-tt.want) > tol {
			t.Errorf("%+v.Norm() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestVec3Normalized(t *testing.T) {
	n := Vec3{X: 0, Y: 0, Z: 9}.Normalized()
	if n != (Vec3{Z: 1}) {
		t.Errorf("Normalized() = %+v, want {0 0 1}", n)
	}
	if z := (Vec3{}).Normalized(); z != (Vec3{}) {
		t.Errorf("zero Normalized() = %+v, want zero", z)
	}
}

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 5, Z: 6}

	if got := a.Add(b); got != (Vec3{X: 5, Y: 7, Z: 9}) {
		t.Errorf("Add = %+v", got)
	}
	if got := b.Sub(a); got != (Vec3{X: 3, Y: 3, Z: 3}) {
		t.Errorf("Sub = %+v", got)
	}
	if got := a.Scale(2); got != (Vec3{X: 2, Y: 4, Z: 6}) {
		t.Errorf("Scale = %+v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot = %v, want 32", got)
	}
	if got := (Vec3{X: 1}).Cross(Vec3{Y: 1}); got != (Vec3{Z: 1}) {
		t.Errorf("X×Y = %+v, want Z", got)
	}
	if got := a.DistanceTo(a); got != 0 {
		t.Errorf("DistanceTo(self) = %v", got)
	}
}

func TestLerp(t *testing.T) {
	a := Vec3{X: 0, Y: 200, Z: 500}
	b := Vec3{X: 50, Y: 50, Z: 50}

	if got := Lerp(a, b, 0); got != a {
		t.Errorf("Lerp(t=0) = %+v, want %+v", got, a)
	}
	if got := Lerp(a, b, 1); !approxVec(got, b, tol) {
		t.Errorf("Lerp(t=1) = %+v, want %+v", got, b)
	}
	mid := Lerp(a, b, 0.5)
	if !approxVec(mid, Vec3{X: 25, Y: 125, Z: 275}, tol) {
		t.Errorf("Lerp(t=0.5) = %+v", mid)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{X: 1, Y: -2, Z: 3}).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if (Vec3{X: math.NaN()}).IsFinite() {
		t.Error("NaN vector reported finite")
	}
	if (Vec3{Z: math.Inf(-1)}).IsFinite() {
		t.Error("Inf vector reported finite")
	}
}
