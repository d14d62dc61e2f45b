package astro

import (
	"math"
	"testing"
)

const tol = 1e-9

func approxVec(a, b Vec3, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

func TestEquatorialToCartesian(t *testing.T) {
	tests := []struct {
		name     string
		ra, dec  float64
		dist     float64
		expected Vec3
	}{
		{"vernal equinox", 0, 0, 10, Vec3{X: 10}},
		{"ra 90", 90, 0, 10, Vec3{Y: 10}},
		{"north pole", 0, 90, 5, Vec3{Z: 5}},
		{"south pole", 123, -90, 5, Vec3{Z: -5}},
		{"ra 180", 180, 0, 2, Vec3{X: -2}},
		{"zero distance", 45, 45, 0, Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EquatorialToCartesian(tt.ra, tt.dec, tt.dist)
			if !approxVec(got, tt.expected, tol) {
				t.Errorf("EquatorialToCartesian(%v, %v, %v) = %+v, want %+v",
					tt.ra, tt.dec, tt.dist, got, tt.expected)
			}
		})
	}
}

func TestEquatorialToCartesianPreservesDistance(t *testing.T) {
	for _, ra := range []float64{0, 37.5, 101.287, 279.235, 359.9} {
		for _, dec := range []float64{-89, -16.716, 0, 38.784, 89} {
			v := EquatorialToCartesian(ra, dec, 12.4)
			if math.Abs(v.Norm()-12.4) > 1e-9 {
				t.Errorf("|v| for ra=%v dec=%v = %v, want 12.4", ra, dec, v.Norm())
			}
		}
	}
}

func TestTransformsAreDeterministic(t *testing.T) {
	inputs := [][3]float64{
		{0, 0, 10},
		{101.287, -16.716, 2.64},
		{346.62, -5.04, 12.43},
		{-720.5, 200, 1e6},
	}

	for _, in := range inputs {
		a := EquatorialToCartesian(in[0], in[1], in[2])
		b := EquatorialToCartesian(in[0], in[1], in[2])
		if a != b {
			t.Errorf("EquatorialToCartesian%v not deterministic: %+v vs %+v", in, a, b)
		}

		o1 := InitialOrbitOffset(in[2], in[1], in[0], 10)
		o2 := InitialOrbitOffset(in[2], in[1], in[0], 10)
		if o1 != o2 {
			t.Errorf("InitialOrbitOffset%v not deterministic: %+v vs %+v", in, o1, o2)
		}
	}
}

func TestOrbitOffset(t *testing.T) {
	tests := []struct {
		name  string
		a     float64
		incl  float64
		theta float64
		scale float64
		want  Vec3
	}{
		{"phase zero", 1, 0, 0, 10, Vec3{X: 10}},
		{"quarter turn", 1, 0, math.Pi / 2, 10, Vec3{Z: 10}},
		{"half turn", 2, 0, math.Pi, 1, Vec3{X: -2}},
		{"inclined 30", 1, 30, 0, 10, Vec3{X: 10, Y: 5}},
		{"inclined 90", 1, 90, math.Pi / 2, 1, Vec3{Y: 1, Z: 1}},
		{"zero axis", 0, 45, 1, 10, Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrbitOffset(tt.a, tt.incl, tt.theta, tt.scale)
			if !approxVec(got, tt.want, tol) {
				t.Errorf("OrbitOffset() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInitialOrbitOffsetUsesDegrees(t *testing.T) {
	got := InitialOrbitOffset(1, 0, 90, 10)
	want := OrbitOffset(1, 0, math.Pi/2, 10)
	if !approxVec(got, want, tol) {
		t.Errorf("InitialOrbitOffset(1, 0, 90, 10) = %+v, want %+v", got, want)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{TwoPi, 0},
		{3 * math.Pi, math.Pi},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{-TwoPi, 0},
		{-1e-18, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}

	for _, tt := range tests {
		got := NormalizeAngle(tt.in)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got < 0 || got >= TwoPi {
			t.Errorf("NormalizeAngle(%v) = %v out of [0, 2π)", tt.in, got)
		}
	}
}

func TestHorizontalAngle(t *testing.T) {
	if got := HorizontalAngle(Vec3{X: 1}); got != 0 {
		t.Errorf("HorizontalAngle(+X) = %v, want 0", got)
	}
	if got := HorizontalAngle(Vec3{Z: 1, Y: 7}); math.Abs(got-math.Pi/2) > tol {
		t.Errorf("HorizontalAngle(+Z) = %v, want π/2", got)
	}
	if got := HorizontalAngle(Vec3{Z: -1}); math.Abs(got-3*math.Pi/2) > tol {
		t.Errorf("HorizontalAngle(-Z) = %v, want 3π/2", got)
	}
}

func TestDegRadRoundTrip(t *testing.T) {
	for _, deg := range []float64{0, 1, 45, 90, 180, 359.5, -30} {
		if got := RadToDeg(DegToRad(deg)); math.Abs(got-deg) > 1e-9 {
			t.Errorf("RadToDeg(DegToRad(%v)) = %v", deg, got)
		}
	}
}
