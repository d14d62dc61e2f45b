package astro

import (
	"math"
	"testing"
)

func TestSkyboxFiltersByMagnitude(t *testing.T) {
	all := Skybox(10)
	bright := Skybox(1)
	if len(all) < 100 {
		t.Errorf("Skybox(10) = %d stars, want at least 100", len(all))
	}
	if len(bright) == 0 || len(bright) >= len(all) {
		t.Errorf("Skybox(1) = %d stars, want a non-empty subset of %d", len(bright), len(all))
	}
	for _, s := range bright {
		if s.Mag > 1 {
			t.Errorf("%s Mag = %v, want <= 1", s.Name, s.Mag)
		}
	}
}

func TestSkyStarDirection(t *testing.T) {
	for _, s := range Skybox(10) {
		if n := s.Direction().Norm(); math.Abs(n-1) > 1e-9 {
			t.Errorf("%s direction norm = %v, want 1", s.Name, n)
		}
	}

	polaris := SkyStar{Name: "Polaris", RA: 37.954, Dec: 89.264}
	if d := polaris.Direction(); d.Z < 0.99 {
		t.Errorf("Polaris Z = %v, want near 1", d.Z)
	}
}
