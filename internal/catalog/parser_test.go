package catalog

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleJSON = `{
  "starSystems": [
    {
      "name": "Alpha",
      "ra": 10, "dec": "-20.5", "sy_dist": 4.2,
      "st_teff": 5800, "st_lum": 0.1,
      "planets": [
        {"name": "a1", "semi_major_axis": 1, "eccentricity": 0.1, "inclination": 5,
         "angular_separation": 90, "orbital_period": 365.25, "radius": 1.2,
         "habitable_zone": true, "texture_url": "earth.jpg"},
        {"name": "a2", "semi_major_axis": "2.5", "orbital_period": "abc",
         "habitable_zone": 0, "texture": "mars.jpg"}
      ]
    },
    {
      "name": "Beta",
      "ra": null, "dec": 12, "sy_dist": 8,
      "rotation_speed": 0.001, "distance_from_center": 30,
      "planets": [
        {"name": "b1", "orbital_period": -4, "semi_major_axis": 0.5}
      ]
    }
  ]
}`

func findWarning(ws []Warning, body, field string) bool {
	for _, w := range ws {
		if w.Body == body && w.Field == field {
			return true
		}
	}
	return false
}

func TestParse(t *testing.T) {
	cat, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(cat.Systems) != 2 {
		t.Fatalf("Expected 2 systems, got %d", len(cat.Systems))
	}
	if got := cat.BodyCount(); got != 5 {
		t.Errorf("BodyCount() = %d, want 5", got)
	}
	if got := cat.PlanetCount(); got != 3 {
		t.Errorf("PlanetCount() = %d, want 3", got)
	}

	alpha := cat.Systems[0]
	if alpha.Star.Name != "Alpha" {
		t.Errorf("Star name = %q, want Alpha", alpha.Star.Name)
	}
	if alpha.Star.Dec != -20.5 {
		t.Errorf("Dec from string = %v, want -20.5", alpha.Star.Dec)
	}
	if alpha.Star.Temperature != 5800 {
		t.Errorf("Temperature = %v, want 5800", alpha.Star.Temperature)
	}

	a1 := alpha.Planets[0]
	if a1.Star != "Alpha" || a1.QualifiedName() != "Alpha/a1" {
		t.Errorf("QualifiedName() = %q", a1.QualifiedName())
	}
	if math.Abs(a1.AngularOffset-math.Pi/2) > 1e-12 {
		t.Errorf("AngularOffset = %v, want π/2", a1.AngularOffset)
	}
	if !a1.Habitable {
		t.Error("a1 should be habitable")
	}
	if a1.Texture != "earth.jpg" {
		t.Errorf("Texture = %q, want earth.jpg", a1.Texture)
	}
	if got := a1.PeriodSeconds(); got != 365.25*86400 {
		t.Errorf("PeriodSeconds() = %v", got)
	}

	a2 := alpha.Planets[1]
	if a2.SemiMajorAxis != 2.5 {
		t.Errorf("SemiMajorAxis from string = %v, want 2.5", a2.SemiMajorAxis)
	}
	if a2.PeriodDays != DefaultPeriodDays {
		t.Errorf("malformed period = %v, want default %v", a2.PeriodDays, DefaultPeriodDays)
	}
	if a2.Radius != DefaultRadius {
		t.Errorf("missing radius = %v, want %v", a2.Radius, DefaultRadius)
	}
	if a2.Habitable {
		t.Error("a2 should not be habitable")
	}
	if a2.Texture != "mars.jpg" {
		t.Errorf("Texture fallback = %q, want mars.jpg", a2.Texture)
	}

	beta := cat.Systems[1]
	if beta.Star.RA != 0 {
		t.Errorf("null RA = %v, want 0", beta.Star.RA)
	}
	if beta.Star.DistanceFromCenter != 30 || beta.Star.RotationSpeed != 0.001 {
		t.Errorf("revolution params = %v/%v", beta.Star.DistanceFromCenter, beta.Star.RotationSpeed)
	}
	if beta.Planets[0].PeriodDays != DefaultPeriodDays {
		t.Errorf("negative period = %v, want default", beta.Planets[0].PeriodDays)
	}

	if !findWarning(cat.Warnings, "Alpha/a2", "orbital_period") {
		t.Errorf("missing warning for Alpha/a2 period: %v", cat.Warnings)
	}
	if !findWarning(cat.Warnings, "Beta/b1", "orbital_period") {
		t.Errorf("missing warning for Beta/b1 period: %v", cat.Warnings)
	}
	if findWarning(cat.Warnings, "Beta", "ra") {
		t.Error("null RA should not warn")
	}
}

func TestParseSkipsBadNames(t *testing.T) {
	doc := `{"starSystems":[
		{"name":"", "planets":[]},
		{"name":"Sol", "planets":[{"name":"Earth","orbital_period":365},{"name":"Earth","orbital_period":1},{"name":" "}]},
		{"name":"Sol"}
	]}`

	cat, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(cat.Systems) != 1 {
		t.Fatalf("Expected 1 system, got %d", len(cat.Systems))
	}
	if n := len(cat.Systems[0].Planets); n != 1 {
		t.Errorf("Expected 1 planet, got %d", n)
	}
	if cat.Systems[0].Planets[0].PeriodDays != 365 {
		t.Error("first Earth should win")
	}
	if len(cat.Warnings) != 4 {
		t.Errorf("Expected 4 warnings, got %d: %v", len(cat.Warnings), cat.Warnings)
	}
}

func TestParseDuplicateNamesIgnoreCase(t *testing.T) {
	doc := `{"starSystems":[
		{"name":"Kepler-1", "planets":[{"name":"b","orbital_period":10},{"name":"B","orbital_period":10}]},
		{"name":"kepler-1"}
	]}`

	cat, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(cat.Systems) != 1 || cat.Systems[0].Star.Name != "Kepler-1" {
		t.Fatalf("Systems = %+v, want only Kepler-1", cat.Systems)
	}
	if n := len(cat.Systems[0].Planets); n != 1 {
		t.Errorf("Expected 1 planet, got %d", n)
	}
	if len(cat.Warnings) != 2 {
		t.Errorf("Expected 2 warnings, got %d: %v", len(cat.Warnings), cat.Warnings)
	}
}

func TestParseDegenerateValues(t *testing.T) {
	doc := `{"starSystems":[{"name":"S","dec":120,"sy_dist":-1,"planets":[
		{"name":"p","semi_major_axis":0,"eccentricity":1.5,"radius":-2,"orbital_period":0,
		 "angular_separation":-90,"inclination":"n/a"}
	]}]}`

	cat, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	s := cat.Systems[0].Star
	if s.Dec != 90 {
		t.Errorf("Dec = %v, want clamped 90", s.Dec)
	}
	if s.Distance != 0 {
		t.Errorf("Distance = %v, want 0", s.Distance)
	}

	p := cat.Systems[0].Planets[0]
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"SemiMajorAxis", p.SemiMajorAxis, DefaultSemiMajorAxis},
		{"Eccentricity", p.Eccentricity, 0},
		{"Radius", p.Radius, DefaultRadius},
		{"PeriodDays", p.PeriodDays, DefaultPeriodDays},
		{"InclinationDeg", p.InclinationDeg, 0},
		{"AngularOffset", p.AngularOffset, 3 * math.Pi / 2},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 1e-12 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	for _, field := range []string{"semi_major_axis", "eccentricity", "radius", "orbital_period", "inclination"} {
		if !findWarning(cat.Warnings, "S/p", field) {
			t.Errorf("missing warning for %s", field)
		}
	}
}

func TestParseInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte("{not json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestParseEmptyDocument(t *testing.T) {
	cat, err := Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(cat.Systems) != 0 || cat.BodyCount() != 0 {
		t.Errorf("Expected empty catalog, got %d systems", len(cat.Systems))
	}
}

func TestRead(t *testing.T) {
	cat, err := Read(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(cat.Systems) != 2 {
		t.Errorf("Expected 2 systems, got %d", len(cat.Systems))
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cat.BodyCount() != 5 {
		t.Errorf("BodyCount() = %d, want 5", cat.BodyCount())
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestDefault(t *testing.T) {
	cat, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if len(cat.Systems) == 0 {
		t.Fatal("default catalog is empty")
	}
	if len(cat.Warnings) != 0 {
		t.Errorf("default catalog has warnings: %v", cat.Warnings)
	}

	revolving := false
	for _, sys := range cat.Systems {
		if sys.Star.DistanceFromCenter > 0 {
			revolving = true
		}
		for _, p := range sys.Planets {
			if p.PeriodDays <= 0 {
				t.Errorf("%s has period %v", p.QualifiedName(), p.PeriodDays)
			}
		}
	}
	if !revolving {
		t.Error("default catalog should include a revolving star")
	}
}
