package catalog

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/litescript/ls-orrery/internal/astro"
)

// Parse decodes and validates a catalog document.
// Only undecodable input is an error; field problems become warnings.
func Parse(data []byte) (*Catalog, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal catalog JSON: %w", err)
	}
	return FromDocument(doc), nil
}

// Read parses a catalog from r.
func Read(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Load parses the catalog file at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// FromDocument validates a decoded document.
func FromDocument(doc Document) *Catalog {
	v := validator{cat: &Catalog{}}
	seenStars := make(map[string]bool, len(doc.StarSystems))

	for i, rec := range doc.StarSystems {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			v.warn(fmt.Sprintf("starSystems[%d]", i), "", "missing name, system skipped")
			continue
		}
		// Names resolve case-insensitively, so duplicates do too.
		if seenStars[strings.ToLower(name)] {
			v.warn(name, "", "duplicate star name, system skipped")
			continue
		}
		seenStars[strings.ToLower(name)] = true

		sys := StarSystem{Star: v.star(name, rec)}
		seenPlanets := make(map[string]bool, len(rec.Planets))
		for j, prec := range rec.Planets {
			pname := strings.TrimSpace(prec.Name)
			if pname == "" {
				v.warn(fmt.Sprintf("%s.planets[%d]", name, j), "", "missing name, planet skipped")
				continue
			}
			if seenPlanets[strings.ToLower(pname)] {
				v.warn(QualifiedName(name, pname), "", "duplicate planet name, planet skipped")
				continue
			}
			seenPlanets[strings.ToLower(pname)] = true
			sys.Planets = append(sys.Planets, v.planet(name, pname, prec))
		}

		v.cat.Systems = append(v.cat.Systems, sys)
	}

	return v.cat
}

type validator struct {
	cat *Catalog
}

func (v *validator) warn(body, field, msg string) {
	v.cat.Warnings = append(v.cat.Warnings, Warning{Body: body, Field: field, Message: msg})
}

// num returns n's value, falling back to def with a warning when malformed.
func (v *validator) num(body, field string, n Number, def float64) float64 {
	if n.Malformed() {
		v.warn(body, field, fmt.Sprintf("malformed value %s, using %g", n.Raw, def))
	}
	return n.Or(def)
}

func (v *validator) star(name string, rec StarRecord) Star {
	s := Star{
		Name:               name,
		RA:                 v.num(name, "ra", rec.RA, 0),
		Dec:                v.num(name, "dec", rec.Dec, 0),
		Distance:           v.num(name, "sy_dist", rec.Distance, 0),
		Temperature:        v.num(name, "st_teff", rec.Temperature, 0),
		Luminosity:         v.num(name, "st_lum", rec.Luminosity, 0),
		RotationSpeed:      v.num(name, "rotation_speed", rec.RotationSpeed, 0),
		DistanceFromCenter: v.num(name, "distance_from_center", rec.DistanceFromCenter, 0),
	}
	if s.Dec < -90 || s.Dec > 90 {
		v.warn(name, "dec", fmt.Sprintf("declination %g out of range, clamped", s.Dec))
		s.Dec = math.Max(-90, math.Min(90, s.Dec))
	}
	if s.Distance < 0 {
		v.warn(name, "sy_dist", fmt.Sprintf("negative distance %g, using 0", s.Distance))
		s.Distance = 0
	}
	if s.DistanceFromCenter < 0 {
		v.warn(name, "distance_from_center", fmt.Sprintf("negative value %g, using 0", s.DistanceFromCenter))
		s.DistanceFromCenter = 0
	}
	return s
}

func (v *validator) planet(star, name string, rec PlanetRecord) Planet {
	body := QualifiedName(star, name)

	p := Planet{
		Name:           name,
		Star:           star,
		SemiMajorAxis:  v.num(body, "semi_major_axis", rec.SemiMajorAxis, DefaultSemiMajorAxis),
		Eccentricity:   v.num(body, "eccentricity", rec.Eccentricity, 0),
		InclinationDeg: v.num(body, "inclination", rec.Inclination, 0),
		Radius:         v.num(body, "radius", rec.Radius, DefaultRadius),
		Habitable:      rec.HabitableZone.Value,
		Texture:        rec.TextureURL,
	}
	if p.Texture == "" {
		p.Texture = rec.Texture
	}

	offsetDeg := v.num(body, "angular_separation", rec.AngularSeparation, 0)
	p.AngularOffset = astro.NormalizeAngle(astro.DegToRad(offsetDeg))

	switch period := rec.OrbitalPeriod; {
	case !period.Present:
		v.warn(body, "orbital_period", fmt.Sprintf("missing, using %g days", DefaultPeriodDays))
		p.PeriodDays = DefaultPeriodDays
	case !period.Valid || period.Value <= 0:
		v.warn(body, "orbital_period", fmt.Sprintf("degenerate value %s, using %g days", period.Raw, DefaultPeriodDays))
		p.PeriodDays = DefaultPeriodDays
	default:
		p.PeriodDays = period.Value
	}

	if p.SemiMajorAxis <= 0 {
		v.warn(body, "semi_major_axis", fmt.Sprintf("non-positive value %g, using %g", p.SemiMajorAxis, DefaultSemiMajorAxis))
		p.SemiMajorAxis = DefaultSemiMajorAxis
	}
	if p.Eccentricity < 0 || p.Eccentricity >= 1 {
		v.warn(body, "eccentricity", fmt.Sprintf("value %g outside [0, 1), using 0", p.Eccentricity))
		p.Eccentricity = 0
	}
	if p.Radius <= 0 {
		v.warn(body, "radius", fmt.Sprintf("non-positive value %g, using %g", p.Radius, DefaultRadius))
		p.Radius = DefaultRadius
	}

	return p
}
