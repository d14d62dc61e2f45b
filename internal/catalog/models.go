// Package catalog loads star-system catalogs into validated, immutable records.
package catalog

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Defaults substituted for missing or malformed catalog values.
const (
	DefaultPeriodDays    = 365.0
	DefaultSemiMajorAxis = 1.0
	DefaultRadius        = 1.0
	SecondsPerDay        = 86400.0
)

// Raw document structures matching the catalog JSON format.

// Document is the root of a catalog file.
type Document struct {
	StarSystems []StarRecord `json:"starSystems"`
}

// StarRecord is one star system as written in the catalog.
type StarRecord struct {
	Name               string         `json:"name"`
	RA                 Number         `json:"ra"`
	Dec                Number         `json:"dec"`
	Distance           Number         `json:"sy_dist"`
	Temperature        Number         `json:"st_teff"`
	Luminosity         Number         `json:"st_lum"`
	RotationSpeed      Number         `json:"rotation_speed"`
	DistanceFromCenter Number         `json:"distance_from_center"`
	Planets            []PlanetRecord `json:"planets"`
}

// PlanetRecord is one planet as written in the catalog.
type PlanetRecord struct {
	Name              string `json:"name"`
	SemiMajorAxis     Number `json:"semi_major_axis"`
	Eccentricity      Number `json:"eccentricity"`
	Inclination       Number `json:"inclination"`
	AngularSeparation Number `json:"angular_separation"`
	OrbitalPeriod     Number `json:"orbital_period"`
	Radius            Number `json:"radius"`
	HabitableZone     Flag   `json:"habitable_zone"`
	TextureURL        string `json:"texture_url"`
	Texture           string `json:"texture"`
}

// Number is a lenient numeric field. It accepts JSON numbers, numeric
// strings and null. Present is false when the field was absent or null;
// Valid is false when it was present but unusable.
type Number struct {
	Value   float64
	Present bool
	Valid   bool
	Raw     string
}

// UnmarshalJSON implements json.Unmarshaler. It never fails; bad input is
// recorded as Present && !Valid.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = Number{}
	if len(b) == 0 || string(b) == "null" {
		return nil
	}

	n.Present = true
	n.Raw = string(b)

	s := string(b)
	if b[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return nil
		}
		s = strings.TrimSpace(unq)
		if s == "" {
			n.Present = false
			return nil
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	n.Value = v
	n.Valid = true
	return nil
}

// Malformed reports whether the field was given but could not be used.
func (n Number) Malformed() bool {
	return n.Present && !n.Valid
}

// Or returns the value if usable, otherwise def.
func (n Number) Or(def float64) float64 {
	if n.Valid {
		return n.Value
	}
	return def
}

// Flag is a lenient boolean: true/false, 0/1, or strings like "yes".
type Flag struct {
	Value   bool
	Present bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*f = Flag{}
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	f.Present = true

	s := string(b)
	if b[0] == '"' {
		if unq, err := strconv.Unquote(s); err == nil {
			s = unq
		}
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		f.Value = true
	case "false", "no", "n", "0", "":
		f.Value = false
	default:
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			f.Value = v != 0
		}
	}
	return nil
}

// Validated model.

// Catalog is a validated set of star systems.
type Catalog struct {
	Systems  []StarSystem
	Warnings []Warning
}

// StarSystem is a star plus its ordered planets.
type StarSystem struct {
	Star    Star
	Planets []Planet
}

// Star holds a star's astrometric and physical attributes.
type Star struct {
	Name               string
	RA                 float64 // degrees
	Dec                float64 // degrees
	Distance           float64 // catalog distance units
	Temperature        float64 // kelvin, 0 if unknown
	Luminosity         float64 // as given by the catalog
	RotationSpeed      float64 // radians per simulated second
	DistanceFromCenter float64 // scene units, 0 = fixed in place
}

// Planet holds a planet's orbital elements and physical attributes.
type Planet struct {
	Name           string
	Star           string
	SemiMajorAxis  float64 // AU
	Eccentricity   float64
	InclinationDeg float64
	AngularOffset  float64 // radians in [0, 2π)
	PeriodDays     float64 // always > 0
	Radius         float64 // Earth radii
	Habitable      bool
	Texture        string
}

// PeriodSeconds returns the orbital period in seconds.
func (p Planet) PeriodSeconds() float64 {
	return p.PeriodDays * SecondsPerDay
}

// QualifiedName returns "Star/Planet".
func (p Planet) QualifiedName() string {
	return QualifiedName(p.Star, p.Name)
}

// QualifiedName joins a star and planet name into a selection key.
func QualifiedName(star, planet string) string {
	return star + "/" + planet
}

// BodyCount returns the number of stars plus planets.
func (c *Catalog) BodyCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, sys := range c.Systems {
		n += 1 + len(sys.Planets)
	}
	return n
}

// PlanetCount returns the number of planets across all systems.
func (c *Catalog) PlanetCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, sys := range c.Systems {
		n += len(sys.Planets)
	}
	return n
}

// Warning describes a catalog value that was skipped or replaced by a default.
type Warning struct {
	Body    string `json:"body"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Field == "" {
		return fmt.Sprintf("%s: %s", w.Body, w.Message)
	}
	return fmt.Sprintf("%s.%s: %s", w.Body, w.Field, w.Message)
}
