// Package orbit advances stars and planets along their kinematic orbits.
package orbit

import (
	"math"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/catalog"
)

// Kind distinguishes stars from planets.
type Kind int

const (
	KindStar Kind = iota
	KindPlanet
)

func (k Kind) String() string {
	switch k {
	case KindStar:
		return "star"
	case KindPlanet:
		return "planet"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Body is one entry in the body arena. Stars come before their planets and
// planets refer to their star by index.
type Body struct {
	Name   string // bare catalog name
	Key    string // unique selection key: star name, or "Star/Planet"
	Kind   Kind
	Parent int // index of the owning star, -1 for stars

	// Planet orbital elements.
	SemiMajorAxis  float64 // AU
	Eccentricity   float64
	InclinationDeg float64
	PeriodSeconds  float64

	// Phase is the current orbital angle in radians, always in [0, 2π).
	Phase float64

	// Star revolution about the global origin.
	RotationSpeed float64 // radians per simulated second
	OrbitRadius   float64 // 0 = fixed

	// Physical and astrometric attributes.
	Radius      float64
	Temperature float64
	Luminosity  float64
	Habitable   bool
	Texture     string
	RA          float64
	Dec         float64
	Distance    float64
	PeriodDays  float64

	// Position is world-space for stars and relative to the parent star
	// for planets.
	Position astro.Vec3
}

// IsStar reports whether b is a star.
func (b *Body) IsStar() bool {
	return b.Kind == KindStar
}

// Revolves reports whether a star circles the global origin.
func (b *Body) Revolves() bool {
	return b.Kind == KindStar && b.OrbitRadius > 0
}

// Config holds simulator configuration.
type Config struct {
	// DistanceScale converts semi-major axes (AU) to scene units.
	DistanceScale float64
}

// DefaultConfig returns the default simulator configuration.
func DefaultConfig() Config {
	return Config{
		DistanceScale: 10,
	}
}

// BuildBodies lays out a catalog as a body arena with initial positions.
func BuildBodies(cat *catalog.Catalog, cfg Config) []Body {
	if cat == nil {
		return nil
	}
	scale := cfg.DistanceScale
	if scale <= 0 || !isFinite(scale) {
		scale = DefaultConfig().DistanceScale
	}

	bodies := make([]Body, 0, cat.BodyCount())
	for _, sys := range cat.Systems {
		starIdx := len(bodies)
		bodies = append(bodies, newStar(sys.Star))

		for _, p := range sys.Planets {
			bodies = append(bodies, newPlanet(p, starIdx, scale))
		}
	}
	return bodies
}

func newStar(s catalog.Star) Body {
	b := Body{
		Name:          s.Name,
		Key:           s.Name,
		Kind:          KindStar,
		Parent:        -1,
		RotationSpeed: s.RotationSpeed,
		OrbitRadius:   s.DistanceFromCenter,
		Temperature:   s.Temperature,
		Luminosity:    s.Luminosity,
		RA:            s.RA,
		Dec:           s.Dec,
		Distance:      s.Distance,
		Radius:        2,
		Position:      astro.EquatorialToCartesian(s.RA, s.Dec, s.Distance),
	}

	if b.Revolves() {
		b.Phase = astro.HorizontalAngle(b.Position)
		b.Position = revolutionPosition(b.OrbitRadius, b.Phase, b.Position.Y)
	}
	return b
}

func newPlanet(p catalog.Planet, parent int, scale float64) Body {
	b := Body{
		Name:           p.Name,
		Key:            p.QualifiedName(),
		Kind:           KindPlanet,
		Parent:         parent,
		SemiMajorAxis:  p.SemiMajorAxis,
		Eccentricity:   p.Eccentricity,
		InclinationDeg: p.InclinationDeg,
		PeriodDays:     p.PeriodDays,
		PeriodSeconds:  p.PeriodSeconds(),
		Phase:          astro.NormalizeAngle(p.AngularOffset),
		Radius:         p.Radius,
		Habitable:      p.Habitable,
		Texture:        p.Texture,
	}
	b.Position = astro.OrbitOffset(b.SemiMajorAxis, b.InclinationDeg, b.Phase, scale)
	return b
}

func revolutionPosition(radius, phase, y float64) astro.Vec3 {
	return astro.Vec3{
		X: radius * math.Cos(phase),
		Y: y,
		Z: radius * math.Sin(phase),
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
