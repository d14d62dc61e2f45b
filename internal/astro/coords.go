package astro

import (
	"math"

	"github.com/soniakeys/unit"
)

// TwoPi is one full turn in radians.
const TwoPi = 2 * math.Pi

// EquatorialToCartesian converts a star's astrometric position to scene
// coordinates. RA and Dec are in degrees; distance keeps its catalog units.
//
//	x = d·cos(dec)·cos(ra)
//	y = d·cos(dec)·sin(ra)
//	z = d·sin(dec)
func EquatorialToCartesian(raDeg, decDeg, distance float64) Vec3 {
	ra := unit.AngleFromDeg(raDeg)
	dec := unit.AngleFromDeg(decDeg)

	return Vec3{
		X: distance * dec.Cos() * ra.Cos(),
		Y: distance * dec.Cos() * ra.Sin(),
		Z: distance * dec.Sin(),
	}
}

// OrbitOffset returns a planet's position relative to its star for the
// phase angle theta (radians). The orbit radius is semiMajorAxis*scale and the
// orbital plane is lifted by r·sin(inclination).
func OrbitOffset(semiMajorAxis, inclinationDeg, theta, scale float64) Vec3 {
	r := semiMajorAxis * scale
	incl := unit.AngleFromDeg(inclinationDeg)

	return Vec3{
		X: r * math.Cos(theta),
		Y: r * incl.Sin(),
		Z: r * math.Sin(theta),
	}
}

// InitialOrbitOffset is OrbitOffset with the phase given as the catalog's
// angular offset in degrees.
func InitialOrbitOffset(semiMajorAxis, inclinationDeg, angularOffsetDeg, scale float64) Vec3 {
	return OrbitOffset(semiMajorAxis, inclinationDeg, DegToRad(angularOffsetDeg), scale)
}

// NormalizeAngle wraps an angle in radians into [0, 2π).
// Non-finite input maps to 0.
func NormalizeAngle(rad float64) float64 {
	if !isFinite(rad) {
		return 0
	}
	a := unit.Angle(rad).Mod1().Rad()
	// PMod can round a tiny negative remainder up to exactly 2π.
	if a >= TwoPi || a < 0 {
		return 0
	}
	return a
}

// HorizontalAngle returns the angle of v in the X–Z plane, in [0, 2π).
func HorizontalAngle(v Vec3) float64 {
	return NormalizeAngle(math.Atan2(v.Z, v.X))
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return unit.AngleFromDeg(deg).Rad()
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return unit.Angle(rad).Deg()
}
