package orbit

import (
	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/catalog"
)

// DefaultPeriodSeconds is used when a body has no usable period.
const DefaultPeriodSeconds = catalog.DefaultPeriodDays * catalog.SecondsPerDay

// AngularSpeed returns 2π/period in radians per second. Degenerate periods
// fall back to DefaultPeriodSeconds so the result is always finite.
func AngularSpeed(periodSeconds float64) float64 {
	if periodSeconds <= 0 || !isFinite(periodSeconds) {
		periodSeconds = DefaultPeriodSeconds
	}
	return astro.TwoPi / periodSeconds
}

// Simulator advances body phases.
type Simulator struct {
	scale float64
}

// NewSimulator creates a simulator.
func NewSimulator(cfg Config) *Simulator {
	scale := cfg.DistanceScale
	if scale <= 0 || !isFinite(scale) {
		scale = DefaultConfig().DistanceScale
	}
	return &Simulator{scale: scale}
}

// DistanceScale returns the AU-to-scene-unit factor in use.
func (s *Simulator) DistanceScale() float64 {
	return s.scale
}

// Step advances every body by dt simulated seconds. When animating is false
// nothing changes; paused time is not caught up later.
func (s *Simulator) Step(bodies []Body, dt float64, animating bool) {
	if !animating || dt <= 0 || !isFinite(dt) {
		return
	}

	for i := range bodies {
		b := &bodies[i]
		switch b.Kind {
		case KindPlanet:
			b.Phase = astro.NormalizeAngle(b.Phase + AngularSpeed(b.PeriodSeconds)*dt)
			b.Position = astro.OrbitOffset(b.SemiMajorAxis, b.InclinationDeg, b.Phase, s.scale)
		case KindStar:
			if !b.Revolves() || b.RotationSpeed == 0 || !isFinite(b.RotationSpeed) {
				continue
			}
			b.Phase = astro.NormalizeAngle(b.Phase + b.RotationSpeed*dt)
			b.Position = revolutionPosition(b.OrbitRadius, b.Phase, b.Position.Y)
		}
	}
}
