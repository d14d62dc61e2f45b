package camera

import (
	"math"

	"github.com/litescript/ls-orrery/internal/astro"
)

// maxElevation keeps orbiting short of the poles so the view never flips.
const maxElevation = math.Pi/2 - 0.01

var worldUp = astro.Vec3{Y: 1}

// Orbit rotates the camera around its target by the given azimuth and
// elevation deltas in radians. It is ignored while input is disabled.
func (c *Controller) Orbit(dAzimuth, dElevation float64) bool {
	if !c.InputEnabled() || math.IsNaN(dAzimuth) || math.IsNaN(dElevation) {
		return false
	}
	c.Activity()

	offset := c.pose.Position.Sub(c.pose.Target)
	r := offset.Norm()
	if r == 0 {
		return true
	}

	az := math.Atan2(offset.Z, offset.X) + dAzimuth
	el := math.Asin(clamp(offset.Y/r, -1, 1)) + dElevation
	el = clamp(el, -maxElevation, maxElevation)

	c.pose.Position = c.pose.Target.Add(astro.Vec3{
		X: r * math.Cos(el) * math.Cos(az),
		Y: r * math.Sin(el),
		Z: r * math.Cos(el) * math.Sin(az),
	})
	return true
}

// Pan slides the camera and its target together across the view plane.
func (c *Controller) Pan(dx, dy float64) bool {
	if !c.InputEnabled() || math.IsNaN(dx) || math.IsNaN(dy) {
		return false
	}
	c.Activity()

	forward := c.pose.Target.Sub(c.pose.Position).Normalized()
	right := forward.Cross(worldUp).Normalized()
	if right.Norm() == 0 {
		right = astro.Vec3{X: 1}
	}
	up := right.Cross(forward).Normalized()

	shift := right.Scale(dx).Add(up.Scale(dy))
	c.pose.Position = c.pose.Position.Add(shift)
	c.pose.Target = c.pose.Target.Add(shift)
	c.panOffset = c.panOffset.Add(shift)
	return true
}

// Zoom multiplies the camera's distance to its target by factor
// (< 1 moves closer). The result never goes below MinDistance.
func (c *Controller) Zoom(factor float64) bool {
	if !c.InputEnabled() || factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return false
	}
	c.Activity()

	offset := c.pose.Position.Sub(c.pose.Target)
	d := offset.Norm()
	if d == 0 {
		return true
	}

	nd := math.Max(d*factor, c.cfg.MinDistance)
	c.pose.Position = c.pose.Target.Add(offset.Scale(nd / d))
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
