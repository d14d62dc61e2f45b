// Package camera implements the camera navigation state machine: scripted
// zoom-to-target, free user control, and the inactivity auto-reset.
package camera

import (
	"math"
	"time"

	"github.com/litescript/ls-orrery/internal/astro"
)

// State is the navigation state.
type State int

const (
	Idle State = iota
	UserControlled
	ZoomingToTarget
	AutoResetting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case UserControlled:
		return "USER_CONTROLLED"
	case ZoomingToTarget:
		return "ZOOMING_TO_TARGET"
	case AutoResetting:
		return "AUTO_RESETTING"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Pose is a camera position plus the point it looks at.
type Pose struct {
	Position astro.Vec3 `json:"position"`
	Target   astro.Vec3 `json:"target"`
}

// Distance returns the distance from the camera to its target.
func (p Pose) Distance() float64 {
	return p.Position.DistanceTo(p.Target)
}

// Transition records a state change made by the controller.
type Transition struct {
	From State
	To   State
}

// Changed reports whether the transition moved to a different state.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// Config holds controller configuration.
type Config struct {
	ZoomStep          float64       // progress added per tick
	ZoomOffset        astro.Vec3    // camera end point relative to the target
	InactivityTimeout time.Duration // idle time before auto-reset
	DefaultPose       Pose
	MinDistance       float64 // closest allowed zoom
}

// DefaultConfig returns the stock navigation constants.
func DefaultConfig() Config {
	return Config{
		ZoomStep:          0.02,
		ZoomOffset:        astro.Vec3{X: 50, Y: 50, Z: 50},
		InactivityTimeout: 10 * time.Second,
		DefaultPose: Pose{
			Position: astro.Vec3{X: 0, Y: 200, Z: 500},
			Target:   astro.Vec3{},
		},
		MinDistance: 1,
	}
}

// progressEpsilon absorbs float error when summing ZoomStep to 1.
const progressEpsilon = 1e-9

// Controller owns the camera pose and navigation state. It is not safe for
// concurrent use.
type Controller struct {
	cfg   Config
	state State
	pose  Pose

	zoomFrom  astro.Vec3
	zoomTo    astro.Vec3
	zoomTicks int
	progress  float64

	// panOffset keeps user pans while the look-at follows a moving body.
	panOffset astro.Vec3

	idle time.Duration
}

// NewController creates a controller in Idle at the default pose.
func NewController(cfg Config) *Controller {
	def := DefaultConfig()
	if cfg.ZoomStep <= 0 || cfg.ZoomStep > 1 || math.IsNaN(cfg.ZoomStep) {
		cfg.ZoomStep = def.ZoomStep
	}
	if cfg.InactivityTimeout <= 0 {
		cfg.InactivityTimeout = def.InactivityTimeout
	}
	if cfg.MinDistance < 0 {
		cfg.MinDistance = 0
	}
	if !cfg.ZoomOffset.IsFinite() {
		cfg.ZoomOffset = def.ZoomOffset
	}
	if !cfg.DefaultPose.Position.IsFinite() || !cfg.DefaultPose.Target.IsFinite() {
		cfg.DefaultPose = def.DefaultPose
	}

	return &Controller{
		cfg:   cfg,
		state: Idle,
		pose:  cfg.DefaultPose,
	}
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// State returns the current navigation state.
func (c *Controller) State() State {
	return c.state
}

// Pose returns the current camera pose.
func (c *Controller) Pose() Pose {
	return c.pose
}

// Progress returns zoom progress in [0, 1]. It is 0 outside a zoom.
func (c *Controller) Progress() float64 {
	return c.progress
}

// IdleFor returns the time since the last user activity in UserControlled.
func (c *Controller) IdleFor() time.Duration {
	return c.idle
}

// InputEnabled reports whether user manipulation is currently accepted.
func (c *Controller) InputEnabled() bool {
	return c.state == Idle || c.state == UserControlled
}

func (c *Controller) transition(to State) Transition {
	tr := Transition{From: c.state, To: to}
	c.state = to
	return tr
}

// Select starts a zoom toward target from the current camera position.
// It works from any state; a zoom in flight is replaced.
func (c *Controller) Select(target astro.Vec3) Transition {
	c.zoomFrom = c.pose.Position
	c.zoomTo = target.Add(c.cfg.ZoomOffset)
	c.zoomTicks = 0
	c.progress = 0
	c.idle = 0
	c.panOffset = astro.Vec3{}
	c.pose.Target = target
	return c.transition(ZoomingToTarget)
}

// Step advances the controller by one tick. dt is real elapsed time and
// only feeds the inactivity timer. target is the selected body's current
// world position; hasTarget is false when nothing is selected.
func (c *Controller) Step(dt time.Duration, target astro.Vec3, hasTarget bool) Transition {
	switch c.state {
	case ZoomingToTarget:
		if !hasTarget {
			c.progress = 0
			c.idle = 0
			return c.transition(UserControlled)
		}

		c.zoomTicks++
		c.progress = float64(c.zoomTicks) * c.cfg.ZoomStep
		if c.progress >= 1-progressEpsilon {
			c.progress = 1
		}
		c.pose.Position = astro.Lerp(c.zoomFrom, c.zoomTo, c.progress)
		c.pose.Target = target

		if c.progress == 1 {
			c.progress = 0
			c.idle = 0
			return c.transition(UserControlled)
		}

	case UserControlled:
		if hasTarget {
			c.pose.Target = target.Add(c.panOffset)
		}
		if dt > 0 {
			c.idle += dt
		}
		if c.idle >= c.cfg.InactivityTimeout {
			return c.transition(AutoResetting)
		}
	}

	return Transition{From: c.state, To: c.state}
}

// Activity records user input and restarts the inactivity timer.
func (c *Controller) Activity() {
	c.idle = 0
}

// RequestReset forces AutoResetting from any state.
func (c *Controller) RequestReset() Transition {
	c.progress = 0
	return c.transition(AutoResetting)
}

// FinishReset snaps to the default pose and returns to Idle. The caller is
// responsible for clearing selection and marker in the same tick.
func (c *Controller) FinishReset() Transition {
	c.pose = c.cfg.DefaultPose
	c.progress = 0
	c.zoomTicks = 0
	c.idle = 0
	c.panOffset = astro.Vec3{}
	return c.transition(Idle)
}
