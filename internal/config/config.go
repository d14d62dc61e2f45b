// Package config loads the orrery configuration from an optional TOML file
// and maps it onto each component's own Config.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/camera"
	"github.com/litescript/ls-orrery/internal/engine"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/state"
)

// Duration is a time.Duration written as a Go duration string ("10s").
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Vector is an x, y, z triple.
type Vector [3]float64

func (v Vector) vec() astro.Vec3 {
	return astro.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

func vector(v astro.Vec3) Vector {
	return Vector{v.X, v.Y, v.Z}
}

// Simulation is the [simulation] section.
type Simulation struct {
	DistanceScale float64 `toml:"distance_scale"`
	TimeScale     float64 `toml:"time_scale"`
	StartPaused   bool    `toml:"start_paused"`
}

// Camera is the [camera] section.
type Camera struct {
	ZoomStep          float64  `toml:"zoom_step"`
	InactivityTimeout Duration `toml:"inactivity_timeout"`
	ZoomOffset        Vector   `toml:"zoom_offset"`
	DefaultPosition   Vector   `toml:"default_position"`
	DefaultTarget     Vector   `toml:"default_target"`
	MinDistance       float64  `toml:"min_distance"`
}

// Scheduler is the [scheduler] section.
type Scheduler struct {
	FrameRate     float64  `toml:"frame_rate"`
	MaxFrameDelta Duration `toml:"max_frame_delta"`
}

// Server is the [server] section. An empty Addr disables the HTTP surface.
type Server struct {
	Addr        string   `toml:"addr"`
	CORSOrigins []string `toml:"cors_origins"`
	InputRate   float64  `toml:"input_rate"`  // input requests per second per client
	InputBurst  int      `toml:"input_burst"` // burst allowance per client
}

// State is the [state] section.
type State struct {
	MaxEvents  int `toml:"max_events"`
	MaxPending int `toml:"max_pending"`
}

// Config is the full application configuration.
type Config struct {
	Simulation Simulation `toml:"simulation"`
	Camera     Camera     `toml:"camera"`
	Scheduler  Scheduler  `toml:"scheduler"`
	Server     Server     `toml:"server"`
	State      State      `toml:"state"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	sim := orbit.DefaultConfig()
	cam := camera.DefaultConfig()
	sched := engine.DefaultConfig()
	st := state.DefaultConfig()
	return Config{
		Simulation: Simulation{
			DistanceScale: sim.DistanceScale,
			TimeScale:     sched.TimeScale,
			StartPaused:   sched.StartPaused,
		},
		Camera: Camera{
			ZoomStep:          cam.ZoomStep,
			InactivityTimeout: Duration(cam.InactivityTimeout),
			ZoomOffset:        vector(cam.ZoomOffset),
			DefaultPosition:   vector(cam.DefaultPose.Position),
			DefaultTarget:     vector(cam.DefaultPose.Target),
			MinDistance:       cam.MinDistance,
		},
		Scheduler: Scheduler{
			FrameRate:     sched.FrameRate,
			MaxFrameDelta: Duration(sched.MaxFrameDelta),
		},
		Server: Server{
			CORSOrigins: []string{"*"},
			InputRate:   20,
			InputBurst:  40,
		},
		State: State{
			MaxEvents:  st.MaxEvents,
			MaxPending: st.MaxPending,
		},
	}
}

// Parse decodes TOML over the defaults. Keys absent from data keep their
// default values.
func Parse(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config TOML: %w", err)
	}
	return cfg, nil
}

// Load reads and parses the TOML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Orbit returns the simulator configuration.
func (c Config) Orbit() orbit.Config {
	return orbit.Config{DistanceScale: c.Simulation.DistanceScale}
}

// CameraConfig returns the navigation controller configuration.
func (c Config) CameraConfig() camera.Config {
	return camera.Config{
		ZoomStep:          c.Camera.ZoomStep,
		ZoomOffset:        c.Camera.ZoomOffset.vec(),
		InactivityTimeout: time.Duration(c.Camera.InactivityTimeout),
		DefaultPose: camera.Pose{
			Position: c.Camera.DefaultPosition.vec(),
			Target:   c.Camera.DefaultTarget.vec(),
		},
		MinDistance: c.Camera.MinDistance,
	}
}

// Engine returns the scheduler configuration.
func (c Config) Engine() engine.Config {
	return engine.Config{
		FrameRate:     c.Scheduler.FrameRate,
		MaxFrameDelta: time.Duration(c.Scheduler.MaxFrameDelta),
		TimeScale:     c.Simulation.TimeScale,
		StartPaused:   c.Simulation.StartPaused,
	}
}

// StateConfig returns the state manager configuration.
func (c Config) StateConfig() state.Config {
	return state.Config{
		MaxEvents:  c.State.MaxEvents,
		MaxPending: c.State.MaxPending,
	}
}
