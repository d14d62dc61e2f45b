package state

import (
	"time"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/camera"
	"github.com/litescript/ls-orrery/internal/orbit"
)

// BodyView is the render-facing view of one body.
type BodyView struct {
	Key         string     `json:"key"`
	Name        string     `json:"name"`
	Kind        orbit.Kind `json:"kind"`
	Parent      string     `json:"parent,omitempty"`
	Position    astro.Vec3 `json:"position"`
	Color       string     `json:"color"`
	Radius      float64    `json:"radius"`
	Temperature float64    `json:"temperature,omitempty"`
	Luminosity  float64    `json:"luminosity,omitempty"`
	Habitable   bool       `json:"habitable"`
	Texture     string     `json:"texture,omitempty"`
	Selected    bool       `json:"selected"`

	// Info panel fields
	RA             float64 `json:"ra,omitempty"`
	Dec            float64 `json:"dec,omitempty"`
	Distance       float64 `json:"distance,omitempty"`
	SemiMajorAxis  float64 `json:"semi_major_axis,omitempty"`
	Eccentricity   float64 `json:"eccentricity,omitempty"`
	InclinationDeg float64 `json:"inclination,omitempty"`
	PeriodDays     float64 `json:"period_days,omitempty"`
	Phase          float64 `json:"phase"`
}

// Frame is one committed tick of the scene.
type Frame struct {
	Seq       uint64       `json:"seq"`
	Time      time.Time    `json:"time"`
	SimTime   float64      `json:"sim_time"` // simulated seconds since start
	TimeScale float64      `json:"time_scale"`
	Paused    bool         `json:"paused"`
	Nav       camera.State `json:"nav"`
	Camera    camera.Pose  `json:"camera"`
	Progress  float64      `json:"progress"`
	Selection string       `json:"selection,omitempty"`
	Marker    *astro.Vec3  `json:"marker,omitempty"`
	MarkerID  uint64       `json:"marker_id,omitempty"`
	Bodies    []BodyView   `json:"bodies"`
}

// Body returns the view for key, if present.
func (f Frame) Body(key string) (BodyView, bool) {
	for _, b := range f.Bodies {
		if b.Key == key {
			return b, true
		}
	}
	return BodyView{}, false
}

// Selected returns the selected body view, if any.
func (f Frame) Selected() (BodyView, bool) {
	if f.Selection == "" {
		return BodyView{}, false
	}
	return f.Body(f.Selection)
}
