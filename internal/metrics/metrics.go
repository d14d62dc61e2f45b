// Package metrics exposes Prometheus metrics for the animation loop.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the engine's Prometheus metrics. A nil *Collector is
// valid and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	FramesTotal          prometheus.Counter
	TickDuration         prometheus.Histogram
	Transitions          *prometheus.CounterVec
	SelectionMisses      prometheus.Counter
	MarkerReplacements   prometheus.Counter
	InputsTotal          *prometheus.CounterVec
	Bodies               prometheus.Gauge
	Paused               prometheus.Gauge
	RendererErrorsTotal  prometheus.Counter
	WebsocketConnections prometheus.Gauge
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil. Registering twice against one registry returns the
// already registered collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	frames, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orrery_frames_total",
		Help: "Total number of committed animation frames.",
	}), "orrery_frames_total")
	if err != nil {
		return nil, err
	}

	tickDuration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orrery_tick_duration_seconds",
		Help:    "Wall time spent inside one scheduler tick.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
	}), "orrery_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	transitions, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orrery_navigation_transitions_total",
		Help: "Camera navigation state transitions, labeled by source and destination state.",
	}, []string{"from", "to"}), "orrery_navigation_transitions_total")
	if err != nil {
		return nil, err
	}

	misses, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orrery_selection_misses_total",
		Help: "Selections that named no known body.",
	}), "orrery_selection_misses_total")
	if err != nil {
		return nil, err
	}

	markers, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orrery_marker_replacements_total",
		Help: "Selection markers released to make way for a new one or on reset.",
	}), "orrery_marker_replacements_total")
	if err != nil {
		return nil, err
	}

	inputs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orrery_inputs_total",
		Help: "User inputs applied at tick boundaries, labeled by kind.",
	}, []string{"kind"}), "orrery_inputs_total")
	if err != nil {
		return nil, err
	}

	bodies, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orrery_bodies",
		Help: "Number of stars and planets in the scene.",
	}), "orrery_bodies")
	if err != nil {
		return nil, err
	}

	paused, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orrery_paused",
		Help: "1 when orbital animation is paused.",
	}), "orrery_paused")
	if err != nil {
		return nil, err
	}

	renderErrors, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orrery_renderer_errors_total",
		Help: "Errors returned by frame renderers.",
	}), "orrery_renderer_errors_total")
	if err != nil {
		return nil, err
	}

	wsConns, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orrery_websocket_connections",
		Help: "Open WebSocket frame subscribers.",
	}), "orrery_websocket_connections")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:             gatherer,
		FramesTotal:          frames,
		TickDuration:         tickDuration,
		Transitions:          transitions,
		SelectionMisses:      misses,
		MarkerReplacements:   markers,
		InputsTotal:          inputs,
		Bodies:               bodies,
		Paused:               paused,
		RendererErrorsTotal:  renderErrors,
		WebsocketConnections: wsConns,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveTick records one committed frame and its duration.
func (c *Collector) ObserveTick(d time.Duration) {
	if c == nil {
		return
	}
	c.FramesTotal.Inc()
	c.TickDuration.Observe(d.Seconds())
}

// ObserveTransition counts a navigation state change.
func (c *Collector) ObserveTransition(from, to string) {
	if c == nil {
		return
	}
	c.Transitions.WithLabelValues(from, to).Inc()
}

// ObserveSelectionMiss counts a selection of an unknown body.
func (c *Collector) ObserveSelectionMiss() {
	if c == nil {
		return
	}
	c.SelectionMisses.Inc()
}

// ObserveMarkerReplacement counts a released marker.
func (c *Collector) ObserveMarkerReplacement() {
	if c == nil {
		return
	}
	c.MarkerReplacements.Inc()
}

// ObserveInput counts an applied input.
func (c *Collector) ObserveInput(kind string) {
	if c == nil {
		return
	}
	c.InputsTotal.WithLabelValues(kind).Inc()
}

// ObserveRendererError counts a renderer failure.
func (c *Collector) ObserveRendererError() {
	if c == nil {
		return
	}
	c.RendererErrorsTotal.Inc()
}

// SetBodies sets the body gauge.
func (c *Collector) SetBodies(n int) {
	if c == nil {
		return
	}
	c.Bodies.Set(float64(n))
}

// SetPaused sets the paused gauge.
func (c *Collector) SetPaused(paused bool) {
	if c == nil {
		return
	}
	if paused {
		c.Paused.Set(1)
	} else {
		c.Paused.Set(0)
	}
}

// AddWebsocketConnections adjusts the open subscriber gauge by delta.
func (c *Collector) AddWebsocketConnections(delta int) {
	if c == nil {
		return
	}
	c.WebsocketConnections.Add(float64(delta))
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
