// Package engine runs the per-frame animation tick that ties the orbital
// simulator, scene registry and camera controller together.
package engine

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/camera"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
)

// ErrRunning is returned by Run when the loop is already running.
var ErrRunning = errors.New("scheduler already running")

// ErrStopped is returned by Run after Stop.
var ErrStopped = errors.New("scheduler stopped")

// Config holds scheduler configuration.
type Config struct {
	FrameRate     float64       // ticks per second for Run
	MaxFrameDelta time.Duration // larger real gaps are clamped
	TimeScale     float64       // simulated seconds per real second
	StartPaused   bool
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		FrameRate:     30,
		MaxFrameDelta: 250 * time.Millisecond,
		TimeScale:     1,
	}
}

// Deps are the components a scheduler drives.
type Deps struct {
	Registry  *scene.Registry
	Simulator *orbit.Simulator
	Camera    *camera.Controller
	State     *state.Manager
	Renderer  Renderer
	Logger    *logging.Logger
	Metrics   *metrics.Collector
}

// Scheduler owns the single writer tick. Tick and Advance serialize on an
// internal mutex; input producers go through the state manager's inbox.
type Scheduler struct {
	cfg Config

	registry *scene.Registry
	sim      *orbit.Simulator
	cam      *camera.Controller
	state    *state.Manager
	renderer *onceRenderer
	logger   *logging.Logger
	metrics  *metrics.Collector

	tickMu   sync.Mutex
	lastTick time.Time
	seq      uint64
	simTime  float64
	paused   bool

	// resetRequested distinguishes an explicit reset from the inactivity one.
	resetRequested bool

	running  atomic.Bool
	stopOnce sync.Once
	stopped  chan struct{}
	runDone  sync.WaitGroup
}

// NewScheduler creates a scheduler over deps.
func NewScheduler(cfg Config, deps Deps) *Scheduler {
	def := DefaultConfig()
	if cfg.FrameRate <= 0 || math.IsNaN(cfg.FrameRate) || math.IsInf(cfg.FrameRate, 0) {
		cfg.FrameRate = def.FrameRate
	}
	if cfg.MaxFrameDelta <= 0 {
		cfg.MaxFrameDelta = def.MaxFrameDelta
	}
	if cfg.TimeScale < 0 || math.IsNaN(cfg.TimeScale) || math.IsInf(cfg.TimeScale, 0) {
		cfg.TimeScale = def.TimeScale
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	r := deps.Renderer
	if r == nil {
		r = nopRenderer{}
	}
	st := deps.State
	if st == nil {
		st = state.NewManager(state.DefaultConfig())
	}
	cam := deps.Camera
	if cam == nil {
		cam = camera.NewController(camera.DefaultConfig())
	}
	sim := deps.Simulator
	if sim == nil {
		sim = orbit.NewSimulator(orbit.DefaultConfig())
	}
	reg := deps.Registry
	if reg == nil {
		reg = scene.NewRegistry(nil)
	}

	s := &Scheduler{
		cfg:      cfg,
		registry: reg,
		sim:      sim,
		cam:      cam,
		state:    st,
		renderer: &onceRenderer{Renderer: r},
		logger:   logger,
		metrics:  deps.Metrics,
		paused:   cfg.StartPaused,
		stopped:  make(chan struct{}),
	}

	reg.MarkerReleased = func(*scene.Marker) {
		s.metrics.ObserveMarkerReplacement()
	}
	s.metrics.SetBodies(reg.Len())
	s.metrics.SetPaused(s.paused)

	return s
}

// Config returns the effective configuration.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// State returns the state manager fed by this scheduler.
func (s *Scheduler) State() *state.Manager {
	return s.state
}

// Tick advances the scene by the real time elapsed since the previous tick.
// Orbital motion is clamped to MaxFrameDelta per tick; the inactivity timer
// is not. The first tick advances by zero.
func (s *Scheduler) Tick(now time.Time) Frame {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	var dt time.Duration
	if !s.lastTick.IsZero() {
		dt = now.Sub(s.lastTick)
	}
	s.lastTick = now
	return s.advance(dt, now)
}

// Advance runs one tick with an explicit real-time delta.
func (s *Scheduler) Advance(dt time.Duration) Frame {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	return s.advance(dt, time.Now())
}

func (s *Scheduler) advance(dt time.Duration, now time.Time) Frame {
	start := time.Now()

	if dt < 0 {
		dt = 0
	}
	// Only orbital motion is clamped; the inactivity timer sees real time.
	stepDT := min(dt, s.cfg.MaxFrameDelta)

	// 0. Apply queued input.
	for _, in := range s.state.Drain() {
		s.apply(in)
	}

	// 1. Orbital motion.
	simDT := stepDT.Seconds() * s.cfg.TimeScale
	s.sim.Step(s.registry.Bodies(), simDT, !s.paused)
	if !s.paused {
		s.simTime += simDT
	}

	// 2. World positions and marker tracking.
	s.registry.Refresh()

	// 3. Camera.
	target, hasTarget := s.selectedPosition()
	s.record(s.cam.Step(dt, target, hasTarget))
	if s.cam.State() == camera.AutoResetting {
		s.finishReset()
	}

	// 4. Commit and hand off.
	s.seq++
	f := s.buildFrame(now)
	s.state.Commit(f)
	if !s.isStopped() {
		if err := s.renderer.Render(f); err != nil {
			s.logger.Warn("render frame %d: %v", f.Seq, err)
			s.metrics.ObserveRendererError()
		}
	}

	s.metrics.ObserveTick(time.Since(start))
	return f
}

func (s *Scheduler) selectedPosition() (astro.Vec3, bool) {
	idx, ok := s.registry.Selection()
	if !ok {
		return astro.Vec3{}, false
	}
	return s.registry.WorldPosition(idx)
}

func (s *Scheduler) apply(in state.Input) {
	s.metrics.ObserveInput(string(in.Kind))

	switch in.Kind {
	case state.InputSelect:
		s.selectBody(in.Name)
	case state.InputPause:
		s.setPaused(true)
	case state.InputResume:
		s.setPaused(false)
	case state.InputTogglePause:
		s.setPaused(!s.paused)
	case state.InputReset:
		s.resetRequested = true
		s.record(s.cam.RequestReset())
	case state.InputActivity:
		s.cam.Activity()
	case state.InputOrbit:
		s.cam.Orbit(in.DX, in.DY)
	case state.InputPan:
		s.cam.Pan(in.DX, in.DY)
	case state.InputZoom:
		s.cam.Zoom(in.Factor)
	default:
		s.logger.Debug("ignoring unknown input kind %q", in.Kind)
	}
}

func (s *Scheduler) selectBody(name string) {
	idx, ok := s.registry.Resolve(name)
	if !ok {
		s.logger.Warn("select: unknown body %q", name)
		s.metrics.ObserveSelectionMiss()
		s.state.AddEvent(state.Event{Type: state.EventSelectionMiss, Body: name})
		return
	}

	s.resetRequested = false
	s.registry.SetSelection(idx)
	pos, _ := s.registry.WorldPosition(idx)
	s.registry.UpsertMarker(pos)

	key := s.registry.SelectedKey()
	s.logger.Debug("select %s at (%.2f, %.2f, %.2f)", key, pos.X, pos.Y, pos.Z)
	s.state.AddEvent(state.Event{Type: state.EventSelected, Body: key})
	s.record(s.cam.Select(pos))
}

func (s *Scheduler) setPaused(paused bool) {
	if s.paused == paused {
		return
	}
	s.paused = paused
	s.metrics.SetPaused(paused)

	et := state.EventResumed
	if paused {
		et = state.EventPaused
	}
	s.state.AddEvent(state.Event{Type: et})
	s.logger.Debug("animation %s", et)
}

func (s *Scheduler) finishReset() {
	s.registry.Reset()
	s.record(s.cam.FinishReset())

	et := state.EventAutoReset
	if s.resetRequested {
		et = state.EventReset
	}
	s.resetRequested = false
	s.state.AddEvent(state.Event{Type: et})
	s.logger.Info("camera reset (%s)", et)
}

// record logs and counts a state change. Zoom completion is also an event.
func (s *Scheduler) record(tr camera.Transition) {
	if !tr.Changed() {
		return
	}
	s.metrics.ObserveTransition(tr.From.String(), tr.To.String())
	s.logger.Debug("navigation %s -> %s", tr.From, tr.To)

	if tr.From == camera.ZoomingToTarget && tr.To == camera.UserControlled {
		s.state.AddEvent(state.Event{
			Type: state.EventZoomComplete,
			Body: s.registry.SelectedKey(),
			From: tr.From.String(),
			To:   tr.To.String(),
		})
	}
}

func (s *Scheduler) buildFrame(now time.Time) Frame {
	bodies := s.registry.Bodies()
	selIdx, hasSel := s.registry.Selection()

	views := make([]state.BodyView, len(bodies))
	for i := range bodies {
		views[i] = bodyView(bodies, i, s.registry)
		views[i].Selected = hasSel && i == selIdx
	}

	f := Frame{
		Seq:       s.seq,
		Time:      now,
		SimTime:   s.simTime,
		TimeScale: s.cfg.TimeScale,
		Paused:    s.paused,
		Nav:       s.cam.State(),
		Camera:    s.cam.Pose(),
		Progress:  s.cam.Progress(),
		Selection: s.registry.SelectedKey(),
		Bodies:    views,
	}
	if m := s.registry.Marker(); m != nil {
		pos := m.Position
		f.Marker = &pos
		f.MarkerID = m.ID()
	}
	return f
}

func bodyView(bodies []orbit.Body, i int, reg *scene.Registry) state.BodyView {
	b := &bodies[i]
	world, _ := reg.WorldPosition(i)

	v := state.BodyView{
		Key:         b.Key,
		Name:        b.Name,
		Kind:        b.Kind,
		Position:    world,
		Radius:      b.Radius,
		Temperature: b.Temperature,
		Luminosity:  b.Luminosity,
		Habitable:   b.Habitable,
		Texture:     b.Texture,
		Phase:       b.Phase,
	}

	if b.IsStar() {
		v.Color = astro.TemperatureColor(b.Temperature).Hex()
		v.RA = b.RA
		v.Dec = b.Dec
		v.Distance = b.Distance
	} else {
		v.Color = astro.PlanetColor(b.Habitable).Hex()
		v.SemiMajorAxis = b.SemiMajorAxis
		v.Eccentricity = b.Eccentricity
		v.InclinationDeg = b.InclinationDeg
		v.PeriodDays = b.PeriodDays
		if b.Parent >= 0 && b.Parent < len(bodies) {
			v.Parent = bodies[b.Parent].Key
		}
	}
	return v
}

// Run ticks at FrameRate until ctx is cancelled or Stop is called. It can be
// called again after it returns, until Stop.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.isStopped() {
		return ErrStopped
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	s.runDone.Add(1)
	defer func() {
		s.running.Store(false)
		s.runDone.Done()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stopped:
			cancel()
		case <-ctx.Done():
		}
	}()

	limiter := rate.NewLimiter(rate.Limit(s.cfg.FrameRate), 1)
	s.tickMu.Lock()
	s.lastTick = time.Time{}
	s.tickMu.Unlock()

	s.logger.Info("animation loop started at %.0f fps", s.cfg.FrameRate)
	for {
		if err := limiter.Wait(ctx); err != nil {
			s.logger.Info("animation loop stopped after frame %d", s.lastSeq())
			return nil
		}
		s.Tick(time.Now())
	}
}

func (s *Scheduler) isStopped() bool {
	select {
	case <-s.stopped:
		return true
	default:
		return false
	}
}

func (s *Scheduler) lastSeq() uint64 {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	return s.seq
}

// Stop ends Run, waits for it to return, and closes the renderer. It is
// safe to call more than once.
func (s *Scheduler) Stop() error {
	s.stopOnce.Do(func() {
		close(s.stopped)
	})
	s.runDone.Wait()

	// Serialize with any Tick driven from outside Run.
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	return s.renderer.Close()
}
