package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/litescript/ls-orrery/internal/api"
	"github.com/litescript/ls-orrery/internal/camera"
	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/config"
	"github.com/litescript/ls-orrery/internal/engine"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/render"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
)

// app holds the wired components for one run.
type app struct {
	cfg       config.Config
	catalog   *catalog.Catalog
	registry  *scene.Registry
	state     *state.Manager
	scheduler *engine.Scheduler
	metrics   *metrics.Collector
	stream    *render.Broadcaster // nil unless serving
	server    *api.Server         // nil unless serving
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

func newApp(cfg config.Config, cat *catalog.Catalog, logger *logging.Logger) (*app, error) {
	for _, w := range cat.Warnings {
		logger.Named("catalog").Warn("%s", w)
	}
	logger.Info("Loaded %d star systems, %d bodies (%d warnings)",
		len(cat.Systems), cat.BodyCount(), len(cat.Warnings))

	m, err := metrics.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	bodies := orbit.BuildBodies(cat, cfg.Orbit())
	reg := scene.NewRegistry(bodies)
	st := state.NewManager(cfg.StateConfig())

	a := &app{
		cfg:      cfg,
		catalog:  cat,
		registry: reg,
		state:    st,
		metrics:  m,
	}

	var renderers []engine.Renderer
	if cfg.Server.Addr != "" {
		a.stream = render.NewBroadcaster(logger.Named("ws"), m)
		renderers = append(renderers, a.stream)
	}

	a.scheduler = engine.NewScheduler(cfg.Engine(), engine.Deps{
		Registry:  reg,
		Simulator: orbit.NewSimulator(cfg.Orbit()),
		Camera:    camera.NewController(cfg.CameraConfig()),
		State:     st,
		Renderer:  engine.MultiRenderer(renderers...),
		Logger:    logger.Named("engine"),
		Metrics:   m,
	})

	if a.stream != nil {
		a.server = api.NewServer(api.Config{
			Addr:        cfg.Server.Addr,
			CORSOrigins: cfg.Server.CORSOrigins,
			InputRate:   cfg.Server.InputRate,
			InputBurst:  cfg.Server.InputBurst,
		}, api.Deps{
			State:    st,
			Index:    reg.Index(),
			Warnings: cat.Warnings,
			Metrics:  m,
			Stream:   a.stream,
			Logger:   logger.Named("api"),
		})
	}
	return a, nil
}
