// Package api exposes the scene over HTTP: body listings and the current
// frame, input endpoints feeding the tick's inbox, Prometheus metrics and
// the WebSocket frame stream.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/state"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr        string
	CORSOrigins []string
	InputRate   float64 // input requests per second per client IP
	InputBurst  int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		CORSOrigins: []string{"*"},
		InputRate:   20,
		InputBurst:  40,
	}
}

// Deps are what the handlers read from and write to.
type Deps struct {
	State    *state.Manager
	Index    *scene.Index
	Warnings []catalog.Warning
	Metrics  *metrics.Collector
	Stream   http.Handler // WebSocket frame stream, optional
	Logger   *logging.Logger
}

// Server is the HTTP surface of the orrery.
type Server struct {
	cfg     Config
	deps    Deps
	logger  *logging.Logger
	limiter *IPRateLimiter
	router  *gin.Engine
	httpSrv *http.Server
}

// NewServer builds the router. deps.State and deps.Index are required.
func NewServer(cfg Config, deps Deps) *Server {
	def := DefaultConfig()
	if cfg.InputRate <= 0 {
		cfg.InputRate = def.InputRate
	}
	if cfg.InputBurst <= 0 {
		cfg.InputBurst = def.InputBurst
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = def.CORSOrigins
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Server{
		cfg:     cfg,
		deps:    deps,
		logger:  logger,
		limiter: NewIPRateLimiter(rate.Limit(cfg.InputRate), cfg.InputBurst),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(s.cfg.CORSOrigins) == 1 && s.cfg.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.cfg.CORSOrigins
	}
	r.Use(cors.New(corsCfg))

	api := r.Group("/api")
	{
		api.GET("/bodies", s.getBodies)
		api.GET("/bodies/*name", s.getBody)
		api.GET("/frame", s.getFrame)
		api.GET("/events", s.getEvents)
		api.GET("/warnings", s.getWarnings)
	}

	input := api.Group("", s.limiter.Middleware())
	{
		input.POST("/select/*name", s.postSelect)
		input.POST("/pause", s.postInput(state.InputPause))
		input.POST("/resume", s.postInput(state.InputResume))
		input.POST("/toggle", s.postInput(state.InputTogglePause))
		input.POST("/reset", s.postInput(state.InputReset))
		input.POST("/activity", s.postInput(state.InputActivity))
	}

	if s.deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}
	if s.deps.Stream != nil {
		r.GET("/ws", gin.WrapH(s.deps.Stream))
	}
	return r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening on %s", s.cfg.Addr)
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info("HTTP API stopped")
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}

func (s *Server) getBodies(c *gin.Context) {
	frame, ok := s.deps.State.Frame()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no frame committed yet"})
		return
	}

	bodies := frame.Bodies
	if kind := strings.ToLower(c.Query("kind")); kind != "" {
		filtered := make([]state.BodyView, 0, len(bodies))
		for _, b := range bodies {
			if b.Kind.String() == kind {
				filtered = append(filtered, b)
			}
		}
		bodies = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  bodies,
		"count": len(bodies),
		"seq":   frame.Seq,
	})
}

func (s *Server) getBody(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("name"), "/")
	key, ok := s.deps.Index.ResolveKey(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Body not found"})
		return
	}
	frame, ok := s.deps.State.Frame()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no frame committed yet"})
		return
	}
	body, ok := frame.Body(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Body not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": body})
}

func (s *Server) getFrame(c *gin.Context) {
	frame, ok := s.deps.State.Frame()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no frame committed yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": frame})
}

func (s *Server) getEvents(c *gin.Context) {
	snap := s.deps.State.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"data":    snap.Events,
		"count":   len(snap.Events),
		"pending": snap.Pending,
		"dropped": snap.Dropped,
	})
}

func (s *Server) getWarnings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data":  s.deps.Warnings,
		"count": len(s.deps.Warnings),
	})
}

func (s *Server) postSelect(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("name"), "/")
	// Unknown names still reach the tick so the miss is recorded there.
	if !s.enqueue(c, state.Input{Kind: state.InputSelect, Name: name}) {
		return
	}
	key, ok := s.deps.Index.ResolveKey(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Body not found", "name": name})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": state.InputSelect, "key": key})
}

func (s *Server) postInput(kind state.InputKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.enqueue(c, state.Input{Kind: kind}) {
			c.JSON(http.StatusAccepted, gin.H{"queued": kind})
		}
	}
}

// enqueue writes a 503 and returns false when the inbox is full.
func (s *Server) enqueue(c *gin.Context, in state.Input) bool {
	if s.deps.State.Enqueue(in) {
		return true
	}
	s.logger.Warn("input inbox full, dropping %s from %s", in.Kind, c.ClientIP())
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "input queue full"})
	return false
}
