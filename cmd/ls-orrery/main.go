// Command ls-orrery animates exoplanet systems in the terminal with a
// navigable perspective camera.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"golang.org/x/term"

	"github.com/litescript/ls-orrery/internal/config"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/render"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/ui"
)

// One simulated day per real second.
const defaultTimeScale = 86400

// options are the headless output flags.
type options struct {
	summary      bool
	watch        time.Duration
	snapshotPath string
	events       bool
	frames       int
	selectName   string
}

func (o options) headless() bool {
	return o.summary || o.snapshotPath != "" || o.events || o.watch > 0
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run does all the work so deferred cleanup happens before the process exits.
func run(args []string, stdout io.Writer) error {
	var opts options

	// Parse flags
	fs := flag.NewFlagSet("ls-orrery", flag.ContinueOnError)
	catalogPath := fs.String("catalog", "", "Exoplanet catalog JSON (default: built-in catalog)")
	configPath := fs.String("config", "", "TOML configuration file")
	logLevel := fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFile := fs.String("log-file", "", "Write logs to file (TUI mode discards logs otherwise)")
	timeScale := fs.Float64("time-scale", defaultTimeScale, "Simulated seconds per real second")
	paused := fs.Bool("paused", false, "Start with the animation paused")
	serveAddr := fs.String("serve", "", "Serve HTTP API, metrics and WebSocket stream on addr (e.g. :8080)")
	printConfig := fs.Bool("print-config", false, "Print the effective configuration as TOML and exit")
	fs.BoolVar(&opts.summary, "summary", false, "Print text summary instead of TUI")
	fs.DurationVar(&opts.watch, "watch", 0, "Run the animation and print a summary at interval (e.g., 5s)")
	fs.StringVar(&opts.snapshotPath, "snapshot-path", "", "Export JSON frame to file (use - for stdout)")
	fs.BoolVar(&opts.events, "events", false, "Show event log")
	fs.IntVar(&opts.frames, "frames", 1, "Frames to simulate before headless output")
	fs.StringVar(&opts.selectName, "select", "", "Select a body (name or Star/Planet) at startup")
	if err := fs.Parse(args); err != nil {
		return err
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	// Configuration: defaults, then file, then explicit flags
	cfg := config.DefaultConfig()
	cfg.Simulation.TimeScale = defaultTimeScale
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if explicit["time-scale"] {
		cfg.Simulation.TimeScale = *timeScale
	}
	if explicit["paused"] {
		cfg.Simulation.StartPaused = *paused
	}
	if explicit["serve"] {
		cfg.Server.Addr = *serveAddr
	}

	if *printConfig {
		return cfg.Write(stdout)
	}

	if opts.frames < 1 {
		opts.frames = 1
	}

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	headless := opts.headless()
	if !headless && !isTTY && cfg.Server.Addr == "" {
		// Nothing to draw on; fall back to a one-shot summary.
		opts.summary, headless = true, true
	}
	tui := !headless && isTTY

	// Set up logging
	logger := logging.New(logging.ParseLevel(*logLevel))
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger.SetOutput(f)
	} else if tui {
		// Keep the alt screen clean
		logger.SetOutput(io.Discard)
	}
	gin.SetMode(gin.ReleaseMode)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Initialize components
	cat, err := loadCatalog(*catalogPath)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, cat, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.scheduler.Stop(); err != nil {
			logger.Warn("close renderers: %v", err)
		}
	}()

	if opts.selectName != "" {
		a.state.Enqueue(state.Input{Kind: state.InputSelect, Name: opts.selectName})
	}

	if a.server != nil {
		go func() {
			if err := a.server.ListenAndServe(ctx); err != nil {
				logger.Error("HTTP server: %v", err)
				cancel()
			}
		}()
	}

	switch {
	case headless:
		return runHeadless(ctx, a, opts, stdout, logger)
	case tui:
		return runTUI(ctx, a)
	default:
		// Serving without a terminal: animate until signalled.
		if err := a.scheduler.Run(ctx); err != nil {
			logger.Error("animation loop: %v", err)
		}
		return nil
	}
}

func runTUI(ctx context.Context, a *app) error {
	fps := a.scheduler.Config().FrameRate
	model := ui.New(a.scheduler, a.state, a.registry.Index().Keys(), ui.Config{
		FrameInterval: time.Duration(float64(time.Second) / fps),
		Warnings:      len(a.catalog.Warnings),
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	// Run TUI (blocks until quit)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

// runHeadless handles all headless modes without starting TUI.
func runHeadless(ctx context.Context, a *app, opts options, w io.Writer, logger *logging.Logger) error {
	outputOnce := func() error {
		snap := a.state.Snapshot()
		if !snap.HasFrame {
			return fmt.Errorf("no frame committed")
		}

		// Export JSON if requested
		if opts.snapshotPath != "" {
			export := render.ExportFrame(snap.Frame, snap.Events, a.catalog.Warnings)
			if opts.snapshotPath == "-" {
				if err := export.WriteJSON(w); err != nil {
					return fmt.Errorf("write JSON to stdout: %w", err)
				}
			} else {
				f, err := os.Create(opts.snapshotPath)
				if err != nil {
					return fmt.Errorf("create snapshot file: %w", err)
				}
				defer f.Close()
				if err := export.WriteJSON(f); err != nil {
					return fmt.Errorf("write JSON to file: %w", err)
				}
			}
		}

		// Print summary table if requested
		if opts.summary {
			render.WriteSummaryTable(w, snap.Frame)
			if len(a.catalog.Warnings) > 0 {
				fmt.Fprintln(w)
				render.WriteWarnings(w, a.catalog.Warnings)
			}
		}

		// Events log
		if opts.events {
			fmt.Fprintln(w)
			render.WriteEvents(w, snap.Events, 10)
		}
		return nil
	}

	// Single run: advance a fixed number of frames at the configured rate
	if opts.watch == 0 {
		dt := time.Duration(float64(time.Second) / a.scheduler.Config().FrameRate)
		for i := 0; i < opts.frames; i++ {
			a.scheduler.Advance(dt)
		}
		return outputOnce()
	}

	// Watch mode: animate in real time and report at interval
	if !opts.summary && opts.snapshotPath == "" && !opts.events {
		opts.summary = true
	}
	go func() {
		if err := a.scheduler.Run(ctx); err != nil {
			logger.Error("animation loop: %v", err)
		}
	}()

	ticker := time.NewTicker(opts.watch)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := outputOnce(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			fmt.Fprintln(w) // Blank line between outputs
		}
	}
}
