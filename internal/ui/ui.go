// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-orrery/internal/camera"
	"github.com/litescript/ls-orrery/internal/render"
	"github.com/litescript/ls-orrery/internal/state"
	"github.com/litescript/ls-orrery/internal/version"
)

// Ticker advances the scene one frame. *engine.Scheduler implements it.
type Ticker interface {
	Tick(now time.Time) state.Frame
}

// Msg types for Bubble Tea
type (
	// FrameMsg triggers one animation tick.
	FrameMsg time.Time
)

// Orbit and zoom steps per key press.
const (
	orbitStep    = 0.08 // radians
	panStep      = 10   // world units
	zoomInFactor = 0.8
	eventLines   = 4
)

// Config holds UI configuration.
type Config struct {
	FrameInterval time.Duration
	Warnings      int // catalog warnings, shown in the footer
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{FrameInterval: time.Second / 30}
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	ticker Ticker
	state  *state.Manager
	cfg    Config

	// UI state
	width     int
	height    int
	ready     bool
	statusMsg string

	// Selection cycling over qualified body keys
	keys   []string
	cursor int

	scene  SceneViewModel
	frame  state.Frame
	events []state.Event
}

// New creates a new root UI model. keys lists selectable bodies in
// catalog order.
func New(ticker Ticker, stateMgr *state.Manager, keys []string, cfg Config) Model {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultConfig().FrameInterval
	}
	return Model{
		ticker: ticker,
		state:  stateMgr,
		cfg:    cfg,
		keys:   keys,
		cursor: -1,
		scene:  NewSceneViewModel(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return frameCmd(m.cfg.FrameInterval)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.enqueue(state.Input{Kind: state.InputZoom, Factor: zoomInFactor})
		case tea.MouseButtonWheelDown:
			m.enqueue(state.Input{Kind: state.InputZoom, Factor: 1 / zoomInFactor})
		default:
			m.enqueue(state.Input{Kind: state.InputActivity})
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		// Header 3 lines, HUD and events below the canvas, footer 2 lines
		m.scene = m.scene.SetSize(msg.Width, msg.Height-5-eventLines)

	case FrameMsg:
		m.frame = m.ticker.Tick(time.Time(msg))
		m.events = m.state.RecentEvents(eventLines)
		m.scene = m.scene.UpdateFrame(m.frame)
		m.syncCursor()
		return m, frameCmd(m.cfg.FrameInterval)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	// Selection
	case "tab", "]", "n":
		m.selectStep(1)
	case "shift+tab", "[", "N":
		m.selectStep(-1)

	// Playback
	case " ", "space", "p":
		m.enqueue(state.Input{Kind: state.InputTogglePause})
	case "r":
		m.enqueue(state.Input{Kind: state.InputReset})

	// Camera
	case "left":
		m.enqueue(state.Input{Kind: state.InputOrbit, DX: -orbitStep})
	case "right":
		m.enqueue(state.Input{Kind: state.InputOrbit, DX: orbitStep})
	case "up":
		m.enqueue(state.Input{Kind: state.InputOrbit, DY: orbitStep})
	case "down":
		m.enqueue(state.Input{Kind: state.InputOrbit, DY: -orbitStep})
	case "a":
		m.enqueue(state.Input{Kind: state.InputPan, DX: -panStep})
	case "d":
		m.enqueue(state.Input{Kind: state.InputPan, DX: panStep})
	case "w":
		m.enqueue(state.Input{Kind: state.InputPan, DY: panStep})
	case "s":
		m.enqueue(state.Input{Kind: state.InputPan, DY: -panStep})
	case "+", "=":
		m.enqueue(state.Input{Kind: state.InputZoom, Factor: zoomInFactor})
	case "-":
		m.enqueue(state.Input{Kind: state.InputZoom, Factor: 1 / zoomInFactor})

	// Display
	case "l":
		m.scene = m.scene.CycleLabels()
		m.enqueue(state.Input{Kind: state.InputActivity})

	default:
		m.enqueue(state.Input{Kind: state.InputActivity})
	}
	return m, nil
}

// selectStep moves the selection cursor and queues the selection.
func (m *Model) selectStep(delta int) {
	if len(m.keys) == 0 {
		return
	}
	n := len(m.keys)
	switch {
	case m.cursor < 0 && delta > 0:
		m.cursor = 0
	case m.cursor < 0:
		m.cursor = n - 1
	default:
		m.cursor = ((m.cursor+delta)%n + n) % n
	}
	m.enqueue(state.Input{Kind: state.InputSelect, Name: m.keys[m.cursor]})
}

// syncCursor follows selections made elsewhere (API, reset).
func (m *Model) syncCursor() {
	if m.frame.Selection == "" {
		return
	}
	for i, k := range m.keys {
		if k == m.frame.Selection {
			m.cursor = i
			return
		}
	}
}

func (m *Model) enqueue(in state.Input) {
	if !m.state.Enqueue(in) {
		m.statusMsg = "input queue full"
		return
	}
	m.statusMsg = ""
}

// Frame returns the last frame the model rendered.
func (m Model) Frame() state.Frame {
	return m.frame
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.scene.View())
	b.WriteString("\n")
	b.WriteString(m.renderEvents())
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	title := "  ✦ LS-ORRERY ✦  exoplanet systems"

	var b strings.Builder
	runes := []rune(title)
	for col, r := range runes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(col, len(runes))))
		b.WriteString(style.Render(string(r)))
	}
	b.WriteString(muted.Render(fmt.Sprintf("   v%s", version.Version)))
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	return b.String()
}

// gradientColor returns a hex color for a position in the title gradient:
// blue -> purple -> magenta -> pink.
func gradientColor(col, width int) string {
	stops := []colorful.Color{
		{R: 59 / 255.0, G: 130 / 255.0, B: 246 / 255.0},
		{R: 139 / 255.0, G: 92 / 255.0, B: 246 / 255.0},
		{R: 217 / 255.0, G: 70 / 255.0, B: 239 / 255.0},
		{R: 236 / 255.0, G: 72 / 255.0, B: 153 / 255.0},
	}
	if width <= 1 {
		return stops[0].Hex()
	}
	pos := float64(col) / float64(width-1) * float64(len(stops)-1)
	i := int(pos)
	if i >= len(stops)-1 {
		return stops[len(stops)-1].Hex()
	}
	return stops[i].BlendLab(stops[i+1], pos-float64(i)).Clamped().Hex()
}

func (m Model) renderStatusLine() string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	paused := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27")).Bold(true)

	f := m.frame
	var b strings.Builder
	b.WriteString("  ")
	if f.Paused {
		b.WriteString(paused.Render("⏸ PAUSED"))
	} else {
		b.WriteString(accent.Render("▶ PLAYING"))
	}
	b.WriteString(dim.Render("  nav "))
	b.WriteString(value.Render(f.Nav.String()))
	if f.Nav == camera.ZoomingToTarget {
		b.WriteString(value.Render(fmt.Sprintf(" %3.0f%%", f.Progress*100)))
	}
	b.WriteString(dim.Render("  sim "))
	b.WriteString(value.Render(render.FormatSimTime(f.SimTime)))
	b.WriteString(dim.Render(fmt.Sprintf("  ×%.0f", f.TimeScale)))
	return b.String()
}

func (m Model) renderEvents() string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	evStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("249"))

	var b strings.Builder
	for i := 0; i < eventLines; i++ {
		if i < len(m.events) {
			e := m.events[len(m.events)-1-i]
			line := fmt.Sprintf("  %s %-14s %s", e.Timestamp.Format("15:04:05"), e.Type, e.Body)
			b.WriteString(evStyle.Render(line))
		} else if i == 0 {
			b.WriteString(dim.Render("  no events yet"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	help := "  [tab/⇧tab] select  [space] pause  [r] reset  [←↑↓→] orbit  [wasd] pan  [+/-] zoom  [l] labels  [q] quit"
	var b strings.Builder
	b.WriteString(dimStyle.Render(help))
	if m.cfg.Warnings > 0 {
		b.WriteString(accentStyle.Render(fmt.Sprintf("  %d catalog warnings", m.cfg.Warnings)))
	}
	if m.statusMsg != "" {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render(m.statusMsg))
	}
	return b.String()
}

func frameCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}
