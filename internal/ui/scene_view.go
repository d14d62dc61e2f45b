package ui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/camera"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/state"
)

// LabelMode controls which bodies get a name label.
type LabelMode int

const (
	LabelNone LabelMode = iota
	LabelSelected
	LabelStars
	LabelAll
)

func (l LabelMode) String() string {
	switch l {
	case LabelNone:
		return "off"
	case LabelSelected:
		return "selected"
	case LabelStars:
		return "stars"
	case LabelAll:
		return "all"
	default:
		return "?"
	}
}

// Perspective camera parameters.
const (
	fieldOfViewDeg = 75
	nearPlane      = 0.1
	cellAspect     = 0.5 // terminal cells are about twice as tall as wide
	hudLines       = 2
	skyMaxMag      = 3.5
)

// skybox is shared by all views; it never changes.
var skybox = astro.Skybox(skyMaxMag)

// SceneViewModel renders the committed frame through the camera pose.
type SceneViewModel struct {
	width     int
	height    int
	frame     state.Frame
	labelMode LabelMode
}

// NewSceneViewModel creates a scene view model.
func NewSceneViewModel() SceneViewModel {
	return SceneViewModel{labelMode: LabelStars}
}

// SetSize updates the viewport size.
func (m SceneViewModel) SetSize(width, height int) SceneViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateFrame replaces the frame being drawn.
func (m SceneViewModel) UpdateFrame(f state.Frame) SceneViewModel {
	m.frame = f
	return m
}

// CycleLabels advances the label mode.
func (m SceneViewModel) CycleLabels() SceneViewModel {
	m.labelMode = (m.labelMode + 1) % 4
	return m
}

// LabelMode returns the current label mode.
func (m SceneViewModel) LabelMode() LabelMode {
	return m.labelMode
}

// projector maps world points to canvas cells for one camera pose.
type projector struct {
	eye            astro.Vec3
	fwd, right, up astro.Vec3
	focal          float64
	cx, cy         float64
}

func newProjector(pose camera.Pose, w, h int) (projector, bool) {
	fwd := pose.Target.Sub(pose.Position).Normalized()
	if fwd.Norm() == 0 {
		return projector{}, false
	}
	worldUp := astro.Vec3{Y: 1}
	right := fwd.Cross(worldUp)
	if right.Norm() < 1e-9 {
		// Looking straight up or down
		right = fwd.Cross(astro.Vec3{Z: -1})
	}
	right = right.Normalized()
	up := right.Cross(fwd)

	halfFOV := fieldOfViewDeg * math.Pi / 360
	return projector{
		eye:   pose.Position,
		fwd:   fwd,
		right: right,
		up:    up,
		focal: float64(w) / 2 / math.Tan(halfFOV),
		cx:    float64(w) / 2,
		cy:    float64(h) / 2,
	}, true
}

// project returns the cell for p and its depth along the view axis.
func (p projector) project(pt astro.Vec3) (x, y int, depth float64, ok bool) {
	d := pt.Sub(p.eye)
	depth = d.Dot(p.fwd)
	if depth <= nearPlane {
		return 0, 0, depth, false
	}
	sx := p.cx + d.Dot(p.right)/depth*p.focal
	sy := p.cy - d.Dot(p.up)/depth*p.focal*cellAspect
	if math.IsNaN(sx) || math.IsNaN(sy) || math.Abs(sx) > 1e6 || math.Abs(sy) > 1e6 {
		return 0, 0, depth, false
	}
	return int(math.Round(sx)), int(math.Round(sy)), depth, true
}

// cell is one drawn canvas position.
type cell struct {
	ch    rune
	color string
	bold  bool
	bg    bool // background star, may be covered by labels
}

// sprite is a body ready to draw.
type sprite struct {
	x, y  int
	depth float64
	view  state.BodyView
}

// View renders the scene view.
func (m SceneViewModel) View() string {
	if m.width < 20 || m.height < hudLines+3 {
		return "Terminal too small for scene view"
	}
	canvas := m.buildCanvas()
	return lipgloss.JoinVertical(lipgloss.Left, canvas, m.renderHUD())
}

func (m SceneViewModel) canvasSize() (int, int) {
	return m.width, m.height - hudLines
}

func (m SceneViewModel) buildCanvas() string {
	w, h := m.canvasSize()
	grid := make([][]cell, h)
	for y := range grid {
		grid[y] = make([]cell, w)
		for x := range grid[y] {
			grid[y][x] = cell{ch: ' '}
		}
	}

	proj, ok := newProjector(m.frame.Camera, w, h)
	if ok {
		drawSkybox(grid, proj)
		sprites := m.sprites(proj, w, h)

		// Far to near so closer bodies win the cell
		sort.SliceStable(sprites, func(i, j int) bool {
			return sprites[i].depth > sprites[j].depth
		})
		for _, s := range sprites {
			grid[s.y][s.x] = cell{ch: bodyGlyph(s.view, s.depth), color: s.view.Color, bold: s.view.Selected}
		}

		m.drawMarker(grid, proj)
		m.drawLabels(grid, sprites)
	}

	return renderGrid(grid)
}

func (m SceneViewModel) sprites(proj projector, w, h int) []sprite {
	out := make([]sprite, 0, len(m.frame.Bodies))
	for _, b := range m.frame.Bodies {
		x, y, depth, ok := proj.project(b.Position)
		if !ok || x < 0 || x >= w || y < 0 || y >= h {
			continue
		}
		out = append(out, sprite{x: x, y: y, depth: depth, view: b})
	}
	return out
}

// drawSkybox places the background stars at infinity, so only the camera
// orientation moves them.
func drawSkybox(grid [][]cell, proj projector) {
	sky := proj
	sky.eye = astro.Vec3{}
	for _, s := range skybox {
		x, y, _, ok := sky.project(s.Direction())
		if !ok || y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
			continue
		}
		grid[y][x] = cell{ch: skyGlyph(s.Mag), color: skyColor(s.Mag), bg: true}
	}
}

func skyGlyph(mag float64) rune {
	switch {
	case mag < 0.5:
		return '+'
	case mag < 2:
		return '∙'
	default:
		return '.'
	}
}

func skyColor(mag float64) string {
	if mag < 1.5 {
		return "#6B6B6B"
	}
	return "#3A3A3A"
}

// drawMarker rings the marker position with brackets.
func (m SceneViewModel) drawMarker(grid [][]cell, proj projector) {
	if m.frame.Marker == nil {
		return
	}
	x, y, _, ok := proj.project(*m.frame.Marker)
	if !ok || y < 0 || y >= len(grid) {
		return
	}
	color := astro.MarkerColor().Hex()
	if x-1 >= 0 && x-1 < len(grid[y]) {
		grid[y][x-1] = cell{ch: '(', color: color, bold: true}
	}
	if x+1 >= 0 && x+1 < len(grid[y]) {
		grid[y][x+1] = cell{ch: ')', color: color, bold: true}
	}
}

func (m SceneViewModel) drawLabels(grid [][]cell, sprites []sprite) {
	if m.labelMode == LabelNone {
		return
	}
	// Near to far so closer labels are placed first
	for i := len(sprites) - 1; i >= 0; i-- {
		s := sprites[i]
		show := false
		switch m.labelMode {
		case LabelSelected:
			show = s.view.Selected
		case LabelStars:
			show = s.view.Selected || s.view.Kind == orbit.KindStar
		case LabelAll:
			show = true
		}
		if !show {
			continue
		}

		text := s.view.Name
		if s.view.Selected {
			text = "◄ " + text
		}
		row := grid[s.y]
		x := s.x + 3
		for _, r := range text {
			if x >= len(row) {
				break
			}
			if row[x].ch == ' ' || row[x].bg {
				row[x] = cell{ch: r, color: labelColor, bold: s.view.Selected}
			}
			x++
		}
	}
}

const labelColor = "#B2B2B2"

// bodyGlyph picks a glyph by kind and apparent size.
func bodyGlyph(b state.BodyView, depth float64) rune {
	apparent := b.Radius / math.Max(depth, nearPlane) * 100
	if b.Kind == orbit.KindStar {
		if apparent > 1 {
			return '✺'
		}
		return '✦'
	}
	switch {
	case b.Selected:
		return '●'
	case apparent > 2:
		return '◉'
	case apparent > 0.5:
		return '•'
	default:
		return '·'
	}
}

func renderGrid(grid [][]cell) string {
	styles := make(map[string]lipgloss.Style)
	style := func(c cell) lipgloss.Style {
		key := c.color
		if c.bold {
			key += "!"
		}
		s, ok := styles[key]
		if !ok {
			s = lipgloss.NewStyle().Foreground(lipgloss.Color(c.color)).Bold(c.bold)
			styles[key] = s
		}
		return s
	}

	var b strings.Builder
	for y, row := range grid {
		for _, c := range row {
			if c.ch == ' ' || c.color == "" {
				b.WriteRune(c.ch)
				continue
			}
			b.WriteString(style(c).Render(string(c.ch)))
		}
		if y < len(grid)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func (m SceneViewModel) renderHUD() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label + " "))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("  ")
	}

	sel, ok := m.frame.Selected()
	if !ok {
		b.WriteString(headerStyle.Render("◇ Free camera"))
		b.WriteString("  ")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%d bodies", len(m.frame.Bodies))))
		b.WriteString("\n")
	} else {
		b.WriteString(headerStyle.Render("◆ " + sel.Key))
		b.WriteString("  ")
		if sel.Kind == orbit.KindStar {
			field("Temp", fmt.Sprintf("%.0f K", sel.Temperature))
			if sel.Luminosity > 0 {
				field("Lum", fmt.Sprintf("%.3g L☉", sel.Luminosity))
			}
			field("RA", fmt.Sprintf("%.2f°", sel.RA))
			field("Dec", fmt.Sprintf("%.2f°", sel.Dec))
			field("Dist", fmt.Sprintf("%.2f pc", sel.Distance))
		} else {
			field("Star", sel.Parent)
			field("a", fmt.Sprintf("%.3f AU", sel.SemiMajorAxis))
			field("e", fmt.Sprintf("%.3f", sel.Eccentricity))
			field("P", fmt.Sprintf("%.2f d", sel.PeriodDays))
			if sel.Habitable {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(sel.Color)).Render("habitable"))
			}
		}
		b.WriteString("\n")
	}

	cam := m.frame.Camera
	b.WriteString(dimStyle.Render("Camera:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("(%.0f, %.0f, %.0f)", cam.Position.X, cam.Position.Y, cam.Position.Z)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Range:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f", cam.Distance())))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("Labels:"))
	b.WriteString(valueStyle.Render(m.labelMode.String()))

	return b.String()
}
