// Package render turns committed frames into text tables, JSON exports and
// WebSocket broadcasts.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/state"
)

// FrameExport is the JSON-serializable representation of a frame.
type FrameExport struct {
	ExportedAt time.Time         `json:"exported_at"`
	Frame      state.Frame       `json:"frame"`
	Events     []state.Event     `json:"events,omitempty"`
	Warnings   []catalog.Warning `json:"warnings,omitempty"`
}

// ExportFrame bundles a frame with its event log and catalog warnings.
func ExportFrame(f state.Frame, events []state.Event, warnings []catalog.Warning) *FrameExport {
	return &FrameExport{
		ExportedAt: time.Now().UTC(),
		Frame:      f,
		Events:     events,
		Warnings:   warnings,
	}
}

// WriteJSON writes the export as indented JSON to the given writer.
func (e *FrameExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// SummaryRow represents one row in the summary table.
type SummaryRow struct {
	Body     string
	Kind     orbit.Kind
	Color    string
	X, Y, Z  float64
	Phase    float64 // degrees
	Period   string
	Selected bool
}

// GenerateSummaryRows creates summary rows from a frame.
func GenerateSummaryRows(f state.Frame) []SummaryRow {
	rows := make([]SummaryRow, 0, len(f.Bodies))
	for _, b := range f.Bodies {
		row := SummaryRow{
			Body:     b.Key,
			Kind:     b.Kind,
			Color:    b.Color,
			X:        b.Position.X,
			Y:        b.Position.Y,
			Z:        b.Position.Z,
			Phase:    b.Phase * 180 / 3.141592653589793,
			Period:   "-",
			Selected: b.Selected,
		}
		if b.Kind == orbit.KindPlanet {
			row.Period = FormatPeriod(b.PeriodDays)
		}
		rows = append(rows, row)
	}
	return rows
}

// FormatPeriod renders an orbital period in days or years.
func FormatPeriod(days float64) string {
	switch {
	case days <= 0:
		return "-"
	case days < 1:
		return fmt.Sprintf("%.1f h", days*24)
	case days < 1000:
		return fmt.Sprintf("%.2f d", days)
	default:
		return fmt.Sprintf("%.1f y", days/365.25)
	}
}

// WriteSummaryTable writes a text table to the given writer.
func WriteSummaryTable(w io.Writer, f state.Frame) {
	rows := GenerateSummaryRows(f)

	status := "playing"
	if f.Paused {
		status = "paused"
	}
	fmt.Fprintf(w, "Orrery frame %d @ %s (%s, t+%s simulated)\n",
		f.Seq, f.Time.Format(time.RFC3339), status, FormatSimTime(f.SimTime))
	fmt.Fprintf(w, "Camera %s  pos (%.1f, %.1f, %.1f)  look (%.1f, %.1f, %.1f)\n",
		f.Nav,
		f.Camera.Position.X, f.Camera.Position.Y, f.Camera.Position.Z,
		f.Camera.Target.X, f.Camera.Target.Y, f.Camera.Target.Z)
	fmt.Fprintln(w, strings.Repeat("─", 90))

	if len(rows) == 0 {
		fmt.Fprintln(w, "No bodies loaded")
		return
	}

	// Header
	fmt.Fprintf(w, "%-1s %-24s %-6s %-7s %10s %10s %10s %7s %-9s\n",
		"", "Body", "Kind", "Color", "X", "Y", "Z", "Phase", "Period")
	fmt.Fprintln(w, strings.Repeat("─", 90))

	// Rows
	stars := 0
	for _, r := range rows {
		mark := " "
		if r.Selected {
			mark = "*"
		}
		if r.Kind == orbit.KindStar {
			stars++
		}
		fmt.Fprintf(w, "%-1s %-24s %-6s %-7s %10.2f %10.2f %10.2f %6.1f° %-9s\n",
			mark,
			truncateStr(r.Body, 24),
			r.Kind,
			r.Color,
			r.X, r.Y, r.Z,
			r.Phase,
			r.Period,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d stars, %d planets\n", stars, len(rows)-stars)
	if f.Selection != "" {
		fmt.Fprintf(w, "Selected: %s (zoom %.0f%%)\n", f.Selection, f.Progress*100)
	}
}

// WriteEvents writes the most recent n events, newest last.
func WriteEvents(w io.Writer, events []state.Event, n int) {
	fmt.Fprintln(w, "Recent events")
	fmt.Fprintln(w, strings.Repeat("─", 50))
	if len(events) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}
	if len(events) > n {
		events = events[len(events)-n:]
	}
	for _, e := range events {
		line := fmt.Sprintf("%s %-16s", e.Timestamp.Format("15:04:05"), e.Type)
		if e.Body != "" {
			line += " " + e.Body
		}
		fmt.Fprintln(w, line)
	}
}

// WriteWarnings lists catalog warnings.
func WriteWarnings(w io.Writer, warnings []catalog.Warning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "Catalog warnings (%d)\n", len(warnings))
	for _, warn := range warnings {
		fmt.Fprintf(w, "  %s\n", warn)
	}
}

// FormatSimTime formats simulated seconds as a compact duration.
func FormatSimTime(seconds float64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%.1fs", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%.1fm", seconds/60)
	case seconds < catalog.SecondsPerDay:
		return fmt.Sprintf("%.1fh", seconds/3600)
	default:
		return fmt.Sprintf("%.1fd", seconds/catalog.SecondsPerDay)
	}
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
