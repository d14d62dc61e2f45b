package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/camera"
	"github.com/litescript/ls-orrery/internal/catalog"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/state"
)

func testFrame() state.Frame {
	marker := astro.Vec3{X: 10, Y: 0, Z: 0}
	return state.Frame{
		Seq:       42,
		Time:      time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		SimTime:   2 * catalog.SecondsPerDay,
		TimeScale: 86400,
		Nav:       camera.ZoomingToTarget,
		Camera: camera.Pose{
			Position: astro.Vec3{X: 0, Y: 200, Z: 500},
		},
		Progress:  0.5,
		Selection: "Sol/Earth",
		Marker:    &marker,
		MarkerID:  3,
		Bodies: []state.BodyView{
			{Key: "Sol", Name: "Sol", Kind: orbit.KindStar, Color: "#ffffff", Radius: 2, Temperature: 5778},
			{
				Key: "Sol/Earth", Name: "Earth", Kind: orbit.KindPlanet, Parent: "Sol",
				Position: marker, Color: "#00ff00", Radius: 1, Habitable: true,
				Selected: true, PeriodDays: 365.25, Phase: 3.141592653589793,
			},
		},
	}
}

func TestExportFrame(t *testing.T) {
	f := testFrame()
	events := []state.Event{{Type: state.EventSelected, Body: "Sol/Earth", Timestamp: f.Time}}
	warnings := []catalog.Warning{{Body: "Sol/Earth", Field: "period", Message: "missing"}}

	export := ExportFrame(f, events, warnings)
	if export.Frame.Seq != 42 {
		t.Errorf("Frame.Seq = %d, want 42", export.Frame.Seq)
	}
	if len(export.Events) != 1 {
		t.Errorf("Events count = %d, want 1", len(export.Events))
	}
	if len(export.Warnings) != 1 {
		t.Errorf("Warnings count = %d, want 1", len(export.Warnings))
	}
	if export.ExportedAt.IsZero() {
		t.Error("ExportedAt should be set")
	}
}

func TestFrameExport_WriteJSON(t *testing.T) {
	export := ExportFrame(testFrame(), nil, nil)

	var buf bytes.Buffer
	if err := export.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}
	frame, ok := decoded["frame"].(map[string]any)
	if !ok {
		t.Fatalf("frame missing from export: %s", buf.String())
	}
	if frame["nav"] != "ZOOMING_TO_TARGET" {
		t.Errorf("nav = %v, want ZOOMING_TO_TARGET", frame["nav"])
	}
	if frame["selection"] != "Sol/Earth" {
		t.Errorf("selection = %v, want Sol/Earth", frame["selection"])
	}
	bodies, _ := frame["bodies"].([]any)
	if len(bodies) != 2 {
		t.Fatalf("bodies count = %d, want 2", len(bodies))
	}
	earth, _ := bodies[1].(map[string]any)
	if earth["kind"] != "planet" {
		t.Errorf("kind = %v, want planet", earth["kind"])
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected indented output")
	}
}

func TestGenerateSummaryRows(t *testing.T) {
	rows := GenerateSummaryRows(testFrame())
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Period != "-" {
		t.Errorf("star Period = %q, want -", rows[0].Period)
	}
	if rows[1].Period != "365.25 d" {
		t.Errorf("planet Period = %q, want 365.25 d", rows[1].Period)
	}
	if rows[1].Phase < 179.9 || rows[1].Phase > 180.1 {
		t.Errorf("planet Phase = %v, want 180", rows[1].Phase)
	}
	if !rows[1].Selected {
		t.Error("Earth row should be selected")
	}
}

func TestWriteSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	WriteSummaryTable(&buf, testFrame())
	out := buf.String()

	for _, want := range []string{
		"Orrery frame 42",
		"ZOOMING_TO_TARGET",
		"Sol/Earth",
		"Total: 1 stars, 1 planets",
		"Selected: Sol/Earth (zoom 50%)",
		"t+2.0d simulated",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSummaryTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	WriteSummaryTable(&buf, state.Frame{Paused: true})
	out := buf.String()
	if !strings.Contains(out, "No bodies loaded") {
		t.Errorf("expected empty notice, got:\n%s", out)
	}
	if !strings.Contains(out, "paused") {
		t.Errorf("expected paused status, got:\n%s", out)
	}
}

func TestWriteEvents(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	events := []state.Event{
		{Type: state.EventPaused, Timestamp: ts},
		{Type: state.EventSelected, Body: "Sol/Earth", Timestamp: ts},
		{Type: state.EventZoomComplete, Body: "Sol/Earth", Timestamp: ts},
	}

	var buf bytes.Buffer
	WriteEvents(&buf, events, 2)
	out := buf.String()
	if strings.Contains(out, string(state.EventPaused)) {
		t.Errorf("oldest event should be trimmed:\n%s", out)
	}
	if !strings.Contains(out, string(state.EventZoomComplete)) {
		t.Errorf("newest event missing:\n%s", out)
	}

	buf.Reset()
	WriteEvents(&buf, nil, 5)
	if !strings.Contains(buf.String(), "No events") {
		t.Errorf("expected empty notice, got %q", buf.String())
	}
}

func TestWriteWarnings(t *testing.T) {
	var buf bytes.Buffer
	WriteWarnings(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("no warnings should write nothing, got %q", buf.String())
	}

	WriteWarnings(&buf, []catalog.Warning{{Body: "X/b", Field: "period", Message: "degenerate"}})
	if !strings.Contains(buf.String(), "X/b.period: degenerate") {
		t.Errorf("warning line missing: %q", buf.String())
	}
}

func TestFormatPeriod(t *testing.T) {
	tests := []struct {
		days float64
		want string
	}{
		{0, "-"},
		{-1, "-"},
		{0.5, "12.0 h"},
		{1.51, "1.51 d"},
		{3652.5, "10.0 y"},
	}
	for _, tt := range tests {
		if got := FormatPeriod(tt.days); got != tt.want {
			t.Errorf("FormatPeriod(%v) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestFormatSimTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{30, "30.0s"},
		{90, "1.5m"},
		{7200, "2.0h"},
		{3 * catalog.SecondsPerDay, "3.0d"},
	}
	for _, tt := range tests {
		if got := FormatSimTime(tt.seconds); got != tt.want {
			t.Errorf("FormatSimTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestTruncateStr(t *testing.T) {
	tests := []struct {
		s    string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"Proxima Centauri/b", 10, "Proxima .."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncateStr(tt.s, tt.max); got != tt.want {
			t.Errorf("truncateStr(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
		}
	}
}
