package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func histogramSampleCount(t *testing.T, reg *prometheus.Registry, name string) uint64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name || mf.GetType() != dto.MetricType_HISTOGRAM {
			continue
		}
		for _, m := range mf.GetMetric() {
			return m.GetHistogram().GetSampleCount()
		}
	}
	t.Fatalf("histogram %s not found", name)
	return 0
}

func TestCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	c.ObserveTick(2 * time.Millisecond)
	c.ObserveTick(3 * time.Millisecond)
	c.ObserveTransition("IDLE", "ZOOMING_TO_TARGET")
	c.ObserveSelectionMiss()
	c.ObserveMarkerReplacement()
	c.ObserveInput("select")
	c.ObserveRendererError()
	c.SetBodies(30)
	c.SetPaused(true)
	c.AddWebsocketConnections(2)
	c.AddWebsocketConnections(-1)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"orrery_frames_total", testutil.ToFloat64(c.FramesTotal), 2},
		{"orrery_navigation_transitions_total", testutil.ToFloat64(c.Transitions.WithLabelValues("IDLE", "ZOOMING_TO_TARGET")), 1},
		{"orrery_selection_misses_total", testutil.ToFloat64(c.SelectionMisses), 1},
		{"orrery_marker_replacements_total", testutil.ToFloat64(c.MarkerReplacements), 1},
		{"orrery_inputs_total", testutil.ToFloat64(c.InputsTotal.WithLabelValues("select")), 1},
		{"orrery_renderer_errors_total", testutil.ToFloat64(c.RendererErrorsTotal), 1},
		{"orrery_bodies", testutil.ToFloat64(c.Bodies), 30},
		{"orrery_paused", testutil.ToFloat64(c.Paused), 1},
		{"orrery_websocket_connections", testutil.ToFloat64(c.WebsocketConnections), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if n := histogramSampleCount(t, reg, "orrery_tick_duration_seconds"); n != 2 {
		t.Errorf("orrery_tick_duration_seconds sample_count = %d, want 2", n)
	}

	c.SetPaused(false)
	if got := testutil.ToFloat64(c.Paused); got != 0 {
		t.Errorf("orrery_paused = %v, want 0", got)
	}
}

func TestNewCollectorTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("first NewCollector: %v", err)
	}
	second, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second NewCollector: %v", err)
	}

	first.ObserveSelectionMiss()
	if got := testutil.ToFloat64(second.SelectionMisses); got != 1 {
		t.Errorf("shared counter = %v, want 1", got)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.ObserveTick(time.Millisecond)
	c.ObserveTransition("a", "b")
	c.ObserveSelectionMiss()
	c.ObserveMarkerReplacement()
	c.ObserveInput("pause")
	c.ObserveRendererError()
	c.SetBodies(1)
	c.SetPaused(true)
	c.AddWebsocketConnections(1)
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	c.SetBodies(5)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "orrery_bodies 5") {
		t.Errorf("metrics output missing orrery_bodies: %s", body)
	}
}
