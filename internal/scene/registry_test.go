package scene

import (
	"testing"

	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/orbit"
)

func testBodies() []orbit.Body {
	return []orbit.Body{
		{Name: "Sol", Key: "Sol", Kind: orbit.KindStar, Parent: -1, Position: astro.Vec3{X: 100}},
		{Name: "b", Key: "Sol/b", Kind: orbit.KindPlanet, Parent: 0, Position: astro.Vec3{Z: 10}},
		{Name: "Kepler", Key: "Kepler", Kind: orbit.KindStar, Parent: -1, Position: astro.Vec3{Y: -50}},
		{Name: "b", Key: "Kepler/b", Kind: orbit.KindPlanet, Parent: 2, Position: astro.Vec3{X: 5}},
		{Name: "Sol", Key: "Kepler/Sol", Kind: orbit.KindPlanet, Parent: 2, Position: astro.Vec3{X: 1}},
	}
}

func TestResolve(t *testing.T) {
	r := NewRegistry(testBodies())

	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"Sol", 0, true},
		{"sol", 0, true},
		{"  Kepler ", 2, true},
		{"Sol/b", 1, true},
		{"Kepler/b", 3, true},
		{"b", 1, true},          // first planet in catalog order
		{"Kepler/Sol", 4, true}, // qualified key beats bare-name star
		{"Nope", NoSelection, false},
		{"", NoSelection, false},
		{"Sol/zz", NoSelection, false},
	}

	for _, tt := range tests {
		got, ok := r.Resolve(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Resolve(%q) = (%d, %v), want (%d, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}

	body, ok := r.ResolveBodyByName("kepler/B")
	if !ok || body.Key != "Kepler/b" {
		t.Errorf("ResolveBodyByName = %+v, %v", body, ok)
	}
	if _, ok := r.ResolveBodyByName("ghost"); ok {
		t.Error("ResolveBodyByName(ghost) should fail")
	}
}

func TestRefreshWorldPositions(t *testing.T) {
	r := NewRegistry(testBodies())

	tests := []struct {
		idx  int
		want astro.Vec3
	}{
		{0, astro.Vec3{X: 100}},
		{1, astro.Vec3{X: 100, Z: 10}},
		{2, astro.Vec3{Y: -50}},
		{3, astro.Vec3{X: 5, Y: -50}},
	}
	for _, tt := range tests {
		got, _ := r.WorldPosition(tt.idx)
		if got != tt.want {
			t.Errorf("WorldPosition(%d) = %+v, want %+v", tt.idx, got, tt.want)
		}
	}

	// Moving the star carries its planets along.
	r.Bodies()[0].Position = astro.Vec3{X: 200}
	r.Refresh()
	if got, _ := r.WorldPosition(1); got != (astro.Vec3{X: 200, Z: 10}) {
		t.Errorf("planet after star move = %+v", got)
	}

	if _, ok := r.WorldPosition(99); ok {
		t.Error("WorldPosition(99) should fail")
	}
}

func TestSelection(t *testing.T) {
	r := NewRegistry(testBodies())

	if _, ok := r.Selection(); ok {
		t.Error("new registry should have no selection")
	}
	if r.SetSelection(42) {
		t.Error("SetSelection(42) should fail")
	}
	if !r.SetSelection(3) {
		t.Fatal("SetSelection(3) failed")
	}
	if idx, ok := r.Selection(); !ok || idx != 3 {
		t.Errorf("Selection() = (%d, %v), want (3, true)", idx, ok)
	}
	if r.SelectedKey() != "Kepler/b" {
		t.Errorf("SelectedKey() = %q", r.SelectedKey())
	}

	r.ClearSelection()
	if _, ok := r.Selection(); ok {
		t.Error("selection should be cleared")
	}
	if r.SelectedKey() != "" {
		t.Errorf("SelectedKey() = %q, want empty", r.SelectedKey())
	}
}

func TestUpsertMarkerReplaces(t *testing.T) {
	r := NewRegistry(testBodies())

	var released []uint64
	r.MarkerReleased = func(m *Marker) { released = append(released, m.ID()) }

	first := r.UpsertMarker(astro.Vec3{X: 1})
	if r.LiveMarkers() != 1 {
		t.Fatalf("LiveMarkers() = %d, want 1", r.LiveMarkers())
	}

	second := r.UpsertMarker(astro.Vec3{X: 2})
	if r.LiveMarkers() != 1 {
		t.Errorf("LiveMarkers() after replace = %d, want 1", r.LiveMarkers())
	}
	if !first.Released() {
		t.Error("first marker should be released before second is created")
	}
	if second.Released() {
		t.Error("second marker should be live")
	}
	if second.ID() == first.ID() {
		t.Error("markers should get distinct IDs")
	}
	if r.Marker() != second {
		t.Error("Marker() should return the newest marker")
	}
	if len(released) != 1 || released[0] != first.ID() {
		t.Errorf("released = %v, want [%d]", released, first.ID())
	}
}

func TestMarkerCountNeverExceedsOne(t *testing.T) {
	r := NewRegistry(testBodies())
	for i := 0; i < 50; i++ {
		r.UpsertMarker(astro.Vec3{X: float64(i)})
		if n := r.LiveMarkers(); n > 1 {
			t.Fatalf("LiveMarkers() = %d after %d upserts", n, i+1)
		}
		if i%7 == 0 {
			r.ClearMarker()
		}
	}
}

func TestMarkerTracksSelection(t *testing.T) {
	r := NewRegistry(testBodies())
	r.SetSelection(1)
	m := r.UpsertMarker(astro.Vec3{})

	r.Bodies()[1].Position = astro.Vec3{Z: -10}
	r.Refresh()

	if m.Position != (astro.Vec3{X: 100, Z: -10}) {
		t.Errorf("marker position = %+v, want selected body's world position", m.Position)
	}
}

func TestClearMarkerIdempotent(t *testing.T) {
	r := NewRegistry(testBodies())
	calls := 0
	r.MarkerReleased = func(*Marker) { calls++ }

	r.ClearMarker()
	m := r.UpsertMarker(astro.Vec3{})
	r.ClearMarker()
	r.ClearMarker()

	if calls != 1 {
		t.Errorf("release callback ran %d times, want 1", calls)
	}
	if m.Release() {
		t.Error("second Release() should report false")
	}
	if r.Marker() != nil || r.LiveMarkers() != 0 {
		t.Error("marker should be gone")
	}
}

func TestReset(t *testing.T) {
	r := NewRegistry(testBodies())
	r.SetSelection(0)
	m := r.UpsertMarker(astro.Vec3{})

	r.Reset()

	if _, ok := r.Selection(); ok {
		t.Error("Reset should clear selection")
	}
	if !m.Released() || r.LiveMarkers() != 0 {
		t.Error("Reset should release the marker")
	}

	// Reset on an empty registry is a no-op.
	r.Reset()
}

func TestNilMarker(t *testing.T) {
	var m *Marker
	if m.Release() {
		t.Error("nil Release() should be false")
	}
	if !m.Released() {
		t.Error("nil marker counts as released")
	}
}
