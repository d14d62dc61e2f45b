// Package scene owns the body arena, the active selection and the selection marker.
package scene

import (
	"github.com/litescript/ls-orrery/internal/astro"
	"github.com/litescript/ls-orrery/internal/orbit"
)

// NoSelection is the selection index when nothing is selected.
const NoSelection = -1

// Registry holds every body, its derived world position, and the
// selection/marker pair. It is not safe for concurrent use; the scheduler
// is its only writer.
type Registry struct {
	bodies []orbit.Body
	world  []astro.Vec3
	index  *Index

	selected int
	marker   *Marker
	nextID   uint64

	// MarkerReleased is called after a marker is released, if set.
	MarkerReleased func(*Marker)
}

// NewRegistry takes ownership of bodies and computes world positions.
func NewRegistry(bodies []orbit.Body) *Registry {
	r := &Registry{
		bodies:   bodies,
		world:    make([]astro.Vec3, len(bodies)),
		index:    NewIndex(bodies),
		selected: NoSelection,
	}
	r.Refresh()
	return r
}

// Bodies returns the body arena. Callers must not retain it across ticks.
func (r *Registry) Bodies() []orbit.Body {
	return r.bodies
}

// Len returns the number of bodies.
func (r *Registry) Len() int {
	return len(r.bodies)
}

// Body returns the body at index i.
func (r *Registry) Body(i int) (orbit.Body, bool) {
	if i < 0 || i >= len(r.bodies) {
		return orbit.Body{}, false
	}
	return r.bodies[i], true
}

// WorldPosition returns the world-space position of body i.
func (r *Registry) WorldPosition(i int) (astro.Vec3, bool) {
	if i < 0 || i >= len(r.world) {
		return astro.Vec3{}, false
	}
	return r.world[i], true
}

// Index returns the registry's name index. It is safe to share with other
// goroutines.
func (r *Registry) Index() *Index {
	return r.index
}

// Resolve finds a body index by qualified key ("Star/Planet") or bare name.
func (r *Registry) Resolve(name string) (int, bool) {
	return r.index.Resolve(name)
}

// ResolveBodyByName returns the body for name.
func (r *Registry) ResolveBodyByName(name string) (orbit.Body, bool) {
	i, ok := r.Resolve(name)
	if !ok {
		return orbit.Body{}, false
	}
	return r.bodies[i], true
}

// Refresh recomputes world positions from relative ones and moves the
// marker onto the selected body.
func (r *Registry) Refresh() {
	for i := range r.bodies {
		b := &r.bodies[i]
		if b.Parent >= 0 && b.Parent < len(r.world) {
			r.world[i] = r.world[b.Parent].Add(b.Position)
		} else {
			r.world[i] = b.Position
		}
	}

	if r.marker != nil && r.selected != NoSelection {
		r.marker.Position = r.world[r.selected]
	}
}

// SetSelection selects body i. Out-of-range indexes are ignored.
func (r *Registry) SetSelection(i int) bool {
	if i < 0 || i >= len(r.bodies) {
		return false
	}
	r.selected = i
	return true
}

// ClearSelection deselects.
func (r *Registry) ClearSelection() {
	r.selected = NoSelection
}

// Selection returns the selected index and whether anything is selected.
func (r *Registry) Selection() (int, bool) {
	return r.selected, r.selected != NoSelection
}

// SelectedKey returns the selected body's key, or "".
func (r *Registry) SelectedKey() string {
	if r.selected == NoSelection {
		return ""
	}
	return r.bodies[r.selected].Key
}

// UpsertMarker releases the current marker, if any, and creates a new one at
// pos. It returns the new marker.
func (r *Registry) UpsertMarker(pos astro.Vec3) *Marker {
	r.ClearMarker()
	r.nextID++
	r.marker = &Marker{id: r.nextID, Position: pos}
	return r.marker
}

// ClearMarker releases the current marker. It is a no-op when none exists.
func (r *Registry) ClearMarker() {
	if r.marker == nil {
		return
	}
	m := r.marker
	r.marker = nil
	if m.Release() && r.MarkerReleased != nil {
		r.MarkerReleased(m)
	}
}

// Marker returns the live marker, or nil.
func (r *Registry) Marker() *Marker {
	return r.marker
}

// LiveMarkers returns how many markers are alive: 0 or 1.
func (r *Registry) LiveMarkers() int {
	if r.marker == nil || r.marker.Released() {
		return 0
	}
	return 1
}

// Reset clears the selection and releases the marker together.
func (r *Registry) Reset() {
	r.ClearSelection()
	r.ClearMarker()
}
