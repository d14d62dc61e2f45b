package scene

import "github.com/litescript/ls-orrery/internal/astro"

// Marker is the overlay ring drawn around the selected body.
type Marker struct {
	id       uint64
	released bool

	Position astro.Vec3
}

// ID returns the marker's sequence number. Each upsert gets a new ID.
func (m *Marker) ID() uint64 {
	return m.id
}

// Release frees the marker. It returns true only on the first call.
func (m *Marker) Release() bool {
	if m == nil || m.released {
		return false
	}
	m.released = true
	return true
}

// Released reports whether Release has been called.
func (m *Marker) Released() bool {
	return m == nil || m.released
}
