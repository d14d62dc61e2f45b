// Package state provides thread-safe state management for the application:
// the input inbox filled by UI and API producers, the last committed frame,
// and the navigation event log.
package state

import (
	"sync"
	"time"
)

// InputKind identifies a queued user input.
type InputKind string

const (
	InputSelect      InputKind = "select"
	InputPause       InputKind = "pause"
	InputResume      InputKind = "resume"
	InputTogglePause InputKind = "toggle"
	InputReset       InputKind = "reset"
	InputActivity    InputKind = "activity"
	InputOrbit       InputKind = "orbit"
	InputPan         InputKind = "pan"
	InputZoom        InputKind = "zoom"
)

// Input is one user command waiting for the next tick.
type Input struct {
	Kind   InputKind
	Name   string  // body name for InputSelect
	DX     float64 // orbit azimuth / pan x
	DY     float64 // orbit elevation / pan y
	Factor float64 // zoom factor
	At     time.Time
}

// EventType represents the type of navigation event.
type EventType string

const (
	EventSelected      EventType = "SELECTED"
	EventSelectionMiss EventType = "SELECTION_MISS"
	EventZoomComplete  EventType = "ZOOM_COMPLETE"
	EventAutoReset     EventType = "AUTO_RESET"
	EventReset         EventType = "RESET"
	EventPaused        EventType = "PAUSED"
	EventResumed       EventType = "RESUMED"
)

// Event represents a navigation or playback change.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Body      string    `json:"body,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	// Input inbox
	inbox      []Input
	maxPending int
	dropped    uint64

	// Last committed frame
	frame      Frame
	hasFrame   bool
	lastCommit time.Time

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int
}

// Config holds configuration for the state manager.
type Config struct {
	MaxEvents  int
	MaxPending int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents:  50,  // Last 50 events
		MaxPending: 256, // Inputs waiting for a tick
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	def := DefaultConfig()
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = def.MaxEvents
	}
	maxPending := cfg.MaxPending
	if maxPending <= 0 {
		maxPending = def.MaxPending
	}
	return &Manager{
		maxEvents:  maxEvents,
		events:     make([]Event, 0, maxEvents),
		maxPending: maxPending,
	}
}

// Enqueue adds an input for the next tick. It returns false and counts a
// drop when the inbox is full.
func (m *Manager) Enqueue(in Input) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.inbox) >= m.maxPending {
		m.dropped++
		return false
	}
	if in.At.IsZero() {
		in.At = time.Now()
	}
	m.inbox = append(m.inbox, in)
	return true
}

// Drain removes and returns all pending inputs in arrival order.
func (m *Manager) Drain() []Input {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.inbox) == 0 {
		return nil
	}
	out := m.inbox
	m.inbox = nil
	return out
}

// Pending returns the number of queued inputs.
func (m *Manager) Pending() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.inbox)
}

// Commit publishes a frame. Frames are not modified after commit.
func (m *Manager) Commit(f Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.frame = f
	m.hasFrame = true
	m.lastCommit = time.Now()
}

// Frame returns the last committed frame.
func (m *Manager) Frame() (Frame, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.frame, m.hasFrame
}

// HasFrame returns true once a frame has been committed.
func (m *Manager) HasFrame() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasFrame
}

// AddEvent records an event.
func (m *Manager) AddEvent(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	m.addEvent(e)
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Frame      Frame
	HasFrame   bool
	LastCommit time.Time
	Pending    int
	Dropped    uint64
	Events     []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		Frame:      m.frame,
		HasFrame:   m.hasFrame,
		LastCommit: m.lastCommit,
		Pending:    len(m.inbox),
		Dropped:    m.dropped,
		Events:     m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events. n <= 0 returns nil.
func (m *Manager) RecentEvents(n int) []Event {
	if n <= 0 {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}
