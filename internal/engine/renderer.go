package engine

import (
	"errors"
	"sync"

	"github.com/litescript/ls-orrery/internal/state"
)

// Frame is the immutable per-tick output handed to renderers.
type Frame = state.Frame

// Renderer consumes committed frames. Render is called from the tick and
// must not block for long; Close releases the renderer's resources.
type Renderer interface {
	Render(Frame) error
	Close() error
}

// multiRenderer fans frames out to several renderers.
type multiRenderer struct {
	renderers []Renderer
}

// MultiRenderer returns a renderer that forwards to every non-nil r.
func MultiRenderer(rs ...Renderer) Renderer {
	m := &multiRenderer{}
	for _, r := range rs {
		if r != nil {
			m.renderers = append(m.renderers, r)
		}
	}
	return m
}

func (m *multiRenderer) Render(f Frame) error {
	var errs []error
	for _, r := range m.renderers {
		if err := r.Render(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *multiRenderer) Close() error {
	var errs []error
	for _, r := range m.renderers {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// onceRenderer makes Close idempotent.
type onceRenderer struct {
	Renderer
	once sync.Once
	err  error
}

func (o *onceRenderer) Close() error {
	o.once.Do(func() {
		o.err = o.Renderer.Close()
	})
	return o.err
}

type nopRenderer struct{}

func (nopRenderer) Render(Frame) error { return nil }
func (nopRenderer) Close() error       { return nil }
