// Package render turns a page plan into a downloadable document.
//
// Three backends implement [Renderer]:
//
//   - html   — self-contained HTML markup, one section per planned page
//   - draw   — PDF drawn directly with fpdf
//   - chrome — the html markup printed to PDF by headless Chrome
//
// Backends are registered in a [Registry] and picked by name at request
// time, so deployments can choose one without code changes.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pkordes/itinerary-export/internal/domain"
)

// Document is everything a backend needs to draw a trip.
type Document struct {
	Trip        domain.Trip
	Plan        domain.PagePlan
	GeneratedAt time.Time
}

// Renderer produces a document from a page plan.
// Implementations must be safe for concurrent use.
type Renderer interface {
	Name() string
	Render(ctx context.Context, doc Document) (*Result, error)
}

// Registry maps backend names to renderers.
type Registry struct {
	renderers map[string]Renderer
	def       string
}

// NewRegistry registers rs and makes def the backend used when a caller does
// not name one. def must be among rs.
func NewRegistry(def string, rs ...Renderer) (*Registry, error) {
	reg := &Registry{renderers: make(map[string]Renderer, len(rs)), def: def}
	for _, r := range rs {
		reg.renderers[r.Name()] = r
	}
	if _, ok := reg.renderers[def]; !ok {
		return nil, fmt.Errorf("render: default backend %q is not registered", def)
	}
	return reg, nil
}

// Get returns the renderer registered under name, or the default for "".
// Unknown names are a domain.ErrValidation.
func (r *Registry) Get(name string) (Renderer, error) {
	if name == "" {
		name = r.def
	}
	rend, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown render backend %q", domain.ErrValidation, name)
	}
	return rend, nil
}

// Default returns the name of the default backend.
func (r *Registry) Default() string { return r.def }

// Names lists registered backends in alphabetical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.renderers))
	for n := range r.renderers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Close releases every renderer that holds resources (the chrome backend's
// browser process). Close is safe to call more than once.
func (r *Registry) Close() error {
	var errs []error
	for _, rend := range r.renderers {
		if c, ok := rend.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
