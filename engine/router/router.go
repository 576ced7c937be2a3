// Package router dispatches extraction to one engine per document format.
package router

import (
	"context"
	"fmt"

	"github.com/iklobato/pdftable/engine"
	"github.com/iklobato/pdftable/format"
	"github.com/iklobato/pdftable/model"
)

var _ engine.Engine = (*Router)(nil)

// Router is an Engine selecting its delegate by input.Format.
type Router struct {
	engines map[format.Format]engine.Engine
}

// New creates an empty Router.
func New() *Router {
	return &Router{
		engines: make(map[format.Format]engine.Engine),
	}
}

// Handle registers e for documents of format f, replacing any previous
// engine.
func (r *Router) Handle(f format.Format, e engine.Engine) *Router {
	r.engines[f] = e
	return r
}

// Formats returns the formats with a registered engine, in the order of
// format.All.
func (r *Router) Formats() []format.Format {
	var formats []format.Format
	for _, f := range format.All {
		if _, ok := r.engines[f]; ok {
			formats = append(formats, f)
		}
	}
	return formats
}

// Extract forwards to the engine registered for input.Format.
func (r *Router) Extract(ctx context.Context, input engine.Input, options *engine.Options) ([]model.RawTable, error) {
	e, ok := r.engines[input.Format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrUnsupported, input.Format)
	}

	return e.Extract(ctx, input, options)
}
