package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iklobato/pdftable/format"
	"github.com/iklobato/pdftable/model"
)

// Engine detects tabular regions in a document.
//
// Implementations return regions in detection order (page, then top to
// bottom) with the first row of each region as its header. An empty result
// is not an error.
type Engine interface {
	Extract(ctx context.Context, input Input, options *Options) ([]model.RawTable, error)
}

var (
	// ErrUnsupported is returned when an engine cannot handle the input
	// format.
	ErrUnsupported = errors.New("unsupported document format")
)

// Input describes a document held in transient storage.
type Input struct {
	// Path is the location of the document on disk.
	Path string

	// Name is the caller-supplied name, for diagnostics only.
	Name string

	Format format.Format
}

// Options controls what an engine is asked to detect.
type Options struct {
	// Pages selects the pages to scan. Empty means all pages.
	Pages []int

	// MultipleTables reports every region on a page instead of the first.
	MultipleTables bool

	// Guess enables automatic region detection. Engines with manual areas
	// are not supported.
	Guess bool
}

// DefaultOptions requests every region on every page with automatic
// detection. Engines always report the first row of a region as its
// header.
func DefaultOptions() *Options {
	return &Options{
		MultipleTables: true,
		Guess:          true,
	}
}

// Func adapts a function to the Engine interface.
type Func func(ctx context.Context, input Input, options *Options) ([]model.RawTable, error)

// Extract calls f.
func (f Func) Extract(ctx context.Context, input Input, options *Options) ([]model.RawTable, error) {
	return f(ctx, input, options)
}

// WithTimeout bounds every extraction of e by d. A zero or negative d
// returns e unchanged.
func WithTimeout(e Engine, d time.Duration) Engine {
	if d <= 0 {
		return e
	}

	return Func(func(ctx context.Context, input Input, options *Options) ([]model.RawTable, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		tables, err := e.Extract(ctx, input, options)
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("extraction timed out after %s: %w", d, context.DeadlineExceeded)
		}
		return tables, err
	})
}

// Supports reports whether input has one of the given formats.
func Supports(input Input, formats ...format.Format) bool {
	for _, f := range formats {
		if input.Format == f {
			return true
		}
	}
	return false
}
