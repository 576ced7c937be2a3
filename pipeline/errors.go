package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/iklobato/pdftable/codec"
	"github.com/iklobato/pdftable/engine"
	"github.com/iklobato/pdftable/ingest"
	"github.com/iklobato/pdftable/workbook"
)

// Kind classifies operation failures.
type Kind int

const (
	// KindUnknown is reported for errors not produced by an operation.
	KindUnknown Kind = iota
	// IngestionFailure means the upload could not be stored.
	IngestionFailure
	// ExtractionFailed means the engine failed or rejected the document.
	ExtractionFailed
	// MalformedEdit means a submitted table could not be reconciled into a
	// rectangular table.
	MalformedEdit
	// EmptyMergeRequest means a merge was requested without tables.
	EmptyMergeRequest
	// MergeFailed means a table could not be serialized.
	MergeFailed
)

func (k Kind) String() string {
	switch k {
	case IngestionFailure:
		return "IngestionFailure"
	case ExtractionFailed:
		return "ExtractionFailed"
	case MalformedEdit:
		return "MalformedEdit"
	case EmptyMergeRequest:
		return "EmptyMergeRequest"
	case MergeFailed:
		return "MergeFailed"
	}
	return "Unknown"
}

// Error is an operation failure. Detail is safe to show to callers; Err is
// the underlying cause and may name files or carry engine diagnostics.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Detail
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// newError classifies err for op. Sentinel causes get a specific public
// detail; anything else gets fallback.
func newError(op string, kind Kind, fallback string, err error) *Error {
	e := &Error{Kind: kind, Op: op, Detail: fallback, Err: err}

	switch {
	case errors.Is(err, ingest.ErrTooLarge):
		e.Detail = ingest.ErrTooLarge.Error()
	case errors.Is(err, ingest.ErrEmpty):
		e.Detail = ingest.ErrEmpty.Error()
	case errors.Is(err, engine.ErrUnsupported):
		e.Detail = engine.ErrUnsupported.Error()
	case errors.Is(err, context.DeadlineExceeded):
		e.Detail = "operation timed out"
	case errors.Is(err, context.Canceled):
		e.Detail = "request cancelled"
	case errors.Is(err, workbook.ErrEmptyMerge):
		e.Kind = EmptyMergeRequest
		e.Detail = workbook.ErrEmptyMerge.Error()
	case errors.Is(err, codec.ErrMalformedEdit):
		// Edit errors only echo caller input.
		e.Kind = MalformedEdit
		e.Detail = err.Error()
	}

	return e
}

// panicError wraps a recovered panic value.
func panicError(op string, kind Kind, p any) *Error {
	return &Error{
		Kind:   kind,
		Op:     op,
		Detail: "unexpected internal error",
		Err:    fmt.Errorf("panic: %v", p),
	}
}
