// Package pipeline implements the four table operations (extract, update,
// download and merge) on top of ingestion, extraction engines, the codec
// and the workbook writer.
//
// Operations never return errors or panic. Each returns a response whose
// envelope reports success or a classified failure; the failure's cause is
// kept on Envelope.Err and only reaches the message in debug mode.
package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/iklobato/pdftable/codec"
	"github.com/iklobato/pdftable/engine"
	"github.com/iklobato/pdftable/ingest"
	"github.com/iklobato/pdftable/logging"
	"github.com/iklobato/pdftable/model"
	"github.com/iklobato/pdftable/workbook"
)

// Operation names, as reported in Error.Op.
const (
	OpExtract  = "extract"
	OpUpdate   = "update"
	OpDownload = "download"
	OpMerge    = "merge"
)

// Message prefixes of failed operations.
var failurePrefix = map[string]string{
	OpExtract:  "Error processing document",
	OpUpdate:   "Error updating table",
	OpDownload: "Error preparing table for download",
	OpMerge:    "Error merging tables",
}

// Service runs the table operations. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	store  *ingest.Store
	engine engine.Engine

	options *engine.Options
	logger  *zap.Logger
	debug   bool
}

type Option func(*Service)

// WithLogger sets the logger used when the context carries none.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithDebug appends failure causes to envelope messages.
func WithDebug(debug bool) Option {
	return func(s *Service) {
		s.debug = debug
	}
}

// WithExtractTimeout bounds every engine call.
func WithExtractTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.engine = engine.WithTimeout(s.engine, d)
	}
}

// WithOptions replaces the extraction options. The default requests every
// table on every page with automatic detection.
func WithOptions(options *engine.Options) Option {
	return func(s *Service) {
		if options != nil {
			s.options = options
		}
	}
}

// New creates a Service storing uploads in store and extracting with e.
func New(store *ingest.Store, e engine.Engine, options ...Option) *Service {
	s := &Service{
		store:  store,
		engine: e,

		options: engine.DefaultOptions(),
		logger:  zap.NewNop(),
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// Extract stores the upload, runs the engine on it and returns one view per
// detected table with ids table-1..table-n in detection order. The stored
// document is removed before returning, whatever the outcome.
func (s *Service) Extract(ctx context.Context, r io.Reader, filename string) (resp ExtractResponse) {
	logger := logging.FromContext(ctx, s.logger).With(zap.String("op", OpExtract))
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			resp = ExtractResponse{Envelope: s.fail(logger, panicError(OpExtract, ExtractionFailed, p))}
		}
	}()

	doc, err := s.store.Put(ctx, r, filename)
	if err != nil {
		return ExtractResponse{Envelope: s.fail(logger, newError(OpExtract, IngestionFailure, "could not store document", err))}
	}

	defer func() {
		if err := doc.Release(); err != nil {
			logger.Warn("releasing document", zap.String("document_id", doc.ID), zap.Error(err))
		}
	}()

	logger = logger.With(
		zap.String("document_id", doc.ID),
		zap.Stringer("format", doc.Format),
		zap.Int64("size", doc.Size),
	)
	logger.Debug("document stored", zap.String("path", doc.Path))

	input := engine.Input{
		Path:   doc.Path,
		Name:   doc.Name,
		Format: doc.Format,
	}

	raws, err := s.engine.Extract(ctx, input, s.options)
	if err != nil {
		return ExtractResponse{Envelope: s.fail(logger, newError(OpExtract, ExtractionFailed, "table extraction failed", err))}
	}

	tables := model.NormalizeAll(raws)

	logger.Info("tables extracted",
		zap.Int("tables", len(tables)),
		zap.Duration("duration", time.Since(start)),
	)

	return ExtractResponse{
		Envelope: success(fmt.Sprintf("Successfully extracted %d tables", len(tables))),
		ExtractPayload: &ExtractPayload{
			Tables: codec.ToViews(tables),
			FileID: doc.Token,
		},
	}
}

// Update rebuilds an edited table and returns its refreshed view and CSV.
func (s *Service) Update(ctx context.Context, edit codec.Edit) (resp UpdateResponse) {
	logger := logging.FromContext(ctx, s.logger).With(zap.String("op", OpUpdate), zap.String("table_id", edit.ID))

	defer func() {
		if p := recover(); p != nil {
			resp = UpdateResponse{Envelope: s.fail(logger, panicError(OpUpdate, MalformedEdit, p))}
		}
	}()

	table, err := edit.Table()
	if err != nil {
		return UpdateResponse{Envelope: s.fail(logger, newError(OpUpdate, MalformedEdit, "invalid table data", err))}
	}

	csv, err := codec.EncodeString(table, codec.FormatCSV)
	if err != nil {
		return UpdateResponse{Envelope: s.fail(logger, newError(OpUpdate, MalformedEdit, "invalid table data", err))}
	}

	logger.Info("table updated", zap.Int("rows", table.RowCount()), zap.Int("columns", table.ColumnCount()))

	return UpdateResponse{
		Envelope: success("Table updated successfully"),
		UpdatePayload: &UpdatePayload{
			Table:   codec.ToView(table),
			CSVData: csv,
		},
	}
}

// Download encodes an edited table in every download format.
func (s *Service) Download(ctx context.Context, edit codec.Edit) (resp DownloadResponse) {
	logger := logging.FromContext(ctx, s.logger).With(zap.String("op", OpDownload), zap.String("table_id", edit.ID))

	defer func() {
		if p := recover(); p != nil {
			resp = DownloadResponse{Envelope: s.fail(logger, panicError(OpDownload, MergeFailed, p))}
		}
	}()

	table, err := edit.Table()
	if err != nil {
		return DownloadResponse{Envelope: s.fail(logger, newError(OpDownload, MalformedEdit, "invalid table data", err))}
	}

	var formats Formats
	targets := []struct {
		format codec.Format
		dst    *string
	}{
		{codec.FormatCSV, &formats.CSV},
		{codec.FormatXLSX, &formats.Excel},
		{codec.FormatJSON, &formats.JSON},
	}

	for _, target := range targets {
		encoded, err := codec.EncodeString(table, target.format)
		if err != nil {
			return DownloadResponse{Envelope: s.fail(logger, newError(OpDownload, MergeFailed, "could not encode "+string(target.format), err))}
		}
		*target.dst = encoded
	}

	logger.Info("table prepared for download", zap.Int("rows", table.RowCount()))

	return DownloadResponse{
		Envelope:        success("Table data prepared for download"),
		DownloadPayload: &DownloadPayload{Formats: formats},
	}
}

// Merge writes the edited tables into one workbook, one sheet per table.
func (s *Service) Merge(ctx context.Context, edits []codec.Edit) (resp MergeResponse) {
	logger := logging.FromContext(ctx, s.logger).With(zap.String("op", OpMerge), zap.Int("tables", len(edits)))

	defer func() {
		if p := recover(); p != nil {
			resp = MergeResponse{Envelope: s.fail(logger, panicError(OpMerge, MergeFailed, p))}
		}
	}()

	if len(edits) == 0 {
		return MergeResponse{Envelope: s.fail(logger, newError(OpMerge, EmptyMergeRequest, "no tables to merge", workbook.ErrEmptyMerge))}
	}

	tables := make([]model.Table, len(edits))
	for i, edit := range edits {
		table, err := edit.Table()
		if err != nil {
			return MergeResponse{Envelope: s.fail(logger, newError(OpMerge, MalformedEdit, "invalid table data", fmt.Errorf("table %d: %w", i+1, err)))}
		}
		tables[i] = table
	}

	data, err := workbook.Merge(tables)
	if err != nil {
		return MergeResponse{Envelope: s.fail(logger, newError(OpMerge, MergeFailed, "could not build workbook", err))}
	}

	logger.Info("tables merged", zap.Int("bytes", len(data)))

	return MergeResponse{
		Envelope:     success(fmt.Sprintf("Successfully merged %d tables", len(tables))),
		MergePayload: &MergePayload{ExcelData: base64.StdEncoding.EncodeToString(data)},
	}
}

// Reject builds the failure envelope of a request that could not be handed
// to op, such as an upload without a document or an undecodable body.
func (s *Service) Reject(ctx context.Context, op string, kind Kind, detail string, err error) Envelope {
	logger := logging.FromContext(ctx, s.logger).With(zap.String("op", op))
	return s.fail(logger, newError(op, kind, detail, err))
}

// fail logs err and builds its envelope.
func (s *Service) fail(logger *zap.Logger, err *Error) Envelope {
	logger.Error("operation failed",
		zap.Stringer("kind", err.Kind),
		zap.String("detail", err.Detail),
		zap.Error(err.Err),
	)

	message := failurePrefix[err.Op] + ": " + err.Detail
	if s.debug && err.Err != nil && err.Err.Error() != err.Detail {
		message += ": " + err.Err.Error()
	}

	return Envelope{
		Status:  StatusError,
		Message: message,
		Err:     err,
	}
}
