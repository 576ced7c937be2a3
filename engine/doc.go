// Package engine defines the capability interface of table extraction
// engines.
//
// Table detection is not implemented by this module. An [Engine] wraps
// something that already does it (a subprocess, a remote service or a
// document parser) and reports one [model.RawTable] per detected region.
//
// # Engines
//
// The subpackages provide:
//
//   - tabulajava - runs the tabula-java command line tool on PDF documents
//   - remote - posts documents to an HTTP service answering tabula JSON
//   - htmltable - reads the tables of HTML documents
//   - docxtable - reads the tables of Word documents
//   - spreadsheet - reads the sheets of Excel workbooks
//   - router - dispatches to one engine per document format
//
// # Wrappers
//
// Engines compose. [WithTimeout] bounds every call, the limiter subpackage
// applies a token-bucket rate limit and the traced subpackage records an
// OpenTelemetry span per extraction:
//
//	pdf, err := tabulajava.New(jar)
//	if err != nil {
//		return err
//	}
//	e := engine.WithTimeout(traced.New("pdf", pdf), 2*time.Minute)
//	tables, err := e.Extract(ctx, input, engine.DefaultOptions())
package engine
