// Package format identifies the type of uploaded documents.
//
// Detection prefers content over names: [DetectFromReader] inspects magic
// bytes and, for ZIP containers, the archive layout. [Detect] maps a file
// extension and is only a fallback for content that carries no signature.
package format

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Format represents a document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// XLSX indicates a Microsoft Excel (.xlsx) workbook.
	XLSX
	// HTML indicates an HTML document.
	HTML
)

type descriptor struct {
	name       string
	key        string
	extensions []string
	mimeType   string
}

var descriptors = map[Format]descriptor{
	PDF: {
		name:       "PDF",
		key:        "pdf",
		extensions: []string{".pdf"},
		mimeType:   "application/pdf",
	},
	DOCX: {
		name:       "DOCX",
		key:        "docx",
		extensions: []string{".docx"},
		mimeType:   "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	},
	XLSX: {
		name:       "XLSX",
		key:        "xlsx",
		extensions: []string{".xlsx"},
		mimeType:   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	},
	HTML: {
		name:       "HTML",
		key:        "html",
		extensions: []string{".html", ".htm"},
		mimeType:   "text/html",
	},
}

// All lists the known formats.
var All = []Format{PDF, DOCX, XLSX, HTML}

// String returns the display name of the format.
func (f Format) String() string {
	if d, ok := descriptors[f]; ok {
		return d.name
	}
	return "Unknown"
}

// Key returns the lower-case configuration key of the format.
func (f Format) Key() string {
	return descriptors[f].key
}

// Extension returns the canonical file extension, including the dot.
func (f Format) Extension() string {
	if d, ok := descriptors[f]; ok {
		return d.extensions[0]
	}
	return ""
}

// MimeType returns the IANA media type of the format.
func (f Format) MimeType() string {
	if d, ok := descriptors[f]; ok {
		return d.mimeType
	}
	return "application/octet-stream"
}

// Parse resolves a configuration key such as "pdf" or an extension such as
// ".pdf".
func Parse(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range All {
		d := descriptors[f]
		if s == d.key {
			return f, nil
		}
		for _, ext := range d.extensions {
			if s == ext {
				return f, nil
			}
		}
	}
	return Unknown, fmt.Errorf("unknown document format %q", s)
}

// Detect determines the format from a filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return Unknown
	}
	f, err := Parse(ext)
	if err != nil {
		return Unknown
	}
	return f
}

var (
	magicPDF = []byte("%PDF")
	magicZIP = []byte("PK\x03\x04")
)

// sniffLen is the number of leading bytes inspected for signatures.
const sniffLen = 512

// DetectFromReader inspects the content to determine the format. ZIP
// archives are opened to tell DOCX from XLSX.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	head := make([]byte, sniffLen)
	n, err := r.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, magicPDF):
		return PDF, nil
	case bytes.HasPrefix(head, magicZIP):
		return detectZIP(r, size)
	case looksLikeHTML(head):
		return HTML, nil
	}

	return Unknown, nil
}

// DetectFile detects the format of a file on disk by content, falling back
// to the extension of fallbackName when the content carries no signature.
func DetectFile(path, fallbackName string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unknown, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Unknown, err
	}

	detected, err := DetectFromReader(f, info.Size())
	if err != nil {
		return Unknown, err
	}
	if detected == Unknown {
		detected = Detect(fallbackName)
	}
	return detected, nil
}

// detectZIP tells the Office Open XML formats apart by their part names.
// An archive that does not open is reported as Unknown so a damaged
// document still reaches its engine; only read failures are errors.
func detectZIP(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return Unknown, err
		}
		return Unknown, nil
	}

	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX, nil
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX, nil
		}
	}

	return Unknown, nil
}

// looksLikeHTML reports whether the leading bytes carry an HTML signature.
func looksLikeHTML(head []byte) bool {
	head = bytes.TrimLeft(head, " \t\r\n\xef\xbb\xbf")
	if len(head) == 0 {
		return false
	}

	upper := strings.ToUpper(string(head))
	switch {
	case strings.HasPrefix(upper, "<!DOCTYPE HTML"),
		strings.HasPrefix(upper, "<HTML"),
		strings.HasPrefix(upper, "<TABLE"):
		return true
	case strings.HasPrefix(upper, "<?XML"):
		return strings.Contains(upper, "<HTML")
	}

	return false
}
