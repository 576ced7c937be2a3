package format

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{PDF, "PDF"},
		{DOCX, "DOCX"},
		{XLSX, "XLSX"},
		{HTML, "HTML"},
		{Unknown, "Unknown"},
		{Format(99), "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.format.String())
	}
}

func TestFormat_Extension(t *testing.T) {
	assert.Equal(t, ".pdf", PDF.Extension())
	assert.Equal(t, ".docx", DOCX.Extension())
	assert.Equal(t, ".xlsx", XLSX.Extension())
	assert.Equal(t, ".html", HTML.Extension())
	assert.Equal(t, "", Unknown.Extension())
}

func TestFormat_MimeType(t *testing.T) {
	assert.Equal(t, "application/pdf", PDF.MimeType())
	assert.Equal(t, "application/octet-stream", Unknown.MimeType())
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"pdf", PDF, false},
		{"PDF", PDF, false},
		{".pdf", PDF, false},
		{"docx", DOCX, false},
		{"xlsx", XLSX, false},
		{"html", HTML, false},
		{".htm", HTML, false},
		{"odt", Unknown, true},
		{"", Unknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"document.pdf", PDF},
		{"document.PDF", PDF},
		{"document.docx", DOCX},
		{"document.xlsx", XLSX},
		{"page.html", HTML},
		{"page.HTM", HTML},
		{"document.txt", Unknown},
		{"document", Unknown},
		{"", Unknown},
		{"/path/to/file.pdf", PDF},
		{"../../etc/passwd", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.filename))
		})
	}
}

func buildZIP(t *testing.T, names ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("<x/>"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDetectFromReader(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"pdf", []byte("%PDF-1.7\n%binary"), PDF},
		{"docx", buildZIP(t, "[Content_Types].xml", "word/document.xml"), DOCX},
		{"xlsx", buildZIP(t, "[Content_Types].xml", "xl/workbook.xml"), XLSX},
		{"other zip", buildZIP(t, "readme.txt"), Unknown},
		{"truncated zip", []byte("PK\x03\x04 this is a truncated docx"), Unknown},
		{"doctype", []byte("<!DOCTYPE html><html></html>"), HTML},
		{"html with whitespace", []byte("\n\t <html><body></body></html>"), HTML},
		{"bare table", []byte("<table><tr><td>1</td></tr></table>"), HTML},
		{"xhtml", []byte(`<?xml version="1.0"?><html xmlns="http://www.w3.org/1999/xhtml"></html>`), HTML},
		{"plain text", []byte("just some text"), Unknown},
		{"empty", nil, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFromReader(bytes.NewReader(tt.data), int64(len(tt.data)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFile(t *testing.T) {
	dir := t.TempDir()

	pdfPath := filepath.Join(dir, "upload.bin")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o600))

	got, err := DetectFile(pdfPath, "report.html")
	require.NoError(t, err)
	assert.Equal(t, PDF, got, "content wins over the caller-supplied name")

	textPath := filepath.Join(dir, "upload2.bin")
	require.NoError(t, os.WriteFile(textPath, []byte("no signature"), 0o600))

	got, err = DetectFile(textPath, "report.htm")
	require.NoError(t, err)
	assert.Equal(t, HTML, got)

	brokenPath := filepath.Join(dir, "upload3.bin")
	require.NoError(t, os.WriteFile(brokenPath, []byte("PK\x03\x04garbage"), 0o600))

	got, err = DetectFile(brokenPath, "report.docx")
	require.NoError(t, err)
	assert.Equal(t, DOCX, got, "a damaged archive falls back to the name")

	_, err = DetectFile(filepath.Join(dir, "missing"), "")
	assert.Error(t, err)
}
