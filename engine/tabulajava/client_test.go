package tabulajava

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iklobato/pdftable/engine"
	"github.com/iklobato/pdftable/format"
)

const twoPageOutput = `[
  {"extraction_method":"lattice","page_number":1,"top":10,"left":10,"width":100,"height":50,
   "data":[[{"text":"Name"},{"text":"Qty"}],[{"text":"bolt"},{"text":"3"}],[{"text":"nut"},{"text":" "}]]},
  {"extraction_method":"lattice","page_number":1,"top":80,"left":10,"width":100,"height":50,
   "data":[[{"text":"Code"}],[{"text":"A1"}]]},
  {"extraction_method":"stream","page_number":2,"top":10,"left":10,"width":100,"height":50,
   "data":[[{"text":"Total"}],[{"text":"42"}]]}
]`

func TestDecode(t *testing.T) {
	tables, err := Decode(strings.NewReader(twoPageOutput))
	require.NoError(t, err)
	require.Len(t, tables, 3)

	first := tables[0]
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, "lattice", first.Method)
	assert.Equal(t, "Name", first.Header[0].String())
	require.Len(t, first.Rows, 2)
	assert.Equal(t, "bolt", first.Rows[0][0].String())
	assert.True(t, first.Rows[1][1].IsNull(), "blank cells are nulls")

	assert.Equal(t, 2, tables[2].Page)
	assert.Equal(t, "stream", tables[2].Method)
}

func TestDecode_Empty(t *testing.T) {
	tables, err := Decode(strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode(strings.NewReader(`Exception in thread "main"`))
	assert.Error(t, err)
}

func TestNew_RequiresJar(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestArgs(t *testing.T) {
	c, err := New("/opt/tabula.jar", WithMethod(MethodLattice), WithPassword("secret"), WithJavaOptions())
	require.NoError(t, err)

	args := c.args(engine.Input{Path: "/tmp/doc.pdf"}, engine.DefaultOptions())
	assert.Equal(t, []string{
		"-jar", "/opt/tabula.jar",
		"--pages", "all",
		"--guess",
		"--lattice",
		"--password", "secret",
		"--format", "JSON", "--silent",
		"/tmp/doc.pdf",
	}, args)

	options := &engine.Options{Pages: []int{1, 3}}
	args = c.args(engine.Input{Path: "/tmp/doc.pdf"}, options)
	assert.Contains(t, strings.Join(args, " "), "--pages 1,3")
	assert.NotContains(t, args, "--guess")
}

// fakeJava writes an executable script standing in for the java binary.
func fakeJava(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}

	path := filepath.Join(t.TempDir(), "java")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(output, []byte(twoPageOutput), 0o600))
	argsFile := filepath.Join(dir, "args")

	java := fakeJava(t, `printf '%s\n' "$@" > "`+argsFile+`"
cat "`+output+`"`)

	c, err := New("/opt/tabula.jar", WithJava(java))
	require.NoError(t, err)

	input := engine.Input{Path: "/tmp/upload.pdf", Format: format.PDF}
	tables, err := c.Extract(context.Background(), input, nil)
	require.NoError(t, err)
	require.Len(t, tables, 3)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "-Djava.awt.headless=true")
	assert.Contains(t, string(args), "/tmp/upload.pdf")
}

func TestExtract_FirstTablePerPage(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(output, []byte(twoPageOutput), 0o600))

	c, err := New("/opt/tabula.jar", WithJava(fakeJava(t, `cat "`+output+`"`)))
	require.NoError(t, err)

	options := engine.DefaultOptions()
	options.MultipleTables = false

	tables, err := c.Extract(context.Background(), engine.Input{Path: "x.pdf", Format: format.PDF}, options)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, 1, tables[0].Page)
	assert.Equal(t, 2, tables[1].Page)
}

func TestExtract_Failure(t *testing.T) {
	java := fakeJava(t, `echo "Error: End-of-File, expected line" >&2
exit 1`)

	c, err := New("/opt/tabula.jar", WithJava(java))
	require.NoError(t, err)

	_, err = c.Extract(context.Background(), engine.Input{Path: "x.pdf", Format: format.PDF}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "End-of-File")
}

func TestExtract_Timeout(t *testing.T) {
	java := fakeJava(t, `exec sleep 5`)

	c, err := New("/opt/tabula.jar", WithJava(java))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = c.Extract(ctx, engine.Input{Path: "x.pdf", Format: format.PDF}, nil)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestExtract_Unsupported(t *testing.T) {
	c, err := New("/opt/tabula.jar")
	require.NoError(t, err)

	_, err = c.Extract(context.Background(), engine.Input{Path: "x.docx", Format: format.DOCX}, nil)
	assert.ErrorIs(t, err, engine.ErrUnsupported)
}

func TestLimitedBuffer(t *testing.T) {
	b := &limitedBuffer{max: 4}
	n, err := b.Write([]byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "abcd", b.String())
}
