package remote_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iklobato/pdftable/engine"
	"github.com/iklobato/pdftable/engine/remote"
	"github.com/iklobato/pdftable/format"
)

const response = `[{"extraction_method":"stream","page_number":2,"data":[[{"text":"A"},{"text":"B"}],[{"text":"1"},{"text":""}]]}]`

func writeInput(t *testing.T) engine.Input {
	t.Helper()

	path := filepath.Join(t.TempDir(), "upload.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7 test"), 0o600))

	return engine.Input{Path: path, Name: "report.pdf", Format: format.PDF}
}

func TestExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, _ := io.ReadAll(file)

		assert.Equal(t, "report.pdf", header.Filename)
		assert.Equal(t, "%PDF-1.7 test", string(data))
		assert.Equal(t, "true", r.FormValue("guess"))
		assert.Equal(t, "1,2", r.FormValue("pages"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, response)
	}))
	defer server.Close()

	c, err := remote.New(server.URL, remote.WithToken("secret"))
	require.NoError(t, err)

	options := engine.DefaultOptions()
	options.Pages = []int{1, 2}

	tables, err := c.Extract(context.Background(), writeInput(t), options)
	require.NoError(t, err)
	require.Len(t, tables, 1)

	assert.Equal(t, 2, tables[0].Page)
	assert.Equal(t, "stream", tables[0].Method)
	assert.Equal(t, "A", tables[0].Header[0].String())
	assert.True(t, tables[0].Rows[0][1].IsNull())
}

func TestExtract_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "corrupt document", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	c, err := remote.New(server.URL)
	require.NoError(t, err)

	_, err = c.Extract(context.Background(), writeInput(t), nil)
	require.Error(t, err)
	assert.Equal(t, "corrupt document", err.Error())
}

func TestExtract_EmptyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c, err := remote.New(server.URL)
	require.NoError(t, err)

	_, err = c.Extract(context.Background(), writeInput(t), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), err.Error())
}

func TestExtract_Unsupported(t *testing.T) {
	c, err := remote.New("http://localhost:1")
	require.NoError(t, err)

	input := writeInput(t)
	input.Format = format.XLSX

	_, err = c.Extract(context.Background(), input, nil)
	assert.ErrorIs(t, err, engine.ErrUnsupported)

	c, err = remote.New("http://localhost:1", remote.WithFormats(format.XLSX))
	require.NoError(t, err)

	_, err = c.Extract(context.Background(), input, nil)
	assert.NotErrorIs(t, err, engine.ErrUnsupported)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := remote.New("")
	assert.Error(t, err)
}
