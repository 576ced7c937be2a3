package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func entries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Config{Component: "test", Level: "warn", Output: &buf})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", zap.Int("tables", 3))
	require.NoError(t, logger.Sync())

	logs := entries(t, &buf)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "WARNING", entry["severity"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, float64(3), entry["tables"])
	assert.Contains(t, entry, "timestamp")
	assert.Contains(t, entry, "caller")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	base := zap.NewExample()

	assert.Same(t, base, FromContext(context.Background(), base))
	assert.NotNil(t, FromContext(context.Background(), nil))

	scoped := base.Named("scoped")
	ctx := WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx, base))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base, err := NewLogger(Config{Output: &buf})
	require.NoError(t, err)

	handler := middleware.RequestID(RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context(), nil).Info("inside")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/update-table", nil))
	require.NoError(t, base.Sync())

	logs := entries(t, &buf)
	require.Len(t, logs, 2)

	assert.Equal(t, "inside", logs[0]["message"])
	assert.Equal(t, "/update-table", logs[0]["path"])
	assert.NotEmpty(t, logs[0]["request_id"])

	assert.Equal(t, "request completed", logs[1]["message"])
	assert.Equal(t, float64(http.StatusTeapot), logs[1]["status"])
	assert.Equal(t, float64(2), logs[1]["bytes"])
}
