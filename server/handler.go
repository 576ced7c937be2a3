// Package server exposes the table operations over HTTP.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iklobato/pdftable/pipeline"
)

// DefaultMaxBodyBytes bounds JSON request bodies.
const DefaultMaxBodyBytes int64 = 32 << 20

type Handler struct {
	service *pipeline.Service

	maxBodyBytes int64
}

type Option func(*Handler)

// WithMaxBodyBytes bounds JSON request bodies. Uploads are bounded by the
// ingestion store instead.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		h.maxBodyBytes = n
	}
}

func New(service *pipeline.Service, options ...Option) *Handler {
	h := &Handler{
		service: service,

		maxBodyBytes: DefaultMaxBodyBytes,
	}

	for _, option := range options {
		option(h)
	}

	return h
}

func (h *Handler) Attach(r chi.Router) {
	r.Post("/extract-tables", h.handleExtract)
	r.Post("/update-table", h.handleUpdate)
	r.Post("/download-table", h.handleDownload)
	r.Post("/merge-tables", h.handleMerge)

	r.Get("/healthz", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJson(w, map[string]string{"status": "ok"})
}

// writeJson answers 200 with v. Failures travel inside the envelope.
func writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(v)
}
