package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/iklobato/pdftable/codec"
	"github.com/iklobato/pdftable/pipeline"
)

const invalidBody = "invalid request body"

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var edit codec.Edit

	if err := h.readJson(w, r, &edit); err != nil {
		env := h.service.Reject(r.Context(), pipeline.OpUpdate, pipeline.MalformedEdit, invalidBody, err)
		writeJson(w, pipeline.UpdateResponse{Envelope: env})
		return
	}

	writeJson(w, h.service.Update(r.Context(), edit))
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	var edit codec.Edit

	if err := h.readJson(w, r, &edit); err != nil {
		env := h.service.Reject(r.Context(), pipeline.OpDownload, pipeline.MalformedEdit, invalidBody, err)
		writeJson(w, pipeline.DownloadResponse{Envelope: env})
		return
	}

	writeJson(w, h.service.Download(r.Context(), edit))
}

func (h *Handler) handleMerge(w http.ResponseWriter, r *http.Request) {
	var edits []codec.Edit

	if err := h.readJson(w, r, &edits); err != nil {
		env := h.service.Reject(r.Context(), pipeline.OpMerge, pipeline.MalformedEdit, invalidBody, err)
		writeJson(w, pipeline.MergeResponse{Envelope: env})
		return
	}

	writeJson(w, h.service.Merge(r.Context(), edits))
}

// readJson decodes a single JSON value from the bounded request body.
func (h *Handler) readJson(w http.ResponseWriter, r *http.Request, v any) error {
	body := r.Body

	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	dec := json.NewDecoder(body)

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}

	if _, err := dec.Token(); err != io.EOF {
		return errors.New("decoding request body: unexpected data after value")
	}

	return nil
}
