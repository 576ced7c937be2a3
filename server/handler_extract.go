package server

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/iklobato/pdftable/pipeline"
)

const uploadField = "file"

var errNoDocument = errors.New("no document uploaded")

func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	file, filename, err := readUpload(r)

	if err != nil {
		env := h.service.Reject(ctx, pipeline.OpExtract, pipeline.IngestionFailure, errNoDocument.Error(), err)
		writeJson(w, pipeline.ExtractResponse{Envelope: env})
		return
	}

	writeJson(w, h.service.Extract(ctx, file, filename))
}

// readUpload returns the multipart "file" part without buffering it. The
// part stays readable until the request body is consumed further.
func readUpload(r *http.Request) (io.Reader, string, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return nil, "", errNoDocument
	}

	mr, err := r.MultipartReader()

	if err != nil {
		return nil, "", err
	}

	for {
		part, err := mr.NextPart()

		if err == io.EOF {
			return nil, "", errNoDocument
		}

		if err != nil {
			return nil, "", err
		}

		if part.FormName() != uploadField {
			part.Close()
			continue
		}

		return part, part.FileName(), nil
	}
}
