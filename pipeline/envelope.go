package pipeline

import (
	"github.com/iklobato/pdftable/codec"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the status part of every operation result. On failure the
// payload of the enclosing response is nil and omitted from its JSON.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`

	// Err is the failure, nil on success.
	Err error `json:"-"`
}

// OK reports whether the operation succeeded.
func (e Envelope) OK() bool {
	return e.Status == StatusSuccess
}

func success(message string) Envelope {
	return Envelope{Status: StatusSuccess, Message: message}
}

type ExtractPayload struct {
	Tables []codec.View `json:"tables"`

	// FileID is the upload timestamp token.
	FileID string `json:"file_id"`
}

type ExtractResponse struct {
	Envelope
	*ExtractPayload
}

type UpdatePayload struct {
	Table   codec.View `json:"table"`
	CSVData string     `json:"csv_data"`
}

type UpdateResponse struct {
	Envelope
	*UpdatePayload
}

// Formats holds one table in every download format. Excel is base64.
type Formats struct {
	CSV   string `json:"csv"`
	Excel string `json:"excel"`
	JSON  string `json:"json"`
}

type DownloadPayload struct {
	Formats Formats `json:"formats"`
}

type DownloadResponse struct {
	Envelope
	*DownloadPayload
}

type MergePayload struct {
	// ExcelData is the merged workbook, base64 encoded.
	ExcelData string `json:"excel_data"`
}

type MergeResponse struct {
	Envelope
	*MergePayload
}
