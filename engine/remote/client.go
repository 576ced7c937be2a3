// Package remote posts documents to an HTTP service answering tabula-style
// JSON, such as a tabula-java web wrapper.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/iklobato/pdftable/engine"
	"github.com/iklobato/pdftable/engine/tabulajava"
	"github.com/iklobato/pdftable/format"
	"github.com/iklobato/pdftable/model"
)

var _ engine.Engine = (*Client)(nil)

type Client struct {
	client *http.Client

	url   string
	token string

	formats []format.Format
}

func New(url string, options ...Option) (*Client, error) {
	if url == "" {
		return nil, errors.New("invalid url")
	}

	c := &Client{
		client: http.DefaultClient,

		url: url,

		formats: []format.Format{format.PDF},
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

// Extract uploads the document as the multipart field "file" and decodes
// the returned regions.
func (c *Client) Extract(ctx context.Context, input engine.Input, options *engine.Options) ([]model.RawTable, error) {
	if options == nil {
		options = engine.DefaultOptions()
	}

	if !engine.Supports(input, c.formats...) {
		return nil, engine.ErrUnsupported
	}

	f, err := os.Open(input.Path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	name := input.Name
	if name == "" {
		name = uuid.NewString() + input.Format.Extension()
	}

	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeForm(w, f, name, input.Format, options))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, pr)
	if err != nil {
		pr.Close()
		return nil, err
	}

	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, convertError(resp)
	}

	return tabulajava.Decode(resp.Body)
}

func writeForm(w *multipart.Writer, r io.Reader, name string, f format.Format, options *engine.Options) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", multipart.FileContentDisposition("file", filepath.Base(name)))
	h.Set("Content-Type", f.MimeType())

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}

	if _, err := io.Copy(part, r); err != nil {
		return err
	}

	if err := w.WriteField("guess", strconv.FormatBool(options.Guess)); err != nil {
		return err
	}

	if err := w.WriteField("multiple_tables", strconv.FormatBool(options.MultipleTables)); err != nil {
		return err
	}

	if len(options.Pages) > 0 {
		pages := make([]string, len(options.Pages))
		for i, p := range options.Pages {
			pages[i] = strconv.Itoa(p)
		}

		if err := w.WriteField("pages", strings.Join(pages, ",")); err != nil {
			return err
		}
	}

	return w.Close()
}

func convertError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))

	if len(data) == 0 {
		return errors.New(http.StatusText(resp.StatusCode))
	}

	return errors.New(strings.TrimSpace(string(data)))
}
