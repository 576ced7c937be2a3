// Package ingest materializes uploaded documents as transient files.
//
// Every upload gets its own file named from a timestamp and a random UUID,
// never from the caller-supplied filename, so concurrent requests cannot
// collide and names cannot escape the upload directory. A [Document] must be
// released exactly once; [Store.Within] scopes acquisition and release to a
// callback.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iklobato/pdftable/format"
)

// TokenLayout is the layout of the timestamp token carried by documents.
const TokenLayout = "20060102_150405"

// DefaultMaxBytes is the upload limit used when none is configured.
const DefaultMaxBytes int64 = 50 << 20

var (
	// ErrTooLarge is returned when an upload exceeds the store limit.
	ErrTooLarge = errors.New("document exceeds the maximum upload size")

	// ErrEmpty is returned for zero-byte uploads.
	ErrEmpty = errors.New("document is empty")
)

// Store writes uploads into a directory.
type Store struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithMaxBytes sets the upload size limit. Zero or negative disables it.
func WithMaxBytes(n int64) Option {
	return func(s *Store) {
		s.maxBytes = n
	}
}

// WithClock replaces the time source used for tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string, options ...Option) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("upload directory is required")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	s := &Store{
		dir:      dir,
		maxBytes: DefaultMaxBytes,
		now:      time.Now,
	}

	for _, option := range options {
		option(s)
	}

	return s, nil
}

// Dir returns the upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// MaxBytes returns the upload size limit.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Put writes r to a new transient file. filename is kept as metadata and
// used as a format hint when the content has no recognizable signature.
// On error nothing is left behind.
func (s *Store) Put(ctx context.Context, r io.Reader, filename string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.now()
	token := now.Format(TokenLayout)
	id := uuid.New().String()

	hint := format.Detect(filename)
	path := filepath.Join(s.dir, token+"_"+id+hint.Extension())

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("creating transient file: %w", err)
	}

	size, err := s.copy(f, r)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing transient file: %w", cerr)
	}
	if err == nil && size == 0 {
		err = ErrEmpty
	}

	var detected format.Format
	if err == nil {
		detected, err = format.DetectFile(path, filename)
		if err != nil {
			err = fmt.Errorf("detecting document format: %w", err)
		}
	}

	if err != nil {
		os.Remove(path)
		return nil, err
	}

	return &Document{
		ID:     id,
		Token:  token,
		Name:   sanitizeName(filename),
		Path:   path,
		Format: detected,
		Size:   size,
	}, nil
}

// copy writes r into w, enforcing the size limit.
func (s *Store) copy(w io.Writer, r io.Reader) (int64, error) {
	if s.maxBytes <= 0 {
		n, err := io.Copy(w, r)
		if err != nil {
			return n, fmt.Errorf("writing transient file: %w", err)
		}
		return n, nil
	}

	n, err := io.Copy(w, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return n, fmt.Errorf("writing transient file: %w", err)
	}
	if n > s.maxBytes {
		return n, fmt.Errorf("%w of %d bytes", ErrTooLarge, s.maxBytes)
	}
	return n, nil
}

// Within stores r, runs fn with the document and releases it afterwards,
// whatever fn returns. A release error is reported only when fn succeeded.
func (s *Store) Within(ctx context.Context, r io.Reader, filename string, fn func(*Document) error) (err error) {
	doc, err := s.Put(ctx, r, filename)
	if err != nil {
		return err
	}

	defer func() {
		if rerr := doc.Release(); err == nil {
			err = rerr
		}
	}()

	return fn(doc)
}

// Document is an uploaded document held in transient storage.
type Document struct {
	// ID is the random part of the transient name.
	ID string

	// Token is the upload timestamp in TokenLayout.
	Token string

	// Name is the sanitized base name supplied by the caller.
	Name string

	// Path is the location of the transient file.
	Path string

	Format format.Format
	Size   int64

	once sync.Once
	err  error
}

// Release removes the transient file. Only the first call removes the file;
// later calls return the first result.
func (d *Document) Release() error {
	d.once.Do(func() {
		if err := os.Remove(d.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			d.err = fmt.Errorf("removing transient file: %w", err)
		}
	})
	return d.err
}

// sanitizeName strips directories and control characters from a
// caller-supplied filename.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}

	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
}
