// Package tabulajava extracts PDF tables by running the tabula-java command
// line tool.
package tabulajava

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/iklobato/pdftable/engine"
	"github.com/iklobato/pdftable/format"
	"github.com/iklobato/pdftable/model"
)

var _ engine.Engine = (*Client)(nil)

// Method forces a detection strategy instead of letting tabula choose.
type Method string

const (
	// MethodAuto lets tabula decide per page.
	MethodAuto Method = ""
	// MethodLattice uses ruling lines to find cells.
	MethodLattice Method = "lattice"
	// MethodStream uses whitespace between text to find cells.
	MethodStream Method = "stream"
)

// DefaultJavaOptions are passed to the JVM before -jar.
var DefaultJavaOptions = []string{"-Dfile.encoding=UTF8", "-Djava.awt.headless=true"}

// maxStderr caps the amount of diagnostics kept from a failed run.
const maxStderr = 4 << 10

// Client runs tabula-java.
type Client struct {
	java        string
	jar         string
	javaOptions []string

	method   Method
	password string
}

// New creates a Client for the given tabula-java jar.
func New(jar string, options ...Option) (*Client, error) {
	if strings.TrimSpace(jar) == "" {
		return nil, errors.New("tabula jar path is required")
	}

	c := &Client{
		java:        "java",
		jar:         jar,
		javaOptions: DefaultJavaOptions,
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

// Extract runs tabula on the input and decodes its JSON output.
func (c *Client) Extract(ctx context.Context, input engine.Input, options *engine.Options) ([]model.RawTable, error) {
	if options == nil {
		options = engine.DefaultOptions()
	}

	if !engine.Supports(input, format.PDF) {
		return nil, engine.ErrUnsupported
	}

	cmd := exec.CommandContext(ctx, c.java, c.args(input, options)...)
	cmd.WaitDelay = 5 * time.Second

	var stdout bytes.Buffer
	stderr := &limitedBuffer{max: maxStderr}

	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("tabula failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("tabula failed: %w", err)
	}

	tables, err := Decode(&stdout)
	if err != nil {
		return nil, err
	}

	if !options.MultipleTables {
		tables = firstPerPage(tables)
	}

	return tables, nil
}

// args builds the command line for one document.
func (c *Client) args(input engine.Input, options *engine.Options) []string {
	args := append([]string(nil), c.javaOptions...)
	args = append(args, "-jar", c.jar, "--pages", pagesArg(options.Pages))

	if options.Guess {
		args = append(args, "--guess")
	}

	switch c.method {
	case MethodLattice:
		args = append(args, "--lattice")
	case MethodStream:
		args = append(args, "--stream")
	}

	if c.password != "" {
		args = append(args, "--password", c.password)
	}

	return append(args, "--format", "JSON", "--silent", input.Path)
}

func pagesArg(pages []int) string {
	if len(pages) == 0 {
		return "all"
	}

	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

func firstPerPage(tables []model.RawTable) []model.RawTable {
	seen := make(map[int]bool)
	var result []model.RawTable

	for _, t := range tables {
		if seen[t.Page] {
			continue
		}
		seen[t.Page] = true
		result = append(result, t)
	}

	return result
}

// limitedBuffer keeps the first max bytes written to it.
type limitedBuffer struct {
	buf bytes.Buffer
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}
