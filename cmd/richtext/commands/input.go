package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/weirin1/html/internal/logger"
	"github.com/weirin1/html/pkg/fetcher"
)

// document is one loaded input.
type document struct {
	Name string
	HTML string
	// Fetched documents are already UTF-8.
	Fetched bool
}

// inputReader loads files, stdin and URLs. The fetcher is created on the
// first URL so local-only runs never start a browser.
type inputReader struct {
	stdin     io.Reader
	fetchMode string
	timeout   time.Duration
	maxSize   int

	fetcher fetcher.Fetcher
}

func newInputReader(cmd *cobra.Command, fetchMode string, timeout time.Duration, maxSize int) *inputReader {
	return &inputReader{
		stdin:     cmd.InOrStdin(),
		fetchMode: fetchMode,
		timeout:   timeout,
		maxSize:   maxSize,
	}
}

// Read loads name, which is "-" for stdin, an http(s) URL or a file path.
func (r *inputReader) Read(ctx context.Context, name string) (*document, error) {
	if fetcher.IsURL(name) {
		return r.fetch(ctx, name)
	}

	var src io.Reader
	if name == "-" {
		src = r.stdin
	} else {
		f, err := os.Open(name) //#nosec G304 -- CLI tool reads user-specified input files
		if err != nil {
			return nil, err
		}
		defer f.Close()
		src = f
	}

	if r.maxSize > 0 {
		src = io.LimitReader(src, int64(r.maxSize)+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if r.maxSize > 0 && len(data) > r.maxSize {
		return nil, fmt.Errorf("%s: input larger than %s", name, humanize.Bytes(uint64(r.maxSize)))
	}

	logger.Debug("input loaded", "input", name, "size", humanize.Bytes(uint64(len(data))))
	return &document{Name: name, HTML: string(data)}, nil
}

func (r *inputReader) fetch(ctx context.Context, url string) (*document, error) {
	if r.fetcher == nil {
		f, err := fetcher.New(r.fetchMode, r.fetcherConfig())
		if err != nil {
			return nil, err
		}
		logger.Debug("fetcher created", "type", f.Type())
		r.fetcher = f
	}

	content, err := r.fetcher.Fetch(ctx, url, fetcher.Options{Timeout: r.timeout})
	if err != nil {
		return nil, err
	}
	logger.Debug("input fetched",
		"url", url,
		"status", content.StatusCode,
		"title", content.Title,
		"size", humanize.Bytes(uint64(len(content.HTML))))
	return &document{Name: url, HTML: content.HTML, Fetched: true}, nil
}

// fetcherConfig maps the input limits onto fetcher settings.
// A maxSize of 0 means unlimited for URLs as it does for files.
func (r *inputReader) fetcherConfig() fetcher.Config {
	maxBody := r.maxSize
	if maxBody == 0 {
		maxBody = fetcher.NoLimit
	}
	return fetcher.Config{
		Timeout:     r.timeout,
		MaxBodySize: maxBody,
	}
}

// Close releases the fetcher, if one was created.
func (r *inputReader) Close() error {
	if r.fetcher == nil {
		return nil
	}
	return r.fetcher.Close()
}

// parseSize parses a human-readable size such as "10MB".
// An empty value or "0" means unlimited and returns 0.
func parseSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return int(n), nil
}

// openOutput returns the command's stdout, or the named file when path is set.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path) //#nosec G304 -- CLI tool writes to user-specified output file
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
