// Package fetcher retrieves HTML documents from URLs so they can be
// translated like local files.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Mode names accepted by New.
const (
	ModeStatic  = "static"
	ModeDynamic = "dynamic"
)

// DefaultMaxBodySize bounds fetched documents when Config.MaxBodySize is 0.
const DefaultMaxBodySize = 10 * 1024 * 1024

// NoLimit as Config.MaxBodySize disables the body size check.
const NoLimit = -1

// Chrome user agent for better compatibility
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher abstracts page fetching strategies.
type Fetcher interface {
	// Fetch retrieves the document at url.
	Fetch(ctx context.Context, url string, opts Options) (Content, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns the fetcher mode, "static" or "dynamic".
	Type() string
}

// Config holds defaults shared by all requests of a fetcher.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	// MaxBodySize is in bytes; 0 selects DefaultMaxBodySize, NoLimit none.
	MaxBodySize int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent:   defaultUserAgent,
		Timeout:     30 * time.Second,
		MaxBodySize: DefaultMaxBodySize,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	switch {
	case c.MaxBodySize == 0:
		c.MaxBodySize = def.MaxBodySize
	case c.MaxBodySize < 0:
		c.MaxBodySize = NoLimit
	}
	return c
}

// Options controls a single fetch. Zero values fall back to the Config.
type Options struct {
	UserAgent       string
	Timeout         time.Duration
	WaitForSelector string        // CSS selector to wait for (dynamic fetchers)
	WaitDuration    time.Duration // Additional wait after load
	Headers         map[string]string
}

// Content represents a fetched document.
// HTML is always UTF-8; documents served in other charsets are transcoded.
type Content struct {
	URL         string
	HTML        string
	Title       string
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

var (
	// ErrUnsupportedMode is returned by New for an unknown mode.
	ErrUnsupportedMode = errors.New("unsupported fetch mode")
	// ErrTooLarge indicates the document exceeded Config.MaxBodySize.
	ErrTooLarge = errors.New("document too large")
)

// New creates a fetcher for the given mode.
func New(mode string, cfg Config) (Fetcher, error) {
	switch strings.ToLower(mode) {
	case "", ModeStatic:
		return NewStatic(cfg), nil
	case ModeDynamic:
		return NewDynamic(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
}

// IsURL reports whether s is an absolute http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// exceeds reports whether a body of size bytes is over max.
func exceeds(size, max int) bool {
	return max != NoLimit && size > max
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
