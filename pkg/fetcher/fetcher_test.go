package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<!DOCTYPE html><html><head><title> Hello </title></head><body><p>` +
			r.Header.Get("X-Test") + `</p></body></html>`))
	})
	mux.HandleFunc("/latin", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=windows-1252")
		_, _ = w.Write([]byte("<p>caf\xe9</p>"))
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	})
	mux.HandleFunc("/huge", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(strings.Repeat("x", DefaultMaxBodySize+1)))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestStaticFetcher_Fetch(t *testing.T) {
	srv := newTestServer(t)
	f := NewStatic(Config{})
	defer f.Close()

	content, err := f.Fetch(context.Background(), srv.URL+"/page", Options{
		Headers: map[string]string{"X-Test": "from-header"},
	})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if content.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", content.StatusCode)
	}
	if content.Title != "Hello" {
		t.Errorf("expected title Hello, got %q", content.Title)
	}
	if !strings.Contains(content.HTML, "<p>from-header</p>") {
		t.Errorf("expected custom header echoed, got %q", content.HTML)
	}
	if content.FetchedAt.IsZero() {
		t.Error("expected FetchedAt to be set")
	}
}

func TestStaticFetcher_TranscodesToUTF8(t *testing.T) {
	srv := newTestServer(t)

	content, err := NewStatic(Config{}).Fetch(context.Background(), srv.URL+"/latin", Options{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if content.HTML != "<p>café</p>" {
		t.Errorf("expected transcoded body, got %q", content.HTML)
	}
}

func TestStaticFetcher_TooLarge(t *testing.T) {
	srv := newTestServer(t)

	_, err := NewStatic(Config{MaxBodySize: 16}).Fetch(context.Background(), srv.URL+"/big", Options{})
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}

	if _, err := NewStatic(Config{MaxBodySize: 64}).Fetch(context.Background(), srv.URL+"/big", Options{}); err != nil {
		t.Errorf("body at the limit should be accepted, got %v", err)
	}
}

func TestStaticFetcher_NoLimit(t *testing.T) {
	srv := newTestServer(t)

	content, err := NewStatic(Config{MaxBodySize: NoLimit}).Fetch(context.Background(), srv.URL+"/huge", Options{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(content.HTML) != DefaultMaxBodySize+1 {
		t.Errorf("expected full body of %d bytes, got %d", DefaultMaxBodySize+1, len(content.HTML))
	}

	_, err = NewStatic(Config{}).Fetch(context.Background(), srv.URL+"/huge", Options{})
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge under the default limit, got %v", err)
	}
}

func TestStaticFetcher_HTTPError(t *testing.T) {
	srv := newTestServer(t)

	content, err := NewStatic(Config{}).Fetch(context.Background(), srv.URL+"/missing", Options{})
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if content.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", content.StatusCode)
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{Timeout: time.Second}.withDefaults()

	if cfg.Timeout != time.Second {
		t.Errorf("explicit timeout overwritten: %v", cfg.Timeout)
	}
	if cfg.UserAgent != defaultUserAgent {
		t.Errorf("expected default user agent, got %q", cfg.UserAgent)
	}
	if cfg.MaxBodySize != DefaultMaxBodySize {
		t.Errorf("expected default max body size, got %d", cfg.MaxBodySize)
	}
}

func TestConfig_WithDefaults_NoLimit(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"zero", 0, DefaultMaxBodySize},
		{"no limit", NoLimit, NoLimit},
		{"other negative", -5, NoLimit},
		{"explicit", 512, 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Config{MaxBodySize: tt.in}).withDefaults().MaxBodySize; got != tt.want {
				t.Errorf("withDefaults().MaxBodySize = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		mode     string
		wantType string
		wantErr  error
	}{
		{"", ModeStatic, nil},
		{"static", ModeStatic, nil},
		{"STATIC", ModeStatic, nil},
		{"dynamic", ModeDynamic, nil},
		{"telepathic", "", ErrUnsupportedMode},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			f, err := New(tt.mode, Config{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New(%q) error = %v, want %v", tt.mode, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer f.Close()
			if f.Type() != tt.wantType {
				t.Errorf("Type() = %q, want %q", f.Type(), tt.wantType)
			}
		})
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com/page", true},
		{"http://localhost:8080", true},
		{"page.html", false},
		{"/tmp/page.html", false},
		{"-", false},
		{"ftp://example.com/file", false},
		{"https://", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsURL(tt.in); got != tt.want {
				t.Errorf("IsURL(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
