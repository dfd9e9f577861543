package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tessro/bhajan/internal/audio"
	"github.com/tessro/bhajan/internal/config"
)

func TestOpenHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.mp3" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	s := NewSources(WithHTTPClient(srv.Client()))

	rc, size, err := s.Open(context.Background(), srv.URL+"/My%20Song.mp3")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = rc.Close() }()

	data, _ := io.ReadAll(rc)
	if string(data) != "ID3audio" {
		t.Errorf("body = %q, want %q", data, "ID3audio")
	}
	if size != int64(len("ID3audio")) {
		t.Errorf("size = %d, want %d", size, len("ID3audio"))
	}

	_, _, err = s.Open(context.Background(), srv.URL+"/missing.mp3")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("Open() error = %v, want StatusError 404", err)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s := NewSources()
	for _, u := range []string{path, "file://" + path} {
		rc, size, err := s.Open(context.Background(), u)
		if err != nil {
			t.Fatalf("Open(%q) error = %v", u, err)
		}
		_ = rc.Close()
		if size != 4 {
			t.Errorf("Open(%q) size = %d, want 4", u, size)
		}
	}
}

func TestOpenEscapedPath(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Raghupati Raghav.mp3", "100%.mp3", "a%20b.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plus normalized to escaped space", audio.NormalizeURL(filepath.Join(dir, "Raghupati+Raghav.mp3")), "Raghupati Raghav.mp3"},
		{"escaped space", filepath.Join(dir, "Raghupati%20Raghav.mp3"), "Raghupati Raghav.mp3"},
		{"invalid escape kept literally", filepath.Join(dir, "100%.mp3"), "100%.mp3"},
		{"escape sequence in real name", filepath.Join(dir, "a%20b.mp3"), "a%20b.mp3"},
	}

	s := NewSources()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, _, err := s.Open(context.Background(), tt.url)
			if err != nil {
				t.Fatalf("Open(%q) error = %v", tt.url, err)
			}
			defer rc.Close()
			body, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(body) != tt.want {
				t.Errorf("opened %q, want %q", body, tt.want)
			}
		})
	}
}

func TestOpenS3WithoutClient(t *testing.T) {
	_, _, err := NewSources().Open(context.Background(), "s3://media/bhajans/a.mp3")
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Errorf("Open() error = %v, want not configured", err)
	}
}

func TestOpenUnsupportedScheme(t *testing.T) {
	_, _, err := NewSources().Open(context.Background(), "ftp://host/a.mp3")
	if err == nil || !strings.Contains(err.Error(), "unsupported media scheme") {
		t.Errorf("Open() error = %v, want unsupported scheme", err)
	}
}

func TestNewS3ClientWithoutEndpoint(t *testing.T) {
	c, err := NewS3Client(config.StorageConfig{})
	if err != nil || c != nil {
		t.Errorf("NewS3Client() = %v, %v, want nil, nil", c, err)
	}
}

func TestOpenHTTPRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		switch {
		case r.URL.Path == "/gone.mp3":
			w.WriteHeader(http.StatusGone)
		case n <= 2:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			_, _ = w.Write([]byte("OggS"))
		}
	}))
	defer srv.Close()

	s := NewSources(WithHTTPClient(srv.Client()), WithRetries(3, time.Millisecond))

	rc, _, err := s.Open(context.Background(), srv.URL+"/flaky.ogg")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_ = rc.Close()
	if got := calls.Load(); got != 3 {
		t.Errorf("requests = %d, want 3", got)
	}

	calls.Store(10)
	_, _, err = s.Open(context.Background(), srv.URL+"/gone.mp3")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusGone {
		t.Errorf("Open() error = %v, want StatusError 410", err)
	}
	if got := calls.Load(); got != 11 {
		t.Errorf("requests after 410 = %d, want 11 (no retry)", got)
	}
}

func TestOpenHTTPRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewSources(WithHTTPClient(srv.Client()), WithRetries(2, time.Millisecond))
	_, _, err := s.Open(context.Background(), srv.URL+"/a.mp3")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
		t.Errorf("Open() error = %v, want StatusError 502", err)
	}
	if err == nil || !strings.Contains(err.Error(), "after 2 retries") {
		t.Errorf("Open() error = %v, want retries exhausted", err)
	}
}
