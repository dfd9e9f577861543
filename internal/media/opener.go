// Package media opens audio sources by URL: http(s), s3:// object storage,
// file:// and bare filesystem paths.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/tessro/bhajan/internal/config"
)

// Opener opens a media URL for reading.
type Opener interface {
	// Open returns a reader for the media and its size in bytes, or -1 if unknown.
	Open(ctx context.Context, rawURL string) (io.ReadCloser, int64, error)
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
}

// Sources dispatches on URL scheme.
type Sources struct {
	http      *http.Client
	s3        *minio.Client
	logger    *zap.Logger
	retries   int
	retryWait time.Duration
}

// Option configures Sources.
type Option func(*Sources)

// WithHTTPClient sets the client used for http(s) URLs.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Sources) {
		s.http = c
	}
}

// WithS3Client sets the client used for s3:// URLs.
func WithS3Client(c *minio.Client) Option {
	return func(s *Sources) {
		s.s3 = c
	}
}

// WithRetries sets how many times a failed HTTP fetch is retried and the
// initial backoff, which doubles on each attempt.
func WithRetries(n int, wait time.Duration) Option {
	return func(s *Sources) {
		s.retries = max(n, 0)
		s.retryWait = wait
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Sources) {
		s.logger = l
	}
}

// NewSources creates an opener. Without WithHTTPClient, a client with a
// generous header timeout is used; streaming bodies are bounded by ctx.
func NewSources(opts ...Option) *Sources {
	s := &Sources{
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 15 * time.Second,
			},
		},
		logger:    zap.NewNop(),
		retries:   maxRetries,
		retryWait: baseRetryWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewS3Client builds a minio client from storage config. It returns nil
// without error when no endpoint is configured.
func NewS3Client(cfg config.StorageConfig) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return client, nil
}

// Open implements Opener.
func (s *Sources) Open(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Bare paths, including Windows drive letters.
		return openPath(rawURL)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return s.openHTTP(ctx, rawURL)
	case "s3":
		return s.openS3(ctx, u)
	case "file":
		return openFile(u.Path)
	default:
		return nil, 0, fmt.Errorf("unsupported media scheme %q", u.Scheme)
	}
}

// Retry configuration for transient HTTP errors
const (
	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// retryable reports whether a response status is worth retrying.
func retryable(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}

func (s *Sources) openHTTP(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		// Wait before retry (skip on first attempt)
		if attempt > 0 {
			wait := s.retryWait * time.Duration(1<<(attempt-1)) // exponential backoff
			s.logger.Debug("retrying media fetch",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("build request: %w", err)
		}

		resp, err := s.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, fmt.Errorf("fetch %s: %w", rawURL, err)
			}
			lastErr = fmt.Errorf("fetch %s: %w", rawURL, err)
			continue // Retry on network error
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_ = resp.Body.Close()
			lastErr = &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
			if retryable(resp.StatusCode) {
				continue
			}
			return nil, 0, lastErr
		}

		s.logger.Debug("media fetched",
			zap.String("url", rawURL),
			zap.Int64("content_length", resp.ContentLength),
			zap.String("content_type", resp.Header.Get("Content-Type")))

		return resp.Body, resp.ContentLength, nil
	}

	return nil, 0, fmt.Errorf("fetch failed after %d retries: %w", s.retries, lastErr)
}

func (s *Sources) openS3(ctx context.Context, u *url.URL) (io.ReadCloser, int64, error) {
	if s.s3 == nil {
		return nil, 0, fmt.Errorf("s3 storage not configured for %s", u.String())
	}

	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, 0, fmt.Errorf("invalid s3 url %q: want s3://bucket/key", u.String())
	}

	obj, err := s.s3.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, 0, fmt.Errorf("stat object %s/%s: %w", bucket, key, err)
	}

	s.logger.Debug("media object opened",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int64("size", info.Size))

	return obj, info.Size, nil
}

// openPath opens a bare path that may carry URL escapes, such as the %20
// that track URL normalization writes for spaces. A file whose real name
// contains the escape sequence still opens.
func openPath(raw string) (io.ReadCloser, int64, error) {
	if p, err := url.PathUnescape(raw); err == nil && p != raw {
		rc, size, err := openFile(p)
		if !errors.Is(err, fs.ErrNotExist) {
			return rc, size, err
		}
	}
	return openFile(raw)
}

func openFile(path string) (io.ReadCloser, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// Ensure Sources implements Opener
var _ Opener = (*Sources)(nil)
