package camera

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "go-motion-inspector/internal/errors"
	"go-motion-inspector/pkg/validation"
)

const captureAttempts = 3

// HTTPSource fetches JPEG snapshots from a camera endpoint
type HTTPSource struct {
	url          string
	name         string
	client       *http.Client
	retryDelay   time.Duration
	maxFrameSize int64
}

// HTTPOption customizes an HTTPSource
type HTTPOption func(*HTTPSource)

// WithRetryDelay sets the base delay between attempts; attempt n waits n*delay
func WithRetryDelay(d time.Duration) HTTPOption {
	return func(s *HTTPSource) { s.retryDelay = d }
}

// WithMaxFrameSize bounds the accepted body size
func WithMaxFrameSize(n int64) HTTPOption {
	return func(s *HTTPSource) { s.maxFrameSize = n }
}

// WithInsecureTLS disables certificate checks, cameras often ship self-signed ones
func WithInsecureTLS() HTTPOption {
	return func(s *HTTPSource) {
		if t, ok := s.client.Transport.(*http.Transport); ok {
			t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
	}
}

// NewHTTPSource creates an HTTP camera source
func NewHTTPSource(url string, timeout time.Duration, opts ...HTTPOption) *HTTPSource {
	// A camera is polled on a single host, keep the pool small
	transport := &http.Transport{
		MaxIdleConns:        2,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		// JPEG does not compress further
		DisableCompression:     true,
		MaxResponseHeaderBytes: 4096,
	}

	s := &HTTPSource{
		url:  url,
		name: "http:" + validation.RedactURL(url),
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		retryDelay:   time.Second,
		maxFrameSize: DefaultMaxFrameSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the source name, with any password redacted
func (s *HTTPSource) Name() string {
	return s.name
}

// Capture fetches one frame. Network errors and 5xx are retried, 4xx are not.
func (s *HTTPSource) Capture(ctx context.Context) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < captureAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, apperrors.NewTimeoutError("capture cancelled", ctx.Err())
			case <-time.After(time.Duration(attempt) * s.retryDelay):
			}
		}

		data, retry, err := s.fetch(ctx)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}

	return nil, apperrors.NewUnavailableError("camera unavailable", fmt.Errorf("failed to capture after %d attempts: %w", captureAttempts, lastErr))
}

func (s *HTTPSource) fetch(ctx context.Context) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg")
	req.Header.Set("User-Agent", "Go-Motion-Inspector/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxFrameSize+1))
	if err != nil {
		return nil, true, fmt.Errorf("failed to read frame: %w", err)
	}
	if int64(len(data)) > s.maxFrameSize {
		return nil, false, fmt.Errorf("frame exceeds %d bytes", s.maxFrameSize)
	}
	if len(data) == 0 {
		return nil, true, fmt.Errorf("empty frame")
	}
	return data, false, nil
}
