package webclient

import (
	"context"
	"net/http"
	"time"
)

// WebClient abstracts outbound HTTP so scanners and probes can be tested
// against dummies.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte

	// Timeout bounds this single request. Zero means the client default.
	Timeout time.Duration
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}

// Config is the minimal configuration required for constructing a WebClient.
type Config struct {
	// Timeout is the default per-request deadline.
	Timeout time.Duration

	// UserAgent is sent on every request unless the request sets its own.
	UserAgent string

	// MaxBodyBytes caps how much of a response body is read. Zero means
	// the default cap.
	MaxBodyBytes int64
}
