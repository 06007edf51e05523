package webclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gadsdencode/roboscan/internal/logging"
)

const (
	defaultTimeout      = 8 * time.Second
	defaultMaxBodyBytes = 2 << 20 // 2 MiB, plenty for any well-known text file
	defaultUserAgent    = "RoboScanBot/1.0 (+https://github.com/gadsdencode/roboscan)"
)

// net/http backed implementation of WebClient. Redirects are followed with
// the stdlib default policy (10 hops).
type NetHTTPClient struct {
	client       *http.Client
	cfg          Config
	maxBodyBytes int64
	logger       logging.Logger
}

func NewNetHTTPClient(cfg Config, logger logging.Logger, httpClient *http.Client) (*NetHTTPClient, error) {
	componentLogger := logger.With(logging.Field{Key: "component", Value: "webclient"})

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	componentLogger.Info("created nethttp webclient",
		logging.Field{Key: "timeout", Value: cfg.Timeout.String()},
		logging.Field{Key: "user_agent", Value: cfg.UserAgent})

	return &NetHTTPClient{
		client:       httpClient,
		cfg:          cfg,
		maxBodyBytes: maxBody,
		logger:       componentLogger,
	}, nil
}

// Do executes one request. Per-request Timeout overrides the client default
// so a slow file fetch cannot stall the rest of a fan-out.
func (nhc *NetHTTPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	nhc.logger.Debug("sending http request",
		logging.Field{Key: "method", Value: method},
		logging.Field{Key: "url", Value: req.URL})

	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if req.Headers != nil {
		for k, vs := range req.Headers {
			for _, v := range vs {
				httpReq.Header.Add(k, v)
			}
		}
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", nhc.cfg.UserAgent)
	}

	resp, err := nhc.client.Do(httpReq)
	if err != nil {
		nhc.logger.Warn("http request failed",
			logging.Field{Key: "method", Value: method},
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("http do: %w", err)
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, nhc.maxBodyBytes))
	if err != nil {
		nhc.logger.Warn("failed to read response body",
			logging.Field{Key: "method", Value: method},
			logging.Field{Key: "url", Value: req.URL},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		Request:    req,
		Body:       body,
		Headers:    resp.Header,
		StatusCode: resp.StatusCode,
		FetchedAt:  time.Now(),
	}, nil
}

// Get is a convenience method for simple GET requests.
func (nhc *NetHTTPClient) Get(ctx context.Context, url string) (*Response, error) {
	return nhc.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

// Head is a convenience method for HEAD probes.
func (nhc *NetHTTPClient) Head(ctx context.Context, url string, userAgent string) (*Response, error) {
	req := &Request{Method: http.MethodHead, URL: url}
	if userAgent != "" {
		req.Headers = http.Header{"User-Agent": {userAgent}}
	}
	return nhc.Do(ctx, req)
}

func (nhc *NetHTTPClient) Close() error {
	nhc.logger.Info("closing nethttp webclient")
	nhc.client.CloseIdleConnections()
	return nil
}
