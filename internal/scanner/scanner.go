// Package scanner fetches the fixed set of well-known technical files from
// a target origin, classifies presence/absence under realistic network
// failure modes, and builds the bot-permission matrix from robots.txt.
package scanner

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gadsdencode/roboscan/internal/bots"
	"github.com/gadsdencode/roboscan/internal/llms"
	"github.com/gadsdencode/roboscan/internal/logging"
	"github.com/gadsdencode/roboscan/internal/model"
	"github.com/gadsdencode/roboscan/internal/monitoring"
	"github.com/gadsdencode/roboscan/internal/robots"
	"github.com/gadsdencode/roboscan/internal/webclient"
)

// Scanner runs the technical-file fan-out against one origin per call.
// It is stateless across calls and safe for concurrent use.
type Scanner struct {
	cfg     Config
	wc      webclient.WebClient
	logger  logging.Logger
	metrics *monitoring.Metrics
	limiter *rate.Limiter
}

// New creates a Scanner. metrics may be nil.
func New(cfg Config, wc webclient.WebClient, logger logging.Logger, metrics *monitoring.Metrics) *Scanner {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	if cfg.FileTimeout <= 0 {
		cfg.FileTimeout = DefaultConfig().FileTimeout
	}
	if cfg.PreflightTimeout <= 0 {
		cfg.PreflightTimeout = DefaultConfig().PreflightTimeout
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Scanner{
		cfg:     cfg,
		wc:      wc,
		logger:  logger.With(logging.Field{Key: "component", Value: "scanner"}),
		metrics: metrics,
		limiter: limiter,
	}
}

// fileResult is the per-file slot written during fan-out. Each goroutine
// writes a disjoint index, so the merge step needs no locking.
type fileResult struct {
	found   bool
	content *string
	warning string
}

// Scan fetches all tracked files from rawURL's origin and returns the
// assembled snapshot. The score field is left at zero; scoring is the
// orchestrator's step. A fatal connectivity failure returns a *ScanError
// and no partial scan.
func (s *Scanner) Scan(ctx context.Context, rawURL string) (*model.Scan, error) {
	origin, host, err := originFromURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	s.metrics.IncScansTotal()
	start := time.Now()

	// Primary connectivity check. If the host is unreachable at all, fail
	// fast with one classified error instead of eight timeouts.
	if err := s.preflight(ctx, origin); err != nil {
		kind := webclient.Classify(err)
		s.metrics.IncScanErrorsTotal(string(kind))
		s.logger.Warn("preflight failed",
			logging.Field{Key: "host", Value: host},
			logging.Field{Key: "kind", Value: string(kind)})
		return nil, &ScanError{Kind: kind, Host: host, Err: err}
	}

	// Cancelling fanCtx aborts in-flight fetches if the caller gives up.
	fanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]fileResult, len(model.TechFiles))
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.cfg.MaxConcurrency)

	for i, file := range model.TechFiles {
		wg.Add(1)
		go func(i int, file model.TechFile) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = s.fetchFile(fanCtx, origin, file)
		}(i, file)
	}
	wg.Wait()

	s.metrics.ObserveFetchDuration(time.Since(start).Seconds())

	scan := &model.Scan{
		URL:            rawURL,
		BotPermissions: map[string]string{},
		Errors:         []string{},
		Warnings:       []string{},
	}
	for i, file := range model.TechFiles {
		res := results[i]
		scan.SetFile(file, res.found, res.content)
		if res.warning != "" {
			scan.Warnings = append(scan.Warnings, res.warning)
		}
		if res.found {
			s.metrics.IncFilesFoundTotal(string(file))
		}
	}

	s.analyzeRobots(scan)
	s.analyzeLlms(scan)

	s.logger.Info("scan complete",
		logging.Field{Key: "host", Value: host},
		logging.Field{Key: "files_found", Value: scan.FoundCount()},
		logging.Field{Key: "warnings", Value: len(scan.Warnings)})

	return scan, nil
}

// preflight checks that the host answers at the transport layer. Any HTTP
// status counts as reachable; only transport errors are fatal.
func (s *Scanner) preflight(ctx context.Context, origin string) error {
	_, err := s.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodHead,
		URL:     origin + "/",
		Timeout: s.cfg.PreflightTimeout,
	})
	return err
}

func (s *Scanner) fetchFile(ctx context.Context, origin string, file model.TechFile) fileResult {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fileResult{warning: fmt.Sprintf("%s: fetch cancelled", file.Label())}
		}
	}

	resp, err := s.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodGet,
		URL:     origin + file.Path(),
		Timeout: s.cfg.FileTimeout,
	})
	if err != nil {
		// Host was reachable (preflight passed); a per-file transport
		// failure degrades to not-found plus a warning.
		kind := webclient.Classify(err)
		return fileResult{warning: fmt.Sprintf("%s: fetch failed (%s)", file.Label(), kind)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || len(resp.Body) == 0 {
		// Absence of an optional file is not an error.
		return fileResult{}
	}

	if looksLikeHTMLDocument(resp.Body) {
		warning := fmt.Sprintf("%s: server returned an HTML page instead of a file; treating as not found", file.Label())
		if title := htmlTitle(resp.Body); title != "" {
			warning = fmt.Sprintf("%s: server returned an HTML page (%q) instead of a file; treating as not found", file.Label(), title)
		}
		return fileResult{warning: warning}
	}

	content := string(resp.Body)
	return fileResult{found: true, content: &content}
}

// analyzeRobots parses robots.txt when present and fills the
// bot-permission matrix for the full roster. With no robots.txt, or when
// parsing fails, every agent defaults to "Allow".
func (s *Scanner) analyzeRobots(scan *model.Scan) {
	for _, agent := range bots.Roster {
		scan.BotPermissions[agent.Name] = "Allow"
	}

	if !scan.RobotsTxtFound || scan.RobotsTxtContent == nil {
		return
	}

	parsed, err := robots.Parse(*scan.RobotsTxtContent)
	if err != nil {
		scan.Warnings = append(scan.Warnings, fmt.Sprintf("robots.txt: %v", err))
		return
	}

	for _, agent := range bots.Roster {
		scan.BotPermissions[agent.Name] = parsed.PermissionSummary(agent.Name)
	}
}

func (s *Scanner) analyzeLlms(scan *model.Scan) {
	if !scan.LlmsTxtFound || scan.LlmsTxtContent == nil {
		return
	}
	if _, err := llms.Parse(*scan.LlmsTxtContent); err != nil {
		scan.Warnings = append(scan.Warnings, fmt.Sprintf("llms.txt: %v", err))
	}
}

// originFromURL validates rawURL and reduces it to scheme://host[:port].
func originFromURL(rawURL string) (origin, host string, err error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", "", fmt.Errorf("empty url")
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("missing host")
	}

	return scheme + "://" + u.Host, u.Hostname(), nil
}
