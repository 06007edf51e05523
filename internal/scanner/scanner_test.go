package scanner_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gadsdencode/roboscan/internal/bots"
	"github.com/gadsdencode/roboscan/internal/logging"
	"github.com/gadsdencode/roboscan/internal/model"
	"github.com/gadsdencode/roboscan/internal/scanner"
	"github.com/gadsdencode/roboscan/internal/webclient"
)

func newScanner(t *testing.T, cfg scanner.Config) *scanner.Scanner {
	t.Helper()
	wc, err := webclient.NewNetHTTPClient(webclient.Config{}, logging.NopLogger{}, nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	t.Cleanup(func() { wc.Close() })
	return scanner.New(cfg, wc, logging.NopLogger{}, nil)
}

// siteHandler serves a small, well-behaved site: three files present,
// everything else 404.
func siteHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /admin\nSitemap: https://example.com/sitemap.xml\n"))
	})
	mux.HandleFunc("/llms.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# Example\n\n> A small demo site.\n\n## Docs\n- /docs\n"))
	})
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?><urlset></urlset>`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Write([]byte("ok"))
			return
		}
		http.NotFound(w, r)
	})
	return mux
}

func TestScan_EndToEnd(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(siteHandler())
	defer srv.Close()

	sc := newScanner(t, scanner.Config{})
	scan, err := sc.Scan(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if scan.URL != srv.URL {
		t.Errorf("url = %q, want original %q", scan.URL, srv.URL)
	}
	if !scan.RobotsTxtFound || scan.RobotsTxtContent == nil {
		t.Fatal("robots.txt should be found with content")
	}
	if !scan.LlmsTxtFound || !scan.SitemapXMLFound {
		t.Error("llms.txt and sitemap.xml should be found")
	}
	for _, f := range []model.TechFile{model.FileSecurityTxt, model.FileManifestJSON, model.FileAdsTxt, model.FileHumansTxt, model.FileAiTxt} {
		found, content := scan.File(f)
		if found || content != nil {
			t.Errorf("%s: found=%v content=%v, want absent with nil content", f, found, content)
		}
	}
	if scan.FoundCount() != 3 {
		t.Errorf("found count = %d, want 3", scan.FoundCount())
	}

	// Full roster present in the matrix, all governed by the wildcard group.
	if len(scan.BotPermissions) != len(bots.Roster) {
		t.Errorf("matrix has %d entries, want %d", len(scan.BotPermissions), len(bots.Roster))
	}
	for name, perm := range scan.BotPermissions {
		if perm != "Disallow: /admin" {
			t.Errorf("%s permission = %q, want %q", name, perm, "Disallow: /admin")
		}
	}

	if len(scan.Errors) != 0 || len(scan.Warnings) != 0 {
		t.Errorf("errors=%v warnings=%v, want none", scan.Errors, scan.Warnings)
	}
	if scan.Score != 0 {
		t.Errorf("score = %d; scanner must leave scoring to the caller", scan.Score)
	}
}

func TestScan_NoRobotsDefaultsToAllow(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Write([]byte("ok"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	sc := newScanner(t, scanner.Config{})
	scan, err := sc.Scan(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	for name, perm := range scan.BotPermissions {
		if perm != "Allow" {
			t.Errorf("%s = %q, want Allow when no robots.txt exists", name, perm)
		}
	}
}

func TestScan_HTMLErrorPageTreatedAsAbsent(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ads.txt" {
			// A 200 HTML page where a text file should be: a soft 404.
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<!DOCTYPE html><html><head><title>Page Not Found</title></head><body>404</body></html>"))
			return
		}
		if r.URL.Path == "/" {
			w.Write([]byte("ok"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	sc := newScanner(t, scanner.Config{})
	scan, err := sc.Scan(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if scan.AdsTxtFound || scan.AdsTxtContent != nil {
		t.Error("HTML body must not count as a found ads.txt")
	}
	var warned bool
	for _, w := range scan.Warnings {
		if strings.Contains(w, "ads.txt") && strings.Contains(w, "Page Not Found") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("warnings = %v, want an ads.txt soft-404 warning naming the page title", scan.Warnings)
	}
}

func TestScan_UnparsableRobotsWarnsAndDefaultsOpen(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte("this file has no directives at all"))
			return
		}
		if r.URL.Path == "/" {
			w.Write([]byte("ok"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	sc := newScanner(t, scanner.Config{})
	scan, err := sc.Scan(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !scan.RobotsTxtFound {
		t.Fatal("plain-text robots.txt should still count as found")
	}
	var warned bool
	for _, w := range scan.Warnings {
		if strings.Contains(w, "robots.txt") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("warnings = %v, want a robots.txt parse warning", scan.Warnings)
	}
	for name, perm := range scan.BotPermissions {
		if perm != "Allow" {
			t.Errorf("%s = %q, want Allow when robots.txt is unparsable", name, perm)
		}
	}
}

func TestScan_SlowFileDegradesToWarning(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/humans.txt" {
			time.Sleep(500 * time.Millisecond)
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	sc := newScanner(t, scanner.Config{FileTimeout: 100 * time.Millisecond})
	scan, err := sc.Scan(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scan: %v, one slow file must not fail the scan", err)
	}
	if scan.HumansTxtFound {
		t.Error("timed-out file should report as absent")
	}
	var warned bool
	for _, w := range scan.Warnings {
		if strings.Contains(w, "humans.txt") && strings.Contains(w, "timeout") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("warnings = %v, want a humans.txt timeout warning", scan.Warnings)
	}
}

func TestScan_ConnectionRefusedIsFatal(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listens on this port anymore

	sc := newScanner(t, scanner.Config{})
	scan, err := sc.Scan(context.Background(), url)
	if scan != nil {
		t.Error("fatal failure must not return a partial scan")
	}
	var scanErr *scanner.ScanError
	if !errors.As(err, &scanErr) {
		t.Fatalf("error = %v (%T), want *scanner.ScanError", err, err)
	}
	if scanErr.Kind != webclient.ErrorRefused {
		t.Errorf("kind = %s, want %s", scanErr.Kind, webclient.ErrorRefused)
	}
	if !strings.Contains(scanErr.Error(), "Connection refused") {
		t.Errorf("message = %q, want the classified refusal text", scanErr.Error())
	}
}

func TestScan_InvalidURL(t *testing.T) {
	t.Parallel()
	sc := newScanner(t, scanner.Config{})
	for _, raw := range []string{"", "   ", "ftp://example.com/x", "https://"} {
		_, err := sc.Scan(context.Background(), raw)
		if !errors.Is(err, scanner.ErrInvalidURL) {
			t.Errorf("Scan(%q) error = %v, want ErrInvalidURL", raw, err)
		}
	}
}

func TestScan_NonFileStatusesAreSilentAbsence(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Write([]byte("ok"))
		case "/robots.txt":
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("forbidden"))
		case "/llms.txt":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	sc := newScanner(t, scanner.Config{})
	scan, err := sc.Scan(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if scan.RobotsTxtFound || scan.LlmsTxtFound {
		t.Error("non-2xx responses must report the file as absent")
	}
	if len(scan.Warnings) != 0 {
		t.Errorf("warnings = %v; plain absence is not warning-worthy", scan.Warnings)
	}
}

func TestScan_BoundedConcurrency(t *testing.T) {
	t.Parallel()

	mu := make(chan struct{}, 1)
	inFlight, maxInFlight := 0, 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			return
		}
		mu <- struct{}{}
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		<-mu

		time.Sleep(30 * time.Millisecond)

		mu <- struct{}{}
		inFlight--
		<-mu
		http.NotFound(w, r)
	}))
	defer srv.Close()

	sc := newScanner(t, scanner.Config{MaxConcurrency: 2})
	if _, err := sc.Scan(context.Background(), srv.URL); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if maxInFlight > 2 {
		t.Errorf("observed %d concurrent fetches, limit is 2", maxInFlight)
	}
}
