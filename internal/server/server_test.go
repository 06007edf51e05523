package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gadsdencode/roboscan/internal/app"
	"github.com/gadsdencode/roboscan/internal/cooldown"
	"github.com/gadsdencode/roboscan/internal/history"
	"github.com/gadsdencode/roboscan/internal/logging"
	"github.com/gadsdencode/roboscan/internal/model"
	"github.com/gadsdencode/roboscan/internal/scanner"
	"github.com/gadsdencode/roboscan/internal/server"
	"github.com/gadsdencode/roboscan/internal/webclient"
)

// targetSite is the site under scan: robots.txt and llms.txt present,
// everything else 404.
func targetSite() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /admin\n"))
	})
	mux.HandleFunc("/llms.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# Target\n## Docs\n- /docs\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			w.Write([]byte("ok"))
			return
		}
		http.NotFound(w, r)
	})
	return httptest.NewServer(mux)
}

// newAPI builds the whole stack behind an httptest server.
func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	logger := logging.NopLogger{}

	wc, err := webclient.NewNetHTTPClient(webclient.Config{}, logger, nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient: %v", err)
	}
	t.Cleanup(func() { wc.Close() })

	hist, err := history.Open(filepath.Join(t.TempDir(), "history.db"), logger)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}

	cfg := app.DefaultConfig()
	sc := scanner.New(cfg.ScannerCfg, wc, logger, nil)
	orch := app.NewOrchestrator(cfg, sc, hist, cooldown.NewMemoryStore(), logger)
	t.Cleanup(orch.Close)

	api := httptest.NewServer(server.NewServer(server.Config{Logger: logger}, orch, wc))
	t.Cleanup(api.Close)
	return api
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func createScan(t *testing.T, api *httptest.Server, targetURL, userID string) *app.ScanOutcome {
	t.Helper()
	resp := postJSON(t, api.URL+"/api/scans", map[string]string{"url": targetURL, "user_id": userID})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create scan status = %d", resp.StatusCode)
	}
	outcome := decode[*app.ScanOutcome](t, resp)
	if outcome.Scan == nil || outcome.Scan.ID == "" {
		t.Fatalf("outcome = %+v, want a persisted scan", outcome)
	}
	return outcome
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	api := newAPI(t)
	resp, err := http.Get(api.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestCreateScan(t *testing.T) {
	t.Parallel()
	target := targetSite()
	defer target.Close()
	api := newAPI(t)

	outcome := createScan(t, api, target.URL, "")
	if !outcome.Scan.RobotsTxtFound || !outcome.Scan.LlmsTxtFound {
		t.Error("scan should find robots.txt and llms.txt")
	}
	if outcome.Scan.Score <= 0 {
		t.Errorf("score = %d, want scored snapshot", outcome.Scan.Score)
	}
	if outcome.RewardEligible {
		t.Error("anonymous scans are never reward eligible")
	}
}

func TestCreateScan_CooldownGatesReward(t *testing.T) {
	t.Parallel()
	target := targetSite()
	defer target.Close()
	api := newAPI(t)

	first := createScan(t, api, target.URL, "user1")
	if !first.RewardEligible {
		t.Error("first scan for a user+domain should be reward eligible")
	}

	second := createScan(t, api, target.URL+"/some/page", "user1")
	if second.RewardEligible {
		t.Error("repeat scan inside the window must not be reward eligible")
	}

	other := createScan(t, api, target.URL, "user2")
	if !other.RewardEligible {
		t.Error("a different user is not affected by user1's cooldown")
	}
}

func TestCreateScan_InvalidURL(t *testing.T) {
	t.Parallel()
	api := newAPI(t)
	resp := postJSON(t, api.URL+"/api/scans", map[string]string{"url": "ftp://example.com/x"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for invalid URL", resp.StatusCode)
	}
}

func TestCreateScan_UnreachableTarget(t *testing.T) {
	t.Parallel()
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	api := newAPI(t)
	resp := postJSON(t, api.URL+"/api/scans", map[string]string{"url": deadURL})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502 for unreachable target", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["kind"] != "connection_refused" {
		t.Errorf("kind = %q, want connection_refused", body["kind"])
	}
}

func TestGetScan(t *testing.T) {
	t.Parallel()
	target := targetSite()
	defer target.Close()
	api := newAPI(t)

	outcome := createScan(t, api, target.URL, "")

	resp, err := http.Get(api.URL + "/api/scans/" + outcome.Scan.ID)
	if err != nil {
		t.Fatalf("GET scan: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	scan := decode[*model.Scan](t, resp)
	if scan.ID != outcome.Scan.ID {
		t.Errorf("scan id = %q, want %q", scan.ID, outcome.Scan.ID)
	}

	resp, err = http.Get(api.URL + "/api/scans/no-such-id")
	if err != nil {
		t.Fatalf("GET missing scan: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListScans(t *testing.T) {
	t.Parallel()
	target := targetSite()
	defer target.Close()
	api := newAPI(t)

	createScan(t, api, target.URL, "")
	createScan(t, api, target.URL+"/deeper", "")

	resp, err := http.Get(api.URL + "/api/scans?url=" + target.URL)
	if err != nil {
		t.Fatalf("GET history: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	scans := decode[[]*model.Scan](t, resp)
	if len(scans) != 2 {
		t.Errorf("got %d scans, want 2", len(scans))
	}

	resp, err = http.Get(api.URL + "/api/scans")
	if err != nil {
		t.Fatalf("GET without url: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without url parameter", resp.StatusCode)
	}
}

func TestCompareEndpoint(t *testing.T) {
	t.Parallel()
	target := targetSite()
	api := newAPI(t)

	base := createScan(t, api, target.URL, "")

	// Second scan against a site that lost its llms.txt.
	target.Close()
	reduced := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			w.Write([]byte("User-agent: *\nDisallow: /admin\n"))
		case "/":
			w.Write([]byte("ok"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer reduced.Close()
	head := createScan(t, api, reduced.URL, "")

	resp, err := http.Get(fmt.Sprintf("%s/api/compare?base=%s&head=%s", api.URL, base.Scan.ID, head.Scan.ID))
	if err != nil {
		t.Fatalf("GET compare: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[struct {
		Differences []model.ScanDifference `json:"differences"`
		Stats       model.DiffStats        `json:"stats"`
	}](t, resp)
	if body.Stats.Total == 0 || len(body.Differences) != body.Stats.Total {
		t.Errorf("stats = %+v with %d differences", body.Stats, len(body.Differences))
	}

	resp, err = http.Get(api.URL + "/api/compare?base=only")
	if err != nil {
		t.Fatalf("GET compare without head: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without both IDs", resp.StatusCode)
	}
}

func TestRecommendationsEndpoint(t *testing.T) {
	t.Parallel()
	target := targetSite()
	defer target.Close()
	api := newAPI(t)

	outcome := createScan(t, api, target.URL, "")

	resp, err := http.Get(api.URL + "/api/scans/" + outcome.Scan.ID + "/recommendations")
	if err != nil {
		t.Fatalf("GET recommendations: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	recs := decode[[]model.OptimizationRecommendation](t, resp)
	// The target has no sitemap or security.txt, so rules must fire.
	if len(recs) == 0 {
		t.Error("expected at least one recommendation")
	}
}

func TestListBots(t *testing.T) {
	t.Parallel()
	api := newAPI(t)
	resp, err := http.Get(api.URL + "/api/bots")
	if err != nil {
		t.Fatalf("GET bots: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	roster := decode[[]map[string]any](t, resp)
	if len(roster) != 14 {
		t.Errorf("roster size = %d, want 14", len(roster))
	}
}

func TestScanJobLifecycle(t *testing.T) {
	t.Parallel()
	target := targetSite()
	defer target.Close()
	api := newAPI(t)

	resp := postJSON(t, api.URL+"/api/jobs/scan", map[string]string{"url": target.URL})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("start job status = %d", resp.StatusCode)
	}
	job := decode[map[string]any](t, resp)
	jobID, _ := job["id"].(string)
	if jobID == "" {
		t.Fatalf("job = %v, want an id", job)
	}

	deadline := time.Now().Add(10 * time.Second)
	for {
		resp, err := http.Get(api.URL + "/api/jobs/" + jobID)
		if err != nil {
			t.Fatalf("GET job: %v", err)
		}
		state := decode[map[string]any](t, resp)
		switch state["status"] {
		case "done":
			if sid, _ := state["scan_id"].(string); sid == "" {
				t.Errorf("done job has no scan_id: %v", state)
			}
			return
		case "failed":
			t.Fatalf("job failed: %v", state["error"])
		}
		if time.Now().After(deadline) {
			t.Fatalf("job still %v after deadline", state["status"])
		}
		time.Sleep(50 * time.Millisecond)
	}
}
