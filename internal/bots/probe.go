package bots

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gadsdencode/roboscan/internal/webclient"
)

// AccessResult is the outcome of probing a URL as a specific bot.
type AccessResult struct {
	Bot        string `json:"bot"`
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode"`
	Reachable  bool   `json:"reachable"`
	Detail     string `json:"detail,omitempty"`
}

// TestAccess issues a plain HEAD request with the bot's literal wire
// user agent substituted in and reports whether the URL answered with a
// success or redirect status. Transport failures are reported in Detail,
// not returned as errors, so a probe result always renders.
func TestAccess(ctx context.Context, wc webclient.WebClient, rawURL string, agent Agent, timeout time.Duration) *AccessResult {
	res := &AccessResult{Bot: agent.Name, URL: rawURL}

	resp, err := wc.Do(ctx, &webclient.Request{
		Method:  http.MethodHead,
		URL:     rawURL,
		Headers: http.Header{"User-Agent": {agent.UserAgent}},
		Timeout: timeout,
	})
	if err != nil {
		kind := webclient.Classify(err)
		res.Detail = fmt.Sprintf("probe failed (%s)", kind)
		return res
	}

	res.StatusCode = resp.StatusCode
	res.Reachable = resp.StatusCode >= 200 && resp.StatusCode < 400
	if resp.StatusCode == http.StatusForbidden {
		res.Detail = "server returned 403 — bot appears to be blocked at the HTTP layer"
	}
	return res
}
