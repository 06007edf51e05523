package recommend_test

import (
	"testing"

	"github.com/gadsdencode/roboscan/internal/bots"
	"github.com/gadsdencode/roboscan/internal/model"
	"github.com/gadsdencode/roboscan/internal/recommend"
)

func strptr(s string) *string { return &s }

func wellConfiguredScan() *model.Scan {
	scan := &model.Scan{URL: "https://example.com", BotPermissions: map[string]string{}}
	scan.SetFile(model.FileRobotsTxt, true, strptr("User-agent: *\nAllow: /\nSitemap: https://example.com/sitemap.xml\n"))
	scan.SetFile(model.FileLlmsTxt, true, strptr("# Site\n"))
	scan.SetFile(model.FileSitemapXML, true, strptr("<urlset/>"))
	scan.SetFile(model.FileSecurityTxt, true, strptr("Contact: mailto:sec@example.com\n"))
	for _, a := range bots.Roster {
		scan.BotPermissions[a.Name] = "Allow"
	}
	return scan
}

func categories(recs []model.OptimizationRecommendation) map[string]int {
	out := map[string]int{}
	for _, r := range recs {
		out[r.Category]++
	}
	return out
}

func TestGenerate_WellConfiguredSiteGetsNothing(t *testing.T) {
	t.Parallel()
	if recs := recommend.Generate(wellConfiguredScan()); len(recs) != 0 {
		t.Errorf("got %d recommendations for a clean site: %+v", len(recs), recs)
	}
}

func TestGenerate_MissingRobots(t *testing.T) {
	t.Parallel()
	scan := wellConfiguredScan()
	scan.SetFile(model.FileRobotsTxt, false, nil)

	recs := recommend.Generate(scan)
	if len(recs) == 0 || recs[0].Category != "robots_txt" || recs[0].Severity != model.SeverityHigh {
		t.Fatalf("recs = %+v, want high robots_txt recommendation first", recs)
	}
}

func TestGenerate_MissingLlms(t *testing.T) {
	t.Parallel()
	scan := wellConfiguredScan()
	scan.SetFile(model.FileLlmsTxt, false, nil)

	cats := categories(recommend.Generate(scan))
	if cats["llms_txt"] != 1 {
		t.Errorf("categories = %v, want one llms_txt recommendation", cats)
	}
}

func TestGenerate_AIFullBlock(t *testing.T) {
	t.Parallel()
	scan := wellConfiguredScan()
	for _, name := range bots.AINames() {
		scan.BotPermissions[name] = "Disallow: all"
	}

	cats := categories(recommend.Generate(scan))
	if cats["ai_access"] != 1 {
		t.Errorf("categories = %v, want ai_access to fire", cats)
	}

	// One open AI crawler means the rule stays quiet.
	scan.BotPermissions[bots.AINames()[0]] = "Allow"
	cats = categories(recommend.Generate(scan))
	if cats["ai_access"] != 0 {
		t.Errorf("categories = %v, ai_access fired with a crawler still allowed", cats)
	}
}

func TestGenerate_SitemapRules(t *testing.T) {
	t.Parallel()
	scan := wellConfiguredScan()
	scan.SetFile(model.FileRobotsTxt, true, strptr("User-agent: *\nAllow: /\n"))
	scan.SetFile(model.FileSitemapXML, false, nil)

	recs := recommend.Generate(scan)
	cats := categories(recs)
	if cats["sitemap"] != 2 {
		t.Fatalf("categories = %v, want both sitemap rules", cats)
	}
	// Declaration order: the robots-directive rule (medium) before the
	// missing-file rule (low).
	var sitemapSevs []model.Severity
	for _, r := range recs {
		if r.Category == "sitemap" {
			sitemapSevs = append(sitemapSevs, r.Severity)
		}
	}
	if sitemapSevs[0] != model.SeverityMedium || sitemapSevs[1] != model.SeverityLow {
		t.Errorf("sitemap severities = %v", sitemapSevs)
	}
}

func TestGenerate_Warnings(t *testing.T) {
	t.Parallel()
	scan := wellConfiguredScan()
	scan.Warnings = []string{"ads.txt: fetch failed (timeout)"}

	cats := categories(recommend.Generate(scan))
	if cats["diagnostics"] != 1 {
		t.Errorf("categories = %v, want diagnostics to fire", cats)
	}
}
