// Package recommend runs a declarative rule table over a single scan's
// final state and emits prioritized optimization recommendations. Rules
// are independent: evaluation order never affects which rules fire, only
// their position in the output list (the declared table order).
package recommend

import (
	"github.com/gadsdencode/roboscan/internal/bots"
	"github.com/gadsdencode/roboscan/internal/model"
	"github.com/gadsdencode/roboscan/internal/robots"
)

// Rule is one declarative check: a predicate over the scan plus the
// message rendered when it fires.
type Rule struct {
	Category       string
	Severity       model.Severity
	Title          string
	Description    string
	Recommendation string
	Impact         string
	When           func(*model.Scan) bool
}

// Rules is the ordered rule table. Append-only; output order follows this
// declaration order.
var Rules = []Rule{
	{
		Category:       "robots_txt",
		Severity:       model.SeverityHigh,
		Title:          "No robots.txt found",
		Description:    "The site does not publish a robots.txt file, so crawlers have no instructions at all.",
		Recommendation: "Create a robots.txt at the site root declaring which paths crawlers may access and where the sitemap lives.",
		Impact:         "Search engines and AI crawlers fall back to crawling everything, including paths you may not want indexed.",
		When: func(s *model.Scan) bool {
			return !s.RobotsTxtFound
		},
	},
	{
		Category:       "llms_txt",
		Severity:       model.SeverityMedium,
		Title:          "No llms.txt found",
		Description:    "The site does not publish an llms.txt file describing itself to AI agents.",
		Recommendation: "Add an llms.txt with a title, a short summary and sections pointing agents at your canonical documentation.",
		Impact:         "AI assistants answering questions about the site work from scraped guesses instead of your curated description.",
		When: func(s *model.Scan) bool {
			return !s.LlmsTxtFound
		},
	},
	{
		Category:       "ai_access",
		Severity:       model.SeverityHigh,
		Title:          "robots.txt blocks all AI crawlers",
		Description:    "Every known AI crawler is fully disallowed. This is frequently an unintended blanket block rather than a deliberate policy.",
		Recommendation: "Review the robots.txt groups for AI agents and allow the crawlers you actually want to reach the site.",
		Impact:         "The site is invisible to AI-powered search and assistants.",
		When:           aiCrawlersFullyBlocked,
	},
	{
		Category:       "sitemap",
		Severity:       model.SeverityMedium,
		Title:          "No sitemap declared in robots.txt",
		Description:    "robots.txt exists but contains no Sitemap directive.",
		Recommendation: "Add a `Sitemap: https://your-site/sitemap.xml` line so crawlers can discover the full page inventory.",
		Impact:         "Crawlers discover pages only by following links, which delays indexing of deep or unlinked pages.",
		When: func(s *model.Scan) bool {
			if !s.RobotsTxtFound || s.RobotsTxtContent == nil {
				return false
			}
			parsed, err := robots.Parse(*s.RobotsTxtContent)
			return err == nil && len(parsed.Sitemaps) == 0
		},
	},
	{
		Category:       "security_txt",
		Severity:       model.SeverityLow,
		Title:          "No security.txt found",
		Description:    "The site has no /.well-known/security.txt describing how to report vulnerabilities.",
		Recommendation: "Publish a security.txt with a contact address and disclosure policy (RFC 9116).",
		Impact:         "Security researchers have no sanctioned channel to report issues.",
		When: func(s *model.Scan) bool {
			return !s.SecurityTxtFound
		},
	},
	{
		Category:       "sitemap",
		Severity:       model.SeverityLow,
		Title:          "No sitemap.xml found",
		Description:    "The site serves no sitemap.xml at the root.",
		Recommendation: "Generate a sitemap.xml and keep it current; reference it from robots.txt.",
		Impact:         "Large or frequently changing sites index more slowly without one.",
		When: func(s *model.Scan) bool {
			return !s.SitemapXMLFound
		},
	},
	{
		Category:       "diagnostics",
		Severity:       model.SeverityLow,
		Title:          "Scan produced warnings",
		Description:    "One or more technical files could not be fetched or parsed cleanly.",
		Recommendation: "Review the scan warnings: slow responses, HTML error pages served for text files, and malformed content all reduce crawler trust.",
		Impact:         "Crawlers that hit the same inconsistencies may treat the files as absent.",
		When: func(s *model.Scan) bool {
			return len(s.Warnings) > 0
		},
	},
}

// Generate evaluates the rule table against scan.
func Generate(scan *model.Scan) []model.OptimizationRecommendation {
	var out []model.OptimizationRecommendation
	for _, r := range Rules {
		if !r.When(scan) {
			continue
		}
		out = append(out, model.OptimizationRecommendation{
			Category:       r.Category,
			Severity:       r.Severity,
			Title:          r.Title,
			Description:    r.Description,
			Recommendation: r.Recommendation,
			Impact:         r.Impact,
		})
	}
	return out
}

// aiCrawlersFullyBlocked mirrors the scorer's wholesale-block check: every
// AI roster agent reports a total block in the permission matrix.
func aiCrawlersFullyBlocked(s *model.Scan) bool {
	if !s.RobotsTxtFound || len(s.BotPermissions) == 0 {
		return false
	}
	names := bots.AINames()
	for _, name := range names {
		if perm, ok := s.BotPermissions[name]; !ok || perm != "Disallow: all" {
			return false
		}
	}
	return len(names) > 0
}
