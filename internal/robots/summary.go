package robots

import (
	"fmt"
	"strings"
)

// SummarizeImport produces the one-line description shown in the builder
// confirmation dialog before an imported robots.txt overwrites the working
// copy.
func SummarizeImport(p *ParsedRobotsTxt) string {
	if p == nil || len(p.Groups) == 0 {
		if p != nil && len(p.Sitemaps) > 0 {
			return fmt.Sprintf("No user-agent groups, %s", pluralize(len(p.Sitemaps), "sitemap"))
		}
		return "Empty robots.txt (no rule groups)"
	}

	agents := 0
	blocked := 0
	for _, g := range p.Groups {
		agents += len(g.Agents)
		for _, a := range g.Agents {
			if p.BlockedEverywhere(a) {
				blocked++
			}
		}
	}

	parts := []string{
		pluralize(len(p.Groups), "rule group"),
		pluralize(agents, "user-agent"),
	}
	if blocked > 0 {
		parts = append(parts, fmt.Sprintf("%d fully blocked", blocked))
	}
	if len(p.Sitemaps) > 0 {
		parts = append(parts, pluralize(len(p.Sitemaps), "sitemap"))
	}
	return strings.Join(parts, ", ")
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
