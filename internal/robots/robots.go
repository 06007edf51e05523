// Package robots parses robots.txt into per-user-agent rule groups and
// answers permission lookups for named crawlers. It is used both during
// scans and standalone when importing a file from the builder UI.
package robots

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnparsable is returned when the content cannot be tokenized into any
// robots.txt directive (e.g. an HTML error page served at /robots.txt).
var ErrUnparsable = errors.New("robots: no recognizable directives")

// Rule is a single Allow/Disallow line within a group.
type Rule struct {
	Allow bool   `json:"allow"`
	Path  string `json:"path"`
}

// Group is one user-agent rule group. Consecutive User-agent lines before
// any directive share the same group, per robots.txt semantics.
type Group struct {
	Agents     []string `json:"agents"`
	Rules      []Rule   `json:"rules"`
	CrawlDelay *float64 `json:"crawlDelay,omitempty"`
}

// ParsedRobotsTxt holds the rule groups in source order plus top-level
// Sitemap directives.
type ParsedRobotsTxt struct {
	Groups   []Group  `json:"groups"`
	Sitemaps []string `json:"sitemaps"`
}

// Parse tokenizes robots.txt content. Blank lines and #-comments are
// skipped; unknown directives are ignored. Content with no recognizable
// directive at all fails with ErrUnparsable.
func Parse(content string) (*ParsedRobotsTxt, error) {
	parsed := &ParsedRobotsTxt{}
	var current *Group
	inAgentRun := false
	recognized := 0

	content = strings.TrimPrefix(content, "\ufeff")

	for _, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(rawLine, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// Inline comments are separated from the value by whitespace.
		if i := strings.Index(line, " #"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			if value == "" {
				continue
			}
			if current != nil && inAgentRun {
				current.Agents = append(current.Agents, value)
			} else {
				parsed.Groups = append(parsed.Groups, Group{Agents: []string{value}})
				current = &parsed.Groups[len(parsed.Groups)-1]
			}
			inAgentRun = true
			recognized++
		case "allow", "disallow":
			if current == nil {
				// Directive before any user-agent line; ignored.
				continue
			}
			current.Rules = append(current.Rules, Rule{Allow: key == "allow", Path: value})
			inAgentRun = false
			recognized++
		case "crawl-delay":
			if current == nil {
				continue
			}
			if d, err := strconv.ParseFloat(value, 64); err == nil {
				current.CrawlDelay = &d
			}
			inAgentRun = false
			recognized++
		case "sitemap":
			if value != "" {
				parsed.Sitemaps = append(parsed.Sitemaps, value)
			}
			recognized++
		}
	}

	if recognized == 0 {
		return nil, ErrUnparsable
	}
	return parsed, nil
}

// GroupFor returns the rule group applicable to agent: the first group
// naming the agent (case-insensitive), else the wildcard group, else nil.
func (p *ParsedRobotsTxt) GroupFor(agent string) *Group {
	var wildcard *Group
	for i := range p.Groups {
		for _, a := range p.Groups[i].Agents {
			if strings.EqualFold(a, agent) {
				return &p.Groups[i]
			}
			if a == "*" && wildcard == nil {
				wildcard = &p.Groups[i]
			}
		}
	}
	return wildcard
}

// IsAllowed reports whether agent may fetch path. Longest matching path
// prefix wins; an Allow/Disallow tie in prefix length resolves to Allow.
// An empty directive value never matches, so an empty Disallow allows
// everything. With no applicable group or rule the agent is allowed.
func (p *ParsedRobotsTxt) IsAllowed(agent, path string) bool {
	group := p.GroupFor(agent)
	if group == nil {
		return true
	}
	if path == "" {
		path = "/"
	}

	bestLen := -1
	allowed := true
	for _, r := range group.Rules {
		if r.Path == "" || !strings.HasPrefix(path, r.Path) {
			continue
		}
		switch {
		case len(r.Path) > bestLen:
			bestLen = len(r.Path)
			allowed = r.Allow
		case len(r.Path) == bestLen && r.Allow:
			allowed = true
		}
	}
	return allowed
}

// PermissionSummary renders the human-readable matrix cell for agent:
// "Allow" when nothing is disallowed, "Disallow: all" for a total block,
// otherwise the disallowed path prefixes.
func (p *ParsedRobotsTxt) PermissionSummary(agent string) string {
	group := p.GroupFor(agent)
	if group == nil {
		return "Allow"
	}

	var disallowed []string
	for _, r := range group.Rules {
		if r.Allow || r.Path == "" {
			continue
		}
		if r.Path == "/" {
			return "Disallow: all"
		}
		disallowed = append(disallowed, r.Path)
	}
	if len(disallowed) == 0 {
		return "Allow"
	}
	return "Disallow: " + strings.Join(disallowed, ", ")
}

// BlockedEverywhere reports whether agent is wholesale blocked ("/" is
// disallowed with no overriding Allow).
func (p *ParsedRobotsTxt) BlockedEverywhere(agent string) bool {
	return !p.IsAllowed(agent, "/")
}
