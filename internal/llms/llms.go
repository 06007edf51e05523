// Package llms parses llms.txt, the markdown-like manifest sites publish
// to describe themselves to AI agents. Parsing is deliberately lenient:
// a missing title or summary never fails, and lines outside any section
// are collected into an "other" bucket.
package llms

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnparsable is returned for content that is clearly not llms.txt,
// e.g. an HTML page served at the path.
var ErrUnparsable = errors.New("llms: content does not look like llms.txt")

// Section is one "## Name" block and the lines it owns.
type Section struct {
	Name  string   `json:"name"`
	Lines []string `json:"lines"`
}

// ParsedLLMsTxt is the structured form of an llms.txt file.
type ParsedLLMsTxt struct {
	// Title from the top-level "# Title" line, empty when absent.
	Title string `json:"title"`

	// Summary from the optional "> ..." blockquote under the title.
	Summary string `json:"summary"`

	// Sections in source order.
	Sections []Section `json:"sections"`

	// Other collects non-blank lines that precede any section header.
	Other []string `json:"other"`
}

// Parse tokenizes llms.txt content.
func Parse(content string) (*ParsedLLMsTxt, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrUnparsable
	}
	lower := strings.ToLower(trimmed)
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype") {
		return nil, ErrUnparsable
	}

	parsed := &ParsedLLMsTxt{}
	var current *Section

	for _, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(rawLine, "\r"))
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "## "):
			parsed.Sections = append(parsed.Sections, Section{Name: strings.TrimSpace(line[3:])})
			current = &parsed.Sections[len(parsed.Sections)-1]
		case strings.HasPrefix(line, "# "):
			if parsed.Title == "" {
				parsed.Title = strings.TrimSpace(line[2:])
				continue
			}
			// A second top-level header is kept as content.
			fallthrough
		default:
			if strings.HasPrefix(line, "> ") && parsed.Summary == "" && current == nil {
				parsed.Summary = strings.TrimSpace(line[2:])
				continue
			}
			if current != nil {
				current.Lines = append(current.Lines, line)
			} else {
				parsed.Other = append(parsed.Other, line)
			}
		}
	}

	return parsed, nil
}

// Section returns the named section, matched case-insensitively.
func (p *ParsedLLMsTxt) Section(name string) *Section {
	for i := range p.Sections {
		if strings.EqualFold(p.Sections[i].Name, name) {
			return &p.Sections[i]
		}
	}
	return nil
}

// SummarizeImport produces the one-line description shown in the builder
// confirmation dialog before an imported llms.txt overwrites the working
// copy.
func SummarizeImport(p *ParsedLLMsTxt) string {
	if p == nil {
		return "Empty llms.txt"
	}

	var parts []string
	if p.Title != "" {
		parts = append(parts, fmt.Sprintf("%q", p.Title))
	}
	if len(p.Sections) > 0 {
		names := make([]string, 0, len(p.Sections))
		for _, s := range p.Sections {
			names = append(names, s.Name)
		}
		parts = append(parts, fmt.Sprintf("%d sections (%s)", len(p.Sections), strings.Join(names, ", ")))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("llms.txt with %d unstructured lines", len(p.Other))
	}
	return strings.Join(parts, ", ")
}
