package model

import "time"

// Scan is an immutable snapshot of a website's technical-file state.
// One Scan is produced per scan invocation and never mutated afterwards;
// the persistence layer assigns ID and CreatedAt when saving.
//
// Invariant: for every tracked file, Found=false implies Content=nil.
// Invariant: Score is recomputable from the other fields alone.
type Scan struct {
	// ID is an opaque identifier assigned by the history store.
	ID string `json:"id,omitempty"`

	// URL is the originally requested URL, not normalized.
	URL string `json:"url"`

	RobotsTxtFound      bool    `json:"robotsTxtFound"`
	RobotsTxtContent    *string `json:"robotsTxtContent"`
	LlmsTxtFound        bool    `json:"llmsTxtFound"`
	LlmsTxtContent      *string `json:"llmsTxtContent"`
	SitemapXMLFound     bool    `json:"sitemapXmlFound"`
	SitemapXMLContent   *string `json:"sitemapXmlContent"`
	SecurityTxtFound    bool    `json:"securityTxtFound"`
	SecurityTxtContent  *string `json:"securityTxtContent"`
	ManifestJSONFound   bool    `json:"manifestJsonFound"`
	ManifestJSONContent *string `json:"manifestJsonContent"`
	AdsTxtFound         bool    `json:"adsTxtFound"`
	AdsTxtContent       *string `json:"adsTxtContent"`
	HumansTxtFound      bool    `json:"humansTxtFound"`
	HumansTxtContent    *string `json:"humansTxtContent"`
	AiTxtFound          bool    `json:"aiTxtFound"`
	AiTxtContent        *string `json:"aiTxtContent"`

	// BotPermissions maps crawler name to a human-readable permission
	// summary derived from robots.txt (e.g. "Allow", "Disallow: /admin").
	BotPermissions map[string]string `json:"botPermissions"`

	// Errors and Warnings are free-form diagnostics in the order they were
	// produced during fetch/parse.
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`

	// Score is the 0..100 configuration score.
	Score int `json:"score"`

	CreatedAt time.Time `json:"createdAt"`
}

// File returns the found flag and content for a tracked file.
func (s *Scan) File(f TechFile) (bool, *string) {
	switch f {
	case FileRobotsTxt:
		return s.RobotsTxtFound, s.RobotsTxtContent
	case FileLlmsTxt:
		return s.LlmsTxtFound, s.LlmsTxtContent
	case FileSitemapXML:
		return s.SitemapXMLFound, s.SitemapXMLContent
	case FileSecurityTxt:
		return s.SecurityTxtFound, s.SecurityTxtContent
	case FileManifestJSON:
		return s.ManifestJSONFound, s.ManifestJSONContent
	case FileAdsTxt:
		return s.AdsTxtFound, s.AdsTxtContent
	case FileHumansTxt:
		return s.HumansTxtFound, s.HumansTxtContent
	case FileAiTxt:
		return s.AiTxtFound, s.AiTxtContent
	}
	return false, nil
}

// SetFile stores the fetch outcome for a tracked file. A not-found file
// always drops its content so the Found=false => Content=nil invariant
// holds regardless of caller behavior.
func (s *Scan) SetFile(f TechFile, found bool, content *string) {
	if !found {
		content = nil
	}
	switch f {
	case FileRobotsTxt:
		s.RobotsTxtFound, s.RobotsTxtContent = found, content
	case FileLlmsTxt:
		s.LlmsTxtFound, s.LlmsTxtContent = found, content
	case FileSitemapXML:
		s.SitemapXMLFound, s.SitemapXMLContent = found, content
	case FileSecurityTxt:
		s.SecurityTxtFound, s.SecurityTxtContent = found, content
	case FileManifestJSON:
		s.ManifestJSONFound, s.ManifestJSONContent = found, content
	case FileAdsTxt:
		s.AdsTxtFound, s.AdsTxtContent = found, content
	case FileHumansTxt:
		s.HumansTxtFound, s.HumansTxtContent = found, content
	case FileAiTxt:
		s.AiTxtFound, s.AiTxtContent = found, content
	}
}

// FoundCount returns how many of the tracked files were found.
func (s *Scan) FoundCount() int {
	n := 0
	for _, f := range TechFiles {
		if found, _ := s.File(f); found {
			n++
		}
	}
	return n
}
