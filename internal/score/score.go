// Package score maps a scan snapshot to a 0..100 configuration score.
// Calculate is pure: the same persisted Scan always yields the same score,
// so historical scores can be re-derived at any time.
package score

import (
	"fmt"

	"github.com/gadsdencode/roboscan/internal/bots"
	"github.com/gadsdencode/roboscan/internal/model"
)

// Config holds the additive weights. The exact numbers are policy, not
// contract; only monotonicity matters (more files found and fewer errors
// never lower the score).
type Config struct {
	// Baseline is awarded unconditionally so an error-free scan of a site
	// with no optional files still scores above zero.
	Baseline int `yaml:"baseline"`

	// RobotsTxt / LlmsTxt are the primary governance files.
	RobotsTxt int `yaml:"robots_txt"`
	LlmsTxt   int `yaml:"llms_txt"`

	// SecondaryFile is awarded per found secondary file (the six files
	// other than robots.txt and llms.txt).
	SecondaryFile int `yaml:"secondary_file"`

	// NoErrors is awarded when the scan recorded no errors.
	NoErrors int `yaml:"no_errors"`

	// AITotalBlockPenalty is subtracted when robots.txt wholesale-blocks
	// every AI crawler in the roster — often an unintended total block
	// rather than a deliberate policy.
	AITotalBlockPenalty int `yaml:"ai_total_block_penalty"`
}

// DefaultConfig sums to exactly 100 for a fully configured, error-free
// site: 10 + 25 + 20 + 6*5 + 15.
func DefaultConfig() Config {
	return Config{
		Baseline:            10,
		RobotsTxt:           25,
		LlmsTxt:             20,
		SecondaryFile:       5,
		NoErrors:            15,
		AITotalBlockPenalty: 15,
	}
}

// Factor is one contributing line item of a score, for presentation.
type Factor struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Detail string `json:"detail,omitempty"`
}

// Calculate returns the clamped additive score for scan.
func Calculate(scan *model.Scan, cfg Config) int {
	total := 0
	for _, f := range Factors(scan, cfg) {
		total += f.Points
	}
	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return total
}

// Factors returns the individual contributions behind Calculate, in a
// stable order.
func Factors(scan *model.Scan, cfg Config) []Factor {
	factors := []Factor{{Name: "baseline", Points: cfg.Baseline}}

	if scan.RobotsTxtFound {
		factors = append(factors, Factor{Name: "robots_txt_present", Points: cfg.RobotsTxt, Detail: "robots.txt found"})
	}
	if scan.LlmsTxtFound {
		factors = append(factors, Factor{Name: "llms_txt_present", Points: cfg.LlmsTxt, Detail: "llms.txt found"})
	}

	for _, f := range model.TechFiles {
		if f == model.FileRobotsTxt || f == model.FileLlmsTxt {
			continue
		}
		if found, _ := scan.File(f); found {
			factors = append(factors, Factor{
				Name:   string(f) + "_present",
				Points: cfg.SecondaryFile,
				Detail: f.Label() + " found",
			})
		}
	}

	if len(scan.Errors) == 0 {
		factors = append(factors, Factor{Name: "no_errors", Points: cfg.NoErrors})
	}

	if aiWholesaleBlocked(scan) {
		factors = append(factors, Factor{
			Name:   "ai_total_block",
			Points: -cfg.AITotalBlockPenalty,
			Detail: fmt.Sprintf("all %d AI crawlers are fully blocked by robots.txt", len(bots.AINames())),
		})
	}

	return factors
}

// aiWholesaleBlocked is true when robots.txt exists and every AI roster
// agent's permission summary reports a total block.
func aiWholesaleBlocked(scan *model.Scan) bool {
	if !scan.RobotsTxtFound || len(scan.BotPermissions) == 0 {
		return false
	}
	names := bots.AINames()
	for _, name := range names {
		perm, ok := scan.BotPermissions[name]
		if !ok || perm != "Disallow: all" {
			return false
		}
	}
	return len(names) > 0
}
