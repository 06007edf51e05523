package model

// DiffType classifies one difference between two scans.
type DiffType string

const (
	DiffRobotsTxt     DiffType = "robots_txt"
	DiffLlmsTxt       DiffType = "llms_txt"
	DiffFileAdded     DiffType = "file_added"
	DiffFileRemoved   DiffType = "file_removed"
	DiffBotPermission DiffType = "bot_permission"
	DiffScoreChange   DiffType = "score_change"
)

// DiffTypeOrder fixes the group order of emitted differences so repeated
// comparisons of the same pair of scans yield identical output.
var DiffTypeOrder = []DiffType{
	DiffRobotsTxt,
	DiffLlmsTxt,
	DiffFileAdded,
	DiffFileRemoved,
	DiffBotPermission,
	DiffScoreChange,
}

// Severity is a human-level severity bucket.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// NormalizeSeverity maps accepted aliases (critical/important/suggestion)
// onto the canonical buckets. Unknown input falls back to low.
func NormalizeSeverity(s string) Severity {
	switch s {
	case "high", "critical":
		return SeverityHigh
	case "medium", "important":
		return SeverityMedium
	case "low", "suggestion":
		return SeverityLow
	}
	return SeverityLow
}

// ScanDifference is one typed change detected between two scans. It is
// derived and ephemeral; old/new values are nil when a side had nothing.
type ScanDifference struct {
	Type        DiffType `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	OldValue    *string  `json:"oldValue"`
	NewValue    *string  `json:"newValue"`
}

// BotPermissionRow is one row of the side-by-side bot permission table.
// A bot missing from one side is rendered as "-".
type BotPermissionRow struct {
	Bot    string `json:"bot"`
	ValA   string `json:"valA"`
	ValB   string `json:"valB"`
	Status string `json:"status"` // "same" | "different"
}

// DiffStats aggregates a difference list. Pure derivation, no side effects.
type DiffStats struct {
	Total  int              `json:"total"`
	High   int              `json:"high"`
	Medium int              `json:"medium"`
	Low    int              `json:"low"`
	ByType map[DiffType]int `json:"byType"`
}

// OptimizationRecommendation is one rule-based suggestion produced from a
// single scan's final state.
type OptimizationRecommendation struct {
	Category       string   `json:"category"`
	Severity       Severity `json:"severity"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
	Impact         string   `json:"impact"`
}
