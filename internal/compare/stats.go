package compare

import (
	"sort"

	"github.com/gadsdencode/roboscan/internal/model"
)

// DiffStats aggregates a difference list. Pure, no side effects.
func DiffStats(diffs []model.ScanDifference) model.DiffStats {
	stats := model.DiffStats{ByType: map[model.DiffType]int{}}
	for _, d := range diffs {
		stats.Total++
		switch model.NormalizeSeverity(string(d.Severity)) {
		case model.SeverityHigh:
			stats.High++
		case model.SeverityMedium:
			stats.Medium++
		case model.SeverityLow:
			stats.Low++
		}
		stats.ByType[d.Type]++
	}
	return stats
}

// BotPermissionRows builds the side-by-side permission table for two
// scans. Rows cover the union of both matrices, sorted by bot name; a bot
// absent from one side shows "-".
func BotPermissionRows(a, b *model.Scan) []model.BotPermissionRow {
	bots := unionBots(a, b)
	sort.Strings(bots)

	rows := make([]model.BotPermissionRow, 0, len(bots))
	for _, bot := range bots {
		valA := permOrDash(a, bot)
		valB := permOrDash(b, bot)
		status := "same"
		if valA != valB {
			status = "different"
		}
		rows = append(rows, model.BotPermissionRow{Bot: bot, ValA: valA, ValB: valB, Status: status})
	}
	return rows
}
