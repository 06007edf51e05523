// Package compare detects and classifies changes between two scan
// snapshots. Output order is fully deterministic: differences are grouped
// by type in a declared order, ties broken by file or bot name, so
// repeated comparisons of the same pair always yield identical output.
package compare

import (
	"fmt"
	"sort"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/gadsdencode/roboscan/internal/model"
)

// Config holds the comparator's policy thresholds. Values are tunable but
// must stay monotonic in badness.
type Config struct {
	// HighScoreDrop is the score loss at which a score_change difference
	// becomes high severity.
	HighScoreDrop int `yaml:"high_score_drop"`
}

func DefaultConfig() Config {
	return Config{HighScoreDrop: 15}
}

// Compare produces the ordered difference list between two scans.
func Compare(oldScan, newScan *model.Scan, cfg Config) []model.ScanDifference {
	if cfg.HighScoreDrop <= 0 {
		cfg.HighScoreDrop = DefaultConfig().HighScoreDrop
	}

	grouped := map[model.DiffType][]model.ScanDifference{}
	add := func(d model.ScanDifference) {
		grouped[d.Type] = append(grouped[d.Type], d)
	}

	// Content changes for the two governance files, byte equality.
	compareContent(oldScan, newScan, model.FileRobotsTxt, model.DiffRobotsTxt, add)
	compareContent(oldScan, newScan, model.FileLlmsTxt, model.DiffLlmsTxt, add)

	// Presence changes across all tracked files, in canonical file order.
	for _, file := range model.TechFiles {
		oldFound, oldContent := oldScan.File(file)
		newFound, newContent := newScan.File(file)
		switch {
		case oldFound && !newFound:
			add(model.ScanDifference{
				Type:        model.DiffFileRemoved,
				Severity:    model.SeverityHigh,
				Description: fmt.Sprintf("%s is no longer present", file.Label()),
				OldValue:    oldContent,
			})
		case !oldFound && newFound:
			add(model.ScanDifference{
				Type:        model.DiffFileAdded,
				Severity:    model.SeverityLow,
				Description: fmt.Sprintf("%s was added", file.Label()),
				NewValue:    newContent,
			})
		}
	}

	// Per-bot permission changes over the union of both matrices.
	for _, bot := range unionBots(oldScan, newScan) {
		oldPerm := permOrDash(oldScan, bot)
		newPerm := permOrDash(newScan, bot)
		if oldPerm == newPerm {
			continue
		}
		add(model.ScanDifference{
			Type:        model.DiffBotPermission,
			Severity:    botChangeSeverity(oldPerm, newPerm),
			Description: fmt.Sprintf("%s permission changed from %q to %q", bot, oldPerm, newPerm),
			OldValue:    strptr(oldPerm),
			NewValue:    strptr(newPerm),
		})
	}

	// Overall score movement, severity scaled by the magnitude of the drop.
	if delta := newScan.Score - oldScan.Score; delta != 0 {
		severity := model.SeverityLow
		if delta < 0 {
			severity = model.SeverityMedium
			if -delta >= cfg.HighScoreDrop {
				severity = model.SeverityHigh
			}
		}
		add(model.ScanDifference{
			Type:        model.DiffScoreChange,
			Severity:    severity,
			Description: fmt.Sprintf("score changed from %d to %d (%+d)", oldScan.Score, newScan.Score, delta),
			OldValue:    strptr(fmt.Sprintf("%d", oldScan.Score)),
			NewValue:    strptr(fmt.Sprintf("%d", newScan.Score)),
		})
	}

	var out []model.ScanDifference
	for _, t := range model.DiffTypeOrder {
		out = append(out, grouped[t]...)
	}
	return out
}

// compareContent emits one typed difference when both sides carry the file
// and the bytes differ. Presence changes are handled separately.
func compareContent(oldScan, newScan *model.Scan, file model.TechFile, diffType model.DiffType, add func(model.ScanDifference)) {
	oldFound, oldContent := oldScan.File(file)
	newFound, newContent := newScan.File(file)
	if !oldFound || !newFound || oldContent == nil || newContent == nil {
		return
	}
	if *oldContent == *newContent {
		return
	}
	add(model.ScanDifference{
		Type:        diffType,
		Severity:    model.SeverityMedium,
		Description: summarizeContentChange(file.Label(), *oldContent, *newContent),
		OldValue:    oldContent,
		NewValue:    newContent,
	})
}

// summarizeContentChange renders a compact human summary of a text change.
func summarizeContentChange(label, oldContent, newContent string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldContent, newContent, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	added, removed, edits := 0, 0, 0
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += len(d.Text)
			edits++
		case diffmatchpatch.DiffDelete:
			removed += len(d.Text)
			edits++
		}
	}
	return fmt.Sprintf("%s content changed (+%d/-%d chars across %d edits)", label, added, removed, edits)
}

// botChangeSeverity ranks a permission transition. Monotonic in badness:
// gaining a total block from full allowance is high, any other tightening
// is medium, loosening is low.
func botChangeSeverity(oldPerm, newPerm string) model.Severity {
	oldBad := permBadness(oldPerm)
	newBad := permBadness(newPerm)
	switch {
	case newBad > oldBad:
		if oldBad == 0 && newBad == 2 {
			return model.SeverityHigh
		}
		return model.SeverityMedium
	case newBad < oldBad:
		return model.SeverityLow
	default:
		// Same rank, different paths (e.g. which prefixes are blocked).
		return model.SeverityMedium
	}
}

// permBadness: 0 = unrestricted (or bot absent), 1 = partial block,
// 2 = total block.
func permBadness(perm string) int {
	switch perm {
	case "Allow", "-":
		return 0
	case "Disallow: all":
		return 2
	default:
		return 1
	}
}

func unionBots(a, b *model.Scan) []string {
	seen := map[string]struct{}{}
	for bot := range a.BotPermissions {
		seen[bot] = struct{}{}
	}
	for bot := range b.BotPermissions {
		seen[bot] = struct{}{}
	}
	bots := make([]string, 0, len(seen))
	for bot := range seen {
		bots = append(bots, bot)
	}
	sort.Strings(bots)
	return bots
}

func permOrDash(s *model.Scan, bot string) string {
	if perm, ok := s.BotPermissions[bot]; ok {
		return perm
	}
	return "-"
}

func strptr(s string) *string { return &s }
