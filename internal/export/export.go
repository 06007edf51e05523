// Package export renders scan snapshots and comparisons as XLSX
// workbooks for download.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/gadsdencode/roboscan/internal/compare"
	"github.com/gadsdencode/roboscan/internal/model"
)

// ScanWorkbook builds a workbook with one sheet for file presence and one
// for the bot-permission matrix.
func ScanWorkbook(scan *model.Scan) (*excelize.File, error) {
	f := excelize.NewFile()

	const filesSheet = "Files"
	if err := f.SetSheetName("Sheet1", filesSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	rows := [][]any{{"File", "Found", "Bytes"}}
	for _, file := range model.TechFiles {
		found, content := scan.File(file)
		size := 0
		if content != nil {
			size = len(*content)
		}
		rows = append(rows, []any{file.Label(), found, size})
	}
	rows = append(rows,
		[]any{},
		[]any{"URL", scan.URL},
		[]any{"Score", scan.Score},
		[]any{"Scanned", scan.CreatedAt.Format("2006-01-02 15:04:05 UTC")},
	)
	if err := writeRows(f, filesSheet, rows); err != nil {
		return nil, err
	}

	const botsSheet = "Bot Permissions"
	if _, err := f.NewSheet(botsSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	botRows := [][]any{{"Bot", "Permission"}}
	for _, row := range compare.BotPermissionRows(scan, scan) {
		botRows = append(botRows, []any{row.Bot, row.ValA})
	}
	if err := writeRows(f, botsSheet, botRows); err != nil {
		return nil, err
	}

	return f, nil
}

// ComparisonWorkbook builds a workbook for a base/head scan comparison.
func ComparisonWorkbook(base, head *model.Scan, diffs []model.ScanDifference) (*excelize.File, error) {
	f := excelize.NewFile()

	const diffSheet = "Differences"
	if err := f.SetSheetName("Sheet1", diffSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	stats := compare.DiffStats(diffs)
	rows := [][]any{
		{"Base scan", base.ID, base.CreatedAt.Format("2006-01-02 15:04:05 UTC")},
		{"Head scan", head.ID, head.CreatedAt.Format("2006-01-02 15:04:05 UTC")},
		{"Total", stats.Total, "High", stats.High, "Medium", stats.Medium, "Low", stats.Low},
		{},
		{"Type", "Severity", "Description"},
	}
	for _, d := range diffs {
		rows = append(rows, []any{string(d.Type), string(d.Severity), d.Description})
	}
	if err := writeRows(f, diffSheet, rows); err != nil {
		return nil, err
	}

	const botsSheet = "Bot Permissions"
	if _, err := f.NewSheet(botsSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	botRows := [][]any{{"Bot", "Base", "Head", "Status"}}
	for _, row := range compare.BotPermissionRows(base, head) {
		botRows = append(botRows, []any{row.Bot, row.ValA, row.ValB, row.Status})
	}
	if err := writeRows(f, botsSheet, botRows); err != nil {
		return nil, err
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return nil
}
