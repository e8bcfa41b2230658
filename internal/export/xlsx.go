// Package export renders search results as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/roblox"
	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/search"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	SheetLeaderboard = "Leaderboard"
	SheetFailures    = "Skipped"
	SheetSummary     = "Summary"
)

var leaderboardHeader = []interface{}{
	"Rank", "User ID", "Username", "Display Name", "Total Value",
	"Qualifying Items", "Top Item", "Top Item Value", "Profile",
}

// Workbook builds the workbook of result. top limits the leaderboard rows
// (0 keeps all). The caller closes the file.
func Workbook(result *search.Result, top int) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetLeaderboard); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeLeaderboard(f, result, top); err != nil {
		f.Close()
		return nil, fmt.Errorf("write leaderboard sheet: %w", err)
	}
	if err := writeFailures(f, result); err != nil {
		f.Close()
		return nil, fmt.Errorf("write skipped sheet: %w", err)
	}
	if err := writeSummary(f, result); err != nil {
		f.Close()
		return nil, fmt.Errorf("write summary sheet: %w", err)
	}

	f.SetActiveSheet(0)
	return f, nil
}

// WriteXLSX writes the workbook of result to w.
func WriteXLSX(w io.Writer, result *search.Result, top int) error {
	f, err := Workbook(result, top)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// SaveXLSX writes the workbook of result to path.
func SaveXLSX(path string, result *search.Result, top int) error {
	f, err := Workbook(result, top)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeLeaderboard(f *excelize.File, result *search.Result, top int) error {
	sheet := SheetLeaderboard
	if err := writeHeader(f, sheet, leaderboardHeader); err != nil {
		return err
	}

	for i, row := range result.Leaderboard.Top(top) {
		r := i + 2
		cell, err := excelize.CoordinatesToCellName(1, r)
		if err != nil {
			return err
		}
		profile := roblox.ProfileURL(row.UserID)
		values := []interface{}{
			row.Rank, row.UserID, row.Username, row.DisplayName, row.TotalValue,
			row.QualifyingItemCount, row.TopItemName, row.TopItemValue, profile,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}

		link, err := excelize.CoordinatesToCellName(len(values), r)
		if err != nil {
			return err
		}
		if err := f.SetCellHyperLink(sheet, link, profile, "External"); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheet, "C", "D", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "G", "G", 28); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "I", "I", 45)
}

func writeFailures(f *excelize.File, result *search.Result) error {
	if len(result.Failures) == 0 {
		return nil
	}
	if _, err := f.NewSheet(SheetFailures); err != nil {
		return err
	}
	if err := writeHeader(f, SheetFailures, []interface{}{"User ID", "Username", "Reason"}); err != nil {
		return err
	}
	for i, failure := range result.Failures {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{failure.UserID, failure.Username, failure.Reason}
		if err := f.SetSheetRow(SheetFailures, cell, &values); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetFailures, "B", "C", 30)
}

func writeSummary(f *excelize.File, result *search.Result) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Group ID", int64(result.GroupID)},
		{"Members", result.MemberCount},
		{"Items scanned", result.ItemCount},
		{"Ranked", len(result.Leaderboard)},
		{"Skipped", len(result.Failures)},
		{"Unresolved assets", result.UnresolvedAssets},
		{"Started", result.StartedAt.UTC().Format("2006-01-02 15:04:05 UTC")},
		{"Duration", result.Duration.Round(time.Millisecond).String()},
	}
	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSummary, cell, &values); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "B", 22)
}

func writeHeader(f *excelize.File, sheet string, header []interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}
