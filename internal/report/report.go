// Package report exports audit results as JSON and XLSX.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"weekgrid/internal/audit"
)

const (
	SheetSummary         = "Summary"
	SheetInconsistencies = "Inconsistencies"
	SheetColors          = "Colors"
)

// InconsistencyHeader is the column order of the Inconsistencies sheet.
var InconsistencyHeader = []string{
	"Property",
	"Dashboard",
	"PDF",
	"Difference",
	"Difference %",
	"Severity",
	"Impact",
	"Fix",
}

var colorHeader = []string{"Role", "Dashboard", "PDF", "Distance"}

// Row fill per severity.
var severityFill = map[audit.Severity]string{
	audit.SeverityCritical: "#F8D7DA",
	audit.SeverityMajor:    "#FFF3CD",
	audit.SeverityMinor:    "#E2E3E5",
}

// JSON encodes res with indentation.
func JSON(res audit.Result) ([]byte, error) {
	return json.MarshalIndent(res, "", "  ")
}

// XLSX builds a workbook with a summary sheet, one row per inconsistency
// and one row per color mismatch.
func XLSX(res audit.Result) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open; close explicitly on every path.

	index, err := f.NewSheet(SheetSummary)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummary(f, res); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeInconsistencies(f, res, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeColors(f, res, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, res audit.Result) error {
	rows := [][]any{
		{"Audit ID", res.ID},
		{"Spec version", res.SpecVersion},
		{"Timestamp", res.Timestamp.Format("2006-01-02 15:04:05 MST")},
		{"Score", res.Score},
		{"CRITICAL", res.Count(audit.SeverityCritical)},
		{"MAJOR", res.Count(audit.SeverityMajor)},
		{"MINOR", res.Count(audit.SeverityMinor)},
		{"Color mismatches", len(res.ColorMismatches)},
		{},
		{"Recommendations"},
	}
	for _, r := range res.Recommendations {
		rows = append(rows, []any{r})
	}
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSummary, cell, &r); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 20); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "B", "B", 40)
}

func writeInconsistencies(f *excelize.File, res audit.Result, headerStyle int) error {
	if _, err := f.NewSheet(SheetInconsistencies); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeHeader(f, SheetInconsistencies, InconsistencyHeader, headerStyle); err != nil {
		return err
	}

	styles := make(map[audit.Severity]int, len(severityFill))
	for sev, fill := range severityFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
			Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		})
		if err != nil {
			return fmt.Errorf("failed to create severity style: %w", err)
		}
		styles[sev] = id
	}

	for i, inc := range res.Inconsistencies {
		row := i + 2
		values := []any{
			string(inc.Property),
			inc.DashboardValue,
			inc.PDFValue,
			inc.Difference,
			round2(inc.PercentDifference),
			string(inc.Severity),
			inc.Impact,
			inc.Fix,
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(values), row)
		if err := f.SetSheetRow(SheetInconsistencies, first, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
		if err := f.SetCellStyle(SheetInconsistencies, first, last, styles[inc.Severity]); err != nil {
			return fmt.Errorf("failed to style row %d: %w", row, err)
		}
	}

	widths := []float64{22, 12, 12, 12, 14, 12, 60, 50}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetInconsistencies, col, col, w); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return freezeHeader(f, SheetInconsistencies)
}

func writeColors(f *excelize.File, res audit.Result, headerStyle int) error {
	if _, err := f.NewSheet(SheetColors); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeHeader(f, SheetColors, colorHeader, headerStyle); err != nil {
		return err
	}
	for i, cm := range res.ColorMismatches {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{string(cm.Role), cm.Dashboard.String(), cm.PDF.String(), cm.Distance}
		if err := f.SetSheetRow(SheetColors, cell, &values); err != nil {
			return fmt.Errorf("failed to write color row: %w", err)
		}
	}
	return freezeHeader(f, SheetColors)
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}
	return nil
}

func freezeHeader(f *excelize.File, sheet string) error {
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}

// Save writes audit.json and audit.xlsx into dir.
func Save(dir string, res audit.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	js, err := JSON(res)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "audit.json"), js, 0o644); err != nil {
		return err
	}
	xl, err := XLSX(res)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "audit.xlsx"), xl, 0o644)
}

// round2 rounds a percentage for display.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
