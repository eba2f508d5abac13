package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet    = "Summary"
	detailSheet     = "Detail"
	violationsSheet = "Violations"
)

// XLSX renders the report as a workbook with a summary sheet and a
// detail sheet, plus a violations sheet when any were found.
func XLSX(r *Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: style: %w", err)
	}

	t := r.Result.Table()
	summary := [][]string{
		{"Run ID", r.RunID},
		{"Generated", r.GeneratedAt.Format(time.RFC3339)},
		{"File", r.Source},
	}
	for _, fld := range t.Summary {
		summary = append(summary, []string{fld.Key, fld.Value})
	}
	for _, in := range r.Insights {
		summary = append(summary, []string{"Insight", in.String()})
	}
	if err := writeRows(f, summarySheet, 1, summary); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 22); err != nil {
		return nil, fmt.Errorf("xlsx: col width: %w", err)
	}

	if len(t.Columns) > 0 {
		if _, err := f.NewSheet(detailSheet); err != nil {
			return nil, fmt.Errorf("xlsx: new sheet: %w", err)
		}
		if err := writeRows(f, detailSheet, 1, append([][]string{t.Columns}, t.Rows...)); err != nil {
			return nil, err
		}
		end, _ := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err := f.SetCellStyle(detailSheet, "A1", end, bold); err != nil {
			return nil, fmt.Errorf("xlsx: header style: %w", err)
		}
	}

	if vs := r.Result.ViolationsDetail; len(vs) > 0 {
		if _, err := f.NewSheet(violationsSheet); err != nil {
			return nil, fmt.Errorf("xlsx: new sheet: %w", err)
		}
		rows := [][]string{{"Rule", "Point", "Batch", "Value", "Message"}}
		for _, v := range vs {
			batch := ""
			if d := r.Result.Data; d != nil && v.Index < len(d.Labels) {
				batch = d.Labels[v.Index]
			}
			rows = append(rows, []string{
				v.Rule.String(), strconv.Itoa(v.Index + 1), batch,
				strconv.FormatFloat(v.Value, 'f', r.Result.Specs.Decimals, 64), v.Message,
			})
		}
		if err := writeRows(f, violationsSheet, 1, rows); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(violationsSheet, "A1", "E1", bold); err != nil {
			return nil, fmt.Errorf("xlsx: header style: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}

// writeRows writes rows starting at row first. Cells that parse as numbers
// are stored as numbers so they stay usable in formulas.
func writeRows(f *excelize.File, sheet string, first int, rows [][]string) error {
	for i, row := range rows {
		vals := make([]any, len(row))
		for j, c := range row {
			vals[j] = c
			if n, err := strconv.ParseFloat(c, 64); err == nil && c != "" {
				vals[j] = n
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, first+i)
		if err != nil {
			return fmt.Errorf("xlsx: cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("xlsx: write %s row %d: %w", sheet, first+i, err)
		}
	}
	return nil
}
