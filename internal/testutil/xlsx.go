// Package testutil builds inspection workbook fixtures for tests.
package testutil

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/KaramelBytes/qip-spc-cli/internal/workbook"
	"github.com/xuri/excelize/v2"
)

// WriteXLSX saves sheets as an .xlsx file under dir and returns its path.
// Cells that parse as numbers are written as numbers.
func WriteXLSX(t testing.TB, dir, name string, sheets []workbook.Sheet) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for r, row := range s.Rows {
			for c, v := range row {
				if v == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				var val any = v
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					val = n
				}
				if err := f.SetCellValue(s.Name, cell, val); err != nil {
					t.Fatalf("set %s: %v", cell, err)
				}
			}
		}
	}
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save xlsx: %v", err)
	}
	return path
}

// LengthSheet is a small two-cavity inspection item with specs 10 ± 1.
func LengthSheet() workbook.Sheet {
	return workbook.Sheet{
		Name: "Length",
		Rows: [][]string{
			{"Batch", "Target", "USL", "LSL", "1穴", "2穴"},
			{"B01", "10.0", "11.0", "9.0", "9.8", "10.0"},
			{"B02", "", "", "", "10.0", "10.2"},
			{"B03", "", "", "", "10.2", "10.1"},
			{"B04", "", "", "", "9.9", "9.8"},
			{"B05", "", "", "", "10.1", "10.3"},
		},
	}
}
