package parser

import (
	"strings"

	"github.com/KaramelBytes/qip-spc-cli/internal/workbook"
	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

// Load reads every sheet as displayed text, so the precision of spec and
// measurement cells follows their number format.
func (xlsxLoader) Load(path string, opt workbook.Options) (*workbook.Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, malformed("open xlsx", path, err)
	}
	defer f.Close()

	var sheets []workbook.Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, malformed("read sheet "+name+" in", path, err)
		}
		sheets = append(sheets, workbook.Sheet{Name: name, Rows: rows})
	}
	return workbook.New(path, sheets, opt), nil
}
