// Package workbook models an inspection workbook: one sheet per inspection
// item, a header row, and one data row per production batch.
package workbook

import (
	"strings"
)

// Options controls how sheets are classified and cells are read.
type Options struct {
	// CavityMarker tags a header as a cavity column when contained in it.
	CavityMarker string
	// ExcludedNames are sheet names never listed as inspection items.
	ExcludedNames []string
	// ExcludedSubstrings exclude any sheet whose name contains one of them.
	ExcludedSubstrings []string
	// BatchNameSeparator, if set, truncates batch names at its first occurrence.
	BatchNameSeparator string
	// Numeric locale. Zero means auto-detect per cell.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// DefaultDecimals is the display precision used when none is found.
	DefaultDecimals int
}

// DefaultOptions returns the conventions of the inspection workbooks in use.
func DefaultOptions() Options {
	return Options{
		CavityMarker:       "穴",
		ExcludedNames:      []string{"摘要", "Summary", "統計", "Statistics", "說明", "Notes", "零件名稱", "PartNumber"},
		ExcludedSubstrings: []string{"分析", "配置", "analysis", "configuration"},
		DefaultDecimals:    4,
	}
}

// Sheet is a read-only grid of cell text. Row 0 is the header.
type Sheet struct {
	Name string
	Rows [][]string
}

func (s *Sheet) cell(r, c int) string {
	if r < 0 || r >= len(s.Rows) || c < 0 || c >= len(s.Rows[r]) {
		return ""
	}
	return strings.TrimSpace(s.Rows[r][c])
}

func (s *Sheet) header() []string {
	if len(s.Rows) == 0 {
		return nil
	}
	return s.Rows[0]
}

// Workbook owns its sheets. It is immutable once built; a reload
// produces a new Workbook.
type Workbook struct {
	Source string
	names  []string
	sheets map[string]*Sheet
	opt    Options
}

// New builds a Workbook, deep-copying the given sheets in order.
// A later sheet with a duplicate name is ignored.
func New(source string, sheets []Sheet, opt Options) *Workbook {
	w := &Workbook{
		Source: source,
		sheets: make(map[string]*Sheet, len(sheets)),
		opt:    opt,
	}
	for _, s := range sheets {
		if _, dup := w.sheets[s.Name]; dup {
			continue
		}
		rows := make([][]string, len(s.Rows))
		for i, r := range s.Rows {
			rows[i] = append([]string(nil), r...)
		}
		w.names = append(w.names, s.Name)
		w.sheets[s.Name] = &Sheet{Name: s.Name, Rows: rows}
	}
	return w
}

// Options returns the options the workbook was built with.
func (w *Workbook) Options() Options { return w.opt }

// SheetNames returns every sheet name in file order.
func (w *Workbook) SheetNames() []string {
	return append([]string(nil), w.names...)
}

// Sheet returns the named sheet or ErrSheetNotFound.
func (w *Workbook) Sheet(name string) (*Sheet, error) {
	s, ok := w.sheets[name]
	if !ok {
		return nil, sheetErr(name, "", ErrSheetNotFound)
	}
	return s, nil
}

// InspectionItems lists sheet names that hold measurement data, skipping
// summary/meta sheets and sheets without a header.
func (w *Workbook) InspectionItems() []string {
	items := []string{}
	for _, name := range w.names {
		if w.excluded(name) {
			continue
		}
		if !hasHeader(w.sheets[name]) {
			continue
		}
		items = append(items, name)
	}
	return items
}

func (w *Workbook) excluded(name string) bool {
	trimmed := strings.TrimSpace(name)
	for _, ex := range w.opt.ExcludedNames {
		if strings.EqualFold(trimmed, ex) {
			return true
		}
	}
	lower := strings.ToLower(trimmed)
	for _, sub := range w.opt.ExcludedSubstrings {
		if sub != "" && strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func hasHeader(s *Sheet) bool {
	for _, h := range s.header() {
		if strings.TrimSpace(h) != "" {
			return true
		}
	}
	return false
}

// Batch is one data row. Index is the row position in the sheet (1-based,
// the header being row 0).
type Batch struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// Batches lists data rows whose first column is non-empty, in row order.
// A sheet with fewer than two rows has no batches.
func (w *Workbook) Batches(name string) ([]Batch, error) {
	s, err := w.Sheet(name)
	if err != nil {
		return nil, err
	}
	out := []Batch{}
	for r := 1; r < len(s.Rows); r++ {
		label := s.cell(r, 0)
		if label == "" {
			continue
		}
		out = append(out, Batch{Index: r, Name: w.batchName(label)})
	}
	return out, nil
}

func (w *Workbook) batchName(label string) string {
	if sep := w.opt.BatchNameSeparator; sep != "" {
		if i := strings.Index(label, sep); i > 0 {
			return strings.TrimSpace(label[:i])
		}
	}
	return label
}

// Cavity is a cavity column in a sheet.
type Cavity struct {
	Name   string
	Column int
}

// CavityInfo summarizes the cavity columns of a sheet.
type CavityInfo struct {
	TotalCavities int      `json:"total_cavities"`
	CavityNames   []string `json:"cavity_names"`
}

// Cavities returns the cavity columns in header order.
func (w *Workbook) Cavities(name string) ([]Cavity, error) {
	s, err := w.Sheet(name)
	if err != nil {
		return nil, err
	}
	out := []Cavity{}
	for c, h := range s.header() {
		h = strings.TrimSpace(h)
		if h != "" && w.opt.CavityMarker != "" && strings.Contains(h, w.opt.CavityMarker) {
			out = append(out, Cavity{Name: h, Column: c})
		}
	}
	return out, nil
}

// CavityInfo reports the count and names of the cavity columns.
func (w *Workbook) CavityInfo(name string) (CavityInfo, error) {
	cav, err := w.Cavities(name)
	if err != nil {
		return CavityInfo{}, err
	}
	info := CavityInfo{TotalCavities: len(cav), CavityNames: make([]string, len(cav))}
	for i, c := range cav {
		info.CavityNames[i] = c.Name
	}
	return info, nil
}

// findCavity resolves a cavity name against the header. An exact header
// match wins; otherwise the first cavity header containing the name.
func (w *Workbook) findCavity(s *Sheet, cavity string) (int, bool) {
	want := strings.TrimSpace(cavity)
	if want == "" {
		return 0, false
	}
	header := s.header()
	for c, h := range header {
		if strings.TrimSpace(h) == want {
			return c, true
		}
	}
	marker := w.opt.CavityMarker
	for c, h := range header {
		if marker != "" && strings.Contains(h, want) && strings.Contains(h, marker) {
			return c, true
		}
	}
	return 0, false
}
