package workbook

import (
	"fmt"
	"strings"
)

type selectorKind int

const (
	selectorInvalid selectorKind = iota
	selectorNamed
	selectorAverage
)

// CavitySelector picks the measurement a series is built from: one named
// cavity column, or the per-batch average of all cavity columns.
// The zero value selects nothing.
type CavitySelector struct {
	kind selectorKind
	name string
}

// Named selects a single cavity column.
func Named(name string) CavitySelector {
	return CavitySelector{kind: selectorNamed, name: strings.TrimSpace(name)}
}

// AverageAll selects the mean of every cavity column present in a row.
func AverageAll() CavitySelector {
	return CavitySelector{kind: selectorAverage}
}

// IsAverage reports whether s is AverageAll.
func (s CavitySelector) IsAverage() bool { return s.kind == selectorAverage }

// Name is the requested cavity name, empty for AverageAll.
func (s CavitySelector) Name() string { return s.name }

func (s CavitySelector) valid() bool {
	return s.kind == selectorAverage || (s.kind == selectorNamed && s.name != "")
}

func (s CavitySelector) String() string {
	switch s.kind {
	case selectorAverage:
		return "Average of All Cavities"
	case selectorNamed:
		return s.name
	default:
		return "(none)"
	}
}

// BatchRange bounds batch indices inclusively. Zero on either side means
// unbounded. A reversed range is treated as its swap.
type BatchRange struct {
	Start int `json:"start,omitempty"`
	End   int `json:"end,omitempty"`
}

// Contains reports whether index lies within the range.
func (r BatchRange) Contains(index int) bool {
	lo, hi := r.Start, r.End
	if lo > 0 && hi > 0 && lo > hi {
		lo, hi = hi, lo
	}
	if lo > 0 && index < lo {
		return false
	}
	if hi > 0 && index > hi {
		return false
	}
	return true
}

func (r BatchRange) String() string {
	lo, hi := "first", "last"
	if r.Start > 0 {
		lo = fmt.Sprint(r.Start)
	}
	if r.End > 0 {
		hi = fmt.Sprint(r.End)
	}
	return lo + ".." + hi
}

// Filter selects the batches of a sheet an analysis operates on.
type Filter struct {
	Range    BatchRange
	Excluded []int
}

func (f Filter) keep(index int) bool {
	if !f.Range.Contains(index) {
		return false
	}
	for _, ex := range f.Excluded {
		if ex == index {
			return false
		}
	}
	return true
}

// Series is an ordered (label, value) sequence for one analysis request.
// Indices holds the originating batch index of each value.
type Series struct {
	Name      string    `json:"name"`
	Labels    []string  `json:"labels"`
	Values    []float64 `json:"values"`
	Indices   []int     `json:"indices"`
	Precision int       `json:"-"`
}

// Len is the number of points.
func (s Series) Len() int { return len(s.Values) }

// BatchValues are the numeric cavity readings of one batch, in column
// order. Missing and non-numeric cells are omitted.
type BatchValues struct {
	Batch  Batch
	Values []float64
}

// CavityRows returns the cavity readings of every selected batch that has
// at least one numeric value, plus the largest precision seen.
func (w *Workbook) CavityRows(name string, f Filter) ([]BatchValues, int, error) {
	s, err := w.Sheet(name)
	if err != nil {
		return nil, 0, err
	}
	cav, _ := w.Cavities(name)
	cols := make([]int, len(cav))
	for i, c := range cav {
		cols[i] = c.Column
	}
	return w.rows(s, cols, f)
}

func (w *Workbook) rows(s *Sheet, cols []int, f Filter) ([]BatchValues, int, error) {
	batches, err := w.Batches(s.Name)
	if err != nil {
		return nil, 0, err
	}
	out := []BatchValues{}
	precision := 0
	for _, b := range batches {
		if !f.keep(b.Index) {
			continue
		}
		var vals []float64
		for _, c := range cols {
			raw := s.cell(b.Index, c)
			v, ok := ParseNumeric(raw, w.opt)
			if !ok {
				continue
			}
			vals = append(vals, v)
			if p := Precision(raw, w.opt); p > precision {
				precision = p
			}
		}
		if len(vals) > 0 {
			out = append(out, BatchValues{Batch: b, Values: vals})
		}
	}
	return out, precision, nil
}

// BuildSeries extracts the series for one selector. Batches outside the
// range, excluded batches, and batches without a usable value are skipped.
// It fails with ErrInsufficientData when fewer than two values remain.
func (w *Workbook) BuildSeries(name string, sel CavitySelector, f Filter) (Series, error) {
	s, err := w.Sheet(name)
	if err != nil {
		return Series{}, err
	}
	if !sel.valid() {
		return Series{}, sheetErr(name, "build series", ErrInvalidSelector)
	}
	var cols []int
	seriesName := sel.String()
	if sel.IsAverage() {
		cav, _ := w.Cavities(name)
		if len(cav) == 0 {
			return Series{}, sheetErr(name, "build series", fmt.Errorf("%w: no cavity columns", ErrCavityNotFound))
		}
		for _, c := range cav {
			cols = append(cols, c.Column)
		}
	} else {
		col, ok := w.findCavity(s, sel.Name())
		if !ok {
			return Series{}, sheetErr(name, "build series", fmt.Errorf("%w: %q", ErrCavityNotFound, sel.Name()))
		}
		cols = []int{col}
		seriesName = strings.TrimSpace(s.header()[col])
	}
	rows, precision, err := w.rows(s, cols, f)
	if err != nil {
		return Series{}, err
	}
	out := Series{
		Name:      seriesName,
		Labels:    make([]string, 0, len(rows)),
		Values:    make([]float64, 0, len(rows)),
		Indices:   make([]int, 0, len(rows)),
		Precision: precision,
	}
	for _, r := range rows {
		var sum float64
		for _, v := range r.Values {
			sum += v
		}
		out.Labels = append(out.Labels, r.Batch.Name)
		out.Values = append(out.Values, sum/float64(len(r.Values)))
		out.Indices = append(out.Indices, r.Batch.Index)
	}
	if out.Len() < 2 {
		return out, sheetErr(name, "build series", fmt.Errorf("%w: %d usable values", ErrInsufficientData, out.Len()))
	}
	return out, nil
}
