// Package spc computes control limits, capability indices and rule
// violations for inspection series.
package spc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/qip-spc-cli/internal/nelson"
	"github.com/KaramelBytes/qip-spc-cli/internal/stats"
	"github.com/KaramelBytes/qip-spc-cli/internal/workbook"
)

// Mode selects the analysis view.
type Mode string

const (
	ModeBatch  Mode = "batch"
	ModeCavity Mode = "cavity"
	ModeGroup  Mode = "group"
)

// ParseMode accepts batch, cavity or group, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeBatch, ModeCavity, ModeGroup:
		return m, nil
	default:
		return "", fmt.Errorf("invalid mode %q (use batch|cavity|group)", s)
	}
}

// I-MR chart factors.
const (
	limitFactor = 2.66  // 3/d2 for n=2
	mrUCLFactor = 3.267 // D4 for n=2
)

// Options tunes the engine.
type Options struct {
	HistogramBins    int
	OutlierThreshold float64
	DefaultDecimals  int
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{HistogramBins: 15, OutlierThreshold: stats.OutlierThreshold, DefaultDecimals: 4}
}

// Request describes one analysis. Cavity applies to batch mode only.
type Request struct {
	Mode   Mode
	Item   string
	Cavity workbook.CavitySelector
	Filter workbook.Filter
}

// Engine runs analyses. It keeps no state between calls.
type Engine struct {
	opt Options
}

// NewEngine returns an Engine; non-positive options fall back to defaults.
func NewEngine(opt Options) *Engine {
	def := DefaultOptions()
	if opt.HistogramBins <= 0 {
		opt.HistogramBins = def.HistogramBins
	}
	if opt.OutlierThreshold <= 0 {
		opt.OutlierThreshold = def.OutlierThreshold
	}
	if opt.DefaultDecimals <= 0 {
		opt.DefaultDecimals = def.DefaultDecimals
	}
	return &Engine{opt: opt}
}

// Analyze dispatches on req.Mode.
func (e *Engine) Analyze(wb *workbook.Workbook, req Request) (*Result, error) {
	if wb == nil {
		return nil, errors.New("analyze: nil workbook")
	}
	switch req.Mode {
	case ModeBatch:
		return e.AnalyzeBatch(wb, req.Item, req.Cavity, req.Filter)
	case ModeCavity:
		return e.AnalyzeCavities(wb, req.Item, req.Filter)
	case ModeGroup:
		return e.AnalyzeGroups(wb, req.Item, req.Filter)
	default:
		return nil, fmt.Errorf("analyze: invalid mode %q", req.Mode)
	}
}

func (e *Engine) newResult(wb *workbook.Workbook, mode Mode, item string, f workbook.Filter) (*Result, error) {
	sp, err := wb.Specs(item)
	if err != nil {
		return nil, err
	}
	return &Result{
		Mode:       mode,
		Item:       item,
		Range:      f.Range,
		Excluded:   append([]int(nil), f.Excluded...),
		Specs:      sp,
		Violations: []string{},
	}, nil
}

func (e *Engine) decimals(r *Result, dataPrecision int) {
	switch {
	case r.Specs.Decimals > 0:
	case dataPrecision > 0:
		r.Specs.Decimals = dataPrecision
	default:
		r.Specs.Decimals = e.opt.DefaultDecimals
	}
}

// AnalyzeBatch builds an I-MR chart over one cavity or the cavity average.
// For the average, an X-bar/R chart over the same batches is added.
func (e *Engine) AnalyzeBatch(wb *workbook.Workbook, item string, sel workbook.CavitySelector, f workbook.Filter) (*Result, error) {
	res, err := e.newResult(wb, ModeBatch, item, f)
	if err != nil {
		return nil, err
	}
	series, err := wb.BuildSeries(item, sel, f)
	if err != nil {
		return nil, err
	}
	e.decimals(res, series.Precision)

	values := series.Values
	mean := stats.Mean(values)
	mr := stats.MovingRange(values)
	mrMean := stats.Mean(mr)
	within := mrMean / stats.D2
	overall := stats.SampleStdDev(values)
	lo, hi := stats.MinMax(values)

	res.Stats = &Stats{
		Mean: mean, StdWithin: within, StdOverall: overall,
		Max: hi, Min: lo, Range: hi - lo, Count: len(values), MRMean: mrMean,
	}
	res.ControlLimits = &ControlLimits{
		UCL: mean + limitFactor*within, CL: mean, LCL: mean - limitFactor*within,
		UCLMR: mrUCLFactor * mrMean, CLMR: mrMean, LCLMR: 0,
	}
	var notes []string
	res.Capability, notes = ComputeCapability(mean, within, overall, res.Specs)
	res.Notes = append(res.Notes, notes...)

	res.Data = &Data{
		Name:     series.Name,
		Labels:   series.Labels,
		Values:   values,
		Indices:  series.Indices,
		MRLabels: mrLabels(series.Labels),
		MRValues: mr,
	}
	res.ViolationsDetail = nelson.Detect(values, res.ControlLimits.Individuals())
	res.Violations = nelson.Messages(res.ViolationsDetail)

	h := stats.NewHistogram(values, e.opt.HistogramBins)
	res.Distribution = &Distribution{
		Histogram: h,
		Curve:     stats.NormalCurve(mean, overall, len(values), h.BinWidth),
	}
	res.Outliers = stats.RobustOutliers(values, e.opt.OutlierThreshold)

	if sel.IsAverage() {
		xr, err := e.xbarR(wb, item, f, len(values))
		if err != nil {
			return nil, err
		}
		res.XbarR = xr
	}
	return res, nil
}

func mrLabels(labels []string) []string {
	if len(labels) < 2 {
		return []string{}
	}
	out := make([]string, len(labels)-1)
	for i := 1; i < len(labels); i++ {
		out[i-1] = labels[i-1] + "-" + labels[i]
	}
	return out
}

func (e *Engine) xbarR(wb *workbook.Workbook, item string, f workbook.Filter, points int) (*XbarR, error) {
	rows, _, err := wb.CavityRows(item, f)
	if err != nil {
		return nil, err
	}
	cav, err := wb.Cavities(item)
	if err != nil {
		return nil, err
	}
	if len(rows) != points {
		return nil, fmt.Errorf("x-bar/r: %d subgroups for %d points", len(rows), points)
	}
	k := stats.ConstantsFor(len(cav))
	means := make([]float64, len(rows))
	ranges := make([]float64, len(rows))
	for i, r := range rows {
		lo, hi := stats.MinMax(r.Values)
		means[i] = stats.Mean(r.Values)
		ranges[i] = hi - lo
	}
	xbb := stats.Mean(means)
	rbar := stats.Mean(ranges)
	xr := &XbarR{
		SubgroupSize: k.N,
		Constants:    k,
		XbarBar:      xbb,
		UCLXbar:      xbb + k.A2*rbar,
		LCLXbar:      xbb - k.A2*rbar,
		RBar:         rbar,
		UCLR:         k.D4 * rbar,
		LCLR:         k.D3 * rbar,
		WithinStd:    rbar / k.D2,
		Ranges:       ranges,
	}
	xr.Violations = nelson.Detect(means, nelson.Limits{CL: xbb, UCL: xr.UCLXbar, LCL: xr.LCLXbar})
	xr.RViolations = nelson.Detect(ranges, nelson.Limits{CL: rbar, UCL: xr.UCLR, LCL: xr.LCLR})
	return xr, nil
}

// AnalyzeCavities computes capability per cavity column. Cavities with
// fewer than two values are skipped; none qualifying is ErrInsufficientData.
func (e *Engine) AnalyzeCavities(wb *workbook.Workbook, item string, f workbook.Filter) (*Result, error) {
	res, err := e.newResult(wb, ModeCavity, item, f)
	if err != nil {
		return nil, err
	}
	cav, err := wb.Cavities(item)
	if err != nil {
		return nil, err
	}
	precision := 0
	res.Cavities = []CavityStat{}
	for _, c := range cav {
		s, err := wb.BuildSeries(item, workbook.Named(c.Name), f)
		if errors.Is(err, workbook.ErrInsufficientData) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if s.Precision > precision {
			precision = s.Precision
		}
		mean := stats.Mean(s.Values)
		within := stats.WithinStdDev(s.Values)
		overall := stats.SampleStdDev(s.Values)
		st := CavityStat{Cavity: c.Name, Mean: mean, StdWithin: within, StdOverall: overall, Count: s.Len()}
		if capab, _ := ComputeCapability(mean, within, overall, res.Specs); capab != nil {
			st.Cpk, st.Ppk = capab.Cpk, capab.Ppk
		}
		res.Cavities = append(res.Cavities, st)
	}
	if len(res.Cavities) == 0 {
		return nil, &workbook.SheetError{Sheet: item, Op: "analyze cavities", Err: fmt.Errorf("%w: no cavity has 2 or more values", workbook.ErrInsufficientData)}
	}
	if !res.Specs.HasLimits() {
		_, notes := ComputeCapability(0, 0, 0, res.Specs)
		res.Notes = append(res.Notes, notes...)
	}
	e.decimals(res, precision)
	return res, nil
}

// AnalyzeGroups summarizes each batch's spread across cavities. No
// control limits are computed.
func (e *Engine) AnalyzeGroups(wb *workbook.Workbook, item string, f workbook.Filter) (*Result, error) {
	res, err := e.newResult(wb, ModeGroup, item, f)
	if err != nil {
		return nil, err
	}
	rows, precision, err := wb.CavityRows(item, f)
	if err != nil {
		return nil, err
	}
	total := 0
	res.Groups = make([]GroupStat, 0, len(rows))
	for _, r := range rows {
		lo, hi := stats.MinMax(r.Values)
		res.Groups = append(res.Groups, GroupStat{
			Index: r.Batch.Index,
			Batch: r.Batch.Name,
			Min:   lo,
			Max:   hi,
			Avg:   stats.Mean(r.Values),
			Range: hi - lo,
			N:     len(r.Values),
		})
		total += len(r.Values)
	}
	if total < 2 {
		return nil, &workbook.SheetError{Sheet: item, Op: "analyze groups", Err: fmt.Errorf("%w: %d usable values", workbook.ErrInsufficientData, total)}
	}
	e.decimals(res, precision)
	return res, nil
}
