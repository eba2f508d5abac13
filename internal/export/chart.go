package export

import (
	"bytes"
	"fmt"
	"math"

	"github.com/KaramelBytes/qip-spc-cli/internal/spc"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 1200
	chartHeight = 600
)

func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{StrokeColor: col, StrokeWidth: 1.5, DotWidth: 3, DotColor: col}
}

func limitStyle(col drawing.Color, dashed bool) chart.Style {
	st := chart.Style{StrokeColor: col, StrokeWidth: 1}
	if dashed {
		st.StrokeDashArray = []float64{6, 4}
	}
	return st
}

// hline spans x from 1 to n at y.
func hline(name string, y float64, n int, st chart.Style) chart.ContinuousSeries {
	return chart.ContinuousSeries{Name: name, XValues: []float64{1, float64(n)}, YValues: []float64{y, y}, Style: st}
}

// Chart renders the I chart (batch mode) or the per-batch spread (group
// mode) as a PNG. Cavity mode has no series to plot.
func Chart(r *Report) ([]byte, error) {
	res := r.Result
	var ch chart.Chart
	switch res.Mode {
	case spc.ModeBatch:
		if res.Data == nil || len(res.Data.Values) == 0 {
			return nil, fmt.Errorf("chart: no data points")
		}
		ch = individualsChart(res)
	case spc.ModeGroup:
		if len(res.Groups) == 0 {
			return nil, fmt.Errorf("chart: no groups")
		}
		ch = groupChart(res)
	default:
		return nil, fmt.Errorf("chart: %s mode has no chart", res.Mode)
	}
	ch.Width, ch.Height = chartWidth, chartHeight
	ch.Background = chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart: %w", err)
	}
	return buf.Bytes(), nil
}

func individualsChart(res *spc.Result) chart.Chart {
	vals := res.Data.Values
	n := len(vals)
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	series := []chart.Series{
		chart.ContinuousSeries{Name: res.Data.Name, XValues: xs, YValues: vals, Style: pointStyle(chart.ColorBlue)},
	}
	lo, hi := minMax(vals)
	if cl := res.ControlLimits; cl != nil {
		series = append(series,
			hline("UCL", cl.UCL, n, limitStyle(chart.ColorRed, true)),
			hline("CL", cl.CL, n, limitStyle(chart.ColorGreen, false)),
			hline("LCL", cl.LCL, n, limitStyle(chart.ColorRed, true)),
		)
		lo, hi = math.Min(lo, cl.LCL), math.Max(hi, cl.UCL)
	}
	if u := res.Specs.USL; u != nil {
		series = append(series, hline("USL", *u, n, limitStyle(chart.ColorOrange, false)))
		hi = math.Max(hi, *u)
	}
	if l := res.Specs.LSL; l != nil {
		series = append(series, hline("LSL", *l, n, limitStyle(chart.ColorOrange, false)))
		lo = math.Min(lo, *l)
	}
	return chart.Chart{
		Title:  fmt.Sprintf("%s: I chart (%s)", res.Item, res.Data.Name),
		XAxis:  chart.XAxis{Name: "Point", Range: xRange(n)},
		YAxis:  chart.YAxis{Name: res.Item, Range: yRange(lo, hi)},
		Series: series,
	}
}

func groupChart(res *spc.Result) chart.Chart {
	n := len(res.Groups)
	xs := make([]float64, n)
	mins := make([]float64, n)
	avgs := make([]float64, n)
	maxs := make([]float64, n)
	for i, g := range res.Groups {
		xs[i] = float64(i + 1)
		mins[i], avgs[i], maxs[i] = g.Min, g.Avg, g.Max
	}
	lo, _ := minMax(mins)
	_, hi := minMax(maxs)
	series := []chart.Series{
		chart.ContinuousSeries{Name: "Max", XValues: xs, YValues: maxs, Style: pointStyle(chart.ColorRed)},
		chart.ContinuousSeries{Name: "Avg", XValues: xs, YValues: avgs, Style: pointStyle(chart.ColorBlue)},
		chart.ContinuousSeries{Name: "Min", XValues: xs, YValues: mins, Style: pointStyle(chart.ColorGreen)},
	}
	if u := res.Specs.USL; u != nil {
		series = append(series, hline("USL", *u, n, limitStyle(chart.ColorOrange, false)))
		hi = math.Max(hi, *u)
	}
	if l := res.Specs.LSL; l != nil {
		series = append(series, hline("LSL", *l, n, limitStyle(chart.ColorOrange, false)))
		lo = math.Min(lo, *l)
	}
	return chart.Chart{
		Title:  fmt.Sprintf("%s: cavity spread per batch", res.Item),
		XAxis:  chart.XAxis{Name: "Batch", Range: xRange(n)},
		YAxis:  chart.YAxis{Name: res.Item, Range: yRange(lo, hi)},
		Series: series,
	}
}

func minMax(v []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range v {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	return lo, hi
}

// xRange keeps a single point away from a zero-width axis.
func xRange(n int) *chart.ContinuousRange {
	if n < 2 {
		return &chart.ContinuousRange{Min: 0, Max: 2}
	}
	return &chart.ContinuousRange{Min: 1, Max: float64(n)}
}

// yRange pads [lo, hi] by 5%, or by 1 when the span is zero.
func yRange(lo, hi float64) *chart.ContinuousRange {
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
