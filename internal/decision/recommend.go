package decision

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/qip-spc-cli/internal/stats"
)

// Context is the input to Recommend, assembled from the classifiers.
type Context struct {
	DataType    DataTypeInfo `json:"data_type"`
	SampleSize  SampleSize   `json:"sample_size"`
	Normality   Normality    `json:"normality"`
	Trend       Trend        `json:"trend"`
	Sensitivity Sensitivity  `json:"sensitivity"`
}

// BuildContext runs every classifier over values. n is the subgroup size
// and tester may be nil.
func BuildContext(values []float64, n int, sens Sensitivity, tester stats.NormalityTester) Context {
	return Context{
		DataType:    DetectDataType(values),
		SampleSize:  ClassifySubgroup(n),
		Normality:   TestNormality(tester, values),
		Trend:       DetectTrend(values),
		Sensitivity: sens,
	}
}

// Recommendation is the chart choice for one Context.
type Recommendation struct {
	PrimaryChart    string   `json:"primary_chart"`
	SecondaryCharts []string `json:"secondary_charts"`
	Reasoning       []string `json:"reasoning"`
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
	Confidence      int      `json:"confidence"`
	Summary         string   `json:"summary"`
}

const (
	minConfidence    = 50
	nonNormalPenalty = 10
	trendPenalty     = 15
	fullConfidence   = 100
)

// Recommend picks the primary chart from the data type and subgroup size.
// Non-normality and trends add warnings; trends and sensitivity add
// secondary charts. Only continuous data is checked for normality and
// trend.
func Recommend(c Context) Recommendation {
	r := Recommendation{
		SecondaryCharts: []string{},
		Reasoning:       []string{},
		Warnings:        []string{},
		Recommendations: []string{},
	}
	switch c.DataType.Type {
	case BinaryCount:
		r.PrimaryChart = ChartP
		r.Reasoning = append(r.Reasoning, "binary data (0/1): proportion chart")
		r.Recommendations = append(r.Recommendations, "suited to pass/fail classification")
	case Count:
		r.PrimaryChart = ChartC
		r.Reasoning = append(r.Reasoning, "non-negative integer data: count chart")
		r.Recommendations = append(r.Recommendations, "suited to defect counts")
	default:
		r.PrimaryChart = c.SampleSize.Chart
		if r.PrimaryChart == "" {
			r.PrimaryChart = ClassifySubgroup(c.SampleSize.N).Chart
		}
		r.Reasoning = append(r.Reasoning, fmt.Sprintf("continuous data with subgroup size n=%d: %s", c.SampleSize.N, r.PrimaryChart))

		if c.Normality.NonNormal() {
			r.Warnings = append(r.Warnings, "data is not normally distributed; consider a transformation")
			r.Recommendations = append(r.Recommendations, c.Normality.Recommendations...)
		}
		if c.Trend.HasTrend() {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s trend detected", c.Trend.Type))
			r.Recommendations = append(r.Recommendations, c.Trend.Recommendation)
			if c.Trend.Type == TrendWear {
				r.SecondaryCharts = append(r.SecondaryCharts, ChartACC)
			} else {
				r.SecondaryCharts = append(r.SecondaryCharts, ChartEWMA)
			}
		}
		switch c.Sensitivity {
		case SensitivityMedium:
			r.SecondaryCharts = append(r.SecondaryCharts, ChartEWMA)
		case SensitivityHigh:
			r.SecondaryCharts = append(r.SecondaryCharts, ChartCUSUM)
		}
	}
	r.Confidence = confidence(c)
	r.Summary = summary(r.PrimaryChart, c)
	return r
}

func confidence(c Context) int {
	score := fullConfidence
	if c.Normality.NonNormal() {
		score -= nonNormalPenalty
	}
	if c.Trend.HasTrend() {
		score -= trendPenalty
	}
	if score < minConfidence {
		return minConfidence
	}
	return score
}

func summary(chart string, c Context) string {
	parts := []string{fmt.Sprintf("Recommended chart: %s.", chart)}
	if c.SampleSize.N > 1 {
		parts = append(parts, fmt.Sprintf("Each batch has %d samples; %s.", c.SampleSize.N, c.SampleSize.Reason))
	}
	if c.Normality.Testable && c.Normality.IsNormal {
		parts = append(parts, "The data is normally distributed, so standard control charts apply.")
	}
	if c.Trend.Detectable && !c.Trend.HasTrend() {
		parts = append(parts, "No significant trend was detected; the process is relatively stable.")
	}
	return strings.Join(parts, " ")
}
