package decision

import "fmt"

// Chart names shared by the policies.
const (
	ChartIMR   = "I-MR"
	ChartXbarR = "X-bar/R"
	ChartXbarS = "X-bar/S"
	ChartP     = "P Chart"
	ChartC     = "C Chart"
	ChartEWMA  = "EWMA"
	ChartCUSUM = "CUSUM"
	ChartACC   = "Acceptance Control Chart"
)

// SampleSize is the subgroup-size classification used by Recommend.
type SampleSize struct {
	N         int    `json:"n"`
	Category  string `json:"category"`
	Chart     string `json:"recommended_chart"`
	Estimator string `json:"estimator"`
	Reason    string `json:"reason"`
}

// ClassifySubgroup maps the per-batch subgroup size to a chart family:
// 1 is I-MR, 2..5 X-bar/R, 6..10 and above X-bar/S. Sizes below 1 are
// treated as 1.
//
// VariableChartFor applies the AIAG-VDA boundary (n < 10) instead.
func ClassifySubgroup(n int) SampleSize {
	if n < 1 {
		n = 1
	}
	switch {
	case n == 1:
		return SampleSize{N: n, Category: "individual", Chart: ChartIMR, Estimator: "moving range",
			Reason: "individual values; sigma is estimated from the moving range (d2 = 1.128)"}
	case n <= 5:
		return SampleSize{N: n, Category: "small-sample", Chart: ChartXbarR, Estimator: "R-based",
			Reason: "small subgroups estimate sigma from the range; simple to compute on the shop floor"}
	case n <= 10:
		return SampleSize{N: n, Category: "medium-sample", Chart: ChartXbarS, Estimator: "S-based",
			Reason: "medium subgroups estimate sigma from the standard deviation; more precise, recommended"}
	default:
		return SampleSize{N: n, Category: "large-sample", Chart: ChartXbarS, Estimator: "S-based",
			Reason: fmt.Sprintf("large subgroups (n=%d) estimate sigma from the standard deviation; most precise", n)}
	}
}
