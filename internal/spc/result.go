package spc

import (
	"github.com/KaramelBytes/qip-spc-cli/internal/nelson"
	"github.com/KaramelBytes/qip-spc-cli/internal/stats"
	"github.com/KaramelBytes/qip-spc-cli/internal/workbook"
)

// Result is the output of one analysis. It holds no reference to the
// workbook it was computed from and is not modified after it is returned.
type Result struct {
	Mode             Mode                `json:"mode"`
	Item             string              `json:"item"`
	Range            workbook.BatchRange `json:"range"`
	Excluded         []int               `json:"excluded_batches,omitempty"`
	Stats            *Stats              `json:"stats,omitempty"`
	ControlLimits    *ControlLimits      `json:"control_limits,omitempty"`
	Capability       *Capability         `json:"capability"`
	Data             *Data               `json:"data,omitempty"`
	Specs            workbook.Specs      `json:"specs"`
	Violations       []string            `json:"violations"`
	ViolationsDetail []nelson.Violation  `json:"violations_detail,omitempty"`
	Distribution     *Distribution       `json:"distribution,omitempty"`
	XbarR            *XbarR              `json:"xbar_r,omitempty"`
	Cavities         []CavityStat        `json:"cavities,omitempty"`
	Groups           []GroupStat         `json:"groups,omitempty"`
	Outliers         []int               `json:"outliers,omitempty"`
	Notes            []string            `json:"notes,omitempty"`
}

// Stats describes the analysed series.
type Stats struct {
	Mean       float64 `json:"mean"`
	StdWithin  float64 `json:"within_std"`
	StdOverall float64 `json:"overall_std"`
	Max        float64 `json:"max"`
	Min        float64 `json:"min"`
	Range      float64 `json:"range"`
	Count      int     `json:"count"`
	MRMean     float64 `json:"mr_mean"`
}

// ControlLimits holds the I chart and MR chart limits.
type ControlLimits struct {
	UCL   float64 `json:"ucl_x"`
	CL    float64 `json:"cl_x"`
	LCL   float64 `json:"lcl_x"`
	UCLMR float64 `json:"ucl_mr"`
	CLMR  float64 `json:"cl_mr"`
	LCLMR float64 `json:"lcl_mr"`
}

// Individuals returns the I chart limits for rule detection.
func (c ControlLimits) Individuals() nelson.Limits {
	return nelson.Limits{CL: c.CL, UCL: c.UCL, LCL: c.LCL}
}

// Data is the charted series with its moving ranges.
type Data struct {
	Name     string    `json:"cavity_actual_name"`
	Labels   []string  `json:"labels"`
	Values   []float64 `json:"values"`
	Indices  []int     `json:"batch_indices"`
	MRLabels []string  `json:"mr_labels"`
	MRValues []float64 `json:"mr_values"`
}

// Distribution is a histogram with its fitted normal curve.
type Distribution struct {
	Histogram stats.Histogram `json:"histogram"`
	Curve     stats.Curve     `json:"curve"`
}

// XbarR treats each batch's cavity readings as one subgroup.
type XbarR struct {
	SubgroupSize int                     `json:"subgroup_size"`
	Constants    stats.SubgroupConstants `json:"constants"`
	XbarBar      float64                 `json:"cl_xbar"`
	UCLXbar      float64                 `json:"ucl_xbar"`
	LCLXbar      float64                 `json:"lcl_xbar"`
	RBar         float64                 `json:"cl_r"`
	UCLR         float64                 `json:"ucl_r"`
	LCLR         float64                 `json:"lcl_r"`
	WithinStd    float64                 `json:"within_std"`
	Ranges       []float64               `json:"r_values"`
	Violations   []nelson.Violation      `json:"xbar_violations"`
	RViolations  []nelson.Violation      `json:"r_violations"`
}

// CavityStat is the capability of one cavity column.
type CavityStat struct {
	Cavity     string   `json:"cavity"`
	Mean       float64  `json:"mean"`
	Cpk        *float64 `json:"cpk"`
	Ppk        *float64 `json:"ppk"`
	StdWithin  float64  `json:"std_within"`
	StdOverall float64  `json:"std_overall"`
	Count      int      `json:"count"`
}

// GroupStat is the spread of one batch across its cavities.
type GroupStat struct {
	Index int     `json:"index"`
	Batch string  `json:"batch"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Range float64 `json:"range"`
	N     int     `json:"n"`
}
